// Package sgp4traj is a concrete orchestrator.Trajectory for near-Earth
// spacecraft, backed by SGP4 (github.com/joshuaferrara/go-satellite), and
// exposes ground-station pass planning (rise/culmination/set) for the
// same satellite.
package sgp4traj

import (
	"math"
	"strconv"
	"time"

	gosatellite "github.com/joshuaferrara/go-satellite"

	"github.com/anupshinde/solarcore/coord"
	"github.com/anupshinde/solarcore/ephemeris"
	"github.com/anupshinde/solarcore/nbody"
	"github.com/anupshinde/solarcore/search"
	"github.com/anupshinde/solarcore/simerr"
	"github.com/anupshinde/solarcore/timescale"
)

// Sat holds a named satellite for propagation.
type Sat struct {
	Name string
	sat  gosatellite.Satellite
}

// NewSat creates a Sat from TLE lines using the WGS84 gravity model.
func NewSat(name, line1, line2 string) Sat {
	return Sat{
		Name: name,
		sat:  gosatellite.TLEToSat(line1, line2, gosatellite.GravityWGS84),
	}
}

// Trajectory is an orchestrator.Trajectory backed by SGP4. It is valid for
// windowDays on either side of the TLE epoch — SGP4's mean-element model
// degrades well before the module's multi-millennium ephemeris domain, so
// the window is deliberately narrow (days, not centuries).
type Trajectory struct {
	sat   Sat
	earth ephemeris.Source

	epochInstant float64 // seconds past J2000, TDB-ish (see State's doc comment)
	firstValid   float64
	lastValid    float64
}

// New builds a Trajectory from an already-constructed Sat, a TLE epoch
// expressed as seconds past J2000, a validity half-window in days, and the
// ephemeris source used to translate SGP4's geocentric state into the
// orchestrator's heliocentric frame (ordinarily the same source that
// seeded the rest of the orchestrator, so Earth's position is consistent).
func New(sat Sat, epochInstant, windowDays float64, earth ephemeris.Source) *Trajectory {
	halfWindow := windowDays * timescale.SecPerDay
	return &Trajectory{
		sat:          sat,
		earth:        earth,
		epochInstant: epochInstant,
		firstValid:   epochInstant - halfWindow,
		lastValid:    epochInstant + halfWindow,
	}
}

// NewFromTLE parses the epoch out of a standard two-line element set and
// constructs a Trajectory directly from the TLE lines.
func NewFromTLE(name, line1, line2 string, windowDays float64, earth ephemeris.Source) (*Trajectory, error) {
	epochInstant, err := EpochInstant(line1)
	if err != nil {
		return nil, err
	}
	sat := NewSat(name, line1, line2)
	return New(sat, epochInstant, windowDays, earth), nil
}

// EpochInstant parses a TLE's epoch (columns 19-32 of line 1: two-digit
// year, then day-of-year with a fractional part) and returns it as seconds
// past J2000. Per TLE convention, two-digit years below 57 are 2000s, at
// or above 57 are 1900s (the same pivot NORAD has used since TLEs were
// first issued in the 57-series catalog).
func EpochInstant(line1 string) (float64, error) {
	if len(line1) < 32 {
		return 0, simerr.NewIoError("TLE line 1 too short to contain an epoch", nil)
	}
	yy, err := strconv.Atoi(line1[18:20])
	if err != nil {
		return 0, simerr.NewIoError("TLE line 1 has a malformed epoch year", err)
	}
	dayFrac, err := strconv.ParseFloat(line1[20:32], 64)
	if err != nil {
		return 0, simerr.NewIoError("TLE line 1 has a malformed epoch day", err)
	}
	year := 1900 + yy
	if yy < 57 {
		year = 2000 + yy
	}
	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	jdUTC := timescale.TimeToJDUTC(yearStart) + (dayFrac - 1.0)
	return timescale.SecondsPastJ2000(jdUTC), nil
}

// State implements orchestrator.Trajectory: it propagates SGP4 at instant,
// rotates the TEME result into the ecliptic frame via coord.TEMEToICRF and
// the obliquity rotation, and adds the source's Earth state to place the
// spacecraft heliocentrically. instant is treated as a UTC-equivalent
// Julian date for SGP4 purposes — the TDB/UTC difference is at most ~70
// seconds, far below SGP4's own mean-element error budget, so it is not
// applied; that UTC date is converted to UT1 (via TT and ΔT) before
// being handed to SGP4.
func (t *Trajectory) State(instant float64) (nbody.State, error) {
	if instant < t.firstValid || instant > t.lastValid {
		return nbody.State{}, simerr.NewOutOfRange("sgp4traj", instant, "outside the TLE's validity window")
	}

	jdUTC := timescale.JDFromSecondsPastJ2000(instant)
	jdUT1 := timescale.TTToUT1(timescale.UTCToTT(jdUTC))
	y, mo, d, h, mi, s := JDToCalendar(jdUT1)

	pos, vel := gosatellite.Propagate(t.sat.sat, y, mo, d, h, mi, s)

	posICRFKm := coord.TEMEToICRF([3]float64{pos.X, pos.Y, pos.Z}, jdUT1)
	// Velocity shares the same instantaneous rotation; the frame's own
	// angular rate contributes a correction far below SGP4's mean-element
	// error budget and is not applied here.
	velICRFKm := coord.TEMEToICRF([3]float64{vel.X, vel.Y, vel.Z}, jdUT1)

	posGeoM := coord.EquatorialToEcliptic(coord.FromArray(posICRFKm).Scale(1000))
	velGeoM := coord.EquatorialToEcliptic(coord.FromArray(velICRFKm).Scale(1000))

	earthPos, earthVel, err := t.earth.State("Earth", instant)
	if err != nil {
		return nbody.State{}, err
	}

	return nbody.State{
		Pos: earthPos.Add(posGeoM),
		Vel: earthVel.Add(velGeoM),
	}, nil
}

// FirstValidInstant and LastValidInstant bound the TLE's validity window.
func (t *Trajectory) FirstValidInstant() float64 { return t.firstValid }
func (t *Trajectory) LastValidInstant() float64  { return t.lastValid }

// Passes finds rise/culmination/set events for the satellite as seen from
// a ground observer, between startInstant and endInstant (seconds past
// J2000).
func (t *Trajectory) Passes(startInstant, endInstant, latDeg, lonDeg, minAltDeg float64) ([]SatEvent, error) {
	startJD := timescale.JDFromSecondsPastJ2000(startInstant)
	endJD := timescale.JDFromSecondsPastJ2000(endInstant)
	return FindEvents(t.sat, latDeg, lonDeg, startJD, endJD, minAltDeg)
}

// Event kinds returned by FindEvents.
const (
	Rise        = 0 // Satellite rises above the altitude threshold
	Culmination = 1 // Satellite reaches maximum altitude during a pass
	Set         = 2 // Satellite sets below the altitude threshold
)

// SatEvent represents a satellite pass event (rise, culmination, or set).
type SatEvent struct {
	T      float64 // TT Julian date of the event
	Kind   int     // Rise=0, Culmination=1, Set=2
	AltDeg float64 // Altitude in degrees at the event time
}

// FindEvents finds satellite rise, culmination, and set events as seen from a
// ground observer in the given TT Julian date range.
//
// latDeg, lonDeg: observer geodetic latitude and longitude in degrees.
// minAltDeg: minimum altitude threshold in degrees (typically 0).
//
// Returns events sorted by time. Each visible pass produces up to three events:
// Rise (satellite crosses above threshold), Culmination (maximum altitude),
// and Set (satellite crosses below threshold).
func FindEvents(sat Sat, latDeg, lonDeg, startJD, endJD, minAltDeg float64) ([]SatEvent, error) {
	// Step size ~1 minute. LEO orbital period ~90 min, shortest visible pass ~2 min.
	const stepDays = 1.0 / 1440.0 // 1 minute

	altFunc := satAltitudeFunc(sat, latDeg, lonDeg)

	// Find rise/set transitions using discrete search.
	discreteFunc := func(ttJD float64) int {
		if altFunc(ttJD) >= minAltDeg {
			return 1
		}
		return 0
	}
	transitions, err := search.FindDiscrete(startJD, endJD, stepDays, discreteFunc, 0)
	if err != nil {
		return nil, err
	}

	// Group transitions into passes and find culminations.
	var events []SatEvent
	for i := 0; i < len(transitions); i++ {
		e := transitions[i]
		if e.NewValue == 1 {
			// Rise event.
			riseT := e.T
			events = append(events, SatEvent{T: riseT, Kind: Rise, AltDeg: altFunc(riseT)})

			// Look for the matching set event.
			setT := endJD
			if i+1 < len(transitions) && transitions[i+1].NewValue == 0 {
				setT = transitions[i+1].T
				i++ // consume the set event

				// Find culmination between rise and set.
				maxima, err := search.FindMaxima(riseT, setT, stepDays, altFunc, 0)
				if err == nil && len(maxima) > 0 {
					// Use the highest maximum.
					best := maxima[0]
					for _, m := range maxima[1:] {
						if m.Value > best.Value {
							best = m
						}
					}
					events = append(events, SatEvent{T: best.T, Kind: Culmination, AltDeg: best.Value})
				}

				events = append(events, SatEvent{T: setT, Kind: Set, AltDeg: altFunc(setT)})
			}
		}
	}

	return events, nil
}

// satAltitudeFunc returns a function that computes the satellite's altitude
// in degrees as seen from the given ground observer at a TT Julian date.
func satAltitudeFunc(sat Sat, latDeg, lonDeg float64) func(float64) float64 {
	return func(ttJD float64) float64 {
		jdUT1 := timescale.TTToUT1(ttJD)

		// Convert JD to calendar for SGP4 propagation.
		y, mo, d, h, mi, s := JDToCalendar(jdUT1)
		pos, _ := gosatellite.Propagate(sat.sat, y, mo, d, h, mi, s)

		// SGP4 position is in km, TEME frame. Convert to ICRF.
		posKmTEME := [3]float64{pos.X, pos.Y, pos.Z}
		satICRF := coord.TEMEToICRF(posKmTEME, jdUT1)

		// Observer position in ICRF (km).
		ox, oy, oz := coord.GeodeticToICRF(latDeg, lonDeg, jdUT1)

		// Topocentric vector in ICRF.
		topoICRF := [3]float64{
			satICRF[0] - ox,
			satICRF[1] - oy,
			satICRF[2] - oz,
		}

		alt, _, _ := coord.Altaz(topoICRF, latDeg, lonDeg, jdUT1)
		return alt
	}
}

// JDToCalendar converts a Julian date to calendar components, for SGP4's
// int-calendar Propagate signature.
func JDToCalendar(jd float64) (year, month, day, hour, min, sec int) {
	// Standard JD to calendar algorithm (Meeus, Astronomical Algorithms).
	jd += 0.5
	z := math.Floor(jd)
	f := jd - z

	var a float64
	if z < 2299161 {
		a = z
	} else {
		alpha := math.Floor((z - 1867216.25) / 36524.25)
		a = z + 1 + alpha - math.Floor(alpha/4)
	}

	b := a + 1524
	c := math.Floor((b - 122.1) / 365.25)
	d := math.Floor(365.25 * c)
	e := math.Floor((b - d) / 30.6001)

	dayFrac := b - d - math.Floor(30.6001*e) + f
	day = int(dayFrac)
	fracDay := dayFrac - float64(day)

	if e < 14 {
		month = int(e) - 1
	} else {
		month = int(e) - 13
	}
	if month > 2 {
		year = int(c) - 4716
	} else {
		year = int(c) - 4715
	}

	totalSec := fracDay * 86400.0
	hour = int(totalSec / 3600.0)
	totalSec -= float64(hour) * 3600.0
	min = int(totalSec / 60.0)
	sec = int(totalSec - float64(min)*60.0)

	return
}
