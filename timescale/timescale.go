// Package timescale converts between civil UTC time, Julian Date, and the
// time scales (TT, UT1, TDB) the rest of the core needs for ephemeris and
// integrator work. All internal arithmetic elsewhere in the module is done
// in seconds past the J2000.0 epoch; this package is where that convention
// meets calendar time at the API edge.
package timescale

import (
	"math"
	"time"
)

const (
	// J2000JD is the Julian Date of the J2000.0 epoch (2000-01-01 12:00 TT).
	J2000JD = 2451545.0

	// SecPerDay is the number of seconds in a Julian day.
	SecPerDay = 86400.0

	// unixEpochJD is the Julian Date of the Unix epoch (1970-01-01 00:00 UTC).
	unixEpochJD = 2440587.5
)

// TimeToJDUTC converts a Go time.Time (any location; converted to UTC) to a
// Julian Date in the UTC scale.
func TimeToJDUTC(t time.Time) float64 {
	t = t.UTC()
	days := float64(t.Unix()) / SecPerDay
	days += float64(t.Nanosecond()) / 1e9 / SecPerDay
	return unixEpochJD + days
}

// JDUTCToTime converts a Julian Date in the UTC scale to a Go time.Time
// (UTC), rounded to millisecond precision per spec §3's Instant contract.
func JDUTCToTime(jd float64) time.Time {
	days := jd - unixEpochJD
	secs := days * SecPerDay
	whole := math.Floor(secs)
	frac := secs - whole
	ms := int64(math.Round(frac * 1000))
	if ms == 1000 {
		whole++
		ms = 0
	}
	return time.Unix(int64(whole), ms*int64(time.Millisecond)).UTC()
}

// SecondsPastJ2000 converts a UTC Julian Date to seconds past the J2000.0
// epoch, the signed 64-bit float used for all internal time arithmetic
// (spec §3 Instant invariant).
func SecondsPastJ2000(jdUTC float64) float64 {
	return (jdUTC - J2000JD) * SecPerDay
}

// JDFromSecondsPastJ2000 is the inverse of SecondsPastJ2000.
func JDFromSecondsPastJ2000(sec float64) float64 {
	return J2000JD + sec/SecPerDay
}

// leapSecondEntry is one row of the UTC-TAI leap second table: the Julian
// Date (UTC, 00:00 of the effective day) at which a new TAI-UTC offset took
// effect, and that offset in seconds.
type leapSecondEntry struct {
	jdUTC  float64
	offset float64
}

// leapSeconds holds the historical TAI-UTC offsets. Not exhaustive before
// 1972 (fractional leap seconds existed; this table starts at the first
// integer-second leap and is flat before it), but sufficient for the core's
// ~3000 BC-AD 3000 domain where pre-1972 and post-"latest announced" dates
// both fall back to the nearest known offset, matching real ephemeris
// software's behavior of freezing TAI-UTC outside the table's range.
var leapSeconds = []leapSecondEntry{
	{2441317.5, 10}, // 1972-01-01
	{2441499.5, 11}, // 1972-07-01
	{2441683.5, 12}, // 1973-01-01
	{2442048.5, 13}, // 1974-01-01
	{2442413.5, 14}, // 1975-01-01
	{2442778.5, 15}, // 1976-01-01
	{2443144.5, 16}, // 1977-01-01
	{2443509.5, 17}, // 1978-01-01
	{2443874.5, 18}, // 1979-01-01
	{2444239.5, 19}, // 1980-01-01
	{2444786.5, 20}, // 1981-07-01
	{2445151.5, 21}, // 1982-07-01
	{2445516.5, 22}, // 1983-07-01
	{2446247.5, 23}, // 1985-07-01
	{2447161.5, 24}, // 1988-01-01
	{2447892.5, 25}, // 1990-01-01
	{2448257.5, 26}, // 1991-01-01
	{2448804.5, 27}, // 1992-07-01
	{2449169.5, 28}, // 1993-07-01
	{2449534.5, 29}, // 1994-07-01
	{2450083.5, 30}, // 1996-01-01
	{2450630.5, 31}, // 1997-07-01
	{2451179.5, 32}, // 1999-01-01
	{2453736.5, 33}, // 2006-01-01
	{2454832.5, 34}, // 2009-01-01
	{2456109.5, 35}, // 2012-07-01
	{2457204.5, 36}, // 2015-07-01
	{2457754.5, 37}, // 2017-01-01
}

// LeapSecondOffset returns the TAI-UTC offset in seconds in effect at the
// given UTC Julian Date. Dates before the table clamp to the first entry;
// dates after the last announced leap second clamp to the last entry.
func LeapSecondOffset(jdUTC float64) float64 {
	if jdUTC < leapSeconds[0].jdUTC {
		return leapSeconds[0].offset
	}
	for i := len(leapSeconds) - 1; i >= 0; i-- {
		if jdUTC >= leapSeconds[i].jdUTC {
			return leapSeconds[i].offset
		}
	}
	return leapSeconds[0].offset
}

// UTCToTT converts a UTC Julian Date to a Terrestrial Time Julian Date.
// TT = UTC + (leap seconds) + 32.184s.
func UTCToTT(jdUTC float64) float64 {
	offset := LeapSecondOffset(jdUTC) + 32.184
	return jdUTC + offset/SecPerDay
}

// TTToUTC is the (approximate, table-based) inverse of UTCToTT.
func TTToUTC(jdTT float64) float64 {
	// One fixed-point pass suffices: LeapSecondOffset changes on UTC day
	// boundaries, at most one day away from jdTT.
	approx := jdTT - (LeapSecondOffset(jdTT)+32.184)/SecPerDay
	offset := LeapSecondOffset(approx) + 32.184
	return jdTT - offset/SecPerDay
}

// deltaTEntry is one row of the historical/predicted ΔT = TT-UT1 table,
// sampled in whole years (IERS/Espenak-Meeus "Five Millennium Canon" style
// values, decadal through the modern era).
type deltaTEntry struct {
	year float64
	dt   float64 // seconds
}

// deltaTTable gives ΔT at decadal samples (50-year steps after 2100); DeltaT linearly
// interpolates between entries and clamps at the ends, matching the
// boundary behavior real almanac software uses far from the table's range.
var deltaTTable = []deltaTEntry{
	{1800, 13.7000}, {1810, 12.0000}, {1820, 11.3000}, {1830, 9.9000},
	{1840, 7.6000}, {1850, 4.6200}, {1860, 6.0500}, {1870, 6.9000},
	{1880, -2.5200}, {1890, -4.5500}, {1900, -2.3600}, {1910, 2.2600},
	{1920, 8.2600}, {1930, 15.2100}, {1940, 24.2000}, {1950, 29.0700},
	{1960, 33.1500}, {1970, 40.1800}, {1980, 50.5400}, {1990, 56.8600},
	{2000, 63.8290}, {2010, 66.0700}, {2020, 69.3600}, {2030, 72.0000},
	{2040, 75.0000}, {2050, 79.0000}, {2060, 84.0000}, {2070, 89.0000},
	{2080, 95.0000}, {2090, 102.0000}, {2100, 110.0000}, {2150, 180.0000},
	{2200, 275.0000},
}

// DeltaT returns ΔT = TT - UT1 in seconds for a given decimal year, by
// linear interpolation of deltaTTable. Clamps to the first/last entry
// outside the table's range.
func DeltaT(year float64) float64 {
	n := len(deltaTTable)
	if year <= deltaTTable[0].year {
		return deltaTTable[0].dt
	}
	if year >= deltaTTable[n-1].year {
		return deltaTTable[n-1].dt
	}
	for i := 0; i < n-1; i++ {
		lo, hi := deltaTTable[i], deltaTTable[i+1]
		if year >= lo.year && year <= hi.year {
			frac := (year - lo.year) / (hi.year - lo.year)
			return lo.dt + frac*(hi.dt-lo.dt)
		}
	}
	return deltaTTable[n-1].dt
}

// TTToUT1 converts a TT Julian Date to a UT1 Julian Date using DeltaT.
func TTToUT1(jdTT float64) float64 {
	year := 2000.0 + (jdTT-J2000JD)/365.25
	return jdTT - DeltaT(year)/SecPerDay
}

// UT1ToTT is the inverse of TTToUT1.
func UT1ToTT(jdUT1 float64) float64 {
	year := 2000.0 + (jdUT1-J2000JD)/365.25
	return jdUT1 + DeltaT(year)/SecPerDay
}

// TDBMinusTT returns TDB-TT in seconds at a given TT Julian Date, using the
// dominant periodic term of the Fairhead & Bretagnon series (amplitude
// ~1.658 ms, period one anomalistic year). Never exceeds ~2 ms in magnitude,
// far below spec's positional accuracy floor, but kept for round-trip
// consistency with FileSource ephemeris epochs which are tabulated in TDB.
func TDBMinusTT(jdTT float64) float64 {
	T := (jdTT - J2000JD) / 36525.0
	g := 357.53 + 0.9856003*(jdTT-J2000JD) // mean anomaly of the Earth, degrees
	gRad := g * math.Pi / 180.0
	_ = T
	return 0.001658 * math.Sin(gRad+0.0167*math.Sin(gRad))
}

// TTToTDB converts a TT Julian Date to TDB.
func TTToTDB(jdTT float64) float64 {
	return jdTT + TDBMinusTT(jdTT)/SecPerDay
}

// JulianCenturiesSinceJ2000 returns T, Julian centuries of TT past J2000.0,
// the standard argument used throughout kepler's long-form corrections.
func JulianCenturiesSinceJ2000(jdTT float64) float64 {
	return (jdTT - J2000JD) / 36525.0
}
