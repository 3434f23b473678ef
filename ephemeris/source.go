package ephemeris

import (
	"math"

	"github.com/anupshinde/solarcore/bodies"
	"github.com/anupshinde/solarcore/coord"
	"github.com/anupshinde/solarcore/kepler"
	"github.com/anupshinde/solarcore/simerr"
	"github.com/anupshinde/solarcore/timescale"
)

// Source is the capability set every ephemeris provider exposes (spec
// §4.D, §6): a validity window, the set of bodies it knows, and state
// queries. Instants are seconds past J2000 (TDB); positions/velocities are
// meters and meters per second in the J2000 ecliptic frame.
type Source interface {
	FirstValidInstant() float64
	LastValidInstant() float64
	Bodies() []string
	Position(body string, instant float64) (coord.Vector3D, error)
	Velocity(body string, instant float64) (coord.Vector3D, error)
	State(body string, instant float64) (coord.Vector3D, coord.Vector3D, error)
	// StateBarycentric returns Unsupported unless the source models a
	// barycenter distinct from its State query.
	StateBarycentric(body string, instant float64) (coord.Vector3D, coord.Vector3D, error)
}

func inWindow(s Source, instant float64) bool {
	return instant >= s.FirstValidInstant() && instant <= s.LastValidInstant()
}

// --- Approximate Keplerian source -----------------------------------------

// KeplerianSource computes heliocentric (planetocentric for moons) state from the long-form element
// tables in bodies plus the outer-planet long-form correction, valid for
// the full 3000 BC-AD 3000 domain (spec §4.D.1). Velocity is derived
// analytically from the Kepler two-body solution.
type KeplerianSource struct {
	Method kepler.Solver
}

// keplerianFirstValid/keplerianLastValid are seconds past J2000 for
// 3000 BC and AD 3000 respectively (spec §4.D.1's stated domain). The
// underlying Julian Dates are approximate (mean tropical year stepping from
// J2000) — adequate for a domain boundary check, not a calendar.
var (
	keplerianFirstValid = timescale.SecondsPastJ2000(625332.0) // approx JD for 3000 BC
	keplerianLastValid  = timescale.SecondsPastJ2000(2816787.0) // approx JD for AD 3000
)

func (k KeplerianSource) FirstValidInstant() float64 { return keplerianFirstValid }
func (k KeplerianSource) LastValidInstant() float64  { return keplerianLastValid }

func (k KeplerianSource) Bodies() []string {
	var out []string
	for _, id := range bodies.All() {
		b, err := bodies.Lookup(id)
		if err == nil && b.HasElements {
			out = append(out, id)
		}
	}
	return out
}

func (k KeplerianSource) State(body string, instant float64) (coord.Vector3D, coord.Vector3D, error) {
	if !inWindow(k, instant) {
		return coord.Zero, coord.Zero, simerr.NewOutOfRange(body, instant, "outside 3000 BC - AD 3000 Keplerian domain")
	}
	b, err := bodies.Lookup(body)
	if err != nil {
		return coord.Zero, coord.Zero, err
	}
	if !b.HasElements {
		return coord.Zero, coord.Zero, simerr.NewUnsupported("body " + body + " has no registered orbital elements")
	}
	tdbJD := timescale.JDFromSecondsPastJ2000(instant)
	// A moon's elements orbit its planet (CenterBodyId), not the Sun; use
	// that body's mu so the result is planetocentric, matching the frame
	// PlanetSubsystem expects. Planets (CenterBodyId == "") orbit the Sun.
	centerId := b.CenterBodyId
	if centerId == "" {
		centerId = "Sun"
	}
	center, err := bodies.Lookup(centerId)
	if err != nil {
		return coord.Zero, coord.Zero, err
	}
	pos, vel, err := kepler.StateAt(b.Elements, body, center.MuM3S2, tdbJD, k.Method)
	if err != nil {
		return coord.Zero, coord.Zero, err
	}
	return coord.FromArray(pos), coord.FromArray(vel), nil
}

func (k KeplerianSource) Position(body string, instant float64) (coord.Vector3D, error) {
	p, _, err := k.State(body, instant)
	return p, err
}

func (k KeplerianSource) Velocity(body string, instant float64) (coord.Vector3D, error) {
	_, v, err := k.State(body, instant)
	return v, err
}

// StateBarycentric returns the Earth-Moon barycenter's heliocentric state
// for body "Earth" or "Moon", mass-weighted from both bodies' own States
// (the Moon's elements are planetocentric, so its State is first added to
// Earth's to get its heliocentric position). Every other body has no
// barycenter distinct from its own State and returns Unsupported.
func (k KeplerianSource) StateBarycentric(body string, instant float64) (coord.Vector3D, coord.Vector3D, error) {
	if body != "Earth" && body != "Moon" {
		return coord.Zero, coord.Zero, simerr.NewUnsupported("KeplerianSource models a barycenter only for Earth and Moon")
	}
	earthPos, earthVel, err := k.State("Earth", instant)
	if err != nil {
		return coord.Zero, coord.Zero, err
	}
	moonOffsetPos, moonOffsetVel, err := k.State("Moon", instant)
	if err != nil {
		return coord.Zero, coord.Zero, err
	}
	moonPos := earthPos.Add(moonOffsetPos)
	moonVel := earthVel.Add(moonOffsetVel)

	earth, err := bodies.Lookup("Earth")
	if err != nil {
		return coord.Zero, coord.Zero, err
	}
	moon, err := bodies.Lookup("Moon")
	if err != nil {
		return coord.Zero, coord.Zero, err
	}
	totalMass := earth.MassKg + moon.MassKg

	baryPos := earthPos.Scale(earth.MassKg / totalMass).Add(moonPos.Scale(moon.MassKg / totalMass))
	baryVel := earthVel.Scale(earth.MassKg / totalMass).Add(moonVel.Scale(moon.MassKg / totalMass))
	return baryPos, baryVel, nil
}

// --- Precomputed-file source -----------------------------------------------

// FileSource wraps a Kernel, exposing it through the Source interface.
// Target/observer NAIF ids are resolved through a BodyId<->NAIF table the
// caller supplies (spec §6: "target/observer ids follow the standard NAIF
// scheme").
type FileSource struct {
	kernel   *Kernel
	naifID   map[string]int
	observer int // NAIF id this kernel's states are centered on (its root)
	first, last float64
}

// NewFileSource opens path and builds a FileSource. naifID maps the
// BodyIds this source is willing to serve to their NAIF ids; observer is
// the NAIF id acting as the coordinate origin for State's output (SSB
// unless the caller constructs a planetocentric reader).
func NewFileSource(path string, naifID map[string]int, observer int) (*FileSource, error) {
	k, err := OpenKernel(path)
	if err != nil {
		return nil, err
	}
	first, last := math.Inf(1), math.Inf(-1)
	for _, seg := range k.Segments() {
		if seg.StartSec < first {
			first = seg.StartSec
		}
		if seg.EndSec > last {
			last = seg.EndSec
		}
	}
	return &FileSource{kernel: k, naifID: naifID, observer: observer, first: first, last: last}, nil
}

func (f *FileSource) FirstValidInstant() float64 { return f.first }
func (f *FileSource) LastValidInstant() float64  { return f.last }

func (f *FileSource) Bodies() []string {
	out := make([]string, 0, len(f.naifID))
	for id := range f.naifID {
		out = append(out, id)
	}
	return out
}

func (f *FileSource) State(body string, instant float64) (coord.Vector3D, coord.Vector3D, error) {
	if !inWindow(f, instant) {
		return coord.Zero, coord.Zero, simerr.NewOutOfRange(body, instant, "outside kernel's covered window")
	}
	target, ok := f.naifID[body]
	if !ok {
		return coord.Zero, coord.Zero, simerr.NewUnknownBody(body)
	}
	posKm, velKmDay, err := f.kernel.State(instant, target, f.observer)
	if err != nil {
		return coord.Zero, coord.Zero, err
	}
	posEq := coord.New(posKm[0]*1000, posKm[1]*1000, posKm[2]*1000)
	velEq := coord.New(velKmDay[0]*1000/secPerDay, velKmDay[1]*1000/secPerDay, velKmDay[2]*1000/secPerDay)

	// The reader returns J2000 equatorial states (spec §4.D.2); rotate to
	// ecliptic for the core's consistent output frame.
	return coord.EquatorialToEcliptic(posEq), coord.EquatorialToEcliptic(velEq), nil
}

func (f *FileSource) Position(body string, instant float64) (coord.Vector3D, error) {
	p, _, err := f.State(body, instant)
	return p, err
}

func (f *FileSource) Velocity(body string, instant float64) (coord.Vector3D, error) {
	_, v, err := f.State(body, instant)
	return v, err
}

func (f *FileSource) StateBarycentric(body string, instant float64) (coord.Vector3D, coord.Vector3D, error) {
	return coord.Zero, coord.Zero, simerr.NewUnsupported("FileSource does not model a barycenter distinct from its reference center")
}

// --- Planetocentric translator --------------------------------------------

// PlanetocentricTranslator wraps a Source whose states are relative to a
// planet (e.g. a moon file source) and adds the planet's own heliocentric
// state (from heliocentric), delivering heliocentric output, per spec
// §4.D's "subsystem sources... are wrapped with a translator that adds the
// planet's heliocentric state."
type PlanetocentricTranslator struct {
	Planetocentric Source
	Planet         string
	Heliocentric   Source
}

func (t PlanetocentricTranslator) FirstValidInstant() float64 {
	return math.Max(t.Planetocentric.FirstValidInstant(), t.Heliocentric.FirstValidInstant())
}
func (t PlanetocentricTranslator) LastValidInstant() float64 {
	return math.Min(t.Planetocentric.LastValidInstant(), t.Heliocentric.LastValidInstant())
}
func (t PlanetocentricTranslator) Bodies() []string { return t.Planetocentric.Bodies() }

func (t PlanetocentricTranslator) State(body string, instant float64) (coord.Vector3D, coord.Vector3D, error) {
	pPos, pVel, err := t.Planetocentric.State(body, instant)
	if err != nil {
		return coord.Zero, coord.Zero, err
	}
	planetPos, planetVel, err := t.Heliocentric.State(t.Planet, instant)
	if err != nil {
		return coord.Zero, coord.Zero, err
	}
	return pPos.Add(planetPos), pVel.Add(planetVel), nil
}

func (t PlanetocentricTranslator) Position(body string, instant float64) (coord.Vector3D, error) {
	p, _, err := t.State(body, instant)
	return p, err
}

func (t PlanetocentricTranslator) Velocity(body string, instant float64) (coord.Vector3D, error) {
	_, v, err := t.State(body, instant)
	return v, err
}

func (t PlanetocentricTranslator) StateBarycentric(body string, instant float64) (coord.Vector3D, coord.Vector3D, error) {
	return coord.Zero, coord.Zero, simerr.NewUnsupported("PlanetocentricTranslator does not model a barycenter")
}

// --- Composite dispatcher --------------------------------------------------

// CompositeSource dispatches by body and instant across registered
// sources, preferring the narrowest covering validity window on overlap
// (spec §4.D's tie-break rule), falling back to fallback (typically a
// KeplerianSource) when nothing more specific covers the query.
type CompositeSource struct {
	sources  []Source
	fallback Source
}

// NewCompositeSource builds a dispatcher trying each of sources (in the
// order given, narrower-window tie-break applied across all of them) before
// falling back to fallback.
func NewCompositeSource(fallback Source, sources ...Source) *CompositeSource {
	return &CompositeSource{sources: sources, fallback: fallback}
}

func (c *CompositeSource) candidatesFor(body string, instant float64) []Source {
	var hits []Source
	for _, s := range c.sources {
		if !inWindow(s, instant) {
			continue
		}
		for _, b := range s.Bodies() {
			if b == body {
				hits = append(hits, s)
				break
			}
		}
	}
	return hits
}

func (c *CompositeSource) pick(body string, instant float64) Source {
	hits := c.candidatesFor(body, instant)
	if len(hits) == 0 {
		return c.fallback
	}
	best := hits[0]
	bestWidth := best.LastValidInstant() - best.FirstValidInstant()
	for _, h := range hits[1:] {
		w := h.LastValidInstant() - h.FirstValidInstant()
		if w < bestWidth {
			best, bestWidth = h, w
		}
	}
	return best
}

func (c *CompositeSource) FirstValidInstant() float64 { return c.fallback.FirstValidInstant() }
func (c *CompositeSource) LastValidInstant() float64  { return c.fallback.LastValidInstant() }

func (c *CompositeSource) Bodies() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(ids []string) {
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	add(c.fallback.Bodies())
	for _, s := range c.sources {
		add(s.Bodies())
	}
	return out
}

func (c *CompositeSource) State(body string, instant float64) (coord.Vector3D, coord.Vector3D, error) {
	return c.pick(body, instant).State(body, instant)
}

func (c *CompositeSource) Position(body string, instant float64) (coord.Vector3D, error) {
	p, _, err := c.State(body, instant)
	return p, err
}

func (c *CompositeSource) Velocity(body string, instant float64) (coord.Vector3D, error) {
	_, v, err := c.State(body, instant)
	return v, err
}

func (c *CompositeSource) StateBarycentric(body string, instant float64) (coord.Vector3D, coord.Vector3D, error) {
	return c.pick(body, instant).StateBarycentric(body, instant)
}
