// Package planetsystem implements the planet subsystem (spec §4.F): a
// nested nbody.ParticleSystem anchored to one planet, carrying that
// planet's J2 oblateness correction for its nearby moons and spacecraft,
// stepped at a bounded sub-step independent of the heliocentric step.
package planetsystem

import (
	"math"

	"github.com/anupshinde/solarcore/bodies"
	"github.com/anupshinde/solarcore/coord"
	"github.com/anupshinde/solarcore/nbody"
	"github.com/anupshinde/solarcore/simerr"
)

// MaxSubStepSeconds is the bound spec §4.F places on a subsystem's
// internal time step (<=10 minutes), independent of the heliocentric
// macro-step size.
const MaxSubStepSeconds = 600.0

// defaultOblatenessRadiusM is the default radius beyond which the J2 correction
// is dropped (spec §4.F: "outside a configurable radius the oblateness
// term is dropped"); callers may override via SetOblatenessRadius.
const defaultOblatenessRadiusM = 2.0e9

// PlanetSubsystem wraps an nbody.ParticleSystem whose states are expressed
// relative to the owning planet (planetocentric), adding the planet's J2
// oblateness correction to the acceleration felt by nearby moons/
// spacecraft and a two-speed drift-correction pair for re-synchronizing
// with the heliocentric system.
type PlanetSubsystem struct {
	*nbody.ParticleSystem

	PlanetName      string
	planet          bodies.Body
	oblatenessRadiusM float64
}

// New builds a subsystem for the named planet, which must carry pole and
// J2 data in the bodies registry (spec §9's Open Question: these are
// supplied from IAU nominal constants). The planet itself is registered as
// a particle at the planetocentric origin with zero velocity.
func New(planetName string) (*PlanetSubsystem, error) {
	b, err := bodies.Lookup(planetName)
	if err != nil {
		return nil, err
	}
	ps := nbody.NewParticleSystem()
	ps.Add(nbody.Particle{Name: planetName, MassKg: b.MassKg})
	return &PlanetSubsystem{
		ParticleSystem:    ps,
		PlanetName:        planetName,
		planet:            b,
		oblatenessRadiusM: defaultOblatenessRadiusM,
	}, nil
}

// SetOblatenessRadius overrides the radius beyond which the J2 correction
// is dropped.
func (p *PlanetSubsystem) SetOblatenessRadius(radiusM float64) {
	p.oblatenessRadiusM = radiusM
}

// poleUnitVector returns the planet's rotation-axis unit vector in the
// inertial (ecliptic) frame, derived from its ICRF pole right ascension
// and declination.
func (p *PlanetSubsystem) poleUnitVector() [3]float64 {
	raRad := p.planet.PoleRADeg * math.Pi / 180.0
	decRad := p.planet.PoleDecDeg * math.Pi / 180.0
	cosDec := math.Cos(decRad)
	return coord.EquatorialToEcliptic(coord.New(
		cosDec*math.Cos(raRad),
		cosDec*math.Sin(raRad),
		math.Sin(decRad),
	)).Array()
}

// oblatenessAcceleration returns the J2 zonal-harmonic correction to the
// planet's gravitational acceleration on a particle at planetocentric
// position pos, evaluated in the planet's body-fixed pole frame and
// rotated into the inertial frame (spec §4.F). Returns the zero vector
// beyond the configured oblateness radius or when the planet carries no
// J2 data.
func (p *PlanetSubsystem) oblatenessAcceleration(pos [3]float64) [3]float64 {
	if p.planet.J2 == 0 {
		return [3]float64{}
	}
	r := math.Sqrt(pos[0]*pos[0] + pos[1]*pos[1] + pos[2]*pos[2])
	if r == 0 || r > p.oblatenessRadiusM {
		return [3]float64{}
	}
	pole := p.poleUnitVector()
	z := pos[0]*pole[0] + pos[1]*pole[1] + pos[2]*pole[2] // component along the polar axis
	re := p.planet.EquatorialRadiusM
	mu := p.planet.MuM3S2
	r2 := r * r
	z2 := z * z
	// Standard J2 acceleration, decomposed into a radial-like term (applied
	// along pos) and an axial term (applied along the pole), matching the
	// closed form:
	//   a = -1.5*J2*mu*re^2/r^5 * [ (1 - 5z^2/r^2)*pos + 2z*pole ]
	factor := -1.5 * p.planet.J2 * mu * re * re / (r2 * r2 * r)
	radialCoeff := factor * (1.0 - 5.0*z2/r2)
	axialCoeff := factor * 2.0 * z
	var a [3]float64
	for i := 0; i < 3; i++ {
		a[i] = radialCoeff*pos[i] + axialCoeff*pole[i]
	}
	return a
}

// AdvanceOblateRK4 advances the subsystem by dt (clamped internally to
// MaxSubStepSeconds sub-steps) using RK4 plus the J2 oblateness correction
// added on top of nbody's pairwise Newtonian acceleration. The planet
// particle itself is excluded from the correction (it does not act on
// itself).
func (p *PlanetSubsystem) AdvanceOblateRK4(dt float64) error {
	steps, subDt := splitStep(dt, MaxSubStepSeconds)
	for i := 0; i < steps; i++ {
		if err := p.oblateStep(subDt); err != nil {
			return err
		}
	}
	return nil
}

func splitStep(dt, maxAbsStep float64) (steps int, subDt float64) {
	if dt == 0 {
		return 0, 0
	}
	absDt := math.Abs(dt)
	steps = int(math.Ceil(absDt / maxAbsStep))
	if steps < 1 {
		steps = 1
	}
	subDt = dt / float64(steps)
	return steps, subDt
}

// oblateStep performs one nbody RK4 step and then adds the oblateness
// perturbation directly to each non-planet particle's velocity, a
// first-order operator-split approximation appropriate at the sub-10-
// minute step bound this subsystem uses.
func (p *PlanetSubsystem) oblateStep(dt float64) error {
	if err := p.AdvanceRK4(dt); err != nil {
		return err
	}
	for _, name := range p.Names() {
		if name == p.PlanetName {
			continue
		}
		particle, ok := p.Get(name)
		if !ok {
			continue
		}
		pos := particle.State.Pos.Array()
		a := p.oblatenessAcceleration(pos)
		if a == ([3]float64{}) {
			continue
		}
		st := particle.State
		st.Vel.X += a[0] * dt
		st.Vel.Y += a[1] * dt
		st.Vel.Z += a[2] * dt
		if !st.Vel.IsFinite() {
			return simerr.NewNumericalFailure("oblateness correction produced a non-finite velocity for "+name, nil)
		}
		p.SetState(name, st)
	}
	return nil
}

// CorrectDriftTo re-centers the subsystem so the planet sits at anchor
// (spec §4.F: "re-center the subsystem so that the planet lies at the
// anchor"), used before integration to re-synchronize with the
// heliocentric planet position.
func (p *PlanetSubsystem) CorrectDriftTo(anchor nbody.State) {
	planet, ok := p.Get(p.PlanetName)
	if !ok {
		return
	}
	offset := nbody.State{
		Pos: anchor.Pos.Sub(planet.State.Pos),
		Vel: anchor.Vel.Sub(planet.State.Vel),
	}
	for _, name := range p.Names() {
		particle, _ := p.Get(name)
		st := particle.State
		st.Pos = st.Pos.Add(offset.Pos)
		st.Vel = st.Vel.Add(offset.Vel)
		p.SetState(name, st)
	}
}

// CorrectDrift re-pins the subsystem's central body back to the local
// planetocentric origin after integration (spec §4.F's zero-argument
// form), subtracting the planet's current State from every particle.
func (p *PlanetSubsystem) CorrectDrift() {
	planet, ok := p.Get(p.PlanetName)
	if !ok {
		return
	}
	for _, name := range p.Names() {
		particle, _ := p.Get(name)
		st := particle.State
		st.Pos = st.Pos.Sub(planet.State.Pos)
		st.Vel = st.Vel.Sub(planet.State.Vel)
		p.SetState(name, st)
	}
}
