// Package nbody implements the particle-system inner core (spec §4.E):
// Newtonian and post-Newtonian gravitational acceleration over a named set
// of particles, RK4 single-step integration, and ABM4 four-step
// predictor-corrector integration with automatic RK4 bootstrap.
package nbody

import (
	"github.com/anupshinde/solarcore/coord"
	"github.com/anupshinde/solarcore/simerr"
)

// SpeedOfLightMPS is c, used by the post-Newtonian correction term.
const SpeedOfLightMPS = 299792458.0

// State is a particle's position and velocity, both in meters / meters per
// second, in whatever inertial frame the owning ParticleSystem is anchored
// to.
type State struct {
	Pos coord.Vector3D
	Vel coord.Vector3D
}

// Add returns the component-wise sum of two states (used to combine a
// state with a scaled derivative).
func (s State) Add(other State) State {
	return State{Pos: s.Pos.Add(other.Pos), Vel: s.Vel.Add(other.Vel)}
}

// Scale returns every component of s scaled by f.
func (s State) Scale(f float64) State {
	return State{Pos: s.Pos.Scale(f), Vel: s.Vel.Scale(f)}
}

// abm4History is the cyclic 4-sample buffer ABM4 needs per particle: the
// state derivative (Pos=velocity, Vel=acceleration) at each of the last
// four accepted steps, so both position and velocity integrate at full
// fourth order.
type abm4History struct {
	deriv [4]State
	n     int // number of valid samples accumulated (caps at 4)
	next  int // next slot to overwrite, cycling 0..3
}

func (h *abm4History) push(d State) {
	h.deriv[h.next] = d
	h.next = (h.next + 1) % 4
	if h.n < 4 {
		h.n++
	}
}

// ordered returns the four derivative samples oldest-to-newest. Only valid
// once n == 4.
func (h *abm4History) ordered() [4]State {
	var d [4]State
	for i := 0; i < 4; i++ {
		d[i] = h.deriv[(h.next+i)%4]
	}
	return d
}

func (h *abm4History) reset() { *h = abm4History{} }

// Particle is one body in a ParticleSystem: a name, a mass (zero for
// massless test particles, per spec §4.E), and its current state.
type Particle struct {
	Name   string
	MassKg float64 // MuM3S2 = GravitationalConstant*MassKg; zero means massless
	State  State

	history abm4History
}

// MuM3S2 returns the particle's standard gravitational parameter, zero for
// massless particles.
func (p *Particle) MuM3S2() float64 {
	return gravitationalConstant * p.MassKg
}

const gravitationalConstant = 6.6743e-11

// ParticleSystem is a mapping BodyId -> Particle plus the global
// IncludePostNewtonian flag (spec §4.E). Particles are stored in an arena
// (slice) indexed by name through a lookup map, replacing cyclic
// name-in-a-map-of-maps references with arena-and-index storage per the
// spec's Design Notes.
type ParticleSystem struct {
	particles []Particle
	index     map[string]int

	// IncludePostNewtonian gates the first-order Schwarzschild-style
	// correction in Acceleration.
	IncludePostNewtonian bool

	validABM4   bool
	bootstrap   int // remaining RK4 bootstrap sub-steps before resuming ABM4
	lastDt      float64
	lastForward bool
}

// NewParticleSystem returns an empty system.
func NewParticleSystem() *ParticleSystem {
	return &ParticleSystem{index: make(map[string]int)}
}

// Add registers a new particle, invalidating ABM4 history (spec §4.E:
// "particles are added/removed" invalidates validABM4).
func (s *ParticleSystem) Add(p Particle) {
	if _, exists := s.index[p.Name]; exists {
		s.particles[s.index[p.Name]] = p
	} else {
		s.index[p.Name] = len(s.particles)
		s.particles = append(s.particles, p)
	}
	s.invalidate()
}

// Remove deletes the named particle, invalidating ABM4 history.
func (s *ParticleSystem) Remove(name string) {
	i, ok := s.index[name]
	if !ok {
		return
	}
	last := len(s.particles) - 1
	s.particles[i] = s.particles[last]
	s.index[s.particles[i].Name] = i
	s.particles = s.particles[:last]
	delete(s.index, name)
	s.invalidate()
}

// Get returns the named particle and whether it exists.
func (s *ParticleSystem) Get(name string) (Particle, bool) {
	i, ok := s.index[name]
	if !ok {
		return Particle{}, false
	}
	return s.particles[i], true
}

// SetState overwrites the named particle's State directly (an external
// override), invalidating ABM4 history per spec §4.E.
func (s *ParticleSystem) SetState(name string, st State) bool {
	i, ok := s.index[name]
	if !ok {
		return false
	}
	s.particles[i].State = st
	s.invalidate()
	return true
}

// Names returns every particle's name, in arena order.
func (s *ParticleSystem) Names() []string {
	out := make([]string, len(s.particles))
	for i, p := range s.particles {
		out[i] = p.Name
	}
	return out
}

func (s *ParticleSystem) invalidate() {
	s.validABM4 = false
	s.bootstrap = 4
	for i := range s.particles {
		s.particles[i].history.reset()
	}
}

// SetIncludePostNewtonian flips the relativistic-correction flag,
// invalidating ABM4 history (spec §4.E: "the post-Newtonian flag flips").
func (s *ParticleSystem) SetIncludePostNewtonian(v bool) {
	if v == s.IncludePostNewtonian {
		return
	}
	s.IncludePostNewtonian = v
	s.invalidate()
}

// mostMassive returns the index of the particle with the greatest mass,
// the body the post-Newtonian correction treats as the relativistic source
// (spec §4.E: "for particles influenced by the most massive body").
func (s *ParticleSystem) mostMassive() int {
	best := -1
	for i, p := range s.particles {
		if p.MassKg <= 0 {
			continue
		}
		if best == -1 || p.MassKg > s.particles[best].MassKg {
			best = i
		}
	}
	return best
}

// Acceleration computes, for every particle, the Newtonian gravitational
// acceleration summed over every other massive particle (self-interaction
// skipped by identity, not distance), plus (when IncludePostNewtonian) a
// first-order Schwarzschild correction relative to the most massive body.
// Massless particles (MassKg == 0) are omitted from the summation as
// sources but still receive an acceleration as targets.
func (s *ParticleSystem) Acceleration(states []State) ([]coord.Vector3D, error) {
	n := len(s.particles)
	acc := make([]coord.Vector3D, n)
	source := s.mostMassive()

	for i := 0; i < n; i++ {
		var a coord.Vector3D
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			if s.particles[j].MassKg <= 0 {
				continue
			}
			a = a.Add(newtonianTerm(states[i].Pos, states[j].Pos, s.particles[j].MuM3S2()))
		}
		if s.IncludePostNewtonian && source != -1 && source != i {
			a = a.Add(postNewtonianTerm(states[i], states[source], s.particles[source].MuM3S2()))
		}
		if !a.IsFinite() {
			return nil, simerr.NewNumericalFailure("non-finite acceleration for "+s.particles[i].Name, nil)
		}
		acc[i] = a
	}
	return acc, nil
}

// newtonianTerm returns μ_j(r_j - r_i)/|r_j - r_i|^3, the acceleration on a
// particle at posI due to a mass muJ at posJ.
func newtonianTerm(posI, posJ coord.Vector3D, muJ float64) coord.Vector3D {
	d := posJ.Sub(posI)
	r := d.Norm()
	if r == 0 {
		return coord.Zero
	}
	return d.Scale(muJ / (r * r * r))
}

// postNewtonianTerm is the first-order (1PN) Schwarzschild-style
// correction on a particle relative to the source particle:
//
//	a = (mu/r^2/c^2) * [(4*mu/r - v^2)*rHat + 4*(rHat.v)*v]
//
// the standard isotropic-PPN two-body approximation used by solar-system
// integrators to reproduce relativistic perihelion precession.
func postNewtonianTerm(target, source State, muSource float64) coord.Vector3D {
	c2 := SpeedOfLightMPS * SpeedOfLightMPS
	d := target.Pos.Sub(source.Pos)
	r := d.Norm()
	if r == 0 {
		return coord.Zero
	}
	rHat := d.Scale(1.0 / r)
	v := target.Vel.Sub(source.Vel)
	v2 := v.Dot(v)
	rdotv := rHat.Dot(v)

	scalar := (4.0*muSource/r - v2)
	return rHat.Scale(scalar).Add(v.Scale(4.0 * rdotv)).Scale(muSource / (r * r * c2))
}

func (s *ParticleSystem) states() []State {
	out := make([]State, len(s.particles))
	for i, p := range s.particles {
		out[i] = p.State
	}
	return out
}

func derivative(states []State, acc []coord.Vector3D) []State {
	out := make([]State, len(states))
	for i, st := range states {
		out[i] = State{Pos: st.Vel, Vel: acc[i]}
	}
	return out
}

func addScaled(a, b []State, scale float64) []State {
	out := make([]State, len(a))
	for i := range a {
		out[i] = State{
			Pos: a[i].Pos.Add(b[i].Pos.Scale(scale)),
			Vel: a[i].Vel.Add(b[i].Vel.Scale(scale)),
		}
	}
	return out
}

func statesFinite(states []State) bool {
	for _, st := range states {
		if !st.Pos.IsFinite() || !st.Vel.IsFinite() {
			return false
		}
	}
	return true
}

// AdvanceRK4 advances every particle by dt (which may be negative, for
// reverse integration) using classical fourth-order Runge-Kutta. The result
// of a step does not depend on the ABM4 history, but each committed step
// records its starting derivative there, which AdvanceABM4 uses to
// bootstrap. The step is
// transactional: on NumericalFailure the system is left bitwise unchanged.
func (s *ParticleSystem) AdvanceRK4(dt float64) error {
	s0 := s.states()

	a0, err := s.Acceleration(s0)
	if err != nil {
		return err
	}
	k1 := derivative(s0, a0)

	s1 := addScaled(s0, k1, dt/2)
	a1, err := s.Acceleration(s1)
	if err != nil {
		return err
	}
	k2 := derivative(s1, a1)

	s2 := addScaled(s0, k2, dt/2)
	a2, err := s.Acceleration(s2)
	if err != nil {
		return err
	}
	k3 := derivative(s2, a2)

	s3 := addScaled(s0, k3, dt)
	a3, err := s.Acceleration(s3)
	if err != nil {
		return err
	}
	k4 := derivative(s3, a3)

	next := make([]State, len(s0))
	for i := range s0 {
		next[i] = State{
			Pos: s0[i].Pos.Add(k1[i].Pos.Add(k2[i].Pos.Scale(2)).Add(k3[i].Pos.Scale(2)).Add(k4[i].Pos).Scale(dt / 6)),
			Vel: s0[i].Vel.Add(k1[i].Vel.Add(k2[i].Vel.Scale(2)).Add(k3[i].Vel.Scale(2)).Add(k4[i].Vel).Scale(dt / 6)),
		}
	}
	if !statesFinite(next) {
		return simerr.NewNumericalFailure("RK4 step produced a non-finite state", nil)
	}
	s.commit(next, k1)
	return nil
}

// AdvanceABM4 advances every particle by dt using the four-step
// Adams-Bashforth predictor / Adams-Moulton corrector scheme. When the
// ABM4 history is invalid (just invalidated, or direction reversed from
// the prior call), it transparently bootstraps via AdvanceRK4 for four
// sub-steps before resuming ABM4, per spec §4.E.
func (s *ParticleSystem) AdvanceABM4(dt float64) error {
	forward := dt >= 0
	if s.lastDt != 0 && forward != s.lastForward {
		s.invalidate()
	}
	s.lastDt = dt
	s.lastForward = forward

	if !s.validABM4 {
		if err := s.AdvanceRK4(dt); err != nil {
			return err
		}
		s.bootstrap--
		if s.bootstrap <= 0 {
			s.validABM4 = allHistoriesFull(s.particles)
		}
		return nil
	}

	s0 := s.states()
	// hist[i] holds the three most recent accepted-step derivatives
	// f_{k-3}, f_{k-2}, f_{k-1} (oldest to newest); the current-point
	// derivative f_k is computed fresh below, since it depends on s0.
	hist := make([][4]State, len(s.particles))
	for i := range s.particles {
		hist[i] = s.particles[i].history.ordered()
	}

	a0, err := s.Acceleration(s0)
	if err != nil {
		return err
	}
	fk := derivative(s0, a0)

	// Adams-Bashforth 4th-order predictor over the full (position,
	// velocity) derivative: s_{k+1} = s_k + dt*(55/24 f_k - 59/24 f_{k-1}
	// + 37/24 f_{k-2} - 9/24 f_{k-3}).
	predicted := make([]State, len(s0))
	for i := range s0 {
		step := fk[i].Scale(55.0 / 24.0).Add(hist[i][3].Scale(-59.0 / 24.0)).
			Add(hist[i][2].Scale(37.0 / 24.0)).Add(hist[i][1].Scale(-9.0 / 24.0)).Scale(dt)
		predicted[i] = s0[i].Add(step)
	}

	aPred, err := s.Acceleration(predicted)
	if err != nil {
		return err
	}
	predDeriv := derivative(predicted, aPred)

	// Adams-Moulton 4th-order corrector: s_{k+1} = s_k + dt*(9/24 f_{k+1}
	// + 19/24 f_k - 5/24 f_{k-1} + 1/24 f_{k-2}).
	corrected := make([]State, len(s0))
	for i := range s0 {
		step := predDeriv[i].Scale(9.0 / 24.0).Add(fk[i].Scale(19.0 / 24.0)).
			Add(hist[i][3].Scale(-5.0 / 24.0)).Add(hist[i][2].Scale(1.0 / 24.0)).Scale(dt)
		corrected[i] = s0[i].Add(step)
	}
	if !statesFinite(corrected) {
		return simerr.NewNumericalFailure("ABM4 step produced a non-finite state", nil)
	}

	s.commit(corrected, fk)
	return nil
}

func allHistoriesFull(ps []Particle) bool {
	for _, p := range ps {
		if p.history.n < 4 {
			return false
		}
	}
	return true
}

// commit writes next into every particle's State and pushes the
// just-used derivative (the one evaluated at the pre-step state) into the
// ABM4 history.
func (s *ParticleSystem) commit(next []State, deriv []State) {
	for i := range s.particles {
		s.particles[i].State = next[i]
		s.particles[i].history.push(deriv[i])
	}
}

// CorrectDrift re-anchors the system's frame after a macro-step (spec
// §4.E): if a particle named "Sun" exists, every particle's State is
// offset so the Sun sits at the origin with zero velocity; otherwise the
// mass-weighted center-of-mass State is subtracted instead. A no-op on an
// empty system.
func (s *ParticleSystem) CorrectDrift() {
	if len(s.particles) == 0 {
		return
	}
	var anchor State
	if i, ok := s.index["Sun"]; ok {
		anchor = s.particles[i].State
	} else {
		anchor = s.centerOfMass()
	}
	for i := range s.particles {
		s.particles[i].State.Pos = s.particles[i].State.Pos.Sub(anchor.Pos)
		s.particles[i].State.Vel = s.particles[i].State.Vel.Sub(anchor.Vel)
	}
}

// centerOfMass returns the mass-weighted State of the system. Massless
// particles contribute neither mass nor position/velocity weight.
func (s *ParticleSystem) centerOfMass() State {
	var totalMass float64
	var pos, vel coord.Vector3D
	for _, p := range s.particles {
		if p.MassKg <= 0 {
			continue
		}
		totalMass += p.MassKg
		pos = pos.Add(p.State.Pos.Scale(p.MassKg))
		vel = vel.Add(p.State.Vel.Scale(p.MassKg))
	}
	if totalMass == 0 {
		return State{}
	}
	return State{Pos: pos.Scale(1 / totalMass), Vel: vel.Scale(1 / totalMass)}
}
