// Package orchestrator implements the solar-system orchestrator (spec
// §4.G, Component G): a heliocentric ParticleSystem, zero or more
// PlanetSubsystems keyed by planet name, a mapping of moons to their
// owning planet, a derived Earth-Moon barycenter, and the event schedule.
// It drives the six-step macro tick and the Unseeded -> Ready -> Advancing
// <-> EventPending -> Ready state machine.
package orchestrator

import (
	"github.com/anupshinde/solarcore/bodies"
	"github.com/anupshinde/solarcore/ephemeris"
	"github.com/anupshinde/solarcore/logging"
	"github.com/anupshinde/solarcore/nbody"
	"github.com/anupshinde/solarcore/planetsystem"
	"github.com/anupshinde/solarcore/schedule"
	"github.com/anupshinde/solarcore/simerr"
)

// Phase is one state of the orchestrator's state machine (spec §4.G's
// "State machine of the orchestrator").
type Phase int

const (
	PhaseUnseeded Phase = iota
	PhaseReady
	PhaseAdvancing
	PhaseEventPending
)

func (p Phase) String() string {
	switch p {
	case PhaseUnseeded:
		return "unseeded"
	case PhaseReady:
		return "ready"
	case PhaseAdvancing:
		return "advancing"
	case PhaseEventPending:
		return "event pending"
	default:
		return "unknown phase"
	}
}

// Trajectory is a pure function of time with a validity window (spec
// §4.G: "a Trajectory collaborator"), the sole abstraction the core
// consumes for spacecraft motion. Implementations are the out-of-scope
// collaborator the spec names; sgp4traj provides one grounded on SGP4.
type Trajectory interface {
	FirstValidInstant() float64
	LastValidInstant() float64
	State(instant float64) (nbody.State, error)
}

// TrajectoryFactory builds a Trajectory on demand. Registering factories
// by name (spec §9: "spacecraft factories become an extension point,
// register_trajectory(name, fn)") replaces a switch on spacecraft name
// with a typed lookup.
type TrajectoryFactory func() Trajectory

// SolarSystem is the orchestrator: one heliocentric ParticleSystem, a set
// of planet subsystems, the moon ownership map, the derived Earth-Moon
// barycenter, the event schedule, and the spacecraft trajectory
// registry.
type SolarSystem struct {
	Helio *nbody.ParticleSystem

	subsystems map[string]*planetsystem.PlanetSubsystem
	moonOwner  map[string]string // moon BodyId -> owning planet name

	EarthMoonBarycenter nbody.State

	schedule     *schedule.EventSchedule
	trajectories map[string]Trajectory
	factories    map[string]TrajectoryFactory

	source ephemeris.Source
	clock  float64
	phase  Phase

	log *logging.Logger
}

// New returns an orchestrator in phase Unseeded. source supplies initial
// and re-seeded states (spec §4.D); log may be logging.Discard() if the
// caller does not want diagnostics.
func New(source ephemeris.Source, log *logging.Logger) *SolarSystem {
	if log == nil {
		log = logging.Discard()
	}
	return &SolarSystem{
		Helio:        nbody.NewParticleSystem(),
		subsystems:   make(map[string]*planetsystem.PlanetSubsystem),
		moonOwner:    make(map[string]string),
		schedule:     schedule.New(),
		trajectories: make(map[string]Trajectory),
		factories:    make(map[string]TrajectoryFactory),
		source:       source,
		phase:        PhaseUnseeded,
		log:          log,
	}
}

// Phase returns the orchestrator's current state-machine phase.
func (s *SolarSystem) Phase() Phase { return s.phase }

// Clock returns the current simulation instant, seconds past J2000.
func (s *SolarSystem) Clock() float64 { return s.clock }

// Init seeds every planet-class body (heliocentric) and every moon-class
// body (into its planet's subsystem, planetocentric) from the ephemeris
// source at t0, recomputes the Earth-Moon barycenter, and transitions
// Unseeded -> Ready (spec §4.G: "init(t0) moves Unseeded -> Ready").
func (s *SolarSystem) Init(t0 float64) error {
	if err := s.seedAll(t0); err != nil {
		s.phase = PhaseUnseeded
		return err
	}
	s.clock = t0
	s.phase = PhaseReady
	s.log.Info("orchestrator initialized", logging.Instant(t0))
	return nil
}

// SetTime re-seeds every particle from the ephemeris source at t and
// invalidates ABM4 history throughout (spec §4.G). Valid from any phase
// except Unseeded.
func (s *SolarSystem) SetTime(t float64) error {
	if s.phase == PhaseUnseeded {
		return simerr.NewNumericalFailure("SetTime requires a prior Init", nil)
	}
	if err := s.seedAll(t); err != nil {
		s.phase = PhaseUnseeded
		return err
	}
	s.clock = t
	s.phase = PhaseReady
	s.log.Info("orchestrator re-seeded", logging.Instant(t))
	return nil
}

func (s *SolarSystem) seedAll(t float64) error {
	for _, id := range bodies.All() {
		b, err := bodies.Lookup(id)
		if err != nil {
			return err
		}
		if b.Class == bodies.MoonClass {
			continue
		}
		if err := s.seedHelioBody(id, b, t); err != nil {
			return err
		}
	}
	for _, id := range bodies.All() {
		b, err := bodies.Lookup(id)
		if err != nil {
			return err
		}
		if b.Class != bodies.MoonClass {
			continue
		}
		if err := s.seedMoon(id, b, t); err != nil {
			return err
		}
	}
	s.recomputeEMB()
	return nil
}

func (s *SolarSystem) seedHelioBody(id string, b bodies.Body, t float64) error {
	pos, vel, err := s.source.State(id, t)
	if err != nil {
		return err
	}
	s.Helio.Add(nbody.Particle{Name: id, MassKg: b.MassKg, State: nbody.State{Pos: pos, Vel: vel}})
	return nil
}

func (s *SolarSystem) seedMoon(id string, b bodies.Body, t float64) error {
	owner := b.CenterBodyId
	sub, ok := s.subsystems[owner]
	if !ok {
		var err error
		sub, err = planetsystem.New(owner)
		if err != nil {
			return err
		}
		s.subsystems[owner] = sub
	}
	pos, vel, err := s.source.State(id, t)
	if err != nil {
		return err
	}
	sub.Add(nbody.Particle{Name: id, MassKg: b.MassKg, State: nbody.State{Pos: pos, Vel: vel}})
	s.moonOwner[id] = owner
	return nil
}

// recomputeEMB sets EarthMoonBarycenter to Earth's current heliocentric
// State plus the Moon's planetocentric state scaled by
// mMoon/(mEarth+mMoon) (spec §9's Open Question, resolved: the state
// computed from Earth's registered elements, which are the Earth-Moon
// barycenter's, is used as Earth's own). Without an Earth subsystem
// holding the Moon, EarthMoonBarycenter is Earth's State unchanged.
func (s *SolarSystem) recomputeEMB() {
	earth, ok := s.Helio.Get("Earth")
	if !ok {
		return
	}
	s.EarthMoonBarycenter = earth.State
	sub, ok := s.subsystems["Earth"]
	if !ok {
		return
	}
	moon, ok := sub.Get("Moon")
	if !ok {
		return
	}
	earthMass, _ := bodies.Lookup("Earth")
	moonMass, _ := bodies.Lookup("Moon")
	total := earthMass.MassKg + moonMass.MassKg
	if total == 0 {
		return
	}
	frac := moonMass.MassKg / total
	s.EarthMoonBarycenter.Pos = earth.State.Pos.Add(moon.State.Pos.Scale(frac))
	s.EarthMoonBarycenter.Vel = earth.State.Vel.Add(moon.State.Vel.Scale(frac))
}

// Tick advances the simulation by dt seconds (negative dt integrates
// backward) through the six-step macro tick (spec §4.G):
//  1. anchor and advance every planet subsystem
//  2. advance the heliocentric system
//  3. correct heliocentric drift
//  4. recompute the Earth-Moon barycenter
//  5. advance the clock
//  6. apply the next scheduled event if its Instant has been reached
func (s *SolarSystem) Tick(dt float64) error {
	if s.phase == PhaseUnseeded {
		return simerr.NewNumericalFailure("Tick requires a prior Init", nil)
	}
	s.phase = PhaseAdvancing

	for planetName, sub := range s.subsystems {
		planet, ok := s.Helio.Get(planetName)
		if !ok {
			continue
		}
		sub.CorrectDriftTo(planet.State)
		if err := sub.AdvanceOblateRK4(dt); err != nil {
			s.phase = PhaseUnseeded
			return err
		}
		sub.CorrectDrift()
	}

	if err := s.advanceHelio(dt); err != nil {
		s.phase = PhaseUnseeded
		return err
	}

	s.Helio.CorrectDrift()
	s.recomputeEMB()
	s.clock += dt

	if e, ok := s.schedule.Peek(); ok && eventDue(e.Instant, s.clock, dt) {
		s.phase = PhaseEventPending
		s.Helio.SetState(e.BodyId, e.State)
		s.schedule.Next()
		s.log.Info("applied scheduled event", logging.Body(e.BodyId), logging.Instant(e.Instant))
	}

	s.phase = PhaseReady
	return nil
}

// eventDue reports whether an event at instant has been reached by clock,
// honoring the direction of travel so a reversed (negative dt) tick still
// fires events in the correct sense.
func eventDue(instant, clock, dt float64) bool {
	if dt >= 0 {
		return instant <= clock
	}
	return instant >= clock
}

func (s *SolarSystem) advanceHelio(dt float64) error {
	if s.Helio.IncludePostNewtonian {
		return s.Helio.AdvanceRK4(dt)
	}
	half := dt / 2
	if err := s.Helio.AdvanceABM4(half); err != nil {
		return err
	}
	return s.Helio.AdvanceABM4(half)
}

// AddSpacecraft registers a massless particle named name, driven by traj,
// into the heliocentric system at the orchestrator's current clock (spec
// §4.G: "add_spacecraft(trajectory)").
func (s *SolarSystem) AddSpacecraft(name string, traj Trajectory) error {
	if s.clock < traj.FirstValidInstant() || s.clock > traj.LastValidInstant() {
		return simerr.NewOutOfRange(name, s.clock, "trajectory does not cover the current instant")
	}
	st, err := traj.State(s.clock)
	if err != nil {
		return err
	}
	s.Helio.Add(nbody.Particle{Name: name, MassKg: 0, State: st})
	s.trajectories[name] = traj
	return nil
}

// RegisterTrajectoryFactory adds name to the named-factory registry (spec
// §9's extension point), letting callers construct spacecraft by name
// instead of switching on it.
func (s *SolarSystem) RegisterTrajectoryFactory(name string, f TrajectoryFactory) {
	s.factories[name] = f
}

// AddSpacecraftByFactory builds a Trajectory via the named factory and
// adds it under craftName.
func (s *SolarSystem) AddSpacecraftByFactory(factoryName, craftName string) error {
	f, ok := s.factories[factoryName]
	if !ok {
		return simerr.NewUnknownBody(factoryName)
	}
	return s.AddSpacecraft(craftName, f())
}

// RemoveSpacecraft removes the named particle and prunes its unconsumed
// scheduled events (spec §4.G).
func (s *SolarSystem) RemoveSpacecraft(name string) {
	s.Helio.Remove(name)
	delete(s.trajectories, name)
	s.schedule.RemoveBody(name)
}

// Schedule returns the orchestrator's event schedule, for callers that
// need to add or inspect scheduled state overrides directly.
func (s *SolarSystem) Schedule() *schedule.EventSchedule { return s.schedule }

// Subsystem returns the planet subsystem owning planetName, if any.
func (s *SolarSystem) Subsystem(planetName string) (*planetsystem.PlanetSubsystem, bool) {
	sub, ok := s.subsystems[planetName]
	return sub, ok
}

// OwnerOf returns the planet name owning moon bodyId, if bodyId is a
// registered moon with a subsystem.
func (s *SolarSystem) OwnerOf(bodyId string) (string, bool) {
	owner, ok := s.moonOwner[bodyId]
	return owner, ok
}
