package planetsystem

import (
	"math"
	"testing"

	"github.com/anupshinde/solarcore/bodies"
	"github.com/anupshinde/solarcore/coord"
	"github.com/anupshinde/solarcore/nbody"
)

func TestNew_UnknownPlanet(t *testing.T) {
	if _, err := New("Vulcan"); err == nil {
		t.Fatal("expected an error for an unregistered planet")
	}
}

func TestNew_RegistersPlanetAtOrigin(t *testing.T) {
	ps, err := New("Earth")
	if err != nil {
		t.Fatal(err)
	}
	earth, ok := ps.Get("Earth")
	if !ok {
		t.Fatal("expected the planet itself to be registered as a particle")
	}
	if earth.State.Pos != coord.Zero {
		t.Errorf("expected planet at planetocentric origin, got %v", earth.State.Pos)
	}
}

func moonLikeMoon(earthMu float64, radiusM float64) nbody.Particle {
	v := math.Sqrt(earthMu / radiusM)
	return nbody.Particle{
		Name:   "Satellite",
		MassKg: 0,
		State: nbody.State{
			Pos: coord.New(radiusM, 0, 0),
			Vel: coord.New(0, v, 0),
		},
	}
}

func TestOblatenessAcceleration_ZeroBeyondRadius(t *testing.T) {
	ps, err := New("Earth")
	if err != nil {
		t.Fatal(err)
	}
	ps.SetOblatenessRadius(1e7)
	far := ps.oblatenessAcceleration([3]float64{2e7, 0, 0})
	if far != ([3]float64{}) {
		t.Errorf("expected zero oblateness correction beyond the configured radius, got %v", far)
	}
}

func TestOblatenessAcceleration_NonzeroInsideRadius(t *testing.T) {
	ps, err := New("Earth")
	if err != nil {
		t.Fatal(err)
	}
	earthRadius := bodies.MustLookup("Earth").EquatorialRadiusM
	near := ps.oblatenessAcceleration([3]float64{earthRadius * 3, 0, 0})
	if near == ([3]float64{}) {
		t.Error("expected a nonzero oblateness correction close to the planet")
	}
}

func TestAdvanceOblateRK4_SatelliteStaysBound(t *testing.T) {
	ps, err := New("Earth")
	if err != nil {
		t.Fatal(err)
	}
	earthMu := bodies.MustLookup("Earth").MuM3S2
	orbitRadius := 4.2e7 // roughly geostationary orbit radius from Earth's center, meters
	ps.Add(moonLikeMoon(earthMu, orbitRadius))

	period := 2 * math.Pi * math.Sqrt(orbitRadius*orbitRadius*orbitRadius/earthMu)
	steps := 50
	dt := period / float64(steps)
	for i := 0; i < steps; i++ {
		if err := ps.AdvanceOblateRK4(dt); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	sat, _ := ps.Get("Satellite")
	r := sat.State.Pos.Norm()
	if math.Abs(r-orbitRadius) > orbitRadius*0.05 {
		t.Errorf("satellite drifted too far from its starting radius: got %.3e, want ~%.3e", r, orbitRadius)
	}
}

func TestAdvanceOblateRK4_SplitsOversizedSteps(t *testing.T) {
	steps, subDt := splitStep(3600, MaxSubStepSeconds)
	if steps != 6 {
		t.Errorf("expected 3600s split into 6 sub-steps of %.0fs, got %d steps", MaxSubStepSeconds, steps)
	}
	if math.Abs(subDt*float64(steps)-3600) > 1e-9 {
		t.Errorf("sub-steps do not sum to the requested duration: %v * %v", subDt, steps)
	}
}

func TestCorrectDriftTo_MovesPlanetToAnchor(t *testing.T) {
	ps, err := New("Earth")
	if err != nil {
		t.Fatal(err)
	}
	ps.Add(moonLikeMoon(bodies.MustLookup("Earth").MuM3S2, 4e8))
	anchor := nbody.State{Pos: coord.New(1.5e11, 0, 0), Vel: coord.New(0, 3e4, 0)}
	ps.CorrectDriftTo(anchor)

	earth, _ := ps.Get("Earth")
	if earth.State.Pos.Distance(anchor.Pos) > 1e-6 {
		t.Errorf("expected planet repositioned to anchor, got %v want %v", earth.State.Pos, anchor.Pos)
	}
	sat, _ := ps.Get("Satellite")
	wantSatX := anchor.Pos.X + 4e8
	if math.Abs(sat.State.Pos.X-wantSatX) > 1e-6 {
		t.Errorf("satellite offset not preserved: got %v want %v", sat.State.Pos.X, wantSatX)
	}
}

func TestCorrectDrift_RepinsPlanetToLocalOrigin(t *testing.T) {
	ps, err := New("Earth")
	if err != nil {
		t.Fatal(err)
	}
	ps.CorrectDriftTo(nbody.State{Pos: coord.New(1.5e11, 0, 0), Vel: coord.New(0, 3e4, 0)})
	ps.CorrectDrift()
	earth, _ := ps.Get("Earth")
	if earth.State.Pos != coord.Zero {
		t.Errorf("expected planet re-pinned to planetocentric origin, got %v", earth.State.Pos)
	}
}
