package kepler

import (
	"math"
	"testing"
)

const j2000 = 2451545.0

const gmSun = 1.32712440018e20 // m^3/s^2

// Ceres orbital elements (MPC, J2000 ecliptic)
var ceresOrbit = Elements{
	SemiMajorAxisAU: 2.7670463,
	Eccentricity:    0.0785115,
	InclinationDeg:  10.5868,
	LongAscNodeDeg:  80.3055,
	ArgPeriapsisDeg: 73.5977,
	MeanAnomalyDeg:  77.372,
	EpochJD:         j2000,
}

// Halley's Comet orbital elements (ecliptic J2000)
var halleyOrbit = Elements{
	PerihelionAU:    0.586,
	Eccentricity:    0.9671,
	InclinationDeg:  162.26,
	LongAscNodeDeg:  58.42,
	ArgPeriapsisDeg: 111.33,
	PeriapsisTimeJD: 2446467.395, // 1986-02-09
}

func dist(v [3]float64) float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

func TestCircularAtEpoch(t *testing.T) {
	el := Elements{SemiMajorAxisAU: 1.0, EpochJD: j2000}
	pos, _, err := StateAt(el, "", gmSun, j2000, NewtonRaphson)
	if err != nil {
		t.Fatal(err)
	}
	if d := dist(pos) / AUMeters; math.Abs(d-1.0) > 1e-9 {
		t.Errorf("circular orbit distance = %.10f AU, want 1.0", d)
	}
}

func TestEllipticPerihelionAphelion(t *testing.T) {
	el := Elements{SemiMajorAxisAU: 2.0, Eccentricity: 0.5, EpochJD: j2000}
	pos, _, err := StateAt(el, "", gmSun, j2000, NewtonRaphson)
	if err != nil {
		t.Fatal(err)
	}
	if d := dist(pos) / AUMeters; math.Abs(d-1.0) > 1e-9 {
		t.Errorf("perihelion distance = %.10f AU, want 1.0", d)
	}

	el.MeanAnomalyDeg = 180.0
	pos2, _, err := StateAt(el, "", gmSun, j2000, NewtonRaphson)
	if err != nil {
		t.Fatal(err)
	}
	if d := dist(pos2) / AUMeters; math.Abs(d-3.0) > 1e-9 {
		t.Errorf("aphelion distance = %.10f AU, want 3.0", d)
	}
}

func TestParabolicBarker(t *testing.T) {
	el := Elements{PerihelionAU: 1.0, Eccentricity: 1.0, PeriapsisTimeJD: j2000}
	pos, _, err := StateAt(el, "", gmSun, j2000, NewtonRaphson)
	if err != nil {
		t.Fatal(err)
	}
	if d := dist(pos) / AUMeters; math.Abs(d-1.0) > 1e-8 {
		t.Errorf("parabolic periapsis distance = %.10f AU, want 1.0", d)
	}
	pos2, _, _ := StateAt(el, "", gmSun, j2000+100, NewtonRaphson)
	if dist(pos2) <= dist(pos) {
		t.Error("parabolic distance did not increase with time")
	}
}

func TestHyperbolicPeriapsis(t *testing.T) {
	el := Elements{PerihelionAU: 1.0, Eccentricity: 1.5, PeriapsisTimeJD: j2000}
	pos, _, err := StateAt(el, "", gmSun, j2000, NewtonRaphson)
	if err != nil {
		t.Fatal(err)
	}
	if d := dist(pos) / AUMeters; math.Abs(d-1.0) > 1e-6 {
		t.Errorf("hyperbolic periapsis distance = %.10f AU, want 1.0", d)
	}
}

func TestHalleyPeriapsisDistance(t *testing.T) {
	pos, _, err := StateAt(halleyOrbit, "", gmSun, halleyOrbit.PeriapsisTimeJD, NewtonRaphson)
	if err != nil {
		t.Fatal(err)
	}
	if d := dist(pos) / AUMeters; math.Abs(d-halleyOrbit.PerihelionAU) > 0.001 {
		t.Errorf("Halley perihelion distance = %.6f AU, want %.6f", d, halleyOrbit.PerihelionAU)
	}
}

func TestCeresPeriodicity(t *testing.T) {
	n := math.Sqrt(gmSun / math.Pow(ceresOrbit.SemiMajorAxisAU*AUMeters, 3))
	period := twoPi / n / secPerDay // days

	pos0, _, _ := StateAt(ceresOrbit, "", gmSun, j2000, NewtonRaphson)
	pos1, _, _ := StateAt(ceresOrbit, "", gmSun, j2000+period, NewtonRaphson)
	for i := 0; i < 3; i++ {
		if math.Abs(pos0[i]-pos1[i]) > 1e4 {
			t.Errorf("axis %d: pos0=%.2f pos1=%.2f diff=%.2e m", i, pos0[i], pos1[i], pos0[i]-pos1[i])
		}
	}
}

// TestSolverAgreement is invariant 2 (spec §8): all three solvers agree
// within their stated tolerances for M in [0,360) and e in [0, 0.999).
func TestSolverAgreement(t *testing.T) {
	eccentricities := []float64{0, 0.1, 0.3, 0.5, 0.7, 0.9, 0.99, 0.999}
	for _, e := range eccentricities {
		for degM := 0.0; degM < 360.0; degM += 17.0 {
			M := degM * deg2rad
			eFP, err := Solve(M, e, FixedPoint)
			if err != nil {
				t.Fatalf("FixedPoint(M=%v,e=%v): %v", degM, e, err)
			}
			eNR, err := Solve(M, e, NewtonRaphson)
			if err != nil {
				t.Fatalf("NewtonRaphson(M=%v,e=%v): %v", degM, e, err)
			}
			eHal, err := Solve(M, e, Halley)
			if err != nil {
				t.Fatalf("Halley(M=%v,e=%v): %v", degM, e, err)
			}
			if math.Abs(eFP-eNR) > 1e-6 {
				t.Errorf("e=%v M=%v: FixedPoint/NewtonRaphson disagree by %e", e, degM, eFP-eNR)
			}
			if math.Abs(eNR-eHal) > 1e-12 {
				t.Errorf("e=%v M=%v: NewtonRaphson/Halley disagree by %e", e, degM, eNR-eHal)
			}
		}
	}
}

// TestKeplerRoundTrip is invariant 1 (spec §8): elements -> state -> elements
// reproduces a (relative) and e within 1e-8 and i within 1e-6 deg, for e in
// [0, 0.95].
func TestKeplerRoundTrip(t *testing.T) {
	cases := []Elements{
		{SemiMajorAxisAU: 1.0, Eccentricity: 0.0, InclinationDeg: 0, LongAscNodeDeg: 0, ArgPeriapsisDeg: 0, MeanAnomalyDeg: 45, EpochJD: j2000},
		{SemiMajorAxisAU: 1.5, Eccentricity: 0.3, InclinationDeg: 15, LongAscNodeDeg: 40, ArgPeriapsisDeg: 80, MeanAnomalyDeg: 200, EpochJD: j2000},
		{SemiMajorAxisAU: 5.2, Eccentricity: 0.05, InclinationDeg: 1.3, LongAscNodeDeg: 100, ArgPeriapsisDeg: 14, MeanAnomalyDeg: 10, EpochJD: j2000},
		{SemiMajorAxisAU: 2.77, Eccentricity: 0.95, InclinationDeg: 170, LongAscNodeDeg: 300, ArgPeriapsisDeg: 10, MeanAnomalyDeg: 300, EpochJD: j2000},
		{SemiMajorAxisAU: 3.0, Eccentricity: 0.0001, InclinationDeg: 0.0001, LongAscNodeDeg: 50, ArgPeriapsisDeg: 0, MeanAnomalyDeg: 90, EpochJD: j2000},
	}
	for i, el := range cases {
		pos, vel, err := StateAt(el, "", gmSun, j2000, NewtonRaphson)
		if err != nil {
			t.Fatalf("case %d: StateAt: %v", i, err)
		}
		got := StateToElements(pos, vel, gmSun)
		if math.Abs(got.SemiMajorAxisAU-el.SemiMajorAxisAU) > 1e-8*el.SemiMajorAxisAU {
			t.Errorf("case %d: a got %.12f want %.12f", i, got.SemiMajorAxisAU, el.SemiMajorAxisAU)
		}
		if math.Abs(got.Eccentricity-el.Eccentricity) > 1e-8 {
			t.Errorf("case %d: e got %.12f want %.12f", i, got.Eccentricity, el.Eccentricity)
		}
		if math.Abs(got.InclinationDeg-el.InclinationDeg) > 1e-6 {
			t.Errorf("case %d: i got %.8f want %.8f", i, got.InclinationDeg, el.InclinationDeg)
		}
	}
}

func TestOuterPlanetGating(t *testing.T) {
	if !NeedsLongForm("Jupiter") || !NeedsLongForm("Pluto") {
		t.Error("expected Jupiter and Pluto to need the long-form correction")
	}
	if NeedsLongForm("Earth") || NeedsLongForm("Mercury") || NeedsLongForm("Halley") {
		t.Error("expected inner planets and small bodies to not need the long-form correction")
	}
}

func TestAugmentedMeanAnomaly_NoOpWhenZero(t *testing.T) {
	got := AugmentedMeanAnomalyDeg(123.45, 2.5, 0, 0, 0, 0)
	if got != 123.45 {
		t.Errorf("expected no-op augmentation, got %v", got)
	}
}

func TestSampleOrbit_PointCount(t *testing.T) {
	pts := SampleOrbit(ceresOrbit, 360)
	if len(pts) != 360 {
		t.Fatalf("expected 360 points, got %d", len(pts))
	}
	for _, p := range pts {
		d := dist(p) / AUMeters
		q := ceresOrbit.SemiMajorAxisAU * (1 - ceresOrbit.Eccentricity)
		Q := ceresOrbit.SemiMajorAxisAU * (1 + ceresOrbit.Eccentricity)
		if d < q-1e-6 || d > Q+1e-6 {
			t.Errorf("sample point distance %.6f AU outside [%.6f,%.6f]", d, q, Q)
		}
	}
}

func TestSampleOrbit_ClampsSmallN(t *testing.T) {
	pts := SampleOrbit(ceresOrbit, 1)
	if len(pts) != 3 {
		t.Errorf("expected clamp to 3 points, got %d", len(pts))
	}
}
