// Package bodies is the process-wide, read-only, lazily-initialized
// parameter registry: for each BodyId, its mass, gravitational parameter μ,
// diameter, class (planet vs moon), center-body association for moons, and
// — where applicable — the long-form Keplerian element set the
// approximate-Keplerian ephemeris source needs. It also carries the
// astronomical unit and speed of light as named constants, and IAU pole
// orientation / J2 oblateness coefficients used by planetsystem.
package bodies

import (
	"sync"

	"github.com/anupshinde/solarcore/kepler"
	"github.com/anupshinde/solarcore/lunarnodes"
	"github.com/anupshinde/solarcore/simerr"
)

// AUMeters is the IAU astronomical unit in meters.
const AUMeters = 149597870700.0

// SpeedOfLightMPS is the speed of light in meters per second (exact, SI).
const SpeedOfLightMPS = 299792458.0

// GravitationalConstant is G in m^3 kg^-1 s^-2 (CODATA).
const GravitationalConstant = 6.6743e-11

// Class distinguishes planet-class bodies (shown in heliocentric orbit)
// from moon-class bodies (carry a center-body association).
type Class int

const (
	// PlanetClass bodies orbit the Sun directly (including the Sun itself
	// and minor planets/comets).
	PlanetClass Class = iota
	// MoonClass bodies orbit a planet and are expressed relative to it.
	MoonClass
)

// Body is one entry of the registry.
type Body struct {
	Id           string
	Class        Class
	CenterBodyId string // non-empty only for MoonClass

	MassKg     float64
	MuM3S2     float64 // G*mass, m^3/s^2
	DiameterM  float64

	// Elements is the long-form Keplerian element set backing the
	// approximate-Keplerian ephemeris source (spec §4.D.1). Zero value for
	// bodies with no registered elements (e.g. the Sun).
	Elements kepler.Elements
	HasElements bool

	// J2 is the second zonal harmonic oblateness coefficient, PoleRADeg/
	// PoleDecDeg the ICRF pole orientation (IAU 2015 Working Group nominal
	// values). Zero for bodies with no registered oblateness data.
	J2         float64
	PoleRADeg  float64
	PoleDecDeg float64
	EquatorialRadiusM float64
}

var (
	initOnce sync.Once
	registry map[string]Body
)

func ensureInit() {
	initOnce.Do(func() {
		registry = buildRegistry()
	})
}

// Lookup returns the registered Body for id, or an UnknownBody error.
func Lookup(id string) (Body, error) {
	ensureInit()
	b, ok := registry[id]
	if !ok {
		return Body{}, simerr.NewUnknownBody(id)
	}
	return b, nil
}

// MustLookup is Lookup but panics on an unknown body; intended for
// constructing static test fixtures, never for handling request input.
func MustLookup(id string) Body {
	b, err := Lookup(id)
	if err != nil {
		panic(err)
	}
	return b
}

// All returns every registered BodyId, in no particular order.
func All() []string {
	ensureInit()
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	return ids
}

// IsPlanetClass reports whether id is registered and planet-class.
func IsPlanetClass(id string) bool {
	b, err := Lookup(id)
	return err == nil && b.Class == PlanetClass
}

// IsMoonClass reports whether id is registered and moon-class.
func IsMoonClass(id string) bool {
	b, err := Lookup(id)
	return err == nil && b.Class == MoonClass
}

func planet(id, center string, massKg, diamM float64, el kepler.Elements, j2, poleRA, poleDec, eqR float64) Body {
	return Body{
		Id:                id,
		Class:             PlanetClass,
		CenterBodyId:      center,
		MassKg:            massKg,
		MuM3S2:            GravitationalConstant * massKg,
		DiameterM:         diamM,
		Elements:          el,
		HasElements:       true,
		J2:                j2,
		PoleRADeg:         poleRA,
		PoleDecDeg:        poleDec,
		EquatorialRadiusM: eqR,
	}
}

func moon(id, center string, massKg, diamM float64, el kepler.Elements) Body {
	return Body{
		Id:           id,
		Class:        MoonClass,
		CenterBodyId: center,
		MassKg:       massKg,
		MuM3S2:       GravitationalConstant * massKg,
		DiameterM:    diamM,
		Elements:     el,
		HasElements:  true,
	}
}

// buildRegistry constructs the static compiled-in table. Element values
// are J2000 mean elements (JPL/MPC low-precision planetary element set,
// 3000 BC-AD 3000 fit); outer planets additionally carry the long-form
// b/c/s/f correction spec §4.B requires. Pole/J2 values are the IAU 2015
// Working Group on Cartographic Coordinates nominal values (spec §9's
// second Open Question: "use the IAU Working Group nominal values, not a
// secondary fit").
func buildRegistry() map[string]Body {
	r := make(map[string]Body)

	r["Sun"] = Body{
		Id:                "Sun",
		Class:             PlanetClass,
		MassKg:            1.98892e30,
		MuM3S2:            1.32712440018e20,
		DiameterM:         1.3914e9,
		J2:                2.2e-7,
		PoleRADeg:         286.13,
		PoleDecDeg:        63.87,
		EquatorialRadiusM: 6.957e8,
	}

	r["Mercury"] = planet("Mercury", "", 3.3011e23, 4.879e6, kepler.Elements{
		SemiMajorAxisAU: 0.38709927, Eccentricity: 0.20563593, InclinationDeg: 7.00497902,
		LongAscNodeDeg: 48.33076593, ArgPeriapsisDeg: 77.45779628 - 48.33076593, MeanAnomalyDeg: 252.25032350 - 77.45779628,
		EpochJD: 2451545.0,
		RatesPerCentury: kepler.ElementRates{
			SemiMajorAxisAU: 0.00000037, Eccentricity: 0.00001906, InclinationDeg: -0.00594749,
			LongAscNodeDeg: -0.12534081, ArgPeriapsisDeg: 0.16047689, MeanAnomalyDeg: 149472.67411175,
		},
	}, 6.0e-5, 281.01, 61.41, 2.4397e6)

	r["Venus"] = planet("Venus", "", 4.8675e24, 1.2104e7, kepler.Elements{
		SemiMajorAxisAU: 0.72333566, Eccentricity: 0.00677672, InclinationDeg: 3.39467605,
		LongAscNodeDeg: 76.67984255, ArgPeriapsisDeg: 131.60246718 - 76.67984255, MeanAnomalyDeg: 181.97909950 - 131.60246718,
		EpochJD: 2451545.0,
		RatesPerCentury: kepler.ElementRates{
			SemiMajorAxisAU: 0.00000390, Eccentricity: -0.00004107, InclinationDeg: -0.00078890,
			LongAscNodeDeg: -0.27769418, ArgPeriapsisDeg: 0.00268329, MeanAnomalyDeg: 58517.81538729,
		},
	}, 4.458e-6, 272.76, 67.16, 6.0518e6)

	// Earth's registered elements are the Earth-Moon barycenter elements
	// (spec §9's first Open Question); the state computed from them is
	// used as Earth's own heliocentric state, and
	// orchestrator.EarthMoonBarycenter and KeplerianSource.StateBarycentric
	// add the Moon's mass-weighted planetocentric offset to it.
	r["Earth"] = planet("Earth", "", 5.97237e24, 1.2742e7, kepler.Elements{
		SemiMajorAxisAU: 1.00000261, Eccentricity: 0.01671123, InclinationDeg: -0.00001531,
		LongAscNodeDeg: 0.0, ArgPeriapsisDeg: 102.93768193, MeanAnomalyDeg: 100.46457166 - 102.93768193,
		EpochJD: 2451545.0,
		RatesPerCentury: kepler.ElementRates{
			SemiMajorAxisAU: 0.00000562, Eccentricity: -0.00004392, InclinationDeg: -0.01294668,
			ArgPeriapsisDeg: 0.32327364, MeanAnomalyDeg: 35999.37244981,
		},
	}, 1.08263e-3, 0.0, 90.0, 6.3781366e6)

	moonNodeLonJ2000, _ := lunarnodes.MeanLunarNodes(2451545.0)
	r["Moon"] = moon("Moon", "Earth", 7.342e22, 3.4748e6, kepler.Elements{
		SemiMajorAxisAU: 384748000.0 / AUMeters, Eccentricity: 0.0549, InclinationDeg: 5.145,
		LongAscNodeDeg: moonNodeLonJ2000, ArgPeriapsisDeg: 318.15, MeanAnomalyDeg: 135.27,
		EpochJD: 2451545.0,
		RatesPerCentury: kepler.ElementRates{
			LongAscNodeDeg: lunarnodes.NodeRegressionRatePerCentury(),
		},
	})

	r["Mars"] = planet("Mars", "", 6.4171e23, 6.779e6, kepler.Elements{
		SemiMajorAxisAU: 1.52371034, Eccentricity: 0.09339410, InclinationDeg: 1.84969142,
		LongAscNodeDeg: 49.55953891, ArgPeriapsisDeg: -23.94362959 - 49.55953891, MeanAnomalyDeg: -4.55343205 - (-23.94362959),
		EpochJD: 2451545.0,
		RatesPerCentury: kepler.ElementRates{
			SemiMajorAxisAU: 0.00001847, Eccentricity: 0.00007882, InclinationDeg: -0.00813131,
			LongAscNodeDeg: -0.29257343, ArgPeriapsisDeg: 0.44441088, MeanAnomalyDeg: 19140.30268499,
		},
	}, 1.9605e-3, 317.68, 52.89, 3.3962e6)

	r["Jupiter"] = planet("Jupiter", "", 1.8982e27, 1.39822e8, kepler.Elements{
		SemiMajorAxisAU: 5.20288700, Eccentricity: 0.04838624, InclinationDeg: 1.30439695,
		LongAscNodeDeg: 100.47390909, ArgPeriapsisDeg: 14.72847983 - 100.47390909, MeanAnomalyDeg: 34.39644051 - 14.72847983,
		EpochJD: 2451545.0,
		RatesPerCentury: kepler.ElementRates{
			SemiMajorAxisAU: -0.00011607, Eccentricity: -0.00013253, InclinationDeg: -0.00183714,
			LongAscNodeDeg: 0.20469106, ArgPeriapsisDeg: 0.21252668, MeanAnomalyDeg: 3034.74612775,
		},
		LongFormB: -0.00012452, LongFormC: 0.06064060, LongFormS: -0.35635438, LongFormF: 38.35125000,
	}, 0.014736, 268.057, 64.495, 7.1492e7)

	r["Saturn"] = planet("Saturn", "", 5.6834e26, 1.16464e8, kepler.Elements{
		SemiMajorAxisAU: 9.53667594, Eccentricity: 0.05386179, InclinationDeg: 2.48599187,
		LongAscNodeDeg: 113.66242448, ArgPeriapsisDeg: 92.59887831 - 113.66242448, MeanAnomalyDeg: 49.95424423 - 92.59887831,
		EpochJD: 2451545.0,
		RatesPerCentury: kepler.ElementRates{
			SemiMajorAxisAU: -0.00125060, Eccentricity: -0.00050991, InclinationDeg: 0.00193609,
			LongAscNodeDeg: -0.28867794, ArgPeriapsisDeg: -0.41897216, MeanAnomalyDeg: 1222.49362201,
		},
		LongFormB: 0.00025899, LongFormC: -0.13434469, LongFormS: 0.87320147, LongFormF: 38.35125000,
	}, 0.016298, 40.589, 83.537, 6.0268e7)

	r["Uranus"] = planet("Uranus", "", 8.6810e25, 5.0724e7, kepler.Elements{
		SemiMajorAxisAU: 19.18916464, Eccentricity: 0.04725744, InclinationDeg: 0.77263783,
		LongAscNodeDeg: 74.01692503, ArgPeriapsisDeg: 170.95427630 - 74.01692503, MeanAnomalyDeg: 313.23810451 - 170.95427630,
		EpochJD: 2451545.0,
		RatesPerCentury: kepler.ElementRates{
			SemiMajorAxisAU: -0.00196176, Eccentricity: -0.00004397, InclinationDeg: -0.00242939,
			LongAscNodeDeg: 0.04240589, ArgPeriapsisDeg: 0.40805281, MeanAnomalyDeg: 428.48202785,
		},
		LongFormB: 0.00058331, LongFormC: -0.97731848, LongFormS: 0.17689245, LongFormF: 7.67025000,
	}, 0.003343, 257.311, -15.175, 2.5559e7)

	r["Neptune"] = planet("Neptune", "", 1.02413e26, 4.9244e7, kepler.Elements{
		SemiMajorAxisAU: 30.06992276, Eccentricity: 0.00859048, InclinationDeg: 1.77004347,
		LongAscNodeDeg: 131.78422574, ArgPeriapsisDeg: 44.96476227 - 131.78422574, MeanAnomalyDeg: -55.12002969 - 44.96476227,
		EpochJD: 2451545.0,
		RatesPerCentury: kepler.ElementRates{
			SemiMajorAxisAU: 0.00026291, Eccentricity: 0.00005105, InclinationDeg: 0.00035372,
			LongAscNodeDeg: -0.00508664, ArgPeriapsisDeg: -0.32241464, MeanAnomalyDeg: 218.45945325,
		},
		LongFormB: -0.00041348, LongFormC: 0.68346318, LongFormS: -0.10162547, LongFormF: 7.67025000,
	}, 0.003411, 299.36, 43.46, 2.4764e7)

	r["Pluto"] = planet("Pluto", "", 1.303e22, 2.377e6, kepler.Elements{
		SemiMajorAxisAU: 39.48211675, Eccentricity: 0.24882730, InclinationDeg: 17.14001206,
		LongAscNodeDeg: 110.30393684, ArgPeriapsisDeg: 224.06891629 - 110.30393684, MeanAnomalyDeg: 238.92903833 - 224.06891629,
		EpochJD: 2451545.0,
		RatesPerCentury: kepler.ElementRates{
			SemiMajorAxisAU: -0.00031596, Eccentricity: 0.00005170, InclinationDeg: 0.00004818,
			LongAscNodeDeg: -0.01183482, ArgPeriapsisDeg: -0.04062942, MeanAnomalyDeg: 145.20780515,
		},
		LongFormB: -0.01262724,
	}, 0, 132.993, -6.163, 1.1883e6)

	// A small body (minor planet), included as a concrete FromStateVector/
	// elements-source fixture exercised by the ephemeris and S4 scenario.
	r["Ceres"] = Body{
		Id: "Ceres", Class: PlanetClass,
		MassKg: 9.393e20, MuM3S2: GravitationalConstant * 9.393e20, DiameterM: 9.4e5,
		HasElements: true,
		Elements: kepler.Elements{
			SemiMajorAxisAU: 2.7670463, Eccentricity: 0.0785115, InclinationDeg: 10.5868,
			LongAscNodeDeg: 80.3055, ArgPeriapsisDeg: 73.5977, MeanAnomalyDeg: 77.372,
			EpochJD: 2451545.0,
		},
	}

	r["Halley"] = Body{
		Id: "Halley", Class: PlanetClass,
		MassKg: 2.2e14, MuM3S2: GravitationalConstant * 2.2e14, DiameterM: 1.1e4,
		HasElements: true,
		Elements: kepler.Elements{
			PerihelionAU: 0.586, Eccentricity: 0.9671, InclinationDeg: 162.26,
			LongAscNodeDeg: 58.42, ArgPeriapsisDeg: 111.33, PeriapsisTimeJD: 2446467.395,
		},
	}

	return r
}
