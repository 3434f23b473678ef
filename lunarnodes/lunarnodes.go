package lunarnodes

import "math"

const j2000JD = 2451545.0

// MeanLunarNodes returns the mean North and South node ecliptic longitudes
// (degrees) for the given TDB Julian date. Uses Meeus formula.
// Note: This is not derived from Skyfield — it was added independently.
func MeanLunarNodes(tdbJD float64) (northLon, southLon float64) {
	T := (tdbJD - j2000JD) / 36525.0

	omega := 125.04452 - 1934.136261*T + 0.0020708*T*T + T*T*T/450000.0

	northLon = math.Mod(omega, 360.0)
	if northLon < 0 {
		northLon += 360.0
	}
	southLon = math.Mod(northLon+180.0, 360.0)
	return
}

// NodeRegressionRatePerCentury returns the mean lunar ascending node's
// regression rate in degrees per Julian century: the linear term of the
// MeanLunarNodes formula above. Exposed separately because the node
// regresses several full turns per century (the 18.6-year nodal cycle),
// so recovering this rate by differencing two mod-360 MeanLunarNodes
// calls would require unwrapping; the formula's own linear coefficient is
// the rate directly.
func NodeRegressionRatePerCentury() float64 {
	return -1934.136261
}
