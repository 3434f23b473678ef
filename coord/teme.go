package coord

import "math"

// This file carries the rotation chain sgp4traj needs to place an SGP4
// TEME-frame state into the core's J2000 equatorial frame, and an
// observer's geodetic position into the same frame for ground-station
// visibility. Precession uses the closed-form IAU 2006 angles; nutation
// uses the 30 largest IAU 2000A luni-solar terms (~1 arcsec), which is
// self-contained and well within this module's accuracy floor — unlike
// the full 1365-term series, which needs generated coefficient tables this
// module does not carry.

const (
	j2000JD    = 2451545.0
	arcsec2rad = deg2rad / 3600.0
)

// ICRSToJ2000Matrix is the frame bias matrix from ICRS to the dynamical
// mean equator and equinox of J2000 (a few milliarcseconds).
var ICRSToJ2000Matrix [3][3]float64

func init() {
	xi0 := -0.0166170 * arcsec2rad
	eta0 := -0.0068192 * arcsec2rad
	da0 := -0.01460 * arcsec2rad

	yx := -da0
	zx := xi0
	xy := da0
	zy := eta0
	xz := -xi0
	yz := -eta0

	xx := 1.0 - 0.5*(yx*yx+zx*zx)
	yy := 1.0 - 0.5*(yx*yx+zy*zy)
	zz := 1.0 - 0.5*(zy*zy+zx*zx)

	ICRSToJ2000Matrix = [3][3]float64{
		{xx, xy, xz},
		{yx, yy, yz},
		{zx, zy, zz},
	}
}

// fundamentalArgs computes the Delaunay arguments for the nutation series.
// T is Julian centuries from J2000 TDB; returns l, l', F, D, Omega in
// radians (IERS Conventions 2003, Eq. 5.43).
func fundamentalArgs(T float64) (l, lp, F, D, om float64) {
	l = (485868.249036 + T*(1717915923.2178+T*(31.8792+T*(0.051635-T*0.00024470)))) * arcsec2rad
	lp = (1287104.79305 + T*(129596581.0481+T*(-0.5532+T*(0.000136+T*0.00001149)))) * arcsec2rad
	F = (335779.526232 + T*(1739527262.8478+T*(-12.7512+T*(-0.001037+T*0.00000417)))) * arcsec2rad
	D = (1072260.70369 + T*(1602961601.2090+T*(-6.3706+T*(0.006593-T*0.00003169)))) * arcsec2rad
	om = (450160.398036 + T*(-6962890.5431+T*(7.4722+T*(0.007702-T*0.00005939)))) * arcsec2rad
	return
}

// meanObliquity returns the mean obliquity of the ecliptic at date, radians
// (IAU 1980, Lieske 1979).
func meanObliquity(T float64) float64 {
	return (84381.448 + T*(-46.8150+T*(-0.00059+T*0.001813))) * arcsec2rad
}

type nutationTerm struct {
	nl, nlp, nf, nd, nom int
	s, sdot, cp          float64
	c, cdot, sp          float64
}

// nutationTerms holds the 30 largest IAU 2000A luni-solar terms (Skyfield
// nutation.npz / IERS Conventions 2003 Table 5.3a), ~1 arcsec precision.
var nutationTerms = []nutationTerm{
	{0, 0, 0, 0, 1, -172064161, -174666, 33386, 92052331, 9086, 15377},
	{0, 0, 2, -2, 2, -13170906, -1675, -13696, 5730336, -3015, -4587},
	{0, 0, 2, 0, 2, -2276413, -234, 2796, 978459, -485, 1374},
	{0, 0, 0, 0, 2, 2074554, 207, -698, -897492, 470, -291},
	{0, 1, 0, 0, 0, 1475877, -3633, 11817, 73871, -184, -1924},
	{1, 0, 0, 0, 0, 711159, 73, -872, -6750, 0, 358},
	{0, 1, 2, -2, 2, -516821, 1226, -524, 224386, -677, -174},
	{0, 0, 2, 0, 1, -387298, -367, 380, 200728, 18, 318},
	{1, 0, 2, 0, 2, -301461, -36, 816, 129025, -63, 367},
	{0, -1, 2, -2, 2, 215829, -494, 111, -95929, 299, 132},
	{-1, 0, 0, 2, 0, 156994, 10, -168, -1235, 0, 82},
	{0, 0, 2, -2, 1, 128227, 137, 181, -68982, -9, 39},
	{-1, 0, 2, 0, 2, 123457, 11, 19, -53311, 32, -4},
	{0, 0, 0, 2, 0, 63384, 11, -150, -1220, 0, 29},
	{1, 0, 0, 0, 1, 63110, 63, 27, -33228, 0, -9},
	{-1, 0, 2, 2, 2, -59641, -11, 149, 25543, -11, 66},
	{-1, 0, 0, 0, 1, -57976, -63, -189, 31429, 0, -75},
	{1, 0, 2, 0, 1, -51613, -42, 129, 26366, 0, 78},
	{-2, 0, 0, 2, 0, -47722, 0, -18, 477, 0, -25},
	{-2, 0, 2, 0, 1, 45893, 50, 31, -24236, -10, 20},
	{0, 0, 2, 2, 2, -38571, -1, 158, 16452, -11, 68},
	{0, -2, 2, -2, 2, 32481, 0, 0, -13870, 0, 0},
	{2, 0, 2, 0, 2, -31046, -1, 131, 13238, -11, 59},
	{2, 0, 0, 0, 0, 29243, 0, -74, -609, 0, 13},
	{1, 0, 2, -2, 2, 28593, 0, -1, -12338, 10, -3},
	{0, 0, 2, 0, 0, 25887, 0, -66, -550, 0, 11},
	{0, 0, -2, 2, 0, 21783, 0, 13, -167, 0, 13},
	{-1, 0, 2, 0, 1, 20441, 21, 10, -10758, 0, -3},
	{0, 2, 0, 0, 0, 16707, -85, -10, 168, -1, 10},
	{0, 2, 2, -2, 2, -15794, 72, -16, 6850, -42, -5},
}

const tenthUas2Rad = arcsec2rad / 1e7

// nutationAngles computes nutation in longitude (dpsi) and obliquity (deps)
// from the 30-term luni-solar series, radians. T is Julian centuries from
// J2000 TDB.
func nutationAngles(T float64) (dpsiRad, depsRad float64) {
	l, lp, F, D, om := fundamentalArgs(T)
	var dpsi, deps float64
	for i := range nutationTerms {
		t := &nutationTerms[i]
		arg := float64(t.nl)*l + float64(t.nlp)*lp + float64(t.nf)*F +
			float64(t.nd)*D + float64(t.nom)*om
		sinArg, cosArg := math.Sincos(arg)
		dpsi += (t.s+t.sdot*T)*sinArg + t.cp*cosArg
		deps += (t.c+t.cdot*T)*cosArg + t.sp*sinArg
	}
	return dpsi * tenthUas2Rad, deps * tenthUas2Rad
}

// nutationMatrixTranspose returns N^T (true equinox of date -> mean
// equinox of date).
func nutationMatrixTranspose(dpsiRad, depsRad, epsMRad float64) [3][3]float64 {
	epsTRad := epsMRad + depsRad
	sinDpsi, cosDpsi := math.Sincos(dpsiRad)
	sinEpsM, cosEpsM := math.Sincos(epsMRad)
	sinEpsT, cosEpsT := math.Sincos(epsTRad)
	return [3][3]float64{
		{cosDpsi, sinDpsi * cosEpsT, sinDpsi * sinEpsT},
		{-sinDpsi * cosEpsM, cosDpsi*cosEpsM*cosEpsT + sinEpsM*sinEpsT, cosDpsi*cosEpsM*sinEpsT - sinEpsM*cosEpsT},
		{-sinDpsi * sinEpsM, cosDpsi*sinEpsM*cosEpsT - cosEpsM*sinEpsT, cosDpsi*sinEpsM*sinEpsT + cosEpsM*cosEpsT},
	}
}

// GAST returns Greenwich Apparent Sidereal Time in degrees: GMST plus the
// equation of the equinoxes.
func GAST(jdUT1 float64) float64 {
	gmst := GMST(jdUT1)
	T := (jdUT1 - j2000JD) / 36525.0
	dpsiRad, _ := nutationAngles(T)
	epsM := meanObliquity(T)
	eqeqDeg := (dpsiRad * math.Cos(epsM)) * rad2deg
	return math.Mod(gmst+eqeqDeg, 360.0)
}

// precessionMatrixInverse returns P^T, the IAU 2006 precession matrix
// transposed (date's mean equator/equinox -> J2000). T is Julian
// centuries from J2000 TDB.
func precessionMatrixInverse(T float64) [3][3]float64 {
	zetaA := (2.650545 + 2306.083227*T + 0.2988499*T*T + 0.01801828*T*T*T - 0.000005971*T*T*T*T) * arcsec2rad
	zA := (-2.650545 + 2306.077181*T + 1.0927348*T*T + 0.01826837*T*T*T - 0.000028596*T*T*T*T) * arcsec2rad
	thetaA := (2004.191903*T - 0.4294934*T*T - 0.04182264*T*T*T - 0.000007089*T*T*T*T) * arcsec2rad

	cosZetaA, sinZetaA := math.Cos(zetaA), math.Sin(zetaA)
	cosZA, sinZA := math.Cos(zA), math.Sin(zA)
	cosThetaA, sinThetaA := math.Cos(thetaA), math.Sin(thetaA)

	p11 := cosZA*cosThetaA*cosZetaA - sinZA*sinZetaA
	p12 := -cosZA*cosThetaA*sinZetaA - sinZA*cosZetaA
	p13 := -cosZA * sinThetaA
	p21 := sinZA*cosThetaA*cosZetaA + cosZA*sinZetaA
	p22 := -sinZA*cosThetaA*sinZetaA + cosZA*cosZetaA
	p23 := -sinZA * sinThetaA
	p31 := sinThetaA * cosZetaA
	p32 := -sinThetaA * sinZetaA
	p33 := cosThetaA

	return [3][3]float64{
		{p11, p21, p31},
		{p12, p22, p32},
		{p13, p23, p33},
	}
}

// TEMEToICRF converts a TEME (True Equator, Mean Equinox) position from
// SGP4 propagation to the J2000/ICRF frame: true equinox of date -> mean
// equinox of date (nutation inverse) -> J2000 (precession inverse) ->
// ICRS (frame-bias inverse). jdUT1 is the UT1 Julian date; the equation of
// equinoxes rotating TEME into the true equator of date uses the same
// nutation angles.
func TEMEToICRF(posKmTEME [3]float64, jdUT1 float64) [3]float64 {
	T := (jdUT1 - j2000JD) / 36525.0
	dpsiRad, depsRad := nutationAngles(T)
	epsM := meanObliquity(T)
	eqEqRad := dpsiRad * math.Cos(epsM)

	sinE, cosE := math.Sincos(eqEqRad)
	xTrue := cosE*posKmTEME[0] - sinE*posKmTEME[1]
	yTrue := sinE*posKmTEME[0] + cosE*posKmTEME[1]
	zTrue := posKmTEME[2]

	NT := nutationMatrixTranspose(dpsiRad, depsRad, epsM)
	xMean := NT[0][0]*xTrue + NT[0][1]*yTrue + NT[0][2]*zTrue
	yMean := NT[1][0]*xTrue + NT[1][1]*yTrue + NT[1][2]*zTrue
	zMean := NT[2][0]*xTrue + NT[2][1]*yTrue + NT[2][2]*zTrue

	PT := precessionMatrixInverse(T)
	xJ2000 := PT[0][0]*xMean + PT[0][1]*yMean + PT[0][2]*zMean
	yJ2000 := PT[1][0]*xMean + PT[1][1]*yMean + PT[1][2]*zMean
	zJ2000 := PT[2][0]*xMean + PT[2][1]*yMean + PT[2][2]*zMean

	B := &ICRSToJ2000Matrix
	return [3]float64{
		B[0][0]*xJ2000 + B[1][0]*yJ2000 + B[2][0]*zJ2000,
		B[0][1]*xJ2000 + B[1][1]*yJ2000 + B[2][1]*zJ2000,
		B[0][2]*xJ2000 + B[1][2]*yJ2000 + B[2][2]*zJ2000,
	}
}

// GeodeticToICRF converts a ground observer's geodetic lat/lon (degrees) to
// an ICRF position vector (km) at the given UT1 Julian date, via ITRF ->
// Earth rotation (GAST) -> nutation -> precession -> frame bias.
func GeodeticToICRF(latDeg, lonDeg, jdUT1 float64) (x, y, z float64) {
	lat := latDeg * deg2rad
	lon := lonDeg * deg2rad
	sinLat, cosLat := math.Sincos(lat)
	sinLon, cosLon := math.Sincos(lon)

	const wgs84AKm = wgs84A / 1000.0
	n := wgs84AKm / math.Sqrt(1.0-wgs84E2*sinLat*sinLat)
	xITRF := n * cosLat * cosLon
	yITRF := n * cosLat * sinLon
	zITRF := n * (1.0 - wgs84E2) * sinLat

	T := (jdUT1 - j2000JD) / 36525.0
	dpsiRad, depsRad := nutationAngles(T)
	epsM := meanObliquity(T)
	gastRad := GAST(jdUT1) * deg2rad

	sinG, cosG := math.Sincos(gastRad)
	xTrue := cosG*xITRF - sinG*yITRF
	yTrue := sinG*xITRF + cosG*yITRF
	zTrue := zITRF

	N := nutationMatrix(dpsiRad, depsRad, epsM)
	xMean := N[0][0]*xTrue + N[1][0]*yTrue + N[2][0]*zTrue
	yMean := N[0][1]*xTrue + N[1][1]*yTrue + N[2][1]*zTrue
	zMean := N[0][2]*xTrue + N[1][2]*yTrue + N[2][2]*zTrue

	P := precessionMatrix(T)
	xJ2000 := P[0][0]*xMean + P[1][0]*yMean + P[2][0]*zMean
	yJ2000 := P[0][1]*xMean + P[1][1]*yMean + P[2][1]*zMean
	zJ2000 := P[0][2]*xMean + P[1][2]*yMean + P[2][2]*zMean

	B := &ICRSToJ2000Matrix
	x = B[0][0]*xJ2000 + B[1][0]*yJ2000 + B[2][0]*zJ2000
	y = B[0][1]*xJ2000 + B[1][1]*yJ2000 + B[2][1]*zJ2000
	z = B[0][2]*xJ2000 + B[1][2]*yJ2000 + B[2][2]*zJ2000
	return
}

// nutationMatrix is the transpose of nutationMatrixTranspose (mean equinox
// of date -> true equinox of date).
func nutationMatrix(dpsiRad, depsRad, epsMRad float64) [3][3]float64 {
	nt := nutationMatrixTranspose(dpsiRad, depsRad, epsMRad)
	return [3][3]float64{
		{nt[0][0], nt[1][0], nt[2][0]},
		{nt[0][1], nt[1][1], nt[2][1]},
		{nt[0][2], nt[1][2], nt[2][2]},
	}
}

// precessionMatrix is the transpose of precessionMatrixInverse (J2000 ->
// date's mean equator/equinox).
func precessionMatrix(T float64) [3][3]float64 {
	pt := precessionMatrixInverse(T)
	return [3][3]float64{
		{pt[0][0], pt[1][0], pt[2][0]},
		{pt[0][1], pt[1][1], pt[2][1]},
		{pt[0][2], pt[1][2], pt[2][2]},
	}
}

// Altaz converts a geocentric-difference ICRF vector (km) — typically a
// satellite position minus an observer's ICRF position — to topocentric
// altitude, azimuth, and distance for an observer at the given geodetic
// latitude/longitude and UT1 Julian date. Rotation chain mirrors
// GeodeticToICRF in reverse: ICRF -> mean equator of date (precession) ->
// true equator of date (nutation) -> ITRF (GAST) -> local horizon.
func Altaz(posICRF [3]float64, latDeg, lonDeg, jdUT1 float64) (altDeg, azDeg, distKm float64) {
	T := (jdUT1 - j2000JD) / 36525.0

	B := &ICRSToJ2000Matrix
	var posJ2000 [3]float64
	for i := 0; i < 3; i++ {
		posJ2000[i] = B[i][0]*posICRF[0] + B[i][1]*posICRF[1] + B[i][2]*posICRF[2]
	}

	PT := precessionMatrixInverse(T)
	var pos [3]float64
	for i := 0; i < 3; i++ {
		pos[i] = PT[0][i]*posJ2000[0] + PT[1][i]*posJ2000[1] + PT[2][i]*posJ2000[2]
	}

	dpsiRad, depsRad := nutationAngles(T)
	epsM := meanObliquity(T)
	NT := nutationMatrixTranspose(dpsiRad, depsRad, epsM)
	var posTr [3]float64
	for i := 0; i < 3; i++ {
		posTr[i] = NT[0][i]*pos[0] + NT[1][i]*pos[1] + NT[2][i]*pos[2]
	}

	gastRad := GAST(jdUT1) * deg2rad
	sinG, cosG := math.Sincos(gastRad)
	xITRF := cosG*posTr[0] + sinG*posTr[1]
	yITRF := -sinG*posTr[0] + cosG*posTr[1]
	zITRF := posTr[2]

	lat := latDeg * deg2rad
	lon := lonDeg * deg2rad
	sinLat, cosLat := math.Sincos(lat)
	sinLon, cosLon := math.Sincos(lon)

	x1 := cosLon*xITRF + sinLon*yITRF
	y1 := -sinLon*xITRF + cosLon*yITRF
	z1 := zITRF

	xLocal := -sinLat*x1 + cosLat*z1
	yLocal := y1
	zLocal := cosLat*x1 + sinLat*z1

	distKm = math.Sqrt(xLocal*xLocal + yLocal*yLocal + zLocal*zLocal)
	rXY := math.Sqrt(xLocal*xLocal + yLocal*yLocal)
	altDeg = math.Atan2(zLocal, rXY) * rad2deg
	azDeg = math.Mod(math.Atan2(yLocal, xLocal)*rad2deg+360.0, 360.0)
	return
}
