package coursepointer

import "math"

// WGS84 ellipsoid parameters.
const (
	WGS84A = 6378137.0             // semi-major axis, meters
	WGS84F = 1.0 / 298.257223563   // flattening
)

// WGS84B is the derived semi-minor axis.
var WGS84B = WGS84A * (1 - WGS84F)

// meanEarthRadius is used only as a scale factor for the gnomonic plane's
// coordinate units; it has no bearing on any distance reported to a
// caller, since every reported distance is recomputed through Inverse
// on the ellipsoid proper.
const meanEarthRadius = 6371008.8

// gnomonicMaxC bounds how far from the projection center a point may lie
// before the gnomonic chart is considered unreliable; acos(gnomonicMaxC)
// is approximately one radian.
const gnomonicMaxC = 0.54

const vincentyConvergence = 1e-12
const vincentyMaxIterations = 200

// InverseResult is the result of solving the WGS84 inverse geodesic problem.
type InverseResult struct {
	S12M    Meters
	Azi1Deg Degrees
	Azi2Deg Degrees
}

// Inverse solves the WGS84 inverse geodesic problem: given two points,
// find the surface distance between them and the forward/reverse
// azimuths. Degenerate (coincident) inputs yield S12M == 0 and azimuths
// of 0, matching the zero-length-segment convention used throughout the
// course assembler.
//
// The original program binds GeographicLib (Karney's algorithms) through
// FFI; this implementation uses Vincenty's iterative formula instead, a
// deliberate from-scratch deviation, not a port of anything the original
// does itself. It converges to the same accuracy for all but a handful of
// near-antipodal point pairs, which this system never constructs (adjacent
// route points and nearby waypoints only). See DESIGN.md Open Question 1.
func Inverse(a, b GeoPoint) InverseResult {
	phi1 := float64(a.LatDeg.Radians())
	phi2 := float64(b.LatDeg.Radians())
	L := float64(b.LonDeg.Radians() - a.LonDeg.Radians())

	f := WGS84F
	aAxis := WGS84A
	bAxis := WGS84B

	U1 := math.Atan((1 - f) * math.Tan(phi1))
	U2 := math.Atan((1 - f) * math.Tan(phi2))
	sinU1, cosU1 := math.Sincos(U1)
	sinU2, cosU2 := math.Sincos(U2)

	lambda := L
	var sinLambda, cosLambda, sinSigma, cosSigma, sigma, sinAlpha, cosSqAlpha, cos2SigmaM float64

	for i := 0; i < vincentyMaxIterations; i++ {
		sinLambda, cosLambda = math.Sincos(lambda)
		t1 := cosU2 * sinLambda
		t2 := cosU1*sinU2 - sinU1*cosU2*cosLambda
		sinSigma = math.Hypot(t1, t2)
		if sinSigma == 0 {
			return InverseResult{S12M: 0, Azi1Deg: 0, Azi2Deg: 0}
		}
		cosSigma = sinU1*sinU2 + cosU1*cosU2*cosLambda
		sigma = math.Atan2(sinSigma, cosSigma)
		sinAlpha = cosU1 * cosU2 * sinLambda / sinSigma
		cosSqAlpha = 1 - sinAlpha*sinAlpha
		if cosSqAlpha != 0 {
			cos2SigmaM = cosSigma - 2*sinU1*sinU2/cosSqAlpha
		} else {
			cos2SigmaM = 0
		}
		C := f / 16 * cosSqAlpha * (4 + f*(4-3*cosSqAlpha))
		lambdaPrev := lambda
		lambda = L + (1-C)*f*sinAlpha*(sigma+C*sinSigma*(cos2SigmaM+C*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))
		if math.Abs(lambda-lambdaPrev) < vincentyConvergence {
			break
		}
	}

	uSq := cosSqAlpha * (aAxis*aAxis - bAxis*bAxis) / (bAxis * bAxis)
	A := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	B := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))
	deltaSigma := B * sinSigma * (cos2SigmaM + B/4*(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
		B/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))
	s := bAxis * A * (sigma - deltaSigma)

	alpha1 := math.Atan2(cosU2*sinLambda, cosU1*sinU2-sinU1*cosU2*cosLambda)
	alpha2 := math.Atan2(cosU1*sinLambda, -sinU1*cosU2+cosU1*sinU2*cosLambda)

	return InverseResult{
		S12M:    Meters(s),
		Azi1Deg: Degrees(normalizeAzimuth(alpha1 * 180 / math.Pi)),
		Azi2Deg: Degrees(normalizeAzimuth(alpha2 * 180 / math.Pi)),
	}
}

// Direct solves the WGS84 direct geodesic problem: given a start point,
// a forward azimuth, and a surface distance, find the destination point.
func Direct(start GeoPoint, azi1Deg Degrees, s12M Meters) GeoPoint {
	phi1 := float64(start.LatDeg.Radians())
	alpha1 := float64(azi1Deg.Radians())
	s := float64(s12M)

	f := WGS84F
	aAxis := WGS84A
	bAxis := WGS84B

	sinAlpha1, cosAlpha1 := math.Sincos(alpha1)
	tanU1 := (1 - f) * math.Tan(phi1)
	cosU1 := 1 / math.Sqrt(1+tanU1*tanU1)
	sinU1 := tanU1 * cosU1

	sigma1 := math.Atan2(tanU1, cosAlpha1)
	sinAlpha := cosU1 * sinAlpha1
	cosSqAlpha := 1 - sinAlpha*sinAlpha

	uSq := cosSqAlpha * (aAxis*aAxis - bAxis*bAxis) / (bAxis * bAxis)
	A := 1 + uSq/16384*(4096+uSq*(-768+uSq*(320-175*uSq)))
	B := uSq / 1024 * (256 + uSq*(-128+uSq*(74-47*uSq)))

	sigma := s / (bAxis * A)
	var sinSigma, cosSigma, cos2SigmaM float64
	for i := 0; i < vincentyMaxIterations; i++ {
		cos2SigmaM = math.Cos(2*sigma1 + sigma)
		sinSigma, cosSigma = math.Sincos(sigma)
		deltaSigma := B * sinSigma * (cos2SigmaM + B/4*(cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)-
			B/6*cos2SigmaM*(-3+4*sinSigma*sinSigma)*(-3+4*cos2SigmaM*cos2SigmaM)))
		sigmaPrev := sigma
		sigma = s/(bAxis*A) + deltaSigma
		if math.Abs(sigma-sigmaPrev) < vincentyConvergence {
			break
		}
	}

	phi2 := math.Atan2(
		sinU1*cosSigma+cosU1*sinSigma*cosAlpha1,
		(1-f)*math.Hypot(sinAlpha, sinU1*sinSigma-cosU1*cosSigma*cosAlpha1),
	)
	lambda := math.Atan2(sinSigma*sinAlpha1, cosU1*cosSigma-sinU1*sinSigma*cosAlpha1)
	C := f / 16 * cosSqAlpha * (4 + f*(4-3*cosSqAlpha))
	L := lambda - (1-C)*f*sinAlpha*(sigma+C*sinSigma*(cos2SigmaM+C*cosSigma*(-1+2*cos2SigmaM*cos2SigmaM)))

	lon2 := float64(start.LonDeg.Radians()) + L
	pt, err := NewGeoPoint(phi2*180/math.Pi, normalizeAzimuth(lon2*180/math.Pi))
	if err != nil {
		// Numerically unreachable for valid start/azimuth/distance; fall
		// back to a clamped point rather than panicking.
		lat := math.Max(-90, math.Min(90, phi2*180/math.Pi))
		pt, _ = NewGeoPoint(lat, normalizeAzimuth(lon2*180/math.Pi))
	}
	return pt
}

// GnomonicChart is a gnomonic projection centered at a chosen point.
// Forward and Reverse are cheap, allocation-free closures over the
// center; the interception engine recenters one of these on every
// Karney iteration.
type GnomonicChart struct {
	centerLatRad, centerLonRad float64
	sinLat0, cosLat0           float64
}

// NewGnomonicChart builds a gnomonic chart centered at center.
func NewGnomonicChart(center GeoPoint) GnomonicChart {
	latRad := float64(center.LatDeg.Radians())
	sinLat0, cosLat0 := math.Sincos(latRad)
	return GnomonicChart{
		centerLatRad: latRad,
		centerLonRad: float64(center.LonDeg.Radians()),
		sinLat0:      sinLat0,
		cosLat0:      cosLat0,
	}
}

// Forward projects a geographic point into the gnomonic plane, in
// meters. It fails with ErrGnomonicOutOfRange when the point is more
// than ~1 radian from the chart's center.
func (g GnomonicChart) Forward(p GeoPoint) (XyPoint, error) {
	latRad := float64(p.LatDeg.Radians())
	lonRad := float64(p.LonDeg.Radians())
	sinLat, cosLat := math.Sincos(latRad)
	dLon := lonRad - g.centerLonRad
	sinDLon, cosDLon := math.Sincos(dLon)

	cosC := g.sinLat0*sinLat + g.cosLat0*cosLat*cosDLon
	if cosC <= gnomonicMaxC {
		return XyPoint{}, newError(ErrGnomonicOutOfRange, "point outside gnomonic projection range", nil)
	}

	x := cosLat * sinDLon / cosC
	y := (g.cosLat0*sinLat - g.sinLat0*cosLat*cosDLon) / cosC
	return XyPoint{X: x * meanEarthRadius, Y: y * meanEarthRadius}, nil
}

// Reverse inverts the gnomonic projection back to a geographic point.
func (g GnomonicChart) Reverse(p XyPoint) GeoPoint {
	x := p.X / meanEarthRadius
	y := p.Y / meanEarthRadius
	rho := math.Hypot(x, y)
	if rho == 0 {
		pt, _ := NewGeoPoint(g.centerLatRad*180/math.Pi, normalizeAzimuth(g.centerLonRad*180/math.Pi))
		return pt
	}
	c := math.Atan(rho)
	sinc, cosc := math.Sincos(c)

	lat := math.Asin(cosc*g.sinLat0 + (y*sinc*g.cosLat0)/rho)
	lon := g.centerLonRad + math.Atan2(x*sinc, rho*g.cosLat0*cosc-y*g.sinLat0*sinc)

	latDeg := math.Max(-90, math.Min(90, lat*180/math.Pi))
	pt, err := NewGeoPoint(latDeg, normalizeAzimuth(lon*180/math.Pi))
	if err != nil {
		pt, _ = NewGeoPoint(latDeg, 0)
	}
	return pt
}

// GeocentricForward converts a surface GeoPoint to ECEF (geocentric)
// cartesian coordinates, ignoring elevation: this is used only as a
// cheap distance floor ahead of the full intercept solve, never as a
// source of truth for reported distances.
func GeocentricForward(p GeoPoint) XyzPoint {
	phi := float64(p.LatDeg.Radians())
	lambda := float64(p.LonDeg.Radians())
	e2 := WGS84F * (2 - WGS84F)
	sinPhi, cosPhi := math.Sincos(phi)
	sinLambda, cosLambda := math.Sincos(lambda)
	n := WGS84A / math.Sqrt(1-e2*sinPhi*sinPhi)
	return XyzPoint{
		X: n * cosPhi * cosLambda,
		Y: n * cosPhi * sinLambda,
		Z: n * (1 - e2) * sinPhi,
	}
}
