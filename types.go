package coursepointer

import "math"

// GeoPoint is a validated point on the WGS84 ellipsoid. Latitude must lie
// in [-90, 90] degrees, longitude in [-180, 180] degrees. Elevation is
// optional and carried only for pass-through purposes; the core never
// does anything geometric with it.
type GeoPoint struct {
	LatDeg Degrees
	LonDeg Degrees
	ElevM  Meters
	hasEle bool
}

// NewGeoPoint validates and constructs a GeoPoint. It fails with
// ErrInvalidCoordinate when either coordinate is NaN or out of range.
func NewGeoPoint(latDeg, lonDeg float64) (GeoPoint, error) {
	return newGeoPoint(latDeg, lonDeg, 0, false)
}

// NewGeoPointWithElevation is NewGeoPoint plus an elevation in meters.
func NewGeoPointWithElevation(latDeg, lonDeg, eleM float64) (GeoPoint, error) {
	return newGeoPoint(latDeg, lonDeg, eleM, true)
}

func newGeoPoint(latDeg, lonDeg, eleM float64, hasEle bool) (GeoPoint, error) {
	if math.IsNaN(latDeg) || math.IsNaN(lonDeg) {
		return GeoPoint{}, newError(ErrInvalidCoordinate, "latitude/longitude must not be NaN", nil)
	}
	if latDeg < -90 || latDeg > 90 {
		return GeoPoint{}, newErrorf(ErrInvalidCoordinate, nil, "latitude %g out of range [-90, 90]", latDeg)
	}
	if lonDeg < -180 || lonDeg > 180 {
		return GeoPoint{}, newErrorf(ErrInvalidCoordinate, nil, "longitude %g out of range [-180, 180]", lonDeg)
	}
	if hasEle && math.IsNaN(eleM) {
		return GeoPoint{}, newError(ErrInvalidCoordinate, "elevation must not be NaN", nil)
	}
	return GeoPoint{LatDeg: Degrees(latDeg), LonDeg: Degrees(lonDeg), ElevM: Meters(eleM), hasEle: hasEle}, nil
}

// HasElevation reports whether an elevation was supplied at construction.
func (p GeoPoint) HasElevation() bool { return p.hasEle }

// Equal uses exact bit-equality on the normalized fields, per the data
// model's equality contract; it is not a geometric "near" comparison.
func (p GeoPoint) Equal(o GeoPoint) bool {
	return p.LatDeg == o.LatDeg && p.LonDeg == o.LonDeg
}

// XyPoint is a planar point, used for gnomonic-plane intermediate math.
type XyPoint struct {
	X, Y float64
}

// Sub returns the vector from o to p.
func (p XyPoint) Sub(o XyPoint) XyPoint { return XyPoint{p.X - o.X, p.Y - o.Y} }

// Add returns p translated by o.
func (p XyPoint) Add(o XyPoint) XyPoint { return XyPoint{p.X + o.X, p.Y + o.Y} }

// Scale returns p scaled by k.
func (p XyPoint) Scale(k float64) XyPoint { return XyPoint{p.X * k, p.Y * k} }

// Dot returns the dot product of p and o.
func (p XyPoint) Dot(o XyPoint) float64 { return p.X*o.X + p.Y*o.Y }

// Norm returns the Euclidean length of p treated as a vector from the origin.
func (p XyPoint) Norm() float64 { return math.Hypot(p.X, p.Y) }

// XyzPoint is an ECEF (geocentric) cartesian point in meters, used only
// for the fast-rejection bounding check ahead of the full intercept solve.
type XyzPoint struct {
	X, Y, Z float64
}

// Sub returns the vector from o to p.
func (p XyzPoint) Sub(o XyzPoint) XyzPoint { return XyzPoint{p.X - o.X, p.Y - o.Y, p.Z - o.Z} }

// Dot returns the dot product of p and o.
func (p XyzPoint) Dot(o XyzPoint) float64 { return p.X*o.X + p.Y*o.Y + p.Z*o.Z }

// Norm returns the Euclidean length of p treated as a vector from the origin.
func (p XyzPoint) Norm() float64 { return math.Sqrt(p.Dot(p)) }

// GeoAndXyzPoint pairs a validated ellipsoidal point with its geocentric
// cartesian projection, computed once and reused by the fast-rejection
// floor in the interception engine.
type GeoAndXyzPoint struct {
	Geo GeoPoint
	Xyz XyzPoint
}

// NewGeoAndXyzPoint builds the pair, deriving Xyz via the geocentric
// forward transform.
func NewGeoAndXyzPoint(p GeoPoint) GeoAndXyzPoint {
	return GeoAndXyzPoint{Geo: p, Xyz: GeocentricForward(p)}
}

// Segment is an ordered pair (A, B) of GeoPoint with cached geodesic
// attributes: arc length, azimuth at A and azimuth at B, both in the
// direction of travel from A to B.
// A zero-length segment (A equal to B by coordinates) is permitted and
// yields LenM == 0; callers degrade to "no intercept" on such segments.
type Segment struct {
	A, B   GeoPoint
	LenM   Meters
	Azi1   Degrees
	Azi2   Degrees
}

// NewSegment builds a Segment, computing its cached geodesic attributes
// via the inverse primitive. Fails only if the inverse solver itself
// fails, which happens only on NaN input -- impossible for validated
// GeoPoints, so this constructor does not return an error.
func NewSegment(a, b GeoPoint) Segment {
	if a.Equal(b) {
		return Segment{A: a, B: b, LenM: 0, Azi1: 0, Azi2: 0}
	}
	res := Inverse(a, b)
	return Segment{A: a, B: b, LenM: res.S12M, Azi1: res.Azi1Deg, Azi2: res.Azi2Deg}
}

// IsDegenerate reports whether the segment's azimuth at A and azimuth at
// B disagree by more than the tolerance a strict caller would allow. A
// zero-length segment is never degenerate by this definition; it is
// simply inert.
func (s Segment) IsDegenerate(toleranceDeg float64) bool {
	if s.LenM == 0 {
		return false
	}
	want := normalizeAzimuth(float64(s.Azi1))
	got := normalizeAzimuth(float64(s.Azi2))
	diff := math.Abs(want - got)
	if diff > 180 {
		diff = 360 - diff
	}
	return diff > toleranceDeg
}

func normalizeAzimuth(deg float64) float64 {
	for deg > 180 {
		deg -= 360
	}
	for deg <= -180 {
		deg += 360
	}
	return deg
}

// CreatorHint records which GPX producer supplied a waypoint, used to
// select the point-type mapping table.
type CreatorHint int

const (
	CreatorUnknown CreatorHint = iota
	CreatorGaia
	CreatorRideWithGPS
)

func (c CreatorHint) String() string {
	switch c {
	case CreatorGaia:
		return "gaia"
	case CreatorRideWithGPS:
		return "ridewithgps"
	default:
		return "unknown"
	}
}

// RoutePoint is a GeoPoint with a cumulative distance from the start of
// the route, assigned by the course assembler.
type RoutePoint struct {
	Point  GeoPoint
	CumM   Meters
}

// Waypoint is a free-standing surface point considered as a candidate
// course point. This type does not truncate Name; the FIT encoder
// truncates it at a UTF-8 boundary to fit the 16-byte course_point name
// field (15 bytes plus a null terminator).
type Waypoint struct {
	Point       GeoPoint
	Name        string
	Symbol      string
	GpxType     string
	Creator     CreatorHint
}

// CoursePoint is a Waypoint promoted to belong to a Course.
type CoursePoint struct {
	Waypoint     Waypoint
	AlongM       Meters
	PerpM        Meters
	SegmentIndex int
	Type         CoursePointType
}

// Course is immutable after build.
type Course struct {
	Name         string
	Sport        Sport
	Route        []RoutePoint
	CoursePoints []CoursePoint
	SpeedMPS     MetersPerSecond
	Created      int64 // Unix seconds UTC
}

// TotalLength returns the cumulative distance of the last route point,
// i.e. the full route length.
func (c Course) TotalLength() Meters {
	if len(c.Route) == 0 {
		return 0
	}
	return c.Route[len(c.Route)-1].CumM
}

// CourseSet is one or more Courses plus the waypoint pool they were
// built from. The current assembler only ever emits sets containing
// exactly one Course.
type CourseSet struct {
	Courses   []Course
	Waypoints []Waypoint
}
