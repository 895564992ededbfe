package coursepointer

import (
	"math"
	"testing"
)

func mustGeoPoint(t *testing.T, lat, lon float64) GeoPoint {
	t.Helper()
	p, err := NewGeoPoint(lat, lon)
	if err != nil {
		t.Fatalf("NewGeoPoint(%v, %v): %v", lat, lon, err)
	}
	return p
}

func TestInverseOneDegreeOfLatitudeAtEquator(t *testing.T) {
	a := mustGeoPoint(t, 0, 0)
	b := mustGeoPoint(t, 1, 0)
	res := Inverse(a, b)
	// One degree of latitude along a meridian from the equator is about
	// 110.57 km on WGS84.
	if !almostEqual(float64(res.S12M), 110574.39, 50) {
		t.Fatalf("S12M = %v, want ~110574.4", res.S12M)
	}
	if !almostEqual(float64(res.Azi1Deg), 0, 1e-6) {
		t.Fatalf("Azi1Deg = %v, want 0", res.Azi1Deg)
	}
}

func TestInverseZeroLength(t *testing.T) {
	a := mustGeoPoint(t, 37.4, -122.1)
	res := Inverse(a, a)
	if res.S12M != 0 {
		t.Fatalf("S12M = %v, want 0", res.S12M)
	}
}

func TestDirectInverseRoundTrip(t *testing.T) {
	start := mustGeoPoint(t, 37.39987, -122.13737)
	azi := Degrees(42.5)
	dist := Meters(500)

	end := Direct(start, azi, dist)
	back := Inverse(start, end)

	if !almostEqual(float64(back.S12M), float64(dist), 1e-3) {
		t.Fatalf("round trip distance = %v, want %v", back.S12M, dist)
	}
	if !almostEqual(float64(back.Azi1Deg), float64(azi), 1e-3) {
		t.Fatalf("round trip azimuth = %v, want %v", back.Azi1Deg, azi)
	}
}

func TestGnomonicForwardReverseRoundTrip(t *testing.T) {
	center := mustGeoPoint(t, 37.4, -122.1)
	chart := NewGnomonicChart(center)

	target := mustGeoPoint(t, 37.405, -122.095)
	xy, err := chart.Forward(target)
	if err != nil {
		t.Fatalf("Forward: %v", err)
	}
	back := chart.Reverse(xy)

	if !almostEqual(float64(back.LatDeg), float64(target.LatDeg), 1e-6) {
		t.Fatalf("reverse lat = %v, want %v", back.LatDeg, target.LatDeg)
	}
	if !almostEqual(float64(back.LonDeg), float64(target.LonDeg), 1e-6) {
		t.Fatalf("reverse lon = %v, want %v", back.LonDeg, target.LonDeg)
	}
}

func TestGnomonicForwardOutOfRange(t *testing.T) {
	center := mustGeoPoint(t, 0, 0)
	chart := NewGnomonicChart(center)
	antipode := mustGeoPoint(t, 0, 180)

	_, err := chart.Forward(antipode)
	if err == nil {
		t.Fatal("expected an out-of-range error for an antipodal point")
	}
	var cpErr *Error
	if !asError(err, &cpErr) || cpErr.Kind != ErrGnomonicOutOfRange {
		t.Fatalf("expected ErrGnomonicOutOfRange, got %v", err)
	}
}

func TestGeocentricForwardMatchesEquatorialRadius(t *testing.T) {
	p := mustGeoPoint(t, 0, 0)
	xyz := GeocentricForward(p)
	if !almostEqual(xyz.Norm(), WGS84A, 1e-3) {
		t.Fatalf("equatorial point norm = %v, want %v", xyz.Norm(), WGS84A)
	}
}

func TestGeocentricForwardPoleUsesPolarRadius(t *testing.T) {
	p := mustGeoPoint(t, 90, 0)
	xyz := GeocentricForward(p)
	if !almostEqual(xyz.Norm(), WGS84B, 1e-3) {
		t.Fatalf("polar point norm = %v, want %v", xyz.Norm(), WGS84B)
	}
	if !almostEqual(math.Hypot(xyz.X, xyz.Y), 0, 1e-6) {
		t.Fatalf("pole should project to the z axis, got x=%v y=%v", xyz.X, xyz.Y)
	}
}

func asError(err error, target **Error) bool {
	e, ok := err.(*Error)
	if !ok {
		return false
	}
	*target = e
	return true
}
