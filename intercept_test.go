package coursepointer

import "testing"

func TestKarneyInterceptMidpointOnSegment(t *testing.T) {
	a := mustGeoPoint(t, 37.39987, -122.13737)
	b := mustGeoPoint(t, 37.39888, -122.13498)
	seg := NewSegment(a, b)

	mid := Direct(a, seg.Azi1, seg.LenM.Scale(0.5))
	verdict := KarneyIntercept(seg, mid, Meters(35))

	if !verdict.Intercepted {
		t.Fatalf("expected a point on the segment to intercept")
	}
	if !almostEqual(float64(verdict.PerpM), 0, 1e-3) {
		t.Fatalf("PerpM = %v, want ~0 for a point exactly on the segment", verdict.PerpM)
	}
	if !almostEqual(float64(verdict.AlongM), float64(seg.LenM)/2, 1) {
		t.Fatalf("AlongM = %v, want ~%v", verdict.AlongM, float64(seg.LenM)/2)
	}
}

func TestKarneyInterceptOffsetWithinThreshold(t *testing.T) {
	a := mustGeoPoint(t, 37.39987, -122.13737)
	b := mustGeoPoint(t, 37.39888, -122.13498)
	seg := NewSegment(a, b)

	mid := Direct(a, seg.Azi1, seg.LenM.Scale(0.5))
	perp := normalizeAzimuth(float64(seg.Azi1) + 90)
	offset := Direct(mid, Degrees(perp), Meters(10))

	verdict := KarneyIntercept(seg, offset, Meters(35))
	if !verdict.Intercepted {
		t.Fatalf("expected a 10m offset to intercept within a 35m threshold")
	}
	if !almostEqual(float64(verdict.PerpM), 10, 0.5) {
		t.Fatalf("PerpM = %v, want ~10", verdict.PerpM)
	}
}

func TestKarneyInterceptBeyondThreshold(t *testing.T) {
	a := mustGeoPoint(t, 37.39987, -122.13737)
	b := mustGeoPoint(t, 37.39888, -122.13498)
	seg := NewSegment(a, b)

	mid := Direct(a, seg.Azi1, seg.LenM.Scale(0.5))
	perp := normalizeAzimuth(float64(seg.Azi1) + 90)
	offset := Direct(mid, Degrees(perp), Meters(100))

	verdict := KarneyIntercept(seg, offset, Meters(35))
	if verdict.Intercepted {
		t.Fatalf("expected a 100m offset to miss a 35m threshold")
	}
}

func TestKarneyInterceptBeyondSegmentEnds(t *testing.T) {
	a := mustGeoPoint(t, 37.39987, -122.13737)
	b := mustGeoPoint(t, 37.39888, -122.13498)
	seg := NewSegment(a, b)

	beyond := Direct(b, seg.Azi2, Meters(5))
	verdict := KarneyIntercept(seg, beyond, Meters(35))
	if verdict.Intercepted {
		t.Fatalf("expected a point beyond the segment's far end to not intercept")
	}
}

func TestInterceptDistanceFloorNeverExceedsTrueDistance(t *testing.T) {
	a := mustGeoPoint(t, 37.39987, -122.13737)
	b := mustGeoPoint(t, 37.39888, -122.13498)
	seg := NewSegment(a, b)
	sg := NewSegmentGeom(seg)

	p := mustGeoPoint(t, 37.40, -122.136)
	pXyz := GeocentricForward(p)

	floor := InterceptDistanceFloor(sg, pXyz)
	verdict := KarneyIntercept(seg, p, Meters(1000))

	if float64(floor) > float64(verdict.PerpM)+1e-6 {
		t.Fatalf("floor %v exceeds true perpendicular distance %v", floor, verdict.PerpM)
	}
}

func TestFindNearbySegmentsKeepsLocalMinimumPerSpan(t *testing.T) {
	p1 := mustGeoPoint(t, 37.4000, -122.1400)
	p2 := mustGeoPoint(t, 37.4010, -122.1390)
	p3 := mustGeoPoint(t, 37.4000, -122.1380)
	segA := NewSegment(p1, p2)
	segB := NewSegment(p2, p3)
	geoms := []SegmentGeom{NewSegmentGeom(segA), NewSegmentGeom(segB)}

	// A point about 11 m south of the shared vertex. Its feet fall inside
	// both segments (a foot exactly at a segment end is not accepted), so
	// both intercept and form one span of which only the minimum is kept.
	waypoint := NewGeoAndXyzPoint(mustGeoPoint(t, 37.4009, -122.1390))
	nearby := FindNearbySegments(geoms, waypoint, Meters(50))
	if len(nearby) == 0 {
		t.Fatalf("expected at least one nearby segment near the shared vertex")
	}
	if len(nearby) != 1 {
		t.Fatalf("expected the two adjacent segments to yield one span minimum, got %d", len(nearby))
	}
}
