package coursepointer

import (
	"context"
	"testing"
)

func TestAssembleCourseRejectsFewerThanTwoDistinctPoints(t *testing.T) {
	p := mustGeoPoint(t, 37.4, -122.1)
	_, _, err := AssembleCourse(context.Background(), []GeoPoint{p, p}, nil, DefaultCourseOptions())
	if err == nil {
		t.Fatal("expected an error when every route point collapses to one")
	}
	var cpErr *Error
	if !asError(err, &cpErr) || cpErr.Kind != ErrEmptyCourse {
		t.Fatalf("expected ErrEmptyCourse, got %v", err)
	}
}

func TestAssembleCourseStraightLineWithOneNearbyWaypoint(t *testing.T) {
	a := mustGeoPoint(t, 37.40000, -122.14000)
	b := mustGeoPoint(t, 37.40000, -122.13000)
	c := mustGeoPoint(t, 37.40000, -122.12000)
	route := []GeoPoint{a, b, c}

	onRoute := mustGeoPoint(t, 37.40000, -122.13500)
	waypoints := []Waypoint{{Point: onRoute, Name: "Aid Station", GpxType: "Generic"}}

	course, dispositions, err := AssembleCourse(context.Background(), route, waypoints, DefaultCourseOptions())
	if err != nil {
		t.Fatalf("AssembleCourse: %v", err)
	}
	if len(course.CoursePoints) != 1 {
		t.Fatalf("expected exactly 1 course point, got %d", len(course.CoursePoints))
	}
	if !dispositions[0].Included {
		t.Fatalf("expected the waypoint to be included, reason=%q", dispositions[0].Reason)
	}
	cp := course.CoursePoints[0]
	if !almostEqual(float64(cp.PerpM), 0, 1) {
		t.Fatalf("PerpM = %v, want ~0 for a point on the route", cp.PerpM)
	}
}

func TestAssembleCourseWaypointBeyondThresholdIsExcluded(t *testing.T) {
	a := mustGeoPoint(t, 37.40000, -122.14000)
	b := mustGeoPoint(t, 37.40000, -122.13000)
	route := []GeoPoint{a, b}

	far := mustGeoPoint(t, 37.41000, -122.13500)
	waypoints := []Waypoint{{Point: far, Name: "Too Far"}}

	opts := DefaultCourseOptions()
	opts.ThresholdM = 35
	course, dispositions, err := AssembleCourse(context.Background(), route, waypoints, opts)
	if err != nil {
		t.Fatalf("AssembleCourse: %v", err)
	}
	if len(course.CoursePoints) != 0 {
		t.Fatalf("expected no course points, got %d", len(course.CoursePoints))
	}
	if dispositions[0].Included {
		t.Fatalf("expected the distant waypoint to be excluded")
	}
}

func TestAssembleCourseDedupCollapsesNearbyDuplicates(t *testing.T) {
	a := mustGeoPoint(t, 37.40000, -122.14000)
	b := mustGeoPoint(t, 37.40000, -122.13000)
	route := []GeoPoint{a, b}

	p1 := mustGeoPoint(t, 37.40000, -122.13500)
	p2 := Direct(p1, Degrees(90), Meters(0.5))
	waypoints := []Waypoint{
		{Point: p1, Name: "Water Stop"},
		{Point: p2, Name: "Water Stop Duplicate"},
	}

	opts := DefaultCourseOptions()
	opts.DedupAlongM = 1
	course, _, err := AssembleCourse(context.Background(), route, waypoints, opts)
	if err != nil {
		t.Fatalf("AssembleCourse: %v", err)
	}
	if len(course.CoursePoints) != 1 {
		t.Fatalf("expected dedup to collapse to 1 course point, got %d", len(course.CoursePoints))
	}
}

func TestAssembleCourseSortsByAlongDistance(t *testing.T) {
	a := mustGeoPoint(t, 37.40000, -122.14000)
	b := mustGeoPoint(t, 37.40000, -122.13000)
	c := mustGeoPoint(t, 37.40000, -122.12000)
	route := []GeoPoint{a, b, c}

	near := mustGeoPoint(t, 37.40000, -122.135)
	far := mustGeoPoint(t, 37.40000, -122.125)
	waypoints := []Waypoint{
		{Point: far, Name: "Second"},
		{Point: near, Name: "First"},
	}

	course, _, err := AssembleCourse(context.Background(), route, waypoints, DefaultCourseOptions())
	if err != nil {
		t.Fatalf("AssembleCourse: %v", err)
	}
	if len(course.CoursePoints) != 2 {
		t.Fatalf("expected 2 course points, got %d", len(course.CoursePoints))
	}
	if course.CoursePoints[0].Waypoint.Name != "First" {
		t.Fatalf("expected the nearer-along-route waypoint first, got %q", course.CoursePoints[0].Waypoint.Name)
	}
	if course.CoursePoints[0].AlongM >= course.CoursePoints[1].AlongM {
		t.Fatalf("expected sorted by AlongM ascending, got %v then %v",
			course.CoursePoints[0].AlongM, course.CoursePoints[1].AlongM)
	}
}

func TestAssembleCourseStrictAcceptsWellFormedSegment(t *testing.T) {
	a := mustGeoPoint(t, 0, 0)
	b := mustGeoPoint(t, 0, 0.0001)
	route := []GeoPoint{a, b}

	opts := DefaultCourseOptions()
	opts.Strict = true
	_, _, err := AssembleCourse(context.Background(), route, nil, opts)
	if err != nil {
		t.Fatalf("expected a well-formed short segment to pass strict mode, got %v", err)
	}
}

func TestAssembleCourseRespectsInterceptFirstStrategy(t *testing.T) {
	a := mustGeoPoint(t, 37.40000, -122.14000)
	b := mustGeoPoint(t, 37.40000, -122.13000)
	c := mustGeoPoint(t, 37.40000, -122.12000)
	route := []GeoPoint{a, b, c}

	// A waypoint on the first segment just short of the shared vertex; its
	// foot on the second segment would fall before that segment's start,
	// so only the first segment intercepts it.
	nearVertex := mustGeoPoint(t, 37.40000, -122.130005)
	waypoints := []Waypoint{{Point: nearVertex, Name: "Junction"}}

	opts := DefaultCourseOptions()
	opts.Strategy = InterceptFirst
	course, _, err := AssembleCourse(context.Background(), route, waypoints, opts)
	if err != nil {
		t.Fatalf("AssembleCourse: %v", err)
	}
	if len(course.CoursePoints) != 1 {
		t.Fatalf("expected exactly 1 course point with InterceptFirst, got %d", len(course.CoursePoints))
	}
}

func TestAssembleCourseCancellation(t *testing.T) {
	a := mustGeoPoint(t, 37.4, -122.1)
	b := mustGeoPoint(t, 37.41, -122.1)
	route := []GeoPoint{a, b}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := DefaultCourseOptions()
	// Force the sequential path, which checks cancellation per waypoint.
	opts.ForceSequential = true
	waypoints := []Waypoint{{Point: mustGeoPoint(t, 37.405, -122.1), Name: "X"}}
	_, _, err := AssembleCourse(ctx, route, waypoints, opts)
	if err == nil {
		t.Fatal("expected a cancellation error")
	}
	var cpErr *Error
	if !asError(err, &cpErr) || cpErr.Kind != ErrCancelled {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}

func TestAssembleCourseTotalLengthMatchesRoute(t *testing.T) {
	a := mustGeoPoint(t, 37.40000, -122.14000)
	b := mustGeoPoint(t, 37.40000, -122.13000)
	c := mustGeoPoint(t, 37.40000, -122.12000)
	route := []GeoPoint{a, b, c}

	course, _, err := AssembleCourse(context.Background(), route, nil, DefaultCourseOptions())
	if err != nil {
		t.Fatalf("AssembleCourse: %v", err)
	}
	ab := Inverse(a, b).S12M
	bc := Inverse(b, c).S12M
	want := float64(ab) + float64(bc)
	if !almostEqual(float64(course.TotalLength()), want, 1e-3) {
		t.Fatalf("TotalLength() = %v, want %v", course.TotalLength(), want)
	}
}
