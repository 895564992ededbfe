package coursepointer

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"github.com/lucasjlepore/coursepointer/pointtype"
)

// InterceptStrategy controls how the assembler picks among multiple
// candidate segments when a waypoint intercepts more than one.
type InterceptStrategy int

const (
	// InterceptNearest keeps the single candidate with the smallest
	// perpendicular distance across the whole route. This is the default.
	InterceptNearest InterceptStrategy = iota
	// InterceptFirst keeps only the earliest-along-route candidate,
	// regardless of which has the smallest perpendicular distance.
	InterceptFirst
	// InterceptAll keeps every surviving candidate, producing one
	// CoursePoint per span a waypoint comes near, subject to the usual
	// dedup pass.
	InterceptAll
)

// degenerateToleranceDeg is the azimuth disagreement, in degrees, above
// which a segment is considered degenerate in strict mode.
const degenerateToleranceDeg = 5.0

// parallelThreshold is the segments*waypoints product above which the
// assembler switches from a single worker to a goroutine pool sized to
// available CPUs.
const parallelThreshold = 256

// CourseOptions configures course assembly.
type CourseOptions struct {
	Name            string
	Sport           Sport
	SpeedMPS        MetersPerSecond
	ThresholdM      Meters
	DedupAlongM     Meters
	Strategy        InterceptStrategy
	Strict          bool
	CreatedUnixSec  int64
	ForceSequential bool
}

// DefaultCourseOptions returns the spec-mandated defaults: 35 m threshold,
// 1 m dedup window, nearest-wins tie-break strategy.
func DefaultCourseOptions() CourseOptions {
	return CourseOptions{
		Sport:       SportCycling,
		SpeedMPS:    MetersPerSecond(5),
		ThresholdM:  35,
		DedupAlongM: 1,
		Strategy:    InterceptNearest,
	}
}

// WaypointDisposition records why a waypoint did or did not become a
// course point, for inclusion in a ConversionReport.
type WaypointDisposition struct {
	WaypointIndex int
	Name          string
	Included      bool
	Reason        string
	AlongM        Meters
	PerpM         Meters
}

// AssembleCourse builds a Course from an ordered route and a waypoint
// pool, per the assembler process: collapse duplicate adjacent route
// points, build segments and cumulative distances, intercept every
// waypoint against every segment, sort, deduplicate, and tag.
//
// ctx is checked for cancellation between waypoints; a cancelled context
// aborts promptly with ErrCancelled.
func AssembleCourse(ctx context.Context, routePoints []GeoPoint, waypoints []Waypoint, opts CourseOptions) (*Course, []WaypointDisposition, error) {
	if opts.ThresholdM <= 0 {
		opts.ThresholdM = 35
	}
	if opts.DedupAlongM < 0 {
		opts.DedupAlongM = 1
	}
	if opts.SpeedMPS <= 0 {
		opts.SpeedMPS = 5
	}

	distinct := collapseAdjacentDuplicates(routePoints)
	if len(distinct) < 2 {
		return nil, nil, newError(ErrEmptyCourse, "fewer than two distinct route points after collapsing duplicates", nil)
	}

	segments := make([]Segment, len(distinct)-1)
	for i := 0; i < len(distinct)-1; i++ {
		seg := NewSegment(distinct[i], distinct[i+1])
		if opts.Strict && seg.IsDegenerate(degenerateToleranceDeg) {
			return nil, nil, newErrorf(ErrDegenerateSegment, nil, "segment %d forward/reverse azimuths disagree beyond tolerance", i)
		}
		segments[i] = seg
	}

	route := make([]RoutePoint, len(distinct))
	route[0] = RoutePoint{Point: distinct[0], CumM: 0}
	cum := Meters(0)
	for i, seg := range segments {
		cum = cum.Add(seg.LenM)
		route[i+1] = RoutePoint{Point: distinct[i+1], CumM: cum}
	}

	segGeoms := make([]SegmentGeom, len(segments))
	for i, seg := range segments {
		segGeoms[i] = NewSegmentGeom(seg)
	}

	results, err := interceptAllWaypoints(ctx, segGeoms, waypoints, opts)
	if err != nil {
		return nil, nil, err
	}

	type provisional struct {
		cp       CoursePoint
		wIndex   int
	}
	var provisionals []provisional
	dispositions := make([]WaypointDisposition, len(waypoints))

	for wIndex, w := range waypoints {
		candidates := results[wIndex]
		dispositions[wIndex] = WaypointDisposition{WaypointIndex: wIndex, Name: w.Name, Included: false, Reason: "no intercept within threshold"}
		if len(candidates) == 0 {
			continue
		}

		chosen := chooseCandidates(candidates, opts.Strategy)
		for _, nb := range chosen {
			along := route[nb.SegmentIndex].CumM.Add(nb.Verdict.AlongM)
			cp := CoursePoint{
				Waypoint:     w,
				AlongM:       along,
				PerpM:        nb.Verdict.PerpM,
				SegmentIndex: nb.SegmentIndex,
				Type:         pointtype.Classify(w.Creator.String(), w.Symbol, w.GpxType),
			}
			provisionals = append(provisionals, provisional{cp: cp, wIndex: wIndex})
		}
		dispositions[wIndex].Included = true
		dispositions[wIndex].AlongM = provisionals[len(provisionals)-1].cp.AlongM
		dispositions[wIndex].PerpM = provisionals[len(provisionals)-1].cp.PerpM
		dispositions[wIndex].Reason = "intercepted"
	}

	sort.SliceStable(provisionals, func(i, j int) bool {
		if provisionals[i].cp.AlongM != provisionals[j].cp.AlongM {
			return provisionals[i].cp.AlongM < provisionals[j].cp.AlongM
		}
		return provisionals[i].wIndex < provisionals[j].wIndex
	})

	var kept []CoursePoint
	for _, p := range provisionals {
		if len(kept) > 0 {
			prev := kept[len(kept)-1]
			alongClose := absMeters(p.cp.AlongM-prev.AlongM) <= opts.DedupAlongM
			coordsClose := Inverse(prev.Waypoint.Point, p.cp.Waypoint.Point).S12M <= Meters(1)
			if alongClose && coordsClose {
				continue
			}
		}
		kept = append(kept, p.cp)
	}

	course := &Course{
		Name:         opts.Name,
		Sport:        opts.Sport,
		Route:        route,
		CoursePoints: kept,
		SpeedMPS:     opts.SpeedMPS,
		Created:      opts.CreatedUnixSec,
	}
	return course, dispositions, nil
}

func collapseAdjacentDuplicates(points []GeoPoint) []GeoPoint {
	out := make([]GeoPoint, 0, len(points))
	for _, p := range points {
		if len(out) > 0 && out[len(out)-1].Equal(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func chooseCandidates(candidates []NearbySegment, strategy InterceptStrategy) []NearbySegment {
	switch strategy {
	case InterceptAll:
		return candidates
	case InterceptFirst:
		best := candidates[0]
		for _, c := range candidates[1:] {
			if c.SegmentIndex < best.SegmentIndex {
				best = c
			}
		}
		return []NearbySegment{best}
	default: // InterceptNearest
		best := candidates[0]
		for _, c := range candidates[1:] {
			if c.Verdict.PerpM < best.Verdict.PerpM ||
				(c.Verdict.PerpM == best.Verdict.PerpM && c.SegmentIndex < best.SegmentIndex) {
				best = c
			}
		}
		return []NearbySegment{best}
	}
}

func absMeters(m Meters) Meters {
	if m < 0 {
		return -m
	}
	return m
}

// interceptAllWaypoints evaluates every waypoint against every segment,
// choosing a sequential or parallel strategy per the spec's concurrency
// model. The result slice preserves waypoint order regardless of which
// path ran, so downstream sorting is deterministic across thread counts.
func interceptAllWaypoints(ctx context.Context, segGeoms []SegmentGeom, waypoints []Waypoint, opts CourseOptions) ([][]NearbySegment, error) {
	results := make([][]NearbySegment, len(waypoints))
	product := len(segGeoms) * len(waypoints)

	if opts.ForceSequential || product <= parallelThreshold {
		for i, w := range waypoints {
			if err := checkCancelled(ctx); err != nil {
				return nil, err
			}
			results[i] = FindNearbySegments(segGeoms, NewGeoAndXyzPoint(w.Point), opts.ThresholdM)
		}
		return results, nil
	}

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 1
	}
	if numWorkers > len(waypoints) {
		numWorkers = len(waypoints)
	}

	indices := make(chan int)
	var wg sync.WaitGroup
	var cancelOnce sync.Once
	var cancelErr error
	var mu sync.Mutex

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indices {
				if err := checkCancelled(ctx); err != nil {
					cancelOnce.Do(func() {
						mu.Lock()
						cancelErr = err
						mu.Unlock()
					})
					continue
				}
				results[idx] = FindNearbySegments(segGeoms, NewGeoAndXyzPoint(waypoints[idx].Point), opts.ThresholdM)
			}
		}()
	}

	for i := range waypoints {
		indices <- i
	}
	close(indices)
	wg.Wait()

	mu.Lock()
	err := cancelErr
	mu.Unlock()
	if err != nil {
		return nil, err
	}
	return results, nil
}

func checkCancelled(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return newError(ErrCancelled, "cancellation requested", ctx.Err())
	default:
		return nil
	}
}
