package coursepointer

import "math"

// karneyConvergence is the per-iteration movement of the foot, in meters
// on the ellipsoid as measured by Inverse, below which the
// foot-of-perpendicular search is considered converged.
const karneyConvergence = 1e-6

// karneyMaxIterations bounds the recentering loop; hitting the cap is
// treated as convergence at the latest foot point, not as a failure.
const karneyMaxIterations = 10

// footEpsilonM is the tolerance, in meters along the segment, inside
// which the open-interval acceptance test at each end is applied.
const footEpsilonM = 1e-6

// chordPaddingM is added to the chord-sag bound when computing the
// fast-rejection distance floor.
const chordPaddingM = 1e-6

// InterceptVerdict is the outcome of testing one (segment, point) pair.
type InterceptVerdict struct {
	Intercepted bool
	AlongM      Meters
	PerpM       Meters
}

// KarneyIntercept solves the foot-of-perpendicular problem for a single
// geodesic segment and point using gnomonic recentering: project the
// segment endpoints and the point into a gnomonic plane centered near
// the segment, solve the foot of perpendicular linearly, back-project,
// recenter at the new foot, and repeat until the foot stops moving or
// the iteration cap is reached. The final foot is re-measured on the
// ellipsoid via Inverse so the reported distances are never gnomonic
// plane artifacts.
func KarneyIntercept(seg Segment, p GeoPoint, thresholdM Meters) InterceptVerdict {
	dA := Inverse(p, seg.A).S12M
	dB := Inverse(p, seg.B).S12M

	if seg.LenM == 0 {
		return InterceptVerdict{Intercepted: false, PerpM: minMeters(dA, dB)}
	}
	if dA > seg.LenM+thresholdM && dB > seg.LenM+thresholdM {
		return InterceptVerdict{Intercepted: false, PerpM: minMeters(dA, dB)}
	}

	center := Direct(seg.A, seg.Azi1, seg.LenM/2)
	foot := center
	var lastFoot GeoPoint
	converged := false

	for i := 0; i < karneyMaxIterations; i++ {
		chart := NewGnomonicChart(foot)
		aP, errA := chart.Forward(seg.A)
		bP, errB := chart.Forward(seg.B)
		pP, errP := chart.Forward(p)
		if errA != nil || errB != nil || errP != nil {
			return InterceptVerdict{Intercepted: false, PerpM: minMeters(dA, dB)}
		}

		v := bP.Sub(aP)
		w := pP.Sub(aP)
		denom := v.Dot(v)
		var t float64
		if denom > 0 {
			t = w.Dot(v) / denom
		}
		footPlane := aP.Add(v.Scale(t))
		nextFoot := chart.Reverse(footPlane)

		if i > 0 {
			moved := Inverse(lastFoot, nextFoot).S12M
			if float64(moved) < karneyConvergence {
				foot = nextFoot
				converged = true
				break
			}
		}
		lastFoot = nextFoot
		foot = nextFoot
	}
	_ = converged

	// Final acceptance uses the last converged gnomonic plane's linear
	// parameter, recomputed once more for a consistent length scale.
	chart := NewGnomonicChart(foot)
	aP, errA := chart.Forward(seg.A)
	bP, errB := chart.Forward(seg.B)
	if errA != nil || errB != nil {
		return InterceptVerdict{Intercepted: false, PerpM: minMeters(dA, dB)}
	}
	v := bP.Sub(aP)
	lenInPlane := v.Norm()
	footP, errF := chart.Forward(foot)
	var tAlong float64
	if errF == nil && v.Dot(v) > 0 {
		tAlong = footP.Sub(aP).Dot(v) / v.Dot(v)
	}
	alongInPlane := tAlong * lenInPlane

	if alongInPlane <= footEpsilonM || alongInPlane >= lenInPlane-footEpsilonM {
		return InterceptVerdict{Intercepted: false, PerpM: minMeters(dA, dB)}
	}

	along := Inverse(seg.A, foot).S12M
	perp := Inverse(p, foot).S12M
	if perp > thresholdM {
		return InterceptVerdict{Intercepted: false, PerpM: perp}
	}
	return InterceptVerdict{Intercepted: true, AlongM: along, PerpM: perp}
}

func minMeters(a, b Meters) Meters {
	if a < b {
		return a
	}
	return b
}

// SegmentGeom pairs a Segment with its endpoints' geocentric cartesian
// coordinates, precomputed once per course build and reused across every
// waypoint's fast-rejection check.
type SegmentGeom struct {
	Seg  Segment
	AXyz XyzPoint
	BXyz XyzPoint
}

// NewSegmentGeom builds the cached geocentric projection for a segment.
func NewSegmentGeom(seg Segment) SegmentGeom {
	return SegmentGeom{Seg: seg, AXyz: GeocentricForward(seg.A), BXyz: GeocentricForward(seg.B)}
}

// InterceptDistanceFloor returns a cheap lower bound on the true
// perpendicular distance from p to the segment's geodesic, derived from
// the cartesian (ECEF) distance to the straight chord between the
// segment's endpoints minus the worst-case sag of the ellipsoidal
// geodesic below that chord. When this floor already exceeds the
// threshold, the full Karney solve can be skipped: no matter how the
// geodesic actually curves, the point cannot be within threshold.
func InterceptDistanceFloor(sg SegmentGeom, pXyz XyzPoint) Meters {
	v := sg.BXyz.Sub(sg.AXyz)
	w := pXyz.Sub(sg.AXyz)
	denom := v.Dot(v)
	t := 0.0
	if denom > 0 {
		t = w.Dot(v) / denom
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
	}
	proj := XyzPoint{X: sg.AXyz.X + v.X*t, Y: sg.AXyz.Y + v.Y*t, Z: sg.AXyz.Z + v.Z*t}
	dist := pXyz.Sub(proj).Norm()
	depth := maxChordDepth(v.Norm())
	floor := dist - depth - chordPaddingM
	if floor < 0 {
		floor = 0
	}
	return Meters(floor)
}

// maxChordDepth bounds how far the true ellipsoidal geodesic between two
// points can sag away from the straight cartesian chord joining them,
// as a function of the chord's cartesian length.
func maxChordDepth(chordLenM float64) float64 {
	denom := 4 * WGS84B * WGS84B
	ratio := chordLenM * chordLenM / denom
	if ratio > 1 {
		ratio = 1
	}
	return WGS84A * (1 - math.Sqrt(1-ratio))
}

// NearbySegment is one candidate intercept surviving the fast-rejection
// floor and the full Karney solve, identified by its segment index.
type NearbySegment struct {
	SegmentIndex int
	Verdict      InterceptVerdict
}

// FindNearbySegments evaluates a waypoint against every segment of a
// route, skipping the expensive Karney solve wherever the cartesian
// distance floor already exceeds threshold. Rather than keeping a single
// global minimum, contiguous runs of below-threshold segments are
// grouped into spans and the local minimum perpendicular distance is
// kept per span. This preserves multiple candidates for a waypoint that
// sits near more than one part of the route (an out-and-back or a
// switchback), which a single global minimum would collapse to one.
func FindNearbySegments(segments []SegmentGeom, p GeoAndXyzPoint, thresholdM Meters) []NearbySegment {
	type scored struct {
		index   int
		verdict InterceptVerdict
		below   bool
	}
	scoredSegs := make([]scored, len(segments))
	for i, sg := range segments {
		floor := InterceptDistanceFloor(sg, p.Xyz)
		if floor > thresholdM {
			scoredSegs[i] = scored{index: i, below: false}
			continue
		}
		verdict := KarneyIntercept(sg.Seg, p.Geo, thresholdM)
		scoredSegs[i] = scored{index: i, verdict: verdict, below: verdict.Intercepted}
	}

	var candidates []NearbySegment
	i := 0
	for i < len(scoredSegs) {
		if !scoredSegs[i].below {
			i++
			continue
		}
		best := scoredSegs[i]
		j := i + 1
		for j < len(scoredSegs) && scoredSegs[j].below {
			if scoredSegs[j].verdict.PerpM < best.verdict.PerpM {
				best = scoredSegs[j]
			}
			j++
		}
		candidates = append(candidates, NearbySegment{SegmentIndex: best.index, Verdict: best.verdict})
		i = j
	}
	return candidates
}
