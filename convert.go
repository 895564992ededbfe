package coursepointer

import (
	"context"
	"io"
	"time"

	"github.com/lucasjlepore/coursepointer/fit"
)

// softwareVersion is the file_creator.software_version this encoder
// claims, following the vendor tooling convention of a three-digit
// fixed-point version number.
const softwareVersion uint16 = 100

// ConvertOptions holds the options of the top-level entry point. It
// currently carries only CourseOptions; the destination sink is a
// separate argument to Convert.
type ConvertOptions struct {
	CourseOptions
}

// Convert assembles a Course from an ordered route and waypoint pool,
// encodes it as a FIT course file to w, and returns the resulting
// ConversionReport. This is the single entry point C1-C6 are wired
// behind; callers needing only the assembled Course without encoding
// should call AssembleCourse directly.
func Convert(ctx context.Context, w io.Writer, routePoints []GeoPoint, waypoints []Waypoint, opts ConvertOptions) (*ConversionReport, error) {
	course, dispositions, err := AssembleCourse(ctx, routePoints, waypoints, opts.CourseOptions)
	if err != nil {
		return nil, err
	}

	encodedSize, err := EncodeCourse(w, course)
	if err != nil {
		return nil, err
	}

	return BuildConversionReport(course, dispositions, opts.CourseOptions, encodedSize), nil
}

// EncodeCourse renders a built Course as a complete FIT course file to w,
// returning the total number of bytes written. The message sequence is
// file_id, course, lap, event(start), record*, course_point*,
// event(stop), file_creator, matching the course-file profile's expected
// framing order.
func EncodeCourse(w io.Writer, course *Course) (int64, error) {
	createdAt := time.Unix(course.Created, 0).UTC()
	if course.Created == 0 {
		createdAt = fit.Epoch
	}

	cw, err := fit.NewCourseWriter(w, len(course.Route), len(course.CoursePoints))
	if err != nil {
		return 0, newError(ErrInternal, "create course writer", err)
	}

	if err := cw.WriteFileID(fit.FileIDParams{TimeCreated: createdAt}); err != nil {
		return 0, newError(ErrInternal, "write file_id", err)
	}
	if err := cw.WriteCourse(fit.CourseParams{Name: course.Name, Sport: uint8(course.Sport)}); err != nil {
		return 0, newError(ErrInternal, "write course", err)
	}

	totalLenM := float64(course.TotalLength())
	elapsedS := 0.0
	if course.SpeedMPS > 0 {
		elapsedS = totalLenM / float64(course.SpeedMPS)
	}
	startTimestamp := createdAt
	endTimestamp := createdAt.Add(time.Duration(elapsedS * float64(time.Second)))

	startPt := course.Route[0].Point
	endPt := course.Route[len(course.Route)-1].Point
	if err := cw.WriteLap(fit.LapParams{
		StartTime:      startTimestamp,
		Timestamp:      endTimestamp,
		TotalElapsedS:  elapsedS,
		TotalTimerS:    elapsedS,
		TotalDistanceM: totalLenM,
		StartLatDeg:    float64(startPt.LatDeg),
		StartLonDeg:    float64(startPt.LonDeg),
		EndLatDeg:      float64(endPt.LatDeg),
		EndLonDeg:      float64(endPt.LonDeg),
	}); err != nil {
		return 0, newError(ErrInternal, "write lap", err)
	}

	if err := cw.WriteEvent(fit.EventParams{
		Timestamp: startTimestamp,
		Event:     fit.EventTimer,
		EventType: fit.EventTypeStart,
	}); err != nil {
		return 0, newError(ErrInternal, "write start event", err)
	}

	for _, rp := range course.Route {
		elapsed := 0.0
		if course.SpeedMPS > 0 {
			elapsed = float64(rp.CumM) / float64(course.SpeedMPS)
		}
		ts := createdAt.Add(time.Duration(elapsed * float64(time.Second)))
		if err := cw.WriteRecord(fit.RecordParams{
			LatDeg:    float64(rp.Point.LatDeg),
			LonDeg:    float64(rp.Point.LonDeg),
			DistanceM: float64(rp.CumM),
			Timestamp: ts,
		}); err != nil {
			return 0, newError(ErrInternal, "write record", err)
		}
	}

	for _, cp := range course.CoursePoints {
		elapsed := 0.0
		if course.SpeedMPS > 0 {
			elapsed = float64(cp.AlongM) / float64(course.SpeedMPS)
		}
		ts := createdAt.Add(time.Duration(elapsed * float64(time.Second)))
		if err := cw.WriteCoursePoint(fit.CoursePointParams{
			Timestamp: ts,
			LatDeg:    float64(cp.Waypoint.Point.LatDeg),
			LonDeg:    float64(cp.Waypoint.Point.LonDeg),
			DistanceM: float64(cp.AlongM),
			Type:      uint8(cp.Type),
			Name:      cp.Waypoint.Name,
		}); err != nil {
			return 0, newError(ErrInternal, "write course_point", err)
		}
	}

	if err := cw.WriteEvent(fit.EventParams{
		Timestamp: endTimestamp,
		Event:     fit.EventTimer,
		EventType: fit.EventTypeStop,
	}); err != nil {
		return 0, newError(ErrInternal, "write stop event", err)
	}

	if err := cw.WriteFileCreator(fit.FileCreatorParams{SoftwareVersion: softwareVersion}); err != nil {
		return 0, newError(ErrInternal, "write file_creator", err)
	}

	total, err := cw.Close()
	if err != nil {
		return 0, newError(ErrInternal, "close course writer", err)
	}
	if total > int64(^uint32(0)) {
		return 0, newError(ErrEncodeTooLarge, "encoded course exceeds FIT file size limit", nil)
	}
	return total, nil
}
