package coursepointer

import "time"

// ReportFormatVersion identifies the on-disk schema of ConversionReport,
// following the same versioned-manifest convention used by the FIT
// inspection tooling.
const ReportFormatVersion = "coursepointer_conversion_report_v1"

// ConversionReport is returned on success from the top-level conversion
// entry point: course name, total length, per-waypoint disposition, and
// the number of course points actually emitted.
type ConversionReport struct {
	FormatVersion      string                `json:"format_version"`
	GeneratedAt        time.Time             `json:"generated_at"`
	CourseName         string                `json:"course_name"`
	Sport              string                `json:"sport"`
	TotalLengthM       float64               `json:"total_length_m"`
	RoutePointCount    int                   `json:"route_point_count"`
	WaypointCount      int                   `json:"waypoint_count"`
	CoursePointCount   int                   `json:"course_point_count"`
	ThresholdM         float64               `json:"threshold_m"`
	DedupAlongM        float64               `json:"dedup_along_m"`
	Strategy           string                `json:"strategy"`
	Dispositions       []WaypointReportEntry `json:"waypoint_dispositions"`
	EncodedSizeBytes   int64                 `json:"encoded_size_bytes,omitempty"`
	Warnings           []string              `json:"warnings,omitempty"`
}

// WaypointReportEntry is the JSON projection of a WaypointDisposition.
type WaypointReportEntry struct {
	WaypointIndex int     `json:"waypoint_index"`
	Name          string  `json:"name"`
	Included      bool    `json:"included"`
	Reason        string  `json:"reason"`
	AlongM        float64 `json:"along_m,omitempty"`
	PerpM         float64 `json:"perp_m,omitempty"`
}

func (s InterceptStrategy) String() string {
	switch s {
	case InterceptFirst:
		return "first"
	case InterceptAll:
		return "all"
	default:
		return "nearest"
	}
}

// BuildConversionReport projects a built Course and its waypoint
// dispositions into the versioned report shape.
func BuildConversionReport(course *Course, dispositions []WaypointDisposition, opts CourseOptions, encodedSize int64) *ConversionReport {
	entries := make([]WaypointReportEntry, len(dispositions))
	for i, d := range dispositions {
		entries[i] = WaypointReportEntry{
			WaypointIndex: d.WaypointIndex,
			Name:          d.Name,
			Included:      d.Included,
			Reason:        d.Reason,
			AlongM:        float64(d.AlongM),
			PerpM:         float64(d.PerpM),
		}
	}
	return &ConversionReport{
		FormatVersion:    ReportFormatVersion,
		GeneratedAt:      time.Now().UTC(),
		CourseName:       course.Name,
		Sport:            course.Sport.String(),
		TotalLengthM:     float64(course.TotalLength()),
		RoutePointCount:  len(course.Route),
		WaypointCount:    len(dispositions),
		CoursePointCount: len(course.CoursePoints),
		ThresholdM:       float64(opts.ThresholdM),
		DedupAlongM:      float64(opts.DedupAlongM),
		Strategy:         opts.Strategy.String(),
		Dispositions:     entries,
		EncodedSizeBytes: encodedSize,
	}
}
