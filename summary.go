package coursepointer

import (
	"fmt"
	"strings"
)

// BuildConversionSummary renders a ConversionReport as a short
// human-readable block suitable for CLI output.
func BuildConversionSummary(report *ConversionReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Course: %q (%s)\n", report.CourseName, report.Sport)
	fmt.Fprintf(&b, "Length: %.2f m over %d route points\n", report.TotalLengthM, report.RoutePointCount)
	fmt.Fprintf(&b, "Course points: %d of %d waypoints (threshold %.1f m, strategy %s)\n",
		report.CoursePointCount, report.WaypointCount, report.ThresholdM, report.Strategy)

	included := 0
	for _, d := range report.Dispositions {
		if d.Included {
			included++
		}
	}
	skipped := len(report.Dispositions) - included
	if skipped > 0 {
		fmt.Fprintf(&b, "Skipped: %d waypoint(s) outside threshold\n", skipped)
	}

	for _, d := range report.Dispositions {
		if !d.Included {
			continue
		}
		fmt.Fprintf(&b, "  %-24s along=%8.1fm perp=%5.2fm\n", d.Name, d.AlongM, d.PerpM)
	}

	if len(report.Warnings) > 0 {
		fmt.Fprintf(&b, "Warnings:\n")
		for _, w := range report.Warnings {
			fmt.Fprintf(&b, "  - %s\n", w)
		}
	}

	return b.String()
}
