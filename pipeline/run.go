package pipeline

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lucasjlepore/coursepointer"
	"github.com/lucasjlepore/coursepointer/gpxreader"
)

// Run executes the full GPX-to-FIT pipeline against files on disk: parse
// the GPX file, assemble and encode the course, and write the FIT file,
// its conversion report, a plain-text summary, and (when opts.Format is
// set) a course-point table alongside it in OutDir.
func Run(opts Options) (*Result, error) {
	if strings.TrimSpace(opts.GpxPath) == "" {
		return nil, fmt.Errorf("gpx path is required")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}

	gpxData, err := os.ReadFile(opts.GpxPath)
	if err != nil {
		return nil, fmt.Errorf("read gpx file: %w", err)
	}

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(opts.GpxPath), filepath.Ext(opts.GpxPath))
	fitPath := filepath.Join(opts.OutDir, base+".fit")
	reportPath := filepath.Join(opts.OutDir, base+".report.json")
	summaryPath := filepath.Join(opts.OutDir, base+".summary.txt")

	if !opts.Overwrite {
		for _, p := range []string{fitPath, reportPath, summaryPath} {
			if _, err := os.Stat(p); err == nil {
				return nil, fmt.Errorf("output file already exists: %s (pass Overwrite to replace it)", p)
			}
		}
	}

	course, report, err := convertGpxBytes(gpxData, base, bytesToConvertOptions(opts.Sport, opts.SpeedKMH, opts.ThresholdM, opts.DedupM, opts.Strategy, opts.Strict), fitWriterTo(fitPath))
	if err != nil {
		return nil, err
	}

	if err := writeJSON(reportPath, report); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	if err := os.WriteFile(summaryPath, []byte(coursepointer.BuildConversionSummary(report)), 0o644); err != nil {
		return nil, fmt.Errorf("write summary: %w", err)
	}

	res := &Result{
		OutputDir:   opts.OutDir,
		FitPath:     fitPath,
		ReportPath:  reportPath,
		SummaryPath: summaryPath,
	}

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format != "" {
		rows := coursePointRows(course)
		coursePointsPath := filepath.Join(opts.OutDir, base+".course_points."+format)
		switch format {
		case "csv":
			if err := writeCoursePointsCSV(coursePointsPath, rows); err != nil {
				return nil, fmt.Errorf("write course point csv: %w", err)
			}
		case "parquet":
			data, err := marshalCoursePointsParquet(rows)
			if err != nil {
				return nil, fmt.Errorf("marshal course point parquet: %w", err)
			}
			if err := os.WriteFile(coursePointsPath, data, 0o644); err != nil {
				return nil, fmt.Errorf("write course point parquet: %w", err)
			}
		default:
			return nil, fmt.Errorf("unsupported format %q (expected parquet|csv)", format)
		}
		res.CoursePointsPath = coursePointsPath
	}

	return res, nil
}

// RunBytes is the filesystem-free counterpart to Run, for callers (such
// as the WASM build) that only have the GPX document in memory and want
// every artifact back as bytes rather than paths.
func RunBytes(opts BytesOptions) (*BytesResult, error) {
	if len(opts.GpxData) == 0 {
		return nil, fmt.Errorf("gpx data is required")
	}
	base := strings.TrimSuffix(filepath.Base(opts.SourceFileName), filepath.Ext(opts.SourceFileName))
	if base == "" {
		base = "course"
	}

	var fitBuf bytes.Buffer
	course, report, err := convertGpxBytes(opts.GpxData, base, bytesToConvertOptions(opts.Sport, opts.SpeedKMH, opts.ThresholdM, opts.DedupM, opts.Strategy, opts.Strict), &fitBuf)
	if err != nil {
		return nil, err
	}

	reportJSON, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}

	files := map[string][]byte{
		base + ".fit":            fitBuf.Bytes(),
		base + ".report.json":    reportJSON,
		base + ".summary.txt":    []byte(coursepointer.BuildConversionSummary(report)),
	}

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format != "" {
		rows := coursePointRows(course)
		switch format {
		case "csv":
			var buf bytes.Buffer
			if err := writeCoursePointsCSVTo(&buf, rows); err != nil {
				return nil, fmt.Errorf("marshal course point csv: %w", err)
			}
			files[base+".course_points.csv"] = buf.Bytes()
		case "parquet":
			data, err := marshalCoursePointsParquet(rows)
			if err != nil {
				return nil, fmt.Errorf("marshal course point parquet: %w", err)
			}
			files[base+".course_points.parquet"] = data
		default:
			return nil, fmt.Errorf("unsupported format %q (expected parquet|csv)", format)
		}
	}

	return &BytesResult{Files: files}, nil
}

func bytesToConvertOptions(sport string, speedKMH, thresholdM, dedupM float64, strategy string, strict bool) coursepointer.ConvertOptions {
	opts := coursepointer.DefaultCourseOptions()
	if sport != "" {
		opts.Sport = coursepointer.ParseSport(sport)
	}
	if speedKMH > 0 {
		opts.SpeedMPS = coursepointer.KilometersPerHour(speedKMH).MetersPerSecond()
	}
	if thresholdM > 0 {
		opts.ThresholdM = coursepointer.Meters(thresholdM)
	}
	if dedupM > 0 {
		opts.DedupAlongM = coursepointer.Meters(dedupM)
	}
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case "first":
		opts.Strategy = coursepointer.InterceptFirst
	case "all":
		opts.Strategy = coursepointer.InterceptAll
	case "nearest", "":
	}
	opts.Strict = strict
	return coursepointer.ConvertOptions{CourseOptions: opts}
}

type fitSink interface {
	Write(p []byte) (int, error)
}

func fitWriterTo(path string) fitSink {
	return &lazyFileSink{path: path}
}

// lazyFileSink defers opening the destination file until the first
// write, so an error before encoding starts leaves no file behind. An
// error during encoding can leave a partially written file.
type lazyFileSink struct {
	path string
	f    *os.File
}

func (s *lazyFileSink) Write(p []byte) (int, error) {
	if s.f == nil {
		f, err := os.Create(s.path)
		if err != nil {
			return 0, err
		}
		s.f = f
	}
	return s.f.Write(p)
}

func (s *lazyFileSink) Close() error {
	if s.f == nil {
		return nil
	}
	return s.f.Close()
}

func convertGpxBytes(gpxData []byte, defaultName string, opts coursepointer.ConvertOptions, sink fitSink) (*coursepointer.Course, *coursepointer.ConversionReport, error) {
	routeName, routePoints, waypoints, err := gpxreader.ReadAll(bytes.NewReader(gpxData))
	if err != nil {
		return nil, nil, fmt.Errorf("parse gpx: %w", err)
	}
	if opts.Name == "" {
		if routeName != "" {
			opts.Name = routeName
		} else {
			opts.Name = defaultName
		}
	}

	course, dispositions, err := coursepointer.AssembleCourse(context.Background(), routePoints, waypoints, opts.CourseOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("assemble course: %w", err)
	}

	encodedSize, err := coursepointer.EncodeCourse(sink, course)
	if closer, ok := sink.(*lazyFileSink); ok {
		if closeErr := closer.Close(); err == nil {
			err = closeErr
		}
	}
	if err != nil {
		return nil, nil, fmt.Errorf("encode fit file: %w", err)
	}

	report := coursepointer.BuildConversionReport(course, dispositions, opts.CourseOptions, encodedSize)
	return course, report, nil
}

func coursePointRows(course *coursepointer.Course) []coursePointRow {
	rows := make([]coursePointRow, len(course.CoursePoints))
	for i, cp := range course.CoursePoints {
		rows[i] = coursePointRow{
			Index:   i,
			Name:    cp.Waypoint.Name,
			Type:    cp.Type.String(),
			LatDeg:  float64(cp.Waypoint.Point.LatDeg),
			LonDeg:  float64(cp.Waypoint.Point.LonDeg),
			AlongM:  float64(cp.AlongM),
			PerpM:   float64(cp.PerpM),
			Symbol:  cp.Waypoint.Symbol,
			GpxType: cp.Waypoint.GpxType,
			Creator: cp.Waypoint.Creator.String(),
		}
	}
	return rows
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCoursePointsCSV(path string, rows []coursePointRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return writeCoursePointsCSVTo(f, rows)
}

func writeCoursePointsCSVTo(w interface{ Write([]byte) (int, error) }, rows []coursePointRow) error {
	cw := csv.NewWriter(w)
	header := []string{"index", "name", "type", "lat_deg", "lon_deg", "along_m", "perp_m", "symbol", "gpx_type", "creator"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.Index),
			r.Name,
			r.Type,
			strconv.FormatFloat(r.LatDeg, 'f', -1, 64),
			strconv.FormatFloat(r.LonDeg, 'f', -1, 64),
			strconv.FormatFloat(r.AlongM, 'f', 3, 64),
			strconv.FormatFloat(r.PerpM, 'f', 3, 64),
			r.Symbol,
			r.GpxType,
			r.Creator,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
