package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasjlepore/coursepointer"
	"github.com/lucasjlepore/coursepointer/internal/fitdump"
	"github.com/lucasjlepore/coursepointer/pipeline"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return 2
	}

	switch args[0] {
	case "convert":
		return runConvert(args[1:])
	case "inspect":
		return runInspect(args[1:])
	default:
		usage()
		return 2
	}
}

func runConvert(args []string) int {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	var (
		output    = fs.String("output", "", "Output path for the .fit file (default: alongside the input, same base name)")
		sport     = fs.String("sport", "cycling", "FIT sport name, e.g. cycling, running, hiking")
		speed     = fs.Float64("speed", 0, "Assumed average speed in km/h, used to derive record timestamps")
		threshold = fs.Float64("threshold", 35, "Waypoint-to-route interception threshold, in meters")
		dedup     = fs.Float64("dedup", 1, "Along-route window, in meters, for deduplicating nearby course points")
		strategy  = fs.String("strategy", "nearest", "Tie-break strategy when a waypoint intercepts multiple segments: nearest|first|all")
		strict    = fs.Bool("strict", false, "Fail on degenerate segments instead of silently accepting them")
		format    = fs.String("table", "", "Optional course-point table format to write alongside the .fit file: parquet|csv")
		overwrite = fs.Bool("overwrite", false, "Allow overwriting existing output files")
	)
	fs.Usage = usage
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		usage()
		return 2
	}
	gpxPath := fs.Arg(0)

	outDir := filepath.Dir(gpxPath)
	if *output != "" {
		outDir = filepath.Dir(*output)
	}

	result, err := pipeline.Run(pipeline.Options{
		GpxPath:    gpxPath,
		OutDir:     outDir,
		Sport:      *sport,
		SpeedKMH:   *speed,
		ThresholdM: *threshold,
		DedupM:     *dedup,
		Strategy:   *strategy,
		Strict:     *strict,
		Format:     *format,
		Overwrite:  *overwrite,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "coursepointer: %v\n", err)
		return exitCodeFor(err)
	}

	// pipeline.Run derives the .fit path from the base name it computes
	// internally; when the caller asked for a specific --output path,
	// rename the .fit file to it. The report, summary and table keep their
	// derived names.
	if *output != "" && result.FitPath != *output {
		if err := os.Rename(result.FitPath, *output); err != nil {
			fmt.Fprintf(os.Stderr, "coursepointer: rename output: %v\n", err)
			return 4
		}
		result.FitPath = *output
	}

	fmt.Printf("wrote %s\n", result.FitPath)
	fmt.Printf("report: %s\n", result.ReportPath)
	fmt.Printf("summary: %s\n", result.SummaryPath)
	if result.CoursePointsPath != "" {
		fmt.Printf("course points: %s\n", result.CoursePointsPath)
	}
	return 0
}

// runInspect decodes a previously-written .fit file through a second,
// independent decoder and dumps its records to a JSONL bundle, so a
// course file produced by this program's own encoder can be cross
// checked rather than trusted blind.
func runInspect(args []string) int {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	var (
		output    = fs.String("output", "", "Output directory for the dump bundle (default: <input>.dump)")
		overwrite = fs.Bool("overwrite", false, "Allow writing into a non-empty output directory")
		copySrc   = fs.Bool("copy-source", false, "Copy the source .fit file into the dump bundle")
	)
	fs.Usage = usage
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		usage()
		return 2
	}
	fitPath := fs.Arg(0)
	outDir := *output
	if outDir == "" {
		outDir = fitPath + ".dump"
	}

	result, err := fitdump.DumpFile(fitPath, outDir, fitdump.DumpOptions{
		Overwrite:      *overwrite,
		CopySourceFile: *copySrc,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "coursepointer: %v\n", err)
		return 1
	}

	fmt.Printf("wrote %s\n", result.ManifestPath)
	fmt.Printf("records: %s (%d)\n", result.RecordsPath, result.RecordCount)
	if !result.FileCRCValid {
		fmt.Fprintln(os.Stderr, "coursepointer: warning: file CRC did not validate")
	}
	if !result.HeaderCRCValid {
		fmt.Fprintln(os.Stderr, "coursepointer: warning: header CRC did not validate")
	}
	return 0
}

func exitCodeFor(err error) int {
	var cpErr *coursepointer.Error
	if errors.As(err, &cpErr) {
		switch cpErr.Kind {
		case coursepointer.ErrInvalidCoordinate, coursepointer.ErrEmptyCourse:
			return 2
		case coursepointer.ErrDegenerateSegment, coursepointer.ErrGnomonicOutOfRange:
			return 3
		case coursepointer.ErrEncodeTooLarge:
			return 4
		}
	}
	if strings.Contains(err.Error(), "read gpx file") || strings.Contains(err.Error(), "parse gpx") {
		return 2
	}
	return 1
}

func usage() {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage: %s convert <input.gpx> [--output <path>] [--sport NAME] [--speed KMPH] [--threshold M]\n", name)
	fmt.Fprintf(os.Stderr, "       %s inspect <input.fit> [--output <dir>]\n", name)
	flag.CommandLine.SetOutput(os.Stderr)
}
