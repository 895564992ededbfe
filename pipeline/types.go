// Package pipeline orchestrates a GPX-to-FIT course conversion end to
// end: parse the GPX document, assemble the course, encode the FIT
// file, and write the conversion report and an optional course-point
// table alongside it.
package pipeline

// Options configures a filesystem-based conversion run.
type Options struct {
	GpxPath    string
	OutDir     string
	Sport      string // FIT sport name, e.g. "cycling"; empty defaults to cycling
	SpeedKMH   float64
	ThresholdM float64
	DedupM     float64
	Strategy   string // nearest|first|all
	Strict     bool
	Format     string // parquet|csv, for the course-point table; empty skips it
	Overwrite  bool
}

// Result returns the paths of every artifact a filesystem run produced.
type Result struct {
	OutputDir        string `json:"output_dir"`
	FitPath          string `json:"fit_path"`
	ReportPath       string `json:"report_path"`
	SummaryPath      string `json:"summary_path"`
	CoursePointsPath string `json:"course_points_path,omitempty"`
}

// BytesOptions configures an in-memory conversion run, for callers with
// no filesystem access (the WASM build).
type BytesOptions struct {
	SourceFileName string
	GpxData        []byte
	Sport          string
	SpeedKMH       float64
	ThresholdM     float64
	DedupM         float64
	Strategy       string
	Strict         bool
	Format         string
}

// BytesResult returns every artifact a byte-oriented run produced,
// keyed by a conventional file name, ready for a caller to expose
// however it likes (zip entries, JS Uint8Arrays, and so on).
type BytesResult struct {
	Files map[string][]byte `json:"-"`
}

// coursePointRow is the canonical projection of one emitted course
// point, shared by the CSV and Parquet table writers.
type coursePointRow struct {
	Index     int
	Name      string
	Type      string
	LatDeg    float64
	LonDeg    float64
	AlongM    float64
	PerpM     float64
	Symbol    string
	GpxType   string
	Creator   string
}
