//go:build js && wasm

package main

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"
	"syscall/js"
	"time"

	"github.com/lucasjlepore/coursepointer/internal/fitdump"
	"github.com/lucasjlepore/coursepointer/pipeline"
)

func main() {
	js.Global().Set("convertGpxToFit", js.FuncOf(convertGpxToFit))
	js.Global().Set("inspectFitBytes", js.FuncOf(inspectFitBytes))
	select {}
}

func convertGpxToFit(_ js.Value, args []js.Value) any {
	if len(args) < 2 {
		return map[string]any{
			"ok":    false,
			"error": "expected arguments: fileBytes(Uint8Array), options(object)",
		}
	}
	fileArg := args[0]
	optsArg := args[1]
	if fileArg.IsUndefined() || fileArg.IsNull() || fileArg.Get("length").Int() == 0 {
		return map[string]any{
			"ok":    false,
			"error": "gpx file bytes are required",
		}
	}

	gpxBytes := make([]byte, fileArg.Get("length").Int())
	if n := js.CopyBytesToGo(gpxBytes, fileArg); n == 0 {
		return map[string]any{
			"ok":    false,
			"error": "failed to read GPX bytes from JS input",
		}
	}

	opts := pipeline.BytesOptions{
		SourceFileName: getString(optsArg, "source_file_name", "course.gpx"),
		GpxData:        gpxBytes,
		Sport:          getString(optsArg, "sport", ""),
		SpeedKMH:       getFloat(optsArg, "speed_kmh"),
		ThresholdM:     getFloat(optsArg, "threshold_m"),
		DedupM:         getFloat(optsArg, "dedup_m"),
		Strategy:       getString(optsArg, "strategy", ""),
		Format:         getString(optsArg, "format", ""),
	}
	result, err := pipeline.RunBytes(opts)
	if err != nil {
		return map[string]any{
			"ok":    false,
			"error": err.Error(),
		}
	}

	zipBytes, err := zipArtifacts(result.Files)
	if err != nil {
		return map[string]any{
			"ok":    false,
			"error": fmt.Sprintf("create zip: %v", err),
		}
	}
	payload := js.Global().Get("Uint8Array").New(len(zipBytes))
	js.CopyBytesToJS(payload, zipBytes)

	fileNames := make([]string, 0, len(result.Files))
	for name := range result.Files {
		fileNames = append(fileNames, name)
	}
	sort.Strings(fileNames)

	return map[string]any{
		"ok":    true,
		"zip":   payload,
		"files": stringsToAny(fileNames),
	}
}

// inspectFitBytes cross-checks a .fit buffer (typically the one just
// produced by convertGpxToFit) through the same independent decoder the
// CLI's "inspect" subcommand uses, without touching any filesystem — the
// browser has none, so DumpFile's directory-bundle shape doesn't apply
// here and the in-memory fitdump API is used instead.
func inspectFitBytes(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return map[string]any{
			"ok":    false,
			"error": "expected argument: fitBytes(Uint8Array)",
		}
	}
	fitArg := args[0]
	if fitArg.IsUndefined() || fitArg.IsNull() || fitArg.Get("length").Int() == 0 {
		return map[string]any{
			"ok":    false,
			"error": "fit file bytes are required",
		}
	}

	fitBytes := make([]byte, fitArg.Get("length").Int())
	if n := js.CopyBytesToGo(fitBytes, fitArg); n == 0 {
		return map[string]any{
			"ok":    false,
			"error": "failed to read FIT bytes from JS input",
		}
	}

	bundle, err := fitdump.ParseBytes(fitBytes)
	if err != nil {
		return map[string]any{
			"ok":    false,
			"error": err.Error(),
		}
	}

	recordsJSONL, err := fitdump.MarshalJSONL(bundle.Records)
	if err != nil {
		return map[string]any{
			"ok":    false,
			"error": fmt.Sprintf("marshal records: %v", err),
		}
	}

	fileID := fitdump.ProjectFileIDFromBytes(fitBytes)
	warnings := fitdump.BuildWarningsFromBundle(bundle)

	return map[string]any{
		"ok":               true,
		"header_crc_valid": bundle.HeaderCRC.Valid,
		"file_crc_valid":   bundle.FileCRC.Valid,
		"record_count":     bundle.DataMessageCount + bundle.DefinitionCount,
		"file_id":          fileIDToAny(fileID),
		"warnings":         stringsToAny(warnings),
		"records_jsonl":    string(recordsJSONL),
	}
}

func fileIDToAny(id *fitdump.FileIDInfo) map[string]any {
	if id == nil {
		return nil
	}
	return map[string]any{
		"type":          id.Type,
		"manufacturer":  id.Manufacturer,
		"product":       id.Product,
		"time_created":  id.TimeCreated,
		"serial_number": id.SerialNumber,
	}
}

func zipArtifacts(files map[string][]byte) ([]byte, error) {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	fixedTime := time.Unix(0, 0).UTC()

	for _, name := range names {
		h := &zip.FileHeader{
			Name:   name,
			Method: zip.Deflate,
		}
		h.SetModTime(fixedTime)
		w, err := zw.CreateHeader(h)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(files[name]); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func getString(v js.Value, key, fallback string) string {
	if v.IsUndefined() || v.IsNull() {
		return fallback
	}
	out := v.Get(key)
	if out.IsUndefined() || out.IsNull() {
		return fallback
	}
	s := out.String()
	if s == "" || s == "undefined" || s == "null" {
		return fallback
	}
	return s
}

func getFloat(v js.Value, key string) float64 {
	if v.IsUndefined() || v.IsNull() {
		return 0
	}
	out := v.Get(key)
	if out.IsUndefined() || out.IsNull() || out.Type() != js.TypeNumber {
		return 0
	}
	return out.Float()
}

func stringsToAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
