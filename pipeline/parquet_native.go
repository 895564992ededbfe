//go:build !js

package pipeline

import (
	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
)

type coursePointParquetRow struct {
	Index   int64   `parquet:"name=index, type=INT64"`
	Name    string  `parquet:"name=name, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Type    string  `parquet:"name=type, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	LatDeg  float64 `parquet:"name=lat_deg, type=DOUBLE"`
	LonDeg  float64 `parquet:"name=lon_deg, type=DOUBLE"`
	AlongM  float64 `parquet:"name=along_m, type=DOUBLE"`
	PerpM   float64 `parquet:"name=perp_m, type=DOUBLE"`
	Symbol  string  `parquet:"name=symbol, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	GpxType string  `parquet:"name=gpx_type, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Creator string  `parquet:"name=creator, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
}

// marshalCoursePointsParquet renders the course-point table into an
// in-memory Parquet file. Using the buffer-backed writer source for
// both the CLI and the WASM build keeps a single code path: the CLI
// writes the returned bytes to disk, the WASM build hands them to the
// caller directly.
func marshalCoursePointsParquet(rows []coursePointRow) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	pw, err := writer.NewParquetWriter(fw, new(coursePointParquetRow), 4)
	if err != nil {
		return nil, err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, r := range rows {
		row := coursePointParquetRow{
			Index:   int64(r.Index),
			Name:    r.Name,
			Type:    r.Type,
			LatDeg:  r.LatDeg,
			LonDeg:  r.LonDeg,
			AlongM:  r.AlongM,
			PerpM:   r.PerpM,
			Symbol:  r.Symbol,
			GpxType: r.GpxType,
			Creator: r.Creator,
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			return nil, err
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}
