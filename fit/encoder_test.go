package fit

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"
)

func writeSampleCourse(t *testing.T, buf *bytes.Buffer, numRecords, numCoursePoints int) int64 {
	t.Helper()
	cw, err := NewCourseWriter(buf, numRecords, numCoursePoints)
	if err != nil {
		t.Fatalf("NewCourseWriter: %v", err)
	}

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := cw.WriteFileID(FileIDParams{TimeCreated: now}); err != nil {
		t.Fatalf("WriteFileID: %v", err)
	}
	if err := cw.WriteCourse(CourseParams{Name: "Sample Loop", Sport: 2}); err != nil {
		t.Fatalf("WriteCourse: %v", err)
	}
	if err := cw.WriteLap(LapParams{
		StartTime: now, Timestamp: now,
		TotalElapsedS: 100, TotalTimerS: 100, TotalDistanceM: 500,
		StartLatDeg: 37.4, StartLonDeg: -122.1,
		EndLatDeg: 37.41, EndLonDeg: -122.11,
	}); err != nil {
		t.Fatalf("WriteLap: %v", err)
	}
	if err := cw.WriteEvent(EventParams{Timestamp: now, Event: EventTimer, EventType: EventTypeStart}); err != nil {
		t.Fatalf("WriteEvent(start): %v", err)
	}
	for i := 0; i < numRecords; i++ {
		if err := cw.WriteRecord(RecordParams{
			LatDeg: 37.4, LonDeg: -122.1, DistanceM: float64(i) * 10, Timestamp: now,
		}); err != nil {
			t.Fatalf("WriteRecord(%d): %v", i, err)
		}
	}
	for i := 0; i < numCoursePoints; i++ {
		if err := cw.WriteCoursePoint(CoursePointParams{
			Timestamp: now, LatDeg: 37.4, LonDeg: -122.1, DistanceM: float64(i) * 20, Type: 0, Name: "CP",
		}); err != nil {
			t.Fatalf("WriteCoursePoint(%d): %v", i, err)
		}
	}
	if err := cw.WriteEvent(EventParams{Timestamp: now, Event: EventTimer, EventType: EventTypeStop}); err != nil {
		t.Fatalf("WriteEvent(stop): %v", err)
	}
	if err := cw.WriteFileCreator(FileCreatorParams{SoftwareVersion: 100, HardwareVersion: 0}); err != nil {
		t.Fatalf("WriteFileCreator: %v", err)
	}

	written, err := cw.Close()
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	return written
}

func TestCourseWriterDeclaredDataSizeMatchesBodyWritten(t *testing.T) {
	var buf bytes.Buffer
	total := writeSampleCourse(t, &buf, 3, 2)

	if int64(buf.Len()) != total {
		t.Fatalf("Close() reported %d bytes, buffer holds %d", total, buf.Len())
	}

	declared := binary.LittleEndian.Uint32(buf.Bytes()[4:8])
	bodyLen := buf.Len() - HeaderSize - 2 // minus header and trailing crc
	if int64(declared) != int64(bodyLen) {
		t.Fatalf("header declared data_size = %d, actual body = %d", declared, bodyLen)
	}
}

func TestCourseWriterTrailingCRCCoversHeader(t *testing.T) {
	var buf bytes.Buffer
	writeSampleCourse(t, &buf, 1, 1)

	data := buf.Bytes()
	body := data[:len(data)-2]
	wantCRC := ChecksumBytes(body)
	gotCRC := binary.LittleEndian.Uint16(data[len(data)-2:])
	if gotCRC != wantCRC {
		t.Fatalf("trailing crc = %#04x, want %#04x (whole file including header)", gotCRC, wantCRC)
	}
}

func TestCourseWriterEventDefinitionWrittenOnceDataWrittenTwice(t *testing.T) {
	var buf bytes.Buffer
	writeSampleCourse(t, &buf, 0, 0)

	data := buf.Bytes()

	// Walk the record stream, sizing each data record from the latest
	// definition of its local type, so payload bytes are never read as
	// record headers.
	fieldsByLocal := map[byte][]FieldDef{}
	defCount, dataCount := 0, 0
	for pos := HeaderSize; pos < len(data)-2; {
		h := data[pos]
		local := h & 0x0F
		if h&0x40 != 0 {
			n := int(data[pos+5])
			fields := make([]FieldDef, 0, n)
			for i := 0; i < n; i++ {
				o := pos + 6 + 3*i
				fields = append(fields, FieldDef{Num: data[o], Size: data[o+1], Base: BaseType(data[o+2])})
			}
			fieldsByLocal[local] = fields
			if local == localEvent {
				defCount++
			}
			pos += definitionMessageSize(fields)
		} else {
			if local == localEvent {
				dataCount++
			}
			pos += dataMessageSize(fieldsByLocal[local])
		}
	}
	if defCount != 1 {
		t.Errorf("event definition record appears %d times, want 1", defCount)
	}
	if dataCount != 2 {
		t.Errorf("event data record appears %d times, want 2", dataCount)
	}
}

func TestCourseWriterZeroRecordsAndCoursePoints(t *testing.T) {
	var buf bytes.Buffer
	total := writeSampleCourse(t, &buf, 0, 0)
	if total != int64(buf.Len()) {
		t.Fatalf("Close() reported %d, buffer holds %d", total, buf.Len())
	}
}

func TestCourseWriterTruncatesLongCourseName(t *testing.T) {
	var buf bytes.Buffer
	cw, err := NewCourseWriter(&buf, 0, 0)
	if err != nil {
		t.Fatalf("NewCourseWriter: %v", err)
	}
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := cw.WriteFileID(FileIDParams{TimeCreated: now}); err != nil {
		t.Fatalf("WriteFileID: %v", err)
	}
	longName := "This Course Name Is Definitely Longer Than Fifteen Bytes"
	if err := cw.WriteCourse(CourseParams{Name: longName, Sport: 2}); err != nil {
		t.Fatalf("WriteCourse: %v", err)
	}
	if _, err := cw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	want := EncodeString(longName, 15)
	if len(want) != 15 {
		t.Fatalf("EncodeString(longName, 15) length = %d, want 15", len(want))
	}
	got := findSubslice(buf.Bytes(), want)
	if got < 0 {
		t.Fatalf("course.name field (15 bytes, truncated+nul-terminated) not found in encoded output")
	}
}

func findSubslice(haystack, needle []byte) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if bytes.Equal(haystack[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}

func TestEncodeStringTruncatesAtSizeWithNulTerminator(t *testing.T) {
	out := EncodeString("hello world", 6)
	if len(out) != 6 {
		t.Fatalf("len = %d, want 6", len(out))
	}
	if string(out[:5]) != "hello" {
		t.Fatalf("content = %q, want %q", out[:5], "hello")
	}
	if out[5] != 0 {
		t.Fatalf("last byte = %d, want 0 (nul terminator)", out[5])
	}
}

func TestEncodeStringPadsShortStrings(t *testing.T) {
	out := EncodeString("hi", 8)
	if len(out) != 8 {
		t.Fatalf("len = %d, want 8", len(out))
	}
	if string(out[:2]) != "hi" {
		t.Fatalf("content = %q, want %q", out[:2], "hi")
	}
	for i := 2; i < 8; i++ {
		if out[i] != 0 {
			t.Fatalf("byte %d = %d, want 0", i, out[i])
		}
	}
}

func TestEncodeSemicirclesRoundTrips(t *testing.T) {
	for _, deg := range []float64{0, 90, -90, 45.123456, -122.419416} {
		s := EncodeSemicircles(deg)
		back := float64(s) * 180 / (1 << 31)
		if diff := back - deg; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("EncodeSemicircles(%v) round trip = %v", deg, back)
		}
	}
}

func TestEncodeTimestampClampsBeforeEpoch(t *testing.T) {
	before := Epoch.Add(-time.Hour)
	if got := EncodeTimestamp(before); got != 0 {
		t.Fatalf("EncodeTimestamp(before epoch) = %d, want 0", got)
	}
}

func TestEncodeCentimetersRounding(t *testing.T) {
	// 1.005*100 is 100.49999999999999 in float64, which rounds to 100.
	if got := EncodeCentimeters(1.005); got != 100 {
		t.Fatalf("EncodeCentimeters(1.005) = %d, want 100", got)
	}
}
