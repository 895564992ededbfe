// Package fit implements a minimal, streaming encoder for the Garmin
// FIT course file format: the header, definition and data record
// framing, local message table, and the CRC-16 trailer.
package fit

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"
)

// Local message types, assigned once per message kind and never reused,
// even though the profile permits reusing an earlier local ID once its
// message type is done being written.
const (
	localFileId      = 0
	localCourse      = 1
	localLap         = 2
	localEvent       = 3
	localRecord      = 4
	localCoursePoint = 5
	localFileCreator = 6
)

// FileIDParams is the payload for the file_id message.
type FileIDParams struct {
	TimeCreated time.Time
}

// CourseParams is the payload for the course message.
type CourseParams struct {
	Name  string
	Sport uint8
}

// LapParams is the payload for the lap message.
type LapParams struct {
	StartTime              time.Time
	Timestamp              time.Time
	TotalElapsedS          float64
	TotalTimerS            float64
	TotalDistanceM         float64
	StartLatDeg, StartLonDeg float64
	EndLatDeg, EndLonDeg     float64
}

// EventParams is the payload for an event message.
type EventParams struct {
	Timestamp  time.Time
	Event      uint8
	EventType  uint8
	EventGroup uint8
}

// RecordParams is the payload for a record message.
type RecordParams struct {
	LatDeg, LonDeg float64
	DistanceM      float64
	Timestamp      time.Time
}

// CoursePointParams is the payload for a course_point message.
type CoursePointParams struct {
	Timestamp time.Time
	LatDeg, LonDeg float64
	DistanceM      float64
	Type           uint8
	Name           string
}

// FileCreatorParams is the payload for the file_creator message.
type FileCreatorParams struct {
	SoftwareVersion uint16
	HardwareVersion uint8
}

// CourseWriter streams one course into a FIT file. Construct with
// NewCourseWriter, call the Write* methods in the order the profile
// requires, and call Close to emit the trailing CRC.
//
// The writer is single-pass: the body's exact byte length is computed
// analytically from the message counts given at construction, so the
// 14-byte header can be written immediately and no buffering beyond one
// scratch record is ever required.
type CourseWriter struct {
	w              io.Writer
	crc            crcWriter
	definedMessage map[GlobalMessage]bool
	numRecords     int
	numCoursePoints int
	written        int
}

// NewCourseWriter precomputes the body size for a course with the given
// number of record and course_point messages, writes the file header,
// and returns a writer ready for the message sequence.
func NewCourseWriter(w io.Writer, numRecords, numCoursePoints int) (*CourseWriter, error) {
	dataSize := precomputeDataSize(numRecords, numCoursePoints)
	header := NewFileHeader(dataSize).Encode()
	if _, err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write file header: %w", err)
	}
	cw := &CourseWriter{
		w:               w,
		definedMessage:  make(map[GlobalMessage]bool, 7),
		numRecords:      numRecords,
		numCoursePoints: numCoursePoints,
	}
	// The trailing CRC covers the whole file, header included, even
	// though the header carries its own separate embedded CRC.
	cw.crc.update(header)
	cw.written += len(header)
	return cw, nil
}

func precomputeDataSize(numRecords, numCoursePoints int) uint32 {
	total := 0
	total += definitionMessageSize(fileIdFields) + dataMessageSize(fileIdFields)
	total += definitionMessageSize(courseFields) + dataMessageSize(courseFields)
	total += definitionMessageSize(lapFields) + dataMessageSize(lapFields)
	total += definitionMessageSize(eventFields) + 2*dataMessageSize(eventFields)
	total += definitionMessageSize(recordFields) + numRecords*dataMessageSize(recordFields)
	total += definitionMessageSize(coursePointFields) + numCoursePoints*dataMessageSize(coursePointFields)
	total += definitionMessageSize(fileCreatorFields) + dataMessageSize(fileCreatorFields)
	return uint32(total)
}

func (c *CourseWriter) writeRaw(b []byte) error {
	c.crc.update(b)
	c.written += len(b)
	_, err := c.w.Write(b)
	return err
}

// writeDefinitionIfNeeded emits a definition record for global the
// first time local is used; subsequent writes of the same message kind
// (only Event, in practice) are data-record-only.
func (c *CourseWriter) writeDefinitionIfNeeded(local uint8, global GlobalMessage, fields []FieldDef) error {
	if c.definedMessage[global] {
		return nil
	}
	c.definedMessage[global] = true

	buf := make([]byte, 0, definitionMessageSize(fields))
	buf = append(buf, 0b01000000|local) // definition record header
	buf = append(buf, 0x00)             // reserved
	buf = append(buf, 0x00)             // architecture: 0 = little-endian
	globalBuf := make([]byte, 2)
	binary.LittleEndian.PutUint16(globalBuf, uint16(global))
	buf = append(buf, globalBuf...)
	buf = append(buf, byte(len(fields)))
	for _, f := range fields {
		buf = append(buf, f.Num, f.Size, byte(f.Base))
	}
	return c.writeRaw(buf)
}

func dataHeader(local uint8) byte {
	return 0b00000000 | local
}

// WriteFileID writes the file_id message.
func (c *CourseWriter) WriteFileID(p FileIDParams) error {
	if err := c.writeDefinitionIfNeeded(localFileId, MesgFileId, fileIdFields); err != nil {
		return err
	}
	buf := []byte{dataHeader(localFileId), FileTypeCourse}
	buf = appendUint16(buf, GarminManufacturer)
	buf = appendUint32(buf, EncodeTimestamp(p.TimeCreated))
	buf = append(buf, EncodeString("", 14)...)
	return c.writeRaw(buf)
}

// WriteCourse writes the course message.
func (c *CourseWriter) WriteCourse(p CourseParams) error {
	if err := c.writeDefinitionIfNeeded(localCourse, MesgCourse, courseFields); err != nil {
		return err
	}
	buf := []byte{dataHeader(localCourse)}
	buf = append(buf, EncodeString(p.Name, 15)...)
	buf = append(buf, p.Sport)
	return c.writeRaw(buf)
}

// WriteLap writes the lap message.
func (c *CourseWriter) WriteLap(p LapParams) error {
	if err := c.writeDefinitionIfNeeded(localLap, MesgLap, lapFields); err != nil {
		return err
	}
	buf := []byte{dataHeader(localLap)}
	buf = appendUint32(buf, EncodeTimestamp(p.StartTime))
	buf = appendUint32(buf, EncodeTimestamp(p.Timestamp))
	buf = appendUint32(buf, uint32(int64(p.TotalElapsedS*1000)))
	buf = appendUint32(buf, uint32(int64(p.TotalTimerS*1000)))
	buf = appendUint32(buf, EncodeCentimeters(p.TotalDistanceM))
	buf = appendInt32(buf, EncodeSemicircles(p.StartLatDeg))
	buf = appendInt32(buf, EncodeSemicircles(p.StartLonDeg))
	buf = appendInt32(buf, EncodeSemicircles(p.EndLatDeg))
	buf = appendInt32(buf, EncodeSemicircles(p.EndLonDeg))
	return c.writeRaw(buf)
}

// WriteEvent writes an event message (used for both the timer start and
// timer stop events; the definition is only emitted once).
func (c *CourseWriter) WriteEvent(p EventParams) error {
	if err := c.writeDefinitionIfNeeded(localEvent, MesgEvent, eventFields); err != nil {
		return err
	}
	buf := []byte{dataHeader(localEvent)}
	buf = appendUint32(buf, EncodeTimestamp(p.Timestamp))
	buf = append(buf, p.Event, p.EventGroup, p.EventType)
	return c.writeRaw(buf)
}

// WriteRecord writes one record message.
func (c *CourseWriter) WriteRecord(p RecordParams) error {
	if err := c.writeDefinitionIfNeeded(localRecord, MesgRecord, recordFields); err != nil {
		return err
	}
	buf := []byte{dataHeader(localRecord)}
	buf = appendInt32(buf, EncodeSemicircles(p.LatDeg))
	buf = appendInt32(buf, EncodeSemicircles(p.LonDeg))
	buf = appendUint32(buf, EncodeCentimeters(p.DistanceM))
	buf = appendUint32(buf, EncodeTimestamp(p.Timestamp))
	return c.writeRaw(buf)
}

// WriteCoursePoint writes one course_point message.
func (c *CourseWriter) WriteCoursePoint(p CoursePointParams) error {
	if err := c.writeDefinitionIfNeeded(localCoursePoint, MesgCoursePoint, coursePointFields); err != nil {
		return err
	}
	buf := []byte{dataHeader(localCoursePoint)}
	buf = appendUint32(buf, EncodeTimestamp(p.Timestamp))
	buf = appendInt32(buf, EncodeSemicircles(p.LatDeg))
	buf = appendInt32(buf, EncodeSemicircles(p.LonDeg))
	buf = appendUint32(buf, EncodeCentimeters(p.DistanceM))
	buf = append(buf, p.Type)
	buf = append(buf, EncodeString(p.Name, 16)...)
	return c.writeRaw(buf)
}

// WriteFileCreator writes the file_creator message.
func (c *CourseWriter) WriteFileCreator(p FileCreatorParams) error {
	if err := c.writeDefinitionIfNeeded(localFileCreator, MesgFileCreator, fileCreatorFields); err != nil {
		return err
	}
	buf := []byte{dataHeader(localFileCreator)}
	buf = appendUint16(buf, p.SoftwareVersion)
	buf = append(buf, p.HardwareVersion)
	return c.writeRaw(buf)
}

// Close writes the trailing 2-byte CRC over every preceding byte
// (header included) and returns the total number of bytes written,
// counting the header and the trailer.
func (c *CourseWriter) Close() (int64, error) {
	trailer := make([]byte, 2)
	binary.LittleEndian.PutUint16(trailer, c.crc.crc)
	if _, err := c.w.Write(trailer); err != nil {
		return 0, fmt.Errorf("write trailing crc: %w", err)
	}
	return int64(c.written + len(trailer)), nil
}

func appendUint16(buf []byte, v uint16) []byte {
	out := make([]byte, 2)
	binary.LittleEndian.PutUint16(out, v)
	return append(buf, out...)
}

func appendUint32(buf []byte, v uint32) []byte {
	out := make([]byte, 4)
	binary.LittleEndian.PutUint32(out, v)
	return append(buf, out...)
}

func appendInt32(buf []byte, v int32) []byte {
	return appendUint32(buf, uint32(v))
}
