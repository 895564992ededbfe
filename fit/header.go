package fit

import "encoding/binary"

// HeaderSize is the fixed size, in bytes, of a FIT file header.
const HeaderSize = 14

// ProtocolVersion is the FIT protocol version byte this encoder targets.
const ProtocolVersion = 0x10

// ProfileVersion is the FIT profile version this encoder's message
// definitions were written against.
const ProfileVersion = 21158

// FileHeader is the 14-byte preamble of every FIT file.
type FileHeader struct {
	DataSize uint32
}

// NewFileHeader builds a header for a body of the given size, in bytes,
// not counting the header itself or the trailing file CRC.
func NewFileHeader(dataSize uint32) FileHeader {
	return FileHeader{DataSize: dataSize}
}

// Encode renders the header, computing its own embedded CRC over the
// first 12 bytes.
func (h FileHeader) Encode() []byte {
	buf := make([]byte, HeaderSize)
	buf[0] = HeaderSize
	buf[1] = ProtocolVersion
	binary.LittleEndian.PutUint16(buf[2:4], ProfileVersion)
	binary.LittleEndian.PutUint32(buf[4:8], h.DataSize)
	copy(buf[8:12], ".FIT")
	crc := ChecksumBytes(buf[0:12])
	binary.LittleEndian.PutUint16(buf[12:14], crc)
	return buf
}
