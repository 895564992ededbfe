package fit

// crcTable is the vendor's 16-entry nibble lookup table for the FIT
// file CRC-16. The algorithm processes one nibble at a time: low nibble
// first, then high nibble, of every byte in the stream.
var crcTable = [16]uint16{
	0x0000, 0xCC01, 0xD801, 0x1400,
	0xF001, 0x3C00, 0x2800, 0xE401,
	0xA001, 0x6C00, 0x7800, 0xB401,
	0x5000, 0x9C01, 0x8801, 0x4400,
}

// UpdateCRC folds one byte into a running CRC-16 accumulator. Start
// crc at 0 for a fresh checksum.
func UpdateCRC(crc uint16, b byte) uint16 {
	tmp := crcTable[crc&0xF]
	crc = (crc>>4)&0x0FFF ^ tmp ^ crcTable[b&0xF]

	tmp = crcTable[crc&0xF]
	crc = (crc>>4)&0x0FFF ^ tmp ^ crcTable[(b>>4)&0xF]
	return crc
}

// ChecksumBytes computes the CRC-16 over an entire byte slice in one call.
func ChecksumBytes(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc = UpdateCRC(crc, b)
	}
	return crc
}

// crcWriter accumulates a running CRC over every byte passed to update.
type crcWriter struct {
	crc uint16
}

func (w *crcWriter) update(data []byte) {
	for _, b := range data {
		w.crc = UpdateCRC(w.crc, b)
	}
}
