package fit

import "testing"

func TestUpdateCRCEmptyIsZero(t *testing.T) {
	if got := ChecksumBytes(nil); got != 0 {
		t.Fatalf("ChecksumBytes(nil) = %#04x, want 0", got)
	}
}

func TestChecksumBytesMatchesByteByByteUpdate(t *testing.T) {
	data := []byte{0x0e, 0x10, 0xa6, 0x52, 0x88, 0x42, 0x00, 0x00, 0x2e, 0x46, 0x49, 0x54}

	var crc uint16
	for _, b := range data {
		crc = UpdateCRC(crc, b)
	}
	if got := ChecksumBytes(data); got != crc {
		t.Fatalf("ChecksumBytes = %#04x, want %#04x", got, crc)
	}
}

func TestCrcWriterAccumulatesAcrossMultipleUpdates(t *testing.T) {
	data := []byte{0x0e, 0x10, 0xa6, 0x52, 0x88, 0x42, 0x00, 0x00, 0x2e, 0x46, 0x49, 0x54}

	var w crcWriter
	w.update(data[:5])
	w.update(data[5:])

	if want := ChecksumBytes(data); w.crc != want {
		t.Fatalf("crcWriter.crc = %#04x, want %#04x", w.crc, want)
	}
}

func TestFileHeaderEmbeddedCRCMatchesExpectedVector(t *testing.T) {
	// Test vector captured from the reference implementation's header
	// encoder for a 17032-byte body.
	want := []byte{0x0e, 0x10, 0xa6, 0x52, 0x88, 0x42, 0x00, 0x00, 0x2e, 0x46, 0x49, 0x54, 0x0b, 0xb9}
	got := NewFileHeader(17032).Encode()
	if len(got) != len(want) {
		t.Fatalf("len(Encode()) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d = %#02x, want %#02x (full: %#v)", i, got[i], want[i], got)
		}
	}
}
