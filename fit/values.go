package fit

import (
	"math"
	"time"
	"unicode/utf8"
)

// Epoch is the FIT epoch: all absolute FIT timestamps are seconds since
// this instant.
var Epoch = time.Date(1989, 12, 31, 0, 0, 0, 0, time.UTC)

// EncodeTimestamp converts an absolute time to a FIT timestamp. Times
// before the epoch clamp to 0, which is numerically impossible for any
// real course but kept as a defensive floor.
func EncodeTimestamp(t time.Time) uint32 {
	d := t.UTC().Sub(Epoch)
	secs := d.Seconds()
	if secs < 0 {
		return 0
	}
	return uint32(math.RoundToEven(secs))
}

// EncodeSemicircles converts decimal degrees to the FIT semicircle
// angle unit, rounding to nearest with ties going to even.
func EncodeSemicircles(deg float64) int32 {
	scaled := deg * (1 << 31) / 180
	return int32(math.RoundToEven(scaled))
}

// EncodeCentimeters converts meters to the FIT profile's integer
// centimeter distance unit.
func EncodeCentimeters(m float64) uint32 {
	return uint32(math.RoundToEven(m * 100))
}

// EncodeString truncates s to fit within size bytes including a null
// terminator, truncating at a UTF-8 boundary, and pads the remainder
// with zero bytes. It never returns a slice shorter than size.
func EncodeString(s string, size int) []byte {
	out := make([]byte, size)
	if size == 0 {
		return out
	}
	b := []byte(s)
	maxContent := size - 1
	if len(b) > maxContent {
		b = b[:maxContent]
		for len(b) > 0 && !utf8.Valid(b) {
			b = b[:len(b)-1]
		}
	}
	copy(out, b)
	return out
}
