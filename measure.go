package coursepointer

import "math"

// Meters is a length in meters. All distances inside the assembler and
// encoder are carried as Meters until the moment they must be expressed
// in another unit for a wire format.
type Meters float64

// Add returns the sum of two lengths.
func (m Meters) Add(o Meters) Meters { return m + o }

// Sub returns the difference of two lengths.
func (m Meters) Sub(o Meters) Meters { return m - o }

// Scale multiplies a length by a dimensionless scalar.
func (m Meters) Scale(k float64) Meters { return Meters(float64(m) * k) }

// Kilometers converts to kilometers.
func (m Meters) Kilometers() Kilometers { return Kilometers(float64(m) / 1000) }

// Centimeters converts to centimeters, the FIT profile's native distance unit.
func (m Meters) Centimeters() Centimeters { return Centimeters(math.RoundToEven(float64(m) * 100)) }

// Float64 exposes the raw value for callers doing ad hoc math at a boundary.
func (m Meters) Float64() float64 { return float64(m) }

// Kilometers is a length in kilometers.
type Kilometers float64

// Meters converts to meters.
func (k Kilometers) Meters() Meters { return Meters(float64(k) * 1000) }

// Centimeters is the integer-scaled length unit used by FIT record and
// course_point distance fields (one scale factor = 100).
type Centimeters float64

// Meters converts to meters.
func (c Centimeters) Meters() Meters { return Meters(float64(c) / 100) }

// Uint32 rounds to the nearest FIT-encodable centimeter count.
func (c Centimeters) Uint32() uint32 { return uint32(math.RoundToEven(float64(c))) }

// Degrees is a planar angle in decimal degrees.
type Degrees float64

// Add returns the sum of two angles.
func (d Degrees) Add(o Degrees) Degrees { return d + o }

// Sub returns the difference of two angles.
func (d Degrees) Sub(o Degrees) Degrees { return d - o }

// Radians converts to radians.
func (d Degrees) Radians() Radians { return Radians(float64(d) * math.Pi / 180) }

// Semicircles converts to the FIT angle unit, rounding to nearest with
// ties going to even, per the encoder's rounding contract.
func (d Degrees) Semicircles() Semicircles {
	scaled := float64(d) * (1 << 31) / 180
	return Semicircles(int64(math.RoundToEven(scaled)))
}

// Radians is a planar angle in radians.
type Radians float64

// Degrees converts to decimal degrees.
func (r Radians) Degrees() Degrees { return Degrees(float64(r) * 180 / math.Pi) }

// Semicircles is FIT's integer angle unit: 1 semicircle = 180deg / 2^31.
type Semicircles int32

// Degrees converts to decimal degrees.
func (s Semicircles) Degrees() Degrees { return Degrees(float64(s) * 180 / (1 << 31)) }

// Seconds is a duration in seconds.
type Seconds float64

// Add returns the sum of two durations.
func (s Seconds) Add(o Seconds) Seconds { return s + o }

// Sub returns the difference of two durations.
func (s Seconds) Sub(o Seconds) Seconds { return s - o }

// Hours converts to hours.
func (s Seconds) Hours() Hours { return Hours(float64(s) / 3600) }

// Hours is a duration in hours.
type Hours float64

// Seconds converts to seconds.
func (h Hours) Seconds() Seconds { return Seconds(float64(h) * 3600) }

// MetersPerSecond is a speed in meters per second, the unit FIT expects
// for virtual-partner speed and the unit the assembler uses internally
// to derive timestamps from along-track distance.
type MetersPerSecond float64

// KilometersPerHour converts to km/h.
func (m MetersPerSecond) KilometersPerHour() KilometersPerHour { return KilometersPerHour(float64(m) * 3.6) }

// MetersPerHour converts to m/h.
func (m MetersPerSecond) MetersPerHour() MetersPerHour { return MetersPerHour(float64(m) * 3600) }

// KilometersPerHour is a speed in kilometers per hour.
type KilometersPerHour float64

// MetersPerSecond converts to m/s.
func (k KilometersPerHour) MetersPerSecond() MetersPerSecond { return MetersPerSecond(float64(k) * 5.0 / 18.0) }

// MetersPerHour is a speed in meters per hour, occasionally convenient
// for pace-style CLI input.
type MetersPerHour float64

// MetersPerSecond converts to m/s.
func (m MetersPerHour) MetersPerSecond() MetersPerSecond { return MetersPerSecond(float64(m) / 3600) }
