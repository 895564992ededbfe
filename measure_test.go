package coursepointer

import (
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestMetersKilometersRoundTrip(t *testing.T) {
	m := Meters(1500)
	if km := m.Kilometers(); !almostEqual(float64(km), 1.5, 1e-9) {
		t.Fatalf("Kilometers() = %v, want 1.5", km)
	}
	if back := m.Kilometers().Meters(); !almostEqual(float64(back), float64(m), 1e-9) {
		t.Fatalf("round trip mismatch: %v != %v", back, m)
	}
}

func TestMetersCentimetersRounding(t *testing.T) {
	cases := []struct {
		m    Meters
		want uint32
	}{
		{Meters(1.005), 100}, // 1.005*100 is 100.49999999999999 in float64
		{Meters(0), 0},
		{Meters(100), 10000},
	}
	for _, c := range cases {
		got := c.m.Centimeters().Uint32()
		if got != c.want {
			t.Errorf("Centimeters(%v).Uint32() = %d, want %d", c.m, got, c.want)
		}
	}
}

func TestDegreesSemicirclesRoundTrip(t *testing.T) {
	for _, deg := range []float64{0, 90, -90, 45.123456, -122.419416} {
		s := Degrees(deg).Semicircles()
		back := s.Degrees()
		if !almostEqual(float64(back), deg, 1e-6) {
			t.Errorf("Degrees(%v) -> Semicircles -> Degrees = %v", deg, back)
		}
	}
}

func TestSpeedConversions(t *testing.T) {
	mps := MetersPerSecond(5)
	kph := mps.KilometersPerHour()
	if !almostEqual(float64(kph), 18, 1e-9) {
		t.Fatalf("5 m/s -> %v km/h, want 18", kph)
	}
	back := kph.MetersPerSecond()
	if !almostEqual(float64(back), 5, 1e-9) {
		t.Fatalf("round trip mismatch: %v != 5", back)
	}
}
