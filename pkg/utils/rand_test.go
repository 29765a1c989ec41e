package utils

import "testing"

func TestNewRandSource(t *testing.T) {
	rng1 := NewRandSource(12345)
	if rng1 == nil {
		t.Fatal("Expected RandSource to be created")
	}
	if rng1.Seed() != 12345 {
		t.Errorf("Expected seed 12345, got %d", rng1.Seed())
	}

	// Zero seed falls back to the clock
	rng2 := NewRandSource(0)
	if rng2.Seed() == 0 {
		t.Fatal("Expected a non-zero seed to be chosen")
	}
}

func TestRandSourceFloat64(t *testing.T) {
	rng := NewRandSource(12345)

	for i := 0; i < 100; i++ {
		val := rng.Float64()
		if val < 0 || val >= 1.0 {
			t.Errorf("Float64() returned value outside [0, 1): %f", val)
		}
	}
}

func TestRandSourceUniformFloat64(t *testing.T) {
	rng := NewRandSource(7)

	for i := 0; i < 100; i++ {
		val := rng.UniformFloat64(2, 3)
		if val < 2 || val >= 3 {
			t.Errorf("UniformFloat64(2, 3) returned value outside [2, 3): %f", val)
		}
	}
}

func TestRandSourceFloat64sDeterministic(t *testing.T) {
	a := NewRandSource(99).Float64s(50)
	b := NewRandSource(99).Float64s(50)

	if len(a) != 50 || len(b) != 50 {
		t.Fatalf("Expected 50 values, got %d and %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Same seed produced different values at %d: %f vs %f", i, a[i], b[i])
		}
	}

	if NewRandSource(1).Float64s(0) != nil {
		t.Error("Expected nil for n=0")
	}
}
