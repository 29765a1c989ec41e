package utils

import (
	"errors"
	"testing"
	"time"
)

func TestExponentialBackoff(t *testing.T) {
	eb := NewExponentialBackoff(10*time.Millisecond, 50*time.Millisecond, 2.0)

	expected := []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 40 * time.Millisecond, 50 * time.Millisecond}
	for attempt, want := range expected {
		if got := eb.NextDelay(attempt); got != want {
			t.Errorf("NextDelay(%d) = %v, expected %v", attempt, got, want)
		}
	}

	if NewExponentialBackoff(time.Millisecond, 0, 0).Multiplier != 2.0 {
		t.Error("Expected default multiplier 2.0")
	}
}

func TestRetry(t *testing.T) {
	calls := 0
	err := Retry(3, &ConstantBackoff{Delay: time.Millisecond}, func() error {
		calls++
		if calls < 2 {
			return errors.New("not yet")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if calls != 2 {
		t.Errorf("Expected 2 calls, got %d", calls)
	}

	calls = 0
	err = Retry(2, nil, func() error {
		calls++
		return errors.New("always")
	})
	if err == nil || calls != 2 {
		t.Errorf("Expected failure after 2 calls, got err=%v calls=%d", err, calls)
	}
}
