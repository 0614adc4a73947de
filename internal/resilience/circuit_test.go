package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testBreaker(threshold int, reset time.Duration) (*CircuitBreaker, *time.Time) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: threshold,
		ResetTimeout:     reset,
	})
	now := time.Now()
	cb.nowFunc = func() time.Time { return now }
	return cb, &now
}

func TestCircuit_OpensAfterThreshold(t *testing.T) {
	cb, _ := testBreaker(3, time.Minute)
	fail := func(_ context.Context) error { return errors.New("service down") }

	for i := 0; i < 3; i++ {
		_ = cb.Execute(context.Background(), fail)
	}
	if cb.State() != CircuitOpen {
		t.Fatalf("expected open, got %s", cb.State())
	}

	err := cb.Execute(context.Background(), fail)
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestCircuit_SuccessResetsCounter(t *testing.T) {
	cb, _ := testBreaker(3, time.Minute)

	_ = cb.Execute(context.Background(), func(_ context.Context) error { return errors.New("x") })
	_ = cb.Execute(context.Background(), func(_ context.Context) error { return errors.New("x") })
	_ = cb.Execute(context.Background(), func(_ context.Context) error { return nil })
	_ = cb.Execute(context.Background(), func(_ context.Context) error { return errors.New("x") })

	if cb.State() != CircuitClosed {
		t.Errorf("expected closed after interleaved success, got %s", cb.State())
	}
}

func TestCircuit_HalfOpenProbeRecovers(t *testing.T) {
	cb, now := testBreaker(1, 10*time.Second)

	_ = cb.Execute(context.Background(), func(_ context.Context) error { return errors.New("x") })
	if cb.State() != CircuitOpen {
		t.Fatalf("expected open, got %s", cb.State())
	}

	*now = now.Add(11 * time.Second)
	if cb.State() != CircuitHalfOpen {
		t.Fatalf("expected half-open after reset timeout, got %s", cb.State())
	}

	if err := cb.Execute(context.Background(), func(_ context.Context) error { return nil }); err != nil {
		t.Fatalf("probe should be allowed: %v", err)
	}
	if cb.State() != CircuitClosed {
		t.Errorf("expected closed after successful probe, got %s", cb.State())
	}
}

func TestCircuit_HalfOpenFailureReopens(t *testing.T) {
	cb, now := testBreaker(1, 10*time.Second)

	_ = cb.Execute(context.Background(), func(_ context.Context) error { return errors.New("x") })
	*now = now.Add(11 * time.Second)

	_ = cb.Execute(context.Background(), func(_ context.Context) error { return errors.New("still down") })
	if cb.State() != CircuitOpen {
		t.Errorf("expected reopened circuit, got %s", cb.State())
	}
}

func TestExecuteVal_PassesValueThrough(t *testing.T) {
	cb, _ := testBreaker(3, time.Minute)
	val, err := ExecuteVal(context.Background(), cb, func(_ context.Context) (int, error) {
		return 42, nil
	})
	if err != nil || val != 42 {
		t.Errorf("expected 42, got %d (%v)", val, err)
	}
}
