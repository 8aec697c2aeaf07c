package breaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreaker_PassesThroughSuccess(t *testing.T) {
	cb := NewCircuitBreaker("test", time.Second, 3)

	err := cb.Execute(func() error { return nil })
	assert.NoError(t, err)
}

func TestCircuitBreaker_PropagatesError(t *testing.T) {
	cb := NewCircuitBreaker("test", time.Second, 3)
	failure := errors.New("index down")

	err := cb.Execute(func() error { return failure })
	assert.ErrorIs(t, err, failure)
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cb := NewCircuitBreaker("test", time.Minute, 2)
	failure := errors.New("index down")

	for i := 0; i < 2; i++ {
		_ = cb.Execute(func() error { return failure })
	}

	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called, "open breaker must not invoke the function")
}

func TestCircuitBreaker_SuccessResetsCount(t *testing.T) {
	cb := NewCircuitBreaker("test", time.Minute, 2)
	failure := errors.New("index down")

	_ = cb.Execute(func() error { return failure })
	assert.NoError(t, cb.Execute(func() error { return nil }))
	_ = cb.Execute(func() error { return failure })

	// Still closed: failures were not consecutive.
	assert.NoError(t, cb.Execute(func() error { return nil }))
}

func TestCircuitBreaker_RecoversAfterReset(t *testing.T) {
	cb := NewCircuitBreaker("test", 10*time.Millisecond, 1)

	_ = cb.Execute(func() error { return errors.New("index down") })
	assert.ErrorIs(t, cb.Execute(func() error { return nil }), ErrOpen)

	time.Sleep(30 * time.Millisecond)
	assert.NoError(t, cb.Execute(func() error { return nil }))
}
