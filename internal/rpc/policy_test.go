package rpc

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPolicy_Valid(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())
}

func TestPolicy_ValidateRejects(t *testing.T) {
	base := DefaultPolicy()
	tests := []struct {
		name   string
		mutate func(p *Policy)
	}{
		{"zero attempts", func(p *Policy) { p.MaxAttempts = 0 }},
		{"max below base", func(p *Policy) { p.MaxDelay = p.BaseDelay - 1 }},
		{"zero jitter min", func(p *Policy) { p.JitterMin = 0 }},
		{"jitter inverted", func(p *Policy) { p.JitterMin, p.JitterMax = 1.5, 1.0 }},
		{"zero timeout", func(p *Policy) { p.Timeout = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mutate(&p)
			err := p.Validate()
			assert.True(t, errors.Is(err, ErrInvalidPolicy), "got %v", err)
		})
	}
}

func TestPolicy_Delay(t *testing.T) {
	p := Policy{MaxAttempts: 10, BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second, JitterMin: 1, JitterMax: 1, Timeout: time.Second}

	assert.Equal(t, 100*time.Millisecond, p.Delay(1, 0.3))
	assert.Equal(t, 200*time.Millisecond, p.Delay(2, 0.3))
	assert.Equal(t, 800*time.Millisecond, p.Delay(4, 0.3))
	assert.Equal(t, time.Second, p.Delay(5, 0.3), "capped at max delay")
	assert.Equal(t, time.Second, p.Delay(200, 0.3))
}

func TestPolicy_DelayJitterRange(t *testing.T) {
	p := DefaultPolicy()
	p.BaseDelay = time.Second
	p.MaxDelay = time.Minute

	assert.Equal(t, 800*time.Millisecond, p.Delay(1, 0))
	assert.Equal(t, time.Second, p.Delay(1, 0.5))
	assert.InDelta(t, float64(1200*time.Millisecond), float64(p.Delay(1, 0.999999)), float64(time.Millisecond))
}

func TestPolicy_WithAttemptsKeepsRest(t *testing.T) {
	p := DefaultPolicy().WithAttempts(2)
	assert.Equal(t, 2, p.MaxAttempts)
	assert.Equal(t, DefaultBaseDelay, p.BaseDelay)
	assert.Equal(t, DefaultTimeout, p.Timeout)
}
