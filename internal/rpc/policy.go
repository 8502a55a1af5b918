package rpc

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Default policy values.
const (
	DefaultMaxAttempts = 5
	DefaultBaseDelay   = 250 * time.Millisecond
	DefaultMaxDelay    = 8 * time.Second
	DefaultJitterMin   = 0.8
	DefaultJitterMax   = 1.2
	DefaultTimeout     = 15 * time.Second
)

// ErrInvalidPolicy is returned for a policy that violates its invariants.
var ErrInvalidPolicy = errors.New("invalid retry policy")

// Policy controls attempts, backoff and per-attempt timeout of a call.
// It is a value type; callers override it per call by passing a modified copy.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	JitterMin   float64
	JitterMax   float64
	Timeout     time.Duration
}

// DefaultPolicy returns the default retry policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		MaxDelay:    DefaultMaxDelay,
		JitterMin:   DefaultJitterMin,
		JitterMax:   DefaultJitterMax,
		Timeout:     DefaultTimeout,
	}
}

// WithAttempts returns a copy of p with MaxAttempts set to n.
func (p Policy) WithAttempts(n int) Policy {
	p.MaxAttempts = n
	return p
}

// WithTimeout returns a copy of p with the per-attempt timeout set to d.
func (p Policy) WithTimeout(d time.Duration) Policy {
	p.Timeout = d
	return p
}

// Validate checks the policy invariants.
func (p Policy) Validate() error {
	switch {
	case p.MaxAttempts < 1:
		return fmt.Errorf("%w: max attempts %d < 1", ErrInvalidPolicy, p.MaxAttempts)
	case p.BaseDelay < 0:
		return fmt.Errorf("%w: negative base delay", ErrInvalidPolicy)
	case p.MaxDelay < p.BaseDelay:
		return fmt.Errorf("%w: max delay %s < base delay %s", ErrInvalidPolicy, p.MaxDelay, p.BaseDelay)
	case p.JitterMin <= 0 || p.JitterMin > p.JitterMax:
		return fmt.Errorf("%w: jitter range [%g, %g]", ErrInvalidPolicy, p.JitterMin, p.JitterMax)
	case p.Timeout <= 0:
		return fmt.Errorf("%w: timeout must be positive", ErrInvalidPolicy)
	}
	return nil
}

// Delay returns the sleep before the retry that follows failed attempt n (1-based).
// u is a uniform sample from [0, 1) mapped onto [JitterMin, JitterMax].
func (p Policy) Delay(attempt int, u float64) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	jitter := p.JitterMin + (p.JitterMax-p.JitterMin)*u
	d := float64(p.BaseDelay) * math.Pow(2, float64(attempt-1)) * jitter
	if d > float64(p.MaxDelay) || math.IsInf(d, 0) {
		return p.MaxDelay
	}
	return time.Duration(d)
}
