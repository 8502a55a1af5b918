// Package rpc is the JSON-RPC 2.0 transport shared by the Solana and EVM clients.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// maxBodyExcerpt bounds how much of an error body is kept in TransportError.Message.
const maxBodyExcerpt = 256

// Outcome labels reported to a Recorder.
const (
	OutcomeOK        = "ok"
	OutcomeRetryable = "retryable"
	OutcomeTerminal  = "terminal"
)

// Recorder receives per-attempt transport measurements.
type Recorder interface {
	RecordRPCAttempt(target, method, outcome string)
	RecordRPCRetry(target, method string)
	RecordRPCLatency(method string, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordRPCAttempt(string, string, string) {}
func (nopRecorder) RecordRPCRetry(string, string)           {}
func (nopRecorder) RecordRPCLatency(string, time.Duration)  {}

// Caller is the call surface consumed by chain clients.
type Caller interface {
	Call(ctx context.Context, target, method string, params any, policy *Policy, out any) error
}

// Transport sends JSON-RPC requests with per-attempt timeouts and retries.
// It is safe for concurrent use; each Call runs its attempts sequentially.
type Transport struct {
	client    *http.Client
	policy    Policy
	limiter   *rate.Limiter
	logger    *zap.Logger
	recorder  Recorder
	random    func() float64
	sleep     func(ctx context.Context, d time.Duration) error
	requestID atomic.Uint64
}

// Option configures Transport.
type Option func(*Transport)

// WithHTTPClient sets a custom http.Client. Its own Timeout should be zero or
// larger than the policy timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(t *Transport) {
		t.client = client
	}
}

// WithPolicy sets the default policy used when Call receives a nil policy.
func WithPolicy(p Policy) Option {
	return func(t *Transport) {
		t.policy = p
	}
}

// WithRateLimit limits attempts to rps per second with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(t *Transport) {
		if rps <= 0 {
			t.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(t *Transport) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(t *Transport) {
		if r != nil {
			t.recorder = r
		}
	}
}

// WithRand sets the uniform [0,1) source used for jitter.
func WithRand(f func() float64) Option {
	return func(t *Transport) {
		t.random = f
	}
}

// WithSleep replaces the backoff sleep.
func WithSleep(f func(ctx context.Context, d time.Duration) error) Option {
	return func(t *Transport) {
		t.sleep = f
	}
}

// NewTransport creates a Transport.
func NewTransport(opts ...Option) *Transport {
	t := &Transport{
		client:   &http.Client{},
		policy:   DefaultPolicy(),
		logger:   zap.NewNop(),
		recorder: nopRecorder{},
		random:   rand.Float64,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Policy returns the default policy.
func (t *Transport) Policy() Policy {
	return t.policy
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Call sends method with params to target and decodes the result into out.
// A nil policy uses the transport default. out may be nil.
func (t *Transport) Call(ctx context.Context, target, method string, params any, policy *Policy, out any) error {
	p := t.policy
	if policy != nil {
		p = *policy
	}
	if err := p.Validate(); err != nil {
		return &TransportError{Kind: KindInvalid, Target: target, Method: method, Err: err}
	}

	body, err := json.Marshal(request{
		JSONRPC: "2.0",
		ID:      t.requestID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return &TransportError{Kind: KindInvalid, Target: target, Method: method, Err: fmt.Errorf("marshal request: %w", err)}
	}

	start := time.Now()
	defer func() { t.recorder.RecordRPCLatency(method, time.Since(start)) }()

	var lastErr *TransportError
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if t.limiter != nil {
			if err := t.limiter.Wait(ctx); err != nil {
				return t.finish(lastErr, &TransportError{Kind: KindCanceled, Target: target, Method: method, Err: err}, attempt-1)
			}
		}

		raw, terr := t.attempt(ctx, target, method, body, p.Timeout)
		if terr == nil {
			if out != nil {
				if err := json.Unmarshal(raw, out); err != nil {
					t.recorder.RecordRPCAttempt(target, method, OutcomeTerminal)
					return &TransportError{Kind: KindDecode, Target: target, Method: method, Attempts: attempt, Err: fmt.Errorf("unmarshal result: %w", err)}
				}
			}
			t.recorder.RecordRPCAttempt(target, method, OutcomeOK)
			return nil
		}

		terr.Attempts = attempt
		lastErr = terr
		if !terr.Retryable {
			t.recorder.RecordRPCAttempt(target, method, OutcomeTerminal)
			return terr
		}
		t.recorder.RecordRPCAttempt(target, method, OutcomeRetryable)
		if attempt == p.MaxAttempts {
			break
		}

		delay := p.Delay(attempt, t.random())
		t.recorder.RecordRPCRetry(target, method)
		t.logger.Debug("retrying rpc call",
			zap.String("method", method),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(terr),
		)
		if err := t.sleep(ctx, delay); err != nil {
			return t.finish(lastErr, &TransportError{Kind: KindCanceled, Target: target, Method: method, Err: err}, attempt)
		}
	}
	return lastErr
}

// finish surfaces cancellation while keeping the attempt count.
func (t *Transport) finish(last, cancel *TransportError, attempts int) error {
	cancel.Attempts = attempts
	if last != nil && cancel.Err != nil {
		cancel.Err = fmt.Errorf("%w (last error: %v)", cancel.Err, last)
	}
	return cancel
}

// attempt performs a single request and classifies its failure.
func (t *Transport) attempt(ctx context.Context, target, method string, body []byte, timeout time.Duration) (json.RawMessage, *TransportError) {
	fail := func(kind Kind, retryable bool, err error) *TransportError {
		return &TransportError{Kind: kind, Target: target, Method: method, Retryable: retryable, Err: err}
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, fail(KindInvalid, false, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, t.requestFailure(ctx, attemptCtx, fail, fmt.Errorf("http request: %w", err))
	}
	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, t.requestFailure(ctx, attemptCtx, fail, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		text := excerpt(respBody)
		return nil, &TransportError{
			Kind:       KindHTTP,
			Target:     target,
			Method:     method,
			StatusCode: resp.StatusCode,
			Message:    text,
			Retryable:  RetryableStatus(resp.StatusCode) || HasTransientPhrase(text),
		}
	}

	var env response
	if err := json.Unmarshal(respBody, &env); err != nil {
		terr := fail(KindMalformed, true, fmt.Errorf("unmarshal response: %w", err))
		terr.StatusCode = resp.StatusCode
		terr.Message = excerpt(respBody)
		return nil, terr
	}
	if env.Error != nil {
		return nil, &TransportError{
			Kind:       KindRPC,
			Target:     target,
			Method:     method,
			StatusCode: resp.StatusCode,
			Code:       env.Error.Code,
			Message:    env.Error.Message,
			Retryable:  TransientRPCCode(env.Error.Code, env.Error.Message),
		}
	}
	if env.Result == nil {
		terr := fail(KindMalformed, true, errors.New("response has neither result nor error"))
		terr.StatusCode = resp.StatusCode
		terr.Message = excerpt(respBody)
		return nil, terr
	}
	return env.Result, nil
}

func (t *Transport) requestFailure(parent, attemptCtx context.Context, fail func(Kind, bool, error) *TransportError, err error) *TransportError {
	if parent.Err() != nil {
		return fail(KindCanceled, false, err)
	}
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return fail(KindTimeout, true, err)
	}
	if RetryableNetwork(err) {
		return fail(KindNetwork, true, err)
	}
	return fail(KindNetwork, false, err)
}

func excerpt(b []byte) string {
	if len(b) > maxBodyExcerpt {
		b = b[:maxBodyExcerpt]
	}
	return string(bytes.TrimSpace(b))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
