package rpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
)

// Kind categorises a transport failure.
type Kind string

const (
	KindNetwork   Kind = "network"
	KindTimeout   Kind = "timeout"
	KindHTTP      Kind = "http"
	KindRPC       Kind = "rpc"
	KindMalformed Kind = "malformed"
	KindDecode    Kind = "decode"
	KindCanceled  Kind = "canceled"
	KindInvalid   Kind = "invalid"
)

// TransportError is the single error type surfaced by Transport.Call.
type TransportError struct {
	Kind       Kind
	Target     string
	Method     string
	StatusCode int    // HTTP status, if a response was received
	Code       int    // JSON-RPC error code, for KindRPC
	Message    string // server-provided message or body excerpt
	Retryable  bool
	Attempts   int
	Err        error
}

func (e *TransportError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %s", e.Method, e.Kind, e.describe())
	if e.Attempts > 1 {
		fmt.Fprintf(&b, " (after %d attempts)", e.Attempts)
	}
	return b.String()
}

func (e *TransportError) describe() string {
	switch e.Kind {
	case KindRPC:
		return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
	case KindHTTP:
		if e.Message != "" {
			return fmt.Sprintf("status %d: %s", e.StatusCode, e.Message)
		}
		return fmt.Sprintf("status %d", e.StatusCode)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is a TransportError classified as retryable.
func IsRetryable(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Retryable
}

// IsRPCError reports whether err carries the given JSON-RPC error code.
func IsRPCError(err error, code int) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Kind == KindRPC && te.Code == code
}

var retryableStatus = map[int]bool{
	http.StatusRequestTimeout:     true, // 408
	http.StatusTooEarly:           true, // 425
	http.StatusTooManyRequests:    true, // 429
	499:                           true, // client closed request (nginx)
	http.StatusBadGateway:         true,
	http.StatusServiceUnavailable: true,
	http.StatusGatewayTimeout:     true,
	522:                           true, // cloudflare connection timed out
	523:                           true,
	524:                           true,
}

// RetryableStatus reports whether an HTTP status is worth retrying.
func RetryableStatus(code int) bool {
	return retryableStatus[code] || code >= 500
}

// Transient JSON-RPC error codes seen across Solana and EVM providers.
var transientCodes = map[int]bool{
	-32004: true, // resource unavailable
	-32005: true, // limit exceeded / node behind
	-32007: true, // slot skipped
	-32009: true, // slot not available
	-32014: true, // block status not available yet
	-32016: true, // minimum context slot not reached
	-32603: true, // internal error
	429:    true,
}

var transientPhrases = []string{
	"rate limit",
	"ratelimit",
	"too many requests",
	"overloaded",
	"try again",
	"temporarily unavailable",
	"timeout",
	"timed out",
	"busy",
}

// HasTransientPhrase reports whether s contains rate-limit or overload phrasing.
func HasTransientPhrase(s string) bool {
	s = strings.ToLower(s)
	for _, p := range transientPhrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// TransientRPCCode reports whether a JSON-RPC error is worth retrying.
// -32000 is a generic server error and only retried with transient phrasing.
func TransientRPCCode(code int, message string) bool {
	if transientCodes[code] {
		return true
	}
	return HasTransientPhrase(message)
}

// RetryableNetwork reports whether a request error is a transient network failure.
func RetryableNetwork(err error) bool {
	if err == nil {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}
	// Covers *net.OpError and *net.DNSError.
	var netErr net.Error
	return errors.As(err, &netErr)
}
