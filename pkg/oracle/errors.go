package oracle

import (
	"context"
	"errors"
	"net"
	"strings"
)

// ErrorClass is the error taxonomy surfaced to the Dialogue Controller
//: quota errors are sticky, rate-limit errors are
// transient, everything else is retried once against the fallback model.
type ErrorClass int

const (
	// ClassOther covers parse failures, transport failures and anything
	// the oracle returns that doesn't match a more specific class.
	ClassOther ErrorClass = iota
	// ClassQuotaExhausted flips flags.llm_disabled sticky until reset.
	ClassQuotaExhausted
	// ClassRateLimited is transient — surfaced as "please retry shortly"
	// without mutating stage.
	ClassRateLimited
)

func (c ErrorClass) String() string {
	switch c {
	case ClassQuotaExhausted:
		return "quota_exhausted"
	case ClassRateLimited:
		return "rate_limited"
	default:
		return "other"
	}
}

// CallError wraps a failed oracle call with its classification.
type CallError struct {
	Class ErrorClass
	Op    string
	Err   error
}

func (e *CallError) Error() string {
	return "oracle: " + e.Op + ": " + e.Class.String() + ": " + e.Err.Error()
}

func (e *CallError) Unwrap() error { return e.Err }

// classifyHTTPError maps a non-2xx HTTP status and optional quota hint
// (usually an error-code field in the response body) onto ErrorClass.
// A small decision tree over well-known signals rather than blanket
// string matching.
func classifyHTTPError(statusCode int, quotaHint bool) ErrorClass {
	if statusCode != 429 {
		return ClassOther
	}
	if quotaHint {
		return ClassQuotaExhausted
	}
	return ClassRateLimited
}

// classifyTransportError handles a failed HTTP round trip (no status code
// to inspect).
func classifyTransportError(err error) ErrorClass {
	if err == nil {
		return ClassOther
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ClassOther
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ClassOther
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"connection refused", "connection reset", "broken pipe", "no such host"} {
		if strings.Contains(msg, s) {
			return ClassOther
		}
	}
	return ClassOther
}

// isRetryable reports whether a classified error should trigger the
// single fallback-model retry: any non-quota error retries exactly once
// against a configured fallback model if different.
func isRetryable(class ErrorClass) bool {
	return class != ClassQuotaExhausted
}
