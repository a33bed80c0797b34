package errors

// Transport-specific helpers for mapping HTTP/network failures to project
// ErrorCode and for retry semantics. The range-request transport wraps its
// failures through here so callers get stable codes instead of stdlib soup

import (
	"context"
	stderrs "errors"
	"fmt"
	"net"
	"strings"
)

// IsTimeout reports whether the root cause is a timeout (net.Error timeout
// or a context deadline)
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if stderrs.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	if stderrs.As(Root(err), &ne) {
		return ne.Timeout()
	}
	return false
}

// IsCanceled reports whether the root cause is a local context cancellation
func IsCanceled(err error) bool {
	return err != nil && stderrs.Is(err, context.Canceled)
}

// FromTransport wraps a transport failure as a network error.
// Context cancellations and deadlines pass through as Unavailable so callers
// can tell "we gave up" from "the host misbehaved". If err is nil, returns nil
func FromTransport(err error, msg string) error {
	if err == nil {
		return nil
	}
	if stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return Wrap(err, ErrorCodeUnavailable, msg)
	}
	return Wrap(err, ErrorCodeNetwork, msg)
}

// FromTransportf is the formatted variant of FromTransport
func FromTransportf(err error, format string, a ...any) error {
	return FromTransport(err, fmt.Sprintf(format, a...))
}

// IsRetryable reports whether an error represents a transient network
// condition worth retrying. It handles both our coded errors and the raw
// text seen from the net stack (connection resets, handshake timeouts)
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Do not retry local cancellations; let the caller decide higher-level retries
	if stderrs.Is(err, context.Canceled) {
		return false
	}

	switch CodeOf(err) {
	case ErrorCodeUnavailable, ErrorCodeTooManyRequests:
		return true
	case ErrorCodeNetwork:
		// Fall through to root-cause inspection below
	default:
		return false
	}

	root := Root(err)

	var ne net.Error
	if stderrs.As(root, &ne) && ne.Timeout() {
		return true
	}

	// Fallback: text patterns emitted by the http/net stack on flaky links
	s := strings.ToLower(root.Error())
	switch {
	case strings.Contains(s, "connection refused"),
		strings.Contains(s, "connection reset by peer"),
		strings.Contains(s, "broken pipe"),
		strings.Contains(s, "i/o timeout"),
		strings.Contains(s, "tls handshake timeout"),
		strings.Contains(s, "unexpected eof"),
		strings.Contains(s, "server closed idle connection"):
		return true
	default:
		return false
	}
}
