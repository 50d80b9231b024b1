package chat

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"google.golang.org/api/googleapi"
)

// Kind classifies a failed turn.
type Kind int

const (
	KindUnclassified Kind = iota
	KindMissingCredential
	KindUninitializedContext
	KindTimeout
	KindAuthRejected
	KindRateLimited
	KindNetworkFailure
)

func (k Kind) String() string {
	switch k {
	case KindMissingCredential:
		return "missing_credential"
	case KindUninitializedContext:
		return "uninitialized_context"
	case KindTimeout:
		return "timeout"
	case KindAuthRejected:
		return "auth_rejected"
	case KindRateLimited:
		return "rate_limited"
	case KindNetworkFailure:
		return "network_failure"
	default:
		return "unclassified"
	}
}

// Message is the fixed user-facing text for k. Raw error text never reaches the user.
func (k Kind) Message() string {
	switch k {
	case KindMissingCredential:
		return "No API key found. Please set up your API key first."
	case KindUninitializedContext:
		return "Chat session not initialized. Please refresh the page and try again."
	case KindTimeout:
		return "Request took too long. Please try again."
	case KindAuthRejected:
		return "Authentication failed. Please refresh the page."
	case KindRateLimited:
		return "Too many requests. Please wait a moment and try again."
	case KindNetworkFailure:
		return "Connection issue. Check your internet and try again."
	default:
		return "Something went wrong. Please try again."
	}
}

// ErrBusy is returned when a turn is submitted while another is in flight.
var ErrBusy = errors.New("a turn is already in progress")

// Error is a classified turn failure.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusError carries an HTTP status reported by a model backend.
type StatusError struct {
	Code int
	Err  error
}

func (e *StatusError) Error() string {
	if e.Err == nil {
		return http.StatusText(e.Code)
	}
	return fmt.Sprintf("status %d: %v", e.Code, e.Err)
}

func (e *StatusError) Unwrap() error {
	return e.Err
}

// HTTPCode returns the HTTP status.
func (e *StatusError) HTTPCode() int {
	return e.Code
}

type httpCoder interface {
	HTTPCode() int
}

// Classify maps any error to a Kind.
func Classify(err error) Kind {
	if err == nil {
		return KindUnclassified
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	if code, ok := statusCode(err); ok {
		switch code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return KindAuthRejected
		case http.StatusTooManyRequests:
			return KindRateLimited
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	var urlErr *url.Error
	if errors.As(err, &netErr) || errors.As(err, &urlErr) {
		return KindNetworkFailure
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "network") || strings.Contains(msg, "connection refused") {
		return KindNetworkFailure
	}
	if strings.Contains(msg, "timeout") {
		return KindTimeout
	}
	return KindUnclassified
}

func statusCode(err error) (int, bool) {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code, true
	}
	var coder httpCoder
	if errors.As(err, &coder) {
		return coder.HTTPCode(), true
	}
	return 0, false
}
