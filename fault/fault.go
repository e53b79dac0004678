// Package fault classifies failures crossing component boundaries so the
// router and the error handler can act on the category without parsing
// message text.
package fault

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the failure category.
type Kind uint8

const (
	// Unknown is the zero value for errors that carry no classification.
	Unknown Kind = iota
	// UpstreamUnavailable covers rate limits, auth rejections and network
	// failures against data providers.
	UpstreamUnavailable
	// NotFound means an identifier resolved to nothing: a bad ticker, an
	// empty dataset for a valid symbol.
	NotFound
	// Validation means intermediate data was malformed or missing: a
	// preprocess call without a fetched dataset, a feature row of NaNs.
	Validation
	// ModelUnavailable means the decision or risk model could not be
	// reached or returned garbage.
	ModelUnavailable
	// Defect is an internal invariant violation.
	Defect
)

func (k Kind) String() string {
	switch k {
	case UpstreamUnavailable:
		return "upstream_unavailable"
	case NotFound:
		return "not_found"
	case Validation:
		return "validation_failure"
	case ModelUnavailable:
		return "model_unavailable"
	case Defect:
		return "defect"
	}
	return "unknown"
}

// Error carries a classified failure together with the operation that
// produced it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New wraps err with a kind and an operation name.
func New(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds a classified error from a format string.
func Errorf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the classification of err, Unknown when it has none.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return Unknown
}

// FromStatus classifies an HTTP response status from an upstream provider.
func FromStatus(op string, status int, body string) error {
	switch {
	case status == http.StatusNotFound:
		return Errorf(NotFound, op, "status %d: %s", status, body)
	case status == http.StatusUnauthorized || status == http.StatusForbidden || status == http.StatusTooManyRequests:
		return Errorf(UpstreamUnavailable, op, "status %d (rate limit or auth): %s", status, body)
	case status >= 500:
		return Errorf(UpstreamUnavailable, op, "status %d: %s", status, body)
	default:
		return Errorf(Unknown, op, "status %d: %s", status, body)
	}
}
