package interpreter

import (
	"errors"
	"fmt"
)

// Kind classifies an interpretation failure.
type Kind int

const (
	// KindMissingCredential means no API key was configured. No request was sent.
	KindMissingCredential Kind = iota
	// KindServiceCallFailed covers network, HTTP and service-side errors.
	KindServiceCallFailed
	// KindMalformedResponse means the reply was not a JSON object.
	KindMalformedResponse
)

// Sentinels for errors.Is comparisons against *Error.
var (
	ErrMissingCredential = errors.New("API key not found")
	ErrServiceCallFailed = errors.New("text-generation service call failed")
	ErrMalformedResponse = errors.New("malformed response from text-generation service")
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindMissingCredential:
		return "MissingCredential"
	case KindServiceCallFailed:
		return "ServiceCallFailed"
	case KindMalformedResponse:
		return "MalformedResponse"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindMissingCredential:
		return ErrMissingCredential
	case KindServiceCallFailed:
		return ErrServiceCallFailed
	default:
		return ErrMalformedResponse
	}
}

// Error is returned by Interpret for every failure.
type Error struct {
	Err  error
	Kind Kind
}

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Error returns a message suitable for showing to the user.
func (e *Error) Error() string {
	if e.Kind == KindMissingCredential {
		return "Critical: API key not found (set GEMINI_API_KEY)"
	}
	if e.Err == nil {
		return e.Kind.sentinel().Error()
	}
	return fmt.Sprintf("%s: %v", e.Kind.sentinel(), e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// KindOf returns the failure kind of err, and false when err is not an *Error.
func KindOf(err error) (Kind, bool) {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Kind, true
	}
	return 0, false
}
