package ai

import (
	"errors"
	"fmt"
)

// Kind classifies LLM call failures.
type Kind string

const (
	KindBlocked           Kind = "BlockedBySafetyFilter"
	KindEmptyResponse     Kind = "EmptyResponse"
	KindMalformedJSON     Kind = "MalformedJson"
	KindMalformedResponse Kind = "MalformedResponse"
	KindTransport         Kind = "TransportError"
)

// Sentinels for errors.Is matching against *Error values of the same kind.
var (
	ErrBlockedBySafetyFilter = errors.New("response blocked by safety filter")
	ErrEmptyResponse         = errors.New("empty response")
	ErrMalformedJSON         = errors.New("malformed json")
	ErrMalformedResponse     = errors.New("malformed response")
	ErrTransport             = errors.New("transport error")
)

var sentinels = map[Kind]error{
	KindBlocked:           ErrBlockedBySafetyFilter,
	KindEmptyResponse:     ErrEmptyResponse,
	KindMalformedJSON:     ErrMalformedJSON,
	KindMalformedResponse: ErrMalformedResponse,
	KindTransport:         ErrTransport,
}

// Error is returned for every failed LLM call.
type Error struct {
	Kind     Kind
	Provider string
	// Reason is a short diagnostic, e.g. the block reason reported by the provider.
	Reason string
	// Raw holds the offending provider output when there is one.
	Raw string
	Err error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Provider, sentinels[e.Kind])
	if e.Provider == "" {
		msg = sentinels[e.Kind].Error()
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if sentinel, ok := sentinels[e.Kind]; ok {
		errs = append(errs, sentinel)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// NewError builds an *Error of the given kind.
func NewError(kind Kind, provider, reason string, err error) *Error {
	return &Error{Kind: kind, Provider: provider, Reason: reason, Err: err}
}
