// Package fault defines the error taxonomy of the client. Every error the
// client returns is a *Error whose Kind tells the caller what went wrong:
//
//   - Configuration: missing host, credentials or keys
//   - Data: missing call fields, malformed bodies, UUID mismatch, 4xx replies
//   - Connection: network and TLS failures, 5xx replies
//   - Signature: a counterparty signature failed verification
//   - Version: a payload carried a protocol version other than "1.1"
//
// Match kinds with errors.Is against the sentinels:
//
//	if errors.Is(err, fault.ErrSignature) {
//	    // reject the message
//	}
package fault

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an Error.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindConfiguration
	KindData
	KindConnection
	KindSignature
	KindVersion
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindData:
		return "data"
	case KindConnection:
		return "connection"
	case KindSignature:
		return "signature"
	case KindVersion:
		return "version"
	default:
		return "unknown"
	}
}

// Sentinels matched by kind through errors.Is.
var (
	ErrConfiguration = &Error{Kind: KindConfiguration}
	ErrData          = &Error{Kind: KindData}
	ErrConnection    = &Error{Kind: KindConnection}
	ErrSignature     = &Error{Kind: KindSignature}
	ErrVersion       = &Error{Kind: KindVersion}
)

// Error is a classified failure.
//
// Status, Body, Method and RequestBody are set when the failure happened
// while talking to the counterparty and a reply was received.
type Error struct {
	Kind    Kind
	Message string

	Status      int
	Body        string
	Method      string
	RequestBody string

	Err error
}

// New returns an Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf returns an Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error of the given kind caused by err. The message is
// taken from err.
func Wrap(kind Kind, err error) *Error {
	return &Error{Kind: kind, Message: err.Error(), Err: err}
}

// Configuration aggregates configuration problems into one Error. It
// returns nil when problems is empty.
func Configuration(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return New(KindConfiguration, strings.Join(problems, "; "))
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String() + " fault"
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind. Sentinels carry
// no message, so any Error matches the sentinel of its kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Message == "" {
		return t.Kind == e.Kind
	}
	return t == e
}

// KindOf returns the Kind of the first *Error in err's chain, or
// KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
