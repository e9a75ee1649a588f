package session

import (
	"errors"
	"fmt"
)

// ErrorKind classifies auth failures for the form layer.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNetwork
	KindRejected
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Error is a classified auth failure. It is returned as data, never panicked.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		return "auth " + e.Kind.String()
	}
	return fmt.Sprintf("auth %s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf classifies err. Errors that are not *Error are KindUnknown.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

var (
	ErrUnresolved = &Error{Kind: KindUnknown, Message: "session is still being resolved"}
	ErrSignedIn   = &Error{Kind: KindUnknown, Message: "already signed in"}
	ErrSuperseded = &Error{Kind: KindUnknown, Message: "session changed while the request was in flight"}
	ErrNoToken    = errors.New("session: no stored token")
)
