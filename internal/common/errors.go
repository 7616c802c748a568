// Package common defines the failure taxonomy shared by the gateway, the
// resource clients, the mutation controller and the views. Callers match
// failures with errors.Is against the sentinels or with KindOf.
package common

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure by how the UI has to react to it.
type Kind int

const (
	// KindNone is reported for a nil error.
	KindNone Kind = iota
	// KindUnknown covers network faults, server faults and anything unclassified.
	KindUnknown
	// KindUnauthenticated means the credential was missing, expired or rejected.
	KindUnauthenticated
	// KindNotFound means the target entity vanished.
	KindNotFound
	// KindValidation means the input was rejected, locally or by the server.
	KindValidation
	// KindBusy means a mutation for the same item is still in flight.
	KindBusy
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindNotFound:
		return "not-found"
	case KindValidation:
		return "validation-rejected"
	case KindBusy:
		return "busy"
	default:
		return "unknown"
	}
}

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation rejected")
	ErrUnknown         = errors.New("unknown failure")
	ErrBusy            = errors.New("operation already in flight")
)

// Sentinel returns the sentinel error matching k, or nil for KindNone.
func (k Kind) Sentinel() error {
	switch k {
	case KindNone:
		return nil
	case KindUnauthenticated:
		return ErrUnauthenticated
	case KindNotFound:
		return ErrNotFound
	case KindValidation:
		return ErrValidation
	case KindBusy:
		return ErrBusy
	default:
		return ErrUnknown
	}
}

// Failure is the single failure signal surfaced to callers.
type Failure struct {
	Kind Kind
	// Status is the HTTP status code, zero when no response was received.
	Status int
	// Op names the failed operation, e.g. "POST /posts/{id}/like".
	Op      string
	Message string
	Err     error
}

func (f *Failure) Error() string {
	s := f.Kind.String()
	if f.Op != "" {
		s = f.Op + ": " + s
	}
	if f.Message != "" {
		s += ": " + f.Message
	}
	if f.Err != nil {
		s += ": " + f.Err.Error()
	}
	return s
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (f *Failure) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := f.Kind.Sentinel(); s != nil {
		errs = append(errs, s)
	}
	if f.Err != nil {
		errs = append(errs, f.Err)
	}
	return errs
}

// Validation builds a local validation failure; nothing is sent to the server.
func Validation(format string, args ...any) *Failure {
	return &Failure{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Busy builds the failure returned when an item already has a mutation in flight.
func Busy(op string) *Failure {
	return &Failure{Kind: KindBusy, Op: op}
}

// SignInRequired builds the failure returned when an operation needs a
// session and none exists. No request is sent.
func SignInRequired(op string) *Failure {
	return &Failure{Kind: KindUnauthenticated, Op: op, Message: "sign in required"}
}

// KindForStatus maps an HTTP status code to a failure kind.
// authenticated reports whether the request carried a credential.
func KindForStatus(status int, authenticated bool) Kind {
	switch {
	case status < 400:
		return KindNone
	case status == http.StatusUnauthorized:
		return KindUnauthenticated
	case status == http.StatusForbidden && !authenticated:
		return KindUnauthenticated
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusBadRequest, status == http.StatusConflict, status == http.StatusUnprocessableEntity:
		return KindValidation
	default:
		return KindUnknown
	}
}

// KindOf reports the kind of err. Errors that are not failures and wrap no
// sentinel are KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return KindUnauthenticated
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrBusy):
		return KindBusy
	default:
		return KindUnknown
	}
}

// UserMessage returns the text shown next to a form or in a notice.
// Validation failures keep their own message; other kinds use fixed texts.
func UserMessage(err error) string {
	switch KindOf(err) {
	case KindNone:
		return ""
	case KindValidation:
		var f *Failure
		if errors.As(err, &f) && f.Message != "" {
			return f.Message
		}
		return "The request was rejected. Check your input."
	case KindUnauthenticated:
		return "Please sign in to continue."
	case KindNotFound:
		return "It is no longer available."
	case KindBusy:
		return "Still working on the previous action."
	default:
		return "Something went wrong. Please try again later."
	}
}
