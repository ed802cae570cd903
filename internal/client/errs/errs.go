// Package errs holds the client-side error taxonomy.
//
// ValidationError never reaches the network. AuthError is a 401/403 from the
// proxy and StatusError any other 4xx. TransportError covers network failures,
// 5xx and responses that could not be used.
package errs

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

func Validation(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

type AuthError struct {
	Status int
	Msg    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("unauthorized (%d): %s", e.Status, e.Msg)
}

type TransportError struct {
	Op     string
	Status int // 0 when no response was received
	Msg    string
	Err    error
}

func (e *TransportError) Error() string {
	switch {
	case e.Status > 0 && e.Msg != "":
		return fmt.Sprintf("%s failed with status %d: %s", e.Op, e.Status, e.Msg)
	case e.Status > 0:
		return fmt.Sprintf("%s failed with status %d", e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	default:
		return e.Op + " failed"
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError is a 4xx other than 401/403, e.g. a member that does not exist.
type StatusError struct {
	Op     string
	Status int
	Msg    string
}

func (e *StatusError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s rejected with status %d: %s", e.Op, e.Status, e.Msg)
	}
	return fmt.Sprintf("%s rejected with status %d", e.Op, e.Status)
}

// Transport wraps a network-level cause with a stack trace.
func Transport(op string, cause error) error {
	return &TransportError{Op: op, Err: errors.WithStack(cause)}
}

// Status reports an unexpected HTTP status: a StatusError for 4xx, otherwise
// a TransportError.
func Status(op string, status int, msg string) error {
	if status >= http.StatusBadRequest && status < http.StatusInternalServerError {
		return &StatusError{Op: op, Status: status, Msg: msg}
	}
	return &TransportError{Op: op, Status: status, Msg: msg}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return stderrors.As(err, &v)
}

func IsAuth(err error) bool {
	var a *AuthError
	return stderrors.As(err, &a)
}

func IsTransport(err error) bool {
	var t *TransportError
	return stderrors.As(err, &t)
}

func IsStatus(err error) bool {
	var e *StatusError
	return stderrors.As(err, &e)
}

// Message extracts the text suitable for showing to the user.
func Message(err error) string {
	var a *AuthError
	if stderrors.As(err, &a) && a.Msg != "" {
		return a.Msg
	}
	var st *StatusError
	if stderrors.As(err, &st) && st.Msg != "" {
		return st.Msg
	}
	var t *TransportError
	if stderrors.As(err, &t) && t.Msg != "" {
		return t.Msg
	}
	var v *ValidationError
	if stderrors.As(err, &v) {
		return v.Msg
	}
	return ""
}
