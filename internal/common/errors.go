package common

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinels for the client error taxonomy. Callers match them with errors.Is;
// the typed errors below unwrap to these.
var (
	// Local input failed a precondition. No request was sent.
	ErrValidation = errors.New("validation error")

	// Transport-level failures.
	ErrNetwork = errors.New("network error")
	ErrTimeout = errors.New("timeout")

	// A response was received and reported success=false.
	ErrServer       = errors.New("server error")
	ErrUnauthorized = errors.New("unauthorized")

	// The response violates the expected envelope or payload contract.
	ErrMalformedResponse = errors.New("malformed response")

	// The operation is not permitted in the current session state.
	ErrInvalidState = errors.New("invalid state")

	// Local storage could not be read or written.
	ErrPersistence = errors.New("state not persisted")
)

// ValidationError describes a failed local precondition.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError is shorthand for &ValidationError{...}.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NetworkErrorKind distinguishes transport failures.
type NetworkErrorKind string

const (
	NetworkTimeout  NetworkErrorKind = "timeout"
	NetworkConnect  NetworkErrorKind = "connect"
	NetworkIO       NetworkErrorKind = "io"
	NetworkCanceled NetworkErrorKind = "canceled"
)

// NetworkError is returned by the gateway when no response was obtained.
type NetworkError struct {
	Kind NetworkErrorKind
	Op   string
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %s: %v", ErrNetwork, e.Kind, e.Op, e.Err)
}

func (e *NetworkError) Unwrap() []error {
	errs := []error{ErrNetwork, e.Err}
	if e.Kind == NetworkTimeout {
		errs = append(errs, ErrTimeout)
	}
	return errs
}

// ServerError carries the server-supplied message of a success=false response.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return e.Message
}

func (e *ServerError) Unwrap() []error {
	if e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden {
		return []error{ErrServer, ErrUnauthorized}
	}
	return []error{ErrServer}
}

// StateError reports an operation attempted outside its permitted state.
type StateError struct {
	Op    string
	State string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %s not allowed in state %s", ErrInvalidState, e.Op, e.State)
}

func (e *StateError) Unwrap() error { return ErrInvalidState }

// PersistenceError wraps a storage failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrPersistence, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistence, e.Err} }

// Persistence wraps err as a PersistenceError; nil stays nil.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}

// Message returns the text a user-facing collaborator should show for err.
// Server messages are passed through verbatim.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var se *ServerError
	if errors.As(err, &se) {
		return se.Message
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	return err.Error()
}
