package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the dialog layer.
type Kind string

const (
	KindNone       Kind = ""
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindNetwork    Kind = "network"
	KindRejected   Kind = "rejected"
	KindInternal   Kind = "internal"
)

// NetworkMessage is shown whenever the remote API could not be reached or answered badly.
const NetworkMessage = "Could not connect to server. Try again later."

// ValidationError reports a local, field-level rejection. No remote call was made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError means the lookup said the user does not exist.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ConflictError is a business-rule rejection given the user's existing record.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// NetworkError wraps transport failures, non-2xx statuses and undecodable bodies.
type NetworkError struct {
	Op     string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("remote: %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("remote: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerRejection is a 2xx response carrying success:false. Message is the server's text.
type ServerRejection struct {
	Op      string
	Message string
}

func (e *ServerRejection) Error() string {
	return fmt.Sprintf("remote: %s rejected: %s", e.Op, e.Message)
}

// KindOf maps err to its Kind. Unknown errors are KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var (
		ve *ValidationError
		nf *NotFoundError
		ce *ConflictError
		ne *NetworkError
		sr *ServerRejection
	)
	switch {
	case errors.As(err, &ve):
		return KindValidation
	case errors.As(err, &nf):
		return KindNotFound
	case errors.As(err, &ce):
		return KindConflict
	case errors.As(err, &ne):
		return KindNetwork
	case errors.As(err, &sr):
		return KindRejected
	default:
		return KindInternal
	}
}

// UserMessage returns the text a visitor should see for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var (
		ve *ValidationError
		nf *NotFoundError
		ce *ConflictError
		sr *ServerRejection
	)
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case errors.As(err, &nf):
		return nf.Message
	case errors.As(err, &ce):
		return ce.Message
	case errors.As(err, &sr):
		if sr.Message == "" {
			return "Please try again later."
		}
		return sr.Message
	default:
		return NetworkMessage
	}
}

// IsNetwork reports whether err is a NetworkError.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
