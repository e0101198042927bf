package domain

import (
	"errors"
	"fmt"
)

// Wire-stable error type tags. Host-side tags are produced by the
// dispatcher and executor; client-side tags are produced by the bridge
// client when the transport itself fails.
const (
	TypeInvalidUserInput    = "InvalidUserInput"
	TypeExecutionError      = "FusionExecutionError"
	TypeBadRequest          = "BadRequest"
	TypeInternalServerError = "InternalServerError"
	TypeConnectionError     = "FusionServerConnectionError"
	TypeTimeoutError        = "FusionServerTimeoutError"
	TypeResponseParseError  = "FusionServerResponseError"
	TypeRequestError        = "FusionServerRequestError"
	TypeUnknownError        = "UnknownError"
)

// Error is a tagged bridge error. It is the only error shape that may
// cross the HTTP boundary; everything else gets classified into one.
type Error struct {
	// Type is the machine-readable tag from the closed taxonomy.
	Type string `json:"type"`
	// Message is human-readable and may carry remediation advice.
	Message string `json:"message"`
	// Action is set for execution errors so the caller knows which
	// action failed. Not serialized; it is already part of Message.
	Action string `json:"-"`

	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.cause
}

// AsError extracts a *Error from an arbitrary error chain.
func AsError(err error) (*Error, bool) {
	var be *Error
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// NewInvalidUserInput reports invalid caller-supplied input.
func NewInvalidUserInput(message string) *Error {
	return &Error{Type: TypeInvalidUserInput, Message: message}
}

// NewExecutionError reports a failure while executing an action inside
// the host. The action name is folded into the message so the remote
// caller sees it without extra fields.
func NewExecutionError(action string, cause error) *Error {
	return &Error{
		Type:    TypeExecutionError,
		Message: fmt.Sprintf("Error executing action '%s': %v", action, cause),
		Action:  action,
		cause:   cause,
	}
}

// NewBadRequest reports a malformed request body.
func NewBadRequest(message string) *Error {
	return &Error{Type: TypeBadRequest, Message: message}
}

// NewInternalServerError reports an unexpected host-side failure.
func NewInternalServerError(cause error) *Error {
	return &Error{
		Type:    TypeInternalServerError,
		Message: fmt.Sprintf("An unexpected internal error occurred: %v", cause),
		cause:   cause,
	}
}

// NewConnectionError reports that the bridge server is unreachable.
func NewConnectionError(message string) *Error {
	return &Error{Type: TypeConnectionError, Message: message}
}

// NewTimeoutError reports that the host did not answer in time.
func NewTimeoutError(message string) *Error {
	return &Error{Type: TypeTimeoutError, Message: message}
}

// NewResponseParseError reports a response body that was not a valid
// envelope.
func NewResponseParseError(message string) *Error {
	return &Error{Type: TypeResponseParseError, Message: message}
}

// NewRequestError reports a transport failure that is neither a refused
// connection nor a timeout.
func NewRequestError(message string) *Error {
	return &Error{Type: TypeRequestError, Message: message}
}

// NewUnknownError wraps a failure nothing else classified.
func NewUnknownError(cause error) *Error {
	return &Error{
		Type:    TypeUnknownError,
		Message: fmt.Sprintf("An unexpected error occurred: %v", cause),
		cause:   cause,
	}
}
