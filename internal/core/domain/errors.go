package domain

import (
	"errors"
	"fmt"
)

var ErrAuthRequired = errors.New("authentication required")
var ErrStaleSession = errors.New("session expired")
var ErrForbidden = errors.New("access forbidden")
var ErrValidation = errors.New("validation failed")
var ErrRemote = errors.New("remote call failed")
var ErrNoDraft = errors.New("no order draft")
var ErrItemNotFound = errors.New("cart item not found")
var ErrSubmitFailed = errors.New("order submission failed")

// ValidationError reports bad local input. It never reaches the remote layer.
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

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// RemoteError is any failed call to the backend: transport failure, non-2xx
// status or an undecodable body. Status is 0 for transport failures.
type RemoteError struct {
	Op      string
	Status  int
	Message string // human readable, safe to show to the user
	Err     error
}

func (e *RemoteError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "request failed"
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *RemoteError) Unwrap() error { return e.Err }

func (e *RemoteError) Is(target error) bool { return target == ErrRemote }

// UserMessage returns the message to surface for err, hiding internals.
func UserMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	if errors.Is(err, ErrSubmitFailed) {
		return "Failed to send order. Try again."
	}
	if errors.Is(err, ErrStaleSession) {
		return "Your session has expired. Please login again."
	}
	var re *RemoteError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	switch {
	case errors.Is(err, ErrAuthRequired):
		return "Please login to continue."
	case errors.Is(err, ErrForbidden):
		return "You are not allowed to do that."
	case errors.Is(err, ErrNoDraft):
		return "No order in progress. Start again from the cart."
	case errors.Is(err, ErrItemNotFound):
		return "That item is no longer in the cart."
	}
	return "Something went wrong. Please try again."
}
