package tourvisor

import (
	"errors"
	"fmt"
)

// ErrNoRequestID indicates a submit response without a job identifier.
var ErrNoRequestID = errors.New("tourvisor: response contains no request id")

// TransportError covers network failures, non-200 responses, and errors the
// backend reports explicitly. It is terminal for the current search attempt.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("tourvisor: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ParseError covers malformed XML response bodies.
type ParseError struct {
	Op  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("tourvisor: %s: malformed response: %v", e.Op, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
