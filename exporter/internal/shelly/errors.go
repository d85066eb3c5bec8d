package shelly

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies why a status fetch failed.
type ErrorKind int

const (
	// Unreachable covers refused connections, DNS failures and broken reads.
	Unreachable ErrorKind = iota + 1
	// Timeout means the request ran past the fetch deadline.
	Timeout
	// MalformedResponse covers non-2xx statuses, non-JSON bodies and
	// missing or non-numeric fields.
	MalformedResponse
)

func (k ErrorKind) String() string {
	switch k {
	case Unreachable:
		return "unreachable"
	case Timeout:
		return "timeout"
	case MalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// FetchError is the failure side of a Result.
type FetchError struct {
	Kind    ErrorKind
	Address string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("shelly %s: %s: %v", e.Address, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// errMissingField marks a required status field absent from the payload.
var errMissingField = errors.New("missing required field")

// classify maps a transport error to Timeout or Unreachable.
func classify(err error) ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return Timeout
	}
	return Unreachable
}
