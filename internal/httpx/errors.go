package httpx

import (
	"errors"
	"fmt"
)

var (
	// ErrNoMessageBody means the header/body separator never arrived.
	ErrNoMessageBody = errors.New("the request did not have a body or was improperly formatted")

	// ErrNoContentLength covers both an absent Content-Length header on a
	// non-GET request and a header whose value is not a number.
	ErrNoContentLength = errors.New("no valid Content-Length header")

	// ErrRequestLineParse means the first line was empty or had fewer than
	// two tokens.
	ErrRequestLineParse = errors.New("could not parse the request line")

	// ErrBadMessage means the consumed region was not valid UTF-8.
	ErrBadMessage = errors.New("message could not be decoded as UTF-8")
)

// BadContentLengthError reports a stream that ended before delivering the
// advertised body length. Both values are kept for diagnostics.
type BadContentLengthError struct {
	Expected int
	Actual   int
}

func (e *BadContentLengthError) Error() string {
	return fmt.Sprintf("expected %d body bytes per Content-Length, got %d", e.Expected, e.Actual)
}

// StreamError wraps an I/O failure on the underlying stream.
type StreamError struct {
	Op  string // "read" or "write"
	Err error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("failed to %s stream: %v", e.Op, e.Err)
}

func (e *StreamError) Unwrap() error {
	return e.Err
}
