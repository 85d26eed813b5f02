package rs422

import (
	"errors"
	"fmt"

	"github.com/jeffday/vcr4j/video"
)

// Sentinel errors for the RS-422 protocol engine.
var (
	// ErrMissingData is raised when the response header announces data
	// bytes that never arrive on the channel.
	ErrMissingData = errors.New("rs422: incoming data is missing")

	// ErrMissingChecksum is raised when the trailing checksum byte of a
	// response never arrives on the channel.
	ErrMissingChecksum = errors.New("rs422: incoming checksum is missing")

	// ErrChecksumMismatch is raised when a response checksum does not match
	// the value recomputed over the echoed command and data bytes.
	ErrChecksumMismatch = errors.New("rs422: checksum mismatch")

	// ErrMalformedResponse is raised when a recognized reply header carries
	// fewer data bytes than its payload requires.
	ErrMalformedResponse = errors.New("rs422: malformed response payload")

	// ErrClosed is returned for operations on a closed engine.
	ErrClosed = errors.New("rs422: engine closed")
)

// ErrorKind classifies a communication failure on the error event stream.
type ErrorKind int

const (
	// KindTransport covers channel read/write failures, including missing
	// data and missing checksum bytes.
	KindTransport ErrorKind = iota
	// KindChecksum covers responses discarded due to a checksum mismatch.
	KindChecksum
	// KindMalformed covers recognized replies with short payloads.
	KindMalformed
	// KindInterrupted covers cycles aborted by cancellation.
	KindInterrupted
)

// String returns the kind's log label.
func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindChecksum:
		return "checksum"
	case KindMalformed:
		return "malformed"
	case KindInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Error is a tagged record of a communication or protocol failure,
// delivered on the engine's error event stream. It is purely
// observational: errors are never returned synchronously to the command
// submitter, since submission is fire-and-forget.
type Error struct {
	// Kind classifies the failure.
	Kind ErrorKind
	// Cause is the underlying error, if any.
	Cause error
	// Command is the command whose cycle produced the failure, if known.
	Command video.Command
}

// Error implements the error interface.
func (e Error) Error() string {
	name := "<none>"
	if e.Command != nil {
		name = e.Command.Name()
	}
	if e.Cause == nil {
		return fmt.Sprintf("rs422: %s error (command=%s)", e.Kind, name)
	}

	return fmt.Sprintf("rs422: %s error (command=%s): %v", e.Kind, name, e.Cause)
}

// Unwrap returns the underlying cause.
func (e Error) Unwrap() error { return e.Cause }
