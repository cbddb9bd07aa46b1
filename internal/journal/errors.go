package journal

import (
	"errors"
	"fmt"
)

// ErrorKind enumerates the fatal, terminal-on-first-occurrence failure
// modes a Decoder can report.
type ErrorKind int

const (
	// ErrNone means no error has occurred.
	ErrNone ErrorKind = iota
	ErrUnexpectedEOF
	ErrMalformedVarint
	ErrFrameTooLarge
	ErrDanglingRef
	ErrUnknownTag
	ErrUnexpectedKV
	ErrCompression
)

func (k ErrorKind) String() string {
	switch k {
	case ErrNone:
		return "none"
	case ErrUnexpectedEOF:
		return "UnexpectedEof"
	case ErrMalformedVarint:
		return "MalformedVarint"
	case ErrFrameTooLarge:
		return "FrameTooLarge"
	case ErrDanglingRef:
		return "DanglingRef"
	case ErrUnknownTag:
		return "UnknownTag"
	case ErrUnexpectedKV:
		return "UnexpectedKv"
	case ErrCompression:
		return "CompressionError"
	default:
		return "Unknown"
	}
}

// DecodeError carries a failure kind plus the byte position at which it
// was detected, so the driver can log precise diagnostic context (see
// spec §7: "logs the error with byte-position context from position()").
type DecodeError struct {
	Kind ErrorKind
	Pos  uint64
	msg  string
}

func (e *DecodeError) Error() string {
	if e.msg != "" {
		return fmt.Sprintf("journal: %s at byte %d: %s", e.Kind, e.Pos, e.msg)
	}
	return fmt.Sprintf("journal: %s at byte %d", e.Kind, e.Pos)
}

// newErr builds a *DecodeError for kind at pos with a formatted message.
func newErr(kind ErrorKind, pos uint64, format string, args ...interface{}) *DecodeError {
	return &DecodeError{Kind: kind, Pos: pos, msg: fmt.Sprintf(format, args...)}
}

// corruptionReporter is implemented by readers beneath the frame layer
// (see internal/streamsniff's zstd/gzip wrappers) that want a read
// failure classified as ErrCompression instead of plain truncation.
// Matched structurally so this package never needs to import
// streamsniff.
type corruptionReporter interface {
	Corrupted() bool
}

// isCorruption reports whether err (or anything it wraps) originated
// in the decompression layer rather than being a plain truncated read.
func isCorruption(err error) bool {
	var cr corruptionReporter
	if errors.As(err, &cr) {
		return cr.Corrupted()
	}
	return false
}
