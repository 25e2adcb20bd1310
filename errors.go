package datum

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrKindMismatch = errors.New("kind mismatch")
	ErrOutOfRange   = errors.New("index out of range")
	ErrCapacity     = errors.New("capacity exceeded")
	ErrExternal     = errors.New("external storage")
	ErrMalformed    = errors.New("malformed data")
)

// UsageError describes a programming error: a kind mismatch, a bounds
// violation or an ownership violation. Values report these by panicking with
// a *UsageError, which wraps one of the Err* sentinels.
type UsageError struct {
	Op    string
	Kind  Kind
	Index int // -1 when not applicable
	Err   error
	Msg   string
}

func usageErrf(err error, op string, kind Kind, index int, format string, args ...any) *UsageError {
	return &UsageError{op, kind, index, err, fmt.Sprintf(format, args...)}
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

func (e *UsageError) Error() string {
	var buf strings.Builder
	buf.WriteString("datum.")
	buf.WriteString(e.Op)
	buf.WriteString(" (")
	buf.WriteString(e.Kind.String())
	if e.Index >= 0 {
		fmt.Fprintf(&buf, " [%d]", e.Index)
	}
	buf.WriteString("): ")
	buf.WriteString(e.Err.Error())
	if e.Msg != "" {
		buf.WriteString(": ")
		buf.WriteString(e.Msg)
	}
	return buf.String()
}

// DataError is returned when decoding malformed or truncated input. Off is
// the stream position at which the problem was detected.
type DataError struct {
	Off int64
	Err error
	Msg string
}

func dataErrf(off int64, err error, format string, args ...any) error {
	if err == nil {
		err = ErrMalformed
	}
	return &DataError{off, err, fmt.Sprintf(format, args...)}
}

func (e *DataError) Unwrap() error {
	return e.Err
}

func (e *DataError) Error() string {
	if e.Err == ErrMalformed {
		return fmt.Sprintf("%s at offset %d", e.Msg, e.Off)
	}
	return fmt.Sprintf("%s at offset %d: %v", e.Msg, e.Off, e.Err)
}
