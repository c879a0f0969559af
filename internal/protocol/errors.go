package protocol

import (
	"fmt"
	"strings"
)

// DecodeFailure identifies why a single notification record could not be decoded
type DecodeFailure string

const (
	InvalidEncoding DecodeFailure = "invalid_encoding"
	MalformedField  DecodeFailure = "malformed_field"
)

// DecodeError reports a decode failure scoped to one record.
// It never affects the records around it.
type DecodeError struct {
	Kind   DecodeFailure
	Field  string // schema field name, empty for InvalidEncoding
	Record []byte // copy of the offending record
	Err    error  // underlying parse error, if any
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Field != "" {
		fmt.Fprintf(&b, " %q", e.Field)
	}
	fmt.Fprintf(&b, " in record %q", e.Record)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying parse error
func (e *DecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is allows errors.Is to compare DecodeError values by Kind
func (e *DecodeError) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*DecodeError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels for errors.Is matching by failure kind
var (
	ErrInvalidEncoding = &DecodeError{Kind: InvalidEncoding}
	ErrMalformedField  = &DecodeError{Kind: MalformedField}
)

// EncodingOverflowError is the panic value raised by Encode when a command's
// content does not fit in a frame.
type EncodingOverflowError struct {
	Content string
}

func (e *EncodingOverflowError) Error() string {
	return fmt.Sprintf("command %q is %d bytes, frame holds %d", e.Content, len(e.Content), CommandFrameSize)
}
