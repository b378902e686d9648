// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

package msgpack

import (
	"errors"
	"fmt"

	"github.com/tinylib/msgp/msgp"
)

var (
	// ErrShortBuffer means a header or payload extends past the end
	// of the buffer.
	ErrShortBuffer = errors.New("unexpected end of buffer")

	// ErrTypeMismatch means the next value's format cannot be read by
	// the requested operation.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrIntegerOverflow means an integer does not fit the requested
	// Go type.
	ErrIntegerOverflow = errors.New("integer overflow")
)

// ReadError describes a failed read. Offset is the position of the
// value (or payload) the read started at; the reader's cursor is left
// there.
type ReadError struct {
	// Offset is the byte offset in the source buffer.
	Offset int

	// Operation names the read that failed (e.g. "array header").
	Operation string

	// Format is the format found at Offset. Meaningless when Err is
	// ErrShortBuffer and the buffer ended before the lead byte.
	Format Format

	// Err is one of ErrShortBuffer, ErrTypeMismatch, ErrIntegerOverflow.
	Err error

	// Cause is the msgp error behind Err, if any.
	Cause error
}

func (e *ReadError) Error() string {
	if errors.Is(e.Err, ErrTypeMismatch) {
		return fmt.Sprintf("msgpack: read %s at offset %d: %v: found %s (%s)",
			e.Operation, e.Offset, e.Err, e.Format, e.Format.ValueType())
	}
	return fmt.Sprintf("msgpack: read %s at offset %d: %v", e.Operation, e.Offset, e.Err)
}

func (e *ReadError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// classify maps an error from msgp onto this package's sentinels.
func classify(err error) error {
	switch cause := msgp.Cause(err); cause.(type) {
	case msgp.TypeError, *msgp.TypeError, msgp.InvalidPrefixError:
		return ErrTypeMismatch
	case msgp.UintOverflow, msgp.UintBelowZero, msgp.IntOverflow:
		return ErrIntegerOverflow
	default:
		if errors.Is(cause, msgp.ErrShortBytes) {
			return ErrShortBuffer
		}
	}
	return ErrTypeMismatch
}
