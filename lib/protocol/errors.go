// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"errors"
	"fmt"

	"github.com/sealtrail/sealtrail/lib/msgpack"
)

// ErrorKind classifies a decode failure. None of them are retryable:
// decoding the same bytes again fails the same way.
type ErrorKind int

const (
	// MalformedEnvelope: the outer value is not an array of 5 or 6
	// elements, the element count disagrees with the message kind, the
	// sender id is not 16 bytes, or bytes follow the signature.
	MalformedEnvelope ErrorKind = iota + 1

	// UnknownMessageKind: the low nibble of version is neither
	// KindSigned nor KindChained.
	UnknownMessageKind

	// UnsupportedValueType: the payload contains a format the value
	// decoder does not recognize.
	UnsupportedValueType

	// CorruptStream: the input ended early or a field had the wrong
	// type.
	CorruptStream

	// DepthExceeded: payload containers nest deeper than the
	// decoder's MaxDepth.
	DepthExceeded
)

var (
	ErrMalformedEnvelope    = errors.New("malformed envelope")
	ErrUnknownMessageKind   = errors.New("unknown message kind")
	ErrUnsupportedValueType = errors.New("unsupported value type")
	ErrCorruptStream        = errors.New("corrupt stream")
	ErrDepthExceeded        = errors.New("nesting depth exceeded")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case MalformedEnvelope:
		return ErrMalformedEnvelope
	case UnknownMessageKind:
		return ErrUnknownMessageKind
	case UnsupportedValueType:
		return ErrUnsupportedValueType
	case CorruptStream:
		return ErrCorruptStream
	case DepthExceeded:
		return ErrDepthExceeded
	}
	return nil
}

func (k ErrorKind) String() string {
	if sentinel := k.sentinel(); sentinel != nil {
		return sentinel.Error()
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// DecodeError reports why a message was rejected.
type DecodeError struct {
	Kind ErrorKind

	// Offset is the byte offset in the input where the problem was
	// detected.
	Offset int

	// Detail describes what was observed and what was expected.
	Detail string

	// Err is the underlying read error, if any.
	Err error
}

func (e *DecodeError) Error() string {
	message := fmt.Sprintf("protocol: %s at offset %d", e.Kind, e.Offset)
	if e.Detail != "" {
		message += ": " + e.Detail
	}
	if e.Err != nil {
		message += ": " + e.Err.Error()
	}
	return message
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind, so callers can write
// errors.Is(err, protocol.ErrCorruptStream).
func (e *DecodeError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// corrupt wraps a read failure. The offset comes from the read error
// when it has one, since that is where the failing value starts.
func corrupt(reader *msgpack.Reader, field string, err error) *DecodeError {
	offset := reader.Offset()
	var readError *msgpack.ReadError
	if errors.As(err, &readError) {
		offset = readError.Offset
	}
	return &DecodeError{Kind: CorruptStream, Offset: offset, Detail: "reading " + field, Err: err}
}
