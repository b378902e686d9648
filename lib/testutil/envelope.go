// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"github.com/google/uuid"
	"github.com/tinylib/msgp/msgp"
)

// Envelope describes a protocol message to encode. A non-nil
// ChainLink produces a 6-element envelope, nil produces 5.
type Envelope struct {
	Version   int64
	Sender    uuid.UUID
	ChainLink []byte
	Hint      int64

	// Payload is the pre-encoded MessagePack payload. Nil encodes a
	// MessagePack nil.
	Payload []byte

	// Signature is appended as-is unless Sign is set.
	Signature []byte

	// Sign, when set, is called with the signed prefix and its result
	// becomes the signature.
	Sign func(signed []byte) []byte

	// FieldCount overrides the array header count when non-zero.
	FieldCount int
}

// Encode returns the encoded envelope and the length of its signed
// prefix.
func (e Envelope) Encode() (raw []byte, signedLength int) {
	fieldCount := 5
	if e.ChainLink != nil {
		fieldCount = 6
	}
	if e.FieldCount != 0 {
		fieldCount = e.FieldCount
	}

	raw = msgp.AppendArrayHeader(raw, uint32(fieldCount))
	raw = msgp.AppendInt64(raw, e.Version)
	raw = msgp.AppendBytes(raw, e.Sender[:])
	if e.ChainLink != nil {
		raw = msgp.AppendBytes(raw, e.ChainLink)
	}
	raw = msgp.AppendInt64(raw, e.Hint)
	if e.Payload == nil {
		raw = msgp.AppendNil(raw)
	} else {
		raw = append(raw, e.Payload...)
	}

	signedLength = len(raw)
	signature := e.Signature
	if e.Sign != nil {
		signature = e.Sign(raw[:signedLength:signedLength])
	}
	raw = msgp.AppendBytes(raw, signature)
	return raw, signedLength
}

// Bytes returns the encoded envelope.
func (e Envelope) Bytes() []byte {
	raw, _ := e.Encode()
	return raw
}

// EncodeValue encodes a plain Go value (nil, bool, integers, floats,
// string, []byte, []any, map[string]any) as MessagePack. It fails the
// test if msgp cannot encode the value.
func EncodeValue(t interface {
	Helper()
	Fatalf(format string, args ...any)
}, value any) []byte {
	t.Helper()
	encoded, err := msgp.AppendIntf(nil, value)
	if err != nil {
		t.Fatalf("encoding %T as msgpack: %v", value, err)
	}
	return encoded
}
