// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind is the message kind carried in the low nibble of the version
// field.
type Kind uint8

const (
	// KindSigned is a standalone signed message: the first link of a
	// chain, or a message outside any chain.
	KindSigned Kind = 0x02

	// KindChained is a signed message that carries a link (normally
	// the predecessor's signature) to the previous message.
	KindChained Kind = 0x03
)

// Protocol version 2 version fields as sent by current devices.
const (
	VersionSigned  int64 = 0x22
	VersionChained int64 = 0x23
)

func (k Kind) String() string {
	switch k {
	case KindSigned:
		return "signed"
	case KindChained:
		return "chained"
	}
	return fmt.Sprintf("kind(0x%02x)", uint8(k))
}

// Envelope element counts for each kind.
const (
	signedFieldCount  = 5
	chainedFieldCount = 6
)

// senderIDLength is the size of the raw sender UUID.
const senderIDLength = 16

// ProtocolMessage is a decoded envelope. It owns all of its byte
// slices; none alias the decoder's input.
type ProtocolMessage struct {
	// Version packs the protocol version (high bits) and the Kind
	// (low nibble).
	Version int64

	// SenderID identifies the device or service that signed the
	// message. The 16 raw bytes are read as a big-endian UUID.
	SenderID uuid.UUID

	// ChainLink references the predecessor message. It is nil for
	// signed messages and non-nil (possibly empty) for chained ones.
	ChainLink []byte

	// Hint tells the receiver how to interpret Payload. The decoder
	// does not interpret it.
	Hint int64

	// Payload is the application value. It is never nil; an encoded
	// nil decodes as Null.
	Payload Value

	// SignedData is the prefix of the input covered by Signature.
	SignedData []byte

	// Signature is the trailing raw field.
	Signature []byte
}

// Kind returns the message kind from the version's low nibble.
func (m *ProtocolMessage) Kind() Kind {
	return Kind(m.Version & 0x0f)
}

// HasChainLink reports whether the message carries a chain link.
func (m *ProtocolMessage) HasChainLink() bool {
	return m.ChainLink != nil
}
