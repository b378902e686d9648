// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"

	"github.com/sealtrail/sealtrail/lib/msgpack"
)

// DefaultMaxDepth bounds payload container nesting when
// Decoder.MaxDepth is zero.
const DefaultMaxDepth = 256

// Decoder holds decoding options. The zero value is ready to use.
type Decoder struct {
	// MaxDepth is the deepest allowed nesting of payload containers.
	// A top-level list counts as depth 1. Zero or negative selects
	// DefaultMaxDepth.
	MaxDepth int

	// AllowTrailingData makes Decode ignore bytes after the signature
	// instead of rejecting the message.
	AllowTrailingData bool
}

// Decode decodes a single message with the default options.
func Decode(raw []byte) (*ProtocolMessage, error) {
	return Decoder{}.Decode(raw)
}

// Decode decodes the message in raw. raw must contain exactly one
// envelope unless AllowTrailingData is set.
func (d Decoder) Decode(raw []byte) (*ProtocolMessage, error) {
	message, rest, err := d.DecodeFirst(raw)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 && !d.AllowTrailingData {
		return nil, &DecodeError{
			Kind:   MalformedEnvelope,
			Offset: len(raw) - len(rest),
			Detail: fmt.Sprintf("%d trailing bytes after signature", len(rest)),
		}
	}
	return message, nil
}

// DecodeFirst decodes the envelope at the start of raw and returns the
// bytes that follow it. Use it to walk a concatenation of messages.
func (d Decoder) DecodeFirst(raw []byte) (*ProtocolMessage, []byte, error) {
	reader := msgpack.NewReader(raw)

	format, err := reader.PeekFormat()
	if err != nil {
		return nil, nil, corrupt(reader, "envelope", err)
	}
	if format.ValueType() != msgpack.TypeArray {
		return nil, nil, &DecodeError{
			Kind:   MalformedEnvelope,
			Offset: 0,
			Detail: fmt.Sprintf("envelope is %s (lead byte %s), want array of %d or %d elements",
				format.ValueType(), format, signedFieldCount, chainedFieldCount),
		}
	}
	fieldCount, err := reader.ReadArrayHeader()
	if err != nil {
		return nil, nil, corrupt(reader, "envelope", err)
	}
	if fieldCount != signedFieldCount && fieldCount != chainedFieldCount {
		return nil, nil, &DecodeError{
			Kind:   MalformedEnvelope,
			Offset: 0,
			Detail: fmt.Sprintf("envelope is array[%d], want array of %d or %d elements",
				fieldCount, signedFieldCount, chainedFieldCount),
		}
	}

	message := &ProtocolMessage{}

	versionOffset := reader.Offset()
	if message.Version, err = reader.ReadInt64(); err != nil {
		return nil, nil, corrupt(reader, "version", err)
	}

	senderOffset := reader.Offset()
	sender, err := readRaw(reader)
	if err != nil {
		return nil, nil, corrupt(reader, "sender id", err)
	}
	if len(sender) != senderIDLength {
		return nil, nil, &DecodeError{
			Kind:   MalformedEnvelope,
			Offset: senderOffset,
			Detail: fmt.Sprintf("sender id is %d bytes, want %d", len(sender), senderIDLength),
		}
	}
	if message.SenderID, err = uuid.FromBytes(sender); err != nil {
		return nil, nil, &DecodeError{Kind: MalformedEnvelope, Offset: senderOffset, Detail: "sender id", Err: err}
	}

	switch kind := message.Kind(); kind {
	case KindChained:
		if fieldCount != chainedFieldCount {
			return nil, nil, kindMismatch(kind, fieldCount, chainedFieldCount)
		}
		if message.ChainLink, err = readRaw(reader); err != nil {
			return nil, nil, corrupt(reader, "chain link", err)
		}
	case KindSigned:
		if fieldCount != signedFieldCount {
			return nil, nil, kindMismatch(kind, fieldCount, signedFieldCount)
		}
	default:
		return nil, nil, &DecodeError{
			Kind:   UnknownMessageKind,
			Offset: versionOffset,
			Detail: fmt.Sprintf("version 0x%02x has kind nibble 0x%x", message.Version, uint8(kind)),
		}
	}

	if message.Hint, err = reader.ReadInt64(); err != nil {
		return nil, nil, corrupt(reader, "hint", err)
	}

	payloadDecoder := valueDecoder{reader: reader, maxDepth: d.maxDepth()}
	if message.Payload, err = payloadDecoder.decode(0); err != nil {
		return nil, nil, err
	}

	// Everything consumed so far is what the sender signed. Slice it
	// from the input rather than re-encoding anything.
	message.SignedData = bytes.Clone(raw[:reader.Offset()])

	if message.Signature, err = readRaw(reader); err != nil {
		return nil, nil, corrupt(reader, "signature", err)
	}

	return message, raw[reader.Offset():], nil
}

func (d Decoder) maxDepth() int {
	if d.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return d.MaxDepth
}

// readRaw reads a str- or bin-encoded field and returns a copy of its
// bytes. The copy is never nil, so a present but empty field stays
// distinguishable from an absent one.
func readRaw(reader *msgpack.Reader) ([]byte, error) {
	payload, err := reader.ReadRaw()
	if err != nil {
		return nil, err
	}
	return append([]byte{}, payload...), nil
}

func kindMismatch(kind Kind, fieldCount, want int) *DecodeError {
	return &DecodeError{
		Kind:   MalformedEnvelope,
		Offset: 0,
		Detail: fmt.Sprintf("%s message has %d envelope elements, want %d", kind, fieldCount, want),
	}
}
