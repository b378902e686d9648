// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

// Package msgpack is a forward-only MessagePack cursor over an
// in-memory buffer, built on the byte-slice API of
// github.com/tinylib/msgp.
//
// It exists for callers that need to know exactly which bytes a value
// occupied on the wire, not just what the value was. msgp's Read*Bytes
// functions return the unread remainder; [Reader] turns that into an
// absolute [Reader.Offset]. The protocol decoder uses the offset after
// decoding a payload to slice the signed region out of the original
// message. A successful read advances the cursor past exactly one
// header or one value, and a failed read leaves the cursor where it
// was.
//
// [Reader.PeekFormat] reports the next [Format] (its lead byte)
// without consuming it, so callers can dispatch on the wire format:
// str and bin stay distinct, and the uint64 encoding is visible
// through [Format.IsUint64]. String, binary and extension reads return
// sub-slices of the source buffer without copying; callers that
// retain them beyond the buffer's lifetime must copy.
//
// Errors are [*ReadError] values carrying the offset of the failed
// read. [ErrShortBuffer], [ErrTypeMismatch] and [ErrIntegerOverflow]
// classify the cause; the msgp error is kept as the cause.
package msgpack
