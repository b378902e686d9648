// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

// Package protocol decodes signed, optionally hash-chained protocol
// messages from their MessagePack envelope.
//
// An envelope is a MessagePack array with positional fields and no
// tags:
//
//	[version, sender-id, hint, payload, signature]              (signed)
//	[version, sender-id, chain-link, hint, payload, signature]  (chained)
//
// The low nibble of version selects the kind ([KindSigned] or
// [KindChained]); the remaining bits are the protocol version. The
// sender id is a 16-byte raw string holding a UUID. The payload is an
// arbitrary MessagePack value decoded without a schema into a [Value].
//
// [Decode] does not verify the signature. It hands the caller the
// exact bytes the sender signed in [ProtocolMessage.SignedData]: every
// byte of the original input from offset 0 up to the signature field.
// These bytes are sliced from the input, never re-encoded, because a
// re-encoder could normalize integer widths or map key order and the
// signature would no longer match.
//
// Decoding is all-or-nothing. Every failure is a [*DecodeError] whose
// [ErrorKind] can be tested with errors.Is against the Err* sentinels:
//
//	message, err := protocol.Decode(raw)
//	if errors.Is(err, protocol.ErrUnknownMessageKind) {
//	    ...
//	}
//
// A [Decoder] is a plain configuration value with no mutable state and
// may be shared between goroutines.
package protocol
