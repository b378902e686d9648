// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

// Package verify checks the signature of a decoded protocol message
// against its sender's public key.
//
// The signature always covers [protocol.ProtocolMessage.SignedData],
// the exact bytes received before the signature element. Devices sign
// a digest of those bytes rather than the bytes themselves: SHA-512
// for Ed25519 and SHA-256 for ECDSA P-256, whose signatures are the
// fixed-width 64-byte r||s concatenation.
package verify
