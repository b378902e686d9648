// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash provides BLAKE3 fingerprints for raw protocol
// messages and capture files.
//
// A fingerprint identifies the exact bytes a device sent. Two messages
// with the same decoded fields but different encodings (a wider integer
// format, a different map key order) have different fingerprints, which
// is what an audit trail over signed data needs. Fingerprints use BLAKE3
// in keyed mode with a fixed domain key, so they never collide with
// BLAKE3 digests computed for other purposes over the same bytes.
//
// The API surface:
//
//   - [Fingerprint] -- fingerprint of an in-memory message
//   - [HashFile] -- streams a capture file through the same keyed hash
//     with constant memory usage
//   - [FormatDigest] and [ParseDigest] -- canonical hex form used in
//     CLI output and logs
//
// This package has no dependencies on other sealtrail packages.
package binhash
