// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for sealtrail packages.
//
// [Envelope] builds protocol message envelopes with
// github.com/tinylib/msgp as an independent MessagePack encoder, so
// decoder tests check against bytes produced by a mainstream
// implementation rather than by the code under test. Payloads are
// passed pre-encoded; [EncodeValue] encodes plain Go values for the
// common case, and tests that need a specific wire format (uint64 for
// a small number, a str-encoded binary blob, duplicate map keys)
// append the bytes themselves.
//
// [UniqueSender] returns distinct, deterministic sender UUIDs, and
// [WriteFile] drops fixtures into a per-test temporary directory.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no sealtrail-internal dependencies.
package testutil
