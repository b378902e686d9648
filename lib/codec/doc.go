// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR encoding used when exporting decoded
// messages.
//
// The decode command renders messages as JSON, YAML, or CBOR. CBOR
// output exists for downstream pipelines that want a binary format
// with a canonical form: the encoder uses Core Deterministic Encoding
// (RFC 8949 §4.2), so the same decoded message always produces the
// same bytes and exports can be deduplicated or hashed.
//
// Types implementing only encoding.TextMarshaler encode as CBOR text
// strings, matching their JSON form.
//
//	data, err := codec.Marshal(document)
//	encoder := codec.NewEncoder(os.Stdout)
//	notation, err := codec.Diagnose(data)
package codec
