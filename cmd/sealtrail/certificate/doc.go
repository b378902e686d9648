// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

// Package certificate implements "sealtrail cert": issuing device
// signing keys with X.509 certificates, and the age tooling that keeps
// the generated private keys sealed at rest.
//
// Generated private keys live in a [secret.Buffer] from generation
// until they are written, either as a plain PKCS #8 PEM file with mode
// 0600 or sealed to one or more age recipients.
package certificate
