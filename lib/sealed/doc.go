// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed encrypts device signing keys to age recipients so
// they can be stored or shipped without exposing the key.
//
// It wraps filippo.io/age for the operations the cert command needs:
//
//   - [GenerateKeypair] -- new age x25519 keypair, private half in a
//     secret.Buffer
//   - [Encrypt] -- encrypt to one or more age1... recipients, returning
//     standard base64 text
//   - [Decrypt] -- decrypt base64 text with an identity held in a
//     secret.Buffer, returning the plaintext in another Buffer
//   - [ParsePublicKey] -- recipient validation
package sealed
