// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

// Package cert issues X.509 certificates binding a device's signing
// key to its identity.
//
// An [Authority] holds the distinguished-name attributes shared by
// every certificate it issues (country, organization, locality,
// state) and the issuer common name. [Authority.Issue] signs one
// certificate per call with serial number 1, valid from 50 seconds
// before issuance (tolerating clock skew between the issuer and
// verifiers) for a number of validity units of 86,500 seconds each.
// Every issued certificate is checked to be valid at issuance, and
// self-signed certificates are additionally verified against the key
// they contain.
//
// Keys and certificates are exchanged as PEM: [EncodeCertificate],
// [EncodePublicKey] (the form keyring files accept), and the
// [EncodePrivateKey] / [ParsePrivateKey] pair for PKCS #8 keys.
package cert
