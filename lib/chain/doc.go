// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

// Package chain validates the hash chain formed by a sender's
// messages.
//
// A CHAINED message carries the signature of the same sender's
// previous message as its chain link. Given messages in arrival
// order, [Verify] tracks the last signature seen per sender and checks
// every chain link against it. A sender's first message in the
// sequence has nothing to link to, so its chain link is recorded but
// not checked. A SIGNED message carries no link and starts the
// sender's chain over.
//
// Verify checks linkage only. Callers verify signatures separately
// (see package verify); a chain of unverified signatures proves
// ordering, not authorship.
package chain
