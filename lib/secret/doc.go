// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds private key material outside the Go heap.
//
// A [Buffer] is an anonymous mmap region locked into RAM (mlock) and
// excluded from core dumps (MADV_DONTDUMP). Close zeroes, unlocks, and
// unmaps it; any later access panics. Device signing keys generated by
// the cert command and age identities used to unseal them live in
// Buffers for as long as they are needed.
//
// Depends on golang.org/x/sys/unix.
package secret
