// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"encoding/binary"
	"sync/atomic"

	"github.com/google/uuid"
)

var uniqueCounter atomic.Uint64

// UniqueSender returns a sender UUID that no other call in this
// process returns. The counter occupies the last eight bytes, so the
// sequence is deterministic across runs:
//
//	first := testutil.UniqueSender()  // 5ea17a11-0000-4000-0000-000000000001
func UniqueSender() uuid.UUID {
	var sender uuid.UUID
	copy(sender[:8], []byte{0x5e, 0xa1, 0x7a, 0x11, 0x00, 0x00, 0x40, 0x00})
	binary.BigEndian.PutUint64(sender[8:], uniqueCounter.Add(1))
	return sender
}
