// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

// Package capture reads and writes capture files: recorded protocol
// messages stored back to back, optionally compressed.
//
// A capture file is the concatenation of complete message envelopes
// exactly as they arrived. There is no framing; each envelope's
// MessagePack array header delimits it, so [Split] walks the buffer
// with [protocol.Decoder.DecodeFirst] until nothing remains.
//
// Whole-file compression is detected from the frame magic, so
// callers never declare it:
//
//   - zstd frames (magic 28 b5 2f fd), via klauspost/compress
//   - LZ4 frames (magic 04 22 4d 18), via pierrec/lz4
//
// Anything else is treated as uncompressed. Decompressed output is
// capped (see [DefaultMaxSize]) so a small hostile file cannot expand
// without bound.
package capture
