// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

// Package message implements the sealtrail commands that work on
// protocol messages and capture files: decode, verify, chain, diag,
// and pack.
//
// Every command reads its input the same way (a trailing file argument
// or stdin, optionally hex or base64 text, see [cli.ReadInput]) and
// builds its decoder from the loaded configuration. With --sequence,
// input is treated as a capture: compressed captures are detected and
// expanded, and the envelopes are split in order.
//
// Outcomes are logged through [cli.NewCommandLogger] with the sender,
// kind, hint, and offset of each message. Results go to stdout.
package message
