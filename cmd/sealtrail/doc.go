// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

// Sealtrail is the command-line tool for decoding, verifying, and
// auditing signed protocol messages.
//
// The command tree is assembled in cmd/sealtrail/commands; run
// "sealtrail --help" for the full list.
package main
