// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the sealtrail
// CLI.
//
// The central type is [Command], which represents a named subcommand
// with optional nested [Command.Subcommands], a flag source, and a Run
// function. Flags come either from a params struct whose tagged fields
// are bound by [BindFlags] (flag:"name,n" desc:"..." default:"...") or
// from a hand-built [pflag.FlagSet]. Commands are assembled into a
// tree in cmd/sealtrail/commands and dispatched via [Command.Execute],
// which handles flag parsing, subcommand routing, and structured help
// output with examples.
//
// When a user types an unknown subcommand or flag, the framework
// computes Levenshtein edit distance against all known names and
// suggests the closest match (threshold: distance <= 3).
//
// Shared pieces used by every subcommand package:
//
//   - [ConfigParams] -- the --config flag and config resolution, plus
//     [DecoderFromConfig]
//   - [InputParams] / [ReadInput] -- file-or-stdin input with --hex and
//     --base64 decoding
//   - [JSONOutput] -- the --json flag
//   - [ToolError] and [ExitError] -- categorized failures and
//     silent non-zero exits
//   - [NewCommandLogger] -- slog logger for command outcomes
package cli
