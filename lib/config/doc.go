// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the sealtrail
// command.
//
// Configuration is loaded from a single file specified by either the
// SEALTRAIL_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There are no fallbacks, no ~/.config
// discovery, and no automatic file search. Commands run without a
// config file use [Default].
//
// Variable expansion is performed on path fields after loading:
// ${HOME} and ${VAR:-default} patterns are expanded. No other
// environment variables override config values.
//
// Key exports:
//
//   - [Config] -- Decoder, Capture, Keyring, and Certificate sections
//   - [Default] -- returns a Config with the built-in defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// The certificate defaults and the accepted signature algorithm names
// come from lib/cert, the only sealtrail package this one depends on.
package config
