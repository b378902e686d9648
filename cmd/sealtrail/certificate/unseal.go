// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

package certificate

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/sealtrail/sealtrail/cmd/sealtrail/cli"
	"github.com/sealtrail/sealtrail/lib/sealed"
	"github.com/sealtrail/sealtrail/lib/secret"
)

type unsealParams struct {
	Identity string `json:"identity" flag:"identity,i" desc:"age identity file (AGE-SECRET-KEY-1...; # comment lines ignored) (required)"`
	Output   string `json:"output"   flag:"output,o"   desc:"write the key to this file (mode 0600) instead of stdout"`
}

func unsealCommand() *cli.Command {
	var params unsealParams

	return &cli.Command{
		Name:    "unseal",
		Summary: "Decrypt a sealed private key",
		Description: `Decrypt a key.age file written by "sealtrail cert issue".

The plaintext PEM key is written to stdout, or with --output to a new
file with mode 0600.`,
		Usage:  "sealtrail cert unseal --identity <file> [flags] <key.age>",
		Params: func() any { return &params },
		Run: func(args []string) error {
			if len(args) != 1 {
				return cli.Validation("unseal requires exactly one sealed key file argument")
			}
			return runUnseal(args[0], &params, os.Stdout)
		},
	}
}

func runUnseal(path string, params *unsealParams, w io.Writer) error {
	if params.Identity == "" {
		return cli.Validation("--identity is required")
	}

	ciphertext, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cli.NotFound("%w", err)
	}
	if err != nil {
		return cli.Internal("%w", err)
	}

	identity, err := secret.ReadFile(params.Identity)
	if errors.Is(err, fs.ErrNotExist) {
		return cli.NotFound("identity: %w", err)
	}
	if err != nil {
		return cli.Validation("identity: %w", err)
	}
	defer identity.Close()

	plaintext, err := sealed.Decrypt(string(ciphertext), identity)
	if err != nil {
		return cli.Validation("%s: %w", path, err)
	}
	defer plaintext.Close()

	if params.Output != "" {
		return writeNewFile(params.Output, plaintext.Bytes(), 0o600)
	}
	if _, err := w.Write(plaintext.Bytes()); err != nil {
		return cli.Internal("%w", err)
	}
	return nil
}
