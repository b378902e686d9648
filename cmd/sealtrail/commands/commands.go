// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete sealtrail CLI command tree.
package commands

import (
	"fmt"
	"io"
	"os"

	certificatecmd "github.com/sealtrail/sealtrail/cmd/sealtrail/certificate"
	"github.com/sealtrail/sealtrail/cmd/sealtrail/cli"
	messagecmd "github.com/sealtrail/sealtrail/cmd/sealtrail/message"
	"github.com/sealtrail/sealtrail/lib/version"
)

// Root builds and returns the complete sealtrail CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "sealtrail",
		Description: `sealtrail: decode and verify signed, hash-chained protocol messages.

Messages are MessagePack envelopes sent by devices: a version, the
sender's UUID, an optional link to the previous signature, a hint, the
payload, and a signature over everything before it. sealtrail decodes
them, checks signatures against a keyring of device keys, checks hash
chains across capture files, and issues device certificates.`,
		Subcommands: []*cli.Command{
			messagecmd.DecodeCommand(),
			messagecmd.VerifyCommand(),
			messagecmd.ChainCommand(),
			messagecmd.DiagCommand(),
			messagecmd.PackCommand(),
			certificatecmd.Command(),
			versionCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Decode a hex-encoded message",
				Command:     "sealtrail decode --hex message.hex",
			},
			{
				Description: "Verify every signature in a capture",
				Command:     "sealtrail verify --keyring keys.jsonc --sequence capture.bin.zst",
			},
			{
				Description: "Check the hash chains in a capture",
				Command:     "sealtrail chain capture.bin.zst",
			},
			{
				Description: "Issue a self-signed device certificate",
				Command:     "sealtrail cert issue --common-name sensor-17",
			},
		},
	}
}

type versionParams struct {
	cli.JSONOutput
	Fingerprint bool `json:"fingerprint" flag:"fingerprint" desc:"also print the BLAKE3 fingerprint of the running binary"`
}

// versionInfo is the --json output of the version command.
type versionInfo struct {
	Version     string `json:"version"`
	Commit      string `json:"commit"`
	BuildTime   string `json:"build_time"`
	Binary      string `json:"binary,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

func versionCommand() *cli.Command {
	var params versionParams

	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Params:  func() any { return &params },
		Run: func(args []string) error {
			return printVersion(&params, os.Stdout)
		},
	}
}

func printVersion(params *versionParams, w io.Writer) error {
	info := versionInfo{
		Version:   version.Short(),
		Commit:    version.GitCommit,
		BuildTime: version.BuildTime,
	}
	if params.Fingerprint {
		digest, path, err := version.SelfFingerprint()
		if err != nil {
			return cli.Internal("%w", err)
		}
		info.Binary = path
		info.Fingerprint = digest.String()
	}

	if done, err := params.EmitJSON(w, info); done {
		return err
	}
	fmt.Fprintf(w, "sealtrail %s\n", version.Full())
	if params.Fingerprint {
		fmt.Fprintf(w, "  Binary: %s\n  Fingerprint: %s\n", info.Binary, info.Fingerprint)
	}
	return nil
}
