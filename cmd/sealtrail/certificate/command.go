// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

package certificate

import "github.com/sealtrail/sealtrail/cmd/sealtrail/cli"

// Command returns the "cert" command group.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "cert",
		Summary: "Issue device keys and certificates",
		Description: `Generate device signing keys and X.509 certificates.

Certificates carry the distinguished-name attributes and issuer from the
certificate section of sealtrail.yaml. Private keys can be sealed to age
recipients so they never touch disk in the clear.`,
		Subcommands: []*cli.Command{
			issueCommand(),
			unsealCommand(),
			recipientCommand(),
		},
	}
}
