// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

package certificate

import (
	"fmt"
	"io"
	"os"

	"github.com/sealtrail/sealtrail/cmd/sealtrail/cli"
	"github.com/sealtrail/sealtrail/lib/sealed"
	"github.com/sealtrail/sealtrail/lib/secret"
)

type recipientParams struct {
	Identity string `json:"identity" flag:"identity,i" desc:"file to write the new age identity to (must not exist) (required)"`
}

func recipientCommand() *cli.Command {
	var params recipientParams

	return &cli.Command{
		Name:    "recipient",
		Summary: "Generate an age identity for sealing keys",
		Description: `Generate an age x25519 identity and print its public recipient.

The identity is written with mode 0600 in the age-keygen layout, with
the recipient in a comment line. Pass the printed recipient to
"sealtrail cert issue --recipient" or list it under
certificate.recipients in sealtrail.yaml.`,
		Usage:  "sealtrail cert recipient --identity <file>",
		Params: func() any { return &params },
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("recipient takes no positional arguments, got %q", args[0])
			}
			return runRecipient(&params, os.Stdout)
		},
	}
}

func runRecipient(params *recipientParams, w io.Writer) error {
	if params.Identity == "" {
		return cli.Validation("--identity is required")
	}

	keypair, err := sealed.GenerateKeypair()
	if err != nil {
		return cli.Internal("%w", err)
	}
	defer keypair.Close()

	header := fmt.Sprintf("# public key: %s\n", keypair.PublicKey)
	content, err := secret.New(len(header) + keypair.PrivateKey.Len() + 1)
	if err != nil {
		return cli.Internal("%w", err)
	}
	defer content.Close()
	written := copy(content.Bytes(), header)
	written += copy(content.Bytes()[written:], keypair.PrivateKey.Bytes())
	content.Bytes()[written] = '\n'

	if err := writeNewFile(params.Identity, content.Bytes(), 0o600); err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, keypair.PublicKey)
	return err
}
