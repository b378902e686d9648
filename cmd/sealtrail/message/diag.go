// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

package message

import (
	"fmt"
	"io"
	"os"

	"github.com/tinylib/msgp/msgp"

	"github.com/sealtrail/sealtrail/cmd/sealtrail/cli"
	"github.com/sealtrail/sealtrail/lib/capture"
)

type diagParams struct {
	cli.InputParams
	Sequence bool `json:"sequence" flag:"sequence,s" desc:"dump every item of a capture (compression detected)"`
}

// DiagCommand returns the "diag" command.
func DiagCommand() *cli.Command {
	var params diagParams

	return &cli.Command{
		Name:    "diag",
		Summary: "Dump raw MessagePack as JSON without envelope checks",
		Description: `Print MessagePack input as JSON, one line per top-level item.

Unlike decode, diag does not interpret the envelope: it shows exactly
what is on the wire, which helps when decode rejects a message. Binary
strings are printed as base64.`,
		Usage: "sealtrail diag [flags] [file]",
		Examples: []cli.Example{
			{
				Description: "Inspect a rejected message",
				Command:     "sealtrail diag --hex rejected.hex",
			},
		},
		Params: func() any { return &params },
		Run: func(args []string) error {
			data, remaining, err := cli.ReadInput(args, params.InputParams)
			if err != nil {
				return err
			}
			if len(remaining) > 0 {
				return cli.Validation("diag takes at most one file argument, got %q", remaining[0])
			}
			return diagMessagePack(data, os.Stdout, params.Sequence)
		},
	}
}

// diagMessagePack writes each top-level MessagePack item in data as a
// JSON line. Without sequence, bytes after the first item are an
// error.
func diagMessagePack(data []byte, w io.Writer, sequence bool) error {
	if sequence {
		plain, _, err := capture.Open(data, capture.DefaultMaxSize)
		if err != nil {
			return cli.Validation("%w", err)
		}
		data = plain
	}

	total := len(data)
	for item := 0; len(data) > 0; item++ {
		rest, err := msgp.Skip(data)
		if err != nil {
			return cli.Validation("item %d at offset %d: %w", item, total-len(data), err)
		}
		if _, err := msgp.UnmarshalAsJSON(w, data[:len(data)-len(rest)]); err != nil {
			return cli.Validation("item %d at offset %d: %w", item, total-len(data), err)
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return cli.Internal("%w", err)
		}
		if !sequence && len(rest) > 0 {
			return cli.Validation("%d trailing bytes at offset %d", len(rest), total-len(rest))
		}
		data = rest
	}
	return nil
}
