// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

package message

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sealtrail/sealtrail/cmd/sealtrail/cli"
	"github.com/sealtrail/sealtrail/lib/capture"
)

type packParams struct {
	cli.ConfigParams
	Compression string `json:"compression" flag:"compression,z" desc:"capture compression: none, lz4, or zstd" default:"zstd"`
	Output      string `json:"output"      flag:"output,o"      desc:"capture file to write (required)"`
}

// PackCommand returns the "pack" command.
func PackCommand() *cli.Command {
	var params packParams

	return &cli.Command{
		Name:    "pack",
		Summary: "Combine message files into a capture",
		Description: `Concatenate the messages in the given files into one capture file.

Each input file holds one or more complete messages (a single message or
an uncompressed capture). Every message is decoded before anything is
written, so a capture produced by pack always splits cleanly. The
capture is compressed with zstd by default.`,
		Usage: "sealtrail pack [flags] -o <capture> <file>...",
		Examples: []cli.Example{
			{
				Description: "Pack two messages into an LZ4 capture",
				Command:     "sealtrail pack -z lz4 -o capture.bin.lz4 first.bin second.bin",
			},
		},
		Params: func() any { return &params },
		Run: func(args []string) error {
			logger := cli.NewCommandLogger().With("command", "pack")
			return runPack(args, &params, os.Stdout, logger)
		},
	}
}

func runPack(inputs []string, params *packParams, w io.Writer, logger *slog.Logger) error {
	if params.Output == "" {
		return cli.Validation("--output is required")
	}
	if len(inputs) == 0 {
		return cli.Validation("pack requires at least one input file")
	}
	compression, err := capture.ParseCompression(params.Compression)
	if err != nil {
		return cli.Validation("%w", err).WithHint("Use --compression none, lz4, or zstd.")
	}

	cfg, err := params.LoadConfig()
	if err != nil {
		return err
	}
	decoder := cli.DecoderFromConfig(cfg)

	var plain []byte
	messages := 0
	for _, input := range inputs {
		data, err := os.ReadFile(input)
		if err != nil {
			return cli.NotFound("%w", err)
		}
		records, err := capture.Split(decoder, data)
		if err != nil {
			return cli.Validation("%s: %w", input, err)
		}
		for _, record := range records {
			logRecord(logger, "packed message", record, "input", input)
			plain = append(plain, record.Raw...)
		}
		messages += len(records)
	}
	if messages == 0 {
		return cli.Validation("input files contain no messages")
	}

	packed, err := capture.Compress(plain, compression)
	if err != nil {
		return cli.Internal("%w", err)
	}
	if err := os.WriteFile(params.Output, packed, 0o644); err != nil {
		return cli.Internal("writing capture: %w", err)
	}

	logger.Info("capture written",
		"capture", params.Output,
		"messages", messages,
		"compression", compression.String(),
		"size", len(packed),
	)
	_, err = fmt.Fprintf(w, "packed %d messages from %d files into %s (%s, %d bytes)\n",
		messages, len(inputs), params.Output, compression, len(packed))
	return err
}
