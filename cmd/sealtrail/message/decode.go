// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

package message

import (
	"io"
	"log/slog"
	"os"

	"github.com/sealtrail/sealtrail/cmd/sealtrail/cli"
)

type decodeParams struct {
	cli.ConfigParams
	cli.InputParams
	Sequence      bool   `json:"sequence"       flag:"sequence,s"     desc:"decode a capture of consecutive messages (compression detected)"`
	Format        string `json:"format"         flag:"format,f"       desc:"output format: json, yaml, or cbor" default:"json"`
	Compact       bool   `json:"compact"        flag:"compact,c"      desc:"compact JSON output (no indentation)"`
	AllowTrailing bool   `json:"allow_trailing" flag:"allow-trailing" desc:"accept bytes after a single message"`
}

// DecodeCommand returns the "decode" command.
func DecodeCommand() *cli.Command {
	var params decodeParams

	return &cli.Command{
		Name:    "decode",
		Summary: "Decode a protocol message to JSON, YAML, or CBOR",
		Description: `Decode a signed or chained protocol message and print its fields.

The message is read from the trailing file argument or stdin. With --hex
or --base64, the input is text in that encoding. Signature and chain link
are printed as hex; binary payload values are printed as hex in JSON and
YAML and kept as byte strings in CBOR. The fingerprint is the keyed
BLAKE3 digest of the signed bytes.

With --sequence, the input is a capture of back-to-back messages,
optionally zstd or LZ4 compressed, and the output is a list.`,
		Usage: "sealtrail decode [flags] [file]",
		Examples: []cli.Example{
			{
				Description: "Decode a hex-encoded message from stdin",
				Command:     "echo 9522c410... | sealtrail decode --hex",
			},
			{
				Description: "Decode a compressed capture as YAML",
				Command:     "sealtrail decode --sequence --format yaml capture.bin.zst",
			},
		},
		Params: func() any { return &params },
		Run: func(args []string) error {
			data, remaining, err := cli.ReadInput(args, params.InputParams)
			if err != nil {
				return err
			}
			if len(remaining) > 0 {
				return cli.Validation("decode takes at most one file argument, got %q", remaining[0])
			}
			logger := cli.NewCommandLogger().With("command", "decode")
			return runDecode(data, &params, os.Stdout, logger)
		},
	}
}

func runDecode(data []byte, params *decodeParams, w io.Writer, logger *slog.Logger) error {
	if !validFormat(params.Format) {
		return cli.Validation("unknown format %q", params.Format).WithHint("Use --format json, yaml, or cbor.")
	}

	cfg, err := params.LoadConfig()
	if err != nil {
		return err
	}
	decoder := cli.DecoderFromConfig(cfg)
	if params.AllowTrailing {
		decoder.AllowTrailingData = true
	}

	records, err := readRecords(data, decoder, params.Sequence, cfg.Capture.MaxSize)
	if err != nil {
		logger.Error("decode failed", "error", err)
		return cli.Validation("decode: %w", err)
	}
	if len(records) == 0 {
		return cli.Validation("no messages in input")
	}

	documents := make([]document, len(records))
	for index, record := range records {
		logRecord(logger, "decoded message", record)
		documents[index] = newDocument(record, params.Format)
	}

	if err := render(w, params.Format, params.Compact, documents, params.Sequence); err != nil {
		return cli.Internal("%w", err)
	}
	return nil
}
