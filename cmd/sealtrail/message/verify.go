// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

package message

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/sealtrail/sealtrail/cmd/sealtrail/cli"
	"github.com/sealtrail/sealtrail/lib/config"
	"github.com/sealtrail/sealtrail/lib/keyring"
	"github.com/sealtrail/sealtrail/lib/verify"
)

type verifyParams struct {
	cli.ConfigParams
	cli.InputParams
	cli.JSONOutput
	Keyring  string `json:"keyring"  flag:"keyring,k"  desc:"JSONC keyring file (default: keyring.path from config)"`
	Sequence bool   `json:"sequence" flag:"sequence,s" desc:"verify every message of a capture"`
}

// verifyResult is one message's verification outcome.
type verifyResult struct {
	Index  int    `json:"index"`
	Offset int    `json:"offset"`
	Sender string `json:"sender"`
	Kind   string `json:"kind"`
	Valid  bool   `json:"valid"`
	Error  string `json:"error,omitempty"`
}

// VerifyCommand returns the "verify" command.
func VerifyCommand() *cli.Command {
	var params verifyParams

	return &cli.Command{
		Name:    "verify",
		Summary: "Verify message signatures against a keyring",
		Description: `Verify the signature of each message with the sender's registered key.

The keyring is a JSONC file mapping sender UUIDs to Ed25519 or ECDSA
P-256 public keys. Each message prints one OK or FAIL line. The command
exits with status 1 if any message fails verification.`,
		Usage: "sealtrail verify [flags] [file]",
		Examples: []cli.Example{
			{
				Description: "Verify every message in a capture",
				Command:     "sealtrail verify --keyring keys.jsonc --sequence capture.bin",
			},
		},
		Params: func() any { return &params },
		Run: func(args []string) error {
			data, remaining, err := cli.ReadInput(args, params.InputParams)
			if err != nil {
				return err
			}
			if len(remaining) > 0 {
				return cli.Validation("verify takes at most one file argument, got %q", remaining[0])
			}
			logger := cli.NewCommandLogger().With("command", "verify")
			return runVerify(data, &params, os.Stdout, logger)
		},
	}
}

// loadKeyring resolves the keyring from the flag, falling back to the
// configured path.
func loadKeyring(flagPath string, cfg *config.Config) (*keyring.Keyring, error) {
	path := flagPath
	if path == "" {
		path = cfg.Keyring.Path
	}
	if path == "" {
		return nil, cli.Validation("no keyring configured").
			WithHint("Pass --keyring <file> or set keyring.path in sealtrail.yaml.")
	}
	keys, err := keyring.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, cli.NotFound("keyring %s: %w", path, err)
	}
	if err != nil {
		return nil, cli.Validation("%w", err)
	}
	return keys, nil
}

func runVerify(data []byte, params *verifyParams, w io.Writer, logger *slog.Logger) error {
	cfg, err := params.LoadConfig()
	if err != nil {
		return err
	}
	keys, err := loadKeyring(params.Keyring, cfg)
	if err != nil {
		return err
	}

	records, err := readRecords(data, cli.DecoderFromConfig(cfg), params.Sequence, cfg.Capture.MaxSize)
	if err != nil {
		logger.Error("decode failed", "error", err)
		return cli.Validation("decode: %w", err)
	}

	results := make([]verifyResult, len(records))
	failures := 0
	for index, record := range records {
		msg := record.Message
		result := verifyResult{
			Index:  record.Index,
			Offset: record.Offset,
			Sender: msg.SenderID.String(),
			Kind:   msg.Kind().String(),
			Valid:  true,
		}
		if err := verify.Message(msg, keys); err != nil {
			result.Valid = false
			result.Error = err.Error()
			failures++
			logRecord(logger, "verification failed", record, "error", err)
		} else {
			logRecord(logger, "signature valid", record)
		}
		results[index] = result
	}

	if done, err := params.EmitJSON(w, results); done {
		if err != nil {
			return cli.Internal("%w", err)
		}
	} else if err := writeVerifyTable(w, results); err != nil {
		return cli.Internal("%w", err)
	}

	if failures > 0 {
		return &cli.ExitError{Code: 1}
	}
	return nil
}

func writeVerifyTable(w io.Writer, results []verifyResult) error {
	writer := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, result := range results {
		status := "OK"
		detail := ""
		if !result.Valid {
			status = "FAIL"
			detail = result.Error
		}
		fmt.Fprintf(writer, "%s\t%d\t%s\t%s\t%s\n", status, result.Index, result.Sender, result.Kind, detail)
	}
	return writer.Flush()
}
