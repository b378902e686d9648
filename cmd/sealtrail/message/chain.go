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

	"github.com/google/uuid"

	"github.com/sealtrail/sealtrail/cmd/sealtrail/cli"
	"github.com/sealtrail/sealtrail/lib/capture"
	"github.com/sealtrail/sealtrail/lib/chain"
	"github.com/sealtrail/sealtrail/lib/keyring"
	"github.com/sealtrail/sealtrail/lib/verify"
)

type chainParams struct {
	cli.ConfigParams
	cli.JSONOutput
	Keyring string `json:"keyring" flag:"keyring,k" desc:"also verify signatures with this JSONC keyring"`
}

// chainRow is one message of the chain report. Signature is empty
// unless signatures were checked.
type chainRow struct {
	chain.Link
	Offset    int    `json:"offset"`
	Signature string `json:"signature,omitempty"`
}

// chainBreak describes the first broken link.
type chainBreak struct {
	Index    int       `json:"index"`
	Sender   uuid.UUID `json:"sender"`
	Previous int       `json:"previous"`
}

// chainResult is the --json output of the chain command.
type chainResult struct {
	Capture       string            `json:"capture"`
	Compression   string            `json:"compression"`
	Messages      []chainRow        `json:"messages"`
	Senders       map[uuid.UUID]int `json:"senders"`
	Break         *chainBreak       `json:"break,omitempty"`
	BadSignatures int               `json:"bad_signatures"`
}

// ChainCommand returns the "chain" command.
func ChainCommand() *cli.Command {
	var params chainParams

	return &cli.Command{
		Name:    "chain",
		Summary: "Check the hash chain of a capture file",
		Description: `Walk a capture file in order and check every chained message's link.

A chained message must carry the signature of its sender's previous
message as its chain link. The first message seen from a sender starts
its chain. The report lists every message with its fingerprint, stops at
the first broken link, and exits with status 1 on a break.

With --keyring, every message's signature is verified as well and any
bad signature also exits with status 1.`,
		Usage: "sealtrail chain [flags] <capture>",
		Examples: []cli.Example{
			{
				Description: "Check a zstd-compressed capture and its signatures",
				Command:     "sealtrail chain --keyring keys.jsonc capture.bin.zst",
			},
		},
		Params: func() any { return &params },
		Run: func(args []string) error {
			if len(args) != 1 {
				return cli.Validation("chain requires exactly one capture file argument")
			}
			logger := cli.NewCommandLogger().With("command", "chain")
			return runChain(args[0], &params, os.Stdout, logger)
		},
	}
}

func runChain(path string, params *chainParams, w io.Writer, logger *slog.Logger) error {
	cfg, err := params.LoadConfig()
	if err != nil {
		return err
	}

	var keys *keyring.Keyring
	if params.Keyring != "" {
		keys, err = loadKeyring(params.Keyring, cfg)
		if err != nil {
			return err
		}
	}

	records, compression, err := capture.Read(path, cli.DecoderFromConfig(cfg), cfg.Capture.MaxSize)
	if errors.Is(err, fs.ErrNotExist) {
		return cli.NotFound("%w", err)
	}
	if err != nil {
		logger.Error("capture unreadable", "capture", path, "error", err)
		return cli.Validation("%w", err)
	}

	report, chainErr := chain.Verify(capture.Messages(records))
	result := chainResult{
		Capture:     path,
		Compression: compression.String(),
		Messages:    make([]chainRow, len(report.Links)),
		Senders:     report.Senders,
	}
	for index, link := range report.Links {
		record := records[link.Index]
		row := chainRow{Link: link, Offset: record.Offset}
		if keys != nil {
			if err := verify.Message(record.Message, keys); err != nil {
				row.Signature = "bad"
				result.BadSignatures++
				logRecord(logger, "verification failed", record, "error", err)
			} else {
				row.Signature = "ok"
			}
		}
		result.Messages[index] = row
	}

	var breakErr *chain.BreakError
	if errors.As(chainErr, &breakErr) {
		result.Break = &chainBreak{Index: breakErr.Index, Sender: breakErr.Sender, Previous: breakErr.Previous}
		logRecord(logger, "chain broken", records[breakErr.Index], "previous", breakErr.Previous)
	} else if chainErr != nil {
		return cli.Internal("%w", chainErr)
	}
	logger.Info("chain checked",
		"capture", path,
		"messages", len(records),
		"senders", len(report.Senders),
		"broken", result.Break != nil,
	)

	if done, err := params.EmitJSON(w, result); done {
		if err != nil {
			return cli.Internal("%w", err)
		}
	} else if err := writeChainReport(w, result, chainErr); err != nil {
		return cli.Internal("%w", err)
	}

	if result.Break != nil || result.BadSignatures > 0 {
		return &cli.ExitError{Code: 1}
	}
	return nil
}

func writeChainReport(w io.Writer, result chainResult, chainErr error) error {
	writer := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(writer, "INDEX\tOFFSET\tSENDER\tKIND\tLINK\tSIGNATURE\tFINGERPRINT")
	for _, row := range result.Messages {
		signature := row.Signature
		if signature == "" {
			signature = "-"
		}
		fmt.Fprintf(writer, "%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
			row.Index, row.Offset, row.Sender, row.Kind, row.Status, signature, row.Digest)
	}
	if err := writer.Flush(); err != nil {
		return err
	}

	if chainErr != nil {
		_, err := fmt.Fprintf(w, "\n%v\n", chainErr)
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d messages from %d senders (%s): chain intact\n",
		len(result.Messages), len(result.Senders), result.Compression)
	return err
}
