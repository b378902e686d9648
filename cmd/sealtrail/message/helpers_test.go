// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

package message

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha512"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"github.com/sealtrail/sealtrail/cmd/sealtrail/cli"
	"github.com/sealtrail/sealtrail/lib/config"
	"github.com/sealtrail/sealtrail/lib/protocol"
	"github.com/sealtrail/sealtrail/lib/testutil"
)

// device is a test sender with an Ed25519 key that signs envelopes the
// way the verifier expects.
type device struct {
	sender     uuid.UUID
	publicKey  ed25519.PublicKey
	privateKey ed25519.PrivateKey
	previous   []byte
}

func newDevice(t *testing.T) *device {
	t.Helper()
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generating ed25519 key: %v", err)
	}
	return &device{sender: testutil.UniqueSender(), publicKey: publicKey, privateKey: privateKey}
}

func (d *device) sign(signed []byte) []byte {
	digest := sha512.Sum512(signed)
	return ed25519.Sign(d.privateKey, digest[:])
}

// send encodes the device's next message: SIGNED for the first call,
// CHAINED to the previous signature after that.
func (d *device) send(t *testing.T, hint int64, payload any) []byte {
	t.Helper()
	envelope := testutil.Envelope{
		Version: protocol.VersionSigned,
		Sender:  d.sender,
		Hint:    hint,
		Payload: testutil.EncodeValue(t, payload),
		Sign:    d.sign,
	}
	if d.previous != nil {
		envelope.Version = protocol.VersionChained
		envelope.ChainLink = d.previous
	}
	raw := envelope.Bytes()
	msg, err := protocol.Decode(raw)
	if err != nil {
		t.Fatalf("decoding test envelope: %v", err)
	}
	d.previous = msg.Signature
	return raw
}

// keyringFile writes a JSONC keyring registering devices.
func keyringFile(t *testing.T, devices ...*device) string {
	t.Helper()
	content := "{\n  // test devices\n  \"keys\": [\n"
	for _, d := range devices {
		content += fmt.Sprintf("    {\"sender\": %q, \"algorithm\": \"ed25519\", \"public_key\": %q},\n",
			d.sender, base64.StdEncoding.EncodeToString(d.publicKey))
	}
	content += "  ],\n}\n"
	return testutil.WriteFile(t, "keys.jsonc", []byte(content))
}

// useDefaultConfig isolates a test from any SEALTRAIL_CONFIG in the
// environment.
func useDefaultConfig(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvironmentVariable, "")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// requireCategory fails the test unless err is a *cli.ToolError of the
// given category.
func requireCategory(t *testing.T, err error, category cli.ErrorCategory) *cli.ToolError {
	t.Helper()
	var toolErr *cli.ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("error = %v (%T), want *cli.ToolError", err, err)
	}
	if toolErr.Category != category {
		t.Fatalf("category = %q, want %q (error: %v)", toolErr.Category, category, err)
	}
	return toolErr
}

// requireExitCode fails the test unless err is a *cli.ExitError with
// the given code.
func requireExitCode(t *testing.T, err error, code int) {
	t.Helper()
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error = %v (%T), want *cli.ExitError", err, err)
	}
	if exitErr.Code != code {
		t.Fatalf("exit code = %d, want %d", exitErr.Code, code)
	}
}
