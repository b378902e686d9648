// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

package message

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/sealtrail/sealtrail/cmd/sealtrail/cli"
	"github.com/sealtrail/sealtrail/lib/binhash"
	"github.com/sealtrail/sealtrail/lib/capture"
	"github.com/sealtrail/sealtrail/lib/codec"
	"github.com/sealtrail/sealtrail/lib/protocol"
)

func TestDecodeJSON(t *testing.T) {
	useDefaultConfig(t)
	sensor := newDevice(t)
	sensor.send(t, 0, nil)
	raw := sensor.send(t, 0xEE, map[string]any{"temperature": int64(21), "raw": []byte{0xde, 0xad}})
	msg, err := protocol.Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	var output bytes.Buffer
	params := &decodeParams{Format: formatJSON}
	if err := runDecode(raw, params, &output, discardLogger()); err != nil {
		t.Fatalf("runDecode: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(output.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, output.String())
	}
	want := map[string]any{
		"offset":      float64(0),
		"version":     float64(0x23),
		"kind":        "chained",
		"sender":      sensor.sender.String(),
		"chain_link":  hex.EncodeToString(msg.ChainLink),
		"hint":        float64(0xEE),
		"signature":   hex.EncodeToString(msg.Signature),
		"fingerprint": binhash.Fingerprint(msg.SignedData).String(),
	}
	for key, value := range want {
		if got[key] != value {
			t.Errorf("%s = %v, want %v", key, got[key], value)
		}
	}
	payload, ok := got["payload"].(map[string]any)
	if !ok {
		t.Fatalf("payload = %T, want object", got["payload"])
	}
	if payload["temperature"] != float64(21) || payload["raw"] != "dead" {
		t.Errorf("payload = %v", payload)
	}
}

func TestDecodeSignedOmitsChainLink(t *testing.T) {
	useDefaultConfig(t)
	raw := newDevice(t).send(t, 1, "hello")

	var output bytes.Buffer
	if err := runDecode(raw, &decodeParams{Format: formatJSON, Compact: true}, &output, discardLogger()); err != nil {
		t.Fatalf("runDecode: %v", err)
	}
	if strings.Contains(output.String(), "chain_link") {
		t.Errorf("signed message rendered a chain link: %s", output.String())
	}
	if strings.Count(output.String(), "\n") != 1 {
		t.Errorf("compact output spans several lines: %q", output.String())
	}
}

func TestDecodeYAML(t *testing.T) {
	useDefaultConfig(t)
	sensor := newDevice(t)
	raw := sensor.send(t, 7, []any{int64(1), "two"})

	var output bytes.Buffer
	if err := runDecode(raw, &decodeParams{Format: formatYAML}, &output, discardLogger()); err != nil {
		t.Fatalf("runDecode: %v", err)
	}

	var got struct {
		Kind    string `yaml:"kind"`
		Sender  string `yaml:"sender"`
		Hint    int64  `yaml:"hint"`
		Payload []any  `yaml:"payload"`
	}
	if err := yaml.Unmarshal(output.Bytes(), &got); err != nil {
		t.Fatalf("output is not YAML: %v\n%s", err, output.String())
	}
	if got.Kind != "signed" || got.Sender != sensor.sender.String() || got.Hint != 7 {
		t.Errorf("decoded YAML = %+v", got)
	}
	if len(got.Payload) != 2 || got.Payload[1] != "two" {
		t.Errorf("payload = %v", got.Payload)
	}
}

func TestDecodeCBORKeepsBinaryPayload(t *testing.T) {
	useDefaultConfig(t)
	raw := newDevice(t).send(t, 0, []byte{0x01, 0x02})

	var output bytes.Buffer
	if err := runDecode(raw, &decodeParams{Format: formatCBOR}, &output, discardLogger()); err != nil {
		t.Fatalf("runDecode: %v", err)
	}

	var got map[string]any
	if err := codec.Unmarshal(output.Bytes(), &got); err != nil {
		t.Fatalf("output is not CBOR: %v", err)
	}
	if payload, ok := got["payload"].([]byte); !ok || !bytes.Equal(payload, []byte{0x01, 0x02}) {
		t.Errorf("payload = %#v, want byte string 0102", got["payload"])
	}
}

func TestDecodeSequence(t *testing.T) {
	useDefaultConfig(t)
	first, second := newDevice(t), newDevice(t)
	var plain []byte
	plain = append(plain, first.send(t, 0, nil)...)
	offset := len(plain)
	plain = append(plain, second.send(t, 0, nil)...)
	plain = append(plain, first.send(t, 0, nil)...)

	packed, err := capture.Compress(plain, capture.CompressionZstd)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}

	var output bytes.Buffer
	if err := runDecode(packed, &decodeParams{Format: formatJSON, Sequence: true}, &output, discardLogger()); err != nil {
		t.Fatalf("runDecode: %v", err)
	}

	var got []document
	if err := json.Unmarshal(output.Bytes(), &got); err != nil {
		t.Fatalf("output is not a JSON list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("decoded %d documents, want 3", len(got))
	}
	if got[1].Offset != offset || got[1].Sender != second.sender.String() {
		t.Errorf("second document = %+v, want offset %d from %s", got[1], offset, second.sender)
	}
	if got[2].Kind != "chained" || got[2].ChainLink == nil {
		t.Errorf("third document = %+v, want chained", got[2])
	}
}

func TestDecodeErrors(t *testing.T) {
	useDefaultConfig(t)
	raw := newDevice(t).send(t, 0, nil)

	tests := []struct {
		name     string
		data     []byte
		params   decodeParams
		sentinel error
	}{
		{"truncated", raw[:len(raw)-3], decodeParams{Format: formatJSON}, protocol.ErrCorruptStream},
		{"trailing bytes", append(bytes.Clone(raw), 0xc0), decodeParams{Format: formatJSON}, protocol.ErrMalformedEnvelope},
		{"not an envelope", []byte{0x81, 0xa1, 'k', 0x01}, decodeParams{Format: formatJSON}, protocol.ErrMalformedEnvelope},
		{"unknown format", raw, decodeParams{Format: "xml"}, nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := runDecode(test.data, &test.params, &bytes.Buffer{}, discardLogger())
			requireCategory(t, err, cli.CategoryValidation)
			if test.sentinel != nil && !errors.Is(err, test.sentinel) {
				t.Errorf("error = %v, want %v in chain", err, test.sentinel)
			}
		})
	}
}

func TestDecodeAllowTrailing(t *testing.T) {
	useDefaultConfig(t)
	raw := append(newDevice(t).send(t, 0, nil), 0xc0)

	params := &decodeParams{Format: formatJSON, AllowTrailing: true}
	if err := runDecode(raw, params, &bytes.Buffer{}, discardLogger()); err != nil {
		t.Fatalf("runDecode with --allow-trailing: %v", err)
	}
}
