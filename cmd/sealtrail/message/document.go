// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

package message

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/sealtrail/sealtrail/lib/binhash"
	"github.com/sealtrail/sealtrail/lib/capture"
	"github.com/sealtrail/sealtrail/lib/codec"
	"github.com/sealtrail/sealtrail/lib/protocol"
)

// Output formats accepted by --format.
const (
	formatJSON = "json"
	formatYAML = "yaml"
	formatCBOR = "cbor"
)

var formats = []string{formatJSON, formatYAML, formatCBOR}

// document is the rendered form of a decoded message. The cbor
// encoder falls back to the json tags.
type document struct {
	Offset      int     `json:"offset"               yaml:"offset"`
	Version     int64   `json:"version"              yaml:"version"`
	Kind        string  `json:"kind"                 yaml:"kind"`
	Sender      string  `json:"sender"               yaml:"sender"`
	ChainLink   *string `json:"chain_link,omitempty" yaml:"chain_link,omitempty"`
	Hint        int64   `json:"hint"                 yaml:"hint"`
	Payload     any     `json:"payload"              yaml:"payload"`
	Signature   string  `json:"signature"            yaml:"signature"`
	Fingerprint string  `json:"fingerprint"          yaml:"fingerprint"`
}

// newDocument renders record for the given output format. Binary
// payload values become hex text in JSON and YAML and stay byte
// strings in CBOR.
func newDocument(record capture.Record, format string) document {
	msg := record.Message
	doc := document{
		Offset:      record.Offset,
		Version:     msg.Version,
		Kind:        msg.Kind().String(),
		Sender:      msg.SenderID.String(),
		Hint:        msg.Hint,
		Signature:   hex.EncodeToString(msg.Signature),
		Fingerprint: binhash.Fingerprint(msg.SignedData).String(),
	}
	if msg.HasChainLink() {
		link := hex.EncodeToString(msg.ChainLink)
		doc.ChainLink = &link
	}
	if format == formatCBOR {
		doc.Payload = protocol.Interface(msg.Payload)
	} else {
		doc.Payload = textValue(msg.Payload)
	}
	return doc
}

// textValue converts a payload value to plain Go values with binary
// data as hex strings.
func textValue(value protocol.Value) any {
	switch v := value.(type) {
	case protocol.Bytes:
		return hex.EncodeToString(v)
	case protocol.Opaque:
		return hex.EncodeToString(v)
	case protocol.List:
		list := make([]any, len(v))
		for index, element := range v {
			list[index] = textValue(element)
		}
		return list
	case protocol.Map:
		fields := make(map[string]any, len(v))
		for key, element := range v {
			fields[key] = textValue(element)
		}
		return fields
	default:
		return protocol.Interface(value)
	}
}

// readRecords decodes data as a single message, or with sequence set
// as a possibly compressed capture of messages.
func readRecords(data []byte, decoder protocol.Decoder, sequence bool, maxSize int64) ([]capture.Record, error) {
	if !sequence {
		msg, err := decoder.Decode(data)
		if err != nil {
			return nil, err
		}
		return []capture.Record{{Raw: data, Message: msg}}, nil
	}

	plain, _, err := capture.Open(data, maxSize)
	if err != nil {
		return nil, err
	}
	return capture.Split(decoder, plain)
}

// logRecord logs the identifying attributes of a decoded message.
func logRecord(logger *slog.Logger, text string, record capture.Record, attrs ...any) {
	msg := record.Message
	logger.Info(text, append([]any{
		"sender", msg.SenderID.String(),
		"kind", msg.Kind().String(),
		"hint", msg.Hint,
		"offset", record.Offset,
	}, attrs...)...)
}

// render writes value in the chosen format. Sequences are written as a
// JSON or YAML list, or as a CBOR sequence of items.
func render(w io.Writer, format string, compact bool, documents []document, sequence bool) error {
	switch format {
	case formatJSON:
		var value any = documents
		if !sequence {
			value = documents[0]
		}
		var output []byte
		var err error
		if compact {
			output, err = json.Marshal(value)
		} else {
			output, err = json.MarshalIndent(value, "", "  ")
		}
		if err != nil {
			return fmt.Errorf("encode JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(output))
		return err

	case formatYAML:
		var value any = documents
		if !sequence {
			value = documents[0]
		}
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(value); err != nil {
			return fmt.Errorf("encode YAML: %w", err)
		}
		return encoder.Close()

	case formatCBOR:
		encoder := codec.NewEncoder(w)
		for _, doc := range documents {
			if err := encoder.Encode(doc); err != nil {
				return fmt.Errorf("encode CBOR: %w", err)
			}
		}
		return nil

	default:
		return fmt.Errorf("unknown format %q (want one of %q)", format, formats)
	}
}

// validFormat reports whether format is a supported --format value.
func validFormat(format string) bool {
	return slices.Contains(formats, format)
}
