// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

package capture

import (
	"fmt"
	"os"

	"github.com/sealtrail/sealtrail/lib/protocol"
)

// Record is one envelope found in a capture.
type Record struct {
	Index int

	// Offset is the envelope's start within the decompressed capture.
	Offset int

	// Raw is the envelope's bytes, aliasing the capture buffer.
	Raw []byte

	Message *protocol.ProtocolMessage
}

// Split decodes every envelope in data in order. An empty capture
// yields no records. A decode failure stops the walk and is returned
// wrapped with the failing record's index and starting offset; offsets
// inside the wrapped *protocol.DecodeError are relative to that start.
func Split(decoder protocol.Decoder, data []byte) ([]Record, error) {
	var records []Record
	offset := 0
	for offset < len(data) {
		msg, rest, err := decoder.DecodeFirst(data[offset:])
		if err != nil {
			return records, fmt.Errorf("record %d at offset %d: %w", len(records), offset, err)
		}
		consumed := len(data) - offset - len(rest)
		records = append(records, Record{
			Index:   len(records),
			Offset:  offset,
			Raw:     data[offset : offset+consumed : offset+consumed],
			Message: msg,
		})
		offset += consumed
	}
	return records, nil
}

// Messages returns the decoded messages of records in order.
func Messages(records []Record) []*protocol.ProtocolMessage {
	messages := make([]*protocol.ProtocolMessage, len(records))
	for index, record := range records {
		messages[index] = record.Message
	}
	return messages
}

// Read loads the capture file at path, decompresses it, and splits it
// into records.
func Read(path string, decoder protocol.Decoder, maxSize int64) ([]Record, Compression, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, CompressionNone, fmt.Errorf("reading capture: %w", err)
	}
	plain, compression, err := Open(data, maxSize)
	if err != nil {
		return nil, compression, fmt.Errorf("%s: %w", path, err)
	}
	records, err := Split(decoder, plain)
	if err != nil {
		return records, compression, fmt.Errorf("%s: %w", path, err)
	}
	return records, compression, nil
}
