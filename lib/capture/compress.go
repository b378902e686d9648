// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

package capture

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the whole-file compression of a capture.
type Compression uint8

const (
	// CompressionNone is a plain concatenation of envelopes.
	CompressionNone Compression = 0

	// CompressionLZ4 is a single LZ4 frame. Fast to write on
	// constrained gateways.
	CompressionLZ4 Compression = 1

	// CompressionZstd is a zstd stream at the default level.
	CompressionZstd Compression = 2
)

// DefaultMaxSize bounds the decompressed size of a capture.
const DefaultMaxSize = 64 << 20

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// String returns the human-readable name of a compression.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", c)
	}
}

// ParseCompression parses a compression from its string
// representation.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression: %q", name)
	}
}

// Detect classifies data by its leading frame magic. A MessagePack
// envelope starts with a fixarray or array16/32 header, none of which
// collide with either magic.
func Detect(data []byte) Compression {
	switch {
	case bytes.HasPrefix(data, zstdMagic):
		return CompressionZstd
	case bytes.HasPrefix(data, lz4Magic):
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// Compress encodes data with the given compression. For
// CompressionNone it returns data unchanged (no copy).
func Compress(data []byte, compression Compression) ([]byte, error) {
	switch compression {
	case CompressionNone:
		return data, nil

	case CompressionZstd:
		encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("zstd compress: %w", err)
		}
		defer encoder.Close()
		return encoder.EncodeAll(data, nil), nil

	case CompressionLZ4:
		var buffer bytes.Buffer
		writer := lz4.NewWriter(&buffer)
		if _, err := writer.Write(data); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("lz4 compress: %w", err)
		}
		return buffer.Bytes(), nil

	default:
		return nil, fmt.Errorf("unsupported compression: %d", compression)
	}
}

// Open detects the compression of data and returns the decompressed
// capture. Output larger than maxSize bytes is an error; maxSize <= 0
// selects DefaultMaxSize. Uncompressed input is returned unchanged
// and is not subject to the limit.
func Open(data []byte, maxSize int64) ([]byte, Compression, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	compression := Detect(data)
	switch compression {
	case CompressionZstd:
		decoder, err := zstd.NewReader(bytes.NewReader(data),
			zstd.WithDecoderMaxMemory(uint64(maxSize)+1))
		if err != nil {
			return nil, compression, fmt.Errorf("zstd decompress: %w", err)
		}
		defer decoder.Close()
		plain, err := readLimited(decoder, maxSize)
		if err != nil {
			return nil, compression, fmt.Errorf("zstd decompress: %w", err)
		}
		return plain, compression, nil

	case CompressionLZ4:
		plain, err := readLimited(lz4.NewReader(bytes.NewReader(data)), maxSize)
		if err != nil {
			return nil, compression, fmt.Errorf("lz4 decompress: %w", err)
		}
		return plain, compression, nil
	}
	return data, CompressionNone, nil
}

func readLimited(reader io.Reader, maxSize int64) ([]byte, error) {
	plain, err := io.ReadAll(io.LimitReader(reader, maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(plain)) > maxSize {
		return nil, fmt.Errorf("decompressed capture exceeds %d bytes", maxSize)
	}
	return plain, nil
}
