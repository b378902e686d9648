// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

package binhash

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// Hash is a 32-byte BLAKE3 digest.
type Hash [32]byte

// fingerprintKey is the BLAKE3 domain key. Changing it changes every
// fingerprint. The bytes are the ASCII domain name, zero-padded.
var fingerprintKey = [32]byte{
	's', 'e', 'a', 'l', 't', 'r', 'a', 'i', 'l', '.', 'm', 'e', 's', 's', 'a', 'g',
	'e', '.', 'v', '1', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

func newHasher() *blake3.Hasher {
	hasher, err := blake3.NewKeyed(fingerprintKey[:])
	if err != nil {
		panic("binhash: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	return hasher
}

// Fingerprint returns the keyed BLAKE3 digest of data.
func Fingerprint(data []byte) Hash {
	hasher := newHasher()
	hasher.Write(data)
	var digest Hash
	copy(digest[:], hasher.Sum(nil))
	return digest
}

// HashFile computes the fingerprint of the file at path. The file is
// streamed through the hash function in chunks (via io.Copy) to keep
// memory usage constant regardless of file size.
func HashFile(path string) (Hash, error) {
	file, err := os.Open(path)
	if err != nil {
		return Hash{}, fmt.Errorf("opening %s for hashing: %w", path, err)
	}
	defer file.Close()

	hasher := newHasher()
	if _, err := io.Copy(hasher, file); err != nil {
		return Hash{}, fmt.Errorf("hashing %s: %w", path, err)
	}

	var digest Hash
	copy(digest[:], hasher.Sum(nil))
	return digest, nil
}

// FormatDigest returns the hex-encoded string representation of a
// digest. This is the canonical format used in CLI output and logs.
func FormatDigest(digest Hash) string {
	return hex.EncodeToString(digest[:])
}

// String implements fmt.Stringer using [FormatDigest].
func (h Hash) String() string {
	return FormatDigest(h)
}

// ParseDigest parses a hex-encoded digest string into a Hash. Returns
// an error if the string is not a valid 64-character hex encoding of
// 32 bytes.
func ParseDigest(hexString string) (Hash, error) {
	var digest Hash
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return digest, fmt.Errorf("parsing digest: %w", err)
	}
	if len(decoded) != len(digest) {
		return digest, fmt.Errorf("digest is %d bytes, want %d", len(decoded), len(digest))
	}
	copy(digest[:], decoded)
	return digest, nil
}
