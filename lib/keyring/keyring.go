// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

package keyring

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/jsonc"
)

// Algorithm names a signature scheme.
type Algorithm string

const (
	// Ed25519 signs the SHA-512 digest of the signed data.
	Ed25519 Algorithm = "ed25519"

	// ECDSAP256 signs the SHA-256 digest of the signed data on NIST
	// P-256, with a 64-byte r||s signature.
	ECDSAP256 Algorithm = "ecdsa-p256"
)

// Key is one sender's public key.
type Key struct {
	Sender    uuid.UUID
	Algorithm Algorithm

	// PublicKey is an ed25519.PublicKey or *ecdsa.PublicKey matching
	// Algorithm.
	PublicKey crypto.PublicKey
}

// Keyring is an immutable set of sender keys. It is safe for
// concurrent use.
type Keyring struct {
	keys map[uuid.UUID]Key
}

// New builds a keyring from keys. It fails if a sender appears twice
// or a key does not match its algorithm.
func New(keys ...Key) (*Keyring, error) {
	keyring := &Keyring{keys: make(map[uuid.UUID]Key, len(keys))}
	for _, key := range keys {
		if err := checkKeyType(key); err != nil {
			return nil, fmt.Errorf("sender %s: %w", key.Sender, err)
		}
		if _, exists := keyring.keys[key.Sender]; exists {
			return nil, fmt.Errorf("sender %s listed more than once", key.Sender)
		}
		keyring.keys[key.Sender] = key
	}
	return keyring, nil
}

// Lookup returns the key registered for sender.
func (k *Keyring) Lookup(sender uuid.UUID) (Key, bool) {
	key, ok := k.keys[sender]
	return key, ok
}

// Len returns the number of registered senders.
func (k *Keyring) Len() int {
	return len(k.keys)
}

// file is the on-disk keyring layout.
type file struct {
	Keys []fileEntry `json:"keys"`
}

type fileEntry struct {
	Sender    string    `json:"sender"`
	Algorithm Algorithm `json:"algorithm"`
	PublicKey string    `json:"public_key"`
}

// Load reads and parses the keyring file at path.
func Load(path string) (*Keyring, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading keyring: %w", err)
	}
	keyring, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return keyring, nil
}

// Parse parses keyring JSONC content.
func Parse(data []byte) (*Keyring, error) {
	var content file
	if err := json.Unmarshal(jsonc.ToJSON(data), &content); err != nil {
		return nil, fmt.Errorf("parsing keyring: %w", err)
	}

	keys := make([]Key, 0, len(content.Keys))
	for index, entry := range content.Keys {
		key, err := entry.key()
		if err != nil {
			return nil, fmt.Errorf("keys[%d]: %w", index, err)
		}
		keys = append(keys, key)
	}
	return New(keys...)
}

func (e fileEntry) key() (Key, error) {
	sender, err := uuid.Parse(e.Sender)
	if err != nil {
		return Key{}, fmt.Errorf("sender %q: %w", e.Sender, err)
	}
	publicKey, err := ParsePublicKey(e.Algorithm, e.PublicKey)
	if err != nil {
		return Key{}, fmt.Errorf("sender %s: %w", sender, err)
	}
	return Key{Sender: sender, Algorithm: e.Algorithm, PublicKey: publicKey}, nil
}

// ParsePublicKey decodes a base64 raw key or a PEM PUBLIC KEY block
// for algorithm.
func ParsePublicKey(algorithm Algorithm, encoded string) (crypto.PublicKey, error) {
	encoded = strings.TrimSpace(encoded)
	if strings.HasPrefix(encoded, "-----BEGIN") {
		block, _ := pem.Decode([]byte(encoded))
		if block == nil || block.Type != "PUBLIC KEY" {
			return nil, fmt.Errorf("public_key: expected a PEM PUBLIC KEY block")
		}
		publicKey, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("public_key: %w", err)
		}
		if err := checkKeyType(Key{Algorithm: algorithm, PublicKey: publicKey}); err != nil {
			return nil, err
		}
		return publicKey, nil
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("public_key: %w", err)
	}

	switch algorithm {
	case Ed25519:
		if len(raw) != ed25519.PublicKeySize {
			return nil, fmt.Errorf("public_key: ed25519 key is %d bytes, want %d", len(raw), ed25519.PublicKeySize)
		}
		return ed25519.PublicKey(raw), nil
	case ECDSAP256:
		// Devices commonly send the bare X||Y coordinates without the
		// uncompressed-point prefix.
		if len(raw) == 64 {
			raw = append([]byte{0x04}, raw...)
		}
		publicKey, err := ecdsa.ParseUncompressedPublicKey(elliptic.P256(), raw)
		if err != nil {
			return nil, fmt.Errorf("public_key: %w", err)
		}
		return publicKey, nil
	}
	return nil, fmt.Errorf("unknown algorithm %q", algorithm)
}

func checkKeyType(key Key) error {
	switch publicKey := key.PublicKey.(type) {
	case ed25519.PublicKey:
		if key.Algorithm == Ed25519 {
			return nil
		}
	case *ecdsa.PublicKey:
		if key.Algorithm == ECDSAP256 && publicKey.Curve == elliptic.P256() {
			return nil
		}
	}
	return fmt.Errorf("%T is not a valid %q key", key.PublicKey, key.Algorithm)
}
