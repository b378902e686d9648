// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

package verify

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"math/big"

	"github.com/sealtrail/sealtrail/lib/keyring"
	"github.com/sealtrail/sealtrail/lib/protocol"
)

var (
	// ErrBadSignature reports a signature that does not match the
	// signed data and key.
	ErrBadSignature = errors.New("signature does not verify")

	// ErrUnknownSender reports a message whose sender has no key in
	// the keyring.
	ErrUnknownSender = errors.New("unknown sender")
)

// Verifier checks a signature over signed data.
type Verifier interface {
	Verify(signedData, signature []byte) error
}

// Ed25519Verifier verifies Ed25519 signatures over the SHA-512 digest
// of the signed data.
type Ed25519Verifier struct {
	PublicKey ed25519.PublicKey
}

// Verify implements Verifier.
func (v Ed25519Verifier) Verify(signedData, signature []byte) error {
	if len(signature) != ed25519.SignatureSize {
		return fmt.Errorf("%w: ed25519 signature is %d bytes, want %d",
			ErrBadSignature, len(signature), ed25519.SignatureSize)
	}
	digest := sha512.Sum512(signedData)
	if !ed25519.Verify(v.PublicKey, digest[:], signature) {
		return ErrBadSignature
	}
	return nil
}

// ECDSAVerifier verifies P-256 signatures over the SHA-256 digest of
// the signed data. Signatures are r||s, each 32 bytes big-endian.
type ECDSAVerifier struct {
	PublicKey *ecdsa.PublicKey
}

const ecdsaSignatureSize = 64

// Verify implements Verifier.
func (v ECDSAVerifier) Verify(signedData, signature []byte) error {
	if len(signature) != ecdsaSignatureSize {
		return fmt.Errorf("%w: ecdsa signature is %d bytes, want %d",
			ErrBadSignature, len(signature), ecdsaSignatureSize)
	}
	r := new(big.Int).SetBytes(signature[:ecdsaSignatureSize/2])
	s := new(big.Int).SetBytes(signature[ecdsaSignatureSize/2:])
	digest := sha256.Sum256(signedData)
	if !ecdsa.Verify(v.PublicKey, digest[:], r, s) {
		return ErrBadSignature
	}
	return nil
}

// ForKey returns the verifier for a keyring entry.
func ForKey(key keyring.Key) (Verifier, error) {
	switch key.Algorithm {
	case keyring.Ed25519:
		publicKey, ok := key.PublicKey.(ed25519.PublicKey)
		if ok {
			return Ed25519Verifier{PublicKey: publicKey}, nil
		}
	case keyring.ECDSAP256:
		publicKey, ok := key.PublicKey.(*ecdsa.PublicKey)
		if ok {
			return ECDSAVerifier{PublicKey: publicKey}, nil
		}
	default:
		return nil, fmt.Errorf("unsupported algorithm %q", key.Algorithm)
	}
	return nil, fmt.Errorf("%T is not a valid %q key", key.PublicKey, key.Algorithm)
}

// Message verifies msg's signature with the key its sender has in
// keys. The returned error wraps ErrUnknownSender or ErrBadSignature
// when verification fails for those reasons.
func Message(msg *protocol.ProtocolMessage, keys *keyring.Keyring) error {
	key, ok := keys.Lookup(msg.SenderID)
	if !ok {
		return fmt.Errorf("sender %s: %w", msg.SenderID, ErrUnknownSender)
	}
	verifier, err := ForKey(key)
	if err != nil {
		return fmt.Errorf("sender %s: %w", msg.SenderID, err)
	}
	if err := verifier.Verify(msg.SignedData, msg.Signature); err != nil {
		return fmt.Errorf("sender %s: %w", msg.SenderID, err)
	}
	return nil
}
