// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

package verify

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/sealtrail/sealtrail/lib/keyring"
	"github.com/sealtrail/sealtrail/lib/protocol"
	"github.com/sealtrail/sealtrail/lib/testutil"
)

func ed25519Signer(t *testing.T) (ed25519.PublicKey, func([]byte) []byte) {
	t.Helper()
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generating ed25519 key: %v", err)
	}
	return publicKey, func(signed []byte) []byte {
		digest := sha512.Sum512(signed)
		return ed25519.Sign(privateKey, digest[:])
	}
}

func ecdsaSigner(t *testing.T) (*ecdsa.PublicKey, func([]byte) []byte) {
	t.Helper()
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generating ecdsa key: %v", err)
	}
	return &privateKey.PublicKey, func(signed []byte) []byte {
		digest := sha256.Sum256(signed)
		r, s, err := ecdsa.Sign(rand.Reader, privateKey, digest[:])
		if err != nil {
			t.Fatalf("signing: %v", err)
		}
		signature := make([]byte, 64)
		r.FillBytes(signature[:32])
		s.FillBytes(signature[32:])
		return signature
	}
}

func decode(t *testing.T, envelope testutil.Envelope) *protocol.ProtocolMessage {
	t.Helper()
	msg, err := protocol.Decode(envelope.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return msg
}

func TestMessage(t *testing.T) {
	edSender, ecSender := testutil.UniqueSender(), testutil.UniqueSender()
	edKey, edSign := ed25519Signer(t)
	ecKey, ecSign := ecdsaSigner(t)

	keys, err := keyring.New(
		keyring.Key{Sender: edSender, Algorithm: keyring.Ed25519, PublicKey: edKey},
		keyring.Key{Sender: ecSender, Algorithm: keyring.ECDSAP256, PublicKey: ecKey},
	)
	if err != nil {
		t.Fatalf("keyring.New: %v", err)
	}

	payload := testutil.EncodeValue(t, map[string]any{"t": 21})

	tests := []struct {
		name     string
		envelope testutil.Envelope
		want     error
	}{
		{
			name: "ed25519 signed",
			envelope: testutil.Envelope{
				Version: protocol.VersionSigned, Sender: edSender, Hint: 0xEE,
				Payload: payload, Sign: edSign,
			},
		},
		{
			name: "ed25519 chained",
			envelope: testutil.Envelope{
				Version: protocol.VersionChained, Sender: edSender, Hint: 0x00,
				ChainLink: make([]byte, 64), Payload: payload, Sign: edSign,
			},
		},
		{
			name: "ecdsa signed",
			envelope: testutil.Envelope{
				Version: protocol.VersionSigned, Sender: ecSender,
				Payload: payload, Sign: ecSign,
			},
		},
		{
			name: "signature from another key",
			envelope: testutil.Envelope{
				Version: protocol.VersionSigned, Sender: ecSender,
				Payload: payload, Sign: edSign,
			},
			want: ErrBadSignature,
		},
		{
			name: "zero signature",
			envelope: testutil.Envelope{
				Version: protocol.VersionSigned, Sender: edSender,
				Payload: payload, Signature: make([]byte, 64),
			},
			want: ErrBadSignature,
		},
		{
			name: "truncated signature",
			envelope: testutil.Envelope{
				Version: protocol.VersionSigned, Sender: edSender,
				Payload: payload, Signature: []byte{1, 2, 3},
			},
			want: ErrBadSignature,
		},
		{
			name: "unregistered sender",
			envelope: testutil.Envelope{
				Version: protocol.VersionSigned, Sender: uuid.New(),
				Payload: payload, Sign: edSign,
			},
			want: ErrUnknownSender,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := Message(decode(t, test.envelope), keys)
			if test.want == nil {
				if err != nil {
					t.Fatalf("Message: %v", err)
				}
				return
			}
			if !errors.Is(err, test.want) {
				t.Fatalf("Message error = %v, want %v", err, test.want)
			}
		})
	}
}

func TestTamperedSignedData(t *testing.T) {
	sender := testutil.UniqueSender()
	publicKey, sign := ed25519Signer(t)
	keys, err := keyring.New(keyring.Key{Sender: sender, Algorithm: keyring.Ed25519, PublicKey: publicKey})
	if err != nil {
		t.Fatalf("keyring.New: %v", err)
	}

	msg := decode(t, testutil.Envelope{
		Version: protocol.VersionSigned, Sender: sender, Hint: 1,
		Payload: testutil.EncodeValue(t, "reading"), Sign: sign,
	})
	if err := Message(msg, keys); err != nil {
		t.Fatalf("Message before tampering: %v", err)
	}

	msg.SignedData[len(msg.SignedData)-1] ^= 0x01
	if err := Message(msg, keys); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("Message after tampering = %v, want ErrBadSignature", err)
	}
}

func TestForKey(t *testing.T) {
	edKey, _ := ed25519Signer(t)
	if _, err := ForKey(keyring.Key{Algorithm: keyring.ECDSAP256, PublicKey: edKey}); err == nil {
		t.Error("ForKey accepted an ed25519 key labelled ecdsa-p256")
	}
	if _, err := ForKey(keyring.Key{Algorithm: "rsa", PublicKey: edKey}); err == nil {
		t.Error("ForKey accepted an unknown algorithm")
	}
	verifier, err := ForKey(keyring.Key{Algorithm: keyring.Ed25519, PublicKey: edKey})
	if err != nil {
		t.Fatalf("ForKey: %v", err)
	}
	if _, ok := verifier.(Ed25519Verifier); !ok {
		t.Errorf("ForKey returned %T, want Ed25519Verifier", verifier)
	}
}
