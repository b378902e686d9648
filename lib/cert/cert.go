// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

package cert

import (
	"crypto"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/sealtrail/sealtrail/lib/clock"
)

const (
	// ValidityUnit is the length of one unit of certificate validity.
	ValidityUnit = 86_500 * time.Second

	// backdate shifts NotBefore into the past.
	backdate = 50 * time.Second
)

// Authority issues certificates under a fixed issuer name.
type Authority struct {
	Country      string
	Organization string
	Locality     string
	State        string

	// Issuer is the issuer common name.
	Issuer string

	// Clock stamps validity windows. Nil uses the real clock.
	Clock clock.Clock
}

// DefaultAuthority returns the test authority's attributes.
func DefaultAuthority() Authority {
	return Authority{
		Country:      "Germany",
		Organization: "ubirch Test GmbH",
		Locality:     "Berlin",
		State:        "Berlin",
		Issuer:       "ubirch GmbH Test CA",
	}
}

// Request describes one certificate to issue.
type Request struct {
	// Signer signs the certificate.
	Signer crypto.Signer

	// PublicKey is the subject key the certificate binds.
	PublicKey crypto.PublicKey

	// Validity is the lifetime in ValidityUnit units. Must be positive.
	Validity int

	// SignatureAlgorithm is a name accepted by ParseSignatureAlgorithm.
	// Empty selects the algorithm matching Signer.
	SignatureAlgorithm string

	// SelfSigned requests verification of the certificate against its
	// own public key.
	SelfSigned bool

	CommonName string
}

// Issue creates, signs, and checks a certificate.
func (a Authority) Issue(request Request) (*x509.Certificate, error) {
	if request.Signer == nil {
		return nil, errors.New("issuing certificate: signer is required")
	}
	if request.PublicKey == nil {
		return nil, errors.New("issuing certificate: public key is required")
	}
	if request.Validity <= 0 {
		return nil, fmt.Errorf("issuing certificate: validity must be positive, got %d", request.Validity)
	}
	algorithm, err := ParseSignatureAlgorithm(request.SignatureAlgorithm)
	if err != nil {
		return nil, fmt.Errorf("issuing certificate: %w", err)
	}

	source := a.Clock
	if source == nil {
		source = clock.Real()
	}
	now := source.Now()

	template := &x509.Certificate{
		SerialNumber:       big.NewInt(1),
		Subject:            a.subject(request.CommonName),
		NotBefore:          now.Add(-backdate),
		NotAfter:           now.Add(time.Duration(request.Validity) * ValidityUnit),
		SignatureAlgorithm: algorithm,
		KeyUsage:           x509.KeyUsageDigitalSignature,
	}
	issuer := &x509.Certificate{
		Subject: pkix.Name{CommonName: a.Issuer},
	}

	der, err := x509.CreateCertificate(rand.Reader, template, issuer, request.PublicKey, request.Signer)
	if err != nil {
		return nil, fmt.Errorf("issuing certificate: %w", err)
	}
	certificate, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, fmt.Errorf("parsing issued certificate: %w", err)
	}

	if now.Before(certificate.NotBefore) || now.After(certificate.NotAfter) {
		return nil, fmt.Errorf("issued certificate is not valid at %s", now.UTC().Format(time.RFC3339))
	}
	if request.SelfSigned {
		if err := certificate.CheckSignature(certificate.SignatureAlgorithm,
			certificate.RawTBSCertificate, certificate.Signature); err != nil {
			return nil, fmt.Errorf("verifying self-signed certificate: %w", err)
		}
	}
	return certificate, nil
}

func (a Authority) subject(commonName string) pkix.Name {
	name := pkix.Name{CommonName: commonName}
	if a.Country != "" {
		name.Country = []string{a.Country}
	}
	if a.Organization != "" {
		name.Organization = []string{a.Organization}
	}
	if a.Locality != "" {
		name.Locality = []string{a.Locality}
	}
	if a.State != "" {
		name.Province = []string{a.State}
	}
	return name
}

var signatureAlgorithms = map[string]x509.SignatureAlgorithm{
	"":                x509.UnknownSignatureAlgorithm,
	"Ed25519":         x509.PureEd25519,
	"SHA256withECDSA": x509.ECDSAWithSHA256,
	"SHA384withECDSA": x509.ECDSAWithSHA384,
	"SHA512withECDSA": x509.ECDSAWithSHA512,
}

// ParseSignatureAlgorithm maps a JCA-style algorithm name such as
// "SHA256withECDSA" or "Ed25519" to its x509 constant. The empty
// string maps to x509.UnknownSignatureAlgorithm, which lets
// x509.CreateCertificate choose from the signing key.
func ParseSignatureAlgorithm(name string) (x509.SignatureAlgorithm, error) {
	algorithm, ok := signatureAlgorithms[name]
	if !ok {
		return 0, fmt.Errorf("unsupported signature algorithm %q", name)
	}
	return algorithm, nil
}

// EncodeCertificate returns certificate as a PEM CERTIFICATE block.
func EncodeCertificate(certificate *x509.Certificate) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certificate.Raw})
}

// EncodePrivateKey returns key as a PEM PKCS #8 PRIVATE KEY block.
func EncodePrivateKey(key crypto.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("encoding private key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// EncodePublicKey returns key as a PEM PKIX PUBLIC KEY block, the
// form a keyring file accepts.
func EncodePublicKey(key crypto.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(key)
	if err != nil {
		return nil, fmt.Errorf("encoding public key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}

// ParsePrivateKey decodes a PEM PKCS #8 PRIVATE KEY block, as written
// by EncodePrivateKey, into a signer.
func ParsePrivateKey(data []byte) (crypto.Signer, error) {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != "PRIVATE KEY" {
		return nil, errors.New("expected a PEM PRIVATE KEY block")
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}
	signer, ok := key.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("%T cannot sign", key)
	}
	return signer, nil
}
