// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

package certificate

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/sealtrail/sealtrail/cmd/sealtrail/cli"
	"github.com/sealtrail/sealtrail/lib/cert"
	"github.com/sealtrail/sealtrail/lib/config"
	"github.com/sealtrail/sealtrail/lib/keyring"
	"github.com/sealtrail/sealtrail/lib/sealed"
	"github.com/sealtrail/sealtrail/lib/secret"
)

// Output file names inside --out-dir.
const (
	certificateFile = "cert.pem"
	publicKeyFile   = "public.pem"
	privateKeyFile  = "key.pem"
	sealedKeyFile   = "key.age"
)

type issueParams struct {
	cli.ConfigParams
	cli.JSONOutput
	CommonName         string   `json:"common_name"         flag:"common-name,n"       desc:"certificate subject common name (required)"`
	Algorithm          string   `json:"algorithm"           flag:"algorithm,a"         desc:"key algorithm: ed25519 or ecdsa-p256" default:"ed25519"`
	Validity           int      `json:"validity"            flag:"validity"            desc:"validity in days (default: certificate.validity_days)"`
	SignatureAlgorithm string   `json:"signature_algorithm" flag:"signature-algorithm" desc:"Ed25519 or SHA{256,384,512}withECDSA (default: from config, else matching the signing key)"`
	IssuerKey          string   `json:"issuer_key"          flag:"issuer-key"          desc:"PEM PKCS #8 issuer key; without it the certificate is self-signed"`
	Recipients         []string `json:"recipients"          flag:"recipient,r"         desc:"age recipient to seal the private key to (repeatable; default: certificate.recipients)"`
	OutDir             string   `json:"out_dir"             flag:"out-dir,o"           desc:"directory for the generated files" default:"."`
}

// issueResult describes the files an issue run produced.
type issueResult struct {
	CommonName  string `json:"common_name"`
	Algorithm   string `json:"algorithm"`
	PublicKey   string `json:"public_key"`
	NotBefore   string `json:"not_before"`
	NotAfter    string `json:"not_after"`
	SelfSigned  bool   `json:"self_signed"`
	Certificate string `json:"certificate"`
	PublicPEM   string `json:"public_pem"`
	PrivateKey  string `json:"private_key"`
	Sealed      bool   `json:"sealed"`
}

func issueCommand() *cli.Command {
	var params issueParams

	return &cli.Command{
		Name:    "issue",
		Summary: "Generate a device key and certificate",
		Description: `Generate a signing key and issue an X.509 certificate for it.

Writes cert.pem and public.pem to --out-dir. The private key is written
as key.age, sealed to the age recipients, when any are given (by flag or
in the config), and as key.pem with mode 0600 otherwise.

Without --issuer-key the certificate is self-signed and verified against
its own key. The public key is also printed in the base64 form a keyring
file accepts.`,
		Usage: "sealtrail cert issue --common-name <name> [flags]",
		Examples: []cli.Example{
			{
				Description: "Issue a self-signed Ed25519 device certificate",
				Command:     "sealtrail cert issue -n sensor-17 -o ./sensor-17",
			},
			{
				Description: "Issue an ECDSA key signed by a CA key, sealing the key",
				Command:     "sealtrail cert issue -n gw-3 -a ecdsa-p256 --issuer-key ca.pem -r age1...",
			},
		},
		Params: func() any { return &params },
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("issue takes no positional arguments, got %q", args[0])
			}
			logger := cli.NewCommandLogger().With("command", "cert issue")
			return runIssue(&params, os.Stdout, logger)
		},
	}
}

// generateKey creates a signing key for algorithm.
func generateKey(algorithm keyring.Algorithm) (crypto.Signer, []byte, error) {
	switch algorithm {
	case keyring.Ed25519:
		publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, nil, err
		}
		return privateKey, publicKey, nil
	case keyring.ECDSAP256:
		privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			return nil, nil, err
		}
		raw, err := privateKey.PublicKey.Bytes()
		if err != nil {
			return nil, nil, err
		}
		return privateKey, raw, nil
	}
	return nil, nil, fmt.Errorf("unknown algorithm %q (want %q or %q)", algorithm, keyring.Ed25519, keyring.ECDSAP256)
}

// authority builds the certificate authority a config describes.
func authority(certificate config.CertificateConfig) cert.Authority {
	return cert.Authority{
		Country:      certificate.Country,
		Organization: certificate.Organization,
		Locality:     certificate.Locality,
		State:        certificate.State,
		Issuer:       certificate.Issuer,
	}
}

// loadIssuerKey reads a PEM issuer key into locked memory just long
// enough to parse it.
func loadIssuerKey(path string) (crypto.Signer, error) {
	buffer, err := secret.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, cli.NotFound("issuer key: %w", err)
	}
	if err != nil {
		return nil, cli.Validation("issuer key: %w", err)
	}
	defer buffer.Close()

	signer, err := cert.ParsePrivateKey(buffer.Bytes())
	if err != nil {
		return nil, cli.Validation("issuer key %s: %w", path, err)
	}
	return signer, nil
}

func runIssue(params *issueParams, w io.Writer, logger *slog.Logger) error {
	if params.CommonName == "" {
		return cli.Validation("--common-name is required")
	}

	cfg, err := params.LoadConfig()
	if err != nil {
		return err
	}
	validity := params.Validity
	if validity == 0 {
		validity = cfg.Certificate.ValidityDays
	}
	signatureAlgorithm := params.SignatureAlgorithm
	if signatureAlgorithm == "" {
		signatureAlgorithm = cfg.Certificate.SignatureAlgorithm
	}
	recipients := params.Recipients
	if len(recipients) == 0 {
		recipients = cfg.Certificate.Recipients
	}
	for _, recipient := range recipients {
		if err := sealed.ParsePublicKey(recipient); err != nil {
			return cli.Validation("%w", err)
		}
	}

	algorithm := keyring.Algorithm(params.Algorithm)
	privateKey, rawPublicKey, err := generateKey(algorithm)
	if err != nil {
		return cli.Validation("%w", err)
	}

	signer, selfSigned := privateKey, true
	if params.IssuerKey != "" {
		signer, err = loadIssuerKey(params.IssuerKey)
		if err != nil {
			return err
		}
		selfSigned = false
	}

	certificate, err := authority(cfg.Certificate).Issue(cert.Request{
		Signer:             signer,
		PublicKey:          privateKey.Public(),
		Validity:           validity,
		SignatureAlgorithm: signatureAlgorithm,
		SelfSigned:         selfSigned,
		CommonName:         params.CommonName,
	})
	if err != nil {
		return cli.Validation("%w", err)
	}

	encodedPrivate, err := cert.EncodePrivateKey(privateKey)
	if err != nil {
		return cli.Internal("%w", err)
	}
	keyBuffer, err := secret.NewFromBytes(encodedPrivate)
	if err != nil {
		return cli.Internal("protecting private key: %w", err)
	}
	defer keyBuffer.Close()

	publicPEM, err := cert.EncodePublicKey(privateKey.Public())
	if err != nil {
		return cli.Internal("%w", err)
	}

	if err := os.MkdirAll(params.OutDir, 0o755); err != nil {
		return cli.Internal("creating output directory: %w", err)
	}
	result := issueResult{
		CommonName:  params.CommonName,
		Algorithm:   string(algorithm),
		PublicKey:   base64.StdEncoding.EncodeToString(rawPublicKey),
		NotBefore:   certificate.NotBefore.UTC().Format(time.RFC3339),
		NotAfter:    certificate.NotAfter.UTC().Format(time.RFC3339),
		SelfSigned:  selfSigned,
		Certificate: filepath.Join(params.OutDir, certificateFile),
		PublicPEM:   filepath.Join(params.OutDir, publicKeyFile),
	}

	if err := writeNewFile(result.Certificate, cert.EncodeCertificate(certificate), 0o644); err != nil {
		return err
	}
	if err := writeNewFile(result.PublicPEM, publicPEM, 0o644); err != nil {
		return err
	}

	if len(recipients) > 0 {
		ciphertext, err := sealed.Encrypt(keyBuffer.Bytes(), recipients)
		if err != nil {
			return cli.Internal("sealing private key: %w", err)
		}
		result.PrivateKey = filepath.Join(params.OutDir, sealedKeyFile)
		result.Sealed = true
		if err := writeNewFile(result.PrivateKey, []byte(ciphertext+"\n"), 0o600); err != nil {
			return err
		}
	} else {
		result.PrivateKey = filepath.Join(params.OutDir, privateKeyFile)
		if err := writeNewFile(result.PrivateKey, keyBuffer.Bytes(), 0o600); err != nil {
			return err
		}
	}

	logger.Info("certificate issued",
		"common_name", result.CommonName,
		"algorithm", result.Algorithm,
		"self_signed", selfSigned,
		"sealed", result.Sealed,
		"not_after", result.NotAfter,
	)

	if done, err := params.EmitJSON(w, result); done {
		if err != nil {
			return cli.Internal("%w", err)
		}
		return nil
	}
	fmt.Fprintf(w, "issued certificate for %q (%s, valid until %s)\n", result.CommonName, result.Algorithm, result.NotAfter)
	fmt.Fprintf(w, "  certificate: %s\n", result.Certificate)
	fmt.Fprintf(w, "  public key:  %s\n", result.PublicPEM)
	fmt.Fprintf(w, "  private key: %s\n", result.PrivateKey)
	_, err = fmt.Fprintf(w, "keyring public_key (%s): %s\n", result.Algorithm, result.PublicKey)
	return err
}

// writeNewFile writes data to a file that must not exist yet.
func writeNewFile(path string, data []byte, mode os.FileMode) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if errors.Is(err, fs.ErrExist) {
		return cli.Validation("%s already exists", path).WithHint("Choose another --out-dir or remove the old files.")
	}
	if err != nil {
		return cli.Internal("%w", err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		return cli.Internal("writing %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return cli.Internal("writing %s: %w", path, err)
	}
	return nil
}
