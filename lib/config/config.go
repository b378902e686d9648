// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/sealtrail/sealtrail/lib/cert"
)

// EnvironmentVariable names the variable [Load] reads the config path
// from.
const EnvironmentVariable = "SEALTRAIL_CONFIG"

// Config is the sealtrail configuration.
type Config struct {
	// Decoder configures envelope decoding.
	Decoder DecoderConfig `yaml:"decoder"`

	// Capture configures capture file reading.
	Capture CaptureConfig `yaml:"capture"`

	// Keyring locates the sender key registry.
	Keyring KeyringConfig `yaml:"keyring"`

	// Certificate configures the certificate authority used by the
	// cert command.
	Certificate CertificateConfig `yaml:"certificate"`
}

// DecoderConfig mirrors the protocol decoder options.
type DecoderConfig struct {
	// MaxDepth bounds payload nesting.
	MaxDepth int `yaml:"max_depth"`

	// AllowTrailingData accepts bytes after a single envelope.
	AllowTrailingData bool `yaml:"allow_trailing_data"`
}

// CaptureConfig configures capture file reading.
type CaptureConfig struct {
	// MaxSize bounds the decompressed size of a capture, in bytes.
	MaxSize int64 `yaml:"max_size"`
}

// KeyringConfig locates the keyring file.
type KeyringConfig struct {
	// Path is the JSONC keyring file. Empty means no keyring is
	// configured and commands that need one require --keyring.
	Path string `yaml:"path"`
}

// CertificateConfig holds the distinguished-name attributes and
// defaults for issued certificates.
type CertificateConfig struct {
	Country      string `yaml:"country"`
	Organization string `yaml:"organization"`
	Locality     string `yaml:"locality"`
	State        string `yaml:"state"`
	Issuer       string `yaml:"issuer"`

	// ValidityDays is the default certificate lifetime.
	ValidityDays int `yaml:"validity_days"`

	// SignatureAlgorithm is a JCA-style name such as "Ed25519" or
	// "SHA256withECDSA". Empty selects the algorithm matching the key.
	SignatureAlgorithm string `yaml:"signature_algorithm"`

	// Recipients are age public keys generated private keys are sealed
	// to.
	Recipients []string `yaml:"recipients"`
}

// Default returns the default configuration. These defaults are the
// base a config file is loaded over. The certificate names come from
// [cert.DefaultAuthority].
func Default() *Config {
	authority := cert.DefaultAuthority()
	return &Config{
		Decoder: DecoderConfig{
			MaxDepth: 256,
		},
		Capture: CaptureConfig{
			MaxSize: 64 << 20,
		},
		Certificate: CertificateConfig{
			Country:      authority.Country,
			Organization: authority.Organization,
			Locality:     authority.Locality,
			State:        authority.State,
			Issuer:       authority.Issuer,
			ValidityDays: 365,
		},
	}
}

// Load loads configuration from the file named by SEALTRAIL_CONFIG.
// There are no fallbacks: if the variable is not set, Load fails.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your sealtrail.yaml config file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path. Fields the
// file omits keep their defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Keyring.Path = expandVars(c.Keyring.Path, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Decoder.MaxDepth < 1 {
		errs = append(errs, fmt.Errorf("decoder.max_depth must be at least 1, got %d", c.Decoder.MaxDepth))
	}
	if c.Capture.MaxSize < 1 {
		errs = append(errs, fmt.Errorf("capture.max_size must be positive, got %d", c.Capture.MaxSize))
	}
	if c.Certificate.Issuer == "" {
		errs = append(errs, errors.New("certificate.issuer is required"))
	}
	if c.Certificate.ValidityDays < 1 {
		errs = append(errs, fmt.Errorf("certificate.validity_days must be at least 1, got %d", c.Certificate.ValidityDays))
	}
	if _, err := cert.ParseSignatureAlgorithm(c.Certificate.SignatureAlgorithm); err != nil {
		errs = append(errs, fmt.Errorf("certificate.signature_algorithm: %w", err))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
