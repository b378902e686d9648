// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"os"

	"github.com/sealtrail/sealtrail/lib/config"
	"github.com/sealtrail/sealtrail/lib/protocol"
)

// ConfigParams adds the --config flag to a command's params struct.
type ConfigParams struct {
	ConfigPath string `json:"-" flag:"config" desc:"path to sealtrail.yaml (default: $SEALTRAIL_CONFIG, else built-in defaults)"`
}

// LoadConfig resolves the configuration: the --config file when set,
// otherwise the file named by SEALTRAIL_CONFIG, otherwise the built-in
// defaults. The result is validated before it is returned.
func (p *ConfigParams) LoadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case p.ConfigPath != "":
		cfg, err = config.LoadFile(p.ConfigPath)
	case os.Getenv(config.EnvironmentVariable) != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, Validation("%w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, Validation("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DecoderFromConfig builds the protocol decoder a configuration
// describes.
func DecoderFromConfig(cfg *config.Config) protocol.Decoder {
	return protocol.Decoder{
		MaxDepth:          cfg.Decoder.MaxDepth,
		AllowTrailingData: cfg.Decoder.AllowTrailingData,
	}
}
