// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/sealtrail/sealtrail/lib/binhash"
)

// These variables are set via -ldflags at build time, for example:
//
//	go build -ldflags "-X github.com/sealtrail/sealtrail/lib/version.GitCommit=$(git rev-parse --short HEAD)"
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// GitDirty indicates whether there were uncommitted changes.
	GitDirty = "false"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// Version is the semantic version. This is set manually for releases.
	Version = "0.1.0-dev"
)

// Info returns a formatted version string suitable for --version output.
func Info() string {
	dirty := ""
	if GitDirty == "true" {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", Version, GitCommit, dirty, BuildTime)
}

// Full returns detailed version information including Go version.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Short returns just the version number.
func Short() string {
	return Version
}

// SelfFingerprint returns the fingerprint and resolved path of the
// running binary.
func SelfFingerprint() (binhash.Hash, string, error) {
	executable, err := os.Executable()
	if err != nil {
		return binhash.Hash{}, "", fmt.Errorf("locating running binary: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(executable)
	if err != nil {
		return binhash.Hash{}, "", fmt.Errorf("resolving %s: %w", executable, err)
	}
	digest, err := binhash.HashFile(resolved)
	if err != nil {
		return binhash.Hash{}, "", err
	}
	return digest, resolved, nil
}
