// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bytes"
	"fmt"
	"os"
)

// ReadFile reads a secret such as an age identity file into a
// protected buffer. Surrounding whitespace is trimmed, comment lines
// starting with '#' (as age-keygen writes them) are dropped, and the
// heap copy is zeroed.
func ReadFile(path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading secret: %w", err)
	}
	defer Zero(data)

	var kept [][]byte
	for line := range bytes.Lines(data) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		kept = append(kept, line)
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("secret %s is empty", path)
	}

	joined := bytes.Join(kept, []byte{'\n'})
	return NewFromBytes(joined)
}
