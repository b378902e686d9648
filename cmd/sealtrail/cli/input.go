// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode"
)

// InputParams adds the input encoding flags shared by commands that
// read a message from a file or stdin.
type InputParams struct {
	Hex    bool `json:"-" flag:"hex,x" desc:"input is hex text (whitespace ignored)"`
	Base64 bool `json:"-" flag:"base64" desc:"input is standard base64 text (whitespace ignored)"`
}

// ReadInput resolves input data from either a file (the last element
// of args, if it names a regular file on disk) or stdin, then applies
// the --hex or --base64 decoding.
//
// Returns the input bytes and the args with any consumed file path
// removed.
func ReadInput(args []string, params InputParams) ([]byte, []string, error) {
	return readInput(args, params, os.Stdin)
}

func readInput(args []string, params InputParams, stdin io.Reader) ([]byte, []string, error) {
	if params.Hex && params.Base64 {
		return nil, nil, Validation("--hex and --base64 are mutually exclusive")
	}

	var data []byte
	remainingArgs := args

	if length := len(args); length > 0 {
		candidate := args[length-1]
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			data, err = os.ReadFile(candidate)
			if err != nil {
				return nil, nil, Internal("read %s: %w", candidate, err)
			}
			remainingArgs = args[:length-1]
		}
	}

	if data == nil {
		var err error
		data, err = io.ReadAll(stdin)
		if err != nil {
			return nil, nil, Internal("read stdin: %w", err)
		}
	}

	switch {
	case params.Hex:
		decoded, err := decodeHexInput(data)
		if err != nil {
			return nil, nil, Validation("%w", err)
		}
		data = decoded
	case params.Base64:
		decoded, err := decodeBase64Input(data)
		if err != nil {
			return nil, nil, Validation("%w", err)
		}
		data = decoded
	}

	if len(data) == 0 {
		return nil, nil, Validation("empty input")
	}
	return data, remainingArgs, nil
}

// stripSpace removes all whitespace from text input.
func stripSpace(data []byte) []byte {
	return bytes.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, data)
}

// decodeHexInput strips whitespace from hex-encoded input and decodes
// it to binary bytes. Whitespace between hex digit pairs is allowed
// (e.g., "95 22 c4 10" or "9522c410").
func decodeHexInput(data []byte) ([]byte, error) {
	cleaned := stripSpace(data)
	if len(cleaned) == 0 {
		return nil, errors.New("empty input after stripping whitespace from hex")
	}

	decoded := make([]byte, hex.DecodedLen(len(cleaned)))
	count, err := hex.Decode(decoded, cleaned)
	if err != nil {
		return nil, fmt.Errorf("decode hex: %w", err)
	}
	return decoded[:count], nil
}

// decodeBase64Input strips whitespace from base64 input and decodes it.
func decodeBase64Input(data []byte) ([]byte, error) {
	cleaned := stripSpace(data)
	if len(cleaned) == 0 {
		return nil, errors.New("empty input after stripping whitespace from base64")
	}

	decoded := make([]byte, base64.StdEncoding.DecodedLen(len(cleaned)))
	count, err := base64.StdEncoding.Decode(decoded, cleaned)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	return decoded[:count], nil
}
