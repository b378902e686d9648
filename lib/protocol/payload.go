// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sealtrail/sealtrail/lib/msgpack"
)

// valueDecoder turns one MessagePack value at the reader's cursor into
// a Value, recursing into containers. It leaves the cursor exactly
// past the value, which the envelope decoder relies on to find the end
// of the signed region.
type valueDecoder struct {
	reader   *msgpack.Reader
	maxDepth int
}

// decode reads one value. depth is the number of containers enclosing
// it.
func (d *valueDecoder) decode(depth int) (Value, error) {
	reader := d.reader
	offset := reader.Offset()

	format, err := reader.PeekFormat()
	if err != nil {
		return nil, corrupt(reader, "payload value", err)
	}

	switch format.ValueType() {
	case msgpack.TypeNil:
		if err := reader.ReadNil(); err != nil {
			return nil, corrupt(reader, "nil", err)
		}
		return Null{}, nil

	case msgpack.TypeBoolean:
		value, err := reader.ReadBool()
		if err != nil {
			return nil, corrupt(reader, "boolean", err)
		}
		return Bool(value), nil

	case msgpack.TypeInteger:
		// Only the uint64 wire format can hold values above
		// math.MaxInt64; narrower formats always fit an int64.
		if format.IsUint64() {
			value, err := reader.ReadUint64()
			if err != nil {
				return nil, corrupt(reader, "integer", err)
			}
			return Uint(value), nil
		}
		value, err := reader.ReadInt64()
		if err != nil {
			return nil, corrupt(reader, "integer", err)
		}
		return Int(value), nil

	case msgpack.TypeFloat:
		value, err := reader.ReadFloat64()
		if err != nil {
			return nil, corrupt(reader, "float", err)
		}
		return Float(value), nil

	case msgpack.TypeString:
		payload, err := reader.ReadString()
		if err != nil {
			return nil, corrupt(reader, "string", err)
		}
		if utf8.Valid(payload) {
			return Text(payload), nil
		}
		return Bytes(append([]byte{}, payload...)), nil

	case msgpack.TypeBinary:
		payload, err := reader.ReadBinary()
		if err != nil {
			return nil, corrupt(reader, "binary", err)
		}
		return Bytes(append([]byte{}, payload...)), nil

	case msgpack.TypeArray:
		count, err := reader.ReadArrayHeader()
		if err != nil {
			return nil, corrupt(reader, "array header", err)
		}
		if err := d.checkContainer(offset, depth, count, 1); err != nil {
			return nil, err
		}
		list := make(List, 0, count)
		for range count {
			element, err := d.decode(depth + 1)
			if err != nil {
				return nil, err
			}
			list = append(list, element)
		}
		return list, nil

	case msgpack.TypeMap:
		count, err := reader.ReadMapHeader()
		if err != nil {
			return nil, corrupt(reader, "map header", err)
		}
		if err := d.checkContainer(offset, depth, count, 2); err != nil {
			return nil, err
		}
		result := make(Map, count)
		for range count {
			key, err := d.decode(depth + 1)
			if err != nil {
				return nil, err
			}
			value, err := d.decode(depth + 1)
			if err != nil {
				return nil, err
			}
			result[keyText(key)] = value
		}
		return result, nil

	case msgpack.TypeExtension:
		extension, err := reader.ReadExtension()
		if err != nil {
			return nil, corrupt(reader, "extension", err)
		}
		return Opaque(append([]byte{}, extension.Data...)), nil
	}

	return nil, &DecodeError{
		Kind:   UnsupportedValueType,
		Offset: offset,
		Detail: fmt.Sprintf("tag %s (%s)", format, format.ValueType()),
	}
}

// checkContainer enforces the nesting limit and rejects counts that
// cannot fit in the remaining input (every value takes at least one
// byte), so a forged header cannot force a huge allocation.
func (d *valueDecoder) checkContainer(offset, depth, count, valuesPerEntry int) error {
	if depth+1 > d.maxDepth {
		return &DecodeError{
			Kind:   DepthExceeded,
			Offset: offset,
			Detail: fmt.Sprintf("container at depth %d, limit %d", depth+1, d.maxDepth),
		}
	}
	if remaining := d.reader.Remaining(); count > remaining/valuesPerEntry {
		return &DecodeError{
			Kind:   CorruptStream,
			Offset: offset,
			Detail: fmt.Sprintf("container declares %d entries but only %d bytes remain", count, remaining),
		}
	}
	return nil
}

// keyText coerces a decoded map key to a string. Text keys are used
// as-is and Bytes keys are reinterpreted as text. Other scalars use
// their canonical text form; container keys have none and become "".
func keyText(key Value) string {
	switch value := key.(type) {
	case Text:
		return string(value)
	case Bytes:
		return string(value)
	case Opaque:
		return string(value)
	case Int:
		return strconv.FormatInt(int64(value), 10)
	case Uint:
		return strconv.FormatUint(uint64(value), 10)
	case Float:
		return floatKeyText(float64(value))
	case Bool:
		return strconv.FormatBool(bool(value))
	case Null:
		return "null"
	}
	return ""
}

// floatKeyText formats a float key the way Java's Double.toString does,
// which is the key text existing consumers of these payloads expect:
// a plain decimal with at least one fractional digit between 1e-3 and
// 1e7, otherwise a mantissa and an unpadded exponent ("1.0E10").
func floatKeyText(value float64) string {
	switch {
	case math.IsNaN(value):
		return "NaN"
	case math.IsInf(value, 1):
		return "Infinity"
	case math.IsInf(value, -1):
		return "-Infinity"
	case value == 0:
		if math.Signbit(value) {
			return "-0.0"
		}
		return "0.0"
	}

	if magnitude := math.Abs(value); magnitude >= 1e-3 && magnitude < 1e7 {
		text := strconv.FormatFloat(value, 'f', -1, 64)
		if !strings.Contains(text, ".") {
			text += ".0"
		}
		return text
	}

	mantissa, exponent, _ := strings.Cut(strconv.FormatFloat(value, 'E', -1, 64), "E")
	if !strings.Contains(mantissa, ".") {
		mantissa += ".0"
	}
	power, _ := strconv.Atoi(exponent)
	return mantissa + "E" + strconv.Itoa(power)
}
