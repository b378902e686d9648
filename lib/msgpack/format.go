// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

package msgpack

import (
	"fmt"

	"github.com/tinylib/msgp/msgp"
)

// ValueType is the logical type family of a wire format.
type ValueType uint8

const (
	TypeNil ValueType = iota
	TypeBoolean
	TypeInteger
	TypeFloat
	TypeString
	TypeBinary
	TypeArray
	TypeMap
	TypeExtension
	// TypeNeverUsed is the reserved 0xc1 byte.
	TypeNeverUsed
)

var valueTypeNames = [...]string{
	TypeNil:       "nil",
	TypeBoolean:   "boolean",
	TypeInteger:   "integer",
	TypeFloat:     "float",
	TypeString:    "string",
	TypeBinary:    "binary",
	TypeArray:     "array",
	TypeMap:       "map",
	TypeExtension: "extension",
	TypeNeverUsed: "never-used",
}

func (t ValueType) String() string {
	if int(t) < len(valueTypeNames) {
		return valueTypeNames[t]
	}
	return fmt.Sprintf("ValueType(%d)", uint8(t))
}

const leadUint64 = 0xcf

// Format is a MessagePack wire format, identified by the lead byte
// that introduces a value.
type Format byte

// FormatOf returns the format introduced by lead.
func FormatOf(lead byte) Format {
	return Format(lead)
}

// ValueType returns the logical type family of the format. msgp
// reports the timestamp and complex extensions as their own types;
// they are plain extensions here.
func (f Format) ValueType() ValueType {
	switch msgp.NextType([]byte{byte(f)}) {
	case msgp.NilType:
		return TypeNil
	case msgp.BoolType:
		return TypeBoolean
	case msgp.IntType, msgp.UintType:
		return TypeInteger
	case msgp.Float32Type, msgp.Float64Type:
		return TypeFloat
	case msgp.StrType:
		return TypeString
	case msgp.BinType:
		return TypeBinary
	case msgp.ArrayType:
		return TypeArray
	case msgp.MapType:
		return TypeMap
	case msgp.ExtensionType, msgp.TimeType, msgp.Complex64Type, msgp.Complex128Type:
		return TypeExtension
	}
	return TypeNeverUsed
}

// IsUint64 reports whether the format is the 8-byte unsigned integer
// encoding, the only integer format whose values can exceed int64.
func (f Format) IsUint64() bool {
	return f == leadUint64
}

func (f Format) String() string {
	return fmt.Sprintf("0x%02x", byte(f))
}
