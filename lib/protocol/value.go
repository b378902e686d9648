// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

// Value is a schema-less payload value. The set of implementations is
// closed: Null, Bool, Int, Uint, Float, Text, Bytes, List, Map, and
// Opaque. Values are built once during decoding and not modified
// afterwards; callers must not mutate the slices and maps they expose.
type Value interface {
	isValue()
}

// Null is the MessagePack nil.
type Null struct{}

// Bool is a boolean.
type Bool bool

// Int is any integer not encoded in the uint64 wire format.
type Int int64

// Uint is an integer encoded in the uint64 wire format. It is kept
// separate from Int because such values may exceed math.MaxInt64.
type Uint uint64

// Float is a float32 or float64, widened to float64.
type Float float64

// Text is a str-family value whose bytes are valid UTF-8.
type Text string

// Bytes is a bin-family value, or a str-family value whose bytes are
// not valid UTF-8. Short legacy encodings do not distinguish text from
// binary, so a binary value that happens to be valid UTF-8 and was
// encoded as str decodes as Text.
type Bytes []byte

// List is an ordered sequence.
type List []Value

// Map maps text keys to values. Keys are unique; a later duplicate in
// the encoding replaces the earlier one.
type Map map[string]Value

// Opaque is the payload of an extension value. The extension type tag
// is discarded.
type Opaque []byte

func (Null) isValue()   {}
func (Bool) isValue()   {}
func (Int) isValue()    {}
func (Uint) isValue()   {}
func (Float) isValue()  {}
func (Text) isValue()   {}
func (Bytes) isValue()  {}
func (List) isValue()   {}
func (Map) isValue()    {}
func (Opaque) isValue() {}

// Interface converts v into plain Go values suitable for encoding/json,
// yaml, or CBOR: nil, bool, int64, uint64, float64, string, []byte,
// []any, and map[string]any.
func Interface(v Value) any {
	switch value := v.(type) {
	case nil, Null:
		return nil
	case Bool:
		return bool(value)
	case Int:
		return int64(value)
	case Uint:
		return uint64(value)
	case Float:
		return float64(value)
	case Text:
		return string(value)
	case Bytes:
		return []byte(value)
	case Opaque:
		return []byte(value)
	case List:
		result := make([]any, len(value))
		for index, element := range value {
			result[index] = Interface(element)
		}
		return result
	case Map:
		result := make(map[string]any, len(value))
		for key, element := range value {
			result[key] = Interface(element)
		}
		return result
	}
	return nil
}
