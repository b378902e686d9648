// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"bytes"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/tinylib/msgp/msgp"

	"github.com/sealtrail/sealtrail/lib/testutil"
)

// decodePayload wraps payload in a signed envelope and decodes it.
func decodePayload(decoder Decoder, payload []byte) (Value, error) {
	raw := testutil.Envelope{
		Version:   VersionSigned,
		Sender:    testutil.UniqueSender(),
		Payload:   payload,
		Signature: []byte{0},
	}.Bytes()
	message, err := decoder.Decode(raw)
	if err != nil {
		return nil, err
	}
	return message.Payload, nil
}

func TestPayloadValues(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		want    Value
	}{
		{"nil", msgp.AppendNil(nil), Null{}},
		{"true", msgp.AppendBool(nil, true), Bool(true)},
		{"false", msgp.AppendBool(nil, false), Bool(false)},
		{"positive fixint", msgp.AppendInt64(nil, 7), Int(7)},
		{"negative fixint", msgp.AppendInt64(nil, -7), Int(-7)},
		{"int64 min", msgp.AppendInt64(nil, math.MinInt64), Int(math.MinInt64)},
		{"uint32", []byte{0xce, 0xff, 0xff, 0xff, 0xff}, Int(math.MaxUint32)},
		{"uint64 max", msgp.AppendUint64(nil, math.MaxUint64), Uint(math.MaxUint64)},
		{"uint64 small value", []byte{0xcf, 0, 0, 0, 0, 0, 0, 0, 1}, Uint(1)},
		{"float64", msgp.AppendFloat64(nil, -2.75), Float(-2.75)},
		{"float32", msgp.AppendFloat32(nil, 0.5), Float(0.5)},
		{"text", msgp.AppendString(nil, "grüße"), Text("grüße")},
		{"empty text", msgp.AppendString(nil, ""), Text("")},
		{"invalid utf-8 str", msgp.AppendStringFromBytes(nil, []byte{0xff, 0xfe, 'a'}), Bytes{0xff, 0xfe, 'a'}},
		{"bin that is valid utf-8", msgp.AppendBytes(nil, []byte("text")), Bytes("text")},
		{"empty bin", msgp.AppendBytes(nil, []byte{}), Bytes{}},
		{"fixext", []byte{0xd6, 0x07, 1, 2, 3, 4}, Opaque{1, 2, 3, 4}},
		{"ext8", []byte{0xc7, 0x02, 0xff, 0xaa, 0xbb}, Opaque{0xaa, 0xbb}},
		{"empty list", msgp.AppendArrayHeader(nil, 0), List{}},
		{"empty map", msgp.AppendMapHeader(nil, 0), Map{}},
		{
			"nested",
			testutil.EncodeValue(t, map[string]any{
				"values": []any{int64(1), "two", 3.5, nil, map[string]any{"deep": true}},
				"raw":    []byte{0},
			}),
			Map{
				"values": List{Int(1), Text("two"), Float(3.5), Null{}, Map{"deep": Bool(true)}},
				"raw":    Bytes{0},
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := decodePayload(Decoder{}, test.payload)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !reflect.DeepEqual(got, test.want) {
				t.Errorf("payload = %#v, want %#v", got, test.want)
			}
		})
	}
}

func TestPayloadListOrderPreserved(t *testing.T) {
	var payload []byte
	payload = msgp.AppendArrayHeader(payload, 100)
	want := make(List, 100)
	for index := range 100 {
		payload = msgp.AppendInt64(payload, int64(100-index))
		want[index] = Int(100 - index)
	}
	got, err := decodePayload(Decoder{}, payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("list order not preserved: %v", got)
	}
}

func TestPayloadMapKeyCoercion(t *testing.T) {
	var payload []byte
	payload = msgp.AppendMapHeader(payload, 4)
	payload = msgp.AppendBytes(payload, []byte("binary-key"))
	payload = msgp.AppendInt64(payload, 1)
	payload = msgp.AppendInt64(payload, 42)
	payload = msgp.AppendInt64(payload, 2)
	payload = msgp.AppendBool(payload, true)
	payload = msgp.AppendInt64(payload, 3)
	payload = msgp.AppendStringFromBytes(payload, []byte{0xc3, 0x28})
	payload = msgp.AppendInt64(payload, 4)

	got, err := decodePayload(Decoder{}, payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	invalidKey := string([]byte{0xc3, 0x28})
	want := Map{
		"binary-key": Int(1),
		"42":         Int(2),
		"true":       Int(3),
		invalidKey:   Int(4),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("payload = %#v, want %#v", got, want)
	}
}

func TestPayloadUnsupportedTag(t *testing.T) {
	raw := testutil.Envelope{
		Version: VersionSigned,
		Sender:  testutil.UniqueSender(),
		Payload: []byte{0x92, 0x01, 0xc1},
	}.Bytes()
	payloadStart := bytes.Index(raw, []byte{0x92, 0x01, 0xc1})

	_, err := Decode(raw)
	decodeError := requireKind(t, err, ErrUnsupportedValueType)
	if decodeError.Offset != payloadStart+2 {
		t.Errorf("offset = %d, want %d", decodeError.Offset, payloadStart+2)
	}
	if !strings.Contains(decodeError.Detail, "0xc1") {
		t.Errorf("detail %q does not name the tag", decodeError.Detail)
	}
}

// nestedLists encodes depth levels of single-element lists around 0.
func nestedLists(depth int) []byte {
	var payload []byte
	for range depth {
		payload = msgp.AppendArrayHeader(payload, 1)
	}
	return msgp.AppendInt64(payload, 0)
}

func TestPayloadDepthLimit(t *testing.T) {
	if _, err := decodePayload(Decoder{MaxDepth: 10}, nestedLists(10)); err != nil {
		t.Fatalf("depth 10 with MaxDepth 10: %v", err)
	}

	_, err := decodePayload(Decoder{MaxDepth: 9}, nestedLists(10))
	requireKind(t, err, ErrDepthExceeded)

	_, err = decodePayload(Decoder{}, nestedLists(DefaultMaxDepth+1))
	requireKind(t, err, ErrDepthExceeded)

	if _, err := decodePayload(Decoder{}, nestedLists(DefaultMaxDepth)); err != nil {
		t.Errorf("depth %d with default limit: %v", DefaultMaxDepth, err)
	}
}

func TestPayloadFloatKeys(t *testing.T) {
	tests := []struct {
		key  float64
		want string
	}{
		{1.0, "1.0"},
		{-2.5, "-2.5"},
		{0, "0.0"},
		{math.Copysign(0, -1), "-0.0"},
		{0.001, "0.001"},
		{0.0001, "1.0E-4"},
		{1234567.5, "1234567.5"},
		{1e7, "1.0E7"},
		{1.25e10, "1.25E10"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
		{math.NaN(), "NaN"},
	}
	for _, test := range tests {
		var payload []byte
		payload = msgp.AppendMapHeader(payload, 1)
		payload = msgp.AppendFloat64(payload, test.key)
		payload = msgp.AppendNil(payload)

		got, err := decodePayload(Decoder{}, payload)
		if err != nil {
			t.Fatalf("key %v: %v", test.key, err)
		}
		if _, ok := got.(Map)[test.want]; !ok {
			t.Errorf("key %v: payload = %#v, want key %q", test.key, got, test.want)
		}
	}
}

func TestPayloadForgedContainerCount(t *testing.T) {
	tests := map[string][]byte{
		"array32": {0xdd, 0xff, 0xff, 0xff, 0xff, 0x01},
		"map32":   {0xdf, 0x7f, 0xff, 0xff, 0xff, 0x01, 0x01},
		"fixmap":  {0x83, 0x01, 0x01, 0x01, 0x01},
	}
	for name, payload := range tests {
		t.Run(name, func(t *testing.T) {
			raw := rawEnvelope(
				msgp.AppendInt64(nil, VersionSigned),
				msgp.AppendBytes(nil, make([]byte, 16)),
				msgp.AppendInt64(nil, 0),
				payload,
				msgp.AppendNil(nil),
			)
			// A one-byte signature slot keeps every forged count larger
			// than the input left, so it must be caught before any
			// attempt to read that many elements.
			_, err := Decode(raw)
			decodeError := requireKind(t, err, ErrCorruptStream)
			if decodeError.Offset != 21 {
				t.Errorf("offset = %d, want 21 (the payload header)", decodeError.Offset)
			}
			if !strings.Contains(decodeError.Detail, "container declares") {
				t.Errorf("detail = %q, want the container guard", decodeError.Detail)
			}
		})
	}
}

func TestInterface(t *testing.T) {
	value := Map{
		"list":   List{Int(-1), Uint(math.MaxUint64), Float(1.5), Null{}},
		"text":   Text("x"),
		"bytes":  Bytes{1},
		"opaque": Opaque{2},
		"bool":   Bool(true),
	}
	want := map[string]any{
		"list":   []any{int64(-1), uint64(math.MaxUint64), 1.5, nil},
		"text":   "x",
		"bytes":  []byte{1},
		"opaque": []byte{2},
		"bool":   true,
	}
	if got := Interface(value); !reflect.DeepEqual(got, want) {
		t.Errorf("Interface = %#v, want %#v", got, want)
	}
}
