// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/tinylib/msgp/msgp"

	"github.com/sealtrail/sealtrail/lib/testutil"
)

// rawEnvelope encodes an array header for len(fields) followed by the
// pre-encoded fields, for envelopes the builder cannot express.
func rawEnvelope(fields ...[]byte) []byte {
	raw := msgp.AppendArrayHeader(nil, uint32(len(fields)))
	for _, field := range fields {
		raw = append(raw, field...)
	}
	return raw
}

func requireKind(t *testing.T, err error, sentinel error) *DecodeError {
	t.Helper()
	if !errors.Is(err, sentinel) {
		t.Fatalf("error = %v, want %v", err, sentinel)
	}
	var decodeError *DecodeError
	if !errors.As(err, &decodeError) {
		t.Fatalf("error %v is not a *DecodeError", err)
	}
	return decodeError
}

func TestDecodeSignedMessage(t *testing.T) {
	sender := testutil.UniqueSender()
	envelope := testutil.Envelope{
		Version:   0x22,
		Sender:    sender,
		Hint:      0x0001,
		Payload:   testutil.EncodeValue(t, map[string]any{"val": 1}),
		Signature: []byte{0xde, 0xad, 0xbe, 0xef},
	}
	raw, signedLength := envelope.Encode()

	message, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if message.Version != 0x22 {
		t.Errorf("Version = %#x, want 0x22", message.Version)
	}
	if message.Kind() != KindSigned {
		t.Errorf("Kind = %s, want signed", message.Kind())
	}
	if message.SenderID != sender {
		t.Errorf("SenderID = %s, want %s", message.SenderID, sender)
	}
	if message.HasChainLink() || message.ChainLink != nil {
		t.Errorf("ChainLink = %x, want absent", message.ChainLink)
	}
	if message.Hint != 1 {
		t.Errorf("Hint = %d, want 1", message.Hint)
	}
	want := Map{"val": Int(1)}
	if !reflect.DeepEqual(message.Payload, want) {
		t.Errorf("Payload = %#v, want %#v", message.Payload, want)
	}
	if !bytes.Equal(message.SignedData, raw[:signedLength]) {
		t.Errorf("SignedData = %x, want %x", message.SignedData, raw[:signedLength])
	}
	if !bytes.Equal(message.Signature, []byte{0xde, 0xad, 0xbe, 0xef}) {
		t.Errorf("Signature = %x", message.Signature)
	}
}

func TestDecodeChainedMessage(t *testing.T) {
	chainLink := bytes.Repeat([]byte{0x5a}, 32)
	envelope := testutil.Envelope{
		Version:   0x23,
		Sender:    testutil.UniqueSender(),
		ChainLink: chainLink,
		Hint:      0xee,
		Payload:   testutil.EncodeValue(t, []any{1, "a", nil}),
		Signature: bytes.Repeat([]byte{0x01}, 64),
	}
	raw, signedLength := envelope.Encode()

	message, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if message.Kind() != KindChained {
		t.Errorf("Kind = %s, want chained", message.Kind())
	}
	if !message.HasChainLink() || !bytes.Equal(message.ChainLink, chainLink) {
		t.Errorf("ChainLink = %x, want %x", message.ChainLink, chainLink)
	}
	want := List{Int(1), Text("a"), Null{}}
	if !reflect.DeepEqual(message.Payload, want) {
		t.Errorf("Payload = %#v, want %#v", message.Payload, want)
	}
	if len(message.SignedData) != signedLength {
		t.Errorf("len(SignedData) = %d, want %d", len(message.SignedData), signedLength)
	}
}

func TestDecodeEmptyChainLinkIsPresent(t *testing.T) {
	raw := testutil.Envelope{
		Version:   VersionChained,
		Sender:    testutil.UniqueSender(),
		ChainLink: []byte{},
	}.Bytes()

	message, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !message.HasChainLink() {
		t.Error("empty chain link decoded as absent")
	}
	if len(message.ChainLink) != 0 {
		t.Errorf("ChainLink = %x, want empty", message.ChainLink)
	}
}

func TestDecodeDuplicateMapKeysLastWriteWins(t *testing.T) {
	var payload []byte
	payload = msgp.AppendMapHeader(payload, 2)
	payload = msgp.AppendString(payload, "key")
	payload = msgp.AppendInt64(payload, 1)
	payload = msgp.AppendString(payload, "key")
	payload = msgp.AppendInt64(payload, 2)

	message, err := Decode(testutil.Envelope{
		Version: VersionSigned,
		Sender:  testutil.UniqueSender(),
		Payload: payload,
	}.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := Map{"key": Int(2)}
	if !reflect.DeepEqual(message.Payload, want) {
		t.Errorf("Payload = %#v, want %#v", message.Payload, want)
	}
}

func TestDecodeRejectsEnvelopeCounts(t *testing.T) {
	sender := testutil.UniqueSender()
	for _, count := range []int{0, 1, 3, 4, 7, 15} {
		fields := make([][]byte, 0, count)
		for index := range count {
			if index == 1 {
				fields = append(fields, msgp.AppendBytes(nil, sender[:]))
				continue
			}
			fields = append(fields, msgp.AppendInt64(nil, VersionSigned))
		}
		_, err := Decode(rawEnvelope(fields...))
		decodeError := requireKind(t, err, ErrMalformedEnvelope)
		if !strings.Contains(decodeError.Detail, "array[") {
			t.Errorf("count %d: detail %q does not report the observed count", count, decodeError.Detail)
		}
	}
}

func TestDecodeRejectsFourElementEnvelope(t *testing.T) {
	sender := testutil.UniqueSender()
	raw := rawEnvelope(
		msgp.AppendInt64(nil, VersionSigned),
		msgp.AppendBytes(nil, sender[:]),
		msgp.AppendInt64(nil, 1),
		msgp.AppendNil(nil),
	)
	_, err := Decode(raw)
	requireKind(t, err, ErrMalformedEnvelope)
}

func TestDecodeRejectsNonArrayEnvelope(t *testing.T) {
	tests := map[string][]byte{
		"map":     testutil.EncodeValue(t, map[string]any{"version": 0x22}),
		"integer": msgp.AppendInt64(nil, 0x22),
		"string":  msgp.AppendString(nil, "envelope"),
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(raw)
			decodeError := requireKind(t, err, ErrMalformedEnvelope)
			if !strings.Contains(decodeError.Detail, name) {
				t.Errorf("detail %q does not name the observed type %q", decodeError.Detail, name)
			}
		})
	}
}

func TestDecodeRejectsCountKindMismatch(t *testing.T) {
	tests := []struct {
		name     string
		envelope testutil.Envelope
	}{
		{"signed with chain link", testutil.Envelope{Version: VersionSigned, ChainLink: []byte{1, 2}}},
		{"chained without chain link", testutil.Envelope{Version: VersionChained}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			test.envelope.Sender = testutil.UniqueSender()
			_, err := Decode(test.envelope.Bytes())
			requireKind(t, err, ErrMalformedEnvelope)
		})
	}
}

func TestDecodeRejectsUnknownKind(t *testing.T) {
	for _, version := range []int64{0x20, 0x21, 0x24, 0x2f, 0x11} {
		raw := testutil.Envelope{Version: version, Sender: testutil.UniqueSender()}.Bytes()
		_, err := Decode(raw)
		decodeError := requireKind(t, err, ErrUnknownMessageKind)
		if decodeError.Offset != 1 {
			t.Errorf("version %#x: offset = %d, want 1", version, decodeError.Offset)
		}
	}
}

func TestDecodeRejectsSenderIDLength(t *testing.T) {
	for _, length := range []int{0, 15, 17, 32} {
		raw := rawEnvelope(
			msgp.AppendInt64(nil, VersionSigned),
			msgp.AppendBytes(nil, make([]byte, length)),
			msgp.AppendInt64(nil, 0),
			msgp.AppendNil(nil),
			msgp.AppendBytes(nil, []byte{1}),
		)
		_, err := Decode(raw)
		decodeError := requireKind(t, err, ErrMalformedEnvelope)
		if decodeError.Offset != 2 {
			t.Errorf("length %d: offset = %d, want 2", length, decodeError.Offset)
		}
	}
}

func TestDecodeSenderIDByteOrder(t *testing.T) {
	senderBytes := []byte{
		0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77,
		0x88, 0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff,
	}
	raw := rawEnvelope(
		msgp.AppendInt64(nil, VersionSigned),
		// Legacy encoders send the id as a raw str, not bin.
		msgp.AppendStringFromBytes(nil, senderBytes),
		msgp.AppendInt64(nil, 0),
		msgp.AppendNil(nil),
		msgp.AppendString(nil, "sig"),
	)
	message, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	want := uuid.MustParse("00112233-4455-6677-8899-aabbccddeeff")
	if message.SenderID != want {
		t.Errorf("SenderID = %s, want %s", message.SenderID, want)
	}
	if string(message.Signature) != "sig" {
		t.Errorf("Signature = %q, want %q", message.Signature, "sig")
	}
}

func TestDecodeTruncatedPayloadReportsOffset(t *testing.T) {
	raw := testutil.Envelope{
		Version:   VersionSigned,
		Sender:    testutil.UniqueSender(),
		Payload:   testutil.EncodeValue(t, map[string]any{"val": "hello world"}),
		Signature: []byte{1, 2, 3, 4},
	}.Bytes()

	textStart := bytes.Index(raw, []byte("hello world"))
	if textStart < 0 {
		t.Fatal("fixture does not contain the payload string")
	}
	truncated := raw[:textStart+5]

	// The error points at the string's fixstr header, where the value
	// that runs past the end begins.
	_, err := Decode(truncated)
	decodeError := requireKind(t, err, ErrCorruptStream)
	if want := textStart - 1; decodeError.Offset != want {
		t.Errorf("offset = %d, want %d", decodeError.Offset, want)
	}
	if !strings.Contains(err.Error(), "offset") {
		t.Errorf("error text %q does not mention the offset", err.Error())
	}
}

func TestDecodeEveryPrefixFails(t *testing.T) {
	raw := testutil.Envelope{
		Version:   VersionChained,
		Sender:    testutil.UniqueSender(),
		ChainLink: bytes.Repeat([]byte{7}, 64),
		Hint:      300,
		Payload:   testutil.EncodeValue(t, map[string]any{"list": []any{1.5, "x", []byte{9}}, "n": -70000}),
		Signature: bytes.Repeat([]byte{3}, 64),
	}.Bytes()

	for length := range len(raw) {
		_, err := Decode(raw[:length])
		decodeError := requireKind(t, err, ErrCorruptStream)
		if decodeError.Offset > length {
			t.Errorf("prefix %d: offset %d past end of input", length, decodeError.Offset)
		}
	}
}

func TestSignedDataRedecodes(t *testing.T) {
	envelopes := []testutil.Envelope{
		{
			Version:   VersionSigned,
			Sender:    testutil.UniqueSender(),
			Hint:      0x32,
			Payload:   testutil.EncodeValue(t, map[string]any{"t": 21.5, "h": []any{int64(1), true}}),
			Signature: bytes.Repeat([]byte{0xaa}, 64),
		},
		{
			Version:   VersionChained,
			Sender:    testutil.UniqueSender(),
			ChainLink: bytes.Repeat([]byte{0xbb}, 64),
			Payload:   testutil.EncodeValue(t, []byte("binary")),
			Signature: bytes.Repeat([]byte{0xcc}, 300),
		},
	}

	for _, envelope := range envelopes {
		raw := envelope.Bytes()
		message, err := Decode(raw)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}

		encodedSignature := msgp.AppendBytes(nil, message.Signature)
		if len(message.SignedData) != len(raw)-len(encodedSignature) {
			t.Errorf("len(SignedData) = %d, want %d", len(message.SignedData), len(raw)-len(encodedSignature))
		}

		// The signed prefix plus any signature must decode to the
		// same fields.
		rebuilt := msgp.AppendBytes(append([]byte{}, message.SignedData...), []byte("other"))
		again, err := Decode(rebuilt)
		if err != nil {
			t.Fatalf("Decode(SignedData + signature): %v", err)
		}
		if again.Version != message.Version || again.SenderID != message.SenderID ||
			again.Hint != message.Hint || !bytes.Equal(again.ChainLink, message.ChainLink) ||
			again.HasChainLink() != message.HasChainLink() {
			t.Errorf("re-decoded header differs: %+v vs %+v", again, message)
		}
		if !reflect.DeepEqual(again.Payload, message.Payload) {
			t.Errorf("re-decoded payload %#v, want %#v", again.Payload, message.Payload)
		}
	}
}

func TestSignedDataDoesNotAliasInput(t *testing.T) {
	raw := testutil.Envelope{
		Version:   VersionSigned,
		Sender:    testutil.UniqueSender(),
		Payload:   testutil.EncodeValue(t, []byte{1, 2, 3}),
		Signature: []byte{9, 9},
	}.Bytes()
	message, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	snapshot := append([]byte{}, message.SignedData...)
	payloadSnapshot := append(Bytes{}, message.Payload.(Bytes)...)
	for index := range raw {
		raw[index] = 0
	}
	if !bytes.Equal(message.SignedData, snapshot) {
		t.Error("SignedData changed when the input buffer was overwritten")
	}
	if !bytes.Equal(message.Payload.(Bytes), payloadSnapshot) {
		t.Error("payload bytes changed when the input buffer was overwritten")
	}
	if !bytes.Equal(message.Signature, []byte{9, 9}) {
		t.Error("Signature changed when the input buffer was overwritten")
	}
}

func TestDecodeTrailingData(t *testing.T) {
	first := testutil.Envelope{Version: VersionSigned, Sender: testutil.UniqueSender(), Signature: []byte{1}}.Bytes()
	second := testutil.Envelope{Version: VersionSigned, Sender: testutil.UniqueSender(), Signature: []byte{2}}.Bytes()
	joined := append(append([]byte{}, first...), second...)

	_, err := Decode(joined)
	decodeError := requireKind(t, err, ErrMalformedEnvelope)
	if decodeError.Offset != len(first) {
		t.Errorf("offset = %d, want %d", decodeError.Offset, len(first))
	}

	if _, err := (Decoder{AllowTrailingData: true}).Decode(joined); err != nil {
		t.Errorf("Decode with AllowTrailingData: %v", err)
	}

	message, rest, err := Decoder{}.DecodeFirst(joined)
	if err != nil {
		t.Fatalf("DecodeFirst: %v", err)
	}
	if !bytes.Equal(message.Signature, []byte{1}) {
		t.Errorf("first Signature = %x", message.Signature)
	}
	if !bytes.Equal(rest, second) {
		t.Errorf("rest = %x, want %x", rest, second)
	}
}

func TestDecodeConcurrentUse(t *testing.T) {
	decoder := Decoder{MaxDepth: 16}
	raw := testutil.Envelope{
		Version: VersionSigned,
		Sender:  testutil.UniqueSender(),
		Payload: testutil.EncodeValue(t, map[string]any{"a": []any{"b", map[string]any{"c": 1}}}),
	}.Bytes()

	var waitGroup sync.WaitGroup
	errs := make(chan error, 32)
	for range 32 {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			if _, err := decoder.Decode(raw); err != nil {
				errs <- err
			}
		}()
	}
	waitGroup.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("concurrent Decode: %v", err)
	}
}

func TestDecodeErrorText(t *testing.T) {
	err := &DecodeError{Kind: CorruptStream, Offset: 12, Detail: "reading hint", Err: errors.New("boom")}
	want := "protocol: corrupt stream at offset 12: reading hint: boom"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if errors.Is(err, ErrMalformedEnvelope) {
		t.Error("CorruptStream error matched ErrMalformedEnvelope")
	}
}
