// Copyright 2026 The Sealtrail Authors
// SPDX-License-Identifier: Apache-2.0

package msgpack

import (
	"github.com/tinylib/msgp/msgp"
)

// Reader is a forward-only cursor over a MessagePack-encoded buffer.
// A Reader is not safe for concurrent use; create one per buffer.
type Reader struct {
	buffer []byte
	offset int
}

// NewReader returns a Reader positioned at the start of buffer. The
// buffer is not copied and must not be modified while the Reader is
// in use.
func NewReader(buffer []byte) *Reader {
	return &Reader{buffer: buffer}
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int {
	return r.offset
}

// Remaining returns the number of unconsumed bytes.
func (r *Reader) Remaining() int {
	return len(r.buffer) - r.offset
}

// PeekFormat returns the format of the next value without consuming
// anything.
func (r *Reader) PeekFormat() (Format, error) {
	lead, err := r.PeekByte()
	return Format(lead), err
}

// PeekByte returns the next raw byte without consuming it.
func (r *Reader) PeekByte() (byte, error) {
	if r.Remaining() == 0 {
		return 0, &ReadError{Offset: r.offset, Operation: "format", Err: ErrShortBuffer}
	}
	return r.buffer[r.offset], nil
}

// ReadNil consumes a nil value.
func (r *Reader) ReadNil() error {
	rest, err := msgp.ReadNilBytes(r.unread())
	return r.advance("nil", rest, err)
}

// ReadBool consumes a boolean value.
func (r *Reader) ReadBool() (bool, error) {
	value, rest, err := msgp.ReadBoolBytes(r.unread())
	return value, r.advance("boolean", rest, err)
}

// ReadInt64 consumes an integer of any width and signedness. Unsigned
// values above math.MaxInt64 fail with ErrIntegerOverflow.
func (r *Reader) ReadInt64() (int64, error) {
	value, rest, err := msgp.ReadInt64Bytes(r.unread())
	return value, r.advance("integer", rest, err)
}

// ReadUint64 consumes a non-negative integer of any width and
// signedness. Negative values fail with ErrIntegerOverflow.
func (r *Reader) ReadUint64() (uint64, error) {
	value, rest, err := msgp.ReadUint64Bytes(r.unread())
	return value, r.advance("unsigned integer", rest, err)
}

// ReadFloat64 consumes a float32 or float64 value. float32 values are
// widened exactly.
func (r *Reader) ReadFloat64() (float64, error) {
	value, rest, err := msgp.ReadFloat64Bytes(r.unread())
	return value, r.advance("float", rest, err)
}

// ReadArrayHeader consumes an array header and returns its declared
// element count.
func (r *Reader) ReadArrayHeader() (int, error) {
	count, rest, err := msgp.ReadArrayHeaderBytes(r.unread())
	return int(count), r.advance("array header", rest, err)
}

// ReadMapHeader consumes a map header and returns its declared pair
// count.
func (r *Reader) ReadMapHeader() (int, error) {
	count, rest, err := msgp.ReadMapHeaderBytes(r.unread())
	return int(count), r.advance("map header", rest, err)
}

// ReadRaw consumes a str or bin value and returns its bytes. Protocol
// fields that predate the bin family use either encoding for raw
// bytes.
func (r *Reader) ReadRaw() ([]byte, error) {
	if format, err := r.PeekFormat(); err == nil && format.ValueType() == TypeBinary {
		return r.ReadBinary()
	}
	return r.readString("raw string")
}

// ReadString consumes a str value and returns its bytes, which are not
// checked for valid UTF-8.
func (r *Reader) ReadString() ([]byte, error) {
	return r.readString("string")
}

func (r *Reader) readString(operation string) ([]byte, error) {
	value, rest, err := msgp.ReadStringZC(r.unread())
	return clip(value), r.advance(operation, rest, err)
}

// ReadBinary consumes a bin value and returns its bytes.
func (r *Reader) ReadBinary() ([]byte, error) {
	value, rest, err := msgp.ReadBytesZC(r.unread())
	return clip(value), r.advance("binary", rest, err)
}

// Extension is an extension value split into its type tag and payload.
// Data aliases the source buffer.
type Extension struct {
	Type int8
	Data []byte
}

// ReadExtension consumes a fixext or ext value.
func (r *Reader) ReadExtension() (Extension, error) {
	const operation = "extension"
	format, err := r.PeekFormat()
	if err != nil {
		return Extension{}, err
	}
	if format.ValueType() != TypeExtension {
		return Extension{}, &ReadError{Offset: r.offset, Operation: operation, Format: format, Err: ErrTypeMismatch}
	}
	unread := r.unread()
	rest, err := msgp.Skip(unread)
	if err != nil {
		return Extension{}, r.fail(operation, err)
	}

	// The type tag is the last header byte: fixext headers are the
	// lead byte and tag; ext8/16/32 put a 1, 2 or 4 byte length between.
	headerSize := 2
	if format < 0xd4 {
		headerSize += 1 << (format - 0xc7)
	}
	end := len(unread) - len(rest)
	extension := Extension{
		Type: int8(unread[headerSize-1]),
		Data: clip(unread[headerSize:end]),
	}
	return extension, r.advance(operation, rest, nil)
}

func (r *Reader) unread() []byte {
	return r.buffer[r.offset:]
}

// advance moves the cursor to where rest begins, or reports err
// without moving it.
func (r *Reader) advance(operation string, rest []byte, err error) error {
	if err != nil {
		return r.fail(operation, err)
	}
	r.offset = len(r.buffer) - len(rest)
	return nil
}

func (r *Reader) fail(operation string, cause error) error {
	readError := &ReadError{Offset: r.offset, Operation: operation, Err: classify(cause), Cause: cause}
	if r.Remaining() > 0 {
		readError.Format = Format(r.buffer[r.offset])
	}
	return readError
}

// clip caps a slice's capacity at its length, so appending to a value
// returned from the source buffer never overwrites the source.
func clip(value []byte) []byte {
	return value[:len(value):len(value)]
}
