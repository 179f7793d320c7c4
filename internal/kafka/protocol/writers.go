package protocol

import (
	"bytes"
	"encoding/binary"

	"github.com/google/uuid"
)

// Writer is the growable buffer every encoder writes into. Response bodies
// are built up with it and the length prefix is computed and prepended once
// the whole body is serialized, per spec.md §9's zero-copy note.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the accumulated buffer contents.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return w.buf.Len() }

// WriteRaw appends raw bytes verbatim.
func (w *Writer) WriteRaw(b []byte) { w.buf.Write(b) }

// WriteInt8 appends a signed byte.
func (w *Writer) WriteInt8(v int8) { w.buf.WriteByte(byte(v)) }

// WriteUint8 appends an unsigned byte.
func (w *Writer) WriteUint8(v uint8) { w.buf.WriteByte(v) }

// WriteBool appends a single byte: 1 for true, 0 for false.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

// WriteInt16 appends a big-endian signed 16-bit integer.
func (w *Writer) WriteInt16(v int16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(v))
	w.buf.Write(b[:])
}

// WriteInt32 appends a big-endian signed 32-bit integer.
func (w *Writer) WriteInt32(v int32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	w.buf.Write(b[:])
}

// WriteUint32 appends a big-endian unsigned 32-bit integer.
func (w *Writer) WriteUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

// WriteInt64 appends a big-endian signed 64-bit integer.
func (w *Writer) WriteInt64(v int64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	w.buf.Write(b[:])
}

// WriteUint64 appends a big-endian unsigned 64-bit integer.
func (w *Writer) WriteUint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

// WriteUUID appends 16 raw bytes.
func (w *Writer) WriteUUID(u uuid.UUID) { w.buf.Write(u[:]) }

// WriteUvarint appends a base-128 little-endian unsigned varint.
func (w *Writer) WriteUvarint(v uint64) {
	var b [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(b[:], v)
	w.buf.Write(b[:n])
}

// WriteVarint appends a zig-zag-encoded signed varint.
func (w *Writer) WriteVarint(v int64) {
	var b [binary.MaxVarintLen64]byte
	n := binary.PutVarint(b[:], v)
	w.buf.Write(b[:n])
}

// WriteCompactString appends a COMPACT_STRING: UVARINT(len+1) then bytes.
func (w *Writer) WriteCompactString(s string) {
	w.WriteUvarint(uint64(len(s)) + 1)
	w.buf.WriteString(s)
}

// WriteCompactNullableString appends a COMPACT_STRING, or the null form
// (a single 0x00 byte) when s is nil.
func (w *Writer) WriteCompactNullableString(s *string) {
	if s == nil {
		w.WriteUvarint(0)
		return
	}
	w.WriteCompactString(*s)
}

// WriteCompactBytes appends COMPACT_BYTES, or the null form when b is nil.
func (w *Writer) WriteCompactBytes(b []byte) {
	if b == nil {
		w.WriteUvarint(0)
		return
	}
	w.WriteUvarint(uint64(len(b)) + 1)
	w.buf.Write(b)
}

// WriteEmptyTagBuffer appends the single byte 0x00, an empty TAG_BUFFER.
func (w *Writer) WriteEmptyTagBuffer() { w.buf.WriteByte(0x00) }

// WriteCompactInt32Array appends a COMPACT_ARRAY of INT32.
func (w *Writer) WriteCompactInt32Array(vs []int32) {
	w.WriteUvarint(uint64(len(vs)) + 1)
	for _, v := range vs {
		w.WriteInt32(v)
	}
}

// WriteCompactArrayLen appends the UVARINT length prefix (N+1) for a
// caller that will write N elements inline itself.
func (w *Writer) WriteCompactArrayLen(n int) { w.WriteUvarint(uint64(n) + 1) }
