package protocol

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// Reader wraps the stream-oriented primitive decoders. Every decode
// function below takes an io.Reader rather than a byte slice so it can be
// called with either a raw connection or a bounded sub-reader produced by
// io.LimitReader: a malformed record or batch can then only ever run out of
// bytes within its own bound, never desynchronize the enclosing frame.

// ReadInt8 reads a single signed byte.
func ReadInt8(r io.Reader) (int8, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, wrapShortRead(err)
	}
	return int8(b[0]), nil
}

// ReadUint8 reads a single unsigned byte.
func ReadUint8(r io.Reader) (uint8, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, wrapShortRead(err)
	}
	return b[0], nil
}

// ReadBool reads a single byte: 0 is false, anything else is true.
func ReadBool(r io.Reader) (bool, error) {
	b, err := ReadUint8(r)
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

// ReadInt16 reads a big-endian signed 16-bit integer.
func ReadInt16(r io.Reader) (int16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, wrapShortRead(err)
	}
	return int16(binary.BigEndian.Uint16(b[:])), nil
}

// ReadUint16 reads a big-endian unsigned 16-bit integer.
func ReadUint16(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, wrapShortRead(err)
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

// ReadInt32 reads a big-endian signed 32-bit integer.
func ReadInt32(r io.Reader) (int32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, wrapShortRead(err)
	}
	return int32(binary.BigEndian.Uint32(b[:])), nil
}

// ReadUint32 reads a big-endian unsigned 32-bit integer.
func ReadUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, wrapShortRead(err)
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

// ReadInt64 reads a big-endian signed 64-bit integer.
func ReadInt64(r io.Reader) (int64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, wrapShortRead(err)
	}
	return int64(binary.BigEndian.Uint64(b[:])), nil
}

// ReadUint64 reads a big-endian unsigned 64-bit integer.
func ReadUint64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, wrapShortRead(err)
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

// ReadUUID reads 16 raw bytes as a big-endian UUID.
func ReadUUID(r io.Reader) (uuid.UUID, error) {
	var b [16]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return uuid.Nil, wrapShortRead(err)
	}
	return uuid.UUID(b), nil
}

// byteReader adapts an io.Reader to io.ByteReader one byte at a time, which
// is what encoding/binary's varint readers require. It hands out at most 5
// bytes, so a varint that has not terminated by then fails with
// ErrMalformedVarint.
type byteReader struct {
	r io.Reader
	n int
}

func (br *byteReader) ReadByte() (byte, error) {
	if br.n == 5 {
		return 0, ErrMalformedVarint
	}
	br.n++
	var b [1]byte
	_, err := io.ReadFull(br.r, b[:])
	if err != nil {
		return 0, wrapShortRead(err)
	}
	return b[0], nil
}

// ReadUvarint reads a base-128 little-endian unsigned varint, up to 5 bytes
// for a 32-bit value, high bit set meaning "more bytes follow".
func ReadUvarint(r io.Reader) (uint64, error) {
	v, err := binary.ReadUvarint(&byteReader{r: r})
	if err != nil {
		return 0, classifyVarintErr(err)
	}
	return v, nil
}

// ReadVarint reads a zig-zag-encoded signed varint: decode(u) = (u>>1) ^ -(u&1).
func ReadVarint(r io.Reader) (int64, error) {
	v, err := binary.ReadVarint(&byteReader{r: r})
	if err != nil {
		return 0, classifyVarintErr(err)
	}
	return v, nil
}

func classifyVarintErr(err error) error {
	if err == io.ErrUnexpectedEOF || err == io.EOF || err == ErrUnexpectedEndOfInput {
		return ErrUnexpectedEndOfInput
	}
	if err == ErrMalformedVarint {
		return err
	}
	// Any other error from encoding/binary (its own overflow check) is
	// reported as a malformed varint too.
	return fmt.Errorf("%w: %v", ErrMalformedVarint, err)
}

// ReadNullableString reads a legacy (non-flexible) nullable string: an
// INT16 length followed by that many bytes; length -1 denotes null.
func ReadNullableString(r io.Reader) (*string, error) {
	n, err := ReadInt16(r)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, wrapShortRead(err)
	}
	s := string(buf)
	return &s, nil
}

// ReadCompactString reads a COMPACT_STRING: UVARINT length N+1, then N
// bytes. It is an error for the encoded value to be the null form (length
// byte 0x00); an empty string (N=0) is accepted. Use
// ReadCompactNullableString for fields that may be absent.
func ReadCompactString(r io.Reader) (string, error) {
	s, err := ReadCompactNullableString(r)
	if err != nil {
		return "", err
	}
	if s == nil {
		return "", fmt.Errorf("%w: compact string must not be null", ErrMalformedFrame)
	}
	return *s, nil
}

// ReadCompactNullableString reads a COMPACT_STRING whose length-byte 0x00
// denotes absence.
func ReadCompactNullableString(r io.Reader) (*string, error) {
	b, err := readCompactBytesRaw(r)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, nil
	}
	s := string(b)
	return &s, nil
}

// ReadCompactBytes reads COMPACT_BYTES: same framing as COMPACT_STRING,
// arbitrary payload. Returns nil for the null form.
func ReadCompactBytes(r io.Reader) ([]byte, error) {
	return readCompactBytesRaw(r)
}

func readCompactBytesRaw(r io.Reader) ([]byte, error) {
	n1, err := ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	if n1 == 0 {
		return nil, nil
	}
	n := n1 - 1
	buf := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, wrapShortRead(err)
		}
	}
	return buf, nil
}

// ReadTagBuffer consumes and discards a TAG_BUFFER: a count of tagged
// fields, each (tag:UVARINT, length:UVARINT, bytes).
func ReadTagBuffer(r io.Reader) error {
	count, err := ReadUvarint(r)
	if err != nil {
		return err
	}
	for i := uint64(0); i < count; i++ {
		if _, err := ReadUvarint(r); err != nil { // tag id, discarded
			return err
		}
		size, err := ReadUvarint(r)
		if err != nil {
			return err
		}
		if size > 0 {
			if _, err := io.CopyN(io.Discard, r, int64(size)); err != nil {
				return wrapShortRead(err)
			}
		}
	}
	return nil
}

// ReadCompactInt32Array reads a COMPACT_ARRAY of INT32.
func ReadCompactInt32Array(r io.Reader) ([]int32, error) {
	n1, err := ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	if n1 == 0 {
		return nil, nil
	}
	n := int(n1 - 1)
	out := make([]int32, n)
	for i := range out {
		v, err := ReadInt32(r)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// ReadCompactUUIDArray reads a COMPACT_ARRAY of UUID.
func ReadCompactUUIDArray(r io.Reader) ([]uuid.UUID, error) {
	n1, err := ReadUvarint(r)
	if err != nil {
		return nil, err
	}
	if n1 == 0 {
		return nil, nil
	}
	n := int(n1 - 1)
	out := make([]uuid.UUID, n)
	for i := range out {
		v, err := ReadUUID(r)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// CompactArrayLen reads the UVARINT length prefix of a COMPACT_ARRAY and
// returns the element count (0 for the null/empty form), for callers that
// decode heterogeneous elements inline rather than through a typed helper.
func CompactArrayLen(r io.Reader) (int, error) {
	n1, err := ReadUvarint(r)
	if err != nil {
		return 0, err
	}
	if n1 == 0 {
		return 0, nil
	}
	return int(n1 - 1), nil
}

func wrapShortRead(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return ErrUnexpectedEndOfInput
	}
	return err
}
