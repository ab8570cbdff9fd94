// Package protocol implements the Minecraft Java-edition wire format: the
// primitive binary codec, length-prefixed (optionally zlib-compressed) packet
// framing, the per-version packet-ID registry, and the TCP connection that
// drives handshake, login and play traffic.
package protocol

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"
)

// MaxStringLength is the default maximum character count for wire strings.
const MaxStringLength = 32767

// Reader decodes protocol primitives from a byte cursor.
type Reader struct {
	data []byte
	off  int
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.off }

// ReadBytes consumes exactly n bytes. The returned slice aliases the backing
// buffer; packets are transient, so callers copy if they need to keep it.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, ErrTruncated
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

// ReadRemaining consumes and returns all unread bytes.
func (r *Reader) ReadRemaining() []byte {
	b := r.data[r.off:]
	r.off = len(r.data)
	return b
}

func (r *Reader) ReadUint8() (uint8, error) {
	if r.Remaining() < 1 {
		return 0, ErrTruncated
	}
	b := r.data[r.off]
	r.off++
	return b, nil
}

func (r *Reader) ReadInt8() (int8, error) {
	b, err := r.ReadUint8()
	return int8(b), err
}

func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadUint8()
	return b != 0, err
}

func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.ReadUint16()
	return int16(v), err
}

func (r *Reader) ReadInt32() (int32, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

func (r *Reader) ReadInt64() (int64, error) {
	b, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

func (r *Reader) ReadFloat32() (float32, error) {
	b, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.BigEndian.Uint32(b)), nil
}

func (r *Reader) ReadFloat64() (float64, error) {
	b, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

// ReadVarInt decodes a 32-bit variable-length integer: 7 value bits per byte,
// continuation in bit 7, little-endian groups, at most 5 bytes.
func (r *Reader) ReadVarInt() (int32, error) {
	var result uint32
	for i := 0; i < 5; i++ {
		b, err := r.ReadUint8()
		if err != nil {
			return 0, err
		}
		result |= uint32(b&0x7F) << (7 * i)
		if b&0x80 == 0 {
			return int32(result), nil
		}
	}
	return 0, ErrVarIntTooLarge
}

// ReadVarLong decodes a 64-bit variable-length integer, at most 10 bytes.
func (r *Reader) ReadVarLong() (int64, error) {
	var result uint64
	for i := 0; i < 10; i++ {
		b, err := r.ReadUint8()
		if err != nil {
			return 0, err
		}
		result |= uint64(b&0x7F) << (7 * i)
		if b&0x80 == 0 {
			return int64(result), nil
		}
	}
	return 0, ErrVarLongTooLarge
}

// ReadString decodes a VarInt-prefixed UTF-8 string of at most max characters.
// The length prefix is validated against 4*max before any bytes are consumed,
// guarding against a hostile length field.
func (r *Reader) ReadString(max int) (string, error) {
	n, err := r.ReadVarInt()
	if err != nil {
		return "", err
	}
	if n < 0 || int(n) > max*4 {
		return "", fmt.Errorf("%w: %d bytes declared, max %d chars", ErrStringTooLong, n, max)
	}
	raw, err := r.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	if utf8.RuneCount(raw) > max {
		return "", fmt.Errorf("%w: %d chars, max %d", ErrStringTooLong, utf8.RuneCount(raw), max)
	}
	return string(raw), nil
}

// ReadByteArray decodes a VarInt-prefixed byte slice.
func (r *Reader) ReadByteArray() ([]byte, error) {
	n, err := r.ReadVarInt()
	if err != nil {
		return nil, err
	}
	return r.ReadBytes(int(n))
}

// ReadPosition decodes a block position packed as x:26 | y:12 | z:26 bits,
// sign-extending each field from its declared width.
func (r *Reader) ReadPosition() (x, y, z int32, err error) {
	v, err := r.ReadInt64()
	if err != nil {
		return 0, 0, 0, err
	}
	x = int32(v >> 38)
	y = int32(v << 26 >> 52)
	z = int32(v << 38 >> 38)
	return x, y, z, nil
}

// ReadAngle decodes a rotation stored as 1/256th of a full turn into degrees.
func (r *Reader) ReadAngle() (float32, error) {
	b, err := r.ReadInt8()
	if err != nil {
		return 0, err
	}
	return float32(b) * 360.0 / 256.0, nil
}

// Writer builds protocol primitive payloads.
type Writer struct {
	buf []byte
}

func NewWriter() *Writer { return &Writer{} }

// Bytes returns the accumulated payload.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the accumulated payload length.
func (w *Writer) Len() int { return len(w.buf) }

func (w *Writer) WriteUint8(v uint8)   { w.buf = append(w.buf, v) }
func (w *Writer) WriteInt8(v int8)     { w.buf = append(w.buf, byte(v)) }
func (w *Writer) WriteBytes(b []byte)  { w.buf = append(w.buf, b...) }
func (w *Writer) WriteUint16(v uint16) { w.buf = binary.BigEndian.AppendUint16(w.buf, v) }
func (w *Writer) WriteInt16(v int16)   { w.buf = binary.BigEndian.AppendUint16(w.buf, uint16(v)) }
func (w *Writer) WriteInt32(v int32)   { w.buf = binary.BigEndian.AppendUint32(w.buf, uint32(v)) }
func (w *Writer) WriteInt64(v int64)   { w.buf = binary.BigEndian.AppendUint64(w.buf, uint64(v)) }

func (w *Writer) WriteFloat32(v float32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, math.Float32bits(v))
}

func (w *Writer) WriteFloat64(v float64) {
	w.buf = binary.BigEndian.AppendUint64(w.buf, math.Float64bits(v))
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

func (w *Writer) WriteVarInt(v int32)  { w.buf = AppendVarInt(w.buf, v) }
func (w *Writer) WriteVarLong(v int64) { w.buf = AppendVarLong(w.buf, v) }

// WriteString encodes a VarInt-prefixed UTF-8 string, rejecting values whose
// encoded length exceeds 4*max before anything is appended.
func (w *Writer) WriteString(s string, max int) error {
	if len(s) > max*4 {
		return fmt.Errorf("%w: %d bytes, max %d chars", ErrStringTooLong, len(s), max)
	}
	w.WriteVarInt(int32(len(s)))
	w.buf = append(w.buf, s...)
	return nil
}

// WriteByteArray encodes a VarInt-prefixed byte slice.
func (w *Writer) WriteByteArray(b []byte) {
	w.WriteVarInt(int32(len(b)))
	w.buf = append(w.buf, b...)
}

// WritePosition packs a block position as x:26 | y:12 | z:26 bits.
func (w *Writer) WritePosition(x, y, z int32) {
	v := (int64(x)&0x3FFFFFF)<<38 | (int64(y)&0xFFF)<<26 | (int64(z) & 0x3FFFFFF)
	w.WriteInt64(v)
}

// WriteAngle encodes a rotation in degrees as 1/256th of a full turn.
func (w *Writer) WriteAngle(degrees float32) {
	w.WriteInt8(int8(degrees * 256.0 / 360.0))
}

// AppendVarInt appends the VarInt encoding of v to b.
func AppendVarInt(b []byte, v int32) []byte {
	u := uint32(v)
	for {
		c := byte(u & 0x7F)
		u >>= 7
		if u == 0 {
			return append(b, c)
		}
		b = append(b, c|0x80)
	}
}

// AppendVarLong appends the VarLong encoding of v to b.
func AppendVarLong(b []byte, v int64) []byte {
	u := uint64(v)
	for {
		c := byte(u & 0x7F)
		u >>= 7
		if u == 0 {
			return append(b, c)
		}
		b = append(b, c|0x80)
	}
}

// VarIntLen returns the encoded size of v in bytes.
func VarIntLen(v int32) int {
	u := uint32(v)
	n := 1
	for u >= 0x80 {
		u >>= 7
		n++
	}
	return n
}
