package protocol

import (
	"errors"
	"strings"
	"testing"
)

func TestVarIntRoundTrip(t *testing.T) {
	values := []int32{0, 1, 2, 127, 128, 255, 25565, 2097151, 2097152, 2147483647, -1, -2147483648}

	for _, v := range values {
		encoded := AppendVarInt(nil, v)
		if len(encoded) > 5 {
			t.Errorf("AppendVarInt(%d) produced %d bytes, max 5", v, len(encoded))
		}
		got, err := NewReader(encoded).ReadVarInt()
		if err != nil {
			t.Fatalf("ReadVarInt(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("VarInt roundtrip: got %d, want %d", got, v)
		}
	}
}

func TestVarIntKnownEncodings(t *testing.T) {
	tests := []struct {
		value int32
		bytes []byte
	}{
		{0, []byte{0x00}},
		{127, []byte{0x7F}},
		{128, []byte{0x80, 0x01}},
		{255, []byte{0xFF, 0x01}},
		{25565, []byte{0xDD, 0xC7, 0x01}},
		{2147483647, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x07}},
		{-1, []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}},
	}

	for _, tt := range tests {
		got := AppendVarInt(nil, tt.value)
		if string(got) != string(tt.bytes) {
			t.Errorf("AppendVarInt(%d) = %#v, want %#v", tt.value, got, tt.bytes)
		}
	}
}

func TestVarIntTooLarge(t *testing.T) {
	// six continuation bytes
	_, err := NewReader([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01}).ReadVarInt()
	if !errors.Is(err, ErrVarIntTooLarge) {
		t.Errorf("ReadVarInt on 6-byte input: got %v, want ErrVarIntTooLarge", err)
	}
}

func TestVarIntTruncated(t *testing.T) {
	_, err := NewReader([]byte{0x80}).ReadVarInt()
	if !errors.Is(err, ErrTruncated) {
		t.Errorf("ReadVarInt on dangling continuation: got %v, want ErrTruncated", err)
	}
}

func TestVarLongRoundTrip(t *testing.T) {
	values := []int64{0, 1, 127, 128, 2147483647, 2147483648, 9223372036854775807, -1, -9223372036854775808}

	for _, v := range values {
		encoded := AppendVarLong(nil, v)
		if len(encoded) > 10 {
			t.Errorf("AppendVarLong(%d) produced %d bytes, max 10", v, len(encoded))
		}
		got, err := NewReader(encoded).ReadVarLong()
		if err != nil {
			t.Fatalf("ReadVarLong(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("VarLong roundtrip: got %d, want %d", got, v)
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	values := []string{"", "hello", "OfflinePlayer:Steve", "héllo wörld", "日本語テスト"}

	for _, s := range values {
		w := NewWriter()
		if err := w.WriteString(s, MaxStringLength); err != nil {
			t.Fatalf("WriteString(%q): %v", s, err)
		}
		got, err := NewReader(w.Bytes()).ReadString(MaxStringLength)
		if err != nil {
			t.Fatalf("ReadString(%q): %v", s, err)
		}
		if got != s {
			t.Errorf("String roundtrip: got %q, want %q", got, s)
		}
	}
}

func TestStringHostileLength(t *testing.T) {
	// declared length of 100 bytes against a max of 16 chars -> rejected
	// before any UTF-8 decode is attempted
	data := AppendVarInt(nil, 100)
	_, err := NewReader(data).ReadString(16)
	if !errors.Is(err, ErrStringTooLong) {
		t.Errorf("ReadString with hostile length: got %v, want ErrStringTooLong", err)
	}
}

func TestStringTooManyChars(t *testing.T) {
	s := strings.Repeat("a", 20)
	w := NewWriter()
	if err := w.WriteString(s, MaxStringLength); err != nil {
		t.Fatal(err)
	}
	// 20 one-byte chars fit under 4*16 declared bytes but exceed 16 chars
	_, err := NewReader(w.Bytes()).ReadString(16)
	if !errors.Is(err, ErrStringTooLong) {
		t.Errorf("ReadString over char limit: got %v, want ErrStringTooLong", err)
	}
}

func TestWriteStringTooLong(t *testing.T) {
	w := NewWriter()
	err := w.WriteString(strings.Repeat("a", 4*16+1), 16)
	if !errors.Is(err, ErrStringTooLong) {
		t.Errorf("WriteString over limit: got %v, want ErrStringTooLong", err)
	}
	if w.Len() != 0 {
		t.Errorf("WriteString over limit appended %d bytes, want 0", w.Len())
	}
}

func TestPositionRoundTrip(t *testing.T) {
	tests := []struct {
		x, y, z int32
	}{
		{0, 0, 0},
		{1, 2, 3},
		{-1, -1, -1},
		{100, 64, -100},
		{33554431, 2047, 33554431},    // max 26/12/26-bit values
		{-33554432, -2048, -33554432}, // min 26/12/26-bit values
		{18357644, 831, -20882616},
	}

	for _, tt := range tests {
		w := NewWriter()
		w.WritePosition(tt.x, tt.y, tt.z)
		x, y, z, err := NewReader(w.Bytes()).ReadPosition()
		if err != nil {
			t.Fatalf("ReadPosition(%d, %d, %d): %v", tt.x, tt.y, tt.z, err)
		}
		if x != tt.x || y != tt.y || z != tt.z {
			t.Errorf("Position roundtrip (%d, %d, %d): got (%d, %d, %d)", tt.x, tt.y, tt.z, x, y, z)
		}
	}
}

func TestPositionKnownPacking(t *testing.T) {
	// (x & 0x3FFFFFF)<<38 | (y & 0xFFF)<<26 | (z & 0x3FFFFFF)
	w := NewWriter()
	w.WritePosition(1, 1, 1)
	want := int64(1)<<38 | int64(1)<<26 | 1
	got, err := NewReader(w.Bytes()).ReadInt64()
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("WritePosition(1,1,1) packed %#x, want %#x", got, want)
	}
}

func TestNumericRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteInt8(-5)
	w.WriteUint8(200)
	w.WriteInt16(-1234)
	w.WriteUint16(54321)
	w.WriteInt32(-100000)
	w.WriteInt64(1 << 40)
	w.WriteFloat32(3.5)
	w.WriteFloat64(-2.25)
	w.WriteBool(true)
	w.WriteBool(false)

	r := NewReader(w.Bytes())
	if v, _ := r.ReadInt8(); v != -5 {
		t.Errorf("ReadInt8 = %d, want -5", v)
	}
	if v, _ := r.ReadUint8(); v != 200 {
		t.Errorf("ReadUint8 = %d, want 200", v)
	}
	if v, _ := r.ReadInt16(); v != -1234 {
		t.Errorf("ReadInt16 = %d, want -1234", v)
	}
	if v, _ := r.ReadUint16(); v != 54321 {
		t.Errorf("ReadUint16 = %d, want 54321", v)
	}
	if v, _ := r.ReadInt32(); v != -100000 {
		t.Errorf("ReadInt32 = %d, want -100000", v)
	}
	if v, _ := r.ReadInt64(); v != 1<<40 {
		t.Errorf("ReadInt64 = %d, want %d", v, int64(1)<<40)
	}
	if v, _ := r.ReadFloat32(); v != 3.5 {
		t.Errorf("ReadFloat32 = %v, want 3.5", v)
	}
	if v, _ := r.ReadFloat64(); v != -2.25 {
		t.Errorf("ReadFloat64 = %v, want -2.25", v)
	}
	if v, _ := r.ReadBool(); !v {
		t.Error("ReadBool = false, want true")
	}
	if v, _ := r.ReadBool(); v {
		t.Error("ReadBool = true, want false")
	}
	if r.Remaining() != 0 {
		t.Errorf("Remaining = %d, want 0", r.Remaining())
	}
}

func TestReadBytesTruncated(t *testing.T) {
	r := NewReader([]byte{1, 2, 3})
	if _, err := r.ReadBytes(4); !errors.Is(err, ErrTruncated) {
		t.Errorf("ReadBytes past end: got %v, want ErrTruncated", err)
	}
}

func TestByteArrayRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteByteArray([]byte{0xDE, 0xAD, 0xBE, 0xEF})
	got, err := NewReader(w.Bytes()).ReadByteArray()
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "\xde\xad\xbe\xef" {
		t.Errorf("ByteArray roundtrip = %#v", got)
	}
}
