package protocol

import (
	"testing"

	"github.com/google/uuid"
)

func TestOfflineUUIDDeterministic(t *testing.T) {
	a := OfflineUUID("Steve")
	b := OfflineUUID("Steve")
	if a != b {
		t.Errorf("OfflineUUID not deterministic: %s != %s", a, b)
	}
	if c := OfflineUUID("Alex"); c == a {
		t.Error("distinct usernames produced the same UUID")
	}
}

func TestOfflineUUIDVersion(t *testing.T) {
	u := OfflineUUID("Steve")
	if u.Version() != 3 {
		t.Errorf("OfflineUUID version = %d, want 3 (namespace+MD5)", u.Version())
	}
	if u.Variant() != uuid.RFC4122 {
		t.Errorf("OfflineUUID variant = %v, want RFC 4122", u.Variant())
	}
}

func TestUUIDWireRoundTrip(t *testing.T) {
	u := OfflineUUID("Steve")

	w := NewWriter()
	w.WriteUUID(u)
	if w.Len() != 16 {
		t.Fatalf("WriteUUID produced %d bytes, want 16", w.Len())
	}

	got, err := NewReader(w.Bytes()).ReadUUID()
	if err != nil {
		t.Fatal(err)
	}
	if got != u.String() {
		t.Errorf("UUID roundtrip = %s, want %s", got, u.String())
	}
	// canonical 8-4-4-4-12 form
	if len(got) != 36 || got[8] != '-' || got[13] != '-' || got[18] != '-' || got[23] != '-' {
		t.Errorf("UUID %q is not in canonical form", got)
	}
}
