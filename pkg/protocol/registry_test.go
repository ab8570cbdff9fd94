package protocol

import (
	"errors"
	"testing"
)

func TestLookupIDKnownBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		epoch int32
		want  int32
	}{
		{"player_position", 765, 0x36},
		{"player_position", 767, 0x3B},
		{"keep_alive_clientbound", 765, 0x24},
		{"keep_alive_clientbound", 767, 0x26},
		{"teleport_confirm", 765, 0x00},
		{"teleport_confirm", 767, 0x00},
	}

	for _, tt := range tests {
		got, ok := LookupID(tt.name, tt.epoch)
		if !ok {
			t.Errorf("LookupID(%q, %d) not found", tt.name, tt.epoch)
			continue
		}
		if got != tt.want {
			t.Errorf("LookupID(%q, %d) = %#x, want %#x", tt.name, tt.epoch, got, tt.want)
		}
	}
}

func TestLookupIDFallback(t *testing.T) {
	// 766 has no dedicated table and falls back to 765
	if got, _ := LookupID("player_position", 766); got != 0x36 {
		t.Errorf("LookupID at 766 = %#x, want 765-table value 0x36", got)
	}
	// later versions without a dedicated table use the newest table at or below
	if got, _ := LookupID("player_position", 769); got != 0x3B {
		t.Errorf("LookupID at 769 = %#x, want 767-table value 0x3B", got)
	}
	// "chat_serverbound" only exists in the 765 table; 767+ inherit it
	if got, ok := LookupID("chat_serverbound", 769); !ok || got != 0x06 {
		t.Errorf("LookupID(chat_serverbound, 769) = %#x, %v; want 0x06 via fallback", got, ok)
	}
}

func TestClientboundIDUnknown(t *testing.T) {
	if got := ClientboundID("no_such_packet", 767); got != 0 {
		t.Errorf("ClientboundID for unknown name = %#x, want 0 sentinel", got)
	}
	// epoch older than any table: nothing to fall back to
	if got := ClientboundID("player_position", 47); got != 0 {
		t.Errorf("ClientboundID below all tables = %#x, want 0 sentinel", got)
	}
}

func TestServerboundIDUnknownIsError(t *testing.T) {
	_, err := ServerboundID("no_such_packet", 767)
	if !errors.Is(err, ErrUnknownPacket) {
		t.Errorf("ServerboundID for unknown name: got %v, want ErrUnknownPacket", err)
	}
}

func TestProtocolVersion(t *testing.T) {
	tests := []struct {
		version string
		want    int32
	}{
		{"1.8.9", 47},
		{"1.12.2", 340},
		{"1.16.5", 754},
		{"1.20.4", 765},
		{"1.21", 767},
		{"1.21.4", 769},
		{"9.99", 765}, // unknown falls back to 1.20.4
	}

	for _, tt := range tests {
		if got := ProtocolVersion(tt.version); got != tt.want {
			t.Errorf("ProtocolVersion(%q) = %d, want %d", tt.version, got, tt.want)
		}
	}
}
