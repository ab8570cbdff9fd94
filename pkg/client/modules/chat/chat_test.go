package chat

import (
	"errors"
	"io"
	"log"
	"testing"

	"github.com/go-mcbot/mcbot/pkg/client"
	proto "github.com/go-mcbot/mcbot/pkg/protocol"
)

func newTestClient(t *testing.T, epoch int32) (*client.Client, *Module) {
	t.Helper()
	c := client.New("test:25565", "Tester")
	c.Logger = log.New(io.Discard, "", 0)
	m := New()
	c.Register(m)
	c.SetState(proto.StatePlay)
	c.SetEpoch(epoch)
	return c, m
}

func chatPayload(t *testing.T, epoch int32, raw string) []byte {
	t.Helper()
	w := proto.NewWriter()
	if err := w.WriteString(raw, proto.MaxStringLength); err != nil {
		t.Fatal(err)
	}
	return w.Bytes()
}

func TestLegacyJSONComponentExtraction(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain text field", `{"text":"hello"}`, "hello"},
		{"text with extra", `{"text":"hello","extra":[{"text":" world"}]}`, "hello world"},
		{"nested extra", `{"text":"a","extra":[{"text":"b","extra":[{"text":"c"}]}]}`, "abc"},
		{"not json at all", "raw words", "raw words"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, m := newTestClient(t, 754) // pre-signed-chat version
			chatID := proto.ClientboundID("chat_message", 754)

			var got string
			c.On(client.EventChat, func(args ...any) {
				if len(args) > 1 {
					got, _ = args[1].(string)
				}
			})

			m.HandlePacket(&proto.WirePacket{PacketID: chatID, Data: chatPayload(t, 754, tt.raw)})

			if got != tt.want {
				t.Fatalf("chat text = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSignedChatIsPlainString(t *testing.T) {
	c, m := newTestClient(t, 767)
	chatID := proto.ClientboundID("chat_message", 767)

	var got string
	c.On(client.EventChat, func(args ...any) {
		if len(args) > 1 {
			got, _ = args[1].(string)
		}
	})

	// modern chat body is already plain text, braces and all
	m.HandlePacket(&proto.WirePacket{PacketID: chatID, Data: chatPayload(t, 767, `{"not":"parsed"}`)})

	if got != `{"not":"parsed"}` {
		t.Fatalf("chat text = %q, want the raw string", got)
	}
}

func TestChatIgnoredOutsidePlayState(t *testing.T) {
	c, m := newTestClient(t, 765)
	c.SetState(proto.StateLogin)
	chatID := proto.ClientboundID("chat_message", 765)

	fired := false
	c.On(client.EventChat, func(args ...any) { fired = true })

	m.HandlePacket(&proto.WirePacket{PacketID: chatID, Data: chatPayload(t, 765, "hi")})

	if fired {
		t.Fatal("chat event fired while in Login state")
	}
}

func TestCorruptLengthPrefixEndsSession(t *testing.T) {
	c, m := newTestClient(t, 765)
	chatID := proto.ClientboundID("chat_message", 765)

	var got error
	c.On(client.EventError, func(args ...any) {
		if len(args) > 0 {
			got, _ = args[0].(error)
		}
	})

	// five continuation bytes never terminate a VarInt
	bad := []byte{0x80, 0x80, 0x80, 0x80, 0x80}
	m.HandlePacket(&proto.WirePacket{PacketID: chatID, Data: bad})

	if !errors.Is(got, proto.ErrVarIntTooLarge) {
		t.Fatalf("error event = %v, want ErrVarIntTooLarge", got)
	}
	if c.State() != proto.StateClosed {
		t.Fatalf("state = %v after corrupt prefix, want Closed", c.State())
	}
}
