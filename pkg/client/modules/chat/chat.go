// Package chat decodes clientbound chat messages and sends outgoing chat
// and commands.
package chat

import (
	"strings"

	mcchat "github.com/Tnze/go-mc/chat"

	"github.com/go-mcbot/mcbot/pkg/client"
	proto "github.com/go-mcbot/mcbot/pkg/protocol"
)

const ModuleName = "chat"

// signedChatEpoch is the first protocol version where chat arrives as a
// plain string with a separate signature block instead of a JSON component.
const signedChatEpoch = 760

type Module struct {
	client *client.Client
}

func New() *Module {
	return &Module{}
}

func (m *Module) Name() string { return ModuleName }

func (m *Module) Init(c *client.Client) { m.client = c }

func (m *Module) Reset() {}

// From retrieves the chat module from a client.
func From(c *client.Client) *Module {
	mod := c.Module(ModuleName)
	if mod == nil {
		return nil
	}
	return mod.(*Module)
}

// SendMessage sends a chat message, routing leading-slash text as a command.
func (m *Module) SendMessage(msg string) error {
	if strings.HasPrefix(msg, "/") {
		return m.SendCommand(strings.TrimPrefix(msg, "/"))
	}
	return m.client.Chat(msg)
}

// SendCommand runs a command (without the leading slash).
func (m *Module) SendCommand(cmd string) error {
	return m.client.Chat("/" + cmd)
}

func (m *Module) HandlePacket(pkt *proto.WirePacket) {
	c := m.client
	if c.State() != proto.StatePlay {
		return
	}
	if pkt.PacketID != proto.ClientboundID("chat_message", c.Epoch()) {
		return
	}
	m.handleChatMessage(pkt)
}

func (m *Module) handleChatMessage(pkt *proto.WirePacket) {
	c := m.client
	r := pkt.Reader()

	raw, err := r.ReadString(proto.MaxStringLength)
	if err != nil {
		c.ReportDecodeError("parse chat message", err)
		return
	}

	text := raw
	if c.Epoch() < signedChatEpoch {
		// legacy JSON chat component
		var msg mcchat.Message
		if err := msg.UnmarshalJSON([]byte(raw)); err == nil {
			text = msg.ClearString()
		}
	}

	if c.Verbose {
		c.Logger.Printf("chat: %s", text)
	}
	c.Emit(client.EventChat, "", text, "")
}
