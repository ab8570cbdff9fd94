// Package protocol drives the connection through handshake and login and
// keeps the session alive once playing.
package protocol

import (
	"strconv"

	"github.com/Tnze/go-mc/chat"

	"github.com/go-mcbot/mcbot/pkg/client"
	proto "github.com/go-mcbot/mcbot/pkg/protocol"
)

const ModuleName = "protocol"

// Module drives the client through handshaking -> login -> play.
type Module struct {
	client *client.Client
}

func New() *Module {
	return &Module{}
}

func (m *Module) Name() string { return ModuleName }

func (m *Module) Init(c *client.Client) {
	m.client = c
}

func (m *Module) Reset() {}

// From retrieves the protocol module from a client.
func From(c *client.Client) *Module {
	mod := c.Module(ModuleName)
	if mod == nil {
		return nil
	}
	return mod.(*Module)
}

// OnConnect sends handshake and login start after TCP connection.
func (m *Module) OnConnect() {
	c := m.client

	host, port := c.ResolvedAddr()
	portNum, _ := strconv.Atoi(port)

	w := proto.NewWriter()
	w.WriteVarInt(c.Epoch())
	_ = w.WriteString(host, proto.MaxStringLength)
	w.WriteUint16(uint16(portNum))
	w.WriteVarInt(proto.NextStateLogin)
	if err := c.WriteRawPacket(proto.HandshakeID, w.Bytes()); err != nil {
		c.Logger.Println("send handshake:", err)
		return
	}

	c.SetState(proto.StateLogin)

	w = proto.NewWriter()
	_ = w.WriteString(c.Username, 16)
	w.WriteUUID(c.UUID)
	if err := c.WriteRawPacket(proto.LoginStartID, w.Bytes()); err != nil {
		c.Logger.Println("send login start:", err)
	}
}

func (m *Module) HandlePacket(pkt *proto.WirePacket) {
	switch m.client.State() {
	case proto.StateLogin:
		m.handleLogin(pkt)
	case proto.StatePlay:
		m.handlePlay(pkt)
	}
}

func (m *Module) handleLogin(pkt *proto.WirePacket) {
	c := m.client

	switch pkt.PacketID {
	case proto.LoginDisconnectID:
		reason := decodeReason(pkt)
		c.Logger.Printf("login disconnect: %s", reason)
		c.DisconnectWithReason(reason)

	case proto.EncryptionRequestID:
		// online-mode server; offline login is all we speak
		c.Logger.Println("server requested encryption, cannot join online-mode servers")
		c.Emit(client.EventError, proto.ErrEncryptionUnsupported)
		_ = c.Disconnect(true)

	case proto.LoginSuccessID:
		c.Logger.Println("login successful")
		c.SetState(proto.StatePlay)
		c.Emit(client.EventLogin)

	case proto.SetCompressionID:
		threshold, err := pkt.Reader().ReadVarInt()
		if err != nil {
			c.ReportDecodeError("parse compression threshold", err)
			return
		}
		c.SetCompressionThreshold(int(threshold))
		if c.Verbose {
			c.Logger.Printf("compression enabled, threshold %d", threshold)
		}
	}
}

func (m *Module) handlePlay(pkt *proto.WirePacket) {
	c := m.client
	epoch := c.Epoch()

	switch pkt.PacketID {
	case proto.ClientboundID("keep_alive_clientbound", epoch):
		id, err := pkt.Reader().ReadInt64()
		if err != nil {
			c.ReportDecodeError("parse keep alive", err)
			return
		}
		// echoed directly, not queued: the server kicks laggy clients
		w := proto.NewWriter()
		w.WriteInt64(id)
		if err := c.WritePacket("keep_alive_serverbound", w.Bytes()); err != nil {
			c.Logger.Println("send keep alive:", err)
		}

	case proto.ClientboundID("disconnect_play", epoch):
		reason := decodeReason(pkt)
		c.Logger.Printf("disconnected by server: %s", reason)
		c.DisconnectWithReason(reason)
	}
}

// decodeReason extracts human-readable text from a disconnect reason, which
// older servers send as a JSON chat component.
func decodeReason(pkt *proto.WirePacket) string {
	raw, err := pkt.Reader().ReadString(proto.MaxStringLength)
	if err != nil {
		return "(unreadable reason)"
	}
	var msg chat.Message
	if err := msg.UnmarshalJSON([]byte(raw)); err == nil {
		if s := msg.ClearString(); s != "" {
			return s
		}
	}
	return raw
}
