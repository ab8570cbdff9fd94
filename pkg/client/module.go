package client

import "github.com/go-mcbot/mcbot/pkg/protocol"

// Module is a pluggable game-state component.
type Module interface {
	// Name returns a unique key for this module (e.g. "protocol", "self", "world", "chat").
	Name() string
	// Init is called once when the module is registered on a client.
	// Store the *Client reference for later use.
	Init(c *Client)
	// HandlePacket is called for every incoming packet in any connection state.
	HandlePacket(pkt *protocol.WirePacket)
	// Reset is called on reconnect to clear module state.
	Reset()
}

// ConnectHandler is optionally implemented by modules that need to act
// after TCP connection is established but before the packet loop starts.
// The protocol module uses this to send handshake + login start.
type ConnectHandler interface {
	OnConnect()
}

// ChatMessageSender is optionally implemented by the chat module.
// The client forwards SendChatMessage/SendCommand through this for TUI support.
type ChatMessageSender interface {
	SendMessage(msg string) error
	SendCommand(cmd string) error
}

// PositionProvider is implemented by the self module; conveniences like
// LookAt and Dig read the bot's position through it.
type PositionProvider interface {
	Position() (x, y, z float64)
}

// EntityIDProvider is implemented by the self module; actions that address
// the bot's own entity (leaving a bed, sprinting) read the ID through it.
type EntityIDProvider interface {
	EntityID() int32
}

// Handler is a lightweight packet callback for one-off matching.
type Handler func(c *Client, pkt *protocol.WirePacket)
