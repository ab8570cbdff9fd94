package client

import (
	"github.com/go-mcbot/mcbot/pkg/protocol"
)

// Digging actions for SendDigging. The drop actions ride on the same packet.
const (
	DiggingStart     int32 = 0
	DiggingCancel    int32 = 1
	DiggingFinish    int32 = 2
	DiggingDropStack int32 = 3
	DiggingDropItem  int32 = 4
)

// Block faces, used by digging and placement.
const (
	FaceBottom int32 = 0
	FaceTop    int32 = 1
	FaceNorth  int32 = 2
	FaceSouth  int32 = 3
	FaceWest   int32 = 4
	FaceEast   int32 = 5
)

// Hands for use/interact packets.
const (
	HandMain int32 = 0
	HandOff  int32 = 1
)

// Entity interaction types.
const (
	InteractInteract   int32 = 0
	InteractAttack     int32 = 1
	InteractInteractAt int32 = 2
)

const maxChatLength = 256

// Chat sends a raw chat packet. Prefer the chat module's SendMessage, which
// routes commands separately on modern servers.
func (c *Client) Chat(message string) error {
	w := protocol.NewWriter()
	if err := w.WriteString(message, maxChatLength); err != nil {
		return err
	}
	// unsigned chat: zero timestamp, zero salt, no signature,
	// empty acknowledgement set
	w.WriteInt64(0)
	w.WriteInt64(0)
	w.WriteVarInt(0)
	w.WriteVarInt(0)
	w.WriteUint8(0)
	w.WriteUint8(0)
	w.WriteUint8(0)
	return c.WritePacket("chat_serverbound", w.Bytes())
}

// Whisper sends a private message to the named player.
func (c *Client) Whisper(target, message string) error {
	return c.SendChatMessage("/msg " + target + " " + message)
}

// SendPosition reports the player's feet position to the server.
func (c *Client) SendPosition(x, y, z float64, onGround bool) error {
	w := protocol.NewWriter()
	w.WriteFloat64(x)
	w.WriteFloat64(y)
	w.WriteFloat64(z)
	w.WriteBool(onGround)
	return c.WritePacket("position_serverbound", w.Bytes())
}

// SendPositionLook reports position and rotation in one packet.
func (c *Client) SendPositionLook(x, y, z float64, yaw, pitch float32, onGround bool) error {
	w := protocol.NewWriter()
	w.WriteFloat64(x)
	w.WriteFloat64(y)
	w.WriteFloat64(z)
	w.WriteFloat32(yaw)
	w.WriteFloat32(pitch)
	w.WriteBool(onGround)
	return c.WritePacket("position_look_serverbound", w.Bytes())
}

// SendLook reports rotation only.
func (c *Client) SendLook(yaw, pitch float32, onGround bool) error {
	w := protocol.NewWriter()
	w.WriteFloat32(yaw)
	w.WriteFloat32(pitch)
	w.WriteBool(onGround)
	return c.WritePacket("look_serverbound", w.Bytes())
}

// SendTeleportConfirm acknowledges a server teleport.
func (c *Client) SendTeleportConfirm(teleportID int32) error {
	w := protocol.NewWriter()
	w.WriteVarInt(teleportID)
	return c.WritePacket("teleport_confirm", w.Bytes())
}

// SendDigging sends one dig action (start, cancel or finish) against a block.
func (c *Client) SendDigging(action int32, x, y, z int32, face int32, sequence int32) error {
	w := protocol.NewWriter()
	w.WriteVarInt(action)
	w.WritePosition(x, y, z)
	w.WriteVarInt(face)
	w.WriteVarInt(sequence)
	return c.WritePacket("player_digging", w.Bytes())
}

// DropHeldItem drops one item from the held stack, or the whole stack.
func (c *Client) DropHeldItem(fullStack bool) error {
	action := DiggingDropItem
	if fullStack {
		action = DiggingDropStack
	}
	return c.SendDigging(action, 0, 0, 0, FaceBottom, c.NextSequence())
}

// PlaceBlock places the held block against the given face of a block. The
// cursor values are the in-block hit position, each in [0, 1].
func (c *Client) PlaceBlock(hand int32, x, y, z int32, face int32, cursorX, cursorY, cursorZ float32) error {
	w := protocol.NewWriter()
	w.WriteVarInt(hand)
	w.WritePosition(x, y, z)
	w.WriteVarInt(face)
	w.WriteFloat32(cursorX)
	w.WriteFloat32(cursorY)
	w.WriteFloat32(cursorZ)
	w.WriteBool(false) // inside block
	w.WriteVarInt(c.NextSequence())
	return c.WritePacket("block_placement", w.Bytes())
}

// UseItem activates the held item.
func (c *Client) UseItem(hand int32) error {
	w := protocol.NewWriter()
	w.WriteVarInt(hand)
	w.WriteVarInt(c.NextSequence())
	return c.WritePacket("use_item", w.Bytes())
}

// ClickWindow performs one inventory click. The carried slot is what the
// cursor holds after the click.
func (c *Client) ClickWindow(windowID, stateID int32, slot int16, button, mode int32, carried protocol.Slot) error {
	w := protocol.NewWriter()
	w.WriteVarInt(windowID)
	w.WriteVarInt(stateID)
	w.WriteInt16(slot)
	w.WriteVarInt(button)
	w.WriteVarInt(mode)
	w.WriteVarInt(0) // no per-slot change list
	protocol.WriteSlot(w, c.Epoch(), carried)
	return c.WritePacket("click_window", w.Bytes())
}

// CloseWindow tells the server a window was closed. Window 0 is the player
// inventory.
func (c *Client) CloseWindow(windowID int32) error {
	w := protocol.NewWriter()
	w.WriteUint8(uint8(windowID))
	return c.WritePacket("close_window_serverbound", w.Bytes())
}

// HeldItemChange selects a hotbar slot (0 through 8).
func (c *Client) HeldItemChange(slot int16) error {
	w := protocol.NewWriter()
	w.WriteInt16(slot)
	return c.WritePacket("held_item_change", w.Bytes())
}

// EntityAction sends a player state action (sneak, sprint, leave bed, ...).
func (c *Client) EntityAction(entityID, action, jumpBoost int32) error {
	w := protocol.NewWriter()
	w.WriteVarInt(entityID)
	w.WriteVarInt(action)
	w.WriteVarInt(jumpBoost)
	return c.WritePacket("entity_action", w.Bytes())
}

// InteractEntity interacts with or attacks an entity. The hand is only
// carried for interact types, never for attack.
func (c *Client) InteractEntity(entityID, interactType int32, hand int32, sneaking bool) error {
	w := protocol.NewWriter()
	w.WriteVarInt(entityID)
	w.WriteVarInt(interactType)
	if interactType == InteractInteractAt {
		// target point on the entity, center by default
		w.WriteFloat32(0)
		w.WriteFloat32(0)
		w.WriteFloat32(0)
	}
	if interactType == InteractInteract || interactType == InteractInteractAt {
		w.WriteVarInt(hand)
	}
	w.WriteBool(sneaking)
	return c.WritePacket("interact_entity", w.Bytes())
}

// SwingArm plays the arm-swing animation.
func (c *Client) SwingArm(hand int32) error {
	w := protocol.NewWriter()
	w.WriteVarInt(hand)
	return c.WritePacket("swing_arm", w.Bytes())
}
