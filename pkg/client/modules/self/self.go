// Package self tracks the bot's own entity: position, rotation, health and
// food, fed by the server's sync packets.
package self

import (
	"sync"

	"github.com/go-mcbot/mcbot/pkg/client"
	proto "github.com/go-mcbot/mcbot/pkg/protocol"
)

const ModuleName = "self"

type Module struct {
	client *client.Client

	mu             sync.Mutex
	entityID       int32
	x, y, z        float64
	yaw, pitch     float32
	health         float32
	food           int32
	foodSaturation float32
	spawned        bool
}

func New() *Module {
	return &Module{health: 20, food: 20, foodSaturation: 5}
}

func (m *Module) Name() string { return ModuleName }

func (m *Module) Init(c *client.Client) { m.client = c }

func (m *Module) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entityID = 0
	m.x, m.y, m.z = 0, 0, 0
	m.yaw, m.pitch = 0, 0
	m.health = 20
	m.food = 20
	m.foodSaturation = 5
	m.spawned = false
}

// From retrieves the self module from a client.
func From(c *client.Client) *Module {
	mod := c.Module(ModuleName)
	if mod == nil {
		return nil
	}
	return mod.(*Module)
}

// Position returns the bot's feet coordinates.
func (m *Module) Position() (x, y, z float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.x, m.y, m.z
}

// Rotation returns the bot's yaw and pitch in degrees.
func (m *Module) Rotation() (yaw, pitch float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.yaw, m.pitch
}

// EntityID returns the bot's server entity ID.
func (m *Module) EntityID() int32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entityID
}

// Health returns health, food and saturation.
func (m *Module) Health() (health float32, food int32, saturation float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.health, m.food, m.foodSaturation
}

func (m *Module) IsDead() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.health <= 0
}

func (m *Module) HandlePacket(pkt *proto.WirePacket) {
	c := m.client
	if c.State() != proto.StatePlay {
		return
	}
	epoch := c.Epoch()

	switch pkt.PacketID {
	case proto.ClientboundID("join_game", epoch):
		m.handleJoinGame(pkt)
	case proto.ClientboundID("player_position", epoch):
		m.handlePlayerPosition(pkt)
	case proto.ClientboundID("health_update", epoch):
		m.handleHealthUpdate(pkt)
	}
}

func (m *Module) handleJoinGame(pkt *proto.WirePacket) {
	c := m.client
	r := pkt.Reader()

	entityID, err := r.ReadInt32()
	if err != nil {
		c.ReportDecodeError("parse join game", err)
		return
	}

	m.mu.Lock()
	m.entityID = entityID
	first := !m.spawned
	m.spawned = true
	m.mu.Unlock()

	if first {
		c.Logger.Println("joined game")
	}
	c.Emit(client.EventSpawn)
	c.EnableInput()
}

// handlePlayerPosition applies a server position sync. A set flag bit means
// the server did not send an absolute value for that axis, so the stored one
// is kept.
func (m *Module) handlePlayerPosition(pkt *proto.WirePacket) {
	c := m.client
	r := pkt.Reader()

	x, err1 := r.ReadFloat64()
	y, err2 := r.ReadFloat64()
	z, err3 := r.ReadFloat64()
	yaw, err4 := r.ReadFloat32()
	pitch, err5 := r.ReadFloat32()
	flags, err6 := r.ReadUint8()
	teleportID, err7 := r.ReadVarInt()
	for _, err := range []error{err1, err2, err3, err4, err5, err6, err7} {
		if err != nil {
			c.ReportDecodeError("parse player position", err)
			return
		}
	}

	m.mu.Lock()
	if flags&0x01 == 0 {
		m.x = x
	}
	if flags&0x02 == 0 {
		m.y = y
	}
	if flags&0x04 == 0 {
		m.z = z
	}
	if flags&0x08 == 0 {
		m.yaw = yaw
	}
	if flags&0x10 == 0 {
		m.pitch = pitch
	}
	nx, ny, nz := m.x, m.y, m.z
	m.mu.Unlock()

	c.SetTeleportID(teleportID)
	if err := c.SendTeleportConfirm(teleportID); err != nil {
		c.Logger.Println("send teleport confirm:", err)
	}

	c.Emit(client.EventMove, nx, ny, nz)
}

func (m *Module) handleHealthUpdate(pkt *proto.WirePacket) {
	c := m.client
	r := pkt.Reader()

	health, err1 := r.ReadFloat32()
	food, err2 := r.ReadVarInt()
	saturation, err3 := r.ReadFloat32()
	for _, err := range []error{err1, err2, err3} {
		if err != nil {
			c.ReportDecodeError("parse health update", err)
			return
		}
	}

	m.mu.Lock()
	old := m.health
	m.health = health
	m.food = food
	m.foodSaturation = saturation
	m.mu.Unlock()

	if health <= 0 && old > 0 {
		c.Emit(client.EventDeath)
	} else if health != old {
		c.Emit(client.EventHealth)
	}
}
