// Package entities maintains the map of entities the server has told us
// about, keyed by server entity ID.
package entities

import (
	"sync"

	"github.com/go-mcbot/mcbot/pkg/client"
	proto "github.com/go-mcbot/mcbot/pkg/protocol"
)

const ModuleName = "entities"

// Entity is a tracked server entity. Angles are degrees.
type Entity struct {
	ID       int32
	UUID     string
	TypeID   int32
	X, Y, Z  float64
	Yaw      float32
	Pitch    float32
	OnGround bool
}

type Module struct {
	client *client.Client

	mu       sync.RWMutex
	entities map[int32]*Entity
}

func New() *Module {
	return &Module{entities: make(map[int32]*Entity)}
}

func (m *Module) Name() string { return ModuleName }

func (m *Module) Init(c *client.Client) { m.client = c }

func (m *Module) Reset() {
	m.mu.Lock()
	m.entities = make(map[int32]*Entity)
	m.mu.Unlock()
}

// From retrieves the entities module from a client.
func From(c *client.Client) *Module {
	mod := c.Module(ModuleName)
	if mod == nil {
		return nil
	}
	return mod.(*Module)
}

// Get returns a copy of the tracked entity, or nil if unknown.
func (m *Module) Get(id int32) *Entity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entities[id]
	if !ok {
		return nil
	}
	cp := *e
	return &cp
}

// All returns a snapshot of every tracked entity.
func (m *Module) All() []Entity {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entity, 0, len(m.entities))
	for _, e := range m.entities {
		out = append(out, *e)
	}
	return out
}

// Count returns the number of tracked entities.
func (m *Module) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entities)
}

func (m *Module) HandlePacket(pkt *proto.WirePacket) {
	c := m.client
	if c.State() != proto.StatePlay {
		return
	}
	epoch := c.Epoch()

	switch pkt.PacketID {
	case proto.ClientboundID("entity_spawn", epoch):
		m.handleSpawn(pkt)
	case proto.ClientboundID("entity_destroy", epoch):
		m.handleDestroy(pkt)
	case proto.ClientboundID("entity_move", epoch):
		// the 1.21 numbering gives relative move and join game the same
		// ID; the join game handler owns it there
		if pkt.PacketID == proto.ClientboundID("join_game", epoch) {
			return
		}
		m.handleMove(pkt)
	}
}

func (m *Module) handleSpawn(pkt *proto.WirePacket) {
	c := m.client
	r := pkt.Reader()

	id, err := r.ReadVarInt()
	if err != nil {
		c.ReportDecodeError("parse entity spawn", err)
		return
	}
	uuid, err := r.ReadUUID()
	if err != nil {
		c.ReportDecodeError("parse entity spawn", err)
		return
	}
	typeID, err1 := r.ReadVarInt()
	x, err2 := r.ReadFloat64()
	y, err3 := r.ReadFloat64()
	z, err4 := r.ReadFloat64()
	yaw, err5 := r.ReadAngle()
	pitch, err6 := r.ReadAngle()
	for _, err := range []error{err1, err2, err3, err4, err5, err6} {
		if err != nil {
			c.ReportDecodeError("parse entity spawn", err)
			return
		}
	}

	e := &Entity{
		ID:     id,
		UUID:   uuid,
		TypeID: typeID,
		X:      x,
		Y:      y,
		Z:      z,
		Yaw:    yaw,
		Pitch:  pitch,
	}

	m.mu.Lock()
	m.entities[id] = e
	m.mu.Unlock()

	c.Emit(client.EventEntitySpawn, e.ID, e.TypeID, e.X, e.Y, e.Z)
}

func (m *Module) handleDestroy(pkt *proto.WirePacket) {
	c := m.client
	r := pkt.Reader()

	count, err := r.ReadVarInt()
	if err != nil {
		c.ReportDecodeError("parse entity destroy", err)
		return
	}

	for i := int32(0); i < count; i++ {
		id, err := r.ReadVarInt()
		if err != nil {
			c.ReportDecodeError("parse entity destroy", err)
			return
		}
		m.mu.Lock()
		e, ok := m.entities[id]
		delete(m.entities, id)
		m.mu.Unlock()
		if ok {
			c.Emit(client.EventEntityGone, e.ID, e.TypeID, e.X, e.Y, e.Z)
		}
	}
}

// handleMove applies a relative move: deltas are fixed-point 1/4096 block
// units in 16-bit fields.
func (m *Module) handleMove(pkt *proto.WirePacket) {
	c := m.client
	r := pkt.Reader()

	id, err0 := r.ReadVarInt()
	dxRaw, err1 := r.ReadInt16()
	dyRaw, err2 := r.ReadInt16()
	dzRaw, err3 := r.ReadInt16()
	yaw, err4 := r.ReadAngle()
	pitch, err5 := r.ReadAngle()
	onGround, err6 := r.ReadBool()
	for _, err := range []error{err0, err1, err2, err3, err4, err5, err6} {
		if err != nil {
			c.ReportDecodeError("parse entity move", err)
			return
		}
	}

	m.mu.Lock()
	e, ok := m.entities[id]
	if ok {
		e.X += float64(dxRaw) / 4096
		e.Y += float64(dyRaw) / 4096
		e.Z += float64(dzRaw) / 4096
		e.Yaw = yaw
		e.Pitch = pitch
		e.OnGround = onGround
	}
	m.mu.Unlock()

	if ok {
		c.Emit(client.EventEntityMoved, e.ID, e.TypeID, e.X, e.Y, e.Z)
	}
}
