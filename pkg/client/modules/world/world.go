// Package world tracks which chunk columns are loaded and surfaces block
// changes. Chunk payloads themselves are not decoded.
package world

import (
	"sync"

	"github.com/go-mcbot/mcbot/pkg/client"
	proto "github.com/go-mcbot/mcbot/pkg/protocol"
)

const ModuleName = "world"

type Module struct {
	client *client.Client

	mu     sync.RWMutex
	chunks map[chunkKey]struct{}
}

type chunkKey struct {
	x, z int32
}

func New() *Module {
	return &Module{chunks: make(map[chunkKey]struct{})}
}

func (m *Module) Name() string { return ModuleName }

func (m *Module) Init(c *client.Client) { m.client = c }

func (m *Module) Reset() {
	m.mu.Lock()
	m.chunks = make(map[chunkKey]struct{})
	m.mu.Unlock()
}

// From retrieves the world module from a client.
func From(c *client.Client) *Module {
	mod := c.Module(ModuleName)
	if mod == nil {
		return nil
	}
	return mod.(*Module)
}

// IsChunkLoaded reports whether the chunk column at chunk coordinates
// (cx, cz) has been received.
func (m *Module) IsChunkLoaded(cx, cz int32) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.chunks[chunkKey{cx, cz}]
	return ok
}

// LoadedChunkCount returns the number of received chunk columns.
func (m *Module) LoadedChunkCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks)
}

func (m *Module) HandlePacket(pkt *proto.WirePacket) {
	c := m.client
	if c.State() != proto.StatePlay {
		return
	}
	epoch := c.Epoch()

	switch pkt.PacketID {
	case proto.ClientboundID("chunk_data", epoch):
		// the 1.20.4 numbering gives chunk data and keep alive the same
		// ID; the keep alive handler owns it there
		if pkt.PacketID == proto.ClientboundID("keep_alive_clientbound", epoch) {
			return
		}
		m.handleChunkData(pkt)
	case proto.ClientboundID("block_change", epoch):
		m.handleBlockChange(pkt)
	}
}

func (m *Module) handleChunkData(pkt *proto.WirePacket) {
	c := m.client
	r := pkt.Reader()

	cx, err := r.ReadInt32()
	if err != nil {
		c.ReportDecodeError("parse chunk data", err)
		return
	}
	cz, err := r.ReadInt32()
	if err != nil {
		c.ReportDecodeError("parse chunk data", err)
		return
	}

	m.mu.Lock()
	m.chunks[chunkKey{cx, cz}] = struct{}{}
	m.mu.Unlock()

	c.Emit(client.EventChunkColumnLoad, cx, cz)
}

func (m *Module) handleBlockChange(pkt *proto.WirePacket) {
	c := m.client
	r := pkt.Reader()

	x, y, z, err := r.ReadPosition()
	if err != nil {
		c.ReportDecodeError("parse block change", err)
		return
	}
	stateID, err := r.ReadVarInt()
	if err != nil {
		c.ReportDecodeError("parse block change", err)
		return
	}

	c.Emit(client.EventBlockUpdate, x, y, z, stateID)
}
