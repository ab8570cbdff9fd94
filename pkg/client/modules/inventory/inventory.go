// Package inventory mirrors the server's view of the player inventory and
// any open container window.
package inventory

import (
	"sync"

	"github.com/go-mcbot/mcbot/pkg/client"
	proto "github.com/go-mcbot/mcbot/pkg/protocol"
)

const ModuleName = "inventory"

// PlayerWindowID is the always-open player inventory window.
const PlayerWindowID = 0

// Window is an open container.
type Window struct {
	ID      int32
	Type    int32
	Title   string
	StateID int32
	Slots   []proto.Slot
}

type Module struct {
	client *client.Client

	mu      sync.Mutex
	windows map[int32]*Window
}

func New() *Module {
	return &Module{windows: newWindows()}
}

func newWindows() map[int32]*Window {
	return map[int32]*Window{
		PlayerWindowID: {ID: PlayerWindowID},
	}
}

func (m *Module) Name() string { return ModuleName }

func (m *Module) Init(c *client.Client) { m.client = c }

func (m *Module) Reset() {
	m.mu.Lock()
	m.windows = newWindows()
	m.mu.Unlock()
}

// From retrieves the inventory module from a client.
func From(c *client.Client) *Module {
	mod := c.Module(ModuleName)
	if mod == nil {
		return nil
	}
	return mod.(*Module)
}

// Window returns a copy of the window with the given ID, or nil.
func (m *Module) Window(id int32) *Window {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.windows[id]
	if !ok {
		return nil
	}
	cp := *w
	cp.Slots = append([]proto.Slot(nil), w.Slots...)
	return &cp
}

// Slot returns the item in the given slot of the given window.
func (m *Module) Slot(windowID int32, slot int) (proto.Slot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.windows[windowID]
	if !ok || slot < 0 || slot >= len(w.Slots) {
		return proto.Slot{}, false
	}
	return w.Slots[slot], true
}

func (m *Module) HandlePacket(pkt *proto.WirePacket) {
	c := m.client
	if c.State() != proto.StatePlay {
		return
	}
	epoch := c.Epoch()

	switch pkt.PacketID {
	case proto.ClientboundID("window_open", epoch):
		m.handleOpen(pkt)
	case proto.ClientboundID("window_close", epoch):
		m.handleClose(pkt)
	case proto.ClientboundID("window_items", epoch):
		m.handleItems(pkt)
	case proto.ClientboundID("set_slot", epoch):
		m.handleSetSlot(pkt)
	}
}

func (m *Module) handleOpen(pkt *proto.WirePacket) {
	c := m.client
	r := pkt.Reader()

	id, err1 := r.ReadVarInt()
	winType, err2 := r.ReadVarInt()
	title, err3 := r.ReadString(proto.MaxStringLength)
	for _, err := range []error{err1, err2, err3} {
		if err != nil {
			c.ReportDecodeError("parse window open", err)
			return
		}
	}

	w := &Window{ID: id, Type: winType, Title: title}
	m.mu.Lock()
	m.windows[id] = w
	m.mu.Unlock()

	c.Emit(client.EventWindowOpen, id, winType, title)
}

func (m *Module) handleClose(pkt *proto.WirePacket) {
	c := m.client

	id, err := pkt.Reader().ReadUint8()
	if err != nil {
		c.ReportDecodeError("parse window close", err)
		return
	}

	m.mu.Lock()
	if int32(id) != PlayerWindowID {
		delete(m.windows, int32(id))
	}
	m.mu.Unlock()

	c.Emit(client.EventWindowClose, int32(id))
}

func (m *Module) handleItems(pkt *proto.WirePacket) {
	c := m.client
	epoch := c.Epoch()
	r := pkt.Reader()

	id, err := r.ReadUint8()
	if err != nil {
		c.ReportDecodeError("parse window items", err)
		return
	}
	count, err := r.ReadInt16()
	if err != nil {
		c.ReportDecodeError("parse window items", err)
		return
	}

	slots := make([]proto.Slot, 0, count)
	for i := int16(0); i < count; i++ {
		s, err := proto.ReadSlot(r, epoch)
		if err != nil {
			c.ReportDecodeError("parse window items", err)
			return
		}
		slots = append(slots, s)
	}

	m.mu.Lock()
	w, ok := m.windows[int32(id)]
	if !ok {
		w = &Window{ID: int32(id)}
		m.windows[int32(id)] = w
	}
	w.Slots = slots
	m.mu.Unlock()

	c.Emit(client.EventWindowItems, int32(id), slots)
}

func (m *Module) handleSetSlot(pkt *proto.WirePacket) {
	c := m.client
	epoch := c.Epoch()
	r := pkt.Reader()

	id, err1 := r.ReadUint8()
	stateID, err2 := r.ReadVarInt()
	slot, err3 := r.ReadInt16()
	for _, err := range []error{err1, err2, err3} {
		if err != nil {
			c.ReportDecodeError("parse set slot", err)
			return
		}
	}
	item, err := proto.ReadSlot(r, epoch)
	if err != nil {
		c.ReportDecodeError("parse set slot", err)
		return
	}

	m.mu.Lock()
	w, ok := m.windows[int32(id)]
	if !ok {
		w = &Window{ID: int32(id)}
		m.windows[int32(id)] = w
	}
	w.StateID = stateID
	if slot >= 0 {
		for int(slot) >= len(w.Slots) {
			w.Slots = append(w.Slots, proto.Slot{})
		}
		w.Slots[slot] = item
	}
	m.mu.Unlock()
}
