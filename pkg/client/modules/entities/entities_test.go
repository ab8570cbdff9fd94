package entities

import (
	"io"
	"log"
	"math"
	"testing"

	"github.com/go-mcbot/mcbot/pkg/client"
	proto "github.com/go-mcbot/mcbot/pkg/protocol"
)

const testEpoch = 765

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

func spawnPayload(id int32, typeID int32, x, y, z float64) []byte {
	w := proto.NewWriter()
	w.WriteVarInt(id)
	w.WriteUUID(proto.OfflineUUID("zombie"))
	w.WriteVarInt(typeID)
	w.WriteFloat64(x)
	w.WriteFloat64(y)
	w.WriteFloat64(z)
	w.WriteAngle(90)
	w.WriteAngle(0)
	return w.Bytes()
}

func TestEntitySpawnTracked(t *testing.T) {
	c, m := newTestClient(t, testEpoch)
	spawnID := proto.ClientboundID("entity_spawn", testEpoch)

	var spawns int
	c.On(client.EventEntitySpawn, func(args ...any) { spawns++ })

	m.HandlePacket(&proto.WirePacket{PacketID: spawnID, Data: spawnPayload(7, 32, 10, 64, -5)})

	e := m.Get(7)
	if e == nil {
		t.Fatal("entity 7 not tracked after spawn")
	}
	if e.TypeID != 32 || e.X != 10 || e.Y != 64 || e.Z != -5 {
		t.Fatalf("entity = %+v", e)
	}
	if e.UUID == "" {
		t.Fatal("entity UUID not recorded")
	}
	if spawns != 1 {
		t.Fatalf("spawn events = %d, want 1", spawns)
	}
	if m.Count() != 1 {
		t.Fatalf("tracked entities = %d, want 1", m.Count())
	}
}

func TestEntityRelativeMove(t *testing.T) {
	c, m := newTestClient(t, testEpoch)
	spawnID := proto.ClientboundID("entity_spawn", testEpoch)
	moveID := proto.ClientboundID("entity_move", testEpoch)

	m.HandlePacket(&proto.WirePacket{PacketID: spawnID, Data: spawnPayload(7, 32, 10, 64, -5)})

	var moved int
	c.On(client.EventEntityMoved, func(args ...any) { moved++ })

	// one full block east, half a block down: fixed-point 1/4096 units
	w := proto.NewWriter()
	w.WriteVarInt(7)
	w.WriteInt16(4096)
	w.WriteInt16(-2048)
	w.WriteInt16(0)
	w.WriteAngle(0)
	w.WriteAngle(0)
	w.WriteBool(true)
	m.HandlePacket(&proto.WirePacket{PacketID: moveID, Data: w.Bytes()})

	e := m.Get(7)
	if e == nil {
		t.Fatal("entity lost after move")
	}
	if e.X != 11 || math.Abs(e.Y-63.5) > 1e-9 || e.Z != -5 {
		t.Fatalf("entity at (%v, %v, %v), want (11, 63.5, -5)", e.X, e.Y, e.Z)
	}
	if !e.OnGround {
		t.Fatal("on-ground flag not applied")
	}
	if moved != 1 {
		t.Fatalf("move events = %d, want 1", moved)
	}
}

func TestEntityMoveForUnknownEntityIgnored(t *testing.T) {
	c, m := newTestClient(t, testEpoch)
	moveID := proto.ClientboundID("entity_move", testEpoch)

	var moved int
	c.On(client.EventEntityMoved, func(args ...any) { moved++ })

	w := proto.NewWriter()
	w.WriteVarInt(99)
	w.WriteInt16(4096)
	w.WriteInt16(0)
	w.WriteInt16(0)
	w.WriteAngle(0)
	w.WriteAngle(0)
	w.WriteBool(false)
	m.HandlePacket(&proto.WirePacket{PacketID: moveID, Data: w.Bytes()})

	if moved != 0 {
		t.Fatalf("move events for unknown entity = %d, want 0", moved)
	}
}

func TestEntityDestroyBatch(t *testing.T) {
	c, m := newTestClient(t, testEpoch)
	spawnID := proto.ClientboundID("entity_spawn", testEpoch)
	destroyID := proto.ClientboundID("entity_destroy", testEpoch)

	m.HandlePacket(&proto.WirePacket{PacketID: spawnID, Data: spawnPayload(1, 10, 0, 0, 0)})
	m.HandlePacket(&proto.WirePacket{PacketID: spawnID, Data: spawnPayload(2, 10, 0, 0, 0)})

	var gone int
	c.On(client.EventEntityGone, func(args ...any) { gone++ })

	w := proto.NewWriter()
	w.WriteVarInt(2)
	w.WriteVarInt(1)
	w.WriteVarInt(2)
	m.HandlePacket(&proto.WirePacket{PacketID: destroyID, Data: w.Bytes()})

	if m.Count() != 0 {
		t.Fatalf("tracked entities = %d after destroy, want 0", m.Count())
	}
	if gone != 2 {
		t.Fatalf("gone events = %d, want 2", gone)
	}
}

func TestJoinGameNotMistakenForEntityMove(t *testing.T) {
	// At 1.21 join game and relative move share clientbound 0x2B. The
	// join game handler owns that ID, so the payload must not be read
	// as an entity delta.
	c, m := newTestClient(t, 767)
	spawnID := proto.ClientboundID("entity_spawn", 767)

	m.HandlePacket(&proto.WirePacket{PacketID: spawnID, Data: spawnPayload(7, 32, 10, 64, -5)})

	var moved int
	c.On(client.EventEntityMoved, func(args ...any) { moved++ })

	w := proto.NewWriter()
	w.WriteInt32(7) // join game entity ID, not a VarInt
	w.WriteBool(false)
	id := proto.ClientboundID("join_game", 767)
	m.HandlePacket(&proto.WirePacket{PacketID: id, Data: w.Bytes()})

	e := m.Get(7)
	if e == nil {
		t.Fatal("entity lost")
	}
	if e.X != 10 || e.Y != 64 || e.Z != -5 {
		t.Fatalf("entity at (%v, %v, %v), want (10, 64, -5)", e.X, e.Y, e.Z)
	}
	if moved != 0 {
		t.Fatalf("move events = %d, want 0", moved)
	}
}
