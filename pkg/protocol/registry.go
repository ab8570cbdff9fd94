package protocol

import (
	"fmt"
	"sort"
)

// Fixed packet IDs for the handshaking, status and login phases. These have
// been stable across every protocol revision this client speaks.
const (
	HandshakeID     int32 = 0x00 // serverbound, handshaking
	StatusRequestID int32 = 0x00 // serverbound, status
	StatusPingID    int32 = 0x01 // serverbound, status

	StatusResponseID int32 = 0x00 // clientbound, status

	LoginStartID int32 = 0x00 // serverbound, login

	LoginDisconnectID    int32 = 0x00 // clientbound, login
	EncryptionRequestID  int32 = 0x01 // clientbound, login
	LoginSuccessID       int32 = 0x02 // clientbound, login
	SetCompressionID     int32 = 0x03 // clientbound, login
)

// Handshake next-state values.
const (
	NextStateStatus int32 = 1
	NextStateLogin  int32 = 2
)

// DefaultEpoch is the protocol version assumed when negotiation fails (1.21.4).
const DefaultEpoch int32 = 769

// packetTables maps a protocol-version boundary to the play-state packet IDs
// valid from that version up to the next boundary. Lookup scans boundaries
// from newest to oldest; the first table containing the name wins, so a
// revision that did not renumber a packet inherits the older entry.
var packetTables = map[int32]map[string]int32{
	// 1.20.4
	765: {
		"keep_alive_clientbound":    0x24,
		"keep_alive_serverbound":    0x14,
		"join_game":                 0x26,
		"player_position":           0x36,
		"chat_message":              0x39,
		"disconnect_play":           0x1B,
		"health_update":             0x52,
		"entity_spawn":              0x01,
		"entity_destroy":            0x3D,
		"entity_move":               0x29,
		"chunk_data":                0x24,
		"block_change":              0x09,
		"window_open":               0x2F,
		"window_close":              0x61,
		"window_items":              0x12,
		"set_slot":                  0x13,
		"chat_serverbound":          0x06,
		"position_serverbound":      0x14,
		"position_look_serverbound": 0x15,
		"look_serverbound":          0x16,
		"player_digging":            0x1C,
		"block_placement":           0x2E,
		"use_item":                  0x2F,
		"click_window":              0x0D,
		"close_window_serverbound":  0x0D,
		"held_item_change":          0x1F,
		"entity_action":             0x1C,
		"interact_entity":           0x0E,
		"swing_arm":                 0x30,
		"teleport_confirm":          0x00,
	},
	// 1.21, after the mid-2024 renumbering
	767: {
		"keep_alive_clientbound":    0x26,
		"keep_alive_serverbound":    0x15,
		"join_game":                 0x2B,
		"player_position":           0x3B,
		"chat_message":              0x3C,
		"disconnect_play":           0x1D,
		"health_update":             0x5B,
		"entity_spawn":              0x01,
		"entity_destroy":            0x3F,
		"entity_move":               0x2B,
		"chunk_data":                0x27,
		"block_change":              0x0A,
		"window_open":               0x31,
		"window_close":              0x68,
		"window_items":              0x13,
		"set_slot":                  0x14,
		"position_serverbound":      0x15,
		"position_look_serverbound": 0x16,
		"look_serverbound":          0x17,
		"player_digging":            0x1E,
		"block_placement":           0x30,
		"use_item":                  0x31,
		"click_window":              0x0F,
		"close_window_serverbound":  0x0F,
		"held_item_change":          0x20,
		"entity_action":             0x1E,
		"interact_entity":           0x10,
		"swing_arm":                 0x32,
		"teleport_confirm":          0x00,
	},
}

// tableEpochs holds the table boundaries sorted newest first.
var tableEpochs = func() []int32 {
	epochs := make([]int32, 0, len(packetTables))
	for e := range packetTables {
		epochs = append(epochs, e)
	}
	sort.Slice(epochs, func(i, j int) bool { return epochs[i] > epochs[j] })
	return epochs
}()

// LookupID resolves a semantic packet name to its numeric ID for the given
// protocol version, falling back to the nearest older table.
func LookupID(name string, epoch int32) (int32, bool) {
	for _, boundary := range tableEpochs {
		if boundary > epoch {
			continue
		}
		if id, ok := packetTables[boundary][name]; ok {
			return id, true
		}
	}
	return 0, false
}

// ClientboundID resolves a clientbound packet name, returning the 0 sentinel
// when unknown: unresolved inbound packets are legally ignorable.
func ClientboundID(name string, epoch int32) int32 {
	id, _ := LookupID(name, epoch)
	return id
}

// ServerboundID resolves a serverbound packet name. Unknown resolution on the
// write path is a configuration error and must fail before any bytes reach
// the socket.
func ServerboundID(name string, epoch int32) (int32, error) {
	id, ok := LookupID(name, epoch)
	if !ok {
		return 0, fmt.Errorf("%w: %q has no ID at protocol %d", ErrUnknownPacket, name, epoch)
	}
	return id, nil
}

// protocolVersions maps release version strings to protocol version numbers.
var protocolVersions = map[string]int32{
	"1.21.4": 769,
	"1.21.3": 768,
	"1.21.1": 767,
	"1.21":   767,
	"1.20.6": 766,
	"1.20.5": 766,
	"1.20.4": 765,
	"1.20.2": 764,
	"1.20.1": 763,
	"1.19.4": 762,
	"1.19.3": 761,
	"1.19.2": 760,
	"1.18.2": 758,
	"1.17.1": 756,
	"1.16.5": 754,
	"1.15.2": 578,
	"1.14.4": 498,
	"1.13.2": 404,
	"1.12.2": 340,
	"1.11.2": 316,
	"1.10.2": 210,
	"1.9.4":  110,
	"1.8.9":  47,
}

// ProtocolVersion returns the protocol version for a release version string,
// defaulting to 1.20.4 (765) for unknown strings.
func ProtocolVersion(version string) int32 {
	if v, ok := protocolVersions[version]; ok {
		return v
	}
	return 765
}
