package protocol

// Slot is the wire representation of a single inventory item stack.
// A zero Slot is the empty slot.
type Slot struct {
	Present bool
	ItemID  int32
	Count   int32
}

// slotEncodingRevision is the first protocol version using the
// boolean-present slot layout (1.20.5). Older versions prefix the slot with
// a signed 16-bit count where <= 0 means empty.
const slotEncodingRevision = 766

// ReadSlot decodes an item slot for the given protocol version. Item
// component/NBT payloads are not decoded; a slot with trailing structured
// data only consumes the zero "no data" marker.
func ReadSlot(r *Reader, epoch int32) (Slot, error) {
	var s Slot
	if epoch >= slotEncodingRevision {
		present, err := r.ReadBool()
		if err != nil {
			return s, err
		}
		if !present {
			return s, nil
		}
		count, err := r.ReadUint8()
		if err != nil {
			return s, err
		}
		s.Present = true
		s.Count = int32(count)
	} else {
		count, err := r.ReadInt16()
		if err != nil {
			return s, err
		}
		if count <= 0 {
			return s, nil
		}
		s.Present = true
		s.Count = int32(count)
	}
	id, err := r.ReadVarInt()
	if err != nil {
		return s, err
	}
	s.ItemID = id
	if _, err := r.ReadUint8(); err != nil { // NBT/component marker, 0 = none
		return s, err
	}
	return s, nil
}

// WriteSlot encodes an item slot for the given protocol version, mirroring
// the ReadSlot layout. NBT is always written as absent.
func WriteSlot(w *Writer, epoch int32, s Slot) {
	if epoch >= slotEncodingRevision {
		w.WriteBool(s.Present)
		if !s.Present {
			return
		}
		w.WriteUint8(uint8(s.Count))
	} else {
		if !s.Present {
			w.WriteInt16(0)
			return
		}
		w.WriteInt16(int16(s.Count))
	}
	w.WriteVarInt(s.ItemID)
	w.WriteUint8(0)
}
