package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// WirePacket is one decoded inbound frame: the resolved numeric packet ID and
// its payload. Packets are transient, created per read and discarded after
// dispatch.
type WirePacket struct {
	PacketID int32
	Data     []byte
}

// Reader returns a primitive reader positioned at the start of the payload.
func (p *WirePacket) Reader() *Reader { return NewReader(p.Data) }

// readVarIntStream reads a VarInt byte by byte from a stream. Stream end on
// the first byte is the clean end-of-session condition.
func readVarIntStream(r io.Reader) (int32, error) {
	var one [1]byte
	var result uint32
	for i := 0; i < 5; i++ {
		if _, err := io.ReadFull(r, one[:]); err != nil {
			return 0, ErrConnectionClosed
		}
		result |= uint32(one[0]&0x7F) << (7 * i)
		if one[0]&0x80 == 0 {
			return int32(result), nil
		}
	}
	return 0, ErrVarIntTooLarge
}

// ReadFrame reads one length-prefixed frame from the stream and returns the
// contained packet. threshold < 0 means compression is disabled; otherwise
// the frame carries an uncompressed-length prefix and a zlib stream when that
// prefix is nonzero.
func ReadFrame(r io.Reader, threshold int) (*WirePacket, error) {
	length, err := readVarIntStream(r)
	if err != nil {
		return nil, err
	}
	if length <= 0 {
		return nil, fmt.Errorf("protocol: invalid frame length %d", length)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, ErrConnectionClosed
	}

	if threshold >= 0 {
		rd := NewReader(data)
		uncompressed, err := rd.ReadVarInt()
		if err != nil {
			return nil, err
		}
		rest := rd.ReadRemaining()
		if uncompressed > 0 {
			zr, err := zlib.NewReader(bytes.NewReader(rest))
			if err != nil {
				return nil, fmt.Errorf("protocol: inflate frame: %w", err)
			}
			inflated := make([]byte, uncompressed)
			if _, err := io.ReadFull(zr, inflated); err != nil {
				zr.Close()
				return nil, fmt.Errorf("protocol: inflate frame: %w", err)
			}
			zr.Close()
			data = inflated
		} else {
			// below-threshold frame, sent uncompressed
			data = rest
		}
	}

	rd := NewReader(data)
	id, err := rd.ReadVarInt()
	if err != nil {
		return nil, err
	}
	return &WirePacket{PacketID: id, Data: rd.ReadRemaining()}, nil
}

// WriteFrame frames a packet ID and payload and writes it to the stream,
// deflating when compression is enabled and the body reaches the threshold.
func WriteFrame(w io.Writer, threshold int, packetID int32, payload []byte) error {
	body := make([]byte, 0, VarIntLen(packetID)+len(payload))
	body = AppendVarInt(body, packetID)
	body = append(body, payload...)

	if threshold >= 0 {
		if len(body) >= threshold {
			var deflated bytes.Buffer
			zw := zlib.NewWriter(&deflated)
			if _, err := zw.Write(body); err != nil {
				zw.Close()
				return fmt.Errorf("protocol: deflate frame: %w", err)
			}
			if err := zw.Close(); err != nil {
				return fmt.Errorf("protocol: deflate frame: %w", err)
			}
			framed := AppendVarInt(nil, int32(len(body)))
			body = append(framed, deflated.Bytes()...)
		} else {
			body = append(AppendVarInt(nil, 0), body...)
		}
	}

	out := AppendVarInt(nil, int32(len(body)))
	out = append(out, body...)
	if _, err := w.Write(out); err != nil {
		if errors.Is(err, io.ErrClosedPipe) || errors.Is(err, io.EOF) {
			return ErrConnectionClosed
		}
		return err
	}
	return nil
}
