package protocol

import "errors"

var (
	// ErrVarIntTooLarge is returned when a VarInt runs past 5 bytes.
	ErrVarIntTooLarge = errors.New("protocol: VarInt too large")
	// ErrVarLongTooLarge is returned when a VarLong runs past 10 bytes.
	ErrVarLongTooLarge = errors.New("protocol: VarLong too large")
	// ErrStringTooLong is returned when a string exceeds the declared maximum,
	// either as a hostile length prefix on decode or an oversized value on encode.
	ErrStringTooLong = errors.New("protocol: string too long")
	// ErrTruncated is returned when packet data ends before a field is complete.
	ErrTruncated = errors.New("protocol: truncated packet data")
	// ErrConnectionClosed signals that the stream ended at or inside a frame
	// boundary. It is the normal end-of-session condition, not a decode error.
	ErrConnectionClosed = errors.New("protocol: connection closed")
	// ErrUnknownPacket is returned when a serverbound packet name has no ID for
	// the session's protocol version. Unknown clientbound IDs are ignorable;
	// sending with an unresolved ID is a configuration error.
	ErrUnknownPacket = errors.New("protocol: unknown packet")
	// ErrEncryptionUnsupported is returned when the server requests protocol
	// encryption, which this client does not implement.
	ErrEncryptionUnsupported = errors.New("protocol: encryption not implemented")
)
