package protocol

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"
)

// DefaultPort is the default Minecraft server port.
const DefaultPort = "25565"

// TCPClient owns one bot-to-server link: the socket, the negotiated protocol
// version, the connection state and the compression threshold. Reads happen
// from a single receive loop; writes are serialized on a mutex so concurrent
// senders never interleave frames.
type TCPClient struct {
	conn net.Conn
	br   *bufio.Reader

	writeMu sync.Mutex

	mu        sync.Mutex
	state     State
	threshold int
	epoch     int32
}

func NewTCPClient() *TCPClient {
	return &TCPClient{state: StateHandshaking, threshold: -1, epoch: DefaultEpoch}
}

// NewTCPClientFromConn wraps an established connection. Used by the status
// ping and by tests that drive a session over an in-memory pipe.
func NewTCPClientFromConn(conn net.Conn) *TCPClient {
	c := NewTCPClient()
	c.attach(conn)
	return c
}

func (c *TCPClient) attach(conn net.Conn) {
	c.conn = conn
	c.br = bufio.NewReader(conn)
}

// SplitAddress splits "host", "host:port" into host and port, applying the
// default port when absent.
func SplitAddress(address string) (host, port string) {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return address, DefaultPort
	}
	return host, port
}

// Connect dials the server. OS-level dial errors are wrapped with host/port
// context in a single connection-failure kind.
func (c *TCPClient) Connect(address string) (host, port string, err error) {
	host, port = SplitAddress(address)
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, port), 30*time.Second)
	if err != nil {
		return "", "", fmt.Errorf("connect to %s:%s: %w", host, port, err)
	}
	c.attach(conn)
	return host, port, nil
}

// Connected reports whether the socket is open.
func (c *TCPClient) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil && c.state != StateClosed
}

func (c *TCPClient) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetState transitions the connection state. Closed is terminal: any
// transition attempted from it is a no-op.
func (c *TCPClient) SetState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return
	}
	c.state = s
}

func (c *TCPClient) Epoch() int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// SetEpoch records the negotiated protocol version. Immutable once the
// session is past login, so callers set it before the handshake.
func (c *TCPClient) SetEpoch(epoch int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch = epoch
}

func (c *TCPClient) CompressionThreshold() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.threshold
}

// SetCompressionThreshold applies the server's compression directive. The
// threshold is set once per session and never decreases.
func (c *TCPClient) SetCompressionThreshold(threshold int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.threshold >= 0 && threshold < c.threshold {
		return
	}
	c.threshold = threshold
}

// ReadWirePacket reads and unframes the next inbound packet. A stream that
// ends at or inside a frame yields ErrConnectionClosed.
func (c *TCPClient) ReadWirePacket() (*WirePacket, error) {
	if c.br == nil {
		return nil, ErrConnectionClosed
	}
	return ReadFrame(c.br, c.CompressionThreshold())
}

// WritePacket resolves a serverbound packet name for the session's protocol
// version, frames the payload and writes it. Unknown names fail before any
// bytes reach the socket.
func (c *TCPClient) WritePacket(name string, payload []byte) error {
	id, err := ServerboundID(name, c.Epoch())
	if err != nil {
		return err
	}
	return c.WriteRawPacket(id, payload)
}

// WriteRawPacket frames and writes a packet by numeric ID. Used for the
// handshaking/login phases whose IDs are fixed constants.
func (c *TCPClient) WriteRawPacket(id int32, payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.conn == nil {
		return ErrConnectionClosed
	}
	return WriteFrame(c.conn, c.CompressionThreshold(), id, payload)
}

// Close shuts the socket and transitions to Closed. Safe to call more than
// once.
func (c *TCPClient) Close() error {
	c.mu.Lock()
	conn := c.conn
	closed := c.state == StateClosed
	c.state = StateClosed
	c.mu.Unlock()
	if conn == nil || closed {
		return nil
	}
	return conn.Close()
}

// statusResponse is the subset of the server list ping JSON we care about.
type statusResponse struct {
	Version struct {
		Name     string `json:"name"`
		Protocol int32  `json:"protocol"`
	} `json:"version"`
}

// PingStatus opens a short-lived status connection and returns the server's
// protocol version from the status response JSON. Used to discover the wire
// format when no explicit version is configured.
func PingStatus(address string, timeout time.Duration) (int32, error) {
	host, port := SplitAddress(address)
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, port), timeout)
	if err != nil {
		return 0, fmt.Errorf("status ping %s:%s: %w", host, port, err)
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))

	portNum, _ := strconv.Atoi(port)

	w := NewWriter()
	w.WriteVarInt(DefaultEpoch)
	if err := w.WriteString(host, MaxStringLength); err != nil {
		return 0, err
	}
	w.WriteUint16(uint16(portNum))
	w.WriteVarInt(NextStateStatus)
	if err := WriteFrame(conn, -1, HandshakeID, w.Bytes()); err != nil {
		return 0, err
	}
	if err := WriteFrame(conn, -1, StatusRequestID, nil); err != nil {
		return 0, err
	}

	pkt, err := ReadFrame(bufio.NewReader(conn), -1)
	if err != nil {
		return 0, err
	}
	if pkt.PacketID != StatusResponseID {
		return 0, fmt.Errorf("status ping: unexpected packet 0x%02X", pkt.PacketID)
	}
	raw, err := pkt.Reader().ReadString(MaxStringLength)
	if err != nil {
		return 0, err
	}
	var status statusResponse
	if err := json.Unmarshal([]byte(raw), &status); err != nil {
		return 0, fmt.Errorf("status ping: %w", err)
	}
	return status.Version.Protocol, nil
}
