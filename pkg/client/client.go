package client

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/go-mcbot/mcbot/pkg/protocol"
	"github.com/go-mcbot/mcbot/tui"
)

// Packet is a queued serverbound intent: a semantic packet name and its
// encoded payload. The ID is resolved against the session's protocol version
// at write time.
type Packet struct {
	Name    string
	Payload []byte
}

type Client struct {
	*protocol.TCPClient

	// connection
	Address  string
	Username string
	// Version is the release version string ("1.20.4"). Empty means the
	// protocol version is discovered with a status ping before login.
	Version string
	Verbose bool

	// reconnection
	MaxReconnectAttempts int
	shouldReconnect      bool
	forceStopped         bool

	// TUI
	Interactive bool
	MaxLogLines int

	Logger              *log.Logger
	OutgoingPacketQueue chan Packet

	// identity (populated during connect)
	UUID uuid.UUID

	// modules
	modules       []Module
	modulesByName map[string]Module
	handlers      []Handler

	events *eventBus

	// held movement intents
	controlMu sync.Mutex
	controls  map[string]bool

	// sequence counters
	seqMu      sync.Mutex
	sequence   int32
	teleportID int32

	// in-flight Dig, if any
	digMu     sync.Mutex
	digCancel context.CancelFunc

	// populated after Connect()
	resolvedHost string
	resolvedPort string

	// session lifetime
	sessionMu sync.Mutex
	done      chan struct{}
	endOnce   *sync.Once

	tuiProgram *tea.Program
}

// New creates a minimal client. Register modules before calling ConnectAndStart.
func New(address, username string) *Client {
	return &Client{
		TCPClient:            protocol.NewTCPClient(),
		Address:              address,
		Username:             username,
		MaxReconnectAttempts: 5,
		MaxLogLines:          500,
		OutgoingPacketQueue:  make(chan Packet, 100),
		Logger:               log.New(os.Stdout, "", log.LstdFlags),
		modulesByName:        make(map[string]Module),
		events:               newEventBus(),
		controls:             newControls(),
		done:                 make(chan struct{}),
		endOnce:              new(sync.Once),
	}
}

// ResolvedAddr returns the resolved host and port after Connect().
func (c *Client) ResolvedAddr() (host, port string) {
	return c.resolvedHost, c.resolvedPort
}

// Register adds a module to the client. Panics on duplicate name.
func (c *Client) Register(m Module) {
	if _, exists := c.modulesByName[m.Name()]; exists {
		panic("module already registered: " + m.Name())
	}
	c.modules = append(c.modules, m)
	c.modulesByName[m.Name()] = m
	m.Init(c)
}

// Module returns a registered module by name, or nil.
func (c *Client) Module(name string) Module {
	return c.modulesByName[name]
}

// RegisterHandler appends a lightweight packet callback (escape hatch).
func (c *Client) RegisterHandler(h Handler) {
	c.handlers = append(c.handlers, h)
}

// SendPacket queues a packet for outgoing transmission. Once the session
// has ended the queue worker is gone, so the packet is dropped instead of
// blocking the caller.
func (c *Client) SendPacket(pkt Packet) {
	select {
	case c.OutgoingPacketQueue <- pkt:
	case <-c.sessionDone():
	}
}

// SendChatMessage forwards to the chat module. Satisfies tui.ClientInterface.
func (c *Client) SendChatMessage(msg string) error {
	if m := c.Module("chat"); m != nil {
		if cms, ok := m.(ChatMessageSender); ok {
			return cms.SendMessage(msg)
		}
	}
	return fmt.Errorf("chat module not registered")
}

// SendCommand forwards to the chat module. Satisfies tui.ClientInterface.
func (c *Client) SendCommand(cmd string) error {
	if m := c.Module("chat"); m != nil {
		if cms, ok := m.(ChatMessageSender); ok {
			return cms.SendCommand(cmd)
		}
	}
	return fmt.Errorf("chat module not registered")
}

// GetUsername returns the client's username (satisfies tui.ClientInterface).
func (c *Client) GetUsername() string { return c.Username }

// GetAddress returns the server address (satisfies tui.ClientInterface).
func (c *Client) GetAddress() string { return c.Address }

// GetMaxLogLines returns the maximum log lines setting (satisfies tui.ClientInterface).
func (c *Client) GetMaxLogLines() int { return c.MaxLogLines }

// EnableInput enables the chat input in the TUI.
func (c *Client) EnableInput() {
	tui.EnableInput(c.tuiProgram)
}

// NextSequence returns the next dig/place sequence number.
func (c *Client) NextSequence() int32 {
	c.seqMu.Lock()
	defer c.seqMu.Unlock()
	c.sequence++
	return c.sequence
}

// SetTeleportID records the most recent server-supplied teleport ID.
func (c *Client) SetTeleportID(id int32) {
	c.seqMu.Lock()
	c.teleportID = id
	c.seqMu.Unlock()
}

// TeleportID returns the most recent server-supplied teleport ID.
func (c *Client) TeleportID() int32 {
	c.seqMu.Lock()
	defer c.seqMu.Unlock()
	return c.teleportID
}

// Disconnect tears the session down. If force is true, no reconnect is
// attempted.
func (c *Client) Disconnect(force bool) error {
	c.shouldReconnect = !force
	if force {
		c.forceStopped = true
	}
	c.endSession("disconnecting")
	return nil
}

// DisconnectWithReason tears the session down, surfacing the given reason on
// the end event. Used for server-initiated disconnects.
func (c *Client) DisconnectWithReason(reason string) {
	c.shouldReconnect = true
	c.endSession(reason)
}

// ConnectAndStart connects, negotiates the protocol version, and runs the
// packet loop until the session ends for good.
func (c *Client) ConnectAndStart(ctx context.Context) error {
	c.forceStopped = false

	if c.Interactive {
		program, writer := tui.Start(c)
		c.tuiProgram = program
		c.Logger = log.New(writer, "", log.LstdFlags)
		defer func() { c.tuiProgram = nil }()

		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		g := new(errgroup.Group)
		g.Go(func() error {
			defer cancel()
			_, err := program.Run()
			c.Disconnect(true)
			return err
		})
		g.Go(func() error {
			defer program.Quit()
			return c.runConnectionLoop(runCtx)
		})
		return g.Wait()
	}

	return c.runConnectionLoop(ctx)
}

// ServeConn runs one session over an established connection, skipping
// dialing, version discovery and the login handshake. The caller owns state
// and epoch setup on c before calling.
func (c *Client) ServeConn(ctx context.Context, conn net.Conn) error {
	tcp := protocol.NewTCPClientFromConn(conn)
	tcp.SetEpoch(c.Epoch())
	tcp.SetState(c.State())
	c.TCPClient = tcp
	c.resetSession()
	for _, m := range c.modules {
		m.Reset()
	}
	go c.outgoingQueueWorker()
	return c.receiveLoop(ctx)
}

func (c *Client) runConnectionLoop(ctx context.Context) error {
	attempts := 0
	maxAttempts := c.MaxReconnectAttempts

	for {
		c.shouldReconnect = false
		err := c.connectAndStartOnce(ctx)
		if err == nil || ctx.Err() != nil {
			return err
		}

		if !errors.Is(err, protocol.ErrConnectionClosed) {
			c.Logger.Printf("connection error: %v", err)
		}

		if c.forceStopped || !c.shouldReconnect || maxAttempts == 0 {
			return err
		}

		attempts++
		if maxAttempts > 0 && attempts > maxAttempts {
			c.Logger.Printf("max reconnect attempts (%d) reached, giving up", maxAttempts)
			return err
		}
		c.Logger.Printf("reconnecting in 3 seconds... (attempt %d/%d)", attempts, maxAttempts)

		select {
		case <-time.After(3 * time.Second):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Client) connectAndStartOnce(ctx context.Context) error {
	c.TCPClient = protocol.NewTCPClient()
	c.resetSession()

	for _, m := range c.modules {
		m.Reset()
	}

	epoch := c.negotiateEpoch()

	host, port, err := c.Connect(c.Address)
	if err != nil {
		return err
	}
	c.resolvedHost = host
	c.resolvedPort = port
	c.SetEpoch(epoch)

	if c.Username == "" {
		c.Username = "Player"
	}
	c.UUID = protocol.OfflineUUID(c.Username)

	c.Emit(EventConnect)

	// the protocol module sends handshake + login start here
	for _, m := range c.modules {
		if ch, ok := m.(ConnectHandler); ok {
			ch.OnConnect()
		}
	}

	go c.outgoingQueueWorker()

	return c.receiveLoop(ctx)
}

// negotiateEpoch resolves the session's protocol version: the configured
// release version if set, otherwise a throwaway status ping, otherwise the
// fixed default.
func (c *Client) negotiateEpoch() int32 {
	if c.Version != "" {
		return protocol.ProtocolVersion(c.Version)
	}
	v, err := protocol.PingStatus(c.Address, 5*time.Second)
	if err != nil || v <= 0 {
		c.Logger.Printf("status ping failed (%v), assuming protocol %d", err, protocol.DefaultEpoch)
		return protocol.DefaultEpoch
	}
	if c.Verbose {
		c.Logger.Printf("discovered protocol version %d", v)
	}
	return v
}

func (c *Client) outgoingQueueWorker() {
	done := c.sessionDone()
	for {
		select {
		case pkt := <-c.OutgoingPacketQueue:
			if err := c.WritePacket(pkt.Name, pkt.Payload); err != nil {
				c.Logger.Println("error writing packet from queue:", err)
			}
		case <-done:
			return
		}
	}
}

func (c *Client) receiveLoop(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			c.endSession("context canceled")
			return ctx.Err()
		}

		wire, err := c.ReadWirePacket()
		if err != nil {
			if errors.Is(err, protocol.ErrConnectionClosed) {
				// clean end of stream, not an error
				if !c.forceStopped {
					c.shouldReconnect = true
				}
				c.endSession("connection closed")
				return err
			}
			c.Emit(EventError, err)
			c.shouldReconnect = true
			c.endSession(err.Error())
			return err
		}

		c.dispatch(wire)
	}
}

// ReportDecodeError handles a packet decode failure inside a module
// handler. A corrupt length prefix means the stream can no longer be
// trusted, so those surface an error event and end the session; anything
// else is logged and the packet skipped.
func (c *Client) ReportDecodeError(what string, err error) {
	c.Logger.Printf("%s: %v", what, err)
	if errors.Is(err, protocol.ErrVarIntTooLarge) ||
		errors.Is(err, protocol.ErrVarLongTooLarge) ||
		errors.Is(err, protocol.ErrStringTooLong) {
		c.Emit(EventError, err)
		c.shouldReconnect = false
		c.endSession(err.Error())
	}
}

// dispatch routes one packet through every module and handler. A panicking
// handler ends the session instead of the process.
func (c *Client) dispatch(wire *protocol.WirePacket) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("client: panic handling packet 0x%02X: %v", wire.PacketID, r)
			c.Emit(EventError, err)
			c.endSession(err.Error())
		}
	}()

	for _, m := range c.modules {
		m.HandlePacket(wire)
	}
	for _, h := range c.handlers {
		h(c, wire)
	}
}

func (c *Client) resetSession() {
	c.sessionMu.Lock()
	c.done = make(chan struct{})
	c.endOnce = new(sync.Once)
	c.sessionMu.Unlock()
}

func (c *Client) sessionDone() <-chan struct{} {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()
	return c.done
}

// endSession performs one-time session teardown: state to Closed, socket
// closed, end event emitted, pending WaitFor consumers released.
func (c *Client) endSession(reason string) {
	c.sessionMu.Lock()
	once := c.endOnce
	done := c.done
	c.sessionMu.Unlock()

	once.Do(func() {
		c.SetState(protocol.StateClosed)
		_ = c.TCPClient.Close()
		c.Emit(EventEnd, reason)
		close(done)
	})
}
