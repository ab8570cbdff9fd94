package client

import (
	"context"
	"errors"
	"sync"
)

// EventName identifies a domain event emitted by the client or its modules.
type EventName string

const (
	EventConnect         EventName = "connect"
	EventLogin           EventName = "login"
	EventSpawn           EventName = "spawn"
	EventMove            EventName = "move"             // (x, y, z float64)
	EventChat            EventName = "chat"             // (sender, text, translate string)
	EventHealth          EventName = "health"           // ()
	EventDeath           EventName = "death"            // ()
	EventEntitySpawn     EventName = "entity_spawn"     // (id, typeID int32, x, y, z float64)
	EventEntityGone      EventName = "entity_gone"      // (id, typeID int32, x, y, z float64)
	EventEntityMoved     EventName = "entity_moved"     // (id, typeID int32, x, y, z float64)
	EventBlockUpdate     EventName = "block_update"     // (x, y, z, stateID int32)
	EventChunkColumnLoad EventName = "chunk_column_load" // (cx, cz int32)
	EventWindowOpen      EventName = "window_open"      // (id, windowType int32, title string)
	EventWindowClose     EventName = "window_close"     // (windowID int32)
	EventWindowItems     EventName = "window_items"     // (windowID int32, slots []protocol.Slot)
	EventEnd             EventName = "end"              // (reason string)
	EventError           EventName = "error"            // (err error)

	EventDiggingCompleted EventName = "digging_completed"
	EventDiggingAborted   EventName = "digging_aborted"
	EventSleep            EventName = "sleep"
	EventWake             EventName = "wake"
)

// EventHandler receives the event's payload arguments.
type EventHandler func(args ...any)

// ErrSessionEnded is returned from WaitFor when the session ends before the
// awaited event fires. Pending waiters must never hang across a disconnect.
var ErrSessionEnded = errors.New("client: session ended")

type eventBus struct {
	mu     sync.Mutex
	nextID int
	// handler sets keyed by registration ID so removal is O(1) and stable
	// while other handlers for the same event come and go
	persistent map[EventName]map[int]EventHandler
	oneShot    map[EventName]map[int]EventHandler
}

func newEventBus() *eventBus {
	return &eventBus{
		persistent: make(map[EventName]map[int]EventHandler),
		oneShot:    make(map[EventName]map[int]EventHandler),
	}
}

func (b *eventBus) add(table map[EventName]map[int]EventHandler, e EventName, h EventHandler) int {
	if table[e] == nil {
		table[e] = make(map[int]EventHandler)
	}
	b.nextID++
	table[e][b.nextID] = h
	return b.nextID
}

// On registers a persistent handler and returns its remove function. The
// remove function is idempotent.
func (c *Client) On(e EventName, h EventHandler) (remove func()) {
	b := c.events
	b.mu.Lock()
	id := b.add(b.persistent, e, h)
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		delete(b.persistent[e], id)
		b.mu.Unlock()
	}
}

// Once registers a handler that is removed after its first invocation.
func (c *Client) Once(e EventName, h EventHandler) {
	b := c.events
	b.mu.Lock()
	b.add(b.oneShot, e, h)
	b.mu.Unlock()
}

// Emit delivers an event to every registered handler. One-shot handlers are
// unregistered before they run. Handlers are called outside the bus lock so
// they may register or wait on further events.
func (c *Client) Emit(e EventName, args ...any) {
	b := c.events
	b.mu.Lock()
	handlers := make([]EventHandler, 0, len(b.persistent[e])+len(b.oneShot[e]))
	for _, h := range b.persistent[e] {
		handlers = append(handlers, h)
	}
	for _, h := range b.oneShot[e] {
		handlers = append(handlers, h)
	}
	delete(b.oneShot, e)
	b.mu.Unlock()

	for _, h := range handlers {
		h(args...)
	}
}

// WaitFor blocks until the event fires, the context expires, or the session
// ends, whichever comes first. The temporary listener is unregistered on
// every path; a session teardown releases the wait with ErrSessionEnded
// rather than leaving it hanging.
func (c *Client) WaitFor(ctx context.Context, e EventName) ([]any, error) {
	ch := make(chan []any, 1)
	remove := c.On(e, func(args ...any) {
		select {
		case ch <- args:
		default:
		}
	})
	defer remove()

	select {
	case args := <-ch:
		return args, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.sessionDone():
		return nil, ErrSessionEnded
	}
}
