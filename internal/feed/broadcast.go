// Package feed exposes the session's event stream to remote sinks over
// websockets, with a small HTTP API for snapshots and sends.
package feed

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/Sigmakib2/serialconsole/internal/session"
	"github.com/gorilla/websocket"
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func newClient(conn *websocket.Conn) *client {
	c := &client{
		conn: conn,
		send: make(chan []byte, 64),
	}
	go c.writePump()
	return c
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

func (c *client) close() {
	close(c.send)
}

// SnapshotFunc supplies the current session snapshot for new clients and
// the periodic snapshot broadcast.
type SnapshotFunc func() session.Snapshot

// Broadcaster fans session events out to websocket clients. Events are
// batched for up to the throttle interval before flushing; full snapshots
// go out on a fixed ticker so late joiners and lossy links converge.
type Broadcaster struct {
	mu       sync.RWMutex
	clients  map[*client]bool
	snapshot SnapshotFunc
	throttle time.Duration

	flushMu       sync.Mutex
	pendingEvents []session.Event
	flushTimer    *time.Timer

	snapshotTicker *time.Ticker
	stopOnce       sync.Once
	stopped        chan struct{}
}

func NewBroadcaster(snapshot SnapshotFunc, throttle, snapshotInterval time.Duration) *Broadcaster {
	b := &Broadcaster{
		clients:  make(map[*client]bool),
		snapshot: snapshot,
		throttle: throttle,
		stopped:  make(chan struct{}),
	}

	b.snapshotTicker = time.NewTicker(snapshotInterval)
	go b.snapshotLoop()

	return b
}

func (b *Broadcaster) AddClient(conn *websocket.Conn) *client {
	c := newClient(conn)

	b.mu.Lock()
	b.clients[c] = true
	b.mu.Unlock()

	msg := WSMessage{
		Type:    MsgSnapshot,
		Payload: SnapshotPayload{Snapshot: b.snapshot()},
	}
	data, _ := json.Marshal(msg)

	select {
	case c.send <- data:
	default:
		// Client too slow for even the greeting; it will catch up on the
		// next snapshot tick or get dropped.
	}

	return c
}

func (b *Broadcaster) RemoveClient(c *client) {
	b.mu.Lock()
	if _, ok := b.clients[c]; ok {
		delete(b.clients, c)
		c.close()
	}
	b.mu.Unlock()
}

// Publish queues one session event for broadcast. Safe to call from any
// goroutine.
func (b *Broadcaster) Publish(ev session.Event) {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	b.pendingEvents = append(b.pendingEvents, ev)

	if b.flushTimer == nil {
		b.flushTimer = time.AfterFunc(b.throttle, b.flush)
	}
}

func (b *Broadcaster) flush() {
	b.flushMu.Lock()
	events := b.pendingEvents
	b.pendingEvents = nil
	b.flushTimer = nil
	b.flushMu.Unlock()

	if len(events) == 0 {
		return
	}

	b.broadcast(WSMessage{
		Type:    MsgEvents,
		Payload: EventsPayload{Events: events},
	})
}

func (b *Broadcaster) snapshotLoop() {
	for {
		select {
		case <-b.stopped:
			return
		case <-b.snapshotTicker.C:
			b.broadcast(WSMessage{
				Type:    MsgSnapshot,
				Payload: SnapshotPayload{Snapshot: b.snapshot()},
			})
		}
	}
}

func (b *Broadcaster) broadcast(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("feed marshal error: %v", err)
		return
	}

	b.mu.RLock()
	clients := make([]*client, 0, len(b.clients))
	for c := range b.clients {
		clients = append(clients, c)
	}
	b.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- data:
		default:
			log.Printf("feed client too slow, disconnecting")
			b.RemoveClient(c)
		}
	}
}

func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Stop halts the snapshot ticker and disconnects all clients.
func (b *Broadcaster) Stop() {
	b.stopOnce.Do(func() {
		close(b.stopped)
		b.snapshotTicker.Stop()
		b.mu.Lock()
		for c := range b.clients {
			delete(b.clients, c)
			c.close()
		}
		b.mu.Unlock()
	})
}
