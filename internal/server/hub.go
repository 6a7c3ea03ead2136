package server

import (
	"context"
	"errors"
	"log"
	"sync"
	"sync/atomic"

	"github.com/servihub/servihub/internal/config"
	"github.com/servihub/servihub/internal/database"
	"github.com/servihub/servihub/internal/notify"
	"github.com/servihub/servihub/internal/stats"
)

var ErrHubClosed = errors.New("hub is shutting down")

// Hub owns the realtime layer's shared state: the user-to-connection
// registry and the room membership table. Only this package mutates
// either; collaborators are read through injected interfaces.
type Hub struct {
	log        *log.Logger
	db         database.MarketRepository
	dispatcher notify.Dispatcher
	stats      stats.StatsProvider
	cfg        *config.Config
	router     *EventRouter

	registry *registry
	rooms    *roomTable

	clients     map[*Client]struct{}
	clientsLock sync.Mutex

	registerChan   chan *Client
	deregisterChan chan *Client
	stop           chan struct{}
	done           chan struct{}
	closed         atomic.Bool
}

func NewHub(logger *log.Logger, db database.MarketRepository, dispatcher notify.Dispatcher, sp stats.StatsProvider, cfg *config.Config) *Hub {
	h := &Hub{
		log:            logger,
		db:             db,
		dispatcher:     dispatcher,
		stats:          sp,
		cfg:            cfg,
		registry:       newRegistry(),
		rooms:          newRoomTable(),
		clients:        make(map[*Client]struct{}),
		registerChan:   make(chan *Client),
		deregisterChan: make(chan *Client),
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}
	h.router = newEventRouter(h)

	sp.RegisterMetric(stats.ActiveConnections)
	sp.RegisterMetric(stats.ActiveRooms)
	sp.RegisterMetric(stats.EventsDelivered)
	sp.RegisterMetric(stats.EventsRejected)

	return h
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.registerChan:
			h.handleRegister(c)
		case c := <-h.deregisterChan:
			h.handleDeregister(c)
		case <-h.stop:
			h.log.Println("closing all connections")
			h.clientsLock.Lock()
			for c := range h.clients {
				// the write pump flushes queued events, then closes the
				// transport on its way out
				c.stopClient("server shutting down")
			}
			h.clients = make(map[*Client]struct{})
			h.clientsLock.Unlock()

			h.registry.clear()
			h.rooms.clear()

			close(h.done)
			return
		}
	}
}

// Register admits an authenticated connection. The connection becomes
// the user's single reachable connection, superseding any prior one.
func (h *Hub) Register(c *Client) error {
	if h.closed.Load() {
		return ErrHubClosed
	}

	select {
	case h.registerChan <- c:
		return nil
	case <-h.done:
		return ErrHubClosed
	}
}

func (h *Hub) handleRegister(c *Client) {
	h.log.Printf("adding connection %s for user %q", c.id, c.user.Id)

	if prev := h.registry.register(c.user.Id, c); prev != nil {
		// the displaced connection is closed rather than left orphaned
		h.log.Printf("superseding connection %s for user %q", prev.id, c.user.Id)
		prev.stopClient("superseded by newer connection")
	}

	h.clientsLock.Lock()
	h.clients[c] = struct{}{}
	h.clientsLock.Unlock()

	h.stats.Incr(stats.ActiveConnections)
}

// handleDeregister runs the disconnect cleanup: registry entry, room
// memberships, and a presence-loss broadcast. Idempotent, and never
// fails; a connection already cleaned up is skipped.
func (h *Hub) handleDeregister(c *Client) {
	h.clientsLock.Lock()
	if _, ok := h.clients[c]; !ok {
		h.clientsLock.Unlock()
		return
	}
	delete(h.clients, c)
	h.clientsLock.Unlock()

	h.log.Printf("removing connection %s for user %q", c.id, c.user.Id)

	h.registry.unregister(c.user.Id, c)
	if pruned := h.rooms.leaveAll(c); pruned > 0 {
		h.stats.Add(stats.ActiveRooms, -pruned)
	}
	c.stopClient("connection closed")
	h.stats.Decr(stats.ActiveConnections)

	h.BroadcastAll(Broadcast(EventUserDisconnected, map[string]any{
		"userId": c.user.Id,
		"reason": c.closeReason(),
	}), c)
}

// Deregister queues disconnect cleanup for c. Used by tests and by the
// client read pump via cleanup.
func (h *Hub) Deregister(c *Client) {
	select {
	case h.deregisterChan <- c:
	case <-h.done:
	}
}

// DisconnectUser force-closes the live connection for userId, if any.
// The write pump flushes queued events before closing the transport.
func (h *Hub) DisconnectUser(userId, reason string) {
	if c, ok := h.registry.lookup(userId); ok {
		c.stopClient(reason)
	}
}

// joinRoom commits a room membership. Existence checks for the entity
// the room references happen in the event handlers before this call.
func (h *Hub) joinRoom(roomId string, c *Client) {
	if h.rooms.join(roomId, c) {
		h.stats.Incr(stats.ActiveRooms)
	}
}

func (h *Hub) dropRoom(roomId string) {
	if h.rooms.drop(roomId) {
		h.stats.Decr(stats.ActiveRooms)
	}
}

// EmitToUser delivers ev to the user's live connection. Returns false
// if the user is not currently reachable; that is not an error.
func (h *Hub) EmitToUser(userId string, ev *ServerEvent) bool {
	c, ok := h.registry.lookup(userId)
	if !ok {
		h.log.Printf("no active connection for user %q, dropping %q", userId, ev.Event)
		return false
	}

	if c.queueEvent(ev) {
		h.stats.Incr(stats.EventsDelivered)
		return true
	}
	return false
}

// BroadcastRoom fans ev out to every member of roomId except skip.
func (h *Hub) BroadcastRoom(roomId string, ev *ServerEvent, skip *Client) {
	n := h.rooms.broadcast(roomId, ev, skip)
	if n > 0 {
		h.stats.Add(stats.EventsDelivered, n)
	}
}

// BroadcastAll fans ev out to every connected client except skip.
func (h *Hub) BroadcastAll(ev *ServerEvent, skip *Client) {
	h.clientsLock.Lock()
	defer h.clientsLock.Unlock()

	var n int
	for c := range h.clients {
		if c == skip {
			continue
		}
		if c.queueEvent(ev) {
			n++
		}
	}
	if n > 0 {
		h.stats.Add(stats.EventsDelivered, n)
	}
}

// Shutdown stops accepting new connections, closes every existing one,
// and clears all registry/room state. It returns once the run loop has
// drained or ctx expires.
func (h *Hub) Shutdown(ctx context.Context) error {
	if !h.closed.CompareAndSwap(false, true) {
		return nil
	}

	h.log.Println("received shutdown signal")
	close(h.stop)

	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
