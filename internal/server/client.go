package server

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/servihub/servihub/internal/stats"
	"github.com/servihub/servihub/internal/types"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = (pongWait * 9) / 10
	maxEventSize = 4096
)

type Client struct {
	id        string
	conn      *websocket.Conn
	hub       *Hub
	log       *log.Logger
	user      types.User
	send      chan *ServerEvent
	rooms     map[string]struct{}
	roomsLock sync.RWMutex
	limiter   *rateLimiter
	stop      chan struct{}
	stopOnce  sync.Once
	reason    string
}

func NewClient(user types.User, conn *websocket.Conn, hub *Hub, l *log.Logger) *Client {
	return &Client{
		id:      uuid.NewString(),
		conn:    conn,
		hub:     hub,
		log:     l,
		user:    user,
		send:    make(chan *ServerEvent, 256),
		rooms:   make(map[string]struct{}),
		limiter: newRateLimiter(hub.cfg.RateLimit.MaxEvents, hub.cfg.RateLimit.Window),
		stop:    make(chan struct{}),
	}
}

func (c *Client) Id() string {
	return c.id
}

func (c *Client) User() types.User {
	return c.user
}

func (c *Client) Write() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.log.Println("write exiting")
	}()

	for {
		select {
		case ev, ok := <-c.send:
			if !ok {
				return
			}

			bytes, err := json.Marshal(ev)
			if err != nil {
				c.log.Println("failed to serialize event:", err)
				continue
			}

			if !c.sendMessage(websocket.TextMessage, bytes) {
				return
			}
		case <-c.stop:
			// flush anything already queued before closing so an
			// acknowledgment enqueued just before a forced disconnect
			// still reaches the far side
			for {
				select {
				case ev := <-c.send:
					bytes, err := json.Marshal(ev)
					if err != nil {
						continue
					}
					if !c.sendMessage(websocket.TextMessage, bytes) {
						return
					}
				default:
					return
				}
			}
		case <-ticker.C:
			if !c.sendMessage(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (c *Client) Read() {
	defer func() {
		c.conn.Close()
		c.cleanup()
		c.log.Println("read exiting")
	}()

	c.conn.SetReadLimit(maxEventSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(appData string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.log.Printf("ws: read: %v", err)
			}
			break
		}

		var ev ClientEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			c.log.Println("error parsing event:", err)
			c.queueEvent(ErrInvalidEvent(0))
			continue
		}

		if !c.limiter.allow() {
			c.hub.stats.Incr(stats.EventsRejected)
			c.queueEvent(ErrRateLimited(ev.Id))
			continue
		}

		c.hub.router.dispatch(c, &ev)
	}
}

// queueEvent enqueues ev for delivery without blocking. Returns false if
// the connection's buffer is full and the event was dropped.
func (c *Client) queueEvent(ev *ServerEvent) bool {
	select {
	case c.send <- ev:
	default:
		c.log.Println("failed to send event to client, channel is full")
		return false
	}

	return true
}

func (c *Client) sendMessage(msgType int, msg []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(msgType, msg); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			c.log.Printf("write message: %s", err)
		}
		return false
	}

	return true
}

// stopClient shuts the connection down, recording why. Safe to call more
// than once; only the first reason sticks.
func (c *Client) stopClient(reason string) {
	c.stopOnce.Do(func() {
		c.reason = reason
		close(c.stop)
	})
}

func (c *Client) closeReason() string {
	select {
	case <-c.stop:
		return c.reason
	default:
		return "connection closed"
	}
}

func (c *Client) cleanup() {
	c.stopClient("connection closed")

	select {
	case c.hub.deregisterChan <- c:
	case <-c.hub.done:
		// hub already drained everything during shutdown
	}
}

func (c *Client) addRoom(roomId string) {
	c.roomsLock.Lock()
	defer c.roomsLock.Unlock()

	c.rooms[roomId] = struct{}{}
}

func (c *Client) delRoom(roomId string) {
	c.roomsLock.Lock()
	defer c.roomsLock.Unlock()

	delete(c.rooms, roomId)
}

func (c *Client) inRoom(roomId string) bool {
	c.roomsLock.RLock()
	defer c.roomsLock.RUnlock()

	_, ok := c.rooms[roomId]
	return ok
}

func (c *Client) roomIds() []string {
	c.roomsLock.RLock()
	defer c.roomsLock.RUnlock()

	ids := make([]string, 0, len(c.rooms))
	for id := range c.rooms {
		ids = append(ids, id)
	}
	return ids
}
