package server

import (
	"sync"
)

// Room key constructors. Chat rooms sort the participant pair so that
// either side resolves to the identical key.
func userRoom(userId string) string {
	return "user:" + userId
}

func chatRoom(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return "chat:" + a + ":" + b
}

func serviceRoom(serviceId string) string {
	return "service:" + serviceId
}

func reviewRoom(serviceId string) string {
	return "review:" + serviceId
}

func contactRoom(userId string) string {
	return "contact:" + userId
}

// roomTable tracks room membership. A room exists while it has members;
// the last leave prunes it.
type roomTable struct {
	mu    sync.Mutex
	rooms map[string]map[*Client]struct{}
}

func newRoomTable() *roomTable {
	return &roomTable{
		rooms: make(map[string]map[*Client]struct{}),
	}
}

// join adds c to roomId, creating the room on first join. Reports
// whether the room was created.
func (rt *roomTable) join(roomId string, c *Client) bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	members, ok := rt.rooms[roomId]
	if !ok {
		members = make(map[*Client]struct{})
		rt.rooms[roomId] = members
	}
	members[c] = struct{}{}
	c.addRoom(roomId)
	return !ok
}

// leave removes c from roomId, pruning the room once empty. Reports
// whether the room was pruned.
func (rt *roomTable) leave(roomId string, c *Client) bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	return rt.leaveLocked(roomId, c)
}

func (rt *roomTable) leaveLocked(roomId string, c *Client) bool {
	members, ok := rt.rooms[roomId]
	if !ok {
		return false
	}

	delete(members, c)
	c.delRoom(roomId)

	if len(members) == 0 {
		delete(rt.rooms, roomId)
		return true
	}
	return false
}

// leaveAll removes c from every room it had joined and returns how
// many rooms were pruned.
func (rt *roomTable) leaveAll(c *Client) int {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	var pruned int
	for _, roomId := range c.roomIds() {
		if rt.leaveLocked(roomId, c) {
			pruned++
		}
	}
	return pruned
}

// drop removes a room entirely, e.g. after the entity it mirrors is
// deleted.
func (rt *roomTable) drop(roomId string) bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	members, ok := rt.rooms[roomId]
	for c := range members {
		c.delRoom(roomId)
	}
	delete(rt.rooms, roomId)
	return ok
}

func (rt *roomTable) membersOf(roomId string) []*Client {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	members := make([]*Client, 0, len(rt.rooms[roomId]))
	for c := range rt.rooms[roomId] {
		members = append(members, c)
	}
	return members
}

// broadcast queues ev to every member of roomId except skip. Holding the
// table lock for the whole enqueue keeps the delivery order of two
// broadcasts to the same room identical for all members. A member whose
// send buffer is full is skipped; delivery to a departed connection is a
// no-op.
func (rt *roomTable) broadcast(roomId string, ev *ServerEvent, skip *Client) int {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	var delivered int
	for c := range rt.rooms[roomId] {
		if c == skip {
			continue
		}
		if c.queueEvent(ev) {
			delivered++
		}
	}
	return delivered
}

func (rt *roomTable) count() int {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	return len(rt.rooms)
}

func (rt *roomTable) clear() {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.rooms = make(map[string]map[*Client]struct{})
}
