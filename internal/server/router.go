package server

import (
	"database/sql"
	"errors"
	"log"

	"github.com/servihub/servihub/internal/database"
	"github.com/servihub/servihub/internal/notify"
)

// EventRouter maps inbound events to handlers bound to the sending
// connection's verified identity. Every handler follows the same
// template: validate the payload, check referenced entities exist,
// mutate through the repository, fan the result out, acknowledge.
type EventRouter struct {
	hub        *Hub
	db         database.MarketRepository
	dispatcher notify.Dispatcher
	log        *log.Logger
}

func newEventRouter(h *Hub) *EventRouter {
	return &EventRouter{
		hub:        h,
		db:         h.db,
		dispatcher: h.dispatcher,
		log:        h.log,
	}
}

// dispatch runs the handler for ev and guarantees exactly one
// acknowledgment per inbound event. A panicking handler is converted
// into a server-error acknowledgment; it never takes the process or
// other connections down.
func (rt *EventRouter) dispatch(c *Client, ev *ClientEvent) {
	defer func() {
		if r := recover(); r != nil {
			rt.log.Printf("panic handling %q from user %q: %v", ev.Event, c.user.Id, r)
			c.queueEvent(ErrInternal(ev.Id))
		}
	}()

	var ack *ServerEvent
	switch ev.Event {
	case EventJoinUserRoom:
		ack = rt.handleJoinUserRoom(c, ev)
	case EventUpdateUser:
		ack = rt.handleUpdateUser(c, ev)
	case EventDeleteUser:
		ack = rt.handleDeleteUser(c, ev)
	case EventUpdateLocation:
		ack = rt.handleUpdateLocation(c, ev)
	case EventFindNearbyServices:
		ack = rt.handleFindNearbyServices(c, ev)
	case EventJoinChatRoom:
		ack = rt.handleJoinChatRoom(c, ev)
	case EventSendMessage:
		ack = rt.handleSendMessage(c, ev)
	case EventMarkMessageAsRead:
		ack = rt.handleMarkMessageAsRead(c, ev)
	case EventJoinServiceRoom:
		ack = rt.handleJoinServiceRoom(c, ev)
	case EventCreateService:
		ack = rt.handleCreateService(c, ev)
	case EventUpdateService:
		ack = rt.handleUpdateService(c, ev)
	case EventDeleteService:
		ack = rt.handleDeleteService(c, ev)
	case EventJoinReviewRoom:
		ack = rt.handleJoinReviewRoom(c, ev)
	case EventCreateReview:
		ack = rt.handleCreateReview(c, ev)
	case EventUpdateReview:
		ack = rt.handleUpdateReview(c, ev)
	case EventDeleteReview:
		ack = rt.handleDeleteReview(c, ev)
	case EventJoinContactRoom:
		ack = rt.handleJoinContactRoom(c, ev)
	case EventCreateContact:
		ack = rt.handleCreateContact(c, ev)
	default:
		ack = ErrUnknownEvent(ev.Id, ev.Event)
	}

	// a nil ack means the handler already acknowledged, e.g. before a
	// forced disconnect
	if ack != nil {
		c.queueEvent(ack)
	}
}

// repoError converts a repository failure into an acknowledgment. A
// missing row surfaces as not-found; anything else is logged and
// reported as a generic server error so no internal detail leaks.
func (rt *EventRouter) repoError(id int, op, notFoundMsg string, err error) *ServerEvent {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound(id, notFoundMsg)
	}

	rt.log.Printf("%s: %v", op, err)
	return ErrInternal(id)
}
