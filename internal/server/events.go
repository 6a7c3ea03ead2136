package server

import (
	"encoding/json"
	"net/http"
	"time"
)

// Inbound event names.
const (
	EventJoinUserRoom       = "joinUserRoom"
	EventUpdateUser         = "updateUser"
	EventDeleteUser         = "deleteUser"
	EventUpdateLocation     = "updateLocation"
	EventFindNearbyServices = "findNearbyServices"
	EventJoinChatRoom       = "joinChatRoom"
	EventSendMessage        = "sendMessage"
	EventMarkMessageAsRead  = "markMessageAsRead"
	EventJoinServiceRoom    = "joinServiceRoom"
	EventCreateService      = "createService"
	EventUpdateService      = "updateService"
	EventDeleteService      = "deleteService"
	EventJoinReviewRoom     = "joinReviewRoom"
	EventCreateReview       = "createReview"
	EventUpdateReview       = "updateReview"
	EventDeleteReview       = "deleteReview"
	EventJoinContactRoom    = "joinContactRoom"
	EventCreateContact      = "createContact"
)

// Outbound event names.
const (
	EventUserUpdated         = "userUpdated"
	EventUserDeleted         = "userDeleted"
	EventLocationUpdated     = "locationUpdated"
	EventNearbyServices      = "nearbyServices"
	EventNewMessage          = "newMessage"
	EventMessageRead         = "messageRead"
	EventNewService          = "newService"
	EventNewServiceBroadcast = "newServiceBroadcast"
	EventServiceUpdated      = "serviceUpdated"
	EventServiceDeleted      = "serviceDeleted"
	EventNewReview           = "newReview"
	EventReviewUpdated       = "reviewUpdated"
	EventReviewDeleted       = "reviewDeleted"
	EventNewContact          = "newContact"
	EventUserDisconnected    = "userDisconnected"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// ClientEvent is the inbound envelope. Id correlates the acknowledgment
// the server sends back; Payload is decoded per event.
type ClientEvent struct {
	Id      int             `json:"id,omitempty"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServerEvent is the outbound envelope, used both for acknowledgments
// (Status set, Id echoing the request) and for broadcasts (Event set).
type ServerEvent struct {
	Id        int       `json:"id,omitempty"`
	Event     string    `json:"event,omitempty"`
	Status    string    `json:"status,omitempty"`
	Code      int       `json:"code,omitempty"`
	Error     string    `json:"error,omitempty"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func AckOK(id int, data any) *ServerEvent {
	return &ServerEvent{
		Id:        id,
		Status:    StatusSuccess,
		Code:      http.StatusOK,
		Data:      data,
		Timestamp: Now(),
	}
}

func AckError(id, code int, msg string) *ServerEvent {
	return &ServerEvent{
		Id:        id,
		Status:    StatusError,
		Code:      code,
		Error:     msg,
		Timestamp: Now(),
	}
}

func ErrValidation(id int, msg string) *ServerEvent {
	return AckError(id, http.StatusBadRequest, msg)
}

func ErrNotFound(id int, msg string) *ServerEvent {
	return AckError(id, http.StatusNotFound, msg)
}

func ErrForbidden(id int, msg string) *ServerEvent {
	return AckError(id, http.StatusForbidden, msg)
}

func ErrRateLimited(id int) *ServerEvent {
	return AckError(id, http.StatusTooManyRequests, "rate limit exceeded")
}

func ErrInternal(id int) *ServerEvent {
	return AckError(id, http.StatusInternalServerError, "internal server error")
}

func ErrInvalidEvent(id int) *ServerEvent {
	return AckError(id, http.StatusBadRequest, "invalid event format")
}

func ErrUnknownEvent(id int, name string) *ServerEvent {
	return AckError(id, http.StatusBadRequest, "unknown event: "+name)
}

// Broadcast builds a server-initiated event carrying data to a room or
// connection.
func Broadcast(event string, data any) *ServerEvent {
	return &ServerEvent{
		Event:     event,
		Data:      data,
		Timestamp: Now(),
	}
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
