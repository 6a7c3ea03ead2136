package server

import (
	"encoding/json"

	"github.com/servihub/servihub/internal/database"
)

type createContactPayload struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (rt *EventRouter) handleJoinContactRoom(c *Client, ev *ClientEvent) *ServerEvent {
	roomId := contactRoom(c.user.Id)
	rt.hub.joinRoom(roomId, c)

	return AckOK(ev.Id, map[string]any{"room": roomId})
}

func (rt *EventRouter) handleCreateContact(c *Client, ev *ClientEvent) *ServerEvent {
	var p createContactPayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		return ErrValidation(ev.Id, "invalid payload")
	}
	if p.Subject == "" {
		return ErrValidation(ev.Id, "subject is required")
	}
	if p.Message == "" {
		return ErrValidation(ev.Id, "message is required")
	}

	contact, err := rt.db.CreateContact(database.CreateContactParams{
		UserId:  c.user.Id,
		Subject: p.Subject,
		Message: p.Message,
	})
	if err != nil {
		return rt.repoError(ev.Id, "CreateContact", "", err)
	}

	rt.hub.BroadcastRoom(contactRoom(c.user.Id), Broadcast(EventNewContact, contact), nil)

	if err := rt.dispatcher.EmailContactReceived(contact); err != nil {
		rt.log.Printf("EmailContactReceived: %v", err)
	}

	return AckOK(ev.Id, contact)
}
