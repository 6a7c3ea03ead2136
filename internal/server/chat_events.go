package server

import (
	"encoding/json"

	"github.com/servihub/servihub/internal/database"
)

type joinChatPayload struct {
	RecipientId string `json:"recipientId"`
}

type sendMessagePayload struct {
	RecipientId string `json:"recipientId"`
	Content     string `json:"content"`
}

type markReadPayload struct {
	MessageId string `json:"messageId"`
}

func (rt *EventRouter) handleJoinChatRoom(c *Client, ev *ClientEvent) *ServerEvent {
	var p joinChatPayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		return ErrValidation(ev.Id, "invalid payload")
	}
	if p.RecipientId == "" {
		return ErrValidation(ev.Id, "recipientId is required")
	}

	if _, err := rt.db.GetUserById(p.RecipientId); err != nil {
		return rt.repoError(ev.Id, "GetUserById", "recipient not found", err)
	}

	roomId := chatRoom(c.user.Id, p.RecipientId)
	rt.hub.joinRoom(roomId, c)

	return AckOK(ev.Id, map[string]any{"room": roomId})
}

func (rt *EventRouter) handleSendMessage(c *Client, ev *ClientEvent) *ServerEvent {
	var p sendMessagePayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		return ErrValidation(ev.Id, "invalid payload")
	}
	if p.RecipientId == "" {
		return ErrValidation(ev.Id, "recipientId is required")
	}
	if p.Content == "" {
		return ErrValidation(ev.Id, "content cannot be empty")
	}

	if _, err := rt.db.GetUserById(p.RecipientId); err != nil {
		return rt.repoError(ev.Id, "GetUserById", "recipient not found", err)
	}

	msg, err := rt.db.CreateMessage(database.CreateMessageParams{
		SenderId:    c.user.Id,
		RecipientId: p.RecipientId,
		Content:     p.Content,
	})
	if err != nil {
		return rt.repoError(ev.Id, "CreateMessage", "", err)
	}

	// the message goes to the sorted chat-pair room, not to each
	// participant's user room
	rt.hub.BroadcastRoom(chatRoom(c.user.Id, p.RecipientId), Broadcast(EventNewMessage, msg), nil)

	if _, online := rt.hub.registry.lookup(p.RecipientId); !online {
		if err := rt.dispatcher.PushNewMessage(p.RecipientId, msg); err != nil {
			rt.log.Printf("PushNewMessage: %v", err)
		}
	}

	return AckOK(ev.Id, msg)
}

func (rt *EventRouter) handleMarkMessageAsRead(c *Client, ev *ClientEvent) *ServerEvent {
	var p markReadPayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		return ErrValidation(ev.Id, "invalid payload")
	}
	if p.MessageId == "" {
		return ErrValidation(ev.Id, "messageId is required")
	}

	msg, err := rt.db.GetMessageById(p.MessageId)
	if err != nil {
		return rt.repoError(ev.Id, "GetMessageById", "message not found", err)
	}
	if msg.RecipientId != c.user.Id {
		return ErrForbidden(ev.Id, "only the recipient can mark a message as read")
	}

	msg, err = rt.db.MarkMessageRead(p.MessageId)
	if err != nil {
		return rt.repoError(ev.Id, "MarkMessageRead", "message not found", err)
	}

	rt.hub.BroadcastRoom(chatRoom(msg.SenderId, msg.RecipientId), Broadcast(EventMessageRead, map[string]any{
		"messageId": msg.Id,
		"readerId":  c.user.Id,
	}), nil)

	return AckOK(ev.Id, msg)
}
