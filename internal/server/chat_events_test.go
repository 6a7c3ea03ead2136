package server

import (
	"database/sql"
	"net/http"
	"testing"

	"github.com/servihub/servihub/internal/database"
	"github.com/servihub/servihub/internal/notify"
	"github.com/servihub/servihub/internal/types"
	"github.com/stretchr/testify/assert"
)

func Test_handleJoinChatRoom(t *testing.T) {
	t.Run("both participants resolve to the same room", func(t *testing.T) {
		db := &database.MockMarketRepository{}
		db.On("GetUserById", "u2").Return(types.User{Id: "u2"}, nil)
		db.On("GetUserById", "u1").Return(types.User{Id: "u1"}, nil)

		hub := newTestHub(t, db, &notify.MockDispatcher{})
		a := newTestClient(t, hub, types.User{Id: "u1", Username: "alice"})
		b := newTestClient(t, hub, types.User{Id: "u2", Username: "bob"})

		dispatchEvent(t, hub, a, 1, EventJoinChatRoom, `{"recipientId":"u2"}`)
		dispatchEvent(t, hub, b, 1, EventJoinChatRoom, `{"recipientId":"u1"}`)

		ackA := nextEvent(t, a)
		ackB := nextEvent(t, b)
		assert.Equal(t, StatusSuccess, ackA.Status)
		assert.Equal(t, ackA.Data, ackB.Data, "expected both joins to land in the identical room")
		assert.Len(t, hub.rooms.membersOf("chat:u1:u2"), 2)
	})

	t.Run("unknown recipient", func(t *testing.T) {
		db := &database.MockMarketRepository{}
		db.On("GetUserById", "ghost").Return(types.User{}, sql.ErrNoRows)

		hub := newTestHub(t, db, &notify.MockDispatcher{})
		c := newTestClient(t, hub, types.User{Id: "u1"})

		dispatchEvent(t, hub, c, 1, EventJoinChatRoom, `{"recipientId":"ghost"}`)

		ack := nextEvent(t, c)
		assert.Equal(t, StatusError, ack.Status)
		assert.Equal(t, http.StatusNotFound, ack.Code)
		assert.Equal(t, 0, hub.rooms.count(), "expected no room state on failed join")
	})
}

func Test_handleSendMessage(t *testing.T) {
	t.Run("delivers to the chat-pair room", func(t *testing.T) {
		db := &database.MockMarketRepository{}
		db.On("GetUserById", "u2").Return(types.User{Id: "u2"}, nil)
		msg := types.ChatMessage{Id: "m1", SenderId: "u1", RecipientId: "u2", Content: "hi"}
		db.On("CreateMessage", database.CreateMessageParams{SenderId: "u1", RecipientId: "u2", Content: "hi"}).
			Return(msg, nil)

		hub := newTestHub(t, db, &notify.MockDispatcher{})
		a := newTestClient(t, hub, types.User{Id: "u1", Username: "alice"})
		b := newTestClient(t, hub, types.User{Id: "u2", Username: "bob"})
		hub.handleRegister(a)
		hub.handleRegister(b)
		hub.rooms.join(chatRoom("u1", "u2"), a)
		hub.rooms.join(chatRoom("u1", "u2"), b)

		dispatchEvent(t, hub, a, 9, EventSendMessage, `{"recipientId":"u2","content":"hi"}`)

		for _, c := range []*Client{a, b} {
			got := nextEvent(t, c)
			assert.Equal(t, EventNewMessage, got.Event)
			assert.Equal(t, msg, got.Data)
		}

		ack := nextEvent(t, a)
		assert.Equal(t, 9, ack.Id)
		assert.Equal(t, StatusSuccess, ack.Status)
		db.AssertExpectations(t)
	})

	t.Run("pushes to an offline recipient", func(t *testing.T) {
		db := &database.MockMarketRepository{}
		db.On("GetUserById", "u2").Return(types.User{Id: "u2"}, nil)
		msg := types.ChatMessage{Id: "m1", SenderId: "u1", RecipientId: "u2", Content: "hi"}
		db.On("CreateMessage", database.CreateMessageParams{SenderId: "u1", RecipientId: "u2", Content: "hi"}).
			Return(msg, nil)

		dispatcher := &notify.MockDispatcher{}
		dispatcher.On("PushNewMessage", "u2", msg).Return(nil)

		hub := newTestHub(t, db, dispatcher)
		a := newTestClient(t, hub, types.User{Id: "u1"})
		hub.handleRegister(a)

		dispatchEvent(t, hub, a, 1, EventSendMessage, `{"recipientId":"u2","content":"hi"}`)

		ack := nextEvent(t, a)
		assert.Equal(t, StatusSuccess, ack.Status)
		dispatcher.AssertExpectations(t)
	})

	t.Run("rejects empty content", func(t *testing.T) {
		hub := newTestHub(t, &database.MockMarketRepository{}, &notify.MockDispatcher{})
		c := newTestClient(t, hub, types.User{Id: "u1"})

		dispatchEvent(t, hub, c, 1, EventSendMessage, `{"recipientId":"u2","content":""}`)

		ack := nextEvent(t, c)
		assert.Equal(t, StatusError, ack.Status)
		assert.Equal(t, http.StatusBadRequest, ack.Code)
	})
}

func Test_handleMarkMessageAsRead(t *testing.T) {
	t.Run("only the recipient may mark", func(t *testing.T) {
		db := &database.MockMarketRepository{}
		db.On("GetMessageById", "m1").
			Return(types.ChatMessage{Id: "m1", SenderId: "u1", RecipientId: "u2"}, nil)

		hub := newTestHub(t, db, &notify.MockDispatcher{})
		c := newTestClient(t, hub, types.User{Id: "u1"})

		dispatchEvent(t, hub, c, 1, EventMarkMessageAsRead, `{"messageId":"m1"}`)

		ack := nextEvent(t, c)
		assert.Equal(t, StatusError, ack.Status)
		assert.Equal(t, http.StatusForbidden, ack.Code)
	})

	t.Run("marks and notifies the pair room", func(t *testing.T) {
		db := &database.MockMarketRepository{}
		unread := types.ChatMessage{Id: "m1", SenderId: "u1", RecipientId: "u2"}
		db.On("GetMessageById", "m1").Return(unread, nil)
		read := unread
		read.Read = true
		db.On("MarkMessageRead", "m1").Return(read, nil)

		hub := newTestHub(t, db, &notify.MockDispatcher{})
		sender := newTestClient(t, hub, types.User{Id: "u1"})
		recipient := newTestClient(t, hub, types.User{Id: "u2"})
		hub.rooms.join(chatRoom("u1", "u2"), sender)
		hub.rooms.join(chatRoom("u1", "u2"), recipient)

		dispatchEvent(t, hub, recipient, 1, EventMarkMessageAsRead, `{"messageId":"m1"}`)

		for _, c := range []*Client{sender, recipient} {
			got := nextEvent(t, c)
			assert.Equal(t, EventMessageRead, got.Event)
			data := got.Data.(map[string]any)
			assert.Equal(t, "m1", data["messageId"])
			assert.Equal(t, "u2", data["readerId"])
		}

		ack := nextEvent(t, recipient)
		assert.Equal(t, StatusSuccess, ack.Status)
		db.AssertExpectations(t)
	})

	t.Run("missing message", func(t *testing.T) {
		db := &database.MockMarketRepository{}
		db.On("GetMessageById", "ghost").Return(types.ChatMessage{}, sql.ErrNoRows)

		hub := newTestHub(t, db, &notify.MockDispatcher{})
		c := newTestClient(t, hub, types.User{Id: "u1"})

		dispatchEvent(t, hub, c, 1, EventMarkMessageAsRead, `{"messageId":"ghost"}`)

		ack := nextEvent(t, c)
		assert.Equal(t, http.StatusNotFound, ack.Code)
	})
}
