package server

import (
	"errors"
	"net/http"
	"testing"

	"github.com/servihub/servihub/internal/database"
	"github.com/servihub/servihub/internal/notify"
	"github.com/servihub/servihub/internal/types"
	"github.com/stretchr/testify/assert"
)

func Test_handleJoinContactRoom(t *testing.T) {
	hub := newTestHub(t, &database.MockMarketRepository{}, &notify.MockDispatcher{})
	c := newTestClient(t, hub, types.User{Id: "u1"})

	dispatchEvent(t, hub, c, 1, EventJoinContactRoom, "")

	ack := nextEvent(t, c)
	assert.Equal(t, StatusSuccess, ack.Status)
	assert.Equal(t, map[string]any{"room": "contact:u1"}, ack.Data)
	assert.True(t, c.inRoom("contact:u1"))
}

func Test_handleCreateContact(t *testing.T) {
	t.Run("stores, notifies the room and emails support", func(t *testing.T) {
		contact := types.Contact{Id: "c1", UserId: "u1", Subject: "billing", Message: "help"}

		db := &database.MockMarketRepository{}
		db.On("CreateContact", database.CreateContactParams{
			UserId: "u1", Subject: "billing", Message: "help",
		}).Return(contact, nil)

		dispatcher := &notify.MockDispatcher{}
		dispatcher.On("EmailContactReceived", contact).Return(nil)

		hub := newTestHub(t, db, dispatcher)
		c := newTestClient(t, hub, types.User{Id: "u1"})
		hub.rooms.join(contactRoom("u1"), c)

		dispatchEvent(t, hub, c, 2, EventCreateContact, `{"subject":"billing","message":"help"}`)

		got := nextEvent(t, c)
		assert.Equal(t, EventNewContact, got.Event)
		assert.Equal(t, contact, got.Data)

		ack := nextEvent(t, c)
		assert.Equal(t, 2, ack.Id)
		assert.Equal(t, StatusSuccess, ack.Status)
		db.AssertExpectations(t)
		dispatcher.AssertExpectations(t)
	})

	t.Run("a failed email does not fail the request", func(t *testing.T) {
		contact := types.Contact{Id: "c1", UserId: "u1", Subject: "billing", Message: "help"}

		db := &database.MockMarketRepository{}
		db.On("CreateContact", database.CreateContactParams{
			UserId: "u1", Subject: "billing", Message: "help",
		}).Return(contact, nil)

		dispatcher := &notify.MockDispatcher{}
		dispatcher.On("EmailContactReceived", contact).Return(errors.New("smtp down"))

		hub := newTestHub(t, db, dispatcher)
		c := newTestClient(t, hub, types.User{Id: "u1"})

		dispatchEvent(t, hub, c, 1, EventCreateContact, `{"subject":"billing","message":"help"}`)

		ack := nextEvent(t, c)
		assert.Equal(t, StatusSuccess, ack.Status)
	})

	t.Run("rejects a missing subject", func(t *testing.T) {
		hub := newTestHub(t, &database.MockMarketRepository{}, &notify.MockDispatcher{})
		c := newTestClient(t, hub, types.User{Id: "u1"})

		dispatchEvent(t, hub, c, 1, EventCreateContact, `{"message":"help"}`)

		ack := nextEvent(t, c)
		assert.Equal(t, http.StatusBadRequest, ack.Code)
	})
}
