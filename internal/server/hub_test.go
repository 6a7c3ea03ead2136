package server

import (
	"context"
	"testing"
	"time"

	"github.com/servihub/servihub/internal/config"
	"github.com/servihub/servihub/internal/database"
	"github.com/servihub/servihub/internal/notify"
	"github.com/servihub/servihub/internal/stats"
	"github.com/servihub/servihub/internal/testutil"
	"github.com/servihub/servihub/internal/types"
	"github.com/stretchr/testify/assert"
)

func newTestHub(t *testing.T, db database.MarketRepository, d notify.Dispatcher) *Hub {
	t.Helper()

	cfg := &config.Config{
		RateLimit: config.RateLimitConfig{
			Window:    time.Minute,
			MaxEvents: 100,
		},
	}

	return NewHub(testutil.TestLogger(t), db, d, stats.NoopStats{}, cfg)
}

func newTestClient(t *testing.T, h *Hub, user types.User) *Client {
	t.Helper()

	return NewClient(user, nil, h, testutil.TestLogger(t))
}

func nextEvent(t *testing.T, c *Client) *ServerEvent {
	t.Helper()

	select {
	case ev := <-c.send:
		return ev
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for event")
		return nil
	}
}

func assertNoEvent(t *testing.T, c *Client) {
	t.Helper()

	select {
	case ev := <-c.send:
		t.Fatalf("expected no event, got %+v", ev)
	default:
	}
}

func Test_handleRegister_supersedesPreviousConnection(t *testing.T) {
	hub := newTestHub(t, &database.MockMarketRepository{}, &notify.MockDispatcher{})

	user := types.User{Id: "u1", Username: "alice"}
	first := newTestClient(t, hub, user)
	second := newTestClient(t, hub, user)

	hub.handleRegister(first)
	hub.handleRegister(second)

	cur, ok := hub.registry.lookup("u1")
	assert.True(t, ok, "expected registry entry for u1")
	assert.Same(t, second, cur, "expected latest connection to win")
	assert.Equal(t, 1, hub.registry.size(), "expected exactly one registry entry")

	select {
	case <-first.stop:
		assert.Equal(t, "superseded by newer connection", first.closeReason())
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout: superseded connection was not stopped")
	}
}

func Test_handleDeregister_isIdempotent(t *testing.T) {
	hub := newTestHub(t, &database.MockMarketRepository{}, &notify.MockDispatcher{})

	c := newTestClient(t, hub, types.User{Id: "u1", Username: "alice"})
	hub.handleRegister(c)
	hub.rooms.join(userRoom("u1"), c)

	hub.handleDeregister(c)

	_, ok := hub.registry.lookup("u1")
	assert.False(t, ok, "expected registry entry removed")
	assert.Equal(t, 0, hub.rooms.count(), "expected all rooms pruned")

	// a second cleanup for the same connection must be a no-op
	assert.NotPanics(t, func() { hub.handleDeregister(c) })
	assert.Equal(t, 0, hub.registry.size())
	assert.Equal(t, 0, hub.rooms.count())
}

func Test_handleDeregister_broadcastsPresenceLoss(t *testing.T) {
	hub := newTestHub(t, &database.MockMarketRepository{}, &notify.MockDispatcher{})

	leaving := newTestClient(t, hub, types.User{Id: "u1", Username: "alice"})
	watcher := newTestClient(t, hub, types.User{Id: "u2", Username: "bob"})
	hub.handleRegister(leaving)
	hub.handleRegister(watcher)

	hub.handleDeregister(leaving)

	ev := nextEvent(t, watcher)
	assert.Equal(t, EventUserDisconnected, ev.Event)
	data := ev.Data.(map[string]any)
	assert.Equal(t, "u1", data["userId"])
	assert.Equal(t, "connection closed", data["reason"])

	assertNoEvent(t, leaving)
}

func Test_handleDeregister_supersededDoesNotEvictReplacement(t *testing.T) {
	hub := newTestHub(t, &database.MockMarketRepository{}, &notify.MockDispatcher{})

	user := types.User{Id: "u1", Username: "alice"}
	first := newTestClient(t, hub, user)
	second := newTestClient(t, hub, user)

	hub.handleRegister(first)
	hub.handleRegister(second)

	// the superseded connection cleans up after its replacement is live
	hub.handleDeregister(first)

	cur, ok := hub.registry.lookup("u1")
	assert.True(t, ok, "expected replacement to survive cleanup of old connection")
	assert.Same(t, second, cur)
}

func Test_EmitToUser(t *testing.T) {
	t.Run("reaches only the latest connection", func(t *testing.T) {
		hub := newTestHub(t, &database.MockMarketRepository{}, &notify.MockDispatcher{})

		user := types.User{Id: "u1", Username: "alice"}
		first := newTestClient(t, hub, user)
		second := newTestClient(t, hub, user)
		hub.handleRegister(first)
		hub.handleRegister(second)

		ok := hub.EmitToUser("u1", Broadcast(EventUserUpdated, nil))
		assert.True(t, ok)

		ev := nextEvent(t, second)
		assert.Equal(t, EventUserUpdated, ev.Event)
		assertNoEvent(t, first)
	})

	t.Run("unreachable user is not an error", func(t *testing.T) {
		hub := newTestHub(t, &database.MockMarketRepository{}, &notify.MockDispatcher{})

		ok := hub.EmitToUser("missing", Broadcast(EventUserUpdated, nil))
		assert.False(t, ok)
	})
}

func Test_BroadcastAll_skipsSender(t *testing.T) {
	hub := newTestHub(t, &database.MockMarketRepository{}, &notify.MockDispatcher{})

	a := newTestClient(t, hub, types.User{Id: "u1"})
	b := newTestClient(t, hub, types.User{Id: "u2"})
	hub.handleRegister(a)
	hub.handleRegister(b)

	hub.BroadcastAll(Broadcast(EventNewServiceBroadcast, nil), a)

	ev := nextEvent(t, b)
	assert.Equal(t, EventNewServiceBroadcast, ev.Event)
	assertNoEvent(t, a)
}

func Test_Shutdown(t *testing.T) {
	hub := newTestHub(t, &database.MockMarketRepository{}, &notify.MockDispatcher{})
	go hub.Run()

	c := newTestClient(t, hub, types.User{Id: "u1", Username: "alice"})
	assert.NoError(t, hub.Register(c))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, hub.Shutdown(ctx))

	select {
	case <-c.stop:
		assert.Equal(t, "server shutting down", c.closeReason())
	default:
		t.Error("expected client to be stopped on shutdown")
	}

	assert.Equal(t, 0, hub.registry.size(), "expected registry cleared")
	assert.Equal(t, 0, hub.rooms.count(), "expected rooms cleared")

	// new connections are refused once shutdown has begun
	assert.ErrorIs(t, hub.Register(newTestClient(t, hub, types.User{Id: "u2"})), ErrHubClosed)
}
