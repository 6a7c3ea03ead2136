package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_registry(t *testing.T) {
	t.Run("register and lookup", func(t *testing.T) {
		r := newRegistry()
		c := &Client{id: "conn-1"}

		prev := r.register("u1", c)
		assert.Nil(t, prev, "expected no displaced connection")

		got, ok := r.lookup("u1")
		assert.True(t, ok)
		assert.Same(t, c, got)
	})

	t.Run("register supersedes prior mapping", func(t *testing.T) {
		r := newRegistry()
		first := &Client{id: "conn-1"}
		second := &Client{id: "conn-2"}

		r.register("u1", first)
		prev := r.register("u1", second)
		assert.Same(t, first, prev, "expected prior connection to be returned")

		got, _ := r.lookup("u1")
		assert.Same(t, second, got)
		assert.Equal(t, 1, r.size(), "expected at most one mapping per user")
	})

	t.Run("lookup absent user", func(t *testing.T) {
		r := newRegistry()

		_, ok := r.lookup("missing")
		assert.False(t, ok)
	})

	t.Run("unregister removes only the matching connection", func(t *testing.T) {
		r := newRegistry()
		old := &Client{id: "conn-1"}
		replacement := &Client{id: "conn-2"}

		r.register("u1", old)
		r.register("u1", replacement)

		// the old connection's cleanup must not evict its replacement
		r.unregister("u1", old)
		got, ok := r.lookup("u1")
		assert.True(t, ok)
		assert.Same(t, replacement, got)

		r.unregister("u1", replacement)
		_, ok = r.lookup("u1")
		assert.False(t, ok)
	})

	t.Run("unregister absent user is a no-op", func(t *testing.T) {
		r := newRegistry()
		assert.NotPanics(t, func() { r.unregister("missing", &Client{id: "conn-1"}) })
	})
}
