package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_BindAndLookup(t *testing.T) {
	r := NewRegistry()

	r.Bind("conn-1", "user-1")

	userID, ok := r.Lookup("conn-1")
	assert.True(t, ok)
	assert.Equal(t, "user-1", userID)

	_, ok = r.Lookup("conn-2")
	assert.False(t, ok)
}

func TestRegistry_UnbindReportsLastConnection(t *testing.T) {
	r := NewRegistry()

	// Two devices for the same user
	r.Bind("conn-1", "user-1")
	r.Bind("conn-2", "user-1")
	assert.Equal(t, 2, r.ConnectionCount("user-1"))

	userID, last := r.Unbind("conn-1")
	assert.Equal(t, "user-1", userID)
	assert.False(t, last)

	userID, last = r.Unbind("conn-2")
	assert.Equal(t, "user-1", userID)
	assert.True(t, last)
	assert.Equal(t, 0, r.ConnectionCount("user-1"))
}

func TestRegistry_UnbindUnknownConn(t *testing.T) {
	r := NewRegistry()

	userID, last := r.Unbind("ghost")
	assert.Equal(t, "", userID)
	assert.False(t, last)
}

func TestRegistry_RebindReplacesUser(t *testing.T) {
	r := NewRegistry()

	r.Bind("conn-1", "user-1")
	r.Bind("conn-1", "user-2")

	userID, ok := r.Lookup("conn-1")
	assert.True(t, ok)
	assert.Equal(t, "user-2", userID)
	assert.Equal(t, 0, r.ConnectionCount("user-1"))
	assert.Equal(t, 1, r.ConnectionCount("user-2"))
}
