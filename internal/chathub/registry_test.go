package chathub_test

import (
	"testing"

	"chatlink/backend/internal/chathub"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_RegisterLookupRemove(t *testing.T) {
	reg := chathub.NewRegistry()
	client := newMockClient("user_A")

	_, ok := reg.Lookup("user_A")
	assert.False(t, ok)

	gen := reg.Register("user_A", client)
	got, ok := reg.Lookup("user_A")
	assert.True(t, ok)
	assert.Same(t, client, got)

	assert.True(t, reg.Remove("user_A", gen))
	_, ok = reg.Lookup("user_A")
	assert.False(t, ok)
}

// A stale disconnect must not evict a newer session's entry.
func TestRegistry_StaleRemoveKeepsNewerSession(t *testing.T) {
	reg := chathub.NewRegistry()
	oldClient := newMockClient("user_A")
	newClient := newMockClient("user_A")

	oldGen := reg.Register("user_A", oldClient)
	newGen := reg.Register("user_A", newClient)

	assert.False(t, reg.Remove("user_A", oldGen))
	got, ok := reg.Lookup("user_A")
	assert.True(t, ok)
	assert.Same(t, newClient, got)

	assert.True(t, reg.Remove("user_A", newGen))
	_, ok = reg.Lookup("user_A")
	assert.False(t, ok)
}

func TestRegistry_LastRegistrationWins(t *testing.T) {
	reg := chathub.NewRegistry()
	first := newMockClient("user_A")
	second := newMockClient("user_A")

	reg.Register("user_A", first)
	reg.Register("user_A", second)

	got, ok := reg.Lookup("user_A")
	assert.True(t, ok)
	assert.Same(t, second, got)
}

func TestRegistry_OnlineSnapshot(t *testing.T) {
	reg := chathub.NewRegistry()
	reg.Register("user_A", newMockClient("user_A"))
	reg.Register("user_B", newMockClient("user_B"))

	assert.ElementsMatch(t, []string{"user_A", "user_B"}, reg.Online())
}
