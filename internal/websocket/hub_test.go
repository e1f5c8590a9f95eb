package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(h *Hub, role string, id uint) *Client {
	return &Client{
		Hub:           h,
		Principal:     Principal{Role: role, ID: id},
		Send:          make(chan []byte, 8),
		Threads:       make(map[uint]bool),
		LastResetTime: time.Now(),
	}
}

func waitOnline(t *testing.T, h *Hub, p Principal) {
	t.Helper()
	require.Eventually(t, func() bool {
		return h.IsOnline(p)
	}, 2*time.Second, 5*time.Millisecond)
}

func recvMessage(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg := <-c.Send:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("expected a message, got none")
		return nil
	}
}

func assertNoMessage(t *testing.T, c *Client) {
	t.Helper()
	select {
	case msg := <-c.Send:
		t.Fatalf("expected no message, got %s", msg)
	case <-time.After(150 * time.Millisecond):
	}
}

// An admin and a customer with the same numeric ID are distinct
// principals: a message for the thread the admin watches must never
// reach the customer who happens to share the ID.
func TestHub_AdminAndCustomerIDsDoNotCollide(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	admin := newTestClient(hub, RoleAdmin, 1)
	customer := newTestClient(hub, RoleUser, 1)

	hub.Register(admin)
	hub.Register(customer)
	waitOnline(t, hub, admin.Principal)
	waitOnline(t, hub, customer.Principal)

	// the admin watches customer #5's thread, the customer sits in
	// their own
	hub.JoinThread(admin.Principal, 5)
	hub.JoinThread(customer.Principal, 1)

	err := hub.SendToThread(5, map[string]string{"message": "order update"}, Principal{Role: RoleUser, ID: 5})
	require.NoError(t, err)

	assert.Contains(t, string(recvMessage(t, admin)), "order update")
	assertNoMessage(t, customer)
}

// The sender-exclusion check compares full principals, so an admin
// sharing a customer's numeric ID still receives that customer's
// messages.
func TestHub_SenderSkipIsRoleAware(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	admin := newTestClient(hub, RoleAdmin, 1)
	customer := newTestClient(hub, RoleUser, 1)

	hub.Register(admin)
	hub.Register(customer)
	waitOnline(t, hub, admin.Principal)
	waitOnline(t, hub, customer.Principal)

	hub.JoinThread(admin.Principal, 1)
	hub.JoinThread(customer.Principal, 1)

	err := hub.SendToThread(1, map[string]string{"message": "hello"}, customer.Principal)
	require.NoError(t, err)

	assert.Contains(t, string(recvMessage(t, admin)), "hello")
	assertNoMessage(t, customer)
}

// A session can be queued for removal twice: once by a forced drop
// and once by its read pump's teardown. The second removal must not
// close the send channel again or touch the surviving session.
func TestHub_UnregisterTwiceKeepsOtherSessions(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	principal := Principal{Role: RoleUser, ID: 7}
	first := newTestClient(hub, RoleUser, 7)
	second := newTestClient(hub, RoleUser, 7)

	hub.Register(first)
	hub.Register(second)
	waitOnline(t, hub, principal)

	hub.JoinThread(principal, 7)

	hub.Unregister(first)
	hub.Unregister(first)

	// the surviving session still receives thread traffic
	err := hub.SendToThread(7, map[string]string{"message": "still here"}, Principal{Role: RoleAdmin, ID: 1})
	require.NoError(t, err)
	assert.Contains(t, string(recvMessage(t, second)), "still here")

	// the dropped session's channel was closed exactly once
	_, open := <-first.Send
	assert.False(t, open)
	assert.True(t, hub.IsOnline(principal))
}
