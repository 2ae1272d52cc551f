package ws

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(userID uint) *Client {
	return &Client{UserID: userID, Role: "CREATOR", Send: make(chan []byte, 8)}
}

func TestBroadcastToUser(t *testing.T) {
	hub := NewHub()
	c1 := newClient(1)
	c2 := newClient(1)
	other := newClient(2)
	hub.Register(c1)
	hub.Register(c2)
	hub.Register(other)
	require.Equal(t, 3, hub.ClientCount())

	hub.BroadcastToUser(1, map[string]string{"type": "FUNDS_RELEASED"})

	assert.Len(t, c1.Send, 1)
	assert.Len(t, c2.Send, 1)
	assert.Len(t, other.Send, 0)
}

func TestCloseUnregisters(t *testing.T) {
	hub := NewHub()
	c := newClient(1)
	hub.Register(c)
	c.Close()
	assert.Zero(t, hub.ClientCount())

	// idempotent
	c.Close()

	// broadcasting to a closed client must not panic or deliver
	hub.BroadcastToUser(1, map[string]string{"type": "noop"})
}

func TestBroadcastDuringDisconnect(t *testing.T) {
	// a client closing mid-broadcast must never panic the sending goroutine
	for i := 0; i < 200; i++ {
		hub := NewHub()
		c := newClient(1)
		hub.Register(c)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				hub.BroadcastToUser(1, map[string]int{"seq": j})
			}
		}()
		go func() {
			defer wg.Done()
			c.Close()
		}()
		wg.Wait()
	}
}

func TestBroadcastDropsWhenBufferFull(t *testing.T) {
	hub := NewHub()
	c := &Client{UserID: 1, Send: make(chan []byte, 1)}
	hub.Register(c)

	hub.BroadcastToUser(1, map[string]string{"n": "1"})
	hub.BroadcastToUser(1, map[string]string{"n": "2"}) // dropped, not blocked
	assert.Len(t, c.Send, 1)
}
