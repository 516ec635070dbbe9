package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHub(t *testing.T) {
	hub := NewHub()

	assert.NotNil(t, hub)
	assert.NotNil(t, hub.clients)
	assert.NotNil(t, hub.register)
	assert.NotNil(t, hub.unregister)
	assert.NotNil(t, hub.broadcast)
}

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{
		ID:      "client-1",
		Subject: "subject-1",
		Send:    make(chan []byte, 256),
	}

	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	_, exists := hub.clients[client.ID]
	hub.mu.RUnlock()
	assert.True(t, exists)

	hub.Unregister(client)
	time.Sleep(10 * time.Millisecond)

	hub.mu.RLock()
	_, exists = hub.clients[client.ID]
	hub.mu.RUnlock()
	assert.False(t, exists)

	// Send channel closed on unregister.
	_, open := <-client.Send
	assert.False(t, open)
}

func TestHub_BroadcastDeliveredPerSubject(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	mine := &Client{ID: "client-1", Subject: "subject-1", Send: make(chan []byte, 256)}
	other := &Client{ID: "client-2", Subject: "subject-2", Send: make(chan []byte, 256)}

	hub.Register(mine)
	hub.Register(other)
	time.Sleep(10 * time.Millisecond)

	hub.BroadcastSignedIn("subject-1", "org-1", "shop_admin")

	select {
	case data := <-mine.Send:
		var event Event
		require.NoError(t, json.Unmarshal(data, &event))
		assert.Equal(t, TypeSignedIn, event.Type)
	case <-time.After(time.Second):
		t.Fatal("expected event for subject-1")
	}

	select {
	case <-other.Send:
		t.Fatal("subject-2 must not receive subject-1 events")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_SignedOutEvent(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{ID: "client-1", Subject: "subject-1", Send: make(chan []byte, 256)}
	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	hub.BroadcastSignedOut("subject-1")

	select {
	case data := <-client.Send:
		var event Event
		require.NoError(t, json.Unmarshal(data, &event))
		assert.Equal(t, TypeSignedOut, event.Type)
	case <-time.After(time.Second):
		t.Fatal("expected signed-out event")
	}
}

func TestHub_OrgChangedEvent(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := &Client{ID: "client-1", Subject: "subject-1", Send: make(chan []byte, 256)}
	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	hub.BroadcastOrgChanged("subject-1", "org-2", "platform_admin")

	select {
	case data := <-client.Send:
		var event Event
		require.NoError(t, json.Unmarshal(data, &event))
		assert.Equal(t, TypeOrgChanged, event.Type)

		payload, err := json.Marshal(event.Data)
		require.NoError(t, err)
		var session SessionEvent
		require.NoError(t, json.Unmarshal(payload, &session))
		assert.Equal(t, "org-2", session.OrgID)
		assert.Equal(t, "platform_admin", session.Role)
	case <-time.After(time.Second):
		t.Fatal("expected org-changed event")
	}
}
