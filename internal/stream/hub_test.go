package stream

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(hub *Hub, userID uuid.UUID) *Client {
	return &Client{
		ID:     uuid.New(),
		UserID: userID,
		Send:   make(chan []byte, 8),
		Hub:    hub,
	}
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case payload := <-c.Send:
		return payload
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func assertSilent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case payload := <-c.Send:
		t.Fatalf("unexpected event: %s", payload)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublishReachesAudienceOnly(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()
	defer hub.Stop()

	follower := newTestClient(hub, uuid.New())
	bystander := newTestClient(hub, uuid.New())
	hub.Register(follower)
	hub.Register(bystander)

	author := uuid.New()
	hub.Publish(Event{Type: TypeMessageNew, UserID: author, Timestamp: time.Now()},
		[]uuid.UUID{follower.UserID})

	payload := receive(t, follower)
	assert.Contains(t, string(payload), string(TypeMessageNew))
	assertSilent(t, bystander)
}

func TestPublishFansOutToAllConnections(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()
	defer hub.Stop()

	userID := uuid.New()
	first := newTestClient(hub, userID)
	second := newTestClient(hub, userID)
	hub.Register(first)
	hub.Register(second)

	hub.Publish(Event{Type: TypeMessageDelete, UserID: uuid.New(), Timestamp: time.Now()},
		[]uuid.UUID{userID})

	receive(t, first)
	receive(t, second)
}

func TestUnregisterClosesSendChannel(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()
	defer hub.Stop()

	client := newTestClient(hub, uuid.New())
	hub.Register(client)

	// wait until the registration is processed
	require.Eventually(t, func() bool {
		return hub.ConnectedUsers() == 1
	}, time.Second, 10*time.Millisecond)

	hub.Unregister(client)

	require.Eventually(t, func() bool {
		return hub.ConnectedUsers() == 0
	}, time.Second, 10*time.Millisecond)

	_, open := <-client.Send
	assert.False(t, open)
}

func TestStopAfterPublishDoesNotPanic(t *testing.T) {
	hub := NewHub(zap.NewNop())
	go hub.Run()

	client := newTestClient(hub, uuid.New())
	hub.Register(client)

	require.Eventually(t, func() bool {
		return hub.ConnectedUsers() == 1
	}, time.Second, 10*time.Millisecond)

	hub.Publish(Event{Type: TypeMessageNew, UserID: uuid.New(), Timestamp: time.Now()},
		[]uuid.UUID{client.UserID})
	hub.Stop()

	// once Stop returns the send channel is closed; the queued event
	// may or may not have been delivered first
	for {
		if _, open := <-client.Send; !open {
			break
		}
	}
	assert.Equal(t, 0, hub.ConnectedUsers())

	// all post-shutdown calls are no-ops
	hub.Publish(Event{Type: TypeMessageDelete, UserID: uuid.New(), Timestamp: time.Now()},
		[]uuid.UUID{client.UserID})
	hub.Unregister(client)
	hub.Register(newTestClient(hub, uuid.New()))
	assert.Equal(t, 0, hub.ConnectedUsers())
}
