package stream

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventType names the events pushed over the timeline stream.
type EventType string

const (
	TypeMessageNew    EventType = "message_new"
	TypeMessageDelete EventType = "message_delete"
)

// Event is what subscribers receive when someone they follow (or they
// themselves) posts or deletes a message.
type Event struct {
	Type      EventType       `json:"type"`
	UserID    uuid.UUID       `json:"user_id"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Hub tracks connected timeline subscribers keyed by user id and fans
// events out to the author's followers.
type Hub struct {
	clients map[uuid.UUID]*Client

	// A user may hold several connections at once.
	userClients map[uuid.UUID]map[uuid.UUID]*Client

	register   chan *Client
	unregister chan *Client
	publish    chan *publication

	mu     sync.RWMutex
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// publication carries an encoded event plus the set of users who
// should see it.
type publication struct {
	audience []uuid.UUID
	payload  []byte
}

func NewHub(logger *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:     make(map[uuid.UUID]*Client),
		userClients: make(map[uuid.UUID]map[uuid.UUID]*Client),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		publish:     make(chan *publication, 64),
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}
}

// Run processes registrations and publications until Stop is called.
// Keepalive pings are handled per connection in the client write pump.
// Send channels are only ever closed here, so a drained publication
// can never race a shutdown.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case pub := <-h.publish:
			h.deliver(pub)
		}
	}
}

// Stop shuts down the hub and blocks until Run has closed every
// connection. Run must have been started.
func (h *Hub) Stop() {
	h.cancel()
	<-h.done
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		close(client.Send)
		if client.Conn != nil {
			client.Conn.Close()
		}
	}
	h.clients = make(map[uuid.UUID]*Client)
	h.userClients = make(map[uuid.UUID]map[uuid.UUID]*Client)
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

// Publish queues an event for delivery to every user in audience.
func (h *Hub) Publish(event Event, audience []uuid.UUID) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("stream: encode event", zap.Error(err))
		return
	}

	select {
	case h.publish <- &publication{audience: audience, payload: payload}:
	case <-h.ctx.Done():
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client

	if _, ok := h.userClients[client.UserID]; !ok {
		h.userClients[client.UserID] = make(map[uuid.UUID]*Client)
	}
	h.userClients[client.UserID][client.ID] = client

	h.logger.Info("stream: client registered",
		zap.String("client_id", client.ID.String()),
		zap.String("user_id", client.UserID.String()))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}

	if userClients, ok := h.userClients[client.UserID]; ok {
		delete(userClients, client.ID)
		if len(userClients) == 0 {
			delete(h.userClients, client.UserID)
		}
	}

	delete(h.clients, client.ID)
	close(client.Send)

	h.logger.Info("stream: client unregistered",
		zap.String("client_id", client.ID.String()),
		zap.String("user_id", client.UserID.String()))
}

func (h *Hub) deliver(pub *publication) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, userID := range pub.audience {
		clients, ok := h.userClients[userID]
		if !ok {
			continue
		}
		for _, client := range clients {
			select {
			case client.Send <- pub.payload:
			default:
				h.logger.Warn("stream: send channel full",
					zap.String("client_id", client.ID.String()))
			}
		}
	}
}

// ConnectedUsers reports how many distinct users hold a connection.
func (h *Hub) ConnectedUsers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userClients)
}
