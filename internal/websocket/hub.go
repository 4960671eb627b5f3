package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"orl-assistant/internal/pkg/logger"
	"orl-assistant/pkg/events"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "orl_events"

// Hub fans bus events out to every connected UI. With Redis configured it
// also relays them to the hubs of other instances.
type Hub struct {
	clients map[*Client]struct{}
	closed  bool
	mu      sync.RWMutex

	rdb        *redis.Client
	instanceID string

	logger logger.ILogger
}

type envelope struct {
	Origin  string          `json:"origin"`
	Message json.RawMessage `json:"message"`
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		rdb:        rdb,
		instanceID: uuid.NewString(),
		logger:     log,
	}
}

// Run forwards everything arriving on feed until ctx is done or feed closes,
// then disconnects all clients.
func (h *Hub) Run(ctx context.Context, feed <-chan events.Event) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-feed:
			if !ok {
				return
			}
			h.Broadcast(evt)
		}
	}
}

func (h *Hub) add(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[client] = struct{}{}
	h.logger.Debug("HUB", "Client registered", map[string]interface{}{"client_id": client.ID})
	return true
}

// Broadcast sends evt to local clients and, when clustered, to the other instances.
func (h *Hub) Broadcast(evt events.Event) {
	data, err := json.Marshal(events.BaseEvent{
		Type:       evt.EventType(),
		Data:       evt.Payload(),
		OccurredAt: evt.Timestamp(),
	})
	if err != nil {
		h.logger.Error("HUB", "Failed to encode event", map[string]interface{}{"error": err.Error()})
		return
	}

	h.deliver(data)

	if h.rdb != nil {
		payload, _ := json.Marshal(envelope{Origin: h.instanceID, Message: data})
		if err := h.rdb.Publish(context.Background(), clusterChannel, payload).Err(); err != nil {
			h.logger.Warn("HUB", "Failed to relay event", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) deliver(data []byte) {
	h.mu.RLock()
	var slow []*Client
	for client := range h.clients {
		select {
		case client.Send <- data:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		h.logger.Warn("HUB", "Client send buffer full, dropping client", map[string]interface{}{"client_id": client.ID})
		h.remove(client)
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.Send)
		h.logger.Debug("HUB", "Client unregistered", map[string]interface{}{"client_id": client.ID})
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for client := range h.clients {
		delete(h.clients, client)
		close(client.Send)
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				h.logger.Warn("HUB", "Unreadable relayed event", map[string]interface{}{"error": err.Error()})
				continue
			}
			if env.Origin == h.instanceID {
				continue
			}
			h.deliver(env.Message)
		}
	}
}
