package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"family-stories-be/internal/model"
	"family-stories-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// redisChannel carries notification frames between instances. Every
// instance subscribes and forwards frames to the clients it holds locally.
const redisChannel = "family_stories_ws"

type wireFrame struct {
	TargetUserID string          `json:"target_user_id"` // "*" means broadcast
	Message      json.RawMessage `json:"message"`
}

// Hub tracks websocket clients per user. A user may hold several
// connections at once (multi-device).
type Hub struct {
	clients    map[uuid.UUID][]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex

	rdb    *redis.Client
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[uuid.UUID][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.consumeRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.UserID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.UserID]) == 0 {
					delete(h.clients, client.UserID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Send delivers a notification to every connection of a single user, local
// and remote.
func (h *Hub) Send(userID uuid.UUID, notification model.Notification) {
	data := encodeNotification(notification)

	h.mu.RLock()
	clients := h.clients[userID]
	h.mu.RUnlock()
	h.deliver(clients, data)

	h.publishRedis(userID.String(), data)
}

// Broadcast delivers a notification to every connected client.
func (h *Hub) Broadcast(notification model.Notification) {
	data := encodeNotification(notification)

	h.mu.RLock()
	for _, clients := range h.clients {
		h.deliver(clients, data)
	}
	h.mu.RUnlock()

	h.publishRedis("*", data)
}

func (h *Hub) deliver(clients []*Client, data []byte) {
	for _, client := range clients {
		select {
		case client.Send <- data:
		default:
			// Slow consumer; drop the connection rather than the hub.
			h.logger.Warn("Hub", "Client send buffer full, disconnecting", map[string]interface{}{"user_id": client.UserID})
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

func (h *Hub) publishRedis(target string, data []byte) {
	if h.rdb == nil {
		return
	}
	frame, _ := json.Marshal(wireFrame{TargetUserID: target, Message: data})
	if err := h.rdb.Publish(context.Background(), redisChannel, frame).Err(); err != nil {
		h.logger.Warn("Hub", "Redis publish failed", map[string]interface{}{"error": err.Error()})
	}
}

func (h *Hub) consumeRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var frame wireFrame
		if err := json.Unmarshal([]byte(msg.Payload), &frame); err != nil {
			h.logger.Warn("Hub", "Malformed redis frame", map[string]interface{}{"error": err.Error()})
			continue
		}

		if frame.TargetUserID == "*" {
			h.mu.RLock()
			for _, clients := range h.clients {
				h.deliver(clients, frame.Message)
			}
			h.mu.RUnlock()
			continue
		}

		uid, err := uuid.Parse(frame.TargetUserID)
		if err != nil {
			continue
		}
		h.mu.RLock()
		clients := h.clients[uid]
		h.mu.RUnlock()
		h.deliver(clients, frame.Message)
	}
}

func encodeNotification(notification model.Notification) []byte {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "notification",
		"data": notification,
	})
	return data
}
