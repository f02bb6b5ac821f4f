package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"elasticquest-be/internal/model"
	"elasticquest-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const clusterChannel = "exam_cluster_events"

// Hub tracks connected clients per user and fans notifications out to
// them, relaying through Redis so every instance sees every message.
type Hub struct {
	// UserId -> connections (a user can have several tabs open)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance delivery, nil when disabled
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserId] = append(h.clients[client.UserId], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user_id": client.UserId})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.UserId]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.UserId] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.UserId]) == 0 {
					delete(h.clients, client.UserId)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"user_id": client.UserId})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast sends a notification to ALL connected clients.
func (h *Hub) Broadcast(notification model.Notification) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "notification",
		"data": notification,
	})

	h.mu.RLock()
	var stalled []*Client
	for _, clients := range h.clients {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
				stalled = append(stalled, client)
			}
		}
	}
	h.mu.RUnlock()

	h.dropStalled(stalled)

	if h.rdb != nil {
		payload := map[string]interface{}{
			"target_user_id": "*",
			"message":        data,
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), clusterChannel, jsonPayload)
	}
}

// Send delivers a notification to one user's connections, local and remote.
func (h *Hub) Send(userId string, notification model.Notification) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "notification",
		"data": notification,
	})

	h.mu.RLock()
	var stalled []*Client
	for _, client := range h.clients[userId] {
		select {
		case client.Send <- data:
		default:
			h.logger.Warn("Hub", "Client Send buffer full, dropping message", map[string]interface{}{"user_id": userId})
			stalled = append(stalled, client)
		}
	}
	h.mu.RUnlock()

	h.dropStalled(stalled)

	if h.rdb != nil {
		payload := map[string]interface{}{
			"target_user_id": userId,
			"message":        data,
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), clusterChannel, jsonPayload)
	}
}

func (h *Hub) subscribeToRedis() {
	// Every instance subscribes to the cluster channel and filters by the
	// target user id; "*" means broadcast.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			TargetUserId string          `json:"target_user_id"`
			Message      json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		// Deliver under the read lock: Run only closes Send channels while
		// holding the write lock, so no send here can hit a closed channel.
		h.mu.RLock()
		var targets []*Client
		if payload.TargetUserId == "*" {
			for _, clients := range h.clients {
				targets = append(targets, clients...)
			}
		} else {
			targets = append(targets, h.clients[payload.TargetUserId]...)
		}

		var stalled []*Client
		for _, client := range targets {
			select {
			case client.Send <- payload.Message:
			default:
				stalled = append(stalled, client)
			}
		}
		h.mu.RUnlock()

		h.dropStalled(stalled)
	}
}

// dropStalled hands clients with a full Send buffer to the unregister loop.
// Run owns close(client.Send); closing here too would double-close when the
// unregister case fires. Must be called without holding h.mu, otherwise the
// unbuffered channel send deadlocks against Run taking the write lock.
func (h *Hub) dropStalled(stalled []*Client) {
	for _, client := range stalled {
		h.unregister <- client
	}
}
