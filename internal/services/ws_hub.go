package services

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	channelPrefix  = "notifications:"
	sendBufferSize = 64
)

// WSClient is one user's live websocket. Messages queued on Send are
// written to the socket by the connection's writer goroutine.
type WSClient struct {
	UserID int64
	Send   chan []byte
}

// WSHub tracks live websockets and delivers notification payloads to them.
// With a Redis client, payloads are published on notifications:<userID> and
// every instance delivers what it receives to its own sockets.
type WSHub struct {
	mu      sync.RWMutex
	clients map[int64]*WSClient
	redis   *redis.Client
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewWSHub creates a new WebSocket hub. redisClient may be nil.
func NewWSHub(redisClient *redis.Client) *WSHub {
	h := &WSHub{
		clients: make(map[int64]*WSClient),
		redis:   redisClient,
		done:    make(chan struct{}),
	}

	if redisClient == nil {
		close(h.done)
		return h
	}

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	pubsub := redisClient.PSubscribe(ctx, channelPrefix+"*")
	// wait for the subscription so publishes right after start are not lost
	if _, err := pubsub.Receive(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to subscribe to notification channel")
	}
	go h.subscribe(ctx, pubsub)
	return h
}

// Register adds a socket for userID. An existing socket for the same user
// is replaced and its send channel closed.
func (h *WSHub) Register(userID int64) *WSClient {
	client := &WSClient{
		UserID: userID,
		Send:   make(chan []byte, sendBufferSize),
	}

	h.mu.Lock()
	if existing, ok := h.clients[userID]; ok {
		close(existing.Send)
	}
	h.clients[userID] = client
	h.mu.Unlock()

	log.Info().Int64("user_id", userID).Msg("WebSocket connection registered")
	return client
}

// Unregister removes client if it is still the current socket of its user
func (h *WSHub) Unregister(client *WSClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.clients[client.UserID]; ok && current == client {
		close(client.Send)
		delete(h.clients, client.UserID)
		log.Info().Int64("user_id", client.UserID).Msg("WebSocket connection unregistered")
	}
}

// IsOnline checks if a user has a socket on this instance
func (h *WSHub) IsOnline(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.clients[userID]
	return exists
}

// Publish delivers payload to userID, through Redis when configured
func (h *WSHub) Publish(ctx context.Context, userID int64, payload []byte) error {
	if h.redis != nil {
		return h.redis.Publish(ctx, userChannel(userID), payload).Err()
	}
	h.deliver(userID, payload)
	return nil
}

// Close stops the Redis subscription and closes every socket channel
func (h *WSHub) Close() {
	if h.cancel != nil {
		h.cancel()
	}
	<-h.done

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, client := range h.clients {
		close(client.Send)
		delete(h.clients, id)
	}
}

func (h *WSHub) deliver(userID int64, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.clients[userID]
	if !ok {
		return
	}
	select {
	case client.Send <- payload:
	default:
		log.Warn().Int64("user_id", userID).Msg("WebSocket send buffer full, dropping message")
	}
}

func (h *WSHub) subscribe(ctx context.Context, pubsub *redis.PubSub) {
	defer close(h.done)
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
			userID, ok := userIDFromChannel(msg.Channel)
			if !ok {
				continue
			}
			h.deliver(userID, []byte(msg.Payload))
		}
	}
}

func userChannel(userID int64) string {
	return channelPrefix + strconv.FormatInt(userID, 10)
}

func userIDFromChannel(channel string) (int64, bool) {
	raw, ok := strings.CutPrefix(channel, channelPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
