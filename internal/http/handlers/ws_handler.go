package handlers

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/magma-incinerator/backend/internal/events"
	"go.uber.org/zap"
)

// BurnFeedHub broadcasts burn_recorded events to every connected client.
// The feed is public; connections are anonymous.
type BurnFeedHub struct {
	subscriber  events.Subscriber
	log         *zap.Logger
	mu          sync.RWMutex
	connections map[*websocket.Conn]struct{}
}

func NewBurnFeedHub(subscriber events.Subscriber, log *zap.Logger) *BurnFeedHub {
	return &BurnFeedHub{
		subscriber:  subscriber,
		log:         log,
		connections: make(map[*websocket.Conn]struct{}),
	}
}

func (h *BurnFeedHub) Start(ctx context.Context) {
	_ = h.subscriber.Subscribe(ctx, events.StreamBurns, func(event events.Event) {
		h.broadcast(event)
	})
}

func (h *BurnFeedHub) broadcast(event events.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.connections {
		_ = conn.WriteMessage(websocket.TextMessage, data)
	}
}

// WSUpgradeMiddleware checks for websocket upgrade
func WSUpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

func (h *BurnFeedHub) HandleWS(conn *websocket.Conn) {
	h.mu.Lock()
	h.connections[conn] = struct{}{}
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.connections, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	// Read loop: clients send nothing meaningful, but reading keeps the
	// connection alive and detects closes.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
