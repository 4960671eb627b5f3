package websocket

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// EventsHandler exposes the hub at /ws/events.
type EventsHandler struct {
	hub *Hub
}

func NewEventsHandler(hub *Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

func (h *EventsHandler) RegisterRoutes(r fiber.Router) {
	ws := r.Group("/ws")
	ws.Use(func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	ws.Get("/events", websocket.New(h.serve))
}

func (h *EventsHandler) serve(conn *websocket.Conn) {
	client := &Client{
		ID:   uuid.NewString(),
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 64),
	}
	if !h.hub.add(client) {
		_ = conn.Close()
		return
	}

	go client.writePump()
	client.readPump()
}
