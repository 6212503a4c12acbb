package dashws

import (
	"encoding/json"
	"log"
	"time"

	websocket "github.com/gofiber/contrib/websocket"
)

// Hub fans conversation-refresh events out to every connected dashboard
// client, so open dashboards can re-poll the list ahead of their timer.
type Hub struct {
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Event
}

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

type Event struct {
	Type      string `json:"type"`
	Phone     string `json:"phone,omitempty"`
	Timestamp string `json:"timestamp"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Event, 64),
	}
}

func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 32),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = struct{}{}
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
		case event := <-h.broadcast:
			h.deliver(event)
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// NotifyConversationsUpdated queues a refresh event. Never blocks the
// caller; if the hub is saturated the event is dropped and the next poll
// catches up.
func (h *Hub) NotifyConversationsUpdated(phone string) {
	event := &Event{
		Type:      "conversations_updated",
		Phone:     phone,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	select {
	case h.broadcast <- event:
	default:
	}
}

func (h *Hub) deliver(event *Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("dashboard hub encode event: %v", err)
		return
	}

	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
			delete(h.clients, client)
			close(client.send)
		}
	}
}

// ReadPump drains (and discards) client frames so close handshakes and ping
// control frames keep working; the feed is one-directional.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}
