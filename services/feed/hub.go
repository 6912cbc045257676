// Package feedsvc pushes announcement changes to connected websocket clients.
package feedsvc

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"github.com/Treasure123-school/THS/core"
	"github.com/Treasure123-school/THS/core/announcement"
	"github.com/Treasure123-school/THS/core/user"
)

const sendBuffer = 16

type message struct {
	ann  announcement.Announcement
	data []byte
}

// Hub maintains the connected clients and fans announcement events out to them.
// A client only receives events for announcements whose audience includes its role.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	logger     core.Logger

	mu    sync.RWMutex
	count int
}

func NewHub(logger core.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run processes registrations and broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			h.setCount()

		case client := <-h.unregister:
			if h.clients[client] {
				h.drop(client)
			}

		case msg := <-h.broadcast:
			for client := range h.clients {
				if !msg.ann.VisibleTo(client.role) {
					continue
				}
				select {
				case client.send <- msg.data:
				default:
					// slow consumer
					h.drop(client)
				}
			}
		}
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.setCount()
}

func (h *Hub) setCount() {
	h.mu.Lock()
	h.count = len(h.clients)
	h.mu.Unlock()
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Join registers a new client for a user holding role.
func (h *Hub) Join(role user.Role) *Client {
	c := &Client{hub: h, role: role, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		close(c.send)
	}
	return c
}

// Leave unregisters c. It is safe to call more than once.
func (h *Hub) Leave(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// HandleEvent decodes an announcement event payload and broadcasts it.
func (h *Hub) HandleEvent(payload []byte) error {
	var evt announcement.Event
	if err := json.Unmarshal(payload, &evt); err != nil {
		return errors.Wrap(err, "decoding announcement event")
	}
	select {
	case h.broadcast <- message{ann: evt.Announcement, data: payload}:
	case <-h.done:
	}
	return nil
}
