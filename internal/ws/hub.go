package ws

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one subscriber. A nil CompanyID receives events of every tenant.
type Client struct {
	Conn      Conn
	UserID    uuid.UUID
	CompanyID *uuid.UUID
}

func (c *Client) wants(companyID uuid.UUID) bool {
	return c.CompanyID == nil || *c.CompanyID == companyID
}

type event struct {
	companyID uuid.UUID
	message   []byte
}

type Hub struct {
	clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	events     chan event
	quit       chan struct{}
	mutex      sync.Mutex
	log        *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		events:     make(chan event, 256),
		quit:       make(chan struct{}),
		log:        log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			h.log.Debug("ws client connected", zap.String("user_id", client.UserID.String()))

		case client := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Conn.Close()
			}
			h.mutex.Unlock()

		case ev := <-h.events:
			h.mutex.Lock()
			for client := range h.clients {
				if !client.wants(ev.companyID) {
					continue
				}
				if err := client.Conn.WriteMessage(websocket.TextMessage, ev.message); err != nil {
					client.Conn.Close()
					delete(h.clients, client)
				}
			}
			h.mutex.Unlock()

		case <-h.quit:
			h.mutex.Lock()
			for client := range h.clients {
				client.Conn.Close()
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return
		}
	}
}

// Stop ends Run and closes every connection.
func (h *Hub) Stop() {
	close(h.quit)
}

// Join registers client. It returns false once the hub has stopped.
func (h *Hub) Join(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.quit:
		return false
	}
}

// Leave unregisters client, closing its connection.
func (h *Hub) Leave(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.quit:
	}
}

// RevokeUser closes every stream opened by userID.
func (h *Hub) RevokeUser(userID uuid.UUID) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for client := range h.clients {
		if client.UserID == userID {
			client.Conn.Close()
			delete(h.clients, client)
		}
	}
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Publish queues payload for the clients of companyID. It never blocks: when
// the queue is full the event is dropped.
func (h *Hub) Publish(companyID uuid.UUID, payload interface{}) {
	msg, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("ws event marshal failed", zap.Error(err))
		return
	}
	select {
	case h.events <- event{companyID: companyID, message: msg}:
	default:
		h.log.Warn("ws event queue full, dropping event", zap.String("company_id", companyID.String()))
	}
}
