package ws

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type userMessage struct {
	userID  uuid.UUID
	payload []byte
}

// Hub routes messages to the connections of each user.
type Hub struct {
	clients    map[uuid.UUID]map[*Client]bool
	send       chan userMessage
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	logger     *logrus.Logger
}

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		send:       make(chan userMessage, 1024),
		register:   make(chan *Client, 128),
		unregister: make(chan *Client, 128),
		logger:     logger,
	}
}

// Run processes registrations and deliveries until done is closed.
func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			h.closeAll()
			return

		case client := <-h.register:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			set := h.clients[client.userID]
			if set == nil {
				set = make(map[*Client]bool)
				h.clients[client.userID] = set
			}
			set[client] = true
			total := h.countLocked()
			h.mutex.Unlock()
			h.log().WithFields(logrus.Fields{"user_id": client.userID, "clients": total}).Debug("ws connected")

		case client := <-h.unregister:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			h.removeLocked(client)
			total := h.countLocked()
			h.mutex.Unlock()
			h.log().WithFields(logrus.Fields{"user_id": client.userID, "clients": total}).Debug("ws disconnected")

		case msg := <-h.send:
			h.mutex.Lock()
			for client := range h.clients[msg.userID] {
				select {
				case client.send <- msg.payload:
				default:
					// Slow consumer; drop it rather than block the hub.
					h.removeLocked(client)
					h.log().WithField("user_id", msg.userID).Warn("ws client dropped: send buffer full")
				}
			}
			h.mutex.Unlock()
		}
	}
}

func (h *Hub) removeLocked(client *Client) {
	set := h.clients[client.userID]
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	close(client.send)
	if len(set) == 0 {
		delete(h.clients, client.userID)
	}
}

func (h *Hub) closeAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for _, set := range h.clients {
		for client := range set {
			h.removeLocked(client)
		}
	}
}

func (h *Hub) countLocked() int {
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

func (h *Hub) Register(client *Client) {
	if h == nil {
		return
	}
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	if h == nil {
		return
	}
	h.unregister <- client
}

// SendTo queues payload for every connection of userID.
func (h *Hub) SendTo(userID uuid.UUID, payload []byte) {
	if h == nil {
		return
	}
	select {
	case h.send <- userMessage{userID: userID, payload: payload}:
	default:
		h.log().WithField("user_id", userID).Warn("ws message dropped: hub buffer full")
	}
}

func (h *Hub) ClientCount() int {
	if h == nil {
		return 0
	}
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.countLocked()
}

func (h *Hub) log() *logrus.Entry {
	if h.logger == nil {
		return logrus.NewEntry(logrus.StandardLogger()).WithField("component", "ws")
	}
	return h.logger.WithField("component", "ws")
}
