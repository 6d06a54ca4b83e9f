package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	MessageTypeSubscribe   MessageType = "subscribe"
	MessageTypeUnsubscribe MessageType = "unsubscribe"
	MessageTypeEvent       MessageType = "event"
	MessageTypeError       MessageType = "error"
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    MessageType `json:"type"`
	Folder  string      `json:"folder,omitempty"`
	Event   string      `json:"event,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Hub maintains the set of active clients and fans events out to them.
// Clients may narrow their feed to specific folders; events that carry a
// folder only reach clients subscribed to it (or to nothing, which means
// everything). Folder-less events reach everyone.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Folder subscriptions: folder name -> set of clients
	subscriptions map[string]map[*Client]bool

	register    chan *Client
	unregister  chan *Client
	subscribe   chan *subscriptionRequest
	unsubscribe chan *subscriptionRequest
	broadcast   chan *broadcastMessage

	mu sync.RWMutex

	logger *slog.Logger
}

type subscriptionRequest struct {
	client *Client
	folder string
}

type broadcastMessage struct {
	folder  string
	message []byte
}

// NewHub creates a new Hub instance
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:       make(map[*Client]bool),
		subscriptions: make(map[string]map[*Client]bool),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		subscribe:     make(chan *subscriptionRequest),
		unsubscribe:   make(chan *subscriptionRequest),
		broadcast:     make(chan *broadcastMessage, 256),
		logger:        logger,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client registered")
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				// Remove from all subscriptions
				for folder, subscribers := range h.subscriptions {
					delete(subscribers, client)
					if len(subscribers) == 0 {
						delete(h.subscriptions, folder)
					}
				}
			}
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client unregistered")
			}

		case req := <-h.subscribe:
			h.mu.Lock()
			if h.subscriptions[req.folder] == nil {
				h.subscriptions[req.folder] = make(map[*Client]bool)
			}
			h.subscriptions[req.folder][req.client] = true
			req.client.filtered = true
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client subscribed to folder", slog.String("folder", req.folder))
			}

		case req := <-h.unsubscribe:
			h.mu.Lock()
			if subscribers, ok := h.subscriptions[req.folder]; ok {
				delete(subscribers, req.client)
				if len(subscribers) == 0 {
					delete(h.subscriptions, req.folder)
				}
			}
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client unsubscribed from folder", slog.String("folder", req.folder))
			}

		case msg := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				if msg.folder != "" && client.filtered {
					if subscribers, ok := h.subscriptions[msg.folder]; !ok || !subscribers[client] {
						continue
					}
				}
				select {
				case client.send <- msg.message:
				default:
					// Client buffer full, skip
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Subscribe narrows a client's feed to include a folder
func (h *Hub) Subscribe(client *Client, folder string) {
	h.subscribe <- &subscriptionRequest{client: client, folder: folder}
}

// Unsubscribe removes a folder from a client's feed
func (h *Hub) Unsubscribe(client *Client, folder string) {
	h.unsubscribe <- &subscriptionRequest{client: client, folder: folder}
}

// Publish fans an event out to connected clients. Events whose payload
// names a folder are routed by it. Satisfies the services event
// publisher contract.
func (h *Hub) Publish(event string, payload interface{}) {
	msg := WSMessage{
		Type:    MessageTypeEvent,
		Event:   event,
		Folder:  folderOf(payload),
		Payload: payload,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("failed to marshal broadcast message", slog.Any("error", err))
		}
		return
	}

	h.broadcast <- &broadcastMessage{
		folder:  msg.Folder,
		message: data,
	}
}

// folderOf extracts the routing folder from an event payload, if any
func folderOf(payload interface{}) string {
	if m, ok := payload.(map[string]interface{}); ok {
		if folder, ok := m["folder"].(string); ok {
			return folder
		}
	}
	return ""
}
