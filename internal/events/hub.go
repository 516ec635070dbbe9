package events

import (
	"encoding/json"
	"sync"
)

// Auth change-event types, mirrored by the client SDK's reconciliation.
const (
	TypeSignedIn   = "SIGNED_IN"
	TypeSignedOut  = "SIGNED_OUT"
	TypeOrgChanged = "ORG_CHANGED"
)

type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type SessionEvent struct {
	Subject string `json:"subject"`
	OrgID   string `json:"org_id,omitempty"`
	Role    string `json:"role,omitempty"`
}

// Client is one connected SSE listener. Subject is the token subject the
// listener authenticated as; events are delivered per subject.
type Client struct {
	ID      string
	Subject string
	Send    chan []byte
}

// Hub fans auth state-change events out to connected listeners so open pages
// learn about sign-ins, sign-outs and org switches without polling.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *subjectMessage
	mu         sync.RWMutex
}

type subjectMessage struct {
	Subject string
	Event   Event
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *subjectMessage, 256),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Event)
			for _, client := range h.clients {
				if client.Subject != msg.Subject {
					continue
				}
				select {
				case client.Send <- data:
				default:
					// Client buffer full, skip
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) BroadcastSignedIn(subject, orgID, role string) {
	h.broadcast <- &subjectMessage{
		Subject: subject,
		Event:   Event{Type: TypeSignedIn, Data: SessionEvent{Subject: subject, OrgID: orgID, Role: role}},
	}
}

func (h *Hub) BroadcastSignedOut(subject string) {
	h.broadcast <- &subjectMessage{
		Subject: subject,
		Event:   Event{Type: TypeSignedOut, Data: SessionEvent{Subject: subject}},
	}
}

func (h *Hub) BroadcastOrgChanged(subject, orgID, role string) {
	h.broadcast <- &subjectMessage{
		Subject: subject,
		Event:   Event{Type: TypeOrgChanged, Data: SessionEvent{Subject: subject, OrgID: orgID, Role: role}},
	}
}
