package handlers

import (
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/shopflows/shopflows-api/internal/events"
	"github.com/shopflows/shopflows-api/internal/middleware"
)

// EventsHandler streams session lifecycle events (SIGNED_IN, SIGNED_OUT,
// ORG_CHANGED) to subscribers of the authenticated subject. Clients use it
// to keep replicas of the session store in sync.
type EventsHandler struct {
	hub HubInterface
}

func NewEventsHandler(hub HubInterface) *EventsHandler {
	return &EventsHandler{hub: hub}
}

func (h *EventsHandler) Connect(c *drift.Context) {
	session := middleware.GetSession(c)
	if !session.IsAuthenticated {
		c.Unauthorized("not authenticated")
		return
	}

	subject, _ := middleware.GetSubject(c)
	if subject == "" {
		c.Unauthorized("not authenticated")
		return
	}

	sseCtx := c.SSE()

	clientID := uuid.New().String()
	client := &events.Client{
		ID:      clientID,
		Subject: subject,
		Send:    make(chan []byte, 256),
	}

	h.hub.Register(client)
	defer h.hub.Unregister(client)

	if err := sseCtx.SendJSON(map[string]string{
		"type":      "connected",
		"client_id": clientID,
	}, "system", ""); err != nil {
		return
	}

	done := make(chan struct{})
	go func() {
		<-c.Request.Context().Done()
		close(done)
	}()

	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				return
			}
			if err := sseCtx.Send(string(msg), "message", ""); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
