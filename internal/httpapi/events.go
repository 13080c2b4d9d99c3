package httpapi

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mediscribe/scribe-gateway/internal/observability"
	"github.com/mediscribe/scribe-gateway/internal/session"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The UI is served from a separate origin during development; origin
		// validation belongs in the deployment proxy.
		return true
	},
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// EventHub fans session state changes out to websocket subscribers. It
// satisfies session.EventSink.
type EventHub struct {
	logger zerolog.Logger

	mu          sync.Mutex
	subscribers map[string]map[*websocket.Conn]bool
}

// NewEventHub creates an empty hub.
func NewEventHub() *EventHub {
	return &EventHub{
		logger:      observability.GetLogger().With().Str("component", "event_hub").Logger(),
		subscribers: make(map[string]map[*websocket.Conn]bool),
	}
}

// StateChanged broadcasts a session snapshot to every subscriber of that
// session. Connections that fail to accept the write are dropped.
func (h *EventHub) StateChanged(state session.State) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.subscribers[state.ID] {
		if err := conn.WriteJSON(state); err != nil {
			h.logger.Debug().Err(err).Str("session_id", state.ID).Msg("Dropping dead event subscriber")
			conn.Close()
			delete(h.subscribers[state.ID], conn)
		}
	}
}

// Subscribe upgrades the request to a websocket and streams state changes
// for one session until the client disconnects.
func (h *EventHub) Subscribe(w http.ResponseWriter, r *http.Request, sessionID string, initial session.State) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Websocket upgrade failed")
		return
	}

	// The snapshot write happens under the hub lock: broadcasts in
	// StateChanged write under the same lock, and the connection permits
	// only one concurrent writer.
	h.mu.Lock()
	if h.subscribers[sessionID] == nil {
		h.subscribers[sessionID] = make(map[*websocket.Conn]bool)
	}
	h.subscribers[sessionID][conn] = true
	writeErr := conn.WriteJSON(initial)
	h.mu.Unlock()

	if writeErr != nil {
		h.remove(sessionID, conn)
		return
	}

	h.logger.Debug().Str("session_id", sessionID).Msg("Event subscriber connected")

	// Clients never send data; the read loop only detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(sessionID, conn)
	h.logger.Debug().Str("session_id", sessionID).Msg("Event subscriber disconnected")
}

// CloseSession disconnects every subscriber of a deleted session.
func (h *EventHub) CloseSession(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.subscribers[sessionID] {
		conn.Close()
	}
	delete(h.subscribers, sessionID)
}

func (h *EventHub) remove(sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn.Close()
	if subs, ok := h.subscribers[sessionID]; ok {
		delete(subs, conn)
		if len(subs) == 0 {
			delete(h.subscribers, sessionID)
		}
	}
}
