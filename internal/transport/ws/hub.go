package ws

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MsgAssessmentStarted   MessageType = "assessment_started"
	MsgAssessmentUpdated   MessageType = "assessment_updated"
	MsgAssessmentCompleted MessageType = "assessment_completed"
	MsgError               MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans assessment events out to the connections watching them
type Hub struct {
	// assessmentID -> connections
	conns map[string]map[*Connection]struct{}

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	done       chan struct{}
	closeOnce  sync.Once

	logger zerolog.Logger
}

// Connection is one subscriber of an assessment
type Connection struct {
	AssessmentID string
	PartyID      string
	Send         chan []byte
	Hub          *Hub
}

// BroadcastMessage is a message for every subscriber of one assessment
type BroadcastMessage struct {
	AssessmentID string
	Message      *Message
}

// NewHub creates a new WebSocket hub and starts its loop
func NewHub(logger zerolog.Logger) *Hub {
	h := &Hub{
		conns:      make(map[string]map[*Connection]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
		done:       make(chan struct{}),
		logger:     logger.With().Str("component", "ws_hub").Logger(),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			for id, set := range h.conns {
				for conn := range set {
					close(conn.Send)
				}
				delete(h.conns, id)
			}
			h.mu.Unlock()
			return

		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.AssessmentID] == nil {
				h.conns[conn.AssessmentID] = make(map[*Connection]struct{})
			}
			h.conns[conn.AssessmentID][conn] = struct{}{}
			h.mu.Unlock()
			h.logger.Debug().Str("assessment_id", conn.AssessmentID).Msg("subscriber connected")

		case conn := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.conns[conn.AssessmentID]; ok {
				if _, ok := set[conn]; ok {
					delete(set, conn)
					close(conn.Send)
					if len(set) == 0 {
						delete(h.conns, conn.AssessmentID)
					}
					h.logger.Debug().Str("assessment_id", conn.AssessmentID).Msg("subscriber disconnected")
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Message)
			if err != nil {
				h.logger.Error().Err(err).Msg("marshal broadcast")
				continue
			}
			h.mu.RLock()
			for conn := range h.conns[msg.AssessmentID] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		close(conn.Send)
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Subscribers counts open connections for an assessment
func (h *Hub) Subscribers(assessmentID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[assessmentID])
}

// BroadcastToAssessment sends an event to every subscriber (implements service.Broadcaster)
func (h *Hub) BroadcastToAssessment(assessmentID string, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error().Err(err).Str("type", msgType).Msg("marshal payload")
		return
	}
	select {
	case h.broadcast <- &BroadcastMessage{
		AssessmentID: assessmentID,
		Message:      &Message{Type: MessageType(msgType), Payload: data},
	}:
	case <-h.done:
	}
}

// Close stops the hub and closes all connections
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}
