package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"hrassist-backend/internal/models"
	"hrassist-backend/internal/stream"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Responder handles one chat question and streams the reply into sink.
type Responder interface {
	StreamAnswer(ctx context.Context, question string, history []models.ChatMessage, sink stream.Sink)
}

// Hub tracks WebSocket connections per chat session and fans chat
// events out to them through Redis pub/sub, so a session's events reach
// every instance holding one of its connections.
type Hub struct {
	mu          sync.RWMutex
	connections map[uuid.UUID][]*websocket.Conn
	publish     *redis.Client
	subscribe   *redis.Client
	assistant   Responder
	cancelFuncs map[uuid.UUID]context.CancelFunc
}

func NewHub(publishClient, subscribeClient *redis.Client, assistant Responder) *Hub {
	return &Hub{
		connections: make(map[uuid.UUID][]*websocket.Conn),
		publish:     publishClient,
		subscribe:   subscribeClient,
		assistant:   assistant,
		cancelFuncs: make(map[uuid.UUID]context.CancelFunc),
	}
}

// inboundMessage is a frame received from the client.
type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	// Sessions are anonymous: the client may resume one by passing its
	// ID, otherwise a fresh one is minted.
	sessionID, err := uuid.Parse(r.URL.Query().Get("session"))
	if err != nil {
		sessionID = uuid.New()
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	// Send the session frame before the connection joins the broadcast
	// list: once registered, the session's pub/sub goroutine is the only
	// writer, so no two goroutines ever write this conn at once.
	conn.WriteJSON(models.WSMessage{
		Type:    "session",
		Payload: models.SessionInfo{SessionID: sessionID.String()},
	})

	h.registerConnection(sessionID, conn)

	go h.readLoop(sessionID, conn)
}

func (h *Hub) readLoop(sessionID uuid.UUID, conn *websocket.Conn) {
	defer h.unregisterConnection(sessionID, conn)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.sinkFor(sessionID).SendError("VALIDATION_ERROR", "Invalid message frame")
			continue
		}

		switch msg.Type {
		case "chat_message":
			var req models.ChatRequest
			if err := json.Unmarshal(msg.Payload, &req); err != nil {
				h.sinkFor(sessionID).SendError("VALIDATION_ERROR", "Invalid chat payload")
				continue
			}
			go h.assistant.StreamAnswer(context.Background(), req.Message, req.History, h.sinkFor(sessionID))
		default:
			log.Printf("WebSocket: ignoring frame type %q from session %s", msg.Type, sessionID)
		}
	}
}

func (h *Hub) registerConnection(sessionID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[sessionID] = append(h.connections[sessionID], conn)

	// Start pub/sub subscription if this is the first connection for this session
	if len(h.connections[sessionID]) == 1 {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancelFuncs[sessionID] = cancel
		go h.subscribeToPubSub(ctx, sessionID)
	}

	log.Printf("WebSocket connected: session %s (total: %d)", sessionID, len(h.connections[sessionID]))
}

func (h *Hub) unregisterConnection(sessionID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn.Close()

	conns := h.connections[sessionID]
	for i, c := range conns {
		if c == conn {
			h.connections[sessionID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}

	// If no more connections, cancel pub/sub
	if len(h.connections[sessionID]) == 0 {
		delete(h.connections, sessionID)
		if cancel, ok := h.cancelFuncs[sessionID]; ok {
			cancel()
			delete(h.cancelFuncs, sessionID)
		}
	}

	log.Printf("WebSocket disconnected: session %s", sessionID)
}

func (h *Hub) subscribeToPubSub(ctx context.Context, sessionID uuid.UUID) {
	channel := "chat_events:" + sessionID.String()
	pubsub := h.subscribe.Subscribe(ctx, channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast(sessionID, []byte(msg.Payload))
		}
	}
}

func (h *Hub) broadcast(sessionID uuid.UUID, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conn := range h.connections[sessionID] {
		conn.WriteMessage(websocket.TextMessage, data)
	}
}

// publishEvent sends one event onto the session's channel. Publishing
// is fire-and-forget; a slow consumer never blocks the relay.
func (h *Hub) publishEvent(sessionID uuid.UUID, msg models.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.publish.Publish(context.Background(), "chat_events:"+sessionID.String(), string(data))
}

func (h *Hub) sinkFor(sessionID uuid.UUID) stream.Sink {
	return sessionSink{hub: h, sessionID: sessionID}
}

// sessionSink adapts a chat session to the relay's Sink interface.
type sessionSink struct {
	hub       *Hub
	sessionID uuid.UUID
}

func (s sessionSink) SendUpdate(text string) {
	s.hub.publishEvent(s.sessionID, chunkEvent(text))
}

func (s sessionSink) SendCompletion() {
	s.hub.publishEvent(s.sessionID, completeEvent())
}

func (s sessionSink) SendError(code, message string) {
	s.hub.publishEvent(s.sessionID, errorEvent(code, message))
}

func chunkEvent(text string) models.WSMessage {
	return models.WSMessage{
		Type:    "chat_chunk",
		Payload: models.ChatChunk{Text: text},
	}
}

func completeEvent() models.WSMessage {
	return models.WSMessage{Type: "chat_complete"}
}

func errorEvent(code, message string) models.WSMessage {
	return models.WSMessage{
		Type:    "chat_error",
		Payload: models.ChatError{Code: code, Message: message},
	}
}
