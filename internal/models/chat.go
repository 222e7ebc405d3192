package models

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is the payload sent to the chat endpoint, over HTTP or
// as a "chat_message" WebSocket frame.
type ChatRequest struct {
	Message string        `json:"message"`
	History []ChatMessage `json:"history"`
}

// ChatResponse is the reply from the non-streaming chat endpoint.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// WebSocket message types
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// ChatChunk is one incremental piece of a streamed answer.
type ChatChunk struct {
	Text string `json:"text"`
}

// ChatError tells the client a request failed.
type ChatError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SessionInfo is sent once after the WebSocket upgrade so the client
// knows which session its events belong to.
type SessionInfo struct {
	SessionID string `json:"session_id"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
