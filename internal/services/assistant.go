package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"

	"google.golang.org/api/option"

	"hrassist-backend/internal/config"
	"hrassist-backend/internal/models"
	"hrassist-backend/internal/stream"
)

// AssistantService owns the Gemini client and answers HR questions
// grounded in the knowledge document.
type AssistantService struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	knowledge string
	rateChan  chan struct{} // Token bucket
}

func NewAssistantService(cfg *config.Config, knowledgeText string) (*AssistantService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.GeminiModel)
	model.SetTemperature(float32(cfg.GeminiTemperature))
	model.SetTopP(float32(cfg.GeminiTopP))
	model.SetTopK(int32(cfg.GeminiTopK))
	model.SetMaxOutputTokens(int32(cfg.GeminiMaxTokens))

	// Token bucket for rate limiting
	rateChan := make(chan struct{}, cfg.GeminiConcurrentReqs)
	for i := 0; i < cfg.GeminiConcurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &AssistantService{
		client:    client,
		model:     model,
		knowledge: knowledgeText,
		rateChan:  rateChan,
	}, nil
}

func (s *AssistantService) Close() {
	s.client.Close()
}

// acquireRate blocks until a rate slot is available
func (s *AssistantService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(2 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (s *AssistantService) releaseRate() {
	s.rateChan <- struct{}{}
}

// StreamAnswer answers a question and streams the reply into sink.
// Every failure is translated into a sink event; nothing escapes as an
// error to the caller.
func (s *AssistantService) StreamAnswer(ctx context.Context, question string, history []models.ChatMessage, sink stream.Sink) {
	if strings.TrimSpace(question) == "" {
		sink.SendError("VALIDATION_ERROR", "Question is required")
		return
	}

	if err := s.acquireRate(ctx); err != nil {
		log.Printf("chat: could not acquire Gemini slot: %v", err)
		sink.SendError("AI_ERROR", "The assistant is busy, please try again shortly")
		sink.SendCompletion()
		return
	}
	defer s.releaseRate()

	blocks := buildConversation(s.knowledge, question, history)

	cs := s.model.StartChat()
	cs.History = blocks[:len(blocks)-1]

	iter := cs.SendMessageStream(ctx, blocks[len(blocks)-1].Parts...)
	if iter == nil {
		sink.SendError("AI_ERROR", "The assistant did not return a response stream")
		sink.SendCompletion()
		return
	}

	res := stream.Relay(stream.NewGeminiSource(iter), sink)
	if res.Err != nil {
		log.Printf("chat stream ended with error after %d fragments: %v", res.Fragments, res.Err)
	}
}

// Answer is the non-streaming variant used by the REST endpoint.
func (s *AssistantService) Answer(ctx context.Context, question string, history []models.ChatMessage) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", &ValidationError{Fields: map[string]string{"message": "Message is required"}}
	}

	if err := s.acquireRate(ctx); err != nil {
		return "", err
	}
	defer s.releaseRate()

	blocks := buildConversation(s.knowledge, question, history)

	cs := s.model.StartChat()
	cs.History = blocks[:len(blocks)-1]

	resp, err := cs.SendMessage(ctx, blocks[len(blocks)-1].Parts...)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	reply := strings.TrimSpace(stream.ExtractText(resp))
	if reply == "" {
		return "", fmt.Errorf("Gemini returned an empty reply")
	}

	return reply, nil
}

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }
