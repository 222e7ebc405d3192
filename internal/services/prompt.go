package services

import (
	"strings"

	"github.com/google/generative-ai-go/genai"

	"hrassist-backend/internal/models"
)

// maxHistoryTurns bounds how much prior conversation is replayed to the
// model on each request.
const maxHistoryTurns = 10

const (
	roleUser  = "user"
	roleModel = "model"
)

const historyAck = "Understood. I will answer using only the HR documentation provided, cite the sections I rely on, and keep the conversation confidential."

// buildConversation assembles the ordered content blocks for one
// request: grounding block, optional acknowledged history window, then
// the current question. The last block is always the question.
func buildConversation(knowledgeText, question string, history []models.ChatMessage) []*genai.Content {
	blocks := []*genai.Content{textBlock(roleUser, buildGroundingPrompt(knowledgeText))}

	turns := trimHistory(history)
	if len(turns) > 0 {
		blocks = append(blocks, textBlock(roleModel, historyAck))
		for _, turn := range turns {
			role := roleUser
			if turn.Role == "assistant" {
				role = roleModel
			}
			blocks = append(blocks, textBlock(role, turn.Content))
		}
	}

	return append(blocks, textBlock(roleUser, question))
}

// trimHistory keeps the most recent maxHistoryTurns turns, in order,
// and drops turns with no content.
func trimHistory(history []models.ChatMessage) []models.ChatMessage {
	if len(history) > maxHistoryTurns {
		history = history[len(history)-maxHistoryTurns:]
	}

	var turns []models.ChatMessage
	for _, turn := range history {
		if strings.TrimSpace(turn.Content) == "" {
			continue
		}
		turns = append(turns, turn)
	}
	return turns
}

func textBlock(role, text string) *genai.Content {
	return &genai.Content{
		Role:  role,
		Parts: []genai.Part{genai.Text(text)},
	}
}

func buildGroundingPrompt(knowledgeText string) string {
	var b strings.Builder

	// Layer 1 — Role
	b.WriteString("You are the company's internal HR assistant. You answer employee questions about HR policies and benefits.\n\n")

	// Layer 2 — Rules
	b.WriteString("Rules:\n")
	b.WriteString("- Answer ONLY from the HR documentation below. Do not use outside knowledge.\n")
	b.WriteString("- When your answer relies on the documentation, cite the relevant section title in parentheses.\n")
	b.WriteString("- If the question is not an HR topic, or the documentation does not cover it, politely decline and refer the employee to the HR department.\n")
	b.WriteString("- Treat every conversation as confidential. Never reveal information about other employees.\n\n")

	// Layer 3 — Document
	b.WriteString("---HR DOCUMENT START---\n")
	b.WriteString(knowledgeText)
	b.WriteString("\n---HR DOCUMENT END---\n")

	return b.String()
}
