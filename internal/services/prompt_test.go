package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/generative-ai-go/genai"

	"hrassist-backend/internal/models"
)

func blockText(c *genai.Content) string {
	var b strings.Builder
	for _, part := range c.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

func TestBuildConversationWithoutHistory(t *testing.T) {
	blocks := buildConversation("Section 1: Leave\n25 days per year.", "How many vacation days do I get?", nil)

	if len(blocks) != 2 {
		t.Fatalf("Expected 2 blocks, got %d", len(blocks))
	}

	grounding := blocks[0]
	if grounding.Role != roleUser {
		t.Errorf("Expected grounding block role %q, got %q", roleUser, grounding.Role)
	}
	if !strings.Contains(blockText(grounding), "Section 1: Leave") {
		t.Error("Expected grounding block to carry the knowledge document")
	}
	for _, rule := range []string{"ONLY from the HR documentation", "cite the relevant section", "politely decline", "confidential"} {
		if !strings.Contains(blockText(grounding), rule) {
			t.Errorf("Expected grounding block to contain rule %q", rule)
		}
	}

	question := blocks[len(blocks)-1]
	if question.Role != roleUser || blockText(question) != "How many vacation days do I get?" {
		t.Errorf("Expected final block to be the question, got role=%q text=%q", question.Role, blockText(question))
	}
}

func TestBuildConversationInsertsAcknowledgment(t *testing.T) {
	history := []models.ChatMessage{
		{Role: "user", Content: "What about parental leave?"},
		{Role: "assistant", Content: "Parental leave is 16 weeks (Section 3: Parental Leave)."},
	}

	blocks := buildConversation("doc", "And adoption?", history)

	if len(blocks) != 5 {
		t.Fatalf("Expected 5 blocks, got %d", len(blocks))
	}
	if blocks[1].Role != roleModel || blockText(blocks[1]) != historyAck {
		t.Errorf("Expected synthetic acknowledgment block, got role=%q text=%q", blocks[1].Role, blockText(blocks[1]))
	}
	if blocks[2].Role != roleUser {
		t.Errorf("Expected history user turn, got %q", blocks[2].Role)
	}
	if blocks[3].Role != roleModel {
		t.Errorf("Expected assistant turn mapped to %q, got %q", roleModel, blocks[3].Role)
	}
}

func TestTrimHistoryKeepsMostRecentTurns(t *testing.T) {
	var history []models.ChatMessage
	for i := 0; i < 15; i++ {
		history = append(history, models.ChatMessage{Role: "user", Content: fmt.Sprintf("question %d", i)})
	}

	turns := trimHistory(history)

	if len(turns) != maxHistoryTurns {
		t.Fatalf("Expected %d turns, got %d", maxHistoryTurns, len(turns))
	}
	for i, turn := range turns {
		expected := fmt.Sprintf("question %d", i+5)
		if turn.Content != expected {
			t.Errorf("Turn %d: expected %q, got %q", i, expected, turn.Content)
		}
	}
}

func TestTrimHistoryDropsEmptyTurns(t *testing.T) {
	history := []models.ChatMessage{
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: "   "},
		{Role: "user", Content: ""},
		{Role: "assistant", Content: "second"},
	}

	turns := trimHistory(history)

	if len(turns) != 2 {
		t.Fatalf("Expected 2 turns, got %d", len(turns))
	}
	if turns[0].Content != "first" || turns[1].Content != "second" {
		t.Errorf("Expected empty turns removed with order preserved, got %v", turns)
	}
}
