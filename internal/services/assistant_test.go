package services

import (
	"context"
	"errors"
	"testing"
)

type countingSink struct {
	updates     []string
	completions int
	errorCodes  []string
}

func (s *countingSink) SendUpdate(text string) { s.updates = append(s.updates, text) }
func (s *countingSink) SendCompletion()        { s.completions++ }
func (s *countingSink) SendError(code, message string) {
	s.errorCodes = append(s.errorCodes, code)
}

func TestStreamAnswerRejectsEmptyQuestion(t *testing.T) {
	tests := []struct {
		name     string
		question string
	}{
		{"empty", ""},
		{"whitespace only", "   \n\t"},
	}

	// A zero-value service is enough: validation must fire before any
	// backend state is touched.
	svc := &AssistantService{}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sink := &countingSink{}
			svc.StreamAnswer(context.Background(), tc.question, nil, sink)

			if len(sink.errorCodes) != 1 || sink.errorCodes[0] != "VALIDATION_ERROR" {
				t.Errorf("Expected single VALIDATION_ERROR event, got %v", sink.errorCodes)
			}
			if len(sink.updates) != 0 {
				t.Errorf("Expected no updates, got %v", sink.updates)
			}
			if sink.completions != 0 {
				t.Errorf("Expected validation error to be the only output, got %d completions", sink.completions)
			}
		})
	}
}

func TestAnswerRejectsEmptyQuestion(t *testing.T) {
	svc := &AssistantService{}

	_, err := svc.Answer(context.Background(), "  ", nil)

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	if _, ok := vErr.Fields["message"]; !ok {
		t.Error("Expected validation error to name the message field")
	}
}
