package stream

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
)

// GeminiSource adapts a Gemini streaming iterator to the Source
// interface so the relay can be tested without a live backend.
type GeminiSource struct {
	iter *genai.GenerateContentResponseIterator
}

func NewGeminiSource(iter *genai.GenerateContentResponseIterator) *GeminiSource {
	return &GeminiSource{iter: iter}
}

func (s *GeminiSource) Next() (Fragment, error) {
	resp, err := s.iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil, io.EOF
	}
	if err != nil {
		return nil, err
	}
	return geminiFragment{resp: resp}, nil
}

type geminiFragment struct {
	resp *genai.GenerateContentResponse
}

func (f geminiFragment) Text() (string, error) {
	text := ExtractText(f.resp)
	if text == "" {
		return "", fmt.Errorf("fragment contains no text parts")
	}
	return text, nil
}

// ExtractText concatenates the text parts of all candidates in a
// Gemini response.
func ExtractText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
	}
	return b.String()
}
