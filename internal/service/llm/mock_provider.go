package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// MockProvider answers prompts with fixed, deterministic suggestions. It
// stands in for a real model in development and tests.
type MockProvider struct {
	available bool
}

// NewMockProvider creates a new mock LLM provider
func NewMockProvider() *MockProvider {
	return &MockProvider{available: true}
}

func (m *MockProvider) IsAvailable() bool {
	return m.available
}

// SetAvailable toggles availability.
func (m *MockProvider) SetAvailable(available bool) {
	m.available = available
}

var (
	mockTags  = []string{"mock-tag", "concept", "learning", "ai-generated"}
	mockCards = []Card{
		{Question: "What is the main concept here?", Answer: "This is a generated answer based on the content."},
		{Question: "Why is this important?", Answer: "It helps in understanding the core topic."},
		{Question: "How does it work?", Answer: "It functions by integrating various components."},
	}
)

const mockConnectionReason = "Mock connection based on similarity."

// Complete detects the request type from the prompt.
func (m *MockProvider) Complete(ctx context.Context, prompt string, options CompletionOptions) (string, error) {
	if !m.available {
		return "", fmt.Errorf("mock provider is not available")
	}

	var v interface{}
	switch {
	case strings.Contains(prompt, tagPromptMarker):
		v = mockTags
	case strings.Contains(prompt, flashcardPromptMarker):
		v = mockCards
	case strings.Contains(prompt, connectionPromptMarker):
		conns, err := m.mockConnections(prompt)
		if err != nil {
			return "", err
		}
		v = conns
	default:
		return "", fmt.Errorf("unsupported prompt type")
	}

	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// mockConnections links the target to the first two candidates.
func (m *MockProvider) mockConnections(prompt string) ([]map[string]string, error) {
	idx := strings.LastIndex(prompt, candidatesHeader)
	if idx < 0 {
		return nil, fmt.Errorf("prompt has no candidate list")
	}
	var candidates []candidateSummary
	if err := json.Unmarshal([]byte(prompt[idx+len(candidatesHeader):]), &candidates); err != nil {
		return nil, fmt.Errorf("failed to read candidates: %w", err)
	}
	if len(candidates) > 2 {
		candidates = candidates[:2]
	}
	conns := make([]map[string]string, 0, len(candidates))
	for _, c := range candidates {
		conns = append(conns, map[string]string{"to": c.ID, "label": "related", "reason": mockConnectionReason})
	}
	return conns, nil
}
