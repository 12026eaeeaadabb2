// Package llm turns node content into tag, flashcard and connection
// suggestions using a pluggable text-completion provider.
package llm

import "context"

// Provider defines the interface for LLM providers (Gemini, mock, ...).
type Provider interface {
	Complete(ctx context.Context, prompt string, options CompletionOptions) (string, error)
	IsAvailable() bool
}

// CompletionOptions configures LLM completion requests
type CompletionOptions struct {
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Format      string  `json:"format"` // "json" or "text"
}
