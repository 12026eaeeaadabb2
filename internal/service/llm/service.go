package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Raghvendrath3/conceptForge/internal/domain"
)

// ErrUnavailable is returned when no provider is configured or it reports
// itself unavailable.
var ErrUnavailable = errors.New("LLM service is not available")

// maxExcerpt bounds how much of each candidate body goes into a prompt.
const maxExcerpt = 200

// Card is a generated question/answer pair.
type Card struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Connection is a suggested edge from the target node to To.
type Connection struct {
	To     string           `json:"to"`
	Label  domain.EdgeLabel `json:"label"`
	Reason string           `json:"reason"`
}

// Fallbacks returned when the provider fails or answers with malformed JSON.
var (
	FallbackTags  = []string{"error", "check-logs"}
	FallbackCards = []Card{{Question: "Error generating cards", Answer: "Please check your API key or try again."}}
)

// Suggester provides content suggestions. Its methods never fail because of
// the provider: a failed call is logged and replaced by a fallback.
type Suggester struct {
	provider Provider
	logger   *zap.Logger
}

// NewSuggester creates a Suggester on provider.
func NewSuggester(provider Provider, logger *zap.Logger) *Suggester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Suggester{provider: provider, logger: logger}
}

// IsAvailable returns true if the provider can serve requests.
func (s *Suggester) IsAvailable() bool {
	return s.provider != nil && s.provider.IsAvailable()
}

func (s *Suggester) complete(ctx context.Context, prompt string, opts CompletionOptions, out interface{}) error {
	if !s.IsAvailable() {
		return ErrUnavailable
	}
	text, err := s.provider.Complete(ctx, prompt, opts)
	if err != nil {
		return fmt.Errorf("failed to get LLM response: %w", err)
	}
	if err := json.Unmarshal([]byte(CleanJSON(text)), out); err != nil {
		return fmt.Errorf("AI returned invalid JSON format: %w", err)
	}
	return nil
}

// SuggestTags proposes tags for content.
func (s *Suggester) SuggestTags(ctx context.Context, content string) []string {
	var tags []string
	err := s.complete(ctx, buildTagPrompt(content), CompletionOptions{Temperature: 0.4, MaxTokens: 100, Format: "json"}, &tags)
	if err != nil {
		s.logger.Warn("tag suggestion failed", zap.Error(err))
		return append([]string(nil), FallbackTags...)
	}
	return domain.NormalizeTags(tags)
}

// GenerateFlashcards proposes question/answer pairs for content. Pairs with
// an empty side are dropped.
func (s *Suggester) GenerateFlashcards(ctx context.Context, content string) []Card {
	var raw []Card
	err := s.complete(ctx, buildFlashcardPrompt(content), CompletionOptions{Temperature: 0.5, MaxTokens: 800, Format: "json"}, &raw)
	if err != nil {
		s.logger.Warn("flashcard generation failed", zap.Error(err))
		return append([]Card(nil), FallbackCards...)
	}
	cards := make([]Card, 0, len(raw))
	for _, c := range raw {
		c.Question = strings.TrimSpace(c.Question)
		c.Answer = strings.TrimSpace(c.Answer)
		if c.Question == "" || c.Answer == "" {
			continue
		}
		cards = append(cards, c)
	}
	return cards
}

// FindConnections proposes edges from target to candidates. Labels outside
// the edge label set become related.
func (s *Suggester) FindConnections(ctx context.Context, target domain.Node, candidates []domain.Node) []Connection {
	if len(candidates) == 0 {
		return []Connection{}
	}
	var raw []struct {
		To     string `json:"to"`
		Label  string `json:"label"`
		Reason string `json:"reason"`
	}
	err := s.complete(ctx, buildConnectionPrompt(target, candidates), CompletionOptions{Temperature: 0.2, MaxTokens: 600, Format: "json"}, &raw)
	if err != nil {
		s.logger.Warn("connection search failed", zap.String("node_id", target.ID), zap.Error(err))
		return []Connection{}
	}
	conns := make([]Connection, 0, len(raw))
	for _, r := range raw {
		if r.To == "" {
			continue
		}
		label, err := domain.ParseEdgeLabel(r.Label)
		if err != nil {
			label = domain.DefaultEdgeLabel
		}
		conns = append(conns, Connection{To: r.To, Label: label, Reason: r.Reason})
	}
	return conns
}

// CleanJSON strips markdown code fences some models wrap around JSON.
func CleanJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}
