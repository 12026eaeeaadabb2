// Package study implements the flashcard use cases: manual and generated
// cards, the due queue, deck statistics and spaced-repetition reviews.
package study

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/Raghvendrath3/conceptForge/internal/domain"
	"github.com/Raghvendrath3/conceptForge/internal/events"
	"github.com/Raghvendrath3/conceptForge/internal/observability"
	"github.com/Raghvendrath3/conceptForge/internal/repository"
	"github.com/Raghvendrath3/conceptForge/internal/review"
	"github.com/Raghvendrath3/conceptForge/internal/service/llm"
	appErrors "github.com/Raghvendrath3/conceptForge/pkg/errors"
)

// Card origins, used as the metric label.
const (
	OriginManual = "manual"
	OriginAI     = "ai"
)

const maxRetries = 3

type Service struct {
	repo      repository.Repository
	suggester *llm.Suggester
	publisher events.Publisher
	metrics   *observability.Collector
	logger    *zap.Logger
	now       func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo repository.Repository, suggester *llm.Suggester, publisher events.Publisher,
	metrics *observability.Collector, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		repo:      repo,
		suggester: suggester,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.Named("study"),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCard adds a hand-written card to nodeID.
func (s *Service) CreateCard(ctx context.Context, ownerID, nodeID, question, answer string) (*domain.Flashcard, error) {
	if nodeID == "" {
		return nil, appErrors.NewValidation("nodeId is required")
	}
	if _, err := s.repo.FindNodeByID(ctx, ownerID, nodeID); err != nil {
		return nil, repository.ToAppError(err, "failed to load node")
	}
	card, err := domain.NewFlashcard(ownerID, nodeID, question, answer, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateFlashcard(ctx, card); err != nil {
		return nil, repository.ToAppError(err, "failed to create flashcard")
	}
	s.created(ctx, OriginManual, card)
	return card, nil
}

// GenerateCards asks the suggester for cards about content and stores them
// on nodeID. When the provider fails the suggester's fallback card is
// stored so the user sees why nothing useful came back.
func (s *Service) GenerateCards(ctx context.Context, ownerID, nodeID, content string) (cards []*domain.Flashcard, err error) {
	ctx, span := observability.StartSpan(ctx, "study.GenerateCards",
		attribute.String("owner.id", ownerID),
		attribute.String("node.id", nodeID),
	)
	defer func() { observability.EndSpan(span, err) }()

	if nodeID == "" {
		return nil, appErrors.NewValidation("nodeId is required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, appErrors.NewValidation("content is required")
	}
	if _, err = s.repo.FindNodeByID(ctx, ownerID, nodeID); err != nil {
		return nil, repository.ToAppError(err, "failed to load node")
	}

	now := s.now()
	cards = []*domain.Flashcard{}
	for _, c := range s.suggester.GenerateFlashcards(ctx, content) {
		card, err := domain.NewFlashcard(ownerID, nodeID, c.Question, c.Answer, now)
		if err != nil {
			continue
		}
		if err := s.repo.CreateFlashcard(ctx, card); err != nil {
			return nil, repository.ToAppError(err, "failed to create flashcard")
		}
		cards = append(cards, card)
	}
	s.created(ctx, OriginAI, cards...)
	return cards, nil
}

func (s *Service) created(ctx context.Context, origin string, cards ...*domain.Flashcard) {
	if len(cards) == 0 {
		return
	}
	s.metrics.FlashcardCreated(origin, len(cards))
	evts := make([]events.Event, 0, len(cards))
	for _, c := range cards {
		evts = append(evts, events.New(events.FlashcardCreated, c.OwnerID, c.ID, c.CreatedAt, map[string]interface{}{
			"nodeId": c.NodeID,
			"origin": origin,
		}))
	}
	events.Emit(ctx, s.publisher, s.logger, evts...)
}

// ListCards returns the owner's cards, optionally for one node, earliest due
// first.
func (s *Service) ListCards(ctx context.Context, ownerID, nodeID string) ([]*domain.Flashcard, error) {
	cards, err := s.repo.FindFlashcards(ctx, repository.FlashcardQuery{OwnerID: ownerID, NodeID: nodeID})
	if err != nil {
		return nil, repository.ToAppError(err, "failed to list flashcards")
	}
	return cards, nil
}

// DueCards returns the cards whose dueAt is not after now.
func (s *Service) DueCards(ctx context.Context, ownerID string) ([]*domain.Flashcard, error) {
	cards, err := s.repo.FindFlashcards(ctx, repository.FlashcardQuery{OwnerID: ownerID, DueAsOf: s.now()})
	if err != nil {
		return nil, repository.ToAppError(err, "failed to list due flashcards")
	}
	return cards, nil
}

func (s *Service) Stats(ctx context.Context, ownerID string) (domain.FlashcardStats, error) {
	stats, err := s.repo.CountFlashcards(ctx, ownerID, s.now())
	if err != nil {
		return domain.FlashcardStats{}, repository.ToAppError(err, "failed to count flashcards")
	}
	return stats, nil
}

// Rate records a review of cardID with quality in 0..5 and reschedules it.
// A concurrent review of the same card makes this one re-read the card and
// schedule from its new state.
func (s *Service) Rate(ctx context.Context, ownerID, cardID string, quality int) (card *domain.Flashcard, err error) {
	ctx, span := observability.StartSpan(ctx, "study.Rate",
		attribute.String("owner.id", ownerID),
		attribute.String("flashcard.id", cardID),
		attribute.Int("review.quality", quality),
	)
	defer func() { observability.EndSpan(span, err) }()

	if err = review.ValidateQuality(quality); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxRetries; attempt++ {
		card, err = s.repo.FindFlashcardByID(ctx, ownerID, cardID)
		if err != nil {
			return nil, repository.ToAppError(err, "failed to load flashcard")
		}
		expected := card.Revision
		now := s.now()
		if err = review.Apply(card, quality, now); err != nil {
			return nil, err
		}
		card.Revision++

		err = s.repo.UpdateFlashcard(ctx, card, expected)
		if err == nil {
			break
		}
		if !repository.IsConflict(err) {
			return nil, repository.ToAppError(err, "failed to save review")
		}
		s.logger.Debug("review conflict, retrying", zap.String("flashcard_id", cardID), zap.Int("attempt", attempt+1))
	}
	if err != nil {
		return nil, repository.ToAppError(err, "failed to save review")
	}

	s.metrics.ReviewRecorded(review.Passed(quality))
	events.Emit(ctx, s.publisher, s.logger, events.New(events.FlashcardReviewed, ownerID, card.ID, card.UpdatedAt, map[string]interface{}{
		"nodeId":   card.NodeID,
		"quality":  quality,
		"interval": card.Interval,
		"ease":     card.Ease,
		"dueAt":    card.DueAt,
	}))
	return card, nil
}

func (s *Service) DeleteCard(ctx context.Context, ownerID, cardID string) error {
	if err := s.repo.DeleteFlashcard(ctx, ownerID, cardID); err != nil {
		return repository.ToAppError(err, "failed to delete flashcard")
	}
	return nil
}
