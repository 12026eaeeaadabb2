// Package knowledge implements the node and edge use cases: CRUD, the
// part-of hierarchy, workspace import/export, and AI-assisted tagging and
// linking.
package knowledge

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Raghvendrath3/conceptForge/internal/domain"
	"github.com/Raghvendrath3/conceptForge/internal/events"
	"github.com/Raghvendrath3/conceptForge/internal/observability"
	"github.com/Raghvendrath3/conceptForge/internal/repository"
	"github.com/Raghvendrath3/conceptForge/internal/service/llm"
)

const (
	maxRetries = 3
	baseDelay  = 100 * time.Millisecond

	// DefaultMaxCandidates bounds the nodes offered to the suggester when
	// auto-connecting.
	DefaultMaxCandidates = 20
)

// Service coordinates the store, the suggester and the event publisher.
type Service struct {
	repo          repository.Repository
	suggester     *llm.Suggester
	publisher     events.Publisher
	metrics       *observability.Collector
	logger        *zap.Logger
	now           func() time.Time
	sleep         func(context.Context, time.Duration) error
	maxCandidates int
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMaxCandidates overrides DefaultMaxCandidates.
func WithMaxCandidates(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxCandidates = n
		}
	}
}

// NewService creates a Service. metrics may be nil.
func NewService(repo repository.Repository, suggester *llm.Suggester, publisher events.Publisher,
	metrics *observability.Collector, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		repo:          repo,
		suggester:     suggester,
		publisher:     publisher,
		metrics:       metrics,
		logger:        logger.Named("knowledge"),
		now:           func() time.Time { return time.Now().UTC() },
		sleep:         sleepCtx,
		maxCandidates: DefaultMaxCandidates,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) emit(ctx context.Context, evts ...events.Event) {
	events.Emit(ctx, s.publisher, s.logger, evts...)
}

// updateNodeWithRetry re-reads the node and reapplies fn when the store
// reports a concurrent update, backing off 100ms, 200ms between attempts.
func (s *Service) updateNodeWithRetry(ctx context.Context, ownerID, nodeID string, fn func(*domain.Node) error) (*domain.Node, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		node, err := s.repo.FindNodeByID(ctx, ownerID, nodeID)
		if err != nil {
			return nil, err
		}
		expected := node.Version
		if err := fn(node); err != nil {
			return nil, err
		}

		err = s.repo.UpdateNode(ctx, node, expected)
		if err == nil {
			return node, nil
		}
		if !repository.IsConflict(err) {
			return nil, err
		}
		lastErr = err
		s.logger.Debug("node update conflict, retrying",
			zap.String("node_id", nodeID),
			zap.Int("attempt", attempt+1),
		)
		if attempt < maxRetries-1 {
			if err := s.sleep(ctx, baseDelay*time.Duration(1<<attempt)); err != nil {
				return nil, err
			}
		}
	}
	return nil, lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func derefNodes(in []*domain.Node) []domain.Node {
	out := make([]domain.Node, 0, len(in))
	for _, n := range in {
		out = append(out, *n)
	}
	return out
}

func derefEdges(in []*domain.Edge) []domain.Edge {
	out := make([]domain.Edge, 0, len(in))
	for _, e := range in {
		out = append(out, *e)
	}
	return out
}
