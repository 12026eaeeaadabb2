package knowledge

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Raghvendrath3/conceptForge/internal/domain"
	"github.com/Raghvendrath3/conceptForge/internal/events"
	"github.com/Raghvendrath3/conceptForge/internal/observability"
	"github.com/Raghvendrath3/conceptForge/internal/repository"
)

// EdgeFilter narrows ListEdges. Empty fields do not filter.
type EdgeFilter struct {
	From  string
	To    string
	Label domain.EdgeLabel
}

// CreateEdge links two existing nodes of the owner. A second edge for the
// same (from, to) pair is a conflict whatever its label.
func (s *Service) CreateEdge(ctx context.Context, ownerID, from, to string, label domain.EdgeLabel) (edge *domain.Edge, err error) {
	ctx, span := observability.StartSpan(ctx, "knowledge.CreateEdge",
		attribute.String("owner.id", ownerID),
		attribute.String("edge.label", string(label)),
	)
	defer func() { observability.EndSpan(span, err) }()

	edge, err = domain.NewEdge(ownerID, from, to, label, s.now())
	if err != nil {
		return nil, err
	}
	for _, id := range []string{from, to} {
		if _, err = s.repo.FindNodeByID(ctx, ownerID, id); err != nil {
			return nil, repository.ToAppError(err, "failed to load edge endpoint")
		}
	}
	if err = s.repo.CreateEdge(ctx, edge); err != nil {
		return nil, repository.ToAppError(err, "failed to create edge")
	}

	s.metrics.EdgeCreated(1)
	s.emitEdgeCreated(ctx, edge)
	return edge, nil
}

func (s *Service) ListEdges(ctx context.Context, ownerID string, filter EdgeFilter) ([]*domain.Edge, error) {
	edges, err := s.repo.FindEdges(ctx, repository.EdgeQuery{
		OwnerID: ownerID,
		From:    filter.From,
		To:      filter.To,
		Label:   filter.Label,
	})
	if err != nil {
		return nil, repository.ToAppError(err, "failed to list edges")
	}
	return edges, nil
}

func (s *Service) DeleteEdge(ctx context.Context, ownerID, edgeID string) error {
	edge, err := s.repo.FindEdgeByID(ctx, ownerID, edgeID)
	if err != nil {
		return repository.ToAppError(err, "failed to load edge")
	}
	if err := s.repo.DeleteEdge(ctx, ownerID, edgeID); err != nil {
		return repository.ToAppError(err, "failed to delete edge")
	}
	s.emit(ctx, events.New(events.EdgeDeleted, ownerID, edgeID, s.now(), map[string]interface{}{
		"from":  edge.From,
		"to":    edge.To,
		"label": edge.Label,
	}))
	return nil
}

func (s *Service) emitEdgeCreated(ctx context.Context, edge *domain.Edge) {
	s.emit(ctx, events.New(events.EdgeCreated, edge.OwnerID, edge.ID, edge.CreatedAt, map[string]interface{}{
		"from":  edge.From,
		"to":    edge.To,
		"label": edge.Label,
	}))
}
