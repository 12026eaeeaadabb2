package knowledge

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/Raghvendrath3/conceptForge/internal/domain"
	"github.com/Raghvendrath3/conceptForge/internal/hierarchy"
	"github.com/Raghvendrath3/conceptForge/internal/observability"
	"github.com/Raghvendrath3/conceptForge/internal/repository"
)

// Children returns the nodes linked to nodeID by a part-of edge, optionally
// restricted to one type, most recently updated first.
func (s *Service) Children(ctx context.Context, ownerID, nodeID string, typeFilter domain.NodeType) ([]domain.Node, error) {
	if _, err := s.repo.FindNodeByID(ctx, ownerID, nodeID); err != nil {
		return nil, repository.ToAppError(err, "failed to load node")
	}
	edges, err := s.repo.FindEdges(ctx, repository.EdgeQuery{
		OwnerID: ownerID,
		To:      nodeID,
		Label:   domain.EdgeLabelPartOf,
	})
	if err != nil {
		return nil, repository.ToAppError(err, "failed to load edges")
	}
	nodes, err := s.repo.FindNodes(ctx, repository.NodeQuery{OwnerID: ownerID, Type: typeFilter})
	if err != nil {
		return nil, repository.ToAppError(err, "failed to load nodes")
	}
	return hierarchy.Children(nodeID, derefEdges(edges), derefNodes(nodes), typeFilter), nil
}

// Hierarchy resolves the owner's subject forest. Integrity problems in the
// graph are logged and returned alongside the forest; they never fail the
// call.
func (s *Service) Hierarchy(ctx context.Context, ownerID string) (forest hierarchy.Forest, err error) {
	ctx, span := observability.StartSpan(ctx, "knowledge.Hierarchy", attribute.String("owner.id", ownerID))
	defer func() { observability.EndSpan(span, err) }()

	nodes, err := s.repo.FindNodes(ctx, repository.NodeQuery{OwnerID: ownerID})
	if err != nil {
		return forest, repository.ToAppError(err, "failed to load nodes")
	}
	edges, err := s.repo.FindEdges(ctx, repository.EdgeQuery{OwnerID: ownerID, Label: domain.EdgeLabelPartOf})
	if err != nil {
		return forest, repository.ToAppError(err, "failed to load edges")
	}

	forest = hierarchy.BuildForest(derefNodes(nodes), derefEdges(edges))
	for _, w := range forest.Warnings {
		s.metrics.HierarchyWarning(string(w.Kind))
		s.logger.Warn("hierarchy data integrity warning",
			zap.String("owner_id", ownerID),
			zap.String("kind", string(w.Kind)),
			zap.String("node_id", w.NodeID),
			zap.String("edge_id", w.EdgeID),
			zap.Strings("path", w.Path),
			zap.String("detail", w.Message),
		)
	}
	span.SetAttributes(
		attribute.Int("hierarchy.roots", len(forest.Roots)),
		attribute.Int("hierarchy.warnings", len(forest.Warnings)),
	)
	return forest, nil
}
