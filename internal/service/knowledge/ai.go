package knowledge

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/Raghvendrath3/conceptForge/internal/domain"
	"github.com/Raghvendrath3/conceptForge/internal/observability"
	"github.com/Raghvendrath3/conceptForge/internal/repository"
)

// ConnectResult is the outcome of AutoConnect.
type ConnectResult struct {
	Message     string         `json:"message"`
	Connections []*domain.Edge `json:"connections"`
}

// SuggestTags proposes tags for content.
func (s *Service) SuggestTags(ctx context.Context, content string) ([]string, error) {
	if strings.TrimSpace(content) == "" {
		return nil, errContentRequired
	}
	return s.suggester.SuggestTags(ctx, content), nil
}

// AutoConnect asks the suggester which of the owner's other nodes relate to
// nodeID and creates an edge from nodeID for each suggestion that names an
// existing node not already linked from it.
func (s *Service) AutoConnect(ctx context.Context, ownerID, nodeID string) (res *ConnectResult, err error) {
	if nodeID == "" {
		return nil, errNodeIDRequired
	}
	ctx, span := observability.StartSpan(ctx, "knowledge.AutoConnect",
		attribute.String("owner.id", ownerID),
		attribute.String("node.id", nodeID),
	)
	defer func() { observability.EndSpan(span, err) }()

	target, err := s.repo.FindNodeByID(ctx, ownerID, nodeID)
	if err != nil {
		return nil, repository.ToAppError(err, "failed to load node")
	}
	candidates, err := s.repo.FindNodes(ctx, repository.NodeQuery{
		OwnerID:   ownerID,
		ExcludeID: nodeID,
		Limit:     s.maxCandidates,
	})
	if err != nil {
		return nil, repository.ToAppError(err, "failed to load candidate nodes")
	}
	if len(candidates) == 0 {
		return &ConnectResult{Message: "No other nodes to connect to", Connections: []*domain.Edge{}}, nil
	}

	known := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		known[c.ID] = struct{}{}
	}
	existing, err := s.repo.FindEdges(ctx, repository.EdgeQuery{OwnerID: ownerID, From: nodeID})
	if err != nil {
		return nil, repository.ToAppError(err, "failed to load edges")
	}
	linked := make(map[string]struct{}, len(existing))
	for _, e := range existing {
		linked[e.To] = struct{}{}
	}

	created := []*domain.Edge{}
	for _, conn := range s.suggester.FindConnections(ctx, *target, derefNodes(candidates)) {
		if _, ok := known[conn.To]; !ok {
			s.logger.Debug("ignoring suggestion for unknown node", zap.String("to", conn.To))
			continue
		}
		if _, ok := linked[conn.To]; ok {
			continue
		}
		edge, err := domain.NewEdge(ownerID, nodeID, conn.To, conn.Label, s.now())
		if err != nil {
			continue
		}
		if err := s.repo.CreateEdge(ctx, edge); err != nil {
			if repository.IsConflict(err) {
				continue
			}
			return nil, repository.ToAppError(err, "failed to create edge")
		}
		linked[conn.To] = struct{}{}
		created = append(created, edge)
		s.emitEdgeCreated(ctx, edge)
	}

	s.metrics.EdgeCreated(len(created))
	return &ConnectResult{
		Message:     fmt.Sprintf("Created %d new connections", len(created)),
		Connections: created,
	}, nil
}
