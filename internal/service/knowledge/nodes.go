package knowledge

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/Raghvendrath3/conceptForge/internal/domain"
	"github.com/Raghvendrath3/conceptForge/internal/events"
	"github.com/Raghvendrath3/conceptForge/internal/observability"
	"github.com/Raghvendrath3/conceptForge/internal/repository"
)

// CreateNodeInput carries the fields of a new node. An empty Type means
// concept.
type CreateNodeInput struct {
	Title string
	Type  domain.NodeType
	Body  string
	Tags  []string
}

// NodeFilter narrows ListNodes. Tags match any-of.
type NodeFilter struct {
	Type domain.NodeType
	Tags []string
}

// DeleteResult reports what a node delete removed.
type DeleteResult struct {
	EdgesDeleted      int `json:"edgesDeleted"`
	FlashcardsDeleted int `json:"flashcardsDeleted"`
}

func (s *Service) CreateNode(ctx context.Context, ownerID string, in CreateNodeInput) (node *domain.Node, err error) {
	ctx, span := observability.StartSpan(ctx, "knowledge.CreateNode", attribute.String("owner.id", ownerID))
	defer func() { observability.EndSpan(span, err) }()

	node, err = domain.NewNode(ownerID, in.Title, in.Type, in.Body, in.Tags, s.now())
	if err != nil {
		return nil, err
	}
	if err = s.repo.CreateNode(ctx, node); err != nil {
		return nil, repository.ToAppError(err, "failed to create node")
	}

	s.metrics.NodeCreated(1)
	s.emit(ctx, events.New(events.NodeCreated, ownerID, node.ID, node.CreatedAt, map[string]interface{}{
		"type":  node.Type,
		"title": node.Title,
	}))
	return node, nil
}

func (s *Service) GetNode(ctx context.Context, ownerID, nodeID string) (*domain.Node, error) {
	node, err := s.repo.FindNodeByID(ctx, ownerID, nodeID)
	if err != nil {
		return nil, repository.ToAppError(err, "failed to load node")
	}
	return node, nil
}

// ListNodes returns the owner's nodes, most recently updated first.
func (s *Service) ListNodes(ctx context.Context, ownerID string, filter NodeFilter) ([]*domain.Node, error) {
	nodes, err := s.repo.FindNodes(ctx, repository.NodeQuery{
		OwnerID: ownerID,
		Type:    filter.Type,
		Tags:    domain.NormalizeTags(filter.Tags),
	})
	if err != nil {
		return nil, repository.ToAppError(err, "failed to list nodes")
	}
	return nodes, nil
}

// UpdateNode applies a partial update and bumps the version. Concurrent
// writers are resolved by re-reading and reapplying the changes.
func (s *Service) UpdateNode(ctx context.Context, ownerID, nodeID string, changes domain.NodeChanges) (node *domain.Node, err error) {
	ctx, span := observability.StartSpan(ctx, "knowledge.UpdateNode",
		attribute.String("owner.id", ownerID),
		attribute.String("node.id", nodeID),
	)
	defer func() { observability.EndSpan(span, err) }()

	node, err = s.updateNodeWithRetry(ctx, ownerID, nodeID, func(n *domain.Node) error {
		return n.Apply(changes, s.now())
	})
	if err != nil {
		return nil, repository.ToAppError(err, "failed to update node")
	}

	s.emit(ctx, events.New(events.NodeUpdated, ownerID, node.ID, node.UpdatedAt, map[string]interface{}{
		"version": node.Version,
	}))
	return node, nil
}

// DeleteNode removes the node together with every edge touching it and
// every flashcard studied from it.
func (s *Service) DeleteNode(ctx context.Context, ownerID, nodeID string) (res DeleteResult, err error) {
	ctx, span := observability.StartSpan(ctx, "knowledge.DeleteNode",
		attribute.String("owner.id", ownerID),
		attribute.String("node.id", nodeID),
	)
	defer func() { observability.EndSpan(span, err) }()

	if _, err = s.repo.FindNodeByID(ctx, ownerID, nodeID); err != nil {
		return res, repository.ToAppError(err, "failed to load node")
	}
	if res.EdgesDeleted, err = s.repo.DeleteEdgesForNode(ctx, ownerID, nodeID); err != nil {
		return res, repository.ToAppError(err, "failed to delete node edges")
	}
	if res.FlashcardsDeleted, err = s.repo.DeleteFlashcardsForNode(ctx, ownerID, nodeID); err != nil {
		return res, repository.ToAppError(err, "failed to delete node flashcards")
	}
	if err = s.repo.DeleteNode(ctx, ownerID, nodeID); err != nil {
		return res, repository.ToAppError(err, "failed to delete node")
	}

	s.metrics.NodeDeleted()
	s.logger.Debug("node deleted",
		zap.String("node_id", nodeID),
		zap.Int("edges", res.EdgesDeleted),
		zap.Int("flashcards", res.FlashcardsDeleted),
	)
	s.emit(ctx, events.New(events.NodeDeleted, ownerID, nodeID, s.now(), map[string]interface{}{
		"edgesDeleted":      res.EdgesDeleted,
		"flashcardsDeleted": res.FlashcardsDeleted,
	}))
	return res, nil
}

// LogExecution records a run of a snippet node. The log is published as an
// event and returned; it is not stored on the node.
func (s *Service) LogExecution(ctx context.Context, ownerID, nodeID, code string, output []string) (*domain.ExecutionLog, error) {
	node, err := s.repo.FindNodeByID(ctx, ownerID, nodeID)
	if err != nil {
		return nil, repository.ToAppError(err, "failed to load node")
	}
	if node.Type != domain.NodeTypeSnippet {
		return nil, errSnippetOnly
	}
	if output == nil {
		output = []string{}
	}

	log := &domain.ExecutionLog{
		NodeID:    nodeID,
		Code:      code,
		Output:    output,
		Timestamp: s.now(),
	}
	s.emit(ctx, events.New(events.SnippetExecuted, ownerID, nodeID, log.Timestamp, map[string]interface{}{
		"lines": len(output),
	}))
	return log, nil
}
