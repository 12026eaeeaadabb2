package knowledge

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/Raghvendrath3/conceptForge/internal/domain"
	"github.com/Raghvendrath3/conceptForge/internal/events"
	"github.com/Raghvendrath3/conceptForge/internal/observability"
	"github.com/Raghvendrath3/conceptForge/internal/repository"
	appErrors "github.com/Raghvendrath3/conceptForge/pkg/errors"
)

// WorkspaceNode is the import and export shape of a node. Ids, owners and
// versions are not carried over.
type WorkspaceNode struct {
	Title string          `json:"title"`
	Type  domain.NodeType `json:"type,omitempty"`
	Body  string          `json:"body"`
	Tags  []string        `json:"tags"`
}

// Import creates one new node per entry, owned by ownerID. Entries are all
// validated before anything is written.
func (s *Service) Import(ctx context.Context, ownerID string, entries []WorkspaceNode) (count int, err error) {
	ctx, span := observability.StartSpan(ctx, "knowledge.Import",
		attribute.String("owner.id", ownerID),
		attribute.Int("import.size", len(entries)),
	)
	defer func() { observability.EndSpan(span, err) }()

	now := s.now()
	nodes := make([]*domain.Node, 0, len(entries))
	for i, e := range entries {
		node, err := domain.NewNode(ownerID, e.Title, e.Type, e.Body, e.Tags, now)
		if err != nil {
			msg := err.Error()
			if appErr := appErrors.GetAppError(err); appErr != nil {
				msg = appErr.Message
			}
			return 0, appErrors.NewValidation(fmt.Sprintf("node %d: %s", i, msg))
		}
		nodes = append(nodes, node)
	}

	for _, node := range nodes {
		if err = s.repo.CreateNode(ctx, node); err != nil {
			s.metrics.NodeCreated(count)
			return count, repository.ToAppError(err, "import failed")
		}
		count++
	}

	s.metrics.NodeCreated(count)
	s.emit(ctx, events.New(events.WorkspaceImported, ownerID, ownerID, now, map[string]interface{}{
		"count": count,
	}))
	return count, nil
}

// Export returns every node of the owner in the import shape, most recently
// updated first.
func (s *Service) Export(ctx context.Context, ownerID string) ([]WorkspaceNode, error) {
	nodes, err := s.repo.FindNodes(ctx, repository.NodeQuery{OwnerID: ownerID})
	if err != nil {
		return nil, repository.ToAppError(err, "export failed")
	}
	out := make([]WorkspaceNode, 0, len(nodes))
	for _, n := range nodes {
		tags := n.Tags
		if tags == nil {
			tags = []string{}
		}
		out = append(out, WorkspaceNode{Title: n.Title, Type: n.Type, Body: n.Body, Tags: tags})
	}
	return out, nil
}
