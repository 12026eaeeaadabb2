// Package memory provides an in-memory Repository. It backs the test suites
// and the "memory" database provider for local development.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Raghvendrath3/conceptForge/internal/domain"
	"github.com/Raghvendrath3/conceptForge/internal/repository"
)

// Store keeps every entity in maps guarded by a single RWMutex.
type Store struct {
	mu sync.RWMutex

	nodes      map[string]*domain.Node      // nodeID -> Node
	edges      map[string]*domain.Edge      // edgeID -> Edge
	flashcards map[string]*domain.Flashcard // cardID -> Flashcard

	// For testing error scenarios
	shouldFailOn map[string]error
}

var _ repository.Repository = (*Store)(nil)

func New() *Store {
	return &Store{
		nodes:        make(map[string]*domain.Node),
		edges:        make(map[string]*domain.Edge),
		flashcards:   make(map[string]*domain.Flashcard),
		shouldFailOn: make(map[string]error),
	}
}

// SetError makes the named method return err until ClearErrors is called.
func (s *Store) SetError(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shouldFailOn[method] = err
}

// ClearErrors removes all configured errors.
func (s *Store) ClearErrors() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shouldFailOn = make(map[string]error)
}

func (s *Store) checkError(method string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shouldFailOn[method]
}

func copyNode(n *domain.Node) *domain.Node {
	c := *n
	c.Tags = slices.Clone(n.Tags)
	return &c
}

func copyEdge(e *domain.Edge) *domain.Edge {
	c := *e
	return &c
}

func copyFlashcard(f *domain.Flashcard) *domain.Flashcard {
	c := *f
	return &c
}

// Node operations

func (s *Store) CreateNode(ctx context.Context, node *domain.Node) error {
	if err := s.checkError("CreateNode"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[node.ID]; exists {
		return repository.NewConflict("node", node.ID, "already exists")
	}
	s.nodes[node.ID] = copyNode(node)
	return nil
}

func (s *Store) FindNodeByID(ctx context.Context, ownerID, nodeID string) (*domain.Node, error) {
	if err := s.checkError("FindNodeByID"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[nodeID]
	if !ok || n.OwnerID != ownerID {
		return nil, repository.NewNotFound("node", nodeID, ownerID)
	}
	return copyNode(n), nil
}

func (s *Store) FindNodes(ctx context.Context, query repository.NodeQuery) ([]*domain.Node, error) {
	if err := s.checkError("FindNodes"); err != nil {
		return nil, err
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Node, 0)
	for _, n := range s.nodes {
		if query.Matches(*n) {
			result = append(result, copyNode(n))
		}
	}
	repository.SortNodes(result)
	return repository.Limit(result, query.Limit), nil
}

func (s *Store) UpdateNode(ctx context.Context, node *domain.Node, expectedVersion int) error {
	if err := s.checkError("UpdateNode"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.nodes[node.ID]
	if !ok || current.OwnerID != node.OwnerID {
		return repository.NewNotFound("node", node.ID, node.OwnerID)
	}
	if current.Version != expectedVersion {
		return repository.VersionMismatch("node", node.ID, expectedVersion, current.Version)
	}
	s.nodes[node.ID] = copyNode(node)
	return nil
}

func (s *Store) DeleteNode(ctx context.Context, ownerID, nodeID string) error {
	if err := s.checkError("DeleteNode"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[nodeID]
	if !ok || n.OwnerID != ownerID {
		return repository.NewNotFound("node", nodeID, ownerID)
	}
	delete(s.nodes, nodeID)
	return nil
}

// Edge operations

func (s *Store) CreateEdge(ctx context.Context, edge *domain.Edge) error {
	if err := s.checkError("CreateEdge"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.edges[edge.ID]; exists {
		return repository.NewConflict("edge", edge.ID, "already exists")
	}
	for _, e := range s.edges {
		if e.OwnerID == edge.OwnerID && e.From == edge.From && e.To == edge.To {
			return repository.NewConflict("edge", e.ID, "an edge between these nodes already exists")
		}
	}
	s.edges[edge.ID] = copyEdge(edge)
	return nil
}

func (s *Store) FindEdgeByID(ctx context.Context, ownerID, edgeID string) (*domain.Edge, error) {
	if err := s.checkError("FindEdgeByID"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.edges[edgeID]
	if !ok || e.OwnerID != ownerID {
		return nil, repository.NewNotFound("edge", edgeID, ownerID)
	}
	return copyEdge(e), nil
}

func (s *Store) FindEdges(ctx context.Context, query repository.EdgeQuery) ([]*domain.Edge, error) {
	if err := s.checkError("FindEdges"); err != nil {
		return nil, err
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Edge, 0)
	for _, e := range s.edges {
		if query.Matches(*e) {
			result = append(result, copyEdge(e))
		}
	}
	repository.SortEdges(result)
	return result, nil
}

func (s *Store) DeleteEdge(ctx context.Context, ownerID, edgeID string) error {
	if err := s.checkError("DeleteEdge"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.edges[edgeID]
	if !ok || e.OwnerID != ownerID {
		return repository.NewNotFound("edge", edgeID, ownerID)
	}
	delete(s.edges, edgeID)
	return nil
}

func (s *Store) DeleteEdgesForNode(ctx context.Context, ownerID, nodeID string) (int, error) {
	if err := s.checkError("DeleteEdgesForNode"); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.edges {
		if e.OwnerID == ownerID && (e.From == nodeID || e.To == nodeID) {
			delete(s.edges, id)
			removed++
		}
	}
	return removed, nil
}

// Flashcard operations

func (s *Store) CreateFlashcard(ctx context.Context, card *domain.Flashcard) error {
	if err := s.checkError("CreateFlashcard"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.flashcards[card.ID]; exists {
		return repository.NewConflict("flashcard", card.ID, "already exists")
	}
	s.flashcards[card.ID] = copyFlashcard(card)
	return nil
}

func (s *Store) FindFlashcardByID(ctx context.Context, ownerID, cardID string) (*domain.Flashcard, error) {
	if err := s.checkError("FindFlashcardByID"); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.flashcards[cardID]
	if !ok || f.OwnerID != ownerID {
		return nil, repository.NewNotFound("flashcard", cardID, ownerID)
	}
	return copyFlashcard(f), nil
}

func (s *Store) FindFlashcards(ctx context.Context, query repository.FlashcardQuery) ([]*domain.Flashcard, error) {
	if err := s.checkError("FindFlashcards"); err != nil {
		return nil, err
	}
	if err := query.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Flashcard, 0)
	for _, f := range s.flashcards {
		if query.Matches(*f) {
			result = append(result, copyFlashcard(f))
		}
	}
	repository.SortFlashcards(result)
	return result, nil
}

func (s *Store) UpdateFlashcard(ctx context.Context, card *domain.Flashcard, expectedRevision int) error {
	if err := s.checkError("UpdateFlashcard"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.flashcards[card.ID]
	if !ok || current.OwnerID != card.OwnerID {
		return repository.NewNotFound("flashcard", card.ID, card.OwnerID)
	}
	if current.Revision != expectedRevision {
		return repository.VersionMismatch("flashcard", card.ID, expectedRevision, current.Revision)
	}
	s.flashcards[card.ID] = copyFlashcard(card)
	return nil
}

func (s *Store) DeleteFlashcard(ctx context.Context, ownerID, cardID string) error {
	if err := s.checkError("DeleteFlashcard"); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.flashcards[cardID]
	if !ok || f.OwnerID != ownerID {
		return repository.NewNotFound("flashcard", cardID, ownerID)
	}
	delete(s.flashcards, cardID)
	return nil
}

func (s *Store) DeleteFlashcardsForNode(ctx context.Context, ownerID, nodeID string) (int, error) {
	if err := s.checkError("DeleteFlashcardsForNode"); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, f := range s.flashcards {
		if f.OwnerID == ownerID && f.NodeID == nodeID {
			delete(s.flashcards, id)
			removed++
		}
	}
	return removed, nil
}

func (s *Store) CountFlashcards(ctx context.Context, ownerID string, dueAsOf time.Time) (domain.FlashcardStats, error) {
	if err := s.checkError("CountFlashcards"); err != nil {
		return domain.FlashcardStats{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats domain.FlashcardStats
	for _, f := range s.flashcards {
		if f.OwnerID != ownerID {
			continue
		}
		stats.Total++
		if f.IsDue(dueAsOf) {
			stats.Due++
		}
	}
	return stats, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.checkError("Ping")
}

func (s *Store) Close() error {
	return nil
}
