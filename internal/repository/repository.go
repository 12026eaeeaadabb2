// Package repository defines the persistence contract for ConceptForge.
//
// Every record is scoped to an owner; implementations never return another
// owner's data. Lookups by id that miss return ErrNotFound. Updates are
// optimistic: the caller passes the version (or revision) it read, and the
// store returns ErrConflict when the stored value has moved on. Listing
// order is part of the contract:
//
//   - nodes: most recently updated first, ties by id
//   - edges: oldest first, ties by id
//   - flashcards: earliest due first, ties by id
package repository

import (
	"context"
	"time"

	"github.com/Raghvendrath3/conceptForge/internal/domain"
)

// NodeRepository persists nodes.
type NodeRepository interface {
	CreateNode(ctx context.Context, node *domain.Node) error
	FindNodeByID(ctx context.Context, ownerID, nodeID string) (*domain.Node, error)
	FindNodes(ctx context.Context, query NodeQuery) ([]*domain.Node, error)
	// UpdateNode stores node if the stored version equals expectedVersion.
	UpdateNode(ctx context.Context, node *domain.Node, expectedVersion int) error
	DeleteNode(ctx context.Context, ownerID, nodeID string) error
}

// EdgeRepository persists edges. At most one edge exists per owner and
// ordered (from, to) pair.
type EdgeRepository interface {
	CreateEdge(ctx context.Context, edge *domain.Edge) error
	FindEdgeByID(ctx context.Context, ownerID, edgeID string) (*domain.Edge, error)
	FindEdges(ctx context.Context, query EdgeQuery) ([]*domain.Edge, error)
	DeleteEdge(ctx context.Context, ownerID, edgeID string) error
	// DeleteEdgesForNode removes every edge touching nodeID and returns how
	// many were removed.
	DeleteEdgesForNode(ctx context.Context, ownerID, nodeID string) (int, error)
}

// FlashcardRepository persists flashcards.
type FlashcardRepository interface {
	CreateFlashcard(ctx context.Context, card *domain.Flashcard) error
	FindFlashcardByID(ctx context.Context, ownerID, cardID string) (*domain.Flashcard, error)
	FindFlashcards(ctx context.Context, query FlashcardQuery) ([]*domain.Flashcard, error)
	// UpdateFlashcard stores card if the stored revision equals expectedRevision.
	UpdateFlashcard(ctx context.Context, card *domain.Flashcard, expectedRevision int) error
	DeleteFlashcard(ctx context.Context, ownerID, cardID string) error
	DeleteFlashcardsForNode(ctx context.Context, ownerID, nodeID string) (int, error)
	CountFlashcards(ctx context.Context, ownerID string, dueAsOf time.Time) (domain.FlashcardStats, error)
}

// Repository is the full store used by the services.
type Repository interface {
	NodeRepository
	EdgeRepository
	FlashcardRepository

	Ping(ctx context.Context) error
	Close() error
}
