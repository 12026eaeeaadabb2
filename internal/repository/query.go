package repository

import (
	"time"

	"github.com/Raghvendrath3/conceptForge/internal/domain"
)

// NodeQuery selects an owner's nodes.
type NodeQuery struct {
	OwnerID   string          // required
	Type      domain.NodeType // optional exact type match
	Tags      []string        // optional, matches nodes carrying any of them
	ExcludeID string          // optional
	Limit     int             // 0 means no limit
}

// Validate checks the query parameters.
func (q NodeQuery) Validate() error {
	if q.OwnerID == "" {
		return NewInvalidQuery("OwnerID", "cannot be empty")
	}
	if q.Limit < 0 {
		return NewInvalidQuery("Limit", "cannot be negative")
	}
	if q.Type != "" && !q.Type.IsValid() {
		return NewInvalidQuery("Type", "unknown node type")
	}
	return nil
}

// Matches reports whether n satisfies every filter of q.
func (q NodeQuery) Matches(n domain.Node) bool {
	if n.OwnerID != q.OwnerID {
		return false
	}
	if q.Type != "" && n.Type != q.Type {
		return false
	}
	if len(q.Tags) > 0 && !n.HasAnyTag(q.Tags) {
		return false
	}
	if q.ExcludeID != "" && n.ID == q.ExcludeID {
		return false
	}
	return true
}

// EdgeQuery selects an owner's edges. Empty fields do not filter.
type EdgeQuery struct {
	OwnerID string
	From    string
	To      string
	// Touching matches edges where either endpoint equals the id.
	Touching string
	Label    domain.EdgeLabel
}

func (q EdgeQuery) Validate() error {
	if q.OwnerID == "" {
		return NewInvalidQuery("OwnerID", "cannot be empty")
	}
	if q.Label != "" && !q.Label.IsValid() {
		return NewInvalidQuery("Label", "unknown edge label")
	}
	return nil
}

func (q EdgeQuery) Matches(e domain.Edge) bool {
	if e.OwnerID != q.OwnerID {
		return false
	}
	if q.From != "" && e.From != q.From {
		return false
	}
	if q.To != "" && e.To != q.To {
		return false
	}
	if q.Touching != "" && e.From != q.Touching && e.To != q.Touching {
		return false
	}
	if q.Label != "" && e.Label != q.Label {
		return false
	}
	return true
}

// FlashcardQuery selects an owner's flashcards.
type FlashcardQuery struct {
	OwnerID string
	NodeID  string
	// DueAsOf keeps only cards with dueAt <= DueAsOf when non-zero.
	DueAsOf time.Time
}

func (q FlashcardQuery) Validate() error {
	if q.OwnerID == "" {
		return NewInvalidQuery("OwnerID", "cannot be empty")
	}
	return nil
}

func (q FlashcardQuery) Matches(f domain.Flashcard) bool {
	if f.OwnerID != q.OwnerID {
		return false
	}
	if q.NodeID != "" && f.NodeID != q.NodeID {
		return false
	}
	if !q.DueAsOf.IsZero() && !f.IsDue(q.DueAsOf) {
		return false
	}
	return true
}
