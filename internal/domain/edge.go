package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/Raghvendrath3/conceptForge/pkg/errors"
)

// EdgeLabel is the closed set of relation kinds.
type EdgeLabel string

const (
	EdgeLabelPrerequisite EdgeLabel = "prerequisite"
	EdgeLabelRelated      EdgeLabel = "related"
	EdgeLabelPartOf       EdgeLabel = "part-of"
)

// DefaultEdgeLabel is used when a suggestion or request omits the label.
const DefaultEdgeLabel = EdgeLabelRelated

// IsValid reports whether l is one of the enumerated labels.
func (l EdgeLabel) IsValid() bool {
	switch l {
	case EdgeLabelPrerequisite, EdgeLabelRelated, EdgeLabelPartOf:
		return true
	}
	return false
}

// ParseEdgeLabel converts user input into an EdgeLabel.
func ParseEdgeLabel(s string) (EdgeLabel, error) {
	l := EdgeLabel(strings.ToLower(strings.TrimSpace(s)))
	if !l.IsValid() {
		return "", appErrors.NewValidation(fmt.Sprintf("invalid edge label %q", s))
	}
	return l, nil
}

// Edge is a directed, labeled relation between two nodes of one owner.
type Edge struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Label     EdgeLabel `json:"label"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewEdge validates input and builds an edge.
func NewEdge(ownerID, from, to string, label EdgeLabel, now time.Time) (*Edge, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, appErrors.NewValidation("owner is required")
	}
	if from == "" || to == "" {
		return nil, appErrors.NewValidation("from and to are required")
	}
	if from == to {
		return nil, appErrors.NewValidation("an edge cannot connect a node to itself")
	}
	if label == "" {
		label = DefaultEdgeLabel
	}
	if !label.IsValid() {
		return nil, appErrors.NewValidation(fmt.Sprintf("invalid edge label %q", label))
	}

	return &Edge{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		From:      from,
		To:        to,
		Label:     label,
		CreatedAt: now,
	}, nil
}

// PartOfLink returns the child and parent of a part-of edge. The child is
// the edge's From node and the parent its To node; ok is false for any
// other label. Every hierarchy computation reads direction through here.
func PartOfLink(e Edge) (childID, parentID string, ok bool) {
	if e.Label != EdgeLabelPartOf {
		return "", "", false
	}
	return e.From, e.To, true
}

// IsChildOf reports whether e makes its child a child of parentID.
func IsChildOf(e Edge, parentID string) bool {
	_, parent, ok := PartOfLink(e)
	return ok && parent == parentID
}
