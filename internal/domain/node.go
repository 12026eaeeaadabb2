// Package domain holds the ConceptForge entities: typed content nodes, the
// labeled edges between them, and the flashcards studied from them.
package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/Raghvendrath3/conceptForge/pkg/errors"
)

// NodeType is the closed set of node kinds.
type NodeType string

const (
	NodeTypeConcept NodeType = "concept"
	NodeTypeNote    NodeType = "note"
	NodeTypeSnippet NodeType = "snippet"
	NodeTypeProject NodeType = "project"
	NodeTypeSubject NodeType = "subject"
	NodeTypeChapter NodeType = "chapter"
)

// DefaultNodeType is used when a create or import request leaves the type empty.
const DefaultNodeType = NodeTypeConcept

// NodeTypes lists every node type in display order.
func NodeTypes() []NodeType {
	return []NodeType{
		NodeTypeConcept,
		NodeTypeNote,
		NodeTypeSnippet,
		NodeTypeProject,
		NodeTypeSubject,
		NodeTypeChapter,
	}
}

// IsValid reports whether t is one of the enumerated node types.
func (t NodeType) IsValid() bool {
	switch t {
	case NodeTypeConcept, NodeTypeNote, NodeTypeSnippet, NodeTypeProject, NodeTypeSubject, NodeTypeChapter:
		return true
	}
	return false
}

// ParseNodeType converts user input into a NodeType.
func ParseNodeType(s string) (NodeType, error) {
	t := NodeType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", appErrors.NewValidation(fmt.Sprintf("invalid node type %q", s))
	}
	return t, nil
}

// Color returns the graph color used for nodes of this type.
func (t NodeType) Color() string {
	switch t {
	case NodeTypeConcept:
		return "#3b82f6"
	case NodeTypeNote:
		return "#10b981"
	case NodeTypeSnippet:
		return "#f59e0b"
	case NodeTypeProject:
		return "#8b5cf6"
	case NodeTypeSubject:
		return "#a855f7"
	case NodeTypeChapter:
		return "#3b82f6"
	}
	return "#6366f1"
}

// Icon returns the icon name shown next to nodes of this type in the hierarchy.
func (t NodeType) Icon() string {
	switch t {
	case NodeTypeSubject:
		return "graduation-cap"
	case NodeTypeChapter:
		return "book"
	case NodeTypeConcept, NodeTypeNote, NodeTypeSnippet, NodeTypeProject:
		return "file-text"
	}
	return "file-text"
}

// Node is a unit of content owned by a single user.
type Node struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Type      NodeType  `json:"type"`
	Tags      []string  `json:"tags"`
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewNode validates input and builds a node at version 1.
func NewNode(ownerID, title string, nodeType NodeType, body string, tags []string, now time.Time) (*Node, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, appErrors.NewValidation("owner is required")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, appErrors.NewValidation("title is required")
	}
	if nodeType == "" {
		nodeType = DefaultNodeType
	}
	if !nodeType.IsValid() {
		return nil, appErrors.NewValidation(fmt.Sprintf("invalid node type %q", nodeType))
	}

	return &Node{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     title,
		Body:      body,
		Type:      nodeType,
		Tags:      NormalizeTags(tags),
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// NodeChanges describes a partial update. Empty Title and Type keep the
// current value, a nil Body or Tags keeps the current value, an empty
// non-nil Tags clears them.
type NodeChanges struct {
	Title string
	Body  *string
	Tags  []string
	Type  NodeType
}

// Apply mutates n with ch and bumps the version.
func (n *Node) Apply(ch NodeChanges, now time.Time) error {
	if ch.Type != "" && !ch.Type.IsValid() {
		return appErrors.NewValidation(fmt.Sprintf("invalid node type %q", ch.Type))
	}
	if title := strings.TrimSpace(ch.Title); title != "" {
		n.Title = title
	}
	if ch.Body != nil {
		n.Body = *ch.Body
	}
	if ch.Tags != nil {
		n.Tags = NormalizeTags(ch.Tags)
	}
	if ch.Type != "" {
		n.Type = ch.Type
	}
	n.Version++
	n.UpdatedAt = now
	return nil
}

// HasAnyTag reports whether the node carries at least one of tags.
func (n Node) HasAnyTag(tags []string) bool {
	for _, tag := range tags {
		if slices.Contains(n.Tags, tag) {
			return true
		}
	}
	return false
}

// NormalizeTags trims, drops empties and de-duplicates while keeping the
// first occurrence order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// ExecutionLog records one run of a snippet node.
type ExecutionLog struct {
	NodeID    string    `json:"nodeId"`
	Code      string    `json:"code"`
	Output    []string  `json:"output"`
	Timestamp time.Time `json:"timestamp"`
}
