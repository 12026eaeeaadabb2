package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/Raghvendrath3/conceptForge/pkg/errors"
)

func TestNodeTypePresentation(t *testing.T) {
	tests := []struct {
		nodeType NodeType
		color    string
		icon     string
	}{
		{NodeTypeConcept, "#3b82f6", "file-text"},
		{NodeTypeNote, "#10b981", "file-text"},
		{NodeTypeSnippet, "#f59e0b", "file-text"},
		{NodeTypeProject, "#8b5cf6", "file-text"},
		{NodeTypeSubject, "#a855f7", "graduation-cap"},
		{NodeTypeChapter, "#3b82f6", "book"},
		{NodeType("unknown"), "#6366f1", "file-text"},
	}

	for _, tt := range tests {
		t.Run(string(tt.nodeType), func(t *testing.T) {
			assert.Equal(t, tt.color, tt.nodeType.Color())
			assert.Equal(t, tt.icon, tt.nodeType.Icon())
		})
	}

	for _, nt := range NodeTypes() {
		assert.True(t, nt.IsValid(), nt)
	}
}

func TestParseNodeType(t *testing.T) {
	nt, err := ParseNodeType(" Chapter ")
	require.NoError(t, err)
	assert.Equal(t, NodeTypeChapter, nt)

	_, err = ParseNodeType("lesson")
	assert.True(t, appErrors.IsValidation(err))
}

func TestNewNode(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("defaults", func(t *testing.T) {
		node, err := NewNode("owner-1", "  Closures ", "", "body", []string{"js", " js", "", "scope"}, now)
		require.NoError(t, err)
		assert.NotEmpty(t, node.ID)
		assert.Equal(t, "Closures", node.Title)
		assert.Equal(t, NodeTypeConcept, node.Type)
		assert.Equal(t, []string{"js", "scope"}, node.Tags)
		assert.Equal(t, 1, node.Version)
		assert.Equal(t, now, node.CreatedAt)
		assert.Equal(t, now, node.UpdatedAt)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		_, err := NewNode("owner-1", "   ", NodeTypeNote, "", nil, now)
		assert.True(t, appErrors.IsValidation(err))
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := NewNode("owner-1", "x", NodeType("lesson"), "", nil, now)
		assert.True(t, appErrors.IsValidation(err))
	})
}

func TestNodeApply(t *testing.T) {
	now := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	later := now.Add(time.Hour)

	base := func() *Node {
		n, err := NewNode("owner-1", "Title", NodeTypeNote, "body", []string{"a"}, now)
		require.NoError(t, err)
		return n
	}

	t.Run("empty changes keep values and bump version", func(t *testing.T) {
		n := base()
		require.NoError(t, n.Apply(NodeChanges{}, later))
		assert.Equal(t, "Title", n.Title)
		assert.Equal(t, "body", n.Body)
		assert.Equal(t, []string{"a"}, n.Tags)
		assert.Equal(t, NodeTypeNote, n.Type)
		assert.Equal(t, 2, n.Version)
		assert.Equal(t, later, n.UpdatedAt)
	})

	t.Run("explicit empty body and tags clear them", func(t *testing.T) {
		n := base()
		empty := ""
		require.NoError(t, n.Apply(NodeChanges{Body: &empty, Tags: []string{}}, later))
		assert.Equal(t, "", n.Body)
		assert.Empty(t, n.Tags)
	})

	t.Run("invalid type leaves node untouched", func(t *testing.T) {
		n := base()
		err := n.Apply(NodeChanges{Title: "New", Type: "lesson"}, later)
		assert.True(t, appErrors.IsValidation(err))
		assert.Equal(t, "Title", n.Title)
		assert.Equal(t, 1, n.Version)
	})
}

func TestNewEdge(t *testing.T) {
	now := time.Now()

	edge, err := NewEdge("owner-1", "a", "b", "", now)
	require.NoError(t, err)
	assert.Equal(t, EdgeLabelRelated, edge.Label)

	_, err = NewEdge("owner-1", "a", "a", EdgeLabelPartOf, now)
	assert.True(t, appErrors.IsValidation(err))

	_, err = NewEdge("owner-1", "a", "b", EdgeLabel("sibling"), now)
	assert.True(t, appErrors.IsValidation(err))
}

func TestPartOfDirection(t *testing.T) {
	chapterToSubject := Edge{From: "chapter", To: "subject", Label: EdgeLabelPartOf}

	child, parent, ok := PartOfLink(chapterToSubject)
	require.True(t, ok)
	assert.Equal(t, "chapter", child)
	assert.Equal(t, "subject", parent)

	assert.True(t, IsChildOf(chapterToSubject, "subject"))
	assert.False(t, IsChildOf(chapterToSubject, "chapter"))

	related := Edge{From: "chapter", To: "subject", Label: EdgeLabelRelated}
	assert.False(t, IsChildOf(related, "subject"))
}

func TestNewFlashcard(t *testing.T) {
	now := time.Now()

	card, err := NewFlashcard("owner-1", "node-1", "Q?", "A.", now)
	require.NoError(t, err)
	assert.Equal(t, DefaultEase, card.Ease)
	assert.Equal(t, 0, card.Interval)
	assert.True(t, card.IsDue(now))
	assert.False(t, card.IsDue(now.Add(-time.Second)))

	_, err = NewFlashcard("owner-1", "node-1", "", "A.", now)
	assert.True(t, appErrors.IsValidation(err))
}
