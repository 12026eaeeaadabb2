// Package repotest holds the behavioural checks every Repository
// implementation must pass.
package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Raghvendrath3/conceptForge/internal/domain"
	"github.com/Raghvendrath3/conceptForge/internal/repository"
)

// Factory returns an empty repository. The suite closes it.
type Factory func(t *testing.T) repository.Repository

var t0 = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

func mustNode(t *testing.T, owner, title string, typ domain.NodeType, tags []string, at time.Time) *domain.Node {
	t.Helper()
	n, err := domain.NewNode(owner, title, typ, "body of "+title, tags, at)
	require.NoError(t, err)
	return n
}

func mustEdge(t *testing.T, owner, from, to string, label domain.EdgeLabel, at time.Time) *domain.Edge {
	t.Helper()
	e, err := domain.NewEdge(owner, from, to, label, at)
	require.NoError(t, err)
	return e
}

func mustCard(t *testing.T, owner, nodeID, q string, due time.Time) *domain.Flashcard {
	t.Helper()
	c, err := domain.NewFlashcard(owner, nodeID, q, "answer", t0)
	require.NoError(t, err)
	c.DueAt = due
	return c
}

// Run executes the suite against repositories built by newRepo.
func Run(t *testing.T, newRepo Factory) {
	open := func(t *testing.T) repository.Repository {
		r := newRepo(t)
		t.Cleanup(func() { _ = r.Close() })
		return r
	}

	t.Run("node round trip", func(t *testing.T) {
		ctx := context.Background()
		r := open(t)
		n := mustNode(t, "u1", "Closures", domain.NodeTypeConcept, []string{"js", "functions"}, t0)

		require.NoError(t, r.CreateNode(ctx, n))
		got, err := r.FindNodeByID(ctx, "u1", n.ID)
		require.NoError(t, err)
		assert.Equal(t, n.Title, got.Title)
		assert.Equal(t, n.Body, got.Body)
		assert.Equal(t, n.Tags, got.Tags)
		assert.Equal(t, 1, got.Version)
		assert.True(t, n.CreatedAt.Equal(got.CreatedAt))

		_, err = r.FindNodeByID(ctx, "u2", n.ID)
		assert.True(t, repository.IsNotFound(err), "other owners must not see the node")

		assert.True(t, repository.IsConflict(r.CreateNode(ctx, n)))
	})

	t.Run("find nodes filters and orders", func(t *testing.T) {
		ctx := context.Background()
		r := open(t)
		a := mustNode(t, "u1", "A", domain.NodeTypeConcept, []string{"js"}, t0)
		b := mustNode(t, "u1", "B", domain.NodeTypeNote, []string{"go"}, t0.Add(time.Minute))
		c := mustNode(t, "u1", "C", domain.NodeTypeConcept, []string{"go", "js"}, t0.Add(2*time.Minute))
		other := mustNode(t, "u2", "D", domain.NodeTypeConcept, nil, t0)
		for _, n := range []*domain.Node{a, b, c, other} {
			require.NoError(t, r.CreateNode(ctx, n))
		}

		titles := func(nodes []*domain.Node) []string {
			out := []string{}
			for _, n := range nodes {
				out = append(out, n.Title)
			}
			return out
		}

		all, err := r.FindNodes(ctx, repository.NodeQuery{OwnerID: "u1"})
		require.NoError(t, err)
		assert.Equal(t, []string{"C", "B", "A"}, titles(all))

		concepts, err := r.FindNodes(ctx, repository.NodeQuery{OwnerID: "u1", Type: domain.NodeTypeConcept})
		require.NoError(t, err)
		assert.Equal(t, []string{"C", "A"}, titles(concepts))

		tagged, err := r.FindNodes(ctx, repository.NodeQuery{OwnerID: "u1", Tags: []string{"go"}})
		require.NoError(t, err)
		assert.Equal(t, []string{"C", "B"}, titles(tagged))

		limited, err := r.FindNodes(ctx, repository.NodeQuery{OwnerID: "u1", ExcludeID: c.ID, Limit: 1})
		require.NoError(t, err)
		assert.Equal(t, []string{"B"}, titles(limited))

		_, err = r.FindNodes(ctx, repository.NodeQuery{})
		assert.True(t, repository.IsInvalidQuery(err))
	})

	t.Run("optimistic node update", func(t *testing.T) {
		ctx := context.Background()
		r := open(t)
		n := mustNode(t, "u1", "Scope", domain.NodeTypeConcept, nil, t0)
		require.NoError(t, r.CreateNode(ctx, n))

		require.NoError(t, n.Apply(domain.NodeChanges{Title: "Lexical scope"}, t0.Add(time.Hour)))
		require.NoError(t, r.UpdateNode(ctx, n, 1))

		stale := *n
		stale.Title = "stale"
		err := r.UpdateNode(ctx, &stale, 1)
		assert.True(t, repository.IsConflict(err))

		got, err := r.FindNodeByID(ctx, "u1", n.ID)
		require.NoError(t, err)
		assert.Equal(t, "Lexical scope", got.Title)
		assert.Equal(t, 2, got.Version)

		ghost := mustNode(t, "u1", "ghost", domain.NodeTypeConcept, nil, t0)
		assert.True(t, repository.IsNotFound(r.UpdateNode(ctx, ghost, 1)))
	})

	t.Run("delete node", func(t *testing.T) {
		ctx := context.Background()
		r := open(t)
		n := mustNode(t, "u1", "Gone", domain.NodeTypeNote, nil, t0)
		require.NoError(t, r.CreateNode(ctx, n))

		assert.True(t, repository.IsNotFound(r.DeleteNode(ctx, "u2", n.ID)))
		require.NoError(t, r.DeleteNode(ctx, "u1", n.ID))
		_, err := r.FindNodeByID(ctx, "u1", n.ID)
		assert.True(t, repository.IsNotFound(err))
		assert.True(t, repository.IsNotFound(r.DeleteNode(ctx, "u1", n.ID)))
	})

	t.Run("edges", func(t *testing.T) {
		ctx := context.Background()
		r := open(t)
		e1 := mustEdge(t, "u1", "a", "b", domain.EdgeLabelPartOf, t0)
		e2 := mustEdge(t, "u1", "b", "c", domain.EdgeLabelRelated, t0.Add(time.Second))
		e3 := mustEdge(t, "u1", "c", "a", domain.EdgeLabelPrerequisite, t0.Add(2*time.Second))
		e4 := mustEdge(t, "u2", "a", "b", domain.EdgeLabelRelated, t0)
		for _, e := range []*domain.Edge{e1, e2, e3, e4} {
			require.NoError(t, r.CreateEdge(ctx, e))
		}

		dup := mustEdge(t, "u1", "a", "b", domain.EdgeLabelRelated, t0)
		assert.True(t, repository.IsConflict(r.CreateEdge(ctx, dup)))
		reverse := mustEdge(t, "u1", "b", "a", domain.EdgeLabelRelated, t0.Add(3*time.Second))
		require.NoError(t, r.CreateEdge(ctx, reverse))

		all, err := r.FindEdges(ctx, repository.EdgeQuery{OwnerID: "u1"})
		require.NoError(t, err)
		require.Len(t, all, 4)
		assert.Equal(t, e1.ID, all[0].ID)

		from, err := r.FindEdges(ctx, repository.EdgeQuery{OwnerID: "u1", From: "b"})
		require.NoError(t, err)
		require.Len(t, from, 2)

		partOf, err := r.FindEdges(ctx, repository.EdgeQuery{OwnerID: "u1", Label: domain.EdgeLabelPartOf})
		require.NoError(t, err)
		require.Len(t, partOf, 1)
		assert.Equal(t, e1.ID, partOf[0].ID)

		got, err := r.FindEdgeByID(ctx, "u1", e2.ID)
		require.NoError(t, err)
		assert.Equal(t, "b", got.From)
		assert.Equal(t, "c", got.To)

		removed, err := r.DeleteEdgesForNode(ctx, "u1", "a")
		require.NoError(t, err)
		assert.Equal(t, 3, removed)

		left, err := r.FindEdges(ctx, repository.EdgeQuery{OwnerID: "u1"})
		require.NoError(t, err)
		require.Len(t, left, 1)
		assert.Equal(t, e2.ID, left[0].ID)

		require.NoError(t, r.DeleteEdge(ctx, "u1", e2.ID))
		assert.True(t, repository.IsNotFound(r.DeleteEdge(ctx, "u1", e2.ID)))

		stillThere, err := r.FindEdges(ctx, repository.EdgeQuery{OwnerID: "u2"})
		require.NoError(t, err)
		assert.Len(t, stillThere, 1)
	})

	t.Run("flashcards", func(t *testing.T) {
		ctx := context.Background()
		r := open(t)
		now := t0.Add(24 * time.Hour)
		late := mustCard(t, "u1", "n1", "late", now.Add(48*time.Hour))
		due := mustCard(t, "u1", "n1", "due", now.Add(-time.Hour))
		dueNow := mustCard(t, "u1", "n2", "due now", now)
		foreign := mustCard(t, "u2", "n1", "foreign", now.Add(-time.Hour))
		for _, c := range []*domain.Flashcard{late, due, dueNow, foreign} {
			require.NoError(t, r.CreateFlashcard(ctx, c))
		}

		all, err := r.FindFlashcards(ctx, repository.FlashcardQuery{OwnerID: "u1"})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []string{"due", "due now", "late"}, []string{all[0].Question, all[1].Question, all[2].Question})

		dueCards, err := r.FindFlashcards(ctx, repository.FlashcardQuery{OwnerID: "u1", DueAsOf: now})
		require.NoError(t, err)
		assert.Len(t, dueCards, 2)

		forNode, err := r.FindFlashcards(ctx, repository.FlashcardQuery{OwnerID: "u1", NodeID: "n1"})
		require.NoError(t, err)
		assert.Len(t, forNode, 2)

		stats, err := r.CountFlashcards(ctx, "u1", now)
		require.NoError(t, err)
		assert.Equal(t, domain.FlashcardStats{Total: 3, Due: 2}, stats)

		due.Interval = 1
		due.Revision = 1
		require.NoError(t, r.UpdateFlashcard(ctx, due, 0))
		assert.True(t, repository.IsConflict(r.UpdateFlashcard(ctx, due, 0)))
		got, err := r.FindFlashcardByID(ctx, "u1", due.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.Interval)
		assert.Equal(t, 1, got.Revision)
		assert.InDelta(t, domain.DefaultEase, got.Ease, 1e-9)

		removed, err := r.DeleteFlashcardsForNode(ctx, "u1", "n1")
		require.NoError(t, err)
		assert.Equal(t, 2, removed)

		require.NoError(t, r.DeleteFlashcard(ctx, "u1", dueNow.ID))
		_, err = r.FindFlashcardByID(ctx, "u1", dueNow.ID)
		assert.True(t, repository.IsNotFound(err))

		stats, err = r.CountFlashcards(ctx, "u2", now)
		require.NoError(t, err)
		assert.Equal(t, domain.FlashcardStats{Total: 1, Due: 1}, stats)
	})

	t.Run("ping", func(t *testing.T) {
		r := open(t)
		assert.NoError(t, r.Ping(context.Background()))
	})
}
