package repository

import (
	"sort"

	"github.com/Raghvendrath3/conceptForge/internal/domain"
)

// SortNodes applies the node listing order in place.
func SortNodes(nodes []*domain.Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.After(b.UpdatedAt)
		}
		return a.ID < b.ID
	})
}

// SortEdges applies the edge listing order in place.
func SortEdges(edges []*domain.Edge) {
	sort.SliceStable(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// SortFlashcards applies the flashcard listing order in place.
func SortFlashcards(cards []*domain.Flashcard) {
	sort.SliceStable(cards, func(i, j int) bool {
		a, b := cards[i], cards[j]
		if !a.DueAt.Equal(b.DueAt) {
			return a.DueAt.Before(b.DueAt)
		}
		return a.ID < b.ID
	})
}

// Limit truncates nodes to n when n is positive.
func Limit(nodes []*domain.Node, n int) []*domain.Node {
	if n > 0 && len(nodes) > n {
		return nodes[:n]
	}
	return nodes
}
