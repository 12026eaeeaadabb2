// Package hierarchy derives the subject → chapter → concept curriculum view
// from flat node and edge collections.
//
// A node C is a child of N when a part-of edge runs from C to N (see
// domain.PartOfLink). Subjects are roots; nesting depth is unbounded. The
// functions here are pure: they never touch a store and they never fail.
// Inconsistent data (part-of cycles, edges to nodes that are not in the
// supplied collection) is reported as DataIntegrityWarning values while
// resolution carries on.
package hierarchy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Raghvendrath3/conceptForge/internal/domain"
)

// WarningKind classifies a DataIntegrityWarning.
type WarningKind string

const (
	WarningCycle       WarningKind = "cycle"
	WarningMissingNode WarningKind = "missing-node"
)

// DataIntegrityWarning describes inconsistent graph data found while
// resolving. It is informational and never aborts resolution.
type DataIntegrityWarning struct {
	Kind    WarningKind `json:"kind"`
	NodeID  string      `json:"nodeId"`
	EdgeID  string      `json:"edgeId,omitempty"`
	Path    []string    `json:"path,omitempty"`
	Message string      `json:"message"`
}

func (w DataIntegrityWarning) Error() string {
	return w.Message
}

// TreeNode is one entry of the forest.
type TreeNode struct {
	Node     domain.Node `json:"node"`
	Color    string      `json:"color"`
	Icon     string      `json:"icon"`
	Children []*TreeNode `json:"children"`
	// Cycle marks a node that already appears on its own ancestor chain.
	// Its subtree is not expanded again.
	Cycle bool `json:"cycle,omitempty"`
}

// Forest is the result of BuildForest.
type Forest struct {
	Roots    []*TreeNode            `json:"roots"`
	Warnings []DataIntegrityWarning `json:"warnings"`
}

// Size returns the number of tree entries, counting repeated nodes once per
// appearance.
func (f Forest) Size() int {
	var count func(nodes []*TreeNode) int
	count = func(nodes []*TreeNode) int {
		n := 0
		for _, tn := range nodes {
			n += 1 + count(tn.Children)
		}
		return n
	}
	return count(f.Roots)
}

// index is the adjacency built once per resolution.
type index struct {
	nodes    map[string]domain.Node
	children map[string][]childLink
	warnings []DataIntegrityWarning
	reported map[string]struct{}
}

type childLink struct {
	edgeID string
	node   domain.Node
}

func newIndex(nodes []domain.Node, edges []domain.Edge) *index {
	idx := &index{
		nodes:    make(map[string]domain.Node, len(nodes)),
		children: make(map[string][]childLink),
		reported: make(map[string]struct{}),
	}
	for _, n := range nodes {
		idx.nodes[n.ID] = n
	}

	linked := make(map[string]struct{})
	for _, e := range edges {
		childID, parentID, ok := domain.PartOfLink(e)
		if !ok {
			continue
		}
		if missing := idx.missingEndpoint(childID, parentID); missing != "" {
			idx.warn(DataIntegrityWarning{
				Kind:    WarningMissingNode,
				NodeID:  missing,
				EdgeID:  e.ID,
				Message: fmt.Sprintf("part-of edge %s references unknown node %s", e.ID, missing),
			})
			continue
		}
		key := childID + "\x00" + parentID
		if _, dup := linked[key]; dup {
			continue
		}
		linked[key] = struct{}{}
		idx.children[parentID] = append(idx.children[parentID], childLink{edgeID: e.ID, node: idx.nodes[childID]})
	}

	for parentID, links := range idx.children {
		sort.SliceStable(links, func(i, j int) bool {
			return storeOrder(links[i].node, links[j].node)
		})
		idx.children[parentID] = links
	}
	return idx
}

func (idx *index) missingEndpoint(ids ...string) string {
	for _, id := range ids {
		if _, ok := idx.nodes[id]; !ok {
			return id
		}
	}
	return ""
}

func (idx *index) warn(w DataIntegrityWarning) {
	key := string(w.Kind) + "\x00" + w.NodeID + "\x00" + w.EdgeID
	if _, seen := idx.reported[key]; seen {
		return
	}
	idx.reported[key] = struct{}{}
	idx.warnings = append(idx.warnings, w)
}

// BuildForest returns one tree per subject node. Nodes that are not linked
// into a subject's tree are left out; they stay reachable through the flat
// node listing. Calling BuildForest twice on the same input yields the same
// structure.
func BuildForest(nodes []domain.Node, edges []domain.Edge) Forest {
	idx := newIndex(nodes, edges)

	var roots []domain.Node
	for _, n := range nodes {
		if n.Type == domain.NodeTypeSubject {
			roots = append(roots, n)
		}
	}
	sort.SliceStable(roots, func(i, j int) bool { return storeOrder(roots[i], roots[j]) })

	forest := Forest{Roots: make([]*TreeNode, 0, len(roots))}
	for _, root := range roots {
		onPath := map[string]struct{}{}
		forest.Roots = append(forest.Roots, idx.expand(root, onPath, nil))
	}
	forest.Warnings = idx.warnings
	if forest.Warnings == nil {
		forest.Warnings = []DataIntegrityWarning{}
	}
	return forest
}

// expand builds the subtree under n. onPath holds the ids of n's ancestors
// on the current path, so a node may appear under several parents but never
// beneath itself.
func (idx *index) expand(n domain.Node, onPath map[string]struct{}, path []string) *TreeNode {
	tn := newTreeNode(n)
	onPath[n.ID] = struct{}{}
	path = append(path, n.ID)
	defer delete(onPath, n.ID)

	for _, link := range idx.children[n.ID] {
		child := link.node
		if _, cyclic := onPath[child.ID]; cyclic {
			leaf := newTreeNode(child)
			leaf.Cycle = true
			tn.Children = append(tn.Children, leaf)
			cyclePath := append(append([]string{}, path...), child.ID)
			idx.warn(DataIntegrityWarning{
				Kind:    WarningCycle,
				NodeID:  child.ID,
				EdgeID:  link.edgeID,
				Path:    cyclePath,
				Message: fmt.Sprintf("part-of cycle detected: %s", strings.Join(cyclePath, " -> ")),
			})
			continue
		}
		tn.Children = append(tn.Children, idx.expand(child, onPath, path))
	}
	return tn
}

func newTreeNode(n domain.Node) *TreeNode {
	return &TreeNode{
		Node:     n,
		Color:    n.Type.Color(),
		Icon:     n.Type.Icon(),
		Children: []*TreeNode{},
	}
}

// Children returns the direct children of parentID, most recently updated
// first. An empty typeFilter keeps every type. Edges whose child is not in
// nodes are skipped.
func Children(parentID string, edges []domain.Edge, nodes []domain.Node, typeFilter domain.NodeType) []domain.Node {
	byID := make(map[string]domain.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	seen := make(map[string]struct{})
	children := make([]domain.Node, 0)
	for _, e := range edges {
		if !domain.IsChildOf(e, parentID) {
			continue
		}
		childID, _, _ := domain.PartOfLink(e)
		child, ok := byID[childID]
		if !ok {
			continue
		}
		if _, dup := seen[child.ID]; dup {
			continue
		}
		if typeFilter != "" && child.Type != typeFilter {
			continue
		}
		seen[child.ID] = struct{}{}
		children = append(children, child)
	}

	sort.SliceStable(children, func(i, j int) bool { return storeOrder(children[i], children[j]) })
	return children
}

// storeOrder is the default listing order: most recently updated first,
// ties broken by id so results are stable.
func storeOrder(a, b domain.Node) bool {
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	return a.ID < b.ID
}

// SortByStoreOrder sorts nodes in place using the default listing order.
func SortByStoreOrder(nodes []domain.Node) {
	sort.SliceStable(nodes, func(i, j int) bool { return storeOrder(nodes[i], nodes[j]) })
}
