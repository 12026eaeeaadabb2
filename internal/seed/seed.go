// Package seed loads the demo workspace.
package seed

import (
	"context"
	"fmt"

	"github.com/Raghvendrath3/conceptForge/internal/domain"
	"github.com/Raghvendrath3/conceptForge/internal/service/knowledge"
	"github.com/Raghvendrath3/conceptForge/internal/service/study"
)

type demoNode struct {
	title string
	typ   domain.NodeType
	body  string
	tags  []string
}

type demoEdge struct {
	from, to int
	label    domain.EdgeLabel
}

type demoCard struct {
	node             int
	question, answer string
}

// Indexes into demoNodes are used by demoEdges and demoCards.
var demoNodes = []demoNode{
	{"JavaScript Basics", domain.NodeTypeSubject, "# JavaScript Basics\n\nFundamentals of JS programming.", []string{"javascript", "programming"}},
	{"Variables", domain.NodeTypeChapter, "# Variables\n\nContainers for storing data values.", []string{"javascript", "basics"}},
	{"Functions", domain.NodeTypeChapter, "# Functions\n\nReusable blocks of code.", []string{"javascript", "basics"}},
	{"Arrays", domain.NodeTypeConcept, "# Arrays\n\nOrdered collections of values.", []string{"javascript", "data-structures"}},
	{"Objects", domain.NodeTypeConcept, "# Objects\n\nKey-value pair collections.", []string{"javascript", "data-structures"}},
	{"Closures", domain.NodeTypeConcept, "# Closures\n\nFunctions that remember their lexical scope.", []string{"javascript", "functions"}},
	{"React Hooks", domain.NodeTypeConcept, "# React Hooks\n\nModern React state management.", []string{"react", "frontend"}},
	{"useState Example", domain.NodeTypeSnippet, "```js\nconst [count, setCount] = useState(0);\n```", []string{"react", "hooks"}},
	{"API Design", domain.NodeTypeNote, "# API Design Notes\n\nRESTful principles and best practices.", []string{"backend", "api"}},
	{"Storage Setup", domain.NodeTypeNote, "# Storage Setup\n\nDatabase configuration steps.", []string{"database"}},
	{"ConceptForge Project", domain.NodeTypeProject, "# ConceptForge\n\nPersonal knowledge management system.", []string{"project", "demo"}},
}

var demoEdges = []demoEdge{
	{1, 0, domain.EdgeLabelPartOf},
	{2, 0, domain.EdgeLabelPartOf},
	{3, 1, domain.EdgeLabelPartOf},
	{4, 1, domain.EdgeLabelPartOf},
	{5, 2, domain.EdgeLabelPartOf},
	{1, 2, domain.EdgeLabelPrerequisite},
	{3, 4, domain.EdgeLabelRelated},
	{7, 6, domain.EdgeLabelPartOf},
	{8, 9, domain.EdgeLabelRelated},
}

var demoCards = []demoCard{
	{1, "What is the difference between let and const?", "const bindings cannot be reassigned; let bindings can."},
	{5, "What is a closure?", "A function bundled with references to its surrounding state."},
	{3, "Which method adds an element to the end of an array?", "Array.prototype.push"},
}

// Result counts what Demo created.
type Result struct {
	Nodes      int
	Edges      int
	Flashcards int
}

// Demo creates the demo workspace for ownerID: a JavaScript subject with
// chapters and concepts linked by part-of edges, a few unrelated notes and
// starter flashcards.
func Demo(ctx context.Context, nodes *knowledge.Service, cards *study.Service, ownerID string) (Result, error) {
	var res Result
	ids := make([]string, len(demoNodes))
	for i, n := range demoNodes {
		node, err := nodes.CreateNode(ctx, ownerID, knowledge.CreateNodeInput{
			Title: n.title,
			Type:  n.typ,
			Body:  n.body,
			Tags:  n.tags,
		})
		if err != nil {
			return res, fmt.Errorf("create node %q: %w", n.title, err)
		}
		ids[i] = node.ID
		res.Nodes++
	}

	for _, e := range demoEdges {
		if _, err := nodes.CreateEdge(ctx, ownerID, ids[e.from], ids[e.to], e.label); err != nil {
			return res, fmt.Errorf("create edge %s -> %s: %w", demoNodes[e.from].title, demoNodes[e.to].title, err)
		}
		res.Edges++
	}

	for _, c := range demoCards {
		if _, err := cards.CreateCard(ctx, ownerID, ids[c.node], c.question, c.answer); err != nil {
			return res, fmt.Errorf("create flashcard for %q: %w", demoNodes[c.node].title, err)
		}
		res.Flashcards++
	}
	return res, nil
}

// Reset deletes every node of ownerID, cascading to edges and flashcards.
func Reset(ctx context.Context, nodes *knowledge.Service, ownerID string) (int, error) {
	existing, err := nodes.ListNodes(ctx, ownerID, knowledge.NodeFilter{})
	if err != nil {
		return 0, err
	}
	for i, n := range existing {
		if _, err := nodes.DeleteNode(ctx, ownerID, n.ID); err != nil {
			return i, fmt.Errorf("delete node %q: %w", n.Title, err)
		}
	}
	return len(existing), nil
}
