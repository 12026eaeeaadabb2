package knowledge

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Raghvendrath3/conceptForge/internal/domain"
	"github.com/Raghvendrath3/conceptForge/internal/events"
	"github.com/Raghvendrath3/conceptForge/internal/hierarchy"
	"github.com/Raghvendrath3/conceptForge/internal/observability"
	"github.com/Raghvendrath3/conceptForge/internal/repository"
	"github.com/Raghvendrath3/conceptForge/internal/repository/memory"
	"github.com/Raghvendrath3/conceptForge/internal/service/llm"
	appErrors "github.com/Raghvendrath3/conceptForge/pkg/errors"
)

const owner = "user-1"

type clock struct{ t time.Time }

func (c *clock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

type fixture struct {
	svc     *Service
	store   *memory.Store
	events  *events.Recorder
	metrics *observability.Collector
	mock    *llm.MockProvider
}

func newFixture(t *testing.T, repo repository.Repository, logger *zap.Logger) *fixture {
	t.Helper()
	store := memory.New()
	if repo == nil {
		repo = store
	}
	if logger == nil {
		logger = zaptest.NewLogger(t)
	}
	f := &fixture{
		store:   store,
		events:  events.NewRecorder(),
		metrics: observability.NewCollector("test"),
		mock:    llm.NewMockProvider(),
	}
	clk := &clock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	f.svc = NewService(repo, llm.NewSuggester(f.mock, logger), f.events, f.metrics, logger, WithClock(clk.now))
	f.svc.sleep = func(context.Context, time.Duration) error { return nil }
	return f
}

func (f *fixture) node(t *testing.T, title string, typ domain.NodeType, tags ...string) *domain.Node {
	t.Helper()
	n, err := f.svc.CreateNode(context.Background(), owner, CreateNodeInput{Title: title, Type: typ, Tags: tags})
	require.NoError(t, err)
	return n
}

func (f *fixture) partOf(t *testing.T, child, parent *domain.Node) *domain.Edge {
	t.Helper()
	e, err := f.svc.CreateEdge(context.Background(), owner, child.ID, parent.ID, domain.EdgeLabelPartOf)
	require.NoError(t, err)
	return e
}

// conflictingRepo fails the first conflicts node updates with a version
// mismatch.
type conflictingRepo struct {
	repository.Repository
	conflicts int
	calls     int
}

func (r *conflictingRepo) UpdateNode(ctx context.Context, node *domain.Node, expected int) error {
	r.calls++
	if r.conflicts > 0 {
		r.conflicts--
		return repository.VersionMismatch("node", node.ID, expected, expected+1)
	}
	return r.Repository.UpdateNode(ctx, node, expected)
}

func TestCreateNode(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	t.Run("defaults to concept at version 1", func(t *testing.T) {
		n, err := f.svc.CreateNode(ctx, owner, CreateNodeInput{Title: " Closures ", Body: "# Closures", Tags: []string{"js", "js", ""}})
		require.NoError(t, err)
		assert.Equal(t, "Closures", n.Title)
		assert.Equal(t, domain.NodeTypeConcept, n.Type)
		assert.Equal(t, 1, n.Version)
		assert.Equal(t, []string{"js"}, n.Tags)

		stored, err := f.svc.GetNode(ctx, owner, n.ID)
		require.NoError(t, err)
		assert.Equal(t, n.ID, stored.ID)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := f.svc.CreateNode(ctx, owner, CreateNodeInput{Title: "  "})
		assert.True(t, appErrors.IsValidation(err))

		_, err = f.svc.CreateNode(ctx, owner, CreateNodeInput{Title: "x", Type: "essay"})
		assert.True(t, appErrors.IsValidation(err))
	})

	assert.Equal(t, []events.Type{events.NodeCreated}, f.events.Types())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.NodesCreated))
}

func TestCreateNode_PublishFailureDoesNotFailWrite(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	f := newFixture(t, nil, zap.New(core))
	f.events.FailWith(assert.AnError)

	_, err := f.svc.CreateNode(context.Background(), owner, CreateNodeInput{Title: "Hoisting"})
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("failed to publish events").Len())
}

func TestCreateNode_StoreFailure(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.store.SetError("CreateNode", assert.AnError)

	_, err := f.svc.CreateNode(context.Background(), owner, CreateNodeInput{Title: "Hoisting"})
	assert.True(t, appErrors.IsInternal(err))
	assert.Empty(t, f.events.Events())
}

func TestGetNode_IsOwnerScoped(t *testing.T) {
	f := newFixture(t, nil, nil)
	n := f.node(t, "Private", domain.NodeTypeNote)

	_, err := f.svc.GetNode(context.Background(), "someone-else", n.ID)
	assert.True(t, appErrors.IsNotFound(err))
}

func TestListNodes(t *testing.T) {
	f := newFixture(t, nil, nil)
	a := f.node(t, "A", domain.NodeTypeConcept, "js")
	b := f.node(t, "B", domain.NodeTypeNote, "go")
	c := f.node(t, "C", domain.NodeTypeConcept, "web", "go")

	tests := []struct {
		name   string
		filter NodeFilter
		want   []string
	}{
		{"all, newest first", NodeFilter{}, []string{c.ID, b.ID, a.ID}},
		{"by type", NodeFilter{Type: domain.NodeTypeConcept}, []string{c.ID, a.ID}},
		{"tags any-of", NodeFilter{Tags: []string{"go"}}, []string{c.ID, b.ID}},
		{"type and tags", NodeFilter{Type: domain.NodeTypeConcept, Tags: []string{"js", "web"}}, []string{c.ID, a.ID}},
		{"no match", NodeFilter{Type: domain.NodeTypeSubject}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, err := f.svc.ListNodes(context.Background(), owner, tt.filter)
			require.NoError(t, err)
			var ids []string
			for _, n := range nodes {
				ids = append(ids, n.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestUpdateNode(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()
	n, err := f.svc.CreateNode(ctx, owner, CreateNodeInput{Title: "Scope", Body: "old", Tags: []string{"js"}})
	require.NoError(t, err)

	body := "new body"
	updated, err := f.svc.UpdateNode(ctx, owner, n.ID, domain.NodeChanges{Body: &body})
	require.NoError(t, err)
	assert.Equal(t, "Scope", updated.Title)
	assert.Equal(t, "new body", updated.Body)
	assert.Equal(t, []string{"js"}, updated.Tags)
	assert.Equal(t, domain.NodeTypeConcept, updated.Type)
	assert.Equal(t, 2, updated.Version)
	assert.True(t, updated.UpdatedAt.After(n.UpdatedAt))

	updated, err = f.svc.UpdateNode(ctx, owner, n.ID, domain.NodeChanges{Title: "Lexical scope", Tags: []string{}, Type: domain.NodeTypeNote})
	require.NoError(t, err)
	assert.Equal(t, "Lexical scope", updated.Title)
	assert.Empty(t, updated.Tags)
	assert.Equal(t, domain.NodeTypeNote, updated.Type)
	assert.Equal(t, 3, updated.Version)

	_, err = f.svc.UpdateNode(ctx, owner, n.ID, domain.NodeChanges{Type: "essay"})
	assert.True(t, appErrors.IsValidation(err))

	_, err = f.svc.UpdateNode(ctx, owner, "missing", domain.NodeChanges{Title: "x"})
	assert.True(t, appErrors.IsNotFound(err))

	assert.Equal(t, []events.Type{events.NodeCreated, events.NodeUpdated, events.NodeUpdated}, f.events.Types())
}

func TestUpdateNode_RetriesOnConflict(t *testing.T) {
	t.Run("succeeds after transient conflicts", func(t *testing.T) {
		store := memory.New()
		repo := &conflictingRepo{Repository: store, conflicts: 2}
		f := newFixture(t, repo, nil)
		var slept []time.Duration
		f.svc.sleep = func(_ context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		}
		n := f.node(t, "Retry me", domain.NodeTypeConcept)

		updated, err := f.svc.UpdateNode(context.Background(), owner, n.ID, domain.NodeChanges{Title: "Retried"})
		require.NoError(t, err)
		assert.Equal(t, "Retried", updated.Title)
		assert.Equal(t, 2, updated.Version)
		assert.Equal(t, 3, repo.calls)
		assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, slept)
	})

	t.Run("gives up after three attempts", func(t *testing.T) {
		repo := &conflictingRepo{Repository: memory.New(), conflicts: 10}
		f := newFixture(t, repo, nil)
		n := f.node(t, "Contended", domain.NodeTypeConcept)

		_, err := f.svc.UpdateNode(context.Background(), owner, n.ID, domain.NodeChanges{Title: "never"})
		assert.True(t, appErrors.IsConflict(err))
		assert.Equal(t, maxRetries, repo.calls)
	})

	t.Run("stops when the context is cancelled", func(t *testing.T) {
		repo := &conflictingRepo{Repository: memory.New(), conflicts: 10}
		f := newFixture(t, repo, nil)
		f.svc.sleep = sleepCtx
		n := f.node(t, "Contended", domain.NodeTypeConcept)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := f.svc.UpdateNode(ctx, owner, n.ID, domain.NodeChanges{Title: "never"})
		assert.Error(t, err)
		assert.Equal(t, 1, repo.calls)
	})
}

func TestDeleteNode_Cascades(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()
	subject := f.node(t, "JS", domain.NodeTypeSubject)
	chapter := f.node(t, "Functions", domain.NodeTypeChapter)
	concept := f.node(t, "Closures", domain.NodeTypeConcept)
	f.partOf(t, chapter, subject)
	f.partOf(t, concept, chapter)

	card, err := domain.NewFlashcard(owner, chapter.ID, "Q", "A", time.Now())
	require.NoError(t, err)
	require.NoError(t, f.store.CreateFlashcard(ctx, card))

	res, err := f.svc.DeleteNode(ctx, owner, chapter.ID)
	require.NoError(t, err)
	assert.Equal(t, DeleteResult{EdgesDeleted: 2, FlashcardsDeleted: 1}, res)

	_, err = f.svc.GetNode(ctx, owner, chapter.ID)
	assert.True(t, appErrors.IsNotFound(err))
	edges, err := f.svc.ListEdges(ctx, owner, EdgeFilter{})
	require.NoError(t, err)
	assert.Empty(t, edges)

	_, err = f.svc.DeleteNode(ctx, owner, chapter.ID)
	assert.True(t, appErrors.IsNotFound(err))

	assert.Equal(t, events.NodeDeleted, f.events.Types()[len(f.events.Types())-1])
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.NodesDeleted))
}

func TestLogExecution(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()
	snippet := f.node(t, "fib.js", domain.NodeTypeSnippet)
	concept := f.node(t, "Recursion", domain.NodeTypeConcept)

	log, err := f.svc.LogExecution(ctx, owner, snippet.ID, "console.log(1)", []string{"1"})
	require.NoError(t, err)
	assert.Equal(t, snippet.ID, log.NodeID)
	assert.Equal(t, []string{"1"}, log.Output)
	assert.False(t, log.Timestamp.IsZero())

	log, err = f.svc.LogExecution(ctx, owner, snippet.ID, "noop()", nil)
	require.NoError(t, err)
	assert.NotNil(t, log.Output)

	_, err = f.svc.LogExecution(ctx, owner, concept.ID, "x", nil)
	assert.True(t, appErrors.IsValidation(err))

	_, err = f.svc.LogExecution(ctx, owner, "missing", "x", nil)
	assert.True(t, appErrors.IsNotFound(err))

	assert.Contains(t, f.events.Types(), events.SnippetExecuted)
}

func TestCreateEdge(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()
	a := f.node(t, "A", domain.NodeTypeConcept)
	b := f.node(t, "B", domain.NodeTypeConcept)

	edge, err := f.svc.CreateEdge(ctx, owner, a.ID, b.ID, domain.EdgeLabelPrerequisite)
	require.NoError(t, err)
	assert.Equal(t, domain.EdgeLabelPrerequisite, edge.Label)

	tests := []struct {
		name     string
		from, to string
		label    domain.EdgeLabel
		check    func(error) bool
	}{
		{"duplicate pair", a.ID, b.ID, domain.EdgeLabelRelated, appErrors.IsConflict},
		{"self loop", a.ID, a.ID, domain.EdgeLabelRelated, appErrors.IsValidation},
		{"unknown label", b.ID, a.ID, "sibling", appErrors.IsValidation},
		{"missing from", "ghost", b.ID, domain.EdgeLabelRelated, appErrors.IsNotFound},
		{"missing to", a.ID, "ghost", domain.EdgeLabelRelated, appErrors.IsNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateEdge(ctx, owner, tt.from, tt.to, tt.label)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error %v", err)
		})
	}

	reverse, err := f.svc.CreateEdge(ctx, owner, b.ID, a.ID, "")
	require.NoError(t, err)
	assert.Equal(t, domain.EdgeLabelRelated, reverse.Label)
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.EdgesCreated))
}

func TestListAndDeleteEdges(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()
	a := f.node(t, "A", domain.NodeTypeChapter)
	b := f.node(t, "B", domain.NodeTypeSubject)
	c := f.node(t, "C", domain.NodeTypeConcept)
	ab := f.partOf(t, a, b)
	ca, err := f.svc.CreateEdge(ctx, owner, c.ID, a.ID, domain.EdgeLabelRelated)
	require.NoError(t, err)

	all, err := f.svc.ListEdges(ctx, owner, EdgeFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, ab.ID, all[0].ID)

	byLabel, err := f.svc.ListEdges(ctx, owner, EdgeFilter{Label: domain.EdgeLabelRelated})
	require.NoError(t, err)
	require.Len(t, byLabel, 1)
	assert.Equal(t, ca.ID, byLabel[0].ID)

	byTo, err := f.svc.ListEdges(ctx, owner, EdgeFilter{To: a.ID})
	require.NoError(t, err)
	require.Len(t, byTo, 1)

	require.NoError(t, f.svc.DeleteEdge(ctx, owner, ab.ID))
	assert.True(t, appErrors.IsNotFound(f.svc.DeleteEdge(ctx, owner, ab.ID)))
	assert.Contains(t, f.events.Types(), events.EdgeDeleted)
}

func TestChildren(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()
	subject := f.node(t, "JS", domain.NodeTypeSubject)
	ch1 := f.node(t, "Basics", domain.NodeTypeChapter)
	ch2 := f.node(t, "Functions", domain.NodeTypeChapter)
	loose := f.node(t, "Trivia", domain.NodeTypeNote)
	f.partOf(t, ch1, subject)
	f.partOf(t, ch2, subject)
	f.partOf(t, loose, subject)
	_, err := f.svc.CreateEdge(ctx, owner, subject.ID, ch1.ID, domain.EdgeLabelRelated)
	require.NoError(t, err)

	all, err := f.svc.Children(ctx, owner, subject.ID, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, loose.ID, all[0].ID)

	chapters, err := f.svc.Children(ctx, owner, subject.ID, domain.NodeTypeChapter)
	require.NoError(t, err)
	require.Len(t, chapters, 2)
	assert.Equal(t, ch2.ID, chapters[0].ID)
	assert.Equal(t, ch1.ID, chapters[1].ID)

	none, err := f.svc.Children(ctx, owner, ch1.ID, "")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = f.svc.Children(ctx, owner, "missing", "")
	assert.True(t, appErrors.IsNotFound(err))
}

func TestHierarchy(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	f := newFixture(t, nil, zap.New(core))
	ctx := context.Background()

	subject := f.node(t, "JS", domain.NodeTypeSubject)
	c1 := f.node(t, "C1", domain.NodeTypeChapter)
	c2 := f.node(t, "C2", domain.NodeTypeChapter)
	concept := f.node(t, "Closures", domain.NodeTypeConcept)
	f.node(t, "Orphan", domain.NodeTypeConcept)
	f.partOf(t, c1, subject)
	f.partOf(t, c2, subject)
	f.partOf(t, concept, c1)

	forest, err := f.svc.Hierarchy(ctx, owner)
	require.NoError(t, err)
	require.Len(t, forest.Roots, 1)
	root := forest.Roots[0]
	assert.Equal(t, subject.ID, root.Node.ID)
	assert.Equal(t, "graduation-cap", root.Icon)
	require.Len(t, root.Children, 2)
	assert.Equal(t, 4, forest.Size())
	assert.Empty(t, forest.Warnings)
	assert.Equal(t, 0, logs.Len())

	// concept -> c1 -> concept closes a loop below the subject.
	f.partOf(t, c1, concept)
	forest, err = f.svc.Hierarchy(ctx, owner)
	require.NoError(t, err)
	require.NotEmpty(t, forest.Warnings)
	assert.Equal(t, hierarchy.WarningCycle, forest.Warnings[0].Kind)

	entries := logs.FilterMessage("hierarchy data integrity warning").All()
	require.NotEmpty(t, entries)
	assert.Equal(t, "cycle", entries[0].ContextMap()["kind"])
	assert.GreaterOrEqual(t, testutil.ToFloat64(f.metrics.HierarchyWarnings.WithLabelValues("cycle")), 1.0)
}

func TestHierarchy_StoreFailure(t *testing.T) {
	f := newFixture(t, nil, nil)
	f.store.SetError("FindEdges", assert.AnError)
	_, err := f.svc.Hierarchy(context.Background(), owner)
	assert.True(t, appErrors.IsInternal(err))
}

func TestImportExport(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	count, err := f.svc.Import(ctx, owner, []WorkspaceNode{
		{Title: "Imported concept", Body: "body", Tags: []string{"x"}},
		{Title: "Imported subject", Type: domain.NodeTypeSubject},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Contains(t, f.events.Types(), events.WorkspaceImported)

	exported, err := f.svc.Export(ctx, owner)
	require.NoError(t, err)
	require.Len(t, exported, 2)
	byTitle := map[string]WorkspaceNode{}
	for _, n := range exported {
		byTitle[n.Title] = n
	}
	assert.Equal(t, domain.NodeTypeConcept, byTitle["Imported concept"].Type)
	assert.Equal(t, []string{"x"}, byTitle["Imported concept"].Tags)
	assert.Equal(t, []string{}, byTitle["Imported subject"].Tags)

	other, err := f.svc.Export(ctx, "someone-else")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestImport_ValidatesBeforeWriting(t *testing.T) {
	f := newFixture(t, nil, nil)
	ctx := context.Background()

	_, err := f.svc.Import(ctx, owner, []WorkspaceNode{
		{Title: "fine"},
		{Title: "bad type", Type: "essay"},
	})
	require.Error(t, err)
	assert.True(t, appErrors.IsValidation(err))
	assert.Contains(t, err.Error(), "node 1")

	nodes, err := f.svc.ListNodes(ctx, owner, NodeFilter{})
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestImport_Empty(t *testing.T) {
	f := newFixture(t, nil, nil)
	count, err := f.svc.Import(context.Background(), owner, []WorkspaceNode{})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSuggestTags(t *testing.T) {
	f := newFixture(t, nil, nil)

	_, err := f.svc.SuggestTags(context.Background(), "   ")
	assert.True(t, appErrors.IsValidation(err))

	tags, err := f.svc.SuggestTags(context.Background(), "Closures capture variables")
	require.NoError(t, err)
	assert.Equal(t, []string{"mock-tag", "concept", "learning", "ai-generated"}, tags)

	f.mock.SetAvailable(false)
	tags, err = f.svc.SuggestTags(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, llm.FallbackTags, tags)
}

func TestAutoConnect(t *testing.T) {
	ctx := context.Background()

	t.Run("validation and lookup", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		_, err := f.svc.AutoConnect(ctx, owner, "")
		assert.True(t, appErrors.IsValidation(err))
		_, err = f.svc.AutoConnect(ctx, owner, "missing")
		assert.True(t, appErrors.IsNotFound(err))
	})

	t.Run("no candidates", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		lonely := f.node(t, "Lonely", domain.NodeTypeConcept)
		res, err := f.svc.AutoConnect(ctx, owner, lonely.ID)
		require.NoError(t, err)
		assert.Equal(t, "No other nodes to connect to", res.Message)
		assert.NotNil(t, res.Connections)
		assert.Empty(t, res.Connections)
	})

	t.Run("creates edges once", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		target := f.node(t, "Closures", domain.NodeTypeConcept)
		f.node(t, "Scope", domain.NodeTypeConcept)
		f.node(t, "Functions", domain.NodeTypeChapter)
		f.node(t, "Hoisting", domain.NodeTypeConcept)

		res, err := f.svc.AutoConnect(ctx, owner, target.ID)
		require.NoError(t, err)
		assert.Equal(t, "Created 2 new connections", res.Message)
		require.Len(t, res.Connections, 2)
		for _, e := range res.Connections {
			assert.Equal(t, target.ID, e.From)
			assert.Equal(t, domain.EdgeLabelRelated, e.Label)
			assert.NotEqual(t, target.ID, e.To)
		}

		again, err := f.svc.AutoConnect(ctx, owner, target.ID)
		require.NoError(t, err)
		assert.Equal(t, "Created 0 new connections", again.Message)
		assert.Empty(t, again.Connections)
		assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.EdgesCreated))
	})

	t.Run("provider down yields no connections", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		target := f.node(t, "Closures", domain.NodeTypeConcept)
		f.node(t, "Scope", domain.NodeTypeConcept)
		f.mock.SetAvailable(false)

		res, err := f.svc.AutoConnect(ctx, owner, target.ID)
		require.NoError(t, err)
		assert.Empty(t, res.Connections)
	})

	t.Run("respects candidate limit", func(t *testing.T) {
		f := newFixture(t, nil, nil)
		WithMaxCandidates(1)(f.svc)
		target := f.node(t, "Closures", domain.NodeTypeConcept)
		f.node(t, "Scope", domain.NodeTypeConcept)
		f.node(t, "Hoisting", domain.NodeTypeConcept)

		res, err := f.svc.AutoConnect(ctx, owner, target.ID)
		require.NoError(t, err)
		assert.Len(t, res.Connections, 1)
	})
}
