package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Raghvendrath3/conceptForge/internal/domain"
	"github.com/Raghvendrath3/conceptForge/internal/events"
	"github.com/Raghvendrath3/conceptForge/internal/middleware"
	"github.com/Raghvendrath3/conceptForge/internal/observability"
	"github.com/Raghvendrath3/conceptForge/internal/repository/memory"
	"github.com/Raghvendrath3/conceptForge/internal/service/knowledge"
	"github.com/Raghvendrath3/conceptForge/internal/service/llm"
	"github.com/Raghvendrath3/conceptForge/internal/service/study"
	"github.com/Raghvendrath3/conceptForge/pkg/api"
	"github.com/Raghvendrath3/conceptForge/pkg/auth"
)

const testSecret = "handler-test-secret"

type testServer struct {
	router  *chi.Mux
	store   *memory.Store
	events  *events.Recorder
	metrics *observability.Collector
}

func newTestServer(t *testing.T, authCfg middleware.AuthConfig) *testServer {
	t.Helper()
	logger := zaptest.NewLogger(t)
	store := memory.New()
	recorder := events.NewRecorder()
	metrics := observability.NewCollector("test")
	suggester := llm.NewSuggester(llm.NewMockProvider(), logger)

	knowledgeSvc := knowledge.NewService(store, suggester, recorder, metrics, logger)
	studySvc := study.NewService(store, suggester, recorder, metrics, logger)

	if authCfg.DevUserID == "" && !authCfg.Enabled {
		authCfg.DevUserID = "dev-user"
	}
	authCfg.Logger = logger

	router := NewRouter(RouterConfig{
		Nodes:          NewNodeHandler(knowledgeSvc, logger),
		Edges:          NewEdgeHandler(knowledgeSvc, logger),
		Flashcards:     NewFlashcardHandler(studySvc, logger),
		AI:             NewAIHandler(knowledgeSvc, logger),
		Health:         NewHealthHandler(store, "test", logger),
		Auth:           authCfg,
		Metrics:        metrics,
		Logger:         logger,
		AllowedOrigins: []string{"http://localhost:5173"},
		RequestTimeout: 5 * time.Second,
	})
	return &testServer{router: router, store: store, events: recorder, metrics: metrics}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (s *testServer) createNode(t *testing.T, title, typ string) domain.Node {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/nodes", map[string]interface{}{"title": title, "type": typ})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[domain.Node](t, rec)
}

func TestNodeHandler_Create(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantError  string
	}{
		{"valid", map[string]interface{}{"title": "Closures", "type": "concept", "tags": []string{"JS"}}, http.StatusCreated, ""},
		{"default type", map[string]interface{}{"title": "Scratch"}, http.StatusCreated, ""},
		{"missing title", map[string]interface{}{"type": "note"}, http.StatusBadRequest, "title is required"},
		{"invalid type", map[string]interface{}{"title": "x", "type": "essay"}, http.StatusBadRequest, `invalid node type "essay"`},
		{"malformed body", "{not json", http.StatusBadRequest, "Invalid request body"},
		{"empty body", nil, http.StatusBadRequest, "Request body is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, middleware.AuthConfig{})
			rec := s.do(t, http.MethodPost, "/api/nodes", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantError != "" {
				assert.Contains(t, decode[api.ErrorResponse](t, rec).Error, tt.wantError)
				return
			}
			node := decode[domain.Node](t, rec)
			assert.Equal(t, "dev-user", node.OwnerID)
			assert.Equal(t, 1, node.Version)
			assert.NotEmpty(t, node.Type)
		})
	}
}

func TestNodeHandler_CRUD(t *testing.T) {
	s := newTestServer(t, middleware.AuthConfig{})
	node := s.createNode(t, "Closures", "concept")

	rec := s.do(t, http.MethodGet, "/api/nodes/"+node.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Closures", decode[domain.Node](t, rec).Title)

	rec = s.do(t, http.MethodPut, "/api/nodes/"+node.ID, map[string]interface{}{"body": "functions + scope", "tags": []string{"js"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[domain.Node](t, rec)
	assert.Equal(t, "Closures", updated.Title)
	assert.Equal(t, "functions + scope", updated.Body)
	assert.Equal(t, []string{"js"}, updated.Tags)
	assert.Equal(t, 2, updated.Version)

	rec = s.do(t, http.MethodGet, "/api/nodes?tags=js", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Node](t, rec), 1)

	rec = s.do(t, http.MethodGet, "/api/nodes?type=snippet", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/nodes?type=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/nodes/"+node.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Node deleted", decode[map[string]interface{}](t, rec)["message"])

	rec = s.do(t, http.MethodGet, "/api/nodes/"+node.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = s.do(t, http.MethodDelete, "/api/nodes/"+node.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, []events.Type{events.NodeCreated, events.NodeUpdated, events.NodeDeleted}, s.events.Types())
}

func TestNodeHandler_OwnerIsolation(t *testing.T) {
	s := newTestServer(t, middleware.AuthConfig{})
	rec := s.do(t, http.MethodPost, "/api/nodes", map[string]string{"title": "Mine"}, middleware.UserIDHeader, "alice")
	require.Equal(t, http.StatusCreated, rec.Code)
	node := decode[domain.Node](t, rec)

	rec = s.do(t, http.MethodGet, "/api/nodes/"+node.ID, nil, middleware.UserIDHeader, "bob")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/nodes", nil, middleware.UserIDHeader, "bob")
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestNodeHandler_HierarchyAndChildren(t *testing.T) {
	s := newTestServer(t, middleware.AuthConfig{})
	subject := s.createNode(t, "JavaScript", "subject")
	chapter := s.createNode(t, "Functions", "chapter")
	concept := s.createNode(t, "Closures", "concept")

	for _, link := range [][2]string{{chapter.ID, subject.ID}, {concept.ID, chapter.ID}} {
		rec := s.do(t, http.MethodPost, "/api/edges", map[string]string{"from": link[0], "to": link[1], "label": "part-of"})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec := s.do(t, http.MethodGet, "/api/nodes/hierarchy", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Forest []struct {
			Node     domain.Node `json:"node"`
			Children []struct {
				Node     domain.Node     `json:"node"`
				Children json.RawMessage `json:"children"`
			} `json:"children"`
		} `json:"forest"`
		Warnings []interface{} `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Forest, 1)
	assert.Equal(t, subject.ID, body.Forest[0].Node.ID)
	require.Len(t, body.Forest[0].Children, 1)
	assert.Equal(t, chapter.ID, body.Forest[0].Children[0].Node.ID)
	assert.Empty(t, body.Warnings)

	rec = s.do(t, http.MethodGet, "/api/nodes/"+chapter.ID+"/children", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	children := decode[[]domain.Node](t, rec)
	require.Len(t, children, 1)
	assert.Equal(t, concept.ID, children[0].ID)

	rec = s.do(t, http.MethodGet, "/api/nodes/"+chapter.ID+"/children?type=note", nil)
	assert.Equal(t, "[]\n", rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/nodes/missing/children", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNodeHandler_ImportExport(t *testing.T) {
	s := newTestServer(t, middleware.AuthConfig{})

	rec := s.do(t, http.MethodPost, "/api/nodes/import", map[string]interface{}{"nodes": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid data format. Expected array of nodes.", decode[api.ErrorResponse](t, rec).Error)

	rec = s.do(t, http.MethodPost, "/api/nodes/import", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/nodes/import", map[string]interface{}{
		"nodes": []map[string]interface{}{
			{"title": "A", "type": "note", "body": "a", "tags": []string{"x"}},
			{"title": "B", "body": "b"},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := decode[map[string]interface{}](t, rec)
	assert.Equal(t, float64(2), res["count"])
	assert.Equal(t, "Successfully imported 2 nodes", res["message"])

	rec = s.do(t, http.MethodGet, "/api/nodes/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	exported := decode[struct {
		Nodes []knowledge.WorkspaceNode `json:"nodes"`
	}](t, rec)
	assert.Len(t, exported.Nodes, 2)
}

func TestNodeHandler_SuggestTags(t *testing.T) {
	s := newTestServer(t, middleware.AuthConfig{})

	rec := s.do(t, http.MethodPost, "/api/nodes/tags/suggest", map[string]string{"content": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/nodes/tags/suggest", map[string]string{"content": "closures capture scope"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"mock-tag", "concept", "learning", "ai-generated"}, decode[SuggestTagsResponse](t, rec).Tags)
}

func TestNodeHandler_LogExecution(t *testing.T) {
	s := newTestServer(t, middleware.AuthConfig{})
	snippet := s.createNode(t, "console.log", "snippet")
	concept := s.createNode(t, "Closures", "concept")

	rec := s.do(t, http.MethodPost, "/api/nodes/"+concept.ID+"/executions", map[string]interface{}{"code": "1+1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/nodes/"+snippet.ID+"/executions", map[string]interface{}{"code": "console.log(1)", "output": []string{"1"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res struct {
		Message      string              `json:"message"`
		ExecutionLog domain.ExecutionLog `json:"executionLog"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "Execution logged successfully", res.Message)
	assert.Equal(t, snippet.ID, res.ExecutionLog.NodeID)
	assert.Equal(t, []string{"1"}, res.ExecutionLog.Output)
	assert.Contains(t, s.events.Types(), events.SnippetExecuted)
}

func TestEdgeHandler(t *testing.T) {
	s := newTestServer(t, middleware.AuthConfig{})
	a := s.createNode(t, "A", "concept")
	b := s.createNode(t, "B", "concept")

	tests := []struct {
		name       string
		body       map[string]string
		wantStatus int
	}{
		{"created", map[string]string{"from": a.ID, "to": b.ID, "label": "prerequisite"}, http.StatusCreated},
		{"duplicate pair", map[string]string{"from": a.ID, "to": b.ID, "label": "related"}, http.StatusConflict},
		{"self loop", map[string]string{"from": a.ID, "to": a.ID}, http.StatusBadRequest},
		{"missing endpoint", map[string]string{"from": a.ID, "to": "ghost"}, http.StatusNotFound},
		{"unknown label", map[string]string{"from": b.ID, "to": a.ID, "label": "likes"}, http.StatusBadRequest},
		{"missing from", map[string]string{"to": a.ID}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/edges", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}

	rec := s.do(t, http.MethodGet, "/api/edges?from="+a.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	edges := decode[[]domain.Edge](t, rec)
	require.Len(t, edges, 1)
	assert.Equal(t, domain.EdgeLabel("prerequisite"), edges[0].Label)

	rec = s.do(t, http.MethodGet, "/api/edges?label=part-of", nil)
	assert.Equal(t, "[]\n", rec.Body.String())

	rec = s.do(t, http.MethodDelete, "/api/edges/"+edges[0].ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Edge deleted", decode[MessageResponse](t, rec).Message)

	rec = s.do(t, http.MethodDelete, "/api/edges/"+edges[0].ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFlashcardHandler_Lifecycle(t *testing.T) {
	s := newTestServer(t, middleware.AuthConfig{})
	node := s.createNode(t, "Closures", "concept")

	rec := s.do(t, http.MethodPost, "/api/flashcards/generate", map[string]interface{}{
		"nodeId": node.ID, "question": "What is a closure?", "answer": "A function with its scope",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	card := decode[domain.Flashcard](t, rec)
	assert.Equal(t, 2.5, card.Ease)

	rec = s.do(t, http.MethodPost, "/api/flashcards/generate", map[string]interface{}{
		"nodeId": node.ID, "useAI": true, "content": "closures capture variables",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Len(t, decode[[]domain.Flashcard](t, rec), 3)

	rec = s.do(t, http.MethodGet, "/api/flashcards?nodeId="+node.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Flashcard](t, rec), 4)

	rec = s.do(t, http.MethodPut, "/api/flashcards/"+card.ID+"/progress", map[string]int{"quality": 5})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	reviewed := decode[domain.Flashcard](t, rec)
	assert.Equal(t, 1, reviewed.Interval)
	assert.InDelta(t, 2.6, reviewed.Ease, 1e-9)
	assert.True(t, reviewed.DueAt.After(time.Now()))

	rec = s.do(t, http.MethodGet, "/api/flashcards/due", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	due := decode[[]domain.Flashcard](t, rec)
	assert.Len(t, due, 3)
	for _, c := range due {
		assert.NotEqual(t, card.ID, c.ID)
	}

	rec = s.do(t, http.MethodGet, "/api/flashcards/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.FlashcardStats{Total: 4, Due: 3}, decode[domain.FlashcardStats](t, rec))

	rec = s.do(t, http.MethodDelete, "/api/flashcards/"+card.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodDelete, "/api/flashcards/"+card.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFlashcardHandler_Errors(t *testing.T) {
	s := newTestServer(t, middleware.AuthConfig{})
	node := s.createNode(t, "Closures", "concept")
	rec := s.do(t, http.MethodPost, "/api/flashcards/generate", map[string]interface{}{
		"nodeId": node.ID, "question": "Q", "answer": "A",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	card := decode[domain.Flashcard](t, rec)

	tests := []struct {
		name       string
		method     string
		path       string
		body       interface{}
		wantStatus int
	}{
		{"generate without node", http.MethodPost, "/api/flashcards/generate", map[string]string{"question": "Q", "answer": "A"}, http.StatusBadRequest},
		{"generate unknown node", http.MethodPost, "/api/flashcards/generate", map[string]string{"nodeId": "ghost", "question": "Q", "answer": "A"}, http.StatusNotFound},
		{"manual without answer", http.MethodPost, "/api/flashcards/generate", map[string]string{"nodeId": node.ID, "question": "Q"}, http.StatusBadRequest},
		{"quality out of range", http.MethodPut, "/api/flashcards/" + card.ID + "/progress", map[string]int{"quality": 9}, http.StatusBadRequest},
		{"quality missing", http.MethodPut, "/api/flashcards/" + card.ID + "/progress", map[string]int{}, http.StatusBadRequest},
		{"unknown card", http.MethodPut, "/api/flashcards/ghost/progress", map[string]int{"quality": 3}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestAIHandler_AutoConnect(t *testing.T) {
	s := newTestServer(t, middleware.AuthConfig{})
	target := s.createNode(t, "Closures", "concept")

	rec := s.do(t, http.MethodPost, "/api/ai/connect", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/ai/connect", map[string]string{"nodeId": "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/ai/connect", map[string]string{"nodeId": target.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[knowledge.ConnectResult](t, rec)
	assert.Equal(t, "No other nodes to connect to", res.Message)
	assert.NotNil(t, res.Connections)
	assert.Empty(t, res.Connections)

	s.createNode(t, "Scope", "concept")
	s.createNode(t, "Hoisting", "concept")
	rec = s.do(t, http.MethodPost, "/api/ai/connect", map[string]string{"nodeId": target.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	res = decode[knowledge.ConnectResult](t, rec)
	assert.Equal(t, "Created 2 new connections", res.Message)
	assert.Len(t, res.Connections, 2)
}

func TestAuthentication(t *testing.T) {
	validator, err := auth.NewJWTValidator(auth.JWTConfig{SigningMethod: "HS256", SecretKey: testSecret, Issuer: "conceptforge"})
	require.NoError(t, err)
	generator, err := auth.NewJWTGenerator(auth.JWTGeneratorConfig{SecretKey: testSecret, Issuer: "conceptforge", ExpiryTime: time.Hour})
	require.NoError(t, err)
	token, err := generator.GenerateToken("alice", "alice@example.com", nil)
	require.NoError(t, err)

	s := newTestServer(t, middleware.AuthConfig{Enabled: true, Validator: validator})

	rec := s.do(t, http.MethodGet, "/api/nodes", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/nodes", nil, "Authorization", "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/nodes", map[string]string{"title": "Mine"}, "Authorization", "Bearer "+token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "alice", decode[domain.Node](t, rec).OwnerID)

	rec = s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthAndReady(t *testing.T) {
	s := newTestServer(t, middleware.AuthConfig{})

	rec := s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, HealthResponse{Status: "ok", Version: "test"}, decode[HealthResponse](t, rec))

	rec = s.do(t, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	s.store.SetError("Ping", errors.New("disk gone"))
	rec = s.do(t, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, middleware.AuthConfig{})
	s.createNode(t, "Closures", "concept")

	rec := s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_nodes_created_total 1")
	assert.Contains(t, rec.Body.String(), `test_http_requests_total{method="POST"`)
}

func TestStoreFailureIsHidden(t *testing.T) {
	s := newTestServer(t, middleware.AuthConfig{})
	s.store.SetError("FindNodes", errors.New("connection reset by peer"))

	rec := s.do(t, http.MethodGet, "/api/nodes", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode[api.ErrorResponse](t, rec)
	assert.Equal(t, "An internal error occurred", body.Error)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}
