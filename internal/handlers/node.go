package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Raghvendrath3/conceptForge/internal/domain"
	"github.com/Raghvendrath3/conceptForge/internal/service/knowledge"
	"github.com/Raghvendrath3/conceptForge/pkg/api"
)

// NodeHandler serves /api/nodes.
type NodeHandler struct {
	svc    *knowledge.Service
	logger *zap.Logger
}

func NewNodeHandler(svc *knowledge.Service, logger *zap.Logger) *NodeHandler {
	return &NodeHandler{svc: svc, logger: logger}
}

func (h *NodeHandler) ListNodes(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	filter := knowledge.NodeFilter{}
	if t := r.URL.Query().Get("type"); t != "" {
		typ, err := domain.ParseNodeType(t)
		if err != nil {
			handleServiceError(w, r, h.logger, err)
			return
		}
		filter.Type = typ
	}
	if tags := r.URL.Query().Get("tags"); tags != "" {
		filter.Tags = strings.Split(tags, ",")
	}

	nodes, err := h.svc.ListNodes(r.Context(), ownerID, filter)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, orEmpty(nodes))
}

func (h *NodeHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	var req CreateNodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in := knowledge.CreateNodeInput{Title: req.Title, Body: req.Body, Tags: req.Tags}
	if req.Type != "" {
		typ, err := domain.ParseNodeType(req.Type)
		if err != nil {
			handleServiceError(w, r, h.logger, err)
			return
		}
		in.Type = typ
	}

	node, err := h.svc.CreateNode(r.Context(), ownerID, in)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusCreated, node)
}

func (h *NodeHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	node, err := h.svc.GetNode(r.Context(), ownerID, chi.URLParam(r, "nodeId"))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, node)
}

func (h *NodeHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	var req UpdateNodeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	changes := domain.NodeChanges{Title: req.Title, Body: req.Body, Tags: req.Tags}
	if req.Type != "" {
		typ, err := domain.ParseNodeType(req.Type)
		if err != nil {
			handleServiceError(w, r, h.logger, err)
			return
		}
		changes.Type = typ
	}

	node, err := h.svc.UpdateNode(r.Context(), ownerID, chi.URLParam(r, "nodeId"), changes)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, node)
}

func (h *NodeHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	res, err := h.svc.DeleteNode(r.Context(), ownerID, chi.URLParam(r, "nodeId"))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, struct {
		Message string `json:"message"`
		knowledge.DeleteResult
	}{Message: "Node deleted", DeleteResult: res})
}

func (h *NodeHandler) Children(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	var typeFilter domain.NodeType
	if t := r.URL.Query().Get("type"); t != "" {
		typ, err := domain.ParseNodeType(t)
		if err != nil {
			handleServiceError(w, r, h.logger, err)
			return
		}
		typeFilter = typ
	}

	children, err := h.svc.Children(r.Context(), ownerID, chi.URLParam(r, "nodeId"), typeFilter)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, orEmpty(children))
}

// Hierarchy returns the subject forest and any integrity warnings.
func (h *NodeHandler) Hierarchy(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	forest, err := h.svc.Hierarchy(r.Context(), ownerID)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]interface{}{
		"forest":   orEmpty(forest.Roots),
		"warnings": orEmpty(forest.Warnings),
	})
}

func (h *NodeHandler) Import(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	var req ImportRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var entries []knowledge.WorkspaceNode
	raw := strings.TrimSpace(string(req.Nodes))
	if !strings.HasPrefix(raw, "[") || json.Unmarshal(req.Nodes, &entries) != nil {
		api.Error(w, http.StatusBadRequest, "Invalid data format. Expected array of nodes.")
		return
	}

	count, err := h.svc.Import(r.Context(), ownerID, entries)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusCreated, map[string]interface{}{
		"message": fmt.Sprintf("Successfully imported %d nodes", count),
		"count":   count,
	})
}

func (h *NodeHandler) Export(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	nodes, err := h.svc.Export(r.Context(), ownerID)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]interface{}{"nodes": orEmpty(nodes)})
}

func (h *NodeHandler) SuggestTags(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireOwner(w, r); !ok {
		return
	}
	var req SuggestTagsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tags, err := h.svc.SuggestTags(r.Context(), req.Content)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, SuggestTagsResponse{Tags: orEmpty(tags)})
}

func (h *NodeHandler) LogExecution(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	var req ExecutionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	log, err := h.svc.LogExecution(r.Context(), ownerID, chi.URLParam(r, "nodeId"), req.Code, req.Output)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]interface{}{
		"message":      "Execution logged successfully",
		"executionLog": log,
	})
}
