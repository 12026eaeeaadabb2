package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Raghvendrath3/conceptForge/internal/domain"
	"github.com/Raghvendrath3/conceptForge/internal/service/knowledge"
	"github.com/Raghvendrath3/conceptForge/pkg/api"
)

// EdgeHandler serves /api/edges.
type EdgeHandler struct {
	svc    *knowledge.Service
	logger *zap.Logger
}

func NewEdgeHandler(svc *knowledge.Service, logger *zap.Logger) *EdgeHandler {
	return &EdgeHandler{svc: svc, logger: logger}
}

// ListEdges supports optional from, to and label query filters.
func (h *EdgeHandler) ListEdges(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	filter := knowledge.EdgeFilter{From: q.Get("from"), To: q.Get("to")}
	if l := q.Get("label"); l != "" {
		label, err := domain.ParseEdgeLabel(l)
		if err != nil {
			handleServiceError(w, r, h.logger, err)
			return
		}
		filter.Label = label
	}

	edges, err := h.svc.ListEdges(r.Context(), ownerID, filter)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, orEmpty(edges))
}

func (h *EdgeHandler) CreateEdge(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	var req CreateEdgeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var label domain.EdgeLabel
	if req.Label != "" {
		l, err := domain.ParseEdgeLabel(req.Label)
		if err != nil {
			handleServiceError(w, r, h.logger, err)
			return
		}
		label = l
	}

	edge, err := h.svc.CreateEdge(r.Context(), ownerID, req.From, req.To, label)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusCreated, edge)
}

func (h *EdgeHandler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteEdge(r.Context(), ownerID, chi.URLParam(r, "edgeId")); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, MessageResponse{Message: "Edge deleted"})
}
