package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Raghvendrath3/conceptForge/internal/service/knowledge"
	"github.com/Raghvendrath3/conceptForge/pkg/api"
)

// AIHandler serves /api/ai.
type AIHandler struct {
	svc    *knowledge.Service
	logger *zap.Logger
}

func NewAIHandler(svc *knowledge.Service, logger *zap.Logger) *AIHandler {
	return &AIHandler{svc: svc, logger: logger}
}

func (h *AIHandler) AutoConnect(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	var req AutoConnectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.AutoConnect(r.Context(), ownerID, req.NodeID)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	res.Connections = orEmpty(res.Connections)
	api.Success(w, http.StatusOK, res)
}
