package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Raghvendrath3/conceptForge/internal/service/study"
	"github.com/Raghvendrath3/conceptForge/pkg/api"
)

// FlashcardHandler serves /api/flashcards.
type FlashcardHandler struct {
	svc    *study.Service
	logger *zap.Logger
}

func NewFlashcardHandler(svc *study.Service, logger *zap.Logger) *FlashcardHandler {
	return &FlashcardHandler{svc: svc, logger: logger}
}

// ListCards returns every card of the owner, or of one node with ?nodeId=.
func (h *FlashcardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	cards, err := h.svc.ListCards(r.Context(), ownerID, r.URL.Query().Get("nodeId"))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, orEmpty(cards))
}

func (h *FlashcardHandler) DueCards(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	cards, err := h.svc.DueCards(r.Context(), ownerID)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, orEmpty(cards))
}

func (h *FlashcardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	stats, err := h.svc.Stats(r.Context(), ownerID)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, stats)
}

// Generate creates cards for a node. With useAI and content it returns the
// generated list, otherwise the single manual card.
func (h *FlashcardHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	var req GenerateFlashcardsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if req.UseAI && strings.TrimSpace(req.Content) != "" {
		cards, err := h.svc.GenerateCards(r.Context(), ownerID, req.NodeID, req.Content)
		if err != nil {
			handleServiceError(w, r, h.logger, err)
			return
		}
		api.Success(w, http.StatusCreated, cards)
		return
	}

	card, err := h.svc.CreateCard(r.Context(), ownerID, req.NodeID, req.Question, req.Answer)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusCreated, card)
}

// UpdateProgress records a review rating.
func (h *FlashcardHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	var req ProgressRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	card, err := h.svc.Rate(r.Context(), ownerID, chi.URLParam(r, "cardId"), *req.Quality)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, card)
}

func (h *FlashcardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireOwner(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteCard(r.Context(), ownerID, chi.URLParam(r, "cardId")); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, MessageResponse{Message: "Flashcard deleted"})
}
