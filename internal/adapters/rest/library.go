package rest

import (
	"context"
	"net/http"

	"github.com/ewilliams-labs/beatbuddies/internal/core/domain"
)

type reactRequest struct {
	Rating *float64 `json:"rating"`
	Review string   `json:"review"`
}

// React handles PUT /library/{kind}/{itemID}
func (h *Handler) React(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	kind, ok := h.pathKind(w, r)
	if !ok {
		return
	}
	var req reactRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Rating == nil {
		writeErrorWithCode(w, http.StatusBadRequest, "rating is required", errCodeValidation)
		return
	}

	reaction, err := h.library.React(r.Context(), userID, kind, r.PathValue("itemID"), *req.Rating, req.Review)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reaction)
}

// GetReaction handles GET /library/{kind}/{itemID}
func (h *Handler) GetReaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	kind, ok := h.pathKind(w, r)
	if !ok {
		return
	}
	reaction, err := h.library.Reaction(r.Context(), userID, kind, r.PathValue("itemID"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reaction)
}

// ListReactions handles GET /library/{kind}
func (h *Handler) ListReactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	kind, ok := h.pathKind(w, r)
	if !ok {
		return
	}
	reactions, err := h.library.Reactions(r.Context(), userID, kind)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"kind": kind, "reactions": reactions})
}

// AddFavorite handles PUT /favorites/{kind}/{itemID}
func (h *Handler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	h.toggleFavorite(w, r, h.library.Favorite)
}

// RemoveFavorite handles DELETE /favorites/{kind}/{itemID}
func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	h.toggleFavorite(w, r, h.library.Unfavorite)
}

func (h *Handler) toggleFavorite(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, userID string, kind domain.Kind, itemID string) error) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	kind, ok := h.pathKind(w, r)
	if !ok {
		return
	}
	if err := op(r.Context(), userID, kind, r.PathValue("itemID")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListFavorites handles GET /favorites/{kind}
func (h *Handler) ListFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	kind, ok := h.pathKind(w, r)
	if !ok {
		return
	}
	favorites, err := h.library.Favorites(r.Context(), userID, kind)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"kind": kind, "favorites": favorites})
}
