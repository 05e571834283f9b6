package rest

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ewilliams-labs/beatbuddies/internal/core/domain"
)

type searchRequest struct {
	Query string `json:"query"`
	Kind  string `json:"kind"`
}

// kind defaults to tracks, the first tab of the search screen.
func (req searchRequest) kind() (domain.Kind, error) {
	if strings.TrimSpace(req.Kind) == "" {
		return domain.KindTrack, nil
	}
	return domain.ParseKind(req.Kind)
}

// StartSearch handles POST /searches
func (h *Handler) StartSearch(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req searchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	kind, err := req.kind()
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	view, err := h.searches.Start(r.Context(), userID, req.Query, kind)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.Header().Set("Location", "/searches/"+view.ID)
	writeJSON(w, http.StatusCreated, view)
}

// RestartSearch handles PUT /searches/{id}
func (h *Handler) RestartSearch(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req searchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	kind, err := req.kind()
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	view, err := h.searches.Restart(r.Context(), userID, r.PathValue("id"), req.Query, kind)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// NextPage handles POST /searches/{id}/next
func (h *Handler) NextPage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	view, err := h.searches.Next(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GetSearch handles GET /searches/{id}
func (h *Handler) GetSearch(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	view, err := h.searches.Get(userID, r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// CloseSearch handles DELETE /searches/{id}
func (h *Handler) CloseSearch(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.searches.Close(userID, r.PathValue("id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecentSearches handles GET /searches/recent?limit=
func (h *Handler) RecentSearches(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeErrorWithCode(w, http.StatusBadRequest, "limit must be a non-negative integer", errCodeValidation)
			return
		}
		limit = n
	}

	entries, err := h.searches.Recent(userID, limit)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"searches": entries})
}

// GetCatalogItem handles GET /catalog/{kind}/{id}
func (h *Handler) GetCatalogItem(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.pathKind(w, r)
	if !ok {
		return
	}
	item, err := h.library.Item(r.Context(), kind, r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}
