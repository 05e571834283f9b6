package rest

import (
	"net/http"

	"github.com/ewilliams-labs/beatbuddies/internal/core/domain"
)

type createListRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CoverURL    string `json:"cover_url"`
}

type addListItemRequest struct {
	Kind     string `json:"kind"`
	ItemID   string `json:"item_id"`
	Name     string `json:"name"`
	Artist   string `json:"artist"`
	ImageURL string `json:"image_url"`
}

// CreateList handles POST /lists
func (h *Handler) CreateList(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req createListRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	list, err := h.library.CreateList(r.Context(), userID, req.Title, req.Description, req.CoverURL)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/lists/"+list.ID)
	writeJSON(w, http.StatusCreated, list)
}

// ListLists handles GET /lists
func (h *Handler) ListLists(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	lists, err := h.library.Lists(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"lists": lists})
}

// GetList handles GET /lists/{id}
func (h *Handler) GetList(w http.ResponseWriter, r *http.Request) {
	list, err := h.library.List(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// AddListItem handles POST /lists/{id}/items
func (h *Handler) AddListItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req addListItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	kind, err := domain.ParseKind(req.Kind)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	item := domain.ListItem{
		Kind:       kind,
		ItemID:     req.ItemID,
		Name:       req.Name,
		ArtistName: req.Artist,
		ImageURL:   req.ImageURL,
	}
	list, err := h.library.AddToList(r.Context(), userID, r.PathValue("id"), item)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
