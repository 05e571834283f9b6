package rest

import "net/http"

// AddFriend handles PUT /friends/{id}
func (h *Handler) AddFriend(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	friend, err := h.library.AddFriend(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, friend)
}

// ListFriends handles GET /friends
func (h *Handler) ListFriends(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	friends, err := h.library.Friends(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"friends": friends})
}

// ListFriendReactions handles GET /friends/{id}/library/{kind}
func (h *Handler) ListFriendReactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	kind, ok := h.pathKind(w, r)
	if !ok {
		return
	}
	friendID := r.PathValue("id")
	reactions, err := h.library.FriendReactions(r.Context(), userID, friendID, kind)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"friend_id": friendID, "kind": kind, "reactions": reactions})
}
