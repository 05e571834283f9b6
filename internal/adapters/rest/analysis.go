package rest

import (
	"net/http"
	"strings"
)

// GetTrackAnalysis handles GET /tracks/{id}/analysis
func (h *Handler) GetTrackAnalysis(w http.ResponseWriter, r *http.Request) {
	trackID := strings.TrimSpace(r.PathValue("id"))
	if trackID == "" {
		writeErrorWithCode(w, http.StatusBadRequest, "track id is required", errCodeValidation)
		return
	}

	analysis, err := h.analyses.GetAnalysis(r.Context(), trackID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}
