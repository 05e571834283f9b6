package rest

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/ewilliams-labs/beatbuddies/internal/core/domain"
)

const (
	userIDHeader = "X-User-ID"
	maxBodyBytes = 1 << 20

	errCodeValidation      = "VALIDATION"
	errCodeAuth            = "AUTH"
	errCodeUpstream        = "UPSTREAM"
	errCodeNotFound        = "NOT_FOUND"
	errCodeForbidden       = "FORBIDDEN"
	errCodeUnauthenticated = "UNAUTHENTICATED"
	errCodeInternal        = "INTERNAL"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeErrorWithCode(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// writeServiceError maps domain errors onto HTTP statuses.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeErrorWithCode(w, http.StatusBadRequest, verr.Error(), errCodeValidation)
	case errors.Is(err, domain.ErrValidation):
		writeErrorWithCode(w, http.StatusBadRequest, err.Error(), errCodeValidation)
	case errors.Is(err, domain.ErrAuth):
		h.log.Warn("catalog auth failed", "path", r.URL.Path, "error", err)
		writeErrorWithCode(w, http.StatusBadGateway, "catalog authentication failed", errCodeAuth)
	case errors.Is(err, domain.ErrTransientFetch):
		h.log.Warn("catalog fetch failed", "path", r.URL.Path, "error", err)
		writeErrorWithCode(w, http.StatusBadGateway, "catalog request failed, try again", errCodeUpstream)
	case errors.Is(err, domain.ErrNotFound):
		writeErrorWithCode(w, http.StatusNotFound, domain.ErrNotFound.Error(), errCodeNotFound)
	case errors.Is(err, domain.ErrForbidden):
		writeErrorWithCode(w, http.StatusForbidden, domain.ErrForbidden.Error(), errCodeForbidden)
	default:
		h.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeErrorWithCode(w, http.StatusInternalServerError, "internal error", errCodeInternal)
	}
}

func isJSONContentType(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	return err == nil && mediaType == "application/json"
}

// decodeJSON enforces the content type and decodes a bounded body into dst.
// It writes the error response itself and reports whether decoding succeeded.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErrorWithCode(w, http.StatusBadRequest, "Invalid request body", errCodeValidation)
		return false
	}
	return true
}

// requireUser returns the caller id or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get(userIDHeader))
	if userID == "" {
		writeErrorWithCode(w, http.StatusUnauthorized, userIDHeader+" header is required", errCodeUnauthenticated)
		return "", false
	}
	return userID, true
}

// pathKind parses the {kind} path segment, accepting singular and plural forms.
func (h *Handler) pathKind(w http.ResponseWriter, r *http.Request) (domain.Kind, bool) {
	kind, err := domain.ParseKind(r.PathValue("kind"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return "", false
	}
	return kind, true
}
