// Package rest exposes the search, library and analysis services over HTTP.
package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/ewilliams-labs/beatbuddies/internal/core/ports"
	"github.com/ewilliams-labs/beatbuddies/internal/core/services"
	"github.com/ewilliams-labs/beatbuddies/internal/platform/logger"
)

// Handler manages the HTTP interface for our application.
type Handler struct {
	searches *services.Searches
	library  *services.Library
	analyses ports.AnalysisRepository
	log      *logger.Logger
	router   *http.ServeMux
	checks   []readinessCheck
}

type readinessCheck struct {
	name  string
	check func(ctx context.Context) error
}

const readinessTimeout = 5 * time.Second

// NewHandler initializes the HTTP adapter and sets up routes.
func NewHandler(searches *services.Searches, library *services.Library, analyses ports.AnalysisRepository, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	h := &Handler{
		searches: searches,
		library:  library,
		analyses: analyses,
		log:      log,
		router:   http.NewServeMux(),
	}

	h.routes()

	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	h.router.ServeHTTP(rec, r)
	h.log.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
}

// routes defines the mapping between URLs and methods.
func (h *Handler) routes() {
	h.router.HandleFunc("GET /health", h.HealthCheck)
	h.router.HandleFunc("GET /ready", h.ReadyCheck)

	// Search sessions
	h.router.HandleFunc("POST /searches", h.StartSearch)
	h.router.HandleFunc("GET /searches/recent", h.RecentSearches)
	h.router.HandleFunc("GET /searches/{id}", h.GetSearch)
	h.router.HandleFunc("PUT /searches/{id}", h.RestartSearch)
	h.router.HandleFunc("POST /searches/{id}/next", h.NextPage)
	h.router.HandleFunc("DELETE /searches/{id}", h.CloseSearch)

	// Catalog
	h.router.HandleFunc("GET /catalog/{kind}/{id}", h.GetCatalogItem)

	// Reactions and favourites
	h.router.HandleFunc("PUT /library/{kind}/{itemID}", h.React)
	h.router.HandleFunc("GET /library/{kind}/{itemID}", h.GetReaction)
	h.router.HandleFunc("GET /library/{kind}", h.ListReactions)
	h.router.HandleFunc("PUT /favorites/{kind}/{itemID}", h.AddFavorite)
	h.router.HandleFunc("DELETE /favorites/{kind}/{itemID}", h.RemoveFavorite)
	h.router.HandleFunc("GET /favorites/{kind}", h.ListFavorites)

	// Lists
	h.router.HandleFunc("POST /lists", h.CreateList)
	h.router.HandleFunc("GET /lists", h.ListLists)
	h.router.HandleFunc("GET /lists/{id}", h.GetList)
	h.router.HandleFunc("POST /lists/{id}/items", h.AddListItem)

	// Friends
	h.router.HandleFunc("PUT /friends/{id}", h.AddFriend)
	h.router.HandleFunc("GET /friends", h.ListFriends)
	h.router.HandleFunc("GET /friends/{id}/library/{kind}", h.ListFriendReactions)

	// Preview analysis
	h.router.HandleFunc("GET /tracks/{id}/analysis", h.GetTrackAnalysis)
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "BeatBuddies is live"})
}

// AddReadinessCheck registers a dependency checked by GET /ready.
func (h *Handler) AddReadinessCheck(name string, check func(ctx context.Context) error) {
	h.checks = append(h.checks, readinessCheck{name: name, check: check})
}

// ReadyCheck reports 503 when any registered dependency is unreachable.
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	failed := map[string]string{}
	for _, c := range h.checks {
		if err := c.check(ctx); err != nil {
			h.log.Warn("readiness check failed", "check", c.name, "error", err)
			failed[c.name] = err.Error()
		}
	}
	if len(failed) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "not_ready", "failed": failed})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
