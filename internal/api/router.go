package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/monotanks/server/internal/game"
)

// WorldInterface defines the read-only world queries the HTTP API needs.
// Keeping this minimal and separate from *game.World makes the router
// testable with a fake.
type WorldInterface interface {
	WithReadLock(fn func())
	Rankings() []*game.Player
}

// RouterConfig contains all dependencies needed to construct the HTTP router.
// NewRouter has no side effects - no goroutines, no listeners - so it is
// safe to use directly with httptest.NewServer.
type RouterConfig struct {
	World WorldInterface

	// CORSOrigins is an optional list of allowed CORS origins. If nil,
	// defaults to permissive localhost origins for local client testing.
	CORSOrigins []string

	// DisableLogging disables the request logger middleware (useful for
	// benchmarks and tests).
	DisableLogging bool
}

type routerHandlers struct {
	world WorldInterface
}

// NewRouter constructs the HTTP router with health/state endpoints. The
// websocket upgrade paths ("/", "/spectator") are not registered here:
// cmd/server adds them to the returned mux, since their handlers need the
// connection manager, the world and the dispatcher.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)

	origins := cfg.CORSOrigins
	if origins == nil {
		origins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	h := &routerHandlers{world: cfg.World}

	r.Get("/healthz", h.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.handleGetState)
		r.Get("/leaderboard", h.handleGetLeaderboard)
	})

	return r
}

func (h *routerHandlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	RecordRequest(r.Method, "/healthz", http.StatusOK, time.Since(start))
}

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ranked := h.world.Rankings()

	type playerSummary struct {
		ID       string `json:"id"`
		Nickname string `json:"nickname"`
		Score    int    `json:"score"`
		Kills    int    `json:"kills"`
	}
	summaries := make([]playerSummary, 0, len(ranked))
	for _, p := range ranked {
		summaries = append(summaries, playerSummary{ID: p.ID, Nickname: p.Nickname, Score: p.Score, Kills: p.Kills})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"players": summaries})
	RecordRequest(r.Method, "/api/state", http.StatusOK, time.Since(start))
}

func (h *routerHandlers) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ranked := h.world.Rankings()

	type entry struct {
		Nickname string `json:"nickname"`
		Score    int    `json:"score"`
		Kills    int    `json:"kills"`
	}
	leaderboard := make([]entry, 0, len(ranked))
	for _, p := range ranked {
		leaderboard = append(leaderboard, entry{Nickname: p.Nickname, Score: p.Score, Kills: p.Kills})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(leaderboard)
	RecordRequest(r.Method, "/api/leaderboard", http.StatusOK, time.Since(start))
}
