package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/monotanks/server/internal/game"
)

type fakeWorld struct {
	rankings []*game.Player
}

func (f *fakeWorld) WithReadLock(fn func()) { fn() }
func (f *fakeWorld) Rankings() []*game.Player { return f.rankings }

func newTestRouter() http.Handler {
	world := &fakeWorld{rankings: []*game.Player{
		{ID: "p1", Nickname: "Alice", Score: 5, Kills: 2},
		{ID: "p2", Nickname: "Bob", Score: 3, Kills: 1},
	}}
	return NewRouter(RouterConfig{World: world, DisableLogging: true})
}

func TestHealthzReturnsOK(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from /healthz, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode /healthz body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status=ok, got %q", body["status"])
	}
}

func TestGetStateReturnsPlayers(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest("GET", "/api/state", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from /api/state, got %d", w.Code)
	}
	var body struct {
		Players []struct {
			ID       string `json:"id"`
			Nickname string `json:"nickname"`
		} `json:"players"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode /api/state body: %v", err)
	}
	if len(body.Players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(body.Players))
	}
}

func TestGetLeaderboardOrdersByRankings(t *testing.T) {
	r := newTestRouter()
	req := httptest.NewRequest("GET", "/api/leaderboard", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from /api/leaderboard, got %d", w.Code)
	}
	var entries []struct {
		Nickname string `json:"nickname"`
		Score    int    `json:"score"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode /api/leaderboard body: %v", err)
	}
	if len(entries) != 2 || entries[0].Nickname != "Alice" {
		t.Fatalf("expected leaderboard order to follow Rankings(), got %#v", entries)
	}
}
