// Package replay appends per-tick spectator snapshots to a single composite
// JSON document and, in competitive mode, writes a sibling results file
// once the match concludes.
package replay

import (
	"fmt"
	"os"
	"sync"

	"github.com/tidwall/sjson"

	"github.com/monotanks/server/internal/gamelog"
	"github.com/monotanks/server/internal/protocol"
)

// Journal accumulates a match's replay document in memory and flushes it
// to disk once the match ends. The tick worker is the sole appender
// the tick worker is the sole appender.
type Journal struct {
	filePath          string
	overwriteExisting bool
	competitive       bool

	mu         sync.Mutex
	doc        string // building JSON document via sjson.Set
	tickCount  int
}

// New constructs a journal for the given replay file path. Enabled callers
// must check path != "" before calling AppendTick.
func New(filePath string, overwriteExisting, competitive bool) (*Journal, error) {
	if !overwriteExisting {
		if _, err := os.Stat(filePath); err == nil {
			return nil, fmt.Errorf("replay: file %s already exists", filePath)
		}
	}
	return &Journal{filePath: filePath, overwriteExisting: overwriteExisting, competitive: competitive}, nil
}

// SetLobbyData records the lobby payload once, at match start.
func (j *Journal) SetLobbyData(lobby protocol.LobbyData) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	doc, err := sjson.Set(j.doc, "lobbyData", lobby)
	if err != nil {
		return fmt.Errorf("replay: set lobbyData: %w", err)
	}
	j.doc = doc
	return nil
}

// AppendTick appends one tick's spectator-view snapshot to the gameStates
// array.
func (j *Journal) AppendTick(state protocol.GameState) {
	j.mu.Lock()
	defer j.mu.Unlock()

	path := fmt.Sprintf("gameStates.%d", j.tickCount)
	doc, err := sjson.Set(j.doc, path, state)
	if err != nil {
		gamelog.Replay.Printf("append tick %d failed: %v", j.tickCount, err)
		return
	}
	j.doc = doc
	j.tickCount++
}

// Finalize writes the gameEnd payload into the document and flushes both
// the main replay file and, in competitive mode, a sibling *_results file
// recording whether any player disconnected mid-match.
func (j *Journal) Finalize(end protocol.GameEnd, valid bool) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	doc, err := sjson.Set(j.doc, "gameEnd", end)
	if err != nil {
		return fmt.Errorf("replay: set gameEnd: %w", err)
	}
	j.doc = doc

	if err := os.WriteFile(j.filePath, []byte(j.doc), 0o644); err != nil {
		return fmt.Errorf("replay: write %s: %w", j.filePath, err)
	}

	if j.competitive {
		if err := j.writeResults(end, valid); err != nil {
			return err
		}
	}

	gamelog.Replay.Printf("wrote %d ticks to %s", j.tickCount, j.filePath)
	return nil
}

func (j *Journal) writeResults(end protocol.GameEnd, valid bool) error {
	results := struct {
		Players []protocol.PlayerScoreView `json:"players"`
		Valid   bool                       `json:"valid"`
	}{Players: end.Players, Valid: valid}

	doc, err := sjson.Set("", "results", results)
	if err != nil {
		return fmt.Errorf("replay: build results doc: %w", err)
	}

	resultsPath := resultsFilePath(j.filePath)
	if err := os.WriteFile(resultsPath, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("replay: write %s: %w", resultsPath, err)
	}
	return nil
}

func resultsFilePath(replayPath string) string {
	return replayPath + "_results"
}
