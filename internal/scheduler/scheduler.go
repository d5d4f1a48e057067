// Package scheduler runs the fixed-cadence tick loop: drains actions,
// advances the simulation, issues a fresh game-state id, and fans out
// broadcasts to every open connection within a bounded worker pool.
package scheduler

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/monotanks/server/internal/api"
	"github.com/monotanks/server/internal/conn"
	"github.com/monotanks/server/internal/game"
	"github.com/monotanks/server/internal/gamelog"
	"github.com/monotanks/server/internal/protocol"
	"github.com/monotanks/server/internal/replay"
	"github.com/monotanks/server/internal/view"
)

// maxBroadcastWorkers bounds the fan-out worker pool regardless of
// connection count.
const maxBroadcastWorkers = 32

// Config holds the scheduler's cadence and lifecycle tunables.
type Config struct {
	BroadcastInterval time.Duration
	MaxTicks          int
	Sandbox           bool
	EagerBroadcast    bool
}

// Scheduler owns the tick loop. It implements action.MatchState so the
// dispatcher can validate actions against live match state.
type Scheduler struct {
	world   *game.World
	manager *conn.Manager
	journal *replay.Journal
	cfg     Config

	mu          sync.RWMutex
	running     bool
	gameStateID string

	// eagerSignal is a one-shot channel closed when the last expected bot
	// action arrives for the tick currently being waited on; Run replaces
	// it with a fresh channel at the start of every sleep phase.
	eagerMu     sync.Mutex
	eagerSignal chan struct{}
}

// New builds a scheduler over world, fanning broadcasts out to manager's
// connections and, if journal is non-nil, appending to the replay file.
func New(world *game.World, manager *conn.Manager, journal *replay.Journal, cfg Config) *Scheduler {
	return &Scheduler{
		world:   world,
		manager: manager,
		journal: journal,
		cfg:     cfg,
	}
}

// IsRunning implements action.MatchState.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// CurrentGameStateID implements action.MatchState.
func (s *Scheduler) CurrentGameStateID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gameStateID
}

// NotifyBotActed wakes the eager-broadcast waiter once every alive bot has
// submitted an action for the current game-state id.
func (s *Scheduler) NotifyBotActed() {
	if !s.cfg.EagerBroadcast || !s.allBotsActed() {
		return
	}
	s.eagerMu.Lock()
	defer s.eagerMu.Unlock()
	if s.eagerSignal != nil {
		select {
		case <-s.eagerSignal:
		default:
			close(s.eagerSignal)
		}
	}
}

// allBotsActed reports whether every alive bot has already submitted an
// action for the current tick. A living human in the match always blocks
// the eager path - it only exists to skip the wait when nothing but bots
// remain to act. Players whose tank is dead are not waited on.
func (s *Scheduler) allBotsActed() bool {
	acted := true
	s.world.WithReadLock(func() {
		for _, c := range s.manager.All() {
			if c.Kind != conn.KindPlayer {
				continue
			}
			p, ok := s.world.Players[c.PlayerID]
			if ok && !p.IsAlive() {
				continue
			}
			if !ok || !p.IsBot {
				acted = false
				return
			}
			if !c.HasMadeActionThisTick() {
				acted = false
				return
			}
		}
	})
	return acted
}

// Run executes the tick loop until MaxTicks is reached; in Sandbox mode it
// never returns. Blocking; run on its own goroutine from cmd/server.
func (s *Scheduler) Run() {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()
	s.manager.SetMatchRunning(true)

	for {
		s.mu.RLock()
		tick := s.world.Tick
		s.mu.RUnlock()

		if !s.cfg.Sandbox && tick >= s.cfg.MaxTicks {
			s.endMatch()
			return
		}

		start := time.Now()
		s.runOneTick()
		elapsed := time.Since(start)
		api.RecordTick(elapsed)

		sleep := s.cfg.BroadcastInterval - elapsed
		if sleep <= 0 {
			api.RecordTickOverrun()
			gamelog.Scheduler.Printf("tick %d overran by %s", s.world.Tick, -sleep)
			continue
		}

		if s.cfg.EagerBroadcast && s.waitEagerOrTimer(sleep) {
			continue
		}
		time.Sleep(sleep)
	}
}

// waitEagerOrTimer blocks until either every bot has acted for the current
// state or sleep elapses, whichever comes first. Returns true if the eager
// path fired (caller should proceed immediately without sleeping further).
func (s *Scheduler) waitEagerOrTimer(sleep time.Duration) bool {
	if s.allBotsActed() {
		return true
	}

	s.eagerMu.Lock()
	s.eagerSignal = make(chan struct{})
	signal := s.eagerSignal
	s.eagerMu.Unlock()

	select {
	case <-signal:
		return true
	case <-time.After(sleep):
		return false
	}
}

func (s *Scheduler) runOneTick() {
	actions := s.drainActions()
	s.world.RunTick(actions)

	s.mu.Lock()
	s.gameStateID = uuid.NewString()
	s.mu.Unlock()

	for _, c := range s.manager.All() {
		c.ResetTickFlags()
	}

	broadcastStart := time.Now()
	s.broadcast()
	api.RecordBroadcast(time.Since(broadcastStart))

	if s.journal != nil {
		s.world.WithReadLock(func() {
			snap := view.Render(s.world, "", view.Recipient{Spectator: true})
			s.journal.AppendTick(snap)
		})
	}

	s.world.ClearRadarFlags()
}

// drainActions collects the single pending action per connected player,
// keyed by player id, for World.RunTick's phase-1 ordering to consume.
func (s *Scheduler) drainActions() map[string]game.Action {
	actions := make(map[string]game.Action)
	for _, c := range s.manager.All() {
		if c.Kind != conn.KindPlayer {
			continue
		}
		raw, ok := c.TakeAction()
		if !ok {
			continue
		}
		act, ok := raw.(game.Action)
		if !ok {
			continue
		}
		actions[c.PlayerID] = act
	}
	return actions
}

// broadcast renders and sends one GameState packet to every open
// connection using a bounded worker pool.
func (s *Scheduler) broadcast() {
	conns := s.manager.All()
	sem := make(chan struct{}, maxBroadcastWorkers)
	var wg sync.WaitGroup

	gsID := s.CurrentGameStateID()

	s.world.WithReadLock(func() {
		for _, c := range conns {
			c := c
			wg.Add(1)
			sem <- struct{}{}
			go func() {
				defer wg.Done()
				defer func() { <-sem }()

				r := view.Recipient{Spectator: c.Kind == conn.KindSpectator, PlayerID: c.PlayerID}
				snap := view.Render(s.world, gsID, r)
				if err := c.Send(protocol.PacketGameState, snap); err != nil {
					gamelog.Scheduler.Printf("broadcast to %s failed: %v", c.ID, err)
					s.manager.Remove(c)
				}
			}()
		}
		wg.Wait()
	})
}

func (s *Scheduler) endMatch() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	s.manager.SetMatchRunning(false)

	ranked := s.world.Rankings()
	var players []protocol.PlayerScoreView
	for _, p := range ranked {
		players = append(players, protocol.PlayerScoreView{
			ID: p.ID, Nickname: p.Nickname, Score: p.Score, Kills: p.Kills,
		})
	}
	end := protocol.GameEnd{Players: players}

	for _, c := range s.manager.All() {
		c.Send(protocol.PacketGameEnd, end)
		c.Close(1000, "match ended")
	}

	for _, p := range ranked {
		if s.manager.IsDisconnectedInGame(p.ID) {
			s.world.MarkDisconnected(p.ID)
		}
	}

	if s.journal != nil {
		valid := !s.world.AnyDisconnected()
		if err := s.journal.Finalize(end, valid); err != nil {
			gamelog.Scheduler.Printf("replay finalize error: %v", err)
		}
	}

	gamelog.Scheduler.Printf("match ended at tick %d", s.world.Tick)
}
