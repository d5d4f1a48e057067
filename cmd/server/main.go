package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/monotanks/server/internal/action"
	"github.com/monotanks/server/internal/api"
	"github.com/monotanks/server/internal/conn"
	"github.com/monotanks/server/internal/config"
	"github.com/monotanks/server/internal/gamelog"
	"github.com/monotanks/server/internal/game"
	"github.com/monotanks/server/internal/protocol"
	"github.com/monotanks/server/internal/replay"
	"github.com/monotanks/server/internal/scheduler"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("💡 no .env file found, using environment variables only")
	}

	if err := newRootCommand().Execute(); err != nil {
		log.Printf("⚠️ fatal: %v", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	appConfig := config.Load()

	cmd := &cobra.Command{
		Use:   "monotanks-server",
		Short: "Authoritative game server core for MonoTanks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(appConfig)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&appConfig.Server.Host, "host", appConfig.Server.Host, "ip|*|localhost")
	flags.IntVar(&appConfig.Server.Port, "port", appConfig.Server.Port, "1..65535")
	flags.IntVar(&appConfig.Match.NumberOfPlayers, "players", appConfig.Match.NumberOfPlayers, "2..4")
	flags.IntVar(&appConfig.Match.BroadcastInterval, "broadcast-interval", appConfig.Match.BroadcastInterval, "milliseconds between broadcasts")
	flags.IntVar(&appConfig.Match.Ticks, "ticks", appConfig.Match.Ticks, "match length in ticks")
	flags.Int64Var(&appConfig.Match.Seed, "seed", appConfig.Match.Seed, "match PRNG seed")
	flags.StringVar(&appConfig.Match.JoinCode, "join-code", appConfig.Match.JoinCode, "required join code, empty = open")
	flags.BoolVar(&appConfig.Match.Sandbox, "sandbox", appConfig.Match.Sandbox, "sandbox matches never end on max ticks")
	flags.BoolVar(&appConfig.Replay.Enabled, "save-replay", appConfig.Replay.Enabled, "write a replay journal")
	flags.StringVar(&appConfig.Replay.FilePath, "replay-filepath", appConfig.Replay.FilePath, "replay journal output path")
	flags.BoolVar(&appConfig.Replay.OverwriteExisting, "overwrite-replay-file", appConfig.Replay.OverwriteExisting, "overwrite an existing replay file")
	flags.BoolVar(&appConfig.Match.EagerBroadcast, "eager-broadcast", appConfig.Match.EagerBroadcast, "advance early once all bots have acted")

	return cmd
}

func run(appConfig config.AppConfig) error {
	if appConfig.Match.NumberOfPlayers < 2 || appConfig.Match.NumberOfPlayers > 4 {
		return fmt.Errorf("--players must be in 2..4, got %d", appConfig.Match.NumberOfPlayers)
	}
	if appConfig.Server.Port < 1 || appConfig.Server.Port > 65535 {
		return fmt.Errorf("--port must be in 1..65535, got %d", appConfig.Server.Port)
	}

	gamelog.Engine.Printf("starting match: %d players, %dx%d grid, seed %d",
		appConfig.Match.NumberOfPlayers, appConfig.Match.GridDimension, appConfig.Match.GridDimension, appConfig.Match.Seed)

	world := game.NewWorld(
		appConfig.Match.GridDimension,
		appConfig.Match.NumberOfPlayers,
		appConfig.Match.Seed,
		appConfig.Sim,
		appConfig.Limits,
	)

	manager := conn.NewManager(appConfig.Match.JoinCode, appConfig.Match.NumberOfPlayers)

	var journal *replay.Journal
	if appConfig.Replay.Enabled {
		j, err := replay.New(appConfig.Replay.FilePath, appConfig.Replay.OverwriteExisting, appConfig.Replay.Competitive)
		if err != nil {
			return fmt.Errorf("replay: %w", err)
		}
		journal = j
		if err := journal.SetLobbyData(lobbyDataFor(appConfig)); err != nil {
			return fmt.Errorf("replay: %w", err)
		}
	}

	sched := scheduler.New(world, manager, journal, scheduler.Config{
		BroadcastInterval: time.Duration(appConfig.Match.BroadcastInterval) * time.Millisecond,
		MaxTicks:          appConfig.Match.Ticks,
		Sandbox:           appConfig.Match.Sandbox,
		EagerBroadcast:    appConfig.Match.EagerBroadcast,
	})

	dispatcher := action.NewDispatcher(sched)

	mux := api.NewRouter(api.RouterConfig{World: world})
	mux.Get("/", handshakeHandler(manager, world, dispatcher, appConfig, "/"))
	mux.Get("/spectator", handshakeHandler(manager, world, dispatcher, appConfig, "/spectator"))

	debugCfg := api.DefaultObservabilityConfig()
	if os.Getenv("DISABLE_DEBUG_SERVER") != "true" {
		if err := api.StartDebugServer(debugCfg); err != nil {
			gamelog.Engine.Printf("debug server not started: %v", err)
		}
	}

	go sched.Run()

	addr := fmt.Sprintf("%s:%d", appConfig.Server.Host, appConfig.Server.Port)
	gamelog.Engine.Printf("listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

// playerPalette assigns a deterministic color per join order, cycled if a
// match somehow exceeds the palette length.
var playerPalette = []uint32{0xE53935, 0x1E88E5, 0x43A047, 0xFDD835}

// handshakeHandler upgrades an incoming request at path ("/" or
// "/spectator") to a websocket connection, registers it with both the
// connection manager and, for players, the world, then spawns its I/O
// worker goroutine feeding the dispatcher.
func handshakeHandler(manager *conn.Manager, world *game.World, dispatcher *action.Dispatcher, appConfig config.AppConfig, path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hs := conn.ParseHandshake(r, path)

		c, status := manager.Accept(w, r, hs)
		if status != 0 {
			api.RecordConnectionRejected(rejectReason(status))
			http.Error(w, http.StatusText(status), status)
			return
		}

		if hs.Kind == conn.KindPlayer {
			color := playerPalette[len(world.Order)%len(playerPalette)]
			if _, ok := world.AddPlayer(c.PlayerID, hs.Nickname, color, hs.IsBot); !ok {
				c.Close(1013, "match full")
				manager.Remove(c)
				return
			}
		}

		go func() {
			defer manager.Remove(c)
			if err := c.ReadLoop(func(frame []byte) { dispatcher.Handle(c, frame) }); err != nil {
				gamelog.Conn.Printf("connection %s closed: %v", c.ID, err)
			}
		}()
	}
}

func rejectReason(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "join_code"
	case http.StatusTooManyRequests:
		return "slots_full"
	default:
		return "malformed"
	}
}

func lobbyDataFor(appConfig config.AppConfig) protocol.LobbyData {
	return protocol.LobbyData{
		Settings: protocol.LobbySettings{
			GridDimension:     appConfig.Match.GridDimension,
			NumberOfPlayers:   appConfig.Match.NumberOfPlayers,
			Seed:              appConfig.Match.Seed,
			BroadcastInterval: appConfig.Match.BroadcastInterval,
			Ticks:             appConfig.Match.Ticks,
			Sandbox:           appConfig.Match.Sandbox,
			EagerBroadcast:    appConfig.Match.EagerBroadcast,
		},
	}
}
