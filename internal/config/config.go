// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for all match and server settings.
//
// IMPORTANT: When changing values, only modify this file.
// All other parts of the codebase should reference these values.
package config

import (
	"os"
	"strconv"
)

// =============================================================================
// MATCH CONFIGURATION
// =============================================================================

// MatchConfig holds the settings of a single match instance.
// These values are shared between the tick scheduler, the simulation
// engine and the LobbyData payload written to the replay journal.
type MatchConfig struct {
	GridDimension     int   // side length of the square grid, in tiles
	NumberOfPlayers   int   // player slots: spawn points and the connection limit; the match starts without waiting for them to fill
	Seed              int64 // match PRNG seed
	BroadcastInterval int   // milliseconds targeted between broadcasts
	Ticks             int   // MaxTicks - match length in ticks
	Sandbox           bool  // sandbox matches never end on MaxTicks
	EagerBroadcast    bool  // allow early tick advance when all bots acted
	JoinCode          string
}

// DefaultMatch returns the default match configuration.
func DefaultMatch() MatchConfig {
	return MatchConfig{
		GridDimension:     20,
		NumberOfPlayers:   2,
		Seed:              0,
		BroadcastInterval: 100,
		Ticks:             3000,
		Sandbox:           false,
		EagerBroadcast:    false,
		JoinCode:          "",
	}
}

// =============================================================================
// SIMULATION TUNABLES
// =============================================================================

// SimConfig controls the numeric constants the tick pipeline (phases 1-10)
// uses. These are server-authoritative and never sent verbatim to clients.
type SimConfig struct {
	MaxBullets         int     // turret.bulletCount ceiling
	BulletRegenTicks   int     // ticks required to regenerate one bullet
	BulletSpeed        float64 // tiles/tick for a standard bullet
	BulletDamage       int     // standard bullet damage
	DoubleBulletDamage int     // double-bullet variant damage
	LaserDamage        int     // damage applied once per tick per occupied tile
	LaserLifetimeTicks int     // ticks a laser persists
	MineDamage         int     // direct-hit / blast damage
	MineBlastRadius    int     // tiles (Open Question resolved in SPEC_FULL.md)
	MineFadeTicks      int     // visual-fade ticks after detonation
	RespawnTicks       int     // ticks a dead tank waits before respawn
	CaptureTicks       int     // ticks required to fully capture/retake a zone
	VisibilityRange    int     // tiles the forward-facing fog-of-war ray reaches
	StunDefaultTicks   int     // default stun duration applied by weapon effects
}

// DefaultSim returns the default simulation tunables.
func DefaultSim() SimConfig {
	return SimConfig{
		MaxBullets:         3,
		BulletRegenTicks:   25,
		BulletSpeed:        1.0,
		BulletDamage:       20,
		DoubleBulletDamage: 30,
		LaserDamage:        60,
		LaserLifetimeTicks: 3,
		MineDamage:         40,
		MineBlastRadius:    1,
		MineFadeTicks:      10,
		RespawnTicks:       50,
		CaptureTicks:       50,
		VisibilityRange:    7,
		StunDefaultTicks:   10,
	}
}

// =============================================================================
// RESOURCE LIMITS (DoS protection)
// =============================================================================

// ResourceLimits caps the number of live entities the engine will hold,
// protecting the tick loop and the broadcast encoder from unbounded growth.
type ResourceLimits struct {
	MaxPlayers     int
	MaxBulletsLive int
	MaxLasersLive  int
	MaxMinesLive   int
	MaxItemsLive   int
}

// DefaultLimits returns the default resource limits.
func DefaultLimits() ResourceLimits {
	return ResourceLimits{
		MaxPlayers:     4,
		MaxBulletsLive: 64,
		MaxLasersLive:  16,
		MaxMinesLive:   16,
		MaxItemsLive:   16,
	}
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP/WebSocket listener settings.
type ServerConfig struct {
	Host string
	Port int
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Host: "localhost",
		Port: 5000,
	}
}

// ServerFromEnv returns server configuration with environment variable overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()
	if h := os.Getenv("MONOTANKS_HOST"); h != "" {
		cfg.Host = h
	}
	if p := getEnvInt("MONOTANKS_PORT", 0); p > 0 {
		cfg.Port = p
	}
	return cfg
}

// =============================================================================
// REPLAY CONFIGURATION
// =============================================================================

// ReplayConfig controls whether and where the match is journaled to disk.
type ReplayConfig struct {
	Enabled           bool
	FilePath          string
	OverwriteExisting bool
	Competitive       bool // if true, also writes a sibling *_results file
}

// DefaultReplay returns replay journaling disabled.
func DefaultReplay() ReplayConfig {
	return ReplayConfig{
		Enabled:           false,
		FilePath:          "",
		OverwriteExisting: false,
		Competitive:       false,
	}
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Match  MatchConfig
	Sim    SimConfig
	Server ServerConfig
	Limits ResourceLimits
	Replay ReplayConfig
}

// Load returns the complete configuration with environment overrides.
// CLI flags (see cmd/server) are applied on top of this afterward.
func Load() AppConfig {
	return AppConfig{
		Match:  DefaultMatch(),
		Sim:    DefaultSim(),
		Server: ServerFromEnv(),
		Limits: DefaultLimits(),
		Replay: DefaultReplay(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
