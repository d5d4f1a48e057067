// Package gamelog provides per-component, emoji-tagged loggers.
//
// Every subsystem gets its own *log.Logger wrapping a short, greppable
// prefix instead of one shared global logger, so a server running several
// matches (or many connections) keeps log lines attributable at a glance.
package gamelog

import (
	"log"
	"os"
)

// New returns a logger prefixed with tag, writing to stdout with the
// standard date/time flags - matches the convention the rest of the
// codebase logs with (see engine, scheduler, conn).
func New(tag string) *log.Logger {
	return log.New(os.Stdout, tag+" ", log.LstdFlags)
}

// Engine is the simulation engine's logger (🎮).
var Engine = New("🎮 [engine]")

// Scheduler is the tick scheduler's logger (⏱️).
var Scheduler = New("⏱️ [scheduler]")

// Conn is the connection manager's logger (📡).
var Conn = New("📡 [conn]")

// Replay is the replay journal's logger (📼).
var Replay = New("📼 [replay]")

// ForConnection returns a logger tagged with a specific connection's id,
// used by the connection manager to bind a distinct logger per participant.
func ForConnection(connID string) *log.Logger {
	return New("📡 [conn " + connID + "]")
}
