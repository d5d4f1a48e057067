// Package action decodes inbound packets from a connection into validated
// game.Action values and admits them into the connection's per-tick slot.
package action

import (
	"encoding/json"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/monotanks/server/internal/conn"
	"github.com/monotanks/server/internal/game"
	"github.com/monotanks/server/internal/protocol"
)

// MatchState reports what the dispatcher needs to know about the running
// match to validate an incoming action without reaching into the engine.
type MatchState interface {
	IsRunning() bool
	CurrentGameStateID() string
	NotifyBotActed()
}

// Dispatcher decodes and validates inbound frames for every connection of
// the match, keeping one intake limiter per connection id and rejecting
// stale or malformed actions.
type Dispatcher struct {
	match MatchState
	// intake bounds the rate of frames accepted per connection, independent
	// of the one-action-per-tick rule, guarding against a flooding client.
	limiters map[string]*rate.Limiter
}

// NewDispatcher builds a dispatcher validating actions against match.
func NewDispatcher(match MatchState) *Dispatcher {
	return &Dispatcher{match: match, limiters: make(map[string]*rate.Limiter)}
}

func (d *Dispatcher) limiterFor(connID string) *rate.Limiter {
	l, ok := d.limiters[connID]
	if !ok {
		l = rate.NewLimiter(rate.Limit(30), 30) // 30 frames/sec burst 30
		d.limiters[connID] = l
	}
	return l
}

// Handle decodes one inbound frame from c and, if it validates, stores the
// resulting game.Action on c's slot. Invalid frames get an
// InvalidPacketUsageError reply; stale or duplicate actions are dropped
// silently.
func (d *Dispatcher) Handle(c *conn.Connection, frame []byte) {
	if !d.limiterFor(c.ID).Allow() {
		return
	}

	kind, payload, err := c.Codec().Decode(frame)
	if err != nil {
		d.reject(c, err.Error())
		return
	}

	if c.Kind != conn.KindPlayer || !d.match.IsRunning() {
		return
	}
	if c.HasMadeActionThisTick() {
		return
	}

	switch kind {
	case protocol.PacketMovement:
		d.handleMovement(c, payload)
	case protocol.PacketRotation:
		d.handleRotation(c, payload)
	case protocol.PacketAbilityUse:
		d.handleAbility(c, payload)
	case protocol.PacketPing:
		c.Send(protocol.PacketPong, struct{}{})
	default:
		d.reject(c, fmt.Sprintf("unexpected packet kind %s", kind))
	}
}

func (d *Dispatcher) stale(gameStateID string) bool {
	return gameStateID != "" && gameStateID != d.match.CurrentGameStateID()
}

func (d *Dispatcher) handleMovement(c *conn.Connection, payload json.RawMessage) {
	var m protocol.Movement
	if err := json.Unmarshal(payload, &m); err != nil {
		d.reject(c, "malformed Movement payload")
		return
	}
	if d.stale(m.GameStateID) {
		return
	}
	var forward bool
	switch m.Direction {
	case "forward":
		forward = true
	case "backward":
		forward = false
	default:
		d.reject(c, "invalid movement direction "+m.Direction)
		return
	}
	c.StoreAction(game.MovementAction{Forward: forward})
	d.match.NotifyBotActed()
}

func (d *Dispatcher) handleRotation(c *conn.Connection, payload json.RawMessage) {
	var rt protocol.Rotation
	if err := json.Unmarshal(payload, &rt); err != nil {
		d.reject(c, "malformed Rotation payload")
		return
	}
	if d.stale(rt.GameStateID) {
		return
	}

	var tankRot, turretRot *game.Rotation
	if rt.TankRotation != nil {
		r, ok := game.ParseRotation(*rt.TankRotation)
		if !ok {
			d.reject(c, "invalid tankRotation "+*rt.TankRotation)
			return
		}
		tankRot = &r
	}
	if rt.TurretRotation != nil {
		r, ok := game.ParseRotation(*rt.TurretRotation)
		if !ok {
			d.reject(c, "invalid turretRotation "+*rt.TurretRotation)
			return
		}
		turretRot = &r
	}
	c.StoreAction(game.RotationAction{TankRotation: tankRot, TurretRotation: turretRot})
	d.match.NotifyBotActed()
}

func (d *Dispatcher) handleAbility(c *conn.Connection, payload json.RawMessage) {
	var a protocol.AbilityUse
	if err := json.Unmarshal(payload, &a); err != nil {
		d.reject(c, "malformed AbilityUse payload")
		return
	}
	if d.stale(a.GameStateID) {
		return
	}
	kind, ok := game.ParseAbilityKind(a.AbilityType)
	if !ok {
		d.reject(c, "invalid abilityType "+a.AbilityType)
		return
	}
	c.StoreAction(game.AbilityAction{Kind: kind})
	d.match.NotifyBotActed()
}

func (d *Dispatcher) reject(c *conn.Connection, reason string) {
	c.Send(protocol.PacketInvalidPacketUsageError, protocol.InvalidPacketUsageError{Reason: reason})
}
