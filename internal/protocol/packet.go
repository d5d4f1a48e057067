// Package protocol defines the wire envelope and payload shapes exchanged
// with clients over the upgraded websocket connection, plus the per-
// connection codec that picks between integer and string enum encoding.
package protocol

import "encoding/json"

// PacketType enumerates the packet kinds recognized on either side of the
// connection.
type PacketType int

const (
	PacketPing PacketType = iota
	PacketPong
	PacketGameStart
	PacketGameNotStarted
	PacketGameStarting
	PacketGameInProgress
	PacketGameEnded
	PacketLobbyData
	PacketGameState
	PacketGameEnd
	PacketMovement
	PacketRotation
	PacketAbilityUse
	PacketInvalidPacketUsageError
)

var packetNames = map[PacketType]string{
	PacketPing:                    "Ping",
	PacketPong:                    "Pong",
	PacketGameStart:               "GameStart",
	PacketGameNotStarted:          "GameNotStarted",
	PacketGameStarting:            "GameStarting",
	PacketGameInProgress:          "GameInProgress",
	PacketGameEnded:               "GameEnded",
	PacketLobbyData:               "LobbyData",
	PacketGameState:               "GameState",
	PacketGameEnd:                 "GameEnd",
	PacketMovement:                "Movement",
	PacketRotation:                "Rotation",
	PacketAbilityUse:              "AbilityUse",
	PacketInvalidPacketUsageError: "InvalidPacketUsageError",
}

var namesToPacket = func() map[string]PacketType {
	m := make(map[string]PacketType, len(packetNames))
	for k, v := range packetNames {
		m[v] = k
	}
	return m
}()

func (t PacketType) String() string {
	if s, ok := packetNames[t]; ok {
		return s
	}
	return "Unknown"
}

// ParsePacketType resolves either an integer ordinal or a string name to a
// PacketType, since the wire format is chosen per connection at handshake.
func ParsePacketType(raw json.RawMessage) (PacketType, bool) {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		if _, ok := packetNames[PacketType(n)]; ok {
			return PacketType(n), true
		}
		return 0, false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if t, ok := namesToPacket[s]; ok {
			return t, true
		}
	}
	return 0, false
}

// Envelope is the outer frame every packet is wrapped in: { type, payload }.
type Envelope struct {
	Type    json.RawMessage `json:"type"`
	Payload json.RawMessage `json:"payload"`
}
