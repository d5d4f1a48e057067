package protocol

// PlayerIdentity is the {id, nickname, color} triple listed in the
// LobbyData payload.
type PlayerIdentity struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Color    uint32 `json:"color,omitempty"`
}

// LobbySettings mirrors the match configuration sent to clients before a
// match starts.
type LobbySettings struct {
	GridDimension     int    `json:"gridDimension"`
	NumberOfPlayers   int    `json:"numberOfPlayers"`
	Seed              int64  `json:"seed"`
	BroadcastInterval int    `json:"broadcastInterval"`
	Ticks             int    `json:"ticks"`
	Sandbox           bool   `json:"sandbox"`
	EagerBroadcast    bool   `json:"eagerBroadcast"`
}

// LobbyData describes the match's players and settings. The server records
// it in the replay journal; no code path sends it to a connection.
type LobbyData struct {
	PlayerID string           `json:"playerId,omitempty"`
	Players  []PlayerIdentity `json:"players"`
	Settings LobbySettings    `json:"settings"`
}

// TankView is the per-tank slice of a GameState payload; fields hidden for
// a given recipient are simply omitted by the renderer before encoding.
type TankView struct {
	OwnerID         string `json:"ownerId"`
	X               *int   `json:"x,omitempty"`
	Y               *int   `json:"y,omitempty"`
	Health          *int   `json:"health,omitempty"`
	Direction       string `json:"direction,omitempty"`
	TurretDirection string `json:"turretDirection,omitempty"`
	SecondaryItem   string `json:"secondaryItem,omitempty"`
	BulletCount     *int   `json:"bulletCount,omitempty"`
}

// BulletView is the wire shape of a single live bullet.
type BulletView struct {
	ID        int      `json:"id"`
	X         *float64 `json:"x,omitempty"`
	Y         *float64 `json:"y,omitempty"`
	Damage    *int     `json:"damage,omitempty"`
	ShooterID string   `json:"shooterId,omitempty"`
	Speed     *float64 `json:"speed,omitempty"`
	Direction string   `json:"direction,omitempty"`
}

// LaserView is the wire shape of a single live laser.
type LaserView struct {
	ID             string `json:"id"`
	ShooterID      string `json:"shooterId"`
	OriginX        int    `json:"originX"`
	OriginY        int    `json:"originY"`
	Orientation    string `json:"orientation"`
	Damage         int    `json:"damage"`
	RemainingTicks int    `json:"remainingTicks"`
}

// MineView is the wire shape of a single live mine.
type MineView struct {
	ID      string `json:"id"`
	OwnerID string `json:"ownerId"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	State   string `json:"state"`
}

// ItemView is the wire shape of a single map item.
type ItemView struct {
	ID   string `json:"id"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Kind string `json:"kind"`
}

// ZoneView is the wire shape of a single zone's capture state.
type ZoneView struct {
	ID       string `json:"id"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Status   string `json:"status"`
	Holder   string `json:"holder,omitempty"`
	Attacker string `json:"attacker,omitempty"`
	Progress int    `json:"progress"`
}

// PlayerScoreView is the {id, nickname, score, kills} tuple rendered in
// every GameState and in GameEnd.
type PlayerScoreView struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Score    int    `json:"score"`
	Kills    int    `json:"kills"`
}

// MapView bundles the per-tick entity collections rendered onto the grid.
type MapView struct {
	Tiles      [][][]interface{} `json:"tiles"`
	Zones      []ZoneView        `json:"zones"`
	Visibility [][]bool          `json:"visibility,omitempty"`
}

// GameState is the per-tick broadcast payload. ID is present only for
// player recipients (ForPlayer); spectators receive it empty.
type GameState struct {
	Tick    int               `json:"tick"`
	ID      string            `json:"id,omitempty"`
	Players []PlayerScoreView `json:"players"`
	Map     MapView           `json:"map"`
}

// Movement is the inbound payload for a Movement action.
type Movement struct {
	Direction   string `json:"direction"` // forward|backward
	GameStateID string `json:"gameStateId"`
}

// Rotation is the inbound payload for a Rotation action; either rotation
// may be absent.
type Rotation struct {
	TankRotation   *string `json:"tankRotation,omitempty"`
	TurretRotation *string `json:"turretRotation,omitempty"`
	GameStateID    string  `json:"gameStateId"`
}

// AbilityUse is the inbound payload for an AbilityUse action.
type AbilityUse struct {
	AbilityType string `json:"abilityType"`
	GameStateID string `json:"gameStateId"`
}

// GameEnd is sent to every connection once the match concludes.
type GameEnd struct {
	Players []PlayerScoreView `json:"players"`
}

// InvalidPacketUsageError is sent back on a decode or semantic error.
type InvalidPacketUsageError struct {
	Reason string `json:"reason"`
}
