package streaming

import (
	"encoding/json"

	"github.com/biocommander/engine/pkg/core"
)

// Message type constants matching the spectator streaming protocol.
const (
	TypeMatchStart = "match_start"
	TypeMatchEnd   = "match_end"
	TypeAction     = "action"
	TypeGameState  = "game_state"
	TypePlayer     = "player_state"
	TypeZone       = "zone_state"
	TypeUnit       = "unit_state"
	TypeUnitRemove = "unit_removed"
)

// Envelope wraps all messages sent over the WebSocket. ID is unique per
// message; Match scopes it to one game so a server can multiplex matches.
type Envelope struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Match   uint32          `json:"match"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type  string `json:"type"`  // always "ack"
	For   string `json:"for"`   // the message type being acknowledged
	Match uint32 `json:"match"` // the game the acknowledged message belonged to
}

// MatchStartPayload carries a new game and its zone lattice.
type MatchStartPayload struct {
	Game     *core.Game  `json:"game"`
	Scenario string      `json:"scenario"`
	Zones    []core.Zone `json:"zones"`
}

// MatchEndPayload carries the final game record.
type MatchEndPayload struct {
	Game *core.Game `json:"game"`
}

// UnitRemovedPayload names a unit destroyed by an action.
type UnitRemovedPayload struct {
	UnitID uint32 `json:"unitId"`
}
