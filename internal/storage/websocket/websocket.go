package websocket

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/biocommander/engine/internal/storage"
	"github.com/biocommander/engine/pkg/core"
	"github.com/biocommander/engine/pkg/streaming"
	"github.com/google/uuid"
)

// Config holds WebSocket backend configuration.
type Config struct {
	URL            string
	Secret         string
	ReconnectDelay time.Duration
}

// Backend streams committed match state to a spectator server.
// It implements storage.Backend but neither storage.Reader nor storage.Uploadable.
type Backend struct {
	conn *connection
	cfg  Config
}

var _ storage.Backend = (*Backend)(nil)

// New creates a new WebSocket storage backend.
func New(cfg Config) *Backend {
	return &Backend{
		conn: newConnection(slog.Default(), cfg.ReconnectDelay),
		cfg:  cfg,
	}
}

// Init connects to the WebSocket server.
func (b *Backend) Init() error {
	return b.conn.dial(b.cfg.URL, b.cfg.Secret)
}

// Close disconnects from the WebSocket server.
func (b *Backend) Close() error {
	return b.conn.close()
}

// marshalEnvelope builds a JSON-encoded Envelope from a message type and payload.
func marshalEnvelope(msgType string, gameID uint32, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	env := streaming.Envelope{
		ID:      uuid.NewString(),
		Type:    msgType,
		Match:   gameID,
		Payload: raw,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// sendEnvelope marshals the payload into an Envelope and pushes it
// to the write loop (fire-and-forget).
func (b *Backend) sendEnvelope(msgType string, gameID uint32, payload any) error {
	data, err := marshalEnvelope(msgType, gameID, payload)
	if err != nil {
		return err
	}
	b.conn.send(data)
	return nil
}

// StartMatch sends the new game and its zones and waits for server ack.
func (b *Backend) StartMatch(m *storage.Match) error {
	if m == nil || m.Game == nil {
		return errors.New("websocket: match without game")
	}
	gameID := m.Game.GameID
	data, err := marshalEnvelope(streaming.TypeMatchStart, gameID, streaming.MatchStartPayload{
		Game:     m.Game,
		Scenario: m.Scenario,
		Zones:    m.Zones,
	})
	if err != nil {
		return err
	}

	b.conn.cacheStart(gameID, data)
	return b.conn.sendAndWait(data, streaming.TypeMatchStart, gameID, ackTimeout)
}

// EndMatch sends match_end and waits for server ack.
func (b *Backend) EndMatch(game *core.Game) error {
	data, err := marshalEnvelope(streaming.TypeMatchEnd, game.GameID, streaming.MatchEndPayload{Game: game})
	if err != nil {
		return err
	}
	err = b.conn.sendAndWait(data, streaming.TypeMatchEnd, game.GameID, ackTimeout)

	// Forget the match regardless of error.
	b.conn.forgetStart(game.GameID)
	return err
}

// Commit streams the action record followed by every entity it touched.
func (b *Backend) Commit(cs *storage.Changeset) error {
	gameID := cs.GameID()
	if err := b.sendEnvelope(streaming.TypeAction, gameID, cs.Action); err != nil {
		return err
	}
	if cs.Game != nil {
		if err := b.sendEnvelope(streaming.TypeGameState, gameID, cs.Game); err != nil {
			return err
		}
	}
	for i := range cs.Players {
		if err := b.sendEnvelope(streaming.TypePlayer, gameID, &cs.Players[i]); err != nil {
			return err
		}
	}
	for i := range cs.Zones {
		if err := b.sendEnvelope(streaming.TypeZone, gameID, &cs.Zones[i]); err != nil {
			return err
		}
	}
	for i := range cs.Units {
		if err := b.sendEnvelope(streaming.TypeUnit, gameID, &cs.Units[i]); err != nil {
			return err
		}
	}
	for _, id := range cs.RemovedUnitIDs {
		if err := b.sendEnvelope(streaming.TypeUnitRemove, gameID, streaming.UnitRemovedPayload{UnitID: id}); err != nil {
			return err
		}
	}
	return nil
}
