// Package gormstorage implements storage.Store on top of a GORM connection.
// The sqlite and postgres backends embed it and differ only in connection
// setup and in how the action log is written.
package gormstorage

import (
	"errors"
	"fmt"
	"time"

	"github.com/biocommander/engine/internal/database"
	"github.com/biocommander/engine/internal/model"
	"github.com/biocommander/engine/internal/model/convert"
	"github.com/biocommander/engine/internal/storage"
	"github.com/biocommander/engine/pkg/core"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Version is written to engine_infos on first setup.
var Version = "dev"

// gameColumns are the game columns an action may change.
var gameColumns = []string{
	"updated_at", "player1", "player2", "current_turn", "turn_number", "map_width", "map_height", "total_zones",
	"state", "result", "winner", "infection_level", "immune_response_level", "last_turn_timestamp",
}

// Store reads and writes match entities through GORM.
type Store struct {
	db *gorm.DB
}

var _ storage.Store = (*Store)(nil)

// New wraps an open connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying connection.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Init migrates the schema.
func (s *Store) Init() error {
	if err := database.Setup(s.db, Version, ""); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}
	return nil
}

// Close is a no-op; the connection belongs to the caller.
func (s *Store) Close() error {
	return nil
}

// StartMatch inserts the game row and its zone lattice.
func (s *Store) StartMatch(m *storage.Match) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		game := convert.CoreToGame(*m.Game, m.Scenario, m.StartTime)
		if err := tx.Omit(clause.Associations).Create(&game).Error; err != nil {
			return fmt.Errorf("failed to insert game %d: %w", m.Game.GameID, err)
		}
		if len(m.Zones) == 0 {
			return nil
		}
		zones := make([]model.Zone, len(m.Zones))
		for i, z := range m.Zones {
			zones[i] = convert.CoreToZone(z)
		}
		if err := tx.Omit(clause.Associations).Create(&zones).Error; err != nil {
			return fmt.Errorf("failed to insert zones of game %d: %w", m.Game.GameID, err)
		}
		return nil
	})
}

// EndMatch stores the final game state and stamps the end time.
func (s *Store) EndMatch(g *core.Game) error {
	row := convert.CoreToGame(*g, "", time.Time{})
	row.EndTime.Time, row.EndTime.Valid = time.Now(), true

	res := s.db.Model(&model.Game{}).Where("game_id = ?", g.GameID).
		Select(append([]string{"end_time"}, gameColumns...)).Updates(&row)
	if res.Error != nil {
		return fmt.Errorf("failed to end game %d: %w", g.GameID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("game %d: %w", g.GameID, storage.ErrNotFound)
	}
	return nil
}

// Commit applies the changeset and appends its action in one transaction.
func (s *Store) Commit(cs *storage.Changeset) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := ApplyState(tx, cs); err != nil {
			return err
		}
		return InsertActions(tx, []model.ActionLog{ActionRow(cs.Action)})
	})
}

// ApplyState upserts every entity in cs and deletes removed units.
func ApplyState(tx *gorm.DB, cs *storage.Changeset) error {
	if cs.Game != nil {
		row := convert.CoreToGame(*cs.Game, "", time.Time{})
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "game_id"}},
			DoUpdates: clause.AssignmentColumns(gameColumns),
		}).Omit(clause.Associations).Create(&row).Error
		if err != nil {
			return fmt.Errorf("failed to save game: %w", err)
		}
	}

	if len(cs.Players) > 0 {
		rows := make([]model.Player, len(cs.Players))
		for i, p := range cs.Players {
			rows[i] = convert.CoreToPlayer(p)
		}
		if err := upsert(tx, &rows); err != nil {
			return fmt.Errorf("failed to save players: %w", err)
		}
	}

	if len(cs.Zones) > 0 {
		rows := make([]model.Zone, len(cs.Zones))
		for i, z := range cs.Zones {
			rows[i] = convert.CoreToZone(z)
		}
		if err := upsert(tx, &rows); err != nil {
			return fmt.Errorf("failed to save zones: %w", err)
		}
	}

	if len(cs.Units) > 0 {
		rows := make([]model.Unit, len(cs.Units))
		for i, u := range cs.Units {
			rows[i] = convert.CoreToUnit(u)
		}
		if err := upsert(tx, &rows); err != nil {
			return fmt.Errorf("failed to save units: %w", err)
		}
	}

	if len(cs.RemovedUnitIDs) > 0 {
		err := tx.Where("game_id = ? AND unit_id IN ?", cs.GameID(), cs.RemovedUnitIDs).
			Delete(&model.Unit{}).Error
		if err != nil {
			return fmt.Errorf("failed to delete units: %w", err)
		}
	}
	return nil
}

func upsert[T any](tx *gorm.DB, rows *[]T) error {
	return tx.Clauses(clause.OnConflict{UpdateAll: true}).Omit(clause.Associations).Create(rows).Error
}

// ActionRow converts an action record, assigning an id when it has none.
func ActionRow(a core.ActionRecord) model.ActionLog {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return convert.CoreToActionLog(a)
}

// InsertActions appends action log rows.
func InsertActions(db *gorm.DB, rows []model.ActionLog) error {
	if len(rows) == 0 {
		return nil
	}
	if err := db.Omit(clause.Associations).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to insert action logs: %w", err)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return storage.ErrNotFound
	}
	return err
}

// Game loads a game row.
func (s *Store) Game(gameID uint32) (core.Game, error) {
	var row model.Game
	if err := s.db.Where("game_id = ?", gameID).First(&row).Error; err != nil {
		return core.Game{}, notFound(err)
	}
	return convert.GameToCore(row), nil
}

// Player loads the seat held by key.
func (s *Store) Player(gameID uint32, key core.Identity) (core.Player, error) {
	var row model.Player
	if err := s.db.Where("game_id = ? AND player_key = ?", gameID, string(key)).First(&row).Error; err != nil {
		return core.Player{}, notFound(err)
	}
	return convert.PlayerToCore(row), nil
}

// Players loads every seat of a game ordered by seat.
func (s *Store) Players(gameID uint32) ([]core.Player, error) {
	if _, err := s.Game(gameID); err != nil {
		return nil, err
	}
	var rows []model.Player
	if err := s.db.Where("game_id = ?", gameID).Order("player_id").Find(&rows).Error; err != nil {
		return nil, err
	}
	players := make([]core.Player, len(rows))
	for i, r := range rows {
		players[i] = convert.PlayerToCore(r)
	}
	return players, nil
}

// Zone loads one zone.
func (s *Store) Zone(gameID, zoneID uint32) (core.Zone, error) {
	var row model.Zone
	if err := s.db.Where("game_id = ? AND zone_id = ?", gameID, zoneID).First(&row).Error; err != nil {
		return core.Zone{}, notFound(err)
	}
	return convert.ZoneToCore(row), nil
}

// Unit loads one live unit.
func (s *Store) Unit(gameID, unitID uint32) (core.Unit, error) {
	var row model.Unit
	if err := s.db.Where("game_id = ? AND unit_id = ?", gameID, unitID).First(&row).Error; err != nil {
		return core.Unit{}, notFound(err)
	}
	return convert.UnitToCore(row), nil
}

// NextGameID returns one past the highest stored game id.
func (s *Store) NextGameID() (uint32, error) {
	var max uint32
	if err := s.db.Model(&model.Game{}).Select("COALESCE(MAX(game_id), 0)").Scan(&max).Error; err != nil {
		return 0, fmt.Errorf("failed to read max game id: %w", err)
	}
	return max + 1, nil
}

// Actions returns a game's action log in time order.
func (s *Store) Actions(gameID uint32) ([]core.ActionRecord, error) {
	var rows []model.ActionLog
	if err := s.db.Where("game_id = ?", gameID).Order("time").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]core.ActionRecord, len(rows))
	for i, r := range rows {
		out[i] = convert.ActionLogToCore(r)
	}
	return out, nil
}

// ActiveMatches counts games that have not finished.
func (s *Store) ActiveMatches() (int64, error) {
	var n int64
	err := s.db.Model(&model.Game{}).Where("state <> ?", uint8(core.StateFinished)).Count(&n).Error
	return n, err
}
