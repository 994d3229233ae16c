package model

import (
	"database/sql"
	"time"

	"gorm.io/datatypes"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&EngineInfo{},
	&Game{},
	&Player{},
	&Zone{},
	&Unit{},
	&ActionLog{},
	&MatchPerformance{},
}

////////////////////////
// SYSTEM MODELS
////////////////////////

// EngineInfo records the engine build that created the schema
type EngineInfo struct {
	ID        uint      `gorm:"primaryKey"`
	Version   string    `json:"version" gorm:"size:64"`
	Build     string    `json:"build" gorm:"size:64"`
	CreatedAt time.Time `json:"createdAt"`
}

func (*EngineInfo) TableName() string {
	return "engine_infos"
}

// MatchPerformance is a periodic sample of host throughput
type MatchPerformance struct {
	Time                time.Time `json:"time" gorm:"index:idx_performance_time"`
	ActiveMatches       uint16    `json:"activeMatches"`
	ActionQueueLength   uint16    `json:"actionQueueLength"`
	WriteQueueLength    uint16    `json:"writeQueueLength"`
	LastWriteDurationMs float32   `json:"lastWriteDurationMs"`
}

func (*MatchPerformance) TableName() string {
	return "match_performances"
}

////////////////////////
// MATCH MODELS
////////////////////////

// ResourceColumns is the four-resource bundle stored inline
type ResourceColumns struct {
	Energy     uint64 `json:"energy"`
	Antibodies uint64 `json:"antibodies"`
	StemCells  uint64 `json:"stemCells"`
	Nutrients  uint64 `json:"nutrients"`
}

// Game is one match
type Game struct {
	GameID              uint32         `json:"gameId" gorm:"primaryKey;autoIncrement:false"`
	CreatedAt           time.Time      `json:"createdAt"`
	UpdatedAt           time.Time      `json:"updatedAt"`
	Scenario            string         `json:"scenario" gorm:"size:127"`
	StartTime           time.Time      `json:"startTime" gorm:"index:idx_game_start"`
	EndTime             sql.NullTime   `json:"endTime"`
	Player1             sql.NullString `json:"player1" gorm:"size:64;index:idx_game_player1"`
	Player2             sql.NullString `json:"player2" gorm:"size:64;index:idx_game_player2"`
	CurrentTurn         uint8          `json:"currentTurn"`
	TurnNumber          uint32         `json:"turnNumber"`
	MapWidth            uint8          `json:"mapWidth"`
	MapHeight           uint8          `json:"mapHeight"`
	TotalZones          uint32         `json:"totalZones"`
	State               uint8          `json:"state" gorm:"index:idx_game_state"`
	Result              uint8          `json:"result"`
	Winner              sql.NullString `json:"winner" gorm:"size:64"`
	InfectionLevel      uint8          `json:"infectionLevel"`
	ImmuneResponseLevel uint8          `json:"immuneResponseLevel"`
	TurnTimeLimit       uint64         `json:"turnTimeLimit"`
	LastTurnTimestamp   int64          `json:"lastTurnTimestamp"`
}

func (*Game) TableName() string {
	return "games"
}

// Player is one seat of a match
// Uses composite primary key (GameID, Key) - Key is the authority supplied by the host
type Player struct {
	GameID          uint32          `json:"gameId" gorm:"primaryKey;autoIncrement:false"`
	Key             string          `json:"key" gorm:"primaryKey;column:player_key;size:64"`
	PlayerID        uint8           `json:"playerId"`
	Reserves        ResourceColumns `json:"reserves" gorm:"embedded;embeddedPrefix:reserve_"`
	ControlledZones uint16          `json:"controlledZones"`
	TotalUnits      uint16          `json:"totalUnits"`
	ResearchPoints  uint32          `json:"researchPoints"`
	Faction         uint8           `json:"faction"`
	UnlockedUnits   datatypes.JSON  `json:"unlockedUnits" gorm:"type:jsonb;default:'[]'"`  // indices of unlocked unit types
	SpecialBonuses  datatypes.JSON  `json:"specialBonuses" gorm:"type:jsonb;default:'[]'"` // bonus per slot, null when empty
}

func (*Player) TableName() string {
	return "players"
}

// Zone is one lattice cell of the strategic map, with its tactical grid as JSON
type Zone struct {
	GameID       uint32         `json:"gameId" gorm:"primaryKey;autoIncrement:false"`
	ZoneID       uint32         `json:"zoneId" gorm:"primaryKey;autoIncrement:false"`
	Type         uint8          `json:"type"`
	X            uint8          `json:"x"`
	Y            uint8          `json:"y"`
	Owner        sql.NullString `json:"owner" gorm:"size:64;index:idx_zone_owner"`
	Grid         datatypes.JSON `json:"grid" gorm:"type:jsonb"`
	Energy       uint32         `json:"energy"`
	Antibodies   uint32         `json:"antibodies"`
	StemCells    uint32         `json:"stemCells"`
	Nutrients    uint32         `json:"nutrients"`
	UnitCount    uint16         `json:"unitCount"`
	IsBorderZone bool           `json:"isBorderZone"`
	IsControlled bool           `json:"isControlled"`
	Neighbors    datatypes.JSON `json:"neighbors" gorm:"type:jsonb;default:'[]'"`
}

func (*Zone) TableName() string {
	return "zones"
}

// Unit is a live combatant
type Unit struct {
	GameID        uint32         `json:"gameId" gorm:"primaryKey;autoIncrement:false"`
	UnitID        uint32         `json:"unitId" gorm:"primaryKey;autoIncrement:false"`
	Type          uint8          `json:"type"`
	ZoneID        uint32         `json:"zoneId" gorm:"index:idx_unit_zone"`
	X             uint8          `json:"x"`
	Y             uint8          `json:"y"`
	Health        uint16         `json:"health"`
	MaxHealth     uint16         `json:"maxHealth"`
	Attack        uint16         `json:"attack"`
	Defense       uint16         `json:"defense"`
	MovementRange uint8          `json:"movementRange"`
	Owner         sql.NullString `json:"owner" gorm:"size:64"`
	Abilities     datatypes.JSON `json:"abilities" gorm:"type:jsonb;default:'[]'"`
	IsActive      bool           `json:"isActive"`
	EnergyCost    uint16         `json:"energyCost"`
}

func (*Unit) TableName() string {
	return "units"
}

// ActionLog is one entry of a match's action history
type ActionLog struct {
	ID         string         `json:"id" gorm:"primaryKey;size:36"`
	GameID     uint32         `json:"gameId" gorm:"index:idx_action_game"`
	TurnNumber uint32         `json:"turnNumber"`
	Authority  string         `json:"authority" gorm:"size:64"`
	Kind       string         `json:"kind" gorm:"size:16"`
	Args       datatypes.JSON `json:"args" gorm:"type:jsonb;default:'[]'"`
	Accepted   bool           `json:"accepted"`
	Code       string         `json:"code" gorm:"size:32;index:idx_action_code"` // rejection code, empty when accepted
	Time       time.Time      `json:"time" gorm:"index:idx_action_time"`
	DurationUs int64          `json:"durationUs"`
}

func (*ActionLog) TableName() string {
	return "action_logs"
}
