// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/biocommander/engine/internal/model"
	"github.com/biocommander/engine/pkg/core"
	"gorm.io/datatypes"
)

// ownerToNullString converts a core.Owner to a nullable column
func ownerToNullString(o core.Owner) sql.NullString {
	id, ok := o.Get()
	return sql.NullString{String: string(id), Valid: ok}
}

// toJSON marshals v for a JSON column, falling back to an empty array.
func toJSON(v any) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(data)
}

// CoreToGame converts a core.Game to a GORM model.Game.
func CoreToGame(g core.Game, scenario string, start time.Time) model.Game {
	return model.Game{
		GameID:              g.GameID,
		Scenario:            scenario,
		StartTime:           start,
		Player1:             ownerToNullString(g.Player1),
		Player2:             ownerToNullString(g.Player2),
		CurrentTurn:         g.CurrentTurn,
		TurnNumber:          g.TurnNumber,
		MapWidth:            g.MapWidth,
		MapHeight:           g.MapHeight,
		TotalZones:          g.TotalZones,
		State:               uint8(g.State),
		Result:              uint8(g.Result),
		Winner:              ownerToNullString(g.Winner),
		InfectionLevel:      g.InfectionLevel,
		ImmuneResponseLevel: g.ImmuneResponseLevel,
		TurnTimeLimit:       g.TurnTimeLimit,
		LastTurnTimestamp:   g.LastTurnTimestamp,
	}
}

// CoreToPlayer converts a core.Player to a GORM model.Player.
// Unlocked units are stored as the list of their type indices.
func CoreToPlayer(p core.Player) model.Player {
	unlocked := make([]int, 0, core.UnitTypeCount)
	for i, ok := range p.UnlockedUnits {
		if ok {
			unlocked = append(unlocked, i)
		}
	}

	return model.Player{
		GameID:   p.GameID,
		Key:      string(p.Key),
		PlayerID: p.PlayerID,
		Reserves: model.ResourceColumns{
			Energy:     p.Reserves.Energy,
			Antibodies: p.Reserves.Antibodies,
			StemCells:  p.Reserves.StemCells,
			Nutrients:  p.Reserves.Nutrients,
		},
		ControlledZones: p.ControlledZones,
		TotalUnits:      p.TotalUnits,
		ResearchPoints:  p.ResearchPoints,
		Faction:         uint8(p.Faction),
		UnlockedUnits:   toJSON(unlocked),
		SpecialBonuses:  toJSON(p.SpecialBonuses),
	}
}

// CoreToZone converts a core.Zone to a GORM model.Zone.
func CoreToZone(z core.Zone) model.Zone {
	return model.Zone{
		GameID:       z.GameID,
		ZoneID:       z.ZoneID,
		Type:         uint8(z.Type),
		X:            z.X,
		Y:            z.Y,
		Owner:        ownerToNullString(z.Owner),
		Grid:         toJSON(z.Grid),
		Energy:       z.Energy,
		Antibodies:   z.Antibodies,
		StemCells:    z.StemCells,
		Nutrients:    z.Nutrients,
		UnitCount:    z.UnitCount,
		IsBorderZone: z.IsBorderZone,
		IsControlled: z.IsControlled,
		Neighbors:    toJSON(z.Neighbors),
	}
}

// CoreToUnit converts a core.Unit to a GORM model.Unit.
func CoreToUnit(u core.Unit) model.Unit {
	return model.Unit{
		GameID:        u.GameID,
		UnitID:        u.UnitID,
		Type:          uint8(u.Type),
		ZoneID:        u.ZoneID,
		X:             u.X,
		Y:             u.Y,
		Health:        u.Health,
		MaxHealth:     u.MaxHealth,
		Attack:        u.Attack,
		Defense:       u.Defense,
		MovementRange: u.MovementRange,
		Owner:         ownerToNullString(u.Owner),
		Abilities:     toJSON(u.Abilities),
		IsActive:      u.IsActive,
		EnergyCost:    u.EnergyCost,
	}
}

// CoreToActionLog converts a core.ActionRecord to a GORM model.ActionLog.
func CoreToActionLog(a core.ActionRecord) model.ActionLog {
	args := a.Args
	if args == nil {
		args = []string{}
	}
	return model.ActionLog{
		ID:         a.ID,
		GameID:     a.GameID,
		TurnNumber: a.TurnNumber,
		Authority:  string(a.Authority),
		Kind:       string(a.Kind),
		Args:       toJSON(args),
		Accepted:   a.Accepted,
		Code:       a.Code,
		Time:       a.Time,
		DurationUs: a.Duration.Microseconds(),
	}
}
