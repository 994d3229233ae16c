// Package convert provides functions to convert GORM models to core models
package convert

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/biocommander/engine/internal/model"
	"github.com/biocommander/engine/pkg/core"
)

// nullStringToOwner converts a nullable column to a core.Owner
func nullStringToOwner(s sql.NullString) core.Owner {
	if !s.Valid {
		return core.Unowned()
	}
	return core.OwnedBy(core.Identity(s.String))
}

// GameToCore converts a GORM Game to a core.Game.
func GameToCore(g model.Game) core.Game {
	return core.Game{
		GameID:              g.GameID,
		Player1:             nullStringToOwner(g.Player1),
		Player2:             nullStringToOwner(g.Player2),
		CurrentTurn:         g.CurrentTurn,
		TurnNumber:          g.TurnNumber,
		MapWidth:            g.MapWidth,
		MapHeight:           g.MapHeight,
		TotalZones:          g.TotalZones,
		State:               core.GameState(g.State),
		Result:              core.GameWinner(g.Result),
		Winner:              nullStringToOwner(g.Winner),
		InfectionLevel:      g.InfectionLevel,
		ImmuneResponseLevel: g.ImmuneResponseLevel,
		TurnTimeLimit:       g.TurnTimeLimit,
		LastTurnTimestamp:   g.LastTurnTimestamp,
	}
}

// PlayerToCore converts a GORM Player to a core.Player.
// Out-of-range unit indices in the unlock list are ignored.
func PlayerToCore(p model.Player) core.Player {
	var unlocked []int
	if len(p.UnlockedUnits) > 0 {
		_ = json.Unmarshal(p.UnlockedUnits, &unlocked)
	}

	out := core.Player{
		GameID:   p.GameID,
		PlayerID: p.PlayerID,
		Key:      core.Identity(p.Key),
		Reserves: core.Resources{
			Energy:     p.Reserves.Energy,
			Antibodies: p.Reserves.Antibodies,
			StemCells:  p.Reserves.StemCells,
			Nutrients:  p.Reserves.Nutrients,
		},
		ControlledZones: p.ControlledZones,
		TotalUnits:      p.TotalUnits,
		ResearchPoints:  p.ResearchPoints,
		Faction:         core.Faction(p.Faction),
	}
	for _, i := range unlocked {
		out.UnlockUnit(i)
	}
	if len(p.SpecialBonuses) > 0 {
		_ = json.Unmarshal(p.SpecialBonuses, &out.SpecialBonuses)
	}
	return out
}

// ZoneToCore converts a GORM Zone to a core.Zone.
func ZoneToCore(z model.Zone) core.Zone {
	out := core.Zone{
		GameID:       z.GameID,
		ZoneID:       z.ZoneID,
		Type:         core.ZoneType(z.Type),
		X:            z.X,
		Y:            z.Y,
		Owner:        nullStringToOwner(z.Owner),
		Energy:       z.Energy,
		Antibodies:   z.Antibodies,
		StemCells:    z.StemCells,
		Nutrients:    z.Nutrients,
		UnitCount:    z.UnitCount,
		IsBorderZone: z.IsBorderZone,
		IsControlled: z.IsControlled,
	}
	if len(z.Grid) > 0 {
		_ = json.Unmarshal(z.Grid, &out.Grid)
	}
	if len(z.Neighbors) > 0 {
		_ = json.Unmarshal(z.Neighbors, &out.Neighbors)
	}
	return out
}

// UnitToCore converts a GORM Unit to a core.Unit.
func UnitToCore(u model.Unit) core.Unit {
	out := core.Unit{
		GameID:        u.GameID,
		UnitID:        u.UnitID,
		Type:          core.UnitType(u.Type),
		ZoneID:        u.ZoneID,
		X:             u.X,
		Y:             u.Y,
		Health:        u.Health,
		MaxHealth:     u.MaxHealth,
		Attack:        u.Attack,
		Defense:       u.Defense,
		MovementRange: u.MovementRange,
		Owner:         nullStringToOwner(u.Owner),
		IsActive:      u.IsActive,
		EnergyCost:    u.EnergyCost,
	}
	if len(u.Abilities) > 0 {
		_ = json.Unmarshal(u.Abilities, &out.Abilities)
	}
	return out
}

// ActionLogToCore converts a GORM ActionLog to a core.ActionRecord.
func ActionLogToCore(a model.ActionLog) core.ActionRecord {
	var args []string
	if len(a.Args) > 0 {
		_ = json.Unmarshal(a.Args, &args)
	}
	return core.ActionRecord{
		ID:         a.ID,
		GameID:     a.GameID,
		TurnNumber: a.TurnNumber,
		Authority:  core.Identity(a.Authority),
		Kind:       core.ActionKind(a.Kind),
		Args:       args,
		Accepted:   a.Accepted,
		Code:       a.Code,
		Time:       a.Time,
		Duration:   time.Duration(a.DurationUs) * time.Microsecond,
	}
}
