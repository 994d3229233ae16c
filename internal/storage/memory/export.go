// internal/storage/memory/export.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/biocommander/engine/pkg/core"
)

// MatchExport is the root JSON structure of an exported match
type MatchExport struct {
	GameID              uint32       `json:"gameId"`
	Scenario            string       `json:"scenario"`
	StartTime           time.Time    `json:"startTime"`
	EndTime             time.Time    `json:"endTime"`
	State               string       `json:"state"`
	Result              string       `json:"result"`
	Winner              core.Owner   `json:"winner"`
	TurnNumber          uint32       `json:"turnNumber"`
	InfectionLevel      uint8        `json:"infectionLevel"`
	ImmuneResponseLevel uint8        `json:"immuneResponseLevel"`
	MapWidth            uint8        `json:"mapWidth"`
	MapHeight           uint8        `json:"mapHeight"`
	Players             []PlayerJSON `json:"players"`
	Zones               []ZoneJSON   `json:"zones"`
	Units               []UnitJSON   `json:"units"`
	Actions             [][]any      `json:"actions"`
}

// PlayerJSON represents one seat
type PlayerJSON struct {
	Seat            uint8     `json:"seat"`
	Key             string    `json:"key"`
	Faction         string    `json:"faction"`
	Reserves        [4]uint64 `json:"reserves"` // energy, antibodies, stem cells, nutrients
	ControlledZones uint16    `json:"controlledZones"`
	TotalUnits      uint16    `json:"totalUnits"`
}

// ZoneJSON represents a zone and the non-empty cells of its grid
type ZoneJSON struct {
	ID        uint32     `json:"id"`
	Type      string     `json:"type"`
	X         uint8      `json:"x"`
	Y         uint8      `json:"y"`
	Owner     core.Owner `json:"owner"`
	Resources [4]uint32  `json:"resources"`
	Cells     [][]any    `json:"cells"`
}

// UnitJSON represents a live unit at the end of the match
type UnitJSON struct {
	ID     uint32     `json:"id"`
	Type   string     `json:"type"`
	Owner  core.Owner `json:"owner"`
	ZoneID uint32     `json:"zoneId"`
	X      uint8      `json:"x"`
	Y      uint8      `json:"y"`
	Health uint16     `json:"health"`
}

// exportJSON writes the match data to a (optionally gzipped) JSON file
func (b *Backend) exportJSON(rec *MatchRecord) error {
	export := buildExport(rec)

	scenario := strings.ReplaceAll(rec.Scenario, " ", "_")
	scenario = strings.ReplaceAll(scenario, ":", "_")
	if scenario == "" {
		scenario = "match"
	}
	timestamp := rec.StartTime.Format("20060102_150405")

	var filename string
	if b.cfg.CompressOutput {
		filename = fmt.Sprintf("%s_%d_%s.json.gz", scenario, rec.Game.GameID, timestamp)
	} else {
		filename = fmt.Sprintf("%s_%d_%s.json", scenario, rec.Game.GameID, timestamp)
	}

	outputPath := filepath.Join(b.cfg.OutputDir, filename)

	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var err error
	if b.cfg.CompressOutput {
		err = writeGzipJSON(outputPath, export)
	} else {
		err = writeJSON(outputPath, export)
	}
	if err != nil {
		return err
	}

	rec.exportPath = outputPath
	return nil
}

func buildExport(rec *MatchRecord) MatchExport {
	g := rec.Game
	export := MatchExport{
		GameID:              g.GameID,
		Scenario:            rec.Scenario,
		StartTime:           rec.StartTime,
		EndTime:             rec.EndTime,
		State:               g.State.String(),
		Result:              g.Result.String(),
		Winner:              g.Winner,
		TurnNumber:          g.TurnNumber,
		InfectionLevel:      g.InfectionLevel,
		ImmuneResponseLevel: g.ImmuneResponseLevel,
		MapWidth:            g.MapWidth,
		MapHeight:           g.MapHeight,
		Players:             make([]PlayerJSON, 0, len(rec.Players)),
		Zones:               make([]ZoneJSON, 0, len(rec.Zones)),
		Units:               make([]UnitJSON, 0, len(rec.Units)),
		Actions:             make([][]any, 0, len(rec.Actions)),
	}

	for _, p := range rec.Players {
		r := p.Reserves
		export.Players = append(export.Players, PlayerJSON{
			Seat:            p.PlayerID,
			Key:             string(p.Key),
			Faction:         p.Faction.String(),
			Reserves:        [4]uint64{r.Energy, r.Antibodies, r.StemCells, r.Nutrients},
			ControlledZones: p.ControlledZones,
			TotalUnits:      p.TotalUnits,
		})
	}
	sort.Slice(export.Players, func(i, j int) bool { return export.Players[i].Seat < export.Players[j].Seat })

	for _, z := range rec.Zones {
		zj := ZoneJSON{
			ID:        z.ZoneID,
			Type:      z.Type.String(),
			X:         z.X,
			Y:         z.Y,
			Owner:     z.Owner,
			Resources: [4]uint32{z.Energy, z.Antibodies, z.StemCells, z.Nutrients},
			Cells:     make([][]any, 0),
		}
		// Format: [x, y, kind, unitId|resource, health|amount]
		for _, pos := range z.OccupiedCells() {
			c, _ := z.Cell(pos.X, pos.Y)
			switch {
			case c.IsCombatant():
				zj.Cells = append(zj.Cells, []any{pos.X, pos.Y, c.Kind.String(), c.UnitID, c.Health})
			case c.Kind == core.CellResource:
				zj.Cells = append(zj.Cells, []any{pos.X, pos.Y, c.Kind.String(), c.Resource, c.Amount})
			default:
				zj.Cells = append(zj.Cells, []any{pos.X, pos.Y, c.Kind.String()})
			}
		}
		export.Zones = append(export.Zones, zj)
	}
	sort.Slice(export.Zones, func(i, j int) bool { return export.Zones[i].ID < export.Zones[j].ID })

	for _, u := range rec.Units {
		export.Units = append(export.Units, UnitJSON{
			ID:     u.UnitID,
			Type:   u.Type.String(),
			Owner:  u.Owner,
			ZoneID: u.ZoneID,
			X:      u.X,
			Y:      u.Y,
			Health: u.Health,
		})
	}
	sort.Slice(export.Units, func(i, j int) bool { return export.Units[i].ID < export.Units[j].ID })

	// Format: [turnNumber, authority, kind, accepted, code, args]
	for _, a := range rec.Actions {
		args := a.Args
		if args == nil {
			args = []string{}
		}
		export.Actions = append(export.Actions, []any{
			a.TurnNumber,
			string(a.Authority),
			string(a.Kind),
			boolToInt(a.Accepted),
			a.Code,
			args,
		})
	}

	return export
}

func writeJSON(path string, data MatchExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	return encoder.Encode(data)
}

func writeGzipJSON(path string, data MatchExport) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	defer gzWriter.Close()

	encoder := json.NewEncoder(gzWriter)
	return encoder.Encode(data)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
