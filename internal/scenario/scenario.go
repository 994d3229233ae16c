// Package scenario loads map layouts for new matches from YAML.
package scenario

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/biocommander/engine/pkg/core"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var builtin []byte

// Resources overrides a zone's starting pool.
type Resources struct {
	Energy     uint32 `yaml:"energy"`
	Antibodies uint32 `yaml:"antibodies"`
	StemCells  uint32 `yaml:"stemCells"`
	Nutrients  uint32 `yaml:"nutrients"`
}

// Deposit is a resource cell placed on a zone grid.
type Deposit struct {
	X        uint8  `yaml:"x"`
	Y        uint8  `yaml:"y"`
	Resource string `yaml:"resource"`
	Amount   uint16 `yaml:"amount"`
}

// ZoneOverride customises the lattice zone at (X, Y).
type ZoneOverride struct {
	X         uint8      `yaml:"x"`
	Y         uint8      `yaml:"y"`
	Type      string     `yaml:"type"`
	Border    *bool      `yaml:"border"`
	Resources *Resources `yaml:"resources"`
	Obstacles [][2]uint8 `yaml:"obstacles"`
	Deposits  []Deposit  `yaml:"deposits"`
}

// Scenario is one map layout.
type Scenario struct {
	Name          string         `yaml:"-"`
	Width         uint8          `yaml:"width"`
	Height        uint8          `yaml:"height"`
	TurnTimeLimit uint64         `yaml:"turnTimeLimit"`
	Zones         []ZoneOverride `yaml:"zones"`
}

type file struct {
	Scenarios map[string]*Scenario `yaml:"scenarios"`
}

// Catalog holds the scenarios available to new matches.
type Catalog struct {
	scenarios map[string]*Scenario
}

// Load returns the built-in scenarios merged with those in path. An empty
// path loads only the built-in ones.
func Load(path string) (*Catalog, error) {
	c := &Catalog{scenarios: make(map[string]*Scenario)}
	if err := c.add(builtin); err != nil {
		return nil, fmt.Errorf("built-in scenarios: %w", err)
	}
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading scenario file: %w", err)
	}
	if err := c.add(data); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func (c *Catalog) add(data []byte) error {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return err
	}
	for name, s := range f.Scenarios {
		if s == nil {
			return fmt.Errorf("scenario %q is empty", name)
		}
		s.Name = name
		if err := s.validate(); err != nil {
			return err
		}
		c.scenarios[name] = s
	}
	return nil
}

// Get returns the scenario called name.
func (c *Catalog) Get(name string) (*Scenario, error) {
	s, ok := c.scenarios[name]
	if !ok {
		return nil, fmt.Errorf("unknown scenario %q", name)
	}
	return s, nil
}

// Names lists the scenarios in sorted order.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.scenarios))
	for name := range c.scenarios {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (s *Scenario) validate() error {
	if s.Width < 2 || s.Height < 1 {
		return fmt.Errorf("scenario %q: map must be at least 2x1, got %dx%d", s.Name, s.Width, s.Height)
	}
	if int(s.Width)*int(s.Height) > core.MaxZones {
		return fmt.Errorf("scenario %q: %dx%d exceeds %d zones", s.Name, s.Width, s.Height, core.MaxZones)
	}
	for _, z := range s.Zones {
		if z.X >= s.Width || z.Y >= s.Height {
			return fmt.Errorf("scenario %q: zone (%d,%d) outside the map", s.Name, z.X, z.Y)
		}
		if z.Type != "" {
			if _, err := parseZoneType(z.Type); err != nil {
				return fmt.Errorf("scenario %q: %w", s.Name, err)
			}
		}
		for _, o := range z.Obstacles {
			if !core.InBounds(o[0], o[1]) {
				return fmt.Errorf("scenario %q: obstacle (%d,%d) outside the grid", s.Name, o[0], o[1])
			}
		}
		for _, d := range z.Deposits {
			if _, err := parseResource(d.Resource); err != nil {
				return fmt.Errorf("scenario %q: %w", s.Name, err)
			}
			if !core.InBounds(d.X, d.Y) {
				return fmt.Errorf("scenario %q: deposit (%d,%d) outside the grid", s.Name, d.X, d.Y)
			}
		}
	}
	return nil
}

// Build creates the game record and the full zone lattice for gameID.
// Zone ids are row-major lattice indices.
func (s *Scenario) Build(gameID uint32) (*core.Game, []core.Zone, error) {
	game := core.NewGame(gameID)
	game.MapWidth, game.MapHeight = s.Width, s.Height
	game.TotalZones = uint32(s.Width) * uint32(s.Height)
	if s.TurnTimeLimit > 0 {
		game.TurnTimeLimit = s.TurnTimeLimit
	}

	zones := make([]core.Zone, 0, game.TotalZones)
	for y := uint8(0); y < s.Height; y++ {
		for x := uint8(0); x < s.Width; x++ {
			z := core.NewZone(gameID, game.LatticeZoneID(x, y), x, y)
			z.IsBorderZone = x == 0 || y == 0 || x == s.Width-1 || y == s.Height-1
			s.link(game, z)
			zones = append(zones, *z)
		}
	}

	for _, o := range s.Zones {
		z := &zones[game.LatticeZoneID(o.X, o.Y)]
		if err := o.apply(z); err != nil {
			return nil, nil, fmt.Errorf("scenario %q zone (%d,%d): %w", s.Name, o.X, o.Y, err)
		}
	}
	return game, zones, nil
}

// link fills the neighbor table of z from the lattice.
func (s *Scenario) link(game *core.Game, z *core.Zone) {
	set := func(d core.Direction, x, y uint8) {
		id := game.LatticeZoneID(x, y)
		z.Neighbors[d] = &id
	}
	if z.Y > 0 {
		set(core.North, z.X, z.Y-1)
	}
	if z.X+1 < s.Width {
		set(core.East, z.X+1, z.Y)
	}
	if z.Y+1 < s.Height {
		set(core.South, z.X, z.Y+1)
	}
	if z.X > 0 {
		set(core.West, z.X-1, z.Y)
	}
}

func (o ZoneOverride) apply(z *core.Zone) error {
	if o.Type != "" {
		t, err := parseZoneType(o.Type)
		if err != nil {
			return err
		}
		z.Type = t
	}
	if o.Border != nil {
		z.IsBorderZone = *o.Border
	}
	if r := o.Resources; r != nil {
		z.Energy = min(r.Energy, core.ZoneResourceCap)
		z.Antibodies = min(r.Antibodies, core.ZoneResourceCap)
		z.StemCells = min(r.StemCells, core.ZoneStemCellsCap)
		z.Nutrients = min(r.Nutrients, core.ZoneResourceCap)
	}
	for _, p := range o.Obstacles {
		if err := z.SetTerrain(p[0], p[1], core.ObstacleCell()); err != nil {
			return err
		}
	}
	for _, d := range o.Deposits {
		rt, err := parseResource(d.Resource)
		if err != nil {
			return err
		}
		if err := z.SetTerrain(d.X, d.Y, core.ResourceCell(rt, d.Amount)); err != nil {
			return err
		}
	}
	return nil
}

func parseZoneType(s string) (core.ZoneType, error) {
	for sel := uint8(0); ; sel++ {
		t, ok := core.ZoneTypeFromSelector(sel)
		if !ok {
			return 0, fmt.Errorf("unknown zone type %q", s)
		}
		if strings.EqualFold(t.String(), s) {
			return t, nil
		}
	}
}

var resourceNames = map[string]core.ResourceType{
	"energy":     core.ResourceEnergy,
	"antibodies": core.ResourceAntibodies,
	"stemcells":  core.ResourceStemCells,
	"nutrients":  core.ResourceNutrients,
}

func parseResource(s string) (core.ResourceType, error) {
	rt, ok := resourceNames[strings.ToLower(s)]
	if !ok {
		return 0, fmt.Errorf("unknown resource %q", s)
	}
	return rt, nil
}
