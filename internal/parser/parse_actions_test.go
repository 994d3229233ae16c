package parser

import (
	"testing"

	"github.com/biocommander/engine/pkg/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNewMatch(t *testing.T) {
	p := newTestParser()

	cmd, err := p.ParseNewMatch(nil)
	require.NoError(t, err)
	assert.Equal(t, NewMatchCommand{Scenario: "default"}, cmd)

	cmd, err = p.ParseNewMatch([]string{`"islands"`, "120.00"})
	require.NoError(t, err)
	assert.Equal(t, NewMatchCommand{Scenario: "islands", TurnTimeLimit: 120}, cmd)

	_, err = p.ParseNewMatch([]string{"", "soon"})
	assert.Error(t, err)
}

func TestParseGameRef(t *testing.T) {
	p := newTestParser()

	ref, err := p.ParseGameRef([]string{"12"})
	require.NoError(t, err)
	assert.Equal(t, uint32(12), ref.GameID)

	_, err = p.ParseGameRef(nil)
	assert.Error(t, err)
}

func TestParseJoin(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		name    string
		input   []string
		want    JoinCommand
		wantErr bool
	}{
		{
			name:  "defaults to starting zone",
			input: []string{"3", "1"},
			want:  JoinCommand{GameID: 3, Args: rules.JoinArgs{Faction: 1}, StartingZone: true},
		},
		{
			name:  "explicit no starting zone",
			input: []string{"3", "0.00", "false"},
			want:  JoinCommand{GameID: 3, Args: rules.JoinArgs{Faction: 0}},
		},
		{
			name:  "out-of-range faction selector is left to the rules",
			input: []string{"3", "7"},
			want:  JoinCommand{GameID: 3, Args: rules.JoinArgs{Faction: 7}, StartingZone: true},
		},
		{name: "too few args", input: []string{"3"}, wantErr: true},
		{name: "faction overflow", input: []string{"3", "300"}, wantErr: true},
		{name: "bad bool", input: []string{"3", "1", "maybe"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.ParseJoin(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseExpand(t *testing.T) {
	p := newTestParser()

	got, err := p.ParseExpand([]string{"1", "2", "9", "16", "4"})
	require.NoError(t, err)
	assert.Equal(t, ExpandCommand{
		GameID:       1,
		SourceZoneID: 9,
		TargetZoneID: 16,
		Args:         rules.ExpandArgs{Expansion: 2, NewZoneType: 4},
	}, got)

	got, err = p.ParseExpand([]string{"1", "3", "9", "10"})
	require.NoError(t, err)
	assert.Equal(t, uint8(0), got.Args.NewZoneType)

	_, err = p.ParseExpand([]string{"1", "3", "9"})
	assert.Error(t, err)
	_, err = p.ParseExpand([]string{"1", "x", "9", "10"})
	assert.Error(t, err)
}

func TestParsePlay(t *testing.T) {
	p := newTestParser()

	tests := []struct {
		name    string
		input   []string
		check   func(t *testing.T, c PlayCommand)
		wantErr bool
	}{
		{
			name: "spawn without unit",
			input: []string{
				"1", // 0: gameID
				"0", // 1: action
				"9", // 2: zoneID
				"",  // 3: unitID
				"4", // 4: x
				"5", // 5: y
				"2", // 6: unitType
				"0", // 7: abilityIndex
			},
			check: func(t *testing.T, c PlayCommand) {
				assert.Nil(t, c.UnitID)
				assert.Equal(t, rules.PlayArgs{Action: 0, X: 4, Y: 5, UnitType: 2}, c.Args)
				assert.Equal(t, uint32(9), c.ZoneID)
			},
		},
		{
			name:  "move with unit and float coordinates",
			input: []string{"1", "1", "9", "9000", "3.00", "2.0"},
			check: func(t *testing.T, c PlayCommand) {
				require.NotNil(t, c.UnitID)
				assert.Equal(t, uint32(9000), *c.UnitID)
				assert.Equal(t, uint8(3), c.Args.X)
				assert.Equal(t, uint8(2), c.Args.Y)
			},
		},
		{
			name:  "end turn needs only zone",
			input: []string{"1", "4", "10"},
			check: func(t *testing.T, c PlayCommand) {
				assert.Equal(t, uint8(4), c.Args.Action)
				assert.Nil(t, c.UnitID)
			},
		},
		{name: "missing zone", input: []string{"1", "4"}, wantErr: true},
		{name: "negative coordinate", input: []string{"1", "1", "9", "9000", "-1", "0"}, wantErr: true},
		{name: "fractional unit id", input: []string{"1", "1", "9", "9000.5"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.ParsePlay(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestParseDoesNotMutateInput(t *testing.T) {
	p := newTestParser()
	in := []string{`"1"`, `"4"`, `"10"`}

	_, err := p.ParsePlay(in)
	require.NoError(t, err)
	assert.Equal(t, []string{`"1"`, `"4"`, `"10"`}, in)
}
