package genome

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCatchesStructuralErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(g *GameGenome)
		field  string
	}{
		{
			name:   "no phases",
			mutate: func(g *GameGenome) { g.TurnStructure.Phases = nil },
			field:  "turn_structure.phases",
		},
		{
			name:   "no win conditions",
			mutate: func(g *GameGenome) { g.WinConditions = nil },
			field:  "win_conditions",
		},
		{
			name:   "deal exceeds deck",
			mutate: func(g *GameGenome) { g.Setup.CardsPerPlayer = 30 },
			field:  "setup.cards_per_player",
		},
		{
			name:   "zero cards per player",
			mutate: func(g *GameGenome) { g.Setup.CardsPerPlayer = 0 },
			field:  "setup.cards_per_player",
		},
		{
			name:   "max below min turns",
			mutate: func(g *GameGenome) { g.TurnStructure.MaxTurns = 0 },
			field:  "turn_structure.max_turns",
		},
		{
			name:   "max turns over hard bound",
			mutate: func(g *GameGenome) { g.TurnStructure.MaxTurns = HardMaxTurns + 1 },
			field:  "turn_structure.max_turns",
		},
		{
			name: "betting without chips",
			mutate: func(g *GameGenome) {
				g.Setup.StartingChips = 0
				g.TurnStructure.Phases = append(g.TurnStructure.Phases, &BettingPhase{MinBet: 1, MaxRaises: 3})
			},
			field: "setup.starting_chips",
		},
		{
			name: "bidding without tricks",
			mutate: func(g *GameGenome) {
				g.TurnStructure.Phases = append(g.TurnStructure.Phases, &BiddingPhase{MaxBid: 13})
			},
			field: "turn_structure.phases",
		},
		{
			name: "capture win without capture mechanic",
			mutate: func(g *GameGenome) {
				g.TurnStructure.TableauMode = TableauModeNone
			},
			field: "turn_structure.tableau_mode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewWarGenome()
			tt.mutate(g)
			errs := ValidateGenome(g)
			require.NotEmpty(t, errs)
			found := false
			for _, e := range errs {
				if e.Field == tt.field {
					found = true
				}
			}
			assert.True(t, found, "expected an error on %s, got %v", tt.field, errs)
		})
	}
}

func TestValidateMinBetAgainstChips(t *testing.T) {
	g := NewSimplePokerGenome()
	for _, p := range g.TurnStructure.Phases {
		if bp, ok := p.(*BettingPhase); ok {
			bp.MinBet = g.Setup.StartingChips
		}
	}
	errs := ValidateGenome(g)
	require.NotEmpty(t, errs)
}

func TestValidateScoreWinNeedsScoreSource(t *testing.T) {
	g := NewHeartsGenome()
	g.CardScoring = nil
	errs := ValidateGenome(g)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Error(), "scoring")
}

func TestValidateTeams(t *testing.T) {
	g := NewPartnershipSpadesGenome()
	require.Empty(t, ValidateGenome(g))

	g.Teams.Teams = [][]int{{0, 1}, {2, 5}}
	errs := ValidateGenome(g)
	require.NotEmpty(t, errs)

	g = NewPartnershipSpadesGenome()
	g.Teams.Teams = [][]int{{0, 1}, {1, 2}}
	errs = ValidateGenome(g)
	require.NotEmpty(t, errs)
}

func TestIsValidAcceptsSeeds(t *testing.T) {
	for _, g := range GetSeedGenomes() {
		assert.True(t, IsValid(g), "seed %s should validate", g.Name)
	}
}
