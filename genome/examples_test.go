package genome

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedCatalog(t *testing.T) {
	seeds := GetSeedGenomes()
	require.GreaterOrEqual(t, len(seeds), 15)

	ids := make(map[string]bool)
	for _, g := range seeds {
		t.Run(g.Name, func(t *testing.T) {
			assert.Empty(t, ValidateGenome(g), "seed must validate clean")

			bytecode, err := Compile(g)
			require.NoError(t, err)
			assert.NotEmpty(t, bytecode)

			assert.False(t, ids[g.GenomeID], "duplicate genome id %s", g.GenomeID)
			ids[g.GenomeID] = true

			assert.GreaterOrEqual(t, g.Players(), 2)
			assert.LessOrEqual(t, g.Players(), 4)
		})
	}
}

func TestWarGenomeShape(t *testing.T) {
	g := NewWarGenome()
	assert.Equal(t, 2, g.Players())
	assert.Equal(t, 26, g.Setup.CardsPerPlayer)
	assert.Equal(t, TableauModeWar, g.TurnStructure.TableauMode)
	require.Len(t, g.TurnStructure.Phases, 1)
	require.Len(t, g.WinConditions, 1)
	assert.Equal(t, WinTypeCaptureAll, g.WinConditions[0].Type)
}

func TestSpadesGenomeHasContract(t *testing.T) {
	g := NewSpadesGenome()
	require.NotNil(t, g.Contract)
	assert.True(t, g.TurnStructure.IsTrickBased)

	hasBidding := false
	for _, p := range g.TurnStructure.Phases {
		if _, ok := p.(*BiddingPhase); ok {
			hasBidding = true
		}
	}
	assert.True(t, hasBidding)
}

func TestPartnershipSpadesTeams(t *testing.T) {
	g := NewPartnershipSpadesGenome()
	require.NotNil(t, g.Teams)
	assert.True(t, g.Teams.Enabled)
	assert.Equal(t, 4, g.Players())
	require.Len(t, g.Teams.Teams, 2)
}

func TestCloneIsDeep(t *testing.T) {
	g := NewCrazyEightsGenome()
	clone := g.Clone()

	clone.Setup.CardsPerPlayer = 1
	clone.TurnStructure.Phases = clone.TurnStructure.Phases[:1]

	assert.NotEqual(t, clone.Setup.CardsPerPlayer, g.Setup.CardsPerPlayer)
	assert.NotEqual(t, len(clone.TurnStructure.Phases), len(g.TurnStructure.Phases))

	// Mutating a cloned phase must not reach the original.
	for _, p := range clone.TurnStructure.Phases {
		if dp, ok := p.(*DrawPhase); ok {
			dp.Count = 9
		}
	}
	for _, p := range g.TurnStructure.Phases {
		if dp, ok := p.(*DrawPhase); ok {
			assert.NotEqual(t, 9, dp.Count)
		}
	}
}
