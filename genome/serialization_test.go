package genome

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenomeJSONRoundTrip(t *testing.T) {
	for _, g := range GetSeedGenomes() {
		t.Run(g.Name, func(t *testing.T) {
			data, err := json.Marshal(g)
			require.NoError(t, err)

			var decoded GameGenome
			require.NoError(t, json.Unmarshal(data, &decoded))

			// Bytecode equality is the round-trip law: two genomes that
			// compile identically are the same game.
			want, err := Compile(g)
			require.NoError(t, err)
			got, err := Compile(&decoded)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestUnmarshalLegacyDialect(t *testing.T) {
	legacy := `{
		"schema_version": 1,
		"genome_id": "legacy-hearts",
		"player_count": 4,
		"setup": {"cards_per_player": 13, "trump_suit": "none"},
		"phases": [
			{"type": "trick", "lead_suit_required": true, "breaking_suit": "hearts"}
		],
		"is_trick_based": true,
		"tricks_per_hand": 13,
		"max_turns": 200,
		"min_turns": 1,
		"win_conditions": [{"type": "low_score"}],
		"card_scoring": [
			{"rank": "any", "suit": "hearts", "points": 1},
			{"rank": "queen", "suit": "spades", "points": 13}
		]
	}`

	var g GameGenome
	require.NoError(t, json.Unmarshal([]byte(legacy), &g))

	assert.Equal(t, 4, g.PlayerCount)
	require.Len(t, g.TurnStructure.Phases, 1)
	tp, ok := g.TurnStructure.Phases[0].(*TrickPhase)
	require.True(t, ok)
	assert.Equal(t, SuitHearts, tp.BreakingSuit)
	assert.Equal(t, SuitNone, tp.TrumpSuit)

	require.Len(t, g.WinConditions, 1)
	assert.Equal(t, WinTypeLowScore, g.WinConditions[0].Type)

	require.Len(t, g.CardScoring, 2)
	assert.Equal(t, uint8(255), g.CardScoring[0].Rank)
	assert.Equal(t, SuitHearts, g.CardScoring[0].Suit)
	assert.Equal(t, RankQueen, g.CardScoring[1].Rank)
	assert.Equal(t, SuitSpades, g.CardScoring[1].Suit)
	assert.Equal(t, 13, g.CardScoring[1].Points)

	assert.Empty(t, ValidateGenome(&g))
}

func TestUnmarshalRejectsUnknownPhaseType(t *testing.T) {
	bad := `{"player_count": 2, "setup": {"cards_per_player": 5},
		"phases": [{"type": "meld"}], "max_turns": 100, "min_turns": 1,
		"win_conditions": [{"type": "empty_hand"}]}`
	var g GameGenome
	err := json.Unmarshal([]byte(bad), &g)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "meld")
}

func TestUnmarshalRejectsUnknownWinType(t *testing.T) {
	bad := `{"player_count": 2, "setup": {"cards_per_player": 5},
		"phases": [{"type": "play"}], "max_turns": 100, "min_turns": 1,
		"win_conditions": [{"type": "best_dressed"}]}`
	var g GameGenome
	require.Error(t, json.Unmarshal([]byte(bad), &g))
}

func TestParseRankName(t *testing.T) {
	tests := []struct {
		in   string
		want uint8
		ok   bool
	}{
		{"queen", RankQueen, true},
		{"QUEEN", RankQueen, true},
		{"ace", RankAce, true},
		{"2", RankTwo, true},
		{"10", RankTen, true},
		{"any", 255, true},
		{"joker", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseRankName(tt.in)
		if tt.ok {
			require.NoError(t, err, tt.in)
			assert.Equal(t, tt.want, got, tt.in)
		} else {
			assert.Error(t, err, tt.in)
		}
	}
}

func TestParseSuitName(t *testing.T) {
	got, err := ParseSuitName("Spades")
	require.NoError(t, err)
	assert.Equal(t, SuitSpades, got)

	got, err = ParseSuitName("none")
	require.NoError(t, err)
	assert.Equal(t, SuitNone, got)

	_, err = ParseSuitName("cups")
	assert.Error(t, err)
}

func TestMarshalEmitsNumericEnums(t *testing.T) {
	g := NewHeartsGenome()
	data, err := json.Marshal(g)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	scoring, ok := raw["card_scoring"].([]any)
	require.True(t, ok)
	first := scoring[0].(map[string]any)
	_, isNumber := first["suit"].(float64)
	assert.True(t, isNumber, "writer emits numeric suits, not names")
}

func TestEffectsRoundTripThroughJSON(t *testing.T) {
	g := NewCrazyEightsGenome()
	g.SpecialEffects = map[uint8]SpecialEffect{
		RankEight: {EffectType: EffectWild, Target: TargetSelf},
		RankTwo:   {EffectType: EffectForceDraw, Target: TargetNextPlayer, Value: 2},
	}

	data, err := json.Marshal(g)
	require.NoError(t, err)
	var decoded GameGenome
	require.NoError(t, json.Unmarshal(data, &decoded))

	require.Len(t, decoded.SpecialEffects, 2)
	assert.Equal(t, 2, decoded.SpecialEffects[RankTwo].Value)
	assert.Equal(t, EffectWild, decoded.SpecialEffects[RankEight].EffectType)
}
