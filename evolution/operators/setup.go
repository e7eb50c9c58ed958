package operators

import (
	"math/rand"

	"github.com/signalnine/deckforge/genome"
)

// RegisterSetupMutations adds deal and table knob mutations with their
// default probabilities.
func RegisterSetupMutations(r *Registry) {
	r.Register(NewCardsPerPlayerMutation(0.10))
	r.Register(NewMaxTurnsMutation(0.05))
	r.Register(NewStartingChipsMutation(0.05))
	r.Register(NewDealToTableauMutation(0.05))
	r.Register(NewTableauModeMutation(0.05))
	r.Register(NewSequenceDirectionMutation(0.05))
	r.Register(NewWildRankMutation(0.05))
	r.Register(NewPlayerCountMutation(0.03))
}

// CardsPerPlayerMutation nudges the hand size.
type CardsPerPlayerMutation struct{ BaseMutation }

func NewCardsPerPlayerMutation(prob float64) *CardsPerPlayerMutation {
	return &CardsPerPlayerMutation{BaseMutation{prob, "cards_per_player"}}
}

func (m *CardsPerPlayerMutation) Mutate(g *genome.GameGenome, rng *rand.Rand) *genome.GameGenome {
	clone := g.Clone()
	delta := rng.Intn(7) - 3 // [-3, +3]
	v := clone.Setup.CardsPerPlayer + delta
	if v < 1 {
		v = 1
	}
	if limit := genome.StandardDeckSize / clone.Players(); v > limit {
		v = limit
	}
	clone.Setup.CardsPerPlayer = v
	return clone
}

// MaxTurnsMutation scales the turn limit.
type MaxTurnsMutation struct{ BaseMutation }

func NewMaxTurnsMutation(prob float64) *MaxTurnsMutation {
	return &MaxTurnsMutation{BaseMutation{prob, "max_turns"}}
}

func (m *MaxTurnsMutation) Mutate(g *genome.GameGenome, rng *rand.Rand) *genome.GameGenome {
	clone := g.Clone()
	factor := 0.5 + rng.Float64() // [0.5, 1.5)
	v := int(float64(clone.TurnStructure.MaxTurns) * factor)
	if v < clone.TurnStructure.MinTurns {
		v = clone.TurnStructure.MinTurns
	}
	if v > genome.HardMaxTurns {
		v = genome.HardMaxTurns
	}
	clone.TurnStructure.MaxTurns = v
	return clone
}

// StartingChipsMutation adjusts the chip stack.
type StartingChipsMutation struct{ BaseMutation }

func NewStartingChipsMutation(prob float64) *StartingChipsMutation {
	return &StartingChipsMutation{BaseMutation{prob, "starting_chips"}}
}

func (m *StartingChipsMutation) Mutate(g *genome.GameGenome, rng *rand.Rand) *genome.GameGenome {
	clone := g.Clone()
	options := []int{50, 100, 200, 500}
	clone.Setup.StartingChips = options[rng.Intn(len(options))]
	return clone
}

// DealToTableauMutation changes how many cards seed the tableau.
type DealToTableauMutation struct{ BaseMutation }

func NewDealToTableauMutation(prob float64) *DealToTableauMutation {
	return &DealToTableauMutation{BaseMutation{prob, "deal_to_tableau"}}
}

func (m *DealToTableauMutation) Mutate(g *genome.GameGenome, rng *rand.Rand) *genome.GameGenome {
	clone := g.Clone()
	v := rng.Intn(9) // [0, 8]
	if clone.Setup.CardsPerPlayer*clone.Players()+v > genome.StandardDeckSize {
		v = 0
	}
	clone.Setup.DealToTableau = v
	return clone
}

// TableauModeMutation switches the tableau resolution rule.
type TableauModeMutation struct{ BaseMutation }

func NewTableauModeMutation(prob float64) *TableauModeMutation {
	return &TableauModeMutation{BaseMutation{prob, "tableau_mode"}}
}

func (m *TableauModeMutation) Mutate(g *genome.GameGenome, rng *rand.Rand) *genome.GameGenome {
	clone := g.Clone()
	modes := []genome.TableauMode{
		genome.TableauModeNone,
		genome.TableauModeWar,
		genome.TableauModeMatchRank,
		genome.TableauModeSequence,
	}
	clone.TurnStructure.TableauMode = modes[rng.Intn(len(modes))]
	return clone
}

// SequenceDirectionMutation flips how sequence tableaus build.
type SequenceDirectionMutation struct{ BaseMutation }

func NewSequenceDirectionMutation(prob float64) *SequenceDirectionMutation {
	return &SequenceDirectionMutation{BaseMutation{prob, "sequence_direction"}}
}

func (m *SequenceDirectionMutation) Mutate(g *genome.GameGenome, rng *rand.Rand) *genome.GameGenome {
	clone := g.Clone()
	dirs := []genome.SequenceDirection{
		genome.SequenceAscending,
		genome.SequenceDescending,
		genome.SequenceBoth,
	}
	clone.TurnStructure.SequenceDirection = dirs[rng.Intn(len(dirs))]
	return clone
}

// WildRankMutation toggles one rank's wildness.
type WildRankMutation struct{ BaseMutation }

func NewWildRankMutation(prob float64) *WildRankMutation {
	return &WildRankMutation{BaseMutation{prob, "wild_rank"}}
}

func (m *WildRankMutation) Mutate(g *genome.GameGenome, rng *rand.Rand) *genome.GameGenome {
	clone := g.Clone()
	rank := uint8(rng.Intn(13))
	for i, r := range clone.Setup.WildRanks {
		if r == rank {
			clone.Setup.WildRanks = append(clone.Setup.WildRanks[:i], clone.Setup.WildRanks[i+1:]...)
			return clone
		}
	}
	// Two wild ranks is plenty; beyond that every card matches.
	if len(clone.Setup.WildRanks) < 2 {
		clone.Setup.WildRanks = append(clone.Setup.WildRanks, rank)
	}
	return clone
}

// PlayerCountMutation moves between 2, 3, and 4 seats, trimming team
// configs that no longer fit.
type PlayerCountMutation struct{ BaseMutation }

func NewPlayerCountMutation(prob float64) *PlayerCountMutation {
	return &PlayerCountMutation{BaseMutation{prob, "player_count"}}
}

func (m *PlayerCountMutation) Mutate(g *genome.GameGenome, rng *rand.Rand) *genome.GameGenome {
	clone := g.Clone()
	counts := []int{2, 3, 4}
	clone.PlayerCount = counts[rng.Intn(len(counts))]
	if limit := genome.StandardDeckSize / clone.PlayerCount; clone.Setup.CardsPerPlayer > limit {
		clone.Setup.CardsPerPlayer = limit
	}
	if clone.Teams != nil && clone.PlayerCount != 4 {
		clone.Teams = nil
	}
	return clone
}
