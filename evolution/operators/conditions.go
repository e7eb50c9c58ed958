package operators

import (
	"math/rand"

	"github.com/signalnine/deckforge/genome"
)

// RegisterConditionMutations adds condition, win-condition, scoring,
// and effect mutations with their default probabilities.
func RegisterConditionMutations(r *Registry) {
	r.Register(NewAddConditionMutation(0.05))
	r.Register(NewRemoveConditionMutation(0.05))
	r.Register(NewModifyConditionMutation(0.08))
	r.Register(NewWinConditionMutation(0.05))
	r.Register(NewCardScoringMutation(0.05))
	r.Register(NewSpecialEffectMutation(0.05))
}

// randomSimpleCondition builds a random leaf predicate.
func randomSimpleCondition(rng *rand.Rand) *genome.Condition {
	ops := []uint8{genome.OpEQ, genome.OpNE, genome.OpLT, genome.OpGT, genome.OpLE, genome.OpGE}
	switch rng.Intn(4) {
	case 0:
		return &genome.Condition{
			Opcode:   genome.CondHandSize,
			Operator: ops[rng.Intn(len(ops))],
			Value:    int32(rng.Intn(10)),
		}
	case 1:
		return &genome.Condition{
			Opcode:    genome.CondCardMatchesRank,
			Operator:  genome.OpEQ,
			Value:     -1,
			Reference: genome.RefTopDiscard,
		}
	case 2:
		return &genome.Condition{
			Opcode:    genome.CondCardMatchesSuit,
			Operator:  genome.OpEQ,
			Value:     -1,
			Reference: genome.RefTopDiscard,
		}
	default:
		return &genome.Condition{
			Opcode:    genome.CondCardBeatsTop,
			Operator:  genome.OpGT,
			Reference: genome.RefTopDiscard,
		}
	}
}

// AddConditionMutation gates a play phase that has no condition.
type AddConditionMutation struct{ BaseMutation }

func NewAddConditionMutation(prob float64) *AddConditionMutation {
	return &AddConditionMutation{BaseMutation{prob, "add_condition"}}
}

func (m *AddConditionMutation) Mutate(g *genome.GameGenome, rng *rand.Rand) *genome.GameGenome {
	clone := g.Clone()
	for _, p := range clone.TurnStructure.Phases {
		if pp, ok := p.(*genome.PlayPhase); ok && pp.ValidPlayCondition == nil {
			if rng.Float64() < 0.3 {
				pp.ValidPlayCondition = &genome.Condition{
					Opcode: genome.CondOr,
					Children: []*genome.Condition{
						randomSimpleCondition(rng),
						randomSimpleCondition(rng),
					},
				}
			} else {
				pp.ValidPlayCondition = randomSimpleCondition(rng)
			}
			return clone
		}
	}
	return clone
}

// RemoveConditionMutation strips one phase condition.
type RemoveConditionMutation struct{ BaseMutation }

func NewRemoveConditionMutation(prob float64) *RemoveConditionMutation {
	return &RemoveConditionMutation{BaseMutation{prob, "remove_condition"}}
}

func (m *RemoveConditionMutation) Mutate(g *genome.GameGenome, rng *rand.Rand) *genome.GameGenome {
	clone := g.Clone()
	for _, p := range clone.TurnStructure.Phases {
		switch phase := p.(type) {
		case *genome.PlayPhase:
			if phase.ValidPlayCondition != nil {
				phase.ValidPlayCondition = nil
				return clone
			}
		case *genome.DrawPhase:
			if phase.Condition != nil {
				phase.Condition = nil
				return clone
			}
		}
	}
	return clone
}

// ModifyConditionMutation perturbs a condition's threshold or swaps
// its comparator.
type ModifyConditionMutation struct{ BaseMutation }

func NewModifyConditionMutation(prob float64) *ModifyConditionMutation {
	return &ModifyConditionMutation{BaseMutation{prob, "modify_condition"}}
}

func (m *ModifyConditionMutation) Mutate(g *genome.GameGenome, rng *rand.Rand) *genome.GameGenome {
	clone := g.Clone()
	for _, p := range clone.TurnStructure.Phases {
		var cond *genome.Condition
		switch phase := p.(type) {
		case *genome.PlayPhase:
			cond = phase.ValidPlayCondition
		case *genome.DrawPhase:
			cond = phase.Condition
		}
		if cond == nil {
			continue
		}
		leaf := cond
		for len(leaf.Children) > 0 {
			leaf = leaf.Children[rng.Intn(len(leaf.Children))]
		}
		if rng.Float64() < 0.5 && leaf.Value >= 0 {
			leaf.Value += int32(rng.Intn(5) - 2)
			if leaf.Value < 0 {
				leaf.Value = 0
			}
		} else {
			ops := []uint8{genome.OpEQ, genome.OpNE, genome.OpLT, genome.OpGT, genome.OpLE, genome.OpGE}
			leaf.Operator = ops[rng.Intn(len(ops))]
		}
		return clone
	}
	return clone
}

// WinConditionMutation replaces a win condition or nudges a threshold.
type WinConditionMutation struct{ BaseMutation }

func NewWinConditionMutation(prob float64) *WinConditionMutation {
	return &WinConditionMutation{BaseMutation{prob, "win_condition"}}
}

func (m *WinConditionMutation) Mutate(g *genome.GameGenome, rng *rand.Rand) *genome.GameGenome {
	clone := g.Clone()
	if len(clone.WinConditions) == 0 {
		clone.WinConditions = []genome.WinCondition{{Type: genome.WinTypeEmptyHand}}
		return clone
	}
	idx := rng.Intn(len(clone.WinConditions))
	wc := &clone.WinConditions[idx]
	if wc.Type == genome.WinTypeFirstToScore && rng.Float64() < 0.5 {
		wc.Threshold += rng.Intn(21) - 10
		if wc.Threshold < 1 {
			wc.Threshold = 1
		}
		return clone
	}
	types := []genome.WinConditionType{
		genome.WinTypeEmptyHand,
		genome.WinTypeHighScore,
		genome.WinTypeLowScore,
		genome.WinTypeMostTricks,
		genome.WinTypeMostCaptured,
		genome.WinTypeCaptureAll,
	}
	wc.Type = types[rng.Intn(len(types))]
	if wc.Type == genome.WinTypeFirstToScore && wc.Threshold <= 0 {
		wc.Threshold = 10 + rng.Intn(40)
	}
	return clone
}

// CardScoringMutation adds, removes, or reweights a scoring rule.
type CardScoringMutation struct{ BaseMutation }

func NewCardScoringMutation(prob float64) *CardScoringMutation {
	return &CardScoringMutation{BaseMutation{prob, "card_scoring"}}
}

func (m *CardScoringMutation) Mutate(g *genome.GameGenome, rng *rand.Rand) *genome.GameGenome {
	clone := g.Clone()
	switch {
	case len(clone.CardScoring) == 0 || rng.Float64() < 0.3:
		suits := []uint8{genome.SuitHearts, genome.SuitDiamonds, genome.SuitClubs, genome.SuitSpades, genome.SuitNone}
		clone.CardScoring = append(clone.CardScoring, genome.CardScoringRule{
			Rank:   uint8(rng.Intn(13)),
			Suit:   suits[rng.Intn(len(suits))],
			Points: 1 + rng.Intn(13),
		})
	case rng.Float64() < 0.5 && len(clone.CardScoring) > 1:
		idx := rng.Intn(len(clone.CardScoring))
		clone.CardScoring = append(clone.CardScoring[:idx], clone.CardScoring[idx+1:]...)
	default:
		idx := rng.Intn(len(clone.CardScoring))
		clone.CardScoring[idx].Points += rng.Intn(5) - 2
		if clone.CardScoring[idx].Points == 0 {
			clone.CardScoring[idx].Points = 1
		}
	}
	return clone
}

// SpecialEffectMutation toggles a rank-triggered effect.
type SpecialEffectMutation struct{ BaseMutation }

func NewSpecialEffectMutation(prob float64) *SpecialEffectMutation {
	return &SpecialEffectMutation{BaseMutation{prob, "special_effect"}}
}

func (m *SpecialEffectMutation) Mutate(g *genome.GameGenome, rng *rand.Rand) *genome.GameGenome {
	clone := g.Clone()
	rank := uint8(rng.Intn(13))
	if _, ok := clone.SpecialEffects[rank]; ok {
		delete(clone.SpecialEffects, rank)
		return clone
	}
	if len(clone.SpecialEffects) >= 3 {
		return clone
	}
	effects := []uint8{
		genome.EffectExtraTurn,
		genome.EffectSkipNext,
		genome.EffectReverse,
		genome.EffectForceDraw,
		genome.EffectWild,
	}
	eff := genome.SpecialEffect{
		EffectType: effects[rng.Intn(len(effects))],
		Target:     genome.TargetNextPlayer,
	}
	if eff.EffectType == genome.EffectForceDraw {
		eff.Value = 1 + rng.Intn(3)
	}
	if clone.SpecialEffects == nil {
		clone.SpecialEffects = make(map[uint8]genome.SpecialEffect)
	}
	clone.SpecialEffects[rank] = eff
	return clone
}
