package operators

import (
	"math/rand"

	"github.com/signalnine/deckforge/genome"
)

// RegisterPhaseMutations adds phase structure mutations with their
// default probabilities.
func RegisterPhaseMutations(r *Registry) {
	r.Register(NewAddDrawPhaseMutation(0.08))
	r.Register(NewRemovePhaseMutation(0.08))
	r.Register(NewModifyPlayPhaseMutation(0.10))
	r.Register(NewAddBettingPhaseMutation(0.05))
	r.Register(NewModifyBettingPhaseMutation(0.05))
	r.Register(NewAddTrickPhaseMutation(0.05))
	r.Register(NewModifyTrickPhaseMutation(0.05))
	r.Register(NewAddDiscardPhaseMutation(0.05))
	r.Register(NewAddClaimPhaseMutation(0.04))
	r.Register(NewSwapPhaseOrderMutation(0.05))
}

const maxPhases = 6

// insertPhase places a phase at a random position.
func insertPhase(phases []genome.Phase, p genome.Phase, rng *rand.Rand) []genome.Phase {
	pos := rng.Intn(len(phases) + 1)
	out := make([]genome.Phase, 0, len(phases)+1)
	out = append(out, phases[:pos]...)
	out = append(out, p)
	out = append(out, phases[pos:]...)
	return out
}

// AddDrawPhaseMutation inserts a draw phase.
type AddDrawPhaseMutation struct{ BaseMutation }

func NewAddDrawPhaseMutation(prob float64) *AddDrawPhaseMutation {
	return &AddDrawPhaseMutation{BaseMutation{prob, "add_draw_phase"}}
}

func (m *AddDrawPhaseMutation) Mutate(g *genome.GameGenome, rng *rand.Rand) *genome.GameGenome {
	clone := g.Clone()
	if len(clone.TurnStructure.Phases) >= maxPhases {
		return clone
	}
	sources := []genome.Location{genome.LocationDeck, genome.LocationDeck, genome.LocationOpponentHand}
	phase := &genome.DrawPhase{
		Source:    sources[rng.Intn(len(sources))],
		Count:     1 + rng.Intn(2),
		Mandatory: rng.Float64() < 0.5,
	}
	clone.TurnStructure.Phases = insertPhase(clone.TurnStructure.Phases, phase, rng)
	return clone
}

// RemovePhaseMutation drops a random phase, never the last one.
type RemovePhaseMutation struct{ BaseMutation }

func NewRemovePhaseMutation(prob float64) *RemovePhaseMutation {
	return &RemovePhaseMutation{BaseMutation{prob, "remove_phase"}}
}

func (m *RemovePhaseMutation) Mutate(g *genome.GameGenome, rng *rand.Rand) *genome.GameGenome {
	clone := g.Clone()
	phases := clone.TurnStructure.Phases
	if len(phases) <= 1 {
		return clone
	}
	idx := rng.Intn(len(phases))
	if _, ok := phases[idx].(*genome.TrickPhase); ok {
		// Removing the trick phase un-tricks the game.
		clone.TurnStructure.IsTrickBased = false
		clone.TurnStructure.TricksPerHand = 0
	}
	clone.TurnStructure.Phases = append(phases[:idx], phases[idx+1:]...)
	return clone
}

// ModifyPlayPhaseMutation tweaks one play phase's knobs.
type ModifyPlayPhaseMutation struct{ BaseMutation }

func NewModifyPlayPhaseMutation(prob float64) *ModifyPlayPhaseMutation {
	return &ModifyPlayPhaseMutation{BaseMutation{prob, "modify_play_phase"}}
}

func (m *ModifyPlayPhaseMutation) Mutate(g *genome.GameGenome, rng *rand.Rand) *genome.GameGenome {
	clone := g.Clone()
	var candidates []*genome.PlayPhase
	for _, p := range clone.TurnStructure.Phases {
		if pp, ok := p.(*genome.PlayPhase); ok {
			candidates = append(candidates, pp)
		}
	}
	if len(candidates) == 0 {
		return clone
	}
	pp := candidates[rng.Intn(len(candidates))]
	switch rng.Intn(4) {
	case 0:
		pp.Mandatory = !pp.Mandatory
	case 1:
		pp.PassIfUnable = !pp.PassIfUnable
	case 2:
		targets := []genome.Location{genome.LocationDiscard, genome.LocationTableau}
		pp.Target = targets[rng.Intn(len(targets))]
	case 3:
		pp.MaxCards = 1 + rng.Intn(4)
		if pp.MinCards > pp.MaxCards {
			pp.MinCards = pp.MaxCards
		}
	}
	return clone
}

// AddBettingPhaseMutation inserts a betting round, funding the players
// if the genome has no chips.
type AddBettingPhaseMutation struct{ BaseMutation }

func NewAddBettingPhaseMutation(prob float64) *AddBettingPhaseMutation {
	return &AddBettingPhaseMutation{BaseMutation{prob, "add_betting_phase"}}
}

func (m *AddBettingPhaseMutation) Mutate(g *genome.GameGenome, rng *rand.Rand) *genome.GameGenome {
	clone := g.Clone()
	if len(clone.TurnStructure.Phases) >= maxPhases || hasPhase(clone, genome.PhaseTagBetting) {
		return clone
	}
	if clone.Setup.StartingChips <= 0 {
		clone.Setup.StartingChips = 100
	}
	phase := &genome.BettingPhase{
		MinBet:    1 + rng.Intn(clone.Setup.StartingChips/4+1),
		MaxRaises: 1 + rng.Intn(3),
	}
	if phase.MinBet > clone.Setup.StartingChips/2 {
		phase.MinBet = clone.Setup.StartingChips / 2
	}
	clone.TurnStructure.Phases = insertPhase(clone.TurnStructure.Phases, phase, rng)
	return clone
}

// ModifyBettingPhaseMutation tweaks betting stakes.
type ModifyBettingPhaseMutation struct{ BaseMutation }

func NewModifyBettingPhaseMutation(prob float64) *ModifyBettingPhaseMutation {
	return &ModifyBettingPhaseMutation{BaseMutation{prob, "modify_betting_phase"}}
}

func (m *ModifyBettingPhaseMutation) Mutate(g *genome.GameGenome, rng *rand.Rand) *genome.GameGenome {
	clone := g.Clone()
	for _, p := range clone.TurnStructure.Phases {
		if bp, ok := p.(*genome.BettingPhase); ok {
			if rng.Float64() < 0.5 {
				bp.MinBet = 1 + rng.Intn(20)
				if max := clone.Setup.StartingChips / 2; max > 0 && bp.MinBet > max {
					bp.MinBet = max
				}
			} else {
				bp.MaxRaises = 1 + rng.Intn(4)
			}
			return clone
		}
	}
	return clone
}

// AddTrickPhaseMutation converts the genome toward trick-taking.
type AddTrickPhaseMutation struct{ BaseMutation }

func NewAddTrickPhaseMutation(prob float64) *AddTrickPhaseMutation {
	return &AddTrickPhaseMutation{BaseMutation{prob, "add_trick_phase"}}
}

func (m *AddTrickPhaseMutation) Mutate(g *genome.GameGenome, rng *rand.Rand) *genome.GameGenome {
	clone := g.Clone()
	if len(clone.TurnStructure.Phases) >= maxPhases || hasPhase(clone, genome.PhaseTagTrick) {
		return clone
	}
	suits := []uint8{genome.SuitHearts, genome.SuitDiamonds, genome.SuitClubs, genome.SuitSpades, genome.SuitNone}
	phase := &genome.TrickPhase{
		LeadSuitRequired: rng.Float64() < 0.7,
		TrumpSuit:        suits[rng.Intn(len(suits))],
		HighCardWins:     rng.Float64() < 0.8,
		BreakingSuit:     genome.SuitNone,
	}
	clone.TurnStructure.Phases = append(clone.TurnStructure.Phases, phase)
	clone.TurnStructure.IsTrickBased = true
	if clone.TurnStructure.TricksPerHand <= 0 {
		clone.TurnStructure.TricksPerHand = clone.Setup.CardsPerPlayer
	}
	return clone
}

// ModifyTrickPhaseMutation tweaks trick rules.
type ModifyTrickPhaseMutation struct{ BaseMutation }

func NewModifyTrickPhaseMutation(prob float64) *ModifyTrickPhaseMutation {
	return &ModifyTrickPhaseMutation{BaseMutation{prob, "modify_trick_phase"}}
}

func (m *ModifyTrickPhaseMutation) Mutate(g *genome.GameGenome, rng *rand.Rand) *genome.GameGenome {
	clone := g.Clone()
	for _, p := range clone.TurnStructure.Phases {
		if tp, ok := p.(*genome.TrickPhase); ok {
			switch rng.Intn(3) {
			case 0:
				tp.LeadSuitRequired = !tp.LeadSuitRequired
			case 1:
				suits := []uint8{genome.SuitHearts, genome.SuitDiamonds, genome.SuitClubs, genome.SuitSpades, genome.SuitNone}
				tp.TrumpSuit = suits[rng.Intn(len(suits))]
			case 2:
				tp.HighCardWins = !tp.HighCardWins
			}
			return clone
		}
	}
	return clone
}

// AddDiscardPhaseMutation inserts a discard phase.
type AddDiscardPhaseMutation struct{ BaseMutation }

func NewAddDiscardPhaseMutation(prob float64) *AddDiscardPhaseMutation {
	return &AddDiscardPhaseMutation{BaseMutation{prob, "add_discard_phase"}}
}

func (m *AddDiscardPhaseMutation) Mutate(g *genome.GameGenome, rng *rand.Rand) *genome.GameGenome {
	clone := g.Clone()
	if len(clone.TurnStructure.Phases) >= maxPhases {
		return clone
	}
	phase := &genome.DiscardPhase{
		Target:    genome.LocationDiscard,
		Count:     1,
		Mandatory: rng.Float64() < 0.5,
	}
	clone.TurnStructure.Phases = insertPhase(clone.TurnStructure.Phases, phase, rng)
	return clone
}

// AddClaimPhaseMutation introduces a bluffing mechanic.
type AddClaimPhaseMutation struct{ BaseMutation }

func NewAddClaimPhaseMutation(prob float64) *AddClaimPhaseMutation {
	return &AddClaimPhaseMutation{BaseMutation{prob, "add_claim_phase"}}
}

func (m *AddClaimPhaseMutation) Mutate(g *genome.GameGenome, rng *rand.Rand) *genome.GameGenome {
	clone := g.Clone()
	if len(clone.TurnStructure.Phases) >= maxPhases || hasPhase(clone, genome.PhaseTagClaim) {
		return clone
	}
	phase := &genome.ClaimPhase{
		Target:         genome.LocationDiscard,
		RankFixed:      255,
		MinCards:       1,
		MaxCards:       1 + rng.Intn(4),
		AllowChallenge: true,
		SequentialRank: rng.Float64() < 0.5,
	}
	clone.TurnStructure.Phases = insertPhase(clone.TurnStructure.Phases, phase, rng)
	return clone
}

// SwapPhaseOrderMutation exchanges two adjacent phases.
type SwapPhaseOrderMutation struct{ BaseMutation }

func NewSwapPhaseOrderMutation(prob float64) *SwapPhaseOrderMutation {
	return &SwapPhaseOrderMutation{BaseMutation{prob, "swap_phase_order"}}
}

func (m *SwapPhaseOrderMutation) Mutate(g *genome.GameGenome, rng *rand.Rand) *genome.GameGenome {
	clone := g.Clone()
	phases := clone.TurnStructure.Phases
	if len(phases) < 2 {
		return clone
	}
	i := rng.Intn(len(phases) - 1)
	phases[i], phases[i+1] = phases[i+1], phases[i]
	return clone
}

func hasPhase(g *genome.GameGenome, tag uint8) bool {
	for _, p := range g.TurnStructure.Phases {
		if p.PhaseType() == tag {
			return true
		}
	}
	return false
}
