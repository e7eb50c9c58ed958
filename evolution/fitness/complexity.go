package fitness

import (
	"math"

	"github.com/signalnine/deckforge/genome"
)

// ComplexityBreakdown itemizes the cognitive cost of a ruleset.
type ComplexityBreakdown struct {
	PhaseExplanationCost float64
	ConditionComplexity  float64
	SpecialEffectsCost   float64
	MemoryRequirements   float64
	StateTrackingCost    float64

	FamiliarPatternDiscount float64

	TotalComplexity      float64 // 0 = trivial, 1 = very complex
	ExplanationSentences int
}

// InvertedScore maps complexity to fitness: simpler scores higher.
func (c *ComplexityBreakdown) InvertedScore() float64 {
	return math.Max(0.0, 1.0-c.TotalComplexity)
}

// CalculateComplexity estimates how hard the game is to teach. The
// estimate is structural: it never needs a simulation.
func CalculateComplexity(g *genome.GameGenome) *ComplexityBreakdown {
	phaseCost := calculatePhaseCost(g)
	conditionCost := calculateConditionComplexity(g)
	effectsCost := calculateEffectsCost(g)
	memoryCost := calculateMemoryCost(g)
	stateCost := calculateStateTrackingCost(g)
	implicitCost := calculateImplicitComplexity(g)
	discount := calculateFamiliarityDiscount(g)

	raw := phaseCost*0.22 +
		math.Min(1.0, conditionCost/0.40)*0.20 +
		math.Min(1.0, effectsCost/0.15)*0.15 +
		memoryCost*0.18 +
		math.Min(1.0, stateCost/0.40)*0.10 +
		implicitCost*0.15

	discountFactor := math.Min(0.40, discount*0.50)
	total := raw * (1.0 - discountFactor)

	// Power transform spreads the mid-range.
	total = math.Min(1.0, math.Pow(total, 0.6))

	return &ComplexityBreakdown{
		PhaseExplanationCost:    phaseCost,
		ConditionComplexity:     conditionCost,
		SpecialEffectsCost:      effectsCost,
		MemoryRequirements:      memoryCost,
		StateTrackingCost:       stateCost,
		FamiliarPatternDiscount: discount,
		TotalComplexity:         total,
		ExplanationSentences:    estimateExplanationSentences(g),
	}
}

// ComputeRulesComplexity returns the inverted complexity score.
func ComputeRulesComplexity(g *genome.GameGenome) float64 {
	return CalculateComplexity(g).InvertedScore()
}

func calculatePhaseCost(g *genome.GameGenome) float64 {
	phaseCosts := map[uint8]float64{
		genome.PhaseTagDraw:    0.08,
		genome.PhaseTagPlay:    0.15,
		genome.PhaseTagDiscard: 0.10,
		genome.PhaseTagTrick:   0.45, // lead, follow suit, trump, resolution
		genome.PhaseTagBetting: 0.50, // check, bet, call, raise, fold, pot
		genome.PhaseTagClaim:   0.55, // claim, lie option, challenge
		genome.PhaseTagBidding: 0.40,
	}

	cost := 0.0
	distinct := make(map[uint8]bool)
	for _, p := range g.TurnStructure.Phases {
		tag := p.PhaseType()
		distinct[tag] = true
		base := phaseCosts[tag]
		if base == 0 {
			base = 0.10
		}
		switch phase := p.(type) {
		case *genome.DrawPhase:
			if phase.Source == genome.LocationOpponentHand {
				base += 0.15
			}
			if !phase.Mandatory {
				base += 0.05
			}
			if phase.Condition != nil {
				base += 0.12
			}
		case *genome.PlayPhase:
			if phase.ValidPlayCondition != nil {
				base += 0.15
			}
		case *genome.DiscardPhase:
			if phase.Count > 1 {
				base += 0.10
			}
		}
		cost += base
	}

	// Repeated phase types are cheaper to explain the second time.
	if dup := len(g.TurnStructure.Phases) - len(distinct); dup > 0 {
		cost = math.Max(0.1, cost-float64(dup)*0.10)
	}
	cost += float64(len(distinct)) * 0.06

	return math.Min(1.0, cost)
}

func calculateConditionComplexity(g *genome.GameGenome) float64 {
	conditionCount := 0
	totalClauses := 0
	for _, p := range g.TurnStructure.Phases {
		switch phase := p.(type) {
		case *genome.DrawPhase:
			if phase.Condition != nil {
				conditionCount++
				totalClauses += countClauses(phase.Condition)
			}
		case *genome.PlayPhase:
			if phase.ValidPlayCondition != nil {
				conditionCount++
				totalClauses += countClauses(phase.ValidPlayCondition)
			}
		}
	}
	totalClauses += len(g.SpecialEffects)

	if conditionCount == 0 && len(g.SpecialEffects) == 0 {
		return 0.0
	}
	presenceScore := math.Min(0.4, 0.15+float64(conditionCount)*0.08)
	clauseScore := math.Min(1.0, float64(totalClauses)/8.0)
	return presenceScore*0.50 + clauseScore*0.50
}

func countClauses(c *genome.Condition) int {
	if c == nil {
		return 0
	}
	if len(c.Children) == 0 {
		return 1
	}
	n := 0
	for _, child := range c.Children {
		n += countClauses(child)
	}
	return n
}

func calculateEffectsCost(g *genome.GameGenome) float64 {
	if len(g.SpecialEffects) == 0 {
		return 0.0
	}
	types := make(map[uint8]bool)
	for _, e := range g.SpecialEffects {
		types[e.EffectType] = true
	}
	cost := float64(len(types)) * 0.15
	if extra := len(g.SpecialEffects) - len(types); extra > 0 {
		cost += float64(extra) * 0.05
	}
	return math.Min(1.0, cost)
}

func calculateMemoryCost(g *genome.GameGenome) float64 {
	cost := 0.0
	for _, wc := range g.WinConditions {
		switch wc.Type {
		case genome.WinTypeMostCaptured:
			cost += 0.20
		case genome.WinTypeLowScore:
			cost += 0.15
		case genome.WinTypeMostChips:
			cost += 0.25 // chip stacks and pot odds
		}
	}
	for _, p := range g.TurnStructure.Phases {
		switch phase := p.(type) {
		case *genome.TrickPhase:
			cost += 0.30 // card counting
		case *genome.ClaimPhase:
			cost += 0.25 // claim history, opponent tells
		case *genome.BettingPhase:
			cost += 0.15
		case *genome.DiscardPhase:
			if phase.Count > 1 {
				cost += 0.15
			}
		}
	}
	cost += 0.08 // hidden information baseline
	return math.Min(1.0, cost)
}

func calculateStateTrackingCost(g *genome.GameGenome) float64 {
	cost := 0.0
	for _, p := range g.TurnStructure.Phases {
		switch p.(type) {
		case *genome.TrickPhase:
			cost += 0.15
		case *genome.BettingPhase:
			cost += 0.20
		}
	}
	for _, e := range g.SpecialEffects {
		switch e.EffectType {
		case genome.EffectReverse:
			cost += 0.10
		case genome.EffectSkipNext:
			cost += 0.05
		}
	}
	return math.Min(1.0, cost)
}

func calculateImplicitComplexity(g *genome.GameGenome) float64 {
	cost := 0.0
	for _, wc := range g.WinConditions {
		switch wc.Type {
		case genome.WinTypeMostChips:
			cost += 0.35 // hand strength rankings
		case genome.WinTypeLowScore:
			cost += 0.20
		case genome.WinTypeMostCaptured:
			cost += 0.15
		}
	}
	for _, p := range g.TurnStructure.Phases {
		if phase, ok := p.(*genome.PlayPhase); ok {
			if phase.Target == genome.LocationTableau && phase.MaxCards > 1 {
				cost += 0.25 // meld formation
				break
			}
		}
	}
	cost += float64(len(g.CardScoring)) * 0.10
	if g.Contract != nil {
		cost += 0.20
	}
	if g.Teams != nil && g.Teams.Enabled {
		cost += 0.10
	}
	return math.Min(1.0, cost)
}

func calculateFamiliarityDiscount(g *genome.GameGenome) float64 {
	discount := 0.0
	hasTrick, hasDraw, hasPlay, hasBetting := false, false, false, false
	for _, p := range g.TurnStructure.Phases {
		switch p.(type) {
		case *genome.TrickPhase:
			hasTrick = true
		case *genome.DrawPhase:
			hasDraw = true
		case *genome.PlayPhase:
			hasPlay = true
		case *genome.BettingPhase:
			hasBetting = true
		}
	}
	if hasTrick {
		discount += 0.15
	}
	if hasDraw && hasPlay && len(g.TurnStructure.Phases) <= 3 {
		discount += 0.10
	}
	if hasBetting {
		discount += 0.08
	}
	if len(g.TurnStructure.Phases) == 1 {
		if _, ok := g.TurnStructure.Phases[0].(*genome.PlayPhase); ok {
			discount += 0.25
		}
	}
	return math.Min(1.0, discount)
}

func estimateExplanationSentences(g *genome.GameGenome) int {
	sentences := 2 // setup
	for _, p := range g.TurnStructure.Phases {
		switch phase := p.(type) {
		case *genome.DrawPhase, *genome.DiscardPhase:
			sentences++
		case *genome.PlayPhase:
			sentences += 2
			if phase.ValidPlayCondition != nil {
				sentences++
			}
		case *genome.TrickPhase:
			sentences += 5
		case *genome.BettingPhase:
			sentences += 4
		case *genome.ClaimPhase:
			sentences += 3
		case *genome.BiddingPhase:
			sentences += 3
		default:
			sentences++
		}
	}
	if len(g.SpecialEffects) > 0 {
		types := make(map[uint8]bool)
		for _, e := range g.SpecialEffects {
			types[e.EffectType] = true
		}
		sentences += len(types) * 2
	}
	sentences += len(g.WinConditions)
	return sentences
}
