package evolution

import (
	"math/rand"

	"github.com/signalnine/deckforge/genome"
)

// CrossoverOperator produces offspring from two parent genomes.
type CrossoverOperator interface {
	Crossover(parent1, parent2 *genome.GameGenome, rng *rand.Rand) (*genome.GameGenome, *genome.GameGenome)
	Probability() float64
}

// UniformCrossover swaps each gene group independently with
// probability 0.5, plus a one-point crossover on the phase list.
type UniformCrossover struct {
	probability float64
}

// NewUniformCrossover creates a uniform crossover operator.
func NewUniformCrossover(probability float64) *UniformCrossover {
	return &UniformCrossover{probability: probability}
}

func (c *UniformCrossover) Probability() float64 { return c.probability }

// Crossover produces two offspring by mixing gene groups from both
// parents. Parents are never modified.
func (c *UniformCrossover) Crossover(parent1, parent2 *genome.GameGenome, rng *rand.Rand) (*genome.GameGenome, *genome.GameGenome) {
	child1 := parent1.Clone()
	child2 := parent2.Clone()

	if rng.Float64() < 0.5 {
		child1.Setup.CardsPerPlayer, child2.Setup.CardsPerPlayer =
			child2.Setup.CardsPerPlayer, child1.Setup.CardsPerPlayer
	}
	if rng.Float64() < 0.5 {
		child1.Setup.DealToTableau, child2.Setup.DealToTableau =
			child2.Setup.DealToTableau, child1.Setup.DealToTableau
	}
	if rng.Float64() < 0.5 {
		child1.Setup.StartingChips, child2.Setup.StartingChips =
			child2.Setup.StartingChips, child1.Setup.StartingChips
	}
	if rng.Float64() < 0.5 {
		child1.Setup.WildRanks, child2.Setup.WildRanks =
			child2.Setup.WildRanks, child1.Setup.WildRanks
	}

	if rng.Float64() < 0.5 {
		child1.TurnStructure.MaxTurns, child2.TurnStructure.MaxTurns =
			child2.TurnStructure.MaxTurns, child1.TurnStructure.MaxTurns
	}
	if rng.Float64() < 0.5 {
		child1.TurnStructure.TableauMode, child2.TurnStructure.TableauMode =
			child2.TurnStructure.TableauMode, child1.TurnStructure.TableauMode
	}
	if rng.Float64() < 0.5 {
		child1.TurnStructure.SequenceDirection, child2.TurnStructure.SequenceDirection =
			child2.TurnStructure.SequenceDirection, child1.TurnStructure.SequenceDirection
	}
	if rng.Float64() < 0.5 {
		child1.TurnStructure.IsTrickBased, child2.TurnStructure.IsTrickBased =
			child2.TurnStructure.IsTrickBased, child1.TurnStructure.IsTrickBased
		child1.TurnStructure.TricksPerHand, child2.TurnStructure.TricksPerHand =
			child2.TurnStructure.TricksPerHand, child1.TurnStructure.TricksPerHand
	}

	child1.TurnStructure.Phases, child2.TurnStructure.Phases =
		crossoverPhases(parent1.TurnStructure.Phases, parent2.TurnStructure.Phases, rng)

	if rng.Float64() < 0.5 {
		child1.WinConditions, child2.WinConditions =
			child2.WinConditions, child1.WinConditions
	}
	if rng.Float64() < 0.5 {
		child1.SpecialEffects, child2.SpecialEffects =
			child2.SpecialEffects, child1.SpecialEffects
	}
	if rng.Float64() < 0.5 {
		child1.CardScoring, child2.CardScoring =
			child2.CardScoring, child1.CardScoring
	}
	if rng.Float64() < 0.5 {
		child1.Contract, child2.Contract = child2.Contract, child1.Contract
	}
	if rng.Float64() < 0.5 {
		child1.Teams, child2.Teams = child2.Teams, child1.Teams
	}

	stampChildren(child1, child2, parent1, parent2)
	return child1, child2
}

// SinglePointCrossover swaps one whole gene group per crossover.
type SinglePointCrossover struct {
	probability float64
}

// NewSinglePointCrossover creates a single-point crossover operator.
func NewSinglePointCrossover(probability float64) *SinglePointCrossover {
	return &SinglePointCrossover{probability: probability}
}

func (c *SinglePointCrossover) Probability() float64 { return c.probability }

// Crossover swaps one of the four gene groups between the children.
func (c *SinglePointCrossover) Crossover(parent1, parent2 *genome.GameGenome, rng *rand.Rand) (*genome.GameGenome, *genome.GameGenome) {
	child1 := parent1.Clone()
	child2 := parent2.Clone()

	switch rng.Intn(4) {
	case 0:
		child1.Setup, child2.Setup = child2.Setup, child1.Setup
	case 1:
		child1.TurnStructure, child2.TurnStructure = child2.TurnStructure, child1.TurnStructure
	case 2:
		child1.WinConditions, child2.WinConditions = child2.WinConditions, child1.WinConditions
		child1.CardScoring, child2.CardScoring = child2.CardScoring, child1.CardScoring
		child1.Contract, child2.Contract = child2.Contract, child1.Contract
	case 3:
		child1.SpecialEffects, child2.SpecialEffects = child2.SpecialEffects, child1.SpecialEffects
		child1.Teams, child2.Teams = child2.Teams, child1.Teams
	}

	stampChildren(child1, child2, parent1, parent2)
	return child1, child2
}

// crossoverPhases performs one-point crossover on phase lists. Each
// child keeps at least one phase.
func crossoverPhases(phases1, phases2 []genome.Phase, rng *rand.Rand) ([]genome.Phase, []genome.Phase) {
	if len(phases1) == 0 && len(phases2) == 0 {
		return nil, nil
	}
	if len(phases1) == 0 {
		return clonePhases(phases2), nil
	}
	if len(phases2) == 0 {
		return nil, clonePhases(phases1)
	}

	point1 := rng.Intn(len(phases1) + 1)
	point2 := rng.Intn(len(phases2) + 1)

	child1Phases := make([]genome.Phase, 0, point1+(len(phases2)-point2))
	for i := 0; i < point1; i++ {
		child1Phases = append(child1Phases, genome.ClonePhase(phases1[i]))
	}
	for i := point2; i < len(phases2); i++ {
		child1Phases = append(child1Phases, genome.ClonePhase(phases2[i]))
	}

	child2Phases := make([]genome.Phase, 0, point2+(len(phases1)-point1))
	for i := 0; i < point2; i++ {
		child2Phases = append(child2Phases, genome.ClonePhase(phases2[i]))
	}
	for i := point1; i < len(phases1); i++ {
		child2Phases = append(child2Phases, genome.ClonePhase(phases1[i]))
	}

	if len(child1Phases) == 0 {
		child1Phases = clonePhases(phases1)
	}
	if len(child2Phases) == 0 {
		child2Phases = clonePhases(phases2)
	}
	return child1Phases, child2Phases
}

func clonePhases(phases []genome.Phase) []genome.Phase {
	if phases == nil {
		return nil
	}
	out := make([]genome.Phase, len(phases))
	for i, p := range phases {
		out[i] = genome.ClonePhase(p)
	}
	return out
}

func stampChildren(child1, child2, parent1, parent2 *genome.GameGenome) {
	gen := max(parent1.Generation, parent2.Generation) + 1
	child1.Name = parent1.Name + "-X"
	child2.Name = parent2.Name + "-X"
	child1.Generation = gen
	child2.Generation = gen
}
