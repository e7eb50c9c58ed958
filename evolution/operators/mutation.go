// Package operators provides the genetic mutation operators the
// evolution loop applies to game genomes.
package operators

import (
	"math/rand"

	"github.com/signalnine/deckforge/genome"
)

// MutationOperator mutates a genome. Mutate never modifies its input;
// it clones first and edits the clone.
type MutationOperator interface {
	Mutate(g *genome.GameGenome, rng *rand.Rand) *genome.GameGenome
	Probability() float64
	Name() string
}

// BaseMutation carries the probability and name shared by every
// operator.
type BaseMutation struct {
	probability float64
	name        string
}

func (m *BaseMutation) Probability() float64 { return m.probability }
func (m *BaseMutation) Name() string         { return m.name }

// Registry holds the active operator set.
type Registry struct {
	operators []MutationOperator
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{operators: make([]MutationOperator, 0)}
}

// Register adds an operator.
func (r *Registry) Register(op MutationOperator) {
	r.operators = append(r.operators, op)
}

// Operators returns the registered operators.
func (r *Registry) Operators() []MutationOperator {
	return r.operators
}

// ApplyAll rolls each operator independently against its probability
// and applies the ones that hit.
func (r *Registry) ApplyAll(g *genome.GameGenome, rng *rand.Rand) *genome.GameGenome {
	mutated := g
	for _, op := range r.operators {
		if rng.Float64() < op.Probability() {
			mutated = op.Mutate(mutated, rng)
		}
	}
	return mutated
}

// MutationPipeline wraps a registry with an in-place Apply.
type MutationPipeline struct {
	registry *Registry
}

// NewMutationPipeline wraps a registry.
func NewMutationPipeline(registry *Registry) *MutationPipeline {
	return &MutationPipeline{registry: registry}
}

// Apply mutates the genome in place.
func (p *MutationPipeline) Apply(g *genome.GameGenome, rng *rand.Rand) {
	mutated := p.registry.ApplyAll(g, rng)
	*g = *mutated
}

// NewDefaultPipeline builds the standard operator set.
func NewDefaultPipeline() *MutationPipeline {
	registry := NewRegistry()
	RegisterSetupMutations(registry)
	RegisterPhaseMutations(registry)
	RegisterConditionMutations(registry)
	return NewMutationPipeline(registry)
}

// NewAggressivePipeline raises every probability. The evolution loop
// switches to it when population diversity collapses.
func NewAggressivePipeline() *MutationPipeline {
	registry := NewRegistry()

	registry.Register(NewCardsPerPlayerMutation(0.2))
	registry.Register(NewMaxTurnsMutation(0.1))
	registry.Register(NewStartingChipsMutation(0.1))
	registry.Register(NewDealToTableauMutation(0.1))
	registry.Register(NewTableauModeMutation(0.1))
	registry.Register(NewSequenceDirectionMutation(0.1))
	registry.Register(NewWildRankMutation(0.1))
	registry.Register(NewPlayerCountMutation(0.08))

	registry.Register(NewAddDrawPhaseMutation(0.15))
	registry.Register(NewRemovePhaseMutation(0.15))
	registry.Register(NewModifyPlayPhaseMutation(0.15))
	registry.Register(NewAddBettingPhaseMutation(0.1))
	registry.Register(NewModifyBettingPhaseMutation(0.1))
	registry.Register(NewAddTrickPhaseMutation(0.1))
	registry.Register(NewModifyTrickPhaseMutation(0.1))
	registry.Register(NewAddDiscardPhaseMutation(0.1))
	registry.Register(NewAddClaimPhaseMutation(0.08))
	registry.Register(NewSwapPhaseOrderMutation(0.1))

	registry.Register(NewAddConditionMutation(0.1))
	registry.Register(NewRemoveConditionMutation(0.1))
	registry.Register(NewModifyConditionMutation(0.1))
	registry.Register(NewWinConditionMutation(0.1))
	registry.Register(NewCardScoringMutation(0.1))
	registry.Register(NewSpecialEffectMutation(0.1))

	return NewMutationPipeline(registry)
}
