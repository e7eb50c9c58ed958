// Package evolution runs the generational genetic algorithm over game
// genomes: selection, crossover, mutation, repair, and fitness
// bookkeeping.
package evolution

import (
	"math"
	"sort"

	"github.com/signalnine/deckforge/evolution/fitness"
	"github.com/signalnine/deckforge/genome"
)

// DiversityThreshold marks a converged population.
const DiversityThreshold = 0.1

// Individual pairs a genome with its fitness.
type Individual struct {
	Genome         *genome.GameGenome
	Fitness        float64
	Evaluated      bool
	FitnessMetrics *fitness.FitnessMetrics
}

// Clone deep-copies the individual.
func (ind *Individual) Clone() *Individual {
	clone := &Individual{
		Genome:    ind.Genome.Clone(),
		Fitness:   ind.Fitness,
		Evaluated: ind.Evaluated,
	}
	if ind.FitnessMetrics != nil {
		metricsCopy := *ind.FitnessMetrics
		clone.FitnessMetrics = &metricsCopy
	}
	return clone
}

// Population is one generation of individuals.
type Population struct {
	Individuals []*Individual
	Generation  int
}

// NewPopulation wraps individuals as generation zero.
func NewPopulation(individuals []*Individual) *Population {
	return &Population{Individuals: individuals}
}

// Size returns the population size.
func (p *Population) Size() int { return len(p.Individuals) }

// GetBestIndividual returns the fittest individual.
func (p *Population) GetBestIndividual() *Individual {
	if len(p.Individuals) == 0 {
		return nil
	}
	best := p.Individuals[0]
	for _, ind := range p.Individuals[1:] {
		if ind.Fitness > best.Fitness {
			best = ind
		}
	}
	return best
}

// GetAverageFitness averages over evaluated individuals.
func (p *Population) GetAverageFitness() float64 {
	var sum float64
	var count int
	for _, ind := range p.Individuals {
		if ind.Evaluated {
			sum += ind.Fitness
			count++
		}
	}
	if count == 0 {
		return 0.0
	}
	return sum / float64(count)
}

// GetUnevaluated returns individuals awaiting evaluation.
func (p *Population) GetUnevaluated() []*Individual {
	var out []*Individual
	for _, ind := range p.Individuals {
		if !ind.Evaluated {
			out = append(out, ind)
		}
	}
	return out
}

// SortByFitness returns individuals ordered best first.
func (p *Population) SortByFitness() []*Individual {
	sorted := make([]*Individual, len(p.Individuals))
	copy(sorted, p.Individuals)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Fitness > sorted[j].Fitness
	})
	return sorted
}

// ComputeDiversity returns the mean pairwise genome distance in
// [0, 1]. Small populations compare every pair; larger ones sample
// a fixed stride of pairs so the cost stays bounded.
func (p *Population) ComputeDiversity() float64 {
	n := len(p.Individuals)
	if n < 2 {
		return 0.0
	}

	var total float64
	var pairs int
	if n <= 50 {
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				total += GenomeDistance(p.Individuals[i].Genome, p.Individuals[j].Genome)
				pairs++
			}
		}
	} else {
		for k := 0; k < 100; k++ {
			i := (k * 31) % n
			j := (i + 1 + (k*17)%(n-1)) % n
			total += GenomeDistance(p.Individuals[i].Genome, p.Individuals[j].Genome)
			pairs++
		}
	}
	if pairs == 0 {
		return 0.0
	}
	return total / float64(pairs)
}

// CheckDiversityCrisis reports whether diversity has collapsed.
func (p *Population) CheckDiversityCrisis() bool {
	return p.ComputeDiversity() < DiversityThreshold
}

// GenomeDistance is a structural distance in [0, 1]: 0 = same shape,
// 1 = maximally different. It compares rule structure, not bytecode,
// so cosmetic differences (names, IDs) contribute nothing.
func GenomeDistance(g1, g2 *genome.GameGenome) float64 {
	var distance float64
	var features float64

	phaseDiff := math.Abs(float64(len(g1.TurnStructure.Phases) - len(g2.TurnStructure.Phases)))
	distance += math.Min(1.0, phaseDiff/5.0)
	features++

	// Different phase type sets matter more than counts.
	distance += phaseTypeDistance(g1, g2)
	features++

	effectDiff := math.Abs(float64(len(g1.SpecialEffects) - len(g2.SpecialEffects)))
	distance += math.Min(1.0, effectDiff/3.0)
	features++

	winDiff := math.Abs(float64(len(g1.WinConditions) - len(g2.WinConditions)))
	distance += math.Min(1.0, winDiff/2.0)
	features++
	if len(g1.WinConditions) > 0 && len(g2.WinConditions) > 0 &&
		g1.WinConditions[0].Type != g2.WinConditions[0].Type {
		distance += 1.0
	}
	features++

	turnsDiff := math.Abs(float64(g1.TurnStructure.MaxTurns-g2.TurnStructure.MaxTurns)) / 1000.0
	distance += math.Min(1.0, turnsDiff)
	features++

	cardDiff := math.Abs(float64(g1.Setup.CardsPerPlayer - g2.Setup.CardsPerPlayer))
	distance += math.Min(1.0, cardDiff/26.0)
	features++

	if g1.TurnStructure.TableauMode != g2.TurnStructure.TableauMode {
		distance += 1.0
	}
	features++

	return distance / features
}

func phaseTypeDistance(g1, g2 *genome.GameGenome) float64 {
	var set1, set2 [8]bool
	for _, p := range g1.TurnStructure.Phases {
		set1[p.PhaseType()] = true
	}
	for _, p := range g2.TurnStructure.Phases {
		set2[p.PhaseType()] = true
	}
	union, diff := 0, 0
	for i := range set1 {
		if set1[i] || set2[i] {
			union++
			if set1[i] != set2[i] {
				diff++
			}
		}
	}
	if union == 0 {
		return 0.0
	}
	return float64(diff) / float64(union)
}
