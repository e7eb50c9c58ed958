package evolution

import (
	"math/rand"
	"sort"
)

// TournamentSelection picks the best of k randomly sampled
// individuals.
func TournamentSelection(pop *Population, tournamentSize int, rng *rand.Rand) *Individual {
	if len(pop.Individuals) == 0 {
		return nil
	}
	if tournamentSize > len(pop.Individuals) {
		tournamentSize = len(pop.Individuals)
	}

	perm := rng.Perm(len(pop.Individuals))
	best := pop.Individuals[perm[0]]
	for _, idx := range perm[1:tournamentSize] {
		if pop.Individuals[idx].Fitness > best.Fitness {
			best = pop.Individuals[idx]
		}
	}
	return best
}

// SelectElite returns the top n individuals by fitness.
func SelectElite(pop *Population, n int) []*Individual {
	if n <= 0 {
		return nil
	}
	sorted := pop.SortByFitness()
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// SelectEliteByRate returns the top fraction of the population,
// keeping at least one.
func SelectEliteByRate(pop *Population, rate float64) []*Individual {
	n := int(float64(len(pop.Individuals)) * rate)
	if n < 1 {
		n = 1
	}
	return SelectElite(pop, n)
}

// RouletteWheelSelection samples proportionally to fitness. Falls back
// to uniform when total fitness is zero.
func RouletteWheelSelection(pop *Population, rng *rand.Rand) *Individual {
	if len(pop.Individuals) == 0 {
		return nil
	}
	var total float64
	for _, ind := range pop.Individuals {
		if ind.Fitness > 0 {
			total += ind.Fitness
		}
	}
	if total <= 0 {
		return pop.Individuals[rng.Intn(len(pop.Individuals))]
	}
	target := rng.Float64() * total
	var cumulative float64
	for _, ind := range pop.Individuals {
		if ind.Fitness > 0 {
			cumulative += ind.Fitness
			if cumulative >= target {
				return ind
			}
		}
	}
	return pop.Individuals[len(pop.Individuals)-1]
}

// RankSelection samples proportionally to fitness rank rather than
// raw fitness, which dampens the pull of outlier individuals.
func RankSelection(pop *Population, rng *rand.Rand) *Individual {
	n := len(pop.Individuals)
	if n == 0 {
		return nil
	}
	sorted := pop.SortByFitness()
	// Rank weights: best gets n, worst gets 1.
	total := n * (n + 1) / 2
	target := rng.Intn(total)
	cumulative := 0
	for i, ind := range sorted {
		cumulative += n - i
		if cumulative > target {
			return ind
		}
	}
	return sorted[n-1]
}

// TruncationSelection picks uniformly from the top fraction.
func TruncationSelection(pop *Population, topFraction float64, rng *rand.Rand) *Individual {
	if len(pop.Individuals) == 0 {
		return nil
	}
	cutoff := int(float64(len(pop.Individuals)) * topFraction)
	if cutoff < 1 {
		cutoff = 1
	}
	sorted := pop.SortByFitness()
	return sorted[rng.Intn(cutoff)]
}

// SelectDiverse greedily picks n individuals maximizing the minimum
// pairwise genome distance, seeded with the fittest.
func SelectDiverse(pop *Population, n int) []*Individual {
	if n <= 0 || len(pop.Individuals) == 0 {
		return nil
	}
	if n >= len(pop.Individuals) {
		out := make([]*Individual, len(pop.Individuals))
		copy(out, pop.Individuals)
		return out
	}

	sorted := pop.SortByFitness()
	selected := []*Individual{sorted[0]}
	remaining := make([]*Individual, len(sorted)-1)
	copy(remaining, sorted[1:])

	for len(selected) < n && len(remaining) > 0 {
		bestIdx := 0
		bestMinDist := -1.0
		for i, cand := range remaining {
			minDist := 2.0
			for _, sel := range selected {
				d := GenomeDistance(cand.Genome, sel.Genome)
				if d < minDist {
					minDist = d
				}
			}
			if minDist > bestMinDist {
				bestMinDist = minDist
				bestIdx = i
			}
		}
		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	sort.SliceStable(selected, func(i, j int) bool {
		return selected[i].Fitness > selected[j].Fitness
	})
	return selected
}
