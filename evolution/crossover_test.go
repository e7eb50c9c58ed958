package evolution

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/signalnine/deckforge/genome"
)

func TestUniformCrossoverLeavesParentsUntouched(t *testing.T) {
	parent1 := genome.NewCrazyEightsGenome()
	parent2 := genome.NewHeartsGenome()
	snap1 := parent1.Clone()
	snap2 := parent2.Clone()

	op := NewUniformCrossover(0.7)
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		op.Crossover(parent1, parent2, rng)
	}

	if GenomeDistance(parent1, snap1) != 0 || len(parent1.TurnStructure.Phases) != len(snap1.TurnStructure.Phases) {
		t.Error("crossover modified parent1")
	}
	if GenomeDistance(parent2, snap2) != 0 || parent2.TurnStructure.IsTrickBased != snap2.TurnStructure.IsTrickBased {
		t.Error("crossover modified parent2")
	}
}

func TestUniformCrossoverChildrenKeepPhases(t *testing.T) {
	op := NewUniformCrossover(0.7)

	for seed := int64(0); seed < 30; seed++ {
		rng := rand.New(rand.NewSource(seed))
		c1, c2 := op.Crossover(genome.NewWarGenome(), genome.NewCrazyEightsGenome(), rng)
		if len(c1.TurnStructure.Phases) == 0 || len(c2.TurnStructure.Phases) == 0 {
			t.Fatalf("seed %d: child lost all phases", seed)
		}
	}
}

func TestUniformCrossoverStampsChildren(t *testing.T) {
	parent1 := genome.NewWarGenome()
	parent1.Generation = 3
	parent2 := genome.NewHeartsGenome()
	parent2.Generation = 5

	op := NewUniformCrossover(0.7)
	rng := rand.New(rand.NewSource(42))
	c1, c2 := op.Crossover(parent1, parent2, rng)

	if !strings.HasSuffix(c1.Name, "-X") || !strings.HasSuffix(c2.Name, "-X") {
		t.Errorf("children not stamped: %q, %q", c1.Name, c2.Name)
	}
	if c1.Generation != 6 || c2.Generation != 6 {
		t.Errorf("child generation %d/%d, want 6", c1.Generation, c2.Generation)
	}
}

func TestUniformCrossoverChildrenAreRepairable(t *testing.T) {
	op := NewUniformCrossover(0.7)
	seeds := genome.GetSeedGenomes()
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < len(seeds)-1; i++ {
		c1, c2 := op.Crossover(seeds[i], seeds[i+1], rng)
		for _, child := range []*genome.GameGenome{c1, c2} {
			repaired, _ := genome.ValidateAndRepair(child)
			if errs := genome.ValidateGenome(repaired); len(errs) != 0 {
				t.Errorf("%s x %s: child unrepairable: %v", seeds[i].Name, seeds[i+1].Name, errs)
			}
		}
	}
}

func TestSinglePointCrossoverSwapsOneGroup(t *testing.T) {
	parent1 := genome.NewWarGenome()
	parent2 := genome.NewSimplePokerGenome()

	op := NewSinglePointCrossover(0.7)
	if op.Probability() != 0.7 {
		t.Errorf("probability %f", op.Probability())
	}

	swapped := false
	for seed := int64(0); seed < 10 && !swapped; seed++ {
		rng := rand.New(rand.NewSource(seed))
		c1, _ := op.Crossover(parent1, parent2, rng)
		if c1.Setup.StartingChips == parent2.Setup.StartingChips ||
			len(c1.TurnStructure.Phases) == len(parent2.TurnStructure.Phases) ||
			c1.WinConditions[0].Type == parent2.WinConditions[0].Type {
			swapped = true
		}
	}
	if !swapped {
		t.Error("no gene group ever crossed over in 10 seeds")
	}

	if parent1.Setup.StartingChips != 0 {
		t.Error("crossover modified parent1's setup")
	}
}

func TestCrossoverPhasesChildrenNeverEmpty(t *testing.T) {
	phases1 := genome.NewCrazyEightsGenome().TurnStructure.Phases
	phases2 := genome.NewHeartsGenome().TurnStructure.Phases

	for seed := int64(0); seed < 50; seed++ {
		rng := rand.New(rand.NewSource(seed))
		c1, c2 := crossoverPhases(phases1, phases2, rng)
		if len(c1) == 0 || len(c2) == 0 {
			t.Fatalf("seed %d: empty phase list", seed)
		}
	}
}

func TestCrossoverPhasesClonesDeeply(t *testing.T) {
	phases1 := genome.NewCrazyEightsGenome().TurnStructure.Phases
	phases2 := genome.NewHeartsGenome().TurnStructure.Phases
	rng := rand.New(rand.NewSource(1))

	c1, _ := crossoverPhases(phases1, phases2, rng)
	for _, child := range c1 {
		for _, orig := range phases1 {
			if child == orig {
				t.Fatal("child shares a phase pointer with its parent")
			}
		}
		for _, orig := range phases2 {
			if child == orig {
				t.Fatal("child shares a phase pointer with its parent")
			}
		}
	}
}
