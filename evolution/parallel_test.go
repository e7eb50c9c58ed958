package evolution

import (
	"context"
	"testing"

	"github.com/signalnine/deckforge/engine"
	"github.com/signalnine/deckforge/genome"
	"github.com/signalnine/deckforge/simulation"
)

func TestSkillAIForBudget(t *testing.T) {
	cases := []struct {
		iterations int
		want       simulation.AIPlayerType
	}{
		{0, simulation.MCTS100AI},
		{100, simulation.MCTS100AI},
		{499, simulation.MCTS100AI},
		{500, simulation.MCTS500AI},
		{1000, simulation.MCTS1000AI},
		{1999, simulation.MCTS1000AI},
		{2000, simulation.MCTS2000AI},
		{10000, simulation.MCTS2000AI},
	}
	for _, tc := range cases {
		if got := SkillAIForBudget(tc.iterations); got != tc.want {
			t.Errorf("budget %d: got %v, want %v", tc.iterations, got, tc.want)
		}
	}
}

func TestConvertAggregatedStats(t *testing.T) {
	stats := &simulation.AggregatedStats{
		TotalGames:     20,
		Wins:           [engine.MaxPlayers]uint32{12, 6},
		Draws:          2,
		Errors:         1,
		AvgTurns:       45,
		TotalDecisions: 900,
		TotalBets:      30,
		AvgLeadChanges: 2.5,
		ComebackRate:   0.3,
	}

	results := convertAggregatedStats(stats, 2)
	if results.TotalGames != 20 || results.Draws != 2 || results.Errors != 1 {
		t.Errorf("counts not carried: %+v", results)
	}
	if len(results.Wins) != 2 || results.Wins[0] != 12 || results.Wins[1] != 6 {
		t.Errorf("wins not carried: %v", results.Wins)
	}
	if results.AvgTurns != 45 || results.TotalDecisions != 900 || results.TotalBets != 30 {
		t.Errorf("metrics not carried: %+v", results)
	}
	if results.AvgLeadChanges != 2.5 || results.ComebackRate != 0.3 {
		t.Errorf("tension metrics not carried: %+v", results)
	}

	// Nil stats still produce a usable shape.
	empty := convertAggregatedStats(nil, 3)
	if empty.PlayerCount != 3 || empty.TotalGames != 0 {
		t.Errorf("nil stats: %+v", empty)
	}
}

func TestParallelEvaluatorScoresInOrder(t *testing.T) {
	pe := NewParallelEvaluator("balanced", 2)
	defer pe.Close()

	genomes := []*genome.GameGenome{
		genome.NewWarGenome(),
		genome.NewCrazyEightsGenome(),
		genome.NewHeartsGenome(),
	}

	metrics := pe.EvaluatePopulation(genomes, 10, false)
	if len(metrics) != len(genomes) {
		t.Fatalf("got %d metrics for %d genomes", len(metrics), len(genomes))
	}
	for i, m := range metrics {
		if m == nil {
			t.Fatalf("genome %d got no metrics", i)
		}
		if m.TotalFitness < 0 {
			t.Errorf("genome %d: negative fitness %f", i, m.TotalFitness)
		}
	}
}

func TestParallelEvaluatorCachesByBytecode(t *testing.T) {
	pe := NewParallelEvaluator("balanced", 1)
	defer pe.Close()

	g := genome.NewWarGenome()
	first := pe.EvaluatePopulation([]*genome.GameGenome{g}, 10, false)

	// Same rules under a different name hit the cache.
	renamed := genome.NewWarGenome()
	renamed.Name = "War Again"
	second := pe.EvaluatePopulation([]*genome.GameGenome{renamed}, 10, false)

	hits, _ := pe.CacheStats()
	if hits == 0 {
		t.Error("identical bytecode should hit the cache")
	}
	if first[0].TotalFitness != second[0].TotalFitness {
		t.Errorf("cached result diverged: %f vs %f", first[0].TotalFitness, second[0].TotalFitness)
	}
}

func TestParallelEvaluatorRejectsInvalidGenome(t *testing.T) {
	pe := NewParallelEvaluator("balanced", 1)
	defer pe.Close()

	broken := genome.NewWarGenome()
	broken.TurnStructure.Phases = nil
	broken.WinConditions = nil

	metrics := pe.EvaluatePopulation([]*genome.GameGenome{broken}, 10, false)
	if metrics[0].Valid || metrics[0].TotalFitness != 0 {
		t.Errorf("invalid genome scored: %+v", metrics[0])
	}
}

func TestEvaluateIndividualsWritesBack(t *testing.T) {
	pe := NewParallelEvaluator("balanced", 2)
	defer pe.Close()

	individuals := []*Individual{
		{Genome: genome.NewWarGenome()},
		{Genome: genome.NewCrazyEightsGenome()},
	}
	pe.EvaluateIndividuals(individuals, 10, false)

	for i, ind := range individuals {
		if !ind.Evaluated {
			t.Errorf("individual %d not marked evaluated", i)
		}
		if ind.FitnessMetrics == nil {
			t.Errorf("individual %d has no metrics", i)
		}
		if ind.Fitness != ind.FitnessMetrics.TotalFitness {
			t.Errorf("individual %d fitness out of sync", i)
		}
	}
}

func compiledWar(t *testing.T) *engine.Genome {
	t.Helper()
	bytecode, err := genome.Compile(genome.NewWarGenome())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	g, err := engine.ParseGenome(bytecode)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return g
}

func TestMeasureSkillGapStructure(t *testing.T) {
	g := compiledWar(t)

	// A random probe player measures ~zero skill but exercises the
	// seat-swapped batch plumbing.
	result := MeasureSkillGap(context.Background(), g, "seed-war", 4, simulation.RandomAI, 99)

	if result.GenomeID != "seed-war" {
		t.Errorf("genome id %q", result.GenomeID)
	}
	if result.Expected != 0.5 {
		t.Errorf("expected win rate %f, want 0.5 for 2 players", result.Expected)
	}
	if result.TimedOut {
		t.Error("no deadline was set")
	}
	if result.GamesPlayed != 4 {
		t.Errorf("games played %d, want 4", result.GamesPlayed)
	}
	if result.MCTSWinRate < 0 || result.MCTSWinRate > 1 {
		t.Errorf("win rate %f out of range", result.MCTSWinRate)
	}
	if (result.MCTSWinRate != 0 || result.SkillGap != 0) &&
		result.SkillGap != result.MCTSWinRate-result.Expected {
		t.Errorf("gap %f inconsistent with rate %f", result.SkillGap, result.MCTSWinRate)
	}
}

func TestMeasureSkillGapHonorsDeadline(t *testing.T) {
	g := compiledWar(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := MeasureSkillGap(ctx, g, "seed-war", 10, simulation.RandomAI, 7)
	if !result.TimedOut {
		t.Error("cancelled context should mark the result timed out")
	}
	if result.GamesPlayed != 0 {
		t.Errorf("no games should run after cancellation, got %d", result.GamesPlayed)
	}
}
