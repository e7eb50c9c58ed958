package evolution

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/signalnine/deckforge/engine"
	"github.com/signalnine/deckforge/evolution/fitness"
	"github.com/signalnine/deckforge/genome"
	"github.com/signalnine/deckforge/simulation"
)

// AI type aliases for callers that only import evolution.
const (
	AITypeRandom   = simulation.RandomAI
	AITypeGreedy   = simulation.GreedyAI
	AITypeMCTS100  = simulation.MCTS100AI
	AITypeMCTS500  = simulation.MCTS500AI
	AITypeMCTS1000 = simulation.MCTS1000AI
	AITypeMCTS2000 = simulation.MCTS2000AI
)

const (
	// ScreenGames is the cheap first-pass batch size. Genomes that
	// score below ScreenThreshold there never get a full evaluation.
	ScreenGames     = 10
	ScreenThreshold = 0.2

	// SkillProbeGames and SkillProbeTimeout bound the MCTS-vs-random
	// probe run during full evaluation.
	SkillProbeGames   = 20
	SkillProbeTimeout = 30 * time.Second
)

// ParallelEvaluator fans genome evaluations out over a worker pool.
// Fitness results are cached by bytecode hash, so an unchanged genome
// costs one map lookup in later generations.
type ParallelEvaluator struct {
	NumWorkers int
	Evaluator  *fitness.Evaluator
	Style      string
	Cache      *fitness.Cache
	SkillAI    simulation.AIPlayerType
}

// SkillAIForBudget maps an iteration budget to the nearest search
// player tier.
func SkillAIForBudget(iterations int) simulation.AIPlayerType {
	switch {
	case iterations >= 2000:
		return simulation.MCTS2000AI
	case iterations >= 1000:
		return simulation.MCTS1000AI
	case iterations >= 500:
		return simulation.MCTS500AI
	default:
		return simulation.MCTS100AI
	}
}

// NewParallelEvaluator creates an evaluator with the given style
// preset and worker count (0 = one per CPU).
func NewParallelEvaluator(style string, numWorkers int) *ParallelEvaluator {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &ParallelEvaluator{
		NumWorkers: numWorkers,
		Evaluator:  fitness.NewEvaluator(style, nil),
		Style:      style,
		Cache:      fitness.NewCache(fitness.DefaultCacheSize),
		SkillAI:    simulation.MCTS100AI,
	}
}

// EvaluatePopulation evaluates all genomes and returns metrics in
// input order.
func (pe *ParallelEvaluator) EvaluatePopulation(genomes []*genome.GameGenome, numSimulations int, useMCTS bool) []*fitness.FitnessMetrics {
	if len(genomes) == 0 {
		return nil
	}

	metrics := make([]*fitness.FitnessMetrics, len(genomes))
	jobs := make(chan int, len(genomes))
	for i := range genomes {
		jobs <- i
	}
	close(jobs)

	var eg errgroup.Group
	for w := 0; w < pe.NumWorkers; w++ {
		eg.Go(func() error {
			for i := range jobs {
				metrics[i] = pe.evaluateGenome(genomes[i], numSimulations, useMCTS)
			}
			return nil
		})
	}
	_ = eg.Wait()
	return metrics
}

// EvaluateIndividuals evaluates individuals in parallel and writes the
// scores back onto them.
func (pe *ParallelEvaluator) EvaluateIndividuals(individuals []*Individual, numSimulations int, useMCTS bool) {
	if len(individuals) == 0 {
		return
	}
	genomes := make([]*genome.GameGenome, len(individuals))
	for i, ind := range individuals {
		genomes[i] = ind.Genome
	}
	metrics := pe.EvaluatePopulation(genomes, numSimulations, useMCTS)
	for i, m := range metrics {
		individuals[i].Fitness = m.TotalFitness
		individuals[i].FitnessMetrics = m
		individuals[i].Evaluated = true
	}
}

// evaluateGenome runs the two-phase evaluation for one genome: a
// small screening batch first, then the full batch only for genomes
// that clear the screen.
func (pe *ParallelEvaluator) evaluateGenome(g *genome.GameGenome, numSimulations int, useMCTS bool) *fitness.FitnessMetrics {
	if !genome.IsValid(g) {
		return &fitness.FitnessMetrics{Valid: false}
	}

	bytecode, err := genome.Compile(g)
	if err != nil {
		return &fitness.FitnessMetrics{Valid: false}
	}
	hash := genome.BytecodeHash(bytecode)
	if cached, ok := pe.Cache.Get(hash); ok {
		return cached
	}

	compiled, err := engine.ParseGenome(bytecode)
	if err != nil {
		return &fitness.FitnessMetrics{Valid: false}
	}

	seed := hash | 1

	// Phase 1: quick random-policy screen.
	screen := simulation.RunBatch(compiled, ScreenGames, simulation.RandomAI, seed)
	screenMetrics := pe.Evaluator.Evaluate(g, convertAggregatedStats(&screen, g.Players()))
	if screenMetrics.TotalFitness < ScreenThreshold {
		pe.Cache.Put(hash, screenMetrics)
		return screenMetrics
	}

	// Phase 2: full batch, optionally with a skill probe.
	aiType := simulation.RandomAI
	if useMCTS {
		aiType = simulation.GreedyAI
	}
	stats := simulation.RunBatch(compiled, numSimulations, aiType, seed+1)
	results := convertAggregatedStats(&stats, g.Players())

	if useMCTS {
		ctx, cancel := context.WithTimeout(context.Background(), SkillProbeTimeout)
		probe := MeasureSkillGap(ctx, compiled, g.GenomeID, SkillProbeGames, pe.SkillAI, seed+2)
		cancel()
		if probe.GamesPlayed > 0 && !probe.TimedOut {
			results.SkillGap = probe.SkillGap
			results.HasSkillGap = true
		}
	}

	metrics := pe.Evaluator.Evaluate(g, results)
	pe.Cache.Put(hash, metrics)
	return metrics
}

// convertAggregatedStats maps batch statistics into the shape the
// fitness functions consume.
func convertAggregatedStats(stats *simulation.AggregatedStats, playerCount int) *fitness.SimulationResults {
	if stats == nil {
		return &fitness.SimulationResults{PlayerCount: playerCount}
	}

	wins := make([]int, playerCount)
	for i := 0; i < playerCount && i < len(stats.Wins); i++ {
		wins[i] = int(stats.Wins[i])
	}

	return &fitness.SimulationResults{
		TotalGames:  int(stats.TotalGames),
		PlayerCount: playerCount,
		Wins:        wins,
		Draws:       int(stats.Draws),
		Errors:      int(stats.Errors),
		AvgTurns:    float64(stats.AvgTurns),

		TotalDecisions:    int(stats.TotalDecisions),
		TotalValidMoves:   int(stats.TotalValidMoves),
		ForcedDecisions:   int(stats.ForcedDecisions),
		TotalInteractions: int(stats.TotalInteractions),
		TotalActions:      int(stats.TotalActions),

		TotalClaims:       int(stats.TotalClaims),
		TotalBluffs:       int(stats.TotalBluffs),
		TotalChallenges:   int(stats.TotalChallenges),
		SuccessfulBluffs:  int(stats.SuccessfulBluffs),
		SuccessfulCatches: int(stats.SuccessfulCatches),

		TotalBets:     int(stats.TotalBets),
		BettingBluffs: int(stats.BettingBluffs),
		AllInCount:    int(stats.AllInCount),
		FoldWins:      int(stats.FoldWins),
		ShowdownWins:  int(stats.ShowdownWins),

		AvgLeadChanges:  stats.AvgLeadChanges,
		DecisiveTurnPct: stats.AvgDecisivePct,
		ClosestMargin:   stats.AvgClosestMargin,
		ComebackRate:    stats.ComebackRate,
	}
}

// CacheStats exposes fitness cache hit counters.
func (pe *ParallelEvaluator) CacheStats() (hits, misses uint64) {
	return pe.Cache.Stats()
}

// Close releases evaluator resources.
func (pe *ParallelEvaluator) Close() {
	if pe.Cache != nil {
		pe.Cache.Clear()
	}
}
