package evolution

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/signalnine/deckforge/evolution/operators"
	"github.com/signalnine/deckforge/genome"
)

// EvolutionConfig holds the knobs for a run.
type EvolutionConfig struct {
	PopulationSize       int     `json:"population_size"`
	MaxGenerations       int     `json:"max_generations"`
	ElitismRate          float64 `json:"elitism_rate"`
	CrossoverRate        float64 `json:"crossover_rate"`
	TournamentSize       int     `json:"tournament_size"`
	PlateauThreshold     int     `json:"plateau_threshold"`      // generations without improvement (0 = disabled)
	ImprovementThreshold float64 `json:"improvement_threshold"`  // relative gain below this counts as plateau
	DiversityThreshold   float64 `json:"diversity_threshold"`    // below this, mutation turns aggressive
	SeedRatio            float64 `json:"seed_ratio"`             // share of known games in generation zero
	RandomSeed           int64   `json:"random_seed"`            // 0 = time-based
	FitnessStyle         string  `json:"fitness_style"`
	NumWorkers           int     `json:"num_workers"` // 0 = one per CPU
	GamesPerEval         int     `json:"games_per_eval"`
	UseMCTS              bool    `json:"use_mcts"`
	MCTSIterations       int     `json:"mcts_iterations"` // skill probe search budget
	Verbose              bool    `json:"verbose"`
}

// DefaultConfig returns the standard run configuration.
func DefaultConfig() *EvolutionConfig {
	return &EvolutionConfig{
		PopulationSize:       100,
		MaxGenerations:       100,
		ElitismRate:          0.1,
		CrossoverRate:        0.7,
		TournamentSize:       3,
		PlateauThreshold:     30,
		ImprovementThreshold: 0.01,
		DiversityThreshold:   DiversityThreshold,
		SeedRatio:            0.7,
		FitnessStyle:         "balanced",
		GamesPerEval:         100,
		MCTSIterations:       100,
	}
}

// GenerationStats summarizes one generation.
type GenerationStats struct {
	Generation  int       `json:"generation"`
	BestFitness float64   `json:"best_fitness"`
	AvgFitness  float64   `json:"avg_fitness"`
	Diversity   float64   `json:"diversity"`
	Evaluations int       `json:"evaluations"`
	Timestamp   time.Time `json:"timestamp"`
}

// EvolutionEngine runs the generational loop.
type EvolutionEngine struct {
	Config           *EvolutionConfig
	Population       *Population
	StatsHistory     []GenerationStats
	BestEver         *Individual
	Rng              *rand.Rand
	Evaluator        *ParallelEvaluator
	MutationPipeline *operators.MutationPipeline
	Crossover        *UniformCrossover
	UseAggressive    bool
	Logger           *log.Logger

	// OnGenerationComplete fires after each generation's stats are
	// recorded.
	OnGenerationComplete func(stats GenerationStats)
}

// NewEvolutionEngine creates an engine from config; nil config means
// defaults.
func NewEvolutionEngine(config *EvolutionConfig) *EvolutionEngine {
	if config == nil {
		config = DefaultConfig()
	}

	seed := config.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	numWorkers := config.NumWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	logger := log.New(io.Discard)
	if config.Verbose {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "evolve",
		})
	}

	evaluator := NewParallelEvaluator(config.FitnessStyle, numWorkers)
	if config.MCTSIterations > 0 {
		evaluator.SkillAI = SkillAIForBudget(config.MCTSIterations)
	}

	return &EvolutionEngine{
		Config:           config,
		Rng:              rng,
		Evaluator:        evaluator,
		MutationPipeline: operators.NewDefaultPipeline(),
		Crossover:        NewUniformCrossover(config.CrossoverRate),
		StatsHistory:     make([]GenerationStats, 0, config.MaxGenerations),
		Logger:           logger,
	}
}

// Close releases resources.
func (e *EvolutionEngine) Close() {
	if e.Evaluator != nil {
		e.Evaluator.Close()
	}
}

// InitializePopulation builds generation zero from known games plus
// mutated copies of them.
func (e *EvolutionEngine) InitializePopulation() error {
	seedGenomes := genome.GetSeedGenomes()
	if len(seedGenomes) == 0 {
		return fmt.Errorf("no seed genomes available")
	}

	numSeeds := int(float64(e.Config.PopulationSize) * e.Config.SeedRatio)
	if numSeeds > len(seedGenomes) {
		numSeeds = len(seedGenomes)
	}

	individuals := make([]*Individual, 0, e.Config.PopulationSize)
	for i := 0; i < numSeeds; i++ {
		individuals = append(individuals, &Individual{
			Genome: seedGenomes[i%len(seedGenomes)].Clone(),
		})
	}

	for len(individuals) < e.Config.PopulationSize {
		mutant := seedGenomes[e.Rng.Intn(len(seedGenomes))].Clone()
		e.MutationPipeline.Apply(mutant, e.Rng)
		repaired, _ := genome.ValidateAndRepair(mutant)
		individuals = append(individuals, &Individual{Genome: repaired})
	}

	e.Population = NewPopulation(individuals)
	e.Logger.Info("population initialized",
		"size", len(individuals), "seeds", numSeeds, "mutants", len(individuals)-numSeeds)
	return nil
}

// EvaluatePopulation scores every unevaluated individual.
func (e *EvolutionEngine) EvaluatePopulation() {
	if e.Population == nil {
		return
	}
	unevaluated := e.Population.GetUnevaluated()
	if len(unevaluated) == 0 {
		return
	}
	e.Logger.Info("evaluating", "count", len(unevaluated))
	e.Evaluator.EvaluateIndividuals(unevaluated, e.Config.GamesPerEval, e.Config.UseMCTS)
}

// CreateOffspring builds the next generation: elites carried over,
// the rest bred by tournament selection, crossover, mutation, and
// repair.
func (e *EvolutionEngine) CreateOffspring() []*Individual {
	offspring := make([]*Individual, 0, e.Config.PopulationSize)

	nElite := int(float64(e.Config.PopulationSize) * e.Config.ElitismRate)
	for _, ind := range SelectElite(e.Population, nElite) {
		offspring = append(offspring, ind.Clone())
	}

	for len(offspring) < e.Config.PopulationSize {
		parent1 := TournamentSelection(e.Population, e.Config.TournamentSize, e.Rng)
		parent2 := TournamentSelection(e.Population, e.Config.TournamentSize, e.Rng)

		var child1, child2 *genome.GameGenome
		if e.Rng.Float64() < e.Crossover.Probability() {
			child1, child2 = e.Crossover.Crossover(parent1.Genome, parent2.Genome, e.Rng)
		} else {
			child1 = parent1.Genome.Clone()
			child2 = parent2.Genome.Clone()
		}

		e.MutationPipeline.Apply(child1, e.Rng)
		e.MutationPipeline.Apply(child2, e.Rng)
		child1, _ = genome.ValidateAndRepair(child1)
		child2, _ = genome.ValidateAndRepair(child2)

		offspring = append(offspring, &Individual{Genome: child1})
		if len(offspring) < e.Config.PopulationSize {
			offspring = append(offspring, &Individual{Genome: child2})
		}
	}

	return offspring[:e.Config.PopulationSize]
}

// CheckPlateau reports whether best fitness has stalled over the
// configured window.
func (e *EvolutionEngine) CheckPlateau() bool {
	if e.Config.PlateauThreshold <= 0 {
		return false
	}
	if len(e.StatsHistory) < e.Config.PlateauThreshold {
		return false
	}

	recent := e.StatsHistory[len(e.StatsHistory)-e.Config.PlateauThreshold:]
	baseline := recent[0].BestFitness
	best := baseline
	for _, s := range recent {
		if s.BestFitness > best {
			best = s.BestFitness
		}
	}
	if baseline == 0 {
		return false
	}
	return (best-baseline)/baseline < e.Config.ImprovementThreshold
}

// Evolve runs the full loop until MaxGenerations or a plateau.
func (e *EvolutionEngine) Evolve() error {
	if e.Population == nil {
		if err := e.InitializePopulation(); err != nil {
			return err
		}
	}
	e.EvaluatePopulation()

	for generation := 0; generation < e.Config.MaxGenerations; generation++ {
		best := e.Population.GetBestIndividual()
		avgFitness := e.Population.GetAverageFitness()
		diversity := e.Population.ComputeDiversity()

		if e.BestEver == nil || best.Fitness > e.BestEver.Fitness {
			e.BestEver = best.Clone()
			e.Logger.Info("new best", "fitness", fmt.Sprintf("%.4f", best.Fitness), "name", best.Genome.Name)
		}

		stats := GenerationStats{
			Generation:  generation,
			BestFitness: best.Fitness,
			AvgFitness:  avgFitness,
			Diversity:   diversity,
			Evaluations: len(e.Population.Individuals),
			Timestamp:   time.Now(),
		}
		e.StatsHistory = append(e.StatsHistory, stats)
		if e.OnGenerationComplete != nil {
			e.OnGenerationComplete(stats)
		}

		e.Logger.Info("generation",
			"n", generation+1, "of", e.Config.MaxGenerations,
			"best", fmt.Sprintf("%.4f", best.Fitness),
			"avg", fmt.Sprintf("%.4f", avgFitness),
			"diversity", fmt.Sprintf("%.4f", diversity),
			"aggressive", e.UseAggressive)

		// Diversity collapse switches to aggressive mutation until the
		// population spreads back out.
		if diversity < e.Config.DiversityThreshold {
			if !e.UseAggressive {
				e.Logger.Warn("low diversity, switching to aggressive mutation", "diversity", fmt.Sprintf("%.4f", diversity))
				e.UseAggressive = true
				e.MutationPipeline = operators.NewAggressivePipeline()
				e.injectFreshSeeds(0.1)
			}
		} else if diversity > e.Config.DiversityThreshold*1.5 && e.UseAggressive {
			e.Logger.Info("diversity recovered", "diversity", fmt.Sprintf("%.4f", diversity))
			e.UseAggressive = false
			e.MutationPipeline = operators.NewDefaultPipeline()
		}

		if e.CheckPlateau() {
			e.Logger.Info("stopping on plateau", "window", e.Config.PlateauThreshold)
			break
		}

		offspring := e.CreateOffspring()
		e.Population = NewPopulation(offspring)
		e.Population.Generation = generation + 1
		e.EvaluatePopulation()
	}

	if e.BestEver != nil {
		e.Logger.Info("evolution complete", "best", fmt.Sprintf("%.4f", e.BestEver.Fitness))
	}
	return nil
}

// injectFreshSeeds replaces the worst fraction of the population with
// mutated copies of the seed catalog.
func (e *EvolutionEngine) injectFreshSeeds(fraction float64) {
	seedGenomes := genome.GetSeedGenomes()
	if len(seedGenomes) == 0 || e.Population == nil {
		return
	}
	n := int(float64(len(e.Population.Individuals)) * fraction)
	if n < 1 {
		n = 1
	}

	sorted := e.Population.SortByFitness()
	worst := sorted[len(sorted)-n:]
	replace := make(map[*Individual]bool, n)
	for _, ind := range worst {
		replace[ind] = true
	}
	for i, ind := range e.Population.Individuals {
		if !replace[ind] {
			continue
		}
		mutant := seedGenomes[e.Rng.Intn(len(seedGenomes))].Clone()
		e.MutationPipeline.Apply(mutant, e.Rng)
		repaired, _ := genome.ValidateAndRepair(mutant)
		e.Population.Individuals[i] = &Individual{Genome: repaired}
	}
	e.EvaluatePopulation()
	e.Logger.Info("injected fresh seeds", "count", n)
}

// GetBestGenomes returns the top n unique individuals, best ever
// first.
func (e *EvolutionEngine) GetBestGenomes(n int) []*Individual {
	if e.Population == nil {
		return nil
	}

	seen := make(map[string]bool)
	unique := make([]*Individual, 0, n)
	if e.BestEver != nil {
		seen[e.BestEver.Genome.Name] = true
		unique = append(unique, e.BestEver)
	}
	for _, ind := range e.Population.SortByFitness() {
		if seen[ind.Genome.Name] {
			continue
		}
		seen[ind.Genome.Name] = true
		unique = append(unique, ind)
		if len(unique) >= n {
			break
		}
	}
	return unique
}

// GetStats returns the per-generation history.
func (e *EvolutionEngine) GetStats() []GenerationStats {
	return e.StatsHistory
}
