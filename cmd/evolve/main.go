// Command evolve runs the genetic search for card game designs.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/signalnine/deckforge/evolution"
	"github.com/signalnine/deckforge/evolution/fitness"
	"github.com/signalnine/deckforge/genome"
)

var version = "dev"

type cli struct {
	Generations        int              `help:"Number of generations to evolve." default:"100"`
	PopulationSize     int              `help:"Population size." default:"50"`
	Style              string           `help:"Fitness style preset." enum:"balanced,bluffing,strategic,party,trick-taking" default:"balanced"`
	GamesPerEval       int              `help:"Games per fitness evaluation." default:"100"`
	MCTSIterations     int              `name:"mcts-iterations" help:"Search budget for the skill probe." default:"100"`
	SkipSkillEval      bool             `help:"Skip the MCTS skill probe (faster, less accurate)."`
	Seed               int64            `help:"Random seed (0 = current time)."`
	OutputDir          string           `help:"Output directory (default output/evolution-TIMESTAMP)." type:"path"`
	Checkpoint         string           `help:"Resume from a checkpoint file." type:"existingfile"`
	CheckpointInterval int              `help:"Auto-save checkpoint every N generations (0 = disabled)." default:"10"`
	SaveTopN           int              `help:"Save the top N genomes." default:"20"`
	Workers            int              `help:"Worker goroutines (0 = one per CPU)."`
	Verbose            bool             `short:"v" help:"Verbose output."`
	Version            kong.VersionFlag `help:"Print version and exit."`
}

func main() {
	var args cli
	kctx := kong.Parse(&args,
		kong.Name("evolve"),
		kong.Description("Evolve playable card game designs with a genetic algorithm."),
		kong.Vars{"version": version},
	)
	kctx.FatalIfErrorf(run(&args))
}

func run(args *cli) error {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "evolve",
	})
	if args.Verbose {
		logger.SetLevel(log.DebugLevel)
	}

	if args.OutputDir == "" {
		args.OutputDir = filepath.Join("output",
			fmt.Sprintf("evolution-%s", time.Now().Format("20060102-150405")))
	}
	if args.Seed == 0 {
		args.Seed = time.Now().UnixNano()
	}

	var eng *evolution.EvolutionEngine
	if args.Checkpoint != "" {
		logger.Info("resuming from checkpoint", "path", args.Checkpoint)
		var err error
		eng, err = evolution.ResumeFromCheckpoint(args.Checkpoint)
		if err != nil {
			return fmt.Errorf("load checkpoint: %w", err)
		}
		eng.Config.MaxGenerations = args.Generations
		eng.Config.NumWorkers = args.Workers
		eng.Config.Verbose = args.Verbose
		logger.Info("resumed", "generation", eng.Population.Generation)
	} else {
		config := &evolution.EvolutionConfig{
			PopulationSize:       args.PopulationSize,
			MaxGenerations:       args.Generations,
			ElitismRate:          0.1,
			CrossoverRate:        0.7,
			TournamentSize:       3,
			SeedRatio:            0.5,
			RandomSeed:           args.Seed,
			FitnessStyle:         args.Style,
			GamesPerEval:         args.GamesPerEval,
			UseMCTS:              !args.SkipSkillEval,
			MCTSIterations:       args.MCTSIterations,
			NumWorkers:           args.Workers,
			Verbose:              args.Verbose,
			PlateauThreshold:     30,
			ImprovementThreshold: 0.01,
			DiversityThreshold:   0.1,
		}
		eng = evolution.NewEvolutionEngine(config)
	}
	defer eng.Close()

	if err := os.MkdirAll(args.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	var checkpointer *evolution.AutoCheckpointer
	if args.CheckpointInterval > 0 {
		cpPath := filepath.Join(args.OutputDir, "checkpoint.json")
		checkpointer = evolution.NewAutoCheckpointer(eng, cpPath, args.CheckpointInterval)
	}

	// SIGINT saves a final checkpoint before exiting.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Warn("interrupted, saving checkpoint")
		if checkpointer != nil {
			if err := checkpointer.SaveFinal(); err != nil {
				logger.Error("checkpoint save failed", "err", err)
			} else {
				logger.Info("checkpoint saved", "path", checkpointer.Path)
			}
		}
		os.Exit(130)
	}()

	logger.Info("starting evolution",
		"population", args.PopulationSize,
		"generations", args.Generations,
		"style", args.Style,
		"games-per-eval", args.GamesPerEval,
		"output", args.OutputDir)

	startTime := time.Now()
	eng.OnGenerationComplete = func(stats evolution.GenerationStats) {
		logger.Info("generation complete",
			"gen", fmt.Sprintf("%d/%d", stats.Generation+1, args.Generations),
			"best", fmt.Sprintf("%.4f", stats.BestFitness),
			"avg", fmt.Sprintf("%.4f", stats.AvgFitness),
			"diversity", fmt.Sprintf("%.4f", stats.Diversity),
			"elapsed", formatDuration(time.Since(startTime)))
		if checkpointer != nil {
			if err := checkpointer.Save(stats.Generation + 1); err != nil {
				logger.Error("checkpoint save failed", "err", err)
			}
		}
	}

	if err := eng.Evolve(); err != nil {
		return fmt.Errorf("evolution failed: %w", err)
	}
	totalTime := time.Since(startTime)

	best := eng.GetBestGenomes(args.SaveTopN)
	logger.Info("saving results", "count", len(best), "dir", args.OutputDir)
	for i, ind := range best {
		filename := fmt.Sprintf("rank%02d_%s.json", i+1, sanitizeFilename(ind.Genome.Name))
		path := filepath.Join(args.OutputDir, filename)
		if err := saveGenome(ind.Genome, ind.Fitness, ind.FitnessMetrics, path); err != nil {
			logger.Error("save failed", "file", filename, "err", err)
			continue
		}
		logger.Debug("saved", "rank", i+1, "name", ind.Genome.Name,
			"fitness", fmt.Sprintf("%.4f", ind.Fitness))
	}

	if checkpointer != nil {
		if err := checkpointer.SaveFinal(); err != nil {
			logger.Error("final checkpoint save failed", "err", err)
		}
	}

	hits, misses := eng.Evaluator.CacheStats()
	logger.Info("evolution complete",
		"time", formatDuration(totalTime),
		"generations", len(eng.StatsHistory),
		"cache-hits", hits,
		"cache-misses", misses)
	if eng.BestEver != nil {
		logger.Info("best genome",
			"name", eng.BestEver.Genome.Name,
			"fitness", fmt.Sprintf("%.4f", eng.BestEver.Fitness))
		if m := eng.BestEver.FitnessMetrics; m != nil {
			logger.Info("best metrics",
				"decision-density", fmt.Sprintf("%.2f", m.DecisionDensity),
				"skill-vs-luck", fmt.Sprintf("%.2f", m.SkillVsLuck),
				"complexity", fmt.Sprintf("%.2f", m.RulesComplexity))
		}
	}
	return nil
}

// genomeOutput is the saved-genome JSON shape.
type genomeOutput struct {
	Genome         *genome.GameGenome `json:"genome"`
	Fitness        float64            `json:"fitness"`
	FitnessMetrics map[string]float64 `json:"fitness_metrics,omitempty"`
}

func saveGenome(g *genome.GameGenome, fit float64, metrics *fitness.FitnessMetrics, path string) error {
	output := genomeOutput{Genome: g, Fitness: fit}
	if metrics != nil {
		output.FitnessMetrics = map[string]float64{
			"decision_density":      metrics.DecisionDensity,
			"comeback_potential":    metrics.ComebackPotential,
			"tension_curve":         metrics.TensionCurve,
			"interaction_frequency": metrics.InteractionFrequency,
			"rules_complexity":      metrics.RulesComplexity,
			"skill_vs_luck":         metrics.SkillVsLuck,
			"bluffing_depth":        metrics.BluffingDepth,
			"betting_engagement":    metrics.BettingEngagement,
			"total_fitness":         metrics.TotalFitness,
		}
	}
	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func sanitizeFilename(name string) string {
	result := make([]byte, 0, len(name))
	for _, c := range name {
		switch {
		case (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '_':
			result = append(result, byte(c))
		case c == ' ':
			result = append(result, '_')
		}
	}
	if len(result) == 0 {
		return "genome"
	}
	return string(result)
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
