package evolution

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/signalnine/deckforge/evolution/fitness"
	"github.com/signalnine/deckforge/genome"
)

// CheckpointVersion is the checkpoint format version.
const CheckpointVersion = "1.0"

// CheckpointData is the serializable state of a run.
type CheckpointData struct {
	Config       *EvolutionConfig  `json:"config"`
	Generation   int               `json:"generation"`
	Population   []IndividualData  `json:"population"`
	BestEver     *IndividualData   `json:"best_ever,omitempty"`
	StatsHistory []GenerationStats `json:"stats_history"`
	Timestamp    time.Time         `json:"timestamp"`
	RNGSeed      int64             `json:"rng_seed"`
	Version      string            `json:"version"`
}

// IndividualData is a serializable individual.
type IndividualData struct {
	Genome         *genome.GameGenome      `json:"genome"`
	Fitness        float64                 `json:"fitness"`
	Evaluated      bool                    `json:"evaluated"`
	FitnessMetrics *fitness.FitnessMetrics `json:"fitness_metrics,omitempty"`
}

// SaveCheckpoint writes the run state atomically: temp file then
// rename.
func (e *EvolutionEngine) SaveCheckpoint(path string) error {
	if e.Population == nil {
		return fmt.Errorf("no population to save")
	}

	popData := make([]IndividualData, len(e.Population.Individuals))
	for i, ind := range e.Population.Individuals {
		popData[i] = IndividualData{
			Genome:         ind.Genome,
			Fitness:        ind.Fitness,
			Evaluated:      ind.Evaluated,
			FitnessMetrics: ind.FitnessMetrics,
		}
	}

	var bestData *IndividualData
	if e.BestEver != nil {
		bestData = &IndividualData{
			Genome:         e.BestEver.Genome,
			Fitness:        e.BestEver.Fitness,
			Evaluated:      e.BestEver.Evaluated,
			FitnessMetrics: e.BestEver.FitnessMetrics,
		}
	}

	checkpoint := CheckpointData{
		Config:       e.Config,
		Generation:   e.Population.Generation,
		Population:   popData,
		BestEver:     bestData,
		StatsHistory: e.StatsHistory,
		Timestamp:    time.Now(),
		RNGSeed:      e.Config.RandomSeed,
		Version:      CheckpointVersion,
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create checkpoint directory: %w", err)
	}

	data, err := json.MarshalIndent(checkpoint, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("finalize checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint reads a checkpoint file.
func LoadCheckpoint(path string) (*CheckpointData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}
	var checkpoint CheckpointData
	if err := json.Unmarshal(data, &checkpoint); err != nil {
		return nil, fmt.Errorf("unmarshal checkpoint: %w", err)
	}
	return &checkpoint, nil
}

// RestoreFromCheckpoint loads population and history into the engine.
func (e *EvolutionEngine) RestoreFromCheckpoint(checkpoint *CheckpointData) error {
	if checkpoint == nil {
		return fmt.Errorf("nil checkpoint")
	}

	if checkpoint.Config != nil {
		e.Config.PopulationSize = checkpoint.Config.PopulationSize
		e.Config.MaxGenerations = checkpoint.Config.MaxGenerations
		e.Config.ElitismRate = checkpoint.Config.ElitismRate
		e.Config.CrossoverRate = checkpoint.Config.CrossoverRate
		e.Config.TournamentSize = checkpoint.Config.TournamentSize
		e.Config.PlateauThreshold = checkpoint.Config.PlateauThreshold
		e.Config.ImprovementThreshold = checkpoint.Config.ImprovementThreshold
		e.Config.DiversityThreshold = checkpoint.Config.DiversityThreshold
		e.Config.FitnessStyle = checkpoint.Config.FitnessStyle
		e.Config.GamesPerEval = checkpoint.Config.GamesPerEval
		e.Config.UseMCTS = checkpoint.Config.UseMCTS
	}

	individuals := make([]*Individual, len(checkpoint.Population))
	for i, data := range checkpoint.Population {
		individuals[i] = &Individual{
			Genome:         data.Genome,
			Fitness:        data.Fitness,
			Evaluated:      data.Evaluated,
			FitnessMetrics: data.FitnessMetrics,
		}
	}
	e.Population = NewPopulation(individuals)
	e.Population.Generation = checkpoint.Generation

	if checkpoint.BestEver != nil {
		e.BestEver = &Individual{
			Genome:         checkpoint.BestEver.Genome,
			Fitness:        checkpoint.BestEver.Fitness,
			Evaluated:      checkpoint.BestEver.Evaluated,
			FitnessMetrics: checkpoint.BestEver.FitnessMetrics,
		}
	}
	e.StatsHistory = checkpoint.StatsHistory
	return nil
}

// ResumeFromCheckpoint builds an engine from a checkpoint file.
func ResumeFromCheckpoint(path string) (*EvolutionEngine, error) {
	checkpoint, err := LoadCheckpoint(path)
	if err != nil {
		return nil, err
	}
	engine := NewEvolutionEngine(checkpoint.Config)
	if err := engine.RestoreFromCheckpoint(checkpoint); err != nil {
		engine.Close()
		return nil, err
	}
	return engine, nil
}

// AutoCheckpointer saves the run every N generations.
type AutoCheckpointer struct {
	Engine    *EvolutionEngine
	Path      string
	Interval  int
	LastSaved int
}

// NewAutoCheckpointer creates an auto-checkpointer.
func NewAutoCheckpointer(engine *EvolutionEngine, path string, interval int) *AutoCheckpointer {
	return &AutoCheckpointer{
		Engine:    engine,
		Path:      path,
		Interval:  interval,
		LastSaved: -1,
	}
}

// ShouldSave reports whether this generation hits a save boundary.
func (ac *AutoCheckpointer) ShouldSave(generation int) bool {
	if ac.Interval <= 0 || generation == 0 {
		return false
	}
	return generation > ac.LastSaved && generation%ac.Interval == 0
}

// Save checkpoints if the generation is on a boundary.
func (ac *AutoCheckpointer) Save(generation int) error {
	if !ac.ShouldSave(generation) {
		return nil
	}
	if err := ac.Engine.SaveCheckpoint(ac.Path); err != nil {
		return err
	}
	ac.LastSaved = generation
	return nil
}

// SaveFinal checkpoints unconditionally.
func (ac *AutoCheckpointer) SaveFinal() error {
	return ac.Engine.SaveCheckpoint(ac.Path)
}
