package fitness

import "github.com/signalnine/deckforge/genome"

// StylePresets maps style names to metric weights. Rules complexity
// carries heavy weight everywhere: games nobody can learn don't get
// played, however interesting the simulator finds them.
var StylePresets = map[string]map[string]float64{
	"balanced": {
		"decision_density":      0.25,
		"skill_vs_luck":         0.20,
		"rules_complexity":      0.18,
		"comeback_potential":    0.12,
		"interaction_frequency": 0.10,
		"tension_curve":         0.08,
		"bluffing_depth":        0.00,
		"betting_engagement":    0.07,
	},
	"bluffing": {
		"rules_complexity":      0.35,
		"decision_density":      0.05,
		"comeback_potential":    0.05,
		"tension_curve":         0.05,
		"interaction_frequency": 0.08,
		"skill_vs_luck":         0.05,
		"bluffing_depth":        0.18,
		"betting_engagement":    0.19,
	},
	"strategic": {
		"rules_complexity":      0.30,
		"decision_density":      0.20,
		"comeback_potential":    0.08,
		"tension_curve":         0.05,
		"interaction_frequency": 0.10,
		"skill_vs_luck":         0.27,
		"bluffing_depth":        0.00,
		"betting_engagement":    0.00,
	},
	"party": {
		"rules_complexity":      0.50,
		"decision_density":      0.04,
		"comeback_potential":    0.12,
		"tension_curve":         0.06,
		"interaction_frequency": 0.14,
		"skill_vs_luck":         0.04,
		"bluffing_depth":        0.00,
		"betting_engagement":    0.10,
	},
	"trick-taking": {
		"rules_complexity":      0.30,
		"decision_density":      0.15,
		"comeback_potential":    0.10,
		"tension_curve":         0.12,
		"interaction_frequency": 0.18,
		"skill_vs_luck":         0.15,
		"bluffing_depth":        0.00,
		"betting_engagement":    0.00,
	},
}

// Evaluator scores genomes with a fixed weight profile.
type Evaluator struct {
	weights map[string]float64
	style   string
}

// NewEvaluator builds an evaluator from a style preset or explicit
// weights (which take precedence). Weights are normalized to sum to 1.
func NewEvaluator(style string, weights map[string]float64) *Evaluator {
	var finalWeights map[string]float64
	finalStyle := style

	if weights != nil {
		finalWeights = copyWeights(weights)
		finalStyle = "custom"
	} else if preset, ok := StylePresets[style]; ok {
		finalWeights = copyWeights(preset)
	} else {
		finalWeights = copyWeights(StylePresets["balanced"])
		finalStyle = "balanced"
	}

	total := 0.0
	for _, w := range finalWeights {
		total += w
	}
	if total > 0 {
		for k := range finalWeights {
			finalWeights[k] /= total
		}
	}

	return &Evaluator{weights: finalWeights, style: finalStyle}
}

// Style returns the active style name.
func (e *Evaluator) Style() string { return e.style }

// Weights returns a copy of the normalized weights.
func (e *Evaluator) Weights() map[string]float64 { return copyWeights(e.weights) }

// Evaluate scores one genome against its simulation results.
func (e *Evaluator) Evaluate(g *genome.GameGenome, results *SimulationResults) *FitnessMetrics {
	return ComputeMetrics(g, results, e.weights, e.style)
}

func copyWeights(w map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}
