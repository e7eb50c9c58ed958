// Package fitness scores simulated genomes. Eight metrics feed a
// weighted sum; a playability gate zeroes the score of genomes whose
// games error out, run forever, or never finish.
package fitness

import (
	"math"

	"github.com/signalnine/deckforge/genome"
)

// SimulationResults is the aggregate input to a fitness evaluation,
// collected over one batch of games.
type SimulationResults struct {
	TotalGames  int
	PlayerCount int
	Wins        []int // indexed by seat
	Draws       int
	Errors      int
	AvgTurns    float64

	TotalDecisions    int
	TotalValidMoves   int
	ForcedDecisions   int
	TotalInteractions int
	TotalActions      int

	// Claim instrumentation.
	TotalClaims       int
	TotalBluffs       int
	TotalChallenges   int
	SuccessfulBluffs  int
	SuccessfulCatches int

	// Betting instrumentation.
	TotalBets     int
	BettingBluffs int
	AllInCount    int
	FoldWins      int
	ShowdownWins  int

	// Tension curve.
	AvgLeadChanges  float64
	DecisiveTurnPct float64
	ClosestMargin   float64
	ComebackRate    float64 // share of decided games won from behind

	// Skill probe: search win rate minus random baseline, when run.
	SkillGap    float64
	HasSkillGap bool
}

// FitnessMetrics is the complete evaluation of one genome.
type FitnessMetrics struct {
	DecisionDensity      float64
	ComebackPotential    float64
	TensionCurve         float64
	InteractionFrequency float64
	RulesComplexity      float64
	SessionLength        float64
	SkillVsLuck          float64
	BluffingDepth        float64
	BettingEngagement    float64
	TotalFitness         float64
	GamesSimulated       int
	// Valid reports an error-free batch; stricter than the playability
	// gate, which tolerates errors up to maxErrorRate.
	Valid bool
}

// Playability thresholds. A genome failing any of them scores zero.
const (
	maxErrorRate        = 0.5
	maxDrawRate         = 0.95
	minDecisionsPerGame = 1.0
	minTurnsPerGame     = 2.0
	maxSessionSeconds   = 60 * 60
	secondsPerTurn      = 2

	// Games that play themselves are heavily penalized rather than
	// gated; a mutation away they may offer real choices.
	maxForcedRate     = 0.95
	forcedPlayPenalty = 0.1
)

// ComputeMetrics scores a genome against its simulation results.
// Unplayable genomes get TotalFitness 0 and Valid false.
func ComputeMetrics(g *genome.GameGenome, results *SimulationResults, weights map[string]float64, style string) *FitnessMetrics {
	if results.TotalGames == 0 ||
		float64(results.Errors) > float64(results.TotalGames)*maxErrorRate {
		return &FitnessMetrics{GamesSimulated: results.TotalGames, Valid: false}
	}
	if float64(results.Draws) > float64(results.TotalGames)*maxDrawRate ||
		float64(results.TotalDecisions) < float64(results.TotalGames)*minDecisionsPerGame ||
		results.AvgTurns < minTurnsPerGame {
		return &FitnessMetrics{GamesSimulated: results.TotalGames, Valid: false}
	}

	sessionLength, sessionOK := computeSessionLength(results)
	if !sessionOK {
		return &FitnessMetrics{GamesSimulated: results.TotalGames, Valid: false}
	}

	decisionDensity := computeDecisionDensity(g, results)
	comebackPotential := computeComebackPotential(results)
	tensionCurve := computeTensionCurve(results)
	interactionFrequency := computeInteractionFrequency(g, results)
	rulesComplexity := ComputeRulesComplexity(g)
	skillVsLuck := computeSkillVsLuck(g, results, comebackPotential, style)
	bluffingDepth := computeBluffingDepth(results)
	bettingEngagement := computeBettingEngagement(results)

	// Tension only counts where there are decisions to feel tense about.
	effectiveTension := tensionCurve * decisionDensity

	totalFitness := weights["decision_density"]*decisionDensity +
		weights["comeback_potential"]*comebackPotential +
		weights["tension_curve"]*effectiveTension +
		weights["interaction_frequency"]*interactionFrequency +
		weights["rules_complexity"]*rulesComplexity +
		weights["skill_vs_luck"]*skillVsLuck +
		weights["bluffing_depth"]*bluffingDepth +
		weights["betting_engagement"]*bettingEngagement

	qualityMultiplier := 1.0
	if comebackPotential < 0.15 {
		qualityMultiplier *= 0.5
	}
	if skillVsLuck < 0.15 {
		qualityMultiplier *= 0.7
	}
	if maxRate := maxWinRate(results); maxRate > 0.80 {
		qualityMultiplier *= 0.6
	}
	if float64(results.ForcedDecisions) > float64(results.TotalDecisions)*maxForcedRate {
		qualityMultiplier *= forcedPlayPenalty
	}
	qualityMultiplier *= 1.0 - coherencePenalty(g)

	totalFitness *= qualityMultiplier

	return &FitnessMetrics{
		DecisionDensity:      decisionDensity,
		ComebackPotential:    comebackPotential,
		TensionCurve:         tensionCurve,
		InteractionFrequency: interactionFrequency,
		RulesComplexity:      rulesComplexity,
		SessionLength:        sessionLength,
		SkillVsLuck:          skillVsLuck,
		BluffingDepth:        bluffingDepth,
		BettingEngagement:    bettingEngagement,
		TotalFitness:         totalFitness,
		GamesSimulated:       results.TotalGames,
		Valid:                results.Errors == 0,
	}
}

func maxWinRate(results *SimulationResults) float64 {
	if results.TotalGames == 0 {
		return 0
	}
	maxWins := 0
	for _, w := range results.Wins {
		if w > maxWins {
			maxWins = w
		}
	}
	return float64(maxWins) / float64(results.TotalGames)
}

func computeDecisionDensity(g *genome.GameGenome, results *SimulationResults) float64 {
	if results.TotalDecisions > 0 {
		avgValidMoves := float64(results.TotalValidMoves) / float64(results.TotalDecisions)
		forcedRatio := float64(results.ForcedDecisions) / float64(results.TotalDecisions)

		choiceScore := math.Min(1.0, (avgValidMoves-1)/6.0)
		return math.Min(1.0, choiceScore*0.6+(1.0-forcedRatio)*0.4)
	}

	// Structural fallback for genomes that never got simulated.
	optionalPhases := 0
	conditions := 0
	for _, p := range g.TurnStructure.Phases {
		switch phase := p.(type) {
		case *genome.DrawPhase:
			if !phase.Mandatory {
				optionalPhases++
			}
			if phase.Condition != nil {
				conditions++
			}
		case *genome.PlayPhase:
			if !phase.Mandatory {
				optionalPhases++
			}
			if phase.ValidPlayCondition != nil {
				conditions++
			}
		}
	}
	return math.Min(1.0,
		math.Min(1.0, float64(len(g.TurnStructure.Phases))/6.0)*0.5+
			math.Min(1.0, float64(optionalPhases)/3.0)*0.3+
			math.Min(1.0, float64(conditions)/3.0)*0.2)
}

func computeComebackPotential(results *SimulationResults) float64 {
	if results.PlayerCount == 0 || results.TotalGames == 0 {
		return 0.0
	}

	expectedRate := 1.0 / float64(results.PlayerCount)
	maxDeviation := 1.0 - expectedRate
	var totalDeviation float64
	for _, wins := range results.Wins {
		actualRate := float64(wins) / float64(results.TotalGames)
		if maxDeviation > 0 {
			totalDeviation += math.Abs(actualRate-expectedRate) / maxDeviation
		}
	}
	balanceScore := 1.0
	if len(results.Wins) > 0 {
		balanceScore = 1.0 - totalDeviation/float64(len(results.Wins))
	}

	// A healthy comeback rate sits near one half: winners should trail
	// at the midpoint sometimes but not always.
	decided := results.TotalGames - results.Draws - results.Errors
	trailingScore := balanceScore
	if decided > 0 && results.ComebackRate > 0 {
		trailingScore = 1.0 - math.Abs(0.5-results.ComebackRate)*2
	}

	return trailingScore*0.6 + balanceScore*0.4
}

func computeTensionCurve(results *SimulationResults) float64 {
	hasLeadTracking := results.AvgLeadChanges > 0

	if results.TotalBets > 0 && !hasLeadTracking {
		decided := math.Max(1, float64(results.TotalGames-results.Draws-results.Errors))
		betsPerGame := float64(results.TotalBets) / decided
		allInRate := float64(results.AllInCount) / decided
		showdownRate := float64(results.ShowdownWins) / decided

		return math.Min(1.0, betsPerGame/3.0)*0.4 +
			math.Min(1.0, allInRate*2)*0.3 +
			math.Min(1.0, showdownRate)*0.3
	}

	if hasLeadTracking {
		expectedChanges := math.Max(1, results.AvgTurns/20.0)
		leadChangeScore := math.Min(1.0, results.AvgLeadChanges/expectedChanges)
		marginScore := 1.0 - results.ClosestMargin
		return leadChangeScore*0.4 + results.DecisiveTurnPct*0.4 + marginScore*0.2
	}

	if results.ClosestMargin > 0 && results.ClosestMargin < 1.0 {
		return (1.0-results.ClosestMargin)*0.5 + results.DecisiveTurnPct*0.5
	}

	turnScore := math.Min(1.0, results.AvgTurns/100.0)
	lengthBonus := math.Min(1.0, math.Max(0.0, (results.AvgTurns-20)/50.0))
	return math.Min(0.6, turnScore*0.6+lengthBonus*0.4)
}

func computeInteractionFrequency(g *genome.GameGenome, results *SimulationResults) float64 {
	if results.TotalActions > 0 {
		return math.Min(1.0, float64(results.TotalInteractions)/float64(results.TotalActions))
	}

	// Structural fallback.
	effectsScore := math.Min(1.0, float64(len(g.SpecialEffects))/3.0)
	var trickScore float64
	if g.TurnStructure.IsTrickBased {
		trickScore = 0.3
	}
	phaseScore := math.Min(0.4, float64(len(g.TurnStructure.Phases))/10.0)
	return math.Min(1.0, effectsScore*0.4+trickScore+phaseScore)
}

// computeSessionLength scores estimated play time; games past an hour
// fail the gate outright.
func computeSessionLength(results *SimulationResults) (float64, bool) {
	estimatedSec := results.AvgTurns * secondsPerTurn
	if estimatedSec > maxSessionSeconds {
		return 0.0, false
	}
	optimalSec := float64(15 * 60)
	if estimatedSec < optimalSec {
		return estimatedSec / optimalSec, true
	}
	return 1.0 - (estimatedSec-optimalSec)/(maxSessionSeconds-optimalSec)*0.5, true
}

func computeSkillVsLuck(g *genome.GameGenome, results *SimulationResults, comebackPotential float64, style string) float64 {
	var skillVsLuck float64
	if results.HasSkillGap {
		// Direct measurement: search beating random is the skill signal.
		skillVsLuck = math.Max(0.0, math.Min(1.0, results.SkillGap*2))
	} else {
		lengthFactor := math.Min(1.0, results.AvgTurns/80.0)
		structural := len(g.TurnStructure.Phases) + len(g.SpecialEffects)
		if g.TurnStructure.IsTrickBased {
			structural++
		}
		complexityFactor := math.Min(1.0, float64(structural)/8.0)
		skillVsLuck = math.Min(1.0, lengthFactor*0.4+comebackPotential*0.3+complexityFactor*0.3)
	}

	if style == "party" {
		skillVsLuck = 1.0 - skillVsLuck
	}
	return skillVsLuck
}

func computeBluffingDepth(results *SimulationResults) float64 {
	if results.TotalClaims > 0 {
		bluffRate := float64(results.TotalBluffs) / float64(results.TotalClaims)
		challengeRate := float64(results.TotalChallenges) / float64(results.TotalClaims)

		bluffScore := clamp01(1.0 - math.Abs(bluffRate-0.6)*2)
		challengeScore := clamp01(1.0 - math.Abs(challengeRate-0.4)*2)

		var balanceScore float64
		if outcomes := results.SuccessfulBluffs + results.SuccessfulCatches; outcomes > 0 {
			bluffSuccessRate := float64(results.SuccessfulBluffs) / float64(outcomes)
			balanceScore = clamp01(1.0 - math.Abs(bluffSuccessRate-0.5)*2)
		}

		return bluffScore*0.3 + challengeScore*0.3 + balanceScore*0.4
	}

	if results.TotalBets > 0 {
		bettingBluffRate := float64(results.BettingBluffs) / float64(results.TotalBets)
		bluffScore := clamp01(1.0 - math.Abs(bettingBluffRate-0.3)*3)

		var foldScore float64
		if wins := results.FoldWins + results.ShowdownWins; wins > 0 {
			foldWinRate := float64(results.FoldWins) / float64(wins)
			foldScore = clamp01(1.0 - math.Abs(foldWinRate-0.35)*3)
		}

		allInRate := float64(results.AllInCount) / float64(results.TotalBets)
		allInScore := clamp01(1.0 - math.Abs(allInRate-0.10)*10)

		return bluffScore*0.35 + foldScore*0.40 + allInScore*0.25
	}

	return 0.0
}

func computeBettingEngagement(results *SimulationResults) float64 {
	if results.TotalBets == 0 {
		return 0.0
	}
	totalGames := float64(results.TotalGames)
	totalWins := 0
	for _, w := range results.Wins {
		totalWins += w
	}

	resolutionScore := math.Min(1.0, float64(totalWins)/totalGames*1.5)

	allInRate := float64(results.AllInCount) / totalGames
	var dramaScore float64
	switch {
	case allInRate < 0.05:
		dramaScore = allInRate / 0.05
	case allInRate <= 0.25:
		dramaScore = 1.0
	default:
		dramaScore = math.Max(0.3, 1.0-(allInRate-0.25)*2)
	}

	betsPerGame := float64(results.TotalBets) / totalGames
	var activityScore float64
	switch {
	case betsPerGame < 2:
		activityScore = betsPerGame / 2
	case betsPerGame <= 20:
		activityScore = 1.0
	default:
		activityScore = math.Max(0.5, 1.0-(betsPerGame-20)/50)
	}

	varianceScore := 0.5
	if totalWins > 0 {
		maxWins := 0
		for _, w := range results.Wins {
			if w > maxWins {
				maxWins = w
			}
		}
		varianceScore = (1.0 - float64(maxWins)/float64(totalWins)) * 2
	}

	showdownScore := 0.5
	if resolved := results.FoldWins + results.ShowdownWins; resolved > 0 {
		showdownRate := float64(results.ShowdownWins) / float64(resolved)
		showdownScore = clamp01(1.0 - math.Abs(showdownRate-0.75)*2)
	}

	return resolutionScore*0.30 + dramaScore*0.20 + activityScore*0.15 +
		varianceScore*0.15 + showdownScore*0.20
}

// coherencePenalty punishes rule combinations that fight each other,
// like a capture-everything tableau paired with an empty-hand win.
func coherencePenalty(g *genome.GameGenome) float64 {
	penalty := 0.0

	winTypes := make(map[genome.WinConditionType]bool)
	for _, wc := range g.WinConditions {
		winTypes[wc.Type] = true
	}

	mode := g.TurnStructure.TableauMode
	if mode == genome.TableauModeWar && winTypes[genome.WinTypeEmptyHand] {
		penalty += 0.30
	}
	if mode == genome.TableauModeMatchRank && winTypes[genome.WinTypeCaptureAll] {
		penalty += 0.20
	}
	if mode == genome.TableauModeSequence && winTypes[genome.WinTypeCaptureAll] {
		penalty += 0.30
	}

	return math.Min(penalty, 0.50)
}

func clamp01(v float64) float64 {
	return math.Max(0.0, math.Min(1.0, v))
}
