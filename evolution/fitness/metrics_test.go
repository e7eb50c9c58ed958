package fitness

import (
	"testing"

	"github.com/signalnine/deckforge/genome"
)

// healthyResults models a balanced, lively 100-game batch.
func healthyResults() *SimulationResults {
	return &SimulationResults{
		TotalGames:  100,
		PlayerCount: 2,
		Wins:        []int{48, 47},
		Draws:       5,
		AvgTurns:    60,

		TotalDecisions:    4000,
		TotalValidMoves:   16000,
		ForcedDecisions:   400,
		TotalInteractions: 1500,
		TotalActions:      4000,

		AvgLeadChanges:  4,
		DecisiveTurnPct: 0.7,
		ClosestMargin:   0.1,
		ComebackRate:    0.4,
	}
}

func TestComputeMetricsHealthyGame(t *testing.T) {
	g := genome.NewCrazyEightsGenome()
	m := ComputeMetrics(g, healthyResults(), StylePresets["balanced"], "balanced")

	if !m.Valid {
		t.Fatal("healthy results should be valid")
	}
	if m.TotalFitness <= 0 {
		t.Errorf("fitness=%f", m.TotalFitness)
	}
	if m.DecisionDensity <= 0 || m.DecisionDensity > 1 {
		t.Errorf("decision density out of range: %f", m.DecisionDensity)
	}
	if m.GamesSimulated != 100 {
		t.Errorf("games=%d", m.GamesSimulated)
	}
}

func TestComputeMetricsGateZeroGames(t *testing.T) {
	g := genome.NewWarGenome()
	m := ComputeMetrics(g, &SimulationResults{}, StylePresets["balanced"], "balanced")
	if m.Valid || m.TotalFitness != 0 {
		t.Errorf("zero games must gate out: valid=%v fitness=%f", m.Valid, m.TotalFitness)
	}
}

func TestComputeMetricsGateErrorRate(t *testing.T) {
	g := genome.NewWarGenome()
	r := healthyResults()
	r.Errors = 60
	m := ComputeMetrics(g, r, StylePresets["balanced"], "balanced")
	if m.Valid || m.TotalFitness != 0 {
		t.Errorf("error rate past half must gate out: valid=%v fitness=%f", m.Valid, m.TotalFitness)
	}
}

func TestComputeMetricsGateSessionLength(t *testing.T) {
	g := genome.NewWarGenome()
	r := healthyResults()
	r.AvgTurns = 2000 // two-second turns put this past an hour
	m := ComputeMetrics(g, r, StylePresets["balanced"], "balanced")
	if m.Valid || m.TotalFitness != 0 {
		t.Errorf("marathon games must gate out: valid=%v fitness=%f", m.Valid, m.TotalFitness)
	}
}

func TestComputeMetricsGateDegenerateGames(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(r *SimulationResults)
	}{
		{"all draws", func(r *SimulationResults) {
			r.Wins = []int{0, 0}
			r.Draws = r.TotalGames
		}},
		{"nearly all draws", func(r *SimulationResults) {
			r.Wins = []int{2, 2}
			r.Draws = 96
		}},
		{"under one decision per game", func(r *SimulationResults) {
			r.TotalDecisions = 50
			r.TotalValidMoves = 50
			r.ForcedDecisions = 50
		}},
		{"games over in one turn", func(r *SimulationResults) {
			r.AvgTurns = 1
		}},
	}
	g := genome.NewWarGenome()
	for _, tc := range cases {
		r := healthyResults()
		tc.mutate(r)
		m := ComputeMetrics(g, r, StylePresets["balanced"], "balanced")
		if m.Valid || m.TotalFitness != 0 {
			t.Errorf("%s: valid=%v fitness=%f, want exactly 0", tc.name, m.Valid, m.TotalFitness)
		}
	}
}

func TestComputeMetricsForcedPlayPenalized(t *testing.T) {
	g := genome.NewCrazyEightsGenome()
	free := ComputeMetrics(g, healthyResults(), StylePresets["balanced"], "balanced")

	// 97.5% of decision points offer exactly one move.
	forced := healthyResults()
	forced.ForcedDecisions = 3900
	m := ComputeMetrics(g, forced, StylePresets["balanced"], "balanced")

	if m.TotalFitness == 0 {
		t.Fatal("forced play penalizes, it does not gate")
	}
	if m.TotalFitness >= free.TotalFitness*0.5 {
		t.Errorf("forced play barely penalized: %f vs %f", m.TotalFitness, free.TotalFitness)
	}
}

func TestComputeMetricsAnyErrorInvalidates(t *testing.T) {
	g := genome.NewCrazyEightsGenome()
	r := healthyResults()
	r.Errors = 1
	m := ComputeMetrics(g, r, StylePresets["balanced"], "balanced")
	if m.Valid {
		t.Error("a single error should clear the valid flag")
	}
	if m.TotalFitness <= 0 {
		t.Error("sub-threshold errors still score")
	}
}

func TestComputeMetricsDominantSeatPenalized(t *testing.T) {
	g := genome.NewCrazyEightsGenome()

	balanced := ComputeMetrics(g, healthyResults(), StylePresets["balanced"], "balanced")

	skewed := healthyResults()
	skewed.Wins = []int{90, 5}
	lopsided := ComputeMetrics(g, skewed, StylePresets["balanced"], "balanced")

	if lopsided.TotalFitness >= balanced.TotalFitness {
		t.Errorf("first-player dominance should cost fitness: %f >= %f",
			lopsided.TotalFitness, balanced.TotalFitness)
	}
}

func TestComputeSkillVsLuckMeasured(t *testing.T) {
	g := genome.NewWarGenome()
	r := healthyResults()
	r.HasSkillGap = true
	r.SkillGap = 0.4

	m := ComputeMetrics(g, r, StylePresets["balanced"], "balanced")
	if m.SkillVsLuck < 0.79 || m.SkillVsLuck > 0.81 {
		t.Errorf("measured gap 0.4 should map to 0.8, got %f", m.SkillVsLuck)
	}
}

func TestComputeSkillVsLuckPartyInverts(t *testing.T) {
	g := genome.NewWarGenome()
	r := healthyResults()
	r.HasSkillGap = true
	r.SkillGap = 0.4

	m := ComputeMetrics(g, r, StylePresets["party"], "party")
	if m.SkillVsLuck < 0.19 || m.SkillVsLuck > 0.21 {
		t.Errorf("party style wants luck: expected 0.2, got %f", m.SkillVsLuck)
	}
}

func TestCoherencePenaltyAppliedToFitness(t *testing.T) {
	coherent := genome.NewWarGenome()

	incoherent := genome.NewWarGenome()
	incoherent.WinConditions = []genome.WinCondition{{Type: genome.WinTypeEmptyHand}}

	r1 := ComputeMetrics(coherent, healthyResults(), StylePresets["balanced"], "balanced")
	r2 := ComputeMetrics(incoherent, healthyResults(), StylePresets["balanced"], "balanced")
	if r2.TotalFitness >= r1.TotalFitness {
		t.Errorf("war tableau with an empty-hand win should be penalized: %f >= %f",
			r2.TotalFitness, r1.TotalFitness)
	}
}

func TestComputeBluffingDepthFromClaims(t *testing.T) {
	r := &SimulationResults{
		TotalClaims:       100,
		TotalBluffs:       60,
		TotalChallenges:   40,
		SuccessfulBluffs:  25,
		SuccessfulCatches: 25,
	}
	got := computeBluffingDepth(r)
	if got < 0.95 {
		t.Errorf("ideal claim rates should score near 1, got %f", got)
	}

	if computeBluffingDepth(&SimulationResults{}) != 0 {
		t.Error("no claims and no bets means no bluffing signal")
	}
}

func TestComputeBettingEngagementZeroWithoutBets(t *testing.T) {
	if computeBettingEngagement(&SimulationResults{TotalGames: 10}) != 0 {
		t.Error("betting engagement requires bets")
	}
}
