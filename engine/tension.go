package engine

// TensionMetrics accumulates per-game excitement signals: how often
// the lead changed hands, how close the game got, and how early the
// outcome was locked in.
type TensionMetrics struct {
	LeadChanges   int
	ClosestMargin float64
	DecisiveTurn  int

	detector      LeaderDetector
	lastLeader    int8
	leaderHistory []int8
}

// LeaderDetector reports who is winning right now and by how much.
// Margin is normalized to [0,1]; leader -1 means tied or unknown.
type LeaderDetector interface {
	Leader(s *GameState) (leader int8, margin float64)
}

// NewTensionMetrics creates an accumulator bound to a detector.
func NewTensionMetrics(d LeaderDetector) *TensionMetrics {
	return &TensionMetrics{
		ClosestMargin: 1.0,
		detector:      d,
		lastLeader:    -1,
	}
}

// Update records the leader after an applied move.
func (t *TensionMetrics) Update(s *GameState) {
	leader, margin := t.detector.Leader(s)
	t.leaderHistory = append(t.leaderHistory, leader)
	if margin < t.ClosestMargin {
		t.ClosestMargin = margin
	}
	if leader >= 0 && t.lastLeader >= 0 && leader != t.lastLeader {
		t.LeadChanges++
	}
	if leader >= 0 {
		t.lastLeader = leader
	}
}

// Finalize computes the decisive turn: the earliest recorded index
// after which the winner led at every step. Draws are maximally
// undecided.
func (t *TensionMetrics) Finalize(winner int8, totalTurns int) {
	if winner < 0 || len(t.leaderHistory) == 0 {
		t.DecisiveTurn = totalTurns
		return
	}
	decisive := len(t.leaderHistory)
	for i := len(t.leaderHistory) - 1; i >= 0; i-- {
		if t.leaderHistory[i] != winner {
			break
		}
		decisive = i
	}
	if totalTurns > 0 {
		t.DecisiveTurn = decisive * totalTurns / len(t.leaderHistory)
	} else {
		t.DecisiveTurn = decisive
	}
}

// DecisiveTurnPct returns the decisive turn as a fraction of the game.
func (t *TensionMetrics) DecisiveTurnPct(totalTurns int) float64 {
	if totalTurns == 0 {
		return 1.0
	}
	pct := float64(t.DecisiveTurn) / float64(totalTurns)
	if pct > 1 {
		pct = 1
	}
	return pct
}

// LeaderAt returns the recorded leader at a fraction of the game
// (0.5 = midpoint), or -1 when nothing was recorded.
func (t *TensionMetrics) LeaderAt(fraction float64) int8 {
	if len(t.leaderHistory) == 0 {
		return -1
	}
	idx := int(fraction * float64(len(t.leaderHistory)))
	if idx >= len(t.leaderHistory) {
		idx = len(t.leaderHistory) - 1
	}
	return t.leaderHistory[idx]
}

// ScoreLeaderDetector tracks the score gap.
type ScoreLeaderDetector struct{}

func (ScoreLeaderDetector) Leader(s *GameState) (int8, float64) {
	return leadByKey(s, func(p *PlayerState) int { return p.Score }, true)
}

// HandSizeLeaderDetector tracks shedding progress: fewer cards leads.
type HandSizeLeaderDetector struct{}

func (HandSizeLeaderDetector) Leader(s *GameState) (int8, float64) {
	return leadByKey(s, func(p *PlayerState) int { return len(p.Hand) }, false)
}

// CaptureLeaderDetector tracks hand size the other way: in capture
// games (War) more cards held means winning.
type CaptureLeaderDetector struct{}

func (CaptureLeaderDetector) Leader(s *GameState) (int8, float64) {
	return leadByKey(s, func(p *PlayerState) int { return len(p.Hand) + len(p.Captured) }, true)
}

// ChipLeaderDetector tracks the chip stack gap.
type ChipLeaderDetector struct{}

func (ChipLeaderDetector) Leader(s *GameState) (int8, float64) {
	return leadByKey(s, func(p *PlayerState) int { return p.Chips }, true)
}

// TrickLeaderDetector tracks tricks won.
type TrickLeaderDetector struct{}

func (TrickLeaderDetector) Leader(s *GameState) (int8, float64) {
	return leadByKey(s, func(p *PlayerState) int { return p.TricksWon }, true)
}

func leadByKey(s *GameState, key func(*PlayerState) int, most bool) (int8, float64) {
	best, second := -1, -1
	bestVal, secondVal := 0, 0
	total := 0
	for i := range s.Players {
		if !s.Players[i].Active {
			continue
		}
		v := key(&s.Players[i])
		if !most {
			v = -v
		}
		total += v
		if best < 0 || v > bestVal {
			second, secondVal = best, bestVal
			best, bestVal = i, v
		} else if second < 0 || v > secondVal {
			second, secondVal = i, v
		}
	}
	if best < 0 || second < 0 {
		return -1, 1.0
	}
	if bestVal == secondVal {
		return -1, 0.0
	}
	gap := bestVal - secondVal
	span := bestVal - secondVal
	if total != 0 {
		span = abs(total)
	}
	margin := float64(gap) / float64(span)
	if margin > 1 {
		margin = 1
	}
	return int8(best), margin
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// DetectorForGenome picks a leader detector from the genome's first
// win condition and phase mix.
func DetectorForGenome(g *Genome) LeaderDetector {
	for _, pd := range g.Phases {
		if pd.PhaseType == PhaseBetting {
			return ChipLeaderDetector{}
		}
	}
	if len(g.WinConditions) > 0 {
		switch g.WinConditions[0].Kind {
		case WinEmptyHand, WinAllHandsEmpty:
			return HandSizeLeaderDetector{}
		case WinCaptureAll, WinMostCaptured:
			return CaptureLeaderDetector{}
		case WinMostTricks, WinFewestTricks:
			return TrickLeaderDetector{}
		case WinMostChips:
			return ChipLeaderDetector{}
		}
	}
	return ScoreLeaderDetector{}
}
