// Package simulation drives complete games over compiled genomes and
// aggregates the per-game statistics the fitness function consumes.
package simulation

import (
	"math/rand"
	"time"

	"github.com/signalnine/deckforge/engine"
	"github.com/signalnine/deckforge/mcts"
)

// AIPlayerType selects the move policy for a seat.
type AIPlayerType uint8

const (
	RandomAI AIPlayerType = iota
	GreedyAI
	MCTS100AI
	MCTS500AI
	MCTS1000AI
	MCTS2000AI
)

// mctsBudget maps an AI type to its iteration budget (0 = not MCTS).
func mctsBudget(ai AIPlayerType) int {
	switch ai {
	case MCTS100AI:
		return 100
	case MCTS500AI:
		return 500
	case MCTS1000AI:
		return 1000
	case MCTS2000AI:
		return 2000
	}
	return 0
}

// GameMetrics holds per-game instrumentation counters.
type GameMetrics struct {
	TotalDecisions    uint64 // decision points with a move choice
	TotalValidMoves   uint64 // sum of branching factors
	ForcedDecisions   uint64 // decisions with exactly one legal move
	TotalInteractions uint64 // moves that touch another player's state
	TotalActions      uint64

	// Claim instrumentation.
	TotalClaims       uint64
	TotalBluffs       uint64 // claims made without the cards
	TotalChallenges   uint64
	SuccessfulBluffs  uint64 // lies that were accepted
	SuccessfulCatches uint64 // lies that were challenged

	// Betting instrumentation.
	TotalBets     uint64 // bets and raises
	BettingBluffs uint64 // bets behind a sub-pair hand
	AllInCount    uint64
	FoldWins      uint64 // betting rounds ended by a fold
	ShowdownWins  uint64 // betting rounds that went to a showdown
}

// TensionSummary condenses the lead-tracking data of one game.
type TensionSummary struct {
	LeadChanges     int
	ClosestMargin   float64
	DecisiveTurnPct float64
	Comeback        bool // winner trailed at the midpoint
}

// GameResult is the outcome of a single game.
type GameResult struct {
	WinnerID   int8
	TurnCount  uint32
	DurationNs uint64
	Error      string
	Metrics    GameMetrics
	Tension    TensionSummary
}

// AggregatedStats summarizes a batch of games.
type AggregatedStats struct {
	TotalGames  uint32
	Wins        [engine.MaxPlayers]uint32
	Draws       uint32
	Errors      uint32
	AvgTurns    float32
	MedianTurns uint32
	AvgDuration uint64 // nanoseconds

	TotalDecisions    uint64
	TotalValidMoves   uint64
	ForcedDecisions   uint64
	TotalInteractions uint64
	TotalActions      uint64

	TotalClaims       uint64
	TotalBluffs       uint64
	TotalChallenges   uint64
	SuccessfulBluffs  uint64
	SuccessfulCatches uint64

	TotalBets     uint64
	BettingBluffs uint64
	AllInCount    uint64
	FoldWins      uint64
	ShowdownWins  uint64

	AvgLeadChanges   float64
	AvgDecisivePct   float64
	ComebackRate     float64
	AvgClosestMargin float64
}

// AvgBranching is the mean number of legal moves per decision point.
func (s *AggregatedStats) AvgBranching() float64 {
	if s.TotalDecisions == 0 {
		return 0
	}
	return float64(s.TotalValidMoves) / float64(s.TotalDecisions)
}

// DecisionDensity is the share of decisions with a real choice.
func (s *AggregatedStats) DecisionDensity() float64 {
	if s.TotalDecisions == 0 {
		return 0
	}
	return 1 - float64(s.ForcedDecisions)/float64(s.TotalDecisions)
}

// InteractionRate is interactions per action.
func (s *AggregatedStats) InteractionRate() float64 {
	if s.TotalActions == 0 {
		return 0
	}
	return float64(s.TotalInteractions) / float64(s.TotalActions)
}

// SetupGame resets the state, builds and shuffles the deck, deals, and
// seeds chips, tableau piles, and team assignments from the genome.
func SetupGame(state *engine.GameState, g *engine.Genome, seed uint64) {
	numPlayers := uint8(g.Header.PlayerCount)
	if numPlayers < 2 || numPlayers > engine.MaxPlayers {
		numPlayers = 2
	}
	state.Reset(numPlayers)
	state.TableauMode = g.Header.TableauMode
	state.SequenceDirection = g.Header.SequenceDirection

	engine.NewDeck(state)
	engine.ShuffleDeck(state, seed)

	if g.Setup.StartingChips > 0 {
		for p := range state.Players[:numPlayers] {
			state.Players[p].Chips = int(g.Setup.StartingChips)
		}
	}

	if len(g.Teams) >= 2 {
		state.TeamMode = true
		for t, members := range g.Teams {
			for _, m := range members {
				if int(m) < int(numPlayers) && t < 2 {
					state.TeamOf[m] = uint8(t)
				}
			}
		}
	}

	for i := 0; i < int(g.Setup.CardsPerPlayer); i++ {
		for p := uint8(0); p < numPlayers; p++ {
			engine.DrawCard(state, p, engine.LocationDeck)
		}
	}

	// Tableau seed cards each start their own pile.
	for i := 0; i < int(g.Setup.DealToTableau) && len(state.Deck) > 0; i++ {
		card := state.Deck[len(state.Deck)-1]
		state.Deck = state.Deck[:len(state.Deck)-1]
		state.Tableau = append(state.Tableau, []engine.Card{card})
	}
}

// RunSingleGame plays one game to termination. The ais slice is indexed
// by seat; a single entry applies to every seat.
func RunSingleGame(g *engine.Genome, ais []AIPlayerType, seed uint64) GameResult {
	start := time.Now()
	var metrics GameMetrics

	numPlayers := uint8(g.Header.PlayerCount)
	if numPlayers < 2 || numPlayers > engine.MaxPlayers {
		numPlayers = 2
	}
	state := engine.GetState(numPlayers)
	defer engine.PutState(state)

	SetupGame(state, g, seed)

	rng := rand.New(rand.NewSource(int64(seed ^ 0x9e3779b97f4a7c15)))
	tension := engine.NewTensionMetrics(engine.DetectorForGenome(g))
	tension.Update(state)
	lastTurn := state.TurnNumber

	maxTurns := int(g.Header.MaxTurns)
	result := func(winner int8, errMsg string) GameResult {
		totalTurns := state.TurnNumber
		tension.Finalize(winner, totalTurns)
		summary := TensionSummary{
			LeadChanges:     tension.LeadChanges,
			ClosestMargin:   tension.ClosestMargin,
			DecisiveTurnPct: tension.DecisiveTurnPct(totalTurns),
		}
		if winner >= 0 {
			mid := tension.LeaderAt(0.5)
			summary.Comeback = mid >= 0 && mid != winner
		}
		return GameResult{
			WinnerID:   winner,
			TurnCount:  uint32(totalTurns),
			DurationNs: uint64(time.Since(start).Nanoseconds()),
			Error:      errMsg,
			Metrics:    metrics,
			Tension:    summary,
		}
	}

	for state.TurnNumber < maxTurns {
		if winner := engine.CheckWinConditions(state, g); winner >= 0 {
			return result(winner, "")
		}

		moves := engine.GenerateLegalMoves(state, g)
		if len(moves) == 0 {
			if state.WinnerID >= 0 {
				return result(state.WinnerID, "")
			}
			return result(-1, "no legal moves")
		}

		metrics.TotalDecisions++
		metrics.TotalValidMoves += uint64(len(moves))
		if len(moves) == 1 {
			metrics.ForcedDecisions++
		}

		ai := aiForSeat(ais, state.CurrentPlayer)
		move := selectMove(state, g, moves, ai, rng)
		if move == nil {
			return result(-1, "policy returned no move")
		}

		metrics.TotalActions++
		if isInteraction(state, move) {
			metrics.TotalInteractions++
		}
		observeBefore(&metrics, state, g, move)
		wasBetting := !state.BettingComplete

		engine.ApplyMove(state, move, g)

		observeAfter(&metrics, state, g, move, wasBetting)

		if state.TurnNumber != lastTurn {
			lastTurn = state.TurnNumber
			tension.Update(state)
		}
	}

	return result(-1, "")
}

func aiForSeat(ais []AIPlayerType, seat uint8) AIPlayerType {
	if len(ais) == 0 {
		return RandomAI
	}
	if int(seat) < len(ais) {
		return ais[seat]
	}
	return ais[0]
}

func selectMove(state *engine.GameState, g *engine.Genome, moves []engine.LegalMove, ai AIPlayerType, rng *rand.Rand) *engine.LegalMove {
	switch ai {
	case RandomAI:
		return &moves[rng.Intn(len(moves))]
	case GreedyAI:
		return selectGreedyMove(state, moves)
	default:
		if budget := mctsBudget(ai); budget > 0 {
			return mcts.Search(state, g, budget, mcts.DefaultExplorationParam, rng)
		}
	}
	return &moves[0]
}

// observeBefore records claim responses and betting actions that must
// be read against the pre-move state.
func observeBefore(m *GameMetrics, state *engine.GameState, g *engine.Genome, move *engine.LegalMove) {
	if int(move.PhaseIndex) >= len(g.Phases) {
		return
	}
	switch g.Phases[move.PhaseIndex].PhaseType {
	case engine.PhaseClaim:
		switch move.CardIndex {
		case engine.MoveChallenge:
			m.TotalChallenges++
			if !state.Claim.Honest {
				m.SuccessfulCatches++
			}
		case engine.MoveAccept:
			if !state.Claim.Honest {
				m.SuccessfulBluffs++
			}
		}
	case engine.PhaseBetting:
		switch move.CardIndex {
		case engine.MoveBet, engine.MoveRaise, engine.MoveAllIn:
			m.TotalBets++
			if move.CardIndex == engine.MoveAllIn {
				m.AllInCount++
			}
			if engine.EvaluateHandStrength(state.Players[state.CurrentPlayer].Hand) < 1000 {
				m.BettingBluffs++
			}
		}
	}
}

// observeAfter records outcomes visible only after the move applies.
func observeAfter(m *GameMetrics, state *engine.GameState, g *engine.Genome, move *engine.LegalMove, wasBetting bool) {
	if int(move.PhaseIndex) >= len(g.Phases) {
		return
	}
	switch g.Phases[move.PhaseIndex].PhaseType {
	case engine.PhaseClaim:
		if move.CardIndex <= engine.MoveSetBase && state.Claim.Active {
			m.TotalClaims++
			if !state.Claim.Honest {
				m.TotalBluffs++
			}
		}
	case engine.PhaseBetting:
		if wasBetting && state.BettingComplete {
			if move.CardIndex == engine.MoveFold {
				m.FoldWins++
			} else {
				m.ShowdownWins++
			}
		}
	}
}

// isInteraction reports whether a move reaches into another player's
// state: pulling their cards, contesting a shared pile, challenging a
// claim, or moving the table bet.
func isInteraction(state *engine.GameState, move *engine.LegalMove) bool {
	switch {
	case move.CardIndex == engine.MoveDraw && move.Target == engine.LocationOpponentHand:
		return true
	case move.Target == engine.LocationTableau && state.TableauMode != engine.TableauNone:
		return true
	case move.Target == engine.LocationOpponentHand || move.Target == engine.LocationOpponentDiscard:
		return true
	case move.CardIndex == engine.MoveChallenge:
		return true
	case move.CardIndex == engine.MoveBet || move.CardIndex == engine.MoveRaise || move.CardIndex == engine.MoveAllIn:
		return true
	}
	return false
}

// selectGreedyMove prefers shedding cards, higher ranks first.
func selectGreedyMove(state *engine.GameState, moves []engine.LegalMove) *engine.LegalMove {
	best := &moves[0]
	bestScore := scoreMove(state, best)
	for i := 1; i < len(moves); i++ {
		if score := scoreMove(state, &moves[i]); score > bestScore {
			bestScore = score
			best = &moves[i]
		}
	}
	return best
}

func scoreMove(state *engine.GameState, move *engine.LegalMove) float64 {
	score := 0.0
	hand := state.Players[state.CurrentPlayer].Hand
	if move.CardIndex >= 0 {
		score += 10.0
		if int(move.CardIndex) < len(hand) {
			score += float64(hand[move.CardIndex].Rank)
		}
	}
	switch move.CardIndex {
	case engine.MoveCall, engine.MoveCheck:
		score += 5.0 // greedy betting stays in cheap
	case engine.MoveBet:
		score += 3.0
	case engine.MoveFold:
		score += 1.0
	}
	if move.Count > 1 {
		score += float64(move.Count) * 10.0
	}
	return score
}
