package evolution

import (
	"context"

	"github.com/signalnine/deckforge/engine"
	"github.com/signalnine/deckforge/simulation"
)

// SkillResult reports how much better a search player does than a
// random one on the same game.
type SkillResult struct {
	GenomeID    string  `json:"genome_id"`
	MCTSWinRate float64 `json:"mcts_win_rate"`
	Expected    float64 `json:"expected_win_rate"`
	SkillGap    float64 `json:"skill_gap"`
	GamesPlayed int     `json:"games_played"`
	Draws       int     `json:"draws"`
	Errors      int     `json:"errors"`
	TimedOut    bool    `json:"timed_out,omitempty"`
}

// skillChunkSize bounds how many games run between deadline checks.
const skillChunkSize = 10

// MeasureSkillGap plays MCTS against random opponents and reports the
// win rate above chance. Seats are swapped halfway through so neither
// side benefits from going first. The context deadline is checked
// between chunks; on timeout the result covers the games finished so
// far and is marked TimedOut.
func MeasureSkillGap(ctx context.Context, g *engine.Genome, genomeID string, numGames int, mctsAI simulation.AIPlayerType, seed uint64) SkillResult {
	players := int(g.Header.PlayerCount)
	result := SkillResult{
		GenomeID: genomeID,
		Expected: 1.0 / float64(players),
	}
	if numGames < 2 {
		numGames = 2
	}

	// MCTS in seat 0 for the first half, last seat for the second.
	firstSeat := make([]simulation.AIPlayerType, players)
	lastSeat := make([]simulation.AIPlayerType, players)
	for i := range firstSeat {
		firstSeat[i] = simulation.RandomAI
		lastSeat[i] = simulation.RandomAI
	}
	firstSeat[0] = mctsAI
	lastSeat[players-1] = mctsAI

	half := numGames / 2
	var mctsWins, decided, draws, errors, played int

	run := func(ais []simulation.AIPlayerType, mctsSeat int, games int, offset uint64) bool {
		for done := 0; done < games; done += skillChunkSize {
			if ctx.Err() != nil {
				result.TimedOut = true
				return false
			}
			chunk := skillChunkSize
			if remaining := games - done; remaining < chunk {
				chunk = remaining
			}
			stats := simulation.RunBatchAsymmetric(g, chunk, ais, seed+offset+uint64(done))
			played += int(stats.TotalGames)
			draws += int(stats.Draws)
			errors += int(stats.Errors)
			mctsWins += int(stats.Wins[mctsSeat])
			for s := 0; s < players; s++ {
				decided += int(stats.Wins[s])
			}
		}
		return true
	}

	if run(firstSeat, 0, half, 0) {
		run(lastSeat, players-1, numGames-half, 1<<32)
	}

	result.GamesPlayed = played
	result.Draws = draws
	result.Errors = errors
	if decided > 0 {
		result.MCTSWinRate = float64(mctsWins) / float64(decided)
		result.SkillGap = result.MCTSWinRate - result.Expected
	}
	return result
}
