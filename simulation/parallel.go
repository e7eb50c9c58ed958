package simulation

import (
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/signalnine/deckforge/engine"
)

// gameSeed derives the seed for game i from the batch seed alone, so
// results do not depend on how games are scheduled across workers.
func gameSeed(batchSeed uint64, i int) uint64 {
	z := batchSeed + uint64(i+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// RunBatch plays numGames serially with the same policy in every seat.
func RunBatch(g *engine.Genome, numGames int, ai AIPlayerType, seed uint64) AggregatedStats {
	results := make([]GameResult, numGames)
	ais := []AIPlayerType{ai}
	for i := 0; i < numGames; i++ {
		results[i] = RunSingleGame(g, ais, gameSeed(seed, i))
	}
	return aggregateResults(results)
}

// RunBatchAsymmetric plays numGames with per-seat policies. Used for
// skill probes (search in one seat, random in the others).
func RunBatchAsymmetric(g *engine.Genome, numGames int, ais []AIPlayerType, seed uint64) AggregatedStats {
	results := make([]GameResult, numGames)
	for i := 0; i < numGames; i++ {
		results[i] = RunSingleGame(g, ais, gameSeed(seed, i))
	}
	return aggregateResults(results)
}

// RunBatchParallel plays numGames across a worker pool. Seeds are
// index-derived, so the output matches RunBatch for the same inputs.
func RunBatchParallel(g *engine.Genome, numGames int, ai AIPlayerType, seed uint64, numWorkers int) AggregatedStats {
	return runParallel(g, numGames, []AIPlayerType{ai}, seed, numWorkers)
}

// RunBatchAsymmetricParallel is RunBatchAsymmetric over a worker pool.
func RunBatchAsymmetricParallel(g *engine.Genome, numGames int, ais []AIPlayerType, seed uint64, numWorkers int) AggregatedStats {
	return runParallel(g, numGames, ais, seed, numWorkers)
}

func runParallel(g *engine.Genome, numGames int, ais []AIPlayerType, seed uint64, numWorkers int) AggregatedStats {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	results := make([]GameResult, numGames)
	jobs := make(chan int, numGames)
	for i := 0; i < numGames; i++ {
		jobs <- i
	}
	close(jobs)

	var eg errgroup.Group
	for w := 0; w < numWorkers; w++ {
		eg.Go(func() error {
			for i := range jobs {
				results[i] = RunSingleGame(g, ais, gameSeed(seed, i))
			}
			return nil
		})
	}
	// Workers only simulate; no error path.
	_ = eg.Wait()

	return aggregateResults(results)
}

func aggregateResults(results []GameResult) AggregatedStats {
	stats := AggregatedStats{TotalGames: uint32(len(results))}

	turnCounts := make([]uint32, 0, len(results))
	var totalDuration uint64
	var leadChanges, decisivePct, closestMargin float64
	var comebacks, decided int

	for _, r := range results {
		if r.Error != "" {
			stats.Errors++
			continue
		}
		if r.WinnerID >= 0 && int(r.WinnerID) < engine.MaxPlayers {
			stats.Wins[r.WinnerID]++
		} else {
			stats.Draws++
		}

		turnCounts = append(turnCounts, r.TurnCount)
		totalDuration += r.DurationNs

		stats.TotalDecisions += r.Metrics.TotalDecisions
		stats.TotalValidMoves += r.Metrics.TotalValidMoves
		stats.ForcedDecisions += r.Metrics.ForcedDecisions
		stats.TotalInteractions += r.Metrics.TotalInteractions
		stats.TotalActions += r.Metrics.TotalActions

		stats.TotalClaims += r.Metrics.TotalClaims
		stats.TotalBluffs += r.Metrics.TotalBluffs
		stats.TotalChallenges += r.Metrics.TotalChallenges
		stats.SuccessfulBluffs += r.Metrics.SuccessfulBluffs
		stats.SuccessfulCatches += r.Metrics.SuccessfulCatches

		stats.TotalBets += r.Metrics.TotalBets
		stats.BettingBluffs += r.Metrics.BettingBluffs
		stats.AllInCount += r.Metrics.AllInCount
		stats.FoldWins += r.Metrics.FoldWins
		stats.ShowdownWins += r.Metrics.ShowdownWins

		leadChanges += float64(r.Tension.LeadChanges)
		closestMargin += r.Tension.ClosestMargin
		if r.WinnerID >= 0 {
			decided++
			decisivePct += r.Tension.DecisiveTurnPct
			if r.Tension.Comeback {
				comebacks++
			}
		}
	}

	if n := len(turnCounts); n > 0 {
		var sum uint64
		for _, tc := range turnCounts {
			sum += uint64(tc)
		}
		stats.AvgTurns = float32(sum) / float32(n)
		stats.MedianTurns = median(turnCounts)
		stats.AvgLeadChanges = leadChanges / float64(n)
		stats.AvgClosestMargin = closestMargin / float64(n)
	}
	if decided > 0 {
		stats.AvgDecisivePct = decisivePct / float64(decided)
		stats.ComebackRate = float64(comebacks) / float64(decided)
	}
	if stats.TotalGames > 0 {
		stats.AvgDuration = totalDuration / uint64(stats.TotalGames)
	}
	return stats
}

func median(values []uint32) uint32 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]uint32, len(values))
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
