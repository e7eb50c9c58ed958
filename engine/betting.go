package engine

import (
	"encoding/binary"
)

// bettingMoves derives the legal betting actions for the current
// player from chips, the table bet, and the raise cap.
func bettingMoves(s *GameState, pd PhaseDescriptor) []LegalMove {
	if s.BettingComplete {
		return nil
	}
	data := pd.Data
	minBet := int(binary.BigEndian.Uint32(data[0:4]))
	maxRaises := int(binary.BigEndian.Uint32(data[4:8]))

	p := &s.Players[s.CurrentPlayer]
	if p.HasFolded || p.IsAllIn || !p.Active {
		return nil
	}

	toCall := s.CurrentBet - p.CurrentBet
	phase := s.CurrentPhase
	var moves []LegalMove

	if toCall <= 0 {
		moves = append(moves, LegalMove{PhaseIndex: phase, CardIndex: MoveCheck})
		if p.Chips >= minBet {
			moves = append(moves, LegalMove{PhaseIndex: phase, CardIndex: MoveBet})
		} else if p.Chips > 0 {
			moves = append(moves, LegalMove{PhaseIndex: phase, CardIndex: MoveAllIn})
		}
		return moves
	}

	if p.Chips >= toCall {
		moves = append(moves, LegalMove{PhaseIndex: phase, CardIndex: MoveCall})
	}
	if p.Chips >= toCall+minBet && s.RaiseCount < maxRaises {
		moves = append(moves, LegalMove{PhaseIndex: phase, CardIndex: MoveRaise})
	}
	if p.Chips > 0 && p.Chips < toCall {
		moves = append(moves, LegalMove{PhaseIndex: phase, CardIndex: MoveAllIn})
	}
	moves = append(moves, LegalMove{PhaseIndex: phase, CardIndex: MoveFold})
	return moves
}

// ApplyBettingMove executes one betting action. A bet moves min_bet
// into the pot and sets the table bet; a raise is a call plus min_bet;
// an all-in above the table bet raises it, below it does not.
func ApplyBettingMove(s *GameState, m *LegalMove, pd PhaseDescriptor) {
	minBet := int(binary.BigEndian.Uint32(pd.Data[0:4]))
	p := &s.Players[s.CurrentPlayer]
	toCall := s.CurrentBet - p.CurrentBet

	switch m.CardIndex {
	case MoveFold:
		p.HasFolded = true
	case MoveCheck:
		// No chips move.
	case MoveCall:
		amount := toCall
		if amount > p.Chips {
			amount = p.Chips
		}
		p.Chips -= amount
		p.CurrentBet += amount
		s.Pot += amount
	case MoveBet:
		amount := minBet
		if amount > p.Chips {
			amount = p.Chips
		}
		p.Chips -= amount
		p.CurrentBet += amount
		s.Pot += amount
		if p.CurrentBet > s.CurrentBet {
			s.CurrentBet = p.CurrentBet
		}
	case MoveRaise:
		amount := toCall + minBet
		if amount > p.Chips {
			amount = p.Chips
		}
		p.Chips -= amount
		p.CurrentBet += amount
		s.Pot += amount
		if p.CurrentBet > s.CurrentBet {
			s.CurrentBet = p.CurrentBet
			s.RaiseCount++
		}
	case MoveAllIn:
		amount := p.Chips
		p.Chips = 0
		p.CurrentBet += amount
		s.Pot += amount
		p.IsAllIn = true
		if p.CurrentBet > s.CurrentBet {
			s.CurrentBet = p.CurrentBet
			s.RaiseCount++
		}
	default:
		return
	}
	s.BetActions++

	if countNonFolded(s) == 1 {
		AwardPot(s, int8(lastNonFolded(s)))
		endBettingRound(s)
		return
	}
	if AllBetsMatched(s) {
		endBettingRound(s)
		return
	}
	s.CurrentPlayer = nextBettor(s, s.CurrentPlayer)
}

// AllBetsMatched reports whether every non-folded, non-all-in player
// has matched the table bet and had a chance to act this round.
func AllBetsMatched(s *GameState) bool {
	actors := 0
	for i := range s.Players {
		p := &s.Players[i]
		if !p.Active || p.HasFolded || p.IsAllIn {
			continue
		}
		actors++
		if p.CurrentBet != s.CurrentBet {
			return false
		}
	}
	return s.BetActions >= actors
}

func endBettingRound(s *GameState) {
	s.BettingComplete = true
	for i := range s.Players {
		s.Players[i].CurrentBet = 0
	}
	s.CurrentBet = 0
	s.RaiseCount = 0
	s.BetActions = 0
	s.CurrentPhase++
}

func countNonFolded(s *GameState) int {
	n := 0
	for i := range s.Players {
		if s.Players[i].Active && !s.Players[i].HasFolded {
			n++
		}
	}
	return n
}

func lastNonFolded(s *GameState) int {
	for i := range s.Players {
		if s.Players[i].Active && !s.Players[i].HasFolded {
			return i
		}
	}
	return 0
}

func nextBettor(s *GameState, from uint8) uint8 {
	for step := 1; step <= int(s.NumPlayers); step++ {
		idx := uint8((int(from) + step) % int(s.NumPlayers))
		p := &s.Players[idx]
		if p.Active && !p.HasFolded && !p.IsAllIn {
			return idx
		}
	}
	return from
}

// AwardPot pays the pot to the winner and resets it. Folded flags are
// cleared so the next betting round starts clean.
func AwardPot(s *GameState, winner int8) {
	if winner < 0 || int(winner) >= len(s.Players) {
		return
	}
	s.Players[winner].Chips += s.Pot
	s.Pot = 0
	for i := range s.Players {
		s.Players[i].HasFolded = false
		s.Players[i].IsAllIn = false
	}
}

// ResolveShowdown compares the non-folded hands with the built-in
// strength heuristic and awards the pot.
func ResolveShowdown(s *GameState) int8 {
	best := int8(-1)
	bestStrength := -1
	for i := range s.Players {
		p := &s.Players[i]
		if !p.Active || p.HasFolded {
			continue
		}
		strength := EvaluateHandStrength(p.Hand)
		if strength > bestStrength {
			bestStrength = strength
			best = int8(i)
		}
	}
	if best >= 0 {
		AwardPot(s, best)
	}
	return best
}

// EvaluateHandStrength scores a hand with a compact built-in ranking:
// quads > full house > flush > straight > trips > two pair > pair >
// high card, scaled so categories never overlap.
func EvaluateHandStrength(hand []Card) int {
	if len(hand) == 0 {
		return 0
	}
	var rankCounts [13]int
	var suitCounts [4]int
	high := 0
	for _, c := range hand {
		rankCounts[c.Rank]++
		suitCounts[c.Suit]++
		if int(c.Rank) > high {
			high = int(c.Rank)
		}
	}

	pairs, trips, quads := 0, 0, 0
	pairHigh := 0
	for r := 0; r < 13; r++ {
		switch rankCounts[r] {
		case 2:
			pairs++
			pairHigh = r
		case 3:
			trips++
			pairHigh = r
		case 4:
			quads++
			pairHigh = r
		}
	}
	flush := false
	for _, n := range suitCounts {
		if n >= 5 {
			flush = true
		}
	}
	straight := longestRun(hand) >= 5

	switch {
	case quads > 0:
		return 7000 + pairHigh
	case trips > 0 && pairs > 0:
		return 6000 + pairHigh
	case flush:
		return 5000 + high
	case straight:
		return 4000 + high
	case trips > 0:
		return 3000 + pairHigh
	case pairs >= 2:
		return 2000 + pairHigh
	case pairs == 1:
		return 1000 + pairHigh
	}
	return high
}
