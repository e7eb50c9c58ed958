package engine

import (
	"encoding/binary"
)

// conditionSize returns the encoded length of the condition starting
// at data[0], or -1 if truncated.
func conditionSize(data []byte) int {
	if len(data) == 0 {
		return -1
	}
	op := data[0]
	if op == CondAnd || op == CondOr {
		if len(data) < 5 {
			return -1
		}
		count := int(binary.BigEndian.Uint32(data[1:5]))
		if count == 0 || count > 8 {
			return -1
		}
		size := 5
		for i := 0; i < count; i++ {
			child := conditionSize(data[size:])
			if child < 0 {
				return -1
			}
			size += child
		}
		return size
	}
	if len(data) < ConditionSize {
		return -1
	}
	return ConditionSize
}

func compare(op uint8, a, b int32) bool {
	switch op {
	case OpEQ:
		return a == b
	case OpNE:
		return a != b
	case OpLT:
		return a < b
	case OpGT:
		return a > b
	case OpLE:
		return a <= b
	case OpGE:
		return a >= b
	}
	return false
}

// getReferencedCard resolves a condition reference to a concrete card.
func getReferencedCard(s *GameState, ref uint8) (Card, bool) {
	switch ref {
	case RefTopDiscard:
		return TopDiscard(s)
	case RefLastPlayed:
		return LastPlayed(s)
	}
	return Card{}, false
}

// EvaluateCondition evaluates a phase-level condition (no candidate
// card in scope). Card-contextual opcodes evaluate false here.
func EvaluateCondition(s *GameState, player uint8, data []byte) bool {
	if len(data) == 0 {
		return true
	}
	op := data[0]
	if op == CondAnd || op == CondOr {
		return evalCompound(s, player, nil, false, data)
	}
	if len(data) < ConditionSize {
		return false
	}
	return evalSimple(s, player, nil, false, data)
}

// EvaluateCardCondition evaluates a condition against a candidate card
// the player is considering playing.
func EvaluateCardCondition(s *GameState, player uint8, card Card, data []byte) bool {
	if len(data) == 0 {
		return true
	}
	op := data[0]
	if op == CondAnd || op == CondOr {
		return evalCompound(s, player, &card, true, data)
	}
	if len(data) < ConditionSize {
		return false
	}
	return evalSimple(s, player, &card, true, data)
}

func evalCompound(s *GameState, player uint8, card *Card, hasCard bool, data []byte) bool {
	op := data[0]
	count := int(binary.BigEndian.Uint32(data[1:5]))
	pos := 5
	for i := 0; i < count; i++ {
		size := conditionSize(data[pos:])
		if size < 0 {
			return false
		}
		var res bool
		child := data[pos : pos+size]
		if child[0] == CondAnd || child[0] == CondOr {
			res = evalCompound(s, player, card, hasCard, child)
		} else {
			res = evalSimple(s, player, card, hasCard, child)
		}
		if op == CondAnd && !res {
			return false
		}
		if op == CondOr && res {
			return true
		}
		pos += size
	}
	return op == CondAnd
}

func evalSimple(s *GameState, player uint8, card *Card, hasCard bool, data []byte) bool {
	opcode := data[0]
	operator := data[1]
	value := int32(binary.BigEndian.Uint32(data[2:6]))
	ref := data[6]
	p := &s.Players[player]

	switch opcode {
	case CondHandSize:
		return compare(operator, int32(len(p.Hand)), value)

	case CondCardRank:
		c, ok := refOrCandidate(s, card, hasCard, ref)
		if !ok {
			return false
		}
		return compare(operator, int32(c.Rank), value)

	case CondCardSuit:
		c, ok := refOrCandidate(s, card, hasCard, ref)
		if !ok {
			return false
		}
		return compare(operator, int32(c.Suit), value)

	case CondLocationSize:
		return compare(operator, int32(locationSize(s, player, Location(ref))), value)

	case CondSequenceAdjacent:
		if !hasCard {
			return false
		}
		top, ok := getReferencedCard(s, ref)
		if !ok {
			// Empty target: any card may start the sequence.
			return true
		}
		return isSequenceAdjacent(*card, top, s.SequenceDirection)

	case CondHasSetOfN:
		return compare(operator, int32(largestSet(p.Hand)), value)

	case CondHasRunOfN:
		return compare(operator, int32(longestRun(p.Hand)), value)

	case CondHasMatchingPair:
		if largestSet(p.Hand) >= 2 {
			return compare(operator, 1, value)
		}
		return compare(operator, 0, value)

	case CondChipCount:
		return compare(operator, int32(p.Chips), value)

	case CondPotSize:
		return compare(operator, int32(s.Pot), value)

	case CondCurrentBet:
		return compare(operator, int32(s.CurrentBet), value)

	case CondCanAfford:
		if p.Chips >= int(value) {
			return true
		}
		return false

	case CondCardMatchesRank:
		if !hasCard {
			return false
		}
		top, ok := getReferencedCard(s, ref)
		if !ok {
			return true
		}
		// Wild ranks bypass the match requirement.
		if value >= 0 && int32(card.Rank) == value {
			return true
		}
		return card.Rank == top.Rank

	case CondCardMatchesSuit:
		if !hasCard {
			return false
		}
		top, ok := getReferencedCard(s, ref)
		if !ok {
			return true
		}
		if value >= 0 && int32(card.Rank) == value {
			return true
		}
		return card.Suit == top.Suit

	case CondCardBeatsTop:
		if !hasCard {
			return false
		}
		top, ok := getReferencedCard(s, ref)
		if !ok {
			return true
		}
		if operator == OpLT {
			return card.Rank < top.Rank
		}
		return card.Rank > top.Rank
	}
	return false
}

// refOrCandidate prefers the referenced card; with RefNone it falls
// back to the candidate card when one is in scope.
func refOrCandidate(s *GameState, card *Card, hasCard bool, ref uint8) (Card, bool) {
	if ref == RefNone {
		if hasCard {
			return *card, true
		}
		return Card{}, false
	}
	return getReferencedCard(s, ref)
}

func locationSize(s *GameState, player uint8, loc Location) int {
	switch loc {
	case LocationDeck:
		return len(s.Deck)
	case LocationHand:
		return len(s.Players[player].Hand)
	case LocationDiscard:
		return len(s.Discard)
	case LocationTableau:
		n := 0
		for _, pile := range s.Tableau {
			n += len(pile)
		}
		return n
	case LocationOpponentHand:
		opp := nextOpponent(s, player)
		if opp < 0 {
			return 0
		}
		return len(s.Players[opp].Hand)
	}
	return 0
}

// isSequenceAdjacent reports whether playing card onto top continues
// the sequence in the allowed direction. Ace wraps to Two ascending
// and Two wraps to Ace descending.
func isSequenceAdjacent(card, top Card, direction uint8) bool {
	up := card.Rank == top.Rank+1 || (top.Rank == RankAce && card.Rank == RankTwo)
	down := card.Rank+1 == top.Rank || (top.Rank == RankTwo && card.Rank == RankAce)
	switch direction {
	case SeqAscending:
		return up
	case SeqDescending:
		return down
	case SeqBoth:
		return up || down
	}
	return false
}

func largestSet(hand []Card) int {
	var counts [13]int
	best := 0
	for _, c := range hand {
		counts[c.Rank]++
		if counts[c.Rank] > best {
			best = counts[c.Rank]
		}
	}
	return best
}

func longestRun(hand []Card) int {
	var present [13]bool
	for _, c := range hand {
		present[c.Rank] = true
	}
	best, run := 0, 0
	for r := 0; r < 13; r++ {
		if present[r] {
			run++
			if run > best {
				best = run
			}
		} else {
			run = 0
		}
	}
	return best
}
