package engine

// LCG constants (Knuth MMIX). The shuffle must produce the same
// permutation for the same seed on every platform, so it cannot use
// math/rand.
const (
	lcgMultiplier uint64 = 6364136223846793005
	lcgIncrement  uint64 = 1442695040888963407
)

// NextRand advances the state's LCG and returns the new value.
func (s *GameState) NextRand() uint64 {
	s.RNG = s.RNG*lcgMultiplier + lcgIncrement
	return s.RNG
}

// NewDeck fills the state's deck with a standard 52-card deck in
// canonical order (suits ascending, ranks ascending within suit).
func NewDeck(s *GameState) {
	s.Deck = s.Deck[:0]
	for suit := uint8(0); suit < 4; suit++ {
		for rank := uint8(0); rank <= RankAce; rank++ {
			s.Deck = append(s.Deck, Card{Rank: rank, Suit: suit})
		}
	}
}

// ShuffleDeck performs a seeded Fisher-Yates shuffle of the deck.
func ShuffleDeck(s *GameState, seed uint64) {
	s.RNG = seed
	for i := len(s.Deck) - 1; i > 0; i-- {
		j := int(s.NextRand() % uint64(i+1))
		s.Deck[i], s.Deck[j] = s.Deck[j], s.Deck[i]
	}
}

// DrawCard transfers the top card of source to the player's hand.
// Drawing from an empty deck recycles the discard pile (minus its top
// card) back into the deck first. Returns false if no card was moved.
func DrawCard(s *GameState, player uint8, source Location) bool {
	switch source {
	case LocationDeck:
		if len(s.Deck) == 0 {
			recycleDiscard(s)
		}
		if len(s.Deck) == 0 {
			return false
		}
		card := s.Deck[len(s.Deck)-1]
		s.Deck = s.Deck[:len(s.Deck)-1]
		s.Players[player].Hand = append(s.Players[player].Hand, card)
		return true
	case LocationDiscard:
		if len(s.Discard) == 0 {
			return false
		}
		card := s.Discard[len(s.Discard)-1]
		s.Discard = s.Discard[:len(s.Discard)-1]
		s.Players[player].Hand = append(s.Players[player].Hand, card)
		return true
	case LocationTableau:
		pile := lastNonEmptyPile(s)
		if pile < 0 {
			return false
		}
		p := s.Tableau[pile]
		card := p[len(p)-1]
		s.Tableau[pile] = p[:len(p)-1]
		s.Players[player].Hand = append(s.Players[player].Hand, card)
		return true
	case LocationOpponentHand:
		opp := nextOpponent(s, player)
		if opp < 0 || len(s.Players[opp].Hand) == 0 {
			return false
		}
		hand := s.Players[opp].Hand
		idx := int(s.NextRand() % uint64(len(hand)))
		card := hand[idx]
		s.Players[opp].Hand = append(hand[:idx], hand[idx+1:]...)
		s.Players[player].Hand = append(s.Players[player].Hand, card)
		return true
	}
	return false
}

// recycleDiscard shuffles the discard pile (minus its top card) back
// into the deck using the state's ongoing RNG stream.
func recycleDiscard(s *GameState) {
	if len(s.Discard) < 2 {
		return
	}
	top := s.Discard[len(s.Discard)-1]
	s.Deck = append(s.Deck, s.Discard[:len(s.Discard)-1]...)
	s.Discard = s.Discard[:0]
	s.Discard = append(s.Discard, top)
	for i := len(s.Deck) - 1; i > 0; i-- {
		j := int(s.NextRand() % uint64(i+1))
		s.Deck[i], s.Deck[j] = s.Deck[j], s.Deck[i]
	}
}

// PlayCard transfers the card at handIndex to the target pile. Returns
// false on an invalid index. Tableau-mode resolution is the caller's
// job (see ApplyMove).
func PlayCard(s *GameState, player uint8, handIndex int, target Location) bool {
	hand := s.Players[player].Hand
	if handIndex < 0 || handIndex >= len(hand) {
		return false
	}
	card := hand[handIndex]
	s.Players[player].Hand = append(hand[:handIndex], hand[handIndex+1:]...)

	switch target {
	case LocationDiscard:
		s.Discard = append(s.Discard, card)
	case LocationTableau:
		if len(s.Tableau) == 0 {
			s.Tableau = append(s.Tableau, nil)
		}
		pile := len(s.Tableau) - 1
		s.Tableau[pile] = append(s.Tableau[pile], card)
	case LocationDeck:
		s.Deck = append(s.Deck, card)
	default:
		// Unknown targets fall through to discard to keep the card
		// conserved.
		s.Discard = append(s.Discard, card)
	}
	return true
}

// removeHandCard removes and returns the card at index, preserving
// relative order of the rest.
func removeHandCard(s *GameState, player uint8, index int) (Card, bool) {
	hand := s.Players[player].Hand
	if index < 0 || index >= len(hand) {
		return Card{}, false
	}
	card := hand[index]
	s.Players[player].Hand = append(hand[:index], hand[index+1:]...)
	return card, true
}

// TopDiscard returns the discard top, if any.
func TopDiscard(s *GameState) (Card, bool) {
	if len(s.Discard) == 0 {
		return Card{}, false
	}
	return s.Discard[len(s.Discard)-1], true
}

// LastPlayed returns the top of the last non-empty tableau pile.
func LastPlayed(s *GameState) (Card, bool) {
	pile := lastNonEmptyPile(s)
	if pile < 0 {
		return Card{}, false
	}
	p := s.Tableau[pile]
	return p[len(p)-1], true
}

func lastNonEmptyPile(s *GameState) int {
	for i := len(s.Tableau) - 1; i >= 0; i-- {
		if len(s.Tableau[i]) > 0 {
			return i
		}
	}
	return -1
}

func nextOpponent(s *GameState, player uint8) int {
	for step := 1; step < int(s.NumPlayers); step++ {
		idx := (int(player) + step) % int(s.NumPlayers)
		if s.Players[idx].Active && len(s.Players[idx].Hand) > 0 {
			return idx
		}
	}
	return -1
}
