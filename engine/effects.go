package engine

// Special effect types, triggered by playing or discarding a card of
// the registered rank.
const (
	EffectExtraTurn uint8 = iota + 1
	EffectSkipNext
	EffectReverse
	EffectForceDraw
	EffectForceDiscard
	EffectStealCard
	EffectWild
)

// Effect targets.
const (
	TargetSelf uint8 = iota
	TargetNextPlayer
	TargetAllOpponents
)

// ApplyEffect mutates the state with one special effect.
func ApplyEffect(s *GameState, eff SpecialEffect) {
	switch eff.EffectType {
	case EffectExtraTurn:
		s.ExtraTurn = true

	case EffectSkipNext:
		n := int(eff.Value)
		if n < 1 {
			n = 1
		}
		s.SkipCount += n

	case EffectReverse:
		s.PlayDirection = -s.PlayDirection

	case EffectForceDraw:
		n := int(eff.Value)
		if n < 1 {
			n = 1
		}
		forEachTarget(s, eff.Target, func(p uint8) {
			for i := 0; i < n; i++ {
				if !DrawCard(s, p, LocationDeck) {
					return
				}
			}
		})

	case EffectForceDiscard:
		n := int(eff.Value)
		if n < 1 {
			n = 1
		}
		forEachTarget(s, eff.Target, func(p uint8) {
			for i := 0; i < n && len(s.Players[p].Hand) > 0; i++ {
				idx := int(s.NextRand() % uint64(len(s.Players[p].Hand)))
				PlayCard(s, p, idx, LocationDiscard)
			}
		})

	case EffectStealCard:
		DrawCard(s, s.CurrentPlayer, LocationOpponentHand)

	case EffectWild:
		// Wild cards act through play conditions; no state change.
	}
}

func forEachTarget(s *GameState, target uint8, fn func(uint8)) {
	switch target {
	case TargetSelf:
		fn(s.CurrentPlayer)
	case TargetNextPlayer:
		fn(nextInDirection(s, s.CurrentPlayer))
	case TargetAllOpponents:
		for i := uint8(0); i < s.NumPlayers; i++ {
			if i != s.CurrentPlayer && s.Players[i].Active {
				fn(i)
			}
		}
	}
}

func nextInDirection(s *GameState, from uint8) uint8 {
	n := int(s.NumPlayers)
	idx := (int(from) + int(s.PlayDirection) + n) % n
	return uint8(idx)
}

// AdvanceTurn ends the current player's turn: phase index resets, the
// turn counter advances, and play moves to the next player honoring
// direction, pending skips, and extra turns.
func AdvanceTurn(s *GameState, g *Genome) {
	s.CurrentPhase = 0
	s.TurnNumber++
	s.BettingComplete = false

	if s.ExtraTurn {
		s.ExtraTurn = false
		return
	}

	next := nextInDirection(s, s.CurrentPlayer)
	for s.SkipCount > 0 {
		s.SkipCount--
		next = nextInDirection(s, next)
	}
	// Skip seats that are out of the game entirely.
	for tries := 0; tries < int(s.NumPlayers); tries++ {
		if s.Players[next].Active {
			break
		}
		next = nextInDirection(s, next)
	}
	s.CurrentPlayer = next
}
