package engine

import (
	"encoding/binary"
)

// GenerateLegalMoves returns the legal moves for the current player in
// the current phase. Phases that produce no moves and are skippable
// are fast-forwarded, which may wrap the turn to the next player. A
// nil result with no winner set means a mandatory phase is stuck
// (NoLegalMoves) or the game cannot progress.
func GenerateLegalMoves(s *GameState, g *Genome) []LegalMove {
	guard := (len(g.Phases) + 1) * int(s.NumPlayers) * 4
	for iter := 0; iter < guard; iter++ {
		if s.WinnerID >= 0 || s.TurnNumber >= int(g.Header.MaxTurns) {
			return nil
		}
		if int(s.CurrentPhase) >= len(g.Phases) {
			AdvanceTurn(s, g)
			continue
		}
		pd := g.Phases[s.CurrentPhase]
		moves := movesForPhase(s, g, pd)
		if len(moves) > 0 {
			return moves
		}
		if phaseStuck(s, pd) {
			return nil
		}
		s.CurrentPhase++
	}
	return nil
}

// phaseStuck reports whether an empty move list means the game cannot
// legally continue rather than the phase being skippable.
func phaseStuck(s *GameState, pd PhaseDescriptor) bool {
	switch pd.PhaseType {
	case PhasePlay:
		mandatory := pd.Data[3] != 0
		passIfUnable := pd.Data[4] != 0
		return mandatory && !passIfUnable && len(s.Players[s.CurrentPlayer].Hand) > 0
	}
	return false
}

func movesForPhase(s *GameState, g *Genome, pd PhaseDescriptor) []LegalMove {
	switch pd.PhaseType {
	case PhaseDraw:
		return drawMoves(s, pd)
	case PhasePlay:
		return playMoves(s, pd)
	case PhaseDiscard:
		return discardMoves(s, pd)
	case PhaseTrick:
		return trickMoves(s, pd)
	case PhaseBetting:
		return bettingMoves(s, pd)
	case PhaseClaim:
		return claimMoves(s, pd)
	case PhaseBidding:
		return biddingMoves(s, pd)
	}
	return nil
}

func drawMoves(s *GameState, pd PhaseDescriptor) []LegalMove {
	data := pd.Data
	source := Location(data[0])
	mandatory := data[5] != 0
	if data[6] != 0 && !EvaluateCondition(s, s.CurrentPlayer, data[7:]) {
		return nil // condition false: phase is skipped
	}
	var moves []LegalMove
	available := locationSize(s, s.CurrentPlayer, source) > 0 ||
		(source == LocationDeck && len(s.Discard) > 1)
	if mandatory || available {
		moves = append(moves, LegalMove{PhaseIndex: s.CurrentPhase, CardIndex: MoveDraw, Target: source})
	}
	if !mandatory {
		moves = append(moves, LegalMove{PhaseIndex: s.CurrentPhase, CardIndex: MoveDrawPass, Target: source})
	}
	return moves
}

func playMoves(s *GameState, pd PhaseDescriptor) []LegalMove {
	data := pd.Data
	target := Location(data[0])
	minCards := int(data[1])
	maxCards := int(data[2])
	passIfUnable := data[4] != 0
	condLen := int(binary.BigEndian.Uint32(data[5:9]))
	cond := data[9 : 9+condLen]

	player := s.CurrentPlayer
	hand := s.Players[player].Hand
	var moves []LegalMove
	for i, card := range hand {
		if condLen > 0 && !EvaluateCardCondition(s, player, card, cond) {
			continue
		}
		moves = append(moves, LegalMove{PhaseIndex: s.CurrentPhase, CardIndex: int16(i), Target: target, Count: 1})
	}
	// Multi-card set plays: rank groups large enough to satisfy a
	// min_cards > 1 requirement.
	if maxCards > 1 {
		var counts [13]int
		for _, c := range hand {
			counts[c.Rank]++
		}
		for r := 0; r < 13; r++ {
			for n := 2; n <= maxCards && n <= counts[r]; n++ {
				if n < minCards {
					continue
				}
				if condLen > 0 && !EvaluateCardCondition(s, player, Card{Rank: uint8(r), Suit: firstSuitOfRank(hand, uint8(r))}, cond) {
					continue
				}
				moves = append(moves, LegalMove{PhaseIndex: s.CurrentPhase, CardIndex: MoveSetBase - int16(r), Target: target, Count: uint8(n)})
			}
		}
	}
	if minCards > 1 {
		// Single-card moves below the minimum are illegal.
		filtered := moves[:0]
		for _, m := range moves {
			if int(m.Count) >= minCards {
				filtered = append(filtered, m)
			}
		}
		moves = filtered
	}
	if len(moves) == 0 && passIfUnable {
		moves = append(moves, LegalMove{PhaseIndex: s.CurrentPhase, CardIndex: MovePlayPass, Target: target})
	}
	return moves
}

func firstSuitOfRank(hand []Card, rank uint8) uint8 {
	for _, c := range hand {
		if c.Rank == rank {
			return c.Suit
		}
	}
	return SuitNone
}

func discardMoves(s *GameState, pd PhaseDescriptor) []LegalMove {
	data := pd.Data
	target := Location(data[0])
	hand := s.Players[s.CurrentPlayer].Hand
	if len(hand) == 0 {
		return nil
	}
	moves := make([]LegalMove, 0, len(hand))
	for i := range hand {
		moves = append(moves, LegalMove{PhaseIndex: s.CurrentPhase, CardIndex: int16(i), Target: target, Count: 1})
	}
	return moves
}

func trickMoves(s *GameState, pd PhaseDescriptor) []LegalMove {
	data := pd.Data
	leadRequired := data[0] != 0
	trumpSuit := data[1]
	breakingSuit := data[3]

	player := s.CurrentPlayer
	hand := s.Players[player].Hand
	if len(hand) == 0 {
		return nil
	}

	leading := len(s.CurrentTrick) == 0
	var leadSuit uint8 = SuitNone
	if !leading {
		leadSuit = s.CurrentTrick[0].Card.Suit
	}

	hasLead := false
	allBreaking := breakingSuit != SuitNone
	for _, c := range hand {
		if c.Suit == leadSuit {
			hasLead = true
		}
		if c.Suit != breakingSuit {
			allBreaking = false
		}
	}

	moves := make([]LegalMove, 0, len(hand))
	for i, c := range hand {
		if leading {
			// Leading the breaking suit is illegal until broken,
			// unless the hand holds nothing else.
			if breakingSuit != SuitNone && c.Suit == breakingSuit && !s.HeartsBroken && !allBreaking {
				continue
			}
		} else if leadRequired && hasLead && c.Suit != leadSuit && c.Suit != trumpSuit {
			continue
		}
		moves = append(moves, LegalMove{PhaseIndex: s.CurrentPhase, CardIndex: int16(i), Target: LocationTableau, Count: 1})
	}
	if len(moves) == 0 {
		// Everything was filtered (e.g. only trump-less off-suit with
		// a strict filter); fall back to the whole hand.
		for i := range hand {
			moves = append(moves, LegalMove{PhaseIndex: s.CurrentPhase, CardIndex: int16(i), Target: LocationTableau, Count: 1})
		}
	}
	return moves
}

func claimMoves(s *GameState, pd PhaseDescriptor) []LegalMove {
	data := pd.Data
	rankFixed := data[1]
	minCards := int(data[2])
	maxCards := int(data[3])
	challengeAllowed := data[4] != 0
	sequential := data[9] != 0
	if minCards < 1 {
		minCards = 1
	}
	if maxCards < minCards {
		maxCards = minCards
	}

	player := s.CurrentPlayer
	if s.Claim.Active {
		if s.Claim.Player == player {
			return nil
		}
		moves := []LegalMove{{PhaseIndex: s.CurrentPhase, CardIndex: MoveAccept}}
		if challengeAllowed {
			moves = append(moves, LegalMove{PhaseIndex: s.CurrentPhase, CardIndex: MoveChallenge})
		}
		return moves
	}

	hand := s.Players[player].Hand
	if len(hand) == 0 {
		return nil
	}
	claimRank := requiredClaimRank(s, rankFixed, sequential)
	var moves []LegalMove
	if claimRank != RankNone { // a specific rank is required
		for n := minCards; n <= maxCards && n <= len(hand); n++ {
			moves = append(moves, LegalMove{PhaseIndex: s.CurrentPhase, CardIndex: MoveSetBase - int16(claimRank), Count: uint8(n)})
		}
		return moves
	}
	// Free choice of claimed rank: claim ranks actually held (honest
	// options); lying is expressed by claiming a held rank with more
	// cards than the player has of it.
	var counts [13]int
	for _, c := range hand {
		counts[c.Rank]++
	}
	for r := 0; r < 13; r++ {
		if counts[r] == 0 {
			continue
		}
		for n := minCards; n <= maxCards && n <= len(hand); n++ {
			moves = append(moves, LegalMove{PhaseIndex: s.CurrentPhase, CardIndex: MoveSetBase - int16(r), Count: uint8(n)})
		}
	}
	return moves
}

// requiredClaimRank returns the rank the next claim must name, or
// RankNone when any rank may be claimed.
func requiredClaimRank(s *GameState, rankFixed uint8, sequential bool) uint8 {
	if rankFixed != RankNone && !sequential {
		return rankFixed
	}
	if sequential {
		if top, ok := TopDiscard(s); ok {
			return (top.Rank + 1) % 13
		}
		if rankFixed != RankNone {
			return rankFixed
		}
		return RankTwo
	}
	return RankNone
}

func biddingMoves(s *GameState, pd PhaseDescriptor) []LegalMove {
	if s.BiddingComplete {
		return nil
	}
	player := s.CurrentPlayer
	if s.Players[player].HasBid {
		return nil
	}
	data := pd.Data
	minBid := int(data[0])
	maxBid := int(data[1])
	nilAllowed := data[2] != 0
	if maxBid > len(s.Players[player].Hand) {
		maxBid = len(s.Players[player].Hand)
	}
	var moves []LegalMove
	for v := minBid; v <= maxBid; v++ {
		moves = append(moves, LegalMove{PhaseIndex: s.CurrentPhase, CardIndex: MoveBidOffset - int16(v)})
	}
	if nilAllowed {
		moves = append(moves, LegalMove{PhaseIndex: s.CurrentPhase, CardIndex: MoveBidNil})
	}
	return moves
}

// ApplyMove mutates the state with one legal move and advances phase
// and player bookkeeping. The move must come from GenerateLegalMoves
// on the same state.
func ApplyMove(s *GameState, m *LegalMove, g *Genome) {
	if int(s.CurrentPhase) >= len(g.Phases) {
		return
	}
	pd := g.Phases[s.CurrentPhase]
	switch pd.PhaseType {
	case PhaseDraw:
		applyDraw(s, m, pd)
		s.CurrentPhase++
	case PhasePlay:
		applyPlay(s, m, g, pd)
		s.CurrentPhase++
	case PhaseDiscard:
		applyDiscard(s, m, g, pd)
		s.CurrentPhase++
	case PhaseTrick:
		applyTrickCard(s, m, g, pd)
	case PhaseBetting:
		ApplyBettingMove(s, m, pd)
	case PhaseClaim:
		applyClaim(s, m, g, pd)
	case PhaseBidding:
		applyBid(s, m, g)
	}
}

func applyDraw(s *GameState, m *LegalMove, pd PhaseDescriptor) {
	if m.CardIndex != MoveDraw {
		return
	}
	source := Location(pd.Data[0])
	count := int(binary.BigEndian.Uint32(pd.Data[1:5]))
	if count < 1 {
		count = 1
	}
	for i := 0; i < count; i++ {
		if !DrawCard(s, s.CurrentPlayer, source) {
			break
		}
	}
}

func applyPlay(s *GameState, m *LegalMove, g *Genome, pd PhaseDescriptor) {
	if m.CardIndex == MovePlayPass {
		return
	}
	player := s.CurrentPlayer
	if m.CardIndex <= MoveSetBase {
		// Set-of-rank play.
		rank := uint8(MoveSetBase - m.CardIndex)
		played := 0
		for played < int(m.Count) {
			idx := indexOfRank(s.Players[player].Hand, rank)
			if idx < 0 {
				break
			}
			PlayCard(s, player, idx, m.Target)
			played++
		}
		s.triggerEffect(g, rank)
		resolveTableau(s, g, m.Target)
		return
	}
	idx := int(m.CardIndex)
	if idx >= len(s.Players[player].Hand) {
		return
	}
	card := s.Players[player].Hand[idx]
	PlayCard(s, player, idx, m.Target)
	s.triggerEffect(g, card.Rank)
	resolveTableau(s, g, m.Target)
}

func indexOfRank(hand []Card, rank uint8) int {
	for i, c := range hand {
		if c.Rank == rank {
			return i
		}
	}
	return -1
}

// resolveTableau applies tableau-mode consequences after a card lands
// on the tableau.
func resolveTableau(s *GameState, g *Genome, target Location) {
	if target != LocationTableau || len(s.Tableau) == 0 {
		return
	}
	switch s.TableauMode {
	case TableauWar:
		resolveWarBattle(s)
	case TableauMatchRank:
		resolveMatchRank(s)
	}
}

// resolveWarBattle compares the war pile once every player has
// contributed; the highest rank takes the pile into hand. Ties go to
// player 0 on even turn numbers and player 1 on odd.
func resolveWarBattle(s *GameState) {
	pile := s.Tableau[len(s.Tableau)-1]
	if len(pile) < int(s.NumPlayers) {
		return
	}
	n := int(s.NumPlayers)
	contrib := pile[len(pile)-n:]
	best := 0
	tied := false
	for i := 1; i < n; i++ {
		if contrib[i].Rank > contrib[best].Rank {
			best = i
			tied = false
		} else if contrib[i].Rank == contrib[best].Rank {
			tied = true
		}
	}
	// Contributor order starts from the player who led the battle.
	leader := (int(s.CurrentPlayer) + 1) % n
	winner := (leader + best) % n
	if tied {
		if s.TurnNumber%2 == 0 {
			winner = 0
		} else {
			winner = 1 % n
		}
	}
	hand := &s.Players[winner].Hand
	*hand = append(*hand, pile...)
	s.Tableau[len(s.Tableau)-1] = pile[:0]
}

// resolveMatchRank captures a matching-rank pair into the player's
// score pile (Scopa-style).
func resolveMatchRank(s *GameState) {
	pileIdx := len(s.Tableau) - 1
	pile := s.Tableau[pileIdx]
	if len(pile) < 2 {
		return
	}
	played := pile[len(pile)-1]
	for i := len(pile) - 2; i >= 0; i-- {
		if pile[i].Rank == played.Rank {
			player := &s.Players[s.CurrentPlayer]
			player.Captured = append(player.Captured, pile[i], played)
			player.Score += 2
			pile = append(pile[:i], pile[i+1:len(pile)-1]...)
			s.Tableau[pileIdx] = pile
			return
		}
	}
}

func applyDiscard(s *GameState, m *LegalMove, g *Genome, pd PhaseDescriptor) {
	player := s.CurrentPlayer
	idx := int(m.CardIndex)
	if idx < 0 || idx >= len(s.Players[player].Hand) {
		return
	}
	card := s.Players[player].Hand[idx]
	PlayCard(s, player, idx, Location(pd.Data[0]))
	s.triggerEffect(g, card.Rank)
}

func applyTrickCard(s *GameState, m *LegalMove, g *Genome, pd PhaseDescriptor) {
	player := s.CurrentPlayer
	card, ok := removeHandCard(s, player, int(m.CardIndex))
	if !ok {
		return
	}
	if len(s.CurrentTrick) == 0 {
		s.TrickLeader = player
	}
	s.CurrentTrick = append(s.CurrentTrick, TrickCard{Player: player, Card: card})

	breakingSuit := pd.Data[3]
	if breakingSuit != SuitNone && card.Suit == breakingSuit {
		s.HeartsBroken = true
	}

	if len(s.CurrentTrick) < activeHandCount(s) {
		s.CurrentPlayer = nextActiveWithCards(s, player)
		return
	}
	resolveTrick(s, g, pd)
}

// activeHandCount counts players still holding cards plus the players
// already committed to the trick in progress.
func activeHandCount(s *GameState) int {
	n := len(s.CurrentTrick)
	var in [MaxPlayers]bool
	for _, tc := range s.CurrentTrick {
		in[tc.Player] = true
	}
	for i := range s.Players {
		if !in[i] && s.Players[i].Active && len(s.Players[i].Hand) > 0 {
			n++
		}
	}
	return n
}

func nextActiveWithCards(s *GameState, from uint8) uint8 {
	for step := 1; step <= int(s.NumPlayers); step++ {
		idx := uint8((int(from) + step) % int(s.NumPlayers))
		if s.Players[idx].Active && len(s.Players[idx].Hand) > 0 {
			return idx
		}
	}
	return from
}

// resolveTrick decides the trick winner, moves the trick to their
// captured pile, applies card scoring, and leads them into the next
// trick.
func resolveTrick(s *GameState, g *Genome, pd PhaseDescriptor) {
	trumpSuit := pd.Data[1]
	highWins := pd.Data[2] != 0

	leadSuit := s.CurrentTrick[0].Card.Suit
	winner := s.CurrentTrick[0]
	for _, tc := range s.CurrentTrick[1:] {
		if beatsTrick(tc.Card, winner.Card, leadSuit, trumpSuit, highWins) {
			winner = tc
		}
	}

	w := &s.Players[winner.Player]
	for _, tc := range s.CurrentTrick {
		w.Captured = append(w.Captured, tc.Card)
		w.Score += trickCardPoints(tc.Card, g)
	}
	w.TricksWon++
	s.TricksCompleted++
	s.CurrentTrick = s.CurrentTrick[:0]
	s.TurnNumber++
	s.CurrentPlayer = winner.Player

	if handOver(s, g) {
		finishHand(s, g)
		s.CurrentPhase++
	}
}

func beatsTrick(c, best Card, leadSuit, trumpSuit uint8, highWins bool) bool {
	cTrump := trumpSuit != SuitNone && c.Suit == trumpSuit
	bestTrump := trumpSuit != SuitNone && best.Suit == trumpSuit
	if cTrump != bestTrump {
		return cTrump
	}
	if !cTrump {
		cLead := c.Suit == leadSuit
		bestLead := best.Suit == leadSuit
		if cLead != bestLead {
			return cLead
		}
		if !cLead {
			return false
		}
	}
	if highWins {
		return c.Rank > best.Rank
	}
	return c.Rank < best.Rank
}

// trickCardPoints returns the scoring value of a captured card. With
// no explicit scoring rules the Hearts defaults apply when a breaking
// suit exists: hearts one point each, queen of spades thirteen.
func trickCardPoints(c Card, g *Genome) int {
	if len(g.CardScoring) > 0 {
		for _, cs := range g.CardScoring {
			if cs.Rank != RankNone && cs.Rank != c.Rank {
				continue
			}
			if cs.Suit != SuitNone && cs.Suit != c.Suit {
				continue
			}
			return int(cs.Points)
		}
		return 0
	}
	return 0
}

// handOver reports whether the current hand has run out of cards or
// tricks.
func handOver(s *GameState, g *Genome) bool {
	if g.Setup.TricksPerHand > 0 && s.TricksCompleted >= int(g.Setup.TricksPerHand) {
		return true
	}
	for i := range s.Players {
		if len(s.Players[i].Hand) > 0 {
			return false
		}
	}
	return true
}

// finishHand applies end-of-hand scoring (contracts, captured-card
// points).
func finishHand(s *GameState, g *Genome) {
	ApplyCardScoring(s, g)
	if g.Contract != nil {
		EvaluateContracts(s, g.Contract)
	}
}

func applyClaim(s *GameState, m *LegalMove, g *Genome, pd PhaseDescriptor) {
	player := s.CurrentPlayer

	switch {
	case m.CardIndex == MoveChallenge:
		resolveChallenge(s, true)
		s.CurrentPhase++
	case m.CardIndex == MoveAccept:
		resolveChallenge(s, false)
		s.CurrentPhase++
	case m.CardIndex <= MoveSetBase:
		rank := uint8(MoveSetBase - m.CardIndex)
		count := int(m.Count)
		hand := s.Players[player].Hand

		// Prefer honest cards of the claimed rank; fill with the
		// lowest cards when lying.
		s.Claim.Actual = s.Claim.Actual[:0]
		for i := 0; i < len(hand) && len(s.Claim.Actual) < count; {
			if hand[i].Rank == rank {
				s.Claim.Actual = append(s.Claim.Actual, hand[i])
				hand = append(hand[:i], hand[i+1:]...)
				continue
			}
			i++
		}
		for len(s.Claim.Actual) < count && len(hand) > 0 {
			low := 0
			for i := range hand {
				if hand[i].Rank < hand[low].Rank {
					low = i
				}
			}
			s.Claim.Actual = append(s.Claim.Actual, hand[low])
			hand = append(hand[:low], hand[low+1:]...)
		}
		s.Players[player].Hand = hand

		honest := true
		for _, c := range s.Claim.Actual {
			if c.Rank != rank {
				honest = false
				break
			}
		}
		s.Claim.Active = true
		s.Claim.Player = player
		s.Claim.Rank = rank
		s.Claim.Count = uint8(len(s.Claim.Actual))
		s.Claim.Honest = honest
		s.CurrentPlayer = nextActiveWithCards(s, player)
	}
}

// resolveChallenge reveals the claimed cards. A false claim sends the
// discard pile plus the claimed cards to the claimer; a challenged
// honest claim punishes the challenger; an accepted claim simply
// lands on the discard pile.
func resolveChallenge(s *GameState, challenged bool) {
	claimer := s.Claim.Player
	challenger := s.CurrentPlayer
	cards := s.Claim.Actual

	if !challenged {
		s.Discard = append(s.Discard, cards...)
	} else if s.Claim.Honest {
		h := &s.Players[challenger].Hand
		*h = append(*h, s.Discard...)
		*h = append(*h, cards...)
		s.Discard = s.Discard[:0]
	} else {
		h := &s.Players[claimer].Hand
		*h = append(*h, s.Discard...)
		*h = append(*h, cards...)
		s.Discard = s.Discard[:0]
	}
	s.Claim = ClaimState{Actual: s.Claim.Actual[:0]}
}

func applyBid(s *GameState, m *LegalMove, g *Genome) {
	player := &s.Players[s.CurrentPlayer]
	if m.CardIndex == MoveBidNil {
		player.CurrentBid = 0
		player.IsNilBid = true
	} else {
		player.CurrentBid = int(MoveBidOffset - m.CardIndex)
	}
	player.HasBid = true

	allBid := true
	for i := range s.Players {
		if s.Players[i].Active && !s.Players[i].HasBid {
			allBid = false
			break
		}
	}
	if allBid {
		s.BiddingComplete = true
		if s.TeamMode {
			s.TeamContracts = [2]int{}
			for i := range s.Players {
				if !s.Players[i].IsNilBid {
					s.TeamContracts[s.TeamOf[i]] += s.Players[i].CurrentBid
				}
			}
		}
		s.CurrentPhase++
		return
	}
	s.CurrentPlayer = nextActiveWithCards(s, s.CurrentPlayer)
}

// triggerEffect fires a rank-triggered special effect, if one exists.
func (s *GameState) triggerEffect(g *Genome, rank uint8) {
	if g.Effects == nil {
		return
	}
	if eff, ok := g.Effects[rank]; ok {
		ApplyEffect(s, eff)
	}
}

// CheckWinConditions walks the win conditions in order and returns the
// first determinable winner, or -1.
func CheckWinConditions(s *GameState, g *Genome) int8 {
	over := handOver(s, g)
	for _, wc := range g.WinConditions {
		switch wc.Kind {
		case WinEmptyHand:
			for i := range s.Players {
				if s.Players[i].Active && len(s.Players[i].Hand) == 0 {
					return int8(i)
				}
			}

		case WinFirstToScore:
			for i := range s.Players {
				if s.Players[i].Score >= int(wc.Threshold) {
					return int8(i)
				}
			}

		case WinHighScore:
			if over {
				return bestBy(s, func(p *PlayerState) int { return p.Score }, true)
			}

		case WinLowScore:
			if over {
				return bestBy(s, func(p *PlayerState) int { return p.Score }, false)
			}

		case WinMostTricks:
			if over {
				if s.TeamMode {
					return bestTeamBy(s, func(i int) int { return s.Players[i].TricksWon }, true)
				}
				return bestBy(s, func(p *PlayerState) int { return p.TricksWon }, true)
			}

		case WinFewestTricks:
			if over {
				return bestBy(s, func(p *PlayerState) int { return p.TricksWon }, false)
			}

		case WinMostCaptured:
			if over {
				return bestBy(s, func(p *PlayerState) int { return len(p.Captured) }, true)
			}

		case WinCaptureAll:
			if len(s.Deck) == 0 && tableauEmpty(s) {
				holder := -1
				for i := range s.Players {
					if len(s.Players[i].Hand) > 0 {
						if holder >= 0 {
							holder = -2
							break
						}
						holder = i
					}
				}
				if holder >= 0 {
					return int8(holder)
				}
			}

		case WinAllHandsEmpty:
			empty := true
			for i := range s.Players {
				if len(s.Players[i].Hand) > 0 {
					empty = false
					break
				}
			}
			if empty {
				return bestBy(s, func(p *PlayerState) int { return p.Score*1000 + len(p.Captured) }, true)
			}

		case WinMostChips:
			if wc.Threshold > 0 {
				for i := range s.Players {
					if s.Players[i].Chips >= int(wc.Threshold) {
						return int8(i)
					}
				}
				continue
			}
			// Betting knockout: everyone else is felted or folded out
			// of the game.
			funded := -1
			count := 0
			for i := range s.Players {
				if s.Players[i].Chips > 0 {
					funded = i
					count++
				}
			}
			if count == 1 && s.Pot == 0 {
				return int8(funded)
			}
			if over {
				return bestBy(s, func(p *PlayerState) int { return p.Chips }, true)
			}
		}
	}
	return -1
}

func tableauEmpty(s *GameState) bool {
	for _, pile := range s.Tableau {
		if len(pile) > 0 {
			return false
		}
	}
	return true
}

func bestBy(s *GameState, key func(*PlayerState) int, most bool) int8 {
	best := -1
	bestVal := 0
	for i := range s.Players {
		if !s.Players[i].Active {
			continue
		}
		v := key(&s.Players[i])
		if best < 0 || (most && v > bestVal) || (!most && v < bestVal) {
			best = i
			bestVal = v
		}
	}
	return int8(best)
}

func bestTeamBy(s *GameState, key func(int) int, most bool) int8 {
	var totals [2]int
	for i := range s.Players {
		totals[s.TeamOf[i]] += key(i)
	}
	winTeam := 0
	if (most && totals[1] > totals[0]) || (!most && totals[1] < totals[0]) {
		winTeam = 1
	}
	for i := range s.Players {
		if int(s.TeamOf[i]) == winTeam {
			return int8(i)
		}
	}
	return 0
}
