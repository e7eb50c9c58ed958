package engine

import (
	"encoding/binary"
	"testing"
)

func playPhase(target Location, minCards, maxCards uint8, mandatory, passIfUnable bool, cond []byte) PhaseDescriptor {
	data := make([]byte, PayloadPlay+len(cond))
	data[0] = uint8(target)
	data[1] = minCards
	data[2] = maxCards
	if mandatory {
		data[3] = 1
	}
	if passIfUnable {
		data[4] = 1
	}
	binary.BigEndian.PutUint32(data[5:9], uint32(len(cond)))
	copy(data[9:], cond)
	return PhaseDescriptor{PhaseType: PhasePlay, Data: data}
}

func trickPhase(leadRequired bool, trumpSuit uint8, highWins bool, breakingSuit uint8) PhaseDescriptor {
	data := make([]byte, PayloadTrick)
	if leadRequired {
		data[0] = 1
	}
	data[1] = trumpSuit
	if highWins {
		data[2] = 1
	}
	data[3] = breakingSuit
	return PhaseDescriptor{PhaseType: PhaseTrick, Data: data}
}

func TestPlayMovesOnePerCard(t *testing.T) {
	s := GetState(2)
	defer PutState(s)

	s.Players[0].Hand = append(s.Players[0].Hand,
		Card{Rank: RankTwo, Suit: SuitHearts},
		Card{Rank: RankFive, Suit: SuitClubs},
		Card{Rank: RankNine, Suit: SuitSpades},
	)
	pd := playPhase(LocationDiscard, 1, 1, true, false, nil)
	moves := playMoves(s, pd)
	if len(moves) != 3 {
		t.Fatalf("expected 3 moves, got %d", len(moves))
	}
	for i, m := range moves {
		if m.CardIndex != int16(i) || m.Target != LocationDiscard {
			t.Errorf("move %d: %+v", i, m)
		}
	}
}

func TestPlayMovesSetPlays(t *testing.T) {
	s := GetState(2)
	defer PutState(s)

	s.Players[0].Hand = append(s.Players[0].Hand,
		Card{Rank: RankSeven, Suit: SuitHearts},
		Card{Rank: RankSeven, Suit: SuitClubs},
		Card{Rank: RankSeven, Suit: SuitSpades},
		Card{Rank: RankTwo, Suit: SuitDiamonds},
	)
	pd := playPhase(LocationDiscard, 1, 3, true, false, nil)
	moves := playMoves(s, pd)

	wantSet := MoveSetBase - int16(RankSeven)
	pairs, trips := 0, 0
	for _, m := range moves {
		if m.CardIndex == wantSet {
			switch m.Count {
			case 2:
				pairs++
			case 3:
				trips++
			}
		}
	}
	if pairs != 1 || trips != 1 {
		t.Errorf("expected pair and trip set moves for sevens, got %+v", moves)
	}
}

func TestPlayMovesMinCardsFiltersSingles(t *testing.T) {
	s := GetState(2)
	defer PutState(s)

	s.Players[0].Hand = append(s.Players[0].Hand,
		Card{Rank: RankSeven, Suit: SuitHearts},
		Card{Rank: RankSeven, Suit: SuitClubs},
		Card{Rank: RankTwo, Suit: SuitDiamonds},
	)
	pd := playPhase(LocationDiscard, 2, 2, true, true, nil)
	moves := playMoves(s, pd)
	for _, m := range moves {
		if m.CardIndex >= 0 {
			t.Errorf("single-card move survived min_cards=2: %+v", m)
		}
	}
	if len(moves) != 1 || moves[0].Count != 2 {
		t.Errorf("expected only the pair of sevens, got %+v", moves)
	}
}

func TestPlayMovesPassWhenUnable(t *testing.T) {
	s := GetState(2)
	defer PutState(s)

	s.Players[0].Hand = append(s.Players[0].Hand, Card{Rank: RankTwo, Suit: SuitDiamonds})
	// Condition no hand can satisfy: rank > ace.
	cond := make([]byte, ConditionSize)
	cond[0] = CondCardRank
	cond[1] = OpGT
	binary.BigEndian.PutUint32(cond[2:6], 200)
	pd := playPhase(LocationDiscard, 1, 1, true, true, cond)

	moves := playMoves(s, pd)
	if len(moves) != 1 || moves[0].CardIndex != MovePlayPass {
		t.Errorf("expected a single pass move, got %+v", moves)
	}
}

func TestTrickMovesFollowSuit(t *testing.T) {
	s := GetState(2)
	defer PutState(s)

	s.CurrentTrick = append(s.CurrentTrick, TrickCard{Player: 1, Card: Card{Rank: RankFour, Suit: SuitHearts}})
	s.Players[0].Hand = append(s.Players[0].Hand,
		Card{Rank: RankFive, Suit: SuitHearts},
		Card{Rank: RankSeven, Suit: SuitClubs},
		Card{Rank: RankNine, Suit: SuitHearts},
	)
	pd := trickPhase(true, SuitNone, true, SuitNone)
	moves := trickMoves(s, pd)
	if len(moves) != 2 {
		t.Fatalf("expected 2 follow-suit moves, got %+v", moves)
	}
	for _, m := range moves {
		if s.Players[0].Hand[m.CardIndex].Suit != SuitHearts {
			t.Errorf("off-suit move with lead suit in hand: %+v", m)
		}
	}
}

func TestTrickMovesBreakingSuitNotLeadable(t *testing.T) {
	s := GetState(2)
	defer PutState(s)

	s.Players[0].Hand = append(s.Players[0].Hand,
		Card{Rank: RankFive, Suit: SuitHearts},
		Card{Rank: RankSeven, Suit: SuitClubs},
	)
	pd := trickPhase(true, SuitNone, true, SuitHearts)

	moves := trickMoves(s, pd)
	if len(moves) != 1 || s.Players[0].Hand[moves[0].CardIndex].Suit != SuitClubs {
		t.Errorf("hearts led before broken: %+v", moves)
	}

	s.HeartsBroken = true
	moves = trickMoves(s, pd)
	if len(moves) != 2 {
		t.Errorf("expected whole hand leadable after break, got %+v", moves)
	}
}

func TestTrickMovesOnlyBreakingSuitLeft(t *testing.T) {
	s := GetState(2)
	defer PutState(s)

	s.Players[0].Hand = append(s.Players[0].Hand,
		Card{Rank: RankFive, Suit: SuitHearts},
		Card{Rank: RankNine, Suit: SuitHearts},
	)
	pd := trickPhase(true, SuitNone, true, SuitHearts)
	moves := trickMoves(s, pd)
	if len(moves) != 2 {
		t.Errorf("all-hearts hand must still lead, got %+v", moves)
	}
}

func TestResolveTrickWinnerTakesAndLeads(t *testing.T) {
	s := GetState(2)
	defer PutState(s)
	g := &Genome{}

	// Keep hands non-empty so the hand does not end.
	s.Players[0].Hand = append(s.Players[0].Hand, Card{Rank: RankTwo, Suit: SuitClubs})
	s.Players[1].Hand = append(s.Players[1].Hand, Card{Rank: RankThree, Suit: SuitClubs})
	s.CurrentTrick = append(s.CurrentTrick,
		TrickCard{Player: 0, Card: Card{Rank: RankFive, Suit: SuitHearts}},
		TrickCard{Player: 1, Card: Card{Rank: RankNine, Suit: SuitHearts}},
	)
	pd := trickPhase(true, SuitNone, true, SuitNone)
	resolveTrick(s, g, pd)

	if s.Players[1].TricksWon != 1 {
		t.Errorf("expected player 1 to win the trick, tricks: %d/%d",
			s.Players[0].TricksWon, s.Players[1].TricksWon)
	}
	if len(s.Players[1].Captured) != 2 {
		t.Errorf("winner should capture both cards, got %d", len(s.Players[1].Captured))
	}
	if s.CurrentPlayer != 1 {
		t.Errorf("winner leads next, current player %d", s.CurrentPlayer)
	}
	if len(s.CurrentTrick) != 0 {
		t.Error("trick not cleared")
	}
}

func TestResolveTrickTrumpBeatsLead(t *testing.T) {
	s := GetState(2)
	defer PutState(s)
	g := &Genome{}

	s.Players[0].Hand = append(s.Players[0].Hand, Card{Rank: RankTwo, Suit: SuitClubs})
	s.Players[1].Hand = append(s.Players[1].Hand, Card{Rank: RankThree, Suit: SuitClubs})
	s.CurrentTrick = append(s.CurrentTrick,
		TrickCard{Player: 0, Card: Card{Rank: RankAce, Suit: SuitHearts}},
		TrickCard{Player: 1, Card: Card{Rank: RankTwo, Suit: SuitSpades}},
	)
	pd := trickPhase(true, SuitSpades, true, SuitNone)
	resolveTrick(s, g, pd)

	if s.Players[1].TricksWon != 1 {
		t.Error("low trump should beat high lead")
	}
}

func TestResolveWarBattleHighCardTakesPile(t *testing.T) {
	s := GetState(2)
	defer PutState(s)
	s.TableauMode = TableauWar

	s.Tableau = append(s.Tableau, []Card{
		{Rank: RankFive, Suit: SuitHearts},
		{Rank: RankNine, Suit: SuitClubs},
	})
	// Player 1 just played, so player 0 led the battle.
	s.CurrentPlayer = 1
	resolveWarBattle(s)

	if len(s.Players[1].Hand) != 2 {
		t.Errorf("player 1 played the nine and should take the pile, hands: %d/%d",
			len(s.Players[0].Hand), len(s.Players[1].Hand))
	}
	if len(s.Tableau[0]) != 0 {
		t.Errorf("pile should be empty, has %d", len(s.Tableau[0]))
	}
}

func TestResolveWarBattleWaitsForAllPlayers(t *testing.T) {
	s := GetState(2)
	defer PutState(s)
	s.TableauMode = TableauWar

	s.Tableau = append(s.Tableau, []Card{{Rank: RankFive, Suit: SuitHearts}})
	resolveWarBattle(s)
	if len(s.Tableau[0]) != 1 {
		t.Error("battle resolved with only one contribution")
	}
}

func TestResolveMatchRankCapturesPair(t *testing.T) {
	s := GetState(2)
	defer PutState(s)
	s.TableauMode = TableauMatchRank

	s.Tableau = append(s.Tableau, []Card{
		{Rank: RankThree, Suit: SuitHearts},
		{Rank: RankSeven, Suit: SuitClubs},
		{Rank: RankThree, Suit: SuitSpades},
	})
	resolveMatchRank(s)

	if len(s.Players[0].Captured) != 2 {
		t.Errorf("expected captured pair, got %d", len(s.Players[0].Captured))
	}
	if s.Players[0].Score != 2 {
		t.Errorf("expected score 2, got %d", s.Players[0].Score)
	}
	if len(s.Tableau[0]) != 1 || s.Tableau[0][0].Rank != RankSeven {
		t.Errorf("unmatched card should remain, got %+v", s.Tableau[0])
	}
}

func claimPhase(rankFixed, minCards, maxCards uint8, challenge, sequential bool) PhaseDescriptor {
	data := make([]byte, PayloadClaim)
	data[0] = uint8(LocationDiscard)
	data[1] = rankFixed
	data[2] = minCards
	data[3] = maxCards
	if challenge {
		data[4] = 1
	}
	binary.BigEndian.PutUint32(data[5:9], 4)
	if sequential {
		data[9] = 1
	}
	return PhaseDescriptor{PhaseType: PhaseClaim, Data: data}
}

func TestClaimMovesFreeRankUsesHeldRanks(t *testing.T) {
	s := GetState(2)
	defer PutState(s)

	s.Players[0].Hand = append(s.Players[0].Hand,
		Card{Rank: RankTwo, Suit: SuitHearts},
		Card{Rank: RankTwo, Suit: SuitClubs},
		Card{Rank: RankFive, Suit: SuitSpades},
	)
	pd := claimPhase(RankNone, 1, 2, true, false)
	moves := claimMoves(s, pd)

	// One move per held rank per count: twos x{1,2} and fives x{1,2}.
	if len(moves) != 4 {
		t.Fatalf("expected 4 claim moves, got %+v", moves)
	}
	for _, m := range moves {
		rank := uint8(MoveSetBase - m.CardIndex)
		if rank != RankTwo && rank != RankFive {
			t.Errorf("claimed a rank not in hand: %+v", m)
		}
	}
}

func TestClaimMovesFixedRankOnly(t *testing.T) {
	s := GetState(2)
	defer PutState(s)

	s.Players[0].Hand = append(s.Players[0].Hand,
		Card{Rank: RankTwo, Suit: SuitHearts},
		Card{Rank: RankNine, Suit: SuitClubs},
	)
	pd := claimPhase(RankNine, 1, 1, true, false)
	moves := claimMoves(s, pd)
	if len(moves) != 1 || moves[0].CardIndex != MoveSetBase-int16(RankNine) {
		t.Errorf("expected a single nine claim, got %+v", moves)
	}
}

func TestClaimMovesRespondToActiveClaim(t *testing.T) {
	s := GetState(2)
	defer PutState(s)

	s.Players[0].Hand = append(s.Players[0].Hand, Card{Rank: RankTwo, Suit: SuitHearts})
	s.Claim.Active = true
	s.Claim.Player = 1

	moves := claimMoves(s, claimPhase(RankNone, 1, 1, true, false))
	if len(moves) != 2 {
		t.Fatalf("expected accept and challenge, got %+v", moves)
	}

	moves = claimMoves(s, claimPhase(RankNone, 1, 1, false, false))
	if len(moves) != 1 || moves[0].CardIndex != MoveAccept {
		t.Errorf("challenge should be gated off, got %+v", moves)
	}
}

func TestRequiredClaimRank(t *testing.T) {
	s := GetState(2)
	defer PutState(s)

	if got := requiredClaimRank(s, RankSeven, false); got != RankSeven {
		t.Errorf("fixed rank: got %d", got)
	}
	if got := requiredClaimRank(s, RankNone, false); got != RankNone {
		t.Errorf("free claim should be unconstrained, got %d", got)
	}
	if got := requiredClaimRank(s, RankNone, true); got != RankTwo {
		t.Errorf("sequential with empty discard starts at two, got %d", got)
	}
	s.Discard = append(s.Discard, Card{Rank: RankThree, Suit: SuitHearts})
	if got := requiredClaimRank(s, RankNone, true); got != RankFour {
		t.Errorf("sequential should follow the top discard, got %d", got)
	}
	s.Discard = append(s.Discard, Card{Rank: RankAce, Suit: SuitClubs})
	if got := requiredClaimRank(s, RankNone, true); got != RankTwo {
		t.Errorf("sequential wraps after ace, got %d", got)
	}
}

func TestApplyClaimHonestAndLying(t *testing.T) {
	s := GetState(2)
	defer PutState(s)
	g := &Genome{}
	pd := claimPhase(RankNone, 1, 3, true, false)

	s.Players[0].Hand = append(s.Players[0].Hand,
		Card{Rank: RankTwo, Suit: SuitHearts},
		Card{Rank: RankTwo, Suit: SuitClubs},
		Card{Rank: RankFive, Suit: SuitSpades},
	)
	s.Players[1].Hand = append(s.Players[1].Hand, Card{Rank: RankNine, Suit: SuitHearts})

	honest := LegalMove{CardIndex: MoveSetBase - int16(RankTwo), Count: 2}
	applyClaim(s, &honest, g, pd)
	if !s.Claim.Active || s.Claim.Player != 0 || s.Claim.Rank != RankTwo || s.Claim.Count != 2 {
		t.Fatalf("claim not recorded: %+v", s.Claim)
	}
	if !s.Claim.Honest {
		t.Error("two twos claimed as twos is honest")
	}
	if len(s.Players[0].Hand) != 1 {
		t.Errorf("claimed cards should leave the hand, %d remain", len(s.Players[0].Hand))
	}
	if s.CurrentPlayer != 1 {
		t.Errorf("turn should pass, current player %d", s.CurrentPlayer)
	}

	// Claiming more of a rank than held fills with low cards and lies.
	s.Reset(2)
	s.Players[0].Hand = append(s.Players[0].Hand,
		Card{Rank: RankTwo, Suit: SuitHearts},
		Card{Rank: RankFive, Suit: SuitSpades},
		Card{Rank: RankNine, Suit: SuitClubs},
	)
	s.Players[1].Hand = append(s.Players[1].Hand, Card{Rank: RankNine, Suit: SuitHearts})

	lie := LegalMove{CardIndex: MoveSetBase - int16(RankTwo), Count: 2}
	applyClaim(s, &lie, g, pd)
	if s.Claim.Honest {
		t.Error("claiming two twos with one in hand is a lie")
	}
	if s.Claim.Count != 2 || len(s.Players[0].Hand) != 1 {
		t.Errorf("lie should still commit two cards: count=%d hand=%d",
			s.Claim.Count, len(s.Players[0].Hand))
	}
}

func TestBiddingMovesRange(t *testing.T) {
	s := GetState(2)
	defer PutState(s)

	s.Players[0].Hand = make([]Card, 3)
	data := []byte{0, 13, 1, 0}
	pd := PhaseDescriptor{PhaseType: PhaseBidding, Data: data}
	moves := biddingMoves(s, pd)

	// Bids 0..3 (capped by hand size) plus nil.
	if len(moves) != 5 {
		t.Fatalf("expected 5 moves, got %+v", moves)
	}
	hasNil := false
	for _, m := range moves {
		if m.CardIndex == MoveBidNil {
			hasNil = true
		}
	}
	if !hasNil {
		t.Error("nil bid missing")
	}
}

func TestApplyBidCompletesRound(t *testing.T) {
	s := GetState(2)
	defer PutState(s)
	g := &Genome{}

	s.Players[0].Hand = make([]Card, 3)
	s.Players[1].Hand = make([]Card, 3)
	m := LegalMove{CardIndex: MoveBidOffset - 3}
	applyBid(s, &m, g)
	if s.Players[0].CurrentBid != 3 || !s.Players[0].HasBid {
		t.Errorf("bid not recorded: %+v", s.Players[0])
	}
	if s.BiddingComplete {
		t.Error("round complete with one bid outstanding")
	}
	if s.CurrentPlayer != 1 {
		t.Errorf("expected player 1 to bid next, got %d", s.CurrentPlayer)
	}

	nilBid := LegalMove{CardIndex: MoveBidNil}
	applyBid(s, &nilBid, g)
	if !s.Players[1].IsNilBid {
		t.Error("nil bid not recorded")
	}
	if !s.BiddingComplete {
		t.Error("round should be complete")
	}
}

func TestCheckWinConditionsEmptyHand(t *testing.T) {
	s := GetState(2)
	defer PutState(s)
	g := &Genome{WinConditions: []WinCondition{{Kind: WinEmptyHand}}}

	s.Players[0].Hand = append(s.Players[0].Hand, Card{Rank: RankTwo, Suit: SuitHearts})
	s.Players[1].Hand = append(s.Players[1].Hand, Card{Rank: RankFive, Suit: SuitClubs})
	if w := CheckWinConditions(s, g); w != -1 {
		t.Errorf("no winner expected, got %d", w)
	}

	s.Players[1].Hand = s.Players[1].Hand[:0]
	if w := CheckWinConditions(s, g); w != 1 {
		t.Errorf("expected winner 1, got %d", w)
	}
}

func TestCheckWinConditionsFirstToScore(t *testing.T) {
	s := GetState(2)
	defer PutState(s)
	g := &Genome{WinConditions: []WinCondition{{Kind: WinFirstToScore, Threshold: 50}}}

	// Hands still hold cards; the threshold fires mid-game.
	s.Players[0].Hand = append(s.Players[0].Hand, Card{})
	s.Players[1].Hand = append(s.Players[1].Hand, Card{})
	s.Players[1].Score = 49
	if w := CheckWinConditions(s, g); w != -1 {
		t.Errorf("threshold not reached, got %d", w)
	}
	s.Players[1].Score = 50
	if w := CheckWinConditions(s, g); w != 1 {
		t.Errorf("expected winner 1, got %d", w)
	}
}

func TestCheckWinConditionsChipKnockout(t *testing.T) {
	s := GetState(2)
	defer PutState(s)
	g := &Genome{WinConditions: []WinCondition{{Kind: WinMostChips}}}

	s.Players[0].Hand = append(s.Players[0].Hand, Card{})
	s.Players[1].Hand = append(s.Players[1].Hand, Card{})
	s.Players[0].Chips = 200
	s.Players[1].Chips = 0
	if w := CheckWinConditions(s, g); w != 0 {
		t.Errorf("expected knockout winner 0, got %d", w)
	}
}

func TestGenerateLegalMovesStopsAtMaxTurns(t *testing.T) {
	s := GetState(2)
	defer PutState(s)

	g, err := ParseGenome(minimalBytecode())
	if err != nil {
		t.Fatal(err)
	}
	s.Players[0].Hand = append(s.Players[0].Hand, Card{Rank: RankTwo, Suit: SuitHearts})
	s.TurnNumber = int(g.Header.MaxTurns)
	if moves := GenerateLegalMoves(s, g); moves != nil {
		t.Errorf("expected no moves past max turns, got %+v", moves)
	}
}

func TestGenerateLegalMovesDiscardPhase(t *testing.T) {
	s := GetState(2)
	defer PutState(s)

	g, err := ParseGenome(minimalBytecode())
	if err != nil {
		t.Fatal(err)
	}
	s.Players[0].Hand = append(s.Players[0].Hand,
		Card{Rank: RankTwo, Suit: SuitHearts},
		Card{Rank: RankFive, Suit: SuitClubs},
	)
	s.Players[1].Hand = append(s.Players[1].Hand, Card{Rank: RankNine, Suit: SuitSpades})

	moves := GenerateLegalMoves(s, g)
	if len(moves) != 2 {
		t.Fatalf("expected 2 discard moves, got %+v", moves)
	}

	ApplyMove(s, &moves[0], g)
	if len(s.Players[0].Hand) != 1 || len(s.Discard) != 1 {
		t.Errorf("discard not applied: hand=%d discard=%d", len(s.Players[0].Hand), len(s.Discard))
	}
	if s.CardsInPlay() != 3 {
		t.Errorf("cards not conserved: %d", s.CardsInPlay())
	}
}
