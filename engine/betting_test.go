package engine

import (
	"encoding/binary"
	"testing"
)

func bettingPhase(minBet, maxRaises uint32) PhaseDescriptor {
	data := make([]byte, PayloadBetting)
	binary.BigEndian.PutUint32(data[0:4], minBet)
	binary.BigEndian.PutUint32(data[4:8], maxRaises)
	return PhaseDescriptor{PhaseType: PhaseBetting, Data: data}
}

func hasMove(moves []LegalMove, idx int16) bool {
	for _, m := range moves {
		if m.CardIndex == idx {
			return true
		}
	}
	return false
}

func TestBettingMovesNoCurrentBet(t *testing.T) {
	s := GetState(2)
	defer PutState(s)

	s.Players[0].Chips = 100
	moves := bettingMoves(s, bettingPhase(10, 3))

	if !hasMove(moves, MoveCheck) {
		t.Error("expected CHECK with no bet to match")
	}
	if !hasMove(moves, MoveBet) {
		t.Error("expected BET with enough chips")
	}
	if hasMove(moves, MoveFold) {
		t.Error("FOLD should not be offered with nothing to call")
	}
	if hasMove(moves, MoveCall) {
		t.Error("CALL should not be offered with nothing to call")
	}
}

func TestBettingMovesWithCurrentBet(t *testing.T) {
	s := GetState(2)
	defer PutState(s)

	s.Players[0].Chips = 100
	s.CurrentBet = 20
	moves := bettingMoves(s, bettingPhase(10, 3))

	if !hasMove(moves, MoveCall) || !hasMove(moves, MoveRaise) || !hasMove(moves, MoveFold) {
		t.Errorf("expected CALL, RAISE, FOLD, got %+v", moves)
	}
	if hasMove(moves, MoveCheck) {
		t.Error("CHECK should not be offered facing a bet")
	}
}

func TestBettingMovesCantAffordCall(t *testing.T) {
	s := GetState(2)
	defer PutState(s)

	s.Players[0].Chips = 5
	s.CurrentBet = 10
	moves := bettingMoves(s, bettingPhase(10, 3))

	if !hasMove(moves, MoveAllIn) || !hasMove(moves, MoveFold) {
		t.Errorf("expected ALL_IN and FOLD, got %+v", moves)
	}
	if hasMove(moves, MoveCall) {
		t.Error("CALL should not be offered short-stacked")
	}
}

func TestBettingMovesRaiseCapped(t *testing.T) {
	s := GetState(2)
	defer PutState(s)

	s.Players[0].Chips = 100
	s.CurrentBet = 20
	s.RaiseCount = 3
	moves := bettingMoves(s, bettingPhase(10, 3))

	if hasMove(moves, MoveRaise) {
		t.Error("RAISE should be capped by max_raises")
	}
	if !hasMove(moves, MoveCall) {
		t.Error("CALL should still be offered")
	}
}

func TestBettingMovesFoldedPlayerHasNone(t *testing.T) {
	s := GetState(2)
	defer PutState(s)

	s.Players[0].Chips = 100
	s.Players[0].HasFolded = true
	if moves := bettingMoves(s, bettingPhase(10, 3)); moves != nil {
		t.Errorf("folded player got moves: %+v", moves)
	}
}

func TestApplyBettingMoveBet(t *testing.T) {
	s := GetState(2)
	defer PutState(s)
	pd := bettingPhase(10, 3)

	s.Players[0].Chips = 100
	s.Players[1].Chips = 100

	m := LegalMove{CardIndex: MoveBet}
	ApplyBettingMove(s, &m, pd)

	if s.Players[0].Chips != 90 {
		t.Errorf("expected 90 chips, got %d", s.Players[0].Chips)
	}
	if s.Pot != 10 || s.CurrentBet != 10 {
		t.Errorf("pot=%d currentBet=%d", s.Pot, s.CurrentBet)
	}
	if s.BettingComplete {
		t.Error("round ended with a bet unanswered")
	}
	if s.CurrentPlayer != 1 {
		t.Errorf("action should pass to player 1, got %d", s.CurrentPlayer)
	}
}

func TestApplyBettingMoveRaise(t *testing.T) {
	s := GetState(2)
	defer PutState(s)
	pd := bettingPhase(10, 3)

	s.Players[0].Chips = 100
	s.Players[1].Chips = 100

	bet := LegalMove{CardIndex: MoveBet}
	ApplyBettingMove(s, &bet, pd)

	// Player 1 raises: call 10 plus min bet 10.
	raise := LegalMove{CardIndex: MoveRaise}
	ApplyBettingMove(s, &raise, pd)

	if s.Players[1].Chips != 80 {
		t.Errorf("raise should cost 20, chips=%d", s.Players[1].Chips)
	}
	if s.CurrentBet != 20 || s.RaiseCount != 1 {
		t.Errorf("currentBet=%d raiseCount=%d", s.CurrentBet, s.RaiseCount)
	}
	if s.Pot != 30 {
		t.Errorf("pot=%d", s.Pot)
	}
}

func TestApplyBettingMoveCallEndsRound(t *testing.T) {
	s := GetState(2)
	defer PutState(s)
	pd := bettingPhase(10, 3)

	s.Players[0].Chips = 100
	s.Players[1].Chips = 100

	bet := LegalMove{CardIndex: MoveBet}
	ApplyBettingMove(s, &bet, pd)
	call := LegalMove{CardIndex: MoveCall}
	ApplyBettingMove(s, &call, pd)

	if !s.BettingComplete {
		t.Error("matched bets should end the round")
	}
	if s.Pot != 20 {
		t.Errorf("pot=%d", s.Pot)
	}
	if s.CurrentBet != 0 || s.Players[0].CurrentBet != 0 {
		t.Error("per-round bets should reset at round end")
	}
}

func TestApplyBettingMoveFoldAwardsPot(t *testing.T) {
	s := GetState(2)
	defer PutState(s)
	pd := bettingPhase(10, 3)

	s.Players[0].Chips = 100
	s.Players[1].Chips = 100

	bet := LegalMove{CardIndex: MoveBet}
	ApplyBettingMove(s, &bet, pd)
	fold := LegalMove{CardIndex: MoveFold}
	ApplyBettingMove(s, &fold, pd)

	if s.Players[0].Chips != 100 {
		t.Errorf("bettor should get the pot back, chips=%d", s.Players[0].Chips)
	}
	if s.Pot != 0 {
		t.Errorf("pot=%d", s.Pot)
	}
	if !s.BettingComplete {
		t.Error("fold-out should end the round")
	}
	if s.Players[1].HasFolded {
		t.Error("folded flag should clear for the next round")
	}
}

func TestApplyBettingMoveAllInShortStack(t *testing.T) {
	s := GetState(2)
	defer PutState(s)
	pd := bettingPhase(10, 3)

	s.Players[0].Chips = 100
	s.Players[1].Chips = 4

	bet := LegalMove{CardIndex: MoveBet}
	ApplyBettingMove(s, &bet, pd)
	allIn := LegalMove{CardIndex: MoveAllIn}
	ApplyBettingMove(s, &allIn, pd)

	if s.Players[1].Chips != 0 || !s.Players[1].IsAllIn {
		t.Errorf("expected all-in, got %+v", s.Players[1])
	}
	// A short all-in does not raise the table bet.
	if s.CurrentBet != 10 {
		t.Errorf("currentBet=%d", s.CurrentBet)
	}
	if !s.BettingComplete {
		t.Error("no actors left to match, round should end")
	}
}

func TestResolveShowdownBestHandWins(t *testing.T) {
	s := GetState(2)
	defer PutState(s)

	s.Pot = 50
	s.Players[0].Hand = []Card{
		{Rank: RankTwo, Suit: SuitHearts},
		{Rank: RankNine, Suit: SuitClubs},
	}
	s.Players[1].Hand = []Card{
		{Rank: RankKing, Suit: SuitHearts},
		{Rank: RankKing, Suit: SuitClubs},
	}
	winner := ResolveShowdown(s)
	if winner != 1 {
		t.Errorf("pair should beat high card, winner=%d", winner)
	}
	if s.Players[1].Chips != 50 || s.Pot != 0 {
		t.Errorf("pot not paid: chips=%d pot=%d", s.Players[1].Chips, s.Pot)
	}
}

func TestEvaluateHandStrengthOrdering(t *testing.T) {
	highCard := []Card{{Rank: RankAce, Suit: SuitHearts}, {Rank: RankNine, Suit: SuitClubs}}
	pair := []Card{{Rank: RankTwo, Suit: SuitHearts}, {Rank: RankTwo, Suit: SuitClubs}}
	twoPair := []Card{
		{Rank: RankTwo, Suit: SuitHearts}, {Rank: RankTwo, Suit: SuitClubs},
		{Rank: RankFive, Suit: SuitHearts}, {Rank: RankFive, Suit: SuitClubs},
	}
	trips := []Card{
		{Rank: RankTwo, Suit: SuitHearts}, {Rank: RankTwo, Suit: SuitClubs},
		{Rank: RankTwo, Suit: SuitSpades},
	}
	straight := []Card{
		{Rank: RankTwo, Suit: SuitHearts}, {Rank: RankThree, Suit: SuitClubs},
		{Rank: RankFour, Suit: SuitHearts}, {Rank: RankFive, Suit: SuitClubs},
		{Rank: RankSix, Suit: SuitHearts},
	}
	flush := []Card{
		{Rank: RankTwo, Suit: SuitHearts}, {Rank: RankFive, Suit: SuitHearts},
		{Rank: RankEight, Suit: SuitHearts}, {Rank: RankJack, Suit: SuitHearts},
		{Rank: RankKing, Suit: SuitHearts},
	}
	quads := []Card{
		{Rank: RankTwo, Suit: SuitHearts}, {Rank: RankTwo, Suit: SuitClubs},
		{Rank: RankTwo, Suit: SuitSpades}, {Rank: RankTwo, Suit: SuitDiamonds},
	}

	ladder := [][]Card{highCard, pair, twoPair, trips, straight, flush, quads}
	prev := -1
	for i, hand := range ladder {
		v := EvaluateHandStrength(hand)
		if v <= prev {
			t.Errorf("rung %d strength %d not above previous %d", i, v, prev)
		}
		prev = v
	}
	if EvaluateHandStrength(nil) != 0 {
		t.Error("empty hand should score 0")
	}
}
