package engine

import (
	"testing"
)

func TestApplyCardScoring(t *testing.T) {
	s := GetState(2)
	defer PutState(s)
	g := &Genome{CardScoring: []CardScore{
		{Rank: RankQueen, Suit: SuitSpades, Points: 13},
		{Rank: 255, Suit: SuitHearts, Points: 1},
	}}

	s.Players[0].Captured = []Card{
		{Rank: RankQueen, Suit: SuitSpades},
		{Rank: RankTwo, Suit: SuitHearts},
		{Rank: RankNine, Suit: SuitClubs},
	}
	ApplyCardScoring(s, g)
	if s.Players[0].Score != 14 {
		t.Errorf("expected 14 points, got %d", s.Players[0].Score)
	}
	if s.Players[1].Score != 0 {
		t.Errorf("empty capture pile scored %d", s.Players[1].Score)
	}
}

func TestApplyCardScoringNegativeHandPoints(t *testing.T) {
	s := GetState(2)
	defer PutState(s)
	g := &Genome{CardScoring: []CardScore{
		{Rank: RankKing, Suit: SuitNone, Points: -10},
	}}

	s.Players[0].Hand = []Card{{Rank: RankKing, Suit: SuitHearts}}
	s.Players[1].Hand = []Card{{Rank: RankTwo, Suit: SuitHearts}}
	ApplyCardScoring(s, g)
	if s.Players[0].Score != -10 {
		t.Errorf("stuck king should cost 10, got %d", s.Players[0].Score)
	}
	if s.Players[1].Score != 0 {
		t.Errorf("non-matching hand card scored %d", s.Players[1].Score)
	}
}

func TestEvaluateContractsMade(t *testing.T) {
	s := GetState(2)
	defer PutState(s)
	rules := &ContractRules{PointsPerTrick: 10, OvertrickPoints: 1}

	s.Players[0].HasBid = true
	s.Players[0].CurrentBid = 3
	s.Players[0].TricksWon = 5
	EvaluateContracts(s, rules)
	if s.Players[0].Score != 32 {
		t.Errorf("3 bid + 2 over should score 32, got %d", s.Players[0].Score)
	}
}

func TestEvaluateContractsFailed(t *testing.T) {
	s := GetState(2)
	defer PutState(s)
	rules := &ContractRules{PointsPerTrick: 10}

	s.Players[0].HasBid = true
	s.Players[0].CurrentBid = 4
	s.Players[0].TricksWon = 2
	EvaluateContracts(s, rules)
	if s.Players[0].Score != -40 {
		t.Errorf("failed contract should cost the full bid, got %d", s.Players[0].Score)
	}
}

func TestEvaluateContractsNilBid(t *testing.T) {
	s := GetState(2)
	defer PutState(s)
	rules := &ContractRules{NilBonus: 100, NilPenalty: 100}

	s.Players[0].HasBid = true
	s.Players[0].IsNilBid = true
	s.Players[1].HasBid = true
	s.Players[1].IsNilBid = true
	s.Players[1].TricksWon = 1
	EvaluateContracts(s, rules)
	if s.Players[0].Score != 100 {
		t.Errorf("made nil should earn the bonus, got %d", s.Players[0].Score)
	}
	if s.Players[1].Score != -100 {
		t.Errorf("broken nil should cost the penalty, got %d", s.Players[1].Score)
	}
}

func TestEvaluateTeamContractsWithBags(t *testing.T) {
	s := GetState(4)
	defer PutState(s)
	rules := &ContractRules{PointsPerTrick: 10, OvertrickPoints: 1, BagThreshold: 2, BagPenalty: 100}

	s.TeamMode = true
	s.TeamOf = [MaxPlayers]uint8{0, 1, 0, 1}
	s.TeamContracts = [2]int{4, 5}
	for i, tricks := range []int{3, 2, 4, 1} {
		s.Players[i].TricksWon = tricks
		s.Players[i].HasBid = true
		s.Players[i].CurrentBid = 1
	}

	// Team 0: 7 tricks on a 4 contract = 40 + 3 bags, threshold 2 hit.
	// Team 1: 3 tricks on a 5 contract = -50.
	EvaluateContracts(s, rules)
	if s.TeamScores[0] != 40+3-100 {
		t.Errorf("team 0 score=%d", s.TeamScores[0])
	}
	if s.TeamBags[0] != 1 {
		t.Errorf("team 0 bags=%d", s.TeamBags[0])
	}
	if s.TeamScores[1] != -50 {
		t.Errorf("team 1 score=%d", s.TeamScores[1])
	}
	// Members mirror the team score.
	if s.Players[0].Score != s.TeamScores[0] || s.Players[1].Score != s.TeamScores[1] {
		t.Error("player scores should mirror team scores")
	}
}

func TestEvaluateContractsIgnoresNonBidders(t *testing.T) {
	s := GetState(2)
	defer PutState(s)
	rules := &ContractRules{PointsPerTrick: 10}

	s.Players[0].TricksWon = 4
	EvaluateContracts(s, rules)
	if s.Players[0].Score != 0 {
		t.Errorf("non-bidder scored %d", s.Players[0].Score)
	}
}
