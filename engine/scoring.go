package engine

// ApplyCardScoring adds point values for captured cards at hand end.
// Trick resolution already scores capture-by-trick games through
// trickCardPoints, so this pass covers hands and non-trick captures.
func ApplyCardScoring(s *GameState, g *Genome) {
	if len(g.CardScoring) == 0 {
		return
	}
	for i := range s.Players {
		p := &s.Players[i]
		for _, c := range p.Captured {
			p.Score += cardPoints(c, g.CardScoring)
		}
		for _, c := range p.Hand {
			// Cards stuck in hand count against low-score games only
			// when a rule targets them explicitly with negative
			// points; positive rules score captured cards.
			if pts := cardPoints(c, g.CardScoring); pts < 0 {
				p.Score += pts
			}
		}
	}
}

func cardPoints(c Card, rules []CardScore) int {
	for _, cs := range rules {
		if cs.Rank != 255 && cs.Rank != c.Rank {
			continue
		}
		if cs.Suit != SuitNone && cs.Suit != c.Suit {
			continue
		}
		return int(cs.Points)
	}
	return 0
}

// EvaluateContracts scores bid contracts at hand end: made contracts
// earn points per bid trick plus overtrick points; failed contracts
// lose the full contract value; nil bids win or lose their own bonus;
// accumulated bags past the threshold cost a penalty.
func EvaluateContracts(s *GameState, rules *ContractRules) {
	if s.TeamMode {
		evaluateTeamContracts(s, rules)
		return
	}
	for i := range s.Players {
		p := &s.Players[i]
		if !p.HasBid {
			continue
		}
		if p.IsNilBid {
			if p.TricksWon == 0 {
				p.Score += int(rules.NilBonus)
			} else {
				p.Score -= int(rules.NilPenalty)
			}
			continue
		}
		if p.TricksWon >= p.CurrentBid {
			p.Score += p.CurrentBid * int(rules.PointsPerTrick)
			over := p.TricksWon - p.CurrentBid
			p.Score += over * int(rules.OvertrickPoints)
		} else {
			p.Score -= p.CurrentBid * int(rules.PointsPerTrick)
		}
	}
}

func evaluateTeamContracts(s *GameState, rules *ContractRules) {
	var tricks [2]int
	for i := range s.Players {
		tricks[s.TeamOf[i]] += s.Players[i].TricksWon
	}
	for team := 0; team < 2; team++ {
		contract := s.TeamContracts[team]
		if contract > 0 {
			if tricks[team] >= contract {
				s.TeamScores[team] += contract * int(rules.PointsPerTrick)
				bags := tricks[team] - contract
				s.TeamScores[team] += bags * int(rules.OvertrickPoints)
				s.TeamBags[team] += bags
				if rules.BagThreshold > 0 && s.TeamBags[team] >= int(rules.BagThreshold) {
					s.TeamScores[team] -= int(rules.BagPenalty)
					s.TeamBags[team] -= int(rules.BagThreshold)
				}
			} else {
				s.TeamScores[team] -= contract * int(rules.PointsPerTrick)
			}
		}
	}
	// Nil bids score individually even in team mode.
	for i := range s.Players {
		p := &s.Players[i]
		if p.HasBid && p.IsNilBid {
			if p.TricksWon == 0 {
				s.TeamScores[s.TeamOf[i]] += int(rules.NilBonus)
			} else {
				s.TeamScores[s.TeamOf[i]] -= int(rules.NilPenalty)
			}
		}
	}
	// Mirror team scores onto members so score-based win checks and
	// leader detectors see them.
	for i := range s.Players {
		s.Players[i].Score = s.TeamScores[s.TeamOf[i]]
	}
}
