package genome

import (
	"fmt"
)

// ValidateAndRepair returns a playable copy of the genome together
// with an audit trail of the repairs applied. Each repair is the
// smallest edit that clears its violation; novel structure is
// preserved whenever a clamp or an added prerequisite suffices.
// Repair is idempotent: running it on its own output applies nothing.
func ValidateAndRepair(g *GameGenome) (*GameGenome, []string) {
	r := g.Clone()
	var audit []string

	players := r.Players()
	if r.PlayerCount != players {
		r.PlayerCount = players
		audit = append(audit, fmt.Sprintf("clamped player_count to %d", players))
	}

	// Turn bounds: clamp rather than reset.
	if r.TurnStructure.MinTurns < 1 {
		r.TurnStructure.MinTurns = 1
		audit = append(audit, "raised min_turns to 1")
	}
	if r.TurnStructure.MaxTurns < r.TurnStructure.MinTurns {
		r.TurnStructure.MaxTurns = r.TurnStructure.MinTurns
		audit = append(audit, fmt.Sprintf("raised max_turns to min_turns (%d)", r.TurnStructure.MinTurns))
	}
	if r.TurnStructure.MaxTurns > HardMaxTurns {
		r.TurnStructure.MaxTurns = HardMaxTurns
		audit = append(audit, fmt.Sprintf("clamped max_turns to %d", HardMaxTurns))
	}

	// Deal size: shrink cards_per_player before touching the tableau.
	if r.Setup.CardsPerPlayer < 1 {
		r.Setup.CardsPerPlayer = 1
		audit = append(audit, "raised cards_per_player to 1")
	}
	if dealt := r.Setup.CardsPerPlayer*players + r.Setup.DealToTableau; dealt > StandardDeckSize {
		fit := (StandardDeckSize - r.Setup.DealToTableau) / players
		if fit < 1 {
			r.Setup.DealToTableau = StandardDeckSize - players
			fit = 1
			audit = append(audit, fmt.Sprintf("reduced deal_to_tableau to %d", r.Setup.DealToTableau))
		}
		r.Setup.CardsPerPlayer = fit
		audit = append(audit, fmt.Sprintf("reduced cards_per_player to %d", fit))
	}

	// A game with no phases cannot be played at all; this is the one
	// repair that has to invent structure.
	if len(r.TurnStructure.Phases) == 0 {
		r.TurnStructure.Phases = []Phase{
			&PlayPhase{Target: LocationDiscard, MinCards: 1, MaxCards: 1, Mandatory: true, PassIfUnable: true},
		}
		audit = append(audit, "inserted a minimal play phase (genome had none)")
	}

	hasTrick := false
	hasBetting := false
	hasBidding := false
	hasCardPlay := false
	for _, phase := range r.TurnStructure.Phases {
		switch phase.(type) {
		case *TrickPhase:
			hasTrick = true
			hasCardPlay = true
		case *BettingPhase:
			hasBetting = true
		case *BiddingPhase:
			hasBidding = true
		case *PlayPhase, *DrawPhase, *DiscardPhase, *ClaimPhase:
			hasCardPlay = true
		}
	}

	// A betting-only game gets the cheapest card outlet, not a reset.
	if !hasCardPlay {
		r.TurnStructure.Phases = append(r.TurnStructure.Phases,
			&PlayPhase{Target: LocationDiscard, MinCards: 1, MaxCards: 1, Mandatory: true, PassIfUnable: true})
		hasCardPlay = true
		audit = append(audit, "appended a play phase (no card play present)")
	}

	if hasBetting && r.Setup.StartingChips <= 0 {
		r.Setup.StartingChips = 100
		audit = append(audit, "set starting_chips to 100 for betting phase")
	}
	for i, phase := range r.TurnStructure.Phases {
		if bp, ok := phase.(*BettingPhase); ok {
			if bp.MinBet < 1 {
				np := *bp
				np.MinBet = 1
				r.TurnStructure.Phases[i] = &np
				audit = append(audit, fmt.Sprintf("raised phases[%d].min_bet to 1", i))
			} else if r.Setup.StartingChips > 0 && bp.MinBet > r.Setup.StartingChips/2 {
				np := *bp
				np.MinBet = r.Setup.StartingChips / 2
				if np.MinBet < 1 {
					np.MinBet = 1
				}
				r.TurnStructure.Phases[i] = &np
				audit = append(audit, fmt.Sprintf("clamped phases[%d].min_bet to %d", i, np.MinBet))
			}
		}
		if dp, ok := phase.(*DrawPhase); ok {
			if dp.Count < 1 {
				np := *dp
				np.Count = 1
				r.TurnStructure.Phases[i] = &np
				audit = append(audit, fmt.Sprintf("raised phases[%d].count to 1", i))
			} else if dp.Count > 10 {
				np := *dp
				np.Count = 10
				r.TurnStructure.Phases[i] = &np
				audit = append(audit, fmt.Sprintf("clamped phases[%d].count to 10", i))
			}
		}
		if pp, ok := phase.(*PlayPhase); ok {
			if pp.MaxCards < 1 || pp.MinCards < 0 || pp.MinCards > pp.MaxCards {
				np := *pp
				if np.MaxCards < 1 {
					np.MaxCards = 1
				}
				if np.MinCards < 0 {
					np.MinCards = 0
				}
				if np.MinCards > np.MaxCards {
					np.MinCards = np.MaxCards
				}
				r.TurnStructure.Phases[i] = &np
				audit = append(audit, fmt.Sprintf("clamped phases[%d] card range to [%d, %d]", i, np.MinCards, np.MaxCards))
			}
		}
		if bp, ok := phase.(*BiddingPhase); ok {
			if bp.MinBid < 0 || bp.MaxBid < bp.MinBid {
				np := *bp
				if np.MinBid < 0 {
					np.MinBid = 0
				}
				if np.MaxBid < np.MinBid {
					np.MaxBid = np.MinBid
				}
				r.TurnStructure.Phases[i] = &np
				audit = append(audit, fmt.Sprintf("clamped phases[%d] bid range to [%d, %d]", i, np.MinBid, np.MaxBid))
			}
		}
	}

	// Bidding without tricks: drop the bidding phase rather than
	// invent a trick game around it.
	if hasBidding && !hasTrick {
		kept := r.TurnStructure.Phases[:0]
		for _, phase := range r.TurnStructure.Phases {
			if _, ok := phase.(*BiddingPhase); ok {
				continue
			}
			kept = append(kept, phase)
		}
		r.TurnStructure.Phases = kept
		audit = append(audit, "removed bidding phase (no trick phase to bid on)")
	}

	if r.TurnStructure.IsTrickBased {
		if !hasTrick {
			r.TurnStructure.IsTrickBased = false
			audit = append(audit, "cleared is_trick_based (no trick phase)")
		} else if r.TurnStructure.TricksPerHand <= 0 {
			r.TurnStructure.TricksPerHand = r.Setup.CardsPerPlayer
			audit = append(audit, fmt.Sprintf("set tricks_per_hand to %d", r.TurnStructure.TricksPerHand))
		}
	}
	if hasTrick && !r.TurnStructure.IsTrickBased {
		r.TurnStructure.IsTrickBased = true
		if r.TurnStructure.TricksPerHand <= 0 {
			r.TurnStructure.TricksPerHand = r.Setup.CardsPerPlayer
		}
		audit = append(audit, "marked genome trick-based")
	}

	if len(r.WinConditions) == 0 {
		r.WinConditions = []WinCondition{{Type: WinTypeEmptyHand}}
		audit = append(audit, "inserted empty_hand win condition (genome had none)")
	}

	// Contradictory score directions: keep the earliest.
	hasHigh, hasLow := false, false
	for _, wc := range r.WinConditions {
		if wc.Type == WinTypeHighScore {
			hasHigh = true
		}
		if wc.Type == WinTypeLowScore {
			hasLow = true
		}
	}
	if hasHigh && hasLow {
		keepHigh := false
		for _, wc := range r.WinConditions {
			if wc.Type == WinTypeHighScore {
				keepHigh = true
				break
			}
			if wc.Type == WinTypeLowScore {
				break
			}
		}
		kept := r.WinConditions[:0]
		for _, wc := range r.WinConditions {
			if (keepHigh && wc.Type == WinTypeLowScore) || (!keepHigh && wc.Type == WinTypeHighScore) {
				continue
			}
			kept = append(kept, wc)
		}
		r.WinConditions = kept
		audit = append(audit, "removed contradictory score win condition")
	}

	// Score wins without a score source get the cheapest source: a
	// flat one-point-per-capture rule.
	scoreWin := false
	for _, wc := range r.WinConditions {
		switch wc.Type {
		case WinTypeHighScore, WinTypeLowScore, WinTypeFirstToScore:
			scoreWin = true
		}
	}
	if scoreWin && len(r.CardScoring) == 0 && r.Contract == nil &&
		r.TurnStructure.TableauMode != TableauModeMatchRank {
		r.CardScoring = []CardScoringRule{{Rank: 255, Suit: SuitNone, Points: 1}}
		audit = append(audit, "added flat card scoring rule for score-based win")
	}

	// Capture wins without a capture mechanic: switch the tableau to
	// WAR, the smallest mechanical change.
	for _, wc := range r.WinConditions {
		if wc.Type == WinTypeCaptureAll || wc.Type == WinTypeMostCaptured {
			mode := r.TurnStructure.TableauMode
			if mode != TableauModeWar && mode != TableauModeMatchRank && !hasTrick {
				r.TurnStructure.TableauMode = TableauModeWar
				audit = append(audit, "set tableau mode to WAR for capture win condition")
			}
			break
		}
	}

	if r.Teams != nil && r.Teams.Enabled {
		if len(ValidateGenome(r)) > 0 && len((&GenomeValidator{}).validateTeams(r, players)) > 0 {
			r.Teams = nil
			audit = append(audit, "dropped invalid team configuration")
		}
	}

	return r, audit
}
