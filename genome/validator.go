package genome

import (
	"fmt"
)

// StandardDeckSize is the number of cards in a standard deck.
const StandardDeckSize = 52

// HardMaxTurns is the ceiling any genome's turn limit is clamped to.
const HardMaxTurns = 2000

// ValidationError describes one structural problem in a genome.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// GenomeValidator checks genome consistency.
type GenomeValidator struct{}

// Validate returns all structural violations (empty = valid).
func (v *GenomeValidator) Validate(g *GameGenome) []ValidationError {
	var errs []ValidationError
	players := g.Players()

	if len(g.TurnStructure.Phases) == 0 {
		errs = append(errs, ValidationError{
			Field:   "turn_structure.phases",
			Message: "genome has no phases",
		})
	}
	if len(g.WinConditions) == 0 {
		errs = append(errs, ValidationError{
			Field:   "win_conditions",
			Message: "genome has no win conditions",
		})
	}

	dealt := g.Setup.CardsPerPlayer*players + g.Setup.DealToTableau
	if dealt > StandardDeckSize {
		errs = append(errs, ValidationError{
			Field:   "setup.cards_per_player",
			Message: fmt.Sprintf("deal requires %d cards but deck has %d", dealt, StandardDeckSize),
		})
	}
	if g.Setup.CardsPerPlayer < 1 {
		errs = append(errs, ValidationError{
			Field:   "setup.cards_per_player",
			Message: "players must be dealt at least one card",
		})
	}

	if g.TurnStructure.MinTurns < 1 {
		errs = append(errs, ValidationError{
			Field:   "turn_structure.min_turns",
			Message: "min_turns must be at least 1",
		})
	}
	if g.TurnStructure.MaxTurns < g.TurnStructure.MinTurns {
		errs = append(errs, ValidationError{
			Field:   "turn_structure.max_turns",
			Message: fmt.Sprintf("max_turns %d below min_turns %d", g.TurnStructure.MaxTurns, g.TurnStructure.MinTurns),
		})
	}
	if g.TurnStructure.MaxTurns > HardMaxTurns {
		errs = append(errs, ValidationError{
			Field:   "turn_structure.max_turns",
			Message: fmt.Sprintf("max_turns %d exceeds hard bound %d", g.TurnStructure.MaxTurns, HardMaxTurns),
		})
	}

	hasTrick := false
	hasBetting := false
	hasBidding := false
	hasCardPlay := false
	for _, phase := range g.TurnStructure.Phases {
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

	if g.TurnStructure.IsTrickBased {
		if !hasTrick {
			errs = append(errs, ValidationError{
				Field:   "turn_structure.phases",
				Message: "trick-based game has no TrickPhase",
			})
		}
		if g.TurnStructure.TricksPerHand <= 0 {
			errs = append(errs, ValidationError{
				Field:   "turn_structure.tricks_per_hand",
				Message: "trick-based game requires tricks_per_hand",
			})
		}
	}
	if !hasCardPlay {
		errs = append(errs, ValidationError{
			Field:   "turn_structure.phases",
			Message: "game has no card play phases",
		})
	}
	if hasBetting && g.Setup.StartingChips <= 0 {
		errs = append(errs, ValidationError{
			Field:   "setup.starting_chips",
			Message: "BettingPhase requires starting_chips > 0",
		})
	}
	if hasBidding && !hasTrick {
		errs = append(errs, ValidationError{
			Field:   "turn_structure.phases",
			Message: "BiddingPhase requires a TrickPhase",
		})
	}

	// Score-based wins need a score source: scoring rules, contracts,
	// or a capturing tableau mode.
	scoreWin := false
	for _, wc := range g.WinConditions {
		switch wc.Type {
		case WinTypeHighScore, WinTypeLowScore, WinTypeFirstToScore:
			scoreWin = true
		}
	}
	if scoreWin {
		hasScoring := len(g.CardScoring) > 0 || g.Contract != nil ||
			g.TurnStructure.TableauMode == TableauModeMatchRank
		if !hasScoring {
			errs = append(errs, ValidationError{
				Field:   "win_conditions",
				Message: "score-based win condition has no scoring rules",
			})
		}
	}

	// Capture wins need a capture mechanic.
	for _, wc := range g.WinConditions {
		if wc.Type == WinTypeCaptureAll || wc.Type == WinTypeMostCaptured {
			mode := g.TurnStructure.TableauMode
			if mode != TableauModeWar && mode != TableauModeMatchRank && !hasTrick {
				errs = append(errs, ValidationError{
					Field:   "turn_structure.tableau_mode",
					Message: "capture win condition requires WAR or MATCH_RANK tableau or tricks",
				})
			}
			break
		}
	}

	errs = append(errs, v.validateTeams(g, players)...)
	errs = append(errs, v.validatePhaseFields(g)...)
	return errs
}

func (v *GenomeValidator) validateTeams(g *GameGenome, players int) []ValidationError {
	var errs []ValidationError
	if g.Teams == nil || !g.Teams.Enabled {
		return nil
	}
	if len(g.Teams.Teams) < 2 {
		return append(errs, ValidationError{
			Field:   "teams",
			Message: fmt.Sprintf("team mode requires at least 2 teams, got %d", len(g.Teams.Teams)),
		})
	}
	seen := make(map[int]bool)
	for idx, team := range g.Teams.Teams {
		if len(team) == 0 {
			errs = append(errs, ValidationError{
				Field:   "teams",
				Message: fmt.Sprintf("team %d is empty", idx),
			})
			continue
		}
		for _, p := range team {
			if p < 0 || p >= players {
				errs = append(errs, ValidationError{
					Field:   "teams",
					Message: fmt.Sprintf("player index %d out of range [0, %d)", p, players),
				})
			}
			if seen[p] {
				errs = append(errs, ValidationError{
					Field:   "teams",
					Message: fmt.Sprintf("player %d appears in multiple teams", p),
				})
			}
			seen[p] = true
		}
	}
	for p := 0; p < players; p++ {
		if !seen[p] {
			errs = append(errs, ValidationError{
				Field:   "teams",
				Message: fmt.Sprintf("player %d not assigned to any team", p),
			})
		}
	}
	return errs
}

func (v *GenomeValidator) validatePhaseFields(g *GameGenome) []ValidationError {
	var errs []ValidationError
	for i, phase := range g.TurnStructure.Phases {
		switch p := phase.(type) {
		case *DrawPhase:
			if p.Count < 1 || p.Count > 10 {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("phases[%d].count", i),
					Message: fmt.Sprintf("draw count %d out of range [1, 10]", p.Count),
				})
			}
		case *PlayPhase:
			if p.MinCards < 0 || p.MaxCards < 1 || p.MinCards > p.MaxCards {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("phases[%d]", i),
					Message: fmt.Sprintf("play card range [%d, %d] invalid", p.MinCards, p.MaxCards),
				})
			}
		case *BettingPhase:
			if p.MinBet > 0 && g.Setup.StartingChips > 0 && p.MinBet > g.Setup.StartingChips/2 {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("phases[%d].min_bet", i),
					Message: fmt.Sprintf("min_bet %d too high for starting_chips %d", p.MinBet, g.Setup.StartingChips),
				})
			}
		case *BiddingPhase:
			if p.MinBid < 0 || p.MaxBid < p.MinBid {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("phases[%d]", i),
					Message: fmt.Sprintf("bid range [%d, %d] invalid", p.MinBid, p.MaxBid),
				})
			}
		}
	}
	return errs
}

// ValidateGenome validates with a throwaway validator.
func ValidateGenome(g *GameGenome) []ValidationError {
	v := &GenomeValidator{}
	return v.Validate(g)
}

// IsValid reports whether the genome has no validation errors.
func IsValid(g *GameGenome) bool {
	return len(ValidateGenome(g)) == 0
}
