package genome

// Hand-written seed genomes. Evolution starts from mutations of these
// rather than from random noise; each encodes a known-playable game.

// NewWarGenome builds the simplest seed: flip a card to the tableau,
// highest takes the pile, capture everything to win.
func NewWarGenome() *GameGenome {
	return &GameGenome{
		SchemaVersion: 1,
		GenomeID:      "seed-war",
		Name:          "War",
		PlayerCount:   2,
		Setup: SetupRules{
			CardsPerPlayer: 26,
			TrumpSuit:      SuitNone,
			HandVisibility: VisibilityFaceDown,
		},
		TurnStructure: TurnStructure{
			Phases: []Phase{
				&PlayPhase{Target: LocationTableau, MinCards: 1, MaxCards: 1, Mandatory: true},
			},
			MaxTurns:    1000,
			MinTurns:    1,
			TableauMode: TableauModeWar,
		},
		WinConditions: []WinCondition{{Type: WinTypeCaptureAll}},
	}
}

// NewBettingWarGenome is War with a betting round before the flip.
func NewBettingWarGenome() *GameGenome {
	g := NewWarGenome()
	g.GenomeID = "seed-betting-war"
	g.Name = "Betting War"
	g.Setup.StartingChips = 100
	g.TurnStructure.Phases = []Phase{
		&BettingPhase{MinBet: 5, MaxRaises: 2},
		&PlayPhase{Target: LocationTableau, MinCards: 1, MaxCards: 1, Mandatory: true},
	}
	g.WinConditions = []WinCondition{
		{Type: WinTypeMostChips},
		{Type: WinTypeCaptureAll},
	}
	return g
}

// NewCrazyEightsGenome: match the discard top by rank or suit, eights
// are wild, first empty hand wins.
func NewCrazyEightsGenome() *GameGenome {
	return &GameGenome{
		SchemaVersion: 1,
		GenomeID:      "seed-crazy-eights",
		Name:          "Crazy Eights",
		PlayerCount:   2,
		Setup: SetupRules{
			CardsPerPlayer:    7,
			WildRanks:         []uint8{RankEight},
			HandVisibility:    VisibilityOwnerOnly,
			DiscardVisibility: VisibilityFaceUp,
			TrumpSuit:         SuitNone,
		},
		TurnStructure: TurnStructure{
			Phases: []Phase{
				&DrawPhase{Source: LocationDeck, Count: 1, Mandatory: false, Condition: &Condition{
					Opcode: CondHandSize, Operator: OpEQ, Value: 0,
				}},
				&PlayPhase{
					Target: LocationDiscard, MinCards: 1, MaxCards: 1,
					Mandatory: true, PassIfUnable: true,
					ValidPlayCondition: &Condition{
						Opcode: CondOr,
						Children: []*Condition{
							{Opcode: CondCardMatchesRank, Operator: OpEQ, Value: int32(RankEight), Reference: RefTopDiscard},
							{Opcode: CondCardMatchesSuit, Operator: OpEQ, Value: -1, Reference: RefTopDiscard},
						},
					},
				},
			},
			MaxTurns: 500,
			MinTurns: 1,
		},
		WinConditions: []WinCondition{{Type: WinTypeEmptyHand}},
	}
}

// NewHeartsGenome: avoid hearts, lowest score wins when hands empty.
func NewHeartsGenome() *GameGenome {
	return &GameGenome{
		SchemaVersion: 1,
		GenomeID:      "seed-hearts",
		Name:          "Hearts",
		PlayerCount:   4,
		Setup: SetupRules{
			CardsPerPlayer: 13,
			HandVisibility: VisibilityOwnerOnly,
			TrumpSuit:      SuitNone,
		},
		TurnStructure: TurnStructure{
			Phases: []Phase{
				&TrickPhase{
					LeadSuitRequired: true,
					TrumpSuit:        SuitNone,
					HighCardWins:     true,
					BreakingSuit:     SuitHearts,
				},
			},
			IsTrickBased:  true,
			TricksPerHand: 13,
			MaxTurns:      200,
			MinTurns:      1,
		},
		WinConditions: []WinCondition{{Type: WinTypeLowScore}},
		CardScoring: []CardScoringRule{
			{Rank: 255, Suit: SuitHearts, Points: 1},
			{Rank: RankQueen, Suit: SuitSpades, Points: 13},
		},
	}
}

// NewScotchWhistGenome: trump tricks, honors score points.
func NewScotchWhistGenome() *GameGenome {
	return &GameGenome{
		SchemaVersion: 1,
		GenomeID:      "seed-scotch-whist",
		Name:          "Scotch Whist",
		PlayerCount:   2,
		Setup: SetupRules{
			CardsPerPlayer: 13,
			HandVisibility: VisibilityOwnerOnly,
			TrumpSuit:      SuitSpades,
		},
		TurnStructure: TurnStructure{
			Phases: []Phase{
				&TrickPhase{
					LeadSuitRequired: true,
					TrumpSuit:        SuitSpades,
					HighCardWins:     true,
					BreakingSuit:     SuitNone,
				},
			},
			IsTrickBased:  true,
			TricksPerHand: 13,
			MaxTurns:      200,
			MinTurns:      1,
		},
		WinConditions: []WinCondition{{Type: WinTypeHighScore}},
		CardScoring: []CardScoringRule{
			{Rank: RankJack, Suit: SuitSpades, Points: 11},
			{Rank: RankAce, Suit: SuitSpades, Points: 4},
			{Rank: RankKing, Suit: SuitSpades, Points: 3},
			{Rank: RankQueen, Suit: SuitSpades, Points: 2},
			{Rank: RankTen, Suit: SuitSpades, Points: 10},
		},
	}
}

// NewKnockoutWhistGenome: plain trump whist, most tricks wins.
func NewKnockoutWhistGenome() *GameGenome {
	return &GameGenome{
		SchemaVersion: 1,
		GenomeID:      "seed-knockout-whist",
		Name:          "Knockout Whist",
		PlayerCount:   2,
		Setup: SetupRules{
			CardsPerPlayer: 7,
			HandVisibility: VisibilityOwnerOnly,
			TrumpSuit:      SuitHearts,
		},
		TurnStructure: TurnStructure{
			Phases: []Phase{
				&TrickPhase{
					LeadSuitRequired: true,
					TrumpSuit:        SuitHearts,
					HighCardWins:     true,
					BreakingSuit:     SuitNone,
				},
			},
			IsTrickBased:  true,
			TricksPerHand: 7,
			MaxTurns:      100,
			MinTurns:      1,
		},
		WinConditions: []WinCondition{{Type: WinTypeMostTricks}},
	}
}

// NewSpadesGenome: bid your tricks, spades trump, contract scoring.
func NewSpadesGenome() *GameGenome {
	return &GameGenome{
		SchemaVersion: 1,
		GenomeID:      "seed-spades",
		Name:          "Spades",
		PlayerCount:   4,
		Setup: SetupRules{
			CardsPerPlayer: 13,
			HandVisibility: VisibilityOwnerOnly,
			TrumpSuit:      SuitSpades,
		},
		TurnStructure: TurnStructure{
			Phases: []Phase{
				&BiddingPhase{MinBid: 0, MaxBid: 13, NilAllowed: true},
				&TrickPhase{
					LeadSuitRequired: true,
					TrumpSuit:        SuitSpades,
					HighCardWins:     true,
					BreakingSuit:     SuitSpades,
				},
			},
			IsTrickBased:  true,
			TricksPerHand: 13,
			MaxTurns:      200,
			MinTurns:      1,
		},
		WinConditions: []WinCondition{{Type: WinTypeHighScore}},
		Contract: &ContractScoring{
			PointsPerTrick:  10,
			OvertrickPoints: 1,
			BagThreshold:    10,
			BagPenalty:      100,
			NilBonus:        100,
			NilPenalty:      100,
		},
	}
}

// NewPartnershipSpadesGenome: Spades with fixed partnerships.
func NewPartnershipSpadesGenome() *GameGenome {
	g := NewSpadesGenome()
	g.GenomeID = "seed-partnership-spades"
	g.Name = "Partnership Spades"
	g.Teams = &TeamConfig{
		Enabled: true,
		Teams:   [][]int{{0, 2}, {1, 3}},
	}
	return g
}

// NewOldMaidGenome: discard pairs, avoid holding the last queen.
func NewOldMaidGenome() *GameGenome {
	return &GameGenome{
		SchemaVersion: 1,
		GenomeID:      "seed-old-maid",
		Name:          "Old Maid",
		PlayerCount:   2,
		Setup: SetupRules{
			CardsPerPlayer: 10,
			HandVisibility: VisibilityOwnerOnly,
			TrumpSuit:      SuitNone,
		},
		TurnStructure: TurnStructure{
			Phases: []Phase{
				&DrawPhase{Source: LocationOpponentHand, Count: 1, Mandatory: true},
				&PlayPhase{
					Target: LocationDiscard, MinCards: 2, MaxCards: 2,
					Mandatory: true, PassIfUnable: true,
					ValidPlayCondition: &Condition{
						Opcode: CondHasMatchingPair, Operator: OpGE, Value: 1,
					},
				},
			},
			MaxTurns: 300,
			MinTurns: 1,
		},
		WinConditions: []WinCondition{{Type: WinTypeEmptyHand}},
	}
}

// NewPresidentGenome: shed cards by beating the pile, first out wins.
func NewPresidentGenome() *GameGenome {
	return &GameGenome{
		SchemaVersion: 1,
		GenomeID:      "seed-president",
		Name:          "President",
		PlayerCount:   4,
		Setup: SetupRules{
			CardsPerPlayer:    13,
			HandVisibility:    VisibilityOwnerOnly,
			DiscardVisibility: VisibilityFaceUp,
			TrumpSuit:         SuitNone,
		},
		TurnStructure: TurnStructure{
			Phases: []Phase{
				&PlayPhase{
					Target: LocationDiscard, MinCards: 1, MaxCards: 1,
					Mandatory: true, PassIfUnable: true,
					ValidPlayCondition: &Condition{
						Opcode: CondCardBeatsTop, Operator: OpGT, Reference: RefTopDiscard,
					},
				},
			},
			MaxTurns: 400,
			MinTurns: 1,
		},
		WinConditions: []WinCondition{{Type: WinTypeEmptyHand}},
	}
}

// NewFanTanGenome: build suit sequences on the tableau from the sevens
// out, first empty hand wins.
func NewFanTanGenome() *GameGenome {
	return &GameGenome{
		SchemaVersion: 1,
		GenomeID:      "seed-fan-tan",
		Name:          "Fan Tan",
		PlayerCount:   4,
		Setup: SetupRules{
			CardsPerPlayer: 13,
			HandVisibility: VisibilityOwnerOnly,
			TrumpSuit:      SuitNone,
		},
		TurnStructure: TurnStructure{
			Phases: []Phase{
				&PlayPhase{
					Target: LocationTableau, MinCards: 1, MaxCards: 1,
					Mandatory: true, PassIfUnable: true,
					ValidPlayCondition: &Condition{
						Opcode: CondSequenceAdjacent, Operator: OpEQ, Value: 1,
					},
				},
			},
			MaxTurns:          300,
			MinTurns:          1,
			TableauMode:       TableauModeSequence,
			SequenceDirection: SequenceBoth,
		},
		WinConditions: []WinCondition{{Type: WinTypeEmptyHand}},
	}
}

// NewGinRummyGenome: draw, meld toward sets, knock by emptying.
func NewGinRummyGenome() *GameGenome {
	return &GameGenome{
		SchemaVersion: 1,
		GenomeID:      "seed-gin-rummy",
		Name:          "Gin Rummy",
		PlayerCount:   2,
		Setup: SetupRules{
			CardsPerPlayer:    10,
			HandVisibility:    VisibilityOwnerOnly,
			DiscardVisibility: VisibilityFaceUp,
			TrumpSuit:         SuitNone,
		},
		TurnStructure: TurnStructure{
			Phases: []Phase{
				&DrawPhase{Source: LocationDeck, Count: 1, Mandatory: true},
				&PlayPhase{
					Target: LocationDiscard, MinCards: 3, MaxCards: 4,
					Mandatory: false, PassIfUnable: true,
					ValidPlayCondition: &Condition{
						Opcode: CondHasSetOfN, Operator: OpGE, Value: 3,
					},
				},
				&DiscardPhase{Target: LocationDiscard, Count: 1, Mandatory: true},
			},
			MaxTurns: 300,
			MinTurns: 1,
		},
		WinConditions: []WinCondition{{Type: WinTypeEmptyHand}},
	}
}

// NewGoFishGenome: pull from the opponent, shed sets of four.
func NewGoFishGenome() *GameGenome {
	return &GameGenome{
		SchemaVersion: 1,
		GenomeID:      "seed-go-fish",
		Name:          "Go Fish",
		PlayerCount:   2,
		Setup: SetupRules{
			CardsPerPlayer: 7,
			HandVisibility: VisibilityOwnerOnly,
			TrumpSuit:      SuitNone,
		},
		TurnStructure: TurnStructure{
			Phases: []Phase{
				&DrawPhase{Source: LocationOpponentHand, Count: 1, Mandatory: false},
				&DrawPhase{Source: LocationDeck, Count: 1, Mandatory: false},
				&PlayPhase{
					Target: LocationDiscard, MinCards: 4, MaxCards: 4,
					Mandatory: false, PassIfUnable: true,
					ValidPlayCondition: &Condition{
						Opcode: CondHasSetOfN, Operator: OpGE, Value: 4,
					},
				},
			},
			MaxTurns: 300,
			MinTurns: 1,
		},
		WinConditions: []WinCondition{{Type: WinTypeEmptyHand}},
	}
}

// NewSimplePokerGenome: one betting round over a five-card hand, chips
// decide it.
func NewSimplePokerGenome() *GameGenome {
	return &GameGenome{
		SchemaVersion: 1,
		GenomeID:      "seed-simple-poker",
		Name:          "Simple Poker",
		PlayerCount:   2,
		Setup: SetupRules{
			CardsPerPlayer: 5,
			HandVisibility: VisibilityOwnerOnly,
			TrumpSuit:      SuitNone,
			StartingChips:  100,
		},
		TurnStructure: TurnStructure{
			Phases: []Phase{
				&BettingPhase{MinBet: 5, MaxRaises: 3},
				&DrawPhase{Source: LocationDeck, Count: 1, Mandatory: false},
				&DiscardPhase{Target: LocationDiscard, Count: 1, Mandatory: false},
			},
			MaxTurns: 100,
			MinTurns: 1,
		},
		WinConditions: []WinCondition{{Type: WinTypeMostChips}},
	}
}

// NewCheatGenome: play face down under a sequential rank claim, calls
// of cheat pick up the pile.
func NewCheatGenome() *GameGenome {
	return &GameGenome{
		SchemaVersion: 1,
		GenomeID:      "seed-cheat",
		Name:          "Cheat",
		PlayerCount:   3,
		Setup: SetupRules{
			CardsPerPlayer: 17,
			HandVisibility: VisibilityOwnerOnly,
			TrumpSuit:      SuitNone,
		},
		TurnStructure: TurnStructure{
			Phases: []Phase{
				&ClaimPhase{
					Target:         LocationDiscard,
					RankFixed:      255,
					MinCards:       1,
					MaxCards:       4,
					AllowChallenge: true,
					SequentialRank: true,
				},
			},
			MaxTurns: 400,
			MinTurns: 1,
		},
		WinConditions: []WinCondition{{Type: WinTypeEmptyHand}},
	}
}

// NewBlackjackStyleGenome: draw toward a score target, first to the
// threshold wins.
func NewBlackjackStyleGenome() *GameGenome {
	return &GameGenome{
		SchemaVersion: 1,
		GenomeID:      "seed-blackjack",
		Name:          "Twenty-One",
		PlayerCount:   2,
		Setup: SetupRules{
			CardsPerPlayer: 2,
			HandVisibility: VisibilityOwnerOnly,
			TrumpSuit:      SuitNone,
			StartingChips:  100,
		},
		TurnStructure: TurnStructure{
			Phases: []Phase{
				&BettingPhase{MinBet: 5, MaxRaises: 1},
				&DrawPhase{Source: LocationDeck, Count: 1, Mandatory: false, Condition: &Condition{
					Opcode: CondHandSize, Operator: OpLT, Value: 5,
				}},
				&PlayPhase{Target: LocationDiscard, MinCards: 0, MaxCards: 1, Mandatory: false, PassIfUnable: true},
			},
			MaxTurns: 100,
			MinTurns: 1,
		},
		WinConditions: []WinCondition{{Type: WinTypeMostChips}},
		CardScoring:   []CardScoringRule{{Rank: 255, Suit: SuitNone, Points: 1}},
	}
}

// NewScopaStyleGenome: capture by matching the tableau rank.
func NewScopaStyleGenome() *GameGenome {
	return &GameGenome{
		SchemaVersion: 1,
		GenomeID:      "seed-scopa",
		Name:          "Scopa",
		PlayerCount:   2,
		Setup: SetupRules{
			CardsPerPlayer: 3,
			DealToTableau:  4,
			HandVisibility: VisibilityOwnerOnly,
			TrumpSuit:      SuitNone,
		},
		TurnStructure: TurnStructure{
			Phases: []Phase{
				&DrawPhase{Source: LocationDeck, Count: 1, Mandatory: false, Condition: &Condition{
					Opcode: CondHandSize, Operator: OpEQ, Value: 0,
				}},
				&PlayPhase{Target: LocationTableau, MinCards: 1, MaxCards: 1, Mandatory: true},
			},
			MaxTurns:    300,
			MinTurns:    1,
			TableauMode: TableauModeMatchRank,
		},
		WinConditions: []WinCondition{{Type: WinTypeMostCaptured}},
	}
}

// GetSeedGenomes returns every seed in a stable order.
func GetSeedGenomes() []*GameGenome {
	return []*GameGenome{
		NewWarGenome(),
		NewBettingWarGenome(),
		NewCrazyEightsGenome(),
		NewHeartsGenome(),
		NewScotchWhistGenome(),
		NewKnockoutWhistGenome(),
		NewSpadesGenome(),
		NewPartnershipSpadesGenome(),
		NewOldMaidGenome(),
		NewPresidentGenome(),
		NewFanTanGenome(),
		NewGinRummyGenome(),
		NewGoFishGenome(),
		NewSimplePokerGenome(),
		NewCheatGenome(),
		NewBlackjackStyleGenome(),
		NewScopaStyleGenome(),
	}
}
