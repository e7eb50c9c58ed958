// Package genome defines the typed rule representation for evolved
// card games, its JSON archive form, the bytecode compiler, and the
// validation/repair machinery the evolution loop depends on.
package genome

// Location identifies a card pile. Values match the bytecode encoding.
type Location uint8

const (
	LocationDeck Location = iota
	LocationHand
	LocationDiscard
	LocationTableau
	LocationOpponentHand
	LocationOpponentDiscard
)

// Visibility of a pile's cards.
type Visibility uint8

const (
	VisibilityFaceDown Visibility = iota
	VisibilityFaceUp
	VisibilityOwnerOnly
	VisibilityRevealed
)

// TableauMode governs what happens when cards land on the tableau.
type TableauMode uint8

const (
	TableauModeNone TableauMode = iota
	TableauModeWar
	TableauModeMatchRank
	TableauModeSequence
)

// SequenceDirection for sequence-building tableaus.
type SequenceDirection uint8

const (
	SequenceAscending SequenceDirection = iota
	SequenceDescending
	SequenceBoth
)

// Rank and suit constants mirror the engine's numeric mapping:
// ranks 0 (Two) through 12 (Ace), suits hearts/diamonds/clubs/spades.
const (
	RankTwo uint8 = iota
	RankThree
	RankFour
	RankFive
	RankSix
	RankSeven
	RankEight
	RankNine
	RankTen
	RankJack
	RankQueen
	RankKing
	RankAce
)

const (
	SuitHearts uint8 = iota
	SuitDiamonds
	SuitClubs
	SuitSpades
	SuitNone uint8 = 255
)

// WinConditionType enumerates how a game can be won.
type WinConditionType uint8

const (
	WinTypeEmptyHand WinConditionType = iota
	WinTypeHighScore
	WinTypeLowScore
	WinTypeFirstToScore
	WinTypeMostTricks
	WinTypeFewestTricks
	WinTypeMostCaptured
	WinTypeCaptureAll
	WinTypeAllHandsEmpty
	WinTypeMostChips
)

// Condition opcodes; values match the bytecode opcode space.
const (
	CondHandSize uint8 = iota
	CondCardRank
	CondCardSuit
	CondLocationSize
	CondSequenceAdjacent
	CondHasSetOfN
	CondHasRunOfN
	CondHasMatchingPair
	CondChipCount
	CondPotSize
	CondCurrentBet
	CondCanAfford
	CondCardMatchesRank
	CondCardMatchesSuit
	CondCardBeatsTop

	CondAnd uint8 = 40
	CondOr  uint8 = 41
)

// Comparison operators.
const (
	OpEQ uint8 = iota + 50
	OpNE
	OpLT
	OpGT
	OpLE
	OpGE
)

// Condition references.
const (
	RefNone       uint8 = 0
	RefTopDiscard uint8 = 1
	RefLastPlayed uint8 = 2
)

// Condition is a predicate over game state. A simple condition uses
// Opcode/Operator/Value/Reference; AND/OR opcodes carry Children
// instead.
type Condition struct {
	Opcode    uint8
	Operator  uint8
	Value     int32
	Reference uint8
	Children  []*Condition
}

// Clone deep-copies a condition tree.
func (c *Condition) Clone() *Condition {
	if c == nil {
		return nil
	}
	clone := *c
	if len(c.Children) > 0 {
		clone.Children = make([]*Condition, len(c.Children))
		for i, child := range c.Children {
			clone.Children[i] = child.Clone()
		}
	}
	return &clone
}

// Phase is the sealed interface over the seven phase variants.
type Phase interface {
	PhaseType() uint8
	phaseMarker()
}

// Phase type tags; values match the bytecode encoding.
const (
	PhaseTagDraw uint8 = iota + 1
	PhaseTagPlay
	PhaseTagDiscard
	PhaseTagTrick
	PhaseTagBetting
	PhaseTagClaim
	PhaseTagBidding
)

// DrawPhase draws cards from a source pile.
type DrawPhase struct {
	Source    Location
	Count     int
	Mandatory bool
	Condition *Condition
}

func (p *DrawPhase) PhaseType() uint8 { return PhaseTagDraw }
func (p *DrawPhase) phaseMarker()     {}

// PlayPhase plays cards from hand to a target pile, optionally gated
// by a validity condition evaluated per candidate card.
type PlayPhase struct {
	Target             Location
	MinCards           int
	MaxCards           int
	Mandatory          bool
	PassIfUnable       bool
	ValidPlayCondition *Condition
}

func (p *PlayPhase) PhaseType() uint8 { return PhaseTagPlay }
func (p *PlayPhase) phaseMarker()     {}

// DiscardPhase discards cards to a target pile.
type DiscardPhase struct {
	Target    Location
	Count     int
	Mandatory bool
}

func (p *DiscardPhase) PhaseType() uint8 { return PhaseTagDiscard }
func (p *DiscardPhase) phaseMarker()     {}

// TrickPhase plays one trick per rotation with optional trump and
// follow-suit rules. BreakingSuit (Hearts-style) cannot be led until
// broken; SuitNone disables it.
type TrickPhase struct {
	LeadSuitRequired bool
	TrumpSuit        uint8
	HighCardWins     bool
	BreakingSuit     uint8
}

func (p *TrickPhase) PhaseType() uint8 { return PhaseTagTrick }
func (p *TrickPhase) phaseMarker()     {}

// BettingPhase runs a betting round.
type BettingPhase struct {
	MinBet    int
	MaxRaises int
}

func (p *BettingPhase) PhaseType() uint8 { return PhaseTagBetting }
func (p *BettingPhase) phaseMarker()     {}

// ClaimPhase plays cards face down under a rank claim that the next
// player may challenge.
type ClaimPhase struct {
	Target         Location
	RankFixed      uint8 // SuitNone-style 255 = any rank
	MinCards       int
	MaxCards       int
	AllowChallenge bool
	PilePenalty    int
	SequentialRank bool
}

func (p *ClaimPhase) PhaseType() uint8 { return PhaseTagClaim }
func (p *ClaimPhase) phaseMarker()     {}

// BiddingPhase collects trick-count bids before play.
type BiddingPhase struct {
	MinBid        int
	MaxBid        int
	NilAllowed    bool
	ExactRequired bool
}

func (p *BiddingPhase) PhaseType() uint8 { return PhaseTagBidding }
func (p *BiddingPhase) phaseMarker()     {}

// ClonePhase deep-copies a phase.
func ClonePhase(p Phase) Phase {
	switch v := p.(type) {
	case *DrawPhase:
		c := *v
		c.Condition = v.Condition.Clone()
		return &c
	case *PlayPhase:
		c := *v
		c.ValidPlayCondition = v.ValidPlayCondition.Clone()
		return &c
	case *DiscardPhase:
		c := *v
		return &c
	case *TrickPhase:
		c := *v
		return &c
	case *BettingPhase:
		c := *v
		return &c
	case *ClaimPhase:
		c := *v
		return &c
	case *BiddingPhase:
		c := *v
		return &c
	}
	return nil
}

// SetupRules describe the deal.
type SetupRules struct {
	CardsPerPlayer    int
	DeckID            int
	DealToTableau     int
	WildRanks         []uint8
	HandVisibility    Visibility
	DeckVisibility    Visibility
	DiscardVisibility Visibility
	TrumpSuit         uint8 // SuitNone = no trump
	StartingChips     int
	TableauSize       int
}

// TurnStructure is the ordered phase list plus turn-level knobs.
type TurnStructure struct {
	Phases            []Phase
	IsTrickBased      bool
	TricksPerHand     int
	MaxTurns          int
	MinTurns          int
	TableauMode       TableauMode
	SequenceDirection SequenceDirection
}

// WinCondition pairs a kind with a threshold.
type WinCondition struct {
	Type      WinConditionType
	Threshold int
}

// CardScoringRule assigns points to a rank (Rank 255 = any) and
// optionally a suit (SuitNone = any).
type CardScoringRule struct {
	Rank   uint8
	Suit   uint8
	Points int
}

// SpecialEffect is triggered by playing a card of TriggerRank.
type SpecialEffect struct {
	EffectType uint8
	Target     uint8
	Value      int
}

// Effect types and targets; values match the engine.
const (
	EffectExtraTurn uint8 = iota + 1
	EffectSkipNext
	EffectReverse
	EffectForceDraw
	EffectForceDiscard
	EffectStealCard
	EffectWild
)

const (
	TargetSelf uint8 = iota
	TargetNextPlayer
	TargetAllOpponents
)

// ContractScoring parameterizes bid-contract scoring.
type ContractScoring struct {
	PointsPerTrick  int
	OvertrickPoints int
	BagThreshold    int
	BagPenalty      int
	NilBonus        int
	NilPenalty      int
}

// TeamConfig assigns players to teams.
type TeamConfig struct {
	Enabled bool
	Teams   [][]int
}

// GameGenome is the complete rule specification for one game.
// Genomes are treated as immutable: mutation operators clone before
// editing.
type GameGenome struct {
	SchemaVersion  int
	GenomeID       string
	Name           string
	Generation     int
	PlayerCount    int
	Setup          SetupRules
	TurnStructure  TurnStructure
	SpecialEffects map[uint8]SpecialEffect // keyed by trigger rank
	WinConditions  []WinCondition
	CardScoring    []CardScoringRule
	Contract       *ContractScoring
	Teams          *TeamConfig
}

// Clone deep-copies a genome.
func (g *GameGenome) Clone() *GameGenome {
	c := *g

	c.Setup.WildRanks = append([]uint8(nil), g.Setup.WildRanks...)

	c.TurnStructure.Phases = make([]Phase, len(g.TurnStructure.Phases))
	for i, p := range g.TurnStructure.Phases {
		c.TurnStructure.Phases[i] = ClonePhase(p)
	}

	if g.SpecialEffects != nil {
		c.SpecialEffects = make(map[uint8]SpecialEffect, len(g.SpecialEffects))
		for k, v := range g.SpecialEffects {
			c.SpecialEffects[k] = v
		}
	}

	c.WinConditions = append([]WinCondition(nil), g.WinConditions...)
	c.CardScoring = append([]CardScoringRule(nil), g.CardScoring...)

	if g.Contract != nil {
		contract := *g.Contract
		c.Contract = &contract
	}
	if g.Teams != nil {
		teams := TeamConfig{Enabled: g.Teams.Enabled}
		teams.Teams = make([][]int, len(g.Teams.Teams))
		for i, t := range g.Teams.Teams {
			teams.Teams[i] = append([]int(nil), t...)
		}
		c.Teams = &teams
	}
	return &c
}

// Players returns the effective player count, defaulting to 2.
func (g *GameGenome) Players() int {
	if g.PlayerCount >= 2 && g.PlayerCount <= 4 {
		return g.PlayerCount
	}
	return 2
}
