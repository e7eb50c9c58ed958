// Package engine implements the bytecode interpreter and pooled game
// state that the simulation hot path runs on. Nothing in this package
// reads the typed genome; the compiled bytecode is the only input.
package engine

import (
	"sync"
)

// Location identifies a card pile.
type Location uint8

const (
	LocationDeck Location = iota
	LocationHand
	LocationDiscard
	LocationTableau
	LocationOpponentHand
	LocationOpponentDiscard
)

// Rank values run 0 (Two) through 12 (Ace). Ace is high by default.
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

// RankNone marks an unconstrained rank in phase descriptors.
const RankNone uint8 = 255

// Suit values.
const (
	SuitHearts uint8 = iota
	SuitDiamonds
	SuitClubs
	SuitSpades
	SuitNone uint8 = 255
)

// Card is a rank/suit pair. Packs into a single byte when needed.
type Card struct {
	Rank uint8
	Suit uint8
}

// Byte packs a card into one byte: suit in the high 4 bits, rank low.
func (c Card) Byte() uint8 {
	return c.Suit<<4 | c.Rank
}

// CardFromByte unpacks a card packed with Byte.
func CardFromByte(b uint8) Card {
	return Card{Rank: b & 0x0F, Suit: b >> 4}
}

// TrickCard records who contributed a card to the trick in progress.
type TrickCard struct {
	Player uint8
	Card   Card
}

// ClaimState tracks an outstanding claim awaiting challenge or accept.
type ClaimState struct {
	Active  bool
	Player  uint8
	Rank    uint8
	Count   uint8
	Actual  []Card // the cards actually placed, face down
	Honest  bool
}

// MaxPlayers is the largest supported table size.
const MaxPlayers = 4

// PlayerState holds everything owned by one seat.
type PlayerState struct {
	Hand       []Card
	Captured   []Card
	Score      int
	Active     bool
	Chips      int
	CurrentBet int
	HasFolded  bool
	IsAllIn    bool
	TricksWon  int
	CurrentBid int
	HasBid     bool
	IsNilBid   bool
}

// GameState is the mutable state of one game in progress. States are
// pool-owned between GetState and PutState; Clone produces an
// independent copy that must also be released.
type GameState struct {
	Players    []PlayerState
	NumPlayers uint8

	Deck    []Card
	Discard []Card
	Tableau [][]Card

	CurrentPlayer uint8
	CurrentPhase  uint8
	TurnNumber    int
	WinnerID      int8

	// Betting
	Pot             int
	CurrentBet      int
	RaiseCount      int
	BetActions      int
	BettingComplete bool

	// Tricks
	CurrentTrick    []TrickCard
	TrickLeader     uint8
	TricksCompleted int
	HeartsBroken    bool

	// Teams
	TeamMode      bool
	TeamOf        [MaxPlayers]uint8
	TeamScores    [2]int
	TeamBags      [2]int
	TeamContracts [2]int

	BiddingComplete bool

	// Turn order modifiers driven by special effects.
	PlayDirection int8
	SkipCount     int
	ExtraTurn     bool

	Claim ClaimState

	TableauMode       uint8
	SequenceDirection uint8

	// LCG state for the deterministic shuffle.
	RNG uint64
}

// StatePool recycles game states across simulations.
var StatePool = sync.Pool{
	New: func() interface{} {
		s := &GameState{
			Players: make([]PlayerState, 0, MaxPlayers),
			Deck:    make([]Card, 0, 52),
			Discard: make([]Card, 0, 52),
			Tableau: make([][]Card, 0, 4),
		}
		return s
	},
}

// GetState acquires a reset state sized for numPlayers.
func GetState(numPlayers uint8) *GameState {
	s := StatePool.Get().(*GameState)
	s.Reset(numPlayers)
	return s
}

// PutState returns a state to the pool. Slices are truncated, not
// freed, so reuse cannot leak cards from a prior game.
func PutState(s *GameState) {
	if s == nil {
		return
	}
	StatePool.Put(s)
}

// Reset clears a state for a fresh game with the given player count.
func (s *GameState) Reset(numPlayers uint8) {
	if numPlayers < 2 {
		numPlayers = 2
	}
	if numPlayers > MaxPlayers {
		numPlayers = MaxPlayers
	}
	s.NumPlayers = numPlayers
	s.Players = s.Players[:0]
	for i := uint8(0); i < numPlayers; i++ {
		s.Players = append(s.Players, PlayerState{Active: true})
	}
	for i := range s.Players {
		p := &s.Players[i]
		p.Hand = p.Hand[:0]
		p.Captured = p.Captured[:0]
	}
	s.Deck = s.Deck[:0]
	s.Discard = s.Discard[:0]
	s.Tableau = s.Tableau[:0]
	s.CurrentPlayer = 0
	s.CurrentPhase = 0
	s.TurnNumber = 0
	s.WinnerID = -1
	s.Pot = 0
	s.CurrentBet = 0
	s.RaiseCount = 0
	s.BetActions = 0
	s.BettingComplete = false
	s.CurrentTrick = s.CurrentTrick[:0]
	s.TrickLeader = 0
	s.TricksCompleted = 0
	s.HeartsBroken = false
	s.TeamMode = false
	s.TeamOf = [MaxPlayers]uint8{}
	s.TeamScores = [2]int{}
	s.TeamBags = [2]int{}
	s.TeamContracts = [2]int{}
	s.BiddingComplete = false
	s.PlayDirection = 1
	s.SkipCount = 0
	s.ExtraTurn = false
	s.Claim = ClaimState{Actual: s.Claim.Actual[:0]}
	s.TableauMode = 0
	s.SequenceDirection = 0
	s.RNG = 0
}

// Clone produces a deep copy for tree search. The copy comes from the
// pool and must be released with PutState.
func (s *GameState) Clone() *GameState {
	c := StatePool.Get().(*GameState)
	c.Reset(s.NumPlayers)

	for i := range s.Players {
		src := &s.Players[i]
		dst := &c.Players[i]
		dst.Hand = append(dst.Hand[:0], src.Hand...)
		dst.Captured = append(dst.Captured[:0], src.Captured...)
		dst.Score = src.Score
		dst.Active = src.Active
		dst.Chips = src.Chips
		dst.CurrentBet = src.CurrentBet
		dst.HasFolded = src.HasFolded
		dst.IsAllIn = src.IsAllIn
		dst.TricksWon = src.TricksWon
		dst.CurrentBid = src.CurrentBid
		dst.HasBid = src.HasBid
		dst.IsNilBid = src.IsNilBid
	}

	c.Deck = append(c.Deck[:0], s.Deck...)
	c.Discard = append(c.Discard[:0], s.Discard...)
	c.Tableau = c.Tableau[:0]
	for _, pile := range s.Tableau {
		c.Tableau = append(c.Tableau, append([]Card(nil), pile...))
	}

	c.CurrentPlayer = s.CurrentPlayer
	c.CurrentPhase = s.CurrentPhase
	c.TurnNumber = s.TurnNumber
	c.WinnerID = s.WinnerID
	c.Pot = s.Pot
	c.CurrentBet = s.CurrentBet
	c.RaiseCount = s.RaiseCount
	c.BetActions = s.BetActions
	c.BettingComplete = s.BettingComplete
	c.CurrentTrick = append(c.CurrentTrick[:0], s.CurrentTrick...)
	c.TrickLeader = s.TrickLeader
	c.TricksCompleted = s.TricksCompleted
	c.HeartsBroken = s.HeartsBroken
	c.TeamMode = s.TeamMode
	c.TeamOf = s.TeamOf
	c.TeamScores = s.TeamScores
	c.TeamBags = s.TeamBags
	c.TeamContracts = s.TeamContracts
	c.BiddingComplete = s.BiddingComplete
	c.PlayDirection = s.PlayDirection
	c.SkipCount = s.SkipCount
	c.ExtraTurn = s.ExtraTurn
	c.Claim = ClaimState{
		Active: s.Claim.Active,
		Player: s.Claim.Player,
		Rank:   s.Claim.Rank,
		Count:  s.Claim.Count,
		Honest: s.Claim.Honest,
		Actual: append(c.Claim.Actual[:0], s.Claim.Actual...),
	}
	c.TableauMode = s.TableauMode
	c.SequenceDirection = s.SequenceDirection
	c.RNG = s.RNG

	return c
}

// CardsInPlay counts every card the state currently tracks. Useful for
// conservation checks in tests.
func (s *GameState) CardsInPlay() int {
	n := len(s.Deck) + len(s.Discard) + len(s.CurrentTrick) + len(s.Claim.Actual)
	for _, pile := range s.Tableau {
		n += len(pile)
	}
	for i := range s.Players {
		n += len(s.Players[i].Hand) + len(s.Players[i].Captured)
	}
	return n
}

// LegalMove identifies one legal action: the phase it belongs to, a
// card index into the current player's hand (or a sentinel for
// non-card actions), a target pile, and a card count for multi-card
// plays and claims.
type LegalMove struct {
	PhaseIndex uint8
	CardIndex  int16
	Target     Location
	Count      uint8
}

// Sentinel CardIndex encodings for non-card actions.
const (
	MoveDraw      int16 = -1
	MovePlayPass  int16 = -2
	MoveDrawPass  int16 = -3
	MoveChallenge int16 = -4
	MoveAccept    int16 = -5

	// Betting actions occupy -10..-15.
	MoveFold  int16 = -10
	MoveCheck int16 = -11
	MoveCall  int16 = -12
	MoveBet   int16 = -13
	MoveRaise int16 = -14
	MoveAllIn int16 = -15

	// A set-of-rank play encodes the rank r as MoveSetBase - r.
	MoveSetBase int16 = -100

	// A bid of v encodes as MoveBidOffset - v; nil bids use MoveBidNil.
	MoveBidOffset int16 = -200
	MoveBidNil    int16 = -250
)
