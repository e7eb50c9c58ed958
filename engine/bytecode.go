package engine

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrInvalidBytecode is wrapped by every decode failure.
var ErrInvalidBytecode = errors.New("invalid bytecode")

// Bytecode layout constants. All integers are big-endian.
const (
	HeaderSizeV1 = 36
	HeaderSizeV2 = 39
	SetupSize    = 15

	BytecodeVersion2 = 2
)

// Phase type tags.
const (
	PhaseDraw uint8 = iota + 1
	PhasePlay
	PhaseDiscard
	PhaseTrick
	PhaseBetting
	PhaseClaim
	PhaseBidding
)

// Fixed payload sizes per phase tag. PlayPhase payloads additionally
// carry condition_len trailing bytes.
const (
	PayloadDraw    = 7
	PayloadPlay    = 9
	PayloadDiscard = 6
	PayloadTrick   = 4
	PayloadBetting = 8
	PayloadClaim   = 10
	PayloadBidding = 4

	ConditionSize = 7
)

// Condition opcodes (0-14).
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
)

// Compound condition opcodes.
const (
	CondAnd uint8 = 40
	CondOr  uint8 = 41
)

// Action opcodes (20-39). The interpreter encodes moves through
// LegalMove sentinels; these tags name the action space for tooling
// and the effects trailer.
const (
	ActionDraw uint8 = iota + 20
	ActionPlay
	ActionDiscard
	ActionSkip
	ActionReverse
	ActionDrawFromOpponent
	ActionDiscardPairs
	ActionBet
	ActionCall
	ActionRaise
	ActionFold
	ActionCheck
	ActionAllIn
	ActionClaim
	ActionChallenge
	ActionReveal
)

// Comparison operators (50-55).
const (
	OpEQ uint8 = iota + 50
	OpNE
	OpLT
	OpGT
	OpLE
	OpGE
)

// EffectSentinel begins the optional special-effects trailer.
const EffectSentinel uint8 = 60

// Condition reference targets.
const (
	RefNone       uint8 = 0
	RefTopDiscard uint8 = 1
	RefLastPlayed uint8 = 2
)

// Tableau modes.
const (
	TableauNone uint8 = iota
	TableauWar
	TableauMatchRank
	TableauSequence
)

// Sequence directions.
const (
	SeqAscending uint8 = iota
	SeqDescending
	SeqBoth
)

// Win condition kinds.
const (
	WinEmptyHand uint8 = iota
	WinHighScore
	WinLowScore
	WinFirstToScore
	WinMostTricks
	WinFewestTricks
	WinMostCaptured
	WinCaptureAll
	WinAllHandsEmpty
	WinMostChips
)

// Header is the decoded bytecode header. V1 input (no leading version
// byte, no tableau/direction bytes) decodes with Version=1.
type Header struct {
	Version           uint8
	SchemaVersion     uint32
	GenomeID          uint64
	PlayerCount       uint32
	MaxTurns          uint32
	SetupOffset       uint32
	TurnOffset        uint32
	WinOffset         uint32
	ScoringOffset     uint32
	TableauMode       uint8
	SequenceDirection uint8
}

// SetupInfo is the decoded setup section.
type SetupInfo struct {
	CardsPerPlayer    uint8
	DealToTableau     uint8
	StartingChips     uint32
	WildRankMask      uint16
	TrumpSuit         uint8
	HandVisibility    uint8
	DeckVisibility    uint8
	DiscardVisibility uint8
	MinTurns          uint8
	TricksPerHand     uint8
	DeckID            uint8
}

// PhaseDescriptor keeps the raw payload so the interpreter reads it in
// place without re-materializing structs per game.
type PhaseDescriptor struct {
	PhaseType uint8
	Data      []byte
}

// WinCondition is a (kind, threshold) record.
type WinCondition struct {
	Kind      uint8
	Threshold int32
}

// CardScore assigns points to a rank (and optionally a suit).
type CardScore struct {
	Rank   uint8
	Suit   uint8
	Points int32
}

// ContractRules parameterize bid-contract scoring.
type ContractRules struct {
	PointsPerTrick  int32
	OvertrickPoints int32
	BagThreshold    uint8
	BagPenalty      int32
	NilBonus        int32
	NilPenalty      int32
}

// SpecialEffect is a rank-triggered rule modifier.
type SpecialEffect struct {
	TriggerRank uint8
	EffectType  uint8
	Target      uint8
	Value       uint8
}

// Genome is the fully decoded bytecode, ready for the interpreter.
type Genome struct {
	Header        Header
	Setup         SetupInfo
	Phases        []PhaseDescriptor
	WinConditions []WinCondition
	CardScoring   []CardScore
	Contract      *ContractRules
	Teams         [][]uint8
	Effects       map[uint8]SpecialEffect
}

// ParseHeader decodes a V1 or V2 header. Input longer than the header
// is permitted; only the header bytes are read.
func ParseHeader(data []byte) (Header, error) {
	var h Header
	if len(data) == 0 {
		return h, fmt.Errorf("%w: empty input", ErrInvalidBytecode)
	}
	if data[0] == BytecodeVersion2 {
		if len(data) < HeaderSizeV2 {
			return h, fmt.Errorf("%w: header truncated at %d bytes", ErrInvalidBytecode, len(data))
		}
		h.Version = BytecodeVersion2
		h.SchemaVersion = binary.BigEndian.Uint32(data[1:5])
		h.GenomeID = binary.BigEndian.Uint64(data[5:13])
		h.PlayerCount = binary.BigEndian.Uint32(data[13:17])
		h.MaxTurns = binary.BigEndian.Uint32(data[17:21])
		h.SetupOffset = binary.BigEndian.Uint32(data[21:25])
		h.TurnOffset = binary.BigEndian.Uint32(data[25:29])
		h.WinOffset = binary.BigEndian.Uint32(data[29:33])
		h.ScoringOffset = binary.BigEndian.Uint32(data[33:37])
		h.TableauMode = data[37]
		h.SequenceDirection = data[38]
		return h, nil
	}
	if len(data) < HeaderSizeV1 {
		return h, fmt.Errorf("%w: header truncated at %d bytes", ErrInvalidBytecode, len(data))
	}
	h.Version = 1
	h.SchemaVersion = binary.BigEndian.Uint32(data[0:4])
	h.GenomeID = binary.BigEndian.Uint64(data[4:12])
	h.PlayerCount = binary.BigEndian.Uint32(data[12:16])
	h.MaxTurns = binary.BigEndian.Uint32(data[16:20])
	h.SetupOffset = binary.BigEndian.Uint32(data[20:24])
	h.TurnOffset = binary.BigEndian.Uint32(data[24:28])
	h.WinOffset = binary.BigEndian.Uint32(data[28:32])
	h.ScoringOffset = binary.BigEndian.Uint32(data[32:36])
	h.TableauMode = TableauNone
	h.SequenceDirection = SeqAscending
	return h, nil
}

// ParseGenome decodes a full bytecode blob. It segments sections and
// validates sizes; it never interprets phase payload semantics beyond
// the length rules.
func ParseGenome(data []byte) (*Genome, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}
	g := &Genome{Header: h}

	n := uint32(len(data))
	for _, off := range []uint32{h.SetupOffset, h.TurnOffset, h.WinOffset} {
		if off == 0 || off > n {
			return nil, fmt.Errorf("%w: section offset %d out of range (len %d)", ErrInvalidBytecode, off, n)
		}
	}
	if h.ScoringOffset > n {
		return nil, fmt.Errorf("%w: scoring offset %d out of range (len %d)", ErrInvalidBytecode, h.ScoringOffset, n)
	}
	if h.PlayerCount < 2 || h.PlayerCount > MaxPlayers {
		return nil, fmt.Errorf("%w: player count %d", ErrInvalidBytecode, h.PlayerCount)
	}

	if err := parseSetup(data, h.SetupOffset, &g.Setup); err != nil {
		return nil, err
	}
	end, err := parseTurnStructure(data, h.TurnOffset, g)
	if err != nil {
		return nil, err
	}
	winEnd, err := parseWinConditions(data, h.WinOffset, g)
	if err != nil {
		return nil, err
	}
	if end > h.WinOffset {
		return nil, fmt.Errorf("%w: turn structure overruns win conditions", ErrInvalidBytecode)
	}

	tail := winEnd
	if h.ScoringOffset != 0 {
		tail, err = parseScoring(data, h.ScoringOffset, g)
		if err != nil {
			return nil, err
		}
	}
	if tail < n && data[tail] == EffectSentinel {
		if err := parseEffects(data, tail, g); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func parseSetup(data []byte, off uint32, s *SetupInfo) error {
	if int(off)+SetupSize > len(data) {
		return fmt.Errorf("%w: setup section truncated", ErrInvalidBytecode)
	}
	b := data[off:]
	s.CardsPerPlayer = b[0]
	s.DealToTableau = b[1]
	s.StartingChips = binary.BigEndian.Uint32(b[2:6])
	s.WildRankMask = binary.BigEndian.Uint16(b[6:8])
	s.TrumpSuit = b[8]
	s.HandVisibility = b[9]
	s.DeckVisibility = b[10]
	s.DiscardVisibility = b[11]
	s.MinTurns = b[12]
	s.TricksPerHand = b[13]
	s.DeckID = b[14]
	return nil
}

// phasePayloadLen returns the total payload length for a phase tag,
// reading variable parts (draw condition flag, play condition_len)
// from the payload itself. Returns -1 when the tag is unknown or the
// payload is truncated.
func phasePayloadLen(tag uint8, data []byte) int {
	switch tag {
	case PhaseDraw:
		if len(data) < PayloadDraw {
			return -1
		}
		if data[6] != 0 { // has_condition
			return PayloadDraw + ConditionSize
		}
		return PayloadDraw
	case PhasePlay:
		if len(data) < PayloadPlay {
			return -1
		}
		condLen := int(binary.BigEndian.Uint32(data[5:9]))
		return PayloadPlay + condLen
	case PhaseDiscard:
		return PayloadDiscard
	case PhaseTrick:
		return PayloadTrick
	case PhaseBetting:
		return PayloadBetting
	case PhaseClaim:
		return PayloadClaim
	case PhaseBidding:
		return PayloadBidding
	}
	return -1
}

func parseTurnStructure(data []byte, off uint32, g *Genome) (uint32, error) {
	if int(off)+4 > len(data) {
		return 0, fmt.Errorf("%w: turn structure truncated", ErrInvalidBytecode)
	}
	count := binary.BigEndian.Uint32(data[off : off+4])
	if count == 0 || count > 16 {
		return 0, fmt.Errorf("%w: phase count %d", ErrInvalidBytecode, count)
	}
	pos := int(off) + 4
	g.Phases = make([]PhaseDescriptor, 0, count)
	for i := uint32(0); i < count; i++ {
		if pos >= len(data) {
			return 0, fmt.Errorf("%w: phase %d truncated", ErrInvalidBytecode, i)
		}
		tag := data[pos]
		pos++
		plen := phasePayloadLen(tag, data[pos:])
		if plen < 0 {
			return 0, fmt.Errorf("%w: unknown or truncated phase tag %d at offset %d", ErrInvalidBytecode, tag, pos-1)
		}
		if pos+plen > len(data) {
			return 0, fmt.Errorf("%w: phase %d payload overruns input", ErrInvalidBytecode, i)
		}
		g.Phases = append(g.Phases, PhaseDescriptor{PhaseType: tag, Data: data[pos : pos+plen]})
		pos += plen
	}
	return uint32(pos), nil
}

func parseWinConditions(data []byte, off uint32, g *Genome) (uint32, error) {
	if int(off)+4 > len(data) {
		return 0, fmt.Errorf("%w: win conditions truncated", ErrInvalidBytecode)
	}
	count := binary.BigEndian.Uint32(data[off : off+4])
	if count == 0 || count > 16 {
		return 0, fmt.Errorf("%w: win condition count %d", ErrInvalidBytecode, count)
	}
	pos := int(off) + 4
	g.WinConditions = make([]WinCondition, 0, count)
	for i := uint32(0); i < count; i++ {
		if pos+5 > len(data) {
			return 0, fmt.Errorf("%w: win condition %d truncated", ErrInvalidBytecode, i)
		}
		g.WinConditions = append(g.WinConditions, WinCondition{
			Kind:      data[pos],
			Threshold: int32(binary.BigEndian.Uint32(data[pos+1 : pos+5])),
		})
		pos += 5
	}
	return uint32(pos), nil
}

func parseScoring(data []byte, off uint32, g *Genome) (uint32, error) {
	pos := int(off)
	if pos+4 > len(data) {
		return 0, fmt.Errorf("%w: scoring section truncated", ErrInvalidBytecode)
	}
	count := binary.BigEndian.Uint32(data[pos : pos+4])
	pos += 4
	if count > 64 {
		return 0, fmt.Errorf("%w: card scoring count %d", ErrInvalidBytecode, count)
	}
	g.CardScoring = make([]CardScore, 0, count)
	for i := uint32(0); i < count; i++ {
		if pos+6 > len(data) {
			return 0, fmt.Errorf("%w: card scoring record %d truncated", ErrInvalidBytecode, i)
		}
		g.CardScoring = append(g.CardScoring, CardScore{
			Rank:   data[pos],
			Suit:   data[pos+1],
			Points: int32(binary.BigEndian.Uint32(data[pos+2 : pos+6])),
		})
		pos += 6
	}

	if pos >= len(data) {
		return 0, fmt.Errorf("%w: scoring section missing contract flag", ErrInvalidBytecode)
	}
	if data[pos] != 0 {
		pos++
		if pos+21 > len(data) {
			return 0, fmt.Errorf("%w: contract rules truncated", ErrInvalidBytecode)
		}
		g.Contract = &ContractRules{
			PointsPerTrick:  int32(binary.BigEndian.Uint32(data[pos : pos+4])),
			OvertrickPoints: int32(binary.BigEndian.Uint32(data[pos+4 : pos+8])),
			BagThreshold:    data[pos+8],
			BagPenalty:      int32(binary.BigEndian.Uint32(data[pos+9 : pos+13])),
			NilBonus:        int32(binary.BigEndian.Uint32(data[pos+13 : pos+17])),
			NilPenalty:      int32(binary.BigEndian.Uint32(data[pos+17 : pos+21])),
		}
		pos += 21
	} else {
		pos++
	}

	if pos >= len(data) {
		return 0, fmt.Errorf("%w: scoring section missing team flag", ErrInvalidBytecode)
	}
	if data[pos] != 0 {
		pos++
		if pos >= len(data) {
			return 0, fmt.Errorf("%w: team section truncated", ErrInvalidBytecode)
		}
		teamCount := int(data[pos])
		pos++
		if teamCount < 2 || teamCount > MaxPlayers {
			return 0, fmt.Errorf("%w: team count %d", ErrInvalidBytecode, teamCount)
		}
		g.Teams = make([][]uint8, 0, teamCount)
		for t := 0; t < teamCount; t++ {
			if pos >= len(data) {
				return 0, fmt.Errorf("%w: team %d truncated", ErrInvalidBytecode, t)
			}
			size := int(data[pos])
			pos++
			if size == 0 || pos+size > len(data) {
				return 0, fmt.Errorf("%w: team %d members truncated", ErrInvalidBytecode, t)
			}
			members := make([]uint8, size)
			copy(members, data[pos:pos+size])
			g.Teams = append(g.Teams, members)
			pos += size
		}
	} else {
		pos++
	}
	return uint32(pos), nil
}

func parseEffects(data []byte, off uint32, g *Genome) error {
	pos := int(off)
	if data[pos] != EffectSentinel {
		return fmt.Errorf("%w: effects trailer missing sentinel", ErrInvalidBytecode)
	}
	pos++
	if pos+4 > len(data) {
		return fmt.Errorf("%w: effects trailer truncated", ErrInvalidBytecode)
	}
	count := binary.BigEndian.Uint32(data[pos : pos+4])
	pos += 4
	if count > 13 {
		return fmt.Errorf("%w: effect count %d", ErrInvalidBytecode, count)
	}
	g.Effects = make(map[uint8]SpecialEffect, count)
	for i := uint32(0); i < count; i++ {
		if pos+4 > len(data) {
			return fmt.Errorf("%w: effect record %d truncated", ErrInvalidBytecode, i)
		}
		e := SpecialEffect{
			TriggerRank: data[pos],
			EffectType:  data[pos+1],
			Target:      data[pos+2],
			Value:       data[pos+3],
		}
		g.Effects[e.TriggerRank] = e
		pos += 4
	}
	return nil
}
