package genome

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
)

// ErrInvalidGenome is wrapped by every compile-time rejection.
var ErrInvalidGenome = errors.New("invalid genome")

// Bytecode version emitted by Compile. The decoder also accepts the
// headerless V1 form.
const BytecodeVersion = 2

const headerSize = 39
const setupSize = 15

// Compile converts a genome to its canonical bytecode. Compilation is
// deterministic: the same genome always yields the same bytes.
func Compile(g *GameGenome) ([]byte, error) {
	if errs := ValidateGenome(g); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidGenome, errs[0].Error())
	}

	turnSec, err := encodeTurnStructure(&g.TurnStructure)
	if err != nil {
		return nil, err
	}
	winSec := encodeWinConditions(g.WinConditions)
	scoringSec := encodeScoring(g)
	effectsSec := encodeEffects(g.SpecialEffects)

	setupOff := uint32(headerSize)
	turnOff := setupOff + setupSize
	winOff := turnOff + uint32(len(turnSec))
	scoringOff := uint32(0)
	if len(scoringSec) > 0 {
		scoringOff = winOff + uint32(len(winSec))
	}

	total := int(winOff) + len(winSec) + len(scoringSec) + len(effectsSec)
	out := make([]byte, 0, total)

	// Header.
	out = append(out, BytecodeVersion)
	out = be32(out, uint32(g.SchemaVersion))
	out = be64(out, genomeIDHash(g.GenomeID))
	out = be32(out, uint32(g.Players()))
	out = be32(out, uint32(g.TurnStructure.MaxTurns))
	out = be32(out, setupOff)
	out = be32(out, turnOff)
	out = be32(out, winOff)
	out = be32(out, scoringOff)
	out = append(out, uint8(g.TurnStructure.TableauMode), uint8(g.TurnStructure.SequenceDirection))

	// Setup.
	out = append(out, uint8(g.Setup.CardsPerPlayer), uint8(g.Setup.DealToTableau))
	out = be32(out, uint32(g.Setup.StartingChips))
	out = be16(out, wildMask(g.Setup.WildRanks))
	out = append(out,
		g.Setup.TrumpSuit,
		uint8(g.Setup.HandVisibility),
		uint8(g.Setup.DeckVisibility),
		uint8(g.Setup.DiscardVisibility),
		uint8(g.TurnStructure.MinTurns),
		uint8(g.TurnStructure.TricksPerHand),
		uint8(g.Setup.DeckID),
	)

	out = append(out, turnSec...)
	out = append(out, winSec...)
	out = append(out, scoringSec...)
	out = append(out, effectsSec...)

	if len(out) != total {
		return nil, fmt.Errorf("%w: emitted %d bytes, expected %d", ErrInvalidGenome, len(out), total)
	}
	return out, nil
}

// genomeIDHash is the stable 64-bit id carried in the header.
func genomeIDHash(id string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(id))
	return h.Sum64()
}

func wildMask(ranks []uint8) uint16 {
	var mask uint16
	for _, r := range ranks {
		if r < 13 {
			mask |= 1 << r
		}
	}
	return mask
}

func encodeTurnStructure(ts *TurnStructure) ([]byte, error) {
	out := be32(nil, uint32(len(ts.Phases)))
	for _, phase := range ts.Phases {
		out = append(out, phase.PhaseType())
		switch p := phase.(type) {
		case *DrawPhase:
			out = append(out, uint8(p.Source))
			out = be32(out, uint32(p.Count))
			out = append(out, boolByte(p.Mandatory), boolByte(p.Condition != nil))
			if p.Condition != nil {
				if p.Condition.Opcode == CondAnd || p.Condition.Opcode == CondOr {
					return nil, fmt.Errorf("%w: draw phase conditions must be simple", ErrInvalidGenome)
				}
				out = encodeCondition(out, p.Condition)
			}
		case *PlayPhase:
			cond := encodeConditionTree(p.ValidPlayCondition)
			out = append(out, uint8(p.Target), uint8(p.MinCards), uint8(p.MaxCards),
				boolByte(p.Mandatory), boolByte(p.PassIfUnable))
			out = be32(out, uint32(len(cond)))
			out = append(out, cond...)
		case *DiscardPhase:
			out = append(out, uint8(p.Target))
			out = be32(out, uint32(p.Count))
			out = append(out, boolByte(p.Mandatory))
		case *TrickPhase:
			out = append(out, boolByte(p.LeadSuitRequired), p.TrumpSuit,
				boolByte(p.HighCardWins), p.BreakingSuit)
		case *BettingPhase:
			out = be32(out, uint32(p.MinBet))
			out = be32(out, uint32(p.MaxRaises))
		case *ClaimPhase:
			out = append(out, uint8(p.Target), p.RankFixed, uint8(p.MinCards), uint8(p.MaxCards),
				boolByte(p.AllowChallenge))
			out = be32(out, uint32(p.PilePenalty))
			out = append(out, boolByte(p.SequentialRank))
		case *BiddingPhase:
			out = append(out, uint8(p.MinBid), uint8(p.MaxBid),
				boolByte(p.NilAllowed), boolByte(p.ExactRequired))
		default:
			return nil, fmt.Errorf("%w: unknown phase type %T", ErrInvalidGenome, phase)
		}
	}
	return out, nil
}

// encodeConditionTree encodes a possibly-compound condition; nil
// yields no bytes.
func encodeConditionTree(c *Condition) []byte {
	if c == nil {
		return nil
	}
	return encodeCondition(nil, c)
}

func encodeCondition(out []byte, c *Condition) []byte {
	if c.Opcode == CondAnd || c.Opcode == CondOr {
		out = append(out, c.Opcode)
		out = be32(out, uint32(len(c.Children)))
		for _, child := range c.Children {
			out = encodeCondition(out, child)
		}
		return out
	}
	out = append(out, c.Opcode, c.Operator)
	out = be32(out, uint32(c.Value))
	out = append(out, c.Reference)
	return out
}

func encodeWinConditions(wcs []WinCondition) []byte {
	out := be32(nil, uint32(len(wcs)))
	for _, wc := range wcs {
		out = append(out, uint8(wc.Type))
		out = be32(out, uint32(wc.Threshold))
	}
	return out
}

// encodeScoring emits the optional scoring section: card scoring
// records, contract rules, team assignments. Empty when the genome
// has none of them.
func encodeScoring(g *GameGenome) []byte {
	hasTeams := g.Teams != nil && g.Teams.Enabled && len(g.Teams.Teams) >= 2
	if len(g.CardScoring) == 0 && g.Contract == nil && !hasTeams {
		return nil
	}
	out := be32(nil, uint32(len(g.CardScoring)))
	for _, cs := range g.CardScoring {
		out = append(out, cs.Rank, cs.Suit)
		out = be32(out, uint32(cs.Points))
	}
	if g.Contract != nil {
		out = append(out, 1)
		out = be32(out, uint32(g.Contract.PointsPerTrick))
		out = be32(out, uint32(g.Contract.OvertrickPoints))
		out = append(out, uint8(g.Contract.BagThreshold))
		out = be32(out, uint32(g.Contract.BagPenalty))
		out = be32(out, uint32(g.Contract.NilBonus))
		out = be32(out, uint32(g.Contract.NilPenalty))
	} else {
		out = append(out, 0)
	}
	if hasTeams {
		out = append(out, 1, uint8(len(g.Teams.Teams)))
		for _, team := range g.Teams.Teams {
			out = append(out, uint8(len(team)))
			for _, member := range team {
				out = append(out, uint8(member))
			}
		}
	} else {
		out = append(out, 0)
	}
	return out
}

// EffectSentinel begins the special-effects trailer.
const EffectSentinel uint8 = 60

func encodeEffects(effects map[uint8]SpecialEffect) []byte {
	if len(effects) == 0 {
		return nil
	}
	ranks := make([]int, 0, len(effects))
	for r := range effects {
		ranks = append(ranks, int(r))
	}
	sort.Ints(ranks)

	out := []byte{EffectSentinel}
	out = be32(out, uint32(len(ranks)))
	for _, r := range ranks {
		e := effects[uint8(r)]
		out = append(out, uint8(r), e.EffectType, e.Target, uint8(e.Value))
	}
	return out
}

func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

func be16(out []byte, v uint16) []byte {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	return append(out, buf[:]...)
}

func be32(out []byte, v uint32) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	return append(out, buf[:]...)
}

func be64(out []byte, v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return append(out, buf[:]...)
}

// BytecodeHash is a content hash of compiled bytecode, used to key the
// fitness cache.
func BytecodeHash(bytecode []byte) uint64 {
	h := fnv.New64a()
	h.Write(bytecode)
	return h.Sum64()
}
