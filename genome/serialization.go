package genome

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// JSON is the human-readable archive form. The reader also accepts the
// legacy dialect with string ranks/suits ("queen", "spades") that older
// archives used; the writer always emits the numeric form.

type conditionJSON struct {
	Opcode    uint8            `json:"opcode"`
	Operator  uint8            `json:"operator,omitempty"`
	Value     int32            `json:"value,omitempty"`
	Reference uint8            `json:"reference,omitempty"`
	Children  []*conditionJSON `json:"children,omitempty"`
}

type phaseJSON struct {
	Type string `json:"type"`

	// Draw / Play / Discard / Claim
	Source       *Location      `json:"source,omitempty"`
	Target       *Location      `json:"target,omitempty"`
	Count        *int           `json:"count,omitempty"`
	MinCards     *int           `json:"min_cards,omitempty"`
	MaxCards     *int           `json:"max_cards,omitempty"`
	Mandatory    *bool          `json:"mandatory,omitempty"`
	PassIfUnable *bool          `json:"pass_if_unable,omitempty"`
	Condition    *conditionJSON `json:"condition,omitempty"`

	// Trick
	LeadSuitRequired *bool     `json:"lead_suit_required,omitempty"`
	TrumpSuit        *flexSuit `json:"trump_suit,omitempty"`
	HighCardWins     *bool     `json:"high_card_wins,omitempty"`
	BreakingSuit     *flexSuit `json:"breaking_suit,omitempty"`

	// Betting
	MinBet    *int `json:"min_bet,omitempty"`
	MaxRaises *int `json:"max_raises,omitempty"`

	// Claim
	RankFixed      *flexRank `json:"rank_fixed,omitempty"`
	AllowChallenge *bool     `json:"allow_challenge,omitempty"`
	PilePenalty    *int      `json:"pile_penalty,omitempty"`
	SequentialRank *bool     `json:"sequential_rank,omitempty"`

	// Bidding
	MinBid        *int  `json:"min_bid,omitempty"`
	MaxBid        *int  `json:"max_bid,omitempty"`
	NilAllowed    *bool `json:"nil_allowed,omitempty"`
	ExactRequired *bool `json:"exact_required,omitempty"`
}

type winConditionJSON struct {
	Type      string `json:"type"`
	Threshold int    `json:"threshold,omitempty"`
}

type cardScoringJSON struct {
	Rank   flexRank `json:"rank"`
	Suit   flexSuit `json:"suit"`
	Points int      `json:"points"`
}

type effectJSON struct {
	TriggerRank flexRank `json:"trigger_rank"`
	EffectType  uint8    `json:"effect_type"`
	Target      uint8    `json:"target"`
	Value       int      `json:"value,omitempty"`
}

type setupJSON struct {
	CardsPerPlayer    int        `json:"cards_per_player"`
	DeckID            int        `json:"deck_id,omitempty"`
	DealToTableau     int        `json:"deal_to_tableau,omitempty"`
	WildRanks         []flexRank `json:"wild_ranks,omitempty"`
	HandVisibility    Visibility `json:"hand_visibility"`
	DeckVisibility    Visibility `json:"deck_visibility"`
	DiscardVisibility Visibility `json:"discard_visibility"`
	TrumpSuit         flexSuit   `json:"trump_suit"`
	StartingChips     int        `json:"starting_chips,omitempty"`
	TableauSize       int        `json:"tableau_size,omitempty"`
}

type contractJSON struct {
	PointsPerTrick  int `json:"points_per_trick"`
	OvertrickPoints int `json:"overtrick_points"`
	BagThreshold    int `json:"bag_threshold,omitempty"`
	BagPenalty      int `json:"bag_penalty,omitempty"`
	NilBonus        int `json:"nil_bonus,omitempty"`
	NilPenalty      int `json:"nil_penalty,omitempty"`
}

type teamsJSON struct {
	Enabled bool    `json:"enabled"`
	Teams   [][]int `json:"teams"`
}

type genomeJSON struct {
	SchemaVersion int    `json:"schema_version"`
	GenomeID      string `json:"genome_id"`
	Name          string `json:"name,omitempty"`
	Generation    int    `json:"generation"`
	PlayerCount   int    `json:"player_count"`

	Setup setupJSON `json:"setup"`

	Phases            []phaseJSON       `json:"phases"`
	IsTrickBased      bool              `json:"is_trick_based,omitempty"`
	TricksPerHand     int               `json:"tricks_per_hand,omitempty"`
	MaxTurns          int               `json:"max_turns"`
	MinTurns          int               `json:"min_turns"`
	TableauMode       TableauMode       `json:"tableau_mode,omitempty"`
	SequenceDirection SequenceDirection `json:"sequence_direction,omitempty"`

	SpecialEffects []effectJSON       `json:"special_effects,omitempty"`
	WinConditions  []winConditionJSON `json:"win_conditions"`
	CardScoring    []cardScoringJSON  `json:"card_scoring,omitempty"`
	Contract       *contractJSON      `json:"contract_scoring,omitempty"`
	Teams          *teamsJSON         `json:"teams,omitempty"`
}

// flexRank decodes a rank from either a number or a legacy name.
type flexRank uint8

func (r flexRank) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint8(r))
}

func (r *flexRank) UnmarshalJSON(data []byte) error {
	var n uint8
	if err := json.Unmarshal(data, &n); err == nil {
		*r = flexRank(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseRankName(s)
	if err != nil {
		return err
	}
	*r = flexRank(v)
	return nil
}

// flexSuit decodes a suit from either a number or a legacy name.
type flexSuit uint8

func (s flexSuit) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint8(s))
}

func (s *flexSuit) UnmarshalJSON(data []byte) error {
	var n uint8
	if err := json.Unmarshal(data, &n); err == nil {
		*s = flexSuit(n)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	v, err := ParseSuitName(str)
	if err != nil {
		return err
	}
	*s = flexSuit(v)
	return nil
}

var rankNames = map[string]uint8{
	"two": RankTwo, "2": RankTwo,
	"three": RankThree, "3": RankThree,
	"four": RankFour, "4": RankFour,
	"five": RankFive, "5": RankFive,
	"six": RankSix, "6": RankSix,
	"seven": RankSeven, "7": RankSeven,
	"eight": RankEight, "8": RankEight,
	"nine": RankNine, "9": RankNine,
	"ten": RankTen, "10": RankTen,
	"jack": RankJack, "j": RankJack,
	"queen": RankQueen, "q": RankQueen,
	"king": RankKing, "k": RankKing,
	"ace": RankAce, "a": RankAce,
	"any": 255,
}

var suitNames = map[string]uint8{
	"hearts":   SuitHearts,
	"diamonds": SuitDiamonds,
	"clubs":    SuitClubs,
	"spades":   SuitSpades,
	"none":     SuitNone,
	"any":      SuitNone,
}

// ParseRankName converts a legacy rank label to its numeric value.
func ParseRankName(s string) (uint8, error) {
	if v, ok := rankNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return v, nil
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n <= 255 {
		return uint8(n), nil
	}
	return 0, fmt.Errorf("unknown rank %q", s)
}

// ParseSuitName converts a legacy suit label to its numeric value.
func ParseSuitName(s string) (uint8, error) {
	if v, ok := suitNames[strings.ToLower(strings.TrimSpace(s))]; ok {
		return v, nil
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n <= 255 {
		return uint8(n), nil
	}
	return 0, fmt.Errorf("unknown suit %q", s)
}

var winTypeNames = map[WinConditionType]string{
	WinTypeEmptyHand:     "empty_hand",
	WinTypeHighScore:     "high_score",
	WinTypeLowScore:      "low_score",
	WinTypeFirstToScore:  "first_to_score",
	WinTypeMostTricks:    "most_tricks",
	WinTypeFewestTricks:  "fewest_tricks",
	WinTypeMostCaptured:  "most_captured",
	WinTypeCaptureAll:    "capture_all",
	WinTypeAllHandsEmpty: "all_hands_empty",
	WinTypeMostChips:     "most_chips",
}

var winTypeValues = func() map[string]WinConditionType {
	m := make(map[string]WinConditionType, len(winTypeNames))
	for k, v := range winTypeNames {
		m[v] = k
	}
	return m
}()

var phaseTypeNames = map[uint8]string{
	PhaseTagDraw:    "draw",
	PhaseTagPlay:    "play",
	PhaseTagDiscard: "discard",
	PhaseTagTrick:   "trick",
	PhaseTagBetting: "betting",
	PhaseTagClaim:   "claim",
	PhaseTagBidding: "bidding",
}

// MarshalJSON encodes the genome in the archive dialect.
func (g *GameGenome) MarshalJSON() ([]byte, error) {
	out := genomeJSON{
		SchemaVersion: g.SchemaVersion,
		GenomeID:      g.GenomeID,
		Name:          g.Name,
		Generation:    g.Generation,
		PlayerCount:   g.Players(),
		Setup: setupJSON{
			CardsPerPlayer:    g.Setup.CardsPerPlayer,
			DeckID:            g.Setup.DeckID,
			DealToTableau:     g.Setup.DealToTableau,
			HandVisibility:    g.Setup.HandVisibility,
			DeckVisibility:    g.Setup.DeckVisibility,
			DiscardVisibility: g.Setup.DiscardVisibility,
			TrumpSuit:         flexSuit(g.Setup.TrumpSuit),
			StartingChips:     g.Setup.StartingChips,
			TableauSize:       g.Setup.TableauSize,
		},
		IsTrickBased:      g.TurnStructure.IsTrickBased,
		TricksPerHand:     g.TurnStructure.TricksPerHand,
		MaxTurns:          g.TurnStructure.MaxTurns,
		MinTurns:          g.TurnStructure.MinTurns,
		TableauMode:       g.TurnStructure.TableauMode,
		SequenceDirection: g.TurnStructure.SequenceDirection,
	}
	for _, r := range g.Setup.WildRanks {
		out.Setup.WildRanks = append(out.Setup.WildRanks, flexRank(r))
	}
	for _, p := range g.TurnStructure.Phases {
		out.Phases = append(out.Phases, phaseToJSON(p))
	}
	for _, wc := range g.WinConditions {
		out.WinConditions = append(out.WinConditions, winConditionJSON{
			Type:      winTypeNames[wc.Type],
			Threshold: wc.Threshold,
		})
	}
	for _, cs := range g.CardScoring {
		out.CardScoring = append(out.CardScoring, cardScoringJSON{
			Rank: flexRank(cs.Rank), Suit: flexSuit(cs.Suit), Points: cs.Points,
		})
	}
	for rank := 0; rank < 13; rank++ {
		if e, ok := g.SpecialEffects[uint8(rank)]; ok {
			out.SpecialEffects = append(out.SpecialEffects, effectJSON{
				TriggerRank: flexRank(rank),
				EffectType:  e.EffectType,
				Target:      e.Target,
				Value:       e.Value,
			})
		}
	}
	if g.Contract != nil {
		out.Contract = &contractJSON{
			PointsPerTrick:  g.Contract.PointsPerTrick,
			OvertrickPoints: g.Contract.OvertrickPoints,
			BagThreshold:    g.Contract.BagThreshold,
			BagPenalty:      g.Contract.BagPenalty,
			NilBonus:        g.Contract.NilBonus,
			NilPenalty:      g.Contract.NilPenalty,
		}
	}
	if g.Teams != nil {
		out.Teams = &teamsJSON{Enabled: g.Teams.Enabled, Teams: g.Teams.Teams}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes either dialect into the typed genome.
func (g *GameGenome) UnmarshalJSON(data []byte) error {
	var in genomeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*g = GameGenome{
		SchemaVersion: in.SchemaVersion,
		GenomeID:      in.GenomeID,
		Name:          in.Name,
		Generation:    in.Generation,
		PlayerCount:   in.PlayerCount,
		Setup: SetupRules{
			CardsPerPlayer:    in.Setup.CardsPerPlayer,
			DeckID:            in.Setup.DeckID,
			DealToTableau:     in.Setup.DealToTableau,
			HandVisibility:    in.Setup.HandVisibility,
			DeckVisibility:    in.Setup.DeckVisibility,
			DiscardVisibility: in.Setup.DiscardVisibility,
			TrumpSuit:         uint8(in.Setup.TrumpSuit),
			StartingChips:     in.Setup.StartingChips,
			TableauSize:       in.Setup.TableauSize,
		},
		TurnStructure: TurnStructure{
			IsTrickBased:      in.IsTrickBased,
			TricksPerHand:     in.TricksPerHand,
			MaxTurns:          in.MaxTurns,
			MinTurns:          in.MinTurns,
			TableauMode:       in.TableauMode,
			SequenceDirection: in.SequenceDirection,
		},
	}
	for _, r := range in.Setup.WildRanks {
		g.Setup.WildRanks = append(g.Setup.WildRanks, uint8(r))
	}
	for i, pj := range in.Phases {
		p, err := phaseFromJSON(pj)
		if err != nil {
			return fmt.Errorf("phases[%d]: %w", i, err)
		}
		g.TurnStructure.Phases = append(g.TurnStructure.Phases, p)
	}
	for i, wj := range in.WinConditions {
		t, ok := winTypeValues[strings.ToLower(wj.Type)]
		if !ok {
			return fmt.Errorf("win_conditions[%d]: unknown type %q", i, wj.Type)
		}
		g.WinConditions = append(g.WinConditions, WinCondition{Type: t, Threshold: wj.Threshold})
	}
	for _, cj := range in.CardScoring {
		g.CardScoring = append(g.CardScoring, CardScoringRule{
			Rank: uint8(cj.Rank), Suit: uint8(cj.Suit), Points: cj.Points,
		})
	}
	if len(in.SpecialEffects) > 0 {
		g.SpecialEffects = make(map[uint8]SpecialEffect, len(in.SpecialEffects))
		for _, ej := range in.SpecialEffects {
			g.SpecialEffects[uint8(ej.TriggerRank)] = SpecialEffect{
				EffectType: ej.EffectType, Target: ej.Target, Value: ej.Value,
			}
		}
	}
	if in.Contract != nil {
		g.Contract = &ContractScoring{
			PointsPerTrick:  in.Contract.PointsPerTrick,
			OvertrickPoints: in.Contract.OvertrickPoints,
			BagThreshold:    in.Contract.BagThreshold,
			BagPenalty:      in.Contract.BagPenalty,
			NilBonus:        in.Contract.NilBonus,
			NilPenalty:      in.Contract.NilPenalty,
		}
	}
	if in.Teams != nil {
		g.Teams = &TeamConfig{Enabled: in.Teams.Enabled, Teams: in.Teams.Teams}
	}
	return nil
}

func phaseToJSON(p Phase) phaseJSON {
	out := phaseJSON{Type: phaseTypeNames[p.PhaseType()]}
	switch v := p.(type) {
	case *DrawPhase:
		out.Source = ptr(v.Source)
		out.Count = ptr(v.Count)
		out.Mandatory = ptr(v.Mandatory)
		out.Condition = conditionToJSON(v.Condition)
	case *PlayPhase:
		out.Target = ptr(v.Target)
		out.MinCards = ptr(v.MinCards)
		out.MaxCards = ptr(v.MaxCards)
		out.Mandatory = ptr(v.Mandatory)
		out.PassIfUnable = ptr(v.PassIfUnable)
		out.Condition = conditionToJSON(v.ValidPlayCondition)
	case *DiscardPhase:
		out.Target = ptr(v.Target)
		out.Count = ptr(v.Count)
		out.Mandatory = ptr(v.Mandatory)
	case *TrickPhase:
		out.LeadSuitRequired = ptr(v.LeadSuitRequired)
		out.TrumpSuit = ptr(flexSuit(v.TrumpSuit))
		out.HighCardWins = ptr(v.HighCardWins)
		out.BreakingSuit = ptr(flexSuit(v.BreakingSuit))
	case *BettingPhase:
		out.MinBet = ptr(v.MinBet)
		out.MaxRaises = ptr(v.MaxRaises)
	case *ClaimPhase:
		out.Target = ptr(v.Target)
		out.RankFixed = ptr(flexRank(v.RankFixed))
		out.MinCards = ptr(v.MinCards)
		out.MaxCards = ptr(v.MaxCards)
		out.AllowChallenge = ptr(v.AllowChallenge)
		out.PilePenalty = ptr(v.PilePenalty)
		out.SequentialRank = ptr(v.SequentialRank)
	case *BiddingPhase:
		out.MinBid = ptr(v.MinBid)
		out.MaxBid = ptr(v.MaxBid)
		out.NilAllowed = ptr(v.NilAllowed)
		out.ExactRequired = ptr(v.ExactRequired)
	}
	return out
}

func phaseFromJSON(pj phaseJSON) (Phase, error) {
	switch strings.ToLower(pj.Type) {
	case "draw":
		p := &DrawPhase{Source: LocationDeck, Count: 1}
		if pj.Source != nil {
			p.Source = *pj.Source
		}
		if pj.Count != nil {
			p.Count = *pj.Count
		}
		if pj.Mandatory != nil {
			p.Mandatory = *pj.Mandatory
		}
		p.Condition = conditionFromJSON(pj.Condition)
		return p, nil
	case "play":
		p := &PlayPhase{Target: LocationDiscard, MinCards: 1, MaxCards: 1}
		if pj.Target != nil {
			p.Target = *pj.Target
		}
		if pj.MinCards != nil {
			p.MinCards = *pj.MinCards
		}
		if pj.MaxCards != nil {
			p.MaxCards = *pj.MaxCards
		}
		if pj.Mandatory != nil {
			p.Mandatory = *pj.Mandatory
		}
		if pj.PassIfUnable != nil {
			p.PassIfUnable = *pj.PassIfUnable
		}
		p.ValidPlayCondition = conditionFromJSON(pj.Condition)
		return p, nil
	case "discard":
		p := &DiscardPhase{Target: LocationDiscard, Count: 1}
		if pj.Target != nil {
			p.Target = *pj.Target
		}
		if pj.Count != nil {
			p.Count = *pj.Count
		}
		if pj.Mandatory != nil {
			p.Mandatory = *pj.Mandatory
		}
		return p, nil
	case "trick":
		p := &TrickPhase{TrumpSuit: SuitNone, BreakingSuit: SuitNone, HighCardWins: true}
		if pj.LeadSuitRequired != nil {
			p.LeadSuitRequired = *pj.LeadSuitRequired
		}
		if pj.TrumpSuit != nil {
			p.TrumpSuit = uint8(*pj.TrumpSuit)
		}
		if pj.HighCardWins != nil {
			p.HighCardWins = *pj.HighCardWins
		}
		if pj.BreakingSuit != nil {
			p.BreakingSuit = uint8(*pj.BreakingSuit)
		}
		return p, nil
	case "betting":
		p := &BettingPhase{MinBet: 10, MaxRaises: 3}
		if pj.MinBet != nil {
			p.MinBet = *pj.MinBet
		}
		if pj.MaxRaises != nil {
			p.MaxRaises = *pj.MaxRaises
		}
		return p, nil
	case "claim":
		p := &ClaimPhase{Target: LocationDiscard, RankFixed: 255, MinCards: 1, MaxCards: 4, AllowChallenge: true}
		if pj.Target != nil {
			p.Target = *pj.Target
		}
		if pj.RankFixed != nil {
			p.RankFixed = uint8(*pj.RankFixed)
		}
		if pj.MinCards != nil {
			p.MinCards = *pj.MinCards
		}
		if pj.MaxCards != nil {
			p.MaxCards = *pj.MaxCards
		}
		if pj.AllowChallenge != nil {
			p.AllowChallenge = *pj.AllowChallenge
		}
		if pj.PilePenalty != nil {
			p.PilePenalty = *pj.PilePenalty
		}
		if pj.SequentialRank != nil {
			p.SequentialRank = *pj.SequentialRank
		}
		return p, nil
	case "bidding":
		p := &BiddingPhase{MaxBid: 13, NilAllowed: true}
		if pj.MinBid != nil {
			p.MinBid = *pj.MinBid
		}
		if pj.MaxBid != nil {
			p.MaxBid = *pj.MaxBid
		}
		if pj.NilAllowed != nil {
			p.NilAllowed = *pj.NilAllowed
		}
		if pj.ExactRequired != nil {
			p.ExactRequired = *pj.ExactRequired
		}
		return p, nil
	}
	return nil, fmt.Errorf("unknown phase type %q", pj.Type)
}

func conditionToJSON(c *Condition) *conditionJSON {
	if c == nil {
		return nil
	}
	out := &conditionJSON{
		Opcode:    c.Opcode,
		Operator:  c.Operator,
		Value:     c.Value,
		Reference: c.Reference,
	}
	for _, child := range c.Children {
		out.Children = append(out.Children, conditionToJSON(child))
	}
	return out
}

func conditionFromJSON(cj *conditionJSON) *Condition {
	if cj == nil {
		return nil
	}
	c := &Condition{
		Opcode:    cj.Opcode,
		Operator:  cj.Operator,
		Value:     cj.Value,
		Reference: cj.Reference,
	}
	for _, child := range cj.Children {
		c.Children = append(c.Children, conditionFromJSON(child))
	}
	return c
}

func ptr[T any](v T) *T { return &v }
