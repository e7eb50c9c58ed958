package mcts

import (
	"math"
	"math/rand"
	"testing"

	"github.com/signalnine/deckforge/engine"
	"github.com/signalnine/deckforge/genome"
)

func warGenome(t *testing.T) *engine.Genome {
	t.Helper()
	bytecode, err := genome.Compile(genome.NewWarGenome())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	g, err := engine.ParseGenome(bytecode)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return g
}

// warState deals a short War position so searches stay fast.
func warState(t *testing.T, cardsEach int) *engine.GameState {
	t.Helper()
	s := engine.GetState(2)
	s.TableauMode = engine.TableauWar
	engine.NewDeck(s)
	engine.ShuffleDeck(s, 42)
	for i := 0; i < cardsEach; i++ {
		engine.DrawCard(s, 0, engine.LocationDeck)
		engine.DrawCard(s, 1, engine.LocationDeck)
	}
	s.Deck = s.Deck[:0]
	return s
}

func TestSearchReturnsLegalMove(t *testing.T) {
	g := warGenome(t)
	s := warState(t, 3)
	defer engine.PutState(s)

	rng := rand.New(rand.NewSource(1))
	move := Search(s, g, 50, DefaultExplorationParam, rng)
	if move == nil {
		t.Fatal("expected a move")
	}

	legal := engine.GenerateLegalMoves(s, g)
	found := false
	for _, m := range legal {
		if m == *move {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("returned move %+v not in legal set %+v", *move, legal)
	}
}

func TestSearchDoesNotMutateState(t *testing.T) {
	g := warGenome(t)
	s := warState(t, 3)
	defer engine.PutState(s)

	before := s.CardsInPlay()
	hand0 := len(s.Players[0].Hand)

	rng := rand.New(rand.NewSource(1))
	Search(s, g, 50, DefaultExplorationParam, rng)

	if s.CardsInPlay() != before || len(s.Players[0].Hand) != hand0 {
		t.Error("search mutated the input state")
	}
	if s.CurrentPhase != 0 || s.TurnNumber != 0 {
		t.Error("search advanced the input state")
	}
}

func TestSearchDeterministicWithSeed(t *testing.T) {
	g := warGenome(t)

	a := warState(t, 4)
	b := warState(t, 4)
	defer engine.PutState(a)
	defer engine.PutState(b)

	ma := SearchWithParams(a, g, SearchParams{Iterations: 100, ExplorationParam: DefaultExplorationParam, Seed: 9})
	mb := SearchWithParams(b, g, SearchParams{Iterations: 100, ExplorationParam: DefaultExplorationParam, Seed: 9})
	if ma == nil || mb == nil {
		t.Fatal("expected moves")
	}
	if *ma != *mb {
		t.Errorf("same seed diverged: %+v vs %+v", *ma, *mb)
	}
}

func TestSearchNilWithoutMoves(t *testing.T) {
	g := warGenome(t)
	s := engine.GetState(2)
	defer engine.PutState(s)
	s.WinnerID = 0

	rng := rand.New(rand.NewSource(1))
	if move := Search(s, g, 10, DefaultExplorationParam, rng); move != nil {
		t.Errorf("finished game should yield no move, got %+v", move)
	}
}

func TestRolloutTerminates(t *testing.T) {
	g := warGenome(t)
	s := warState(t, 2)
	defer engine.PutState(s)

	rng := rand.New(rand.NewSource(3))
	winner := rollout(s, g, rng)
	if winner < -1 || winner > 1 {
		t.Errorf("invalid rollout winner %d", winner)
	}
}

func TestUCB1UnvisitedIsInfinite(t *testing.T) {
	parent := GetNode()
	defer NodePool.Put(parent)
	parent.Visits = 10

	child := GetNode()
	defer NodePool.Put(child)
	child.Parent = parent

	if !math.IsInf(child.UCB1(DefaultExplorationParam), 1) {
		t.Error("unvisited node must sort first")
	}
}

func TestUCB1BalancesExploitationAndExploration(t *testing.T) {
	parent := GetNode()
	defer NodePool.Put(parent)
	parent.Visits = 100

	strong := GetNode()
	defer NodePool.Put(strong)
	strong.Parent = parent
	strong.Visits = 50
	strong.Wins = 40

	rare := GetNode()
	defer NodePool.Put(rare)
	rare.Parent = parent
	rare.Visits = 2
	rare.Wins = 1

	// With no exploration the strong child dominates; with a huge
	// exploration constant the rarely visited child does.
	if strong.UCB1(0.001) <= rare.UCB1(0.001) {
		t.Error("exploitation should favor the strong child")
	}
	if rare.UCB1(100) <= strong.UCB1(100) {
		t.Error("exploration should favor the rare child")
	}
}

func TestBestChildPrefersUnvisited(t *testing.T) {
	parent := GetNode()
	defer PutNode(parent)
	parent.Visits = 5

	visited := GetNode()
	visited.Parent = parent
	visited.Visits = 5
	visited.Wins = 5

	fresh := GetNode()
	fresh.Parent = parent

	parent.Children = append(parent.Children, visited, fresh)
	if got := parent.BestChild(DefaultExplorationParam); got != fresh {
		t.Error("unvisited child should be selected first")
	}
}

func TestMostVisitedChild(t *testing.T) {
	parent := GetNode()
	defer PutNode(parent)

	a := GetNode()
	a.Visits = 3
	a.Wins = 3
	b := GetNode()
	b.Visits = 7
	b.Wins = 1
	parent.Children = append(parent.Children, a, b)

	// Final selection is by visits, not win rate.
	if got := parent.MostVisitedChild(); got != b {
		t.Error("expected the most visited child")
	}
}

func TestBackpropagateCreditsActor(t *testing.T) {
	root := GetNode()
	defer NodePool.Put(root)
	root.PlayerID = 0

	child := GetNode()
	defer NodePool.Put(child)
	child.Parent = root
	child.PlayerID = 1

	backpropagate(child, 1)
	if child.Visits != 1 || child.Wins != 1 {
		t.Errorf("actor should be credited: visits=%d wins=%f", child.Visits, child.Wins)
	}
	if root.Visits != 1 || root.Wins != 0 {
		t.Errorf("loser should not be credited: visits=%d wins=%f", root.Visits, root.Wins)
	}

	backpropagate(child, -1)
	if child.Wins != 1.5 || root.Wins != 0.5 {
		t.Errorf("draws are half a win: %f / %f", child.Wins, root.Wins)
	}
}

func TestNodeResetClearsEverything(t *testing.T) {
	n := GetNode()
	n.Visits = 9
	n.Wins = 4
	n.PlayerID = 2
	n.UntriedMoves = append(n.UntriedMoves, engine.LegalMove{CardIndex: 1})
	child := GetNode()
	n.Children = append(n.Children, child)

	n.Reset()
	if n.Visits != 0 || n.Wins != 0 || n.PlayerID != 0 {
		t.Error("counters not cleared")
	}
	if len(n.UntriedMoves) != 0 || len(n.Children) != 0 {
		t.Error("slices not truncated")
	}
	NodePool.Put(child)
	NodePool.Put(n)
}
