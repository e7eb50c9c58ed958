package mcts

import (
	"math/rand"

	"github.com/signalnine/deckforge/engine"
)

// DefaultExplorationParam is sqrt(2), the standard UCB1 constant.
const DefaultExplorationParam = 1.414

// SearchParams configures a search.
type SearchParams struct {
	Iterations       int
	ExplorationParam float64
	Seed             uint64
}

// Search runs MCTS from the given state and returns the best move, or
// nil when the state has no legal continuation. The first visit of any
// node rolls out from the node itself; children are added only on
// revisits, so the root's visit count equals the iteration budget and
// its children account for every iteration after the first.
func Search(state *engine.GameState, genome *engine.Genome, iterations int, explorationParam float64, rng *rand.Rand) *engine.LegalMove {
	if explorationParam == 0 {
		explorationParam = DefaultExplorationParam
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(int64(state.RNG)))
	}

	root := GetNode()
	defer PutNode(root)

	root.State = state.Clone()
	root.PlayerID = state.CurrentPlayer
	root.UntriedMoves = append(root.UntriedMoves, engine.GenerateLegalMoves(root.State, genome)...)
	if len(root.UntriedMoves) == 0 {
		return nil
	}

	for i := 0; i < iterations; i++ {
		node := root

		for !node.IsTerminal() && node.IsFullyExpanded() && len(node.Children) > 0 {
			node = node.BestChild(explorationParam)
		}

		if !node.IsTerminal() && node.Visits > 0 && len(node.UntriedMoves) > 0 {
			node = expand(node, genome, rng)
		}

		winner := rollout(node.State, genome, rng)
		backpropagate(node, winner)
	}

	best := root.MostVisitedChild()
	if best == nil || best.Move == nil {
		move := root.UntriedMoves[0]
		return &move
	}
	moveCopy := *best.Move
	return &moveCopy
}

// SearchWithParams runs MCTS with explicit parameters.
func SearchWithParams(state *engine.GameState, genome *engine.Genome, params SearchParams) *engine.LegalMove {
	rng := rand.New(rand.NewSource(int64(params.Seed)))
	return Search(state, genome, params.Iterations, params.ExplorationParam, rng)
}

// expand adds a child for one untried move and returns it.
func expand(node *Node, genome *engine.Genome, rng *rand.Rand) *Node {
	idx := rng.Intn(len(node.UntriedMoves))
	move := node.UntriedMoves[idx]
	node.UntriedMoves[idx] = node.UntriedMoves[len(node.UntriedMoves)-1]
	node.UntriedMoves = node.UntriedMoves[:len(node.UntriedMoves)-1]

	actor := node.State.CurrentPlayer
	childState := node.State.Clone()
	engine.ApplyMove(childState, &move, genome)

	child := GetNode()
	child.State = childState
	child.Move = &move
	child.Parent = node
	child.PlayerID = actor
	child.UntriedMoves = append(child.UntriedMoves, engine.GenerateLegalMoves(childState, genome)...)

	node.Children = append(node.Children, child)
	return child
}

// rollout plays the game out with uniform random moves. Returns the
// winner, or -1 for a draw or a stuck game.
func rollout(state *engine.GameState, genome *engine.Genome, rng *rand.Rand) int8 {
	simState := state.Clone()
	defer engine.PutState(simState)

	maxRolloutTurns := int(genome.Header.MaxTurns) * 2

	for i := 0; i < maxRolloutTurns; i++ {
		if winner := engine.CheckWinConditions(simState, genome); winner >= 0 {
			return winner
		}
		moves := engine.GenerateLegalMoves(simState, genome)
		if len(moves) == 0 {
			return simState.WinnerID
		}
		move := moves[rng.Intn(len(moves))]
		engine.ApplyMove(simState, &move, genome)
	}
	return -1
}

// backpropagate walks the path to the root, crediting each node from
// its acting player's perspective. Draws are worth half a win.
func backpropagate(node *Node, winner int8) {
	for node != nil {
		node.Visits++
		if winner < 0 {
			node.Wins += 0.5
		} else if uint8(winner) == node.PlayerID {
			node.Wins += 1.0
		}
		node = node.Parent
	}
}
