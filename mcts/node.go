// Package mcts implements UCB1 tree search over the bytecode engine.
// Nodes are pooled: a search allocates from NodePool and releases the
// whole tree when it returns.
package mcts

import (
	"math"
	"sync"

	"github.com/signalnine/deckforge/engine"
)

// Node is one node in the search tree. PlayerID is the player who made
// the move leading into this node; rollout rewards are credited from
// that player's perspective.
type Node struct {
	State        *engine.GameState
	Move         *engine.LegalMove
	Parent       *Node
	Children     []*Node
	Visits       int
	Wins         float64
	UntriedMoves []engine.LegalMove
	PlayerID     uint8
}

// NodePool recycles nodes between searches.
var NodePool = sync.Pool{
	New: func() interface{} {
		return &Node{
			Children:     make([]*Node, 0, 10),
			UntriedMoves: make([]engine.LegalMove, 0, 20),
		}
	},
}

// GetNode acquires a cleared node from the pool.
func GetNode() *Node {
	node := NodePool.Get().(*Node)
	node.Reset()
	return node
}

// PutNode releases a node and its subtree back to the pool. Cloned
// states are released with it.
func PutNode(node *Node) {
	if node == nil {
		return
	}
	for _, child := range node.Children {
		PutNode(child)
	}
	if node.State != nil {
		engine.PutState(node.State)
		node.State = nil
	}
	NodePool.Put(node)
}

// Reset clears a node for reuse.
func (n *Node) Reset() {
	n.State = nil
	n.Move = nil
	n.Parent = nil
	n.Children = n.Children[:0]
	n.Visits = 0
	n.Wins = 0
	n.UntriedMoves = n.UntriedMoves[:0]
	n.PlayerID = 0
}

// UCB1 returns the upper confidence bound for this node. Unvisited
// nodes sort first.
func (n *Node) UCB1(explorationParam float64) float64 {
	if n.Visits == 0 {
		return math.Inf(1)
	}
	exploitation := n.Wins / float64(n.Visits)
	exploration := explorationParam * math.Sqrt(math.Log(float64(n.Parent.Visits))/float64(n.Visits))
	return exploitation + exploration
}

// BestChild returns the child maximizing UCB1.
func (n *Node) BestChild(explorationParam float64) *Node {
	if len(n.Children) == 0 {
		return nil
	}
	best := n.Children[0]
	bestValue := best.UCB1(explorationParam)
	for _, child := range n.Children[1:] {
		if value := child.UCB1(explorationParam); value > bestValue {
			bestValue = value
			best = child
		}
	}
	return best
}

// MostVisitedChild returns the child with the most visits; the final
// move choice uses visit count, not win rate.
func (n *Node) MostVisitedChild() *Node {
	if len(n.Children) == 0 {
		return nil
	}
	best := n.Children[0]
	for _, child := range n.Children[1:] {
		if child.Visits > best.Visits {
			best = child
		}
	}
	return best
}

// IsFullyExpanded reports whether every legal move has a child.
func (n *Node) IsFullyExpanded() bool {
	return len(n.UntriedMoves) == 0
}

// IsTerminal reports whether the node's state has a winner or no
// continuation.
func (n *Node) IsTerminal() bool {
	if n.State == nil {
		return true
	}
	return n.State.WinnerID >= 0
}
