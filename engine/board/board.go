// Package board implements the runtime board graph: passability, lazily
// rebuilt adjacency, breadth-first pathfinding, and directional grid rays.
package board

import "github.com/nathoo/tacticore/types"

// Board wraps a mutable BoardState with its immutable definition and an
// adjacency cache. The cache is invalidated on every topology mutation
// and rebuilt on the next query.
type Board struct {
	Def   types.BoardDef
	State *types.BoardState
	adj   map[int][]int
}

// NewState materializes a fresh runtime state from a board definition.
// Node ids are assumed contiguous and index-aligned (enforced at load).
func NewState(def types.BoardDef) types.BoardState {
	nodes := make([]types.NodeState, len(def.Nodes))
	for i, nd := range def.Nodes {
		nodes[i] = types.NodeState{
			ID:         nd.ID,
			Type:       nd.Type,
			Active:     true,
			TeleportTo: nd.TeleportTo,
		}
	}
	edges := make([]types.EdgeState, len(def.Edges))
	for i, ed := range def.Edges {
		edges[i] = types.EdgeState{
			From:   ed.From,
			To:     ed.To,
			Type:   ed.Type,
			Active: ed.Type != types.EdgeBlocked,
		}
	}
	return types.BoardState{
		DefID:  def.ID,
		Width:  def.Width,
		Height: def.Height,
		Nodes:  nodes,
		Edges:  edges,
	}
}

// New creates a board with a fresh runtime state.
func New(def types.BoardDef) *Board {
	st := NewState(def)
	return &Board{Def: def, State: &st}
}

// Wrap binds a board definition to an existing runtime state, e.g. one
// restored from a snapshot or owned by a match aggregate.
func Wrap(def types.BoardDef, st *types.BoardState) *Board {
	return &Board{Def: def, State: st}
}

// Node returns the runtime node for id, or nil if id is out of range.
func (b *Board) Node(id int) *types.NodeState {
	if id < 0 || id >= len(b.State.Nodes) {
		return nil
	}
	return &b.State.Nodes[id]
}

// IsPassable reports whether a unit may occupy the node. Out-of-range
// ids degrade to not passable.
func (b *Board) IsPassable(id int) bool {
	n := b.Node(id)
	if n == nil || !n.Active {
		return false
	}
	return n.Type != types.NodeImpassable && n.Type != types.NodeDestroyed
}

// DestroyNode converts a destructible node to Destroyed. Returns false
// for unknown ids and indestructible nodes.
func (b *Board) DestroyNode(id int) bool {
	n := b.Node(id)
	if n == nil || !b.Def.Nodes[id].Destructible {
		return false
	}
	n.Type = types.NodeDestroyed
	n.CollapseIn = 0
	b.invalidate()
	return true
}

// ChangeNodeType rewrites a node's current type.
func (b *Board) ChangeNodeType(id int, t types.NodeType) bool {
	n := b.Node(id)
	if n == nil {
		return false
	}
	n.Type = t
	b.invalidate()
	return true
}

// SetUnstable marks a node unstable, collapsing after the given number
// of turn ends.
func (b *Board) SetUnstable(id, turns int) bool {
	n := b.Node(id)
	if n == nil || turns < 1 {
		return false
	}
	n.Type = types.NodeUnstable
	n.CollapseIn = turns
	return true
}

// SetEdgeActive toggles every edge between two nodes, in either
// orientation.
func (b *Board) SetEdgeActive(from, to int, active bool) {
	for i := range b.State.Edges {
		e := &b.State.Edges[i]
		if (e.From == from && e.To == to) || (e.From == to && e.To == from) {
			e.Active = active
		}
	}
	b.invalidate()
}

// ProcessTurnEnd decrements unstable countdowns, converting nodes that
// reach zero to Destroyed. Returns the collapsed node ids.
func (b *Board) ProcessTurnEnd() []int {
	var collapsed []int
	for i := range b.State.Nodes {
		n := &b.State.Nodes[i]
		if n.Type != types.NodeUnstable || n.CollapseIn <= 0 {
			continue
		}
		n.CollapseIn--
		if n.CollapseIn == 0 {
			n.Type = types.NodeDestroyed
			collapsed = append(collapsed, n.ID)
		}
	}
	if len(collapsed) > 0 {
		b.invalidate()
	}
	return collapsed
}

func (b *Board) invalidate() {
	b.adj = nil
}

// adjacency builds the neighbor map from active, non-blocked edges.
// One-way edges contribute a single direction.
func (b *Board) adjacency() map[int][]int {
	if b.adj != nil {
		return b.adj
	}
	adj := make(map[int][]int, len(b.State.Nodes))
	for _, e := range b.State.Edges {
		if !e.Active || e.Type == types.EdgeBlocked {
			continue
		}
		adj[e.From] = append(adj[e.From], e.To)
		if e.Type != types.EdgeOneWay {
			adj[e.To] = append(adj[e.To], e.From)
		}
	}
	b.adj = adj
	return adj
}

// Neighbors returns the nodes reachable from id over a single active
// edge. The returned slice is shared with the cache; callers must not
// mutate it.
func (b *Board) Neighbors(id int) []int {
	return b.adjacency()[id]
}

// FindPath returns a shortest path from from to to over passable nodes,
// both endpoints included. The result is empty if to is unreachable.
func (b *Board) FindPath(from, to int) []int {
	if b.Node(from) == nil || !b.IsPassable(to) {
		return nil
	}
	if from == to {
		return []int{from}
	}
	prev := map[int]int{from: from}
	queue := []int{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range b.Neighbors(cur) {
			if _, seen := prev[next]; seen || !b.IsPassable(next) {
				continue
			}
			prev[next] = cur
			if next == to {
				return b.rebuildPath(prev, from, to)
			}
			queue = append(queue, next)
		}
	}
	return nil
}

func (b *Board) rebuildPath(prev map[int]int, from, to int) []int {
	var rev []int
	for cur := to; ; cur = prev[cur] {
		rev = append(rev, cur)
		if cur == from {
			break
		}
	}
	path := make([]int, len(rev))
	for i, id := range rev {
		path[len(rev)-1-i] = id
	}
	return path
}

// NodesInRange returns all passable nodes within maxDist edge steps of
// from, excluding from itself.
func (b *Board) NodesInRange(from, maxDist int) []int {
	if b.Node(from) == nil || maxDist < 1 {
		return nil
	}
	dist := map[int]int{from: 0}
	queue := []int{from}
	var out []int
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if dist[cur] == maxDist {
			continue
		}
		for _, next := range b.Neighbors(cur) {
			if _, seen := dist[next]; seen || !b.IsPassable(next) {
				continue
			}
			dist[next] = dist[cur] + 1
			out = append(out, next)
			queue = append(queue, next)
		}
	}
	return out
}

// Distance returns the shortest-path length in edge steps between two
// nodes, or -1 if unreachable.
func (b *Board) Distance(from, to int) int {
	path := b.FindPath(from, to)
	if len(path) == 0 {
		return -1
	}
	return len(path) - 1
}

// Coords derives grid coordinates from a node id (id = y*width + x).
func (b *Board) Coords(id int) (x, y int) {
	return id % b.State.Width, id / b.State.Width
}

// NodeAt returns the node id at grid coordinates, or -1 outside the
// board bounds.
func (b *Board) NodeAt(x, y int) int {
	if x < 0 || x >= b.State.Width || y < 0 || y >= b.State.Height {
		return -1
	}
	return y*b.State.Width + x
}

// NodesInLine walks outward from from in a grid direction, stopping at
// the board bounds or the first impassable node (which is excluded).
// maxDistance of -1 means unbounded.
func (b *Board) NodesInLine(from int, dir Direction, maxDistance int) []int {
	if b.Node(from) == nil || dir == DirNone {
		return nil
	}
	dx, dy := dir.Delta()
	x, y := b.Coords(from)
	var out []int
	for step := 1; maxDistance < 0 || step <= maxDistance; step++ {
		x += dx
		y += dy
		id := b.NodeAt(x, y)
		if id < 0 || !b.IsPassable(id) {
			break
		}
		out = append(out, id)
	}
	return out
}
