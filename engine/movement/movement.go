// Package movement evaluates declarative movement patterns against live
// board topology and occupancy, producing legal target sets. Pattern
// kinds are a tagged union handled by one exhaustive switch — new piece
// behaviors are authored as data, not code.
package movement

import (
	"sort"

	"github.com/nathoo/tacticore/engine/board"
	"github.com/nathoo/tacticore/types"
)

// Occupancy reports the owning side of the unit on a node, if any.
type Occupancy func(node int) (owner int, occupied bool)

// knightOffsets is the fixed 8-offset table.
var knightOffsets = [8][2]int{
	{1, 2}, {2, 1}, {2, -1}, {1, -2},
	{-1, -2}, {-2, -1}, {-2, 1}, {-1, 2},
}

// adjacentOffsets are the 8 neighbor offsets.
var adjacentOffsets = [8][2]int{
	{0, 1}, {1, 1}, {1, 0}, {1, -1},
	{0, -1}, {-1, -1}, {-1, 0}, {-1, 1},
}

// ForwardDY returns the forward axis for a side: even seats advance
// toward +y, odd seats toward -y.
func ForwardDY(side int) int {
	if side%2 == 0 {
		return 1
	}
	return -1
}

// Targets returns the deduplicated union of legal target nodes over the
// given patterns, sorted ascending. FirstMoveOnly patterns are excluded
// once the unit has ever moved.
func Targets(b *board.Board, side, node int, everMoved bool, patterns []types.Pattern, occ Occupancy) []int {
	seen := map[int]bool{}
	for _, p := range patterns {
		if p.FirstMoveOnly && everMoved {
			continue
		}
		for _, t := range evaluate(b, side, node, p, occ) {
			seen[t] = true
		}
	}
	out := make([]int, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Ints(out)
	return out
}

func evaluate(b *board.Board, side, node int, p types.Pattern, occ Occupancy) []int {
	switch p.Kind {
	case types.PatternOrthogonal:
		return rays(b, side, node, p, occ, board.Orthogonals())
	case types.PatternDiagonal:
		return rays(b, side, node, p, occ, board.Diagonals())
	case types.PatternKnight:
		return offsets(b, side, node, p, occ, knightOffsets[:])
	case types.PatternAdjacent:
		return offsets(b, side, node, p, occ, adjacentOffsets[:])
	case types.PatternForward:
		return forward(b, side, node, p, occ)
	case types.PatternDiagonalCapture:
		return diagonalCapture(b, side, node, occ)
	}
	return nil
}

// rays walks each direction until the board edge, an impassable node, or
// the first occupant. An enemy occupant is included as a target unless
// the pattern is move-only; a friendly occupant never is.
func rays(b *board.Board, side, node int, p types.Pattern, occ Occupancy, dirs []board.Direction) []int {
	var out []int
	for _, dir := range dirs {
		for _, id := range b.NodesInLine(node, dir, p.MaxDistance) {
			owner, occupied := occ(id)
			if !occupied {
				if !p.CaptureOnly {
					out = append(out, id)
				}
				continue
			}
			if owner != side && !p.MoveOnly {
				out = append(out, id)
			}
			break
		}
	}
	return out
}

// offsets evaluates fixed-offset tables. When the pattern is not
// jump-allowed, a knight-style offset is blocked by an occupied or
// impassable cell on the long axis (horse-leg block).
func offsets(b *board.Board, side, node int, p types.Pattern, occ Occupancy, table [][2]int) []int {
	x, y := b.Coords(node)
	var out []int
	for _, off := range table {
		id := b.NodeAt(x+off[0], y+off[1])
		if id < 0 || !b.IsPassable(id) {
			continue
		}
		if !p.Jump && blockedLeg(b, x, y, off, occ) {
			continue
		}
		owner, occupied := occ(id)
		if occupied {
			if owner == side || p.MoveOnly {
				continue
			}
		} else if p.CaptureOnly {
			continue
		}
		out = append(out, id)
	}
	return out
}

func blockedLeg(b *board.Board, x, y int, off [2]int, occ Occupancy) bool {
	lx, ly := 0, 0
	switch {
	case abs(off[0]) == 2 && abs(off[1]) == 1:
		lx = sign(off[0])
	case abs(off[0]) == 1 && abs(off[1]) == 2:
		ly = sign(off[1])
	default:
		return false
	}
	id := b.NodeAt(x+lx, y+ly)
	if id < 0 || !b.IsPassable(id) {
		return true
	}
	_, occupied := occ(id)
	return occupied
}

// forward advances along the side's forward axis. Any occupant blocks
// the pattern entirely — forward never captures.
func forward(b *board.Board, side, node int, p types.Pattern, occ Occupancy) []int {
	dy := ForwardDY(side)
	x, y := b.Coords(node)
	max := p.MaxDistance
	if max == 0 {
		max = 1
	}
	var out []int
	for step := 1; max < 0 || step <= max; step++ {
		id := b.NodeAt(x, y+dy*step)
		if id < 0 || !b.IsPassable(id) {
			break
		}
		if _, occupied := occ(id); occupied {
			break
		}
		out = append(out, id)
	}
	return out
}

// diagonalCapture targets the two forward-diagonal cells, legal only if
// enemy-occupied.
func diagonalCapture(b *board.Board, side, node int, occ Occupancy) []int {
	dy := ForwardDY(side)
	x, y := b.Coords(node)
	var out []int
	for _, dx := range [2]int{-1, 1} {
		id := b.NodeAt(x+dx, y+dy)
		if id < 0 || !b.IsPassable(id) {
			continue
		}
		if owner, occupied := occ(id); occupied && owner != side {
			out = append(out, id)
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	if v > 0 {
		return 1
	}
	if v < 0 {
		return -1
	}
	return 0
}
