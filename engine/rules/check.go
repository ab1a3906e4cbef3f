package rules

import (
	"github.com/nathoo/tacticore/engine/board"
	"github.com/nathoo/tacticore/engine/state"
	"github.com/nathoo/tacticore/types"
)

// KingNode returns the node of the player's living king, or -1.
func KingNode(s *types.MatchState, defs *state.Defs, player int) int {
	if k := state.KingOf(s, defs, player); k != nil {
		return k.Node
	}
	return -1
}

// KingInCheck reports whether any enemy unit's legal-target set includes
// the player's king node. An absent king is not in check — king loss is
// a separate win condition.
func KingInCheck(b *board.Board, s *types.MatchState, defs *state.Defs, player int) bool {
	kingNode := KingNode(s, defs, player)
	if kingNode < 0 {
		return false
	}
	for _, u := range s.Units {
		if !u.Alive || u.Owner == player {
			continue
		}
		if contains(LegalTargets(b, s, defs, u), kingNode) {
			return true
		}
	}
	return false
}

// candidate is one speculative move: a unit relocating to a target.
type candidate struct {
	unit   *types.UnitState
	target int
}

// candidates enumerates every move the player's units could make right
// now, ignoring the per-turn moved flag so mate and stalemate can be
// evaluated mid-turn.
func candidates(b *board.Board, s *types.MatchState, defs *state.Defs, player int) []candidate {
	var out []candidate
	for _, u := range state.UnitsOf(s, player) {
		for _, t := range LegalTargets(b, s, defs, u) {
			if !b.IsPassable(t) {
				continue
			}
			if occ := state.UnitAt(s, t); occ != nil && occ.Owner == player {
				continue
			}
			out = append(out, candidate{unit: u, target: t})
		}
	}
	return out
}

// IsCheckmate reports whether the player is in check and no candidate
// move escapes it. Each candidate is applied speculatively — relocate
// plus mark any captured unit dead — re-tested, and unconditionally
// rolled back, leaving no residual state.
func IsCheckmate(b *board.Board, s *types.MatchState, defs *state.Defs, player int) bool {
	if !KingInCheck(b, s, defs, player) {
		return false
	}
	for _, c := range candidates(b, s, defs, player) {
		if !simulateLeavesCheck(b, s, defs, player, c) {
			return false
		}
	}
	return true
}

// IsStalemate reports whether the player is not in check yet has zero
// legal moves across all units.
func IsStalemate(b *board.Board, s *types.MatchState, defs *state.Defs, player int) bool {
	if KingInCheck(b, s, defs, player) {
		return false
	}
	return len(candidates(b, s, defs, player)) == 0
}

// simulateLeavesCheck applies a candidate, tests check, and rolls back.
// Rollback is unconditional and confined to the caller's goroutine.
func simulateLeavesCheck(b *board.Board, s *types.MatchState, defs *state.Defs, player int, c candidate) bool {
	captured := state.UnitAt(s, c.target)
	origin := c.unit.Node

	c.unit.Node = c.target
	if captured != nil {
		captured.Alive = false
	}

	inCheck := KingInCheck(b, s, defs, player)

	c.unit.Node = origin
	if captured != nil {
		captured.Alive = true
	}

	return inCheck
}
