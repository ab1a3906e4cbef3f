// Package rules validates moves and attacks against turn order,
// ownership, topology, and pattern legality, and detects check,
// checkmate, and stalemate via speculative simulation with rollback.
package rules

import (
	"github.com/nathoo/tacticore/engine/board"
	"github.com/nathoo/tacticore/engine/movement"
	"github.com/nathoo/tacticore/engine/state"
	"github.com/nathoo/tacticore/types"
)

// Verdict is the outcome of a validation. Failures are returned values,
// never errors, and mutate nothing.
type Verdict struct {
	OK       bool
	Reason   string
	Capture  bool
	Captured int // unit id, -1 = none
}

func reject(reason string) Verdict {
	return Verdict{Reason: reason, Captured: -1}
}

// Occupancy adapts the match state to the movement evaluator.
func Occupancy(s *types.MatchState) movement.Occupancy {
	return func(node int) (int, bool) {
		if u := state.UnitAt(s, node); u != nil {
			return u.Owner, true
		}
		return 0, false
	}
}

// LegalTargets returns the unit's legal-target set under live topology
// and occupancy.
func LegalTargets(b *board.Board, s *types.MatchState, defs *state.Defs, u *types.UnitState) []int {
	def, ok := defs.UnitDefFor(u)
	if !ok {
		return nil
	}
	return movement.Targets(b, u.Owner, u.Node, u.EverMoved, def.Patterns, Occupancy(s))
}

// ValidateMove checks a move request for the current player. On success
// the verdict flags whether the move captures and which unit.
func ValidateMove(b *board.Board, s *types.MatchState, defs *state.Defs, unitID, target int) Verdict {
	u := state.UnitByID(s, unitID)
	if u == nil {
		return reject("unknown unit")
	}
	if !u.Alive {
		return reject("unit is dead")
	}
	if u.Owner != s.Current {
		return reject("unit does not belong to the current player")
	}
	if u.Moved {
		return reject("unit already moved this turn")
	}
	if !b.IsPassable(target) {
		return reject("target node is not passable")
	}
	if !contains(LegalTargets(b, s, defs, u), target) {
		return reject("target is not a legal destination for this unit")
	}
	occupant := state.UnitAt(s, target)
	if occupant != nil && occupant.Owner == u.Owner {
		return reject("target node is occupied by a friendly unit")
	}
	v := Verdict{OK: true, Captured: -1}
	if occupant != nil {
		v.Capture = true
		v.Captured = occupant.ID
	}
	return v
}

// ValidateAttack checks a separate-phase attack: ownership, the distinct
// acted flag, target enmity, and board distance within range.
func ValidateAttack(b *board.Board, s *types.MatchState, defs *state.Defs, attackerID, targetID int) Verdict {
	att := state.UnitByID(s, attackerID)
	if att == nil {
		return reject("unknown attacker")
	}
	if !att.Alive {
		return reject("attacker is dead")
	}
	if att.Owner != s.Current {
		return reject("attacker does not belong to the current player")
	}
	if att.Acted {
		return reject("unit already acted this turn")
	}
	tgt := state.UnitByID(s, targetID)
	if tgt == nil || !tgt.Alive {
		return reject("unknown or dead target")
	}
	if tgt.Owner == att.Owner {
		return reject("cannot attack a friendly unit")
	}
	dist := b.Distance(att.Node, tgt.Node)
	if dist < 0 || dist > att.Stats.Range {
		return reject("target is out of range")
	}
	return Verdict{OK: true, Capture: true, Captured: tgt.ID}
}

func contains(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
