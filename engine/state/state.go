// Package state holds the immutable content definitions and lookup
// helpers over the mutable match state.
package state

import "github.com/nathoo/tacticore/types"

// Defs holds the immutable game content loaded from Lua. Definitions are
// authored once and read-only for the process lifetime.
type Defs struct {
	Game   types.GameDef
	Boards map[string]types.BoardDef
	Units  map[string]types.UnitDef
	Armies map[string]types.ArmyDef
}

// UnitDefFor returns the definition backing a runtime unit.
func (d *Defs) UnitDefFor(u *types.UnitState) (types.UnitDef, bool) {
	def, ok := d.Units[u.DefID]
	return def, ok
}

// UnitByID returns the unit with the given id, dead or alive, or nil.
func UnitByID(s *types.MatchState, id int) *types.UnitState {
	for _, u := range s.Units {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// UnitAt returns the living unit occupying a node, or nil.
func UnitAt(s *types.MatchState, node int) *types.UnitState {
	for _, u := range s.Units {
		if u.Alive && u.Node == node {
			return u
		}
	}
	return nil
}

// UnitsOf returns the living units owned by a player.
func UnitsOf(s *types.MatchState, player int) []*types.UnitState {
	var out []*types.UnitState
	for _, u := range s.Units {
		if u.Alive && u.Owner == player {
			out = append(out, u)
		}
	}
	return out
}

// KingOf returns the player's living king unit, or nil if absent.
func KingOf(s *types.MatchState, defs *Defs, player int) *types.UnitState {
	for _, u := range s.Units {
		if !u.Alive || u.Owner != player {
			continue
		}
		if def, ok := defs.Units[u.DefID]; ok && def.King {
			return u
		}
	}
	return nil
}

// Clone produces a deep copy of the match state, used for snapshot
// comparisons and host-side reads that must not observe mutation.
func Clone(s *types.MatchState) *types.MatchState {
	c := *s
	c.Board.Nodes = append([]types.NodeState(nil), s.Board.Nodes...)
	c.Board.Edges = append([]types.EdgeState(nil), s.Board.Edges...)
	c.Players = append([]types.PlayerState(nil), s.Players...)
	c.History = append([]types.Action(nil), s.History...)
	c.Units = make([]*types.UnitState, len(s.Units))
	for i, u := range s.Units {
		cu := *u
		cu.Modifiers = append([]types.Modifier(nil), u.Modifiers...)
		cu.Items = append([]string(nil), u.Items...)
		c.Units[i] = &cu
	}
	return &c
}
