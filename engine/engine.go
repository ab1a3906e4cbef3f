// Package engine provides the match orchestrator that wires the board
// graph, movement rules, unit model, and validator into a turn-based
// command surface for hosts.
package engine

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/nathoo/tacticore/engine/board"
	"github.com/nathoo/tacticore/engine/events"
	"github.com/nathoo/tacticore/engine/rules"
	"github.com/nathoo/tacticore/engine/state"
	"github.com/nathoo/tacticore/engine/unit"
	"github.com/nathoo/tacticore/types"
)

// Tile-effect and progression defaults; boards may override the first
// three in content.
const (
	defaultTrapDamage  = 5
	defaultBoostAttack = 2
	defaultBoostTurns  = 3
	captureXP          = 50
)

// PlayerSetup describes one seat at match creation.
type PlayerSetup struct {
	Army string
}

// Engine owns one match. All mutation is serialized through its command
// methods; hosts drive it from a single loop.
type Engine struct {
	Defs  *state.Defs
	State *types.MatchState
	Board *board.Board

	mu sync.Mutex
}

// Initialize creates a match: materializes the board state, places each
// army onto its spawn zone (mirrored index mapping for odd seats),
// assigns ascending unit ids, and enters Playing at turn 1, player 0.
// Topology and setup errors prevent entering Playing.
func Initialize(defs *state.Defs, boardID string, setups []PlayerSetup) (*Engine, error) {
	def, ok := defs.Boards[boardID]
	if !ok {
		return nil, fmt.Errorf("unknown board %q", boardID)
	}
	if len(setups) < 2 {
		return nil, fmt.Errorf("a match needs at least two players, got %d", len(setups))
	}

	s := &types.MatchState{
		MatchID:    uuid.NewString(),
		Phase:      types.PhaseSetup,
		Turn:       1,
		Current:    0,
		Board:      board.NewState(def),
		Winner:     -1,
		NextUnitID: 1,
	}
	b := board.Wrap(def, &s.Board)
	e := &Engine{Defs: defs, State: s, Board: b}

	for i, setup := range setups {
		army, ok := defs.Armies[setup.Army]
		if !ok {
			return nil, fmt.Errorf("unknown army %q for player %d", setup.Army, i)
		}
		zone, err := spawnZoneFor(def, i)
		if err != nil {
			return nil, err
		}
		s.Players = append(s.Players, types.PlayerState{Index: i, Army: army.ID})
		if err := e.placeArmy(army, zone, i); err != nil {
			return nil, err
		}
	}

	s.Phase = types.PhasePlaying
	return e, nil
}

func spawnZoneFor(def types.BoardDef, player int) (types.SpawnZone, error) {
	for _, z := range def.SpawnZones {
		if z.Player == player {
			return z, nil
		}
	}
	return types.SpawnZone{}, fmt.Errorf("board %q has no spawn zone for player %d", def.ID, player)
}

func (e *Engine) placeArmy(army types.ArmyDef, zone types.SpawnZone, player int) error {
	for _, slot := range army.Slots {
		row := zone.Nodes
		switch slot.Row {
		case types.RowBack:
			if len(zone.Back) > 0 {
				row = zone.Back
			}
		case types.RowFront:
			if len(zone.Front) > 0 {
				row = zone.Front
			}
		}
		idx := slot.Offset
		if player%2 == 1 {
			idx = len(row) - 1 - slot.Offset
		}
		if idx < 0 || idx >= len(row) {
			return fmt.Errorf("army %q slot %q offset %d is outside the spawn row", army.ID, slot.Unit, slot.Offset)
		}
		node := row[idx]
		if !e.Board.IsPassable(node) {
			return fmt.Errorf("spawn node %d is not passable", node)
		}
		if state.UnitAt(e.State, node) != nil {
			return fmt.Errorf("spawn node %d is already occupied", node)
		}
		def, ok := e.Defs.Units[slot.Unit]
		if !ok {
			return fmt.Errorf("army %q references unknown unit %q", army.ID, slot.Unit)
		}
		u := unit.New(e.State.NextUnitID, def, player, node, 1)
		e.State.NextUnitID++
		e.State.Units = append(e.State.Units, u)
	}
	return nil
}

// RebindBoard re-attaches the board wrapper to the current match state.
// Hosts call this after applying a snapshot.
func (e *Engine) RebindBoard() {
	e.mu.Lock()
	defer e.mu.Unlock()
	def, ok := e.Defs.Boards[e.State.Board.DefID]
	if ok {
		e.Board = board.Wrap(def, &e.State.Board)
	}
}

// Snapshot returns a deep copy of the match state for concurrent
// read-only consumers.
func (e *Engine) Snapshot() *types.MatchState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return state.Clone(e.State)
}

// LegalMoves returns the legal destinations of a unit, or nil for
// unknown or dead units.
func (e *Engine) LegalMoves(unitID int) []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	u := state.UnitByID(e.State, unitID)
	if u == nil || !u.Alive {
		return nil
	}
	return rules.LegalTargets(e.Board, e.State, e.Defs, u)
}

func (e *Engine) newResult() types.CommandResult {
	return types.CommandResult{Accepted: true, CapturedUnit: -1, Winner: -1}
}

func (e *Engine) rejected(reason string) types.CommandResult {
	return types.CommandResult{
		Reason:       reason,
		CapturedUnit: -1,
		Phase:        e.State.Phase,
		Winner:       e.State.Winner,
	}
}

// RequestMove validates and executes a move for the requesting player.
func (e *Engine) RequestMove(unitID, target, requester int) types.CommandResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.State.Phase != types.PhasePlaying {
		return e.rejected("match is not in progress")
	}
	if requester != e.State.Current {
		return e.rejected("not your turn")
	}
	v := rules.ValidateMove(e.Board, e.State, e.Defs, unitID, target)
	if !v.OK {
		return e.rejected(v.Reason)
	}
	res := e.newResult()
	e.executeMove(&res, unitID, target, v)
	e.checkWinConditions(&res)
	res.Phase = e.State.Phase
	res.Winner = e.State.Winner
	return res
}

func (e *Engine) executeMove(res *types.CommandResult, unitID, target int, v rules.Verdict) {
	u := state.UnitByID(e.State, unitID)
	def := e.Defs.Units[u.DefID]
	from := u.Node

	if v.Capture {
		tgt := state.UnitByID(e.State, v.Captured)
		tgt.Alive = false
		res.CapturedUnit = tgt.ID
		res.Events = append(res.Events, events.UnitCaptured(tgt.ID))
		if lv := unit.AddExperience(u, def, captureXP); lv > 0 {
			res.Events = append(res.Events, events.UnitLeveled(u.ID, u.Level))
		}
	}

	u.Node = target
	u.Moved = true
	u.EverMoved = true
	e.State.History = append(e.State.History, types.Action{
		Kind:     types.ActionMove,
		Turn:     e.State.Turn,
		Player:   u.Owner,
		Unit:     u.ID,
		From:     from,
		To:       target,
		Target:   -1,
		Captured: res.CapturedUnit,
	})
	res.Events = append(res.Events, events.UnitMoved(u.ID, from, target))

	e.applyNodeEffect(res, u, def)
	if u.Alive {
		e.applyPromotion(res, u, def)
	}
}

// applyNodeEffect applies the landed node's effect. Trap damage bypasses
// defense mitigation; teleport relocates once and never chains.
func (e *Engine) applyNodeEffect(res *types.CommandResult, u *types.UnitState, def types.UnitDef) {
	n := e.Board.Node(u.Node)
	if n == nil {
		return
	}
	switch n.Type {
	case types.NodeBoost:
		amount := e.Board.Def.BoostAttack
		if amount == 0 {
			amount = defaultBoostAttack
		}
		turns := e.Board.Def.BoostTurns
		if turns == 0 {
			turns = defaultBoostTurns
		}
		unit.AddModifier(u, def, types.Modifier{
			Stat:      types.StatAttack,
			Op:        types.ModAdd,
			Value:     amount,
			Duration:  types.DurationTurns,
			TurnsLeft: turns,
			Source:    "boost",
		})
		res.Events = append(res.Events, events.BoostGained(u.ID, u.Node))

	case types.NodeTrap:
		dmg := e.Board.Def.TrapDamage
		if dmg == 0 {
			dmg = defaultTrapDamage
		}
		dealt, died := unit.TakeTrueDamage(u, def, dmg)
		res.Events = append(res.Events, events.TrapTriggered(u.ID, u.Node, dealt))
		if died {
			res.Events = append(res.Events, events.UnitCaptured(u.ID))
		}

	case types.NodeTeleport:
		dest := n.TeleportTo
		if dest >= 0 && e.Board.IsPassable(dest) && state.UnitAt(e.State, dest) == nil {
			from := u.Node
			u.Node = dest
			res.Events = append(res.Events, events.UnitTeleported(u.ID, from, dest))
		}

	case types.NodeUnstable:
		// No immediate effect; collapse happens via ProcessTurnEnd.
	}
}

func (e *Engine) applyPromotion(res *types.CommandResult, u *types.UnitState, def types.UnitDef) {
	if def.PromotesTo == "" {
		return
	}
	next, ok := e.Defs.Units[def.PromotesTo]
	if !ok {
		return
	}
	_, y := e.Board.Coords(u.Node)
	backRow := 0
	if u.Owner%2 == 0 {
		backRow = e.State.Board.Height - 1
	}
	if y != backRow {
		return
	}
	u.DefID = next.ID
	unit.Recalculate(u, next)
	res.Events = append(res.Events, events.UnitPromoted(u.ID, next.ID))
}

// RequestAttack validates and executes a separate-phase attack.
func (e *Engine) RequestAttack(attackerID, targetID, requester int) types.CommandResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.State.Phase != types.PhasePlaying {
		return e.rejected("match is not in progress")
	}
	if requester != e.State.Current {
		return e.rejected("not your turn")
	}
	v := rules.ValidateAttack(e.Board, e.State, e.Defs, attackerID, targetID)
	if !v.OK {
		return e.rejected(v.Reason)
	}
	res := e.newResult()
	e.executeAttack(&res, attackerID, targetID)
	e.checkWinConditions(&res)
	res.Phase = e.State.Phase
	res.Winner = e.State.Winner
	return res
}

func (e *Engine) executeAttack(res *types.CommandResult, attackerID, targetID int) {
	att := state.UnitByID(e.State, attackerID)
	tgt := state.UnitByID(e.State, targetID)
	adef := e.Defs.Units[att.DefID]
	tdef := e.Defs.Units[tgt.DefID]

	dealt, died := unit.TakeDamage(tgt, tdef, att.Stats.Attack)
	att.Acted = true
	res.Events = append(res.Events, events.UnitAttacked(att.ID, tgt.ID, dealt))

	captured := -1
	if died {
		captured = tgt.ID
		res.CapturedUnit = tgt.ID
		res.Events = append(res.Events, events.UnitCaptured(tgt.ID))
		if lv := unit.AddExperience(att, adef, captureXP); lv > 0 {
			res.Events = append(res.Events, events.UnitLeveled(att.ID, att.Level))
		}
	}

	e.State.History = append(e.State.History, types.Action{
		Kind:     types.ActionAttack,
		Turn:     e.State.Turn,
		Player:   att.Owner,
		Unit:     att.ID,
		From:     att.Node,
		To:       tgt.Node,
		Target:   tgt.ID,
		Captured: captured,
	})
}

// RequestEndTurn finishes the requester's turn: decays their modifiers,
// processes board collapse, advances the current player (incrementing
// the turn number on wraparound), and resets the next player's flags.
func (e *Engine) RequestEndTurn(requester int) types.CommandResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.State.Phase != types.PhasePlaying {
		return e.rejected("match is not in progress")
	}
	if requester != e.State.Current {
		return e.rejected("not your turn")
	}
	res := e.newResult()
	e.endTurn(&res)
	e.checkWinConditions(&res)
	res.Phase = e.State.Phase
	res.Winner = e.State.Winner
	return res
}

func (e *Engine) endTurn(res *types.CommandResult) {
	s := e.State
	finishing := s.Current

	for _, u := range state.UnitsOf(s, finishing) {
		if def, ok := e.Defs.UnitDefFor(u); ok {
			unit.EndTurn(u, def)
		}
	}

	for _, id := range e.Board.ProcessTurnEnd() {
		res.Events = append(res.Events, events.NodeCollapsed(id))
		if u := state.UnitAt(s, id); u != nil {
			u.Alive = false
			res.Events = append(res.Events, events.UnitCaptured(u.ID))
		}
	}

	s.History = append(s.History, types.Action{
		Kind:     types.ActionEndTurn,
		Turn:     s.Turn,
		Player:   finishing,
		Unit:     -1,
		From:     -1,
		To:       -1,
		Target:   -1,
		Captured: -1,
	})

	for i := 0; i < len(s.Players); i++ {
		s.Current = (s.Current + 1) % len(s.Players)
		if s.Current == 0 {
			s.Turn++
		}
		if !s.Players[s.Current].Resigned {
			break
		}
	}

	for _, u := range state.UnitsOf(s, s.Current) {
		unit.StartTurn(u)
	}
	res.Events = append(res.Events, events.TurnChanged(s.Turn, s.Current))
}

// RequestResign forfeits the match for the requesting player.
func (e *Engine) RequestResign(requester int) types.CommandResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.State.Phase != types.PhasePlaying {
		return e.rejected("match is not in progress")
	}
	if requester < 0 || requester >= len(e.State.Players) {
		return e.rejected("unknown player")
	}
	res := e.newResult()
	e.State.Players[requester].Resigned = true
	e.State.History = append(e.State.History, types.Action{
		Kind: types.ActionResign, Turn: e.State.Turn, Player: requester,
		Unit: -1, From: -1, To: -1, Target: -1, Captured: -1,
	})

	remaining := -1
	count := 0
	for _, p := range e.State.Players {
		if !p.Resigned {
			remaining = p.Index
			count++
		}
	}
	if count == 1 {
		e.endMatch(&res, remaining, types.EndResignation)
	} else if requester == e.State.Current {
		e.endTurn(&res)
	}
	res.Phase = e.State.Phase
	res.Winner = e.State.Winner
	return res
}

// checkWinConditions scans players for a missing king, then checkmate;
// after that loop, stalemate is checked only for the current player.
func (e *Engine) checkWinConditions(res *types.CommandResult) {
	s := e.State
	if s.Phase != types.PhasePlaying {
		return
	}
	for _, p := range s.Players {
		if rules.KingNode(s, e.Defs, p.Index) < 0 {
			e.endMatch(res, e.opponentOf(p.Index), types.EndKingCaptured)
			return
		}
		if rules.IsCheckmate(e.Board, s, e.Defs, p.Index) {
			e.endMatch(res, e.opponentOf(p.Index), types.EndCheckmate)
			return
		}
	}
	if rules.IsStalemate(e.Board, s, e.Defs, s.Current) {
		e.endMatch(res, -1, types.EndStalemate)
	}
}

func (e *Engine) opponentOf(player int) int {
	return (player + 1) % len(e.State.Players)
}

func (e *Engine) endMatch(res *types.CommandResult, winner int, reason types.EndReason) {
	e.State.Phase = types.PhaseEnded
	e.State.Winner = winner
	e.State.Reason = reason
	res.Events = append(res.Events, events.GameEnded(winner, reason))
}
