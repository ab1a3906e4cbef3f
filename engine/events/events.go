// Package events defines the host-facing event vocabulary emitted by the
// match engine after state mutation.
package events

import (
	"fmt"

	"github.com/nathoo/tacticore/types"
)

// Event type names.
const (
	TypeUnitMoved      = "unit_moved"
	TypeUnitCaptured   = "unit_captured"
	TypeUnitAttacked   = "unit_attacked"
	TypeUnitLeveled    = "unit_leveled"
	TypeUnitPromoted   = "unit_promoted"
	TypeUnitTeleported = "unit_teleported"
	TypeTrapTriggered  = "trap_triggered"
	TypeBoostGained    = "boost_gained"
	TypeNodeCollapsed  = "node_collapsed"
	TypeTurnChanged    = "turn_changed"
	TypeGameEnded      = "game_ended"
)

func UnitMoved(unitID, from, to int) types.Event {
	return types.Event{Type: TypeUnitMoved, Data: map[string]any{"unit": unitID, "from": from, "to": to}}
}

func UnitCaptured(unitID int) types.Event {
	return types.Event{Type: TypeUnitCaptured, Data: map[string]any{"unit": unitID}}
}

func UnitAttacked(attackerID, targetID, damage int) types.Event {
	return types.Event{Type: TypeUnitAttacked, Data: map[string]any{"attacker": attackerID, "target": targetID, "damage": damage}}
}

func UnitLeveled(unitID, level int) types.Event {
	return types.Event{Type: TypeUnitLeveled, Data: map[string]any{"unit": unitID, "level": level}}
}

func UnitPromoted(unitID int, def string) types.Event {
	return types.Event{Type: TypeUnitPromoted, Data: map[string]any{"unit": unitID, "def": def}}
}

func UnitTeleported(unitID, from, to int) types.Event {
	return types.Event{Type: TypeUnitTeleported, Data: map[string]any{"unit": unitID, "from": from, "to": to}}
}

func TrapTriggered(unitID, node, damage int) types.Event {
	return types.Event{Type: TypeTrapTriggered, Data: map[string]any{"unit": unitID, "node": node, "damage": damage}}
}

func BoostGained(unitID, node int) types.Event {
	return types.Event{Type: TypeBoostGained, Data: map[string]any{"unit": unitID, "node": node}}
}

func NodeCollapsed(node int) types.Event {
	return types.Event{Type: TypeNodeCollapsed, Data: map[string]any{"node": node}}
}

func TurnChanged(turn, currentPlayer int) types.Event {
	return types.Event{Type: TypeTurnChanged, Data: map[string]any{"turn": turn, "player": currentPlayer}}
}

func GameEnded(winner int, reason types.EndReason) types.Event {
	return types.Event{Type: TypeGameEnded, Data: map[string]any{"winner": winner, "reason": int(reason)}}
}

// Describe renders an event as a player-facing line of text.
func Describe(ev types.Event) string {
	d := ev.Data
	switch ev.Type {
	case TypeUnitMoved:
		return fmt.Sprintf("Unit %v moved %v → %v.", d["unit"], d["from"], d["to"])
	case TypeUnitCaptured:
		return fmt.Sprintf("Unit %v was removed from the board.", d["unit"])
	case TypeUnitAttacked:
		return fmt.Sprintf("Unit %v hit unit %v for %v damage.", d["attacker"], d["target"], d["damage"])
	case TypeUnitLeveled:
		return fmt.Sprintf("Unit %v reached level %v!", d["unit"], d["level"])
	case TypeUnitPromoted:
		return fmt.Sprintf("Unit %v promoted to %v!", d["unit"], d["def"])
	case TypeUnitTeleported:
		return fmt.Sprintf("Unit %v teleported %v → %v.", d["unit"], d["from"], d["to"])
	case TypeTrapTriggered:
		return fmt.Sprintf("Unit %v triggered a trap for %v damage.", d["unit"], d["damage"])
	case TypeBoostGained:
		return fmt.Sprintf("Unit %v gains an attack boost.", d["unit"])
	case TypeNodeCollapsed:
		return fmt.Sprintf("Node %v collapsed.", d["node"])
	case TypeTurnChanged:
		return fmt.Sprintf("Turn %v — player %v to act.", d["turn"], d["player"])
	case TypeGameEnded:
		return "The match is over."
	default:
		return ev.Type
	}
}
