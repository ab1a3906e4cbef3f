package loader

import (
	"fmt"
	"os"
	"strings"

	"github.com/nathoo/tacticore/engine/state"
	"github.com/nathoo/tacticore/types"
)

// ValidationError collects all validation errors and warnings. Topology
// problems are caught here, before any match can be initialized on
// undefined data.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// validate checks the compiled defs for referential integrity.
func validate(defs *state.Defs) error {
	ve := &ValidationError{}

	if defs.Game.Title == "" {
		ve.Errors = append(ve.Errors, "Game.title is required")
	}
	if defs.Game.Board == "" {
		ve.Errors = append(ve.Errors, "Game.board is required")
	} else if _, ok := defs.Boards[defs.Game.Board]; !ok {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"game board %q not found in defined boards", defs.Game.Board))
	}
	if len(defs.Game.Armies) < 2 {
		ve.Errors = append(ve.Errors, "Game.armies needs at least two entries")
	}
	for i, armyID := range defs.Game.Armies {
		if _, ok := defs.Armies[armyID]; !ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"game army %d references undefined army %q", i, armyID))
		}
	}

	for id, bd := range defs.Boards {
		validateBoard(id, bd, ve)
	}
	for id, ud := range defs.Units {
		validateUnit(id, ud, defs, ve)
	}
	for id, ad := range defs.Armies {
		validateArmy(id, ad, defs, ve)
	}

	for _, w := range ve.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateBoard(id string, bd types.BoardDef, ve *ValidationError) {
	if len(bd.Nodes) == 0 {
		ve.Errors = append(ve.Errors, fmt.Sprintf("board %q has no nodes", id))
		return
	}

	// Node ids must be contiguous and index-aligned: the runtime indexes
	// node state by id.
	for i, nd := range bd.Nodes {
		if nd.ID != i {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"board %q node at index %d has id %d; ids must be contiguous from 0", id, i, nd.ID))
			return
		}
	}

	exists := func(node int) bool { return node >= 0 && node < len(bd.Nodes) }

	for _, nd := range bd.Nodes {
		if nd.Type == types.NodeTeleport {
			if nd.TeleportTo < 0 {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"board %q teleport node %d has no target", id, nd.ID))
			} else if !exists(nd.TeleportTo) {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"board %q teleport node %d targets nonexistent node %d", id, nd.ID, nd.TeleportTo))
			} else if nd.TeleportTo == nd.ID {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"board %q teleport node %d targets itself", id, nd.ID))
			}
		}
	}

	for _, ed := range bd.Edges {
		if !exists(ed.From) || !exists(ed.To) {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"board %q edge %d→%d references a nonexistent node", id, ed.From, ed.To))
		}
	}

	seenPlayers := map[int]bool{}
	for _, zone := range bd.SpawnZones {
		if seenPlayers[zone.Player] {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"board %q has multiple spawn zones for player %d", id, zone.Player))
		}
		seenPlayers[zone.Player] = true
		for _, set := range [][]int{zone.Nodes, zone.Back, zone.Front} {
			for _, node := range set {
				if !exists(node) {
					ve.Errors = append(ve.Errors, fmt.Sprintf(
						"board %q spawn zone for player %d references nonexistent node %d", id, zone.Player, node))
				}
			}
		}
	}
	if len(bd.SpawnZones) < 2 {
		ve.Warnings = append(ve.Warnings, fmt.Sprintf(
			"board %q defines fewer than two spawn zones", id))
	}
}

func validateUnit(id string, ud types.UnitDef, defs *state.Defs, ve *ValidationError) {
	if len(ud.Patterns) == 0 {
		ve.Warnings = append(ve.Warnings, fmt.Sprintf(
			"unit %q has no movement patterns and will never move", id))
	}
	if ud.PromotesTo != "" {
		if _, ok := defs.Units[ud.PromotesTo]; !ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"unit %q promotes to undefined unit %q", id, ud.PromotesTo))
		}
	}
	if ud.Base.MaxHealth <= 0 {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"unit %q has non-positive max health", id))
	}
}

func validateArmy(id string, ad types.ArmyDef, defs *state.Defs, ve *ValidationError) {
	if len(ad.Slots) == 0 {
		ve.Errors = append(ve.Errors, fmt.Sprintf("army %q has no slots", id))
		return
	}
	hasKing := false
	for _, slot := range ad.Slots {
		ud, ok := defs.Units[slot.Unit]
		if !ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"army %q references undefined unit %q", id, slot.Unit))
			continue
		}
		if ud.King {
			hasKing = true
		}
		if slot.Offset < 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"army %q slot %q has negative offset", id, slot.Unit))
		}
	}
	if !hasKing {
		ve.Warnings = append(ve.Warnings, fmt.Sprintf(
			"army %q has no king; the player loses on the first win-condition check", id))
	}
}
