package loader

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/tacticore/engine/state"
	"github.com/nathoo/tacticore/types"
)

// rawBoard holds a board table before compilation.
type rawBoard struct {
	id    string
	table *lua.LTable
}

// rawUnit holds a unit table before compilation.
type rawUnit struct {
	id    string
	table *lua.LTable
}

// rawArmy holds an army table before compilation.
type rawArmy struct {
	id    string
	table *lua.LTable
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getInt returns an int field from a Lua table, or the default if missing.
func getInt(tbl *lua.LTable, key string, def int) int {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return int(n)
	}
	return def
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// eachEntry iterates the array part of a table, yielding entry tables.
func eachEntry(tbl *lua.LTable, fn func(*lua.LTable)) {
	if tbl == nil {
		return
	}
	for i := 1; i <= tbl.MaxN(); i++ {
		if entry, ok := tbl.RawGetInt(i).(*lua.LTable); ok {
			fn(entry)
		}
	}
}

// intList extracts an []int from the array part of a table.
func intList(tbl *lua.LTable) []int {
	if tbl == nil {
		return nil
	}
	var out []int
	for i := 1; i <= tbl.MaxN(); i++ {
		if n, ok := tbl.RawGetInt(i).(lua.LNumber); ok {
			out = append(out, int(n))
		}
	}
	return out
}

// compile turns collected Lua tables into immutable definitions.
func compile(coll *collector) (*state.Defs, error) {
	defs := &state.Defs{
		Boards: map[string]types.BoardDef{},
		Units:  map[string]types.UnitDef{},
		Armies: map[string]types.ArmyDef{},
	}

	if coll.game != nil {
		defs.Game = compileGame(coll.game)
	}

	for _, rb := range coll.boards {
		if _, dup := defs.Boards[rb.id]; dup {
			return nil, fmt.Errorf("duplicate board id %q", rb.id)
		}
		bd, err := compileBoard(rb)
		if err != nil {
			return nil, err
		}
		defs.Boards[rb.id] = bd
	}

	for _, ru := range coll.units {
		if _, dup := defs.Units[ru.id]; dup {
			return nil, fmt.Errorf("duplicate unit id %q", ru.id)
		}
		ud, err := compileUnit(ru)
		if err != nil {
			return nil, err
		}
		defs.Units[ru.id] = ud
	}

	for _, ra := range coll.armies {
		if _, dup := defs.Armies[ra.id]; dup {
			return nil, fmt.Errorf("duplicate army id %q", ra.id)
		}
		defs.Armies[ra.id] = compileArmy(ra)
	}

	return defs, nil
}

func compileGame(tbl *lua.LTable) types.GameDef {
	g := types.GameDef{
		Title:   getString(tbl, "title"),
		Author:  getString(tbl, "author"),
		Version: getString(tbl, "version"),
		Board:   getString(tbl, "board"),
	}
	if armies := getTable(tbl, "armies"); armies != nil {
		for i := 1; i <= armies.MaxN(); i++ {
			if s, ok := armies.RawGetInt(i).(lua.LString); ok {
				g.Armies = append(g.Armies, string(s))
			}
		}
	}
	return g
}

var nodeTypes = map[string]types.NodeType{
	"normal":     types.NodeNormal,
	"impassable": types.NodeImpassable,
	"boost":      types.NodeBoost,
	"trap":       types.NodeTrap,
	"teleport":   types.NodeTeleport,
	"unstable":   types.NodeUnstable,
}

var edgeTypes = map[string]types.EdgeType{
	"normal":    types.EdgeNormal,
	"one_way":   types.EdgeOneWay,
	"blocked":   types.EdgeBlocked,
	"hazardous": types.EdgeHazardous,
}

// compileBoard supports two authoring modes: grid shorthand (width and
// height generate nodes and 8-connected edges, with per-node overrides)
// and explicit graphs (node/edge lists with coordinates).
func compileBoard(rb rawBoard) (types.BoardDef, error) {
	tbl := rb.table
	bd := types.BoardDef{
		ID:          rb.id,
		Name:        getString(tbl, "name"),
		Width:       getInt(tbl, "width", 0),
		Height:      getInt(tbl, "height", 0),
		TrapDamage:  getInt(tbl, "trap_damage", 0),
		BoostAttack: getInt(tbl, "boost_attack", 0),
		BoostTurns:  getInt(tbl, "boost_turns", 0),
	}
	if getString(tbl, "placement") == "manual" {
		bd.Placement = types.PlacementManual
	}

	if bd.Width > 0 && bd.Height > 0 {
		generateGrid(&bd)
		var err error
		eachEntry(getTable(tbl, "nodes"), func(entry *lua.LTable) {
			id := getInt(entry, "id", -1)
			if id < 0 || id >= len(bd.Nodes) {
				err = fmt.Errorf("board %q node override id %d out of range", rb.id, id)
				return
			}
			applyNodeOverride(&bd.Nodes[id], entry)
		})
		if err != nil {
			return bd, err
		}
	} else {
		eachEntry(getTable(tbl, "nodes"), func(entry *lua.LTable) {
			nd := types.NodeDef{
				ID:           getInt(entry, "id", len(bd.Nodes)),
				X:            getInt(entry, "x", 0),
				Y:            getInt(entry, "y", 0),
				TeleportTo:   getInt(entry, "to", -1),
				Destructible: getBool(entry, "destructible", true),
			}
			nd.Type = nodeTypes[getString(entry, "type")]
			bd.Nodes = append(bd.Nodes, nd)
			if nd.X >= bd.Width {
				bd.Width = nd.X + 1
			}
			if nd.Y >= bd.Height {
				bd.Height = nd.Y + 1
			}
		})
	}

	eachEntry(getTable(tbl, "edges"), func(entry *lua.LTable) {
		bd.Edges = append(bd.Edges, types.EdgeDef{
			From: getInt(entry, "from", -1),
			To:   getInt(entry, "to", -1),
			Type: edgeTypes[getString(entry, "type")],
		})
	})

	eachEntry(getTable(tbl, "spawn_zones"), func(entry *lua.LTable) {
		zone := types.SpawnZone{
			Player: getInt(entry, "player", -1),
			Nodes:  intList(getTable(entry, "nodes")),
			Back:   intList(getTable(entry, "back")),
			Front:  intList(getTable(entry, "front")),
		}
		if len(zone.Nodes) == 0 {
			zone.Nodes = append(append([]int{}, zone.Back...), zone.Front...)
		}
		bd.SpawnZones = append(bd.SpawnZones, zone)
	})

	return bd, nil
}

// generateGrid fills a grid board with normal nodes (id = y·width+x) and
// 8-connected normal edges.
func generateGrid(bd *types.BoardDef) {
	for y := 0; y < bd.Height; y++ {
		for x := 0; x < bd.Width; x++ {
			bd.Nodes = append(bd.Nodes, types.NodeDef{
				ID:           y*bd.Width + x,
				X:            x,
				Y:            y,
				TeleportTo:   -1,
				Destructible: true,
			})
		}
	}
	for y := 0; y < bd.Height; y++ {
		for x := 0; x < bd.Width; x++ {
			from := y*bd.Width + x
			// Four of the eight neighbor directions; the reverse
			// orientation comes from the edge being bidirectional.
			for _, d := range [4][2]int{{1, 0}, {0, 1}, {1, 1}, {-1, 1}} {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || nx >= bd.Width || ny < 0 || ny >= bd.Height {
					continue
				}
				bd.Edges = append(bd.Edges, types.EdgeDef{From: from, To: ny*bd.Width + nx})
			}
		}
	}
}

func applyNodeOverride(nd *types.NodeDef, entry *lua.LTable) {
	if t := getString(entry, "type"); t != "" {
		nd.Type = nodeTypes[t]
	}
	nd.TeleportTo = getInt(entry, "to", nd.TeleportTo)
	nd.Destructible = getBool(entry, "destructible", nd.Destructible)
}

var patternKinds = map[string]types.PatternKind{
	"orthogonal":       types.PatternOrthogonal,
	"diagonal":         types.PatternDiagonal,
	"knight":           types.PatternKnight,
	"adjacent":         types.PatternAdjacent,
	"forward":          types.PatternForward,
	"diagonal_capture": types.PatternDiagonalCapture,
}

func compileUnit(ru rawUnit) (types.UnitDef, error) {
	tbl := ru.table
	ud := types.UnitDef{
		ID:         ru.id,
		Name:       getString(tbl, "name"),
		Glyph:      getString(tbl, "glyph"),
		King:       getBool(tbl, "king", false),
		Castle:     getBool(tbl, "castle", false),
		EnPassant:  getBool(tbl, "en_passant", false),
		PromotesTo: getString(tbl, "promotes_to"),
		Cost:       getInt(tbl, "cost", 0),
	}
	if stats := getTable(tbl, "stats"); stats != nil {
		ud.Base = statsFromTable(stats)
	}
	if growth := getTable(tbl, "growth"); growth != nil {
		ud.Growth = statsFromTable(growth)
	}

	var err error
	eachEntry(getTable(tbl, "patterns"), func(entry *lua.LTable) {
		kindName := getString(entry, "__pattern")
		kind, ok := patternKinds[kindName]
		if !ok {
			err = fmt.Errorf("unit %q has an entry that is not a pattern constructor", ru.id)
			return
		}
		ud.Patterns = append(ud.Patterns, types.Pattern{
			Kind:          kind,
			MaxDistance:   getInt(entry, "distance", 0),
			Jump:          getBool(entry, "jump", false),
			CaptureOnly:   getBool(entry, "capture_only", false),
			MoveOnly:      getBool(entry, "move_only", false),
			FirstMoveOnly: getBool(entry, "first_move_only", false),
		})
	})
	if err != nil {
		return ud, err
	}
	return ud, nil
}

func statsFromTable(tbl *lua.LTable) types.Stats {
	return types.Stats{
		MaxHealth: getInt(tbl, "health", 0),
		Attack:    getInt(tbl, "attack", 0),
		Defense:   getInt(tbl, "defense", 0),
		Range:     getInt(tbl, "range", 0),
	}
}

var rowClasses = map[string]types.RowClass{
	"back":  types.RowBack,
	"front": types.RowFront,
}

func compileArmy(ra rawArmy) types.ArmyDef {
	ad := types.ArmyDef{
		ID:   ra.id,
		Name: getString(ra.table, "name"),
	}
	eachEntry(getTable(ra.table, "slots"), func(entry *lua.LTable) {
		ad.Slots = append(ad.Slots, types.ArmySlot{
			Unit:   getString(entry, "unit"),
			Offset: getInt(entry, "offset", 0),
			Row:    rowClasses[getString(entry, "row")],
		})
	})
	return ad
}
