package loader

import (
	"strings"
	"testing"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/tacticore/types"
)

// newTestVM builds a sandboxed VM the way Load does.
func newTestVM() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibs(L)
	sandbox(L)
	return L
}

func TestLoad_MinimalGame(t *testing.T) {
	defs, err := Load("testdata/minimal")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if defs.Game.Title != "Minimal Test Game" {
		t.Errorf("Title = %q, want %q", defs.Game.Title, "Minimal Test Game")
	}
	if defs.Game.Board != "tiny" {
		t.Errorf("Board = %q, want %q", defs.Game.Board, "tiny")
	}
	if _, ok := defs.Boards["tiny"]; !ok {
		t.Error("board 'tiny' not found")
	}
	if _, ok := defs.Units["king"]; !ok {
		t.Error("unit 'king' not found")
	}
	if _, ok := defs.Armies["solo"]; !ok {
		t.Error("army 'solo' not found")
	}
}

func TestLoad_FullGame(t *testing.T) {
	defs, err := Load("testdata/full")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Game metadata.
	if defs.Game.Title != "Full Test Game" {
		t.Errorf("Title = %q", defs.Game.Title)
	}
	if defs.Game.Author != "Tester" {
		t.Errorf("Author = %q", defs.Game.Author)
	}
	if len(defs.Game.Armies) != 2 {
		t.Errorf("Armies = %v", defs.Game.Armies)
	}

	// Grid board: 16 generated nodes with overrides applied.
	arena := defs.Boards["arena"]
	if len(arena.Nodes) != 16 {
		t.Fatalf("arena nodes = %d, want 16", len(arena.Nodes))
	}
	if arena.Nodes[5].Type != types.NodeTrap {
		t.Errorf("node 5 type = %v, want Trap", arena.Nodes[5].Type)
	}
	if arena.Nodes[6].Type != types.NodeBoost {
		t.Errorf("node 6 type = %v, want Boost", arena.Nodes[6].Type)
	}
	if arena.Nodes[9].Type != types.NodeTeleport || arena.Nodes[9].TeleportTo != 3 {
		t.Errorf("node 9 = %+v, want teleport to 3", arena.Nodes[9])
	}
	if arena.Nodes[10].Destructible {
		t.Error("node 10 override must clear destructible")
	}
	if arena.TrapDamage != 8 || arena.BoostAttack != 3 || arena.BoostTurns != 2 {
		t.Errorf("tile tuning = %d/%d/%d", arena.TrapDamage, arena.BoostAttack, arena.BoostTurns)
	}
	// Untouched grid nodes keep their defaults.
	if arena.Nodes[0].Type != types.NodeNormal || !arena.Nodes[0].Destructible {
		t.Errorf("node 0 = %+v, want normal destructible", arena.Nodes[0])
	}
	if len(arena.SpawnZones) != 2 {
		t.Errorf("spawn zones = %d, want 2", len(arena.SpawnZones))
	}

	// Explicit graph board: dimensions derived from coordinates.
	bridge := defs.Boards["bridge"]
	if len(bridge.Nodes) != 3 {
		t.Fatalf("bridge nodes = %d, want 3", len(bridge.Nodes))
	}
	if bridge.Width != 3 || bridge.Height != 1 {
		t.Errorf("bridge size = %dx%d, want 3x1", bridge.Width, bridge.Height)
	}
	if bridge.Nodes[1].Type != types.NodeUnstable {
		t.Errorf("bridge node 1 type = %v, want Unstable", bridge.Nodes[1].Type)
	}
	if len(bridge.Edges) != 2 {
		t.Fatalf("bridge edges = %d, want 2", len(bridge.Edges))
	}
	if bridge.Edges[1].Type != types.EdgeOneWay {
		t.Errorf("bridge edge 1 type = %v, want OneWay", bridge.Edges[1].Type)
	}

	// Units: stats, growth, pattern options.
	pawn := defs.Units["pawn"]
	if pawn.Base.MaxHealth != 10 || pawn.Growth.MaxHealth != 2 {
		t.Errorf("pawn stats = %+v growth %+v", pawn.Base, pawn.Growth)
	}
	if pawn.PromotesTo != "queen" {
		t.Errorf("pawn promotes_to = %q", pawn.PromotesTo)
	}
	if len(pawn.Patterns) != 3 {
		t.Fatalf("pawn patterns = %d, want 3", len(pawn.Patterns))
	}
	double := pawn.Patterns[1]
	if double.Kind != types.PatternForward || double.MaxDistance != 2 ||
		!double.MoveOnly || !double.FirstMoveOnly {
		t.Errorf("pawn double-step = %+v", double)
	}
	if pawn.Patterns[2].Kind != types.PatternDiagonalCapture {
		t.Errorf("pawn pattern 2 = %+v", pawn.Patterns[2])
	}

	queen := defs.Units["queen"]
	if len(queen.Patterns) != 2 {
		t.Fatalf("queen patterns = %d, want 2", len(queen.Patterns))
	}
	// Ray constructors default to unlimited distance.
	if queen.Patterns[0].Kind != types.PatternOrthogonal || queen.Patterns[0].MaxDistance != -1 {
		t.Errorf("queen orthogonal = %+v", queen.Patterns[0])
	}
	if queen.Patterns[1].MaxDistance != 3 {
		t.Errorf("queen diagonal distance = %d, want 3", queen.Patterns[1].MaxDistance)
	}

	king := defs.Units["king"]
	if !king.King || !king.Castle {
		t.Errorf("king flags = %+v", king)
	}

	// Army rows.
	army := defs.Armies["vanguard"]
	if len(army.Slots) != 4 {
		t.Fatalf("army slots = %d, want 4", len(army.Slots))
	}
	if army.Slots[0].Row != types.RowBack || army.Slots[2].Row != types.RowFront {
		t.Errorf("slot rows = %+v", army.Slots)
	}
	if army.Slots[1].Offset != 2 {
		t.Errorf("slot 1 offset = %d, want 2", army.Slots[1].Offset)
	}
}

func TestLoad_InvalidRefs_Fails(t *testing.T) {
	_, err := Load("testdata/invalid_refs")
	if err == nil {
		t.Fatal("expected error for invalid references")
	}
	if !strings.Contains(err.Error(), "not found in defined boards") {
		t.Errorf("error = %q, expected board reference failure", err.Error())
	}
}

func TestLoad_DuplicateBoard_Fails(t *testing.T) {
	_, err := Load("testdata/duplicate_board")
	if err == nil {
		t.Fatal("expected error for duplicate board ids")
	}
	if !strings.Contains(err.Error(), "duplicate board id") {
		t.Errorf("error = %q, expected 'duplicate board id'", err.Error())
	}
}

func TestLoad_BadLuaSyntax_Fails(t *testing.T) {
	_, err := Load("testdata/bad_lua")
	if err == nil {
		t.Fatal("expected error for bad Lua syntax")
	}
}

func TestLoad_EmptyDir_Fails(t *testing.T) {
	_, err := Load(t.TempDir())
	if err == nil {
		t.Fatal("expected error for a directory without Lua files")
	}
	if !strings.Contains(err.Error(), "no .lua files") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestLoad_SandboxEnforced(t *testing.T) {
	L := newTestVM()
	defer L.Close()

	// The os and io libraries are never opened.
	if err := L.DoString(`os.execute("echo pwned")`); err == nil {
		t.Error("expected sandbox to block os.execute")
	}
	if err := L.DoString(`io.open("/etc/passwd")`); err == nil {
		t.Error("expected sandbox to block io.open")
	}
	// Dynamic code loading is stripped from base.
	if err := L.DoString(`loadstring("return 1")()`); err == nil {
		t.Error("expected sandbox to block loadstring")
	}
}

func TestLoad_FileOrdering(t *testing.T) {
	files := sortedLuaFiles([]string{"units.lua", "game.lua", "armies.lua", "boards.lua"})
	if files[0] != "game.lua" {
		t.Errorf("first file = %q, want game.lua", files[0])
	}
	if files[1] != "armies.lua" {
		t.Errorf("second file = %q, want armies.lua (alphabetical after game.lua)", files[1])
	}
}
