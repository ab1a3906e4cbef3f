package engine

import (
	"strings"
	"testing"

	"github.com/nathoo/tacticore/engine/board"
	"github.com/nathoo/tacticore/engine/events"
	"github.com/nathoo/tacticore/engine/state"
	"github.com/nathoo/tacticore/engine/unit"
	"github.com/nathoo/tacticore/types"
)

// testDefs builds a small content set: four unit kinds, a 4x4 board with
// mirrored spawn zones, and a two-slot army.
func testDefs() *state.Defs {
	return &state.Defs{
		Game: types.GameDef{Title: "Test", Version: "1.0", Board: "plain", Armies: []string{"duo", "duo"}},
		Boards: map[string]types.BoardDef{
			"plain": gridDef(4, 4),
		},
		Units: map[string]types.UnitDef{
			"king": {
				ID: "king", Name: "King", King: true,
				Base:     types.Stats{MaxHealth: 20, Attack: 4, Defense: 4, Range: 1},
				Patterns: []types.Pattern{{Kind: types.PatternAdjacent}},
			},
			"rook": {
				ID: "rook", Name: "Rook",
				Base:     types.Stats{MaxHealth: 18, Attack: 5, Defense: 3, Range: 1},
				Patterns: []types.Pattern{{Kind: types.PatternOrthogonal, MaxDistance: -1}},
			},
			"pawn": {
				ID: "pawn", Name: "Pawn", PromotesTo: "queen",
				Base: types.Stats{MaxHealth: 10, Attack: 3, Defense: 1, Range: 1},
				Patterns: []types.Pattern{
					{Kind: types.PatternForward, MaxDistance: 1, MoveOnly: true},
					{Kind: types.PatternDiagonalCapture},
				},
			},
			"queen": {
				ID: "queen", Name: "Queen",
				Base: types.Stats{MaxHealth: 16, Attack: 6, Defense: 2, Range: 2},
				Patterns: []types.Pattern{
					{Kind: types.PatternOrthogonal, MaxDistance: -1},
					{Kind: types.PatternDiagonal, MaxDistance: -1},
				},
			},
		},
		Armies: map[string]types.ArmyDef{
			"duo": {
				ID: "duo", Name: "Duo",
				Slots: []types.ArmySlot{
					{Unit: "king", Offset: 0, Row: types.RowBack},
					{Unit: "rook", Offset: 3, Row: types.RowBack},
				},
			},
		},
	}
}

// gridDef builds an 8-connected grid definition with mirrored spawn
// zones for two players.
func gridDef(w, h int) types.BoardDef {
	bd := types.BoardDef{ID: "plain", Width: w, Height: h}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			bd.Nodes = append(bd.Nodes, types.NodeDef{
				ID: y*w + x, X: x, Y: y, TeleportTo: -1, Destructible: true,
			})
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			from := y*w + x
			for _, d := range [4][2]int{{1, 0}, {0, 1}, {1, 1}, {-1, 1}} {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				bd.Edges = append(bd.Edges, types.EdgeDef{From: from, To: ny*w + nx})
			}
		}
	}
	row := func(y int) []int {
		out := make([]int, w)
		for x := 0; x < w; x++ {
			out[x] = y*w + x
		}
		return out
	}
	bd.SpawnZones = []types.SpawnZone{
		{Player: 0, Back: row(0), Front: row(1)},
		{Player: 1, Back: row(h - 1), Front: row(h - 2)},
	}
	return bd
}

type placed struct {
	id    int
	def   string
	owner int
	node  int
}

// testEngine builds an engine around a hand-placed position, bypassing
// army placement.
func testEngine(defs *state.Defs, def types.BoardDef, pieces []placed) *Engine {
	s := &types.MatchState{
		MatchID: "test",
		Phase:   types.PhasePlaying,
		Turn:    1,
		Current: 0,
		Board:   board.NewState(def),
		Players: []types.PlayerState{{Index: 0}, {Index: 1}},
		Winner:  -1,
	}
	next := 1
	for _, p := range pieces {
		s.Units = append(s.Units, unit.New(p.id, defs.Units[p.def], p.owner, p.node, 1))
		if p.id >= next {
			next = p.id + 1
		}
	}
	s.NextUnitID = next
	return &Engine{Defs: defs, State: s, Board: board.Wrap(def, &s.Board)}
}

func hasEvent(evs []types.Event, typ string) bool {
	for _, ev := range evs {
		if ev.Type == typ {
			return true
		}
	}
	return false
}

func TestInitialize_MirroredPlacement(t *testing.T) {
	defs := testDefs()
	eng, err := Initialize(defs, "plain", []PlayerSetup{{Army: "duo"}, {Army: "duo"}})
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	s := eng.State
	if s.Phase != types.PhasePlaying {
		t.Errorf("Phase = %v, want Playing", s.Phase)
	}
	if s.Turn != 1 || s.Current != 0 {
		t.Errorf("Turn = %d, Current = %d, want 1 and 0", s.Turn, s.Current)
	}
	if s.MatchID == "" {
		t.Error("MatchID must be assigned")
	}
	if len(s.Units) != 4 {
		t.Fatalf("unit count = %d, want 4", len(s.Units))
	}

	// Player 0 places left to right; player 1 mirrors.
	checks := []struct {
		def   string
		owner int
		node  int
	}{
		{"king", 0, 0},
		{"rook", 0, 3},
		{"king", 1, 15},
		{"rook", 1, 12},
	}
	for _, c := range checks {
		u := state.UnitAt(s, c.node)
		if u == nil {
			t.Errorf("no unit on node %d", c.node)
			continue
		}
		if u.DefID != c.def || u.Owner != c.owner {
			t.Errorf("node %d holds %s of player %d, want %s of player %d",
				c.node, u.DefID, u.Owner, c.def, c.owner)
		}
	}

	if s.NextUnitID != 5 {
		t.Errorf("NextUnitID = %d, want 5", s.NextUnitID)
	}
}

func TestInitialize_Errors(t *testing.T) {
	defs := testDefs()

	if _, err := Initialize(defs, "nope", []PlayerSetup{{Army: "duo"}, {Army: "duo"}}); err == nil {
		t.Error("expected error for unknown board")
	}
	if _, err := Initialize(defs, "plain", []PlayerSetup{{Army: "duo"}}); err == nil {
		t.Error("expected error for a single player")
	}
	if _, err := Initialize(defs, "plain", []PlayerSetup{{Army: "duo"}, {Army: "ghost"}}); err == nil {
		t.Error("expected error for unknown army")
	}
}

func TestInitialize_BlockedSpawnFails(t *testing.T) {
	defs := testDefs()
	def := gridDef(4, 4)
	def.Nodes[0].Type = types.NodeImpassable
	defs.Boards["blocked"] = def

	if _, err := Initialize(defs, "blocked", []PlayerSetup{{Army: "duo"}, {Army: "duo"}}); err == nil {
		t.Error("expected error when a spawn node is impassable")
	} else if !strings.Contains(err.Error(), "not passable") {
		t.Errorf("error = %v", err)
	}
}

func TestRequestMove_Executes(t *testing.T) {
	defs := testDefs()
	e := testEngine(defs, gridDef(4, 4), []placed{
		{1, "rook", 0, 0},
		{2, "king", 0, 1},
		{3, "king", 1, 15},
	})

	res := e.RequestMove(1, 8, 0) // up the file
	if !res.Accepted {
		t.Fatalf("rejected: %s", res.Reason)
	}
	u := state.UnitByID(e.State, 1)
	if u.Node != 8 {
		t.Errorf("Node = %d, want 8", u.Node)
	}
	if !u.Moved || !u.EverMoved {
		t.Error("Moved and EverMoved must be set")
	}
	if !hasEvent(res.Events, events.TypeUnitMoved) {
		t.Error("expected unit_moved event")
	}
	if len(e.State.History) != 1 || e.State.History[0].Kind != types.ActionMove {
		t.Errorf("History = %+v, want one move action", e.State.History)
	}
}

func TestRequestMove_WrongRequester(t *testing.T) {
	defs := testDefs()
	e := testEngine(defs, gridDef(4, 4), []placed{
		{1, "rook", 0, 0},
		{2, "king", 0, 1},
		{3, "king", 1, 15},
	})

	res := e.RequestMove(1, 8, 1)
	if res.Accepted || res.Reason != "not your turn" {
		t.Errorf("result = %+v", res)
	}
}

func TestRequestMove_CaptureAwardsExperience(t *testing.T) {
	defs := testDefs()
	e := testEngine(defs, gridDef(4, 4), []placed{
		{1, "rook", 0, 0},
		{2, "king", 0, 5},
		{3, "pawn", 1, 2},
		{4, "king", 1, 15},
	})

	res := e.RequestMove(1, 2, 0)
	if !res.Accepted {
		t.Fatalf("rejected: %s", res.Reason)
	}
	if res.CapturedUnit != 3 {
		t.Errorf("CapturedUnit = %d, want 3", res.CapturedUnit)
	}
	if state.UnitByID(e.State, 3).Alive {
		t.Error("captured pawn must be dead")
	}
	if got := state.UnitByID(e.State, 1).XP; got != 50 {
		t.Errorf("capture XP = %d, want 50", got)
	}
	if !hasEvent(res.Events, events.TypeUnitCaptured) {
		t.Error("expected unit_captured event")
	}
}

func TestRequestAttack_DamageAndActed(t *testing.T) {
	defs := testDefs()
	e := testEngine(defs, gridDef(4, 4), []placed{
		{1, "rook", 0, 0}, // attack 5
		{2, "king", 0, 2},
		{3, "pawn", 1, 1}, // hp 10, defense 1
		{4, "king", 1, 15},
	})

	res := e.RequestAttack(1, 3, 0)
	if !res.Accepted {
		t.Fatalf("rejected: %s", res.Reason)
	}
	tgt := state.UnitByID(e.State, 3)
	if tgt.Health != 6 { // 5 attack - 1 defense = 4
		t.Errorf("target Health = %d, want 6", tgt.Health)
	}
	if !state.UnitByID(e.State, 1).Acted {
		t.Error("attacker must be flagged acted")
	}

	// Second attack in the same turn is rejected.
	res = e.RequestAttack(1, 3, 0)
	if res.Accepted {
		t.Error("expected second attack rejected")
	}
}

func TestRequestAttack_KillGrantsExperience(t *testing.T) {
	defs := testDefs()
	e := testEngine(defs, gridDef(4, 4), []placed{
		{1, "queen", 0, 0}, // attack 6
		{2, "king", 0, 2},
		{3, "pawn", 1, 1},
		{4, "king", 1, 15},
	})
	state.UnitByID(e.State, 3).Health = 3

	res := e.RequestAttack(1, 3, 0)
	if !res.Accepted {
		t.Fatalf("rejected: %s", res.Reason)
	}
	if res.CapturedUnit != 3 {
		t.Errorf("CapturedUnit = %d, want 3", res.CapturedUnit)
	}
	if got := state.UnitByID(e.State, 1).XP; got != 50 {
		t.Errorf("kill XP = %d, want 50", got)
	}
}

func TestEndTurn_RotationAndTurnNumber(t *testing.T) {
	defs := testDefs()
	e := testEngine(defs, gridDef(4, 4), []placed{
		{1, "king", 0, 0},
		{2, "king", 1, 15},
	})

	res := e.RequestEndTurn(0)
	if !res.Accepted {
		t.Fatalf("rejected: %s", res.Reason)
	}
	if e.State.Current != 1 || e.State.Turn != 1 {
		t.Errorf("Current = %d, Turn = %d, want 1 and 1", e.State.Current, e.State.Turn)
	}
	if !hasEvent(res.Events, events.TypeTurnChanged) {
		t.Error("expected turn_changed event")
	}

	// Wrapping back to player 0 increments the turn number.
	e.RequestEndTurn(1)
	if e.State.Current != 0 || e.State.Turn != 2 {
		t.Errorf("Current = %d, Turn = %d, want 0 and 2", e.State.Current, e.State.Turn)
	}
}

func TestEndTurn_ResetsNextPlayerFlags(t *testing.T) {
	defs := testDefs()
	e := testEngine(defs, gridDef(4, 4), []placed{
		{1, "king", 0, 0},
		{2, "king", 1, 15},
	})
	enemy := state.UnitByID(e.State, 2)
	enemy.Moved = true
	enemy.Acted = true

	e.RequestEndTurn(0)
	if enemy.Moved || enemy.Acted {
		t.Error("next player's flags must reset at turn start")
	}
}

func TestTrapTile(t *testing.T) {
	defs := testDefs()
	def := gridDef(4, 4)
	def.Nodes[8].Type = types.NodeTrap
	e := testEngine(defs, def, []placed{
		{1, "rook", 0, 0}, // defense 3 must not mitigate
		{2, "king", 0, 1},
		{3, "king", 1, 15},
	})

	res := e.RequestMove(1, 8, 0)
	if !res.Accepted {
		t.Fatalf("rejected: %s", res.Reason)
	}
	if got := state.UnitByID(e.State, 1).Health; got != 13 {
		t.Errorf("Health = %d, want 13 (5 true damage)", got)
	}
	if !hasEvent(res.Events, events.TypeTrapTriggered) {
		t.Error("expected trap_triggered event")
	}
}

func TestTrapTile_BoardOverride(t *testing.T) {
	defs := testDefs()
	def := gridDef(4, 4)
	def.Nodes[8].Type = types.NodeTrap
	def.TrapDamage = 12
	e := testEngine(defs, def, []placed{
		{1, "rook", 0, 0},
		{2, "king", 0, 1},
		{3, "king", 1, 15},
	})

	e.RequestMove(1, 8, 0)
	if got := state.UnitByID(e.State, 1).Health; got != 6 {
		t.Errorf("Health = %d, want 6 with overridden trap damage", got)
	}
}

func TestBoostTile_ExpiresAfterThreeTurns(t *testing.T) {
	defs := testDefs()
	def := gridDef(4, 4)
	def.Nodes[8].Type = types.NodeBoost
	e := testEngine(defs, def, []placed{
		{1, "rook", 0, 0},
		{2, "king", 0, 1},
		{3, "king", 1, 15},
	})

	res := e.RequestMove(1, 8, 0)
	if !hasEvent(res.Events, events.TypeBoostGained) {
		t.Fatal("expected boost_gained event")
	}
	u := state.UnitByID(e.State, 1)
	if u.Stats.Attack != 7 {
		t.Errorf("Attack = %d, want 7 boosted", u.Stats.Attack)
	}

	// The boost decays at the owner's own turn ends.
	for i := 0; i < 2; i++ {
		e.RequestEndTurn(0)
		e.RequestEndTurn(1)
		if u.Stats.Attack != 7 {
			t.Fatalf("Attack = %d after %d rounds, want still 7", u.Stats.Attack, i+1)
		}
	}
	e.RequestEndTurn(0)
	if u.Stats.Attack != 5 {
		t.Errorf("Attack = %d after the third own turn end, want 5", u.Stats.Attack)
	}
}

func TestTeleportTile(t *testing.T) {
	defs := testDefs()
	def := gridDef(4, 4)
	def.Nodes[8].Type = types.NodeTeleport
	def.Nodes[8].TeleportTo = 11
	e := testEngine(defs, def, []placed{
		{1, "rook", 0, 0},
		{2, "king", 0, 1},
		{3, "king", 1, 15},
	})

	res := e.RequestMove(1, 8, 0)
	if !res.Accepted {
		t.Fatalf("rejected: %s", res.Reason)
	}
	if got := state.UnitByID(e.State, 1).Node; got != 11 {
		t.Errorf("Node = %d, want teleported to 11", got)
	}
	if !hasEvent(res.Events, events.TypeUnitTeleported) {
		t.Error("expected unit_teleported event")
	}
}

func TestTeleportTile_OccupiedDestination(t *testing.T) {
	defs := testDefs()
	def := gridDef(4, 4)
	def.Nodes[8].Type = types.NodeTeleport
	def.Nodes[8].TeleportTo = 11
	e := testEngine(defs, def, []placed{
		{1, "rook", 0, 0},
		{2, "king", 0, 1},
		{3, "pawn", 1, 11},
		{4, "king", 1, 15},
	})

	res := e.RequestMove(1, 8, 0)
	if !res.Accepted {
		t.Fatalf("rejected: %s", res.Reason)
	}
	if got := state.UnitByID(e.State, 1).Node; got != 8 {
		t.Errorf("Node = %d, want to stay on 8 (destination occupied)", got)
	}
}

func TestUnstableCollapse_KillsOccupant(t *testing.T) {
	defs := testDefs()
	e := testEngine(defs, gridDef(4, 4), []placed{
		{1, "king", 0, 0},
		{2, "rook", 0, 5},
		{3, "king", 1, 15},
	})
	e.Board.SetUnstable(5, 1)

	res := e.RequestEndTurn(0)
	if !hasEvent(res.Events, events.TypeNodeCollapsed) {
		t.Fatal("expected node_collapsed event")
	}
	if state.UnitByID(e.State, 2).Alive {
		t.Error("occupant of a collapsed node must die")
	}
	if e.Board.IsPassable(5) {
		t.Error("collapsed node must be impassable")
	}
}

func TestPromotion_OnBackRow(t *testing.T) {
	defs := testDefs()
	e := testEngine(defs, gridDef(4, 4), []placed{
		{1, "pawn", 0, 9}, // (1,2); forward to (1,3) on the far row
		{2, "king", 0, 0},
		{3, "king", 1, 15},
	})

	res := e.RequestMove(1, 13, 0)
	if !res.Accepted {
		t.Fatalf("rejected: %s", res.Reason)
	}
	u := state.UnitByID(e.State, 1)
	if u.DefID != "queen" {
		t.Errorf("DefID = %q, want promoted to queen", u.DefID)
	}
	if u.Stats.Attack != 6 {
		t.Errorf("Attack = %d, want queen's 6", u.Stats.Attack)
	}
	if !hasEvent(res.Events, events.TypeUnitPromoted) {
		t.Error("expected unit_promoted event")
	}
}

func TestKingCapture_EndsMatch(t *testing.T) {
	defs := testDefs()
	e := testEngine(defs, gridDef(4, 4), []placed{
		{1, "rook", 0, 0},
		{2, "king", 0, 5},
		{3, "king", 1, 2}, // on the rook's rank
	})

	res := e.RequestMove(1, 2, 0)
	if !res.Accepted {
		t.Fatalf("rejected: %s", res.Reason)
	}
	if res.Phase != types.PhaseEnded {
		t.Fatalf("Phase = %v, want Ended", res.Phase)
	}
	if res.Winner != 0 || e.State.Reason != types.EndKingCaptured {
		t.Errorf("Winner = %d, Reason = %v, want 0 by king capture", res.Winner, e.State.Reason)
	}
	if !hasEvent(res.Events, events.TypeGameEnded) {
		t.Error("expected game_ended event")
	}

	// Commands after the end are rejected.
	if after := e.RequestEndTurn(0); after.Accepted {
		t.Error("commands must be rejected once the match ends")
	}
}

func TestCheckmate_EndsMatch(t *testing.T) {
	defs := testDefs()
	e := testEngine(defs, gridDef(8, 8), []placed{
		{1, "king", 1, 0},
		{2, "rook", 0, 15}, // covers rank 1
		{3, "rook", 0, 22}, // slides to rank 0 for the mate
		{4, "king", 0, 63},
	})

	res := e.RequestMove(3, 6, 0) // rook drops to the back rank
	if !res.Accepted {
		t.Fatalf("rejected: %s", res.Reason)
	}
	if res.Phase != types.PhaseEnded || res.Winner != 0 {
		t.Errorf("Phase = %v, Winner = %d, want ended with winner 0", res.Phase, res.Winner)
	}
	if e.State.Reason != types.EndCheckmate {
		t.Errorf("Reason = %v, want Checkmate", e.State.Reason)
	}
}

func TestStalemate_Draw(t *testing.T) {
	defs := testDefs()
	def := gridDef(4, 4)
	def.Nodes[10].Type = types.NodeImpassable
	def.Nodes[11].Type = types.NodeImpassable
	def.Nodes[14].Type = types.NodeImpassable
	e := testEngine(defs, def, []placed{
		{1, "king", 0, 0},
		{2, "king", 1, 15}, // boxed in, not in check
	})

	res := e.RequestEndTurn(0)
	if !res.Accepted {
		t.Fatalf("rejected: %s", res.Reason)
	}
	if res.Phase != types.PhaseEnded {
		t.Fatalf("Phase = %v, want Ended by stalemate", res.Phase)
	}
	if res.Winner != -1 || e.State.Reason != types.EndStalemate {
		t.Errorf("Winner = %d, Reason = %v, want draw by stalemate", res.Winner, e.State.Reason)
	}
}

func TestResign(t *testing.T) {
	defs := testDefs()
	e := testEngine(defs, gridDef(4, 4), []placed{
		{1, "king", 0, 0},
		{2, "king", 1, 15},
	})

	res := e.RequestResign(0)
	if !res.Accepted {
		t.Fatalf("rejected: %s", res.Reason)
	}
	if res.Phase != types.PhaseEnded || res.Winner != 1 {
		t.Errorf("Phase = %v, Winner = %d, want player 1 by resignation", res.Phase, res.Winner)
	}
	if e.State.Reason != types.EndResignation {
		t.Errorf("Reason = %v, want Resignation", e.State.Reason)
	}
}

func TestSnapshot_IsolatedFromMutation(t *testing.T) {
	defs := testDefs()
	e := testEngine(defs, gridDef(4, 4), []placed{
		{1, "rook", 0, 0},
		{2, "king", 0, 1},
		{3, "king", 1, 15},
	})

	snap := e.Snapshot()
	e.RequestMove(1, 8, 0)

	if state.UnitByID(snap, 1).Node != 0 {
		t.Error("snapshot must not observe later mutation")
	}
	if state.UnitByID(e.State, 1).Node != 8 {
		t.Error("live state must reflect the move")
	}
}

func TestLegalMoves_UnknownUnit(t *testing.T) {
	defs := testDefs()
	e := testEngine(defs, gridDef(4, 4), []placed{
		{1, "king", 0, 0},
		{2, "king", 1, 15},
	})

	if got := e.LegalMoves(99); got != nil {
		t.Errorf("LegalMoves(99) = %v, want nil", got)
	}
}
