package save

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/nathoo/tacticore/types"
)

func testState() *types.MatchState {
	return &types.MatchState{
		MatchID: "match-1",
		Phase:   types.PhasePlaying,
		Turn:    3,
		Current: 1,
		Board: types.BoardState{
			DefID: "plain", Width: 2, Height: 2,
			Nodes: []types.NodeState{
				{ID: 0, Active: true, TeleportTo: -1},
				{ID: 1, Active: true, TeleportTo: -1},
				{ID: 2, Type: types.NodeTrap, Active: true, TeleportTo: -1},
				{ID: 3, Type: types.NodeUnstable, Active: true, TeleportTo: -1, CollapseIn: 2},
			},
			Edges: []types.EdgeState{{From: 0, To: 1, Active: true}},
		},
		Units: []*types.UnitState{
			{
				ID: 1, DefID: "king", Owner: 0, Node: 0, Level: 2, XP: 40,
				Health: 15, Stats: types.Stats{MaxHealth: 22, Attack: 4, Defense: 5, Range: 1},
				Modifiers: []types.Modifier{
					{Stat: types.StatAttack, Op: types.ModAdd, Value: 2,
						Duration: types.DurationTurns, TurnsLeft: 1, Source: "boost", Seq: 1},
				},
				EverMoved: true, Alive: true,
			},
			{ID: 2, DefID: "pawn", Owner: 1, Node: 3, Level: 1, Health: 0, Alive: false},
		},
		Players: []types.PlayerState{
			{Index: 0, Army: "classic"},
			{Index: 1, Army: "classic", Resigned: false},
		},
		Winner: -1,
		History: []types.Action{
			{Kind: types.ActionMove, Turn: 1, Player: 0, Unit: 1, From: 1, To: 0, Target: -1, Captured: -1},
		},
		NextUnitID: 3,
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s := testState()

	data, err := Save(s, "1.0")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	sd, err := Load(data)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if sd.Version != "1.0" {
		t.Errorf("Version = %q, want 1.0", sd.Version)
	}
	if sd.MatchID != "match-1" || sd.Turn != 3 || sd.Current != 1 {
		t.Errorf("header = %s/%d/%d", sd.MatchID, sd.Turn, sd.Current)
	}

	restored := &types.MatchState{}
	Apply(restored, sd)

	if !reflect.DeepEqual(restored, s) {
		t.Errorf("round trip mismatch:\nwant %+v\ngot  %+v", s, restored)
	}
}

func TestSave_PreservesDeadUnits(t *testing.T) {
	data, err := Save(testState(), "1.0")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	sd, err := Load(data)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(sd.Units) != 2 {
		t.Fatalf("units = %d, want 2 (dead units kept for history)", len(sd.Units))
	}
	if sd.Units[1].Alive {
		t.Error("dead unit must stay dead")
	}
}

func TestLoad_NormalizesNilSlices(t *testing.T) {
	sd, err := Load([]byte(`{"version":"1.0","match_id":"x","winner":-1}`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if sd.Units == nil || sd.Players == nil || sd.History == nil {
		t.Error("slices must be non-nil after load")
	}
}

func TestLoad_RejectsMalformedJSON(t *testing.T) {
	if _, err := Load([]byte(`{"turn": `)); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestSave_StableFieldNames(t *testing.T) {
	data, err := Save(testState(), "1.0")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"version", "match_id", "phase", "turn", "current", "board", "units", "players", "winner", "reason", "history", "next_unit_id"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing field %q in save payload", key)
		}
	}
}
