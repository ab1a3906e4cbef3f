// Package save implements JSON serialization and deserialization of
// match snapshots for host-side persistence.
package save

import (
	"encoding/json"

	"github.com/nathoo/tacticore/types"
)

// SaveData is the JSON-serializable snapshot format.
type SaveData struct {
	Version    string               `json:"version"`
	MatchID    string               `json:"match_id"`
	Phase      types.Phase          `json:"phase"`
	Turn       int                  `json:"turn"`
	Current    int                  `json:"current"`
	Board      types.BoardState     `json:"board"`
	Units      []*types.UnitState   `json:"units"`
	Players    []types.PlayerState  `json:"players"`
	Winner     int                  `json:"winner"`
	Reason     types.EndReason      `json:"reason"`
	History    []types.Action       `json:"history"`
	NextUnitID int                  `json:"next_unit_id"`
}

// Save serializes a match state to JSON bytes.
func Save(s *types.MatchState, version string) ([]byte, error) {
	data := SaveData{
		Version:    version,
		MatchID:    s.MatchID,
		Phase:      s.Phase,
		Turn:       s.Turn,
		Current:    s.Current,
		Board:      s.Board,
		Units:      s.Units,
		Players:    s.Players,
		Winner:     s.Winner,
		Reason:     s.Reason,
		History:    s.History,
		NextUnitID: s.NextUnitID,
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes JSON bytes into SaveData.
func Load(data []byte) (*SaveData, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, err
	}
	// Ensure slices are never nil after load.
	if sd.Units == nil {
		sd.Units = []*types.UnitState{}
	}
	if sd.Players == nil {
		sd.Players = []types.PlayerState{}
	}
	if sd.History == nil {
		sd.History = []types.Action{}
	}
	return &sd, nil
}

// Apply writes loaded snapshot data onto a match state. Callers must
// rebind any board wrapper afterwards.
func Apply(s *types.MatchState, sd *SaveData) {
	s.MatchID = sd.MatchID
	s.Phase = sd.Phase
	s.Turn = sd.Turn
	s.Current = sd.Current
	s.Board = sd.Board
	s.Units = sd.Units
	s.Players = sd.Players
	s.Winner = sd.Winner
	s.Reason = sd.Reason
	s.History = sd.History
	s.NextUnitID = sd.NextUnitID
}
