// Package save implements JSON serialization and deserialization of session
// snapshots. The engine defines this shape; where the bytes live is the
// store's concern.
package save

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellgordon95/live-language/types"
)

// SaveData is the JSON-serializable snapshot format.
type SaveData struct {
	Version string           `json:"version"`
	Module  string           `json:"module"`
	State   *types.GameState `json:"state"`
}

// Save serializes a game state to JSON bytes.
func Save(s *types.GameState, defs *types.ModuleDef) ([]byte, error) {
	data := SaveData{
		Version: defs.Version,
		Module:  defs.ID,
		State:   s,
	}
	return json.MarshalIndent(data, "", "  ")
}

// Load deserializes snapshot bytes. Maps are never nil after load, so a
// snapshot written by an older build stays usable.
func Load(data []byte) (*types.GameState, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	if sd.State == nil {
		return nil, fmt.Errorf("snapshot has no state")
	}
	s := sd.State
	if s.Visited == nil {
		s.Visited = map[string]bool{}
	}
	if s.PlayerTags == nil {
		s.PlayerTags = map[string]bool{}
	}
	if s.NPCs == nil {
		s.NPCs = map[string]types.NPCState{}
	}
	if s.ActiveEffects == nil {
		s.ActiveEffects = map[string]bool{}
	}
	if s.LastReset == nil {
		s.LastReset = map[string]int{}
	}
	if s.Tutorial.Completed == nil {
		s.Tutorial.Completed = map[string]bool{}
	}
	if s.Quests.Active == nil {
		s.Quests.Active = map[string]bool{}
	}
	if s.Quests.Completed == nil {
		s.Quests.Completed = map[string]bool{}
	}
	if s.Quests.Badges == nil {
		s.Quests.Badges = []string{}
	}
	if s.Vocabulary == nil {
		s.Vocabulary = map[string]types.WordFamiliarity{}
	}
	for i := range s.Objects {
		if s.Objects[i].Tags == nil {
			s.Objects[i].Tags = map[string]bool{}
		}
	}
	return s, nil
}
