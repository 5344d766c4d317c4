// Package state constructs game states from module definitions and exposes
// read accessors over them. All mutation goes through engine/mutate; nothing
// here writes to a state that has been handed out.
package state

import (
	"sort"
	"time"

	"github.com/mitchellgordon95/live-language/types"
)

// NewState creates a fresh session state from a module definition.
func NewState(defs *types.ModuleDef, profileID string, now time.Time) *types.GameState {
	s := &types.GameState{
		Location:      defs.Start,
		Visited:       map[string]bool{defs.Start: true},
		PlayerTags:    map[string]bool{"standing": true},
		NPCs:          map[string]types.NPCState{},
		ActiveEffects: map[string]bool{},
		LastReset:     map[string]int{},
		Tutorial: types.TutorialProgress{
			Current:   defs.FirstStep,
			Completed: map[string]bool{},
		},
		Quests: types.QuestProgress{
			Active:    map[string]bool{},
			Completed: map[string]bool{},
			Badges:    []string{},
		},
		Vocabulary: map[string]types.WordFamiliarity{},
		Session: types.SessionMeta{
			ProfileID: profileID,
			ModuleID:  defs.ID,
			StartedAt: now,
		},
	}

	for _, od := range defs.Objects {
		tags := map[string]bool{}
		for _, t := range od.Tags {
			tags[t] = true
		}
		s.Objects = append(s.Objects, types.WorldObject{
			ID:       od.ID,
			Name:     od.Name,
			Location: od.Location,
			Tags:     tags,
		})
	}

	for id, nd := range defs.NPCs {
		s.NPCs[id] = types.NPCState{
			Location:  nd.Location,
			Mood:      nd.Mood,
			WantsItem: nd.WantsItem,
		}
	}

	// Every word starts at stage "new" and is never destroyed.
	for id := range defs.Words {
		s.Vocabulary[id] = types.WordFamiliarity{
			Stage: types.StageNew,
			Ease:  2.5,
		}
	}

	for _, cat := range defs.Categories {
		s.LastReset[cat.ID] = 0
	}

	return s
}

// Clone deep-copies a state. Every turn works on a clone so that the
// previous snapshot survives unmodified.
func Clone(s *types.GameState) *types.GameState {
	out := *s
	out.Visited = cloneBoolMap(s.Visited)
	out.PlayerTags = cloneBoolMap(s.PlayerTags)
	out.ActiveEffects = cloneBoolMap(s.ActiveEffects)

	out.Objects = make([]types.WorldObject, len(s.Objects))
	for i, o := range s.Objects {
		o.Tags = cloneBoolMap(o.Tags)
		out.Objects[i] = o
	}

	out.NPCs = make(map[string]types.NPCState, len(s.NPCs))
	for id, n := range s.NPCs {
		out.NPCs[id] = n
	}

	out.LastReset = make(map[string]int, len(s.LastReset))
	for k, v := range s.LastReset {
		out.LastReset[k] = v
	}

	out.Tutorial.Completed = cloneBoolMap(s.Tutorial.Completed)
	out.Quests.Active = cloneBoolMap(s.Quests.Active)
	out.Quests.Completed = cloneBoolMap(s.Quests.Completed)
	out.Quests.Badges = append([]string(nil), s.Quests.Badges...)

	out.Vocabulary = make(map[string]types.WordFamiliarity, len(s.Vocabulary))
	for id, w := range s.Vocabulary {
		out.Vocabulary[id] = w
	}

	return &out
}

func cloneBoolMap(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// FindObject returns the object with the given id, or nil. Removed objects
// are still found: the record survives soft deletion.
func FindObject(s *types.GameState, id string) *types.WorldObject {
	for i := range s.Objects {
		if s.Objects[i].ID == id {
			return &s.Objects[i]
		}
	}
	return nil
}

// ObjectsAt returns the non-removed objects whose location field equals loc,
// in id order. loc may be a location id, types.LocInventory, or a container
// object's id.
func ObjectsAt(s *types.GameState, loc string) []types.WorldObject {
	var out []types.WorldObject
	for _, o := range s.Objects {
		if o.Location == types.LocRemoved {
			continue
		}
		if o.Location == loc {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Inventory returns the objects the player is carrying, in id order.
func Inventory(s *types.GameState) []types.WorldObject {
	return ObjectsAt(s, types.LocInventory)
}

// HasPlayerTag reports whether the player currently has the tag.
func HasPlayerTag(s *types.GameState, tag string) bool {
	return s.PlayerTags[tag]
}

// ContainerChain walks outward from an object through its containers,
// returning the ids visited (nearest first). The walk stops at the first
// non-object location or after every object has been seen, so a corrupt
// cycle cannot loop forever.
func ContainerChain(s *types.GameState, id string) []string {
	var chain []string
	seen := map[string]bool{}
	cur := FindObject(s, id)
	for cur != nil && !seen[cur.ID] {
		seen[cur.ID] = true
		next := FindObject(s, cur.Location)
		if next == nil {
			break
		}
		chain = append(chain, next.ID)
		cur = next
	}
	return chain
}

// WordStage returns the familiarity stage for a word id, defaulting to
// "new" for unknown ids.
func WordStage(s *types.GameState, wordID string) types.Stage {
	if w, ok := s.Vocabulary[wordID]; ok {
		return w.Stage
	}
	return types.StageNew
}

// StageCounts tallies vocabulary words per familiarity stage.
func StageCounts(s *types.GameState) (new, learning, known int) {
	for _, w := range s.Vocabulary {
		switch w.Stage {
		case types.StageKnown:
			known++
		case types.StageLearning:
			learning++
		default:
			new++
		}
	}
	return
}

// ActiveEffectIDs returns the active status-effect ids in sorted order.
func ActiveEffectIDs(s *types.GameState) []string {
	out := make([]string, 0, len(s.ActiveEffects))
	for id, on := range s.ActiveEffects {
		if on {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
