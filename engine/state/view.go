package state

import (
	"sort"

	"github.com/mitchellgordon95/live-language/types"
)

// ViewObject is one visible object in a view projection.
type ViewObject struct {
	ID   string
	Name types.Name
	Tags []string
}

// ViewNPC is one NPC present at the player's location.
type ViewNPC struct {
	ID   string
	Name types.Name
	Mood string
}

// View is everything an external presentation layer needs to build a
// display model. The engine does no rendering itself.
type View struct {
	Location        string
	LocationName    types.Name
	Description     string
	Exits           map[string]string
	Objects         []ViewObject
	Inventory       []ViewObject
	NPCs            []ViewNPC
	PlayerTags      []string
	ActiveEffects   []string
	Turn            int
	SuggestedStep   string
	CompletedSteps  []string
	ActiveQuests    []string
	CompletedQuests []string
	Badges          []string
	WordStages      map[string]types.Stage
}

// Project builds a view of the current state against its module definition.
func Project(s *types.GameState, defs *types.ModuleDef) View {
	v := View{
		Location:        s.Location,
		Turn:            s.Turn,
		SuggestedStep:   s.Tutorial.Current,
		Exits:           map[string]string{},
		ActiveEffects:   ActiveEffectIDs(s),
		PlayerTags:      sortedKeys(s.PlayerTags),
		CompletedSteps:  sortedKeys(s.Tutorial.Completed),
		ActiveQuests:    sortedKeys(s.Quests.Active),
		CompletedQuests: sortedKeys(s.Quests.Completed),
		Badges:          append([]string(nil), s.Quests.Badges...),
		WordStages:      map[string]types.Stage{},
	}

	if loc, ok := defs.Locations[s.Location]; ok {
		v.LocationName = loc.Name
		v.Description = loc.Description
		for dir, target := range loc.Exits {
			v.Exits[dir] = target
		}
	}

	for _, o := range ObjectsAt(s, s.Location) {
		v.Objects = append(v.Objects, ViewObject{ID: o.ID, Name: o.Name, Tags: sortedKeys(o.Tags)})
	}
	for _, o := range Inventory(s) {
		v.Inventory = append(v.Inventory, ViewObject{ID: o.ID, Name: o.Name, Tags: sortedKeys(o.Tags)})
	}

	npcIDs := make([]string, 0, len(s.NPCs))
	for id, n := range s.NPCs {
		if n.Location == s.Location {
			npcIDs = append(npcIDs, id)
		}
	}
	sort.Strings(npcIDs)
	for _, id := range npcIDs {
		n := s.NPCs[id]
		name := types.Name{English: id, Target: id}
		if nd, ok := defs.NPCs[id]; ok {
			name = nd.Name
		}
		v.NPCs = append(v.NPCs, ViewNPC{ID: id, Name: name, Mood: n.Mood})
	}

	for id, w := range s.Vocabulary {
		v.WordStages[id] = w.Stage
	}

	return v
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k, on := range m {
		if on {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
