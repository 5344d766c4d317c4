// Package mutate applies ordered mutation lists to game states. Apply is the
// single choke point for world mutation: it is pure, total over any
// well-formed mutation list, and produces a new snapshot rather than
// changing its input.
package mutate

import (
	"fmt"

	"github.com/mitchellgordon95/live-language/engine/state"
	"github.com/mitchellgordon95/live-language/types"
)

// Result reports what Apply did with each mutation.
type Result struct {
	Applied []types.Mutation
	Skipped []string // human-readable reasons, for the turn trace
}

// Apply executes mutations strictly in order against a copy of s and
// returns the new snapshot. Each mutation sees the cumulative effect of the
// ones before it. A mutation referencing an unknown id is skipped with a
// note; it never aborts the batch.
func Apply(s *types.GameState, defs *types.ModuleDef, muts []types.Mutation) (*types.GameState, Result) {
	next := state.Clone(s)
	var res Result

	for _, m := range muts {
		if reason := applyOne(next, defs, m); reason != "" {
			res.Skipped = append(res.Skipped, reason)
		} else {
			res.Applied = append(res.Applied, m)
		}
	}

	return next, res
}

// applyOne mutates next in place (next is already a private clone).
// Returns a skip reason, or "" if the mutation applied.
func applyOne(next *types.GameState, defs *types.ModuleDef, m types.Mutation) string {
	switch m.Kind {
	case types.MutGo:
		// Exit-graph validation happens upstream; here only existence.
		if _, ok := defs.Locations[m.Location]; !ok {
			return fmt.Sprintf("go: unknown location %q", m.Location)
		}
		next.Location = m.Location
		next.Visited[m.Location] = true

	case types.MutMove:
		obj := state.FindObject(next, m.ObjectID)
		if obj == nil {
			return fmt.Sprintf("move: unknown object %q", m.ObjectID)
		}
		if reason := checkMoveTarget(next, m.ObjectID, m.To); reason != "" {
			return reason
		}
		obj.Location = m.To

	case types.MutTag:
		obj := state.FindObject(next, m.ObjectID)
		if obj == nil {
			return fmt.Sprintf("tag: unknown object %q", m.ObjectID)
		}
		applyTagSet(obj.Tags, m.Add, m.Remove)

	case types.MutPlayerTag:
		applyTagSet(next.PlayerTags, m.Add, m.Remove)

	case types.MutStatus:
		applyTagSet(next.ActiveEffects, m.Add, m.Remove)

	case types.MutCreate:
		if m.Object == nil {
			return "create: missing object payload"
		}
		if state.FindObject(next, m.Object.ID) != nil {
			return fmt.Sprintf("create: object %q already exists", m.Object.ID)
		}
		obj := *m.Object
		if obj.Tags == nil {
			obj.Tags = map[string]bool{}
		} else {
			tags := make(map[string]bool, len(obj.Tags))
			for t, on := range obj.Tags {
				tags[t] = on
			}
			obj.Tags = tags
		}
		next.Objects = append(next.Objects, obj)

	case types.MutRemove:
		obj := state.FindObject(next, m.ObjectID)
		if obj == nil {
			return fmt.Sprintf("remove: unknown object %q", m.ObjectID)
		}
		// Soft deletion: the record stays, stale references stay valid.
		obj.Location = types.LocRemoved

	case types.MutNPCMood:
		npc, ok := next.NPCs[m.NPCID]
		if !ok {
			return fmt.Sprintf("npcMood: unknown npc %q", m.NPCID)
		}
		npc.Mood = m.Mood
		next.NPCs[m.NPCID] = npc

	default:
		return fmt.Sprintf("unknown mutation kind %q", m.Kind)
	}

	return ""
}

// checkMoveTarget rejects moves that would break the world invariants:
// moving into a removed object, or creating a containment cycle.
func checkMoveTarget(s *types.GameState, objectID, to string) string {
	target := state.FindObject(s, to)
	if target == nil {
		// Not an object: location id, inventory, or removed are all fine.
		return ""
	}
	if target.Location == types.LocRemoved {
		return fmt.Sprintf("move: target %q is removed", to)
	}
	if to == objectID {
		return fmt.Sprintf("move: %q cannot contain itself", objectID)
	}
	for _, id := range state.ContainerChain(s, to) {
		if id == objectID {
			return fmt.Sprintf("move: %q into %q would form a containment cycle", objectID, to)
		}
	}
	return ""
}

// applyTagSet applies add-then-remove set semantics: union with add,
// difference with remove. A tag in both lists ends up removed.
func applyTagSet(set map[string]bool, add, remove []string) {
	for _, t := range add {
		set[t] = true
	}
	for _, t := range remove {
		delete(set, t)
	}
}
