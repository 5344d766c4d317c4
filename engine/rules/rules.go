// Package rules implements the declarative CheckRule evaluator and the
// tutorial/quest progression built on it.
package rules

import (
	"github.com/mitchellgordon95/live-language/engine/state"
	"github.com/mitchellgordon95/live-language/types"
)

// Evaluate evaluates a condition tree against a state. It is pure and
// total: a rule referencing a missing object or quest evaluates to false,
// never errors. Rule trees are finite, so recursion terminates.
func Evaluate(rule types.CheckRule, s *types.GameState) bool {
	switch rule.Kind {
	case types.CheckAtLocation:
		return s.Location == rule.Location

	case types.CheckPlayerHasTag:
		return s.PlayerTags[rule.Tag]

	case types.CheckPlayerMissingTag:
		return !s.PlayerTags[rule.Tag]

	case types.CheckObjectAt:
		obj := state.FindObject(s, rule.ObjectID)
		if obj == nil || obj.Location == types.LocRemoved {
			return false
		}
		return obj.Location == rule.Location

	case types.CheckObjectHasTag:
		obj := state.FindObject(s, rule.ObjectID)
		return obj != nil && obj.Tags[rule.Tag]

	case types.CheckObjectMissingTag:
		obj := state.FindObject(s, rule.ObjectID)
		return obj != nil && !obj.Tags[rule.Tag]

	case types.CheckQuestCompleted:
		return s.Quests.Completed[rule.QuestID]

	case types.CheckAll:
		for _, sub := range rule.All {
			if !Evaluate(sub, s) {
				return false
			}
		}
		return true

	default:
		return false
	}
}

// AdvanceTutorial marks the current suggested step complete while its check
// holds, following Next pointers until a step's check is false or there is
// no successor. Steps are suggestions, not gates; s is mutated in place
// (callers pass a turn-private clone). Returns the step ids completed.
func AdvanceTutorial(s *types.GameState, defs *types.ModuleDef) []string {
	var completed []string
	for s.Tutorial.Current != "" {
		step, ok := defs.Steps[s.Tutorial.Current]
		if !ok {
			// Stale pointer after a module edit; drop the suggestion.
			s.Tutorial.Current = ""
			break
		}
		if s.Tutorial.Completed[step.ID] {
			s.Tutorial.Current = step.Next
			continue
		}
		if !Evaluate(step.Check, s) {
			break
		}
		s.Tutorial.Completed[step.ID] = true
		completed = append(completed, step.ID)
		s.Tutorial.Current = step.Next
	}
	return completed
}

// SweepCompletedSteps recognizes steps satisfied out of order: any step
// whose check holds is marked complete even if the suggestion pointer never
// reached it. Returns newly completed step ids.
func SweepCompletedSteps(s *types.GameState, defs *types.ModuleDef) []string {
	var completed []string
	for id, step := range defs.Steps {
		if s.Tutorial.Completed[id] {
			continue
		}
		if Evaluate(step.Check, s) {
			s.Tutorial.Completed[id] = true
			completed = append(completed, id)
		}
	}
	return completed
}

// ActivateQuests transitions quests from inactive to active: the trigger
// must evaluate true AND every prereq must already be completed. Unmet
// prereqs gate absolutely, regardless of the trigger. Returns newly
// activated quest ids.
func ActivateQuests(s *types.GameState, defs *types.ModuleDef) []string {
	var started []string
	for id, q := range defs.Quests {
		if s.Quests.Active[id] || s.Quests.Completed[id] {
			continue
		}
		if !prereqsMet(q, s) {
			continue
		}
		if !Evaluate(q.Trigger, s) {
			continue
		}
		s.Quests.Active[id] = true
		started = append(started, id)
	}
	return started
}

// CompleteQuests applies an external completion signal. Completion is a
// narrative judgment made by the narration collaborator, not a rule
// evaluation; only currently active quests can complete. Returns the quest
// ids completed and any badges earned.
func CompleteQuests(s *types.GameState, defs *types.ModuleDef, ids []string) (completed, badges []string) {
	for _, id := range ids {
		if !s.Quests.Active[id] {
			continue
		}
		delete(s.Quests.Active, id)
		s.Quests.Completed[id] = true
		completed = append(completed, id)
		if q, ok := defs.Quests[id]; ok && q.Reward != "" {
			s.Quests.Badges = append(s.Quests.Badges, q.Reward)
			badges = append(badges, q.Reward)
		}
	}
	return completed, badges
}

func prereqsMet(q types.Quest, s *types.GameState) bool {
	for _, p := range q.Prereqs {
		if !s.Quests.Completed[p] {
			return false
		}
	}
	return true
}
