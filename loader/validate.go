package loader

import (
	"fmt"
	"os"
	"strings"

	"github.com/mitchellgordon95/live-language/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// Known check kinds.
var validCheckKinds = map[types.CheckKind]bool{
	types.CheckAtLocation:       true,
	types.CheckPlayerHasTag:     true,
	types.CheckPlayerMissingTag: true,
	types.CheckObjectAt:         true,
	types.CheckObjectHasTag:     true,
	types.CheckObjectMissingTag: true,
	types.CheckQuestCompleted:   true,
	types.CheckAll:              true,
}

// validate checks the compiled defs for referential integrity and
// consistency.
func validate(defs *types.ModuleDef) error {
	ve := &ValidationError{}

	if defs.Title == "" {
		ve.Errors = append(ve.Errors, "Module.title is required")
	}
	if defs.ID == "" {
		ve.Errors = append(ve.Errors, "Module.id is required")
	}

	// Start location exists.
	if defs.Start == "" {
		ve.Errors = append(ve.Errors, "Module.start is required")
	} else if _, ok := defs.Locations[defs.Start]; !ok {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"start location %q not found in defined locations", defs.Start))
	}

	// Exit targets valid.
	for locID, loc := range defs.Locations {
		for dir, target := range loc.Exits {
			if _, ok := defs.Locations[target]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"location %q exit %q points to undefined location %q", locID, dir, target))
			}
		}
	}

	// Object ids unique; initial locations resolvable.
	objIDs := map[string]bool{}
	for _, obj := range defs.Objects {
		if objIDs[obj.ID] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("duplicate object ID %q", obj.ID))
		}
		objIDs[obj.ID] = true
	}
	for _, obj := range defs.Objects {
		if obj.Location == types.LocInventory || obj.Location == types.LocRemoved {
			continue
		}
		if _, ok := defs.Locations[obj.Location]; ok {
			continue
		}
		if objIDs[obj.Location] {
			continue // contained in another object
		}
		ve.Warnings = append(ve.Warnings, fmt.Sprintf(
			"object %q location %q does not match any location or object", obj.ID, obj.Location))
	}

	// NPC locations exist.
	for id, npc := range defs.NPCs {
		if npc.Location != "" {
			if _, ok := defs.Locations[npc.Location]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"npc %q location %q does not match any defined location", id, npc.Location))
			}
		}
	}

	// Tutorial step chain.
	if defs.FirstStep != "" {
		if _, ok := defs.Steps[defs.FirstStep]; !ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"first_step %q not found in defined steps", defs.FirstStep))
		}
	}
	for id, step := range defs.Steps {
		if step.Next != "" {
			if _, ok := defs.Steps[step.Next]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"step %q next %q not found in defined steps", id, step.Next))
			}
		}
		validateCheck(fmt.Sprintf("step %q", id), step.Check, defs, objIDs, ve)
	}

	// Quests: prereq references and cycles, trigger references.
	for id, q := range defs.Quests {
		for _, p := range q.Prereqs {
			if _, ok := defs.Quests[p]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"quest %q prereq %q not found in defined quests", id, p))
			}
		}
		validateCheck(fmt.Sprintf("quest %q", id), q.Trigger, defs, objIDs, ve)
	}
	if cycle := prereqCycle(defs.Quests); cycle != "" {
		ve.Errors = append(ve.Errors, fmt.Sprintf("quest prereq cycle through %q", cycle))
	}

	// Status categories: positive cadence, non-empty ladder, unique effects.
	effectOwner := map[string]string{}
	for _, cat := range defs.Categories {
		if cat.Cadence <= 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"status category %q cadence must be positive", cat.ID))
		}
		if len(cat.Ladder) == 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"status category %q has an empty ladder", cat.ID))
		}
		for _, eff := range cat.Ladder {
			if owner, ok := effectOwner[eff]; ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"effect %q appears in categories %q and %q", eff, owner, cat.ID))
			}
			effectOwner[eff] = cat.ID
		}
	}

	for _, w := range ve.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// validateCheck walks a CheckRule tree checking kinds and references.
// Unknown object references are warnings, not errors: the evaluator treats
// them as false, and modules may reference objects created mid-session.
func validateCheck(where string, rule types.CheckRule, defs *types.ModuleDef, objIDs map[string]bool, ve *ValidationError) {
	if !validCheckKinds[rule.Kind] {
		ve.Errors = append(ve.Errors, fmt.Sprintf("%s: unknown check kind %q", where, rule.Kind))
		return
	}
	switch rule.Kind {
	case types.CheckAtLocation:
		if _, ok := defs.Locations[rule.Location]; !ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"%s: references undefined location %q", where, rule.Location))
		}
	case types.CheckObjectAt, types.CheckObjectHasTag, types.CheckObjectMissingTag:
		if !objIDs[rule.ObjectID] {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"%s: references object %q not defined by the module", where, rule.ObjectID))
		}
	case types.CheckQuestCompleted:
		if _, ok := defs.Quests[rule.QuestID]; !ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"%s: references undefined quest %q", where, rule.QuestID))
		}
	case types.CheckAll:
		for _, sub := range rule.All {
			validateCheck(where, sub, defs, objIDs, ve)
		}
	}
}

// prereqCycle returns a quest id on a prereq cycle, or "".
func prereqCycle(quests map[string]types.Quest) string {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	states := map[string]int{}

	var visit func(id string) bool
	visit = func(id string) bool {
		switch states[id] {
		case visiting:
			return true
		case done:
			return false
		}
		states[id] = visiting
		for _, p := range quests[id].Prereqs {
			if _, ok := quests[p]; !ok {
				continue
			}
			if visit(p) {
				return true
			}
		}
		states[id] = done
		return false
	}

	for id := range quests {
		if visit(id) {
			return id
		}
	}
	return ""
}
