// Package status drives the per-category escalating condition ladders.
// There are no background timers: escalation is derived lazily from the
// turn counter whenever Tick runs.
package status

import "github.com/mitchellgordon95/live-language/types"

// Tick advances every category's ladder to the level implied by the turns
// elapsed since its last reset, jumping directly over any missed
// intermediate levels. A target level of 0 means no active effect for the
// category. s is mutated in place (callers pass a turn-private clone).
func Tick(s *types.GameState, cats []types.StatusCategory) {
	for _, cat := range cats {
		if cat.Cadence <= 0 || len(cat.Ladder) == 0 {
			continue
		}
		turnsSince := s.Turn - s.LastReset[cat.ID]
		target := turnsSince / cat.Cadence
		if target > len(cat.Ladder) {
			target = len(cat.Ladder)
		}
		if target <= activeLevel(s, cat) {
			continue
		}
		for _, id := range cat.Ladder {
			delete(s.ActiveEffects, id)
		}
		if target > 0 {
			s.ActiveEffects[cat.Ladder[target-1]] = true
		}
	}
}

// Clear removes every effect belonging to the category from the active set
// and stamps the category's last reset at the current turn. Called when
// gameplay satisfies the underlying need.
func Clear(s *types.GameState, cat types.StatusCategory) {
	for _, id := range cat.Ladder {
		delete(s.ActiveEffects, id)
	}
	s.LastReset[cat.ID] = s.Turn
}

// CategoryOf returns the category whose ladder contains the effect id.
func CategoryOf(cats []types.StatusCategory, effectID string) (types.StatusCategory, bool) {
	for _, cat := range cats {
		for _, id := range cat.Ladder {
			if id == effectID {
				return cat, true
			}
		}
	}
	return types.StatusCategory{}, false
}

// activeLevel returns the 1-based ladder index of the category's currently
// active effect, or 0 if none is active.
func activeLevel(s *types.GameState, cat types.StatusCategory) int {
	for i, id := range cat.Ladder {
		if s.ActiveEffects[id] {
			return i + 1
		}
	}
	return 0
}
