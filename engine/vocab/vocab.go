// Package vocab tracks per-word familiarity and spaced repetition. All
// functions are pure transforms of WordFamiliarity records; operations on
// word ids missing from a state's vocabulary table are silent no-ops.
package vocab

import (
	"time"

	"github.com/mitchellgordon95/live-language/types"
)

// Staging thresholds. A word leaves "new" once the player has used it
// correctly 3 times, seen it 5 times, or any weighted mix adding up
// (2*correct + exposures >= 6). It becomes "known" only after 5 cumulative
// correct uses, 2 of them since entering "learning", on a streak of 3.
const (
	newCorrectUses   = 3
	newExposures     = 5
	newWeightedScore = 6

	knownCorrectUses = 5
	knownUsesSince   = 2
	knownStreak      = 3
)

// RecordCorrectUse registers a correct in-context use of a word: counts
// advance, the streak grows, and the use doubles as an implicit "Good"
// review. Stages never skip a level.
func RecordCorrectUse(s *types.GameState, wordID string, now time.Time) {
	w, ok := s.Vocabulary[wordID]
	if !ok {
		return
	}
	w.CorrectUses++
	w.ConsecutiveCorrect++
	if w.Stage == types.StageLearning || w.Stage == types.StageKnown {
		w.UsesSinceLearning++
	}
	w.LastUsed = now
	w = review(w, QualityGood, now)
	w = advanceStage(w)
	s.Vocabulary[wordID] = w
}

// RecordFailedUse registers an incorrect or failed use: the streak resets,
// but no counts advance and the stage does not regress.
func RecordFailedUse(s *types.GameState, wordID string, now time.Time) {
	w, ok := s.Vocabulary[wordID]
	if !ok {
		return
	}
	w.ConsecutiveCorrect = 0
	w.LastUsed = now
	s.Vocabulary[wordID] = w
}

// RecordExposure registers the word being seen in context without the
// player producing it.
func RecordExposure(s *types.GameState, wordID string, now time.Time) {
	w, ok := s.Vocabulary[wordID]
	if !ok {
		return
	}
	w.ContextExposures++
	w = advanceStage(w)
	s.Vocabulary[wordID] = w
}

// RecordHintUsed registers the player asking for a hint on a word. This is
// the only event that regresses a stage: known drops back to learning, and
// the streak resets.
func RecordHintUsed(s *types.GameState, wordID string) {
	w, ok := s.Vocabulary[wordID]
	if !ok {
		return
	}
	w.ConsecutiveCorrect = 0
	if w.Stage == types.StageKnown {
		w.Stage = types.StageLearning
		w.UsesSinceLearning = 0
	}
	s.Vocabulary[wordID] = w
}

// advanceStage promotes a word one stage at most when its thresholds are
// met. new never jumps straight to known.
func advanceStage(w types.WordFamiliarity) types.WordFamiliarity {
	switch w.Stage {
	case types.StageNew, "":
		if w.CorrectUses >= newCorrectUses ||
			w.ContextExposures >= newExposures ||
			2*w.CorrectUses+w.ContextExposures >= newWeightedScore {
			w.Stage = types.StageLearning
			w.UsesSinceLearning = 0
		}
	case types.StageLearning:
		if w.CorrectUses >= knownCorrectUses &&
			w.UsesSinceLearning >= knownUsesSince &&
			w.ConsecutiveCorrect >= knownStreak {
			w.Stage = types.StageKnown
		}
	}
	return w
}
