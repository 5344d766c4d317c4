package vocab

import (
	"math"
	"sort"
	"time"

	"github.com/mitchellgordon95/live-language/types"
)

// Review quality grades. Values at or below QualityAgain behave as "Again";
// values at or above QualityEasy behave as "Easy".
const (
	QualityAgain = 1
	QualityHard  = 2
	QualityGood  = 3
	QualityEasy  = 4
)

const minEase = 1.3

// Review applies an explicit SM-2-style review of the given quality to a
// word and reschedules it. Unknown word ids are a no-op.
func Review(s *types.GameState, wordID string, quality int, now time.Time) {
	w, ok := s.Vocabulary[wordID]
	if !ok {
		return
	}
	s.Vocabulary[wordID] = review(w, quality, now)
}

// review recomputes interval, ease, and next-review for one grade.
func review(w types.WordFamiliarity, quality int, now time.Time) types.WordFamiliarity {
	switch {
	case quality <= QualityAgain:
		w.IntervalDays = 1
		w.Ease = math.Max(minEase, w.Ease-0.2)

	case quality == QualityHard:
		base := w.IntervalDays
		if base == 0 {
			base = 1
		}
		w.IntervalDays = maxInt(1, roundToInt(float64(base)*1.2))
		w.Ease = math.Max(minEase, w.Ease-0.15)

	case quality == QualityGood:
		if w.IntervalDays == 0 {
			w.IntervalDays = 1
		} else {
			w.IntervalDays = roundToInt(float64(w.IntervalDays) * w.Ease)
		}

	default: // quality >= QualityEasy
		if w.IntervalDays == 0 {
			w.IntervalDays = 4
		} else {
			w.IntervalDays = roundToInt(float64(w.IntervalDays) * w.Ease * 1.3)
		}
		w.Ease += 0.15
	}

	w.NextReview = now.AddDate(0, 0, w.IntervalDays)
	w.ReviewCount++
	return w
}

// DueWords returns the ids of words with at least one recorded use or
// exposure whose next review is unset or not in the future, ordered by
// next-review ascending with word id as the deterministic tie-break.
func DueWords(s *types.GameState, now time.Time) []string {
	var due []string
	for id, w := range s.Vocabulary {
		if w.CorrectUses == 0 && w.ContextExposures == 0 {
			continue
		}
		if w.NextReview.IsZero() || !w.NextReview.After(now) {
			due = append(due, id)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		a, b := s.Vocabulary[due[i]], s.Vocabulary[due[j]]
		if !a.NextReview.Equal(b.NextReview) {
			return a.NextReview.Before(b.NextReview)
		}
		return due[i] < due[j]
	})
	return due
}

func roundToInt(f float64) int {
	return int(math.Round(f))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
