package vocab

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/mitchellgordon95/live-language/types"
)

// ExtractWords returns the de-duplicated, sorted word ids whose surface
// forms appear as case-insensitive substrings of text. Both the player's
// literal input and model sentences from the narrator pass through here.
func ExtractWords(text string, words map[string]types.WordDef) []string {
	if text == "" {
		return nil
	}
	lower := strings.ToLower(text)

	seen := map[string]bool{}
	for id, wd := range words {
		for _, form := range wd.Forms {
			if form == "" {
				continue
			}
			if strings.Contains(lower, strings.ToLower(form)) {
				seen[id] = true
				break
			}
		}
	}

	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Closest returns the vocabulary word id whose surface form is nearest to
// input by edit distance, along with that distance. Used to suggest a word
// when the player's spelling misses every exact form. Returns "" if the
// vocabulary is empty.
func Closest(input string, words map[string]types.WordDef) (string, int) {
	lower := strings.ToLower(strings.TrimSpace(input))
	bestID := ""
	bestDist := -1
	for id, wd := range words {
		for _, form := range wd.Forms {
			d := levenshtein.ComputeDistance(lower, strings.ToLower(form))
			if bestDist < 0 || d < bestDist || (d == bestDist && id < bestID) {
				bestID, bestDist = id, d
			}
		}
	}
	return bestID, bestDist
}
