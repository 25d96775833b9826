package errors

import (
	"fmt"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// maxSuggestDistance is the largest edit distance still worth suggesting.
const maxSuggestDistance = 3

// SuggestName suggests the closest valid name for an unknown one.
// It prefers fuzzy subsequence matches and falls back to edit distance.
// An empty string is returned when nothing is close enough.
func SuggestName(unknown string, valid []string) string {
	if len(valid) == 0 || unknown == "" {
		return ""
	}

	if ranks := fuzzy.RankFindFold(unknown, valid); len(ranks) > 0 {
		best := ranks[0]
		for _, r := range ranks[1:] {
			if r.Distance < best.Distance {
				best = r
			}
		}
		return fmt.Sprintf("Did you mean '%s'?", best.Target)
	}

	minDistance := maxSuggestDistance + 1
	var bestMatch string
	for _, name := range valid {
		dist := fuzzy.LevenshteinDistance(strings.ToLower(unknown), strings.ToLower(name))
		if dist < minDistance {
			minDistance = dist
			bestMatch = name
		}
	}

	if bestMatch != "" {
		return fmt.Sprintf("Did you mean '%s'?", bestMatch)
	}
	return ""
}

// SuggestValid lists valid names, truncated to the first five.
func SuggestValid(kind string, valid []string) string {
	if len(valid) > 5 {
		return fmt.Sprintf("Valid %s include: %s, ...", kind, strings.Join(valid[:5], ", "))
	}
	return fmt.Sprintf("Valid %s: %s", kind, strings.Join(valid, ", "))
}
