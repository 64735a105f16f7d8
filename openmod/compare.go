package openmod

import (
	"github.com/gnames/levenshtein"
	"golang.org/x/exp/slices"
)

var lvh = levenshtein.NewLevenshtein()

// Inverse of the Levenshtein distance normalized between 0 and 1
func StringSimilarity(a, b string) float64 {
	return 1 - float64(lvh.Compare(a, b).EditDist)/float64(max(len(a), len(b)))
}

// Suggest picks the candidate name closest to the requested one, used
// to log a hint when a package query comes back empty.
func Suggest(name string, candidates []string) (string, float64) {
	if len(candidates) == 0 {
		return "", 0
	}

	scores := make([]float64, len(candidates))
	for i, c := range candidates {
		scores[i] = StringSimilarity(name, c)
	}

	best := slices.Index(scores, slices.Max(scores))

	return candidates[best], scores[best]
}
