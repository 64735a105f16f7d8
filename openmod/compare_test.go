package openmod

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, StringSimilarity("openmod", "openmod"))
	assert.Zero(t, StringSimilarity("abc", "xyz"))

	assert.Greater(t,
		StringSimilarity("spiget", "spigot"),
		StringSimilarity("spiget", "paper"))
}

func TestSuggest(t *testing.T) {
	match, score := Suggest("spiget", []string{"paper", "spigot", "bungee"})

	assert.Equal(t, "spigot", match)
	assert.GreaterOrEqual(t, score, SimilarityTreshold)

	_, score = Suggest("anything", nil)
	assert.Zero(t, score)
}

func TestDistinct(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, Distinct([]string{"a", "b", "a", "c", "b"}))
	assert.Empty(t, Distinct([]string{}))
}
