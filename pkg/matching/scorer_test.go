package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScorerExactMatch(t *testing.T) {
	s := NewScorer()

	assert.Equal(t, 1.0, s.ExactMatch("Blue Dream", "blue dream", false))
	assert.Equal(t, 0.0, s.ExactMatch("Blue Dream", "blue dream", true))
	assert.Equal(t, 0.0, s.ExactMatch("blue dream", "sour diesel", false))
}

func TestScorerLevenshtein(t *testing.T) {
	s := NewScorer()

	assert.Equal(t, 0, s.LevenshteinDistance("kush", "kush"))
	assert.Equal(t, 3, s.LevenshteinDistance("kitten", "sitting"))
	assert.Equal(t, 4, s.LevenshteinDistance("", "kush"))

	assert.Equal(t, 1.0, s.Levenshtein("", ""))
	assert.InDelta(t, 1.0-3.0/7.0, s.Levenshtein("kitten", "sitting"), 0.0001)
	assert.Equal(t, 0.0, s.Levenshtein("abc", "xyz"))
}

func TestScorerJaroWinkler(t *testing.T) {
	s := NewScorer()

	assert.Equal(t, 1.0, s.JaroWinkler("gelato", "gelato"))
	assert.Equal(t, 0.0, s.JaroWinkler("", "gelato"))

	t.Run("shared prefix boosts the score", func(t *testing.T) {
		withPrefix := s.JaroWinkler("gelato", "gelatto")
		assert.Greater(t, withPrefix, s.Jaro("gelato", "gelatto"))
		assert.Greater(t, withPrefix, 0.9)
	})

	t.Run("unrelated strings score low", func(t *testing.T) {
		assert.Less(t, s.JaroWinkler("kiva", "wyld"), 0.5)
	})
}

func TestScorerTokenRatios(t *testing.T) {
	s := NewScorer()

	t.Run("token sort ignores word order", func(t *testing.T) {
		assert.Equal(t, 1.0, s.TokenSortRatio("dream blue", "blue dream"))
	})

	t.Run("token set ignores extra descriptor words", func(t *testing.T) {
		assert.Equal(t, 1.0, s.TokenSetRatio("blue dream", "blue dream haze flower"))
	})

	t.Run("partial overlap", func(t *testing.T) {
		score := s.TokenSetRatio("blue dream flower", "blue drem flower")
		assert.InDelta(t, 2.0/3.0, score, 0.0001)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, 0.0, s.TokenSetRatio("", "blue dream"))
	})
}

func TestScorerPartialRatio(t *testing.T) {
	s := NewScorer()

	assert.Equal(t, 1.0, s.PartialRatio("og kush", "og kush cartridge 1g"))
	assert.Equal(t, 1.0, s.PartialRatio("og kush cartridge 1g", "og kush"))
	assert.Equal(t, 0.0, s.PartialRatio("", "og kush"))
}

func TestScorerBigramRatio(t *testing.T) {
	s := NewScorer()

	assert.Equal(t, 1.0, s.BigramRatio("gelato", "gelato"))

	score := s.BigramRatio("blue dream", "blue cream")
	assert.Greater(t, score, 0.5)
	assert.Less(t, score, 1.0)

	assert.Equal(t, 0.0, s.BigramRatio("q", "z"))
}

func TestScorerSoundex(t *testing.T) {
	s := NewScorer()

	assert.Equal(t, "R163", s.Soundex("Robert"))
	assert.Equal(t, s.Soundex("blue"), s.Soundex("blu"))

	t.Run("token-wise phonetic match", func(t *testing.T) {
		assert.Equal(t, 1.0, s.SoundexMatch("blu dream", "blue dream"))
		assert.Equal(t, 0.0, s.SoundexMatch("blue dream", "sour diesel"))
	})

	t.Run("token count mismatch falls back to whole-string compare", func(t *testing.T) {
		assert.Equal(t, 0.0, s.SoundexMatch("blue dream", "blue"))
	})
}

func TestScorerNumericProximity(t *testing.T) {
	s := NewScorer()

	assert.Equal(t, 1.0, s.NumericProximity(3.5, 3.5, 3.5))
	assert.Equal(t, 0.5, s.NumericProximity(1, 2, 2))
	assert.Equal(t, 0.0, s.NumericProximity(1, 5, 2))
}

func TestScorerWeightedScore(t *testing.T) {
	s := NewScorer()

	t.Run("weighted average", func(t *testing.T) {
		score := s.WeightedScore(
			map[string]float64{"a": 1.0, "b": 0.0},
			map[string]float64{"a": 3.0, "b": 1.0},
		)
		assert.InDelta(t, 0.75, score, 0.0001)
	})

	t.Run("absent signals do not count their weight", func(t *testing.T) {
		full := s.WeightedScore(
			map[string]float64{"a": 1.0},
			map[string]float64{"a": 0.4, "b": 0.6},
		)
		assert.Equal(t, 1.0, full)
	})

	t.Run("unknown signal defaults to weight 1", func(t *testing.T) {
		score := s.WeightedScore(map[string]float64{"x": 0.5}, nil)
		assert.Equal(t, 0.5, score)
	})

	t.Run("empty scores", func(t *testing.T) {
		assert.Equal(t, 0.0, s.WeightedScore(nil, nil))
	})
}
