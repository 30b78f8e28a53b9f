package normalizers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeight(t *testing.T) {
	t.Run("value with unit", func(t *testing.T) {
		value, unit, ok := ParseWeight("Blue Dream 3.5g Flower")
		require.True(t, ok)
		assert.Equal(t, 3.5, value)
		assert.Equal(t, "g", unit)
	})

	t.Run("milligrams", func(t *testing.T) {
		value, unit, ok := ParseWeight("Gummies 100 mg")
		require.True(t, ok)
		assert.Equal(t, 100.0, value)
		assert.Equal(t, "mg", unit)
	})

	t.Run("fraction in product code", func(t *testing.T) {
		value, unit, ok := ParseWeight("blue_dream_1/8")
		require.True(t, ok)
		assert.Equal(t, 3.5, value)
		assert.Equal(t, "g", unit)
	})

	t.Run("no weight present", func(t *testing.T) {
		_, _, ok := ParseWeight("Blue Dream Flower")
		assert.False(t, ok)
	})
}

func TestToGrams(t *testing.T) {
	cases := []struct {
		value float64
		unit  string
		grams float64
	}{
		{3.5, "g", 3.5},
		{3.5, "G", 3.5},
		{1000, "mg", 1},
		{1, "oz", 28.3495},
		{1, "kg", 1000},
		{2, "ml", 2},
	}
	for _, tc := range cases {
		grams, ok := ToGrams(tc.value, tc.unit)
		require.True(t, ok, "unit %q", tc.unit)
		assert.InDelta(t, tc.grams, grams, 0.001)
	}

	t.Run("unknown unit reports not ok", func(t *testing.T) {
		_, ok := ToGrams(3, "bushels")
		assert.False(t, ok)
	})
}
