package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	row := map[string]any{
		"name": "Blue Dream",
		"product": map[string]any{
			"name":  "Blue Dream 3.5g",
			"price": 12.5,
		},
		"variants": []any{
			map[string]any{"weight": "3.5g"},
			map[string]any{"weight": "7g"},
		},
	}

	t.Run("top-level key", func(t *testing.T) {
		value, err := Extract(row, "name")
		require.NoError(t, err)
		assert.Equal(t, "Blue Dream", value)
	})

	t.Run("nested path", func(t *testing.T) {
		value, err := Extract(row, "product.name")
		require.NoError(t, err)
		assert.Equal(t, "Blue Dream 3.5g", value)
	})

	t.Run("array index", func(t *testing.T) {
		value, err := Extract(row, "variants[1].weight")
		require.NoError(t, err)
		assert.Equal(t, "7g", value)
	})

	t.Run("missing key is nil, not an error", func(t *testing.T) {
		value, err := Extract(row, "sku")
		require.NoError(t, err)
		assert.Nil(t, value)
	})

	t.Run("missing nested key short-circuits", func(t *testing.T) {
		value, err := Extract(row, "warehouse.location.aisle")
		require.NoError(t, err)
		assert.Nil(t, value)
	})

	t.Run("out-of-range index is nil", func(t *testing.T) {
		value, err := Extract(row, "variants[9].weight")
		require.NoError(t, err)
		assert.Nil(t, value)
	})

	t.Run("indexing a non-array is an error", func(t *testing.T) {
		_, err := Extract(row, "name[0]")
		assert.Error(t, err)
	})

	t.Run("empty path returns the input", func(t *testing.T) {
		value, err := Extract(row, "")
		require.NoError(t, err)
		assert.Equal(t, row, value)
	})
}

func TestExtractString(t *testing.T) {
	row := map[string]any{
		"name":  "  Blue Dream  ",
		"count": 12.0,
		"ok":    true,
	}

	t.Run("trims strings", func(t *testing.T) {
		value, err := ExtractString(row, "name")
		require.NoError(t, err)
		assert.Equal(t, "Blue Dream", value)
	})

	t.Run("renders numbers", func(t *testing.T) {
		value, err := ExtractString(row, "count")
		require.NoError(t, err)
		assert.Equal(t, "12", value)
	})

	t.Run("renders booleans", func(t *testing.T) {
		value, err := ExtractString(row, "ok")
		require.NoError(t, err)
		assert.Equal(t, "true", value)
	})

	t.Run("missing is empty", func(t *testing.T) {
		value, err := ExtractString(row, "missing")
		require.NoError(t, err)
		assert.Equal(t, "", value)
	})
}

func TestExtractFloat(t *testing.T) {
	row := map[string]any{
		"price":  12.5,
		"count":  3,
		"weight": " 3.5 ",
		"name":   "Blue Dream",
	}

	t.Run("float value", func(t *testing.T) {
		value, err := ExtractFloat(row, "price")
		require.NoError(t, err)
		require.NotNil(t, value)
		assert.Equal(t, 12.5, *value)
	})

	t.Run("int value", func(t *testing.T) {
		value, err := ExtractFloat(row, "count")
		require.NoError(t, err)
		require.NotNil(t, value)
		assert.Equal(t, 3.0, *value)
	})

	t.Run("numeric strings coerce", func(t *testing.T) {
		value, err := ExtractFloat(row, "weight")
		require.NoError(t, err)
		require.NotNil(t, value)
		assert.Equal(t, 3.5, *value)
	})

	t.Run("non-numeric strings error", func(t *testing.T) {
		_, err := ExtractFloat(row, "name")
		assert.Error(t, err)
	})

	t.Run("missing is nil without error", func(t *testing.T) {
		value, err := ExtractFloat(row, "missing")
		require.NoError(t, err)
		assert.Nil(t, value)
	})
}
