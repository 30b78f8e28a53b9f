package database

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONBScan(t *testing.T) {
	t.Run("scans a jsonb column into the typed value", func(t *testing.T) {
		var col JSONB[map[string]string]
		require.NoError(t, col.Scan([]byte(`{"thc":"22%"}`)))
		assert.Equal(t, map[string]string{"thc": "22%"}, col.GetValue())
	})

	t.Run("null column yields the zero value", func(t *testing.T) {
		var col JSONB[json.RawMessage]
		require.NoError(t, col.Scan(nil))
		assert.Nil(t, col.GetValue())
	})

	t.Run("non-byte source is an error", func(t *testing.T) {
		var col JSONB[map[string]string]
		assert.Error(t, col.Scan(42))
	})
}

func TestJSONBValue(t *testing.T) {
	col := JSONB[json.RawMessage]{Data: json.RawMessage(`{"lineage":"indica"}`)}
	v, err := col.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"lineage":"indica"}`, string(v.([]byte)))
}

func TestJSONBMarshalUnwraps(t *testing.T) {
	type payload struct {
		Attributes JSONB[json.RawMessage] `json:"attributes"`
	}

	b, err := json.Marshal(payload{Attributes: JSONB[json.RawMessage]{Data: json.RawMessage(`{"batch":"A12"}`)}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"attributes":{"batch":"A12"}}`, string(b))

	var decoded payload
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.JSONEq(t, `{"batch":"A12"}`, string(decoded.Attributes.GetValue()))
}
