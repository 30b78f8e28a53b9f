package fingerprint

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Ramsey-B/sage/pkg/models"
)

func TestSnapshot(t *testing.T) {
	now := time.Now()
	records := []models.CatalogRecord{
		{ID: "r1", UpdatedAt: now},
		{ID: "r2", UpdatedAt: now},
	}

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, Snapshot(records), Snapshot(records))
	})

	t.Run("order independent", func(t *testing.T) {
		reversed := []models.CatalogRecord{records[1], records[0]}
		assert.Equal(t, Snapshot(records), Snapshot(reversed))
	})

	t.Run("update time changes the fingerprint", func(t *testing.T) {
		touched := []models.CatalogRecord{
			{ID: "r1", UpdatedAt: now.Add(time.Second)},
			{ID: "r2", UpdatedAt: now},
		}
		assert.NotEqual(t, Snapshot(records), Snapshot(touched))
	})

	t.Run("membership changes the fingerprint", func(t *testing.T) {
		assert.NotEqual(t, Snapshot(records), Snapshot(records[:1]))
	})

	t.Run("empty snapshot has a stable fingerprint", func(t *testing.T) {
		assert.Equal(t, Snapshot(nil), Snapshot([]models.CatalogRecord{}))
	})
}

func TestHasChanged(t *testing.T) {
	assert.False(t, HasChanged("abc", "abc"))
	assert.True(t, HasChanged("abc", "def"))
}
