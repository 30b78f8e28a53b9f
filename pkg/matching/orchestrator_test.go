package matching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/sage/pkg/logging"
	"github.com/Ramsey-B/sage/pkg/models"
)

// fakeCatalogStore serves a fixed snapshot and counts loads
type fakeCatalogStore struct {
	records []models.CatalogRecord
	err     error
	calls   int
}

func (f *fakeCatalogStore) GetAllRecords(ctx context.Context, tenantID string) ([]models.CatalogRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func newTestOrchestrator(store *fakeCatalogStore) *Orchestrator {
	vendors := NewVendorResolver(nil)
	similarity := NewSimilarityScorer(NewScorer(), vendors, DefaultSimilarityConfig())
	cache := NewMatchCache(DefaultMatchCacheConfig(), RealClock())
	return NewOrchestrator(logging.NewNop(), store, vendors, similarity, cache, OrchestratorConfig{Workers: 2})
}

func catalogFixture() []models.CatalogRecord {
	now := time.Now()
	return []models.CatalogRecord{
		{ID: "r1", TenantID: "t1", Name: "Blue Dream Flower 3.5g", Vendor: "Glass House Farms", UpdatedAt: now},
		{ID: "r2", TenantID: "t1", Name: "Blue Dream Flower 3.5g", Vendor: "Kiva Confections", UpdatedAt: now},
		{ID: "r3", TenantID: "t1", Name: "OG Kush Cartridge 1g", Vendor: "Stiiizy", UpdatedAt: now},
		{ID: "r4", TenantID: "t1", Name: "Sour Diesel Preroll 2pk", Vendor: "Glass House Brands", UpdatedAt: now},
	}
}

func TestOrchestratorRebuildIndex(t *testing.T) {
	store := &fakeCatalogStore{records: catalogFixture()}
	o := newTestOrchestrator(store)

	idx, err := o.RebuildIndex(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, 4, idx.Size())
	assert.Same(t, idx, o.Index("t1"))

	t.Run("store failure propagates", func(t *testing.T) {
		failing := &fakeCatalogStore{err: errors.New("connection refused")}
		_, err := newTestOrchestrator(failing).RebuildIndex(context.Background(), "t1")
		assert.Error(t, err)
	})

	t.Run("tenants get separate snapshots", func(t *testing.T) {
		assert.Nil(t, o.Index("t2"))
	})
}

func TestOrchestratorMatchBatch(t *testing.T) {
	store := &fakeCatalogStore{records: catalogFixture()}
	o := newTestOrchestrator(store)

	t.Run("builds the index lazily on first batch", func(t *testing.T) {
		response, err := o.MatchBatch(context.Background(), "t1", []models.InboundItem{
			{Name: "Blue Dream Flower 3.5g", Vendor: "Glass House Farms"},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, store.calls)
		require.Len(t, response.Results, 1)
		assert.NotEmpty(t, response.SnapshotVersion)
	})

	t.Run("results come back in input order", func(t *testing.T) {
		items := []models.InboundItem{
			{Name: "OG Kush Cartridge 1g", Vendor: "Stiiizy"},
			{},
			{Name: "Sour Diesel Preroll 2pk", Vendor: "Glass House"},
		}
		response, err := o.MatchBatch(context.Background(), "t1", items)
		require.NoError(t, err)
		require.Len(t, response.Results, 3)

		require.NotEmpty(t, response.Results[0])
		assert.Equal(t, "r3", response.Results[0][0].Record.ID)

		assert.Empty(t, response.Results[1], "empty item matches nothing")

		require.NotEmpty(t, response.Results[2])
		assert.Equal(t, "r4", response.Results[2][0].Record.ID)
	})

	t.Run("no catalog means the batch cannot run", func(t *testing.T) {
		empty := &fakeCatalogStore{}
		_, err := newTestOrchestrator(empty).MatchBatch(context.Background(), "t1", []models.InboundItem{{Name: "x"}})
		assert.Error(t, err)
	})
}

func TestOrchestratorStrategyPrecedence(t *testing.T) {
	store := &fakeCatalogStore{records: catalogFixture()}
	o := newTestOrchestrator(store)
	_, err := o.RebuildIndex(context.Background(), "t1")
	require.NoError(t, err)

	match := func(item models.InboundItem) []models.MatchResult {
		response, err := o.MatchBatch(context.Background(), "t1", []models.InboundItem{item})
		require.NoError(t, err)
		require.Len(t, response.Results, 1)
		return response.Results[0]
	}

	t.Run("exact name wins first", func(t *testing.T) {
		results := match(models.InboundItem{Name: "blue dream flower 3.5G", Vendor: "Glass House Farms"})
		require.NotEmpty(t, results)
		assert.Equal(t, StrategyExact, results[0].Strategy)
		assert.Equal(t, 1.0, results[0].Score)
	})

	t.Run("vendor fuzzy stays inside the vendor", func(t *testing.T) {
		results := match(models.InboundItem{Name: "Blue Drem Flower", Vendor: "Glass House Farms"})
		require.NotEmpty(t, results)
		assert.Equal(t, StrategyVendorFuzzy, results[0].Strategy)
		for _, result := range results {
			assert.Equal(t, "r1", result.Record.ID, "other vendors' records must not appear")
			assert.False(t, result.CrossVendor)
		}
	})

	t.Run("unknown vendor falls through to cross-vendor", func(t *testing.T) {
		results := match(models.InboundItem{Name: "Blue Drem Flower", Vendor: "Nowhere Distro"})
		require.NotEmpty(t, results)
		assert.Equal(t, StrategyCrossVendor, results[0].Strategy)
		assert.True(t, results[0].CrossVendor)
	})

	t.Run("no vendor at all still cross-matches", func(t *testing.T) {
		results := match(models.InboundItem{Name: "Blue Drem Flower"})
		require.NotEmpty(t, results)
		assert.Equal(t, StrategyCrossVendor, results[0].Strategy)
	})

	t.Run("nothing plausible means no match, not an error", func(t *testing.T) {
		results := match(models.InboundItem{Name: "qqqq zzzz xxxx"})
		assert.Empty(t, results)
	})
}

func TestOrchestratorResultRanking(t *testing.T) {
	records := catalogFixture()
	store := &fakeCatalogStore{records: records}
	o := newTestOrchestrator(store)
	_, err := o.RebuildIndex(context.Background(), "t1")
	require.NoError(t, err)

	response, err := o.MatchBatch(context.Background(), "t1", []models.InboundItem{
		{Name: "Blue Dream Flower 3.5g"},
	})
	require.NoError(t, err)

	results := response.Results[0]
	require.GreaterOrEqual(t, len(results), 2)
	for i := 1; i < len(results); i++ {
		if results[i-1].Score == results[i].Score {
			assert.Less(t, results[i-1].Record.ID, results[i].Record.ID, "ties break on record ID")
		} else {
			assert.Greater(t, results[i-1].Score, results[i].Score, "results must be ranked by score")
		}
	}
}

func TestOrchestratorCaching(t *testing.T) {
	store := &fakeCatalogStore{records: catalogFixture()}
	o := newTestOrchestrator(store)
	_, err := o.RebuildIndex(context.Background(), "t1")
	require.NoError(t, err)

	item := models.InboundItem{Name: "OG Kush Cartridge 1g", Vendor: "Stiiizy"}

	first, err := o.MatchBatch(context.Background(), "t1", []models.InboundItem{item})
	require.NoError(t, err)
	second, err := o.MatchBatch(context.Background(), "t1", []models.InboundItem{item})
	require.NoError(t, err)
	assert.Equal(t, first.Results, second.Results)

	report := o.GetPerformanceReport()
	assert.Equal(t, int64(1), report.StrategyCounts[strategyCacheHit])

	t.Run("rebuild invalidates the tenant's entries", func(t *testing.T) {
		_, err := o.RebuildIndex(context.Background(), "t1")
		require.NoError(t, err)

		report := o.GetPerformanceReport()
		assert.Equal(t, 0, report.CacheSize)
	})
}

func TestOrchestratorInvalidateCache(t *testing.T) {
	store := &fakeCatalogStore{records: catalogFixture()}
	o := newTestOrchestrator(store)

	_, err := o.MatchBatch(context.Background(), "t1", []models.InboundItem{
		{Name: "Blue Dream Flower 3.5g"},
		{Name: "OG Kush Cartridge 1g"},
	})
	require.NoError(t, err)

	t.Run("pattern clears matching keys", func(t *testing.T) {
		removed := o.InvalidateCache("t1:")
		assert.Equal(t, 2, removed)
	})

	t.Run("empty pattern clears everything", func(t *testing.T) {
		_, err := o.MatchBatch(context.Background(), "t1", []models.InboundItem{{Name: "Blue Dream Flower 3.5g"}})
		require.NoError(t, err)
		removed := o.InvalidateCache("")
		assert.Equal(t, 1, removed)
		assert.Equal(t, 0, o.GetPerformanceReport().CacheSize)
	})
}

func TestOrchestratorPerformanceReport(t *testing.T) {
	store := &fakeCatalogStore{records: catalogFixture()}
	o := newTestOrchestrator(store)

	_, err := o.MatchBatch(context.Background(), "t1", []models.InboundItem{
		{Name: "Blue Dream Flower 3.5g", Vendor: "Glass House Farms"},
		{Name: "OG Kush Cartridge 1g", Vendor: "Stiiizy"},
	})
	require.NoError(t, err)

	report := o.GetPerformanceReport()
	assert.Equal(t, int64(1), report.TotalBatches)
	assert.Equal(t, int64(2), report.TotalItems)
	assert.Equal(t, int64(2), report.StrategyCounts[StrategyExact])
}
