package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/sage/pkg/logging"
	"github.com/Ramsey-B/sage/pkg/manifest"
	"github.com/Ramsey-B/sage/pkg/matching"
	"github.com/Ramsey-B/sage/pkg/models"
)

// memoryStore serves a catalog snapshot from memory so the whole match
// pipeline runs in-process
type memoryStore struct {
	records []models.CatalogRecord
}

func (m *memoryStore) GetAllRecords(ctx context.Context, tenantID string) ([]models.CatalogRecord, error) {
	out := make([]models.CatalogRecord, 0, len(m.records))
	for _, record := range m.records {
		if record.TenantID == tenantID {
			out = append(out, record)
		}
	}
	return out, nil
}

func strPtr(s string) *string { return &s }

func seedCatalog() []models.CatalogRecord {
	now := time.Now()
	return []models.CatalogRecord{
		{
			ID: "cat-1", TenantID: "tenant-1",
			Name: "Blue Dream Flower 3.5g", Vendor: "Glass House Farms",
			Strain: strPtr("Blue Dream"), ProductType: strPtr("flower"),
			UpdatedAt: now,
		},
		{
			ID: "cat-2", TenantID: "tenant-1",
			Name: "OG Kush Cartridge 1g", Vendor: "Stiiizy",
			Strain: strPtr("OG Kush"), ProductType: strPtr("cartridge"),
			UpdatedAt: now,
		},
		{
			ID: "cat-3", TenantID: "tenant-1",
			Name: "Watermelon Gummies 100mg", Vendor: "Kiva Confections",
			Brand: strPtr("Camino"), ProductType: strPtr("edible"),
			UpdatedAt: now,
		},
		{
			ID: "cat-4", TenantID: "tenant-2",
			Name: "Blue Dream Flower 3.5g", Vendor: "Glass House Farms",
			UpdatedAt: now,
		},
	}
}

func newPipeline(t *testing.T) *matching.Orchestrator {
	t.Helper()

	store := &memoryStore{records: seedCatalog()}
	vendors := matching.NewVendorResolver(nil)
	similarity := matching.NewSimilarityScorer(matching.NewScorer(), vendors, matching.DefaultSimilarityConfig())
	cache := matching.NewMatchCache(matching.DefaultMatchCacheConfig(), matching.RealClock())

	return matching.NewOrchestrator(logging.NewNop(), store, vendors, similarity, cache, matching.OrchestratorConfig{Workers: 2})
}

func TestManifestMatchFlow(t *testing.T) {
	orchestrator := newPipeline(t)

	// raw vendor rows exactly as a manifest feed would deliver them
	rows := []map[string]any{
		{
			"Product Name": "blue dream flower 3.5G",
			"Distributor":  "Glass House Farms",
			"Cultivar":     "Blue Dream",
		},
		{
			"item":   map[string]any{"name": "OG Kush Cart 1g"},
			"vendor": "Stiiizy",
		},
		{
			"Item Name": "Camino Watermelon Gummies",
			"Supplier":  "KSS",
			"Category":  "Edibles",
		},
	}

	items := manifest.CanonicalizeRows(rows, "")
	require.Len(t, items, 3)
	assert.Equal(t, "blue dream flower 3.5G", items[0].Name)
	assert.Equal(t, "OG Kush Cart 1g", items[1].Name)

	response, err := orchestrator.MatchBatch(context.Background(), "tenant-1", items)
	require.NoError(t, err)
	require.Len(t, response.Results, 3)

	t.Run("exact row lands on its record", func(t *testing.T) {
		results := response.Results[0]
		require.NotEmpty(t, results)
		assert.Equal(t, "cat-1", results[0].Record.ID)
		assert.Equal(t, matching.StrategyExact, results[0].Strategy)
		assert.Equal(t, models.TierHigh, results[0].Tier)
	})

	t.Run("abbreviated name still resolves within the vendor", func(t *testing.T) {
		results := response.Results[1]
		require.NotEmpty(t, results)
		assert.Equal(t, "cat-2", results[0].Record.ID)
		assert.False(t, results[0].CrossVendor)
	})

	t.Run("vendor alias and brand carry a weak name", func(t *testing.T) {
		results := response.Results[2]
		require.NotEmpty(t, results)
		assert.Equal(t, "cat-3", results[0].Record.ID)
	})

	t.Run("tenants never see each other's catalog", func(t *testing.T) {
		for _, results := range response.Results {
			for _, result := range results {
				assert.NotEqual(t, "cat-4", result.Record.ID)
			}
		}
	})
}

func TestManifestMatchFlowRebuild(t *testing.T) {
	store := &memoryStore{records: seedCatalog()}
	vendors := matching.NewVendorResolver(nil)
	similarity := matching.NewSimilarityScorer(matching.NewScorer(), vendors, matching.DefaultSimilarityConfig())
	cache := matching.NewMatchCache(matching.DefaultMatchCacheConfig(), matching.RealClock())
	orchestrator := matching.NewOrchestrator(logging.NewNop(), store, vendors, similarity, cache, matching.OrchestratorConfig{Workers: 2})

	// a brand-new SKU code that resembles nothing in the catalog
	item := models.InboundItem{Name: "ZZQ-VVW-901"}

	first, err := orchestrator.MatchBatch(context.Background(), "tenant-1", []models.InboundItem{item})
	require.NoError(t, err)
	require.Empty(t, first.Results[0], "record not in catalog yet")

	// catalog sync adds the record; a rebuild must pick it up
	store.records = append(store.records, models.CatalogRecord{
		ID: "cat-5", TenantID: "tenant-1",
		Name: "ZZQ-VVW-901", Vendor: "Glass House Farms",
		UpdatedAt: time.Now(),
	})
	_, err = orchestrator.RebuildIndex(context.Background(), "tenant-1")
	require.NoError(t, err)

	second, err := orchestrator.MatchBatch(context.Background(), "tenant-1", []models.InboundItem{item})
	require.NoError(t, err)
	require.NotEmpty(t, second.Results[0])
	assert.Equal(t, "cat-5", second.Results[0][0].Record.ID)
	assert.NotEqual(t, first.SnapshotVersion, second.SnapshotVersion)
}
