// Package matching implements product catalog matching with a clear separation:
// - Index = facts (precomputed, normalized lookup structures over one snapshot)
// - Strategies = logic (ordered from cheapest/most-precise to broadest fallback)
package matching

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/sage/pkg/metrics"
	"github.com/Ramsey-B/sage/pkg/models"
	"github.com/Ramsey-B/sage/pkg/normalizers"
	"github.com/Ramsey-B/sage/pkg/tracing"
)

// CatalogStore supplies the catalog snapshots the orchestrator indexes.
// The repository layer implements it against postgres.
type CatalogStore interface {
	GetAllRecords(ctx context.Context, tenantID string) ([]models.CatalogRecord, error)
}

// Strategy names, in execution order
const (
	StrategyExact         = "exact"
	StrategyVendorExact   = "vendor_exact"
	StrategyVendorFuzzy   = "vendor_fuzzy"
	StrategyCrossVendor   = "cross_vendor_fuzzy"
	StrategyAttribute     = "attribute"
	StrategyComprehensive = "comprehensive"
	strategyEmptyInput    = "empty_input"
	strategyCacheHit      = "cache_hit"
)

// OrchestratorConfig contains configuration for the match orchestrator
type OrchestratorConfig struct {
	VendorFuzzyThreshold   float64 // Minimum score on the same-vendor fuzzy pass (default: 0.60)
	CrossVendorThreshold   float64 // Minimum score on the cross-vendor pass (default: 0.35)
	AttributeThreshold     float64 // Minimum score on the attribute pass (default: 0.50)
	ComprehensiveThreshold float64 // Minimum score on the last-resort scan (default: 0.15)
	MaxResults             int     // Maximum ranked results per item (default: 10)
	Workers                int     // Batch worker pool size (default: GOMAXPROCS)
	CacheTTL               time.Duration
}

// DefaultOrchestratorConfig returns sensible defaults
func DefaultOrchestratorConfig() OrchestratorConfig {
	return OrchestratorConfig{
		VendorFuzzyThreshold:   0.60,
		CrossVendorThreshold:   0.35,
		AttributeThreshold:     0.50,
		ComprehensiveThreshold: 0.15,
		MaxResults:             10,
		Workers:                runtime.GOMAXPROCS(0),
		CacheTTL:               5 * time.Minute,
	}
}

// Orchestrator runs the ordered strategy chain for each inbound item and owns
// the per-tenant index snapshots. All public methods are safe for concurrent use.
type Orchestrator struct {
	log        ectologger.Logger
	store      CatalogStore
	vendors    *VendorResolver
	similarity *SimilarityScorer
	cache      *MatchCache
	cfg        OrchestratorConfig

	holdersMu sync.RWMutex
	holders   map[string]*IndexHolder

	statsMu        sync.Mutex
	totalBatches   int64
	totalItems     int64
	totalLatency   time.Duration
	strategyCounts map[string]int64
}

// NewOrchestrator creates a match orchestrator
func NewOrchestrator(
	log ectologger.Logger,
	store CatalogStore,
	vendors *VendorResolver,
	similarity *SimilarityScorer,
	cache *MatchCache,
	cfg OrchestratorConfig,
) *Orchestrator {
	defaults := DefaultOrchestratorConfig()
	if cfg.VendorFuzzyThreshold <= 0 {
		cfg.VendorFuzzyThreshold = defaults.VendorFuzzyThreshold
	}
	if cfg.CrossVendorThreshold <= 0 {
		cfg.CrossVendorThreshold = defaults.CrossVendorThreshold
	}
	if cfg.AttributeThreshold <= 0 {
		cfg.AttributeThreshold = defaults.AttributeThreshold
	}
	if cfg.ComprehensiveThreshold <= 0 {
		cfg.ComprehensiveThreshold = defaults.ComprehensiveThreshold
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaults.MaxResults
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaults.Workers
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaults.CacheTTL
	}

	return &Orchestrator{
		log:            log,
		store:          store,
		vendors:        vendors,
		similarity:     similarity,
		cache:          cache,
		cfg:            cfg,
		holders:        make(map[string]*IndexHolder),
		strategyCounts: make(map[string]int64),
	}
}

// RebuildIndex loads the tenant's catalog, builds a fresh index, and publishes
// it atomically. In-flight matches keep reading the previous snapshot until
// the publish; entries cached against the old snapshot are invalidated.
func (o *Orchestrator) RebuildIndex(ctx context.Context, tenantID string) (*CandidateIndex, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.Orchestrator.RebuildIndex")
	defer span.End()

	log := o.log.WithContext(ctx).WithField("tenant_id", tenantID)

	records, err := o.store.GetAllRecords(ctx, tenantID)
	if err != nil {
		log.WithError(err).Error("failed to load catalog records for index rebuild")
		return nil, err
	}

	idx, err := BuildIndex(records, o.vendors)
	if err != nil {
		log.WithError(err).Error("failed to build candidate index")
		return nil, httperror.WrapError(http.StatusUnprocessableEntity, err)
	}

	o.holder(tenantID).Publish(idx)
	o.cache.InvalidatePattern(tenantID + ":")
	metrics.IndexRebuilds.Inc()
	metrics.IndexSize.WithLabelValues(tenantID).Set(float64(idx.Size()))

	log.WithFields(map[string]any{
		"records": idx.Size(),
		"version": idx.Version(),
	}).Info("published new catalog index snapshot")

	return idx, nil
}

// MatchBatch matches a batch of inbound items against the tenant's published
// snapshot. Results come back in input order, one ranked list per item; an
// item that matches nothing gets an empty list, never an error for the batch.
func (o *Orchestrator) MatchBatch(ctx context.Context, tenantID string, items []models.InboundItem) (*models.BatchMatchResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.Orchestrator.MatchBatch")
	defer span.End()

	start := time.Now()
	log := o.log.WithContext(ctx).WithFields(map[string]any{
		"tenant_id": tenantID,
		"items":     len(items),
	})

	idx := o.holder(tenantID).Load()
	if idx == nil {
		if _, err := o.RebuildIndex(ctx, tenantID); err != nil {
			return nil, err
		}
		idx = o.holder(tenantID).Load()
	}
	if idx == nil || idx.Size() == 0 {
		return nil, httperror.NewHTTPErrorf(http.StatusServiceUnavailable, "no catalog index available for tenant %s", tenantID)
	}

	results := make([][]models.MatchResult, len(items))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < o.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = o.matchItem(ctx, idx, tenantID, items[i])
			}
		}()
	}
	for i := range items {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	elapsed := time.Since(start)
	o.recordBatch(len(items), elapsed)
	metrics.BatchDuration.Observe(elapsed.Seconds())

	log.WithFields(map[string]any{
		"duration_ms": elapsed.Milliseconds(),
		"version":     idx.Version(),
	}).Info("matched inbound batch")

	return &models.BatchMatchResponse{
		SnapshotVersion: idx.Version(),
		Results:         results,
	}, nil
}

// matchItem walks the strategy chain and returns the first strategy's ranked
// hits. Empty items short-circuit to an empty list.
func (o *Orchestrator) matchItem(ctx context.Context, idx *CandidateIndex, tenantID string, item models.InboundItem) []models.MatchResult {
	if item.IsEmpty() {
		o.countStrategy(strategyEmptyInput)
		return []models.MatchResult{}
	}

	key := cacheKey(tenantID, idx.Version(), item)
	if cached, ok := o.cache.Get(key); ok {
		if results, ok := cached.([]models.MatchResult); ok {
			o.countStrategy(strategyCacheHit)
			metrics.CacheHits.Inc()
			return results
		}
	}
	metrics.CacheMisses.Inc()

	results := o.runStrategies(idx, item)
	o.cache.Set(key, results, o.cfg.CacheTTL)
	return results
}

func (o *Orchestrator) runStrategies(idx *CandidateIndex, item models.InboundItem) []models.MatchResult {
	// 1. Exact normalized name
	if records := idx.FindExact(item.Name); len(records) > 0 {
		if results := o.scoreCandidates(item, records, StrategyExact, true, 0); len(results) > 0 {
			return o.finish(StrategyExact, results)
		}
	}

	// 2. Exact name within a resolved vendor
	if item.Vendor != "" {
		if records := idx.FindVendorExact(item.Name, item.Vendor, o.vendors); len(records) > 0 {
			results := o.scoreCandidates(item, records, StrategyVendorExact, false, 0)
			for i := range results {
				results[i].MatchType = models.MatchTypeVendorExact
			}
			if len(results) > 0 {
				return o.finish(StrategyVendorExact, results)
			}
		}
	}

	// 3. Fuzzy within the vendor's catalog slice
	if item.Vendor != "" {
		records := idx.VendorCandidates(item.Vendor, o.vendors)
		if results := o.scoreCandidates(item, records, StrategyVendorFuzzy, false, o.cfg.VendorFuzzyThreshold); len(results) > 0 {
			return o.finish(StrategyVendorFuzzy, results)
		}
	}

	// 4. Fuzzy across all vendors, lower bar, flagged cross-vendor
	records := idx.FindByNormalizedSimilarity(item.Name, o.cfg.CrossVendorThreshold, o.similarity.scorer)
	if results := o.scoreCandidates(item, records, StrategyCrossVendor, true, o.cfg.CrossVendorThreshold); len(results) > 0 {
		return o.finish(StrategyCrossVendor, results)
	}

	// 5. Contextual fields over key-term candidates
	if terms := keyTermTokens(item); len(terms) > 0 {
		candidates := idx.FindByKeyTerms(terms)
		results := o.scoreCandidates(item, candidates, StrategyAttribute, true, o.cfg.AttributeThreshold)
		attributeOnly := results[:0]
		for _, r := range results {
			if r.MatchType == models.MatchTypeAttribute || r.MatchType == models.MatchTypeStrainOnly {
				attributeOnly = append(attributeOnly, r)
			}
		}
		if len(attributeOnly) > 0 {
			return o.finish(StrategyAttribute, attributeOnly)
		}
	}

	// 6. Last resort: lenient scan of the whole snapshot
	results := o.scoreCandidates(item, idx.Records(), StrategyComprehensive, true, o.cfg.ComprehensiveThreshold)
	for i := range results {
		results[i].MatchType = models.MatchTypeComprehensive
	}
	if len(results) > 0 {
		return o.finish(StrategyComprehensive, results)
	}

	o.countStrategy("no_match")
	return []models.MatchResult{}
}

// scoreCandidates scores every candidate, drops those below minScore, and
// ranks the rest (score desc, then record ID for a stable order).
func (o *Orchestrator) scoreCandidates(item models.InboundItem, candidates []*models.CatalogRecord, strategy string, allowCrossVendor bool, minScore float64) []models.MatchResult {
	results := make([]models.MatchResult, 0, len(candidates))
	for _, record := range candidates {
		result := o.similarity.Score(item, record, allowCrossVendor)
		if result.Score < minScore || result.Score == 0 {
			continue
		}
		result.Strategy = strategy
		results = append(results, result)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Record.ID < results[j].Record.ID
	})

	if len(results) > o.cfg.MaxResults {
		results = results[:o.cfg.MaxResults]
	}
	return results
}

func (o *Orchestrator) finish(strategy string, results []models.MatchResult) []models.MatchResult {
	o.countStrategy(strategy)
	for _, r := range results {
		metrics.MatchesTotal.WithLabelValues(strategy, string(r.Tier)).Inc()
	}
	return results
}

// InvalidateCache removes cached match results whose keys contain the pattern.
// An empty pattern clears everything.
func (o *Orchestrator) InvalidateCache(pattern string) int {
	if pattern == "" {
		stats := o.cache.Stats()
		o.cache.Clear()
		return stats.Size
	}
	return o.cache.InvalidatePattern(pattern)
}

// PerformanceReport summarizes orchestrator activity since startup
type PerformanceReport struct {
	TotalBatches   int64            `json:"total_batches"`
	TotalItems     int64            `json:"total_items"`
	AvgBatchMs     float64          `json:"avg_batch_ms"`
	CacheHitRate   float64          `json:"cache_hit_rate"`
	CacheSize      int              `json:"cache_size"`
	StrategyCounts map[string]int64 `json:"strategy_counts"`
}

// GetPerformanceReport returns a snapshot of match activity and cache health
func (o *Orchestrator) GetPerformanceReport() PerformanceReport {
	o.statsMu.Lock()
	defer o.statsMu.Unlock()

	counts := make(map[string]int64, len(o.strategyCounts))
	for k, v := range o.strategyCounts {
		counts[k] = v
	}

	var avgMs float64
	if o.totalBatches > 0 {
		avgMs = float64(o.totalLatency.Milliseconds()) / float64(o.totalBatches)
	}

	cacheStats := o.cache.Stats()
	return PerformanceReport{
		TotalBatches:   o.totalBatches,
		TotalItems:     o.totalItems,
		AvgBatchMs:     avgMs,
		CacheHitRate:   cacheStats.HitRate(),
		CacheSize:      cacheStats.Size,
		StrategyCounts: counts,
	}
}

// Index returns the currently published snapshot for a tenant, nil when none
func (o *Orchestrator) Index(tenantID string) *CandidateIndex {
	return o.holder(tenantID).Load()
}

func (o *Orchestrator) holder(tenantID string) *IndexHolder {
	o.holdersMu.RLock()
	h, ok := o.holders[tenantID]
	o.holdersMu.RUnlock()
	if ok {
		return h
	}

	o.holdersMu.Lock()
	defer o.holdersMu.Unlock()
	if h, ok := o.holders[tenantID]; ok {
		return h
	}
	h = NewIndexHolder()
	o.holders[tenantID] = h
	return h
}

func (o *Orchestrator) recordBatch(items int, elapsed time.Duration) {
	o.statsMu.Lock()
	defer o.statsMu.Unlock()
	o.totalBatches++
	o.totalItems += int64(items)
	o.totalLatency += elapsed
}

func (o *Orchestrator) countStrategy(strategy string) {
	o.statsMu.Lock()
	o.strategyCounts[strategy]++
	o.statsMu.Unlock()
	metrics.StrategySelections.WithLabelValues(strategy).Inc()
}

func keyTermTokens(item models.InboundItem) []string {
	parts := []string{item.Name}
	if item.Strain != "" {
		parts = append(parts, item.Strain)
	}
	tokens := []string{}
	seen := map[string]struct{}{}
	for _, p := range parts {
		for _, tok := range normalizers.Tokens(p) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

func cacheKey(tenantID, version string, item models.InboundItem) string {
	var weight string
	if item.WeightValue != nil {
		weight = fmt.Sprintf("%g%s", *item.WeightValue, item.WeightUnit)
	}
	return strings.Join([]string{
		tenantID, version, item.Name, item.Vendor, item.Brand,
		item.ProductType, item.Strain, weight,
	}, ":")
}
