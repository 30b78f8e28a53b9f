package matching

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/Ramsey-B/sage/pkg/fingerprint"
	"github.com/Ramsey-B/sage/pkg/models"
	"github.com/Ramsey-B/sage/pkg/normalizers"
)

// CandidateIndex holds four O(1)-lookup structures built from one catalog
// snapshot. Read-only after construction; rebuilds produce a whole new index
// that is published atomically through an IndexHolder.
type CandidateIndex struct {
	version string

	exactName     map[string][]*models.CatalogRecord // case-folded name
	vendorName    map[string][]*models.CatalogRecord // case-folded name | canonical vendor
	keyTerms      map[string][]*models.CatalogRecord // token -> records
	normalized    map[string][]*models.CatalogRecord // normalized-name buckets
	vendorBuckets map[string][]*models.CatalogRecord // canonical vendor -> records

	records []*models.CatalogRecord
}

// BuildIndex constructs a CandidateIndex from a catalog snapshot. Records with
// no usable name are skipped; a non-empty snapshot with zero usable records is
// treated as malformed and aborts the build.
func BuildIndex(snapshot []models.CatalogRecord, vendors *VendorResolver) (*CandidateIndex, error) {
	if vendors == nil {
		return nil, fmt.Errorf("build index: vendor resolver is required")
	}

	idx := &CandidateIndex{
		version:       fingerprint.Snapshot(snapshot),
		exactName:     make(map[string][]*models.CatalogRecord, len(snapshot)),
		vendorName:    make(map[string][]*models.CatalogRecord, len(snapshot)),
		keyTerms:      make(map[string][]*models.CatalogRecord),
		normalized:    make(map[string][]*models.CatalogRecord, len(snapshot)),
		vendorBuckets: make(map[string][]*models.CatalogRecord),
		records:       make([]*models.CatalogRecord, 0, len(snapshot)),
	}

	for i := range snapshot {
		record := &snapshot[i]
		if strings.TrimSpace(record.Name) == "" {
			continue
		}
		idx.insert(record, vendors)
	}

	if len(snapshot) > 0 && len(idx.records) == 0 {
		return nil, fmt.Errorf("build index: snapshot has %d records, none with a usable name", len(snapshot))
	}

	return idx, nil
}

func (idx *CandidateIndex) insert(record *models.CatalogRecord, vendors *VendorResolver) {
	idx.records = append(idx.records, record)

	folded := foldName(record.Name)
	idx.exactName[folded] = append(idx.exactName[folded], record)

	canonicalVendor := vendors.Canonical(record.Vendor)
	if canonicalVendor != "" {
		vendorKey := folded + "|" + canonicalVendor
		idx.vendorName[vendorKey] = append(idx.vendorName[vendorKey], record)
		idx.vendorBuckets[canonicalVendor] = append(idx.vendorBuckets[canonicalVendor], record)
	}

	for _, term := range normalizers.KeyTerms(record.Name) {
		idx.keyTerms[term.Token] = append(idx.keyTerms[term.Token], record)
	}

	if normalized := normalizers.NormalizeProductName(record.Name); normalized != "" {
		idx.normalized[normalized] = append(idx.normalized[normalized], record)
	}
}

// Version is the snapshot fingerprint; callers use it to detect staleness
func (idx *CandidateIndex) Version() string {
	return idx.version
}

// Size returns the number of indexed records
func (idx *CandidateIndex) Size() int {
	return len(idx.records)
}

// Records returns all indexed records. Callers must not mutate them.
func (idx *CandidateIndex) Records() []*models.CatalogRecord {
	return idx.records
}

// FindExact returns records whose case-folded name equals the input's
func (idx *CandidateIndex) FindExact(name string) []*models.CatalogRecord {
	return idx.exactName[foldName(name)]
}

// FindVendorExact returns records whose case-folded name matches within the
// given vendor's resolved bucket
func (idx *CandidateIndex) FindVendorExact(name, vendor string, vendors *VendorResolver) []*models.CatalogRecord {
	canonical := vendors.Canonical(vendor)
	if canonical == "" {
		return nil
	}
	return idx.vendorName[foldName(name)+"|"+canonical]
}

// FindByKeyTerms returns the deduplicated union of records sharing any of the
// given key terms. Cost is O(k) in matching records, never O(n) over the
// catalog.
func (idx *CandidateIndex) FindByKeyTerms(terms []string) []*models.CatalogRecord {
	seen := make(map[string]struct{})
	var results []*models.CatalogRecord
	for _, term := range terms {
		for _, record := range idx.keyTerms[term] {
			if _, dup := seen[record.ID]; dup {
				continue
			}
			seen[record.ID] = struct{}{}
			results = append(results, record)
		}
	}
	return results
}

// FindByNormalizedSimilarity returns records whose normalized-name bucket key
// is within the given Levenshtein similarity of the input's normalized name.
// Bounded by bucket count, not catalog size.
func (idx *CandidateIndex) FindByNormalizedSimilarity(name string, threshold float64, scorer *Scorer) []*models.CatalogRecord {
	normalized := normalizers.NormalizeProductName(name)
	if normalized == "" {
		return nil
	}

	var results []*models.CatalogRecord
	for key, bucket := range idx.normalized {
		if scorer.Levenshtein(normalized, key) >= threshold {
			results = append(results, bucket...)
		}
	}
	return results
}

// VendorCandidates returns records belonging to any vendor bucket the
// resolver considers the same entity as the given vendor.
func (idx *CandidateIndex) VendorCandidates(vendor string, vendors *VendorResolver) []*models.CatalogRecord {
	canonical := vendors.Canonical(vendor)
	if canonical == "" {
		return nil
	}

	// Alias resolution can miss; scan bucket keys with the full algorithm.
	// Bounded by distinct vendor count, not catalog size.
	keys := make([]string, 0, len(idx.vendorBuckets))
	for key := range idx.vendorBuckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var results []*models.CatalogRecord
	for _, key := range keys {
		if key == canonical || vendors.IsSameVendor(vendor, key) {
			results = append(results, idx.vendorBuckets[key]...)
		}
	}
	return results
}

// foldName is the exact-match key: case-folded, whitespace-collapsed
func foldName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// IndexHolder publishes CandidateIndex rebuilds atomically so concurrent
// readers see either the fully-old or fully-new index, never partial state.
type IndexHolder struct {
	current atomic.Pointer[CandidateIndex]
}

// NewIndexHolder creates an empty holder
func NewIndexHolder() *IndexHolder {
	return &IndexHolder{}
}

// Load returns the current index, or nil before the first publish
func (h *IndexHolder) Load() *CandidateIndex {
	return h.current.Load()
}

// Publish swaps in a fully-built index
func (h *IndexHolder) Publish(idx *CandidateIndex) {
	h.current.Store(idx)
}
