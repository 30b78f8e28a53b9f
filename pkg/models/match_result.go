package models

// MatchType labels which kind of evidence produced a match
type MatchType string

const (
	MatchTypeExact         MatchType = "exact"         // Identical normalized names
	MatchTypeVendorExact   MatchType = "vendor_exact"  // Identical names within a resolved vendor
	MatchTypeFuzzy         MatchType = "fuzzy"         // High combined text similarity
	MatchTypeAttribute     MatchType = "attribute"     // Contextual fields carried the match
	MatchTypeStrainOnly    MatchType = "strain_only"   // Only the strain agreed
	MatchTypeComprehensive MatchType = "comprehensive" // Lenient pairwise field fallback
)

// ConfidenceTier buckets a combined score into an ordered trust level
type ConfidenceTier string

const (
	TierHigh   ConfidenceTier = "high"
	TierMedium ConfidenceTier = "medium"
	TierLow    ConfidenceTier = "low"
)

// TierRank returns the ordering of a tier (low < medium < high)
func TierRank(t ConfidenceTier) int {
	switch t {
	case TierHigh:
		return 2
	case TierMedium:
		return 1
	default:
		return 0
	}
}

// MatchResult is one ranked candidate for an inbound item. Created fresh per
// query; the orchestrator is the only writer while assembling the ranked list.
type MatchResult struct {
	Record       *CatalogRecord     `json:"record"`
	Score        float64            `json:"score"` // 0.0 - 1.0
	Tier         ConfidenceTier     `json:"tier"`
	MatchType    MatchType          `json:"match_type"`
	Strategy     string             `json:"strategy"`
	CrossVendor  bool               `json:"cross_vendor"` // Lower-trust fallback path
	SignalScores map[string]float64 `json:"signal_scores,omitempty"`
}

// BatchMatchRequest is the request to match a batch of inbound items
type BatchMatchRequest struct {
	Items []InboundItem `json:"items" validate:"required,min=1"`
}

// BatchMatchResponse carries one ranked result list per inbound item,
// in input order. An empty list is a valid "no match" outcome, not an error.
type BatchMatchResponse struct {
	SnapshotVersion string          `json:"snapshot_version"`
	Results         [][]MatchResult `json:"results"`
}
