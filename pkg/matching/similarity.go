package matching

import (
	"math"

	"github.com/Ramsey-B/sage/pkg/models"
	"github.com/Ramsey-B/sage/pkg/normalizers"
)

// SimilarityConfig holds the tier cutoffs and the cross-vendor score ceiling
type SimilarityConfig struct {
	HighTierThreshold     float64 `json:"high_tier_threshold"`
	MediumTierThreshold   float64 `json:"medium_tier_threshold"`
	VendorMismatchCeiling float64 `json:"vendor_mismatch_ceiling"`
}

// DefaultSimilarityConfig returns the production cutoffs
func DefaultSimilarityConfig() SimilarityConfig {
	return SimilarityConfig{
		HighTierThreshold:     0.65,
		MediumTierThreshold:   0.45,
		VendorMismatchCeiling: 0.25,
	}
}

// nameSignalWeights blends the text metrics into a single name score.
// Token-based ratios dominate because catalog names reorder freely
// ("OG Kush 3.5g Flower" vs "Flower - OG Kush").
var nameSignalWeights = map[string]float64{
	"levenshtein": 0.25,
	"token_set":   0.25,
	"token_sort":  0.20,
	"partial":     0.15,
	"bigram":      0.10,
	"soundex":     0.05,
}

// signalWeights combines the name score with the contextual field signals.
// Absent fields drop out of the weighted sum rather than scoring zero.
var signalWeights = map[string]float64{
	"name":         0.40,
	"vendor":       0.20,
	"brand":        0.10,
	"product_type": 0.10,
	"weight":       0.10,
	"strain":       0.10,
}

// SimilarityScorer produces a full scored comparison between an inbound item
// and a catalog record. It is stateless and safe for concurrent use.
type SimilarityScorer struct {
	scorer  *Scorer
	vendors *VendorResolver
	cfg     SimilarityConfig
}

// NewSimilarityScorer creates a similarity scorer
func NewSimilarityScorer(scorer *Scorer, vendors *VendorResolver, cfg SimilarityConfig) *SimilarityScorer {
	if scorer == nil {
		scorer = NewScorer()
	}
	if vendors == nil {
		vendors = NewVendorResolver(nil)
	}
	return &SimilarityScorer{scorer: scorer, vendors: vendors, cfg: cfg}
}

// Score compares an inbound item against one catalog record. The same pair
// always yields the same result. When allowCrossVendor is false, a resolved
// vendor mismatch caps the combined score at the mismatch ceiling; fallback
// strategies pass true and accept the lower-trust CrossVendor flag instead.
func (s *SimilarityScorer) Score(item models.InboundItem, record *models.CatalogRecord, allowCrossVendor bool) models.MatchResult {
	result := models.MatchResult{
		Record:       record,
		Tier:         models.TierLow,
		MatchType:    models.MatchTypeFuzzy,
		SignalScores: make(map[string]float64),
	}

	itemName := normalizers.NormalizeProductName(item.Name)
	recordName := normalizers.NormalizeProductName(record.Name)
	if itemName == "" || recordName == "" {
		return result
	}

	if s.scorer.ExactMatch(itemName, recordName, true) == 1.0 {
		result.Score = 1.0
		result.Tier = models.TierHigh
		result.MatchType = models.MatchTypeExact
		result.SignalScores["name"] = 1.0
		if !s.sameVendor(item.Vendor, record.Vendor) {
			result.CrossVendor = true
			if !allowCrossVendor {
				result.Score = s.cfg.VendorMismatchCeiling
				result.Tier = s.TierForScore(result.Score)
				result.MatchType = models.MatchTypeFuzzy
			}
		}
		return result
	}

	nameScore := s.nameSimilarity(itemName, recordName)
	signals := map[string]float64{"name": nameScore}

	vendorScore, vendorPresent := s.vendorSignal(item.Vendor, record.Vendor)
	if vendorPresent {
		signals["vendor"] = vendorScore
	}
	if brandScore, ok := s.brandSignal(item.Brand, record.Brand); ok {
		signals["brand"] = brandScore
	}
	if typeScore, ok := s.productTypeSignal(item, record); ok {
		signals["product_type"] = typeScore
	}
	if weightScore, ok := s.weightSignal(item, record); ok {
		signals["weight"] = weightScore
	}
	if strainScore, ok := s.strainSignal(item.Strain, record.Strain); ok {
		signals["strain"] = strainScore
	}

	score := s.scorer.WeightedScore(signals, signalWeights)

	crossVendor := vendorPresent && vendorScore == 0
	if crossVendor {
		result.CrossVendor = true
		if !allowCrossVendor && score > s.cfg.VendorMismatchCeiling {
			score = s.cfg.VendorMismatchCeiling
		}
	}

	result.Score = score
	result.Tier = s.TierForScore(score)
	result.MatchType = s.deriveMatchType(nameScore, signals)
	result.SignalScores = signals
	return result
}

// TierForScore buckets a combined score into a confidence tier
func (s *SimilarityScorer) TierForScore(score float64) models.ConfidenceTier {
	switch {
	case score >= s.cfg.HighTierThreshold:
		return models.TierHigh
	case score >= s.cfg.MediumTierThreshold:
		return models.TierMedium
	default:
		return models.TierLow
	}
}

// nameSimilarity blends the text metrics over normalized names
func (s *SimilarityScorer) nameSimilarity(a, b string) float64 {
	scores := map[string]float64{
		"levenshtein": s.scorer.Levenshtein(a, b),
		"token_set":   s.scorer.TokenSetRatio(a, b),
		"token_sort":  s.scorer.TokenSortRatio(a, b),
		"partial":     s.scorer.PartialRatio(a, b),
		"bigram":      s.scorer.BigramRatio(a, b),
		"soundex":     s.scorer.SoundexMatch(a, b),
	}
	return s.scorer.WeightedScore(scores, nameSignalWeights)
}

func (s *SimilarityScorer) sameVendor(a, b string) bool {
	if a == "" || b == "" {
		return true // absent vendors never trigger the mismatch cap
	}
	return s.vendors.IsSameVendor(a, b)
}

func (s *SimilarityScorer) vendorSignal(a, b string) (float64, bool) {
	if a == "" || b == "" {
		return 0, false
	}
	if s.vendors.IsSameVendor(a, b) {
		return 1.0, true
	}
	return 0, true
}

func (s *SimilarityScorer) brandSignal(a string, b *string) (float64, bool) {
	if a == "" || b == nil || *b == "" {
		return 0, false
	}
	na := normalizers.NormalizeBrand(a)
	nb := normalizers.NormalizeBrand(*b)
	if na == "" || nb == "" {
		return 0, false
	}
	if na == nb {
		return 1.0, true
	}
	if score := s.scorer.JaroWinkler(na, nb); score >= 0.90 {
		return score, true
	}
	return 0, true
}

// typeCompatibility scores canonical product types. Adjacent categories get
// partial credit because manifests frequently blur them (carts listed as
// concentrates, prerolls as flower).
var typeCompatibility = map[[2]string]float64{
	{"cartridge", "concentrate"}: 0.6,
	{"flower", "preroll"}:        0.5,
	{"edible", "tincture"}:       0.4,
	{"edible", "capsule"}:        0.4,
}

func (s *SimilarityScorer) productTypeSignal(item models.InboundItem, record *models.CatalogRecord) (float64, bool) {
	a := normalizers.CanonicalProductType(item.ProductType)
	if a == "" {
		a = normalizers.InferProductType(item.Name)
	}
	var b string
	if record.ProductType != nil {
		b = normalizers.CanonicalProductType(*record.ProductType)
	}
	if b == "" {
		b = normalizers.InferProductType(record.Name)
	}
	if a == "" || b == "" {
		return 0, false
	}
	if a == b {
		return 1.0, true
	}
	if score, ok := typeCompatibility[[2]string{a, b}]; ok {
		return score, true
	}
	if score, ok := typeCompatibility[[2]string{b, a}]; ok {
		return score, true
	}
	return 0, true
}

// weightSignal compares weights in grams so "1/8" and "3.5g" agree
func (s *SimilarityScorer) weightSignal(item models.InboundItem, record *models.CatalogRecord) (float64, bool) {
	itemGrams, itemOK := itemWeightGrams(item)
	recordGrams, recordOK := recordWeightGrams(record)
	if !itemOK || !recordOK {
		return 0, false
	}
	larger := math.Max(itemGrams, recordGrams)
	if larger == 0 {
		return 0, false
	}
	return s.scorer.NumericProximity(itemGrams, recordGrams, larger), true
}

func itemWeightGrams(item models.InboundItem) (float64, bool) {
	if item.WeightValue != nil && item.WeightUnit != "" {
		if grams, ok := normalizers.ToGrams(*item.WeightValue, item.WeightUnit); ok {
			return grams, true
		}
	}
	if value, unit, ok := normalizers.ParseWeight(item.Name); ok {
		return normalizers.ToGrams(value, unit)
	}
	return 0, false
}

func recordWeightGrams(record *models.CatalogRecord) (float64, bool) {
	if record.WeightValue != nil && record.WeightUnit != nil {
		if grams, ok := normalizers.ToGrams(*record.WeightValue, *record.WeightUnit); ok {
			return grams, true
		}
	}
	if value, unit, ok := normalizers.ParseWeight(record.Name); ok {
		return normalizers.ToGrams(value, unit)
	}
	return 0, false
}

func (s *SimilarityScorer) strainSignal(a string, b *string) (float64, bool) {
	if a == "" || b == nil || *b == "" {
		return 0, false
	}
	na := normalizers.NormalizeStrain(a)
	nb := normalizers.NormalizeStrain(*b)
	if na == "" || nb == "" {
		return 0, false
	}
	if na == nb {
		return 1.0, true
	}
	if score := s.scorer.JaroWinkler(na, nb); score >= 0.85 {
		return score, true
	}
	return 0, true
}

// deriveMatchType labels which evidence carried the score. A weak name with
// multiple agreeing contextual fields is an attribute match; a weak name
// where only the strain agrees is strain-only.
func (s *SimilarityScorer) deriveMatchType(nameScore float64, signals map[string]float64) models.MatchType {
	if nameScore >= 0.80 {
		return models.MatchTypeFuzzy
	}

	strongContextual := 0
	strainStrong := false
	for name, score := range signals {
		if name == "name" {
			continue
		}
		if score >= 0.85 {
			strongContextual++
			if name == "strain" {
				strainStrong = true
			}
		}
	}

	if nameScore < 0.50 {
		if strongContextual >= 2 {
			return models.MatchTypeAttribute
		}
		if strainStrong && strongContextual == 1 {
			return models.MatchTypeStrainOnly
		}
	}
	return models.MatchTypeFuzzy
}
