package matching

import (
	"strings"

	"github.com/Ramsey-B/sage/pkg/normalizers"
)

// defaultVendorAliases lists known multi-name vendors. Keys and values are
// compared after vendor normalization, so legal suffixes never matter here.
// Curated: additions come from config, not code changes.
var defaultVendorAliases = map[string][]string{
	"kiva":        {"kiva confections", "kiva sales and service", "kss"},
	"cresco":      {"cresco labs", "sunnyside"},
	"curaleaf":    {"curaleaf distribution", "select"},
	"stiiizy":     {"stiizy", "shryne group"},
	"raw garden":  {"central coast agriculture", "cca"},
	"jeeter":      {"dreamfields"},
	"wyld":        {"wyld cbd"},
	"glass house": {"glass house farms", "glass house brands", "ghf"},
	"nabis":       {"nabis distribution"},
	"herbl":       {"herbl solutions"},
}

// VendorResolver decides whether two vendor strings denote the same entity.
// Deliberately conservative: a false positive here leaks one vendor's products
// into another's storefront attribution, the most damaging failure mode.
type VendorResolver struct {
	scorer  *Scorer
	aliases map[string]string // normalized alias -> canonical key
}

// NewVendorResolver creates a resolver with the curated alias table plus any
// extra aliases (canonical -> variants), typically from configuration.
func NewVendorResolver(extra map[string][]string) *VendorResolver {
	r := &VendorResolver{
		scorer:  NewScorer(),
		aliases: make(map[string]string),
	}

	for canonical, variants := range defaultVendorAliases {
		r.addAliases(canonical, variants)
	}
	for canonical, variants := range extra {
		r.addAliases(canonical, variants)
	}

	return r
}

func (r *VendorResolver) addAliases(canonical string, variants []string) {
	key := normalizers.NormalizeVendor(canonical)
	if key == "" {
		return
	}
	r.aliases[key] = key
	for _, v := range variants {
		if normalized := normalizers.NormalizeVendor(v); normalized != "" {
			r.aliases[normalized] = key
		}
	}
}

// Canonical returns the normalized, alias-resolved form of a vendor name.
// Records sharing a canonical key belong to the same vendor bucket.
func (r *VendorResolver) Canonical(name string) string {
	normalized := normalizers.NormalizeVendor(name)
	if canonical, ok := r.aliases[normalized]; ok {
		return canonical
	}
	return normalized
}

// IsSameVendor reports whether two vendor strings denote the same entity.
// Checks are ordered cheapest-first; the first match wins:
// 1. Exact match after normalization (suffix and license stripping)
// 2. Containment with a 2:1 length-ratio guard
// 3. Token overlap >= 0.75 with at least one overlapping token of length >= 4
// 4. Levenshtein ratio >= 0.70 when both names are >= 6 characters and at
//    least one is a single token
// 5. Curated alias table
func (r *VendorResolver) IsSameVendor(a, b string) bool {
	na := normalizers.NormalizeVendor(a)
	nb := normalizers.NormalizeVendor(b)
	if na == "" || nb == "" {
		return false
	}

	if na == nb {
		return true
	}

	if r.containmentMatch(na, nb) {
		return true
	}

	if r.tokenOverlapMatch(na, nb) {
		return true
	}

	if r.editDistanceMatch(na, nb) {
		return true
	}

	ca, aOK := r.aliases[na]
	cb, bOK := r.aliases[nb]
	if aOK && bOK && ca == cb {
		return true
	}

	return false
}

// editDistanceMatch: Levenshtein ratio >= 0.70 on names >= 6 characters.
// Only taken when at least one name is a single token: multi-token pairs that
// differ by a whole token are decided by the token-overlap check, and edit
// distance must not overrule it.
func (r *VendorResolver) editDistanceMatch(a, b string) bool {
	if len(a) < 6 || len(b) < 6 {
		return false
	}
	if len(strings.Fields(a)) > 1 && len(strings.Fields(b)) > 1 {
		return false
	}
	return r.scorer.Levenshtein(a, b) >= 0.70
}

// containmentMatch: one name contains the other, and the shorter is at least
// half the longer. Prevents short generic names from swallowing long ones.
func (r *VendorResolver) containmentMatch(a, b string) bool {
	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	if !strings.Contains(longer, shorter) {
		return false
	}

	return float64(len(longer))/float64(len(shorter)) <= 2.0
}

// tokenOverlapMatch: both names have >= 2 tokens, the overlap ratio against
// the smaller token set is >= 0.75, and at least one shared token has >= 4
// characters so trivial words alone can't link two vendors.
func (r *VendorResolver) tokenOverlapMatch(a, b string) bool {
	tokensA := strings.Fields(a)
	tokensB := strings.Fields(b)
	if len(tokensA) < 2 || len(tokensB) < 2 {
		return false
	}

	setA := make(map[string]struct{}, len(tokensA))
	for _, tok := range tokensA {
		setA[tok] = struct{}{}
	}

	common := 0
	hasLongToken := false
	seen := make(map[string]struct{}, len(tokensB))
	for _, tok := range tokensB {
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		if _, ok := setA[tok]; ok {
			common++
			if len(tok) >= 4 {
				hasLongToken = true
			}
		}
	}

	smaller := min(len(setA), len(seen))
	if smaller == 0 {
		return false
	}

	return float64(common)/float64(smaller) >= 0.75 && hasLongToken
}
