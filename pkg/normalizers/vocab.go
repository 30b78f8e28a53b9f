package normalizers

import "strings"

// stopWords are tokens dropped during key-term extraction. They are too common
// in catalog names to discriminate between products.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "with": {}, "for": {}, "from": {},
	"premium": {}, "select": {}, "reserve": {}, "classic": {},
	"original": {}, "new": {}, "size": {}, "each": {},
}

// productTypeVocab maps name tokens to a canonical product type. Used to tag
// key terms and to infer a type when the manifest omits one.
var productTypeVocab = map[string]string{
	"flower":      "flower",
	"bud":         "flower",
	"eighth":      "flower",
	"preroll":     "preroll",
	"prerolls":    "preroll",
	"joint":       "preroll",
	"joints":      "preroll",
	"blunt":       "preroll",
	"cart":        "cartridge",
	"carts":       "cartridge",
	"cartridge":   "cartridge",
	"vape":        "cartridge",
	"pod":         "cartridge",
	"disposable":  "cartridge",
	"concentrate": "concentrate",
	"shatter":     "concentrate",
	"wax":         "concentrate",
	"rosin":       "concentrate",
	"resin":       "concentrate",
	"badder":      "concentrate",
	"budder":      "concentrate",
	"crumble":     "concentrate",
	"sauce":       "concentrate",
	"diamonds":    "concentrate",
	"sugar":       "concentrate",
	"edible":      "edible",
	"edibles":     "edible",
	"gummy":       "edible",
	"gummies":     "edible",
	"chocolate":   "edible",
	"cookie":      "edible",
	"cookies":     "edible",
	"mints":       "edible",
	"tincture":    "tincture",
	"drops":       "tincture",
	"topical":     "topical",
	"balm":        "topical",
	"lotion":      "topical",
	"salve":       "topical",
	"capsule":     "capsule",
	"capsules":    "capsule",
	"softgel":     "capsule",
}

// strainVocab marks tokens commonly found in strain names. Tagging these
// boosts candidate recall for items whose only usable text is a strain.
var strainVocab = map[string]struct{}{
	"og": {}, "kush": {}, "haze": {}, "diesel": {}, "sour": {},
	"indica": {}, "sativa": {}, "hybrid": {}, "dream": {}, "cookies": {},
	"gelato": {}, "runtz": {}, "sherbet": {}, "punch": {}, "glue": {},
	"wedding": {}, "cake": {}, "mints": {}, "purple": {}, "skunk": {},
}

// KeyTerm is a normalized token extracted from a name, tagged when it matches
// a known product-type or strain vocabulary.
type KeyTerm struct {
	Token       string
	ProductType string // canonical type if token is a type keyword
	IsStrain    bool
}

// KeyTerms splits a raw name into discriminating tokens: lowercase, split on
// spaces/underscores/hyphens, stop words and very short tokens dropped.
func KeyTerms(s string) []KeyTerm {
	s = strings.ToLower(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '_' || r == '-' || r == '\t'
	})

	terms := make([]KeyTerm, 0, len(fields))
	seen := make(map[string]struct{}, len(fields))
	for _, tok := range fields {
		tok = strings.Trim(tok, ".,;:()[]'\"")
		if len(tok) < 3 {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}

		term := KeyTerm{Token: tok}
		if canonical, ok := productTypeVocab[tok]; ok {
			term.ProductType = canonical
		}
		if _, ok := strainVocab[tok]; ok {
			term.IsStrain = true
		}
		terms = append(terms, term)
	}

	return terms
}

// Tokens returns just the token strings from KeyTerms
func Tokens(s string) []string {
	terms := KeyTerms(s)
	tokens := make([]string, len(terms))
	for i, t := range terms {
		tokens[i] = t.Token
	}
	return tokens
}

// InferProductType returns the canonical product type implied by a name's
// tokens, or "" when no type keyword is present.
func InferProductType(name string) string {
	for _, term := range KeyTerms(name) {
		if term.ProductType != "" {
			return term.ProductType
		}
	}
	return ""
}

// CanonicalProductType folds a free-text product type ("Vape Cartridge",
// "carts") to its canonical form, falling back to the normalized input.
func CanonicalProductType(s string) string {
	normalized := NormalizeStrain(s)
	if normalized == "" {
		return ""
	}
	for _, tok := range strings.Fields(normalized) {
		if canonical, ok := productTypeVocab[tok]; ok {
			return canonical
		}
	}
	return normalized
}
