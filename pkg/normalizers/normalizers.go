// Package normalizers provides field normalization functions for match indexing
package normalizers

import (
	"regexp"
	"strings"
	"unicode"
)

// Normalizer is a function that normalizes a string value
type Normalizer func(string) string

// registry holds all registered normalizers
var registry = make(map[string]Normalizer)

func init() {
	// Register built-in normalizers
	Register("lowercase", Lowercase)
	Register("trim", Trim)
	Register("remove_whitespace", RemoveWhitespace)
	Register("remove_punctuation", RemovePunctuation)
	Register("alphanumeric", Alphanumeric)
	Register("nproduct", NormalizeProductName)
	Register("nvendor", NormalizeVendor)
	Register("nstrain", NormalizeStrain)
	Register("nbrand", NormalizeBrand)
}

// Register adds a normalizer to the registry
func Register(name string, fn Normalizer) {
	registry[name] = fn
}

// Get retrieves a normalizer by name
func Get(name string) (Normalizer, bool) {
	fn, ok := registry[name]
	return fn, ok
}

// Apply applies a named normalizer to a value
func Apply(value, normalizer string) string {
	fn, ok := registry[normalizer]
	if !ok {
		return value
	}
	return fn(value)
}

// ApplyChain applies multiple normalizers in sequence
func ApplyChain(value string, normalizers ...string) string {
	result := value
	for _, name := range normalizers {
		result = Apply(result, name)
	}
	return result
}

// Built-in normalizers

// Lowercase converts string to lowercase
func Lowercase(s string) string {
	return strings.ToLower(s)
}

// Trim removes leading and trailing whitespace
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// RemoveWhitespace removes all whitespace characters
func RemoveWhitespace(s string) string {
	var result strings.Builder
	for _, r := range s {
		if !unicode.IsSpace(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// RemovePunctuation removes all punctuation characters
func RemovePunctuation(s string) string {
	var result strings.Builder
	for _, r := range s {
		if !unicode.IsPunct(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// Alphanumeric keeps only alphanumeric characters
func Alphanumeric(s string) string {
	var result strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

var (
	weightTokenRe = regexp.MustCompile(`\b\d+(?:[./]\d+)?\s*(?:g|mg|kg|oz|lb|lbs|ml|gr|gram|grams|ounce|ounces|pack|pk|ct|count|piece|pieces|pc)\b\.?`)
	fractionRe    = regexp.MustCompile(`\b1/[248]\s*(?:oz|ounce)?\b`)
	spaceRe       = regexp.MustCompile(`\s+`)
	licenseRe     = regexp.MustCompile(`(?:^|\s)(?:[a-z]{1,3}\d{1,2}-)?\d{4,}[a-z]{0,3}$`)
)

// NormalizeProductName canonicalizes a product name for matching:
// - Lowercase
// - Underscores/hyphens become spaces (vendor product codes)
// - Weight/unit and pack-size tokens stripped (weight is scored separately)
// - Punctuation dropped, whitespace collapsed
// Total function: any input degrades to a possibly-empty string, never an error.
func NormalizeProductName(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")
	s = fractionRe.ReplaceAllString(s, " ")
	s = weightTokenRe.ReplaceAllString(s, " ")

	var result strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(r)
		} else {
			result.WriteRune(' ')
		}
	}

	return strings.TrimSpace(spaceRe.ReplaceAllString(result.String(), " "))
}

// legal-entity suffixes stripped from vendor names
var vendorSuffixes = []string{
	"limited liability company",
	"incorporated",
	"corporation",
	"enterprises",
	"distribution",
	"holdings",
	"company",
	"brands",
	"group",
	"corp",
	"llc",
	"ltd",
	"inc",
	"co",
}

// NormalizeVendor canonicalizes a vendor/distributor name:
// - Lowercase, punctuation dropped
// - Legal-entity suffixes stripped (LLC, Inc, Corp, Holdings, ...)
// - Trailing numeric license-ID suffixes stripped (e.g. "C11-0000123")
func NormalizeVendor(s string) string {
	s = strings.ToLower(s)

	var cleaned strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			cleaned.WriteRune(r)
		} else {
			cleaned.WriteRune(' ')
		}
	}
	s = strings.TrimSpace(spaceRe.ReplaceAllString(cleaned.String(), " "))

	// Strip legal suffixes repeatedly ("Acme Holdings Inc" -> "acme")
	for {
		stripped := false
		for _, suffix := range vendorSuffixes {
			if s == suffix {
				continue
			}
			if strings.HasSuffix(s, " "+suffix) {
				s = strings.TrimSpace(s[:len(s)-len(suffix)-1])
				stripped = true
			}
		}
		if !stripped {
			break
		}
	}

	s = licenseRe.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "-", " ")

	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// NormalizeStrain canonicalizes a strain name. Synonym resolution happens in
// the matching layer; this only folds case and punctuation.
func NormalizeStrain(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")

	var result strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(spaceRe.ReplaceAllString(result.String(), " "))
}

// NormalizeBrand canonicalizes a brand name (same folding as strains)
func NormalizeBrand(s string) string {
	return NormalizeStrain(s)
}
