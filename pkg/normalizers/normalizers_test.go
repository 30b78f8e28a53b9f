package normalizers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeProductName(t *testing.T) {
	t.Run("lowercases and collapses whitespace", func(t *testing.T) {
		assert.Equal(t, "blue dream flower", NormalizeProductName("  Blue   Dream FLOWER "))
	})

	t.Run("underscores become spaces", func(t *testing.T) {
		assert.Equal(t, "blue dream", NormalizeProductName("BLUE_DREAM"))
	})

	t.Run("strips weight tokens", func(t *testing.T) {
		assert.Equal(t, "blue dream flower", NormalizeProductName("Blue Dream 3.5g Flower"))
		assert.Equal(t, "og kush", NormalizeProductName("OG Kush 1000mg"))
		assert.Equal(t, "gummies", NormalizeProductName("Gummies 10 pack"))
	})

	t.Run("strips flower fractions", func(t *testing.T) {
		assert.Equal(t, "blue dream", NormalizeProductName("blue_dream_1/8"))
		assert.Equal(t, "sour diesel", NormalizeProductName("Sour Diesel 1/4 oz"))
	})

	t.Run("drops punctuation", func(t *testing.T) {
		assert.Equal(t, "wedding cake live resin", NormalizeProductName("Wedding Cake: Live Resin!"))
	})

	t.Run("degrades to empty, never errors", func(t *testing.T) {
		assert.Equal(t, "", NormalizeProductName(""))
		assert.Equal(t, "", NormalizeProductName("3.5g"))
		assert.Equal(t, "", NormalizeProductName("  ---  "))
	})
}

func TestNormalizeVendor(t *testing.T) {
	t.Run("strips legal suffixes", func(t *testing.T) {
		assert.Equal(t, "acme", NormalizeVendor("Acme LLC"))
		assert.Equal(t, "acme", NormalizeVendor("Acme, Inc."))
		assert.Equal(t, "acme", NormalizeVendor("ACME Corp"))
	})

	t.Run("strips suffixes repeatedly", func(t *testing.T) {
		assert.Equal(t, "acme", NormalizeVendor("Acme Holdings Inc"))
	})

	t.Run("a name that is only a suffix survives", func(t *testing.T) {
		assert.Equal(t, "co", NormalizeVendor("Co"))
	})

	t.Run("strips trailing license ids", func(t *testing.T) {
		assert.Equal(t, "green fields", NormalizeVendor("Green Fields C11-0000123"))
		assert.Equal(t, "green fields", NormalizeVendor("Green Fields 4481950"))
	})

	t.Run("drops punctuation", func(t *testing.T) {
		assert.Equal(t, "johnny s farm", NormalizeVendor("Johnny's Farm"))
	})
}

func TestNormalizeStrain(t *testing.T) {
	assert.Equal(t, "blue dream", NormalizeStrain("Blue-Dream"))
	assert.Equal(t, "og kush", NormalizeStrain("OG_Kush!"))
	assert.Equal(t, "", NormalizeStrain("  "))
}

func TestApplyChain(t *testing.T) {
	assert.Equal(t, "bluedream", ApplyChain("  Blue Dream  ", "trim", "lowercase", "remove_whitespace"))

	t.Run("unknown normalizer is a no-op", func(t *testing.T) {
		assert.Equal(t, "abc", Apply("abc", "does_not_exist"))
	})
}

func TestKeyTerms(t *testing.T) {
	t.Run("drops short tokens and stop words", func(t *testing.T) {
		terms := KeyTerms("The Premium OG Kush Cart")
		tokens := make([]string, len(terms))
		for i, term := range terms {
			tokens[i] = term.Token
		}
		assert.Equal(t, []string{"kush", "cart"}, tokens)
	})

	t.Run("tags product type tokens", func(t *testing.T) {
		terms := KeyTerms("blue dream cartridge")
		var cartTerm *KeyTerm
		for i := range terms {
			if terms[i].Token == "cartridge" {
				cartTerm = &terms[i]
			}
		}
		assert.NotNil(t, cartTerm)
		assert.Equal(t, "cartridge", cartTerm.ProductType)
	})

	t.Run("tags strain tokens", func(t *testing.T) {
		terms := KeyTerms("sour diesel flower")
		found := map[string]bool{}
		for _, term := range terms {
			found[term.Token] = term.IsStrain
		}
		assert.True(t, found["sour"])
		assert.True(t, found["diesel"])
		assert.False(t, found["flower"])
	})

	t.Run("dedupes repeated tokens", func(t *testing.T) {
		assert.Len(t, KeyTerms("kush kush kush"), 1)
	})
}

func TestInferProductType(t *testing.T) {
	assert.Equal(t, "cartridge", InferProductType("Blue Dream Vape 1g"))
	assert.Equal(t, "edible", InferProductType("Watermelon Gummies 100mg"))
	assert.Equal(t, "concentrate", InferProductType("GG4 Live Resin"))
	assert.Equal(t, "", InferProductType("Blue Dream"))
}

func TestCanonicalProductType(t *testing.T) {
	assert.Equal(t, "cartridge", CanonicalProductType("Vape Cartridge"))
	assert.Equal(t, "cartridge", CanonicalProductType("carts"))
	assert.Equal(t, "flower", CanonicalProductType("FLOWER"))

	t.Run("unknown types fall back to normalized input", func(t *testing.T) {
		assert.Equal(t, "accessories", CanonicalProductType("Accessories"))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, "", CanonicalProductType(""))
	})
}
