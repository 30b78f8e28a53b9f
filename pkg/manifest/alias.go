// Package manifest turns raw vendor manifest rows into inbound items and
// routes them through matching or catalog sync.
package manifest

import (
	"strings"

	"github.com/Ramsey-B/sage/pkg/extractor"
	"github.com/Ramsey-B/sage/pkg/models"
	"github.com/Ramsey-B/sage/pkg/normalizers"
)

// fieldAliases maps each canonical item field to the column names vendor
// feeds actually use, in probe order. Keys are matched after folding, so
// "Product Name" and "product_name" both land on name.
var fieldAliases = map[string][]string{
	"external_id":  {"external_id", "sku", "item_id", "product_id", "id"},
	"name":         {"name", "product_name", "item_name", "product", "description", "item.name"},
	"vendor":       {"vendor", "vendor_name", "distributor", "supplier", "seller"},
	"brand":        {"brand", "brand_name", "producer", "manufacturer"},
	"product_type": {"product_type", "category", "type", "item_type", "product_category"},
	"strain":       {"strain", "strain_name", "cultivar", "genetics"},
	"weight_value": {"weight_value", "weight", "unit_weight", "net_weight", "size"},
	"weight_unit":  {"weight_unit", "uom", "unit", "unit_of_measure"},
	"price":        {"price", "unit_price", "cost", "wholesale_price"},
}

// foldKey normalizes a raw column name: lowercase, runs of non-alphanumerics
// collapsed to a single underscore.
func foldKey(key string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(strings.TrimSpace(key)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		case r == '.':
			// keep dots so nested alias paths still resolve
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteRune('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimRight(b.String(), "_")
}

// foldRow rebuilds a row with folded keys, recursing into nested maps
func foldRow(row map[string]any) map[string]any {
	folded := make(map[string]any, len(row))
	for key, value := range row {
		if nested, ok := value.(map[string]any); ok {
			value = foldRow(nested)
		}
		folded[foldKey(key)] = value
	}
	return folded
}

// CanonicalizeRow converts one raw manifest row into an InboundItem.
// defaultVendor fills in when the row itself has no vendor column.
func CanonicalizeRow(row map[string]any, defaultVendor string) models.InboundItem {
	folded := foldRow(row)

	item := models.InboundItem{
		ExternalID:  probeString(folded, "external_id"),
		Name:        probeString(folded, "name"),
		Vendor:      probeString(folded, "vendor"),
		Brand:       probeString(folded, "brand"),
		ProductType: probeString(folded, "product_type"),
		Strain:      probeString(folded, "strain"),
		WeightUnit:  probeString(folded, "weight_unit"),
	}

	if item.Vendor == "" {
		item.Vendor = defaultVendor
	}

	if value, err := extractorFloat(folded, "weight_value"); err == nil && value != nil {
		item.WeightValue = value
	} else if raw := probeString(folded, "weight_value"); raw != "" {
		// "3.5g" style combined value+unit
		if parsed, unit, ok := normalizers.ParseWeight(raw); ok {
			item.WeightValue = &parsed
			if item.WeightUnit == "" {
				item.WeightUnit = unit
			}
		}
	}

	if value, err := extractorFloat(folded, "price"); err == nil && value != nil {
		item.Price = value
	}

	return item
}

// CanonicalizeRows converts a whole manifest's rows
func CanonicalizeRows(rows []map[string]any, defaultVendor string) []models.InboundItem {
	items := make([]models.InboundItem, len(rows))
	for i, row := range rows {
		items[i] = CanonicalizeRow(row, defaultVendor)
	}
	return items
}

func probeString(folded map[string]any, field string) string {
	for _, alias := range fieldAliases[field] {
		if value, err := extractor.ExtractString(folded, alias); err == nil && value != "" {
			return value
		}
	}
	return ""
}

func extractorFloat(folded map[string]any, field string) (*float64, error) {
	var lastErr error
	for _, alias := range fieldAliases[field] {
		value, err := extractor.ExtractFloat(folded, alias)
		if err != nil {
			lastErr = err
			continue
		}
		if value != nil {
			return value, nil
		}
	}
	return nil, lastErr
}
