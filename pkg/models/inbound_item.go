package models

// InboundItem is a single product entry from an external inventory manifest.
// Any subset of fields may be absent or free-text encoded (underscore-separated
// product codes, embedded weights, vendor abbreviations). Items are immutable
// once received; field-name aliasing happens once at ingestion, not here.
type InboundItem struct {
	ExternalID  string   `json:"external_id,omitempty"`
	Name        string   `json:"name"`
	Vendor      string   `json:"vendor,omitempty"`
	Brand       string   `json:"brand,omitempty"`
	ProductType string   `json:"product_type,omitempty"`
	Strain      string   `json:"strain,omitempty"`
	WeightValue *float64 `json:"weight_value,omitempty"`
	WeightUnit  string   `json:"weight_unit,omitempty"`
	Price       *float64 `json:"price,omitempty"`
}

// IsEmpty reports whether the item carries nothing usable for matching.
// Such items short-circuit to an empty result list instead of failing the batch.
func (i InboundItem) IsEmpty() bool {
	return i.Name == "" &&
		i.Vendor == "" &&
		i.Brand == "" &&
		i.ProductType == "" &&
		i.Strain == "" &&
		i.WeightValue == nil
}
