package models

import (
	"encoding/json"
	"time"

	"github.com/Ramsey-B/sage/pkg/database"
)

// CatalogRecord is a canonical product entry in a tenant's catalog.
// The matching core holds read-only references to these for the lifetime
// of one index snapshot.
type CatalogRecord struct {
	ID          string                          `json:"id" db:"id"`
	TenantID    string                          `json:"tenant_id" db:"tenant_id"`
	Name        string                          `json:"name" db:"name"`
	Vendor      string                          `json:"vendor" db:"vendor"`
	Brand       *string                         `json:"brand,omitempty" db:"brand"`
	ProductType *string                         `json:"product_type,omitempty" db:"product_type"`
	Strain      *string                         `json:"strain,omitempty" db:"strain"`
	WeightValue *float64                        `json:"weight_value,omitempty" db:"weight_value"`
	WeightUnit  *string                         `json:"weight_unit,omitempty" db:"weight_unit"`
	Price       *float64                        `json:"price,omitempty" db:"price"`
	Attributes  database.JSONB[json.RawMessage] `json:"attributes" db:"attributes"`
	CreatedAt   time.Time                       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time                       `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time                      `json:"deleted_at,omitempty" db:"deleted_at"`
}

// CatalogRecordListResponse is a paginated list of catalog records
type CatalogRecordListResponse struct {
	Items      []CatalogRecord `json:"items"`
	TotalCount int             `json:"total_count"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
}

// CreateCatalogRecordRequest is the request to create a catalog record
type CreateCatalogRecordRequest struct {
	Name        string          `json:"name" validate:"required"`
	Vendor      string          `json:"vendor" validate:"required"`
	Brand       *string         `json:"brand,omitempty"`
	ProductType *string         `json:"product_type,omitempty"`
	Strain      *string         `json:"strain,omitempty"`
	WeightValue *float64        `json:"weight_value,omitempty"`
	WeightUnit  *string         `json:"weight_unit,omitempty"`
	Price       *float64        `json:"price,omitempty"`
	Attributes  json.RawMessage `json:"attributes,omitempty"`
}

// UpdateCatalogRecordRequest is the request to update a catalog record
type UpdateCatalogRecordRequest struct {
	Name        *string         `json:"name,omitempty"`
	Vendor      *string         `json:"vendor,omitempty"`
	Brand       *string         `json:"brand,omitempty"`
	ProductType *string         `json:"product_type,omitempty"`
	Strain      *string         `json:"strain,omitempty"`
	WeightValue *float64        `json:"weight_value,omitempty"`
	WeightUnit  *string         `json:"weight_unit,omitempty"`
	Price       *float64        `json:"price,omitempty"`
	Attributes  json.RawMessage `json:"attributes,omitempty"`
}
