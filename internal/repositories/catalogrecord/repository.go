package catalogrecord

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/sage/pkg/database"
	"github.com/Ramsey-B/sage/pkg/metrics"
	"github.com/Ramsey-B/sage/pkg/models"
	"github.com/Ramsey-B/sage/pkg/tracing"
)

const allColumns = "id, tenant_id, name, vendor, brand, product_type, strain, weight_value, weight_unit, price, attributes, created_at, updated_at, deleted_at"

// Repository handles catalog record persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new catalog record repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new catalog record
func (r *Repository) Create(ctx context.Context, tenantID string, req models.CreateCatalogRecordRequest) (*models.CatalogRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "catalogrecord.Repository.Create")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":    "Create",
		"tenant_id": tenantID,
		"name":      req.Name,
		"vendor":    req.Vendor,
	})

	id := uuid.New().String()
	now := time.Now().UTC()

	record := &models.CatalogRecord{
		ID:          id,
		TenantID:    tenantID,
		Name:        req.Name,
		Vendor:      req.Vendor,
		Brand:       req.Brand,
		ProductType: req.ProductType,
		Strain:      req.Strain,
		WeightValue: req.WeightValue,
		WeightUnit:  req.WeightUnit,
		Price:       req.Price,
		Attributes:  database.JSONB[json.RawMessage]{Data: req.Attributes},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("catalog_records")
	sb.Cols("id", "tenant_id", "name", "vendor", "brand", "product_type", "strain", "weight_value", "weight_unit", "price", "attributes", "created_at", "updated_at")
	sb.Values(record.ID, record.TenantID, record.Name, record.Vendor, record.Brand, record.ProductType, record.Strain, record.WeightValue, record.WeightUnit, record.Price, record.Attributes, record.CreatedAt, record.UpdatedAt)

	start := time.Now()
	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.WithError(err).Error("Failed to create catalog record")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create catalog record")
	}
	metrics.DatabaseQueryDuration.WithLabelValues("create").Observe(time.Since(start).Seconds())

	log.WithField("id", id).Info("Created catalog record")
	return record, nil
}

// Get retrieves a catalog record by ID
func (r *Repository) Get(ctx context.Context, tenantID, id string) (*models.CatalogRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "catalogrecord.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(allColumns)
	sb.From("catalog_records")
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	var record models.CatalogRecord
	if err := r.db.GetContext(ctx, &record, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "catalog record %s not found", id)
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get catalog record")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get catalog record")
	}

	return &record, nil
}

// List retrieves catalog records for a tenant, newest first
func (r *Repository) List(ctx context.Context, tenantID string, page, pageSize int) ([]models.CatalogRecord, int, error) {
	ctx, span := tracing.StartSpan(ctx, "catalogrecord.Repository.List")
	defer span.End()

	countSb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From("catalog_records")
	countSb.Where(
		countSb.Equal("tenant_id", tenantID),
		countSb.IsNull("deleted_at"),
	)

	query, args := countSb.Build()
	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count catalog records")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list catalog records")
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(allColumns)
	sb.From("catalog_records")
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)
	sb.OrderBy("created_at").Desc()
	sb.Limit(pageSize)
	sb.Offset((page - 1) * pageSize)

	query, args = sb.Build()
	records := []models.CatalogRecord{}
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list catalog records")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list catalog records")
	}

	return records, totalCount, nil
}

// GetAllRecords retrieves every live catalog record for a tenant. The
// orchestrator calls this once per index rebuild, never per match.
func (r *Repository) GetAllRecords(ctx context.Context, tenantID string) ([]models.CatalogRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "catalogrecord.Repository.GetAllRecords")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(allColumns)
	sb.From("catalog_records")
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.IsNull("deleted_at"),
	)
	sb.OrderBy("id").Asc()

	start := time.Now()
	query, args := sb.Build()
	records := []models.CatalogRecord{}
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to load catalog snapshot")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to load catalog snapshot")
	}
	metrics.DatabaseQueryDuration.WithLabelValues("get_all_records").Observe(time.Since(start).Seconds())

	return records, nil
}

// Update applies a partial update to a catalog record
func (r *Repository) Update(ctx context.Context, tenantID, id string, req models.UpdateCatalogRecordRequest) (*models.CatalogRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "catalogrecord.Repository.Update")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":    "Update",
		"tenant_id": tenantID,
		"id":        id,
	})

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update("catalog_records")

	assignments := []string{ub.Assign("updated_at", time.Now().UTC())}
	if req.Name != nil {
		assignments = append(assignments, ub.Assign("name", *req.Name))
	}
	if req.Vendor != nil {
		assignments = append(assignments, ub.Assign("vendor", *req.Vendor))
	}
	if req.Brand != nil {
		assignments = append(assignments, ub.Assign("brand", *req.Brand))
	}
	if req.ProductType != nil {
		assignments = append(assignments, ub.Assign("product_type", *req.ProductType))
	}
	if req.Strain != nil {
		assignments = append(assignments, ub.Assign("strain", *req.Strain))
	}
	if req.WeightValue != nil {
		assignments = append(assignments, ub.Assign("weight_value", *req.WeightValue))
	}
	if req.WeightUnit != nil {
		assignments = append(assignments, ub.Assign("weight_unit", *req.WeightUnit))
	}
	if req.Price != nil {
		assignments = append(assignments, ub.Assign("price", *req.Price))
	}
	if len(req.Attributes) > 0 {
		assignments = append(assignments, ub.Assign("attributes", database.JSONB[json.RawMessage]{Data: req.Attributes}))
	}
	ub.Set(assignments...)
	ub.Where(
		ub.Equal("id", id),
		ub.Equal("tenant_id", tenantID),
		ub.IsNull("deleted_at"),
	)

	query, args := ub.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.WithError(err).Error("Failed to update catalog record")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to update catalog record")
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "catalog record %s not found", id)
	}

	return r.Get(ctx, tenantID, id)
}

// Delete soft-deletes a catalog record
func (r *Repository) Delete(ctx context.Context, tenantID, id string) error {
	ctx, span := tracing.StartSpan(ctx, "catalogrecord.Repository.Delete")
	defer span.End()

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update("catalog_records")
	ub.Set(ub.Assign("deleted_at", time.Now().UTC()))
	ub.Where(
		ub.Equal("id", id),
		ub.Equal("tenant_id", tenantID),
		ub.IsNull("deleted_at"),
	)

	query, args := ub.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete catalog record")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete catalog record")
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return httperror.NewHTTPErrorf(http.StatusNotFound, "catalog record %s not found", id)
	}

	return nil
}

// BulkUpsert writes a batch of catalog records in one transaction, keyed on
// (tenant_id, vendor, name). Used by the manifest consumer when a feed
// carries catalog updates rather than match requests.
func (r *Repository) BulkUpsert(ctx context.Context, tenantID string, records []models.CreateCatalogRecordRequest) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "catalogrecord.Repository.BulkUpsert")
	defer span.End()

	if len(records) == 0 {
		return 0, nil
	}

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":    "BulkUpsert",
		"tenant_id": tenantID,
		"records":   len(records),
	})

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()
	for _, req := range records {
		ib := database.NewInsertBuilder()
		ib.InsertInto("catalog_records")
		ib.Cols("id", "tenant_id", "name", "vendor", "brand", "product_type", "strain", "weight_value", "weight_unit", "price", "attributes", "created_at", "updated_at")
		ib.Values(uuid.New().String(), tenantID, req.Name, req.Vendor, req.Brand, req.ProductType, req.Strain, req.WeightValue, req.WeightUnit, req.Price, database.JSONB[json.RawMessage]{Data: req.Attributes}, now, now)

		ub := ib.OnConflict("tenant_id", "vendor", "name")
		ub.Set(
			ub.Assign("brand", database.Excluded("brand")),
			ub.Assign("product_type", database.Excluded("product_type")),
			ub.Assign("strain", database.Excluded("strain")),
			ub.Assign("weight_value", database.Excluded("weight_value")),
			ub.Assign("weight_unit", database.Excluded("weight_unit")),
			ub.Assign("price", database.Excluded("price")),
			ub.Assign("attributes", database.Excluded("attributes")),
			ub.Assign("updated_at", database.Excluded("updated_at")),
			ub.Assign("deleted_at", nil),
		)

		query, args := ib.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			log.WithError(err).WithField("name", req.Name).Error("Failed to upsert catalog record")
			return 0, httperror.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("failed to upsert catalog record %q", req.Name))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to commit catalog upsert")
	}

	log.Info("Upserted catalog records")
	return len(records), nil
}
