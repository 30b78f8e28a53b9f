package manifest

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/sage/internal/repositories/catalogrecord"
	"github.com/Ramsey-B/sage/pkg/kafka"
	"github.com/Ramsey-B/sage/pkg/matching"
	"github.com/Ramsey-B/sage/pkg/models"
	"github.com/Ramsey-B/sage/pkg/tracing"
)

// Processor handles inbound manifest messages: match mode runs the rows
// through the orchestrator and publishes the results; catalog sync mode
// upserts the rows as catalog records and rebuilds the index.
type Processor struct {
	logger       ectologger.Logger
	orchestrator *matching.Orchestrator
	repo         *catalogrecord.Repository
	producer     *kafka.Producer
}

// NewProcessor creates a manifest processor
func NewProcessor(
	logger ectologger.Logger,
	orchestrator *matching.Orchestrator,
	repo *catalogrecord.Repository,
	producer *kafka.Producer,
) *Processor {
	return &Processor{
		logger:       logger,
		orchestrator: orchestrator,
		repo:         repo,
		producer:     producer,
	}
}

// Handle processes one manifest message. A nil return commits the offset; an
// error leaves it uncommitted for redelivery, so only transient failures
// return errors.
func (p *Processor) Handle(ctx context.Context, msg *kafka.IncomingMessage) error {
	ctx, span := tracing.StartSpan(ctx, "manifest.Processor.Handle")
	defer span.End()

	manifest := msg.Manifest
	tenantID := msg.GetTenantID()

	log := p.logger.WithContext(ctx).WithFields(map[string]any{
		"manifest_id": manifest.ManifestID,
		"tenant_id":   tenantID,
		"mode":        manifest.Mode,
		"rows":        len(manifest.Rows),
	})

	if tenantID == "" {
		// malformed beyond retry; commit and move on
		log.Warn("Dropping manifest without tenant")
		return nil
	}
	if len(manifest.Rows) == 0 {
		log.Warn("Dropping empty manifest")
		return nil
	}

	if manifest.Mode == models.ManifestModeCatalogSync {
		return p.handleCatalogSync(ctx, tenantID, manifest, log)
	}
	return p.handleMatch(ctx, tenantID, manifest, log)
}

func (p *Processor) handleMatch(ctx context.Context, tenantID string, manifest *models.ManifestMessage, log ectologger.Logger) error {
	items := CanonicalizeRows(manifest.Rows, manifest.Vendor)

	response, err := p.orchestrator.MatchBatch(ctx, tenantID, items)
	if err != nil {
		log.WithError(err).Error("Failed to match manifest")
		return err
	}

	event := &models.ManifestResultEvent{
		ManifestID:      manifest.ManifestID,
		TenantID:        tenantID,
		SnapshotVersion: response.SnapshotVersion,
		Items:           items,
		Results:         response.Results,
	}
	if err := p.producer.PublishManifestResult(ctx, event); err != nil {
		return err
	}

	log.Info("Processed manifest")
	return nil
}

func (p *Processor) handleCatalogSync(ctx context.Context, tenantID string, manifest *models.ManifestMessage, log ectologger.Logger) error {
	items := CanonicalizeRows(manifest.Rows, manifest.Vendor)

	requests := make([]models.CreateCatalogRecordRequest, 0, len(items))
	for _, item := range items {
		if item.Name == "" || item.Vendor == "" {
			continue
		}
		requests = append(requests, catalogRequest(item))
	}
	if len(requests) == 0 {
		log.Warn("Catalog sync manifest had no usable rows")
		return nil
	}

	count, err := p.repo.BulkUpsert(ctx, tenantID, requests)
	if err != nil {
		log.WithError(err).Error("Failed to sync catalog from manifest")
		return err
	}

	if _, err := p.orchestrator.RebuildIndex(ctx, tenantID); err != nil {
		log.WithError(err).Error("Failed to rebuild index after catalog sync")
		return err
	}

	log.WithField("upserted", count).Info("Synced catalog from manifest")
	return nil
}

func catalogRequest(item models.InboundItem) models.CreateCatalogRecordRequest {
	req := models.CreateCatalogRecordRequest{
		Name:        item.Name,
		Vendor:      item.Vendor,
		WeightValue: item.WeightValue,
		Price:       item.Price,
	}
	if item.Brand != "" {
		brand := item.Brand
		req.Brand = &brand
	}
	if item.ProductType != "" {
		productType := item.ProductType
		req.ProductType = &productType
	}
	if item.Strain != "" {
		strain := item.Strain
		req.Strain = &strain
	}
	if item.WeightUnit != "" {
		unit := item.WeightUnit
		req.WeightUnit = &unit
	}
	return req
}
