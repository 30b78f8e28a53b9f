package models

import "time"

// Manifest modes. Match runs the rows through the orchestrator; catalog sync
// upserts them as catalog records instead.
const (
	ManifestModeMatch       = "match"
	ManifestModeCatalogSync = "catalog_sync"
)

// ManifestMessage is an inbound vendor manifest from Kafka. Rows arrive as
// raw maps because every vendor feed names its columns differently; the
// manifest processor canonicalizes them.
type ManifestMessage struct {
	ManifestID string           `json:"manifest_id"`
	TenantID   string           `json:"tenant_id"`
	Vendor     string           `json:"vendor,omitempty"`
	Mode       string           `json:"mode,omitempty"`
	Rows       []map[string]any `json:"rows"`
	ReceivedAt time.Time        `json:"received_at,omitempty"`
}

// ManifestResultEvent is the outcome of matching one manifest, published to
// the results topic.
type ManifestResultEvent struct {
	ManifestID      string          `json:"manifest_id"`
	TenantID        string          `json:"tenant_id"`
	SnapshotVersion string          `json:"snapshot_version"`
	Items           []InboundItem   `json:"items"`
	Results         [][]MatchResult `json:"results"`
	Timestamp       time.Time       `json:"timestamp"`
}
