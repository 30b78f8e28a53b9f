package kafka

import (
	"encoding/json"
	"time"

	"github.com/Ramsey-B/sage/pkg/models"
)

// IncomingMessage wraps a raw Kafka message with parsed headers
type IncomingMessage struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Partition int
	Offset    int64
	Timestamp time.Time
	Topic     string

	// Parsed content
	Manifest *models.ManifestMessage
}

// ParseManifest parses the message value as a vendor manifest
func (m *IncomingMessage) ParseManifest() error {
	var manifest models.ManifestMessage
	if err := json.Unmarshal(m.Value, &manifest); err != nil {
		return err
	}
	m.Manifest = &manifest
	return nil
}

// GetTenantID returns the tenant ID from the manifest, falling back to the
// message header
func (m *IncomingMessage) GetTenantID() string {
	if m.Manifest != nil && m.Manifest.TenantID != "" {
		return m.Manifest.TenantID
	}
	return m.Headers["tenant_id"]
}
