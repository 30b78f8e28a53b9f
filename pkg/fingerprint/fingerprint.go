// Package fingerprint produces deterministic versions for catalog snapshots.
// Callers compare fingerprints to detect index staleness without diffing
// record sets.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/Ramsey-B/sage/pkg/models"
)

// Snapshot creates a deterministic fingerprint for a catalog snapshot.
// Record order does not matter; identity and last-update time do.
func Snapshot(records []models.CatalogRecord) string {
	lines := make([]string, 0, len(records))
	for i := range records {
		r := &records[i]
		lines = append(lines, fmt.Sprintf("%s|%d", r.ID, r.UpdatedAt.UnixNano()))
	}
	sort.Strings(lines)

	hash := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(hash[:])
}

// HasChanged compares two fingerprints to detect changes
func HasChanged(oldFingerprint, newFingerprint string) bool {
	return oldFingerprint != newFingerprint
}
