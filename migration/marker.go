package migration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// MarkerFile is the schema-version marker within the data directory
const MarkerFile = "version.json"

// SentinelVersion marks a fresh install with nothing to migrate
const SentinelVersion = "0.0.0"

// Marker is the persisted schema-version record
type Marker struct {
	SchemaVersion string `json:"schema_version"`
	UpdatedAt     string `json:"updated_at"`
}

// readMarker returns the persisted schema version, defaulting to the
// sentinel if the marker is absent or corrupt
func readMarker(dataDir string, log *zap.Logger) string {
	path := filepath.Join(dataDir, MarkerFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return SentinelVersion
	}
	if err != nil {
		log.Warn("unreadable version marker", zap.Error(err))
		return SentinelVersion
	}

	var m Marker
	if err := json.Unmarshal(data, &m); err != nil || m.SchemaVersion == "" {
		log.Warn("corrupt version marker, assuming fresh install", zap.String("path", path))
		return SentinelVersion
	}
	return m.SchemaVersion
}

// writeMarker persists the schema version with an update timestamp
func writeMarker(dataDir, version string) error {
	m := Marker{
		SchemaVersion: version,
		UpdatedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dataDir, MarkerFile), data, 0644)
}
