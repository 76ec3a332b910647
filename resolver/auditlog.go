package resolver

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// AuditFileName is the unresolved-identifier log file within the data dir
const AuditFileName = "could_not_find.csv"

// auditHeader is the log's column set
var auditHeader = []string{"Identifier", "Timestamp"}

// AuditLog is the append-only log of unresolved identifiers. One row is
// written per occurrence ever seen; rows are never rewritten or pruned.
type AuditLog struct {
	mu   sync.Mutex
	path string
	log  *zap.Logger
	now  func() time.Time
}

// NewAuditLog creates an AuditLog under dataDir, creating the directory if
// missing
func NewAuditLog(dataDir string, log *zap.Logger) (*AuditLog, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &AuditLog{
		path: filepath.Join(dataDir, AuditFileName),
		log:  log,
		now:  time.Now,
	}, nil
}

// Record appends one row per identifier, stamping each with the current
// time. The file is created with its header on first use.
func (a *AuditLog) Record(identifiers []string) error {
	if len(identifiers) == 0 {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	_, statErr := os.Stat(a.path)
	fresh := os.IsNotExist(statErr)

	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(auditHeader); err != nil {
			return fmt.Errorf("write audit header: %w", err)
		}
	}

	stamp := a.now().Format("2006-01-02 15:04:05")
	for _, id := range identifiers {
		if err := w.Write([]string{id, stamp}); err != nil {
			return fmt.Errorf("write audit row: %w", err)
		}
		a.log.Info("logged unresolved identifier", zap.String("identifier", id))
	}
	w.Flush()
	return w.Error()
}
