package store

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"tracker/schema"
)

// DefaultCacheTTL bounds how long a cached load result may be served
const DefaultCacheTTL = time.Hour

// Store loads and persists logical tables backed by CSV files in a single
// data directory
type Store struct {
	dataDir string
	reg     *schema.Registry
	log     *zap.Logger

	mu    sync.Mutex
	ttl   time.Duration // 0 disables the read cache
	cache map[schema.TableKey]cacheEntry
}

type cacheEntry struct {
	table    *Table
	loadedAt time.Time
}

// Option configures a Store
type Option func(*Store)

// WithCacheTTL opts into a short-lived read-through cache. Callers that
// enable it must call Invalidate at the start of every write path.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// New creates a Store over dataDir, creating the directory if missing
func New(dataDir string, reg *schema.Registry, log *zap.Logger, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	s := &Store{
		dataDir: dataDir,
		reg:     reg,
		log:     log,
		cache:   make(map[schema.TableKey]cacheEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// DataDir returns the data directory path
func (s *Store) DataDir() string {
	return s.dataDir
}

// Registry returns the schema registry the store was built with
func (s *Store) Registry() *schema.Registry {
	return s.reg
}

// Path returns the backing file path for a table key
func (s *Store) Path(key schema.TableKey) (string, error) {
	spec, err := s.reg.Spec(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dataDir, spec.File), nil
}

// Invalidate drops cached tables. With no arguments it drops everything.
// Every write path must call this before its first read.
func (s *Store) Invalidate(keys ...schema.TableKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(keys) == 0 {
		s.cache = make(map[schema.TableKey]cacheEntry)
		return
	}
	for _, k := range keys {
		delete(s.cache, k)
	}
}

// Load reads a table from disk. If the backing file is absent it is created
// with a header-only canonical schema. Missing canonical columns are
// materialized as empty strings and the repaired file is rewritten
// immediately. For open-schema tables (employees) extra columns found in the
// file are appended to the effective column set and preserved verbatim.
func (s *Store) Load(key schema.TableKey) (*Table, error) {
	spec, err := s.reg.Spec(key)
	if err != nil {
		return nil, err
	}

	if s.ttl > 0 {
		s.mu.Lock()
		if entry, ok := s.cache[key]; ok && time.Since(entry.loadedAt) < s.ttl {
			cp := entry.table.Copy()
			s.mu.Unlock()
			return cp, nil
		}
		s.mu.Unlock()
	}

	path := filepath.Join(s.dataDir, spec.File)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		table := &Table{Key: key, Columns: append([]string(nil), spec.Columns...)}
		if err := s.Save(key, table); err != nil {
			return nil, fmt.Errorf("create %s: %w", spec.File, err)
		}
		s.log.Info("created missing table file", zap.String("table", string(key)), zap.String("file", spec.File))
		return table, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", spec.File, err)
	}

	table, healed, err := s.parse(key, spec, data)
	if err != nil {
		return nil, err
	}

	if healed {
		if err := s.Save(key, table); err != nil {
			return nil, fmt.Errorf("rewrite repaired %s: %w", spec.File, err)
		}
		s.log.Warn("repaired schema drift",
			zap.String("table", string(key)),
			zap.String("file", spec.File))
	}

	if s.ttl > 0 {
		s.mu.Lock()
		s.cache[key] = cacheEntry{table: table.Copy(), loadedAt: time.Now()}
		s.mu.Unlock()
	}

	return table, nil
}

// parse decodes CSV bytes into a Table. Malformed rows are dropped with a
// warning rather than aborting the load. The healed result reports whether
// the on-disk file needs a rewrite (missing columns, legacy headers).
func (s *Store) parse(key schema.TableKey, spec schema.TableSpec, data []byte) (*Table, bool, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	// Row width mismatches are handled below by pad/truncate
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		// Empty file: heal it to a canonical header, nothing is lost
		s.log.Warn("empty table file, rebuilding header",
			zap.String("table", string(key)))
		return &Table{Key: key, Columns: append([]string(nil), spec.Columns...)}, true, nil
	}
	if err != nil {
		// Never rebuild over a file with content we could not read; a
		// header-only rewrite here would erase every data row
		return nil, false, fmt.Errorf("read %s header: %w", spec.File, err)
	}

	healed := false
	for i, h := range header {
		header[i] = strings.TrimSpace(stripBOM(h))
	}

	// Legacy employee exports name the email column differently
	if key == schema.Employees {
		for i, h := range header {
			if h == schema.LegacyEmailColumn && !containsString(header, schema.ColEmail) {
				header[i] = schema.ColEmail
				healed = true
				s.log.Warn("renamed legacy email column",
					zap.String("from", schema.LegacyEmailColumn),
					zap.String("to", schema.ColEmail))
			}
		}
	}

	// Effective column set: canonical first, then discovered extras for
	// open-schema tables
	columns := append([]string(nil), spec.Columns...)
	if spec.OpenColumns {
		for _, h := range header {
			if h != "" && !containsString(columns, h) {
				columns = append(columns, h)
			}
		}
	}

	table := &Table{Key: key, Columns: columns}
	rowNum := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++
		if err != nil {
			s.log.Warn("dropped malformed row",
				zap.String("table", string(key)),
				zap.Int("row", rowNum),
				zap.Error(err))
			continue
		}

		if len(record) != len(header) {
			s.log.Warn("row width mismatch",
				zap.String("table", string(key)),
				zap.Int("row", rowNum),
				zap.Int("got", len(record)),
				zap.Int("want", len(header)))
			if len(record) < len(header) {
				padded := make([]string, len(header))
				copy(padded, record)
				record = padded
			} else {
				record = record[:len(header)]
			}
		}

		row := make(Row, len(columns))
		for i, h := range header {
			if h == "" {
				continue
			}
			row[h] = record[i]
		}
		table.Rows = append(table.Rows, row)
	}

	// Materialize missing canonical columns as empty strings
	for _, col := range spec.Columns {
		if !containsString(header, col) {
			healed = true
			s.log.Warn("added missing column",
				zap.String("table", string(key)),
				zap.String("column", col))
		}
	}
	for _, row := range table.Rows {
		for _, col := range columns {
			if _, ok := row[col]; !ok {
				row[col] = ""
			}
		}
	}

	// Coerce date columns; unparseable values become "no date"
	for _, dateCol := range spec.DateColumns {
		for _, row := range table.Rows {
			row[dateCol] = NormalizeDate(row[dateCol])
		}
	}

	return table, healed, nil
}

// Save writes all rows in canonical column order as a full-file rewrite.
// There are no partial writes. The cached copy for the table is dropped.
func (s *Store) Save(key schema.TableKey, table *Table) error {
	spec, err := s.reg.Spec(key)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(table.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	record := make([]string, len(table.Columns))
	for _, row := range table.Rows {
		for i, col := range table.Columns {
			record[i] = row[col]
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	path := filepath.Join(s.dataDir, spec.File)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write %s: %w", spec.File, err)
	}

	s.Invalidate(key)
	return nil
}

// stripBOM removes a leading UTF-8 byte order mark
func stripBOM(s string) string {
	return strings.TrimPrefix(s, "\uFEFF")
}

func containsString(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
