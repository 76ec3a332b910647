package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"tracker/schema"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := New(t.TempDir(), schema.Default(), zap.NewNop(), opts...)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return s
}

func writeFile(t *testing.T, s *Store, key schema.TableKey, content string) {
	t.Helper()
	path, err := s.Path(key)
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func readFile(t *testing.T, s *Store, key schema.TableKey) string {
	t.Helper()
	path, _ := s.Path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return string(data)
}

func TestLoadCreatesMissingFile(t *testing.T) {
	s := newTestStore(t)

	table, err := s.Load(schema.Events)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(table.Rows) != 0 {
		t.Errorf("Expected 0 rows, got %d", len(table.Rows))
	}

	content := readFile(t, s, schema.Events)
	want := "EventID,Name,Date,Category,Workshop,Registrations,Participants,Hosted\n"
	if content != want {
		t.Errorf("Expected header-only file %q, got %q", want, content)
	}

	// A second load must not rewrite the file
	path, _ := s.Path(schema.Events)
	before, _ := os.Stat(path)
	if _, err := s.Load(schema.Events); err != nil {
		t.Fatalf("Second load: %v", err)
	}
	after, _ := os.Stat(path)
	if !before.ModTime().Equal(after.ModTime()) {
		t.Error("Second load rewrote an already-canonical file")
	}
}

func TestRoundTrip(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s, schema.Cohorts, "Name,DateStarted,Nominated,Invited,Joined\nCohort1,2024-01-15,\"E1,E2\",,E1\n")

	first, err := s.Load(schema.Cohorts)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := s.Save(schema.Cohorts, first); err != nil {
		t.Fatalf("Save: %v", err)
	}
	second, err := s.Load(schema.Cohorts)
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}

	if len(second.Rows) != len(first.Rows) {
		t.Fatalf("Row count changed: %d -> %d", len(first.Rows), len(second.Rows))
	}
	for i := range first.Rows {
		for _, col := range first.Columns {
			if first.Rows[i][col] != second.Rows[i][col] {
				t.Errorf("Row %d column %s changed: %q -> %q",
					i, col, first.Rows[i][col], second.Rows[i][col])
			}
		}
	}
}

func TestSelfHealingMissingColumn(t *testing.T) {
	s := newTestStore(t)
	// cohorts.csv missing the Invited and Joined columns
	writeFile(t, s, schema.Cohorts, "Name,DateStarted,Nominated\nCohort1,2024-01-15,E1\n")

	table, err := s.Load(schema.Cohorts)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	row := table.Rows[0]
	if row[schema.ColInvited] != "" || row[schema.ColJoined] != "" {
		t.Error("Missing columns should be materialized as empty strings")
	}

	// The repaired file must have been rewritten with the full column set
	content := readFile(t, s, schema.Cohorts)
	if !strings.HasPrefix(content, "Name,DateStarted,Nominated,Invited,Joined\n") {
		t.Errorf("File not rewritten with canonical header: %q", content)
	}
}

func TestEmployeeOpenColumns(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s, schema.Employees, "StandardID,Email,Location,Title\nE1,alice@x.com,NYC,Engineer\n")

	table, err := s.Load(schema.Employees)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	wantCols := []string{"StandardID", "Email", "Location", "Title"}
	if len(table.Columns) != len(wantCols) {
		t.Fatalf("Expected columns %v, got %v", wantCols, table.Columns)
	}
	for i, c := range wantCols {
		if table.Columns[i] != c {
			t.Errorf("Column %d: expected %s, got %s", i, c, table.Columns[i])
		}
	}
	if table.Rows[0]["Location"] != "NYC" {
		t.Errorf("Extra column value lost: %q", table.Rows[0]["Location"])
	}
}

func TestEmployeeLegacyEmailHeader(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s, schema.Employees, "StandardID,Work Email Address\nE1,alice@x.com\n")

	table, err := s.Load(schema.Employees)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if table.Rows[0][schema.ColEmail] != "alice@x.com" {
		t.Errorf("Legacy email column not folded into Email: %v", table.Rows[0])
	}

	// Healed file persists the canonical header
	content := readFile(t, s, schema.Employees)
	if strings.Contains(content, schema.LegacyEmailColumn) {
		t.Errorf("Legacy header survived the rewrite: %q", content)
	}
}

func TestBOMHeaderStripped(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s, schema.Cohorts,
		"\uFEFFName,DateStarted,Nominated,Invited,Joined\nCohort1,2024-01-15,E1,,\n")

	table, err := s.Load(schema.Cohorts)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if table.Rows[0][schema.ColName] != "Cohort1" {
		t.Errorf("BOM-prefixed header not recognized: %v", table.Rows[0])
	}
	if table.Rows[0][schema.ColNominated] != "E1" {
		t.Errorf("Columns misaligned after BOM strip: %v", table.Rows[0])
	}
}

func TestEmptyFileHealedToHeader(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s, schema.Cohorts, "")

	table, err := s.Load(schema.Cohorts)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(table.Rows) != 0 {
		t.Errorf("Expected 0 rows from empty file, got %d", len(table.Rows))
	}
	content := readFile(t, s, schema.Cohorts)
	if content != "Name,DateStarted,Nominated,Invited,Joined\n" {
		t.Errorf("Empty file not healed to canonical header: %q", content)
	}
}

func TestDateCoercion(t *testing.T) {
	s := newTestStore(t)
	writeFile(t, s, schema.Events,
		"EventID,Name,Date,Category,Workshop,Registrations,Participants,Hosted\n"+
			"D20240101-01,Demo,2024/01/01,Demo,,,,\n"+
			"D20240102-01,Demo2,not-a-date,Demo,,,,\n")

	table, err := s.Load(schema.Events)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := table.Rows[0][schema.ColDate]; got != "2024-01-01" {
		t.Errorf("Expected normalized date 2024-01-01, got %q", got)
	}
	if got := table.Rows[1][schema.ColDate]; got != "" {
		t.Errorf("Unparseable date should become empty, got %q", got)
	}
}

func TestMalformedRowDropped(t *testing.T) {
	s := newTestStore(t)
	// Second data row has a bare quote that breaks the record even with
	// LazyQuotes padding rules; rows with the wrong width are padded instead
	writeFile(t, s, schema.Cohorts,
		"Name,DateStarted,Nominated,Invited,Joined\n"+
			"Cohort1,2024-01-15,,,\n"+
			"ShortRow\n")

	table, err := s.Load(schema.Cohorts)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("Expected 2 rows (short row padded), got %d", len(table.Rows))
	}
	if table.Rows[1][schema.ColName] != "ShortRow" || table.Rows[1][schema.ColJoined] != "" {
		t.Errorf("Short row not padded: %v", table.Rows[1])
	}
}

func TestCacheServesUntilInvalidated(t *testing.T) {
	s := newTestStore(t, WithCacheTTL(time.Hour))
	writeFile(t, s, schema.Cohorts, "Name,DateStarted,Nominated,Invited,Joined\nCohort1,2024-01-15,,,\n")

	if _, err := s.Load(schema.Cohorts); err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Mutate the file behind the store's back; the cache still serves the
	// stale copy
	writeFile(t, s, schema.Cohorts, "Name,DateStarted,Nominated,Invited,Joined\nCohort2,2024-02-01,,,\n")
	cached, err := s.Load(schema.Cohorts)
	if err != nil {
		t.Fatalf("Cached load: %v", err)
	}
	if cached.Rows[0][schema.ColName] != "Cohort1" {
		t.Errorf("Expected cached row, got %v", cached.Rows[0])
	}

	s.Invalidate(schema.Cohorts)
	fresh, err := s.Load(schema.Cohorts)
	if err != nil {
		t.Fatalf("Fresh load: %v", err)
	}
	if fresh.Rows[0][schema.ColName] != "Cohort2" {
		t.Errorf("Expected fresh row after invalidation, got %v", fresh.Rows[0])
	}
}

func TestSaveDropsCachedCopy(t *testing.T) {
	s := newTestStore(t, WithCacheTTL(time.Hour))
	table, err := s.Load(schema.Cohorts)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	table.Append(Row{schema.ColName: "Cohort1", schema.ColDateStarted: "2024-01-15"})
	if err := s.Save(schema.Cohorts, table); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := s.Load(schema.Cohorts)
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if len(reloaded.Rows) != 1 {
		t.Errorf("Save did not drop the cached copy: %d rows", len(reloaded.Rows))
	}
}

func TestMissingDirectoryCreated(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	if _, err := New(dir, schema.Default(), zap.NewNop()); err != nil {
		t.Fatalf("Expected missing directory to be created: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("Data directory not created: %v", err)
	}
}

func TestNormalizeDate(t *testing.T) {
	cases := map[string]string{
		"2024-01-15":          "2024-01-15",
		"2024-01-15 10:30:00": "2024-01-15",
		"2024/01/15":          "2024-01-15",
		"garbage":             "",
		"":                    "",
	}
	for in, want := range cases {
		if got := NormalizeDate(in); got != want {
			t.Errorf("NormalizeDate(%q) = %q, want %q", in, got, want)
		}
	}
}
