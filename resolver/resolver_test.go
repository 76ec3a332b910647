package resolver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"tracker/schema"
	"tracker/store"
)

func employeeTable(rows ...store.Row) *store.Table {
	t := &store.Table{
		Key:     schema.Employees,
		Columns: []string{schema.ColStandardID, schema.ColEmail},
	}
	for _, r := range rows {
		t.Append(r)
	}
	return t
}

func TestResolveMixedInput(t *testing.T) {
	employees := employeeTable(
		store.Row{schema.ColStandardID: "E1", schema.ColEmail: "alice@x.com"},
	)

	res := New(zap.NewNop()).Resolve("alice@x.com\nE2\nunknown@nowhere.com", employees)

	wantKeys := []string{"E1", "E2", "unknown@nowhere.com"}
	if len(res.Keys) != len(wantKeys) {
		t.Fatalf("Expected keys %v, got %v", wantKeys, res.Keys)
	}
	for i, k := range wantKeys {
		if res.Keys[i] != k {
			t.Errorf("Key %d: expected %s, got %s", i, k, res.Keys[i])
		}
	}

	wantUnresolved := []string{"E2", "unknown@nowhere.com"}
	if len(res.Unresolved) != len(wantUnresolved) {
		t.Fatalf("Expected unresolved %v, got %v", wantUnresolved, res.Unresolved)
	}
	for i, k := range wantUnresolved {
		if res.Unresolved[i] != k {
			t.Errorf("Unresolved %d: expected %s, got %s", i, k, res.Unresolved[i])
		}
	}
}

func TestResolveSplitsOnCommasAndNewlines(t *testing.T) {
	employees := employeeTable(
		store.Row{schema.ColStandardID: "E1", schema.ColEmail: "alice@x.com"},
		store.Row{schema.ColStandardID: "E2", schema.ColEmail: "bob@x.com"},
	)

	res := New(zap.NewNop()).Resolve(" E1 , E2 \n\n , ", employees)
	if len(res.Keys) != 2 || res.Keys[0] != "E1" || res.Keys[1] != "E2" {
		t.Errorf("Expected [E1 E2], got %v", res.Keys)
	}
	if len(res.Unresolved) != 0 {
		t.Errorf("Expected no unresolved, got %v", res.Unresolved)
	}
}

func TestResolveDeduplicatesFirstSeen(t *testing.T) {
	employees := employeeTable(
		store.Row{schema.ColStandardID: "E1", schema.ColEmail: "alice@x.com"},
	)

	// E1 by ID and by email collapse to one key
	res := New(zap.NewNop()).Resolve("E1\nalice@x.com\nE1", employees)
	if len(res.Keys) != 1 || res.Keys[0] != "E1" {
		t.Errorf("Expected [E1], got %v", res.Keys)
	}
}

func TestResolveEmailCaseInsensitive(t *testing.T) {
	employees := employeeTable(
		store.Row{schema.ColStandardID: "E1", schema.ColEmail: "Alice@X.com"},
	)

	res := New(zap.NewNop()).Resolve("alice@x.com", employees)
	if len(res.Keys) != 1 || res.Keys[0] != "E1" {
		t.Errorf("Expected email lookup to ignore case, got %v", res.Keys)
	}
	if len(res.Unresolved) != 0 {
		t.Errorf("Expected no unresolved, got %v", res.Unresolved)
	}
}

func TestAuditLogAppendsWithHeader(t *testing.T) {
	dir := t.TempDir()
	audit, err := NewAuditLog(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("NewAuditLog: %v", err)
	}
	audit.now = func() time.Time {
		return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	}

	if err := audit.Record([]string{"E9", "ghost@x.com"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := audit.Record([]string{"E9"}); err != nil {
		t.Fatalf("Second record: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, AuditFileName))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("Expected header + 3 rows, got %d lines: %q", len(lines), string(data))
	}
	if lines[0] != "Identifier,Timestamp" {
		t.Errorf("Unexpected header: %q", lines[0])
	}
	if lines[1] != "E9,2024-03-01 10:00:00" {
		t.Errorf("Unexpected first row: %q", lines[1])
	}
}

func TestAuditLogEmptyBatchIsNoop(t *testing.T) {
	dir := t.TempDir()
	audit, _ := NewAuditLog(dir, zap.NewNop())
	if err := audit.Record(nil); err != nil {
		t.Fatalf("Record(nil): %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, AuditFileName)); !os.IsNotExist(err) {
		t.Error("Empty batch should not create the log file")
	}
}

func TestDecodeUpload(t *testing.T) {
	utf16le := []byte{0xFF, 0xFE, 'E', 0, '1', 0}
	if got := DecodeUpload(utf16le); got != "E1" {
		t.Errorf("UTF-16 LE decode: expected E1, got %q", got)
	}

	bom := append([]byte{0xEF, 0xBB, 0xBF}, []byte("E1")...)
	if got := DecodeUpload(bom); got != "E1" {
		t.Errorf("UTF-8 BOM decode: expected E1, got %q", got)
	}

	latin1 := []byte{'c', 'a', 'f', 0xE9}
	if got := DecodeUpload(latin1); got != "café" {
		t.Errorf("Latin-1 decode: expected café, got %q", got)
	}
}
