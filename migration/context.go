package migration

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Context gives transform steps defensive, file-level access to the data
// directory. Transforms work on raw CSV files rather than through the schema
// registry, because the files they rewrite predate the current schema.
type Context struct {
	dataDir string
	log     *zap.Logger
}

// FileExists reports whether a table file exists in the data directory
func (c *Context) FileExists(file string) bool {
	_, err := os.Stat(filepath.Join(c.dataDir, file))
	return err == nil
}

// ReadFile reads a raw CSV file into header and rows. Rows narrower than the
// header are padded; wider rows are truncated.
func (c *Context) ReadFile(file string) ([]string, [][]string, error) {
	data, err := os.ReadFile(filepath.Join(c.dataDir, file))
	if err != nil {
		return nil, nil, err
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read %s header: %w", file, err)
	}

	var rows [][]string
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			c.log.Warn("dropped malformed row during migration",
				zap.String("file", file), zap.Error(err))
			continue
		}
		if len(record) < len(header) {
			padded := make([]string, len(header))
			copy(padded, record)
			record = padded
		} else if len(record) > len(header) {
			record = record[:len(header)]
		}
		rows = append(rows, record)
	}
	return header, rows, nil
}

// WriteFile rewrites a raw CSV file from header and rows
func (c *Context) WriteFile(file string, header []string, rows [][]string) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dataDir, file), buf.Bytes(), 0644)
}

// AddColumn appends a column populated with defaultValue. A missing file or
// an already-present column is a no-op.
func (c *Context) AddColumn(file, column, defaultValue string) error {
	if !c.FileExists(file) {
		return nil
	}
	header, rows, err := c.ReadFile(file)
	if err != nil {
		return err
	}
	if header == nil || indexOf(header, column) >= 0 {
		return nil
	}

	header = append(header, column)
	for i := range rows {
		rows[i] = append(rows[i], defaultValue)
	}
	c.log.Info("added column", zap.String("file", file), zap.String("column", column))
	return c.WriteFile(file, header, rows)
}

// RenameColumn renames oldName to newName. A missing file or an absent
// oldName is a no-op (the file is already in the target shape). If both
// names coexist — a half-applied prior run — the new column's values win and
// the old column is dropped, with a warning for any row where they disagree.
func (c *Context) RenameColumn(file, oldName, newName string) error {
	if !c.FileExists(file) {
		return nil
	}
	header, rows, err := c.ReadFile(file)
	if err != nil {
		return err
	}
	oldIdx := indexOf(header, oldName)
	if oldIdx < 0 {
		return nil
	}
	newIdx := indexOf(header, newName)

	if newIdx < 0 {
		header[oldIdx] = newName
		c.log.Info("renamed column",
			zap.String("file", file),
			zap.String("from", oldName),
			zap.String("to", newName))
		return c.WriteFile(file, header, rows)
	}

	// Both present: keep the new column, drop the old
	for i, row := range rows {
		if row[oldIdx] != row[newIdx] {
			c.log.Warn("column rename discrepancy, keeping new value",
				zap.String("file", file),
				zap.String("column", newName),
				zap.Int("row", i+1))
		}
	}
	header = removeAt(header, oldIdx)
	for i := range rows {
		rows[i] = removeAt(rows[i], oldIdx)
	}
	return c.WriteFile(file, header, rows)
}

// DropColumn removes a column. A missing file or an absent column is a
// no-op.
func (c *Context) DropColumn(file, column string) error {
	if !c.FileExists(file) {
		return nil
	}
	header, rows, err := c.ReadFile(file)
	if err != nil {
		return err
	}
	idx := indexOf(header, column)
	if idx < 0 {
		return nil
	}

	header = removeAt(header, idx)
	for i := range rows {
		rows[i] = removeAt(rows[i], idx)
	}
	c.log.Info("dropped column", zap.String("file", file), zap.String("column", column))
	return c.WriteFile(file, header, rows)
}

// ReorderColumns rewrites the file with its columns arranged to match the
// given order. Columns in want that the file lacks are skipped; columns the
// file carries beyond want keep their relative order at the end. A file
// already in the target order is left untouched.
func (c *Context) ReorderColumns(file string, want []string) error {
	if !c.FileExists(file) {
		return nil
	}
	header, rows, err := c.ReadFile(file)
	if err != nil {
		return err
	}
	if header == nil {
		return nil
	}

	perm := make([]int, 0, len(header))
	for _, col := range want {
		if idx := indexOf(header, col); idx >= 0 {
			perm = append(perm, idx)
		}
	}
	for i, col := range header {
		if indexOf(want, col) < 0 {
			perm = append(perm, i)
		}
	}

	inOrder := true
	for i, idx := range perm {
		if i != idx {
			inOrder = false
			break
		}
	}
	if inOrder {
		return nil
	}

	newHeader := make([]string, len(perm))
	for i, idx := range perm {
		newHeader[i] = header[idx]
	}
	newRows := make([][]string, len(rows))
	for r, row := range rows {
		out := make([]string, len(perm))
		for i, idx := range perm {
			out[i] = row[idx]
		}
		newRows[r] = out
	}
	c.log.Info("reordered columns", zap.String("file", file))
	return c.WriteFile(file, newHeader, newRows)
}

func indexOf(list []string, want string) int {
	for i, v := range list {
		if v == want {
			return i
		}
	}
	return -1
}

func removeAt(list []string, idx int) []string {
	return append(list[:idx:idx], list[idx+1:]...)
}
