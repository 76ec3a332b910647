package store

import "tracker/schema"

// Row holds one record as column name -> cell text. Every cell is a string;
// dates are normalized to YYYY-MM-DD and list-valued cells hold comma-joined
// keys (see the keyset package).
type Row map[string]string

// Table is the in-memory representation of one logical table for the
// duration of a request. No component retains a table across requests; every
// operation re-reads from disk before writing.
type Table struct {
	Key     schema.TableKey
	Columns []string
	Rows    []Row
}

// FindRow returns the index of the first row whose column equals value,
// or -1 if no row matches
func (t *Table) FindRow(column, value string) int {
	for i, row := range t.Rows {
		if row[column] == value {
			return i
		}
	}
	return -1
}

// Index builds a value -> row index lookup over one column. The first row
// wins on duplicate values. Rows with an empty cell are skipped.
func (t *Table) Index(column string) map[string]int {
	idx := make(map[string]int, len(t.Rows))
	for i, row := range t.Rows {
		val := row[column]
		if val == "" {
			continue
		}
		if _, exists := idx[val]; !exists {
			idx[val] = i
		}
	}
	return idx
}

// Append adds a row, filling any missing columns with the empty string
func (t *Table) Append(row Row) {
	filled := make(Row, len(t.Columns))
	for _, col := range t.Columns {
		filled[col] = row[col]
	}
	t.Rows = append(t.Rows, filled)
}

// Copy returns a deep copy of the table
func (t *Table) Copy() *Table {
	cp := &Table{
		Key:     t.Key,
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]Row, len(t.Rows)),
	}
	for i, row := range t.Rows {
		r := make(Row, len(row))
		for k, v := range row {
			r[k] = v
		}
		cp.Rows[i] = r
	}
	return cp
}
