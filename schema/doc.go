// Package schema defines the logical tables of the participation tracker and
// their canonical column sets.
//
// Each logical table (employees, workshops, cohorts, events, participants)
// maps to one CSV file and an ordered list of canonical column names. The
// Registry is pure static data consumed by every other package; it has no
// behavior beyond lookup. Adding a column to a table requires updating the
// Registry and registering a migration step for existing files.
//
// Key Types:
//   - TableKey: identifier for a logical table
//   - TableSpec: file name, canonical columns, key column, date columns
//   - Registry: immutable TableKey -> TableSpec mapping
//
// Key Responsibilities:
//   - Declaring per-table file names and canonical column order
//   - Identifying each table's key column and date-typed columns
//   - Marking the employee table's schema as open-ended (extra columns from
//     externally sourced organizational data are preserved verbatim)
//
// Usage Example:
//
//	reg := schema.Default()
//	spec, err := reg.Spec(schema.Events)
//	// spec.File == "events.csv", spec.KeyColumn == "EventID"
//
// The registry is injected into the table store, update engine, migration
// chain, and backup manager at construction time.
package schema
