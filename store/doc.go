// Package store provides the table store: loading logical tables from CSV
// files into an in-memory representation with schema enforcement, and
// persisting them back in canonical column order.
//
// All cells are read as strings with no type inference except the two
// declared date columns (event date, cohort start date), which are normalized
// to YYYY-MM-DD with unparseable values becoming "no date". The store is
// self-healing: an absent file is created header-only, missing canonical
// columns are materialized as empty strings and the repaired file is
// rewritten immediately, and malformed rows are dropped with a warning rather
// than aborting the load.
//
// Key Responsibilities:
//   - Creating absent table files with header-only canonical schemas
//   - Repairing schema drift (missing columns, legacy headers) on load
//   - Preserving the employee table's open-ended extra columns
//   - Full-file rewrites on save, never partial writes
//   - An opt-in bounded read cache with an explicit invalidation hook
//
// Caching is disabled by default; a caller that opts in via WithCacheTTL must
// call Invalidate at the start of every write path, because the update
// engine's read-modify-write sequences are only correct against the latest
// on-disk state.
//
// Usage Example:
//
//	st, err := store.New("./data", schema.Default(), logger)
//	events, err := st.Load(schema.Events)
//	// mutate events.Rows ...
//	err = st.Save(schema.Events, events)
package store
