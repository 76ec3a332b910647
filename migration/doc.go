// Package migration implements the ordered schema-migration chain that
// evolves the on-disk table files between application versions.
//
// The current schema version lives in version.json; absent or corrupt
// markers read as the sentinel 0.0.0 (fresh install). On startup the chain
// compares the marker against the application's target version. A fresh
// install is stamped to the target without transforming. Otherwise a full
// backup is taken and the registered single-hop steps are walked from the
// current version toward the target, advancing the marker after each
// successful hop. A failing step surfaces its error and leaves the marker
// unadvanced so the next startup retries; an unrecognized version with no
// registered step is a visible warning, not a failure — availability is
// favored over strict correctness.
//
// Transform steps are defensive by contract: they check every file and
// column they touch and tolerate data already in the target shape, so a
// crash-and-retry or a fresh file created post-hoc with the new schema does
// not break a re-run.
//
// Key Responsibilities:
//   - Reading and advancing the version.json schema marker
//   - Walking registered (from, to, transform) steps strictly sequentially
//   - Taking a full backup before any transform runs
//   - Defensive column add/rename/drop helpers for steps
//   - The historical restructure of the participant table into the
//     per-employee rollup
//
// Usage Example:
//
//	chain, err := migration.NewChain(dataDir, migration.CurrentVersion,
//		migration.DefaultSteps(), backups, logger)
//	if err != nil {
//		return err
//	}
//	if err := chain.Run(); err != nil {
//		// app stays usable; data is recoverable from the pre-migration backup
//	}
//
// The chain runs once at startup, before any table is exposed to the update
// engine.
package migration
