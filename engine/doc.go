// Package engine implements the participation update engine: the multi-table
// read-modify-write transactions that keep the denormalized membership lists
// consistent across files.
//
// The same membership fact ("employee E registered for event V") is written
// redundantly into the event's row and the employee's participant rollup row.
// Both update protocols (event status, cohort membership) share the same
// shape: invalidate any cached reads, load the latest on-disk state, compute
// the full new list per dimension via set union or subtraction, diff against
// the old list for the reported delta, and write both tables back. There is
// no intermediate persisted state; because the updates are union-based and
// idempotent, re-running an update after a partial multi-file write converges
// to the correct state rather than double-applying.
//
// Key Responsibilities:
//   - Event-status updates (register/participate/host) across events.csv and
//     participants.csv
//   - Cohort-membership updates (nominate/invite/join, add or remove) across
//     cohorts.csv and participants.csv
//   - Lazy creation of participant rollup rows with email resolution
//   - Stamping LastUpdated only on rows that actually changed
//   - Appending NominatedBy/Notes annotations for newly-affected
//     participants on add
//   - Logging every unresolved identifier to the audit log
//   - Generating event keys (<prefix><YYYYMMDD>-<seq>)
//
// Usage Example:
//
//	eng := engine.New(st, audit, logger)
//	delta, err := eng.UpdateEventStatus(engine.EventUpdate{
//		EventID:      "D20240101-01",
//		EmployeeKeys: []string{"E1"},
//		Registered:   true,
//	})
//	// delta.Registered == 1 on first call, 0 on an identical repeat
package engine
