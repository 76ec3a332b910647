// Package resolver validates batches of free-form identifiers (StandardIDs
// or email addresses) against the employee table.
//
// Unrecognized tokens are not rejected: they are emitted as first-class keys
// for downstream processing and separately flagged as unresolved, with every
// occurrence appended to the could_not_find.csv audit log for later
// reconciliation. This dual behavior is intentional; participation records
// may reference people not yet present in the employee table.
//
// The package also decodes uploaded identifier lists (BOM detection, UTF-16,
// Latin-1 fallback) into UTF-8 text before tokenizing.
package resolver
