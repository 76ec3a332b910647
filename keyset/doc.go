// Package keyset models the list-valued fields stored inside single CSV
// cells (comma-joined foreign keys).
//
// Update logic never manipulates the delimited string directly; it parses the
// cell into a Set, mutates the Set, and serializes it back. Serialization is
// deterministic (sorted ascending, unique, empties dropped) so that repeated
// identical updates produce byte-identical files.
package keyset
