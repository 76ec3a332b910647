// Package backup provides timestamp-named snapshot and restore of all table
// files.
//
// A backup is a plain directory copy under backups/backup_YYYYMMDD_HHMMSS/;
// restore overwrites the current table files after first snapshotting the
// current state as a safety net. The migration chain takes a backup before
// every migration attempt, which is the system's recovery path for partial
// multi-file writes.
package backup
