package backup

// SnapshotBuilder walks the profile's sources and mirrors changed files
// into a freshly created snapshot directory.
//
// Build never fails the run: missing sources and per-file copy failures
// are logged and counted, and the orchestrator has already resolved the
// fatal preconditions (destination exists, snapshot directory created)
// before Build is called.
type SnapshotBuilder interface {
	Build(sources []string, snapshotDir string, detector *ChangeDetector) *RunStats
}
