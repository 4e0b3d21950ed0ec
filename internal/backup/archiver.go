package backup

// Archiver compresses a completed snapshot directory into a single
// archive file placed alongside it.
type Archiver interface {
	// Archive writes every file under snapshotDir into
	// destRoot/name.zip with entry paths relative to snapshotDir,
	// removes snapshotDir on success, and returns the archive size.
	// On failure the snapshot directory is left intact and any partial
	// archive is removed: a failed compression must never destroy the
	// only copy of the data.
	Archive(snapshotDir, destRoot, name string) (int64, error)
}
