package backup

// FingerprintStore maps (profile, absolute file path) to a content digest
// so unchanged files can be skipped on incremental runs. Implementations
// load their state once at startup and persist it with Save; everything
// else operates on the in-memory index.
type FingerprintStore interface {
	// DigestOf computes the content digest of the file at path by
	// streaming it in fixed-size chunks. Memory use is independent of
	// file size.
	DigestOf(path string) (string, error)

	// Lookup returns the digest recorded for (profileID, path) and
	// whether such an entry exists.
	Lookup(profileID, path string) (string, bool)

	// Record stores the digest for (profileID, path) in memory.
	// The change is not durable until Save.
	Record(profileID, path, digest string)

	// Save persists the index. Called at most once per backup run,
	// after all files have been processed.
	Save() error
}
