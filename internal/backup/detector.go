package backup

// ChangeDetector decides per file whether a copy is needed. It is
// constructed fresh for each backup run.
//
// In full (non-incremental) mode every file is treated as changed and the
// fingerprint store is never consulted. In incremental mode a file is
// changed when its digest cannot be computed, when no digest is recorded
// for it under this profile, or when the recorded digest differs from the
// current one. I/O failures always classify as changed: re-copying is
// safe, silently skipping is not.
type ChangeDetector struct {
	store       FingerprintStore
	profileID   string
	incremental bool
}

// NewChangeDetector creates a detector for one run of the given profile.
func NewChangeDetector(store FingerprintStore, profileID string, incremental bool) *ChangeDetector {
	return &ChangeDetector{
		store:       store,
		profileID:   profileID,
		incremental: incremental,
	}
}

// Evaluate classifies the file at path. It returns whether the file must
// be copied and, when it was computed, the file's current digest so the
// caller can hand it back to Commit without hashing twice.
func (d *ChangeDetector) Evaluate(path string) (changed bool, digest string) {
	if !d.incremental {
		return true, ""
	}

	digest, err := d.store.DigestOf(path)
	if err != nil {
		// Fail open: an unreadable file is "changed" so the copy is
		// still attempted and the failure surfaces there.
		return true, ""
	}

	stored, ok := d.store.Lookup(d.profileID, path)
	if !ok {
		return true, digest
	}
	return stored != digest, digest
}

// Commit records the digest for a file that was successfully copied.
// If Evaluate did not produce a digest (digest computation failed but the
// copy succeeded anyway), the digest is recomputed; if that also fails the
// entry is left alone and the file will re-detect as changed next run.
// Commit is a no-op in full mode.
func (d *ChangeDetector) Commit(path, digest string) {
	if !d.incremental {
		return
	}
	if digest == "" {
		recomputed, err := d.store.DigestOf(path)
		if err != nil {
			return
		}
		digest = recomputed
	}
	d.store.Record(d.profileID, path, digest)
}

// Incremental reports whether this run consults the fingerprint store.
func (d *ChangeDetector) Incremental() bool { return d.incremental }
