package backup

// OutcomeKind classifies the result of processing a single file.
type OutcomeKind int

const (
	// OutcomeCopied means the file was copied into the snapshot.
	OutcomeCopied OutcomeKind = iota
	// OutcomeSkipped means the file was unchanged and not copied.
	OutcomeSkipped
	// OutcomeFailed means the copy was attempted and failed.
	OutcomeFailed
)

// CopyOutcome is the per-file result of a backup run. Outcomes are
// consumed to update counters and logs only; they are never persisted.
type CopyOutcome struct {
	Path  string
	Kind  OutcomeKind
	Bytes int64
	Err   error
}

// RunStats accumulates counters over one backup run.
type RunStats struct {
	FilesCopied  int
	FilesSkipped int
	FilesFailed  int
	BytesCopied  int64
}

// Apply folds a single file outcome into the counters.
func (s *RunStats) Apply(o CopyOutcome) {
	switch o.Kind {
	case OutcomeCopied:
		s.FilesCopied++
		s.BytesCopied += o.Bytes
	case OutcomeSkipped:
		s.FilesSkipped++
	case OutcomeFailed:
		s.FilesFailed++
	}
}
