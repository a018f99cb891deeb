package pipeline

// Status is the outcome of a single stage.
type Status int

const (
	// StatusPassed means the stage completed without error.
	StatusPassed Status = iota
	// StatusFailed means the stage returned an error and aborted the run.
	StatusFailed
	// StatusSkipped means the stage was not required for this run.
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusPassed:
		return "PASSED"
	case StatusFailed:
		return "FAILED"
	case StatusSkipped:
		return "SKIPPED"
	default:
		return "UNKNOWN"
	}
}

// StageResult records how a single stage ended.
type StageResult struct {
	// Stage is the display name of the stage.
	Stage string
	// Status is the recorded outcome.
	Status Status
	// Reason explains a skip. Empty unless Status is StatusSkipped.
	Reason string
	// Err is the failure cause. Nil unless Status is StatusFailed.
	Err error
}
