package types

// MaterializeOptions are the inputs for materializing a single image.
type MaterializeOptions struct {
	// The normalized image reference
	Image string
	// The archive file the image is saved to
	Destination string
	// Replace an existing archive at Destination
	Redownload bool
}

// Decision is the action chosen for an image.
type Decision string

const (
	// DecisionSkipCached means an archive already existed and was kept.
	DecisionSkipCached Decision = "skip-cached"
	// DecisionReplaceCached means an existing archive was removed to be regenerated.
	DecisionReplaceCached Decision = "replace-cached"
	// DecisionPullAndSave means the image had to be pulled before saving.
	DecisionPullAndSave Decision = "pull-and-save"
	// DecisionSaveOnly means the runtime already had the image.
	DecisionSaveOnly Decision = "save-only"
)

// Outcome is the terminal state of an image after materialization.
type Outcome string

const (
	// OutcomeSkipped is reported when an existing archive was left untouched.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeSaved is reported when the archive was written.
	OutcomeSaved Outcome = "saved"
	// OutcomePullFailed is reported when the runtime could not pull the image.
	OutcomePullFailed Outcome = "pull-failed"
	// OutcomeSaveFailed is reported when the runtime could not save the image.
	OutcomeSaveFailed Outcome = "save-failed"
	// OutcomeRemoveFailed is reported when an existing archive could not be removed
	// for a redownload.
	OutcomeRemoveFailed Outcome = "remove-failed"
	// OutcomeNotPresent is reported when the pull policy forbids pulling and the
	// runtime does not have the image.
	OutcomeNotPresent Outcome = "not-present"
	// OutcomeInterrupted is reported when the run was cancelled while the image
	// was being pulled or saved.
	OutcomeInterrupted Outcome = "interrupted"
)

// Outcomes lists every outcome in the order they are summarized.
var Outcomes = []Outcome{
	OutcomeSaved,
	OutcomeSkipped,
	OutcomePullFailed,
	OutcomeNotPresent,
	OutcomeSaveFailed,
	OutcomeRemoveFailed,
	OutcomeInterrupted,
}

// Failed returns true if the outcome represents a per-image failure.
func (o Outcome) Failed() bool {
	return o != OutcomeSaved && o != OutcomeSkipped
}

// Result is the record of materializing a single image.
type Result struct {
	Image       string   `yaml:"image"`
	Destination string   `yaml:"destination"`
	Decision    Decision `yaml:"decision,omitempty"`
	Outcome     Outcome  `yaml:"outcome"`
	Error       string   `yaml:"error,omitempty"`
	// Size of the archive in bytes, zero when it was not saved or could not be
	// determined.
	Size int64 `yaml:"size,omitempty"`
}
