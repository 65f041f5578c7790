package status

import "time"

// RunPhase is the state of a conversion run
type RunPhase string

const (
	// RunPhaseConverting means a run is in progress or was interrupted
	RunPhaseConverting RunPhase = "Converting"

	// RunPhaseComplete means every included file was converted
	RunPhaseComplete RunPhase = "Complete"

	// RunPhaseFailed means at least one file failed to convert
	RunPhaseFailed RunPhase = "Failed"
)

// RunStatus records the last conversion of a source directory
type RunStatus struct {
	// RunID identifies the run in logs
	RunID string `json:"runId,omitempty"`

	// Phase of the last run
	Phase RunPhase `json:"phase"`

	// Source is the converted directory
	Source string `json:"source,omitempty"`

	// Message provides additional information, such as the first failure
	Message string `json:"message,omitempty"`

	// LastAttempt is when the last run started
	LastAttempt *time.Time `json:"lastAttempt,omitempty"`

	// AttemptCount is the number of runs since the last complete one
	AttemptCount int `json:"attemptCount,omitempty"`

	// LastSuccess is when the last complete run finished
	LastSuccess *time.Time `json:"lastSuccess,omitempty"`

	// Converted, Skipped and Failed count the files of the last run
	Converted int `json:"converted"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`

	// FailedFiles lists the sources that failed in the last run
	FailedFiles []string `json:"failedFiles,omitempty"`
}
