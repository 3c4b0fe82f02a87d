package model

import "time"

// RunStatus represents the current state of a processing run.
type RunStatus string

const (
	RunStatusQueued      RunStatus = "queued"
	RunStatusSegmenting  RunStatus = "segmenting"
	RunStatusExtracting  RunStatus = "extracting"
	RunStatusValidating  RunStatus = "validating"
	RunStatusReconciling RunStatus = "reconciling"
	RunStatusComplete    RunStatus = "complete"
	RunStatusFailed      RunStatus = "failed"
)

// Run is one pipeline execution over a document.
type Run struct {
	ID         string     `json:"id"`
	DocumentID string     `json:"document_id"`
	Status     RunStatus  `json:"status"`
	Result     *RunResult `json:"result,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// RunPhase is one recorded phase of a run.
type RunPhase struct {
	ID        string      `json:"id"`
	RunID     string      `json:"run_id"`
	Name      string      `json:"name"`
	Status    PhaseStatus `json:"status"`
	StartedAt time.Time   `json:"started_at"`
}

// PhaseStatus represents the current state of a pipeline phase.
type PhaseStatus string

const (
	PhaseStatusRunning  PhaseStatus = "running"
	PhaseStatusComplete PhaseStatus = "complete"
	PhaseStatusDegraded PhaseStatus = "degraded"
	PhaseStatusFailed   PhaseStatus = "failed"
	PhaseStatusSkipped  PhaseStatus = "skipped"
)

// PhaseResult captures the outcome of a single pipeline phase.
type PhaseResult struct {
	Name     string         `json:"name"`
	Status   PhaseStatus    `json:"status"`
	Duration int64          `json:"duration_ms"`
	Error    string         `json:"error,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// RunResult is the finalized summary saved with a completed run.
type RunResult struct {
	FieldsExtracted int           `json:"fields_extracted"`
	FieldsReview    int           `json:"fields_review"`
	ReportStatus    ReportStatus  `json:"report_status"`
	Discrepancies   int           `json:"discrepancies"`
	ScheduleMonths  int           `json:"schedule_months"`
	Phases          []PhaseResult `json:"phases"`
	Report          string        `json:"report,omitempty"`
}
