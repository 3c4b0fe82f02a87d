package store

import (
	"context"

	"github.com/sells-group/lease-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status     model.RunStatus `json:"status,omitempty"`
	DocumentID string          `json:"document_id,omitempty"`
	Limit      int             `json:"limit,omitempty"`
	Offset     int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the extraction pipeline.
// Field writes are idempotent upserts keyed by (document_id, field_name).
type Store interface {
	// Documents
	CreateDocument(ctx context.Context, doc model.Document) (*model.Document, error)
	GetDocument(ctx context.Context, id string) (*model.Document, error)

	// Fields
	UpsertField(ctx context.Context, field model.LeaseField) (*model.LeaseField, error)
	UpsertFields(ctx context.Context, fields []model.LeaseField) (int, error)
	GetField(ctx context.Context, documentID, fieldName string) (*model.LeaseField, error)
	ListFields(ctx context.Context, documentID string) ([]model.LeaseField, error)
	ReviewField(ctx context.Context, documentID, fieldName string, next model.ValidationState, editedValue string) (*model.LeaseField, error)

	// Runs
	CreateRun(ctx context.Context, documentID string) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	UpdateRunResult(ctx context.Context, runID string, result *model.RunResult) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Phases
	CreatePhase(ctx context.Context, runID string, name string) (*model.RunPhase, error)
	CompletePhase(ctx context.Context, phaseID string, result *model.PhaseResult) error

	// Reports
	SaveReport(ctx context.Context, report model.ValidationReport) error
	GetReport(ctx context.Context, documentID string) (*model.ValidationReport, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
