package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lease-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewPostgresWithPool(mock), mock
}

func TestPostgresStore_GetRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, document_id, status, result, created_at, updated_at FROM runs WHERE id = \$1`).
		WithArgs("nonexistent-run").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetRun(context.Background(), "nonexistent-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get run")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CreateRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO runs`).
		WithArgs(pgxmock.AnyArg(), "doc-1", "queued", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run, err := s.CreateRun(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1", run.DocumentID)
	assert.Equal(t, model.RunStatusQueued, run.Status)
	assert.NotEmpty(t, run.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateRunStatus_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET status`).
		WithArgs("segmenting", pgxmock.AnyArg(), "missing-run").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateRunStatus(context.Background(), "missing-run", model.RunStatusSegmenting)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertField(t *testing.T) {
	s, mock := newMockPostgresStore(t)
	now := time.Now().UTC()

	mock.ExpectExec(`INSERT INTO lease_fields`).
		WithArgs("doc-1", model.FieldBaseRent, "$2,500.00", pgxmock.AnyArg(), pgxmock.AnyArg(),
			92.0, "pattern", string(model.StateAutoPass), "", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery(`SELECT .+ FROM lease_fields WHERE document_id = \$1 AND field_name = \$2`).
		WithArgs("doc-1", model.FieldBaseRent).
		WillReturnRows(pgxmock.NewRows([]string{
			"document_id", "field_name", "value_text", "normalized", "source",
			"confidence", "origin", "validation_state", "validation_notes", "created_at", "updated_at",
		}).AddRow("doc-1", model.FieldBaseRent, strPtr("$2,500.00"), []byte(`{"numeric":2500}`), nil,
			92.0, strPtr("pattern"), model.StateAutoPass, strPtr(""), now, now))

	stored, err := s.UpsertField(context.Background(), model.LeaseField{
		ExtractedField: model.ExtractedField{
			FieldName:  model.FieldBaseRent,
			ValueText:  "$2,500.00",
			Confidence: 92,
			Origin:     model.OriginPattern,
		},
		DocumentID:      "doc-1",
		ValidationState: model.StateAutoPass,
	})
	require.NoError(t, err)
	assert.Equal(t, "$2,500.00", stored.ValueText)
	require.NotNil(t, stored.Normalized)
	require.NotNil(t, stored.Normalized.Numeric)
	assert.Equal(t, 2500.0, *stored.Normalized.Numeric)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertFields_Bulk(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"lease_fields_incoming"}, []string{
		"document_id", "field_name", "value_text", "normalized", "source",
		"confidence", "origin", "validation_state", "validation_notes", "created_at", "updated_at",
	}).WillReturnResult(2)
	mock.ExpectExec(`INSERT INTO "lease_fields" .+ ON CONFLICT`).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	fields := []model.LeaseField{
		{ExtractedField: model.ExtractedField{FieldName: model.FieldTenantName, ValueText: "Acme Widgets Inc."}, DocumentID: "doc-1"},
		{ExtractedField: model.ExtractedField{FieldName: model.FieldBaseRent, ValueText: "$2,500.00"}, DocumentID: "doc-1"},
	}
	n, err := s.UpsertFields(context.Background(), fields)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertFields_Empty(t *testing.T) {
	s, _ := newMockPostgresStore(t)
	n, err := s.UpsertFields(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPostgresStore_SaveReport_Upsert(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`ON CONFLICT`).
		WithArgs("doc-1", "warning", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.SaveReport(context.Background(), model.ValidationReport{
		DocumentID:    "doc-1",
		OverallStatus: model.ReportWarning,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func strPtr(s string) *string { return &s }
