package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lease-cli/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func testDocument(t *testing.T, s *SQLiteStore) *model.Document {
	t.Helper()
	doc, err := s.CreateDocument(context.Background(), model.Document{
		Name: "lease.txt",
		Pages: []model.Page{
			{Number: 1, Text: "COMMERCIAL LEASE AGREEMENT"},
			{Number: 2, Text: "Base Rent: $2,500.00 per month"},
		},
	})
	require.NoError(t, err)
	return doc
}

func TestSQLiteStore_DocumentRoundTrip(t *testing.T) {
	s := newTestStore(t)
	doc := testDocument(t, s)
	require.NotEmpty(t, doc.ID)

	got, err := s.GetDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.Name, got.Name)
	require.Len(t, got.Pages, 2)
	assert.Equal(t, 2, got.Pages[1].Number)

	_, err = s.GetDocument(context.Background(), "missing")
	assert.Error(t, err)
}

func TestSQLiteStore_UpsertField_CreateThenUpdate(t *testing.T) {
	s := newTestStore(t)
	doc := testDocument(t, s)
	ctx := context.Background()

	rent := 2500.0
	first, err := s.UpsertField(ctx, model.LeaseField{
		ExtractedField: model.ExtractedField{
			FieldName:  model.FieldBaseRent,
			ValueText:  "$2,500.00",
			Normalized: &model.NormalizedValue{Numeric: &rent},
			Source:     &model.ClauseLocation{Page: 2, ClauseID: "seg-1", Excerpt: "Base Rent: $2,500.00"},
			Confidence: 92,
			Origin:     model.OriginPattern,
		},
		DocumentID:      doc.ID,
		ValidationState: model.StateAutoPass,
	})
	require.NoError(t, err)
	assert.Equal(t, model.StateAutoPass, first.ValidationState)
	require.NotNil(t, first.Normalized)
	assert.Equal(t, 2500.0, *first.Normalized.Numeric)
	assert.Equal(t, 2, first.Source.Page)

	// Second write for the same (document, field) supersedes the first.
	updated := 2600.0
	second, err := s.UpsertField(ctx, model.LeaseField{
		ExtractedField: model.ExtractedField{
			FieldName:  model.FieldBaseRent,
			ValueText:  "$2,600.00",
			Normalized: &model.NormalizedValue{Numeric: &updated},
			Confidence: 96,
			Origin:     model.OriginDomain,
		},
		DocumentID:      doc.ID,
		ValidationState: model.StateAutoPass,
	})
	require.NoError(t, err)
	assert.Equal(t, "$2,600.00", second.ValueText)
	assert.Equal(t, model.OriginDomain, second.Origin)

	fields, err := s.ListFields(ctx, doc.ID)
	require.NoError(t, err)
	assert.Len(t, fields, 1)
}

func TestSQLiteStore_UpsertFields_Batch(t *testing.T) {
	s := newTestStore(t)
	doc := testDocument(t, s)

	n, err := s.UpsertFields(context.Background(), []model.LeaseField{
		{ExtractedField: model.ExtractedField{FieldName: model.FieldTenantName, ValueText: "Acme Widgets Inc."}, DocumentID: doc.ID},
		{ExtractedField: model.ExtractedField{FieldName: model.FieldLandlordName, ValueText: "Riverside Holdings LLC"}, DocumentID: doc.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	fields, err := s.ListFields(context.Background(), doc.ID)
	require.NoError(t, err)
	require.Len(t, fields, 2)
	// Default state for unvalidated writes.
	assert.Equal(t, model.StateCandidate, fields[0].ValidationState)
	// Ordered by field name.
	assert.Equal(t, model.FieldLandlordName, fields[0].FieldName)
	assert.Equal(t, model.FieldTenantName, fields[1].FieldName)
}

func TestSQLiteStore_ReviewField(t *testing.T) {
	s := newTestStore(t)
	doc := testDocument(t, s)
	ctx := context.Background()

	seed := func(state model.ValidationState) {
		_, err := s.UpsertField(ctx, model.LeaseField{
			ExtractedField:  model.ExtractedField{FieldName: model.FieldLeaseStart, ValueText: "2024-06-01"},
			DocumentID:      doc.ID,
			ValidationState: state,
		})
		require.NoError(t, err)
	}

	t.Run("flagged to human_pass", func(t *testing.T) {
		seed(model.StateFlagged)
		reviewed, err := s.ReviewField(ctx, doc.ID, model.FieldLeaseStart, model.StateHumanPass, "")
		require.NoError(t, err)
		assert.Equal(t, model.StateHumanPass, reviewed.ValidationState)
		assert.Equal(t, "2024-06-01", reviewed.ValueText)
	})

	t.Run("rule_fail to human_edit replaces the value", func(t *testing.T) {
		seed(model.StateRuleFail)
		reviewed, err := s.ReviewField(ctx, doc.ID, model.FieldLeaseStart, model.StateHumanEdit, "2024-07-01")
		require.NoError(t, err)
		assert.Equal(t, model.StateHumanEdit, reviewed.ValidationState)
		assert.Equal(t, "2024-07-01", reviewed.ValueText)
	})

	t.Run("auto_pass rejects human transition", func(t *testing.T) {
		seed(model.StateAutoPass)
		_, err := s.ReviewField(ctx, doc.ID, model.FieldLeaseStart, model.StateHumanPass, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "illegal review transition")
	})

	t.Run("flagged rejects non-human target", func(t *testing.T) {
		seed(model.StateFlagged)
		_, err := s.ReviewField(ctx, doc.ID, model.FieldLeaseStart, model.StateAutoPass, "")
		require.Error(t, err)
	})
}

func TestSQLiteStore_RunLifecycle(t *testing.T) {
	s := newTestStore(t)
	doc := testDocument(t, s)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusQueued, run.Status)

	require.NoError(t, s.UpdateRunStatus(ctx, run.ID, model.RunStatusExtracting))

	phase, err := s.CreatePhase(ctx, run.ID, "segment")
	require.NoError(t, err)
	require.NoError(t, s.CompletePhase(ctx, phase.ID, &model.PhaseResult{
		Name:     "segment",
		Status:   model.PhaseStatusComplete,
		Duration: 12,
		Metadata: map[string]any{"segments": 7},
	}))

	require.NoError(t, s.UpdateRunResult(ctx, run.ID, &model.RunResult{
		FieldsExtracted: 14,
		FieldsReview:    2,
		ReportStatus:    model.ReportWarning,
		ScheduleMonths:  60,
	}))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, 14, got.Result.FieldsExtracted)
	assert.Equal(t, model.ReportWarning, got.Result.ReportStatus)

	runs, err := s.ListRuns(ctx, RunFilter{DocumentID: doc.ID})
	require.NoError(t, err)
	require.Len(t, runs, 1)

	runs, err = s.ListRuns(ctx, RunFilter{Status: model.RunStatusFailed})
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestSQLiteStore_RunNotFound(t *testing.T) {
	s := newTestStore(t)
	assert.Error(t, s.UpdateRunStatus(context.Background(), "missing", model.RunStatusComplete))
	assert.Error(t, s.CompletePhase(context.Background(), "missing", &model.PhaseResult{Status: model.PhaseStatusComplete}))
}

func TestSQLiteStore_ReportRoundTrip(t *testing.T) {
	s := newTestStore(t)
	doc := testDocument(t, s)
	ctx := context.Background()

	report := model.ValidationReport{
		DocumentID:    doc.ID,
		OverallStatus: model.ReportFail,
		Discrepancies: []model.Discrepancy{{
			ID:          "d-1",
			FieldName:   model.FieldLeaseStart,
			Severity:    model.SeverityCritical,
			Type:        model.DiscrepancyLogicError,
			Description: "lease start date is not before lease end date",
		}},
	}
	require.NoError(t, s.SaveReport(ctx, report))

	got, err := s.GetReport(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReportFail, got.OverallStatus)
	require.Len(t, got.Discrepancies, 1)
	assert.Equal(t, model.SeverityCritical, got.Discrepancies[0].Severity)

	// Saving again replaces the stored report.
	report.OverallStatus = model.ReportPass
	report.Discrepancies = nil
	require.NoError(t, s.SaveReport(ctx, report))
	got, err = s.GetReport(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReportPass, got.OverallStatus)
	assert.Empty(t, got.Discrepancies)

	_, err = s.GetReport(ctx, "missing")
	assert.Error(t, err)
}

func TestSQLiteStore_TimestampsAdvanceOnUpsert(t *testing.T) {
	s := newTestStore(t)
	doc := testDocument(t, s)
	ctx := context.Background()

	first, err := s.UpsertField(ctx, model.LeaseField{
		ExtractedField: model.ExtractedField{FieldName: model.FieldTenantName, ValueText: "Acme Widgets Inc."},
		DocumentID:     doc.ID,
	})
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	second, err := s.UpsertField(ctx, model.LeaseField{
		ExtractedField: model.ExtractedField{FieldName: model.FieldTenantName, ValueText: "Acme Widgets, Inc."},
		DocumentID:     doc.ID,
	})
	require.NoError(t, err)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
}
