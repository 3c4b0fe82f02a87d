package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/lease-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	pages      TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS lease_fields (
	document_id      TEXT NOT NULL REFERENCES documents(id),
	field_name       TEXT NOT NULL,
	value_text       TEXT,
	normalized       TEXT,
	source           TEXT,
	confidence       REAL NOT NULL DEFAULT 0,
	origin           TEXT,
	validation_state TEXT NOT NULL DEFAULT 'candidate',
	validation_notes TEXT,
	created_at       DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at       DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (document_id, field_name)
);

CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	document_id TEXT NOT NULL REFERENCES documents(id),
	status      TEXT NOT NULL DEFAULT 'queued',
	result      TEXT,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS run_phases (
	id         TEXT PRIMARY KEY,
	run_id     TEXT NOT NULL REFERENCES runs(id),
	name       TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	result     TEXT,
	started_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS reports (
	document_id   TEXT PRIMARY KEY REFERENCES documents(id),
	status        TEXT NOT NULL,
	discrepancies TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_lease_fields_document_id ON lease_fields(document_id);
CREATE INDEX IF NOT EXISTS idx_lease_fields_state ON lease_fields(validation_state);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_document_id ON runs(document_id);
CREATE INDEX IF NOT EXISTS idx_run_phases_run_id ON run_phases(run_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateDocument(ctx context.Context, doc model.Document) (*model.Document, error) {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	doc.CreatedAt = time.Now().UTC()

	pagesJSON, err := json.Marshal(doc.Pages)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal pages")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (id, name, pages, created_at) VALUES (?, ?, ?, ?)`,
		doc.ID, doc.Name, string(pagesJSON), doc.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert document")
	}
	return &doc, nil
}

func (s *SQLiteStore) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, pages, created_at FROM documents WHERE id = ?`, id)

	var doc model.Document
	var pagesJSON string
	err := row.Scan(&doc.ID, &doc.Name, &pagesJSON, &doc.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("document not found: %s", id)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get document")
	}
	if err := json.Unmarshal([]byte(pagesJSON), &doc.Pages); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal pages")
	}
	return &doc, nil
}

func (s *SQLiteStore) UpsertField(ctx context.Context, field model.LeaseField) (*model.LeaseField, error) {
	now := time.Now().UTC()
	field.UpdatedAt = now
	if field.CreatedAt.IsZero() {
		field.CreatedAt = now
	}
	if field.ValidationState == "" {
		field.ValidationState = model.StateCandidate
	}

	normalizedJSON, sourceJSON, err := marshalFieldParts(field)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO lease_fields
			(document_id, field_name, value_text, normalized, source, confidence, origin, validation_state, validation_notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (document_id, field_name) DO UPDATE SET
			value_text = excluded.value_text,
			normalized = excluded.normalized,
			source = excluded.source,
			confidence = excluded.confidence,
			origin = excluded.origin,
			validation_state = excluded.validation_state,
			validation_notes = excluded.validation_notes,
			updated_at = excluded.updated_at`,
		field.DocumentID, field.FieldName, field.ValueText, normalizedJSON, sourceJSON,
		field.Confidence, string(field.Origin), string(field.ValidationState),
		field.ValidationNotes, field.CreatedAt, field.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: upsert field %s/%s", field.DocumentID, field.FieldName)
	}
	return s.GetField(ctx, field.DocumentID, field.FieldName)
}

// UpsertFields writes a batch of fields one by one; SQLite has no COPY
// path worth the complexity.
func (s *SQLiteStore) UpsertFields(ctx context.Context, fields []model.LeaseField) (int, error) {
	for i, f := range fields {
		if _, err := s.UpsertField(ctx, f); err != nil {
			return i, err
		}
	}
	return len(fields), nil
}

const sqliteFieldColumns = `document_id, field_name, value_text, normalized, source, confidence, origin, validation_state, validation_notes, created_at, updated_at`

func (s *SQLiteStore) GetField(ctx context.Context, documentID, fieldName string) (*model.LeaseField, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sqliteFieldColumns+` FROM lease_fields WHERE document_id = ? AND field_name = ?`,
		documentID, fieldName)
	f, err := scanField(row)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("field not found: %s/%s", documentID, fieldName)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get field")
	}
	return f, nil
}

func (s *SQLiteStore) ListFields(ctx context.Context, documentID string) ([]model.LeaseField, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteFieldColumns+` FROM lease_fields WHERE document_id = ? ORDER BY field_name`,
		documentID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list fields")
	}
	defer rows.Close()

	var fields []model.LeaseField
	for rows.Next() {
		f, err := scanField(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan field")
		}
		fields = append(fields, *f)
	}
	return fields, eris.Wrap(rows.Err(), "sqlite: list fields iterate")
}

// ReviewField applies a human review transition. Only flagged and rule_fail
// fields may move, and only into human_pass or human_edit.
func (s *SQLiteStore) ReviewField(ctx context.Context, documentID, fieldName string, next model.ValidationState, editedValue string) (*model.LeaseField, error) {
	current, err := s.GetField(ctx, documentID, fieldName)
	if err != nil {
		return nil, err
	}
	if !current.ValidationState.CanTransitionTo(next) {
		return nil, eris.Errorf("sqlite: illegal review transition %s -> %s for %s",
			current.ValidationState, next, fieldName)
	}

	value := current.ValueText
	if next == model.StateHumanEdit {
		value = editedValue
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE lease_fields SET validation_state = ?, value_text = ?, updated_at = ?
		 WHERE document_id = ? AND field_name = ?`,
		string(next), value, time.Now().UTC(), documentID, fieldName,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: review field %s", fieldName)
	}
	return s.GetField(ctx, documentID, fieldName)
}

func (s *SQLiteStore) CreateRun(ctx context.Context, documentID string) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, document_id, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, documentID, string(model.RunStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}
	return &model.Run{
		ID:         id,
		DocumentID: documentID,
		Status:     model.RunStatusQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (s *SQLiteStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run status %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) UpdateRunResult(ctx context.Context, runID string, result *model.RunResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal result")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET result = ?, status = ?, updated_at = ? WHERE id = ?`,
		string(resultJSON), string(model.RunStatusComplete), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update run result %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, document_id, status, result, created_at, updated_at FROM runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, document_id, status, result, created_at, updated_at FROM runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.DocumentID != "" {
		query += ` AND document_id = ?`
		args = append(args, filter.DocumentID)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) CreatePhase(ctx context.Context, runID string, name string) (*model.RunPhase, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_phases (id, run_id, name, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		id, runID, name, string(model.PhaseStatusRunning), now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert phase for run %s", runID)
	}
	return &model.RunPhase{
		ID:        id,
		RunID:     runID,
		Name:      name,
		Status:    model.PhaseStatusRunning,
		StartedAt: now,
	}, nil
}

func (s *SQLiteStore) CompletePhase(ctx context.Context, phaseID string, result *model.PhaseResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal phase result")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE run_phases SET status = ?, result = ? WHERE id = ?`,
		string(result.Status), string(resultJSON), phaseID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete phase %s", phaseID)
	}
	return checkRowsAffected(res, "phase", phaseID)
}

func (s *SQLiteStore) SaveReport(ctx context.Context, report model.ValidationReport) error {
	discJSON, err := json.Marshal(report.Discrepancies)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal discrepancies")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reports (document_id, status, discrepancies, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (document_id) DO UPDATE SET
			status = excluded.status,
			discrepancies = excluded.discrepancies,
			created_at = excluded.created_at`,
		report.DocumentID, string(report.OverallStatus), string(discJSON), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: save report %s", report.DocumentID)
}

func (s *SQLiteStore) GetReport(ctx context.Context, documentID string) (*model.ValidationReport, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT document_id, status, discrepancies FROM reports WHERE document_id = ?`,
		documentID)

	var report model.ValidationReport
	var discJSON string
	err := row.Scan(&report.DocumentID, &report.OverallStatus, &discJSON)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("report not found: %s", documentID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get report")
	}
	if err := json.Unmarshal([]byte(discJSON), &report.Discrepancies); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal discrepancies")
	}
	return &report, nil
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

func marshalFieldParts(field model.LeaseField) (normalized, source sql.NullString, err error) {
	if field.Normalized != nil {
		b, mErr := json.Marshal(field.Normalized)
		if mErr != nil {
			return normalized, source, eris.Wrap(mErr, "marshal normalized value")
		}
		normalized = sql.NullString{String: string(b), Valid: true}
	}
	if field.Source != nil {
		b, mErr := json.Marshal(field.Source)
		if mErr != nil {
			return normalized, source, eris.Wrap(mErr, "marshal source location")
		}
		source = sql.NullString{String: string(b), Valid: true}
	}
	return normalized, source, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanField(row scannable) (*model.LeaseField, error) {
	var f model.LeaseField
	var valueText, normalizedJSON, sourceJSON, origin, notes sql.NullString

	err := row.Scan(&f.DocumentID, &f.FieldName, &valueText, &normalizedJSON, &sourceJSON,
		&f.Confidence, &origin, &f.ValidationState, &notes, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}

	f.ValueText = valueText.String
	f.Origin = model.ExtractionOrigin(origin.String)
	f.ValidationNotes = notes.String
	if normalizedJSON.Valid {
		f.Normalized = &model.NormalizedValue{}
		if err := json.Unmarshal([]byte(normalizedJSON.String), f.Normalized); err != nil {
			return nil, eris.Wrap(err, "unmarshal normalized value")
		}
	}
	if sourceJSON.Valid {
		f.Source = &model.ClauseLocation{}
		if err := json.Unmarshal([]byte(sourceJSON.String), f.Source); err != nil {
			return nil, eris.Wrap(err, "unmarshal source location")
		}
	}
	return &f, nil
}

func scanRun(row scannable) (*model.Run, error) {
	var r model.Run
	var resultJSON sql.NullString

	err := row.Scan(&r.ID, &r.DocumentID, &r.Status, &resultJSON, &r.CreatedAt, &r.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}
	if resultJSON.Valid {
		r.Result = &model.RunResult{}
		if err := json.Unmarshal([]byte(resultJSON.String), r.Result); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal result")
		}
	}
	return &r, nil
}
