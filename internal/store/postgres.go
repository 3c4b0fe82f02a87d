package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/lease-cli/internal/db"
	"github.com/sells-group/lease-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"get_field":         `SELECT ` + pgFieldColumns + ` FROM lease_fields WHERE document_id = $1 AND field_name = $2`,
	"list_fields":       `SELECT ` + pgFieldColumns + ` FROM lease_fields WHERE document_id = $1 ORDER BY field_name`,
	"insert_run":        `INSERT INTO runs (id, document_id, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
	"update_run_status": `UPDATE runs SET status = $1, updated_at = $2 WHERE id = $3`,
	"update_run_result": `UPDATE runs SET result = $1, status = $2, updated_at = $3 WHERE id = $4`,
	"get_run":           `SELECT id, document_id, status, result, created_at, updated_at FROM runs WHERE id = $1`,
	"insert_phase":      `INSERT INTO run_phases (id, run_id, name, status, started_at) VALUES ($1, $2, $3, $4, $5)`,
	"complete_phase":    `UPDATE run_phases SET status = $1, result = $2 WHERE id = $3`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool, used by tests.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	pages      JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS lease_fields (
	document_id      TEXT NOT NULL REFERENCES documents(id),
	field_name       TEXT NOT NULL,
	value_text       TEXT,
	normalized       JSONB,
	source           JSONB,
	confidence       DOUBLE PRECISION NOT NULL DEFAULT 0,
	origin           TEXT,
	validation_state TEXT NOT NULL DEFAULT 'candidate',
	validation_notes TEXT,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (document_id, field_name)
);

CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	document_id TEXT NOT NULL REFERENCES documents(id),
	status      TEXT NOT NULL DEFAULT 'queued',
	result      JSONB,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS run_phases (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	run_id     TEXT NOT NULL REFERENCES runs(id),
	name       TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	result     JSONB,
	started_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS reports (
	document_id   TEXT PRIMARY KEY REFERENCES documents(id),
	status        TEXT NOT NULL,
	discrepancies JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_lease_fields_document_id ON lease_fields(document_id);
CREATE INDEX IF NOT EXISTS idx_lease_fields_state ON lease_fields(validation_state);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_runs_document_id ON runs(document_id);
CREATE INDEX IF NOT EXISTS idx_run_phases_run_id ON run_phases(run_id);
`

const pgFieldColumns = `document_id, field_name, value_text, normalized, source, confidence, origin, validation_state, validation_notes, created_at, updated_at`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateDocument(ctx context.Context, doc model.Document) (*model.Document, error) {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	doc.CreatedAt = time.Now().UTC()

	pagesJSON, err := json.Marshal(doc.Pages)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal pages")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (id, name, pages, created_at) VALUES ($1, $2, $3, $4)`,
		doc.ID, doc.Name, pagesJSON, doc.CreatedAt,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert document")
	}
	return &doc, nil
}

func (s *PostgresStore) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	var doc model.Document
	var pagesJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, name, pages, created_at FROM documents WHERE id = $1`, id,
	).Scan(&doc.ID, &doc.Name, &pagesJSON, &doc.CreatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get document %s", id)
	}
	if err := json.Unmarshal(pagesJSON, &doc.Pages); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal pages")
	}
	return &doc, nil
}

func (s *PostgresStore) UpsertField(ctx context.Context, field model.LeaseField) (*model.LeaseField, error) {
	now := time.Now().UTC()
	field.UpdatedAt = now
	if field.CreatedAt.IsZero() {
		field.CreatedAt = now
	}
	if field.ValidationState == "" {
		field.ValidationState = model.StateCandidate
	}

	normalizedJSON, sourceJSON, err := marshalFieldJSON(field)
	if err != nil {
		return nil, err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO lease_fields
			(document_id, field_name, value_text, normalized, source, confidence, origin, validation_state, validation_notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (document_id, field_name) DO UPDATE SET
			value_text = EXCLUDED.value_text,
			normalized = EXCLUDED.normalized,
			source = EXCLUDED.source,
			confidence = EXCLUDED.confidence,
			origin = EXCLUDED.origin,
			validation_state = EXCLUDED.validation_state,
			validation_notes = EXCLUDED.validation_notes,
			updated_at = EXCLUDED.updated_at`,
		field.DocumentID, field.FieldName, field.ValueText, normalizedJSON, sourceJSON,
		field.Confidence, string(field.Origin), string(field.ValidationState),
		field.ValidationNotes, field.CreatedAt, field.UpdatedAt,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: upsert field %s/%s", field.DocumentID, field.FieldName)
	}
	return s.GetField(ctx, field.DocumentID, field.FieldName)
}

// UpsertFields writes a whole document's fields in one round trip via the
// temp-table COPY upsert.
func (s *PostgresStore) UpsertFields(ctx context.Context, fields []model.LeaseField) (int, error) {
	if len(fields) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	rows := make([][]any, 0, len(fields))
	for _, f := range fields {
		if f.ValidationState == "" {
			f.ValidationState = model.StateCandidate
		}
		created := f.CreatedAt
		if created.IsZero() {
			created = now
		}
		normalizedJSON, sourceJSON, err := marshalFieldJSON(f)
		if err != nil {
			return 0, err
		}
		rows = append(rows, []any{
			f.DocumentID, f.FieldName, f.ValueText, jsonOrNil(normalizedJSON), jsonOrNil(sourceJSON),
			f.Confidence, string(f.Origin), string(f.ValidationState), f.ValidationNotes, created, now,
		})
	}

	cols := []string{
		"document_id", "field_name", "value_text", "normalized", "source",
		"confidence", "origin", "validation_state", "validation_notes", "created_at", "updated_at",
	}
	n, err := db.CopyUpsert(ctx, s.pool, db.CopySpec{
		Table:    "lease_fields",
		Columns:  cols,
		Conflict: []string{"document_id", "field_name"},
		Update: []string{
			"value_text", "normalized", "source", "confidence", "origin",
			"validation_state", "validation_notes", "updated_at",
		},
	}, rows)
	return int(n), eris.Wrap(err, "postgres: bulk upsert fields")
}

func (s *PostgresStore) GetField(ctx context.Context, documentID, fieldName string) (*model.LeaseField, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+pgFieldColumns+` FROM lease_fields WHERE document_id = $1 AND field_name = $2`,
		documentID, fieldName)
	f, err := scanPgField(row)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get field %s/%s", documentID, fieldName)
	}
	return f, nil
}

func (s *PostgresStore) ListFields(ctx context.Context, documentID string) ([]model.LeaseField, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+pgFieldColumns+` FROM lease_fields WHERE document_id = $1 ORDER BY field_name`,
		documentID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list fields")
	}
	defer rows.Close()

	var fields []model.LeaseField
	for rows.Next() {
		f, err := scanPgField(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan field")
		}
		fields = append(fields, *f)
	}
	return fields, eris.Wrap(rows.Err(), "postgres: list fields iterate")
}

func (s *PostgresStore) ReviewField(ctx context.Context, documentID, fieldName string, next model.ValidationState, editedValue string) (*model.LeaseField, error) {
	current, err := s.GetField(ctx, documentID, fieldName)
	if err != nil {
		return nil, err
	}
	if !current.ValidationState.CanTransitionTo(next) {
		return nil, eris.Errorf("postgres: illegal review transition %s -> %s for %s",
			current.ValidationState, next, fieldName)
	}

	value := current.ValueText
	if next == model.StateHumanEdit {
		value = editedValue
	}
	_, err = s.pool.Exec(ctx,
		`UPDATE lease_fields SET validation_state = $1, value_text = $2, updated_at = $3
		 WHERE document_id = $4 AND field_name = $5`,
		string(next), value, time.Now().UTC(), documentID, fieldName,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: review field %s", fieldName)
	}
	return s.GetField(ctx, documentID, fieldName)
}

func (s *PostgresStore) CreateRun(ctx context.Context, documentID string) (*model.Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO runs (id, document_id, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		id, documentID, string(model.RunStatusQueued), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}
	return &model.Run{
		ID:         id,
		DocumentID: documentID,
		Status:     model.RunStatusQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (s *PostgresStore) UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run status %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) UpdateRunResult(ctx context.Context, runID string, result *model.RunResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal result")
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET result = $1, status = $2, updated_at = $3 WHERE id = $4`,
		resultJSON, string(model.RunStatusComplete), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update run result %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	var r model.Run
	var resultJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT id, document_id, status, result, created_at, updated_at FROM runs WHERE id = $1`,
		runID,
	).Scan(&r.ID, &r.DocumentID, &r.Status, &resultJSON, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	if resultJSON != nil {
		r.Result = &model.RunResult{}
		if err := json.Unmarshal(resultJSON, r.Result); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal result")
		}
	}
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, document_id, status, result, created_at, updated_at FROM runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.DocumentID != "" {
		query += fmt.Sprintf(` AND document_id = $%d`, argIdx)
		args = append(args, filter.DocumentID)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		var resultJSON []byte
		if err := rows.Scan(&r.ID, &r.DocumentID, &r.Status, &resultJSON, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		if resultJSON != nil {
			r.Result = &model.RunResult{}
			if err := json.Unmarshal(resultJSON, r.Result); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal result")
			}
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func (s *PostgresStore) CreatePhase(ctx context.Context, runID string, name string) (*model.RunPhase, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO run_phases (id, run_id, name, status, started_at) VALUES ($1, $2, $3, $4, $5)`,
		id, runID, name, string(model.PhaseStatusRunning), now,
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert phase for run %s", runID)
	}
	return &model.RunPhase{
		ID:        id,
		RunID:     runID,
		Name:      name,
		Status:    model.PhaseStatusRunning,
		StartedAt: now,
	}, nil
}

func (s *PostgresStore) CompletePhase(ctx context.Context, phaseID string, result *model.PhaseResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal phase result")
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE run_phases SET status = $1, result = $2 WHERE id = $3`,
		string(result.Status), resultJSON, phaseID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete phase %s", phaseID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("phase not found: %s", phaseID)
	}
	return nil
}

func (s *PostgresStore) SaveReport(ctx context.Context, report model.ValidationReport) error {
	discJSON, err := json.Marshal(report.Discrepancies)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal discrepancies")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO reports (document_id, status, discrepancies, created_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (document_id) DO UPDATE SET
			status = EXCLUDED.status,
			discrepancies = EXCLUDED.discrepancies,
			created_at = EXCLUDED.created_at`,
		report.DocumentID, string(report.OverallStatus), discJSON, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: save report %s", report.DocumentID)
}

func (s *PostgresStore) GetReport(ctx context.Context, documentID string) (*model.ValidationReport, error) {
	var report model.ValidationReport
	var discJSON []byte

	err := s.pool.QueryRow(ctx,
		`SELECT document_id, status, discrepancies FROM reports WHERE document_id = $1`,
		documentID,
	).Scan(&report.DocumentID, &report.OverallStatus, &discJSON)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get report %s", documentID)
	}
	if err := json.Unmarshal(discJSON, &report.Discrepancies); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal discrepancies")
	}
	return &report, nil
}

// helpers

func marshalFieldJSON(field model.LeaseField) (normalized, source []byte, err error) {
	if field.Normalized != nil {
		normalized, err = json.Marshal(field.Normalized)
		if err != nil {
			return nil, nil, eris.Wrap(err, "marshal normalized value")
		}
	}
	if field.Source != nil {
		source, err = json.Marshal(field.Source)
		if err != nil {
			return nil, nil, eris.Wrap(err, "marshal source location")
		}
	}
	return normalized, source, nil
}

func jsonOrNil(b []byte) any {
	if b == nil {
		return nil
	}
	return b
}

func scanPgField(row pgx.Row) (*model.LeaseField, error) {
	var f model.LeaseField
	var valueText, origin, notes *string
	var normalizedJSON, sourceJSON []byte

	err := row.Scan(&f.DocumentID, &f.FieldName, &valueText, &normalizedJSON, &sourceJSON,
		&f.Confidence, &origin, &f.ValidationState, &notes, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if valueText != nil {
		f.ValueText = *valueText
	}
	if origin != nil {
		f.Origin = model.ExtractionOrigin(*origin)
	}
	if notes != nil {
		f.ValidationNotes = *notes
	}
	if normalizedJSON != nil {
		f.Normalized = &model.NormalizedValue{}
		if err := json.Unmarshal(normalizedJSON, f.Normalized); err != nil {
			return nil, eris.Wrap(err, "unmarshal normalized value")
		}
	}
	if sourceJSON != nil {
		f.Source = &model.ClauseLocation{}
		if err := json.Unmarshal(sourceJSON, f.Source); err != nil {
			return nil, eris.Wrap(err, "unmarshal source location")
		}
	}
	return &f, nil
}

