package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// CopySpec describes a COPY-based upsert target: which table, which columns
// the rows carry, which columns identify a row, and which are rewritten when
// the row already exists. Columns outside Update (created_at) keep their
// first-written value.
type CopySpec struct {
	Table    string
	Columns  []string
	Conflict []string
	Update   []string
}

func (s CopySpec) validate() error {
	if s.Table == "" {
		return eris.New("db: copy upsert: no table")
	}
	if len(s.Columns) == 0 {
		return eris.New("db: copy upsert: no columns")
	}
	if len(s.Conflict) == 0 {
		return eris.New("db: copy upsert: no conflict columns")
	}
	if len(s.Update) == 0 {
		return eris.New("db: copy upsert: no update columns")
	}
	return nil
}

func (s CopySpec) stagingName() string {
	return s.Table + "_incoming"
}

func (s CopySpec) insertSQL() string {
	cols := quoteIdents(s.Columns)
	assignments := make([]string, len(s.Update))
	for i, col := range s.Update {
		q := pgx.Identifier{col}.Sanitize()
		assignments[i] = q + " = EXCLUDED." + q
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT %s FROM %s ON CONFLICT (%s) DO UPDATE SET %s",
		pgx.Identifier{s.Table}.Sanitize(),
		cols,
		cols,
		pgx.Identifier{s.stagingName()}.Sanitize(),
		quoteIdents(s.Conflict),
		strings.Join(assignments, ", "),
	)
}

// CopyUpsert lands rows in one round trip: COPY into a transaction-scoped
// staging table, then INSERT ... ON CONFLICT from it into the target. It
// returns the number of rows written.
func CopyUpsert(ctx context.Context, pool Pool, spec CopySpec, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := spec.validate(); err != nil {
		return 0, err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "db: copy upsert: begin tx")
	}
	defer tx.Rollback(ctx)

	staging := spec.stagingName()
	createSQL := fmt.Sprintf(
		"CREATE TEMP TABLE %s (LIKE %s INCLUDING DEFAULTS) ON COMMIT DROP",
		pgx.Identifier{staging}.Sanitize(),
		pgx.Identifier{spec.Table}.Sanitize(),
	)
	if _, err := tx.Exec(ctx, createSQL); err != nil {
		return 0, eris.Wrapf(err, "db: copy upsert: stage %s", spec.Table)
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{staging}, spec.Columns, pgx.CopyFromRows(rows)); err != nil {
		return 0, eris.Wrapf(err, "db: copy upsert: COPY into %s", staging)
	}

	tag, err := tx.Exec(ctx, spec.insertSQL())
	if err != nil {
		return 0, eris.Wrapf(err, "db: copy upsert: merge into %s", spec.Table)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "db: copy upsert: commit tx")
	}

	return tag.RowsAffected(), nil
}

func quoteIdents(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}
