package recordstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/sims/internal/db"
	"github.com/yigit/sims/internal/pkg/logger"
)

const recordsTable = "sims_records"

// PostgresStore keeps every table line as a row of sims_records, ordered by id.
// Rewrites run in one transaction holding an advisory lock on the table name.
type PostgresStore struct {
	db *db.PostgresDB
	sb squirrel.StatementBuilderType
}

// NewPostgresStore creates a store on an open pool. The schema comes from db.Migrator.
func NewPostgresStore(database *db.PostgresDB) *PostgresStore {
	return &PostgresStore{
		db: database,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

type storedLine struct {
	id   int64
	line string
}

// Append implements Store.
func (s *PostgresStore) Append(ctx context.Context, t Table, fields []string) error {
	line, err := EncodeLine(fields)
	if err != nil {
		return err
	}

	sql, args, err := s.sb.Insert(recordsTable).
		Columns("table_name", "line").
		Values(t.Name, line).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build append query: %w", err)
	}

	if _, err := s.db.Pool.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("table", t.Name).Msg("Error appending record")
		return ioFailure("insert into", t.Name, err)
	}
	return nil
}

// FindByKey implements Store.
func (s *PostgresStore) FindByKey(ctx context.Context, t Table, keyField int, keyValue string) (Record, bool, error) {
	var (
		found Record
		ok    bool
	)
	match := KeyEquals(keyField, keyValue)
	err := s.Scan(ctx, t, func(r Record) error {
		if r.Malformed || !match(r) {
			return nil
		}
		found, ok = r, true
		return ErrStopScan
	})
	return found, ok, err
}

// Scan implements Store.
func (s *PostgresStore) Scan(ctx context.Context, t Table, fn func(Record) error) error {
	lines, err := s.load(ctx, s.db.Pool, t)
	if err != nil {
		return err
	}
	for i, l := range lines {
		if isBlank(l.line) {
			continue
		}
		if err := fn(DecodeLine(t, l.line, i+1)); err != nil {
			if errors.Is(err, ErrStopScan) {
				return nil
			}
			return err
		}
	}
	return nil
}

// RewriteWhere implements Store.
func (s *PostgresStore) RewriteWhere(ctx context.Context, t Table, match MatchFunc, transform TransformFunc) (RewriteResult, error) {
	var (
		res           RewriteResult
		transformErrs []error
	)

	err := s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", t.Name); err != nil {
			return ioFailure("lock", t.Name, err)
		}

		lines, err := s.load(ctx, tx, t)
		if err != nil {
			return err
		}

		for i, l := range lines {
			out, keep, lineErr := rewriteLine(t, l.line, i+1, match, transform, &res)
			if lineErr != nil {
				transformErrs = append(transformErrs, lineErr)
				continue
			}
			switch {
			case !keep:
				err = s.exec(ctx, tx, s.sb.Delete(recordsTable).Where(squirrel.Eq{"id": l.id}))
			case out != l.line:
				err = s.exec(ctx, tx, s.sb.Update(recordsTable).
					Set("line", out).
					Set("updated_at", squirrel.Expr("CURRENT_TIMESTAMP")).
					Where(squirrel.Eq{"id": l.id}))
			}
			if err != nil {
				return ioFailure("rewrite", t.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return RewriteResult{}, err
	}
	return res, errors.Join(transformErrs...)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (s *PostgresStore) load(ctx context.Context, q querier, t Table) ([]storedLine, error) {
	sql, args, err := s.sb.Select("id", "line").
		From(recordsTable).
		Where(squirrel.Eq{"table_name": t.Name}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build scan query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, ioFailure("select from", t.Name, err)
	}
	defer rows.Close()

	var lines []storedLine
	for rows.Next() {
		var l storedLine
		if err := rows.Scan(&l.id, &l.line); err != nil {
			return nil, ioFailure("scan", t.Name, err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, ioFailure("iterate", t.Name, err)
	}
	return lines, nil
}

func (s *PostgresStore) exec(ctx context.Context, tx pgx.Tx, b squirrel.Sqlizer) error {
	sql, args, err := b.ToSql()
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, sql, args...)
	return err
}
