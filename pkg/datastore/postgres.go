package datastore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresConfig configures the Postgres backend.
type PostgresConfig struct {
	DSN           string        `env:"DATABASE_URL,required"`
	MaxConns      int32         `env:"DATABASE_MAX_CONNS" envDefault:"10"`
	RetryAttempts int           `env:"DATABASE_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval time.Duration `env:"DATABASE_RETRY_INTERVAL" envDefault:"2s"`
}

// Postgres is a Store backed by a pgx connection pool. The query DSL is
// compiled to parameterized SQL; identifiers are sanitized, values travel as
// bind parameters.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects with retries so process startup survives a database
// that is still coming up, verifying each attempt with a ping.
func NewPostgres(ctx context.Context, cfg PostgresConfig) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, errors.Join(ErrConnect, err)
	}
	poolCfg.MaxConns = cfg.MaxConns

	attempts := max(cfg.RetryAttempts, 1)
	for i := range attempts {
		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return &Postgres{pool: pool}, nil
			}
			pool.Close()
		}
		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return nil, errors.Join(ErrConnect, ctx.Err())
			case <-time.After(cfg.RetryInterval):
			}
		}
	}
	return nil, ErrConnect
}

// NewPostgresFromPool wraps an existing pool, mainly for tests.
func NewPostgresFromPool(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Close releases the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

func (p *Postgres) Select(ctx context.Context, collection string, q Query) ([]Row, error) {
	var sb strings.Builder
	sb.WriteString("SELECT * FROM ")
	sb.WriteString(pgx.Identifier{collection}.Sanitize())

	args := appendWhere(&sb, q.Filters(), nil)

	if orderings := q.Orderings(); len(orderings) > 0 {
		sb.WriteString(" ORDER BY ")
		for i, o := range orderings {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(pgx.Identifier{o.Field}.Sanitize())
			if o.Desc {
				sb.WriteString(" DESC")
			}
		}
	}
	if n := q.LimitN(); n > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", n)
	}

	rows, err := p.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, errors.Join(ErrRequest, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	out := []Row{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, errors.Join(ErrDecode, err)
		}
		row := make(Row, len(fields))
		for i, fd := range fields {
			row[fd.Name] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrRequest, err)
	}
	return out, nil
}

func (p *Postgres) Insert(ctx context.Context, collection string, row Row) (Row, error) {
	columns := sortedKeys(row)

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(pgx.Identifier{collection}.Sanitize())
	sb.WriteString(" (")

	args := make([]any, 0, len(columns))
	for i, col := range columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(pgx.Identifier{col}.Sanitize())
		args = append(args, row[col])
	}
	sb.WriteString(") VALUES (")
	for i := range columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "$%d", i+1)
	}
	sb.WriteString(") RETURNING *")

	rows, err := p.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, errors.Join(ErrRequest, err)
	}
	defer rows.Close()

	stored, err := pgx.CollectOneRow(rows, pgx.RowToMap)
	if err != nil {
		return nil, errors.Join(ErrDecode, err)
	}
	return Row(stored), nil
}

func (p *Postgres) Update(ctx context.Context, collection string, q Query, changes Row) (int64, error) {
	if len(changes) == 0 {
		return 0, nil
	}
	columns := sortedKeys(changes)

	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(pgx.Identifier{collection}.Sanitize())
	sb.WriteString(" SET ")

	args := make([]any, 0, len(columns)+len(q.Filters()))
	for i, col := range columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		args = append(args, changes[col])
		fmt.Fprintf(&sb, "%s = $%d", pgx.Identifier{col}.Sanitize(), len(args))
	}
	args = appendWhere(&sb, q.Filters(), args)

	tag, err := p.pool.Exec(ctx, sb.String(), args...)
	if err != nil {
		return 0, errors.Join(ErrRequest, err)
	}
	return tag.RowsAffected(), nil
}

func (p *Postgres) Delete(ctx context.Context, collection string, q Query) (int64, error) {
	var sb strings.Builder
	sb.WriteString("DELETE FROM ")
	sb.WriteString(pgx.Identifier{collection}.Sanitize())

	args := appendWhere(&sb, q.Filters(), nil)

	tag, err := p.pool.Exec(ctx, sb.String(), args...)
	if err != nil {
		return 0, errors.Join(ErrRequest, err)
	}
	return tag.RowsAffected(), nil
}

// appendWhere writes the WHERE clause for the filters, numbering bind
// parameters after any the caller already collected.
func appendWhere(sb *strings.Builder, filters []Filter, args []any) []any {
	for i, f := range filters {
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		args = append(args, f.Value)
		fmt.Fprintf(sb, "%s = $%d", pgx.Identifier{f.Field}.Sanitize(), len(args))
	}
	return args
}

func sortedKeys(row Row) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	// Stable column order keeps generated SQL deterministic for logs and
	// prepared-statement caching.
	sort.Strings(keys)
	return keys
}
