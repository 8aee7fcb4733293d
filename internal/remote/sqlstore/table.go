package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"portfolio-backend/internal/remote"
)

// Table implements remote.Table over one SQL table.
type Table[T any] struct {
	DB      *sql.DB
	Dialect Dialect
	Schema  remote.Schema[T]

	now   func() time.Time
	newID func() string
}

// NewTable constructs a Table for schema.
func NewTable[T any](db *sql.DB, dialect Dialect, schema remote.Schema[T]) *Table[T] {
	return &Table[T]{
		DB:      db,
		Dialect: dialect,
		Schema:  schema,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
}

// Select reads the table, optionally ordered and limited.
func (t *Table[T]) Select(ctx context.Context, q remote.Query) ([]T, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(t.Schema.Columns, ", "), t.Schema.Table)
	if q.OrderBy != "" {
		if !t.Schema.HasColumn(q.OrderBy) {
			return nil, fmt.Errorf("%s: cannot order by %q", t.Schema.Table, q.OrderBy)
		}
		dir := "ASC"
		if q.Desc {
			dir = "DESC"
		}
		fmt.Fprintf(&b, " ORDER BY %s %s", q.OrderBy, dir)
	}
	if q.Limit > 0 {
		b.WriteString(" LIMIT " + strconv.Itoa(q.Limit))
	}

	rows, err := t.DB.QueryContext(ctx, b.String())
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", t.Schema.Table, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		rec, err := t.Schema.Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.Schema.Table, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select %s: %w", t.Schema.Table, err)
	}
	return out, nil
}

// Get reads one row by id.
func (t *Table[T]) Get(ctx context.Context, id string) (T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = %s",
		strings.Join(t.Schema.Columns, ", "), t.Schema.Table, t.Dialect.Placeholder(1))
	rec, err := t.Schema.Scan(t.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		var zero T
		if errors.Is(err, sql.ErrNoRows) {
			return zero, remote.ErrNotFound
		}
		return zero, fmt.Errorf("get %s: %w", t.Schema.Table, err)
	}
	return rec, nil
}

// Insert writes a new row with a generated id and creation time and returns it.
func (t *Table[T]) Insert(ctx context.Context, fields remote.Fields) (T, error) {
	var zero T
	if err := t.Schema.Validate(fields); err != nil {
		return zero, err
	}

	cols := append([]string{"id", "created_at"}, fields.Columns()...)
	args := make([]any, 0, len(cols))
	args = append(args, t.newID(), t.now())
	for _, col := range cols[2:] {
		v, err := encode(fields[col])
		if err != nil {
			return zero, fmt.Errorf("insert %s.%s: %w", t.Schema.Table, col, err)
		}
		args = append(args, v)
	}

	marks := make([]string, len(cols))
	for i := range cols {
		marks[i] = t.Dialect.Placeholder(i + 1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		t.Schema.Table, strings.Join(cols, ", "), strings.Join(marks, ", "), strings.Join(t.Schema.Columns, ", "))

	rec, err := t.Schema.Scan(t.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		return zero, fmt.Errorf("insert %s: %w", t.Schema.Table, err)
	}
	return rec, nil
}

// Update writes only the given fields. An empty update still checks that the row exists.
func (t *Table[T]) Update(ctx context.Context, id string, fields remote.Fields) error {
	if err := t.Schema.Validate(fields); err != nil {
		return err
	}
	if len(fields) == 0 {
		_, err := t.Get(ctx, id)
		return err
	}

	cols := fields.Columns()
	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, col := range cols {
		v, err := encode(fields[col])
		if err != nil {
			return fmt.Errorf("update %s.%s: %w", t.Schema.Table, col, err)
		}
		sets[i] = col + " = " + t.Dialect.Placeholder(i+1)
		args = append(args, v)
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = %s",
		t.Schema.Table, strings.Join(sets, ", "), t.Dialect.Placeholder(len(cols)+1))

	res, err := t.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", t.Schema.Table, err)
	}
	return requireAffected(res)
}

// Delete removes a row by id.
func (t *Table[T]) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = %s", t.Schema.Table, t.Dialect.Placeholder(1))
	res, err := t.DB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", t.Schema.Table, err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return remote.ErrNotFound
	}
	return nil
}

// encode converts a field value to a driver value. String sequences are
// stored as JSON text so every dialect shares one column type.
func encode(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return remote.EncodeList(t)
	case *string:
		if t == nil {
			return nil, nil
		}
		return *t, nil
	case string, bool, int, int32, int64, float64, time.Time:
		return t, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

var _ remote.Table[struct{}] = (*Table[struct{}])(nil)
