package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"portfolio-backend/internal/remote"
)

// Table is an in-memory remote.Table.
type Table[T any] struct {
	schema remote.Schema[T]
	now    func() time.Time

	mu   sync.RWMutex
	rows []T

	faults *faults
}

// NewTable constructs an empty table for schema.
func NewTable[T any](schema remote.Schema[T]) *Table[T] {
	return &Table[T]{
		schema: schema,
		now:    func() time.Time { return time.Now().UTC() },
		faults: newFaults(),
	}
}

// WithClock overrides the creation timestamp source.
func (t *Table[T]) WithClock(now func() time.Time) *Table[T] {
	t.now = now
	return t
}

// SetFault installs fault for op; nil clears it.
func (t *Table[T]) SetFault(op Op, fault Fault) {
	t.faults.set(op, fault)
}

// Calls returns how many times op was invoked.
func (t *Table[T]) Calls(op Op) int {
	return t.faults.calls(op)
}

// TotalCalls returns the number of calls across all ops.
func (t *Table[T]) TotalCalls() int {
	return t.faults.total()
}

// Len reports the number of stored rows.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.rows)
}

// Select returns stored rows, ordered by created_at or id when requested.
func (t *Table[T]) Select(ctx context.Context, q remote.Query) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := t.faults.enter(Call{Op: OpSelect}); err != nil {
		return nil, err
	}

	t.mu.RLock()
	out := make([]T, len(t.rows))
	copy(out, t.rows)
	t.mu.RUnlock()

	switch {
	case q.OrderBy == "created_at" && t.schema.CreatedAt != nil:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := t.schema.CreatedAt(out[i]), t.schema.CreatedAt(out[j])
			if q.Desc {
				return a.After(b)
			}
			return a.Before(b)
		})
	case q.OrderBy == "id":
		sort.SliceStable(out, func(i, j int) bool {
			a, b := t.schema.ID(out[i]), t.schema.ID(out[j])
			if q.Desc {
				return a > b
			}
			return a < b
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// Get returns one row by id.
func (t *Table[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if err := t.faults.enter(Call{Op: OpGet, ID: id}); err != nil {
		return zero, err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if i := t.indexOf(id); i >= 0 {
		return t.rows[i], nil
	}
	return zero, remote.ErrNotFound
}

// Insert stores a new row with a generated id.
func (t *Table[T]) Insert(ctx context.Context, fields remote.Fields) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if err := t.faults.enter(Call{Op: OpInsert, Fields: fields}); err != nil {
		return zero, err
	}
	if err := t.schema.Validate(fields); err != nil {
		return zero, err
	}

	var rec T
	t.schema.Stamp(&rec, uuid.NewString(), t.now())
	if err := t.schema.Apply(&rec, fields); err != nil {
		return zero, err
	}

	t.mu.Lock()
	t.rows = append(t.rows, rec)
	t.mu.Unlock()
	return rec, nil
}

// Update applies fields to an existing row.
func (t *Table[T]) Update(ctx context.Context, id string, fields remote.Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := t.faults.enter(Call{Op: OpUpdate, ID: id, Fields: fields}); err != nil {
		return err
	}
	if err := t.schema.Validate(fields); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.indexOf(id)
	if i < 0 {
		return remote.ErrNotFound
	}
	rec := t.rows[i]
	if err := t.schema.Apply(&rec, fields); err != nil {
		return err
	}
	t.rows[i] = rec
	return nil
}

// Delete removes a row by id.
func (t *Table[T]) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := t.faults.enter(Call{Op: OpDelete, ID: id}); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	i := t.indexOf(id)
	if i < 0 {
		return remote.ErrNotFound
	}
	t.rows = append(t.rows[:i], t.rows[i+1:]...)
	return nil
}

func (t *Table[T]) indexOf(id string) int {
	for i := range t.rows {
		if t.schema.ID(t.rows[i]) == id {
			return i
		}
	}
	return -1
}

var _ remote.Table[struct{}] = (*Table[struct{}])(nil)
