package remote

import (
	"encoding/json"
	"fmt"
	"time"
)

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Schema describes how one entity maps onto a record collection. Both the
// SQL and the in-memory tables are driven by it.
type Schema[T any] struct {
	Table string
	// Columns lists every selected column, id first.
	Columns []string
	// Scan reads one row selected with Columns.
	Scan func(row Scanner) (T, error)
	// Apply writes fields onto a record; used by stores that keep typed rows.
	Apply func(rec *T, fields Fields) error
	// Stamp sets the server-assigned id and creation time.
	Stamp func(rec *T, id string, createdAt time.Time)
	ID    func(rec T) string
	// CreatedAt is optional; stores fall back to insertion order without it.
	CreatedAt func(rec T) time.Time
}

// HasColumn reports whether col is one of the schema's columns.
func (s Schema[T]) HasColumn(col string) bool {
	for _, c := range s.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// Validate checks that every field maps onto a known, writable column.
func (s Schema[T]) Validate(fields Fields) error {
	for col := range fields {
		if col == "id" || col == "created_at" {
			return fmt.Errorf("%s: column %q is server-assigned", s.Table, col)
		}
		if !s.HasColumn(col) {
			return fmt.Errorf("%s: unknown column %q", s.Table, col)
		}
	}
	return nil
}

// EncodeList stores an ordered string sequence as JSON text.
func EncodeList(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeList is the inverse of EncodeList. Empty input yields an empty list.
func DecodeList(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// AsString converts a field value to a string; nil becomes "".
func AsString(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case *string:
		if t == nil {
			return "", nil
		}
		return *t, nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

// AsBool converts a field value to a bool.
func AsBool(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case *bool:
		if t == nil {
			return false, nil
		}
		return *t, nil
	default:
		return false, fmt.Errorf("expected bool, got %T", v)
	}
}

// AsInt converts a field value to an int.
func AsInt(v any) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int32:
		return int(t), nil
	case int64:
		return int(t), nil
	case *int:
		if t == nil {
			return 0, nil
		}
		return *t, nil
	default:
		return 0, fmt.Errorf("expected int, got %T", v)
	}
}

// AsStrings converts a field value to a copied string slice.
func AsStrings(v any) ([]string, error) {
	switch t := v.(type) {
	case nil:
		return []string{}, nil
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out, nil
	default:
		return nil, fmt.Errorf("expected []string, got %T", v)
	}
}
