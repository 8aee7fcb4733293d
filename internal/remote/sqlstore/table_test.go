package sqlstore

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"portfolio-backend/internal/remote"
)

type note struct {
	ID        string
	Title     string
	Tags      []string
	Link      string
	CreatedAt time.Time
}

var noteSchema = remote.Schema[note]{
	Table:   "notes",
	Columns: []string{"id", "title", "tags", "link", "created_at"},
	Scan: func(row remote.Scanner) (note, error) {
		var (
			n    note
			tags string
			link sql.NullString
			ts   remote.Timestamp
		)
		if err := row.Scan(&n.ID, &n.Title, &tags, &link, &ts); err != nil {
			return note{}, err
		}
		list, err := remote.DecodeList(tags)
		if err != nil {
			return note{}, err
		}
		n.Tags = list
		n.Link = link.String
		n.CreatedAt = ts.Time
		return n, nil
	},
	ID: func(rec note) string { return rec.ID },
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestPostgresSelectOrdered(t *testing.T) {
	db, mock := newMock(t)
	table := NewTable(db, Postgres{}, noteSchema)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT id, title, tags, link, created_at FROM notes ORDER BY created_at DESC").
		WillReturnRows(sqlmock.NewRows(noteSchema.Columns).
			AddRow("n2", "second", `["b"]`, nil, now).
			AddRow("n1", "first", `[]`, "https://example.com", now.Add(-time.Hour)))

	rows, err := table.Select(context.Background(), remote.Query{OrderBy: "created_at", Desc: true})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, []string{"b"}, rows[0].Tags)
	require.Equal(t, "https://example.com", rows[1].Link)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSelectRejectsUnknownOrder(t *testing.T) {
	db, _ := newMock(t)
	table := NewTable(db, Postgres{}, noteSchema)
	_, err := table.Select(context.Background(), remote.Query{OrderBy: "title; DROP TABLE notes"})
	require.Error(t, err)
}

func TestPostgresInsertReturnsServerRecord(t *testing.T) {
	db, mock := newMock(t)
	table := NewTable(db, Postgres{}, noteSchema)
	table.newID = func() string { return "fixed-id" }
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	table.now = func() time.Time { return now }

	mock.ExpectQuery("INSERT INTO notes (id, created_at, link, tags, title) VALUES ($1, $2, $3, $4, $5) RETURNING id, title, tags, link, created_at").
		WithArgs("fixed-id", now, nil, `["go","sql"]`, "hello").
		WillReturnRows(sqlmock.NewRows(noteSchema.Columns).AddRow("fixed-id", "hello", `["go","sql"]`, nil, now))

	rec, err := table.Insert(context.Background(), remote.Fields{
		"title": "hello",
		"tags":  []string{"go", "sql"},
		"link":  nil,
	})
	require.NoError(t, err)
	require.Equal(t, "fixed-id", rec.ID)
	require.Equal(t, []string{"go", "sql"}, rec.Tags)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateSendsOnlyPresentFields(t *testing.T) {
	db, mock := newMock(t)
	table := NewTable(db, Postgres{}, noteSchema)

	mock.ExpectExec("UPDATE notes SET title = $1 WHERE id = $2").
		WithArgs("renamed", "n1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, table.Update(context.Background(), "n1", remote.Fields{"title": "renamed"}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateMissingRow(t *testing.T) {
	db, mock := newMock(t)
	table := NewTable(db, Postgres{}, noteSchema)

	mock.ExpectExec("UPDATE notes SET title = $1 WHERE id = $2").
		WithArgs("renamed", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := table.Update(context.Background(), "missing", remote.Fields{"title": "renamed"})
	require.ErrorIs(t, err, remote.ErrNotFound)
}

func TestPostgresDeleteAndGetNotFound(t *testing.T) {
	db, mock := newMock(t)
	table := NewTable(db, Postgres{}, noteSchema)

	mock.ExpectExec("DELETE FROM notes WHERE id = $1").
		WithArgs("n1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT id, title, tags, link, created_at FROM notes WHERE id = $1").
		WithArgs("n1").
		WillReturnError(sql.ErrNoRows)

	require.ErrorIs(t, table.Delete(context.Background(), "n1"), remote.ErrNotFound)
	_, err := table.Get(context.Background(), "n1")
	require.ErrorIs(t, err, remote.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteRoundTrip(t *testing.T) {
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "notes.db")+"?_time_format=sqlite")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE notes (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		tags TEXT NOT NULL DEFAULT '[]',
		link TEXT,
		created_at TIMESTAMP NOT NULL
	)`)
	require.NoError(t, err)

	ctx := context.Background()
	table := NewTable(db, SQLite{}, noteSchema)

	first, err := table.Insert(ctx, remote.Fields{"title": "first", "tags": []string{"a"}})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	require.False(t, first.CreatedAt.IsZero())

	require.NoError(t, table.Update(ctx, first.ID, remote.Fields{"link": "https://example.com"}))
	got, err := table.Get(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, "first", got.Title)
	require.Equal(t, []string{"a"}, got.Tags)
	require.Equal(t, "https://example.com", got.Link)

	rows, err := table.Select(ctx, remote.Query{})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	require.NoError(t, table.Delete(ctx, first.ID))
	_, err = table.Get(ctx, first.ID)
	require.ErrorIs(t, err, remote.ErrNotFound)
}
