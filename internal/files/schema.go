package files

import (
	"fmt"
	"time"

	"portfolio-backend/internal/remote"
)

// Schema maps FileRecord onto the files table.
var Schema = remote.Schema[FileRecord]{
	Table:   "files",
	Columns: []string{"id", "name", "size", "type", "url", "created_at"},
	Scan: func(row remote.Scanner) (FileRecord, error) {
		var (
			f       FileRecord
			created remote.Timestamp
		)
		if err := row.Scan(&f.ID, &f.Name, &f.Size, &f.Type, &f.URL, &created); err != nil {
			return FileRecord{}, err
		}
		f.CreatedAt = created.Time
		return f, nil
	},
	Apply: func(f *FileRecord, fields remote.Fields) error {
		for _, col := range fields.Columns() {
			v := fields[col]
			var err error
			switch col {
			case "name":
				f.Name, err = remote.AsString(v)
			case "type":
				f.Type, err = remote.AsString(v)
			case "url":
				f.URL, err = remote.AsString(v)
			case "size":
				var n int
				n, err = remote.AsInt(v)
				f.Size = int64(n)
			default:
				err = fmt.Errorf("unknown column")
			}
			if err != nil {
				return fmt.Errorf("%s: %w", col, err)
			}
		}
		return nil
	},
	Stamp: func(f *FileRecord, id string, createdAt time.Time) {
		f.ID, f.CreatedAt = id, createdAt
	},
	ID:        func(f FileRecord) string { return f.ID },
	CreatedAt: func(f FileRecord) time.Time { return f.CreatedAt },
}
