package files

import (
	"io"
	"time"
)

// FileRecord describes one stored file. URL always points at an existing blob.
type FileRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	Type      string    `json:"type"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}

// Upload is one file to store.
type Upload struct {
	Name string
	Size int64
	Type string
	Body io.Reader
}
