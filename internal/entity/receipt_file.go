package entity

import (
	"time"

	"github.com/google/uuid"
)

// IngestedFile represents a receipt file for data transfer between layers.
// ContentHash is the sha256 of the file body; the store dedupes on it.
type IngestedFile struct {
	ID          uuid.UUID `json:"id"`
	SourcePath  string    `json:"source_path"`
	Filename    string    `json:"filename"`
	FileExt     string    `json:"file_ext"`
	FileSize    int       `json:"file_size"`
	ContentHash []byte    `json:"content_hash"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
