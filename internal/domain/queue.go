package domain

import "time"

// Upload queue status codes emitted by the ingestion pipeline.
const (
	QueueStatusPending   = "PENDING"
	QueueStatusCompleted = "COMPLETED"
)

// Media references the uploaded spreadsheet. Key is the storage key, Path
// the downloadable link resolved for it.
type Media struct {
	Key  string `json:"key" db:"media_key"`
	Path string `json:"path" db:"media_path"`
}

// QueueItem is one uploaded file job as reported by the ingestion pipeline.
type QueueItem struct {
	ID        int64     `json:"id" db:"id"`
	Kind      Kind      `json:"kind" db:"kind"`
	Media     *Media    `json:"media"`
	Status    string    `json:"status" db:"status"`
	Comments  *string   `json:"comments" db:"comments"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
