package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/andresuchdata/workshop-dashboard/internal/domain"
	"github.com/jmoiron/sqlx"
)

const defaultQueueLimit = 100

type queueRow struct {
	ID        int64          `db:"id"`
	Kind      string         `db:"kind"`
	MediaKey  sql.NullString `db:"media_key"`
	MediaPath sql.NullString `db:"media_path"`
	Status    string         `db:"status"`
	Comments  sql.NullString `db:"comments"`
	CreatedAt time.Time      `db:"created_at"`
}

type QueueRepository struct {
	db    *DB
	limit int
}

func NewQueueRepository(db *DB) *QueueRepository {
	return &QueueRepository{db: db, limit: defaultQueueLimit}
}

// FetchUploadQueue lists the most recent upload jobs for the kind, newest
// first.
func (r *QueueRepository) FetchUploadQueue(ctx context.Context, kind domain.Kind) ([]domain.QueueItem, error) {
	query := `
		SELECT id, kind, media_key, media_path, status, comments, created_at
		FROM upload_queue
		WHERE kind = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	var rows []queueRow
	err := r.db.withPermit(ctx, func() error {
		return sqlx.SelectContext(ctx, r.db, &rows, query, string(kind), r.limit)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s upload queue: %w", kind, err)
	}

	items := make([]domain.QueueItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDomain())
	}
	return items, nil
}

func (row queueRow) toDomain() domain.QueueItem {
	item := domain.QueueItem{
		ID:        row.ID,
		Kind:      domain.Kind(row.Kind),
		Status:    row.Status,
		CreatedAt: row.CreatedAt,
	}
	if row.MediaKey.Valid || row.MediaPath.Valid {
		item.Media = &domain.Media{Key: row.MediaKey.String, Path: row.MediaPath.String}
	}
	if row.Comments.Valid {
		comment := row.Comments.String
		item.Comments = &comment
	}
	return item
}
