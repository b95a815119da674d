// internal/repository/repository.go
package repository

import (
	"context"

	"github.com/andresuchdata/workshop-dashboard/internal/domain"
)

// RecordRepository loads flat records for a kind with the transmitted
// filter parameters. Implementations honour the half-open date interval the
// parameters resolve to.
type RecordRepository interface {
	FetchRecords(ctx context.Context, kind domain.Kind, params domain.FetchParams) ([]domain.Record, error)
}

// QueueRepository lists upload jobs reported by the ingestion pipeline.
type QueueRepository interface {
	FetchUploadQueue(ctx context.Context, kind domain.Kind) ([]domain.QueueItem, error)
}
