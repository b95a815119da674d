package service

import (
	"context"

	"github.com/andresuchdata/workshop-dashboard/internal/cache"
	"github.com/andresuchdata/workshop-dashboard/internal/domain"
	"github.com/andresuchdata/workshop-dashboard/internal/repository"
	"github.com/rs/zerolog/log"
)

// RecordService is the record source behind every view session: a
// read-through cache over the record repository.
type RecordService struct {
	repo  repository.RecordRepository
	cache cache.RecordsCache
}

func NewRecordService(repo repository.RecordRepository, cacheImpl cache.RecordsCache) *RecordService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopRecordsCache()
	}
	return &RecordService{repo: repo, cache: cacheImpl}
}

func (s *RecordService) FetchRecords(ctx context.Context, sess domain.Session, kind domain.Kind, params domain.FetchParams) ([]domain.Record, error) {
	if records, ok := s.cached(ctx, kind, params); ok {
		return records, nil
	}

	unlock, obtained, err := s.cache.LockFill(ctx, kind, params)
	if err != nil {
		log.Warn().Err(err).Str("kind", string(kind)).Msg("records: fill lock failed; querying without lock")
	}
	defer unlock(ctx)
	if obtained {
		// another caller may have filled the key while we waited
		if records, ok := s.cached(ctx, kind, params); ok {
			return records, nil
		}
	}

	records, err := s.repo.FetchRecords(ctx, kind, params)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetRecords(ctx, kind, params, records); err != nil {
		log.Warn().Err(err).Str("kind", string(kind)).Msg("records: cache set failed")
	}

	log.Debug().
		Str("kind", string(kind)).
		Str("user", sess.User).
		Str("params", params.Canonical()).
		Int("count", len(records)).
		Msg("records: fetched")

	return records, nil
}

// Invalidate drops every cached collection of the kind, e.g. after an
// upload completes.
func (s *RecordService) Invalidate(ctx context.Context, kind domain.Kind) error {
	return s.cache.InvalidateKind(ctx, kind)
}

func (s *RecordService) cached(ctx context.Context, kind domain.Kind, params domain.FetchParams) ([]domain.Record, bool) {
	records, ok, err := s.cache.GetRecords(ctx, kind, params)
	if err != nil {
		log.Warn().Err(err).Str("kind", string(kind)).Msg("records: cache get failed")
		return nil, false
	}
	return records, ok
}
