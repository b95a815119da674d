package service

import (
	"context"

	"github.com/andresuchdata/workshop-dashboard/internal/domain"
	"github.com/andresuchdata/workshop-dashboard/internal/repository"
	"github.com/andresuchdata/workshop-dashboard/internal/storage"
	"github.com/rs/zerolog/log"
)

// QueueService lists upload jobs and resolves their media keys into
// download links.
type QueueService struct {
	repo   repository.QueueRepository
	linker storage.Linker
}

func NewQueueService(repo repository.QueueRepository, linker storage.Linker) *QueueService {
	if linker == nil {
		linker = &storage.Router{}
	}
	return &QueueService{repo: repo, linker: linker}
}

func (s *QueueService) FetchUploadQueue(ctx context.Context, sess domain.Session, kind domain.Kind) ([]domain.QueueItem, error) {
	items, err := s.repo.FetchUploadQueue(ctx, kind)
	if err != nil {
		return nil, err
	}

	for i := range items {
		media := items[i].Media
		if media == nil || media.Key == "" {
			continue
		}
		link, err := s.linker.Link(ctx, media.Key)
		if err != nil {
			// keep whatever path the pipeline stored
			log.Warn().Err(err).Int64("item_id", items[i].ID).Msg("queue: could not resolve media link")
			continue
		}
		resolved := *media
		resolved.Path = link
		items[i].Media = &resolved
	}

	return items, nil
}
