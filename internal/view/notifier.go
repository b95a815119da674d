package view

import (
	"context"

	"github.com/andresuchdata/workshop-dashboard/internal/domain"
	"github.com/rs/zerolog/log"
)

// Notifier surfaces fetch failures outside the controller.
type Notifier interface {
	Notify(ctx context.Context, failure *domain.FetchFailure)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, failure *domain.FetchFailure)

func (f NotifierFunc) Notify(ctx context.Context, failure *domain.FetchFailure) {
	f(ctx, failure)
}

// LogNotifier writes failures to the structured log.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, failure *domain.FetchFailure) {
	log.Warn().
		Err(failure.Err).
		Str("kind", string(failure.Kind)).
		Str("op", string(failure.Op)).
		Msg("view: fetch failed, keeping previous snapshot")
}
