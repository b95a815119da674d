package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownKind       = errors.New("unknown kind")
	ErrUnknownGroupBy    = errors.New("unknown group by")
	ErrUnknownControl    = errors.New("unknown filter control")
	ErrInvalidDate       = errors.New("invalid date")
	ErrSessionNotFound   = errors.New("view session not found")
	ErrQueueItemNotFound = errors.New("queue item not found")
)

// FetchOp names the collaborator call that failed.
type FetchOp string

const (
	OpFetchRecords FetchOp = "fetch_records"
	OpFetchQueue   FetchOp = "fetch_upload_queue"
)

// FetchFailure wraps a backend error raised while loading records or the
// upload queue.
type FetchFailure struct {
	Kind Kind
	Op   FetchOp
	Err  error
}

func (e *FetchFailure) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Op, e.Err)
}

func (e *FetchFailure) Unwrap() error {
	return e.Err
}

// MalformedRecord reports a record that is missing an expected field.
// It is informational only: projections treat the field as empty or zero.
type MalformedRecord struct {
	WorkshopID string
	Field      string
	Reason     string
}

func (e *MalformedRecord) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("record %q: missing %s", e.WorkshopID, e.Field)
	}
	return fmt.Sprintf("record %q: field %s: %s", e.WorkshopID, e.Field, e.Reason)
}
