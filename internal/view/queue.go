package view

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/andresuchdata/workshop-dashboard/internal/domain"
)

const (
	noCommentText    = "No Comment"
	queueTimeLayout  = "02/01/2006 3:04:05 pm"
	downloadLinkText = "Download File"
	viewCommentText  = "View Comment"
)

// StatusKind is the badge family of a queue status.
type StatusKind string

const (
	StatusPending   StatusKind = "pending"
	StatusCompleted StatusKind = "completed"
	StatusOther     StatusKind = "other"
)

// QueueStatus is the display form of a queue item's status code.
type QueueStatus struct {
	Kind  StatusKind `json:"kind"`
	Label string     `json:"label"`
	Color string     `json:"color"`
}

// StatusOf classifies a queue item. Codes this build does not know about
// are shown with underscores replaced by spaces instead of failing.
func StatusOf(item domain.QueueItem) QueueStatus {
	switch item.Status {
	case domain.QueueStatusPending:
		return QueueStatus{Kind: StatusPending, Label: "Pending", Color: "yellow"}
	case domain.QueueStatusCompleted:
		return QueueStatus{Kind: StatusCompleted, Label: "Completed", Color: "green"}
	}
	return QueueStatus{Kind: StatusOther, Label: strings.ReplaceAll(item.Status, "_", " "), Color: "orange"}
}

// CommentDialog is the state of the comment display surface.
type CommentDialog struct {
	Open    bool   `json:"isOpen"`
	ItemID  int64  `json:"itemId,omitempty"`
	Comment string `json:"comment"`
}

// StatusTransition records a status change observed between two refreshes.
type StatusTransition struct {
	ItemID int64  `json:"itemId"`
	From   string `json:"from"`
	To     string `json:"to"`
}

// QueueTracker remembers the last status seen per queue item and holds the
// comment dialog. It never changes a queue item.
type QueueTracker struct {
	mu          sync.Mutex
	lastStatus  map[int64]string
	transitions []StatusTransition
	dialog      CommentDialog
}

func NewQueueTracker() *QueueTracker {
	return &QueueTracker{lastStatus: make(map[int64]string)}
}

// Observe compares a fresh queue snapshot against the previous one and
// returns the status changes. New items are not transitions.
func (t *QueueTracker) Observe(items []domain.QueueItem) []StatusTransition {
	t.mu.Lock()
	defer t.mu.Unlock()

	var changed []StatusTransition
	next := make(map[int64]string, len(items))
	for _, item := range items {
		next[item.ID] = item.Status
		if prev, ok := t.lastStatus[item.ID]; ok && prev != item.Status {
			changed = append(changed, StatusTransition{ItemID: item.ID, From: prev, To: item.Status})
		}
	}
	t.lastStatus = next
	t.transitions = changed
	return changed
}

// Transitions returns the changes seen by the last Observe.
func (t *QueueTracker) Transitions() []StatusTransition {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]StatusTransition(nil), t.transitions...)
}

// OpenComment shows the comment of the item at 1-based position seq.
func (t *QueueTracker) OpenComment(items []domain.QueueItem, seq int) (CommentDialog, error) {
	if seq < 1 || seq > len(items) {
		return CommentDialog{}, fmt.Errorf("%w: position %d", domain.ErrQueueItemNotFound, seq)
	}
	item := items[seq-1]

	comment := noCommentText
	if item.Comments != nil {
		comment = *item.Comments
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.dialog = CommentDialog{Open: true, ItemID: item.ID, Comment: comment}
	return t.dialog, nil
}

// CloseComment discards the dialog state.
func (t *QueueTracker) CloseComment() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dialog = CommentDialog{}
}

func (t *QueueTracker) Dialog() CommentDialog {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dialog
}

// QueueColumns is the fixed column set of the uploaded files tab.
func QueueColumns() []Column[domain.QueueItem] {
	return []Column[domain.QueueItem]{
		{Key: "sno", Label: "S.No", Kind: ColumnSequence},
		{
			Key:   "media",
			Label: "Media",
			Kind:  ColumnLink,
			Accessor: func(item domain.QueueItem) any {
				return downloadLinkText
			},
			Link: func(item domain.QueueItem) string {
				if item.Media == nil {
					return ""
				}
				return item.Media.Path
			},
		},
		{
			Key:   "createdAt",
			Label: "Date & Time",
			Kind:  ColumnTimestamp,
			Accessor: func(item domain.QueueItem) any {
				return item.CreatedAt
			},
			Format: func(v any) string {
				return formatQueueTime(v)
			},
		},
		{
			Key:   "status",
			Label: "Status",
			Kind:  ColumnBadge,
			Accessor: func(item domain.QueueItem) any {
				return item.Status
			},
			Format: func(v any) string {
				code, _ := v.(string)
				return StatusOf(domain.QueueItem{Status: code}).Label
			},
			Badge: func(item domain.QueueItem) string {
				return StatusOf(item).Color
			},
		},
		{
			Key:   "comments",
			Label: "comments",
			Kind:  ColumnAction,
			Accessor: func(item domain.QueueItem) any {
				return viewCommentText
			},
		},
	}
}

func formatQueueTime(v any) string {
	t, ok := v.(time.Time)
	if !ok || t.IsZero() {
		return ""
	}
	return t.Format(queueTimeLayout)
}
