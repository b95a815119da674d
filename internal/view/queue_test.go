package view

import (
	"errors"
	"testing"
	"time"

	"github.com/andresuchdata/workshop-dashboard/internal/domain"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		code  string
		kind  StatusKind
		label string
		color string
	}{
		{"PENDING", StatusPending, "Pending", "yellow"},
		{"COMPLETED", StatusCompleted, "Completed", "green"},
		{"AWAITING_REVIEW", StatusOther, "AWAITING REVIEW", "orange"},
		{"FAILED", StatusOther, "FAILED", "orange"},
	}
	for _, tc := range cases {
		got := StatusOf(domain.QueueItem{Status: tc.code})
		if got.Kind != tc.kind || got.Label != tc.label || got.Color != tc.color {
			t.Fatalf("StatusOf(%s) = %+v", tc.code, got)
		}
	}
}

func TestQueueTracker_Comments(t *testing.T) {
	note := "bad header row"
	items := []domain.QueueItem{
		{ID: 7, Status: "COMPLETED", Comments: &note},
		{ID: 8, Status: "PENDING"},
	}
	tracker := NewQueueTracker()

	dialog, err := tracker.OpenComment(items, 1)
	if err != nil {
		t.Fatalf("OpenComment error: %v", err)
	}
	if !dialog.Open || dialog.Comment != note || dialog.ItemID != 7 {
		t.Fatalf("unexpected dialog %+v", dialog)
	}

	dialog, err = tracker.OpenComment(items, 2)
	if err != nil {
		t.Fatalf("OpenComment error: %v", err)
	}
	if dialog.Comment != "No Comment" {
		t.Fatalf("expected fallback text, got %q", dialog.Comment)
	}

	tracker.CloseComment()
	if tracker.Dialog().Open {
		t.Fatalf("dialog must be closed")
	}
	if items[0].Comments != &note || items[1].Comments != nil {
		t.Fatalf("queue items must not change")
	}

	if _, err := tracker.OpenComment(items, 3); !errors.Is(err, domain.ErrQueueItemNotFound) {
		t.Fatalf("expected ErrQueueItemNotFound, got %v", err)
	}
}

func TestQueueTracker_Transitions(t *testing.T) {
	tracker := NewQueueTracker()

	if changed := tracker.Observe([]domain.QueueItem{{ID: 1, Status: "PENDING"}}); len(changed) != 0 {
		t.Fatalf("first observation has no transitions, got %v", changed)
	}

	changed := tracker.Observe([]domain.QueueItem{
		{ID: 1, Status: "COMPLETED"},
		{ID: 2, Status: "PENDING"},
	})
	if len(changed) != 1 || changed[0].ItemID != 1 || changed[0].From != "PENDING" || changed[0].To != "COMPLETED" {
		t.Fatalf("unexpected transitions %v", changed)
	}
	if len(tracker.Transitions()) != 1 {
		t.Fatalf("expected transitions to be retained")
	}
}

func TestQueueColumns(t *testing.T) {
	created := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	items := []domain.QueueItem{{
		ID:        1,
		Media:     &domain.Media{Key: "uploads/a.xlsx", Path: "https://files.example/a.xlsx"},
		Status:    "AWAITING_REVIEW",
		CreatedAt: created,
	}}

	cells := Render(QueueColumns(), items)[0]
	byKey := map[string]Cell{}
	for _, c := range cells {
		byKey[c.Key] = c
	}

	if byKey["sno"].Display != "1" {
		t.Fatalf("unexpected sequence %s", byKey["sno"].Display)
	}
	if byKey["media"].Href != "https://files.example/a.xlsx" || byKey["media"].Display != "Download File" {
		t.Fatalf("unexpected media cell %+v", byKey["media"])
	}
	if byKey["createdAt"].Display != "05/03/2024 2:07:09 pm" {
		t.Fatalf("unexpected timestamp %s", byKey["createdAt"].Display)
	}
	if byKey["status"].Display != "AWAITING REVIEW" || byKey["status"].Badge != "orange" {
		t.Fatalf("unexpected status cell %+v", byKey["status"])
	}
}
