package view

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/andresuchdata/workshop-dashboard/internal/domain"
)

type fakeRecords struct {
	mu     sync.Mutex
	calls  []domain.FetchParams
	result []domain.Record
	err    error
	hook   func(call int)
}

func (f *fakeRecords) FetchRecords(ctx context.Context, sess domain.Session, kind domain.Kind, params domain.FetchParams) ([]domain.Record, error) {
	f.mu.Lock()
	f.calls = append(f.calls, params)
	call := len(f.calls)
	result, err, hook := f.result, f.err, f.hook
	f.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	return result, err
}

func (f *fakeRecords) lastParams() domain.FetchParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func (f *fakeRecords) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeQueue struct {
	items []domain.QueueItem
	err   error
	calls int
}

func (f *fakeQueue) FetchUploadQueue(ctx context.Context, sess domain.Session, kind domain.Kind) ([]domain.QueueItem, error) {
	f.calls++
	return f.items, f.err
}

type recordingNotifier struct {
	mu       sync.Mutex
	failures []*domain.FetchFailure
}

func (n *recordingNotifier) Notify(ctx context.Context, failure *domain.FetchFailure) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failures = append(n.failures, failure)
}

func fixedNow() time.Time {
	return time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
}

func newTestController(kind domain.Kind, records *fakeRecords, queue *fakeQueue, notifier Notifier) *Controller {
	return NewController(domain.MustDescribe(kind), Options{
		Session:  domain.Session{Token: "token"},
		Records:  records,
		Queue:    queue,
		Notifier: notifier,
		Now:      fixedNow,
	})
}

func TestController_Mount(t *testing.T) {
	records := &fakeRecords{result: sampleAccounts()}
	queue := &fakeQueue{items: []domain.QueueItem{{ID: 1, Status: "PENDING"}}}
	c := newTestController(domain.KindAccount, records, queue, &recordingNotifier{})

	if c.State() != StateIdle {
		t.Fatalf("expected idle before mount, got %s", c.State())
	}

	v := c.Mount(context.Background())
	if v.State != StateReady {
		t.Fatalf("expected ready after mount, got %s", v.State)
	}
	if v.Loading.Records || v.Loading.Queue {
		t.Fatalf("loading flags must be cleared: %+v", v.Loading)
	}
	if v.RowCount != 4 || len(v.QueueRows) != 1 {
		t.Fatalf("unexpected counts rows=%d queue=%d", v.RowCount, len(v.QueueRows))
	}
	if len(records.lastParams()) != 0 {
		t.Fatalf("mount fetches with empty params, got %v", records.lastParams())
	}
	if v.Routes.Upload != "/account/add-bulk-account" {
		t.Fatalf("unexpected upload route %s", v.Routes.Upload)
	}
}

func TestController_LocalChangesDoNotFetch(t *testing.T) {
	records := &fakeRecords{result: sampleAccounts()}
	c := newTestController(domain.KindAccount, records, &fakeQueue{}, &recordingNotifier{})
	c.Mount(context.Background())

	v, err := c.Apply(context.Background(), domain.FilterChange{Control: domain.ControlSearch, Value: "acme"})
	if err != nil {
		t.Fatalf("Apply search error: %v", err)
	}
	if v.RowCount != 2 {
		t.Fatalf("expected 2 matching rows, got %d", v.RowCount)
	}

	v, err = c.Apply(context.Background(), domain.FilterChange{Control: domain.ControlGroupBy, Value: "salesRep"})
	if err != nil {
		t.Fatalf("Apply groupBy error: %v", err)
	}
	if v.RowCount != 2 || v.Rows[0].Group == nil || v.Rows[0].Group.Key != "Rina" {
		t.Fatalf("unexpected grouped rows %+v", v.Rows)
	}
	if v.Filter.SearchText != "" {
		t.Fatalf("group change resets search, got %q", v.Filter.SearchText)
	}
	if v.Columns[2].Key != "customers" {
		t.Fatalf("expected grouped column set, got %s", v.Columns[2].Key)
	}

	if records.callCount() != 1 {
		t.Fatalf("local changes must not fetch, got %d calls", records.callCount())
	}
}

func TestController_EndDateRefetchesInclusive(t *testing.T) {
	records := &fakeRecords{result: sampleAccounts()}
	c := newTestController(domain.KindAccount, records, &fakeQueue{}, &recordingNotifier{})
	c.Mount(context.Background())

	if _, err := c.Apply(context.Background(), domain.FilterChange{Control: domain.ControlGroupBy, Value: "branch"}); err != nil {
		t.Fatalf("Apply groupBy error: %v", err)
	}
	v, err := c.Apply(context.Background(), domain.FilterChange{Control: domain.ControlEnd, Value: "2024-03-10"})
	if err != nil {
		t.Fatalf("Apply end error: %v", err)
	}

	params := records.lastParams()
	if params["end"] != "2024-03-11" || params["start"] != "2024-03-01" {
		t.Fatalf("unexpected params %v", params)
	}
	if params["groupBy"] != "branch" {
		t.Fatalf("expected active grouping to be sent, got %v", params)
	}
	if v.Rows[0].Group == nil {
		t.Fatalf("fresh data must be projected with the active grouping")
	}
}

func TestController_SalesMonthParam(t *testing.T) {
	records := &fakeRecords{}
	c := newTestController(domain.KindSales, records, &fakeQueue{}, &recordingNotifier{})
	c.Mount(context.Background())

	if _, err := c.Apply(context.Background(), domain.FilterChange{Control: domain.ControlStart, Value: "02-2024"}); err != nil {
		t.Fatalf("Apply start error: %v", err)
	}

	params := records.lastParams()
	if params["month"] != "02-2024,03-2024" {
		t.Fatalf("expected month=02-2024,03-2024, got %v", params)
	}
}

func TestController_FetchFailureKeepsSnapshot(t *testing.T) {
	records := &fakeRecords{result: sampleAccounts()}
	notifier := &recordingNotifier{}
	c := newTestController(domain.KindAccount, records, &fakeQueue{}, notifier)
	c.Mount(context.Background())

	records.mu.Lock()
	records.result, records.err = nil, errors.New("connection refused")
	records.mu.Unlock()

	v, err := c.Apply(context.Background(), domain.FilterChange{Control: domain.ControlStart, Value: "2024-02-01"})
	if err != nil {
		t.Fatalf("fetch failure must not fail the interaction: %v", err)
	}
	if v.RowCount != 4 {
		t.Fatalf("expected previous rows to remain, got %d", v.RowCount)
	}
	if v.Loading.Records {
		t.Fatalf("loading flag must be cleared after failure")
	}
	if len(v.Failures) != 1 || v.Failures[0].Op != domain.OpFetchRecords {
		t.Fatalf("expected failure notice, got %+v", v.Failures)
	}
	if len(notifier.failures) != 1 || notifier.failures[0].Op != domain.OpFetchRecords {
		t.Fatalf("expected one notification, got %v", notifier.failures)
	}
}

func TestController_QueueFailureIsIndependent(t *testing.T) {
	records := &fakeRecords{result: sampleAccounts()}
	queue := &fakeQueue{err: errors.New("timeout")}
	notifier := &recordingNotifier{}
	c := newTestController(domain.KindAccount, records, queue, notifier)

	v := c.Mount(context.Background())
	if v.RowCount != 4 {
		t.Fatalf("records must load despite queue failure, got %d", v.RowCount)
	}
	if v.State != StateReady {
		t.Fatalf("expected ready, got %s", v.State)
	}
	if len(notifier.failures) != 1 || notifier.failures[0].Op != domain.OpFetchQueue {
		t.Fatalf("expected one queue failure, got %v", notifier.failures)
	}

	queue.err = nil
	v = c.RefreshQueue(context.Background())
	if len(v.Failures) != 0 {
		t.Fatalf("failure must clear once the queue loads, got %+v", v.Failures)
	}
}

func TestController_FailuresTrackedPerOperation(t *testing.T) {
	records := &fakeRecords{result: sampleAccounts()}
	queue := &fakeQueue{}
	c := newTestController(domain.KindAccount, records, queue, &recordingNotifier{})
	c.Mount(context.Background())

	records.mu.Lock()
	records.err = errors.New("connection refused")
	records.mu.Unlock()
	c.Apply(context.Background(), domain.FilterChange{Control: domain.ControlStart, Value: "2024-02-01"})

	queue.err = errors.New("timeout")
	v := c.RefreshQueue(context.Background())
	if len(v.Failures) != 2 || v.Failures[0].Op != domain.OpFetchRecords || v.Failures[1].Op != domain.OpFetchQueue {
		t.Fatalf("expected records and queue failures, got %+v", v.Failures)
	}

	queue.err = nil
	v = c.RefreshQueue(context.Background())
	if len(v.Failures) != 1 || v.Failures[0].Op != domain.OpFetchRecords {
		t.Fatalf("queue success must not clear the records failure, got %+v", v.Failures)
	}

	records.mu.Lock()
	records.err = nil
	records.mu.Unlock()
	v, _ = c.Apply(context.Background(), domain.FilterChange{Control: domain.ControlEnd, Value: "2024-03-10"})
	if len(v.Failures) != 0 {
		t.Fatalf("expected no failures after both loads succeed, got %+v", v.Failures)
	}
}

type recordingInvalidator struct {
	kinds []domain.Kind
}

func (r *recordingInvalidator) Invalidate(ctx context.Context, kind domain.Kind) error {
	r.kinds = append(r.kinds, kind)
	return nil
}

func TestController_CompletedUploadInvalidatesRecords(t *testing.T) {
	queue := &fakeQueue{items: []domain.QueueItem{
		{ID: 1, Status: domain.QueueStatusPending},
		{ID: 2, Status: "PROCESSING"},
	}}
	invalidator := &recordingInvalidator{}
	c := NewController(domain.MustDescribe(domain.KindSales), Options{
		Records:     &fakeRecords{},
		Queue:       queue,
		Notifier:    &recordingNotifier{},
		Now:         fixedNow,
		Invalidator: invalidator,
	})
	c.Mount(context.Background())
	if len(invalidator.kinds) != 0 {
		t.Fatalf("first queue load has no transitions, got %v", invalidator.kinds)
	}

	queue.items = []domain.QueueItem{
		{ID: 1, Status: domain.QueueStatusPending},
		{ID: 2, Status: "FAILED"},
	}
	c.RefreshQueue(context.Background())
	if len(invalidator.kinds) != 0 {
		t.Fatalf("non-completed transitions must not invalidate, got %v", invalidator.kinds)
	}

	queue.items = []domain.QueueItem{
		{ID: 1, Status: domain.QueueStatusCompleted},
		{ID: 2, Status: "FAILED"},
	}
	c.RefreshQueue(context.Background())
	if len(invalidator.kinds) != 1 || invalidator.kinds[0] != domain.KindSales {
		t.Fatalf("expected one sales invalidation, got %v", invalidator.kinds)
	}
}

func TestController_StaleResponseDropped(t *testing.T) {
	stale := []domain.Record{accountRecord("old", "Old", "O", "X", "Y", "Z", "1", "1")}
	fresh := sampleAccounts()

	records := &fakeRecords{result: fresh}
	c := newTestController(domain.KindAccount, records, &fakeQueue{}, &recordingNotifier{})
	c.Mount(context.Background())

	// the second call issues a newer fetch before it returns
	records.mu.Lock()
	records.result = stale
	records.hook = func(call int) {
		if call != 2 {
			return
		}
		records.mu.Lock()
		records.result = fresh
		records.mu.Unlock()
		if _, err := c.Apply(context.Background(), domain.FilterChange{Control: domain.ControlEnd, Value: "2024-03-20"}); err != nil {
			t.Errorf("nested apply error: %v", err)
		}
	}
	records.mu.Unlock()

	v, err := c.Apply(context.Background(), domain.FilterChange{Control: domain.ControlStart, Value: "2024-03-05"})
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if v.RowCount != len(fresh) {
		t.Fatalf("stale response must be dropped, got %d rows", v.RowCount)
	}
	if v.Filter.DateRange.End != "2024-03-21" {
		t.Fatalf("expected latest filter to win, got %+v", v.Filter.DateRange)
	}
}

func TestController_Comments(t *testing.T) {
	queue := &fakeQueue{items: []domain.QueueItem{{ID: 3, Status: "COMPLETED"}}}
	c := newTestController(domain.KindSales, &fakeRecords{}, queue, &recordingNotifier{})
	c.Mount(context.Background())

	v, err := c.OpenComment(1)
	if err != nil {
		t.Fatalf("OpenComment error: %v", err)
	}
	if !v.Comment.Open || v.Comment.Comment != "No Comment" {
		t.Fatalf("unexpected dialog %+v", v.Comment)
	}
	if v = c.CloseComment(); v.Comment.Open {
		t.Fatalf("dialog must close")
	}
	if _, err := c.OpenComment(5); !errors.Is(err, domain.ErrQueueItemNotFound) {
		t.Fatalf("expected ErrQueueItemNotFound, got %v", err)
	}
}

func TestController_InvalidChange(t *testing.T) {
	records := &fakeRecords{}
	c := newTestController(domain.KindAccount, records, &fakeQueue{}, &recordingNotifier{})
	c.Mount(context.Background())

	if _, err := c.Apply(context.Background(), domain.FilterChange{Control: domain.ControlGroupBy, Value: "region"}); !errors.Is(err, domain.ErrUnknownGroupBy) {
		t.Fatalf("expected ErrUnknownGroupBy, got %v", err)
	}
	if _, err := c.Apply(context.Background(), domain.FilterChange{Control: "colour", Value: "x"}); !errors.Is(err, domain.ErrUnknownControl) {
		t.Fatalf("expected ErrUnknownControl, got %v", err)
	}
	if records.callCount() != 1 {
		t.Fatalf("invalid changes must not fetch")
	}
}
