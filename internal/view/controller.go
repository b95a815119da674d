// internal/view/controller.go
package view

import (
	"context"
	"sync"
	"time"

	"github.com/andresuchdata/workshop-dashboard/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// RecordSource loads records for a kind with the merged filter parameters.
type RecordSource interface {
	FetchRecords(ctx context.Context, sess domain.Session, kind domain.Kind, params domain.FetchParams) ([]domain.Record, error)
}

// QueueSource loads the upload queue for a kind.
type QueueSource interface {
	FetchUploadQueue(ctx context.Context, sess domain.Session, kind domain.Kind) ([]domain.QueueItem, error)
}

// Invalidator drops cached records of a kind once new data has landed.
type Invalidator interface {
	Invalidate(ctx context.Context, kind domain.Kind) error
}

// State is the controller's position in the load cycle.
type State string

const (
	StateIdle           State = "idle"
	StateLoadingRecords State = "loading_records"
	StateLoadingQueue   State = "loading_queue"
	StateReady          State = "ready"
)

// Loading carries the independent loading flags of the two tabs.
type Loading struct {
	Records bool `json:"records"`
	Queue   bool `json:"queue"`
}

// Failure is the last failure of one fetch operation, kept until that
// operation succeeds.
type Failure struct {
	Op      domain.FetchOp `json:"op"`
	Message string         `json:"message"`
	At      time.Time      `json:"at"`
}

// Options wires a controller to its collaborators.
type Options struct {
	Session  domain.Session
	Records  RecordSource
	Queue    QueueSource
	Notifier Notifier
	Money    *CurrencyFormatter
	Now      func() time.Time
	// Invalidator is called when an upload reaches COMPLETED.
	Invalidator Invalidator
}

// Controller drives one view session: it owns the filter state, the record
// store and the queue tracker, and decides per interaction whether to
// recompute locally or to refetch.
type Controller struct {
	desc     *domain.KindDescriptor
	session  domain.Session
	records  RecordSource
	queue    QueueSource
	notifier Notifier
	now      func() time.Time
	invalid  Invalidator

	columns *ColumnSelector
	tracker *QueueTracker
	store   *Store

	mu            sync.Mutex
	mounted       bool
	filter        domain.FilterState
	loading       Loading
	recordsIssued uint64
	queueIssued   uint64
	failures      map[domain.FetchOp]*Failure
}

func NewController(desc *domain.KindDescriptor, opts Options) *Controller {
	if opts.Notifier == nil {
		opts.Notifier = LogNotifier{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Controller{
		desc:     desc,
		session:  opts.Session,
		records:  opts.Records,
		queue:    opts.Queue,
		notifier: opts.Notifier,
		now:      opts.Now,
		invalid:  opts.Invalidator,
		columns:  NewColumnSelector(desc, opts.Money),
		tracker:  NewQueueTracker(),
		store:    NewStore(),
		filter:   domain.DefaultFilter(desc, opts.Now()),
		failures: make(map[domain.FetchOp]*Failure),
	}
}

func (c *Controller) Kind() domain.Kind {
	return c.desc.Kind
}

// Session returns the capability token the controller was opened with.
func (c *Controller) Session() domain.Session {
	return c.session
}

// Mount resets the filter and loads records and the upload queue
// concurrently. Neither load waits for the other.
func (c *Controller) Mount(ctx context.Context) View {
	c.mu.Lock()
	c.mounted = true
	c.filter = domain.DefaultFilter(c.desc, c.now())
	recordsToken := c.beginRecordsLocked()
	queueToken := c.beginQueueLocked()
	c.mu.Unlock()

	var g errgroup.Group
	g.Go(func() error {
		c.loadRecords(ctx, recordsToken, domain.FetchParams{})
		return nil
	})
	g.Go(func() error {
		c.loadQueue(ctx, queueToken)
		return nil
	})
	_ = g.Wait()

	return c.View()
}

// Apply handles a single filter control change. Search and grouping are
// recomputed from the current snapshot; date changes refetch. A failed
// fetch is not an error of the interaction: the previous rows stay and the
// failure goes to the notifier.
func (c *Controller) Apply(ctx context.Context, change domain.FilterChange) (View, error) {
	if err := change.Validate(); err != nil {
		return c.View(), err
	}

	c.mu.Lock()
	var (
		next domain.FilterState
		err  error
	)
	switch change.Control {
	case domain.ControlSearch:
		c.filter = c.filter.WithSearch(change.Value)
		c.mu.Unlock()
		return c.View(), nil
	case domain.ControlGroupBy:
		next, err = c.filter.WithGroupBy(change.Value)
		if err == nil {
			c.filter = next
		}
		c.mu.Unlock()
		return c.View(), err
	case domain.ControlStart:
		next, err = c.filter.WithStart(c.desc, change.Value)
	case domain.ControlEnd:
		next, err = c.filter.WithEnd(c.desc, change.Value)
	}
	if err != nil {
		c.mu.Unlock()
		return c.View(), err
	}

	c.filter = next
	params := next.FetchParams(c.desc)
	token := c.beginRecordsLocked()
	c.mu.Unlock()

	log.Debug().
		Str("kind", string(c.desc.Kind)).
		Str("params", params.Canonical()).
		Uint64("token", token).
		Msg("view: refetching records")

	c.loadRecords(ctx, token, params)
	return c.View(), nil
}

// RefreshQueue rereads the upload queue, e.g. after an upload.
func (c *Controller) RefreshQueue(ctx context.Context) View {
	c.mu.Lock()
	token := c.beginQueueLocked()
	c.mu.Unlock()

	c.loadQueue(ctx, token)
	return c.View()
}

// OpenComment opens the comment dialog for the queue row at seq (1-based).
func (c *Controller) OpenComment(seq int) (View, error) {
	if _, err := c.tracker.OpenComment(c.store.Queue(), seq); err != nil {
		return c.View(), err
	}
	return c.View(), nil
}

// CloseComment closes the dialog without touching the queue item.
func (c *Controller) CloseComment() View {
	c.tracker.CloseComment()
	return c.View()
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) Filter() domain.FilterState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// View assembles the rows and columns to render for the current state.
func (c *Controller) View() View {
	c.mu.Lock()
	filter := c.filter
	loading := c.loading
	state := c.stateLocked()
	failures := c.failuresLocked()
	records := c.store.Records()
	queue := c.store.Queue()
	c.mu.Unlock()

	if !filter.GroupBy.Grouped() {
		records = Filter(records, filter.SearchText)
	}
	rows := Project(c.desc, records, filter.GroupBy)
	columns := c.columns.ColumnsFor(filter.GroupBy)
	queueColumns := QueueColumns()

	return View{
		Kind:         c.desc.Kind,
		Title:        c.desc.Title,
		State:        state,
		Filter:       filter,
		Columns:      columns,
		Rows:         rows,
		Table:        Render(columns, rows),
		RowCount:     len(rows),
		QueueColumns: queueColumns,
		QueueRows:    queue,
		QueueTable:   Render(queueColumns, queue),
		Loading:      loading,
		Comment:      c.tracker.Dialog(),
		Transitions:  c.tracker.Transitions(),
		Failures:     failures,
		Routes:       routesFor(c.desc),
	}
}

func (c *Controller) beginRecordsLocked() uint64 {
	c.recordsIssued++
	c.loading.Records = true
	return c.recordsIssued
}

func (c *Controller) beginQueueLocked() uint64 {
	c.queueIssued++
	c.loading.Queue = true
	return c.queueIssued
}

func (c *Controller) stateLocked() State {
	switch {
	case !c.mounted:
		return StateIdle
	case c.loading.Records:
		return StateLoadingRecords
	case c.loading.Queue:
		return StateLoadingQueue
	}
	return StateReady
}

// loadRecords fetches and, if the response is still the latest one issued,
// swaps it into the store. Older responses are dropped.
func (c *Controller) loadRecords(ctx context.Context, token uint64, params domain.FetchParams) {
	records, err := c.records.FetchRecords(ctx, c.session, c.desc.Kind, params)

	c.mu.Lock()
	if token != c.recordsIssued {
		c.mu.Unlock()
		log.Debug().Str("kind", string(c.desc.Kind)).Uint64("token", token).Msg("view: dropping stale records response")
		return
	}
	c.loading.Records = false

	if err != nil {
		failure := &domain.FetchFailure{Kind: c.desc.Kind, Op: domain.OpFetchRecords, Err: err}
		c.failures[failure.Op] = &Failure{Op: failure.Op, Message: failure.Error(), At: c.now()}
		c.mu.Unlock()
		c.notifier.Notify(ctx, failure)
		return
	}

	c.store.ReplaceRecords(records)
	// a fresh collection supersedes any local search result
	c.filter.SearchText = ""
	c.clearFailureLocked(domain.OpFetchRecords)
	c.mu.Unlock()

	c.logMalformed(records)
}

func (c *Controller) loadQueue(ctx context.Context, token uint64) {
	items, err := c.queue.FetchUploadQueue(ctx, c.session, c.desc.Kind)

	c.mu.Lock()
	if token != c.queueIssued {
		c.mu.Unlock()
		return
	}
	c.loading.Queue = false

	if err != nil {
		failure := &domain.FetchFailure{Kind: c.desc.Kind, Op: domain.OpFetchQueue, Err: err}
		c.failures[failure.Op] = &Failure{Op: failure.Op, Message: failure.Error(), At: c.now()}
		c.mu.Unlock()
		c.notifier.Notify(ctx, failure)
		return
	}

	c.store.ReplaceQueue(items)
	c.clearFailureLocked(domain.OpFetchQueue)
	c.mu.Unlock()

	completed := false
	for _, t := range c.tracker.Observe(items) {
		log.Info().
			Str("kind", string(c.desc.Kind)).
			Int64("item_id", t.ItemID).
			Str("from", t.From).
			Str("to", t.To).
			Msg("view: upload status changed")
		if t.To == domain.QueueStatusCompleted {
			completed = true
		}
	}
	if completed && c.invalid != nil {
		if err := c.invalid.Invalidate(ctx, c.desc.Kind); err != nil {
			log.Warn().Err(err).Str("kind", string(c.desc.Kind)).Msg("view: could not invalidate cached records")
		}
	}
}

// failuresLocked lists open failures, records before queue.
func (c *Controller) failuresLocked() []Failure {
	var out []Failure
	for _, op := range []domain.FetchOp{domain.OpFetchRecords, domain.OpFetchQueue} {
		if f, ok := c.failures[op]; ok {
			out = append(out, *f)
		}
	}
	return out
}

func (c *Controller) clearFailureLocked(op domain.FetchOp) {
	delete(c.failures, op)
}

func (c *Controller) logMalformed(records []domain.Record) {
	malformed := 0
	for _, rec := range records {
		if problems := rec.Check(c.desc); len(problems) > 0 {
			malformed++
			log.Debug().Err(problems[0]).Msg("view: malformed record")
		}
	}
	if malformed > 0 {
		log.Warn().
			Str("kind", string(c.desc.Kind)).
			Int("malformed", malformed).
			Int("total", len(records)).
			Msg("view: records with missing fields treated as empty")
	}
}
