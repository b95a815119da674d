package filesource

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/workshop-dashboard/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var dateLayouts = []string{
	domain.DayLayout,
	domain.MonthLayout,
	"2006-01",
	"02/01/2006",
	"01/2006",
	time.RFC3339,
}

// Source serves records from a spreadsheet export of one kind. Each sheet
// row is one ledger line; rows are summed per workshop (and per month for
// month-encoded kinds) inside the requested interval.
type Source struct {
	desc  *domain.KindDescriptor
	lines []line
}

type line struct {
	rec  domain.Record
	date time.Time
}

// Open reads path (.xlsx or .csv) as records of the given kind.
func Open(kind domain.Kind, path string) (*Source, error) {
	desc, err := domain.Describe(kind)
	if err != nil {
		return nil, err
	}
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	return newSource(desc, t)
}

func newSource(desc *domain.KindDescriptor, t *table) (*Source, error) {
	cols := struct {
		id, name, code, wsType, branch, branchName, rep, date int
	}{
		id:         t.column("workshopId", "workshop_id", "id"),
		name:       t.column("workshopName", "workshop"),
		code:       t.column("code", "workshopCode"),
		wsType:     t.column("workshopType", "type"),
		branch:     t.column("branch"),
		branchName: t.column("branchName"),
		rep:        t.column("salesRep", "sales_representative"),
		date:       t.column(desc.DateColumn, "date", "month"),
	}
	if cols.id < 0 && cols.code < 0 {
		return nil, fmt.Errorf("%s file: missing workshopId or code column", desc.Kind)
	}

	numeric := make([]int, len(desc.NumericFields))
	for i, f := range desc.NumericFields {
		numeric[i] = t.column(f.Key, f.Column, f.Label)
	}

	s := &Source{desc: desc, lines: make([]line, 0, len(t.rows))}
	for n, row := range t.rows {
		rec := domain.Record{Values: make(map[string]decimal.Decimal, len(numeric))}
		rec.WorkshopID, _ = cell(row, cols.id)
		rec.WorkshopName, _ = cell(row, cols.name)
		rec.Code, _ = cell(row, cols.code)
		rec.WorkshopType, _ = cell(row, cols.wsType)
		rec.Branch, _ = cell(row, cols.branch)
		rec.BranchName, _ = cell(row, cols.branchName)
		rec.SalesRep, _ = cell(row, cols.rep)
		if rec.WorkshopID == "" {
			rec.WorkshopID = rec.Code
		}

		for i, f := range desc.NumericFields {
			raw, ok := cell(row, numeric[i])
			if !ok || raw == "" {
				continue
			}
			v, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
			if err != nil {
				log.Warn().
					Err(&domain.MalformedRecord{WorkshopID: rec.WorkshopID, Field: f.Key, Reason: err.Error()}).
					Int("row", n+2).
					Msg("filesource: unreadable number treated as empty")
				continue
			}
			rec.Values[f.Key] = v
		}

		var date time.Time
		if raw, ok := cell(row, cols.date); ok && raw != "" {
			d, err := parseDate(raw)
			if err != nil {
				log.Warn().
					Err(&domain.MalformedRecord{WorkshopID: rec.WorkshopID, Field: desc.DateColumn, Reason: err.Error()}).
					Int("row", n+2).
					Msg("filesource: unreadable date, row kept outside any range")
			}
			date = d
		}

		s.lines = append(s.lines, line{rec: rec, date: date})
	}

	return s, nil
}

// Len is the number of ledger lines loaded.
func (s *Source) Len() int {
	return len(s.lines)
}

// FetchRecords aggregates the lines inside the requested interval. Lines
// without a date only match an unbounded query.
func (s *Source) FetchRecords(ctx context.Context, kind domain.Kind, params domain.FetchParams) ([]domain.Record, error) {
	if kind != s.desc.Kind {
		return nil, fmt.Errorf("%w: file holds %s records, not %s", domain.ErrUnknownKind, s.desc.Kind, kind)
	}
	q, err := domain.ResolveQuery(s.desc, params)
	if err != nil {
		return nil, err
	}
	bounded := !q.From.IsZero() || !q.To.IsZero()

	var (
		out   []domain.Record
		index = make(map[string]int)
	)
	for _, l := range s.lines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if bounded && (l.date.IsZero() || !q.Contains(l.date)) {
			continue
		}

		key := l.rec.WorkshopID
		month := ""
		if s.desc.DateEncoding == domain.MonthRange && !l.date.IsZero() {
			month = l.date.Format(domain.MonthLayout)
			key += "|" + month
		}

		i, ok := index[key]
		if !ok {
			rec := l.rec
			rec.Month = month
			rec.Values = make(map[string]decimal.Decimal, len(l.rec.Values))
			out = append(out, rec)
			i = len(out) - 1
			index[key] = i
		}
		for k, v := range l.rec.Values {
			out[i].Values[k] = out[i].Values[k].Add(v)
		}
	}

	if out == nil {
		out = []domain.Record{}
	}
	return out, nil
}

// FetchUploadQueue is empty: a file export has no ingestion pipeline.
func (s *Source) FetchUploadQueue(ctx context.Context, kind domain.Kind) ([]domain.QueueItem, error) {
	return []domain.QueueItem{}, nil
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidDate, raw)
}
