// internal/domain/filter.go
package domain

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// GroupBy is the dimension the view rows are folded by.
type GroupBy string

const (
	GroupByNone         GroupBy = "none"
	GroupByBranch       GroupBy = "branch"
	GroupBySalesRep     GroupBy = "salesRep"
	GroupByWorkshopType GroupBy = "workshopType"
)

// ParseGroupBy maps the select value to a dimension. "" and "none" both mean
// no grouping.
func ParseGroupBy(raw string) (GroupBy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "none":
		return GroupByNone, nil
	case "branch":
		return GroupByBranch, nil
	case "salesrep", "sales_rep":
		return GroupBySalesRep, nil
	case "workshoptype", "workshop_type":
		return GroupByWorkshopType, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGroupBy, raw)
}

// Grouped reports whether rows are folded into GroupedRecords.
func (g GroupBy) Grouped() bool {
	return g != "" && g != GroupByNone
}

const (
	DayLayout   = "2006-01-02"
	MonthLayout = "01-2006"
)

var (
	dayInputLayouts   = []string{DayLayout, time.RFC3339, "2006-01-02T15:04:05"}
	monthInputLayouts = []string{MonthLayout, "2006-01", DayLayout, time.RFC3339}
)

// DateRange holds the encoded range bounds. For day ranges End is already
// exclusive (the selected end date plus one day).
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// FilterState is the user's current search, grouping and date selection.
type FilterState struct {
	SearchText string    `json:"searchAccount"`
	GroupBy    GroupBy   `json:"groupBy"`
	DateRange  DateRange `json:"dateRange"`
}

// DefaultFilter returns the state a freshly mounted view starts with.
func DefaultFilter(desc *KindDescriptor, now time.Time) FilterState {
	state := FilterState{GroupBy: GroupByNone}
	switch desc.DateEncoding {
	case MonthRange:
		month := now.Format(MonthLayout)
		state.DateRange = DateRange{Start: month, End: month}
	default:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		state.DateRange = DateRange{
			Start: first.Format(DayLayout),
			End:   now.AddDate(0, 0, 1).Format(DayLayout),
		}
	}
	return state
}

// WithSearch replaces the free-text search.
func (f FilterState) WithSearch(text string) FilterState {
	f.SearchText = strings.TrimSpace(text)
	return f
}

// WithGroupBy switches the grouping dimension. Grouped views are not
// searchable, so the search scope resets to the raw collection.
func (f FilterState) WithGroupBy(raw string) (FilterState, error) {
	groupBy, err := ParseGroupBy(raw)
	if err != nil {
		return f, err
	}
	f.GroupBy = groupBy
	f.SearchText = ""
	return f, nil
}

// WithStart sets the start bound using the kind's encoding.
func (f FilterState) WithStart(desc *KindDescriptor, raw string) (FilterState, error) {
	if desc.DateEncoding == MonthRange {
		t, err := parseMonth(raw)
		if err != nil {
			return f, err
		}
		f.DateRange.Start = t.Format(MonthLayout)
		return f, nil
	}

	t, err := parseDay(raw)
	if err != nil {
		return f, err
	}
	f.DateRange.Start = t.Format(DayLayout)
	return f, nil
}

// WithEnd sets the end bound. Day ranges store the day after the selected
// date so the upstream query includes the selected end date.
func (f FilterState) WithEnd(desc *KindDescriptor, raw string) (FilterState, error) {
	if desc.DateEncoding == MonthRange {
		t, err := parseMonth(raw)
		if err != nil {
			return f, err
		}
		f.DateRange.End = t.Format(MonthLayout)
		return f, nil
	}

	t, err := parseDay(raw)
	if err != nil {
		return f, err
	}
	f.DateRange.End = t.AddDate(0, 0, 1).Format(DayLayout)
	return f, nil
}

// FetchParams are the merged parameters transmitted to the record source.
type FetchParams map[string]string

// FetchParams merges the state into transmitted parameters. Month ranges
// collapse start and end into a single "month" parameter. Search is local
// and never transmitted.
func (f FilterState) FetchParams(desc *KindDescriptor) FetchParams {
	params := FetchParams{}
	if f.GroupBy.Grouped() {
		params["groupBy"] = string(f.GroupBy)
	}

	switch desc.DateEncoding {
	case MonthRange:
		if f.DateRange.Start != "" || f.DateRange.End != "" {
			params["month"] = f.DateRange.Start + "," + f.DateRange.End
		}
	default:
		if f.DateRange.Start != "" {
			params["start"] = f.DateRange.Start
		}
		if f.DateRange.End != "" {
			params["end"] = f.DateRange.End
		}
	}
	return params
}

// Values encodes the parameters as a query string.
func (p FetchParams) Values() url.Values {
	values := url.Values{}
	for k, v := range p {
		values.Set(k, v)
	}
	return values
}

// Canonical is a stable textual form used for cache keys and logs.
func (p FetchParams) Canonical() string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+strings.TrimSpace(p[k]))
	}
	return strings.Join(parts, "|")
}

// ParamsFromValues picks the known parameters out of a query string.
func ParamsFromValues(values url.Values) FetchParams {
	params := FetchParams{}
	for _, key := range []string{"groupBy", "searchAccount", "start", "end", "month"} {
		if v := strings.TrimSpace(values.Get(key)); v != "" {
			params[key] = v
		}
	}
	return params
}

// RecordQuery is the half-open interval [From, To) a record source must
// honour. A zero bound is unbounded.
type RecordQuery struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the interval.
func (q RecordQuery) Contains(t time.Time) bool {
	if !q.From.IsZero() && t.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && !t.Before(q.To) {
		return false
	}
	return true
}

// ResolveQuery decodes transmitted parameters back into an interval.
func ResolveQuery(desc *KindDescriptor, params FetchParams) (RecordQuery, error) {
	var q RecordQuery

	if desc.DateEncoding == MonthRange {
		month := strings.TrimSpace(params["month"])
		if month == "" {
			return q, nil
		}
		start, end, _ := strings.Cut(month, ",")
		if start = strings.TrimSpace(start); start != "" {
			t, err := parseMonth(start)
			if err != nil {
				return q, err
			}
			q.From = t
		}
		if end = strings.TrimSpace(end); end != "" {
			t, err := parseMonth(end)
			if err != nil {
				return q, err
			}
			q.To = t.AddDate(0, 1, 0)
		}
		return q, nil
	}

	if start := strings.TrimSpace(params["start"]); start != "" {
		t, err := parseDay(start)
		if err != nil {
			return q, err
		}
		q.From = t
	}
	if end := strings.TrimSpace(params["end"]); end != "" {
		t, err := parseDay(end)
		if err != nil {
			return q, err
		}
		q.To = t
	}
	return q, nil
}

// Interval resolves the state's own date range.
func (f FilterState) Interval(desc *KindDescriptor) (RecordQuery, error) {
	return ResolveQuery(desc, f.FetchParams(desc))
}

func parseDay(raw string) (time.Time, error) {
	return parseWith(dayInputLayouts, raw)
}

func parseMonth(raw string) (time.Time, error) {
	t, err := parseWith(monthInputLayouts, raw)
	if err != nil {
		return t, err
	}
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), nil
}

func parseWith(layouts []string, raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
}

// FilterControl names the table-top control the user touched.
type FilterControl string

const (
	ControlSearch  FilterControl = "searchAccount"
	ControlGroupBy FilterControl = "groupBy"
	ControlStart   FilterControl = "start"
	ControlEnd     FilterControl = "end"
)

// FilterChange is a single user interaction with the filter controls.
type FilterChange struct {
	Control FilterControl `json:"control" validate:"required,oneof=searchAccount groupBy start end"`
	Value   string        `json:"value" validate:"max=256"`
}

var validate = validator.New()

// Validate rejects unknown controls and oversized values.
func (c FilterChange) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrUnknownControl, err)
	}
	return nil
}

// Remote reports whether the change needs a fresh fetch.
func (c FilterChange) Remote() bool {
	return c.Control == ControlStart || c.Control == ControlEnd
}
