package domain

import (
	"errors"
	"testing"
	"time"
)

func TestWithEnd_DayRangeAddsOneDay(t *testing.T) {
	desc := MustDescribe(KindAccount)

	state, err := FilterState{}.WithEnd(desc, "2024-03-10")
	if err != nil {
		t.Fatalf("WithEnd error: %v", err)
	}
	if state.DateRange.End != "2024-03-11" {
		t.Fatalf("expected stored end 2024-03-11, got %s", state.DateRange.End)
	}

	params := state.FetchParams(desc)
	if params["end"] != "2024-03-11" {
		t.Fatalf("expected transmitted end 2024-03-11, got %q", params["end"])
	}
	if _, ok := params["month"]; ok {
		t.Fatalf("day range must not send month, got %v", params)
	}
}

func TestWithEnd_DayRangeCrossesMonth(t *testing.T) {
	desc := MustDescribe(KindAccount)

	state, err := FilterState{}.WithEnd(desc, "2024-02-29")
	if err != nil {
		t.Fatalf("WithEnd error: %v", err)
	}
	if state.DateRange.End != "2024-03-01" {
		t.Fatalf("expected 2024-03-01, got %s", state.DateRange.End)
	}
}

func TestWithStart_MonthRangeCombinesParams(t *testing.T) {
	desc := MustDescribe(KindSales)
	state := FilterState{GroupBy: GroupByNone, DateRange: DateRange{Start: "03-2024", End: "03-2024"}}

	state, err := state.WithStart(desc, "02-2024")
	if err != nil {
		t.Fatalf("WithStart error: %v", err)
	}

	params := state.FetchParams(desc)
	if params["month"] != "02-2024,03-2024" {
		t.Fatalf("expected month=02-2024,03-2024, got %q", params["month"])
	}
	if _, ok := params["start"]; ok {
		t.Fatalf("month range must not send start, got %v", params)
	}
	if _, ok := params["end"]; ok {
		t.Fatalf("month range must not send end, got %v", params)
	}
}

func TestWithStart_MonthRangeNormalisesInput(t *testing.T) {
	desc := MustDescribe(KindSales)
	cases := []struct {
		in       string
		expected string
	}{
		{"02-2024", "02-2024"},
		{"2024-02", "02-2024"},
		{"2024-02-17", "02-2024"},
		{" 11-2023 ", "11-2023"},
	}
	for _, tc := range cases {
		state, err := FilterState{}.WithStart(desc, tc.in)
		if err != nil {
			t.Fatalf("WithStart(%q) error: %v", tc.in, err)
		}
		if state.DateRange.Start != tc.expected {
			t.Fatalf("WithStart(%q) expected %s, got %s", tc.in, tc.expected, state.DateRange.Start)
		}
	}
}

func TestWithStart_InvalidDate(t *testing.T) {
	_, err := FilterState{}.WithStart(MustDescribe(KindAccount), "not a date")
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestWithGroupBy_ResetsSearch(t *testing.T) {
	state := FilterState{SearchText: "acme", GroupBy: GroupByNone}

	state, err := state.WithGroupBy("branch")
	if err != nil {
		t.Fatalf("WithGroupBy error: %v", err)
	}
	if state.GroupBy != GroupByBranch {
		t.Fatalf("expected branch, got %s", state.GroupBy)
	}
	if state.SearchText != "" {
		t.Fatalf("expected search to reset, got %q", state.SearchText)
	}
}

func TestParseGroupBy(t *testing.T) {
	cases := []struct {
		in       string
		expected GroupBy
	}{
		{"", GroupByNone},
		{"none", GroupByNone},
		{"branch", GroupByBranch},
		{"salesRep", GroupBySalesRep},
		{"workshopType", GroupByWorkshopType},
	}
	for _, tc := range cases {
		got, err := ParseGroupBy(tc.in)
		if err != nil {
			t.Fatalf("ParseGroupBy(%q) error: %v", tc.in, err)
		}
		if got != tc.expected {
			t.Fatalf("ParseGroupBy(%q) expected %s, got %s", tc.in, tc.expected, got)
		}
	}

	if _, err := ParseGroupBy("region"); !errors.Is(err, ErrUnknownGroupBy) {
		t.Fatalf("expected ErrUnknownGroupBy, got %v", err)
	}
}

func TestFetchParams_GroupByAndNoSearch(t *testing.T) {
	desc := MustDescribe(KindAccount)
	state := FilterState{
		SearchText: "acme",
		GroupBy:    GroupBySalesRep,
		DateRange:  DateRange{Start: "2024-03-01", End: "2024-03-11"},
	}

	params := state.FetchParams(desc)
	if params["groupBy"] != "salesRep" {
		t.Fatalf("expected groupBy=salesRep, got %v", params)
	}
	if _, ok := params["searchAccount"]; ok {
		t.Fatalf("search must stay local, got %v", params)
	}
	if got := params.Canonical(); got != "end=2024-03-11|groupBy=salesRep|start=2024-03-01" {
		t.Fatalf("unexpected canonical form %q", got)
	}
}

func TestResolveQuery_HalfOpen(t *testing.T) {
	day := func(s string) time.Time {
		v, _ := time.Parse(DayLayout, s)
		return v
	}

	accounts := MustDescribe(KindAccount)
	q, err := ResolveQuery(accounts, FetchParams{"start": "2024-03-01", "end": "2024-03-11"})
	if err != nil {
		t.Fatalf("ResolveQuery error: %v", err)
	}
	if !q.Contains(day("2024-03-10")) {
		t.Fatalf("selected end date must be included")
	}
	if q.Contains(day("2024-03-11")) {
		t.Fatalf("exclusive end must not be included")
	}
	if q.Contains(day("2024-02-29")) {
		t.Fatalf("dates before start must not be included")
	}

	sales := MustDescribe(KindSales)
	q, err = ResolveQuery(sales, FetchParams{"month": "02-2024,03-2024"})
	if err != nil {
		t.Fatalf("ResolveQuery error: %v", err)
	}
	if !q.Contains(day("2024-03-31")) || !q.Contains(day("2024-02-01")) {
		t.Fatalf("both months must be included: %+v", q)
	}
	if q.Contains(day("2024-04-01")) {
		t.Fatalf("month after end must not be included")
	}
}

func TestDefaultFilter(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	acct := DefaultFilter(MustDescribe(KindAccount), now)
	if acct.DateRange.Start != "2024-03-01" || acct.DateRange.End != "2024-03-16" {
		t.Fatalf("unexpected account default range %+v", acct.DateRange)
	}

	sales := DefaultFilter(MustDescribe(KindSales), now)
	if sales.DateRange.Start != "03-2024" || sales.DateRange.End != "03-2024" {
		t.Fatalf("unexpected sales default range %+v", sales.DateRange)
	}
	if sales.GroupBy != GroupByNone {
		t.Fatalf("expected no grouping by default, got %s", sales.GroupBy)
	}
}

func TestFilterChange_Validate(t *testing.T) {
	if err := (FilterChange{Control: ControlStart, Value: "2024-03-01"}).Validate(); err != nil {
		t.Fatalf("expected valid change, got %v", err)
	}
	if err := (FilterChange{Control: "region", Value: "x"}).Validate(); !errors.Is(err, ErrUnknownControl) {
		t.Fatalf("expected ErrUnknownControl, got %v", err)
	}
	if !(FilterChange{Control: ControlEnd}).Remote() {
		t.Fatalf("end change must be remote")
	}
	if (FilterChange{Control: ControlGroupBy}).Remote() {
		t.Fatalf("group by change must be local")
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind("Accounts"); err != nil || k != KindAccount {
		t.Fatalf("expected account, got %s (%v)", k, err)
	}
	if _, err := ParseKind("inventory"); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
	if route := MustDescribe(KindSales).UploadRoute(); route != "/sales/add-bulk-sales" {
		t.Fatalf("unexpected upload route %s", route)
	}
	if route := MustDescribe(KindAccount).DetailRoute("w1"); route != "/account/w1/accounts" {
		t.Fatalf("unexpected detail route %s", route)
	}
	if route := MustDescribe(KindSales).DetailRoute("w1"); route != "" {
		t.Fatalf("sales has no detail route, got %s", route)
	}
}
