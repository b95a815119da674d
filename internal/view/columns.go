// internal/view/columns.go
package view

import (
	"fmt"
	"strconv"

	"github.com/andresuchdata/workshop-dashboard/internal/domain"
	"github.com/shopspring/decimal"
)

// ColumnKind tells the rendering layer which cell widget to use.
type ColumnKind string

const (
	ColumnSequence  ColumnKind = "sequence"
	ColumnText      ColumnKind = "text"
	ColumnLink      ColumnKind = "link"
	ColumnCount     ColumnKind = "count"
	ColumnNumber    ColumnKind = "number"
	ColumnMoney     ColumnKind = "money"
	ColumnTimestamp ColumnKind = "timestamp"
	ColumnBadge     ColumnKind = "badge"
	ColumnAction    ColumnKind = "action"
)

// Cell is a rendered value for one column of one row.
type Cell struct {
	Key     string `json:"key"`
	Value   any    `json:"value"`
	Display string `json:"display"`
	Href    string `json:"href,omitempty"`
	Badge   string `json:"badge,omitempty"`
}

// Column describes one table column over rows of type R.
type Column[R any] struct {
	Key      string           `json:"key"`
	Label    string           `json:"label"`
	Kind     ColumnKind       `json:"kind"`
	Accessor func(R) any      `json:"-"`
	Format   func(any) string `json:"-"`
	Link     func(R) string   `json:"-"`
	Badge    func(R) string   `json:"-"`
}

// Cell renders the column for the row at position pos. Sequence columns are
// numbered from the position so they stay correct after filtering.
func (c Column[R]) Cell(pos int, row R) Cell {
	cell := Cell{Key: c.Key}
	if c.Kind == ColumnSequence {
		cell.Value = pos + 1
		cell.Display = strconv.Itoa(pos + 1)
		return cell
	}

	if c.Accessor != nil {
		cell.Value = c.Accessor(row)
	}
	switch {
	case c.Format != nil:
		cell.Display = c.Format(cell.Value)
	case cell.Value != nil:
		cell.Display = fmt.Sprint(cell.Value)
	}
	if c.Link != nil {
		cell.Href = c.Link(row)
	}
	if c.Badge != nil {
		cell.Badge = c.Badge(row)
	}
	return cell
}

// Render lays rows out against columns.
func Render[R any](columns []Column[R], rows []R) [][]Cell {
	table := make([][]Cell, len(rows))
	for i, row := range rows {
		cells := make([]Cell, len(columns))
		for j, col := range columns {
			cells[j] = col.Cell(i, row)
		}
		table[i] = cells
	}
	return table
}

// ColumnSelector holds the four fixed column sets of one kind.
type ColumnSelector struct {
	sets map[domain.GroupBy][]Column[Row]
}

func NewColumnSelector(desc *domain.KindDescriptor, money *CurrencyFormatter) *ColumnSelector {
	if money == nil {
		money = NewCurrencyFormatter("en", "")
	}
	numeric := numericColumns(desc, money)

	nameColumn := Column[Row]{
		Key:      "workshopName",
		Label:    "Workshop Name",
		Kind:     ColumnText,
		Accessor: recordText(func(r *domain.Record) string { return r.WorkshopName }),
	}
	if desc.DetailLink {
		nameColumn.Kind = ColumnLink
		nameColumn.Link = func(row Row) string {
			if row.Record == nil {
				return ""
			}
			return desc.DetailRoute(row.Record.WorkshopID)
		}
	}

	ungrouped := []Column[Row]{
		sequenceColumn(),
		nameColumn,
		{Key: "code", Label: "Workshop Code", Kind: ColumnText, Accessor: recordText(func(r *domain.Record) string { return r.Code })},
		{Key: "workshopType", Label: "Workshop Type", Kind: ColumnText, Accessor: recordText(func(r *domain.Record) string { return r.WorkshopType })},
		{Key: "branch", Label: "Branch", Kind: ColumnText, Accessor: recordText(func(r *domain.Record) string { return r.Branch })},
		{Key: "salesRep", Label: "Sales Rep", Kind: ColumnText, Accessor: recordText(func(r *domain.Record) string { return r.SalesRep })},
	}

	return &ColumnSelector{
		sets: map[domain.GroupBy][]Column[Row]{
			domain.GroupByNone:         append(ungrouped, numeric...),
			domain.GroupByBranch:       groupedColumns("branchName", "Branch Name", numeric),
			domain.GroupBySalesRep:     groupedColumns("salesRep", "Sales Rep", numeric),
			domain.GroupByWorkshopType: groupedColumns("workshopType", "Workshop Type", numeric),
		},
	}
}

// ColumnsFor returns the column set for the grouping dimension.
func (s *ColumnSelector) ColumnsFor(groupBy domain.GroupBy) []Column[Row] {
	if cols, ok := s.sets[groupBy]; ok {
		return cols
	}
	return s.sets[domain.GroupByNone]
}

func sequenceColumn() Column[Row] {
	return Column[Row]{Key: "sno", Label: "S.No", Kind: ColumnSequence}
}

func groupedColumns(key, label string, numeric []Column[Row]) []Column[Row] {
	cols := []Column[Row]{
		sequenceColumn(),
		{
			Key:   key,
			Label: label,
			Kind:  ColumnText,
			Accessor: func(row Row) any {
				if row.Group == nil {
					return ""
				}
				return row.Group.Key
			},
		},
		{
			Key:   "customers",
			Label: "Total Customers",
			Kind:  ColumnCount,
			Accessor: func(row Row) any {
				if row.Group == nil {
					return 0
				}
				return len(row.Group.Customers)
			},
		},
	}
	return append(cols, numeric...)
}

func numericColumns(desc *domain.KindDescriptor, money *CurrencyFormatter) []Column[Row] {
	cols := make([]Column[Row], 0, len(desc.NumericFields))
	for _, f := range desc.NumericFields {
		key := f.Key
		col := Column[Row]{
			Key:   key,
			Label: f.Label,
			Kind:  ColumnNumber,
			Accessor: func(row Row) any {
				switch {
				case row.Group != nil:
					return row.Group.Total(key)
				case row.Record != nil:
					return row.Record.Value(key)
				}
				return decimal.Zero
			},
			Format: func(v any) string {
				d, _ := v.(decimal.Decimal)
				return d.String()
			},
		}
		if f.Money {
			col.Kind = ColumnMoney
			col.Format = func(v any) string {
				d, _ := v.(decimal.Decimal)
				return money.Format(d)
			}
		}
		cols = append(cols, col)
	}
	return cols
}

func recordText(get func(*domain.Record) string) func(Row) any {
	return func(row Row) any {
		if row.Record == nil {
			return ""
		}
		return get(row.Record)
	}
}
