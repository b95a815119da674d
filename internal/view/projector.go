package view

import (
	"github.com/andresuchdata/workshop-dashboard/internal/domain"
	"github.com/shopspring/decimal"
)

// Row is one line of the rendered table: either a raw record or a group.
type Row struct {
	Seq    int                   `json:"sno"`
	Record *domain.Record        `json:"record,omitempty"`
	Group  *domain.GroupedRecord `json:"group,omitempty"`
}

// Project folds records by the grouping dimension. Without grouping the
// records come back unchanged and numbered 1..n. With grouping there is one
// row per distinct key, in the order the keys first appear.
func Project(desc *domain.KindDescriptor, records []domain.Record, groupBy domain.GroupBy) []Row {
	if !groupBy.Grouped() {
		rows := make([]Row, len(records))
		for i := range records {
			rec := records[i]
			rows[i] = Row{Seq: i + 1, Record: &rec}
		}
		return rows
	}

	var (
		groups  []*domain.GroupedRecord
		members []map[string]struct{}
		index   = make(map[string]int)
	)

	for _, rec := range records {
		key := rec.GroupKey(groupBy)
		i, ok := index[key]
		if !ok {
			totals := make(map[string]decimal.Decimal, len(desc.NumericFields))
			for _, f := range desc.NumericFields {
				totals[f.Key] = decimal.Zero
			}
			groups = append(groups, &domain.GroupedRecord{
				Dimension: groupBy,
				Key:       key,
				Customers: []string{},
				Totals:    totals,
			})
			members = append(members, make(map[string]struct{}))
			i = len(groups) - 1
			index[key] = i
		}

		g := groups[i]
		if _, seen := members[i][rec.WorkshopID]; !seen {
			members[i][rec.WorkshopID] = struct{}{}
			g.Customers = append(g.Customers, rec.WorkshopID)
		}
		for _, f := range desc.NumericFields {
			g.Totals[f.Key] = g.Totals[f.Key].Add(rec.Value(f.Key))
		}
	}

	rows := make([]Row, len(groups))
	for i, g := range groups {
		rows[i] = Row{Seq: i + 1, Group: g}
	}
	return rows
}
