// internal/domain/record.go
package domain

import "github.com/shopspring/decimal"

// Record is one flat row of business data for a workshop (accounts) or a
// workshop and month (sales). Records are never mutated after a fetch.
type Record struct {
	WorkshopID   string                     `json:"workshopId"`
	WorkshopName string                     `json:"workshopName"`
	Code         string                     `json:"code"`
	WorkshopType string                     `json:"workshopType"`
	Branch       string                     `json:"branch"`
	BranchName   string                     `json:"branchName"`
	SalesRep     string                     `json:"salesRep"`
	Month        string                     `json:"month,omitempty"`
	Values       map[string]decimal.Decimal `json:"values"`
}

// Value returns the numeric payload field, zero when absent.
func (r Record) Value(key string) decimal.Decimal {
	if v, ok := r.Values[key]; ok {
		return v
	}
	return decimal.Zero
}

// GroupKey returns the partition key for the grouping dimension.
func (r Record) GroupKey(groupBy GroupBy) string {
	switch groupBy {
	case GroupByBranch:
		return r.Branch
	case GroupBySalesRep:
		return r.SalesRep
	case GroupByWorkshopType:
		return r.WorkshopType
	}
	return ""
}

// Check lists the fields the descriptor expects but the record lacks.
func (r Record) Check(desc *KindDescriptor) []*MalformedRecord {
	var problems []*MalformedRecord
	if r.WorkshopID == "" {
		problems = append(problems, &MalformedRecord{WorkshopID: r.WorkshopID, Field: "workshopId"})
	}
	for _, f := range desc.NumericFields {
		if _, ok := r.Values[f.Key]; !ok {
			problems = append(problems, &MalformedRecord{WorkshopID: r.WorkshopID, Field: f.Key})
		}
	}
	return problems
}

// GroupedRecord is a synthetic aggregate over the records sharing a key.
type GroupedRecord struct {
	Dimension GroupBy                    `json:"dimension"`
	Key       string                     `json:"key"`
	Customers []string                   `json:"customers"`
	Totals    map[string]decimal.Decimal `json:"totals"`
}

// Total returns the summed field, zero when absent.
func (g GroupedRecord) Total(key string) decimal.Decimal {
	if v, ok := g.Totals[key]; ok {
		return v
	}
	return decimal.Zero
}
