package view

import (
	"strings"

	"github.com/andresuchdata/workshop-dashboard/internal/domain"
)

// Filter keeps the records where text is a case-insensitive substring of
// any searchable field. Empty text keeps everything.
func Filter(records []domain.Record, text string) []domain.Record {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return records
	}

	matched := make([]domain.Record, 0, len(records))
	for _, rec := range records {
		if matches(rec, needle) {
			matched = append(matched, rec)
		}
	}
	return matched
}

func matches(rec domain.Record, needle string) bool {
	for _, field := range []string{
		rec.Code,
		rec.WorkshopName,
		rec.BranchName,
		rec.WorkshopType,
		rec.SalesRep,
		rec.Branch,
	} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
