package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/workshop-dashboard/internal/domain"
	"github.com/shopspring/decimal"
)

const workshopsTable = "workshops"

type RecordRepository struct {
	db *DB
}

func NewRecordRepository(db *DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// FetchRecords sums the kind's numeric fields per workshop (and per month
// for month-encoded kinds) over the requested interval.
func (r *RecordRepository) FetchRecords(ctx context.Context, kind domain.Kind, params domain.FetchParams) ([]domain.Record, error) {
	desc, err := domain.Describe(kind)
	if err != nil {
		return nil, err
	}
	q, err := domain.ResolveQuery(desc, params)
	if err != nil {
		return nil, fmt.Errorf("resolve %s query: %w", kind, err)
	}

	query, args := buildRecordsQuery(desc, q)

	var records []domain.Record
	err = r.db.withPermit(ctx, func() error {
		rows, err := r.db.QueryxContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to query %s records: %w", kind, err)
		}
		defer rows.Close()

		for rows.Next() {
			rec, err := scanRecord(rows, desc)
			if err != nil {
				return err
			}
			records = append(records, rec)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	if records == nil {
		records = []domain.Record{}
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(rows rowScanner, desc *domain.KindDescriptor) (domain.Record, error) {
	var (
		rec    domain.Record
		month  string
		values = make([]decimal.NullDecimal, len(desc.NumericFields))
	)

	dest := []interface{}{
		&rec.WorkshopID,
		&rec.WorkshopName,
		&rec.Code,
		&rec.WorkshopType,
		&rec.Branch,
		&rec.BranchName,
		&rec.SalesRep,
		&month,
	}
	for i := range values {
		dest = append(dest, &values[i])
	}
	if err := rows.Scan(dest...); err != nil {
		return rec, fmt.Errorf("failed to scan %s record: %w", desc.Kind, err)
	}

	rec.Month = month
	rec.Values = make(map[string]decimal.Decimal, len(values))
	for i, f := range desc.NumericFields {
		if values[i].Valid {
			rec.Values[f.Key] = values[i].Decimal
		}
	}
	return rec, nil
}

func buildRecordsQuery(desc *domain.KindDescriptor, q domain.RecordQuery) (string, []interface{}) {
	var (
		conditions []string
		args       []interface{}
	)
	argCounter := 1

	if !q.From.IsZero() {
		conditions = append(conditions, fmt.Sprintf("e.%s >= $%d", desc.DateColumn, argCounter))
		args = append(args, q.From)
		argCounter++
	}
	if !q.To.IsZero() {
		conditions = append(conditions, fmt.Sprintf("e.%s < $%d", desc.DateColumn, argCounter))
		args = append(args, q.To)
		argCounter++
	}

	monthExpr := "''"
	groupBy := "w.id, w.name, w.code, w.workshop_type, w.branch, w.branch_name, w.sales_rep"
	orderBy := "w.name, w.id"
	if desc.DateEncoding == domain.MonthRange {
		monthExpr = fmt.Sprintf("to_char(date_trunc('month', e.%s), 'MM-YYYY')", desc.DateColumn)
		groupBy += ", 8"
		orderBy = fmt.Sprintf("date_trunc('month', MIN(e.%s)), w.name, w.id", desc.DateColumn)
	}

	sums := make([]string, len(desc.NumericFields))
	for i, f := range desc.NumericFields {
		sums[i] = fmt.Sprintf("SUM(e.%s) AS %s", f.Column, f.Column)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT
			w.id::text AS workshop_id,
			COALESCE(w.name, '') AS workshop_name,
			COALESCE(w.code, '') AS code,
			COALESCE(w.workshop_type, '') AS workshop_type,
			COALESCE(w.branch, '') AS branch,
			COALESCE(w.branch_name, '') AS branch_name,
			COALESCE(w.sales_rep, '') AS sales_rep,
			%s AS month,
			%s
		FROM %s e
		JOIN %s w ON w.id = e.workshop_id
		%s
		GROUP BY %s
		ORDER BY %s
	`, monthExpr, strings.Join(sums, ",\n\t\t\t"), desc.Table, workshopsTable, where, groupBy, orderBy)

	return query, args
}
