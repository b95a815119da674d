package domain

import (
	"fmt"
	"strings"
)

// Kind identifies which family of business records a view works on.
type Kind string

const (
	KindAccount Kind = "account"
	KindSales   Kind = "sales"
)

// DateEncoding controls how a date range is stored and transmitted.
type DateEncoding int

const (
	// DayRange stores YYYY-MM-DD dates and sends start/end separately.
	DayRange DateEncoding = iota
	// MonthRange stores MM-YYYY months and sends them jointly as "month".
	MonthRange
)

// NumericField describes one summable payload field of a record.
type NumericField struct {
	Key    string
	Label  string
	Column string
	Money  bool
}

// KindDescriptor is the configuration table that turns the single view
// engine into the account or the sales dashboard.
type KindDescriptor struct {
	Kind          Kind
	Title         string
	Table         string
	DateColumn    string
	NumericFields []NumericField
	DateEncoding  DateEncoding
	// DetailLink enables the per-workshop detail route on the name column.
	DetailLink bool
}

var descriptors = map[Kind]*KindDescriptor{
	KindAccount: {
		Kind:       KindAccount,
		Title:      "Accounts",
		Table:      "workshop_account_entries",
		DateColumn: "entry_date",
		NumericFields: []NumericField{
			{Key: "debit", Label: "Total Debit", Column: "debit", Money: true},
			{Key: "credit", Label: "Total Credit", Column: "credit", Money: true},
		},
		DateEncoding: DayRange,
		DetailLink:   true,
	},
	KindSales: {
		Kind:       KindSales,
		Title:      "Sales",
		Table:      "workshop_monthly_sales",
		DateColumn: "sales_month",
		NumericFields: []NumericField{
			{Key: "retailQty", Label: "Retail Qty", Column: "retail_qty"},
			{Key: "retailSell", Label: "Retail Sell", Column: "retail_sell", Money: true},
			{Key: "returnQty", Label: "Return Qty", Column: "return_qty"},
			{Key: "returnSell", Label: "Return Sell", Column: "return_sell", Money: true},
		},
		DateEncoding: MonthRange,
	},
}

// ParseKind accepts the kind names used in routes ("account", "accounts",
// "sales").
func ParseKind(raw string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "account", "accounts", "accounting":
		return KindAccount, nil
	case "sales", "sale":
		return KindSales, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, raw)
}

// Describe returns the descriptor registered for the kind.
func Describe(kind Kind) (*KindDescriptor, error) {
	desc, ok := descriptors[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return desc, nil
}

// MustDescribe is Describe for the built-in kinds.
func MustDescribe(kind Kind) *KindDescriptor {
	desc, err := Describe(kind)
	if err != nil {
		panic(err)
	}
	return desc
}

// DetailRoute is the workshop detail path, empty when the kind has none.
func (d *KindDescriptor) DetailRoute(workshopID string) string {
	if !d.DetailLink || workshopID == "" {
		return ""
	}
	return fmt.Sprintf("/%s/%s/accounts", d.Kind, workshopID)
}

// UploadRoute is the bulk upload entry path.
func (d *KindDescriptor) UploadRoute() string {
	return fmt.Sprintf("/%s/add-bulk-%s", d.Kind, d.Kind)
}
