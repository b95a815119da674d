package view

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// CurrencyFormatter renders money values with locale-aware grouping. It
// keeps exactly the fraction digits the source value carries.
type CurrencyFormatter struct {
	symbol  string
	group   string
	decimal string
}

func NewCurrencyFormatter(locale, symbol string) *CurrencyFormatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	group, point := separators(message.NewPrinter(tag))
	return &CurrencyFormatter{
		symbol:  symbol,
		group:   group,
		decimal: point,
	}
}

// separators reads the locale's group and decimal marks off a sample
// rendering of 1234567.5.
func separators(p *message.Printer) (string, string) {
	sample := []rune(p.Sprintf("%v", number.Decimal(1234567.5,
		number.MinFractionDigits(1),
		number.MaxFractionDigits(1),
	)))
	group, point := ",", "."
	if len(sample) < 9 {
		return group, point
	}
	point = string(sample[len(sample)-2])
	if len(sample) > 9 {
		group = string(sample[1])
	} else {
		group = ""
	}
	return group, point
}

// Format works on the decimal's own digits so large amounts never pass
// through float64.
func (f *CurrencyFormatter) Format(value decimal.Decimal) string {
	places := int32(0)
	if exp := value.Exponent(); exp < 0 {
		places = -exp
	}

	digits := value.Abs().StringFixed(places)
	whole, frac, _ := strings.Cut(digits, ".")

	var b strings.Builder
	if value.Sign() < 0 {
		b.WriteByte('-')
	}
	b.WriteString(groupDigits(whole, f.group))
	if frac != "" {
		b.WriteString(f.decimal)
		b.WriteString(frac)
	}

	if f.symbol == "" {
		return b.String()
	}
	return f.symbol + " " + b.String()
}

func groupDigits(whole, sep string) string {
	if sep == "" || len(whole) <= 3 {
		return whole
	}
	var b strings.Builder
	lead := len(whole) % 3
	if lead > 0 {
		b.WriteString(whole[:lead])
	}
	for i := lead; i < len(whole); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(whole[i : i+3])
	}
	return b.String()
}
