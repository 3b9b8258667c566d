package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	DefaultLocale   = "en-US"
	DefaultCurrency = "USD"
)

// Formatter renders amounts and dates for one locale and currency. Output is
// deterministic for a fixed configuration.
type Formatter struct {
	printer     *message.Printer
	symbol      string
	symbolAfter bool
	groupSep    string
	decimalSep  string
	dateLayout  string
}

// NewFormatter builds a formatter from a BCP 47 locale and an ISO 4217 code.
func NewFormatter(locale, currencyCode string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", locale, err)
	}
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return nil, fmt.Errorf("parse currency %q: %w", currencyCode, err)
	}
	p := message.NewPrinter(tag)

	base, _ := tag.Base()
	layout := "02/01/2006"
	if base.String() == "en" {
		layout = "Jan 2, 2006"
	}

	group, dec := separators(p)
	return &Formatter{
		printer:     p,
		symbol:      p.Sprint(currency.Symbol(unit)),
		symbolAfter: symbolAfterAmount[base.String()],
		groupSep:    group,
		decimalSep:  dec,
		dateLayout:  layout,
	}, nil
}

// symbolAfterAmount lists languages writing "1.234,50 €" rather than "€1,234.50".
var symbolAfterAmount = map[string]bool{
	"cs": true, "da": true, "de": true, "es": true, "fi": true, "fr": true, "hu": true,
	"it": true, "nb": true, "pl": true, "ru": true, "sk": true, "sv": true, "uk": true,
}

// separators reads the locale's digit grouping and decimal marks off a
// formatted sample, e.g. "1,234.5" or "1.234,5".
func separators(p *message.Printer) (group, dec string) {
	sample := p.Sprintf("%.1f", 1234.5)
	i2 := strings.IndexRune(sample, '2')
	i4 := strings.IndexRune(sample, '4')
	i5 := strings.LastIndexByte(sample, '5')
	if i2 < 1 || i4 < i2 || i5 < i4 {
		return ",", "."
	}
	return sample[1:i2], sample[i4+1 : i5]
}

// DefaultFormatter formats en-US amounts in US dollars.
func DefaultFormatter() *Formatter {
	f, err := NewFormatter(DefaultLocale, DefaultCurrency)
	if err != nil {
		panic(err)
	}
	return f
}

// FormatCurrency renders e.g. $1,234.50 or -$50.00, or 1.234,50 € where the
// locale puts the symbol last. Digits are exact at any magnitude.
func (f *Formatter) FormatCurrency(amount decimal.Decimal) string {
	sign := ""
	amount = amount.Round(2)
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}

	whole, frac, _ := strings.Cut(amount.StringFixed(2), ".")
	number := groupDigits(whole, f.groupSep) + f.decimalSep + frac
	if f.symbolAfter {
		return sign + number + " " + f.symbol
	}
	return sign + f.symbol + number
}

func groupDigits(digits, sep string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// FormatDate renders e.g. Mar 1, 2024.
func (f *Formatter) FormatDate(d Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format(f.dateLayout)
}

// FormatPercent renders a percentage with no decimals, as budget bars show it.
func (f *Formatter) FormatPercent(pct float64) string {
	return f.printer.Sprintf("%.0f%%", pct)
}
