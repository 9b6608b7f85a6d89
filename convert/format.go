package convert

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/bqhou/unitai/catalog"
)

const (
	valueFractionDigits = 4
	rateFractionDigits  = 3
)

// Formatter renders values for display in a given locale.
type Formatter struct {
	printer *message.Printer
}

// NewFormatter builds a Formatter for tag.
func NewFormatter(tag language.Tag) *Formatter {
	return &Formatter{printer: message.NewPrinter(tag)}
}

// DefaultFormatter formats for en-US.
var DefaultFormatter = NewFormatter(language.AmericanEnglish)

// Value formats a conversion result: grouped, at most 4 fraction digits.
func (f *Formatter) Value(v float64) string {
	return f.printer.Sprintf("%v", number.Decimal(v, number.MaxFractionDigits(valueFractionDigits)))
}

// Rate formats a unit rate: grouped, at most 3 fraction digits.
func (f *Formatter) Rate(v float64) string {
	return f.printer.Sprintf("%v", number.Decimal(v, number.MaxFractionDigits(rateFractionDigits)))
}

// Summary renders "12 in = 1 ft".
func (f *Formatter) Summary(value float64, from, to catalog.Unit, category catalog.Category) string {
	return f.printer.Sprintf("%s %s = %s %s",
		f.Value(value), from.Abbreviation,
		f.Value(Convert(value, from, to, category)), to.Abbreviation)
}

// RateLine renders "1 ft ≈ 0.305 m".
func (f *Formatter) RateLine(from, to catalog.Unit, category catalog.Category) string {
	return f.printer.Sprintf("1 %s ≈ %s %s", from.Abbreviation, f.Rate(Rate(from, to, category)), to.Abbreviation)
}

// FormatValue formats with DefaultFormatter.
func FormatValue(v float64) string { return DefaultFormatter.Value(v) }

// FormatRate formats with DefaultFormatter.
func FormatRate(v float64) string { return DefaultFormatter.Rate(v) }
