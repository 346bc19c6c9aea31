// Package money renders monetary amounts as locale-appropriate currency
// strings. Presentation only: exact arithmetic stays in the domain.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders decimal amounts for one locale and currency unit.
// It is stateless and safe for concurrent use.
type Formatter struct {
	unit    currency.Unit
	printer *message.Printer
}

// NewFormatter builds a Formatter for the given locale and currency.
func NewFormatter(tag language.Tag, unit currency.Unit) *Formatter {
	return &Formatter{
		unit:    unit,
		printer: message.NewPrinter(tag),
	}
}

// BRL returns the Brazilian-Portuguese default formatter, e.g. "R$ 90,00".
func BRL() *Formatter {
	return NewFormatter(language.BrazilianPortuguese, currency.BRL)
}

// Format renders d with the currency symbol and two fraction digits in the
// formatter's locale. The float conversion is display-only.
func (f *Formatter) Format(d decimal.Decimal) string {
	return f.printer.Sprintf("%v %.2f", currency.Symbol(f.unit), d.InexactFloat64())
}

// FormatPtr renders d, treating an absent amount as the locale's zero
// string ("R$ 0,00" for the BRL default).
func (f *Formatter) FormatPtr(d *decimal.Decimal) string {
	if d == nil {
		return f.Format(decimal.Zero)
	}
	return f.Format(*d)
}
