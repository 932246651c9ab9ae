// Package format renders amounts for people. It is independent of the
// codec grammar, which always writes bare decimals.
package format

import (
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"fincal/internal/core"
)

// TagFor maps a LOCALE value to a language tag, English by default.
func TagFor(locale string) language.Tag {
	if tag, err := language.Parse(strings.TrimSpace(locale)); err == nil && tag != language.Und {
		return tag
	}
	return language.English
}

// Currency formats m in the currency code for tag. Unknown codes fall
// back to "<amount> <code>".
func Currency(m core.Money, code string, tag language.Tag) string {
	p := message.NewPrinter(tag)
	unit, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return strings.TrimSpace(p.Sprintf("%.2f %s", m.Float(), code))
	}
	return p.Sprint(currency.Symbol(unit.Amount(m.Float())))
}

// Percent formats a 0-100 share with one decimal.
func Percent(v float64, tag language.Tag) string {
	return message.NewPrinter(tag).Sprintf("%.1f%%", v)
}

// Count formats an integer with the grouping of tag.
func Count(n int, tag language.Tag) string {
	return message.NewPrinter(tag).Sprintf("%d", n)
}
