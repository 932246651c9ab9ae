// Package codec maps events to and from the two text fields (summary and
// description) of a remote calendar entry.
//
// A financial entry is recognized by a leading "$" in its summary:
//
//	summary:     $50.5 - Coffee
//	description: Type: Expense
//	             Amount: 50.5
//	             Currency: USD
//	             Category: Food
//	             Payment Method: Cash
//
// Decoding is best effort. Entries written by hand or by another tool
// always decode to some event instead of failing.
package codec

import (
	"fmt"
	"regexp"
	"strings"

	"fincal/internal/calendar"
	"fincal/internal/core"
)

// FinancialMarker prefixes the summary of every financial entry. It is a
// classification marker, not a currency symbol.
const FinancialMarker = "$"

// ErrMissingAmount is returned when encoding a financial event without amount.
var ErrMissingAmount = core.ErrMissingAmount

// encodedSummary is the exact form Encode writes; the title may hold any
// character. summaryPattern also accepts hand-written variants and trims
// the whitespace around the dash.
var (
	encodedSummary = regexp.MustCompile(`^\$(\d+(?:\.\d+)?) - ((?s:.+))$`)
	summaryPattern = regexp.MustCompile(`^\$(\d+(?:\.\d+)?)\s*-\s*(.+)$`)
)

// Notes are written on one line so that their content can never be read
// back as another label.
var (
	notesEscaper   = strings.NewReplacer(`\`, `\\`, "\r", `\r`, "\n", `\n`)
	notesUnescaper = strings.NewReplacer(`\\`, `\`, `\r`, "\r", `\n`, "\n")
)

// KindPolicy decides the kind of a financial entry from its decoded type
// value. present is false when the description had no type line.
type KindPolicy func(value string, present bool, incomeTokens []string) core.Kind

// DefaultKindPolicy yields Income only for an exact income token. Anything
// else, a missing type line included, decodes as Expense.
var DefaultKindPolicy KindPolicy = func(value string, present bool, incomeTokens []string) core.Kind {
	if present {
		for _, tok := range incomeTokens {
			if value == tok {
				return core.KindIncome
			}
		}
	}
	return core.KindExpense
}

// Codec encodes with one vocabulary and decodes any known one.
type Codec struct {
	vocab        Vocabulary
	defaults     core.Defaults
	kindPolicy   KindPolicy
	labels       map[string]field
	incomeTokens []string
}

// Option customises a Codec.
type Option func(*Codec)

// WithVocabulary selects the labels written on encode. Its defaults are
// used unless WithDefaults is also given.
func WithVocabulary(v Vocabulary) Option {
	return func(c *Codec) {
		c.vocab = v
		c.defaults = v.Defaults
	}
}

// WithDefaults overrides the values used for missing fields.
func WithDefaults(d core.Defaults) Option {
	return func(c *Codec) { c.defaults = d }
}

// WithDefaultCurrency overrides only the default currency.
func WithDefaultCurrency(code string) Option {
	return func(c *Codec) {
		if strings.TrimSpace(code) != "" {
			c.defaults.Currency = code
		}
	}
}

// WithKindPolicy replaces DefaultKindPolicy.
func WithKindPolicy(p KindPolicy) Option {
	return func(c *Codec) { c.kindPolicy = p }
}

// New creates a codec writing English labels by default.
func New(opts ...Option) *Codec {
	c := &Codec{
		vocab:      English,
		defaults:   English.Defaults,
		kindPolicy: DefaultKindPolicy,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.labels = map[string]field{}
	for _, v := range append([]Vocabulary{c.vocab}, knownVocabularies...) {
		for label, f := range v.labels() {
			if _, ok := c.labels[label]; !ok {
				c.labels[label] = f
			}
		}
		c.incomeTokens = appendUnique(c.incomeTokens, v.IncomeToken)
	}
	return c
}

// Vocabulary returns the labels written on encode.
func (c *Codec) Vocabulary() Vocabulary {
	return c.vocab
}

// Defaults returns the values used for missing fields.
func (c *Codec) Defaults() core.Defaults {
	return c.defaults
}

// Encode renders e as summary and description.
func (c *Codec) Encode(e core.Event) (summary, description string, err error) {
	if !e.Kind.IsFinancial() {
		return e.Title, e.Description, nil
	}
	if e.Amount == nil {
		return "", "", fmt.Errorf("encode %q: %w", e.Title, ErrMissingAmount)
	}
	if e.Amount.Cents < 0 {
		return "", "", fmt.Errorf("encode %q: %w: negative", e.Title, core.ErrInvalidAmount)
	}
	e = e.Normalize(c.defaults)

	amount := e.Amount.String()
	summary = FinancialMarker + amount + " - " + e.Title

	kindToken := c.vocab.ExpenseToken
	if e.Kind == core.KindIncome {
		kindToken = c.vocab.IncomeToken
	}
	lines := []struct{ label, value string }{
		{c.vocab.TypeLabel, kindToken},
		{c.vocab.AmountLabel, amount},
		{c.vocab.CurrencyLabel, e.Currency},
		{c.vocab.CategoryLabel, e.Category},
		{c.vocab.PaymentMethodLabel, e.PaymentMethod},
		{c.vocab.NotesLabel, notesEscaper.Replace(e.Description)},
	}
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l.value) == "" {
			continue
		}
		out = append(out, l.label+": "+l.value)
	}
	return summary, strings.Join(out, "\n"), nil
}

// Decode rebuilds an event from summary and description. The result has
// no id and no date; see DecodeEntry.
func (c *Codec) Decode(summary, description string) core.Event {
	if !IsFinancial(summary) {
		return core.Event{Title: summary, Description: description, Kind: core.KindNormal}
	}

	var titleAmount core.Money
	title := summary
	if m := matchSummary(summary); m != nil {
		if amt, err := core.ParseAmount(m[1]); err == nil {
			titleAmount = amt
			title = m[2]
		}
	}

	fields := c.parseFields(description)
	typeValue, hasType := fields[fieldType]

	amount := titleAmount
	if raw, ok := fields[fieldAmount]; ok {
		if amt, err := core.ParseAmount(raw); err == nil {
			amount = amt
		}
	}

	e := core.Event{
		Title:         title,
		Description:   notesUnescaper.Replace(fields[fieldNotes]),
		Kind:          c.kindPolicy(typeValue, hasType, c.incomeTokens),
		Amount:        &amount,
		Category:      fields[fieldCategory],
		PaymentMethod: fields[fieldPaymentMethod],
		Currency:      fields[fieldCurrency],
	}
	return e.Normalize(c.defaults)
}

// DecodeEntry decodes a validated remote entry, keeping its id and date.
func (c *Codec) DecodeEntry(entry calendar.Entry) core.Event {
	e := c.Decode(entry.Summary, entry.Description)
	e.ID = entry.ID
	e.Date = entry.Date
	return e
}

// parseFields reads "Label: value" lines. The first colon splits; lines
// without one, unknown labels and empty values are ignored; a repeated
// label keeps its last value.
func (c *Codec) parseFields(description string) map[field]string {
	fields := map[field]string{}
	for _, line := range strings.Split(description, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		f, known := c.labels[strings.TrimSpace(key)]
		value = strings.TrimSpace(value)
		if !known || value == "" {
			continue
		}
		fields[f] = value
	}
	return fields
}

// IsFinancial reports whether summary marks a financial entry.
func IsFinancial(summary string) bool {
	return strings.HasPrefix(summary, FinancialMarker)
}

// IsMalformedSummary reports a financial summary that does not follow
// "$<amount> - <title>". Such entries decode with amount 0 from the title.
func IsMalformedSummary(summary string) bool {
	return IsFinancial(summary) && matchSummary(summary) == nil
}

func matchSummary(summary string) []string {
	if m := encodedSummary.FindStringSubmatch(summary); m != nil {
		return m
	}
	return summaryPattern.FindStringSubmatch(summary)
}

func appendUnique(list []string, v string) []string {
	for _, s := range list {
		if s == v {
			return list
		}
	}
	return append(list, v)
}
