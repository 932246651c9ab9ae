package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	KindNormal  Kind = "normal"
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Default labels applied to financial events when the field is missing.
const (
	DefaultCategory      = "Uncategorized"
	DefaultPaymentMethod = "Cash"
	DefaultCurrency      = "USD"
)

type (
	// Kind tags an event as a plain calendar entry or a financial transaction.
	Kind string

	// Event is the unit of record. Amount, Category, PaymentMethod and
	// Currency are only meaningful when Kind is financial.
	Event struct {
		ID            string `json:"id"`
		Title         string `json:"title"`
		Description   string `json:"description,omitempty"`
		Date          Date   `json:"date"`
		Kind          Kind   `json:"type"`
		Amount        *Money `json:"amount,omitempty"`
		Category      string `json:"category,omitempty"`
		PaymentMethod string `json:"paymentMethod,omitempty"`
		Currency      string `json:"currency,omitempty"`
	}

	// Defaults holds the values substituted for missing financial fields.
	Defaults struct {
		Category      string
		PaymentMethod string
		Currency      string
	}

	// EventOption customises an event built by NewEvent.
	EventOption func(*Event)
)

var (
	ErrMissingAmount = errors.New("financial event without amount")
	ErrEmptyTitle    = errors.New("empty title")
	ErrInvalidKind   = errors.New("invalid event kind")
)

// DefaultDefaults returns the English default labels.
func DefaultDefaults() Defaults {
	return Defaults{
		Category:      DefaultCategory,
		PaymentMethod: DefaultPaymentMethod,
		Currency:      DefaultCurrency,
	}
}

func (k Kind) IsFinancial() bool {
	return k == KindIncome || k == KindExpense
}

func (k Kind) Validate() error {
	switch k {
	case KindNormal, KindIncome, KindExpense:
		return nil
	default:
		return ErrInvalidKind
	}
}

func (k Kind) String() string {
	return string(k)
}

// WithDescription sets the free-text note.
func WithDescription(desc string) EventOption {
	return func(e *Event) { e.Description = desc }
}

// WithCategory sets the category label.
func WithCategory(category string) EventOption {
	return func(e *Event) { e.Category = category }
}

// WithPaymentMethod sets the payment method label.
func WithPaymentMethod(method string) EventOption {
	return func(e *Event) { e.PaymentMethod = method }
}

// WithCurrency sets the currency code.
func WithCurrency(code string) EventOption {
	return func(e *Event) { e.Currency = code }
}

// NewEvent builds a normalized event. A financial kind without an amount
// is rejected with ErrMissingAmount rather than defaulted to zero.
func NewEvent(title string, date Date, kind Kind, amount *Money, opts ...EventOption) (Event, error) {
	e := Event{Title: title, Date: date, Kind: kind, Amount: amount}
	for _, opt := range opts {
		opt(&e)
	}
	e = e.Normalize(DefaultDefaults())
	if err := e.Validate(); err != nil {
		return Event{}, err
	}
	return e, nil
}

// Normalize fills missing financial fields from d and clears them on
// normal events so no consumer ever sees them.
func (e Event) Normalize(d Defaults) Event {
	if !e.Kind.IsFinancial() {
		e.Amount = nil
		e.Category = ""
		e.PaymentMethod = ""
		e.Currency = ""
		return e
	}
	if strings.TrimSpace(e.Category) == "" {
		e.Category = d.Category
	}
	if strings.TrimSpace(e.PaymentMethod) == "" {
		e.PaymentMethod = d.PaymentMethod
	}
	if strings.TrimSpace(e.Currency) == "" {
		e.Currency = d.Currency
	}
	return e
}

func (e Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyTitle
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := e.Kind.Validate(); err != nil {
		return err
	}
	if e.Kind.IsFinancial() && e.Amount == nil {
		return ErrMissingAmount
	}
	if e.Kind.IsFinancial() && e.Amount.Cents < 0 {
		return fmt.Errorf("%w: %d cents is negative", ErrInvalidAmount, e.Amount.Cents)
	}
	return nil
}

// AmountOrZero returns the amount, treating a missing one as zero.
// Normal events always yield zero.
func (e Event) AmountOrZero() Money {
	if !e.Kind.IsFinancial() || e.Amount == nil {
		return Money{}
	}
	return *e.Amount
}
