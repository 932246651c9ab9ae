package log

import "fincal/internal/core"

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldBackend     = "backend"
	FieldEventID     = "event_id"
	FieldRemoteID    = "remote_id"
	FieldTitle       = "title"
	FieldDate        = "date"
	FieldKind        = "kind"
	FieldAmountCents = "amount_cents"
	FieldCategory    = "category"
	FieldPeriodMode  = "period_mode"
	FieldYear        = "year"
	FieldMonth       = "month"
)

// Components defines standard component names
const (
	ComponentApp    = "app"
	ComponentWorker = "worker"
	ComponentReport = "report"
)

// Operations defines standard operation names
const (
	OpCreate    = "create"
	OpUpdate    = "update"
	OpDelete    = "delete"
	OpList      = "list"
	OpReport    = "report"
	OpSync      = "sync"
	OpReconcile = "reconcile"
	OpStartup   = "startup"
	OpShutdown  = "shutdown"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithEvent adds the identifying fields of e. Amount fields are only set
// for financial events.
func (f LogFields) WithEvent(e core.Event) LogFields {
	f[FieldEventID] = e.ID
	f[FieldTitle] = e.Title
	f[FieldDate] = e.Date.String()
	f[FieldKind] = string(e.Kind)
	if e.Kind.IsFinancial() {
		f[FieldAmountCents] = e.AmountOrZero().Cents
		f[FieldCategory] = e.Category
	}
	return f
}

func (f LogFields) WithPeriod(p core.Period) LogFields {
	f[FieldPeriodMode] = string(p.Mode)
	f[FieldYear] = p.Year
	if p.Mode == core.ModeMonthly {
		f[FieldMonth] = p.Month
	}
	return f
}

// Args flattens the fields into slog key/value pairs.
func (f LogFields) Args() []any {
	args := make([]any, 0, len(f)*2)
	for k, v := range f {
		args = append(args, k, v)
	}
	return args
}
