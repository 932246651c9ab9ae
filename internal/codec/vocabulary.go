package codec

import "fincal/internal/core"

// Vocabulary is the label set written into a financial entry description,
// plus the kind tokens and the defaults for missing fields. The grammar
// around the labels is the same for every vocabulary.
type Vocabulary struct {
	Name string

	TypeLabel          string
	AmountLabel        string
	CurrencyLabel      string
	CategoryLabel      string
	PaymentMethodLabel string
	NotesLabel         string

	IncomeToken  string
	ExpenseToken string

	Defaults core.Defaults
}

var (
	English = Vocabulary{
		Name:               "en",
		TypeLabel:          "Type",
		AmountLabel:        "Amount",
		CurrencyLabel:      "Currency",
		CategoryLabel:      "Category",
		PaymentMethodLabel: "Payment Method",
		NotesLabel:         "Notes",
		IncomeToken:        "Income",
		ExpenseToken:       "Expense",
		Defaults:           core.DefaultDefaults(),
	}

	Spanish = Vocabulary{
		Name:               "es",
		TypeLabel:          "Tipo",
		AmountLabel:        "Monto",
		CurrencyLabel:      "Moneda",
		CategoryLabel:      "Categoría",
		PaymentMethodLabel: "Método de Pago",
		NotesLabel:         "Notas",
		IncomeToken:        "Ingreso",
		ExpenseToken:       "Gasto",
		Defaults: core.Defaults{
			Category:      "Sin categoría",
			PaymentMethod: "Efectivo",
			Currency:      "MXN",
		},
	}
)

// knownVocabularies are recognized on decode regardless of which one the
// codec writes with.
var knownVocabularies = []Vocabulary{English, Spanish}

// VocabularyByName returns the vocabulary for "en" or "es".
func VocabularyByName(name string) (Vocabulary, bool) {
	for _, v := range knownVocabularies {
		if v.Name == name {
			return v, true
		}
	}
	return Vocabulary{}, false
}

type field int

const (
	fieldType field = iota
	fieldAmount
	fieldCurrency
	fieldCategory
	fieldPaymentMethod
	fieldNotes
)

func (v Vocabulary) labels() map[string]field {
	return map[string]field{
		v.TypeLabel:          fieldType,
		v.AmountLabel:        fieldAmount,
		v.CurrencyLabel:      fieldCurrency,
		v.CategoryLabel:      fieldCategory,
		v.PaymentMethodLabel: fieldPaymentMethod,
		v.NotesLabel:         fieldNotes,
	}
}
