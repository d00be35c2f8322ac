package currency

import (
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// DefaultBaseCurrency is the currency every imported amount is normalized into
	DefaultBaseCurrency = "PLN"

	// AmountScale is the number of fraction digits kept on monetary amounts,
	// matching the NUMERIC(12,2) columns they are stored in.
	AmountScale = 2
)

// DefaultRates returns the built-in exchange rates to the default base currency
func DefaultRates() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"PLN": decimal.NewFromInt(1),
		"EUR": decimal.RequireFromString("4.3"),
		"USD": decimal.RequireFromString("4.0"),
	}
}

// Normalizer converts amounts into the base currency using a fixed rate table
type Normalizer struct {
	baseCurrency string
	rates        map[string]decimal.Decimal
	logger       *slog.Logger
}

// NewNormalizer copies rates so later changes to the caller's map have no effect.
// The base currency always has rate 1.
func NewNormalizer(baseCurrency string, rates map[string]decimal.Decimal, logger *slog.Logger) *Normalizer {
	baseCurrency = strings.ToUpper(baseCurrency)
	table := make(map[string]decimal.Decimal, len(rates)+1)
	for code, rate := range rates {
		table[strings.ToUpper(code)] = rate
	}
	table[baseCurrency] = decimal.NewFromInt(1)

	return &Normalizer{
		baseCurrency: baseCurrency,
		rates:        table,
		logger:       logger,
	}
}

// BaseCurrency returns the code amounts are normalized into
func (n *Normalizer) BaseCurrency() string {
	return n.baseCurrency
}

// Rate returns the multiplier for code and whether the code is known.
// Unknown codes get a rate of 1.
func (n *Normalizer) Rate(code string) (decimal.Decimal, bool) {
	rate, ok := n.rates[strings.ToUpper(code)]
	if !ok {
		return decimal.NewFromInt(1), false
	}
	return rate, true
}

// Normalize returns amount expressed in the base currency, rounded to AmountScale.
// An unknown currency is not an error: it is converted at 1:1 and a warning is logged.
func (n *Normalizer) Normalize(amount decimal.Decimal, code string) decimal.Decimal {
	rate, ok := n.Rate(code)
	if !ok {
		n.logger.Warn("Unknown currency code, falling back to 1:1 rate",
			"currency", code,
			"base_currency", n.baseCurrency,
		)
	}
	// decimal.Round rounds half away from zero, as Postgres NUMERIC does on store
	return amount.Mul(rate).Round(AmountScale)
}
