package normalize

import "strings"

// symbolToCode maps common currency symbols to ISO-style codes.
var symbolToCode = map[string]string{
	"$": "USD",
	"€": "EUR",
	"£": "GBP",
	"¥": "JPY",
	"₹": "INR",
	"₩": "KRW",
}

// DefaultExchangeRates expresses each currency in USD units. Conversion
// between any two listed codes goes through this single static table;
// callers override it per run through the configuration surface.
var DefaultExchangeRates = map[string]float64{
	"USD": 1.0,
	"EUR": 1.09,
	"GBP": 1.27,
	"JPY": 0.0067,
	"CHF": 1.12,
	"CAD": 0.73,
	"AUD": 0.66,
	"CNY": 0.14,
	"INR": 0.012,
	"KRW": 0.00073,
	"SEK": 0.095,
	"NOK": 0.094,
	"DKK": 0.146,
	"IQD": 0.00076,
	"AED": 0.27,
	"SAR": 0.27,
}

// knownCodes fixes the scan order so cells mentioning two codes resolve
// deterministically.
var knownCodes = []string{
	"USD", "EUR", "GBP", "JPY", "CHF", "CAD", "AUD", "CNY",
	"INR", "KRW", "SEK", "NOK", "DKK", "IQD", "AED", "SAR",
}

// DetectCurrency resolves the currency of a single row: an explicit
// currency cell wins, then a symbol or code embedded in the amount cell,
// then the run's default. The second return reports whether the code
// came from the data rather than the assumption.
func DetectCurrency(explicitCell, amountCell, fallback string) (string, bool) {
	if code := currencyFromText(explicitCell); code != "" {
		return code, true
	}
	if code := currencyFromText(amountCell); code != "" {
		return code, true
	}
	return fallback, false
}

// currencyFromText finds a currency code or symbol inside a cell.
func currencyFromText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	upper := strings.ToUpper(s)
	if len(upper) == 3 {
		if _, ok := DefaultExchangeRates[upper]; ok {
			return upper
		}
	}
	for _, code := range knownCodes {
		if strings.Contains(upper, code) {
			return code
		}
	}
	for symbol, code := range symbolToCode {
		if strings.Contains(s, symbol) {
			return code
		}
	}
	return ""
}

// ConvertAmount converts an amount between two codes through the rate
// table. Codes missing from the table convert at par rather than
// failing the row.
func ConvertAmount(amount float64, from, to string, rates map[string]float64) float64 {
	if from == to {
		return amount
	}
	if len(rates) == 0 {
		rates = DefaultExchangeRates
	}
	fromRate, okFrom := rates[from]
	toRate, okTo := rates[to]
	if !okFrom || !okTo || toRate == 0 {
		return amount
	}
	return amount * fromRate / toRate
}
