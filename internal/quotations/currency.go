package quotations

import (
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// SupportedCurrencies lists the ISO codes a quotation may carry. The currency
// affects display formatting only, never the arithmetic.
var SupportedCurrencies = []string{"USD", "KES", "EUR"}

// IsSupportedCurrency reports whether code is an accepted currency.
func IsSupportedCurrency(code string) bool {
	for _, c := range SupportedCurrencies {
		if c == code {
			return true
		}
	}
	return false
}

var displayPrinter = message.NewPrinter(language.English)

// FormatAmount renders an amount with its currency symbol for display.
// Stored values stay raw float64; rounding happens only at render time.
func FormatAmount(code string, amount float64) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		unit = currency.USD
	}
	return displayPrinter.Sprint(currency.Symbol(unit.Amount(amount)))
}
