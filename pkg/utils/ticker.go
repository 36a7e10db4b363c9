package utils

import (
	"strings"
)

// NormalizeTicker normalizes a user-input ticker to the canonical upper-case form.
// It strips whitespace and a leading $ (common in chat and spreadsheets).
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))
	ticker = strings.TrimPrefix(ticker, "$")
	return ticker
}

// YahooSymbol converts a ticker to Yahoo Finance format by appending an
// exchange suffix such as ".NS" or ".L". An empty suffix leaves US tickers as-is.
func YahooSymbol(ticker, suffix string) string {
	ticker = NormalizeTicker(ticker)
	if suffix == "" || strings.HasSuffix(ticker, suffix) {
		return ticker
	}
	if !strings.HasPrefix(suffix, ".") {
		suffix = "." + suffix
	}
	return ticker + suffix
}

// FromYahooSymbol strips the exchange suffix from a Yahoo Finance symbol.
func FromYahooSymbol(symbol string) string {
	if i := strings.LastIndex(symbol, "."); i > 0 {
		return symbol[:i]
	}
	return symbol
}
