package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// usdRates converts a recognized currency code to USD using a fixed rate
// table. Missing amount or unknown currency yields no normalized value.
var usdRates = map[string]float64{
	"USD": 1.00,
	"EUR": 1.08,
	"CAD": 0.73,
	"GBP": 1.26,
}

// currencySymbols maps a display symbol to its ISO-like code. Scanned
// before codes, in the order $, €, £, per the spec's "first match wins".
var currencySymbols = []struct {
	symbol string
	code   string
}{
	{"$", "USD"},
	{"€", "EUR"},
	{"£", "GBP"},
}

// currencyCodes are matched case-insensitively after symbols. CAD has no
// symbol of its own and is only ever matched by code.
var currencyCodes = []string{"USD", "EUR", "CAD", "GBP"}

var (
	perMonthRe  = regexp.MustCompile(`(?i)/month|per month`)
	thousandsRe = regexp.MustCompile(`,`)
	digitsRe    = regexp.MustCompile(`[0-9.]+`)

	currencyCodeRes = map[string]*regexp.Regexp{
		"USD": regexp.MustCompile(`(?i)USD`),
		"EUR": regexp.MustCompile(`(?i)EUR`),
		"CAD": regexp.MustCompile(`(?i)CAD`),
		"GBP": regexp.MustCompile(`(?i)GBP`),
	}
)

// DetectCurrency scans free-form text for a known currency symbol, then a
// known currency code, case-insensitively. The first match wins; an
// unrecognized currency yields nil.
func DetectCurrency(text string) *string {
	for _, sym := range currencySymbols {
		if strings.Contains(text, sym.symbol) {
			code := sym.code
			return &code
		}
	}

	upper := strings.ToUpper(text)
	for _, code := range currencyCodes {
		if strings.Contains(upper, code) {
			c := code
			return &c
		}
	}
	return nil
}

// ParsePrice extracts a numeric amount and a currency code from free-form
// price text, e.g. "$1,500.50/month" -> (1500.50, "USD").
func ParsePrice(text string) (amount *float64, currency *string) {
	currency = DetectCurrency(text)

	cleaned := text
	for _, sym := range currencySymbols {
		cleaned = strings.ReplaceAll(cleaned, sym.symbol, "")
	}
	for _, code := range currencyCodes {
		cleaned = currencyCodeRes[code].ReplaceAllString(cleaned, "")
	}
	cleaned = perMonthRe.ReplaceAllString(cleaned, "")
	cleaned = thousandsRe.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	match := digitsRe.FindString(cleaned)
	if match == "" {
		return nil, currency
	}

	val, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return nil, currency
	}
	return &val, currency
}

// ConvertToUSD converts an amount in the given currency code to USD using
// the fixed rate table. An unknown currency yields no value.
func ConvertToUSD(amount float64, currency string) (usd *float64, ok bool) {
	rate, known := usdRates[strings.ToUpper(currency)]
	if !known {
		return nil, false
	}
	converted := amount * rate
	return &converted, true
}
