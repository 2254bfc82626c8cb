// Package currency serves static ISO 4217 reference data. No persistence.
package currency

import "strings"

// Currency is one ISO 4217 entry
type Currency struct {
	Code          string `json:"code"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	DecimalPlaces int    `json:"decimal_places"`
}

var currencies = []Currency{
	{Code: "USD", Symbol: "$", Name: "United States Dollar", DecimalPlaces: 2},
	{Code: "EUR", Symbol: "€", Name: "Euro", DecimalPlaces: 2},
	{Code: "GBP", Symbol: "£", Name: "Pound Sterling", DecimalPlaces: 2},
	{Code: "JPY", Symbol: "¥", Name: "Japanese Yen", DecimalPlaces: 0},
	{Code: "CNY", Symbol: "¥", Name: "Chinese Yuan", DecimalPlaces: 2},
	{Code: "INR", Symbol: "₹", Name: "Indian Rupee", DecimalPlaces: 2},
	{Code: "CAD", Symbol: "$", Name: "Canadian Dollar", DecimalPlaces: 2},
	{Code: "AUD", Symbol: "$", Name: "Australian Dollar", DecimalPlaces: 2},
	{Code: "CHF", Symbol: "Fr", Name: "Swiss Franc", DecimalPlaces: 2},
	{Code: "SEK", Symbol: "kr", Name: "Swedish Krona", DecimalPlaces: 2},
	{Code: "NOK", Symbol: "kr", Name: "Norwegian Krone", DecimalPlaces: 2},
	{Code: "DKK", Symbol: "kr", Name: "Danish Krone", DecimalPlaces: 2},
	{Code: "PLN", Symbol: "zł", Name: "Polish Złoty", DecimalPlaces: 2},
	{Code: "BRL", Symbol: "R$", Name: "Brazilian Real", DecimalPlaces: 2},
	{Code: "MXN", Symbol: "$", Name: "Mexican Peso", DecimalPlaces: 2},
	{Code: "ZAR", Symbol: "R", Name: "South African Rand", DecimalPlaces: 2},
	{Code: "KRW", Symbol: "₩", Name: "South Korean Won", DecimalPlaces: 0},
	{Code: "SGD", Symbol: "$", Name: "Singapore Dollar", DecimalPlaces: 2},
	{Code: "HKD", Symbol: "$", Name: "Hong Kong Dollar", DecimalPlaces: 2},
	{Code: "NZD", Symbol: "$", Name: "New Zealand Dollar", DecimalPlaces: 2},
	{Code: "AED", Symbol: "د.إ", Name: "UAE Dirham", DecimalPlaces: 2},
	{Code: "SAR", Symbol: "﷼", Name: "Saudi Riyal", DecimalPlaces: 2},
	{Code: "KWD", Symbol: "د.ك", Name: "Kuwaiti Dinar", DecimalPlaces: 3},
	{Code: "BHD", Symbol: ".د.ب", Name: "Bahraini Dinar", DecimalPlaces: 3},
	{Code: "TRY", Symbol: "₺", Name: "Turkish Lira", DecimalPlaces: 2},
	{Code: "RUB", Symbol: "₽", Name: "Russian Ruble", DecimalPlaces: 2},
	{Code: "THB", Symbol: "฿", Name: "Thai Baht", DecimalPlaces: 2},
	{Code: "IDR", Symbol: "Rp", Name: "Indonesian Rupiah", DecimalPlaces: 2},
	{Code: "PHP", Symbol: "₱", Name: "Philippine Peso", DecimalPlaces: 2},
	{Code: "VND", Symbol: "₫", Name: "Vietnamese Dong", DecimalPlaces: 0},
}

// All returns every known currency
func All() []Currency {
	out := make([]Currency, len(currencies))
	copy(out, currencies)
	return out
}

// ByCode looks up a currency by its ISO code, case-insensitively
func ByCode(code string) (Currency, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range currencies {
		if c.Code == code {
			return c, true
		}
	}
	return Currency{}, false
}
