// Package money converts between integer cents, decimal amounts and the
// strings users type or read.
package money

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	appErrors "github.com/fatali-fataliyev/monthly_budget/customErrors"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const DEFAULT_LOCALE = "pt-BR"

var maxCents = decimal.NewFromInt(math.MaxInt64)

type locale struct {
	tag       language.Tag
	symbol    string
	separator string
}

var locales = map[string]locale{
	"pt-BR": {tag: language.BrazilianPortuguese, symbol: "R$", separator: " "},
	"en-US": {tag: language.AmericanEnglish, symbol: "$", separator: ""},
	"en":    {tag: language.English, symbol: "$", separator: ""},
}

func valueError(format string, args ...any) error {
	return appErrors.New(appErrors.ErrInvalidValue, format, args...)
}

// ToDecimal turns cents into a currency amount with two decimal places.
func ToDecimal(cents int64) (decimal.Decimal, error) {
	if cents < 0 {
		return decimal.Zero, valueError("Amount cannot be negative, got %d cents.", cents)
	}
	return decimal.New(cents, -2), nil
}

// ToCents converts an amount to cents. Amounts with more than two decimals
// are rejected, never rounded.
func ToCents(amount decimal.Decimal) (int64, error) {
	if amount.IsNegative() {
		return 0, valueError("Amount cannot be negative, got %s.", amount.String())
	}
	if !amount.Equal(amount.Round(2)) {
		return 0, valueError("Amount %s has more than two decimal places.", amount.String())
	}
	shifted := amount.Shift(2)
	if shifted.GreaterThan(maxCents) {
		return 0, valueError("Amount %s is too large.", amount.String())
	}
	return shifted.IntPart(), nil
}

// MustDecimal is ToDecimal for values already known to be valid.
func MustDecimal(cents int64) decimal.Decimal {
	d, err := ToDecimal(cents)
	if err != nil {
		panic(err)
	}
	return d
}

// ParseCents reads raw user input made of digits only, e.g. "12345" for 123.45.
func ParseCents(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, valueError("Amount is empty.")
	}
	for _, r := range raw {
		if !unicode.IsDigit(r) {
			return 0, valueError("Invalid amount '%s', only digits are allowed.", raw)
		}
	}
	cents, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, valueError("Amount '%s' is too large.", raw)
	}
	return cents, nil
}

// ParseAmount reads "1234.56", "1234,56", "1.234,56" or "1,234.56". A lone
// separator followed by exactly three digits ("1.234") could be either a
// thousands group or a decimal mark and is rejected.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, valueError("Amount is empty.")
	}
	if strings.Count(raw, ",")+strings.Count(raw, ".") == 1 {
		if len(raw)-strings.IndexAny(raw, ",.")-1 == 3 {
			return decimal.Zero, valueError("Amount '%s' is ambiguous, use two decimal places.", raw)
		}
	}

	lastComma := strings.LastIndex(raw, ",")
	lastDot := strings.LastIndex(raw, ".")
	switch {
	case lastComma > lastDot:
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.Replace(raw, ",", ".", 1)
	case lastDot > lastComma && lastComma >= 0:
		raw = strings.ReplaceAll(raw, ",", "")
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, valueError("Invalid amount '%s'.", raw)
	}
	if amount.IsNegative() {
		return decimal.Zero, valueError("Amount cannot be negative, got %s.", raw)
	}
	if !amount.Equal(amount.Round(2)) {
		return decimal.Zero, valueError("Amount '%s' has more than two decimal places.", raw)
	}
	return amount, nil
}

// Format renders amount with two decimals using the locale's grouping, e.g.
// "R$ 1.234,56" for pt-BR. Unknown locales fall back to pt-BR.
func Format(amount decimal.Decimal, localeName string) string {
	loc, ok := locales[localeName]
	if !ok {
		loc = locales[DEFAULT_LOCALE]
	}
	printer := message.NewPrinter(loc.tag)
	value := amount.Round(2).InexactFloat64()
	return loc.symbol + loc.separator + printer.Sprint(number.Decimal(value, number.Scale(2)))
}
