// Package currencyutils provides amount parsing and formatting used by the
// statement extraction pipeline and the suspense ledger.
package currencyutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// currencyTokens matches currency glyphs and abbreviations, including the
	// dotted "Rs." form whose dot must not reach the decimal parser.
	currencyTokens = regexp.MustCompile(`(?i)(rs\.?|inr|usd|eur|gbp|chf|[₹$€£¥])`)
	debitSuffix    = regexp.MustCompile(`(?i)\s*dr\.?\s*$`)
)

// ParseAmount parses a statement amount such as "Rs. 1,25,000.50",
// "₹ 500", "(1,200.00)" or "750.00 Dr" into a decimal value. Commas are
// always treated as thousands separators. Parenthesised values and a
// trailing "Dr" marker are negative. An empty string yields zero.
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	if strings.TrimSpace(amountStr) == "" {
		return decimal.Zero, nil
	}

	standardized := StandardizeAmount(amountStr)
	if standardized == "" || standardized == "-" {
		return decimal.Zero, fmt.Errorf("no digits in amount '%s'", amountStr)
	}

	amount, err := decimal.NewFromString(standardized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount '%s': %w", amountStr, err)
	}

	return amount, nil
}

// StandardizeAmount reduces an amount string to an optional leading minus,
// digits and decimal points, ready for decimal.NewFromString.
func StandardizeAmount(amountStr string) string {
	s := strings.TrimSpace(amountStr)
	negative := false

	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}
	if debitSuffix.MatchString(s) {
		negative = true
		s = debitSuffix.ReplaceAllString(s, "")
	}

	s = trimStrayDots(strings.TrimSpace(currencyTokens.ReplaceAllString(s, "")))
	if strings.HasPrefix(s, "-") {
		negative = true
	}

	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}

	digits := b.String()
	if digits == "" {
		return ""
	}
	if negative {
		return "-" + digits
	}
	return digits
}

// trimStrayDots removes dots left at either end by sentence punctuation,
// as in "1,234.5 INR.". A leading dot followed by a digit is kept.
func trimStrayDots(s string) string {
	s = strings.TrimRight(s, ". ")
	for strings.HasPrefix(s, ".") && (len(s) == 1 || s[1] < '0' || s[1] > '9') {
		s = strings.TrimLeft(s[1:], " ")
	}
	return s
}

// FormatAmount formats a decimal amount with two decimal places and the
// given currency. Returns strings like "₹1234.56" or "CHF 1234.56".
func FormatAmount(amount decimal.Decimal, currency string) string {
	formattedAmount := amount.StringFixed(2)

	if currency != "" {
		switch strings.ToUpper(currency) {
		case "INR":
			return "₹" + formattedAmount
		case "EUR":
			return "€" + formattedAmount
		case "USD":
			return "$" + formattedAmount
		case "GBP":
			return "£" + formattedAmount
		default:
			return currency + " " + formattedAmount
		}
	}

	return formattedAmount
}
