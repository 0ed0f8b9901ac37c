package statementparser

import (
	"strings"

	"fjacquet/bankstmt/internal/models"
)

// modeKeywords are checked in order; the first keyword found wins.
var modeKeywords = []struct {
	keywords []string
	mode     models.PaymentMode
}{
	{[]string{"NEFT"}, models.PaymentModeNEFT},
	{[]string{"RTGS"}, models.PaymentModeRTGS},
	{[]string{"IMPS"}, models.PaymentModeIMPS},
	{[]string{"CHEQUE", "CHQ"}, models.PaymentModeCheque},
	{[]string{"UPI"}, models.PaymentModeUPI},
	{[]string{"CASH"}, models.PaymentModeCash},
}

// PaymentMode infers the payment rail from a narration.
func PaymentMode(narration string) models.PaymentMode {
	upper := strings.ToUpper(narration)
	for _, mk := range modeKeywords {
		for _, kw := range mk.keywords {
			if strings.Contains(upper, kw) {
				return mk.mode
			}
		}
	}
	return models.PaymentModeOther
}

// NarrationType infers a transaction type from CR-/DR-/TRANSFER markers.
// Amount evidence, applied later, takes precedence over this result.
func NarrationType(narration string) models.TransactionType {
	upper := strings.ToUpper(narration)
	switch {
	case strings.Contains(upper, "CR-"):
		return models.TransactionTypeCredit
	case strings.Contains(upper, "DR-"):
		return models.TransactionTypeDebit
	case strings.Contains(upper, "TRANSFER"):
		return models.TransactionTypeTransfer
	}
	return models.TransactionTypeOther
}

// Counterparties splits a narration on "-" and, when at least four
// non-empty segments remain, reads the remitter third from last, the
// beneficiary second from last and the bank from the second segment.
// Narrations following another convention yield empty names.
func Counterparties(narration string) (remitter, beneficiary, bank string) {
	parts := NarrationSegments(narration)
	n := len(parts)
	if n < 4 {
		return "", "", ""
	}
	return parts[n-3], parts[n-2], parts[1]
}

// NarrationSegments splits a narration on "-" and drops empty segments.
func NarrationSegments(narration string) []string {
	var parts []string
	for _, p := range strings.Split(narration, "-") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
