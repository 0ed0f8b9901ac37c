package counterparty

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"fjacquet/bankstmt/internal/models"
)

// FieldStrategy uses the beneficiary, then the remitter, extracted from
// the narration.
type FieldStrategy struct{}

// Name returns the name of this strategy.
func (FieldStrategy) Name() string { return "Fields" }

// Resolve returns the beneficiary or remitter when set.
func (FieldStrategy) Resolve(_ context.Context, tx models.Transaction) (string, bool, error) {
	if name := strings.TrimSpace(tx.Beneficiary); name != "" {
		return name, true, nil
	}
	if name := strings.TrimSpace(tx.Remitter); name != "" {
		return name, true, nil
	}
	return "", false, nil
}

// NarrationStrategy reads a name out of the narration. Short narrations
// use the second-from-last segment, the usual beneficiary slot, when it
// reads like a name. It is a heuristic and often wrong for unfamiliar
// formats.
type NarrationStrategy struct{}

var (
	segmentSeparators = regexp.MustCompile(`[-/|:]`)
	ifscLike          = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
	noiseTokens       = map[string]bool{
		"NEFT": true, "RTGS": true, "IMPS": true, "UPI": true, "CHQ": true,
		"CHEQUE": true, "CASH": true, "CR": true, "DR": true, "TRANSFER": true,
		"TRF": true, "TO": true, "FROM": true, "BY": true, "INB": true,
		"MB": true, "ACH": true, "ECS": true, "NACH": true, "P2A": true,
		"P2M": true, "REF": true, "DEP": true, "ATM": true, "WDL": true,
	}
)

// Name returns the name of this strategy.
func (NarrationStrategy) Name() string { return "Narration" }

// Resolve splits the narration on common separators. With fewer than four
// segments the second-from-last one is tried first. Otherwise, or when that
// slot is not name-like, the first segment with at least three letters that
// is not a payment keyword, an IFSC code or mostly digits wins.
func (NarrationStrategy) Resolve(_ context.Context, tx models.Transaction) (string, bool, error) {
	var segments []string
	for _, segment := range segmentSeparators.Split(tx.Narration, -1) {
		if segment = strings.TrimSpace(segment); segment != "" {
			segments = append(segments, segment)
		}
	}
	if n := len(segments); n >= 2 && n < 4 && nameLike(segments[n-2]) {
		return segments[n-2], true, nil
	}
	for _, segment := range segments {
		if nameLike(segment) {
			return segment, true, nil
		}
	}
	return "", false, nil
}

func nameLike(segment string) bool {
	upper := strings.ToUpper(segment)
	if noiseTokens[upper] || ifscLike.MatchString(upper) || strings.Contains(segment, "@") {
		return false
	}
	letters, digits := 0, 0
	for _, r := range segment {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsDigit(r):
			digits++
		}
	}
	return letters >= 3 && digits <= letters
}
