// Package common contains shared functionality for command handlers
package common

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"fjacquet/bankstmt/internal/apperror"
	"fjacquet/bankstmt/internal/currencyutils"
	"fjacquet/bankstmt/internal/dateutils"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by the --format flags.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// ParseAmountFlag parses an optional amount flag. An empty value returns nil.
func ParseAmountFlag(name, value string) (*decimal.Decimal, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	d, err := currencyutils.ParseAmount(value)
	if err != nil {
		return nil, &apperror.ValidationError{Field: name, Reason: fmt.Sprintf("cannot parse amount '%s'", value)}
	}
	return &d, nil
}

// ParseDateFlag parses an optional date flag in any supported statement
// layout. An empty value returns the zero time.
func ParseDateFlag(name, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, nil
	}
	t, _, err := dateutils.ParseDate(value)
	if err != nil {
		return time.Time{}, &apperror.ValidationError{Field: name, Reason: fmt.Sprintf("cannot parse date '%s'", value)}
	}
	return t, nil
}

// ValidateFormat rejects unknown --format values.
func ValidateFormat(format string) error {
	switch strings.ToLower(format) {
	case FormatTable, FormatJSON, FormatYAML:
		return nil
	}
	return &apperror.ValidationError{Field: "format", Reason: fmt.Sprintf("unknown format '%s' (table, json or yaml)", format)}
}

// WriteStructured writes v as JSON or YAML.
func WriteStructured(w io.Writer, format string, v interface{}) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported structured format: %s", format)
}

// NewTable returns a tab-aligned writer. Callers must Flush it.
func NewTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
