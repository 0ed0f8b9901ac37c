// Package normalize converts grid cells into canonical dates and amounts.
// Neither function fails: an unparseable date is reported as absent and an
// unparseable amount is zero.
package normalize

import (
	"time"

	"fjacquet/bankstmt/internal/currencyutils"
	"fjacquet/bankstmt/internal/dateutils"
	"fjacquet/bankstmt/internal/grid"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Excel serial numbers accepted as dates: 1954-10-03 through 2119-01-10.
const (
	minExcelSerial = 20000
	maxExcelSerial = 80000
)

// Date parses a cell into a calendar date at UTC midnight. Numeric cells in
// the Excel serial range are converted from the 1900 date system; all other
// cells go through the textual layouts.
func Date(cell grid.Cell) (time.Time, bool) {
	switch cell.Kind {
	case grid.Empty:
		return time.Time{}, false
	case grid.Number:
		serial := cell.Number.InexactFloat64()
		if serial >= minExcelSerial && serial <= maxExcelSerial {
			t, err := excelize.ExcelDateToTime(serial, false)
			if err == nil {
				return dateutils.DateOnly(t), true
			}
		}
	}

	t, _, err := dateutils.ParseDate(cell.Text)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DateString parses a raw string as a date.
func DateString(s string) (time.Time, bool) {
	return Date(grid.Classify(s))
}

// Amount parses a cell into a decimal. Numbers pass through unchanged.
func Amount(cell grid.Cell) decimal.Decimal {
	switch cell.Kind {
	case grid.Number:
		return cell.Number
	case grid.Empty:
		return decimal.Zero
	}
	amount, err := currencyutils.ParseAmount(cell.Text)
	if err != nil {
		return decimal.Zero
	}
	return amount
}

// AmountString parses a raw string as an amount.
func AmountString(s string) decimal.Decimal {
	return Amount(grid.Classify(s))
}
