package batch

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"fjacquet/bankstmt/internal/dateutils"
	"fjacquet/bankstmt/internal/logging"
	"fjacquet/bankstmt/internal/models"
)

// DateRange represents a date range with start and end dates
type DateRange struct {
	Start time.Time
	End   time.Time
}

// String returns the date range in the format "YYYY-MM-DD_YYYY-MM-DD"
func (dr DateRange) String() string {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s_%s", dateutils.ToISODate(dr.Start), dateutils.ToISODate(dr.End))
}

// Merge combines this date range with another, returning the overall range
func (dr DateRange) Merge(other DateRange) DateRange {
	start := dr.Start
	end := dr.End

	if dr.Start.IsZero() {
		start = other.Start
	} else if !other.Start.IsZero() && other.Start.Before(start) {
		start = other.Start
	}

	if dr.End.IsZero() {
		end = other.End
	} else if !other.End.IsZero() && other.End.After(end) {
		end = other.End
	}

	return DateRange{Start: start, End: end}
}

// Overlaps reports whether both ranges are set and share at least one day.
func (dr DateRange) Overlaps(other DateRange) bool {
	if dr.Start.IsZero() || dr.End.IsZero() || other.Start.IsZero() || other.End.IsZero() {
		return false
	}
	return dateutils.CompareDates(dr.Start, other.End) <= 0 && dateutils.CompareDates(other.Start, dr.End) <= 0
}

// AccountGroup collects the statements of one account.
type AccountGroup struct {
	BankName      string
	AccountNumber string
	StatementIDs  []string
	Files         []string
	DateRange     DateRange
	Transactions  int
}

// Key identifies the account.
func (g AccountGroup) Key() string {
	if g.AccountNumber == "" {
		return g.BankName + "/unknown"
	}
	return g.BankName + "/" + g.AccountNumber
}

// Aggregator groups ingested statements by account.
type Aggregator struct {
	logger logging.Logger
}

// NewAggregator creates a new Aggregator instance
func NewAggregator(logger logging.Logger) *Aggregator {
	return &Aggregator{logger: logging.OrDefault(logger)}
}

// GroupByAccount groups statements by bank and account number, sorted by
// key. Statements whose periods overlap within an account are logged as
// potential duplicates.
func (a *Aggregator) GroupByAccount(statements []*models.Statement) []AccountGroup {
	groups := make(map[string]*AccountGroup)
	ranges := make(map[string][]DateRange)

	for _, st := range statements {
		if st == nil {
			continue
		}
		candidate := AccountGroup{
			BankName:      st.Metadata.BankName,
			AccountNumber: strings.TrimSpace(st.Metadata.AccountNumber),
		}
		key := candidate.Key()
		group, ok := groups[key]
		if !ok {
			group = &candidate
			groups[key] = group
		}

		start, end := st.DateSpan()
		span := DateRange{Start: start, End: end}
		for _, seen := range ranges[key] {
			if seen.Overlaps(span) {
				a.logger.Warn("Overlapping statement periods for account",
					logging.F("account", key),
					logging.F(logging.FieldStatementID, st.ID),
					logging.F("period", span.String()))
				break
			}
		}
		ranges[key] = append(ranges[key], span)

		group.StatementIDs = append(group.StatementIDs, st.ID)
		group.Files = append(group.Files, st.FileName)
		group.DateRange = group.DateRange.Merge(span)
		group.Transactions += len(st.Transactions)
	}

	out := make([]AccountGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })

	a.logger.Info("Grouped statements into accounts",
		logging.F("statements", len(statements)),
		logging.F("accounts", len(out)))
	return out
}
