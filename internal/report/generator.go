// Package report builds suspense ledger reports in JSON or YAML.
package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"fjacquet/bankstmt/internal/logging"
	"fjacquet/bankstmt/internal/models"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// StatusTotals aggregates entries of one status.
type StatusTotals struct {
	Status       models.SuspenseStatus `json:"status" yaml:"status"`
	Count        int                   `json:"count" yaml:"count"`
	TotalBalance decimal.Decimal       `json:"total_balance" yaml:"total_balance"`
}

// ClientTotals aggregates open entries of one client.
type ClientTotals struct {
	Client       string          `json:"client" yaml:"client"`
	Count        int             `json:"count" yaml:"count"`
	TotalBalance decimal.Decimal `json:"total_balance" yaml:"total_balance"`
}

// SuspenseReport is the ledger snapshot written by GenerateReport.
type SuspenseReport struct {
	GeneratedAt time.Time               `json:"generated_at" yaml:"generated_at"`
	GeneratedBy string                  `json:"generated_by" yaml:"generated_by"`
	Totals      models.SuspenseTotals   `json:"totals" yaml:"totals"`
	ByStatus    []StatusTotals          `json:"by_status" yaml:"by_status"`
	ByClient    []ClientTotals          `json:"by_client" yaml:"by_client"`
	Entries     []*models.SuspenseEntry `json:"entries,omitempty" yaml:"entries,omitempty"`
}

var statusOrder = []models.SuspenseStatus{
	models.SuspenseActive,
	models.SuspensePending,
	models.SuspenseDisputed,
	models.SuspenseCleared,
}

// ReportGenerator builds and serializes suspense reports.
type ReportGenerator struct {
	logger logging.Logger
}

// NewReportGenerator creates a new instance of ReportGenerator.
func NewReportGenerator(logger logging.Logger) *ReportGenerator {
	return &ReportGenerator{
		logger: logging.OrDefault(logger).WithField(logging.FieldComponent, "ReportGenerator"),
	}
}

// Build aggregates entries by status and by client. Client totals cover
// entries with a positive balance, largest balance first.
func (g *ReportGenerator) Build(entries []*models.SuspenseEntry, by models.Identity, now time.Time, includeEntries bool) *SuspenseReport {
	r := &SuspenseReport{
		GeneratedAt: now.UTC(),
		GeneratedBy: by.Name(),
		Totals:      models.SuspenseTotals{TotalBalance: decimal.Zero},
	}

	status := make(map[models.SuspenseStatus]*StatusTotals, len(statusOrder))
	for _, s := range statusOrder {
		status[s] = &StatusTotals{Status: s, TotalBalance: decimal.Zero}
	}
	clients := make(map[string]*ClientTotals)

	for _, e := range entries {
		r.Totals.Count++
		r.Totals.TotalBalance = r.Totals.TotalBalance.Add(e.BalanceAmount)
		if e.IsCleared() {
			r.Totals.ClearedCount++
		}

		st, ok := status[e.Status]
		if !ok {
			st = &StatusTotals{Status: e.Status, TotalBalance: decimal.Zero}
			status[e.Status] = st
		}
		st.Count++
		st.TotalBalance = st.TotalBalance.Add(e.BalanceAmount)

		if e.BalanceAmount.IsPositive() {
			key := strings.ToLower(e.Client())
			ct, ok := clients[key]
			if !ok {
				ct = &ClientTotals{Client: e.Client(), TotalBalance: decimal.Zero}
				clients[key] = ct
			}
			ct.Count++
			ct.TotalBalance = ct.TotalBalance.Add(e.BalanceAmount)
		}
	}

	for _, s := range statusOrder {
		r.ByStatus = append(r.ByStatus, *status[s])
		delete(status, s)
	}
	for _, st := range status {
		r.ByStatus = append(r.ByStatus, *st)
	}

	for _, ct := range clients {
		r.ByClient = append(r.ByClient, *ct)
	}
	sort.Slice(r.ByClient, func(i, j int) bool {
		if c := r.ByClient[i].TotalBalance.Cmp(r.ByClient[j].TotalBalance); c != 0 {
			return c > 0
		}
		return r.ByClient[i].Client < r.ByClient[j].Client
	})

	if includeEntries {
		r.Entries = entries
	}
	return r
}

// GenerateReport serializes the report in the specified format (json or yaml).
func (g *ReportGenerator) GenerateReport(report *SuspenseReport, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "json":
		return g.generateJSONReport(report)
	case "yaml", "yml":
		return g.generateYAMLReport(report)
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

func (g *ReportGenerator) generateJSONReport(report *SuspenseReport) ([]byte, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal JSON report")
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return data, nil
}

func (g *ReportGenerator) generateYAMLReport(report *SuspenseReport) ([]byte, error) {
	data, err := yaml.Marshal(report)
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal YAML report")
		return nil, fmt.Errorf("failed to marshal YAML report: %w", err)
	}
	return data, nil
}
