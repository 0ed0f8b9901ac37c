// Package container provides dependency injection for the bankstmt application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"fjacquet/bankstmt/internal/batch"
	"fjacquet/bankstmt/internal/config"
	"fjacquet/bankstmt/internal/counterparty"
	"fjacquet/bankstmt/internal/export"
	"fjacquet/bankstmt/internal/logging"
	"fjacquet/bankstmt/internal/models"
	"fjacquet/bankstmt/internal/report"
	"fjacquet/bankstmt/internal/statement"
	"fjacquet/bankstmt/internal/statementparser"
	"fjacquet/bankstmt/internal/store"
	"fjacquet/bankstmt/internal/suspense"
)

// Container holds all application dependencies and provides methods to access them.
// Container is immutable after creation; dependencies are only reachable
// through getter methods.
type Container struct {
	logger   logging.Logger
	config   *config.Config
	store    *store.MemoryStore
	gemini   *counterparty.GeminiClient
	resolver *counterparty.Resolver

	statements *statement.Service
	suspense   *suspense.Service
	ingester   *batch.FileIngester
	aggregator *batch.Aggregator
	exporter   *export.Exporter
	reports    *report.ReportGenerator
}

// NewContainer creates and wires all application dependencies from cfg.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	return NewContainerWithLogger(cfg, logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format))
}

// NewContainerWithLogger wires the dependencies around an existing logger.
func NewContainerWithLogger(cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	logger = logging.OrDefault(logger)

	repo, err := store.Open(cfg.Storage.DataFile, cfg.Storage.AutoSave, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open data store: %w", err)
	}

	var gemini *counterparty.GeminiClient
	var aiClient counterparty.AIClient
	if cfg.AI.Enabled && cfg.AI.APIKey != "" {
		gemini, err = counterparty.NewGeminiClient(context.Background(), cfg.AI.APIKey, cfg.AI.Model,
			time.Duration(cfg.AI.TimeoutSeconds)*time.Second, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create AI client: %w", err)
		}
		aiClient = gemini
		logger.Info("AI counterparty resolution enabled", logging.F("model", cfg.AI.Model))
	} else {
		logger.Debug("AI counterparty resolution disabled")
	}
	resolver := counterparty.NewDefaultResolver(aiClient, logger)

	parser := statementparser.NewParser(statementparser.Options{
		MetadataScanRows:    cfg.Extraction.MetadataScanRows,
		HeaderScanRows:      cfg.Extraction.HeaderScanRows,
		SummaryWindowBefore: cfg.Extraction.SummaryWindowBefore,
		SummaryWindowAfter:  cfg.Extraction.SummaryWindowAfter,
		DefaultCurrency:     cfg.Extraction.DefaultCurrency,
	}, logger)
	statements := statement.NewService(repo, statement.NewAssembler(parser, logger), logger)

	ledger := suspense.NewService(repo, repo, resolver, suspense.Options{
		UnknownClient:      cfg.Suspense.UnknownClient,
		DefaultDescription: cfg.Suspense.DefaultDescription,
		ReferencePrefix:    cfg.Suspense.ReferencePrefix,
	}, logger)

	delimiter := Delimiter(cfg)
	ingester := batch.NewFileIngester(statements, batch.NewPool(cfg.Batch.Workers, logger), delimiter, logger)

	logger.Debug("Container initialized successfully",
		logging.F(logging.FieldFile, repo.DataFile()),
		logging.F(logging.FieldWorkers, cfg.Batch.Workers),
		logging.F("ai_enabled", aiClient != nil))

	return &Container{
		logger:     logger,
		config:     cfg,
		store:      repo,
		gemini:     gemini,
		resolver:   resolver,
		statements: statements,
		suspense:   ledger,
		ingester:   ingester,
		aggregator: batch.NewAggregator(logger),
		exporter:   export.NewExporter(delimiter, logger),
		reports:    report.NewReportGenerator(logger),
	}, nil
}

// Delimiter returns the configured CSV delimiter, comma by default.
func Delimiter(cfg *config.Config) rune {
	if cfg == nil || cfg.Extraction.CSVDelimiter == "" {
		return ','
	}
	r, _ := utf8.DecodeRuneInString(cfg.Extraction.CSVDelimiter)
	return r
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStore returns the repository shared by the services.
func (c *Container) GetStore() *store.MemoryStore {
	return c.store
}

// GetResolver returns the counterparty resolver.
func (c *Container) GetResolver() *counterparty.Resolver {
	return c.resolver
}

// GetStatementService returns the statement service.
func (c *Container) GetStatementService() *statement.Service {
	return c.statements
}

// GetSuspenseService returns the suspense ledger service.
func (c *Container) GetSuspenseService() *suspense.Service {
	return c.suspense
}

// GetFileIngester returns the batch file ingester.
func (c *Container) GetFileIngester() *batch.FileIngester {
	return c.ingester
}

// GetAggregator returns the account aggregator.
func (c *Container) GetAggregator() *batch.Aggregator {
	return c.aggregator
}

// GetExporter returns the CSV exporter.
func (c *Container) GetExporter() *export.Exporter {
	return c.exporter
}

// GetReportGenerator returns the report generator.
func (c *Container) GetReportGenerator() *report.ReportGenerator {
	return c.reports
}

// Operator returns the identity configured for CLI operations.
func (c *Container) Operator() models.Identity {
	return models.Identity{
		UserID:      c.config.Operator.ID,
		DisplayName: c.config.Operator.Name,
		Role:        c.config.Operator.Role,
	}
}

// Close flushes the data file and releases the AI client.
func (c *Container) Close() error {
	var firstErr error
	if err := c.store.Flush(); err != nil {
		firstErr = fmt.Errorf("failed to flush data store: %w", err)
	}
	if c.gemini != nil {
		if err := c.gemini.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close AI client: %w", err)
		}
	}
	c.logger.Debug("Container closed")
	return firstErr
}
