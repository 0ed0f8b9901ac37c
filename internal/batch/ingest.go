package batch

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fjacquet/bankstmt/internal/grid"
	"fjacquet/bankstmt/internal/logging"
	"fjacquet/bankstmt/internal/models"
	"fjacquet/bankstmt/internal/statement"
)

// Ingester persists one statement.
type Ingester interface {
	Ingest(ctx context.Context, req statement.IngestRequest) (*models.Statement, error)
}

// FileResult is the outcome for one input file.
type FileResult struct {
	Path      string
	Statement *models.Statement
	Err       error
}

// FileIngester reads statement files and ingests them through the pool.
type FileIngester struct {
	ingester  Ingester
	pool      *Pool
	delimiter rune
	logger    logging.Logger
}

// NewFileIngester creates a FileIngester. delimiter applies to CSV input.
func NewFileIngester(ingester Ingester, pool *Pool, delimiter rune, logger logging.Logger) *FileIngester {
	if delimiter == 0 {
		delimiter = ','
	}
	return &FileIngester{
		ingester:  ingester,
		pool:      pool,
		delimiter: delimiter,
		logger:    logging.OrDefault(logger),
	}
}

// IngestFiles ingests every path and returns one result per path, in the
// order given. A failing file does not stop the others.
func (f *FileIngester) IngestFiles(ctx context.Context, paths []string, uploader models.Identity, tags []string) []FileResult {
	start := time.Now()
	results := Process(ctx, f.pool, paths, func(ctx context.Context, path string) FileResult {
		st, err := f.ingestFile(ctx, path, uploader, tags)
		return FileResult{Path: path, Statement: st, Err: err}
	})

	for i := range results {
		if results[i].Path == "" {
			results[i] = FileResult{Path: paths[i], Err: ctx.Err()}
		}
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	f.logger.Info("Batch ingestion finished",
		logging.F("files", len(paths)),
		logging.F("failed", failed),
		logging.F(logging.FieldWorkers, f.pool.Workers()),
		logging.F(logging.FieldDuration, time.Since(start).Milliseconds()))
	return results
}

func (f *FileIngester) ingestFile(ctx context.Context, path string, uploader models.Identity, tags []string) (*models.Statement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g, err := grid.ReadFile(path, f.delimiter)
	if err != nil {
		f.logger.WithError(err).Warn("Failed to read statement file", logging.F(logging.FieldFile, path))
		return nil, err
	}

	return f.ingester.Ingest(ctx, statement.IngestRequest{
		Grid:         g,
		Uploader:     uploader,
		FileName:     filepath.Base(path),
		FileMetadata: fileMetadata(path),
		Tags:         tags,
	})
}

func fileMetadata(path string) map[string]string {
	meta := map[string]string{
		"source_path": path,
		"format":      strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
	}
	if info, err := os.Stat(path); err == nil {
		meta["size_bytes"] = strconv.FormatInt(info.Size(), 10)
		meta["modified_at"] = info.ModTime().UTC().Format(time.RFC3339)
	}
	return meta
}
