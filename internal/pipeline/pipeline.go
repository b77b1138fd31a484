// Package pipeline turns uploaded statement files into normalized
// ingestion results: transactions, a spending summary and subscription
// candidates.
package pipeline

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/cardwise/statement-ingest/internal/analysis"
	"github.com/cardwise/statement-ingest/internal/classification"
	"github.com/cardwise/statement-ingest/internal/common"
	"github.com/cardwise/statement-ingest/internal/extractor"
	"github.com/cardwise/statement-ingest/internal/models"
	"github.com/cardwise/statement-ingest/internal/parser"
)

// Options carries per-invocation settings. The zero value is usable.
type Options struct {
	// Now anchors fallback dates for rows whose date cannot be parsed.
	// Zero means the wall clock at entry; tests pin it.
	Now time.Time

	// APR is an annual percentage rate. When positive, the result
	// includes a monthly interest projection on the statement balance.
	APR float64

	// Progress receives best-effort page progress during PDF
	// extraction.
	Progress extractor.ProgressFunc

	// EnableOCR permits the rasterize-and-tesseract fallback for
	// scanned documents. Off by default: OCR needs external tools and
	// its output is not reproducible across installations.
	EnableOCR bool
}

func (o Options) now() time.Time {
	if o.Now.IsZero() {
		return time.Now()
	}
	return o.Now
}

const exportHint = "Could not read this statement. Export your transactions as a CSV from your bank and upload that instead."

// Ingest converts statement file bytes into a Result. The path is chosen
// by the lower-cased filename extension: .csv takes the tabular path,
// .pdf the document-extraction path, and anything else fails with
// common.ErrUnsupportedFileType.
//
// A structurally valid file that yields zero transactions returns the
// valid empty result alongside an error wrapping
// common.ErrNoTransactions; callers downgrade that to a warning rather
// than discarding the result.
//
// Ingest is a pure function of its arguments (plus the wall clock when
// Options.Now is zero), so concurrent invocations are safe.
func Ingest(filename string, data []byte, opts Options) (*models.Result, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	slog.Debug("ingesting statement", "filename", filename, "ext", ext, "bytes", len(data))

	switch ext {
	case ".csv":
		return ingestCSV(data, opts)
	case ".pdf":
		return ingestPDF(data, opts)
	default:
		return nil, common.NewUserError(
			fmt.Sprintf("Unsupported file type %q. Upload a .csv or .pdf statement.", ext),
			fmt.Errorf("%w: %s", common.ErrUnsupportedFileType, filename),
		)
	}
}

// IngestOFX converts an OFX/QFX statement download. The CLI and HTTP
// surfaces route .ofx/.qfx files here before calling Ingest, which
// itself stays CSV/PDF-only.
func IngestOFX(data []byte, opts Options) (*models.Result, error) {
	txns, err := parser.ParseOFX(data)
	if err != nil {
		return nil, common.NewUserError(exportHint, err)
	}
	return buildResult(txns, models.Stats{ParsedRows: len(txns)}, opts)
}

func ingestCSV(data []byte, opts Options) (*models.Result, error) {
	txns, mapping, stats, err := parser.ParseCSV(string(data), opts.now())
	if err != nil {
		return nil, common.NewUserError(exportHint, err)
	}
	slog.Debug("csv parsed",
		"rows", stats.ParsedRows,
		"skipped", stats.SkippedRows,
		"debitCredit", mapping.HasDebitCredit())
	return buildResult(txns, stats, opts)
}

func ingestPDF(data []byte, opts Options) (*models.Result, error) {
	pages, err := extractor.ExtractPages(data, opts.Progress)
	if err != nil && opts.EnableOCR {
		slog.Info("text extraction failed, attempting ocr", "error", err)
		ocrPages, ocrErr := extractor.ExtractPagesOCR(data, opts.Progress)
		if ocrErr != nil {
			slog.Warn("ocr fallback failed", "error", ocrErr)
		} else {
			pages, err = ocrPages, nil
		}
	}
	if err != nil {
		return nil, common.NewUserError(exportHint, fmt.Errorf("%w: %v", common.ErrParseFailure, err))
	}

	txns, stats := parser.ParseDocumentText(pages, opts.now())
	slog.Debug("document parsed", "pages", stats.Pages, "rows", stats.ParsedRows, "skipped", stats.SkippedRows)
	return buildResult(txns, stats, opts)
}

// buildResult runs the shared tail of every path: categorize, summarize,
// detect subscriptions, project interest.
func buildResult(txns []models.Transaction, stats models.Stats, opts Options) (*models.Result, error) {
	if txns == nil {
		txns = []models.Transaction{}
	}

	classifier := classification.New()
	for i := range txns {
		txns[i].Category = classifier.Classify(txns[i].Description, txns[i].Category)
	}

	result := &models.Result{
		Transactions:  txns,
		Summary:       analysis.Summarize(txns),
		Subscriptions: analysis.DetectSubscriptions(txns),
		Stats:         stats,
	}
	if result.Subscriptions == nil {
		result.Subscriptions = []models.SubscriptionCandidate{}
	}
	if opts.APR > 0 {
		result.MonthlyInterest = analysis.MonthlyInterest(result.Summary.Balance, opts.APR)
	}

	if len(txns) == 0 {
		return result, fmt.Errorf("%w: statement parsed but contained no transaction rows", common.ErrNoTransactions)
	}
	return result, nil
}
