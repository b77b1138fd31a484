package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cardwise/statement-ingest/internal/api"
	"github.com/cardwise/statement-ingest/internal/common"
	"github.com/cardwise/statement-ingest/internal/extractor"
	"github.com/cardwise/statement-ingest/internal/models"
	"github.com/cardwise/statement-ingest/internal/pipeline"
	"github.com/cardwise/statement-ingest/internal/storage"
	"github.com/cardwise/statement-ingest/internal/writer"
)

func parseCmd() *cobra.Command {
	var (
		format   string
		output   string
		cacheKey string
	)

	cmd := &cobra.Command{
		Use:   "parse <statement>",
		Short: "Parse a statement file into normalized transactions",
		Long: `Parse reads a statement export (.csv, .pdf, .ofx or .qfx) and writes the
normalized result to stdout or to a file. Status lines go to stderr so the
output stays pipeable.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runParse(args[0], format, output, cacheKey)
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "output format (json, csv)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write output to a file instead of stdout")
	cmd.Flags().Float64("apr", 0, "annual percentage rate for the interest projection")
	cmd.Flags().StringVar(&cacheKey, "cache", "", "store the JSON result in the cache under this key")
	cmd.Flags().Bool("ocr", false, "rasterize and OCR PDFs that have no text layer (needs pdftoppm and tesseract)")
	_ = viper.BindPFlag("apr", cmd.Flags().Lookup("apr"))
	_ = viper.BindPFlag("ocr.enabled", cmd.Flags().Lookup("ocr"))

	return cmd
}

func runParse(filename, format, output, cacheKey string) error {
	if format != "json" && format != "csv" {
		return fmt.Errorf("unknown output format %q (want json or csv)", format)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filename, err)
	}

	opts := pipeline.Options{
		APR:       viper.GetFloat64("apr"),
		EnableOCR: viper.GetBool("ocr.enabled"),
	}
	if strings.EqualFold(filepath.Ext(filename), ".pdf") && isatty.IsTerminal(os.Stderr.Fd()) {
		opts.Progress = extractionProgress()
	}

	result, err := ingestFile(filename, data, opts)
	if err != nil {
		if !errors.Is(err, common.ErrNoTransactions) {
			slog.Debug("ingest failed", "file", filename, "error", err)
			return errors.New(common.UserMessage(err))
		}
		fmt.Fprintln(os.Stderr, color.YellowString("⚠ %s: no transactions found", filepath.Base(filename)))
	} else {
		fmt.Fprintln(os.Stderr, color.GreenString("✓ %s: %d transactions (%d rows skipped)",
			filepath.Base(filename), len(result.Transactions), result.Stats.SkippedRows))
	}

	payload, err := renderResult(result, format)
	if err != nil {
		return err
	}

	if output != "" {
		if err := os.WriteFile(output, payload, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", output, err)
		}
	} else {
		if _, err := os.Stdout.Write(payload); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}

	if cacheKey != "" {
		if err := cacheResult(cacheKey, result); err != nil {
			return err
		}
	}
	return nil
}

// ingestFile routes OFX exports to the dedicated importer and everything
// else through the regular dispatch.
func ingestFile(filename string, data []byte, opts pipeline.Options) (*models.Result, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".ofx", ".qfx":
		return pipeline.IngestOFX(data, opts)
	default:
		return pipeline.Ingest(filename, data, opts)
	}
}

func renderResult(result *models.Result, format string) ([]byte, error) {
	if format == "csv" {
		var buf bytes.Buffer
		w := writer.CSVWriter{IncludeHeader: true}
		if err := w.Write(&buf, result.Transactions); err != nil {
			return nil, fmt.Errorf("failed to render CSV: %w", err)
		}
		return buf.Bytes(), nil
	}

	payload, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render JSON: %w", err)
	}
	return append(payload, '\n'), nil
}

func cacheResult(key string, result *models.Result) error {
	blob, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result for cache: %w", err)
	}

	store, err := storage.OpenSQLite(viper.GetString("cache.path"))
	if err != nil {
		return fmt.Errorf("failed to open result cache: %w", err)
	}
	defer store.Close()

	if err := store.Set(key, blob); err != nil {
		return fmt.Errorf("failed to cache result: %w", err)
	}
	slog.Debug("cached result", "key", key, "bytes", len(blob))
	return nil
}

// extractionProgress renders a page-extraction bar on stderr. The bar is
// created on the first callback because the page count is not known until
// the document is open.
func extractionProgress() extractor.ProgressFunc {
	var bar *progressbar.ProgressBar
	return func(page, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("Extracting pages..."),
				progressbar.OptionOnCompletion(func() { fmt.Fprintln(os.Stderr) }),
			)
		}
		if int64(total) != bar.GetMax64() {
			bar.ChangeMax(total)
		}
		_ = bar.Set(page)
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP conversion API",
		Long: `Serve starts the HTTP API. POST a statement to /api/convert and fetch
cached results from /api/results/:id.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe()
		},
	}

	cmd.Flags().String("addr", ":8080", "listen address")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func runServe() error {
	var store storage.Store
	if path := viper.GetString("cache.path"); path != "" {
		s, err := storage.OpenSQLite(path)
		if err != nil {
			return fmt.Errorf("failed to open result cache: %w", err)
		}
		defer s.Close()
		store = s
	}

	addr := viper.GetString("server.addr")
	srv := api.New(store, viper.GetBool("ocr.enabled"))
	slog.Info("starting server", "addr", addr, "ocr", viper.GetBool("ocr.enabled"))
	return srv.Listen(addr)
}
