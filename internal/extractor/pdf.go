// Package extractor pulls page-ordered text out of PDF statements.
//
// Statement PDFs come in wildly different encodings. The structured
// library handles most text-layer documents, but CIDFont/Type0 fonts and
// nonstandard encodings defeat it, so extraction runs as a chain: the
// ledongthuc/pdf library first, then raw content-stream parsing, then the
// external pdftotext tool. Every stage is gated by a readability check so
// garbage never reaches the transaction parser.
package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// ProgressFunc receives best-effort page progress while a document is
// being extracted. Implementations must tolerate repeated or out-of-order
// calls; fallback stages may rescan pages.
type ProgressFunc func(page, total int)

func (f ProgressFunc) report(page, total int) {
	if f != nil {
		f(page, total)
	}
}

// Points of horizontal whitespace between text runs that we treat as a
// column boundary rather than a word gap.
const columnGapPoints = 12.0

// ErrNoTextLayer reports a document from which no stage could recover
// readable text. Scanned statements without OCR end up here.
var ErrNoTextLayer = errors.New("no readable text layer in document")

// ExtractPages returns the text of each page in page order. It never
// returns unreadable output: if every extraction stage produces garbage,
// the error explains that the document likely needs OCR.
func ExtractPages(data []byte, progress ProgressFunc) ([]string, error) {
	pages, libErr := extractWithLibrary(data, progress)
	if libErr == nil && Readable(pages) {
		return pages, nil
	}
	slog.Debug("pdf library extraction unusable, trying raw streams", "error", libErr)

	if raw := extractRawText(data); Readable(raw) {
		return raw, nil
	}
	slog.Debug("raw stream extraction unusable, trying pdftotext")

	if popplerPages, err := extractPdftotext(data, progress); err == nil && Readable(popplerPages) {
		return popplerPages, nil
	}

	if libErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoTextLayer, libErr)
	}
	return nil, ErrNoTextLayer
}

// extractWithLibrary walks the ledongthuc/pdf access paths from the most
// layout-faithful to the crudest, stopping at the first readable result.
// The library panics on some malformed cross-reference tables, hence the
// recover.
func extractWithLibrary(data []byte, progress ProgressFunc) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("pdf library panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	total := reader.NumPage()
	if total == 0 {
		return nil, errors.New("document has no pages")
	}

	pages = pagesByRow(reader, total, progress)
	if Readable(pages) {
		return pages, nil
	}

	pages = pagesByLayout(reader, total)
	if Readable(pages) {
		return pages, nil
	}

	pages = pagesByFont(reader, total)
	if Readable(pages) {
		return pages, nil
	}

	if text := documentText(reader); Readable([]string{text}) {
		return []string{text}, nil
	}

	return pages, nil
}

// pagesByRow uses GetTextByRow, which preserves row structure well. Runs
// within a row are joined with a single space, or a double space when the
// horizontal gap between them is wide enough to be a column boundary. The
// line parser downstream splits columns on runs of two or more spaces, so
// that distinction is what keeps dates, descriptions and amounts apart.
func pagesByRow(r *pdf.Reader, total int, progress ProgressFunc) []string {
	var pages []string
	for i := 1; i <= total; i++ {
		progress.report(i, total)
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}

		var lines []string
		for _, row := range rows {
			var b strings.Builder
			var prevEnd float64
			for j, run := range row.Content {
				if j > 0 {
					if run.X-prevEnd > columnGapPoints {
						b.WriteString("  ")
					} else {
						b.WriteString(" ")
					}
				}
				b.WriteString(run.S)
				prevEnd = run.X + run.W
			}
			if line := strings.TrimSpace(b.String()); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	progress.report(total, total)
	return pages
}

// pagesByLayout reconstructs rows from raw positioned text runs: group by
// rounded Y, order rows top to bottom (PDF Y grows upward), order runs
// left to right, and widen large X jumps into column separators.
func pagesByLayout(r *pdf.Reader, total int) []string {
	type run struct {
		x float64
		s string
	}

	var pages []string
	for i := 1; i <= total; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()
		if len(content.Text) == 0 {
			continue
		}

		rows := make(map[int][]run)
		for _, t := range content.Text {
			if strings.TrimSpace(t.S) == "" {
				continue
			}
			y := int(math.Round(t.Y))
			rows[y] = append(rows[y], run{x: t.X, s: t.S})
		}

		ys := make([]int, 0, len(rows))
		for y := range rows {
			ys = append(ys, y)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(ys)))

		var lines []string
		for _, y := range ys {
			runs := rows[y]
			sort.Slice(runs, func(a, b int) bool { return runs[a].x < runs[b].x })

			var b strings.Builder
			var prevX float64
			for j, rn := range runs {
				if j > 0 && rn.x-prevX > 15 {
					b.WriteString("  ")
				}
				b.WriteString(rn.s)
				prevX = rn.x
			}
			if line := strings.TrimSpace(b.String()); line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

// pagesByFont extracts through each page's font tables, which resolves
// some encodings the row path cannot.
func pagesByFont(r *pdf.Reader, total int) []string {
	var pages []string
	for i := 1; i <= total; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		fonts := make(map[string]*pdf.Font)
		for _, name := range page.Fonts() {
			f := page.Font(name)
			fonts[name] = &f
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}
	return pages
}

// documentText drains the reader's whole-document plain text path. Page
// boundaries are lost, so it is the last library resort.
func documentText(r *pdf.Reader) string {
	reader, err := r.GetPlainText()
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// extractPdftotext shells out to poppler-utils. The document is written
// to a temp file because the tool only reads paths. Pages are extracted
// one at a time to keep page boundaries.
func extractPdftotext(data []byte, progress ProgressFunc) ([]string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return nil, fmt.Errorf("pdftotext not available: %w", err)
	}

	path, cleanup, err := writeTempPDF(data)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	total := pageCount(path)
	var pages []string
	for i := 1; i <= total; i++ {
		progress.report(i, total)
		n := strconv.Itoa(i)
		out, err := exec.Command("pdftotext", "-layout", "-f", n, "-l", n, path, "-").Output()
		if err != nil {
			continue
		}
		if text := strings.TrimSpace(string(out)); text != "" {
			pages = append(pages, text)
		}
	}
	progress.report(total, total)

	if len(pages) == 0 {
		out, err := exec.Command("pdftotext", "-layout", path, "-").Output()
		if err != nil {
			return nil, fmt.Errorf("pdftotext: %w", err)
		}
		text := strings.TrimSpace(string(out))
		if text == "" {
			return nil, errors.New("pdftotext produced no output")
		}
		pages = []string{text}
	}
	return pages, nil
}

// writeTempPDF persists in-memory document bytes for external tools.
func writeTempPDF(data []byte) (path string, cleanup func(), err error) {
	f, err := os.CreateTemp("", "statement-*.pdf")
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}
	path = f.Name()
	cleanup = func() { os.Remove(path) }
	if _, err := f.Write(data); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("writing temp file: %w", err)
	}
	return path, cleanup, nil
}

// pageCount asks pdfinfo how many pages the file has, defaulting to 1.
func pageCount(path string) int {
	out, err := exec.Command("pdfinfo", path).Output()
	if err != nil {
		return 1
	}
	for _, line := range strings.Split(string(out), "\n") {
		if rest, ok := strings.CutPrefix(line, "Pages:"); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(rest)); err == nil && n > 0 {
				return n
			}
		}
	}
	return 1
}

// Words that show up in essentially every card or bank statement. Output
// containing none of them is treated as garbage regardless of how clean
// the characters look.
var statementWords = []string{
	"statement", "account", "balance", "date", "payment", "transaction",
	"total", "amount", "credit", "debit", "card", "purchase", "posted",
	"due", "interest", "opening", "closing", "transfer", "page", "period",
}

// Readable reports whether extracted pages look like genuine statement
// text: enough of it, mostly clean ASCII, and containing at least one
// word a statement would use. Identity-encoded fonts decode into strings
// that pass a naive printability test, which is why the character check
// is strict ASCII rather than unicode.IsPrint.
func Readable(pages []string) bool {
	if textLength(pages) <= 50 {
		return false
	}
	if textQuality(pages) <= 0.6 {
		return false
	}
	combined := strings.ToLower(strings.Join(pages, " "))
	for _, w := range statementWords {
		if strings.Contains(combined, w) {
			return true
		}
	}
	return false
}

// textQuality returns the fraction of characters that are plain ASCII
// letters, digits, whitespace, or punctuation a statement would contain.
func textQuality(pages []string) float64 {
	total, clean := 0, 0
	for _, page := range pages {
		for _, r := range page {
			total++
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
				clean++
			case unicode.IsSpace(r):
				clean++
			case strings.ContainsRune(`.,-/:;()'"%&@#!?+=*`, r):
				clean++
			case r == '$' || r == '£' || r == '€':
				clean++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(clean) / float64(total)
}

func textLength(pages []string) int {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p))
	}
	return n
}
