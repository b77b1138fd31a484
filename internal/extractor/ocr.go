package extractor

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// OCRAvailable reports whether the external OCR tools are installed:
// pdftoppm from poppler-utils and tesseract.
func OCRAvailable() bool {
	if _, err := exec.LookPath("pdftoppm"); err != nil {
		return false
	}
	if _, err := exec.LookPath("tesseract"); err != nil {
		return false
	}
	return true
}

// ExtractPagesOCR rasterizes the document and runs Tesseract on each
// page. It is the path of last resort for scanned statements with no
// text layer, and is only attempted when the caller opts in.
func ExtractPagesOCR(data []byte, progress ProgressFunc) ([]string, error) {
	if !OCRAvailable() {
		return nil, fmt.Errorf("ocr requires pdftoppm (poppler-utils) and tesseract")
	}

	path, cleanup, err := writeTempPDF(data)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	tmpDir, err := os.MkdirTemp("", "statement-ocr-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	// 300 DPI gives tesseract enough resolution for statement tables.
	prefix := filepath.Join(tmpDir, "page")
	if out, err := exec.Command("pdftoppm", "-r", "300", "-png", path, prefix).CombinedOutput(); err != nil {
		return nil, fmt.Errorf("pdftoppm: %v: %s", err, out)
	}

	images, err := filepath.Glob(prefix + "*.png")
	if err != nil || len(images) == 0 {
		return nil, fmt.Errorf("pdftoppm produced no page images")
	}
	sort.Strings(images)

	var pages []string
	for i, img := range images {
		progress.report(i+1, len(images))
		// PSM 4 treats the page as a single column of variable-size
		// text, which suits statement layouts.
		base := strings.TrimSuffix(img, ".png")
		if out, err := exec.Command("tesseract", img, base, "-l", "eng", "--psm", "4").CombinedOutput(); err != nil {
			slog.Warn("tesseract failed for page", "image", filepath.Base(img), "error", err, "output", string(out))
			continue
		}
		text, err := os.ReadFile(base + ".txt")
		if err != nil {
			continue
		}
		if page := strings.TrimSpace(string(text)); page != "" {
			pages = append(pages, page)
		}
	}
	progress.report(len(images), len(images))

	if len(pages) == 0 {
		return nil, fmt.Errorf("ocr produced no text from %d page images", len(images))
	}
	return pages, nil
}
