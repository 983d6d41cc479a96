// Package extraction converts uploaded PDF documents to plain text.
//
// Extraction is best-effort: a failure yields an empty string and a log line,
// never an error. Downstream stages treat empty text as "document absent".
package extraction

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"go.uber.org/zap"
)

// minViableChars is the threshold below which a primary extraction is treated
// as garbled or empty and the fallback strategy runs.
const minViableChars = 50

// Strategy is a single text extraction approach.
type Strategy func(path string) (string, error)

// Extractor extracts text from PDF files using a primary strategy with a
// fallback for garbled or empty results.
type Extractor struct {
	log      *zap.Logger
	primary  Strategy
	fallback Strategy
}

// New creates an Extractor with the default strategies: a pure-Go PDF reader
// first, pdftotext (poppler-utils) second.
func New(log *zap.Logger) *Extractor {
	return &Extractor{
		log:      log,
		primary:  extractPlainText,
		fallback: extractPdftotext,
	}
}

// NewWithStrategies creates an Extractor with explicit strategies.
func NewWithStrategies(log *zap.Logger, primary, fallback Strategy) *Extractor {
	return &Extractor{log: log, primary: primary, fallback: fallback}
}

// Extract returns the text content of the PDF at path. It never returns an
// error: extraction failure yields "".
func (e *Extractor) Extract(path string) string {
	text, err := e.primary(path)
	if err != nil {
		e.log.Warn("primary text extraction failed",
			zap.String("path", path),
			zap.Error(err))
		text = ""
	}
	text = strings.TrimSpace(text)

	if len(text) >= minViableChars {
		return text
	}

	e.log.Info("primary extraction below viable threshold, trying fallback",
		zap.String("path", path),
		zap.Int("chars", len(text)))

	fallbackText, err := e.fallback(path)
	if err != nil {
		e.log.Warn("fallback text extraction failed",
			zap.String("path", path),
			zap.Error(err))
		return text
	}

	fallbackText = strings.TrimSpace(fallbackText)
	if len(fallbackText) > len(text) {
		return fallbackText
	}
	return text
}

// PageCount returns the number of pages in the PDF, or 0 if it cannot be
// determined.
func (e *Extractor) PageCount(path string) int {
	count, err := api.PageCountFile(path)
	if err != nil {
		e.log.Debug("page count unavailable",
			zap.String("path", path),
			zap.Error(err))
		return 0
	}
	return count
}

// extractPlainText reads the PDF text layer with a pure-Go reader.
func extractPlainText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read PDF text %s: %w", path, err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", fmt.Errorf("failed to buffer PDF text %s: %w", path, err)
	}
	return buf.String(), nil
}

// extractPdftotext shells out to pdftotext, which handles layouts the pure-Go
// reader cannot.
func extractPdftotext(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext failed for %s: %w", path, err)
	}
	return string(output), nil
}
