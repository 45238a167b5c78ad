// Package pdf extracts per-page text from PDF files using poppler-utils.
//
// pdfinfo reports the page count and whether a password is needed, then
// pdftotext is run once per page so a single broken page only loses
// that page.
package pdf

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/custodia-labs/papermentor/internal/core/domain"
	"github.com/custodia-labs/papermentor/internal/core/ports/driven"
	"github.com/custodia-labs/papermentor/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.PageExtractor = (*Extractor)(nil)

// ErrPDFToolNotFound indicates poppler-utils is not installed.
var ErrPDFToolNotFound = fmt.Errorf("%w: pdftotext not found: install poppler-utils", domain.ErrExtractorUnavailable)

// CommandRunner executes an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

// Run executes name and folds stderr into the error on failure.
func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, fmt.Errorf("%w (%s)", ErrPDFToolNotFound, name)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("%s failed: %w", name, err)
		}
		return nil, fmt.Errorf("%s failed: %w: %s", name, err, msg)
	}
	return stdout.Bytes(), nil
}

// Extractor implements driven.PageExtractor.
type Extractor struct {
	runner CommandRunner
}

// New creates an extractor that runs the real poppler tools.
func New() *Extractor {
	return &Extractor{runner: execRunner{}}
}

// NewWithRunner creates an extractor with a custom command runner.
func NewWithRunner(runner CommandRunner) *Extractor {
	return &Extractor{runner: runner}
}

// ExtractPages returns the normalised text of every page in order.
func (e *Extractor) ExtractPages(ctx context.Context, path string) ([]string, error) {
	info, err := e.runner.Run(ctx, "pdfinfo", path)
	if err != nil {
		if errors.Is(err, ErrPDFToolNotFound) {
			return nil, err
		}
		if isPasswordError(err) {
			return nil, fmt.Errorf("%w: %w", domain.ErrDecryption, err)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrUnreadablePDF, err)
	}

	count, err := pageCount(info)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnreadablePDF, err)
	}

	pages := make([]string, count)
	for i := 1; i <= count; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := strconv.Itoa(i)
		out, err := e.runner.Run(ctx, "pdftotext", "-q", "-enc", "UTF-8", "-f", page, "-l", page, path, "-")
		if err != nil {
			logger.Debug("page %d of %s unreadable: %v", i, path, err)
			continue
		}
		pages[i-1] = NormalisePage(string(out))
	}
	return pages, nil
}

// NormalisePage trims every line and drops the empty ones.
func NormalisePage(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.ReplaceAll(line, "\f", ""))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// pageCount reads the "Pages:" line of pdfinfo output.
func pageCount(info []byte) (int, error) {
	scanner := bufio.NewScanner(bytes.NewReader(info))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok || strings.TrimSpace(key) != "Pages" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid page count %q", strings.TrimSpace(value))
		}
		return n, nil
	}
	return 0, errors.New("pdfinfo reported no page count")
}

// isPasswordError reports whether poppler refused the file for lack of a password.
func isPasswordError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "password") || strings.Contains(msg, "encrypted")
}

// CheckAvailable reports whether the poppler tools are on PATH.
func CheckAvailable() error {
	for _, tool := range []string{"pdfinfo", "pdftotext"} {
		if _, err := exec.LookPath(tool); err != nil {
			return fmt.Errorf("%w (%s)", ErrPDFToolNotFound, tool)
		}
	}
	return nil
}

// InstallInstructions returns how to install the PDF tools per platform.
func InstallInstructions() string {
	return `PDF extraction requires pdftotext and pdfinfo from poppler-utils:
  macOS:         brew install poppler
  Debian/Ubuntu: apt install poppler-utils
  Fedora:        dnf install poppler-utils`
}
