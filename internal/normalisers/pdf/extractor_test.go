package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/papermentor/internal/core/domain"
	"github.com/custodia-labs/papermentor/internal/core/ports/driven"
)

// mockRunner is a test double for CommandRunner.
// Outputs are keyed by tool name, and pdftotext by the -f page argument.
type mockRunner struct {
	info     []byte
	infoErr  error
	pages    map[string]string
	pageErrs map[string]error
	calls    []string
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.calls = append(m.calls, name+" "+strings.Join(args, " "))
	if name == "pdfinfo" {
		return m.info, m.infoErr
	}
	page := ""
	for i, a := range args {
		if a == "-f" && i+1 < len(args) {
			page = args[i+1]
		}
	}
	if err := m.pageErrs[page]; err != nil {
		return nil, err
	}
	return []byte(m.pages[page]), nil
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.PageExtractor = (*Extractor)(nil)
}

func TestNewWithRunner(t *testing.T) {
	runner := &mockRunner{}
	extractor := NewWithRunner(runner)
	require.NotNil(t, extractor)
	assert.Equal(t, runner, extractor.runner)
}

func TestExtractPages(t *testing.T) {
	runner := &mockRunner{
		info: []byte("Title:          Attention\nPages:          2\nEncrypted:      no\n"),
		pages: map[string]string{
			"1": "  Attention Is All You Need  \n\n   Abstract\n\f",
			"2": "Results\n\n\nBLEU 28.4\n",
		},
	}

	pages, err := NewWithRunner(runner).ExtractPages(context.Background(), "/tmp/a.pdf")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Attention Is All You Need\nAbstract",
		"Results\nBLEU 28.4",
	}, pages)
	assert.Contains(t, runner.calls, "pdftotext -q -enc UTF-8 -f 2 -l 2 /tmp/a.pdf -")
}

func TestExtractPages_PageFailureIsEmpty(t *testing.T) {
	runner := &mockRunner{
		info:     []byte("Pages: 3\n"),
		pages:    map[string]string{"1": "one", "3": "three"},
		pageErrs: map[string]error{"2": errors.New("bad xref")},
	}

	pages, err := NewWithRunner(runner).ExtractPages(context.Background(), "a.pdf")
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "", "three"}, pages)
}

func TestExtractPages_Errors(t *testing.T) {
	tests := []struct {
		name    string
		runner  *mockRunner
		wantErr error
	}{
		{
			name:    "password required",
			runner:  &mockRunner{infoErr: errors.New("pdfinfo failed: exit status 1: Command Line Error: Incorrect password")},
			wantErr: domain.ErrDecryption,
		},
		{
			name:    "corrupt file",
			runner:  &mockRunner{infoErr: errors.New("pdfinfo failed: exit status 1: Syntax Error: Couldn't find trailer dictionary")},
			wantErr: domain.ErrUnreadablePDF,
		},
		{
			name:    "no page count",
			runner:  &mockRunner{info: []byte("Title: x\n")},
			wantErr: domain.ErrUnreadablePDF,
		},
		{
			name:    "bad page count",
			runner:  &mockRunner{info: []byte("Pages: many\n")},
			wantErr: domain.ErrUnreadablePDF,
		},
		{
			name:    "tool missing",
			runner:  &mockRunner{infoErr: ErrPDFToolNotFound},
			wantErr: ErrPDFToolNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pages, err := NewWithRunner(tc.runner).ExtractPages(context.Background(), "a.pdf")
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Nil(t, pages)
		})
	}
}

func TestExtractPages_ZeroPages(t *testing.T) {
	pages, err := NewWithRunner(&mockRunner{info: []byte("Pages: 0\n")}).
		ExtractPages(context.Background(), "a.pdf")
	require.NoError(t, err)
	assert.Empty(t, pages)
}

func TestExtractPages_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewWithRunner(&mockRunner{info: []byte("Pages: 1\n")}).ExtractPages(ctx, "a.pdf")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNormalisePage(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "whitespace only", in: "  \n\t\n", want: ""},
		{name: "trims lines", in: "  a  \n b", want: "a\nb"},
		{name: "drops blank lines", in: "a\n\n\nb", want: "a\nb"},
		{name: "form feed", in: "a\n\f", want: "a"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalisePage(tc.in))
		})
	}
}

func TestInstallInstructions(t *testing.T) {
	instructions := InstallInstructions()
	assert.Contains(t, instructions, "pdftotext")
	assert.Contains(t, instructions, "brew install poppler")
	assert.Contains(t, instructions, "apt install poppler-utils")
}

func TestErrPDFToolNotFound(t *testing.T) {
	assert.Contains(t, ErrPDFToolNotFound.Error(), "pdftotext")
	assert.ErrorIs(t, ErrPDFToolNotFound, domain.ErrExtractorUnavailable)
}

func TestExtractPages_ToolMissingIsNotUnreadable(t *testing.T) {
	runner := &mockRunner{infoErr: fmt.Errorf("%w (%s)", ErrPDFToolNotFound, "pdfinfo")}

	_, err := NewWithRunner(runner).ExtractPages(context.Background(), "a.pdf")

	assert.ErrorIs(t, err, domain.ErrExtractorUnavailable)
	assert.NotErrorIs(t, err, domain.ErrUnreadablePDF)
}

// Integration test - only runs if poppler is available and a sample is provided.
func TestExtractPages_Integration(t *testing.T) {
	if err := CheckAvailable(); err != nil {
		t.Skip("poppler not available, skipping integration test")
	}
	sample := os.Getenv("PAPERMENTOR_SAMPLE_PDF")
	if sample == "" {
		t.Skip("PAPERMENTOR_SAMPLE_PDF not set")
	}

	pages, err := New().ExtractPages(context.Background(), filepath.Clean(sample))
	require.NoError(t, err)
	assert.NotEmpty(t, pages)
}

func TestExtractPages_MissingFile(t *testing.T) {
	if err := CheckAvailable(); err != nil {
		t.Skip("poppler not available")
	}

	_, err := New().ExtractPages(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorIs(t, err, domain.ErrUnreadablePDF)
}
