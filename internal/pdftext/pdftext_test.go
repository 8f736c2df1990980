// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdftext

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyoung-yu/paper-site/internal/container"
	"github.com/soyoung-yu/paper-site/pkg/types"
)

// fakeRuntime implements container.Runtime with canned output.
type fakeRuntime struct {
	hasImage bool
	output   string
	err      error
	spec     container.RunSpec
}

func (f *fakeRuntime) Name() string                   { return "fake" }
func (f *fakeRuntime) Available(context.Context) bool { return true }

func (f *fakeRuntime) ImageExists(_ context.Context, image string) error {
	if !f.hasImage {
		return errors.New("no such image: " + image)
	}
	return nil
}

func (f *fakeRuntime) Run(_ context.Context, spec container.RunSpec, stdin io.Reader, stdout io.Writer) error {
	f.spec = spec
	if _, err := io.ReadAll(stdin); err != nil {
		return err
	}
	if f.err != nil {
		return f.err
	}
	_, err := io.WriteString(stdout, f.output)
	return err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestContainerExtractor(t *testing.T) {
	ctx := context.Background()
	pdfPath := writeFile(t, "paper.pdf", "not really a pdf")

	tests := []struct {
		name      string
		rt        *fakeRuntime
		wantText  string
		wantPages int
		wantErr   error
	}{
		{
			name:      "pages separated",
			rt:        &fakeRuntime{hasImage: true, output: "Title\nAuthors\f2nd page\f"},
			wantText:  "Title\nAuthors\n\f\n2nd page",
			wantPages: 2,
		},
		{
			name:    "empty output",
			rt:      &fakeRuntime{hasImage: true, output: "\f\f \n"},
			wantErr: ErrEmptyText,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex, err := NewContainerExtractor(ctx, tt.rt, "pdftotext:latest")
			require.NoError(t, err)

			doc, err := ex.Extract(ctx, pdfPath)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, doc.Text)
			assert.Equal(t, tt.wantPages, doc.Pages)
			assert.Equal(t, "pdftotext:latest", tt.rt.spec.Image)
			assert.Equal(t, pdftotextArgs, tt.rt.spec.Args)
		})
	}
}

func TestContainerExtractorErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewContainerExtractor(ctx, &fakeRuntime{}, "pdftotext:latest")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pdftotext image not available")

	ex, err := NewContainerExtractor(ctx, &fakeRuntime{hasImage: true, err: errors.New("exit status 1")}, "img")
	require.NoError(t, err)
	_, err = ex.Extract(ctx, writeFile(t, "a.pdf", "x"))
	assert.ErrorContains(t, err, "exit status 1")

	_, err = ex.Extract(ctx, filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestReaderExtractorFailures(t *testing.T) {
	ctx := context.Background()
	ex := NewReaderExtractor()

	_, err := ex.Extract(ctx, filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)

	_, err = ex.Extract(ctx, writeFile(t, "garbage.pdf", "this is not a PDF document"))
	assert.Error(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = ex.Extract(cancelled, writeFile(t, "x.pdf", "x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTextFiles(t *testing.T) {
	ctx := context.Background()
	var delegated string
	next := ExtractorFunc(func(_ context.Context, path string) (Document, error) {
		delegated = path
		return Document{Text: "from pdf", Pages: 1}, nil
	})
	ex := TextFiles(next)

	doc, err := ex.Extract(ctx, writeFile(t, "paper.TXT", "page one\fpage two"))
	require.NoError(t, err)
	assert.Equal(t, "page one\fpage two", doc.Text)
	assert.Equal(t, 2, doc.Pages)
	assert.Empty(t, delegated)

	pdfPath := writeFile(t, "paper.pdf", "%PDF")
	doc, err = ex.Extract(ctx, pdfPath)
	require.NoError(t, err)
	assert.Equal(t, "from pdf", doc.Text)
	assert.Equal(t, pdfPath, delegated)

	_, err = ex.Extract(ctx, writeFile(t, "blank.txt", " \n "))
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestNew(t *testing.T) {
	ex, err := New(context.Background(), types.IndexConfig{Backend: types.BackendReader})
	require.NoError(t, err)
	assert.IsType(t, &ReaderExtractor{}, ex)

	_, err = New(context.Background(), types.IndexConfig{Backend: "ocr"})
	assert.ErrorContains(t, err, "unknown extraction backend")
}

func TestPageCountMissingFile(t *testing.T) {
	_, err := PageCount(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
