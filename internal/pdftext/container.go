// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/soyoung-yu/paper-site/internal/container"
)

// pdftotextArgs makes pdftotext read the PDF from stdin and write UTF-8
// text to stdout. Pages end with a form feed.
var pdftotextArgs = []string{"-enc", "UTF-8", "-", "-"}

// ContainerExtractor pipes PDFs through pdftotext running in a container.
type ContainerExtractor struct {
	runtime container.Runtime
	image   string
}

// NewContainerExtractor checks that image exists in rt before returning.
func NewContainerExtractor(ctx context.Context, rt container.Runtime, image string) (*ContainerExtractor, error) {
	if err := rt.ImageExists(ctx, image); err != nil {
		return nil, fmt.Errorf("pdftotext image not available in %s: %w", rt.Name(), err)
	}
	return &ContainerExtractor{runtime: rt, image: image}, nil
}

// Extract streams the file into the container and returns its stdout.
func (c *ContainerExtractor) Extract(ctx context.Context, path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	var out bytes.Buffer
	spec := container.RunSpec{Image: c.image, Args: pdftotextArgs}
	if err := c.runtime.Run(ctx, spec, f, &out); err != nil {
		return Document{}, fmt.Errorf("extracting %s with pdftotext: %w", path, err)
	}

	text := strings.TrimRight(out.String(), "\f\n")
	if strings.TrimSpace(strings.ReplaceAll(text, "\f", "")) == "" {
		return Document{}, fmt.Errorf("%s: %w", path, ErrEmptyText)
	}

	pages, err := PageCount(path)
	if err != nil {
		pages = strings.Count(text, "\f") + 1
	}
	return Document{Text: strings.ReplaceAll(text, "\f", PageBreak), Pages: pages}, nil
}
