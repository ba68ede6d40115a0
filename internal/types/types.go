package types

import (
	"context"

	"github.com/xhad/pdfsift/internal/models"
)

// Core interfaces
type PageScanner interface {
	PDFLinks(ctx context.Context, pageURL string) models.StringSet
}

type Fetcher interface {
	Fetch(ctx context.Context, pdfURL, dir string) (string, error)
	FilenameForURL(pdfURL string) string
}

type Extractor interface {
	Extract(path string) models.StringSet
}
