package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xhad/pdfsift/pkg/transport"
)

// FallbackFilename names downloads whose URL has no usable path segment.
const FallbackFilename = "temp.pdf"

type FetcherConfig struct {
	Timeout time.Duration
}

type Fetcher struct {
	config FetcherConfig
	client *transport.Client
	log    *logrus.Logger
}

func NewWithConfig(config FetcherConfig, client *transport.Client, log *logrus.Logger) *Fetcher {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return &Fetcher{
		config: config,
		client: client,
		log:    log,
	}
}

// FilenameForURL derives the on-disk name from the URL's final path segment.
func (f *Fetcher) FilenameForURL(pdfURL string) string {
	parsed, err := url.Parse(pdfURL)
	if err != nil {
		return FallbackFilename
	}

	name := path.Base(parsed.Path)
	if name == "" || name == "." || name == "/" {
		return FallbackFilename
	}
	return name
}

// Fetch downloads one PDF into dir, creating the directory if needed. An
// existing file with the derived name short-circuits without a network call:
// two URLs that collide on a filename share the first writer's bytes. The
// write is all-or-nothing; rename is atomic within the directory, so
// concurrent same-name writers never leave interleaved partial content.
func (f *Fetcher) Fetch(ctx context.Context, pdfURL, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating download dir %s: %w", dir, err)
	}

	name := f.FilenameForURL(pdfURL)
	target := filepath.Join(dir, name)

	if _, err := os.Stat(target); err == nil {
		f.log.WithField("file", target).Debug("file exists, skipping download")
		return target, nil
	}

	resp, err := f.client.Get(ctx, pdfURL, f.config.Timeout)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", pdfURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: status %d", pdfURL, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(dir, name+".partial-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file in %s: %w", dir, err)
	}

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("writing %s: %w", target, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("moving download into %s: %w", target, err)
	}

	f.log.WithFields(logrus.Fields{
		"url":  pdfURL,
		"file": target,
	}).Debug("downloaded")

	return target, nil
}
