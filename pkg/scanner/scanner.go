package scanner

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/xhad/pdfsift/internal/models"
	"github.com/xhad/pdfsift/pkg/transport"
)

type ScannerConfig struct {
	Timeout time.Duration
}

type Scanner struct {
	config ScannerConfig
	client *transport.Client
	log    *logrus.Logger
}

func NewWithConfig(config ScannerConfig, client *transport.Client, log *logrus.Logger) *Scanner {
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}

	return &Scanner{
		config: config,
		client: client,
		log:    log,
	}
}

// PDFLinks fetches one webpage and returns the absolute URL of every anchor
// whose lowercased path ends in .pdf. Each seed page is scanned exactly once;
// non-PDF links are never followed. Fetch or parse failures are logged and
// yield an empty set so one bad page cannot stop the run.
func (s *Scanner) PDFLinks(ctx context.Context, pageURL string) models.StringSet {
	links := models.NewStringSet()

	base, err := url.Parse(pageURL)
	if err != nil {
		s.log.WithError(err).WithField("url", pageURL).Warn("skipping unparseable page URL")
		return links
	}

	resp, err := s.client.Get(ctx, pageURL, s.config.Timeout)
	if err != nil {
		s.log.WithError(err).WithField("url", pageURL).Warn("page fetch failed")
		return links
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.log.WithFields(logrus.Fields{
			"url":    pageURL,
			"status": resp.StatusCode,
		}).Warn("page fetch returned non-200 status")
		return links
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		s.log.WithError(err).WithField("url", pageURL).Warn("page parse failed")
		return links
	}

	doc.Find("a[href]").Each(func(_ int, selection *goquery.Selection) {
		href, exists := selection.Attr("href")
		if !exists {
			return
		}

		absoluteURL, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			s.log.WithError(err).WithField("href", href).Debug("skipping unparseable href")
			return
		}

		// Make sure the URL is absolute
		if !absoluteURL.IsAbs() {
			absoluteURL = base.ResolveReference(absoluteURL)
		}

		if strings.HasSuffix(strings.ToLower(absoluteURL.Path), ".pdf") {
			links.Add(absoluteURL.String())
		}
	})

	s.log.WithFields(logrus.Fields{
		"url":   pageURL,
		"count": links.Len(),
	}).Info("page scan complete")

	return links
}
