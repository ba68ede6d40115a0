package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/xhad/pdfsift/internal/models"
	"github.com/xhad/pdfsift/internal/types"
	"github.com/xhad/pdfsift/pkg/domains"
	"github.com/xhad/pdfsift/pkg/seeds"
)

type Config struct {
	Workers     int
	DownloadDir string // empty selects a fresh temp dir removed at run end
	OnProgress  func(done, total int)
}

type Pipeline struct {
	config    Config
	scanner   types.PageScanner
	fetcher   types.Fetcher
	extractor types.Extractor
	log       *logrus.Logger
}

func NewWithConfig(config Config, scanner types.PageScanner, fetcher types.Fetcher, extractor types.Extractor, log *logrus.Logger) *Pipeline {
	if config.Workers == 0 {
		config.Workers = 100
	}

	return &Pipeline{
		config:    config,
		scanner:   scanner,
		fetcher:   fetcher,
		extractor: extractor,
		log:       log,
	}
}

// Run turns seed URLs into the final report. Webpage seeds are scanned for
// PDF links first; the discovered URLs union with the direct PDF seeds into a
// deduplicated task set processed by a fixed pool of workers. Results funnel
// through the single aggregation loop below, the only writer of the report.
func (p *Pipeline) Run(ctx context.Context, seedURLs []string) (models.Report, error) {
	report := models.Report{}

	pdfSeeds, pageSeeds := seeds.Split(seedURLs)

	tasks := models.NewStringSet(pdfSeeds...)
	tasks.Union(p.scanPages(ctx, pageSeeds))

	if tasks.Len() == 0 {
		p.log.Warn("no PDF links discovered from the given seeds")
		return report, nil
	}

	dir, ephemeral, err := p.workingDir()
	if err != nil {
		return report, err
	}
	if ephemeral {
		defer p.removeWorkingDir(dir)
	}

	taskURLs := tasks.Sorted()
	total := len(taskURLs)

	p.log.WithFields(logrus.Fields{
		"tasks": total,
		"dir":   dir,
	}).Info("processing PDF links")

	workers := p.config.Workers
	if workers > total {
		workers = total
	}

	taskCh := make(chan string)
	results := make(chan models.TaskResult)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for pdfURL := range taskCh {
				results <- p.processOne(ctx, pdfURL, dir, ephemeral)
			}
		}()
	}

	go func() {
		for _, pdfURL := range taskURLs {
			taskCh <- pdfURL
		}
		close(taskCh)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	done := 0
	for res := range results {
		report.Merge(res)
		done++
		if p.config.OnProgress != nil {
			p.config.OnProgress(done, total)
		}
	}

	return report, nil
}

// scanPages fans the webpage seeds out through the scanner, bounded by the
// worker count, and unions the discovered PDF links. Scan failures surface
// as empty sets, so the group never aborts early.
func (p *Pipeline) scanPages(ctx context.Context, pageSeeds []string) models.StringSet {
	found := models.NewStringSet()
	if len(pageSeeds) == 0 {
		return found
	}

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.Workers)

	for _, pageURL := range pageSeeds {
		pageURL := pageURL
		g.Go(func() error {
			links := p.scanner.PDFLinks(ctx, pageURL)

			mu.Lock()
			found.Union(links)
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()

	return found
}

// processOne runs one task unit: download, extract, resolve domains, and in
// ephemeral mode delete the artifact. Failures degrade the unit to an empty
// contribution under its derived filename; a panic anywhere inside is
// recovered here so a faulty document never takes down sibling tasks.
func (p *Pipeline) processOne(ctx context.Context, pdfURL, dir string, ephemeral bool) (res models.TaskResult) {
	res = models.TaskResult{
		Filename: p.fetcher.FilenameForURL(pdfURL),
		Domains:  models.NewStringSet(),
		State:    models.StatePending,
	}

	defer func() {
		if rec := recover(); rec != nil {
			p.log.WithFields(logrus.Fields{
				"url":   pdfURL,
				"state": res.State,
				"panic": rec,
			}).Error("task failed unexpectedly")
			res.State = models.StateFaulted
			res.Domains = models.NewStringSet()
		}
	}()

	log := p.log.WithField("url", pdfURL)

	res.State = models.StateDownloading
	path, err := p.fetcher.Fetch(ctx, pdfURL, dir)
	if err != nil {
		log.WithError(err).Warn("download failed")
		res.State = models.StateDownloadFailed
		return res
	}
	res.Filename = filepath.Base(path)
	res.State = models.StateDownloaded

	res.State = models.StateExtracting
	links := p.extractor.Extract(path)
	res.State = models.StateExtracted

	res.Domains = domains.FromLinks(links)

	if ephemeral {
		res.State = models.StateDeletingArtifact
		if err := os.Remove(path); err != nil {
			log.WithError(err).Warn("artifact delete failed")
		}
	}

	res.State = models.StateDone
	return res
}

func (p *Pipeline) workingDir() (string, bool, error) {
	if p.config.DownloadDir != "" {
		if err := os.MkdirAll(p.config.DownloadDir, 0o755); err != nil {
			return "", false, fmt.Errorf("creating download dir %s: %v", p.config.DownloadDir, err)
		}
		return p.config.DownloadDir, false, nil
	}

	dir, err := os.MkdirTemp("", "pdfsift_")
	if err != nil {
		return "", false, fmt.Errorf("creating temp dir: %v", err)
	}
	p.log.WithField("dir", dir).Debug("using ephemeral working directory")
	return dir, true, nil
}

func (p *Pipeline) removeWorkingDir(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		p.log.WithError(err).WithField("dir", dir).Warn("failed to remove working directory")
	}
}
