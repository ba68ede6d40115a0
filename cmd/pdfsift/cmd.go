package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"github.com/xhad/pdfsift/pkg/extractor"
	"github.com/xhad/pdfsift/pkg/fetcher"
	"github.com/xhad/pdfsift/pkg/output"
	"github.com/xhad/pdfsift/pkg/pipeline"
	"github.com/xhad/pdfsift/pkg/scanner"
	"github.com/xhad/pdfsift/pkg/seeds"
	"github.com/xhad/pdfsift/pkg/transport"
)

func getProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription(color.BlueString(description)),
		progressbar.OptionSetItsString("pdfs"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func run(config Config) error {
	logger := logrus.New()
	if config.Debug {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}

	seedURLs := append([]string{}, config.URLs...)
	seedURLs = append(seedURLs, config.PDFURLs...)

	if config.InputList != "" {
		urls, err := seeds.LoadList(config.InputList)
		if err != nil {
			return fmt.Errorf("failed to read URL list: %v", err)
		}
		seedURLs = append(seedURLs, urls...)
	}

	if config.InputJSON != "" {
		urls, err := seeds.LoadJSON(config.InputJSON)
		if err != nil {
			return fmt.Errorf("failed to read URL json: %v", err)
		}
		seedURLs = append(seedURLs, urls...)
	}

	if len(seedURLs) == 0 {
		flag.Usage()
		return fmt.Errorf("no URLs given, use -url, -pdf-url, -input-list or -input-json")
	}

	client := transport.NewWithConfig(transport.ClientConfig{
		UserAgent:    config.App.HTTP.UserAgent,
		Headers:      config.App.HTTP.Headers,
		MaxRetries:   config.App.HTTP.MaxRetries,
		RetryBackoff: time.Duration(config.App.HTTP.RetryBackoffMillis) * time.Millisecond,
		RateLimit:    config.App.HTTP.RateLimit,
		PoolSize:     config.App.Pipeline.Workers,
	}, logger)

	pageScanner := scanner.NewWithConfig(scanner.ScannerConfig{
		Timeout: time.Duration(config.App.HTTP.PageTimeoutSeconds) * time.Second,
	}, client, logger)

	pdfFetcher := fetcher.NewWithConfig(fetcher.FetcherConfig{
		Timeout: time.Duration(config.App.HTTP.PDFTimeoutSeconds) * time.Second,
	}, client, logger)

	linkExtractor := extractor.New(logger)

	// The spinner covers the page-scan phase, whose length is unknown up
	// front; the first task result swaps it for a sized progress bar.
	var spinner *progressbar.ProgressBar
	spinnerDone := make(chan struct{})
	var spinnerOnce sync.Once
	stopSpinner := func() {
		spinnerOnce.Do(func() {
			close(spinnerDone)
			if spinner != nil {
				spinner.Finish()
				fmt.Print("\r")
			}
		})
	}

	var bar *progressbar.ProgressBar
	var onProgress func(done, total int)
	if !config.Debug {
		spinner = getSpinner(" Scanning for PDF links...")
		go func() {
			for {
				select {
				case <-spinnerDone:
					return
				case <-time.After(100 * time.Millisecond):
					spinner.Add(1)
				}
			}
		}()

		onProgress = func(done, total int) {
			stopSpinner()
			if bar == nil {
				bar = getProgressBar(total, " Extracting domains from PDFs...")
			}
			bar.Set(done)
		}
	}

	pipe := pipeline.NewWithConfig(pipeline.Config{
		Workers:     config.App.Pipeline.Workers,
		DownloadDir: config.App.Pipeline.DownloadDir,
		OnProgress:  onProgress,
	}, pageScanner, pdfFetcher, linkExtractor, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := pipe.Run(ctx, seedURLs)
	stopSpinner()
	if err != nil {
		return err
	}

	if bar != nil {
		bar.Finish()
		fmt.Print("\n")
	}

	color.Green("✓ Processed %d PDFs\n", len(report))

	rendered, err := output.Render(config.App.Output.Format, report)
	if err != nil {
		return err
	}

	if err := output.Write(rendered, config.App.Output.File); err != nil {
		return fmt.Errorf("failed to write output: %v", err)
	}

	if config.App.Output.File != "" {
		color.Green("✓ Report written to %s\n", config.App.Output.File)
	}

	return nil
}
