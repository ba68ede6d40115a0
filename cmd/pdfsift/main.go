package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	cfgPkg "github.com/xhad/pdfsift/pkg/config"
)

type Config struct {
	URLs      []string
	PDFURLs   []string
	InputList string
	InputJSON string
	Debug     bool
	App       *cfgPkg.Config
}

func main() {
	config, err := parseFlags()
	if err != nil {
		log.Fatal(err)
	}

	if err := run(config); err != nil {
		log.Fatal(err)
	}
}

// stringList collects a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(value string) error {
	*s = append(*s, value)
	return nil
}

// headerList collects repeatable "Name: Value" flags.
type headerList map[string]string

func (h headerList) String() string {
	pairs := make([]string, 0, len(h))
	for name, value := range h {
		pairs = append(pairs, name+": "+value)
	}
	return strings.Join(pairs, ", ")
}

func (h headerList) Set(value string) error {
	name, val, ok := strings.Cut(value, ":")
	if !ok {
		return fmt.Errorf("header %q must be in 'Name: Value' form", value)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("header %q has an empty name", value)
	}
	h[name] = strings.TrimSpace(val)
	return nil
}

func parseFlags() (Config, error) {
	var config Config
	var configPath string
	var urls, pdfURLs stringList
	headers := headerList{}
	var folder, format, outputFile string
	var threads int

	// .env values feed the environment merge inside LoadConfig
	_ = godotenv.Load()

	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.Var(&urls, "url", "Webpage URL to scan for PDF links (repeatable)")
	flag.Var(&urls, "u", "Short form of -url")
	flag.Var(&pdfURLs, "pdf-url", "Direct PDF URL to process (repeatable)")
	flag.Var(&pdfURLs, "pu", "Short form of -pdf-url")
	flag.StringVar(&config.InputList, "input-list", "", "File with one URL per line")
	flag.StringVar(&config.InputList, "il", "", "Short form of -input-list")
	flag.StringVar(&config.InputJSON, "input-json", "", "JSON file with an array of URLs")
	flag.StringVar(&config.InputJSON, "ij", "", "Short form of -input-json")
	flag.StringVar(&folder, "folder", "", "Keep downloaded PDFs in this folder")
	flag.StringVar(&folder, "f", "", "Short form of -folder")
	flag.Var(headers, "header", "Extra request header as 'Name: Value' (repeatable)")
	flag.Var(headers, "H", "Short form of -header")
	flag.StringVar(&format, "format", "", "Output format: default, simple, json, list or domains")
	flag.StringVar(&outputFile, "output-file", "", "Write the report to this file instead of stdout")
	flag.StringVar(&outputFile, "o", "", "Short form of -output-file")
	flag.IntVar(&threads, "threads", 0, "Number of concurrent workers")
	flag.IntVar(&threads, "t", 0, "Short form of -threads")
	flag.BoolVar(&config.Debug, "debug", false, "Enable debug logging")
	flag.Parse()

	config.URLs = urls
	config.PDFURLs = pdfURLs

	cfg, err := cfgPkg.LoadConfig(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to load config: %v", err)
	}

	// Flags win over config file values
	if threads != 0 {
		cfg.Pipeline.Workers = threads
	}
	if folder != "" {
		cfg.Pipeline.DownloadDir = folder
	}
	if format != "" {
		cfg.Output.Format = format
	}
	if outputFile != "" {
		cfg.Output.File = outputFile
	}
	if len(headers) > 0 && cfg.HTTP.Headers == nil {
		cfg.HTTP.Headers = map[string]string{}
	}
	for name, value := range headers {
		cfg.HTTP.Headers[name] = value
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			color.Red("invalid config: %v", e)
		}
		return Config{}, fmt.Errorf("configuration is invalid")
	}

	config.App = cfg
	return config, nil
}
