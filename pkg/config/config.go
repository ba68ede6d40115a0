package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/xhad/pdfsift/pkg/transport"
)

type Config struct {
	HTTP struct {
		UserAgent          string            `yaml:"user_agent"`
		Headers            map[string]string `yaml:"headers"`
		MaxRetries         int               `yaml:"max_retries"`
		RetryBackoffMillis int               `yaml:"retry_backoff_ms"`
		RateLimit          float64           `yaml:"rate_limit"`
		PageTimeoutSeconds int               `yaml:"page_timeout_seconds"`
		PDFTimeoutSeconds  int               `yaml:"pdf_timeout_seconds"`
	} `yaml:"http"`

	Pipeline struct {
		Workers     int    `yaml:"workers"`
		DownloadDir string `yaml:"download_dir"`
	} `yaml:"pipeline"`

	Output struct {
		Format string `yaml:"format"`
		File   string `yaml:"file"`
	} `yaml:"output"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/pdfsift/config.yaml"),
			"/etc/pdfsift/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	// Merge with environment variables
	mergeWithEnv(&config)

	// Apply defaults for unset values
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	applyDefaults(config)
	mergeWithEnv(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.HTTP.UserAgent == "" {
		config.HTTP.UserAgent = transport.DefaultUserAgent
	}
	if config.HTTP.MaxRetries == 0 {
		config.HTTP.MaxRetries = 5
	}
	if config.HTTP.RetryBackoffMillis == 0 {
		config.HTTP.RetryBackoffMillis = 300
	}
	if config.HTTP.PageTimeoutSeconds == 0 {
		config.HTTP.PageTimeoutSeconds = 15
	}
	if config.HTTP.PDFTimeoutSeconds == 0 {
		config.HTTP.PDFTimeoutSeconds = 30
	}

	if config.Pipeline.Workers == 0 {
		config.Pipeline.Workers = 100
	}

	if config.Output.Format == "" {
		config.Output.Format = "default"
	}
}

func mergeWithEnv(config *Config) {
	if dir := os.Getenv("PDFSIFT_DOWNLOAD_DIR"); dir != "" {
		config.Pipeline.DownloadDir = dir
	}
	if ua := os.Getenv("PDFSIFT_USER_AGENT"); ua != "" {
		config.HTTP.UserAgent = ua
	}
}
