package seeds

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// IsPDF reports whether a seed URL points directly at a PDF, judged by the
// lowercased URL path. Seeds that do not parse fall back to a suffix test on
// the raw string.
func IsPDF(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return strings.HasSuffix(strings.ToLower(rawURL), ".pdf")
	}
	return strings.HasSuffix(strings.ToLower(parsed.Path), ".pdf")
}

// Split dedupes the seeds and partitions them into direct PDF references and
// webpages to scan. No seed lands in both partitions.
func Split(urls []string) (pdfs, pages []string) {
	seen := make(map[string]struct{}, len(urls))
	for _, raw := range urls {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if _, ok := seen[raw]; ok {
			continue
		}
		seen[raw] = struct{}{}

		if IsPDF(raw) {
			pdfs = append(pdfs, raw)
		} else {
			pages = append(pages, raw)
		}
	}
	return pdfs, pages
}

// LoadList reads one URL per line, skipping blank lines.
func LoadList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening seed list: %w", err)
	}
	defer f.Close()

	var urls []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			urls = append(urls, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading seed list: %w", err)
	}
	return urls, nil
}

// LoadJSON accepts either a bare array of URLs or an object carrying a
// "urls" array. Anything else is an input error the operator should see.
func LoadJSON(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening seed file: %w", err)
	}

	// null decodes cleanly into a nil slice, so require an actual array.
	var list []string
	if err := json.Unmarshal(data, &list); err == nil && list != nil {
		return list, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapped); err == nil {
		if raw, ok := wrapped["urls"]; ok {
			if err := json.Unmarshal(raw, &list); err == nil && list != nil {
				return list, nil
			}
		}
	}

	return nil, fmt.Errorf("seed file %s has an unexpected format", path)
}
