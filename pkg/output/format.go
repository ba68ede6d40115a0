package output

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xhad/pdfsift/internal/models"
	"github.com/xhad/pdfsift/pkg/domains"
)

// Render returns the report in the named format. Filenames and domains are
// emitted in sorted order so output is stable across runs.
func Render(format string, report models.Report) (string, error) {
	switch format {
	case "default":
		return Default(report), nil
	case "simple":
		return Simple(report), nil
	case "json":
		return JSON(report)
	case "list":
		return List(report), nil
	case "domains":
		return Domains(report), nil
	default:
		return "", fmt.Errorf("unknown output format: %s", format)
	}
}

// Default is the verbose per-file view.
func Default(report models.Report) string {
	lines := []string{"\n========== Default Output =========="}
	for _, name := range report.Filenames() {
		lines = append(lines, fmt.Sprintf("PDF File: %s", name))
		set := report[name]
		if set.Len() == 0 {
			lines = append(lines, "  -> (No domains/subdomains found)")
			continue
		}
		for _, d := range set.Sorted() {
			lines = append(lines, fmt.Sprintf("  -> %s", d))
		}
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// Simple emits every discovered domain line by line, no labeling.
func Simple(report models.Report) string {
	var lines []string
	for _, name := range report.Filenames() {
		lines = append(lines, report[name].Sorted()...)
	}
	return strings.Join(lines, "\n") + "\n"
}

// JSON maps each file to its sorted domain list.
func JSON(report models.Report) (string, error) {
	jsonReady := make(map[string][]string, len(report))
	for name, set := range report {
		jsonReady[name] = set.Sorted()
	}

	data, err := json.MarshalIndent(jsonReady, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}
	return string(data), nil
}

// List is the bulleted view.
func List(report models.Report) string {
	lines := []string{"\n========== List Format =========="}
	for _, name := range report.Filenames() {
		lines = append(lines, fmt.Sprintf("* %s", name))
		set := report[name]
		if set.Len() == 0 {
			lines = append(lines, "  - (No domains found)")
			continue
		}
		for _, d := range set.Sorted() {
			lines = append(lines, fmt.Sprintf("  - %s", d))
		}
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// Domains rolls every discovered domain up to its registered domain and
// emits the deduplicated sorted union across all files.
func Domains(report models.Report) string {
	all := models.NewStringSet()
	for _, set := range report {
		for domain := range set {
			if reg, ok := domains.Registered(domain); ok {
				all.Add(reg)
			}
		}
	}

	lines := []string{"\n========== Domains Only =========="}
	lines = append(lines, all.Sorted()...)
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// Write sends rendered output to path, or stdout when path is empty.
func Write(s, path string) error {
	if path == "" {
		fmt.Print(s)
		return nil
	}
	if err := os.WriteFile(path, []byte(s), 0644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	return nil
}
