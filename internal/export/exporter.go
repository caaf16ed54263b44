// Package export writes finished reports to disk as JSON alongside the
// synthesized markdown summary.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/memouritsen-ui/solid-robot-sub000/internal/model"
)

// FileExporter writes reports under a base directory or to an explicit
// path
type FileExporter struct{}

// NewFileExporter creates a file exporter
func NewFileExporter() *FileExporter {
	return &FileExporter{}
}

// Export writes the report as JSON to path; when the path ends in .md
// only the markdown summary is written, otherwise a sibling .md file is
// produced next to the JSON
func (e *FileExporter) Export(report *model.Report, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	if strings.HasSuffix(path, ".md") {
		return writeFile(path, []byte(report.SummaryMD))
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := writeFile(path, data); err != nil {
		return err
	}

	if report.SummaryMD != "" {
		mdPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".md"
		if err := writeFile(mdPath, []byte(report.SummaryMD)); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
