package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/memouritsen-ui/solid-robot-sub000/internal/model"
)

func testReport() *model.Report {
	return &model.Report{
		SessionID:  "s1",
		Query:      "transformer architecture",
		Domain:     "general",
		Cycles:     2,
		StopReason: "fact saturation",
		SummaryMD:  "# Research Report: transformer architecture\n",
		Facts: []model.Claim{
			model.NewClaim("The transformer was introduced in 2017.", []string{"arxiv"}, 0.5),
		},
	}
}

func TestExport_JSONWithSiblingMarkdown(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")

	if err := NewFileExporter().Export(testReport(), path); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Read exported JSON: %v", err)
	}
	var loaded model.Report
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("Exported JSON should parse: %v", err)
	}
	if loaded.SessionID != "s1" || len(loaded.Facts) != 1 {
		t.Error("Exported report lost content")
	}

	md, err := os.ReadFile(filepath.Join(dir, "report.md"))
	if err != nil {
		t.Fatalf("Expected sibling markdown: %v", err)
	}
	if string(md) != testReport().SummaryMD {
		t.Error("Sibling markdown should carry the summary")
	}
}

func TestExport_MarkdownOnly(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.md")

	if err := NewFileExporter().Export(testReport(), path); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	md, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(md) != testReport().SummaryMD {
		t.Error("Markdown export should contain only the summary")
	}
	if _, err := os.Stat(filepath.Join(dir, "report.json")); !os.IsNotExist(err) {
		t.Error("Markdown export should not produce JSON")
	}
}

func TestExport_CreatesMissingDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deep", "report.json")

	if err := NewFileExporter().Export(testReport(), path); err != nil {
		t.Fatalf("Export into missing directories failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected exported file at %s: %v", path, err)
	}
}
