package formatter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/linkreel/internal/models"
	th "github.com/desertthunder/linkreel/internal/testing"
)

var added = time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)

func testPlaylist(t *testing.T) *models.Playlist {
	t.Helper()

	p, err := models.NewPlaylist("Test Playlist", added)
	if err != nil {
		t.Fatalf("failed to build playlist: %v", err)
	}
	for _, raw := range []string{"https://www.youtube.com/watch?v=one", "https://vimeo.com/2"} {
		u, err := models.ParseItemURL(raw)
		if err != nil {
			t.Fatalf("bad url: %v", err)
		}
		p.AddItem("", u, added)
	}
	p.Items[0].Label = "Video One"
	// Stored order differs from display order.
	p.Items[0], p.Items[1] = p.Items[1], p.Items[0]
	return p
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(testPlaylist(t))
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if lines[0] != "Position,Label,URL,Host,Added" {
			t.Errorf("CSV missing headers, got: %s", lines[0])
		}
		if len(lines) != 3 {
			t.Fatalf("expected 3 lines, got %d", len(lines))
		}
		if !strings.HasPrefix(lines[1], "1,Video One,https://www.youtube.com/watch?v=one,www.youtube.com,2025-02-03T04:05:06Z") {
			t.Errorf("unexpected first row: %s", lines[1])
		}
		if !strings.HasPrefix(lines[2], "2,,https://vimeo.com/2,vimeo.com") {
			t.Errorf("unexpected second row: %s", lines[2])
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(testPlaylist(t), "background.png")
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Test Playlist",
			"![Background](background.png)",
			"**Items**: 2",
			"**Background**: none",
			"1. [Video One](https://www.youtube.com/watch?v=one) (www.youtube.com)",
			"2. [https://vimeo.com/2](https://vimeo.com/2) (vimeo.com)",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToMarkdownColor", func(t *testing.T) {
		p := testPlaylist(t)
		c, _ := models.ParseHexColor("#ff000080")
		p.Appearance = models.Appearance{Kind: models.BackgroundColor, Color: &c}

		data, _ := ExportToMarkdown(p, "")
		if !strings.Contains(string(data), "**Background**: color #ff000080") {
			t.Errorf("expected color description, got:\n%s", data)
		}
		if strings.Contains(string(data), "![Background]") {
			t.Error("expected no image link without a filename")
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(testPlaylist(t))
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Playlist: Test Playlist") {
			t.Errorf("Text missing playlist title")
		}
		if !strings.Contains(output, "1. Video One - https://www.youtube.com/watch?v=one") {
			t.Errorf("Text missing first item, got:\n%s", output)
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(testPlaylist(t))
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var decoded models.Playlist
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(decoded.Items) != 2 || decoded.Items[0].Label != "Video One" {
			t.Errorf("expected items in display order, got %+v", decoded.Items)
		}
	})

	t.Run("ToMetadataJSON", func(t *testing.T) {
		data, err := ToMetadataJSON(testPlaylist(t))
		if err != nil {
			t.Fatalf("ToMetadataJSON failed: %v", err)
		}
		if !strings.Contains(string(data), `"item_count": 2`) {
			t.Errorf("metadata missing item count: %s", data)
		}
		if strings.Contains(string(data), "vimeo") {
			t.Error("metadata should not include items")
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("WriteCSVExport", func(t *testing.T) {
		base := filepath.Join(t.TempDir(), "talks")
		result, err := WriteCSVExport(testPlaylist(t), base)
		if err != nil {
			t.Fatalf("WriteCSVExport failed: %v", err)
		}

		th.AssertFileExists(t, result.ItemsFile)
		th.AssertFileExists(t, result.MetadataFile)
		if result.ItemsFile != base+"_items.csv" {
			t.Errorf("unexpected items file: %s", result.ItemsFile)
		}
	})

	t.Run("WriteMarkdownExportWithPhoto", func(t *testing.T) {
		p := testPlaylist(t)
		p.Appearance = models.Appearance{
			Kind:  models.BackgroundPhoto,
			Image: []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"),
		}

		dir := filepath.Join(t.TempDir(), "md")
		result, err := WriteMarkdownExport(p, dir)
		if err != nil {
			t.Fatalf("WriteMarkdownExport failed: %v", err)
		}

		if result.BackgroundImage != filepath.Join(dir, "background.png") {
			t.Errorf("unexpected background path: %s", result.BackgroundImage)
		}
		readme := th.MustReadFile(t, filepath.Join(dir, "README.md"))
		if !strings.Contains(readme, "![Background](background.png)") {
			t.Errorf("README missing background link:\n%s", readme)
		}
		if len(result.Files) != 2 {
			t.Errorf("expected 2 files, got %v", result.Files)
		}
	})

	t.Run("WriteTextExport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "talks.txt")
		got, err := WriteTextExport(testPlaylist(t), path)
		if err != nil {
			t.Fatalf("WriteTextExport failed: %v", err)
		}
		th.AssertFileExists(t, got)
	})

	t.Run("WriteJSONExport", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "talks.json")
		if _, err := WriteJSONExport(testPlaylist(t), path); err != nil {
			t.Fatalf("WriteJSONExport failed: %v", err)
		}
		if !json.Valid([]byte(th.MustReadFile(t, path))) {
			t.Error("expected valid JSON file")
		}
	})

	t.Run("WriteFailure", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(blocker, nil, 0644); err != nil {
			t.Fatalf("setup failed: %v", err)
		}
		if _, err := WriteTextExport(testPlaylist(t), filepath.Join(blocker, "out.txt")); err == nil {
			t.Error("expected error writing beneath a regular file")
		}
		if _, err := WriteMarkdownExport(testPlaylist(t), filepath.Join(blocker, "dir")); err == nil {
			t.Error("expected error creating directory beneath a regular file")
		}
	})
}
