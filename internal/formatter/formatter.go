// package formatter provides functions to export playlist data to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/desertthunder/linkreel/internal/models"
)

// ExportToCSV converts a playlist to CSV format with columns: Position, Label, URL, Host, Added
func ExportToCSV(p *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Label", "URL", "Host", "Added"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, item := range p.SortedItems() {
		record := []string{
			strconv.Itoa(item.OrderIndex + 1),
			item.Label,
			item.URL,
			item.Host(),
			item.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a playlist to Markdown format with an optional background image
func ExportToMarkdown(p *models.Playlist, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", p.Title))

	if imageFilename != "" {
		buf.WriteString(fmt.Sprintf("![Background](%s)\n\n", imageFilename))
	}

	buf.WriteString(fmt.Sprintf("**Items**: %d\n", len(p.Items)))
	buf.WriteString(fmt.Sprintf("**Background**: %s\n", describeAppearance(p.Appearance)))
	buf.WriteString(fmt.Sprintf("**Updated**: %s\n\n", p.UpdatedAt.UTC().Format(time.DateTime)))

	buf.WriteString("## Items\n\n")
	for i, item := range p.SortedItems() {
		hostPart := ""
		if host := item.Host(); host != "" {
			hostPart = fmt.Sprintf(" (%s)", host)
		}
		buf.WriteString(fmt.Sprintf("%d. [%s](%s)%s\n", i+1, item.DisplayLabel(), item.URL, hostPart))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a playlist to plain text format
func ExportToText(p *models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", p.Title))
	buf.WriteString(fmt.Sprintf("Items: %d\n\n", len(p.Items)))

	for i, item := range p.SortedItems() {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, item.DisplayLabel(), item.URL))
	}

	return buf.Bytes(), nil
}

// PlaylistMetadata is the playlist without its items.
type PlaylistMetadata struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	ItemCount  int               `json:"item_count"`
	Appearance models.Appearance `json:"appearance"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// ToMetadataJSON generates a JSON representation of playlist metadata (without items)
func ToMetadataJSON(p *models.Playlist) ([]byte, error) {
	return json.MarshalIndent(PlaylistMetadata{
		ID:         p.ID,
		Title:      p.Title,
		ItemCount:  len(p.Items),
		Appearance: p.Appearance,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}, "", "  ")
}

// ExportToJSON renders the whole playlist, items in order.
func ExportToJSON(p *models.Playlist) ([]byte, error) {
	sorted := *p
	sorted.Items = p.SortedItems()
	return json.MarshalIndent(&sorted, "", "  ")
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	ItemsFile    string
	MetadataFile string
}

// WriteCSVExport exports a playlist to CSV format with accompanying metadata JSON file.
//
// Defaults to playlist ID as the base filename & creates {base}_items.csv and {base}_metadata.json
func WriteCSVExport(p *models.Playlist, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = p.ID
	}

	csvData, err := ExportToCSV(p)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	itemsFile := baseFilepath + "_items.csv"
	if err := os.WriteFile(itemsFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(p)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		ItemsFile:    itemsFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory       string
	Files           []string
	BackgroundImage string
}

// WriteMarkdownExport exports a playlist to Markdown format in a dedicated directory.
//
// Directory name defaults to the playlist ID. A photo background is written next to README.md.
func WriteMarkdownExport(p *models.Playlist, outputDir string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = p.ID
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var imageFilename string
	if p.Appearance.Kind == models.BackgroundPhoto && len(p.Appearance.Image) > 0 {
		imageFilename = "background" + imageExtension(p.Appearance.Image)
		imagePath := filepath.Join(outputDir, imageFilename)
		if err := os.WriteFile(imagePath, p.Appearance.Image, 0644); err != nil {
			return nil, fmt.Errorf("failed to write background image: %w", err)
		}
		result.BackgroundImage = imagePath
		result.Files = append(result.Files, imagePath)
	}

	mdData, err := ExportToMarkdown(p, imageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport exports a playlist to plain text format.
//
// Defaults to {playlist.ID}_items.txt as the filename.
func WriteTextExport(p *models.Playlist, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s_items.txt", p.ID)
	}

	textData, err := ExportToText(p)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

// WriteJSONExport exports the whole playlist as JSON. Defaults to {playlist.ID}.json.
func WriteJSONExport(p *models.Playlist, path string) (string, error) {
	if path == "" {
		path = p.ID + ".json"
	}

	data, err := ExportToJSON(p)
	if err != nil {
		return "", fmt.Errorf("failed to generate JSON: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}

	return path, nil
}

func describeAppearance(a models.Appearance) string {
	switch a.Kind {
	case models.BackgroundColor:
		if a.Color != nil {
			return "color " + a.Color.Hex()
		}
		return "color"
	case models.BackgroundPhoto:
		return fmt.Sprintf("photo (%d bytes)", len(a.Image))
	default:
		return "none"
	}
}

// imageExtension picks a file extension from the sniffed content type of data.
func imageExtension(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/jpeg":
		return ".jpg"
	default:
		return ".bin"
	}
}
