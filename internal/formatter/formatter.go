// package formatter renders a generated setlist to various formats (plain text, Markdown, CSV, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/setlistify/internal/models"
	"github.com/desertthunder/setlistify/internal/shared"
)

// Format names an export format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
)

// Formats lists every supported format in help order.
func Formats() []Format {
	return []Format{FormatText, FormatMarkdown, FormatCSV, FormatJSON}
}

// ParseFormat accepts a format name or a common alias ("txt", "md").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt", "plain":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, s)
	}
}

// Extension is the file extension written for f.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatCSV:
		return ".csv"
	case FormatJSON:
		return ".json"
	default:
		return ".txt"
	}
}

// SetlistExport pairs a setlist with the artist it was generated for.
type SetlistExport struct {
	Artist  models.Artist   `json:"artist"`
	Setlist *models.Setlist `json:"setlist"`
}

func (e *SetlistExport) songs() []string {
	if e.Setlist == nil {
		return nil
	}
	return e.Setlist.Songs
}

func (e *SetlistExport) shows() []models.Show {
	if e.Setlist == nil {
		return nil
	}
	return e.Setlist.Shows
}

// Export renders e in format f.
func Export(e *SetlistExport, f Format) ([]byte, error) {
	switch f {
	case FormatText:
		return ExportToText(e)
	case FormatMarkdown:
		return ExportToMarkdown(e)
	case FormatCSV:
		return ExportToCSV(e)
	case FormatJSON:
		return ExportToJSON(e)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, f)
	}
}

// ExportToText converts a setlist to a numbered plain text list
func ExportToText(e *SetlistExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Setlist: %s\n", e.Artist)
	fmt.Fprintf(&buf, "Songs: %d\n", len(e.songs()))
	if shows := e.shows(); len(shows) > 0 {
		fmt.Fprintf(&buf, "Based on %d shows\n", len(shows))
	}
	buf.WriteString("\n")

	for i, song := range e.songs() {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, song)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a setlist to Markdown with an optional section listing the source shows
func ExportToMarkdown(e *SetlistExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s Setlist\n\n", e.Artist.Name)

	if e.Artist.Disambiguation != "" {
		fmt.Fprintf(&buf, "_%s_\n\n", e.Artist.Disambiguation)
	}
	if e.Artist.ExternalID != "" {
		fmt.Fprintf(&buf, "**MBID**: %s\n", e.Artist.ExternalID)
	}
	fmt.Fprintf(&buf, "**Songs**: %d\n\n", len(e.songs()))

	buf.WriteString("## Songs\n\n")
	for i, song := range e.songs() {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, song)
	}

	if shows := e.shows(); len(shows) > 0 {
		buf.WriteString("\n## Shows\n\n")
		buf.WriteString("| Date | Venue | City |\n|---|---|---|\n")
		for _, s := range shows {
			fmt.Fprintf(&buf, "| %s | %s | %s |\n", s.Date, s.Venue, s.City)
		}
	}

	return buf.Bytes(), nil
}

// ExportToCSV converts a setlist to CSV format with columns: Position, Song, Artist
func ExportToCSV(e *SetlistExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Position", "Song", "Artist"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, song := range e.songs() {
		if err := writer.Write([]string{strconv.Itoa(i + 1), song, e.Artist.Name}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToJSON renders the artist and setlist as indented JSON
func ExportToJSON(e *SetlistExport) ([]byte, error) {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// DefaultFilename derives a file name from the artist, e.g. "radiohead_setlist.md".
func DefaultFilename(e *SetlistExport, f Format) string {
	base := strings.ToLower(strings.Join(strings.FieldsFunc(e.Artist.Name, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	}), "-"))
	if base == "" {
		base = "artist"
	}
	return base + "_setlist" + f.Extension()
}

// WriteExport renders e in format f and writes it to path.
//
// Defaults to [DefaultFilename] when path is empty.
func WriteExport(e *SetlistExport, f Format, path string) (string, error) {
	if path == "" {
		path = DefaultFilename(e, f)
	}

	data, err := Export(e, f)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", f, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", f, err)
	}

	return path, nil
}
