package formatter

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/setlistify/internal/models"
	"github.com/desertthunder/setlistify/internal/shared"
	th "github.com/desertthunder/setlistify/internal/testing"
)

func radiohead() *SetlistExport {
	return &SetlistExport{
		Artist: models.Artist{Name: "Radiohead", ExternalID: "mb-123", Disambiguation: "English rock band"},
		Setlist: &models.Setlist{
			Songs: []string{"Paranoid Android", "Karma Police"},
			Shows: []models.Show{{Date: "2025-11-14", Venue: "Unipol Arena", City: "Bologna"}},
		},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(radiohead())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"Setlist: Radiohead (English rock band)",
			"Songs: 2",
			"Based on 1 shows",
			"1. Paranoid Android\n2. Karma Police\n",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("text missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(radiohead())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "# Radiohead Setlist\n") {
			t.Errorf("Markdown missing title, got:\n%s", output)
		}
		if !strings.Contains(output, "**MBID**: mb-123") {
			t.Error("Markdown missing mbid")
		}
		if !strings.Contains(output, "| 2025-11-14 | Unipol Arena | Bologna |") {
			t.Error("Markdown missing shows table")
		}

		t.Run("without shows", func(t *testing.T) {
			e := radiohead()
			e.Setlist.Shows = nil
			data, _ := ExportToMarkdown(e)
			if strings.Contains(string(data), "## Shows") {
				t.Error("shows section should be omitted")
			}
		})
	})

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(radiohead())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		want := "Position,Song,Artist\n1,Paranoid Android,Radiohead\n2,Karma Police,Radiohead\n"
		if string(data) != want {
			t.Errorf("CSV = %q, want %q", data, want)
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(radiohead())
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var got SetlistExport
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if got.Artist.ExternalID != "mb-123" || len(got.Setlist.Songs) != 2 || len(got.Setlist.Shows) != 1 {
			t.Errorf("unexpected decoded export %+v", got)
		}
	})

	t.Run("nil setlist", func(t *testing.T) {
		e := &SetlistExport{Artist: models.Artist{Name: "Genesis"}}
		for _, f := range Formats() {
			if _, err := Export(e, f); err != nil {
				t.Errorf("%s: unexpected error %v", f, err)
			}
		}
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatText},
		{"txt", FormatText},
		{"MD", FormatMarkdown},
		{"csv", FormatCSV},
		{" json ", FormatJSON},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if err != nil || got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
			}
		})
	}

	if _, err := ParseFormat("xml"); !errors.Is(err, shared.ErrInvalidFlag) {
		t.Errorf("expected ErrInvalidFlag, got %v", err)
	}
}

func TestWriteExport(t *testing.T) {
	t.Run("explicit path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.md")

		got, err := WriteExport(radiohead(), FormatMarkdown, path)
		if err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if got != path {
			t.Errorf("path = %s, want %s", got, path)
		}
		th.AssertFileExists(t, path)
		if !strings.Contains(th.MustReadFile(t, path), "Karma Police") {
			t.Error("written file missing songs")
		}
	})

	t.Run("DefaultFilename", func(t *testing.T) {
		e := &SetlistExport{Artist: models.Artist{Name: "Sigur Rós & Friends"}}
		if got := DefaultFilename(e, FormatCSV); got != "sigur-r-s-friends_setlist.csv" {
			t.Errorf("DefaultFilename = %q", got)
		}
		if got := DefaultFilename(&SetlistExport{}, FormatJSON); got != "artist_setlist.json" {
			t.Errorf("DefaultFilename = %q", got)
		}
	})

	t.Run("unwritable path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing", "out.txt")
		if _, err := WriteExport(radiohead(), FormatText, path); err == nil {
			t.Error("expected write error")
		}
	})
}
