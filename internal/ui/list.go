package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/setlistify/internal/models"
)

var (
	_ list.Item = artistItem{}
	_ list.Item = songItem{}
)

// artistItem wraps [models.Artist] to implement [list.Item].
type artistItem struct {
	artist models.Artist
}

func (i artistItem) FilterValue() string { return i.artist.Name }
func (i artistItem) Title() string       { return i.artist.Name }
func (i artistItem) Description() string {
	desc := i.artist.Disambiguation
	if i.artist.ExternalID != "" {
		if desc != "" {
			desc += " • "
		}
		desc += i.artist.ExternalID
	}
	return desc
}

// songItem is one row of the setlist preview.
type songItem struct {
	position int
	title    string
}

func (i songItem) FilterValue() string { return i.title }
func (i songItem) Title() string       { return fmt.Sprintf("%2d. %s", i.position, i.title) }
func (i songItem) Description() string { return "" }

func artistItems(artists []models.Artist) []list.Item {
	items := make([]list.Item, len(artists))
	for i, a := range artists {
		items[i] = artistItem{artist: a}
	}
	return items
}

func songItems(s *models.Setlist) []list.Item {
	if s == nil {
		return nil
	}
	items := make([]list.Item, len(s.Songs))
	for i, song := range s.Songs {
		items[i] = songItem{position: i + 1, title: song}
	}
	return items
}
