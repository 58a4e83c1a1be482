// package models defines the data model for the setlist to playlist workflow
package models

import (
	"fmt"
	"strings"
)

// Artist identifies the subject of an acquisition.
type Artist struct {
	Name           string `json:"name"`
	ExternalID     string `json:"mbid"`
	Disambiguation string `json:"disambiguation,omitempty"`
}

// Valid reports whether the artist can be used to start an acquisition.
func (a Artist) Valid() bool {
	return strings.TrimSpace(a.Name) != ""
}

// Same reports whether a and b refer to the same artist.
//
// The external id wins when both sides carry one.
func (a Artist) Same(b Artist) bool {
	if a.ExternalID != "" && b.ExternalID != "" {
		return a.ExternalID == b.ExternalID
	}
	return strings.EqualFold(strings.TrimSpace(a.Name), strings.TrimSpace(b.Name))
}

// String renders the artist with its disambiguation, e.g. "Genesis (English rock band)".
func (a Artist) String() string {
	if a.Disambiguation == "" {
		return a.Name
	}
	return fmt.Sprintf("%s (%s)", a.Name, a.Disambiguation)
}

// Show is metadata about one concert a setlist was built from.
type Show struct {
	Date  string `json:"date"`
	Venue string `json:"venue"`
	City  string `json:"city"`
}

// Setlist is the generated artifact: songs in performance order.
type Setlist struct {
	Songs []string `json:"songs"`
	Shows []Show   `json:"showsMeta,omitempty"`
}

// Empty reports whether the setlist has no songs.
func (s *Setlist) Empty() bool {
	return s == nil || len(s.Songs) == 0
}

// Clone returns a deep copy so callers never share the song slice.
func (s *Setlist) Clone() *Setlist {
	if s == nil {
		return nil
	}
	c := &Setlist{Songs: make([]string, len(s.Songs))}
	copy(c.Songs, s.Songs)
	if len(s.Shows) > 0 {
		c.Shows = make([]Show, len(s.Shows))
		copy(c.Shows, s.Shows)
	}
	return c
}

// PlaylistRequest is submitted to the backend to create a playlist.
type PlaylistRequest struct {
	ArtistName string   `json:"artistName"`
	Songs      []string `json:"songs"`
}

// Playlist is the backend's answer to a [PlaylistRequest].
type Playlist struct {
	URL        string `json:"playlist_url"`
	Name       string `json:"playlist_name"`
	SongsAdded int    `json:"songs_added,omitempty"`
}

// AuthStatus is the answer of the authentication collaborator.
type AuthStatus struct {
	Authenticated bool   `json:"authenticated"`
	RedirectURL   string `json:"redirect_url,omitempty"`
}
