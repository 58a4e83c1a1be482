package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/setlistify/internal/models"
	"github.com/desertthunder/setlistify/internal/workflow"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgArtistsFound MsgKind = iota
	MsgWorkflowChanged
	MsgPlaylistCreated
	MsgBrowserOpened
)

type artistsFound struct {
	query   string
	artists []models.Artist
	err     error
}

type playlistCreated struct {
	playlist *models.Playlist
	err      error
}

// artistsFoundMsg is the constructor for [MsgArtistsFound]
func artistsFoundMsg(query string, artists []models.Artist, err error) Msg {
	return Msg{kind: MsgArtistsFound, data: artistsFound{query, artists, err}}
}

// workflowChangedMsg is the constructor for [MsgWorkflowChanged]
func workflowChangedMsg() Msg {
	return Msg{kind: MsgWorkflowChanged}
}

// playlistCreatedMsg is the constructor for [MsgPlaylistCreated]
func playlistCreatedMsg(playlist *models.Playlist, err error) Msg {
	return Msg{kind: MsgPlaylistCreated, data: playlistCreated{playlist, err}}
}

// browserOpenedMsg is the constructor for [MsgBrowserOpened]
func browserOpenedMsg(url string, err error) Msg {
	return Msg{kind: MsgBrowserOpened, data: struct {
		url string
		err error
	}{url, err}}
}

// NewNotifier returns a [workflow.Listener] for the controller and the channel the
// model waits on. Signals coalesce: the model always rereads the controller state.
func NewNotifier() (workflow.Listener, <-chan struct{}) {
	ch := make(chan struct{}, 1)
	return func(workflow.State) {
		select {
		case ch <- struct{}{}:
		default:
		}
	}, ch
}
