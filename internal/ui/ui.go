package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlistify/internal/models"
	"github.com/desertthunder/setlistify/internal/workflow"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SearchView ViewState = iota
	ArtistListView
	PreviewView
	ConfirmView
	CreatingView
	ResultView
)

// Workflow is the controller the wizard drives. [workflow.Controller] implements it.
type Workflow interface {
	State() workflow.State
	SelectArtist(models.Artist) workflow.State
	Advance() workflow.State
	Retreat() workflow.State
	Retry() workflow.State
	CompleteFinalStep() workflow.State
	Reset() workflow.State
}

// Searcher finds artists for step 0.
type Searcher interface {
	Search(ctx context.Context, q string) ([]models.Artist, error)
}

// PlaylistCreator creates the playlist on the final step.
type PlaylistCreator interface {
	Create(ctx context.Context, req models.PlaylistRequest) (*models.Playlist, error)
}

// Option configures a [Model].
type Option func(*Model)

// WithOpener sets the function used to open login pages.
func WithOpener(fn func(string) error) Option {
	return func(m *Model) { m.open = fn }
}

// WithLogger sets the model logger. The TUI should log to a file.
func WithLogger(l *log.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	view      ViewState
	flow      Workflow
	search    Searcher
	playlists PlaylistCreator
	updates   <-chan struct{}
	waiting   bool
	open      func(string) error
	logger    *log.Logger

	width      int
	height     int
	input      textinput.Model
	artistList list.Model
	songList   list.Model
	spinner    spinner.Model
	progress   progress.Model
	help       help.Model
	keys       keyMap

	state     workflow.State
	searching bool
	playlist  *models.Playlist
	redirect  string
	notice    string
	err       error
}

// NewModel creates a new TUI model with the provided dependencies.
//
// updates is the channel returned by [NewNotifier] whose listener was given to the controller.
func NewModel(ctx context.Context, flow Workflow, search Searcher, playlists PlaylistCreator, updates <-chan struct{}, opts ...Option) *Model {
	ti := textinput.New()
	ti.Placeholder = "Radiohead"
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 50

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.warn

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	m := &Model{
		ctx:       ctx,
		view:      SearchView,
		flow:      flow,
		search:    search,
		playlists: playlists,
		updates:   updates,
		logger:    log.New(io.Discard),
		input:     ti,
		spinner:   sp,
		progress:  prog,
		help:      help.New(),
		keys:      newKeyMap(),
		state:     flow.State(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init starts the cursor blink and the spinner.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		if m.artistList.Items() != nil {
			m.artistList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.songList.Items() != nil {
			m.songList.SetSize(msg.Width-4, msg.Height-10)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.view {
		case SearchView:
			return m.handleSearchKeys(msg)
		case ArtistListView:
			return m.handleArtistListKeys(msg)
		case PreviewView:
			return m.handlePreviewKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateComponents(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgArtistsFound:
		data := msg.data.(artistsFound)
		m.searching = false
		if data.err != nil {
			m.setError(data.err)
			return m, nil
		}
		if len(data.artists) == 0 {
			m.notice = fmt.Sprintf("No artists found for %q", data.query)
			return m, nil
		}
		m.artistList = list.New(artistItems(data.artists), list.NewDefaultDelegate(), m.width-4, m.height-8)
		m.artistList.Title = fmt.Sprintf("Artists matching %q", data.query)
		m.view = ArtistListView
		return m, nil

	case MsgWorkflowChanged:
		m.waiting = false
		m.refresh()
		if m.view == PreviewView && m.acquiring() {
			return m, m.waitForUpdate()
		}
		return m, nil

	case MsgPlaylistCreated:
		data := msg.data.(playlistCreated)
		if data.err != nil {
			m.view = ConfirmView
			m.setError(data.err)
			return m, nil
		}
		m.playlist = data.playlist
		m.state = m.flow.CompleteFinalStep()
		m.view = ResultView
		return m, nil

	case MsgBrowserOpened:
		data := msg.data.(struct {
			url string
			err error
		})
		if data.err != nil {
			m.notice = fmt.Sprintf("Could not open a browser, visit %s", data.url)
		} else {
			m.notice = "Opened the login page. Press r to retry once signed in."
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.search):
		q := strings.TrimSpace(m.input.Value())
		if q == "" || m.searching {
			return m, nil
		}
		m.clearMessages()
		m.searching = true
		return m, m.findArtists(q)
	case key.Matches(msg, m.keys.back):
		if m.artistList.Items() != nil {
			m.view = ArtistListView
		}
		return m, nil
	case msg.String() == "o" && m.redirect != "" && m.input.Value() == "":
		return m, m.openRedirect()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleArtistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.artistList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.artistList, cmd = m.artistList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = SearchView
		m.input.Focus()
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.artistList.SelectedItem().(artistItem); ok {
			m.clearMessages()
			m.flow.SelectArtist(item.artist)
			m.state = m.flow.Advance()
			m.view = PreviewView
			return m, tea.Batch(m.waitForUpdate(), m.spinner.Tick)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.artistList, cmd = m.artistList.Update(msg)
	return m, cmd
}

func (m *Model) handlePreviewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.clearMessages()
		m.state = m.flow.Retreat()
		m.view = ArtistListView
		return m, nil
	case key.Matches(msg, m.keys.retry):
		if m.state.Failure == nil {
			return m, nil
		}
		m.clearMessages()
		m.state = m.flow.Retry()
		return m, tea.Batch(m.waitForUpdate(), m.spinner.Tick)
	case key.Matches(msg, m.keys.open):
		return m, m.openRedirect()
	case key.Matches(msg, m.keys.enter):
		m.state = m.flow.Advance()
		m.syncView()
		return m, nil
	}
	return m, nil
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.yes):
		if m.state.Artist == nil || m.state.Setlist.Empty() {
			return m, nil
		}
		m.clearMessages()
		m.view = CreatingView
		return m, tea.Batch(m.createPlaylist(), m.spinner.Tick)
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back):
		m.clearMessages()
		m.state = m.flow.Retreat()
		m.view = PreviewView
		return m, nil
	case key.Matches(msg, m.keys.open):
		return m, m.openRedirect()
	}

	var cmd tea.Cmd
	m.songList, cmd = m.songList.Update(msg)
	return m, cmd
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart):
		m.state = m.flow.Reset()
		m.view = SearchView
		m.playlist = nil
		m.clearMessages()
		m.input.Reset()
		m.input.Focus()
		m.artistList = list.Model{}
		return m, textinput.Blink
	}
	return m, nil
}

func (m *Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case SearchView:
		m.input, cmd = m.input.Update(msg)
	case ArtistListView:
		m.artistList, cmd = m.artistList.Update(msg)
	case ConfirmView:
		m.songList, cmd = m.songList.Update(msg)
	}
	return m, cmd
}

// refresh rereads the controller and moves to the view of its step.
func (m *Model) refresh() {
	m.state = m.flow.State()
	if f := m.state.Failure; f != nil && f.Reason == models.ReasonUnauthenticated {
		m.redirect = f.RedirectURL
	}
	m.syncView()
}

func (m *Model) syncView() {
	if m.view == PreviewView && m.state.Step == workflow.StepCreatePlaylist {
		d := list.NewDefaultDelegate()
		d.ShowDescription = false
		d.SetSpacing(0)
		m.songList = list.New(songItems(m.state.Setlist), d, m.width-4, m.height-10)
		m.songList.Title = fmt.Sprintf("%s setlist", m.state.Artist.Name)
		m.songList.SetShowHelp(false)
		m.view = ConfirmView
	}
}

func (m *Model) acquiring() bool {
	return m.state.Step == workflow.StepPreviewSetlist && m.state.Failure == nil && m.state.Setlist.Empty()
}

func (m *Model) setError(err error) {
	m.err = err
	var f *models.Failure
	if errors.As(err, &f) && f.Reason == models.ReasonUnauthenticated {
		m.redirect = f.RedirectURL
	}
}

func (m *Model) clearMessages() {
	m.err = nil
	m.notice = ""
}

func (m *Model) waitForUpdate() tea.Cmd {
	if m.waiting || m.updates == nil {
		return nil
	}
	m.waiting = true

	updates, ctx := m.updates, m.ctx
	return func() tea.Msg {
		select {
		case <-updates:
			return workflowChangedMsg()
		case <-ctx.Done():
			return nil
		}
	}
}

func (m *Model) findArtists(q string) tea.Cmd {
	return func() tea.Msg {
		artists, err := m.search.Search(m.ctx, q)
		return artistsFoundMsg(q, artists, err)
	}
}

func (m *Model) createPlaylist() tea.Cmd {
	req := models.PlaylistRequest{ArtistName: m.state.Artist.Name, Songs: m.state.Setlist.Clone().Songs}
	return func() tea.Msg {
		p, err := m.playlists.Create(m.ctx, req)
		return playlistCreatedMsg(p, err)
	}
}

func (m *Model) openRedirect() tea.Cmd {
	url, open := m.redirect, m.open
	if url == "" || open == nil {
		return nil
	}
	m.logger.Info("opening login page", "url", url)
	return func() tea.Msg {
		return browserOpenedMsg(url, open(url))
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderSteps())
	b.WriteString("\n\n")

	switch m.view {
	case SearchView:
		b.WriteString(m.renderSearch())
	case ArtistListView:
		b.WriteString(m.renderArtistList())
	case PreviewView:
		b.WriteString(m.renderPreview())
	case ConfirmView:
		b.WriteString(m.renderConfirm())
	case CreatingView:
		b.WriteString(fmt.Sprintf("%s Creating playlist...", m.spinner.View()))
	case ResultView:
		b.WriteString(m.renderResult())
	}

	if m.err != nil {
		b.WriteString("\n\n")
		b.WriteString(styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
	}
	if m.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.warn.Render(m.notice))
	}
	return b.String()
}

func (m *Model) renderSteps() string {
	parts := make([]string, 0, len(workflow.Steps()))
	for _, s := range workflow.Steps() {
		label := fmt.Sprintf("%d %s", int(s)+1, s)
		switch {
		case s == m.state.Step && !m.state.Complete:
			parts = append(parts, styles.active.Render(label))
		case s < m.state.Step || m.state.Complete:
			parts = append(parts, styles.ok.Render(label))
		default:
			parts = append(parts, styles.muted.Render(label))
		}
	}
	return strings.Join(parts, styles.muted.Render(" › "))
}

func (m *Model) renderSearch() string {
	title := styles.title.Render("Which artist?")

	status := ""
	if m.searching {
		status = fmt.Sprintf("\n\n%s Searching...", m.spinner.View())
	}

	keys := []key.Binding{m.keys.search}
	if m.redirect != "" {
		keys = append(keys, m.keys.open)
	}
	helpView := m.help.ShortHelpView(keys)
	return fmt.Sprintf("%s\n%s%s\n\n%s", title, m.input.View(), status, helpView)
}

func (m *Model) renderArtistList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.artistList.View(), helpView)
}

func (m *Model) renderPreview() string {
	artist := ""
	if m.state.Artist != nil {
		artist = m.state.Artist.String()
	}
	title := styles.title.Render(fmt.Sprintf("Setlist for %s", artist))

	switch {
	case m.state.Failure != nil:
		f := m.state.Failure
		body := styles.err.Render(fmt.Sprintf("✗ %s", f.Error()))
		keys := []key.Binding{m.keys.retry, m.keys.back, m.keys.quit}
		if f.Reason == models.ReasonUnauthenticated && f.RedirectURL != "" {
			body += fmt.Sprintf("\n\nSign in at %s", f.RedirectURL)
			keys = append([]key.Binding{m.keys.open}, keys...)
		}
		return fmt.Sprintf("%s\n%s\n\n%s", title, body, m.help.ShortHelpView(keys))

	case !m.state.Setlist.Empty():
		var songs strings.Builder
		for i, s := range m.state.Setlist.Songs {
			fmt.Fprintf(&songs, "%2d. %s\n", i+1, s)
		}
		keys := []key.Binding{m.keys.enter, m.keys.back, m.keys.quit}
		return fmt.Sprintf("%s\n%s\n%s", title, songs.String(), m.help.ShortHelpView(keys))

	default:
		line := fmt.Sprintf("%s Generating setlist...", m.spinner.View())
		bar := ""
		if p := m.state.Progress; p != nil {
			line = fmt.Sprintf("%s %s", m.spinner.View(), p.Message)
			bar = "\n\n" + m.progress.ViewAs(float64(p.Step)/float64(p.Total))
		}
		keys := []key.Binding{m.keys.back, m.keys.quit}
		return fmt.Sprintf("%s\n%s%s\n\n%s", title, line, bar, m.help.ShortHelpView(keys))
	}
}

func (m *Model) renderConfirm() string {
	shows := ""
	if n := len(m.state.Setlist.Shows); n > 0 {
		shows = styles.help.Render(fmt.Sprintf("\nBased on %d recent shows", n))
	}
	keys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	if m.redirect != "" && m.err != nil {
		keys = append(keys, m.keys.open)
	}
	return fmt.Sprintf("%s%s\n\n%s", m.songList.View(), shows, m.help.ShortHelpView(keys))
}

func (m *Model) renderResult() string {
	if m.playlist == nil {
		return styles.err.Render("No playlist available")
	}

	title := styles.ok.Render("✓ Playlist created!")
	info := fmt.Sprintf("\nName: %s\nURL: %s", m.playlist.Name, m.playlist.URL)
	if m.playlist.SongsAdded > 0 {
		info += fmt.Sprintf("\nSongs added: %d", m.playlist.SongsAdded)
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	return fmt.Sprintf("%s\n%s\n\n%s", title, info, m.help.ShortHelpView(helpKeys))
}
