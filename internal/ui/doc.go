// Package ui implements the setlist wizard as a terminal interface using bubbletea's Elm architecture.
//
// The wizard mirrors the three workflow steps:
//  1. [SearchView] and [ArtistListView] : search for and choose an artist
//  2. [PreviewView] : watch the setlist being generated
//  3. [ConfirmView], [CreatingView] and [ResultView] : create the playlist
//
// The (view) [Model] never owns workflow state. It calls the [Workflow] controller for every transition and
// rereads its snapshot when the [NewNotifier] channel signals that an acquisition notification was applied.
//
// Unauthenticated failures offer to open the backend login page in the browser.
package ui
