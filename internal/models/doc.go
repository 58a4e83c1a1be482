// Package models defines the domain entities shared by the setlistify workflow, the acquisition engine and its transports.
//
// The package contains three groups of types:
//
// 1. Selections: values picked or produced while walking the wizard
//   - [Artist] : The subject of an acquisition, identified by its MusicBrainz id
//   - [Setlist] : The generated artifact, an ordered song list with optional show metadata
//
// 2. Notifications: the normalized stream an acquisition produces
//   - [Notification] : Tagged variant of progress, completion and failure
//   - [Failure] : Terminal failure with a [FailureReason] and optional redirect target
//
// 3. Playlist creation DTOs exchanged with the backend
//   - [PlaylistRequest] : Artist name and songs submitted in the final step
//   - [Playlist] : The created playlist's name and URL
package models
