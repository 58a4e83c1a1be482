// Package services implements the backend collaborators used around the workflow core.
//
// # Backend Client
//
// [APIService] performs raw requests against the backend and returns an [APIResponse].
// [NewHTTPClient] wraps a transport with [oauth2.Transport] so every request carries
// the stored session as a bearer credential.
//
// # Authentication
//
// [AuthService] first checks the stored [oauth2.Token] locally (present and not expired)
// and then asks the backend health endpoint. When the user is signed out the returned
// status carries the login URL to redirect to.
//
// # Artist Search
//
// [SearchService] is rate limited with [rate.Limiter] to stay under the setlist.fm quota
// and caches results through an [ArtistCache], normally backed by SQLite.
//
// # Playlist Creation
//
// [PlaylistService] submits the artist name and songs once. A 401 is returned as a
// [models.Failure] with reason unauthenticated so callers can use errors.As to find the redirect.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrAPIRequest] : HTTP request failed
//   - [shared.ErrServiceUnavailable] : health check could not be answered
//   - [shared.ErrUpstream] : backend returned an error status
//   - [shared.ErrMalformedResponse] : body could not be decoded
//   - [shared.ErrUnauthenticated] : via [models.Failure]
package services
