// Package repositories implements SQLite persistence for cached lookups.
//
// Only artist search results are stored. Workflow and acquisition state is never persisted,
// so a restart always begins at the artist step.
//
// Key Implementations:
//   - [ArtistCacheRepository] : search results keyed by [NormalizeQuery], expired by age
package repositories
