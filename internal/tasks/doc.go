// Package tasks runs setlist acquisitions outside the interactive workflow, with real-time progress reporting.
//
// # Core Operations
//
//  1. [Collect] : Follow one [acquisition.Session] to its terminal notification
//     - Hands progress notifications to a callback
//     - Returns the setlist, the [models.Failure], or a cancellation error
//     - Waits for the session to stop so its metrics are recorded
//
//  2. [Batch.Export] : Export setlists for many artists
//     - Worker pool, one acquirer per worker
//     - Acquisitions are started through a shared rate limiter
//     - Each setlist is written with the formatter package
//     - A manifest summarizes every artist, including failures
//
// # Progress Reporting
//
// [ProgressUpdate] carries phase, step counters, messages, and optional data for richer rendering.
// Updates use select with default so a slow reader never stalls the pool.
package tasks
