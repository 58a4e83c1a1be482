// Package acquisition obtains a generated setlist for an artist.
//
// An [Engine] runs one [Session] at a time. A session first checks that the
// user is authenticated, then subscribes to the push transport and arms a
// failover timer. If push stays silent past the timer, fails, or opens with a
// payload that is not a notification, the session switches to the pull
// transport exactly once. Switching never goes back.
//
// Cancelling a running session stops it from handing out any further
// notification, even one already buffered. Once a terminal notification has
// been queued, Cancel does nothing and the buffered notifications are still
// delivered.
package acquisition
