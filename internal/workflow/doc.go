// Package workflow holds the three-step setlist to playlist state machine.
//
// Steps are choose artist, preview setlist and create playlist. A step is
// left forward only when its readiness predicate holds. Entering the preview
// step starts an acquisition; leaving it, reselecting the artist or resetting
// cancels that acquisition, and notifications from a cancelled acquisition
// never change the state.
package workflow
