// Package logtail reads the intake log file for the activity view.
//
// # Reading
//
// Read extracts the last maxLines from a file with a ring buffer of size
// maxLines, so memory stays O(maxLines) whatever the file size:
//
//  1. Allocate a ring buffer of size maxLines.
//  2. Store each line at the current index, wrapping at maxLines.
//  3. Unroll the ring starting at the oldest entry.
//
// A non-positive maxLines returns every line. A missing file is not an
// error; the log may not have been written yet.
//
// # Following
//
// Follower remembers the byte offset it has consumed and returns only the
// complete lines appended since its previous Poll. A trailing line without a
// newline is held back until it is finished. When the file shrinks (rotated
// or truncated) the follower starts again from the beginning.
//
//	f := logtail.NewFollower(cfg.LogPath())
//	lines, err := f.Poll() // call on each UI refresh tick
//
// Lines are returned verbatim. Formatting of the JSON entries happens in the
// UI.
package logtail
