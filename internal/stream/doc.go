// Package stream implements the streaming display controller: a small state
// machine that turns a response source into a monotonically growing text and
// an IsStreaming flag.
//
// Three sources are supported:
//   - NetworkStream: chunks from an open body are appended verbatim as they
//     arrive.
//   - CompleteText: a fully received answer is revealed one space-delimited
//     token per interval.
//   - FallbackText: a local answer used after a failed call, revealed the
//     same way after a short settle delay.
//
// Every Start or Reset begins a new generation. Work belonging to an older
// generation is cancelled and its late results are discarded.
package stream
