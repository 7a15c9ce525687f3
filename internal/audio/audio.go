// Package audio records the optional voice note attached to a report.
//
// # Overview
//
// A Recorder drives one capture Device through a small state machine:
//
//	idle ──Start──> recording ──Stop──> captured ──Discard──> idle
//	                    │                   │
//	                    └──error/Close──> idle <──Start (new clip)
//
// While recording, an elapsed-seconds counter ticks once per second for
// display. Every transition out of recording goes through a single teardown
// routine that stops the counter and releases the device, so neither the
// ticker nor the microphone can outlive the recording.
//
// # Encoding
//
// A finished clip is encoded as a base64 data URI. The preferred capture
// format is audio/mp4. When the device can only produce the fallback
// (audio/webm with opus), the data URI is relabelled to declare audio/mp4:
// the bytes are unchanged, only the media-type prefix is rewritten, because
// the downstream report generator keys on that label.
//
// # Devices
//
// CommandDevice captures through an external program (ffmpeg by default)
// that streams the encoded container to stdout. Tests use in-memory fakes.
package audio

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// Media types negotiated with the device.
const (
	PreferredMIME = "audio/mp4"
	FallbackMIME  = "audio/webm;codecs=opus"
)

// Constraints are the capture settings requested from the device.
type Constraints struct {
	EchoCancellation bool
	NoiseSuppression bool
	SampleRate       int
}

// DefaultConstraints returns the settings every recording asks for.
func DefaultConstraints() Constraints {
	return Constraints{
		EchoCancellation: true,
		NoiseSuppression: true,
		SampleRate:       44100,
	}
}

// Device opens capture sessions.
type Device interface {
	// Supports reports whether the device can produce mimeType.
	Supports(mimeType string) bool
	// Open requests microphone access and starts capturing. An error means
	// access was denied or no input is available.
	Open(ctx context.Context, c Constraints, mimeType string) (Capture, error)
}

// Capture is one live capture session.
type Capture interface {
	// Finish stops capturing and returns the finalized clip.
	Finish() ([]byte, error)
	// Release stops the underlying input. It is safe to call more than once
	// and after Finish.
	Release() error
}

// State is the recorder's observable state.
type State string

const (
	StateIdle      State = "idle"
	StateRecording State = "recording"
	StateStopping  State = "stopping" // clip being finalized
	StateCaptured  State = "captured"
)

// Note is a finished, encoded clip.
type Note struct {
	DataURI  string
	Captured string // media type the device produced
	Duration time.Duration
	Size     int // raw clip bytes
}

// IsZero reports whether the note is empty.
func (n Note) IsZero() bool {
	return n.DataURI == ""
}

// Declared returns the media type the data URI declares.
func (n Note) Declared() string {
	rest, ok := strings.CutPrefix(n.DataURI, "data:")
	if !ok {
		return ""
	}
	if i := strings.Index(rest, ";base64,"); i >= 0 {
		return rest[:i]
	}
	if i := strings.Index(rest, ","); i >= 0 {
		return rest[:i]
	}
	return ""
}

// EncodeDataURI renders data as a base64 data URI of the given media type.
func EncodeDataURI(data []byte, mimeType string) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Relabel rewrites the media-type prefix of a webm data URI to audio/mp4.
// Only the first occurrence is replaced and the payload is left untouched.
func Relabel(dataURI, capturedMIME string) string {
	if !strings.Contains(capturedMIME, "webm") {
		return dataURI
	}
	return strings.Replace(dataURI, "data:audio/webm", "data:audio/mp4", 1)
}

// FormatElapsed renders a duration as mm:ss.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
