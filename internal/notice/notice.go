// Package notice turns operation results into short-lived messages for the
// clinician.
package notice

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/five82/intake/internal/apperr"
)

// DefaultTTL is how long a notice stays visible.
const DefaultTTL = 3 * time.Second

// Level is the notice severity.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is one transient message.
type Notice struct {
	Level   Level
	Title   string
	Text    string
	Posted  time.Time
	Expires time.Time
}

// Expired reports whether the notice is past its TTL at now.
func (n Notice) Expired(now time.Time) bool {
	return !n.Expires.IsZero() && !now.Before(n.Expires)
}

// Success builds a success notice.
func Success(title, text string) Notice {
	return Notice{Level: LevelSuccess, Title: title, Text: text}
}

// Info builds an informational notice.
func Info(title, text string) Notice {
	return Notice{Level: LevelInfo, Title: title, Text: text}
}

// FromError describes err for the clinician. Every error kind gets the same
// treatment: a transient error notice.
func FromError(err error) Notice {
	n := Notice{Level: LevelError, Title: "Error"}
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		n.Title = "Missing fields"
		n.Text = "Complete the required fields: " + strings.Join(apperr.MissingFields(err), ", ")
	case apperr.KindAuth:
		n.Title = "Login failed"
		if status := apperr.StatusCode(err); status != 0 && status/100 != 2 {
			n.Text = "Server error (" + strconv.Itoa(status) + "). Invalid credentials or server problem."
		} else {
			n.Text = "Invalid credentials."
		}
	case apperr.KindProtocol:
		n.Title = "Login failed"
		n.Text = "The server sent a response that could not be read."
	case apperr.KindConnectivity:
		n.Title = "Connection error"
		n.Text = "Could not reach the server. Check your connection and try again."
	case apperr.KindPermission:
		n.Title = "Microphone unavailable"
		n.Text = "Could not access the microphone. Check the input device and permissions."
	case apperr.KindSubmission:
		n.Title = "Report not sent"
		n.Text = "Could not send the report. Check the webhook URL."
	case "":
		return Notice{}
	default:
		n.Text = err.Error()
	}
	return n
}

// Board holds the notices currently on screen.
type Board struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items []Notice
}

// NewBoard builds a board. A non-positive ttl selects DefaultTTL.
func NewBoard(ttl time.Duration, now func() time.Time) *Board {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Board{ttl: ttl, now: now}
}

// Push posts n and returns it with its timestamps set. Zero notices are
// ignored.
func (b *Board) Push(n Notice) Notice {
	if n.Title == "" && n.Text == "" {
		return n
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	n.Posted = b.now()
	n.Expires = n.Posted.Add(b.ttl)
	b.items = append(b.items, n)
	return n
}

// Active returns the unexpired notices, newest last.
func (b *Board) Active() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pruneLocked()
	out := make([]Notice, len(b.items))
	copy(out, b.items)
	return out
}

// Prune drops expired notices and reports whether any remain.
func (b *Board) Prune() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pruneLocked()
	return len(b.items) > 0
}

// Clear drops every notice.
func (b *Board) Clear() {
	b.mu.Lock()
	b.items = nil
	b.mu.Unlock()
}

func (b *Board) pruneLocked() {
	now := b.now()
	kept := b.items[:0]
	for _, n := range b.items {
		if !n.Expired(now) {
			kept = append(kept, n)
		}
	}
	b.items = kept
}
