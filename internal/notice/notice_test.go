package notice

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/five82/intake/internal/apperr"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestBoard_NoticesExpireAfterTTL(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	b := NewBoard(0, clock.now)

	posted := b.Push(Success("Report sent", "The report was delivered."))
	assert.Equal(t, clock.t.Add(DefaultTTL), posted.Expires)

	clock.advance(time.Second)
	b.Push(FromError(apperr.Connectivity("submit", errors.New("refused"))))
	assert.Len(t, b.Active(), 2)

	clock.advance(2 * time.Second)
	active := b.Active()
	if assert.Len(t, active, 1) {
		assert.Equal(t, LevelError, active[0].Level)
	}

	clock.advance(time.Second)
	assert.False(t, b.Prune())
	assert.Empty(t, b.Active())
}

func TestBoard_IgnoresZeroNoticeAndClears(t *testing.T) {
	b := NewBoard(time.Minute, nil)
	b.Push(FromError(nil))
	assert.Empty(t, b.Active())

	b.Push(Info("Logged out", ""))
	assert.True(t, b.Prune())
	b.Clear()
	assert.Empty(t, b.Active())
}

func TestFromError(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		wantTitle string
		wantText  string
	}{
		{"validation", apperr.Validation("submit", "name", "tutor"), "Missing fields", "Complete the required fields: name, tutor"},
		{"auth status", apperr.Auth("login", 401, "rejected"), "Login failed", "Server error (401). Invalid credentials or server problem."},
		{"auth refused", apperr.Auth("login", 200, "refused"), "Login failed", "Invalid credentials."},
		{"protocol", apperr.Protocol("login", errors.New("bad json")), "Login failed", "The server sent a response that could not be read."},
		{"permission", apperr.Permission("record", errors.New("denied")), "Microphone unavailable", ""},
		{"submission", apperr.Submission("submit", errors.New("x")), "Report not sent", ""},
		{"internal", errors.New("plain"), "Error", "plain"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := FromError(tc.err)
			assert.Equal(t, LevelError, n.Level)
			assert.Equal(t, tc.wantTitle, n.Title)
			if tc.wantText != "" {
				assert.Equal(t, tc.wantText, n.Text)
			} else {
				assert.NotEmpty(t, n.Text)
			}
		})
	}
}
