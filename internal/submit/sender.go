package submit

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/five82/intake/internal/apperr"
	"github.com/five82/intake/internal/revision"
	"github.com/five82/intake/internal/webhook"
)

const op = "submit"

// Sender delivers reports to the automation webhook.
type Sender struct {
	poster   webhook.Poster
	fixedURL string
	now      func() time.Time
	logger   *zap.Logger
}

// Option configures a Sender.
type Option func(*Sender)

// WithClock overrides the envelope timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Sender) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the sender logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Sender) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSender builds a Sender. fixedURL is used by revisions whose webhook is
// not typed by the user.
func NewSender(poster webhook.Poster, fixedURL string, opts ...Option) *Sender {
	s := &Sender{
		poster:   poster,
		fixedURL: fixedURL,
		now:      time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TargetURL returns the webhook a request is delivered to.
func (s *Sender) TargetURL(req Request) string {
	if req.Revision.Webhook == revision.WebhookUser {
		return strings.TrimSpace(req.Form.Selections.WebhookURL)
	}
	return s.fixedURL
}

// Submit validates req, builds its envelope and posts it once. The response
// is not inspected: any answer counts as accepted. Nothing is retried and
// repeated calls send repeated reports.
func (s *Sender) Submit(ctx context.Context, req Request) (Envelope, error) {
	if missing := Validate(req.Revision, req.Form, req.Note); len(missing) > 0 {
		return Envelope{}, apperr.Validation(op, missing...)
	}

	env := Build(req, s.now())
	fields, err := env.Fields(req.Revision.DirectoryEncoding)
	if err != nil {
		return Envelope{}, apperr.Submission(op, err)
	}
	if err := s.Send(ctx, s.TargetURL(req), fields); err != nil {
		return Envelope{}, err
	}
	return env, nil
}

// Send posts fields to url. Transport failures are connectivity errors;
// anything else is a submission error.
func (s *Sender) Send(ctx context.Context, url string, fields []webhook.Field) error {
	started := time.Now()
	resp, err := s.poster.PostForm(ctx, url, fields)
	if err != nil {
		s.logger.Warn("report not delivered", zap.Error(err))
		if errors.Is(err, webhook.ErrTransport) {
			return apperr.Connectivity(op, err)
		}
		return apperr.Submission(op, err)
	}
	s.logger.Info("report sent",
		zap.Int("fields", len(fields)),
		zap.Int("status", resp.Status),
		zap.Duration("elapsed", time.Since(started)),
	)
	return nil
}
