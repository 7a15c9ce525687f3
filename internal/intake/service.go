// Package intake wires the session gate, the form, the recorder and the
// report sender into the operations the UI triggers.
//
// Every operation converts its failure into a notice at its own boundary.
// Nothing is retried and no failure ends the process. A failed login simply
// leaves the session unauthenticated.
package intake

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/five82/intake/internal/apperr"
	"github.com/five82/intake/internal/audio"
	"github.com/five82/intake/internal/directory"
	"github.com/five82/intake/internal/form"
	"github.com/five82/intake/internal/notice"
	"github.com/five82/intake/internal/revision"
	"github.com/five82/intake/internal/session"
	"github.com/five82/intake/internal/state"
	"github.com/five82/intake/internal/submit"
)

// ErrBusy is returned when the same operation is already in flight.
var ErrBusy = errors.New("operation already in progress")

// Authenticator logs a clinician in. *session.Gate implements it.
type Authenticator interface {
	Login(ctx context.Context, creds session.Credentials) (directory.Directory, error)
}

// Submitter validates and delivers a report. *submit.Sender implements it.
type Submitter interface {
	Submit(ctx context.Context, req submit.Request) (submit.Envelope, error)
}

// Recorder captures the audio note. *audio.Recorder implements it.
type Recorder interface {
	Start(ctx context.Context) error
	Stop() (audio.Note, error)
	Discard()
	DiscardIf(note audio.Note) bool
	Reset()
	Status() audio.Status
	Close() error
}

// Deps are the collaborators of a Service.
type Deps struct {
	Revision  revision.Revision
	Gate      Authenticator
	Submitter Submitter
	Recorder  Recorder
	Board     *notice.Board
	Logger    *zap.Logger
}

// Service runs the intake operations for one process lifetime.
type Service struct {
	id       string
	rev      revision.Revision
	gate     Authenticator
	sender   Submitter
	recorder Recorder
	store    *state.Store
	board    *notice.Board
	logger   *zap.Logger
}

// New builds a Service.
func New(deps Deps) (*Service, error) {
	if deps.Gate == nil {
		return nil, errors.New("intake: gate is required")
	}
	if deps.Submitter == nil {
		return nil, errors.New("intake: submitter is required")
	}
	if deps.Recorder == nil {
		return nil, errors.New("intake: recorder is required")
	}
	if deps.Board == nil {
		deps.Board = notice.NewBoard(notice.DefaultTTL, nil)
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Revision.Name == "" {
		rev, err := revision.Lookup("")
		if err != nil {
			return nil, err
		}
		deps.Revision = rev
	}

	id := uuid.NewString()
	return &Service{
		id:       id,
		rev:      deps.Revision,
		gate:     deps.Gate,
		sender:   deps.Submitter,
		recorder: deps.Recorder,
		store:    &state.Store{},
		board:    deps.Board,
		logger:   deps.Logger.With(zap.String("session_id", id), zap.String("revision", deps.Revision.Name)),
	}, nil
}

// SessionID identifies this process in the logs. It is never sent.
func (s *Service) SessionID() string { return s.id }

// Revision returns the active form revision.
func (s *Service) Revision() revision.Revision { return s.rev }

// Snapshot returns the current session.
func (s *Service) Snapshot() state.Snapshot { return s.store.Snapshot() }

// Recording returns the recorder status.
func (s *Service) Recording() audio.Status { return s.recorder.Status() }

// Notices returns the notices still on screen.
func (s *Service) Notices() []notice.Notice { return s.board.Active() }

// AttemptLogin authenticates creds. On success the session directory is
// replaced by the one the gate returned.
func (s *Service) AttemptLogin(ctx context.Context, creds session.Credentials) error {
	if !s.store.BeginLogin() {
		s.board.Push(notice.Info("Signing in", "A login is already in progress."))
		return ErrBusy
	}
	dir, err := s.gate.Login(ctx, creds)
	s.store.FinishLogin(creds, dir, err)
	if err != nil {
		s.logger.Info("login failed", zap.String("kind", string(apperr.KindOf(err))), zap.Int("status", apperr.StatusCode(err)))
		s.board.Push(notice.FromError(err))
		return err
	}
	s.logger.Info("session started",
		zap.Int("veterinarians", len(dir.Veterinarians)),
		zap.Int("clinics", len(dir.Clinics)),
	)
	s.board.Push(notice.Success("Login successful", "Welcome "+s.store.Snapshot().User))
	return nil
}

// Logout ends the session. Credentials, directory, form, selections and any
// audio note are discarded.
func (s *Service) Logout() {
	s.recorder.Reset()
	s.store.Logout()
	s.board.Clear()
	s.logger.Info("session ended")
}

// Edit applies fn to the form.
func (s *Service) Edit(fn func(*form.Form)) {
	s.store.EditForm(fn)
}

// ClearForm resets every field, selection and the audio note.
func (s *Service) ClearForm() {
	s.recorder.Reset()
	s.store.ClearForm()
	s.logger.Debug("form cleared")
}

// StartRecording starts capturing the audio note.
func (s *Service) StartRecording(ctx context.Context) error {
	if err := s.recorder.Start(ctx); err != nil {
		s.fail("recording not started", err)
		return err
	}
	s.logger.Info("recording started")
	return nil
}

// StopRecording finalises the audio note. Stopping while idle does nothing.
func (s *Service) StopRecording() error {
	note, err := s.recorder.Stop()
	if err != nil {
		s.fail("recording failed", err)
		return err
	}
	if !note.IsZero() {
		s.logger.Info("recording captured",
			zap.Duration("duration", note.Duration),
			zap.Int("bytes", note.Size),
			zap.String("captured_mime", note.Captured),
		)
	}
	return nil
}

// DiscardRecording drops a captured note.
func (s *Service) DiscardRecording() {
	s.recorder.Discard()
}

// Submit sends the current form. Submissions are not deduplicated: calling
// Submit again after it returns sends another report.
//
// Revisions that reset after submitting only clear what was sent. Edits made
// and recordings started while the report was in flight are kept.
func (s *Service) Submit(ctx context.Context) error {
	if !s.store.BeginSubmit() {
		s.board.Push(notice.Info("Sending", "A report is already being sent."))
		return ErrBusy
	}
	snap := s.store.Snapshot()
	req := submit.Request{
		Revision:  s.rev,
		User:      snap.User,
		Form:      snap.Form,
		Note:      s.recorder.Status().Note,
		Directory: snap.Directory,
	}

	started := time.Now()
	_, err := s.sender.Submit(ctx, req)
	cleared := s.store.FinishSubmit(err, req.Form, s.rev.ResetAfterSubmit)
	if err != nil {
		s.fail("submission failed", err)
		return err
	}
	audioCleared := false
	if s.rev.ResetAfterSubmit {
		audioCleared = s.recorder.DiscardIf(req.Note)
	}
	s.logger.Info("submission accepted",
		zap.String("report", req.Form.Selections.ReportType),
		zap.Bool("audio", !req.Note.IsZero()),
		zap.Bool("form_cleared", cleared),
		zap.Bool("audio_cleared", audioCleared),
		zap.Duration("elapsed", time.Since(started)),
	)
	s.board.Push(notice.Success("Report sent", "The report was sent to the processing system."))
	return nil
}

// Close releases the recorder.
func (s *Service) Close() error {
	return s.recorder.Close()
}

func (s *Service) fail(msg string, err error) {
	s.store.RecordError(err)
	s.logger.Warn(msg,
		zap.String("kind", string(apperr.KindOf(err))),
		zap.Strings("missing", apperr.MissingFields(err)),
		zap.Error(err),
	)
	s.board.Push(notice.FromError(err))
}
