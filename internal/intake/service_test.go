package intake

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/five82/intake/internal/apperr"
	"github.com/five82/intake/internal/audio"
	"github.com/five82/intake/internal/directory"
	"github.com/five82/intake/internal/form"
	"github.com/five82/intake/internal/notice"
	"github.com/five82/intake/internal/revision"
	"github.com/five82/intake/internal/session"
	"github.com/five82/intake/internal/submit"
)

type mockGate struct{ mock.Mock }

func (m *mockGate) Login(ctx context.Context, creds session.Credentials) (directory.Directory, error) {
	args := m.Called(ctx, creds)
	dir, _ := args.Get(0).(directory.Directory)
	return dir, args.Error(1)
}

type mockSubmitter struct{ mock.Mock }

func (m *mockSubmitter) Submit(ctx context.Context, req submit.Request) (submit.Envelope, error) {
	args := m.Called(ctx, req)
	env, _ := args.Get(0).(submit.Envelope)
	return env, args.Error(1)
}

type fakeRecorder struct {
	mu       sync.Mutex
	status   audio.Status
	startErr error
	resets   int
	closed   bool
}

func (f *fakeRecorder) Start(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.status = audio.Status{State: audio.StateRecording}
	return nil
}

func (f *fakeRecorder) Stop() (audio.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status.State != audio.StateRecording {
		return audio.Note{}, nil
	}
	note := audio.Note{DataURI: "data:audio/mp4;base64,AAE=", Captured: audio.PreferredMIME, Size: 2, Duration: time.Second}
	f.status = audio.Status{State: audio.StateCaptured, Elapsed: time.Second, Note: note}
	return note, nil
}

func (f *fakeRecorder) Discard() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status.State == audio.StateCaptured {
		f.status = audio.Status{State: audio.StateIdle}
	}
}

func (f *fakeRecorder) DiscardIf(note audio.Note) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status.State != audio.StateCaptured || note.IsZero() || f.status.Note.DataURI != note.DataURI {
		return false
	}
	f.status = audio.Status{State: audio.StateIdle}
	return true
}

func (f *fakeRecorder) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
	f.status = audio.Status{State: audio.StateIdle}
}

func (f *fakeRecorder) Status() audio.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeRecorder) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

type fixture struct {
	svc      *Service
	gate     *mockGate
	sender   *mockSubmitter
	recorder *fakeRecorder
}

func newFixture(t *testing.T, revName string) fixture {
	t.Helper()
	rev, err := revision.Lookup(revName)
	require.NoError(t, err)
	recorder := &fakeRecorder{status: audio.Status{State: audio.StateIdle}}
	f := fixture{gate: new(mockGate), sender: new(mockSubmitter), recorder: recorder}
	f.svc, err = New(Deps{Revision: rev, Gate: f.gate, Submitter: f.sender, Recorder: f.recorder})
	require.NoError(t, err)
	return f
}

func (f fixture) login(t *testing.T) {
	t.Helper()
	f.gate.On("Login", mock.Anything, session.Credentials{Identifier: " Testing", Secret: "20202"}).
		Return(directory.Default(), nil).Once()
	require.NoError(t, f.svc.AttemptLogin(context.Background(), session.Credentials{Identifier: " Testing", Secret: "20202"}))
}

func fillForm(f *form.Form) {
	f.Patient.Name = "Luna"
	f.Patient.Tutor = "Marta"
	f.SetSpecies(form.SpeciesCat)
	f.Patient.Sex = form.SexFemale
	f.Patient.Status = form.StatusIntact
	f.SelectReport("consulta")
	f.SelectVeterinarian("001")
	f.SelectClinic("001")
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(Deps{})
	assert.Error(t, err)

	svc, err := New(Deps{Gate: new(mockGate), Submitter: new(mockSubmitter), Recorder: &fakeRecorder{}})
	require.NoError(t, err)
	assert.Equal(t, revision.Default, svc.Revision().Name)
	assert.Len(t, svc.SessionID(), 36)
}

func TestAttemptLogin_Success(t *testing.T) {
	f := newFixture(t, "directory")

	f.login(t)

	snap := f.svc.Snapshot()
	assert.True(t, snap.Authenticated)
	assert.Equal(t, "Testing", snap.User)
	assert.Equal(t, directory.Default(), snap.Directory)
	notices := f.svc.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, notice.LevelSuccess, notices[0].Level)
	assert.Equal(t, "Welcome Testing", notices[0].Text)
}

func TestAttemptLogin_FailureLeavesSessionUnauthenticated(t *testing.T) {
	f := newFixture(t, "directory")
	f.gate.On("Login", mock.Anything, mock.Anything).Return(directory.Directory{}, apperr.Auth("login", 401, "rejected"))

	err := f.svc.AttemptLogin(context.Background(), session.Credentials{Identifier: "u", Secret: "bad"})

	assert.True(t, apperr.Is(err, apperr.KindAuth))
	snap := f.svc.Snapshot()
	assert.False(t, snap.Authenticated)
	assert.False(t, snap.LoggingIn)
	require.Len(t, f.svc.Notices(), 1)
	assert.Equal(t, notice.LevelError, f.svc.Notices()[0].Level)
}

func TestAttemptLogin_BusyWhileInFlight(t *testing.T) {
	f := newFixture(t, "directory")
	release := make(chan struct{})
	entered := make(chan struct{})
	f.gate.On("Login", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(directory.Default(), nil).Once()

	done := make(chan error, 1)
	go func() {
		done <- f.svc.AttemptLogin(context.Background(), session.Credentials{Identifier: "u", Secret: "p"})
	}()
	<-entered

	assert.True(t, f.svc.Snapshot().LoggingIn)
	assert.ErrorIs(t, f.svc.AttemptLogin(context.Background(), session.Credentials{Identifier: "u", Secret: "p"}), ErrBusy)
	notices := f.svc.Notices()
	require.Len(t, notices, 1)
	assert.Equal(t, notice.LevelInfo, notices[0].Level)
	assert.Equal(t, "Signing in", notices[0].Title)

	close(release)
	require.NoError(t, <-done)
	f.gate.AssertNumberOfCalls(t, "Login", 1)
}

func TestSubmit_SendsSnapshotAndResets(t *testing.T) {
	f := newFixture(t, "directory")
	f.login(t)
	f.svc.Edit(fillForm)
	require.NoError(t, f.svc.StartRecording(context.Background()))
	require.NoError(t, f.svc.StopRecording())

	var got submit.Request
	f.sender.On("Submit", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(1).(submit.Request) }).
		Return(submit.Envelope{}, nil).Once()

	require.NoError(t, f.svc.Submit(context.Background()))

	assert.Equal(t, "Testing", got.User)
	assert.Equal(t, "Luna", got.Form.Patient.Name)
	assert.False(t, got.Note.IsZero())
	assert.Equal(t, "directory", got.Revision.Name)
	assert.Len(t, got.Directory.Veterinarians, 3)

	snap := f.svc.Snapshot()
	assert.True(t, snap.Form.IsZero(), "directory revision resets the form after submit")
	assert.Equal(t, 1, snap.Submissions)
	assert.True(t, snap.Authenticated)
	assert.Equal(t, audio.StateIdle, f.svc.Recording().State)
}

func TestSubmit_KeepsWorkStartedWhileSending(t *testing.T) {
	f := newFixture(t, "directory")
	f.login(t)
	f.svc.Edit(fillForm)
	require.NoError(t, f.svc.StartRecording(context.Background()))
	require.NoError(t, f.svc.StopRecording())

	release := make(chan struct{})
	entered := make(chan struct{})
	f.sender.On("Submit", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(submit.Envelope{}, nil).Once()

	done := make(chan error, 1)
	go func() { done <- f.svc.Submit(context.Background()) }()
	<-entered

	assert.ErrorIs(t, f.svc.Submit(context.Background()), ErrBusy)
	assert.Equal(t, "Sending", f.svc.Notices()[len(f.svc.Notices())-1].Title)

	// The clinician moves on to the next patient while the report is sent.
	f.svc.DiscardRecording()
	require.NoError(t, f.svc.StartRecording(context.Background()))
	f.svc.Edit(func(fm *form.Form) { fm.Patient.Name = "Next patient" })

	close(release)
	require.NoError(t, <-done)

	snap := f.svc.Snapshot()
	assert.Equal(t, "Next patient", snap.Form.Patient.Name)
	assert.Equal(t, 1, snap.Submissions)
	assert.Equal(t, audio.StateRecording, f.svc.Recording().State)
	assert.Equal(t, 0, f.recorder.resets)
	f.sender.AssertNumberOfCalls(t, "Submit", 1)
}

func TestSubmit_FailureKeepsForm(t *testing.T) {
	f := newFixture(t, "directory")
	f.login(t)
	f.svc.Edit(fillForm)
	f.sender.On("Submit", mock.Anything, mock.Anything).
		Return(submit.Envelope{}, apperr.Connectivity("submit", errors.New("refused"))).Once()

	err := f.svc.Submit(context.Background())

	assert.True(t, apperr.Is(err, apperr.KindConnectivity))
	snap := f.svc.Snapshot()
	assert.Equal(t, "Luna", snap.Form.Patient.Name)
	assert.False(t, snap.Submitting)
	assert.Equal(t, 0, snap.Submissions)
	notices := f.svc.Notices()
	require.NotEmpty(t, notices)
	assert.Equal(t, "Connection error", notices[len(notices)-1].Title)
}

func TestSubmit_ExtendedRevisionKeepsFormAfterSuccess(t *testing.T) {
	f := newFixture(t, "extended")
	f.login(t)
	f.svc.Edit(fillForm)
	f.sender.On("Submit", mock.Anything, mock.Anything).Return(submit.Envelope{}, nil).Twice()

	require.NoError(t, f.svc.Submit(context.Background()))
	require.NoError(t, f.svc.Submit(context.Background()))

	assert.Equal(t, "Luna", f.svc.Snapshot().Form.Patient.Name)
	assert.Equal(t, 2, f.svc.Snapshot().Submissions, "repeated submissions are not deduplicated")
	f.sender.AssertNumberOfCalls(t, "Submit", 2)
}

func TestStartRecording_PermissionErrorBecomesNotice(t *testing.T) {
	f := newFixture(t, "directory")
	f.recorder.startErr = apperr.Permission("record", errors.New("denied"))

	err := f.svc.StartRecording(context.Background())

	assert.True(t, apperr.Is(err, apperr.KindPermission))
	assert.Equal(t, audio.StateIdle, f.svc.Recording().State)
	require.Len(t, f.svc.Notices(), 1)
	assert.Equal(t, "Microphone unavailable", f.svc.Notices()[0].Title)
}

func TestStopRecording_IdleIsNoop(t *testing.T) {
	f := newFixture(t, "directory")

	assert.NoError(t, f.svc.StopRecording())
	assert.Empty(t, f.svc.Notices())
}

func TestLogout_ClearsSessionAndAudio(t *testing.T) {
	f := newFixture(t, "directory")
	f.login(t)
	f.svc.Edit(fillForm)
	require.NoError(t, f.svc.StartRecording(context.Background()))
	require.NoError(t, f.svc.StopRecording())

	f.svc.Logout()

	snap := f.svc.Snapshot()
	assert.False(t, snap.Authenticated)
	assert.True(t, snap.Form.IsZero())
	assert.True(t, snap.Directory.IsEmpty())
	assert.True(t, f.svc.Recording().Note.IsZero())
	assert.Equal(t, 1, f.recorder.resets)
}

func TestClearFormAndDiscard(t *testing.T) {
	f := newFixture(t, "directory")
	f.login(t)
	f.svc.Edit(fillForm)
	require.NoError(t, f.svc.StartRecording(context.Background()))
	require.NoError(t, f.svc.StopRecording())

	f.svc.DiscardRecording()
	assert.Equal(t, audio.StateIdle, f.svc.Recording().State)

	f.svc.ClearForm()
	assert.True(t, f.svc.Snapshot().Form.IsZero())
	assert.True(t, f.svc.Snapshot().Authenticated)

	require.NoError(t, f.svc.Close())
	assert.True(t, f.recorder.closed)
}
