package audio

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/five82/intake/internal/apperr"
)

const defaultTick = time.Second

// Status is a point-in-time view of the recorder.
type Status struct {
	State   State
	Elapsed time.Duration
	Note    Note
}

// Recorder owns at most one capture session at a time.
type Recorder struct {
	device      Device
	constraints Constraints
	tick        time.Duration
	logger      *zap.Logger

	mu       sync.Mutex
	state    State
	opening  bool   // device.Open in progress
	gen      uint64 // bumped by Reset and Close to abandon in-flight Start/Stop
	capture  Capture
	mimeType string
	note     Note

	seconds  atomic.Int64
	stopTick chan struct{}
	tickDone chan struct{}
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithTickInterval overrides the one-second elapsed counter period.
func WithTickInterval(d time.Duration) Option {
	return func(r *Recorder) {
		if d > 0 {
			r.tick = d
		}
	}
}

// WithConstraints overrides the capture constraints.
func WithConstraints(c Constraints) Option {
	return func(r *Recorder) { r.constraints = c }
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Recorder) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRecorder builds an idle recorder on top of device.
func NewRecorder(device Device, opts ...Option) *Recorder {
	r := &Recorder{
		device:      device,
		constraints: DefaultConstraints(),
		tick:        defaultTick,
		logger:      zap.NewNop(),
		state:       StateIdle,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Status returns the current state, elapsed time and note.
func (r *Recorder) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Status{
		State:   r.state,
		Elapsed: r.elapsed(),
		Note:    r.note,
	}
}

// Start begins a new recording. It is a no-op while already recording,
// stopping or opening the device. Starting from the captured state replaces
// the previous clip once the device has been opened; if the device cannot be
// opened the previous state is kept. The device is opened without holding
// the lock, so Status stays responsive.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.state == StateRecording || r.state == StateStopping || r.opening {
		r.mu.Unlock()
		return nil
	}
	if r.device == nil {
		r.mu.Unlock()
		return apperr.Permission("start recording", errors.New("no capture device configured"))
	}

	mimeType := PreferredMIME
	if !r.device.Supports(mimeType) {
		mimeType = FallbackMIME
	}
	r.opening = true
	gen := r.gen
	constraints := r.constraints
	r.mu.Unlock()

	capture, err := r.device.Open(ctx, constraints, mimeType)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.opening = false
	if err != nil {
		r.logger.Warn("microphone unavailable", zap.Error(err))
		return apperr.Permission("start recording", err)
	}
	if r.gen != gen {
		// Reset or Close ran while the device was opening.
		if err := capture.Release(); err != nil {
			r.logger.Warn("release capture", zap.Error(err))
		}
		return nil
	}

	r.capture = capture
	r.mimeType = mimeType
	r.note = Note{}
	r.seconds.Store(0)
	r.state = StateRecording
	r.startTicker()

	r.logger.Info("recording started", zap.String("mime_type", mimeType))
	return nil
}

// Stop finalizes the current recording into a Note. It is a no-op when not
// recording. While the clip is finalized the recorder reports StateStopping
// and the lock is not held.
func (r *Recorder) Stop() (Note, error) {
	r.mu.Lock()
	if r.state != StateRecording {
		r.mu.Unlock()
		return Note{}, nil
	}
	mimeType := r.mimeType
	elapsed := r.elapsed()
	capture := r.detach()
	r.state = StateStopping
	gen := r.gen
	r.mu.Unlock()

	data, finishErr := capture.Finish()
	if err := capture.Release(); err != nil {
		r.logger.Warn("release capture", zap.Error(err))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gen != gen {
		// Reset or Close abandoned this clip while it was being finalized.
		return Note{}, nil
	}

	if finishErr != nil {
		r.state = StateIdle
		r.seconds.Store(0)
		r.logger.Warn("recording failed", zap.Error(finishErr))
		return Note{}, apperr.Permission("stop recording", finishErr)
	}

	r.note = Note{
		DataURI:  Relabel(EncodeDataURI(data, mimeType), mimeType),
		Captured: mimeType,
		Duration: elapsed,
		Size:     len(data),
	}
	r.state = StateCaptured

	r.logger.Info("recording captured",
		zap.String("mime_type", mimeType),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", elapsed),
	)
	return r.note, nil
}

// Discard drops a captured clip and returns to idle. It does nothing while
// recording; use Stop or Close first.
func (r *Recorder) Discard() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateCaptured {
		return
	}
	r.note = Note{}
	r.seconds.Store(0)
	r.state = StateIdle
}

// Reset abandons any recording in progress and clears the clip. A clip
// being finalized by Stop is dropped.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.gen++
	if r.state == StateRecording {
		if err := r.teardown(); err != nil {
			r.logger.Warn("release capture", zap.Error(err))
		}
	}
	r.note = Note{}
	r.seconds.Store(0)
	r.state = StateIdle
}

// DiscardIf drops the captured clip only when it is still note. It reports
// whether the clip was dropped.
func (r *Recorder) DiscardIf(note Note) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateCaptured || note.IsZero() || r.note.DataURI != note.DataURI {
		return false
	}
	r.note = Note{}
	r.seconds.Store(0)
	r.state = StateIdle
	return true
}

// Close releases the device if a recording is in progress. The clip, if any,
// is kept.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateRecording && r.state != StateStopping && !r.opening {
		return nil
	}
	r.gen++
	if r.state == StateCaptured {
		// Only a Start was in flight; the clip stays.
		return nil
	}
	var err error
	if r.state == StateRecording {
		err = r.teardown()
	}
	r.seconds.Store(0)
	r.state = StateIdle
	return err
}

func (r *Recorder) elapsed() time.Duration {
	return time.Duration(r.seconds.Load()) * time.Second
}

func (r *Recorder) startTicker() {
	stop := make(chan struct{})
	done := make(chan struct{})
	r.stopTick = stop
	r.tickDone = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(r.tick)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				r.seconds.Add(1)
			}
		}
	}()
}

// detach stops the elapsed counter and hands back the live capture, leaving
// the recorder without one. Every exit from StateRecording goes through here.
// Callers hold r.mu and must release the returned capture.
func (r *Recorder) detach() Capture {
	if r.stopTick != nil {
		close(r.stopTick)
		<-r.tickDone
		r.stopTick = nil
		r.tickDone = nil
	}
	capture := r.capture
	r.capture = nil
	return capture
}

// teardown detaches and releases the capture. Callers hold r.mu.
func (r *Recorder) teardown() error {
	if capture := r.detach(); capture != nil {
		return capture.Release()
	}
	return nil
}
