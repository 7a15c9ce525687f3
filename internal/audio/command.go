package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultProgram     = "ffmpeg"
	defaultInputFormat = "pulse"
	defaultInput       = "default"
	startupGrace       = 300 * time.Millisecond
	finishTimeout      = 5 * time.Second
	chunkSize          = 32 * 1024
	stderrLimit        = 4 * 1024
)

// CommandDevice captures from the microphone through an external program
// that writes the encoded container to stdout.
type CommandDevice struct {
	Program         string
	InputFormat     string
	Input           string
	EchoCancelInput string   // input providing echo cancellation, if any
	Formats         []string // media types the program can produce
	Logger          *zap.Logger
}

// Supports reports whether mimeType is in the configured format list.
func (d *CommandDevice) Supports(mimeType string) bool {
	for _, f := range d.Formats {
		if strings.EqualFold(strings.TrimSpace(f), mimeType) {
			return true
		}
	}
	return false
}

// Open starts the capture program. Failures to find or run the program, or
// an exit during the startup grace period, are reported as errors.
func (d *CommandDevice) Open(ctx context.Context, c Constraints, mimeType string) (Capture, error) {
	program := strings.TrimSpace(d.Program)
	if program == "" {
		program = defaultProgram
	}
	path, err := exec.LookPath(program)
	if err != nil {
		return nil, fmt.Errorf("find capture program: %w", err)
	}

	args, err := d.args(c, mimeType)
	if err != nil {
		return nil, err
	}
	d.logger().Debug("starting capture program", zap.String("program", path), zap.Strings("args", args))

	capture, err := startCommand(exec.Command(path, args...))
	if err != nil {
		return nil, err
	}

	timer := time.NewTimer(startupGrace)
	defer timer.Stop()
	select {
	case <-capture.exited:
		return nil, fmt.Errorf("capture program exited: %s", capture.stderrText())
	case <-ctx.Done():
		_ = capture.Release()
		return nil, ctx.Err()
	case <-timer.C:
	}
	return capture, nil
}

func (d *CommandDevice) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

func (d *CommandDevice) args(c Constraints, mimeType string) ([]string, error) {
	inputFormat := strings.TrimSpace(d.InputFormat)
	if inputFormat == "" {
		inputFormat = defaultInputFormat
	}
	input := strings.TrimSpace(d.Input)
	if input == "" {
		input = defaultInput
	}
	if c.EchoCancellation && strings.TrimSpace(d.EchoCancelInput) != "" {
		input = strings.TrimSpace(d.EchoCancelInput)
	}

	args := []string{"-hide_banner", "-loglevel", "error", "-nostdin", "-f", inputFormat, "-i", input, "-ac", "1"}
	if c.SampleRate > 0 {
		args = append(args, "-ar", strconv.Itoa(c.SampleRate))
	}
	if c.NoiseSuppression {
		args = append(args, "-af", "afftdn")
	}

	switch {
	case strings.HasPrefix(mimeType, "audio/mp4"):
		args = append(args, "-c:a", "aac", "-f", "mp4", "-movflags", "frag_keyframe+empty_moov")
	case strings.HasPrefix(mimeType, "audio/webm"):
		args = append(args, "-c:a", "libopus", "-f", "webm")
	default:
		return nil, fmt.Errorf("unsupported capture format %q", mimeType)
	}
	return append(args, "pipe:1"), nil
}

// commandCapture collects a running program's stdout.
type commandCapture struct {
	cmd    *exec.Cmd
	exited chan struct{}

	mu      sync.Mutex
	buf     bytes.Buffer
	waitErr error
	stderr  limitedBuffer
}

func startCommand(cmd *exec.Cmd) (*commandCapture, error) {
	c := &commandCapture{cmd: cmd, exited: make(chan struct{})}
	cmd.Stderr = &c.stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("capture stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start capture program: %w", err)
	}

	go func() {
		c.collect(stdout)
		err := cmd.Wait()
		c.mu.Lock()
		c.waitErr = err
		c.mu.Unlock()
		close(c.exited)
	}()
	return c, nil
}

func (c *commandCapture) collect(r io.Reader) {
	chunk := make([]byte, chunkSize)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			c.mu.Lock()
			c.buf.Write(chunk[:n])
			c.mu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// Finish interrupts the program so it finalizes the container, then returns
// everything it wrote. Interrupted encoders usually exit non-zero, so the
// exit status only matters when nothing was captured.
func (c *commandCapture) Finish() ([]byte, error) {
	select {
	case <-c.exited:
	default:
		if err := c.cmd.Process.Signal(os.Interrupt); err != nil {
			_ = c.cmd.Process.Kill()
		}
		timer := time.NewTimer(finishTimeout)
		select {
		case <-c.exited:
		case <-timer.C:
			_ = c.cmd.Process.Kill()
			<-c.exited
		}
		timer.Stop()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.buf.Len() == 0 {
		if c.waitErr != nil {
			return nil, fmt.Errorf("capture produced no audio: %w: %s", c.waitErr, c.stderr.String())
		}
		return nil, errors.New("capture produced no audio")
	}
	out := make([]byte, c.buf.Len())
	copy(out, c.buf.Bytes())
	return out, nil
}

// Release kills the program if it is still running.
func (c *commandCapture) Release() error {
	select {
	case <-c.exited:
		return nil
	default:
	}
	if err := c.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("stop capture program: %w", err)
	}
	<-c.exited
	return nil
}

func (c *commandCapture) bytesCaptured() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Len()
}

func (c *commandCapture) stderrText() string {
	return strings.TrimSpace(c.stderr.String())
}

// limitedBuffer keeps the first stderrLimit bytes written to it.
type limitedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if room := stderrLimit - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
