package audio

import (
	"context"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandDevice_Supports(t *testing.T) {
	d := &CommandDevice{Formats: []string{" audio/webm;codecs=opus "}}

	assert.True(t, d.Supports(FallbackMIME))
	assert.False(t, d.Supports(PreferredMIME))
}

func TestCommandDevice_Args(t *testing.T) {
	d := &CommandDevice{InputFormat: "alsa", Input: "hw:0", EchoCancelInput: "echo-cancel-source"}

	args, err := d.args(DefaultConstraints(), FallbackMIME)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"-hide_banner", "-loglevel", "error", "-nostdin",
		"-f", "alsa", "-i", "echo-cancel-source", "-ac", "1",
		"-ar", "44100", "-af", "afftdn",
		"-c:a", "libopus", "-f", "webm", "pipe:1",
	}, args)

	args, err = (&CommandDevice{}).args(Constraints{}, PreferredMIME)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"-hide_banner", "-loglevel", "error", "-nostdin",
		"-f", "pulse", "-i", "default", "-ac", "1",
		"-c:a", "aac", "-f", "mp4", "-movflags", "frag_keyframe+empty_moov", "pipe:1",
	}, args)

	_, err = d.args(Constraints{}, "audio/ogg")
	assert.Error(t, err)
}

func TestCommandDevice_MissingProgram(t *testing.T) {
	d := &CommandDevice{Program: "intake-no-such-capture-program", Formats: []string{PreferredMIME}}

	_, err := d.Open(context.Background(), DefaultConstraints(), PreferredMIME)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "find capture program")
}

func TestCommandCapture_FinishCollectsOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("interrupt signals are not supported on windows")
	}
	cmd := exec.Command(os.Args[0], "-test.run=TestHelperCaptureProcess")
	cmd.Env = append(os.Environ(), "INTAKE_HELPER_CAPTURE=1")

	capture, err := startCommand(cmd)
	require.NoError(t, err)
	t.Cleanup(func() { _ = capture.Release() })

	require.Eventually(t, func() bool { return capture.bytesCaptured() >= len("chunk-1") }, 5*time.Second, 10*time.Millisecond)

	data, err := capture.Finish()
	require.NoError(t, err)
	assert.Equal(t, "chunk-1-tail", string(data))
	assert.NoError(t, capture.Release())
}

func TestCommandCapture_NoOutputIsAnError(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("interrupt signals are not supported on windows")
	}
	cmd := exec.Command(os.Args[0], "-test.run=TestHelperCaptureProcess")
	cmd.Env = append(os.Environ(), "INTAKE_HELPER_CAPTURE=silent")

	capture, err := startCommand(cmd)
	require.NoError(t, err)

	<-capture.exited
	_, err = capture.Finish()
	assert.Error(t, err)
}

// TestHelperCaptureProcess stands in for the capture program.
func TestHelperCaptureProcess(t *testing.T) {
	switch os.Getenv("INTAKE_HELPER_CAPTURE") {
	case "1":
	case "silent":
		os.Exit(1)
	default:
		return
	}
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	_, _ = os.Stdout.Write([]byte("chunk-1"))
	select {
	case <-sig:
	case <-time.After(10 * time.Second):
		os.Exit(2)
	}
	_, _ = os.Stdout.Write([]byte("-tail"))
	os.Exit(0)
}
