package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the settings intake reads at startup.
type Config struct {
	Revision          string
	LoginURL          string
	WebhookURL        string
	DirectoryEncoding string // empty keeps the revision's encoding
	LogDir            string
	LogLevel          string
	RequestTimeout    time.Duration
	Recorder          Recorder
}

// Recorder configures the external capture program.
type Recorder struct {
	Program         string
	InputFormat     string
	Input           string
	EchoCancelInput string
	Formats         []string
}

const (
	defaultConfigPath  = "~/.config/intake/config.toml"
	defaultLogDir      = "~/.local/share/intake/logs"
	defaultLoginURL    = "https://automatizacion.aigencia.ai/webhook/8fb72b52-94d5-42c3-b6f6-3600d8a8ae40"
	defaultLogLevel    = "info"
	defaultProgram     = "ffmpeg"
	defaultInputFormat = "pulse"
	defaultInput       = "default"
	logFileName        = "intake.log"
)

var defaultFormats = []string{"audio/webm;codecs=opus"}

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

var directoryEncodings = map[string]bool{"json": true, "repeated": true}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		LoginURL: defaultLoginURL,
		LogDir:   mustExpand(defaultLogDir),
		LogLevel: defaultLogLevel,
		Recorder: Recorder{
			Program:     defaultProgram,
			InputFormat: defaultInputFormat,
			Input:       defaultInput,
			Formats:     append([]string(nil), defaultFormats...),
		},
	}
}

// Load locates and parses the intake config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		Revision              string `toml:"revision"`
		LoginURL              string `toml:"login_url"`
		WebhookURL            string `toml:"webhook_url"`
		DirectoryEncoding     string `toml:"directory_encoding"`
		LogDir                string `toml:"log_dir"`
		LogLevel              string `toml:"log_level"`
		RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
		Recorder              struct {
			Program         string   `toml:"program"`
			InputFormat     string   `toml:"input_format"`
			Input           string   `toml:"input"`
			EchoCancelInput string   `toml:"echo_cancel_input"`
			Formats         []string `toml:"formats"`
		} `toml:"recorder"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg := Default()
	cfg.Revision = strings.ToLower(strings.TrimSpace(raw.Revision))
	cfg.WebhookURL = strings.TrimSpace(raw.WebhookURL)
	if v := strings.TrimSpace(raw.LoginURL); v != "" {
		cfg.LoginURL = v
	}
	if v := strings.ToLower(strings.TrimSpace(raw.DirectoryEncoding)); v != "" {
		if !directoryEncodings[v] {
			return Config{}, fmt.Errorf("parse config: invalid directory_encoding %q (want json or repeated)", raw.DirectoryEncoding)
		}
		cfg.DirectoryEncoding = v
	}
	if v := strings.TrimSpace(raw.LogDir); v != "" {
		cfg.LogDir = mustExpand(v)
	}
	if v := strings.ToLower(strings.TrimSpace(raw.LogLevel)); v != "" {
		if !logLevels[v] {
			return Config{}, fmt.Errorf("parse config: invalid log_level %q", raw.LogLevel)
		}
		cfg.LogLevel = v
	}
	if raw.RequestTimeoutSeconds < 0 {
		return Config{}, fmt.Errorf("parse config: request_timeout_seconds must not be negative")
	}
	cfg.RequestTimeout = time.Duration(raw.RequestTimeoutSeconds) * time.Second

	if v := strings.TrimSpace(raw.Recorder.Program); v != "" {
		cfg.Recorder.Program = v
	}
	if v := strings.TrimSpace(raw.Recorder.InputFormat); v != "" {
		cfg.Recorder.InputFormat = v
	}
	if v := strings.TrimSpace(raw.Recorder.Input); v != "" {
		cfg.Recorder.Input = v
	}
	cfg.Recorder.EchoCancelInput = strings.TrimSpace(raw.Recorder.EchoCancelInput)
	if formats := trimAll(raw.Recorder.Formats); len(formats) > 0 {
		cfg.Recorder.Formats = formats
	}

	return cfg, nil
}

// LogPath returns the path of the intake log file.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return mustExpand(defaultLogDir + "/" + logFileName)
	}
	return filepath.Join(c.LogDir, logFileName)
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
