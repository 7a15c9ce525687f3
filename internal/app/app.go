package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/five82/intake/internal/audio"
	"github.com/five82/intake/internal/config"
	"github.com/five82/intake/internal/intake"
	"github.com/five82/intake/internal/logging"
	"github.com/five82/intake/internal/notice"
	"github.com/five82/intake/internal/prefs"
	"github.com/five82/intake/internal/revision"
	"github.com/five82/intake/internal/session"
	"github.com/five82/intake/internal/submit"
	"github.com/five82/intake/internal/ui"
	"github.com/five82/intake/internal/webhook"
)

// Options configure the intake application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/intake/prefs.toml
	Revision   string // overrides the config file when set
}

// Run boots the intake TUI until the user quits or the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if name := strings.TrimSpace(opts.Revision); name != "" {
		cfg.Revision = name
	}
	rev, err := resolveRevision(cfg)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogPath())
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	userPrefs, err := prefs.Load(prefsPath)
	if err != nil {
		logger.Warn("preferences unreadable, using defaults", zap.Error(err))
	}

	board := notice.NewBoard(notice.DefaultTTL, nil)
	svc, err := build(cfg, rev, board, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Warn("recorder close failed", zap.Error(err))
		}
	}()

	logger.Info("intake started",
		zap.String("revision", rev.Name),
		zap.String("directory_encoding", string(rev.DirectoryEncoding)),
		zap.String("log_level", cfg.LogLevel),
	)

	StartSweeper(ctx, board, defaultSweepInterval)

	return ui.Run(ui.Options{
		Context:      ctx,
		Service:      svc,
		Logger:       logger.Named("ui"),
		LogPath:      cfg.LogPath(),
		ThemeName:    userPrefs.Theme,
		ShowActivity: userPrefs.ShowActivity,
		PrefsPath:    prefsPath,
	})
}

// resolveRevision looks up the configured revision, applies the configured
// directory encoding and checks that a fixed-webhook revision has somewhere
// to send reports.
func resolveRevision(cfg config.Config) (revision.Revision, error) {
	rev, err := revision.Lookup(cfg.Revision)
	if err != nil {
		return revision.Revision{}, err
	}
	if cfg.DirectoryEncoding != "" {
		rev.DirectoryEncoding = revision.DirectoryEncoding(cfg.DirectoryEncoding)
	}
	if rev.Webhook == revision.WebhookFixed {
		if _, err := webhook.ParseURL(cfg.WebhookURL); err != nil {
			return revision.Revision{}, fmt.Errorf("revision %q needs a valid webhook_url in the config: %w", rev.Name, err)
		}
	}
	return rev, nil
}

// build wires the transport, session gate, sender and recorder into the
// intake service.
func build(cfg config.Config, rev revision.Revision, board *notice.Board, logger *zap.Logger) (*intake.Service, error) {
	client := webhook.NewClient(cfg.RequestTimeout, logger.Named("webhook"))

	gate := session.NewGate(client, cfg.LoginURL,
		session.WithDirectorySource(rev.Directory),
		session.WithLogger(logger.Named("session")),
	)
	sender := submit.NewSender(client, cfg.WebhookURL,
		submit.WithLogger(logger.Named("submit")),
	)

	device := &audio.CommandDevice{
		Program:         cfg.Recorder.Program,
		InputFormat:     cfg.Recorder.InputFormat,
		Input:           cfg.Recorder.Input,
		EchoCancelInput: cfg.Recorder.EchoCancelInput,
		Formats:         cfg.Recorder.Formats,
		Logger:          logger.Named("audio"),
	}
	recorder := audio.NewRecorder(device, audio.WithLogger(logger.Named("audio")))

	svc, err := intake.New(intake.Deps{
		Revision:  rev,
		Gate:      gate,
		Submitter: sender,
		Recorder:  recorder,
		Board:     board,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("init intake: %w", err)
	}
	return svc, nil
}
