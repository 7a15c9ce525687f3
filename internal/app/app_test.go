package app

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/five82/intake/internal/config"
	"github.com/five82/intake/internal/notice"
	"github.com/five82/intake/internal/revision"
)

type countingPruner struct {
	calls atomic.Int32
}

func (p *countingPruner) Prune() bool {
	p.calls.Add(1)
	return false
}

func TestStartSweeper_PrunesUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := &countingPruner{}
	StartSweeper(ctx, p, 5*time.Millisecond)

	deadline := time.Now().Add(time.Second)
	for p.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if p.calls.Load() < 2 {
		t.Fatalf("Prune called %d times, want at least 2", p.calls.Load())
	}

	cancel()
	time.Sleep(20 * time.Millisecond)
	stopped := p.calls.Load()
	time.Sleep(30 * time.Millisecond)
	if got := p.calls.Load(); got != stopped {
		t.Fatalf("Prune called after cancel: %d -> %d", stopped, got)
	}
}

func TestStartSweeper_ExpiresNotices(t *testing.T) {
	now := time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)
	var clock atomic.Int64
	clock.Store(now.UnixNano())
	board := notice.NewBoard(time.Second, func() time.Time { return time.Unix(0, clock.Load()) })
	board.Push(notice.Info("Saved", ""))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartSweeper(ctx, board, 5*time.Millisecond)

	clock.Store(now.Add(2 * time.Second).UnixNano())
	deadline := time.Now().Add(time.Second)
	for board.Prune() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if len(board.Active()) != 0 {
		t.Fatalf("expired notice still active")
	}
}

func TestResolveRevision(t *testing.T) {
	cfg := config.Default()

	cfg.Revision = "basic"
	rev, err := resolveRevision(cfg)
	if err != nil {
		t.Fatalf("basic revision: %v", err)
	}
	if rev.Webhook != revision.WebhookUser {
		t.Fatalf("basic webhook = %q, want user", rev.Webhook)
	}

	cfg.Revision = "directory"
	if _, err := resolveRevision(cfg); err == nil || !strings.Contains(err.Error(), "webhook_url") {
		t.Fatalf("directory without webhook_url: err = %v", err)
	}

	cfg.WebhookURL = "https://hooks.example.test/report"
	rev, err = resolveRevision(cfg)
	if err != nil {
		t.Fatalf("directory with webhook_url: %v", err)
	}
	if rev.DirectoryEncoding != revision.EncodingJSON {
		t.Fatalf("default encoding = %q, want json", rev.DirectoryEncoding)
	}

	cfg.DirectoryEncoding = "repeated"
	rev, err = resolveRevision(cfg)
	if err != nil {
		t.Fatalf("repeated encoding: %v", err)
	}
	if rev.DirectoryEncoding != revision.EncodingRepeated {
		t.Fatalf("configured encoding = %q, want repeated", rev.DirectoryEncoding)
	}

	cfg.Revision = "nope"
	if _, err := resolveRevision(cfg); err == nil {
		t.Fatal("unknown revision accepted")
	}
}

func TestBuild_WiresService(t *testing.T) {
	cfg := config.Default()
	cfg.WebhookURL = "https://hooks.example.test/report"
	rev, err := resolveRevision(cfg)
	if err != nil {
		t.Fatalf("resolveRevision: %v", err)
	}

	svc, err := build(cfg, rev, notice.NewBoard(0, nil), zap.NewNop())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer svc.Close()

	if got := svc.Revision().Name; got != "directory" {
		t.Fatalf("Revision = %q, want directory", got)
	}
	if svc.Snapshot().Authenticated {
		t.Fatal("new service is authenticated")
	}
	if svc.SessionID() == "" {
		t.Fatal("session id not assigned")
	}
}
