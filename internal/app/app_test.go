package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-dm/internal/config"
)

func TestRunStopsOnCancel(t *testing.T) {
	logger := zerolog.Nop()
	cfg := config.Default()
	cfg.Addr = "127.0.0.1:0"
	cfg.DatabasePath = filepath.Join(t.TempDir(), "wirechat.db")
	cfg.ShutdownTimeout = time.Second

	a, err := New(&cfg, &logger)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("run did not stop after cancel")
	}
}

func TestNewFailsOnBadDatabasePath(t *testing.T) {
	logger := zerolog.Nop()
	cfg := config.Default()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "missing", "dir", "wirechat.db")

	if _, err := New(&cfg, &logger); err == nil {
		t.Fatalf("expected error for unreachable database path")
	}
}
