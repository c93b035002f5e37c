package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"assetvault/internal/ports"
)

var ErrMirrorRunning = errors.New("mirror already running")

// MirrorSource is the read side of the vault API the mirror copies from.
type MirrorSource interface {
	ports.ClientAPI
	ports.AssetAPI
	ports.ProjectAPI
}

// Mirror copies vault records into the reporting sink.
type Mirror struct {
	Log    *slog.Logger
	Source MirrorSource
	Sink   ports.Sink

	mu sync.Mutex
}

func (uc *Mirror) Run(ctx context.Context) error {
	if uc.Source == nil || uc.Sink == nil {
		return errors.New("usecase not initialized: missing dependencies")
	}
	if !uc.mu.TryLock() {
		return ErrMirrorRunning
	}
	defer uc.mu.Unlock()

	start := time.Now()
	uc.Log.Info("mirror started")

	clients, err := uc.Source.ListClients(ctx)
	if err != nil {
		return err
	}
	if err := uc.Sink.SyncClients(ctx, clients); err != nil {
		return err
	}

	assets, err := uc.Source.ListAssets(ctx)
	if err != nil {
		return err
	}
	if err := uc.Sink.SyncAssets(ctx, assets); err != nil {
		return err
	}

	projects, err := uc.Source.ListProjects(ctx)
	if err != nil {
		return err
	}
	if err := uc.Sink.SyncProjects(ctx, projects); err != nil {
		return err
	}

	uc.Log.Info("mirror completed",
		slog.Int("clients", len(clients)),
		slog.Int("assets", len(assets)),
		slog.Int("projects", len(projects)),
		slog.Duration("dur", time.Since(start)),
	)
	return nil
}
