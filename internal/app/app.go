package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	msql "assetvault/internal/adapter/mysql"
	"assetvault/internal/adapter/vaultapi"
	"assetvault/internal/config"
	"assetvault/internal/migrate"
	"assetvault/internal/ports"
	"assetvault/internal/report"
	"assetvault/internal/session"
	"assetvault/internal/usecase"
)

// ErrMirrorDisabled is returned by RunMirror when no MySQL DSN is set.
var ErrMirrorDisabled = errors.New("mirror disabled: MYSQL_DSN is not set")

// App wires adapters and use cases.
type App struct {
	log   *slog.Logger
	cfg   config.Config
	vault *vaultapi.Client
	sink  *msql.Client // nil without MYSQL_DSN
	audit ports.AuditRecorder

	mirror   *usecase.Mirror
	reports  *usecase.Reports
	sessions *session.Store
}

func New(ctx context.Context, log *slog.Logger, cfg config.Config) (*App, error) {
	vault := vaultapi.NewClient(cfg.VaultAPI.BaseURL, cfg.VaultAPI.Timeout, log)
	a := &App{log: log, cfg: cfg, vault: vault, sessions: session.NewStore(cfg.Session.TTL)}

	if cfg.MySQL.DSN != "" {
		// Run migrations before opening the sink for use
		if err := migrate.Run(ctx, cfg.MySQL.DSN, log); err != nil {
			return nil, err
		}
		sink, err := msql.NewClient(ctx, cfg.MySQL.DSN, log)
		if err != nil {
			return nil, err
		}
		a.sink = sink
		a.audit = sink
		a.mirror = &usecase.Mirror{Log: log, Source: vault, Sink: sink}
	} else {
		log.Info("MYSQL_DSN not set, reveal audit kept in memory and mirror disabled")
		a.audit = &usecase.MemoryAudit{Log: log}
	}

	a.reports = &usecase.Reports{Log: log, Assets: vault, Clients: vault, Audit: a.audit}
	return a, nil
}

func (a *App) RunMirror(ctx context.Context) error {
	if a.mirror == nil {
		return ErrMirrorDisabled
	}
	return a.mirror.Run(ctx)
}

func (a *App) MirrorEnabled() bool { return a.mirror != nil }

// Reports exposes the report builders to the export command.
func (a *App) Reports() *usecase.Reports { return a.reports }

func (a *App) Branding() report.Branding {
	return report.Branding{
		Issuer:      a.cfg.Report.Issuer,
		Footer:      a.cfg.Report.Footer,
		BankDetails: a.cfg.Report.BankDetails,
	}
}

// StartSessionJanitor evicts idle browser sessions until ctx is done.
func (a *App) StartSessionJanitor(ctx context.Context) {
	go a.sessions.Janitor(ctx, time.Minute)
}

func (a *App) Close() error {
	if a.sink == nil {
		return nil
	}
	return a.sink.Close()
}
