package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"assetvault/internal/session"
	"assetvault/internal/usecase"
	"assetvault/internal/web"
)

// HTTPServer returns a configured http.Server serving the dashboard.
// Call ListenAndServe on the returned server in a goroutine and Shutdown it on exit.
func (a *App) HTTPServer(addr string) (*http.Server, error) {
	limit, err := web.NewRevealLimiter(a.cfg.Session.RevealRate)
	if err != nil {
		return nil, err
	}

	h := &web.Handlers{
		Log:       a.log,
		Dashboard: &usecase.Dashboard{Log: a.log, API: a.vault},
		Clients:   &usecase.Clients{Log: a.log, API: a.vault},
		Assets:    &usecase.Assets{Log: a.log, API: a.vault, Audit: a.audit},
		Expiry:    &usecase.Expiry{Log: a.log, API: a.vault},
		Projects:  &usecase.Projects{Log: a.log, API: a.vault},
		Reports:   a.reports,
		Cookies:   session.NewCookies([]byte(a.cfg.Session.Secret), !a.cfg.HTTP.SecureDev, int(a.cfg.Session.TTL.Seconds())),
		Branding:  a.Branding(),
		Currency:  a.cfg.Report.DefaultCurrency,
	}

	cfg := web.RouterConfig{
		Handlers:    h,
		Sessions:    a.sessions,
		Verifier:    session.NewVerifier(a.cfg.Session.JWTSecret),
		Log:         a.log,
		Secure:      web.NewSecure(web.SecureOptions(a.cfg.HTTP.SecureDev)),
		RevealLimit: limit,
		Metrics:     true,
	}
	if a.mirror != nil {
		cfg.MirrorTrigger = a.mirrorHandler
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           web.NewRouter(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.log.Info("http server configured",
		slog.String("addr", addr),
		slog.String("vault_api", a.cfg.VaultAPI.BaseURL),
		slog.Bool("auth", cfg.Verifier.Enabled()),
		slog.Bool("mirror", a.mirror != nil),
	)
	return srv, nil
}

// mirrorHandler runs one mirror pass. Optional timeout override: ?timeout=5m
func (a *App) mirrorHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if tStr := r.URL.Query().Get("timeout"); tStr != "" {
		if d, err := time.ParseDuration(tStr); err == nil && d > 0 {
			var cancel func()
			ctx, cancel = context.WithTimeout(ctx, d)
			defer cancel()
		}
	}

	start := time.Now()
	err := a.RunMirror(ctx)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, usecase.ErrMirrorRunning) {
			status = http.StatusConflict
		}
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "error",
			"error":  err.Error(),
		})
		return
	}
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"duration": time.Since(start).String(),
	})
}
