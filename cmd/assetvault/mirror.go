package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"assetvault/internal/app"
)

type mirrorFlags struct {
	once     bool
	daily    bool
	interval time.Duration
}

func newMirrorCmd(c *cli) *cobra.Command {
	var f mirrorFlags
	cmd := &cobra.Command{
		Use:   "mirror",
		Short: "Copy clients, assets and projects into the MySQL reporting mirror",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := app.New(cmd.Context(), c.log, c.cfg)
			if err != nil {
				c.log.Error("failed to initialize app", slog.String("error", err.Error()))
				return err
			}
			defer application.Close()
			if !application.MirrorEnabled() {
				return app.ErrMirrorDisabled
			}
			return c.mirror(cmd.Context(), application, f)
		},
	}
	cmd.Flags().BoolVar(&f.once, "once", false, "Run a single mirror pass and exit")
	cmd.Flags().DurationVar(&f.interval, "interval", 15*time.Minute, "Mirror interval when not running once")
	cmd.Flags().BoolVar(&f.daily, "daily", false, "Run at local midnight each day (uses MIRROR_TZ, default UTC)")
	return cmd
}

func (c *cli) mirror(ctx context.Context, application *app.App, f mirrorFlags) error {
	logger := c.log
	if f.once {
		if err := application.RunMirror(ctx); err != nil {
			logger.Error("mirror failed", slog.String("error", err.Error()))
			return err
		}
		logger.Info("mirror completed")
		return nil
	}

	// Daily-at-midnight mode (default for container)
	if f.daily {
		loc, err := time.LoadLocation(c.cfg.Mirror.Timezone)
		if err != nil {
			logger.Error("invalid MIRROR_TZ", slog.String("tz", c.cfg.Mirror.Timezone), slog.String("error", err.Error()))
			return err
		}
		logger.Info("starting daily mirror at midnight", slog.String("tz", c.cfg.Mirror.Timezone))
		for {
			next := nextMidnight(time.Now().In(loc))
			dur := time.Until(next)
			logger.Info("sleeping until next midnight", slog.Time("next", next), slog.Duration("sleep", dur))
			select {
			case <-ctx.Done():
				logger.Info("shutting down")
				return nil
			case <-time.After(dur):
				if err := application.RunMirror(ctx); err != nil {
					logger.Error("daily mirror failed", slog.String("error", err.Error()))
				}
			}
		}
	}

	// Periodic mode
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	logger.Info("starting periodic mirror", slog.Duration("interval", f.interval))
	// Kick off immediately
	if err := application.RunMirror(ctx); err != nil {
		logger.Error("initial mirror failed", slog.String("error", err.Error()))
	}
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil
		case <-ticker.C:
			if err := application.RunMirror(ctx); err != nil {
				logger.Error("periodic mirror failed", slog.String("error", err.Error()))
			}
		}
	}
}

// nextMidnight returns the next midnight strictly after t in t's location.
func nextMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}
