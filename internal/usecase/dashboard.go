package usecase

import (
	"context"
	"log/slog"

	"assetvault/internal/domain"
	"assetvault/internal/ports"
)

// Dashboard loads the headline counters.
type Dashboard struct {
	Log *slog.Logger
	API ports.StatsAPI
}

func (uc *Dashboard) Load(ctx context.Context) (domain.DashboardStats, error) {
	stats, err := uc.API.DashboardStats(ctx)
	if err != nil {
		uc.Log.Warn("dashboard stats failed", slog.String("class", string(domain.Classify(err))), slog.String("err", err.Error()))
		return domain.DashboardStats{}, err
	}
	return stats, nil
}
