package usecase

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"assetvault/internal/domain"
	"assetvault/internal/ports"
)

const (
	criticalWindow = 7 * 24 * time.Hour
	warningWindow  = 30 * 24 * time.Hour
)

// ExpiryView is the expiry tracker page.
type ExpiryView struct {
	Entries  []domain.ExpiryEntry
	Critical int
	Warning  int
	Healthy  int
}

type Expiry struct {
	Log *slog.Logger
	API ports.AssetAPI
}

func (uc *Expiry) Load(ctx context.Context, now time.Time) (ExpiryView, error) {
	assets, err := uc.API.ListAssets(ctx)
	if err != nil {
		return ExpiryView{}, err
	}
	return BuildExpiry(assets, now), nil
}

// BuildExpiry keeps assets that carry an expiry, sorted soonest first.
// Warning includes the critical ones, and healthy counts every asset not
// in warning, including those without an expiry date.
func BuildExpiry(assets []domain.Asset, now time.Time) ExpiryView {
	var v ExpiryView
	for _, a := range assets {
		days, ok := a.DaysLeft(now)
		if !ok {
			continue
		}
		left := a.ExpiryDate.Sub(now)
		if left < criticalWindow {
			v.Critical++
		}
		if left < warningWindow {
			v.Warning++
		}
		v.Entries = append(v.Entries, domain.ExpiryEntry{Asset: a, DaysLeft: days, Bucket: domain.BucketFor(days)})
	}
	v.Healthy = len(assets) - v.Warning
	sort.SliceStable(v.Entries, func(i, j int) bool {
		return v.Entries[i].Asset.ExpiryDate.Before(*v.Entries[j].Asset.ExpiryDate)
	})
	return v
}
