package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"assetvault/internal/domain"
	"assetvault/internal/ports"
)

// Filter narrows the vault grid.
type Filter struct {
	Category string
	Query    string
}

// FilterAssets keeps assets passing both the category and the search
// predicate.
func FilterAssets(assets []domain.Asset, f Filter) []domain.Asset {
	out := make([]domain.Asset, 0, len(assets))
	for _, a := range assets {
		if a.Matches(f.Category, f.Query) {
			out = append(out, a)
		}
	}
	return out
}

// Assets backs the asset vault.
type Assets struct {
	Log   *slog.Logger
	API   ports.AssetAPI
	Audit ports.AuditRecorder
	Now   func() time.Time

	renews  singleflight.Group
	reveals singleflight.Group
}

func (uc *Assets) now() time.Time {
	if uc.Now != nil {
		return uc.Now()
	}
	return time.Now()
}

func (uc *Assets) List(ctx context.Context, f Filter) ([]domain.Asset, error) {
	all, err := uc.API.ListAssets(ctx)
	if err != nil {
		return nil, err
	}
	return FilterAssets(all, f), nil
}

// Get looks an asset up in the list endpoint; the API has no single-asset
// read that omits credentials.
func (uc *Assets) Get(ctx context.Context, id string) (domain.Asset, error) {
	all, err := uc.API.ListAssets(ctx)
	if err != nil {
		return domain.Asset{}, err
	}
	for _, a := range all {
		if a.ID == id {
			return a, nil
		}
	}
	return domain.Asset{}, fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
}

// Save creates the asset when id is empty and updates it otherwise.
func (uc *Assets) Save(ctx context.Context, id string, form AssetForm) (domain.Asset, error) {
	in, err := form.toDomain()
	if err != nil {
		return domain.Asset{}, err
	}
	if id == "" {
		a, err := uc.API.CreateAsset(ctx, in)
		if err != nil {
			return domain.Asset{}, err
		}
		uc.Log.Info("asset created", slog.String("id", a.ID), slog.String("service", in.ServiceName))
		return a, nil
	}
	a, err := uc.API.UpdateAsset(ctx, id, in)
	if err != nil {
		return domain.Asset{}, err
	}
	uc.Log.Info("asset updated", slog.String("id", id), slog.Bool("password_changed", in.PasswordChanged()))
	return a, nil
}

// Renew collapses concurrent renewals of the same asset into one call.
func (uc *Assets) Renew(ctx context.Context, id string) (domain.Asset, error) {
	v, err, shared := uc.renews.Do(id, func() (any, error) {
		return uc.API.RenewAsset(ctx, id)
	})
	if err != nil {
		return domain.Asset{}, err
	}
	uc.Log.Info("asset renewed", slog.String("id", id), slog.Bool("shared", shared))
	return v.(domain.Asset), nil
}

// RevealResult is the state of one secret cell after a toggle.
type RevealResult struct {
	Visible bool
	Secret  string
}

// Reveal toggles the visibility of an asset's secret. Hiding never calls
// the API. Showing uses the session's cached plaintext when present, so the
// reveal endpoint is hit at most once per asset per session.
func (uc *Assets) Reveal(ctx context.Context, cache ports.RevealCache, actor, id string) (RevealResult, error) {
	if cache.Visible(id) {
		cache.SetVisible(id, false)
		return RevealResult{}, nil
	}
	if s, ok := cache.Secret(id); ok {
		cache.SetVisible(id, true)
		return RevealResult{Visible: true, Secret: s}, nil
	}

	v, err, _ := uc.reveals.Do(cache.ID()+"/"+id, func() (any, error) {
		if s, ok := cache.Secret(id); ok {
			return s, nil
		}
		a, err := uc.API.RevealAsset(ctx, id)
		if err != nil {
			return "", err
		}
		secret := a.Credentials.Secret()
		cache.StoreSecret(id, secret)
		uc.recordReveal(ctx, domain.RevealEvent{
			At:          uc.now(),
			Actor:       actor,
			AssetID:     id,
			ServiceName: a.ServiceName,
			SessionID:   cache.ID(),
		})
		return secret, nil
	})
	if err != nil {
		return RevealResult{}, err
	}
	cache.SetVisible(id, true)
	return RevealResult{Visible: true, Secret: v.(string)}, nil
}

// recordReveal never fails the reveal itself.
func (uc *Assets) recordReveal(ctx context.Context, ev domain.RevealEvent) {
	if uc.Audit == nil {
		return
	}
	if err := uc.Audit.RecordReveal(ctx, ev); err != nil {
		uc.Log.Error("reveal audit write failed", slog.String("asset", ev.AssetID), slog.String("err", err.Error()))
	}
}
