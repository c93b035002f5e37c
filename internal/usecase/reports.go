package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"assetvault/internal/domain"
	"assetvault/internal/ports"
	"assetvault/internal/report"
)

// Report kinds served by the reports center and the export command.
const (
	KindAllAssets = "assets"
	KindForecast  = "forecast"
	KindExpiry    = "expiry"
	KindAudit     = "audit"
)

var ReportKinds = []string{KindAllAssets, KindForecast, KindExpiry, KindAudit}

const forecastDays = 90

// Export is a finished table plus the file prefix it downloads under.
type Export struct {
	Prefix string
	Sheet  string
	Table  report.Table
}

func (e Export) Filename(now time.Time, ext string) string {
	return report.Filename(e.Prefix, now, ext)
}

type Reports struct {
	Log     *slog.Logger
	Assets  ports.AssetAPI
	Clients ports.ClientAPI
	Audit   ports.AuditRecorder
}

func nonEmpty(e Export) (Export, error) {
	if e.Table.Len() == 0 {
		return Export{}, domain.ErrNoData
	}
	return e, nil
}

// VaultExport is the asset vault grid as currently filtered.
func (uc *Reports) VaultExport(ctx context.Context, f Filter) (Export, error) {
	all, err := uc.Assets.ListAssets(ctx)
	if err != nil {
		return Export{}, err
	}
	return nonEmpty(Export{Prefix: "assets_export", Sheet: "Assets", Table: report.VaultExport(FilterAssets(all, f))})
}

func (uc *Reports) AllAssets(ctx context.Context) (Export, error) {
	all, err := uc.Assets.ListAssets(ctx)
	if err != nil {
		return Export{}, err
	}
	return nonEmpty(Export{Prefix: "all_assets_report", Sheet: "All Assets", Table: report.AssetSummary(all)})
}

// ForecastAssets returns assets expiring within [now, now+90 days].
func (uc *Reports) ForecastAssets(ctx context.Context, now time.Time) ([]domain.Asset, error) {
	all, err := uc.Assets.ListAssets(ctx)
	if err != nil {
		return nil, err
	}
	return InForecast(all, now), nil
}

func InForecast(assets []domain.Asset, now time.Time) []domain.Asset {
	end := now.AddDate(0, 0, forecastDays)
	var out []domain.Asset
	for _, a := range assets {
		if a.ExpiryDate == nil {
			continue
		}
		if !a.ExpiryDate.Before(now) && !a.ExpiryDate.After(end) {
			out = append(out, a)
		}
	}
	return out
}

func (uc *Reports) Forecast(ctx context.Context, now time.Time) (Export, error) {
	assets, err := uc.ForecastAssets(ctx, now)
	if err != nil {
		return Export{}, err
	}
	return nonEmpty(Export{Prefix: "expiry_forecast", Sheet: "Forecast", Table: report.AssetSummary(assets)})
}

// ExpiryReport lists every dated asset, soonest first.
func (uc *Reports) ExpiryReport(ctx context.Context, now time.Time) (Export, error) {
	all, err := uc.Assets.ListAssets(ctx)
	if err != nil {
		return Export{}, err
	}
	v := BuildExpiry(all, now)
	return nonEmpty(Export{Prefix: "expiry_report", Sheet: "Expiry", Table: report.ExpiryReport(v.Entries)})
}

func (uc *Reports) ClientAssets(ctx context.Context, id string) (Export, error) {
	p, err := uc.Clients.GetClient(ctx, id)
	if err != nil {
		return Export{}, err
	}
	return nonEmpty(Export{
		Prefix: p.Client.CompanyName + "_Assets",
		Sheet:  "Assets",
		Table:  report.ClientAssets(p.Assets),
	})
}

// PaymentRequest loads a client profile for the renewal notice. A client
// without assets has nothing to bill.
func (uc *Reports) PaymentRequest(ctx context.Context, id string) (domain.ClientProfile, error) {
	p, err := uc.Clients.GetClient(ctx, id)
	if err != nil {
		return domain.ClientProfile{}, err
	}
	if len(p.Assets) == 0 {
		return domain.ClientProfile{}, domain.ErrNoData
	}
	return p, nil
}

func (uc *Reports) AuditLog(ctx context.Context) (Export, error) {
	if uc.Audit == nil {
		return Export{}, domain.ErrNoData
	}
	events, err := uc.Audit.ListReveals(ctx, 0)
	if err != nil {
		return Export{}, err
	}
	return nonEmpty(Export{Prefix: "security_audit", Sheet: "Audit", Table: report.RevealAudit(events)})
}

// Build dispatches on a report kind.
func (uc *Reports) Build(ctx context.Context, kind string, now time.Time) (Export, error) {
	switch kind {
	case KindAllAssets:
		return uc.AllAssets(ctx)
	case KindForecast:
		return uc.Forecast(ctx, now)
	case KindExpiry:
		return uc.ExpiryReport(ctx, now)
	case KindAudit:
		return uc.AuditLog(ctx)
	}
	return Export{}, fmt.Errorf("report %q: %w", kind, domain.ErrInvalidEnum)
}
