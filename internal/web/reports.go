package web

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"

	"assetvault/internal/domain"
	"assetvault/internal/report"
	"assetvault/internal/usecase"
)

type reportCard struct {
	Kind      string
	Title     string
	Blurb     string
	Printable bool
}

var reportCards = []reportCard{
	{Kind: usecase.KindAllAssets, Title: "All Assets Summary", Blurb: "Every asset with its client and expiry date.", Printable: true},
	{Kind: usecase.KindForecast, Title: "Expiry Forecast", Blurb: "Assets expiring in the next 90 days.", Printable: true},
	{Kind: usecase.KindExpiry, Title: "Expiry Report", Blurb: "Every dated asset with days left, soonest first."},
	{Kind: usecase.KindAudit, Title: "Security Audit", Blurb: "Who revealed which secret, and when."},
}

func (h *Handlers) reports(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "reports", page{Title: "Reports", Nav: "reports", Data: reportCards})
}

func (h *Handlers) downloadReport(w http.ResponseWriter, r *http.Request) {
	e, err := h.Reports.Build(r.Context(), chi.URLParam(r, "kind"), h.now())
	h.download(w, r, e, err, chi.URLParam(r, "format"), "/reports")
}

// printReport renders the print view of the all-assets summary or the
// forecast.
func (h *Handlers) printReport(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	var (
		assets []domain.Asset
		title  string
		err    error
	)
	switch chi.URLParam(r, "kind") {
	case usecase.KindAllAssets:
		title = report.TitleAllAssets
		assets, err = h.Assets.List(r.Context(), usecase.Filter{})
	case usecase.KindForecast:
		title = report.TitleForecast
		assets, err = h.Reports.ForecastAssets(r.Context(), now)
	default:
		http.NotFound(w, r)
		return
	}
	if err == nil && len(assets) == 0 {
		err = domain.ErrNoData
	}
	if err != nil {
		h.exportFailed(w, r, err, "/reports")
		return
	}
	h.printable(w, r, func(buf *bytes.Buffer) error {
		return report.WriteSummaryPrint(buf, title, assets, now, h.Branding)
	})
}
