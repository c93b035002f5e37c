package web

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"assetvault/internal/domain"
	"assetvault/internal/session"
	"assetvault/internal/usecase"
)

type assetRow struct {
	domain.Asset
	Secret  string
	Visible bool
}

type vaultView struct {
	Filter usecase.Filter
	Rows   []assetRow
	Self   string
	Query  string
}

func filterFrom(r *http.Request) usecase.Filter {
	q := r.URL.Query()
	return usecase.Filter{Category: q.Get("category"), Query: q.Get("q")}
}

func formatCost(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func (h *Handlers) listAssets(w http.ResponseWriter, r *http.Request) {
	f := filterFrom(r)
	assets, err := h.Assets.List(r.Context(), f)
	if err != nil {
		h.fail(w, r, err, target{What: "asset", Retry: r.URL.RequestURI()})
		return
	}
	var revealed map[string]string
	if sess := sessionFrom(r.Context()); sess != nil {
		revealed = sess.Revealed()
	}
	rows := make([]assetRow, len(assets))
	for i, a := range assets {
		s, ok := revealed[a.ID]
		rows[i] = assetRow{Asset: a, Secret: s, Visible: ok}
	}
	v := vaultView{Filter: f, Rows: rows, Self: "/assets"}
	if qs := r.URL.RawQuery; qs != "" {
		v.Self += "?" + qs
		v.Query = "?" + qs
	}
	h.render(w, r, http.StatusOK, "assets", page{Title: "Asset Vault", Nav: "assets", Data: v})
}

type assetFormView struct {
	ID      string
	Form    usecase.AssetForm
	Clients []domain.Client
	Error   string
}

func (h *Handlers) assetForm(w http.ResponseWriter, r *http.Request, status int, v assetFormView) {
	clients, err := h.Clients.List(r.Context(), "")
	if err != nil {
		h.fail(w, r, err, target{What: "client", Retry: r.URL.RequestURI()})
		return
	}
	v.Clients = clients
	title := "Add New Asset"
	if v.ID != "" {
		title = "Edit Asset"
	}
	h.render(w, r, status, "asset_form", page{Title: title, Nav: "assets", Data: v})
}

func (h *Handlers) newAsset(w http.ResponseWriter, r *http.Request) {
	h.assetForm(w, r, http.StatusOK, assetFormView{Form: usecase.AssetForm{
		Category:    string(domain.CategoryDomain),
		Currency:    domain.DefaultCurrency,
		RenewalCost: "0",
		ClientID:    r.URL.Query().Get("client"),
	}})
}

// editAsset pre-fills the form. The password field holds the mask so an
// untouched field leaves the stored secret alone.
func (h *Handlers) editAsset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, err := h.Assets.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, target{Subject: "Asset", What: "asset", Retry: r.URL.RequestURI(), Back: "/assets"})
		return
	}
	form := usecase.AssetForm{
		ClientID:    a.ClientID,
		Category:    string(a.Category),
		ServiceName: a.ServiceName,
		Identifier:  a.Identifier,
		Username:    a.Username(),
		Password:    domain.SecretMask,
		AutoRenew:   a.AutoRenew,
		RenewalCost: formatCost(a.RenewalCost),
		Currency:    a.CurrencyOrDefault(),
		Notes:       a.Notes,
	}
	if a.ExpiryDate != nil {
		form.ExpiryDate = a.ExpiryDate.Format("2006-01-02")
	}
	h.assetForm(w, r, http.StatusOK, assetFormView{ID: id, Form: form})
}

func assetFormFrom(r *http.Request) usecase.AssetForm {
	return usecase.AssetForm{
		ClientID:    r.PostFormValue("clientId"),
		Category:    r.PostFormValue("category"),
		ServiceName: r.PostFormValue("serviceName"),
		Identifier:  r.PostFormValue("identifier"),
		Username:    r.PostFormValue("username"),
		Password:    r.PostFormValue("password"),
		ExpiryDate:  r.PostFormValue("expiryDate"),
		AutoRenew:   r.PostFormValue("autoRenew") != "",
		RenewalCost: r.PostFormValue("renewalCost"),
		Currency:    r.PostFormValue("currency"),
		Notes:       r.PostFormValue("notes"),
	}
}

func (h *Handlers) saveAsset(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	form := assetFormFrom(r)
	if _, err := h.Assets.Save(r.Context(), id, form); err != nil {
		loggerFrom(r.Context(), h.Log).Info("save asset rejected", slog.String("id", id), slog.String("err", err.Error()))
		h.assetForm(w, r, http.StatusUnprocessableEntity, assetFormView{ID: id, Form: form, Error: formError(err)})
		return
	}
	msg := "Asset saved"
	if id == "" {
		msg = "Asset added"
	}
	h.done(w, r, msg, "/assets")
}

func (h *Handlers) confirmRenew(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, err := h.Assets.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, target{Subject: "Asset", What: "asset", Retry: r.URL.RequestURI(), Back: "/assets"})
		return
	}
	h.render(w, r, http.StatusOK, "renew_confirm", page{Title: "Renew Asset", Nav: "assets", Data: a})
}

func (h *Handlers) renewAsset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	back := returnTo(r, "/assets")
	a, err := h.Assets.Renew(r.Context(), id)
	if err != nil {
		h.writeFailed(w, r, "renew", err, back)
		return
	}
	msg := "Asset renewed"
	if a.ExpiryDate != nil {
		msg += " until " + a.ExpiryDate.Format("2006-01-02")
	}
	h.done(w, r, msg, back)
}

// revealAsset toggles one secret cell for this browser session.
func (h *Handlers) revealAsset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	back := returnTo(r, "/assets")
	sess := sessionFrom(r.Context())
	if sess == nil {
		http.Error(w, "no session", http.StatusInternalServerError)
		return
	}
	actor := session.LocalOperator.Actor()
	if p, ok := session.PrincipalFrom(r.Context()); ok {
		actor = p.Actor()
	}
	res, err := h.Assets.Reveal(r.Context(), sess, actor, id)
	if err != nil {
		revealsTotal.WithLabelValues("error").Inc()
		h.writeFailed(w, r, "reveal", err, back)
		return
	}
	if res.Visible {
		revealsTotal.WithLabelValues("shown").Inc()
	} else {
		revealsTotal.WithLabelValues("hidden").Inc()
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func (h *Handlers) exportAssets(w http.ResponseWriter, r *http.Request) {
	e, err := h.Reports.VaultExport(r.Context(), filterFrom(r))
	back := "/assets"
	if qs := r.URL.RawQuery; qs != "" {
		back += "?" + qs
	}
	h.download(w, r, e, err, chi.URLParam(r, "format"), back)
}
