package web

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"assetvault/internal/domain"
	"assetvault/internal/report"
	"assetvault/internal/session"
	"assetvault/internal/usecase"
)

// Handlers renders the dashboard pages on top of the use cases.
type Handlers struct {
	Log       *slog.Logger
	Dashboard *usecase.Dashboard
	Clients   *usecase.Clients
	Assets    *usecase.Assets
	Expiry    *usecase.Expiry
	Projects  *usecase.Projects
	Reports   *usecase.Reports
	Cookies   *session.Cookies
	Branding  report.Branding
	Currency  string
	Now       func() time.Time
}

func (h *Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Dashboard.Load(r.Context())
	if err != nil {
		h.fail(w, r, err, target{What: "dashboard", Retry: "/dashboard"})
		return
	}
	h.render(w, r, http.StatusOK, "dashboard", page{Title: "Dashboard", Nav: "dashboard", Data: stats})
}

type clientsView struct {
	Query   string
	Clients []domain.Client
}

func (h *Handlers) listClients(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	clients, err := h.Clients.List(r.Context(), q)
	if err != nil {
		h.fail(w, r, err, target{What: "client", Retry: r.URL.RequestURI()})
		return
	}
	h.render(w, r, http.StatusOK, "clients", page{Title: "Clients", Nav: "clients", Data: clientsView{Query: q, Clients: clients}})
}

type clientFormView struct {
	Form  usecase.ClientForm
	Error string
}

func (h *Handlers) newClient(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "client_form", page{
		Title: "Add New Client", Nav: "clients",
		Data: clientFormView{Form: usecase.ClientForm{ProjectType: string(domain.ProjectTypeWeb)}},
	})
}

func (h *Handlers) createClient(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	form := usecase.ClientForm{
		CompanyName:   r.PostFormValue("companyName"),
		ContactPerson: r.PostFormValue("contactPerson"),
		Email:         r.PostFormValue("email"),
		Phone:         r.PostFormValue("phone"),
		ProjectType:   r.PostFormValue("projectType"),
		Website:       r.PostFormValue("website"),
		Notes:         r.PostFormValue("notes"),
	}
	c, err := h.Clients.Create(r.Context(), form)
	if err != nil {
		loggerFrom(r.Context(), h.Log).Info("create client rejected", slog.String("err", err.Error()))
		h.render(w, r, http.StatusUnprocessableEntity, "client_form", page{
			Title: "Add New Client", Nav: "clients",
			Data: clientFormView{Form: form, Error: formError(err)},
		})
		return
	}
	h.done(w, r, "Client "+c.CompanyName+" created", "/clients")
}

type profileView struct {
	domain.ClientProfile
	Total    float64
	Currency string
}

func (h *Handlers) clientProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.Clients.Profile(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, target{Subject: "Client", What: "client", Retry: r.URL.RequestURI(), Back: "/clients"})
		return
	}
	h.render(w, r, http.StatusOK, "client_profile", page{
		Title: p.Client.CompanyName, Nav: "clients",
		Data: profileView{ClientProfile: p, Total: p.TotalRenewal(), Currency: h.Currency},
	})
}

// toggleClientStatus flips the status posted by the page. The page shows
// the new status only after the API accepted it.
func (h *Handlers) toggleClientStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	back := returnTo(r, "/clients/"+id)
	c := domain.Client{ID: id, Status: domain.ClientStatus(r.PostFormValue("status"))}
	updated, err := h.Clients.ToggleStatus(r.Context(), c)
	if err != nil {
		h.writeFailed(w, r, "update status", err, back)
		return
	}
	h.done(w, r, "Status changed to "+string(updated.Status), back)
}

func (h *Handlers) deleteClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Clients.Delete(r.Context(), id); err != nil {
		h.writeFailed(w, r, "delete client", err, "/clients/"+id)
		return
	}
	h.done(w, r, "Client deleted", "/clients")
}

func (h *Handlers) exportClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	e, err := h.Reports.ClientAssets(r.Context(), id)
	h.download(w, r, e, err, chi.URLParam(r, "format"), "/clients/"+id)
}

func (h *Handlers) paymentRequest(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.Reports.PaymentRequest(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNoData) {
			h.exportFailed(w, r, err, "/clients/"+id)
			return
		}
		h.fail(w, r, err, target{Subject: "Client", What: "client", Retry: r.URL.RequestURI(), Back: "/clients"})
		return
	}
	h.printable(w, r, func(buf *bytes.Buffer) error {
		return report.WritePaymentRequest(buf, p.Client, p.Assets, h.Currency, h.Branding)
	})
}

func (h *Handlers) expiry(w http.ResponseWriter, r *http.Request) {
	v, err := h.Expiry.Load(r.Context(), h.now())
	if err != nil {
		h.fail(w, r, err, target{What: "expiry", Retry: "/expiry"})
		return
	}
	h.render(w, r, http.StatusOK, "expiry", page{Title: "Expiry Tracker", Nav: "expiry", Data: v})
}

func (h *Handlers) expiryReport(w http.ResponseWriter, r *http.Request) {
	e, err := h.Reports.ExpiryReport(r.Context(), h.now())
	h.download(w, r, e, err, "csv", "/expiry")
}
