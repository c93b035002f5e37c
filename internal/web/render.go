package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"assetvault/internal/domain"
	"assetvault/internal/report"
	"assetvault/internal/session"
	"assetvault/internal/usecase"
)

//go:embed templates/*.html
var templatesFS embed.FS

var funcs = template.FuncMap{
	"date": func(t *time.Time) string {
		if t == nil {
			return "Never"
		}
		return t.Format("2006-01-02")
	},
	"dateInput": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("2006-01-02")
	},
	"money":      report.Grouped,
	"symbol":     report.CurrencySymbol,
	"categories": func() []domain.Category { return domain.Categories },
	"projectTypes": func() []domain.ProjectType {
		return domain.ProjectTypes
	},
	"projectStatuses": func() []domain.ProjectStatus { return domain.ProjectStatuses },
	"currencies":      func() []string { return []string{"INR", "USD"} },
	"lower":           strings.ToLower,
}

var pages = parsePages(
	"panel", "dashboard",
	"clients", "client_form", "client_profile",
	"assets", "asset_form", "renew_confirm",
	"expiry",
	"projects", "project_form", "project_detail",
	"reports",
)

func parsePages(names ...string) map[string]*template.Template {
	out := make(map[string]*template.Template, len(names))
	for _, n := range names {
		out[n] = template.Must(template.New(n).Funcs(funcs).ParseFS(templatesFS,
			"templates/layout.html", "templates/panel_block.html", "templates/"+n+".html"))
	}
	return out
}

// page is what every template receives.
type page struct {
	Title    string
	Nav      string
	Flashes  []session.Flash
	Operator string
	Panel    *Panel
	Data     any
}

// Panel is the fixed error panel shown instead of a page body.
type Panel struct {
	Title     string
	Message   string
	Retry     string
	Back      string
	BackLabel string
}

const unreachableMessage = "Cannot connect to backend. Please ensure the backend server is running."

var unauthorizedPanel = Panel{Title: "Session Expired", Message: "Session expired. Please log in again."}

// target describes a read so its failure can be explained.
type target struct {
	Subject string // "Client", "Project"; empty when not-found has no page
	What    string // noun in "Failed to load <what> data"
	Retry   string
	Back    string
}

func panelFor(err error, t target) Panel {
	switch domain.Classify(err) {
	case domain.FailureNotFound:
		if t.Subject != "" {
			return Panel{
				Title:     t.Subject + " Not Found",
				Message:   t.Subject + " not found. It may have been deleted.",
				Back:      t.Back,
				BackLabel: "Back to " + strings.ToLower(t.Subject) + "s",
			}
		}
	case domain.FailureUnreachable:
		return Panel{Title: "Connection Error", Message: unreachableMessage, Retry: t.Retry}
	case domain.FailureUnauthorized:
		return unauthorizedPanel
	}
	return Panel{
		Title:   "Something Went Wrong",
		Message: "Failed to load " + t.What + " data. Please try again.",
		Retry:   t.Retry,
	}
}

func statusFor(class domain.FailureClass) int {
	switch class {
	case domain.FailureNotFound:
		return http.StatusNotFound
	case domain.FailureUnreachable:
		return http.StatusBadGateway
	case domain.FailureUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// render executes a page into a buffer first so a template error never
// leaves a half-written response.
func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, name string, p page) {
	if h.Cookies != nil {
		p.Flashes = h.Cookies.Flashes(w, r)
	}
	if pr, ok := session.PrincipalFrom(r.Context()); ok {
		p.Operator = pr.Actor()
	}
	var buf bytes.Buffer
	if err := pages[name].ExecuteTemplate(&buf, "layout", p); err != nil {
		loggerFrom(r.Context(), h.Log).Error("render failed", slog.String("page", name), slog.String("err", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// fail renders the error panel for a failed read.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error, t target) {
	class := domain.Classify(err)
	backendFailures.WithLabelValues(string(class)).Inc()
	loggerFrom(r.Context(), h.Log).Error("load failed",
		slog.String("what", t.What),
		slog.String("class", string(class)),
		slog.String("err", err.Error()),
	)
	p := panelFor(err, t)
	h.render(w, r, statusFor(class), "panel", page{Title: p.Title, Panel: &p})
}

// flash stores a one-shot alert for the next render.
func (h *Handlers) flash(w http.ResponseWriter, r *http.Request, kind, msg string) {
	if err := h.Cookies.AddFlash(w, r, kind, msg); err != nil {
		loggerFrom(r.Context(), h.Log).Error("flash", slog.String("err", err.Error()))
	}
}

// writeFailed reports a failed write as "Failed to <verb>: <message>" and
// sends the browser back.
func (h *Handlers) writeFailed(w http.ResponseWriter, r *http.Request, verb string, err error, back string) {
	class := domain.Classify(err)
	backendFailures.WithLabelValues(string(class)).Inc()
	loggerFrom(r.Context(), h.Log).Error("write failed", slog.String("action", verb), slog.String("err", err.Error()))
	h.flash(w, r, "error", "Failed to "+verb+": "+domain.UserMessage(err))
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func (h *Handlers) done(w http.ResponseWriter, r *http.Request, msg, next string) {
	h.flash(w, r, "success", msg)
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// download streams a table export as an attachment.
func (h *Handlers) download(w http.ResponseWriter, r *http.Request, e usecase.Export, err error, format, back string) {
	if err != nil {
		h.exportFailed(w, r, err, back)
		return
	}
	var (
		buf   bytes.Buffer
		ctype string
	)
	switch format {
	case "csv":
		ctype = report.CSVContentType
		err = report.WriteCSV(&buf, e.Table)
	case "xlsx":
		ctype = report.XLSXContentType
		err = report.WriteXLSX(&buf, e.Sheet, e.Table)
	default:
		http.NotFound(w, r)
		return
	}
	if err != nil {
		loggerFrom(r.Context(), h.Log).Error("export encode failed", slog.String("format", format), slog.String("err", err.Error()))
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	name := e.Filename(h.now(), format)
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	_, _ = w.Write(buf.Bytes())
	loggerFrom(r.Context(), h.Log).Info("export served", slog.String("file", name), slog.Int("rows", e.Table.Len()))
}

func (h *Handlers) exportFailed(w http.ResponseWriter, r *http.Request, err error, back string) {
	if errors.Is(err, domain.ErrNoData) {
		h.flash(w, r, "info", "No data to export")
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	if errors.Is(err, domain.ErrInvalidEnum) {
		http.NotFound(w, r)
		return
	}
	h.writeFailed(w, r, "export", err, back)
}

// printable writes a standalone HTML document produced by the report
// package.
func (h *Handlers) printable(w http.ResponseWriter, r *http.Request, write func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		loggerFrom(r.Context(), h.Log).Error("print render failed", slog.String("err", err.Error()))
		http.Error(w, "print failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// returnTo reads a same-site path from the posted form.
func returnTo(r *http.Request, fallback string) string {
	v := r.PostFormValue("return")
	if strings.HasPrefix(v, "/") && !strings.HasPrefix(v, "//") && !strings.HasPrefix(v, "/\\") {
		return v
	}
	return fallback
}

func formError(err error) string {
	var ve *usecase.ValidationError
	if errors.As(err, &ve) {
		return "Please fix: " + strings.Join(ve.Fields, ", ")
	}
	return fmt.Sprintf("Failed to save: %s", domain.UserMessage(err))
}
