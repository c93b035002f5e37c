package web

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"assetvault/internal/domain"
	"assetvault/internal/usecase"
)

type projectsView struct {
	Query    string
	Projects []domain.Project
}

func (h *Handlers) listProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	projects, err := h.Projects.List(r.Context(), q)
	if err != nil {
		h.fail(w, r, err, target{What: "project", Retry: r.URL.RequestURI()})
		return
	}
	h.render(w, r, http.StatusOK, "projects", page{Title: "Projects", Nav: "projects", Data: projectsView{Query: q, Projects: projects}})
}

type envBlock struct {
	Side    string
	Label   string
	Text    string
	Visible bool
}

type projectView struct {
	domain.Project
	Env []envBlock
}

// projectDetail shows env blobs masked unless ?show names the side.
func (h *Handlers) projectDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.Projects.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, target{Subject: "Project", What: "project", Retry: r.URL.RequestURI(), Back: "/projects"})
		return
	}
	show := r.URL.Query().Get("show")
	v := projectView{Project: p}
	for _, side := range []struct{ key, label string }{{"frontend", "Frontend"}, {"backend", "Backend"}} {
		raw := p.Env.Get(side.key)
		b := envBlock{Side: side.key, Label: side.label, Text: domain.MaskEnv(raw)}
		if show == side.key {
			b.Text, b.Visible = raw, true
			loggerFrom(r.Context(), h.Log).Info("project env shown", slog.String("project", id), slog.String("side", side.key))
		}
		v.Env = append(v.Env, b)
	}
	h.render(w, r, http.StatusOK, "project_detail", page{Title: p.Name, Nav: "projects", Data: v})
}

type projectFormView struct {
	ID      string
	Form    usecase.ProjectForm
	Clients []domain.Client
	Error   string
}

func (h *Handlers) projectForm(w http.ResponseWriter, r *http.Request, status int, v projectFormView) {
	clients, err := h.Clients.List(r.Context(), "")
	if err != nil {
		h.fail(w, r, err, target{What: "client", Retry: r.URL.RequestURI()})
		return
	}
	v.Clients = clients
	title := "Add New Project"
	if v.ID != "" {
		title = "Edit Project"
	}
	h.render(w, r, status, "project_form", page{Title: title, Nav: "projects", Data: v})
}

func (h *Handlers) newProject(w http.ResponseWriter, r *http.Request) {
	h.projectForm(w, r, http.StatusOK, projectFormView{Form: usecase.ProjectForm{
		Status:   string(domain.ProjectDevelopment),
		ClientID: r.URL.Query().Get("client"),
	}})
}

func (h *Handlers) editProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.Projects.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, target{Subject: "Project", What: "project", Retry: r.URL.RequestURI(), Back: "/projects"})
		return
	}
	h.projectForm(w, r, http.StatusOK, projectFormView{ID: id, Form: usecase.ProjectForm{
		Name:        p.Name,
		ClientID:    p.ClientID,
		Description: p.Description,
		Status:      string(p.Status),
		GitHub:      p.GitHub,
		Deployment:  p.Deployment,
		Env:         p.Env,
		TechStack:   p.TechStack,
		Notes:       p.Notes,
	}})
}

func pairFrom(r *http.Request, prefix string) domain.Pair {
	return domain.Pair{
		Frontend: r.PostFormValue(prefix + "_frontend"),
		Backend:  r.PostFormValue(prefix + "_backend"),
	}
}

func (h *Handlers) saveProject(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	form := usecase.ProjectForm{
		Name:        r.PostFormValue("name"),
		ClientID:    r.PostFormValue("clientId"),
		Description: r.PostFormValue("description"),
		Status:      r.PostFormValue("status"),
		GitHub:      pairFrom(r, "github"),
		Deployment:  pairFrom(r, "deploy"),
		Env:         pairFrom(r, "env"),
		TechStack:   pairFrom(r, "stack"),
		Notes:       r.PostFormValue("notes"),
	}
	p, err := h.Projects.Save(r.Context(), id, form)
	if err != nil {
		loggerFrom(r.Context(), h.Log).Info("save project rejected", slog.String("id", id), slog.String("err", err.Error()))
		h.projectForm(w, r, http.StatusUnprocessableEntity, projectFormView{ID: id, Form: form, Error: formError(err)})
		return
	}
	h.done(w, r, "Project "+p.Name+" saved", "/projects/"+p.ID)
}

func (h *Handlers) deleteProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Projects.Delete(r.Context(), id); err != nil {
		h.writeFailed(w, r, "delete project", err, "/projects/"+id)
		return
	}
	h.done(w, r, "Project deleted", "/projects")
}
