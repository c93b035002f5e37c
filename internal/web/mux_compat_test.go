package web

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// patternMux accepts Go 1.22 ServeMux patterns ("METHOD /path/{id}") on
// toolchains whose net/http.ServeMux predates method and wildcard routing.
type patternMux struct{ chi.Router }

func newPatternMux() *patternMux { return &patternMux{chi.NewRouter()} }

func (m *patternMux) Handle(pattern string, h http.Handler) {
	if method, path, ok := strings.Cut(pattern, " "); ok {
		m.Router.Method(method, strings.TrimSpace(path), h)
		if method == http.MethodGet {
			m.Router.Method(http.MethodHead, strings.TrimSpace(path), h)
		}
		return
	}
	m.Router.Handle(pattern, h)
}

func (m *patternMux) HandleFunc(pattern string, h http.HandlerFunc) { m.Handle(pattern, h) }
