package web

import (
	"context"
	"crypto/rand"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"github.com/unrolled/secure"

	"assetvault/internal/adapter/vaultapi"
	"assetvault/internal/session"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assetvault_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
	revealsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetvault_reveals_total",
			Help: "Secret reveal toggles by outcome",
		},
		[]string{"outcome"},
	)
	backendFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetvault_backend_failures_total",
			Help: "Vault API failures by failure class",
		},
		[]string{"class"},
	)
)

type ctxKey int

const (
	loggerKey ctxKey = iota
	sessionKey
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

func newRequestID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), entropy).String()
}

// loggingMiddleware logs every request and stores a request-scoped logger
// in the context.
func loggingMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := r.Header.Get("X-Request-ID")
			if reqID == "" {
				reqID = newRequestID()
			}
			w.Header().Set("X-Request-ID", reqID)
			reqLog := log.With(slog.String("req_id", reqID))
			ww := chimid.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), loggerKey, reqLog)))

			reqLog.Info("http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote", r.RemoteAddr),
				slog.Int("status", ww.Status()),
				slog.Duration("dur", time.Since(start)),
			)
		})
	}
}

func loggerFrom(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return fallback
}

// metricsMiddleware records request duration keyed by route pattern.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimid.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		route := routePattern(r)
		httpRequestDuration.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Observe(time.Since(start).Seconds())
	})
}

// SecureOptions returns the security header policy. Inline styles and the
// print trigger on report pages need 'unsafe-inline'.
func SecureOptions(isDevelopment bool) secure.Options {
	return secure.Options{
		IsDevelopment:         isDevelopment,
		ContentTypeNosniff:    true,
		FrameDeny:             true,
		BrowserXssFilter:      true,
		ContentSecurityPolicy: "default-src 'self'; style-src 'self' 'unsafe-inline'; script-src 'self' 'unsafe-inline'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}
}

func NewSecure(opts secure.Options) func(http.Handler) http.Handler {
	return secure.New(opts).Handler
}

// authMiddleware resolves the operator from the identity provider's token
// and forwards the token to the vault API. With verification disabled every
// request runs as session.LocalOperator.
func (h *Handlers) authMiddleware(v *session.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !v.Enabled() {
				next.ServeHTTP(w, r.WithContext(session.WithPrincipal(r.Context(), session.LocalOperator)))
				return
			}
			tok, err := session.TokenFromRequest(r)
			if err == nil {
				var p session.Principal
				if p, err = v.Verify(tok); err == nil {
					ctx := session.WithPrincipal(r.Context(), p)
					ctx = vaultapi.WithBearer(ctx, p.Token)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}
			loggerFrom(r.Context(), h.Log).Info("unauthenticated request", slog.String("err", err.Error()))
			p := unauthorizedPanel
			h.render(w, r, http.StatusUnauthorized, "panel", page{Title: p.Title, Panel: &p})
		})
	}
}

// sessionMiddleware binds the server-side state of the signed-in principal
// in this browser to the request.
func (h *Handlers) sessionMiddleware(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := h.Cookies.SessionID(w, r)
			if err != nil {
				loggerFrom(r.Context(), h.Log).Error("session cookie", slog.String("err", err.Error()))
				http.Error(w, "session unavailable", http.StatusInternalServerError)
				return
			}
			p, ok := session.PrincipalFrom(r.Context())
			if !ok {
				p = session.LocalOperator
			}
			ctx := context.WithValue(r.Context(), sessionKey, store.Get(p.StateKey(id)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFrom(ctx context.Context) *session.Session {
	s, _ := ctx.Value(sessionKey).(*session.Session)
	return s
}

// NewRevealLimiter caps reveal toggles per browser session. An empty rate
// disables the limit.
func NewRevealLimiter(rateFormatted string) (func(http.Handler) http.Handler, error) {
	if rateFormatted == "" {
		return func(next http.Handler) http.Handler { return next }, nil
	}
	rate, err := limiter.NewRateFromFormatted(rateFormatted)
	if err != nil {
		return nil, err
	}
	instance := limiter.New(memory.NewStore(), rate)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := sessionFrom(r.Context())
			if sess == nil {
				next.ServeHTTP(w, r)
				return
			}
			lctx, err := instance.Increment(r.Context(), "reveal:"+sess.ID(), 1)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
			if lctx.Reached {
				revealsTotal.WithLabelValues("rate_limited").Inc()
				http.Error(w, "too many reveal requests, slow down", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}, nil
}
