package server

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/glorpus-work/schoolyard/internal/logger"
	"github.com/glorpus-work/schoolyard/pkg/model"
	"github.com/glorpus-work/schoolyard/pkg/store"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	siteKey      contextKey = "site"
	userKey      contextKey = "user"
)

// UserResolver turns an incoming request into the acting user. A nil user
// with a nil error means the request is anonymous.
type UserResolver interface {
	ResolveUser(r *http.Request, domainID string) (*model.User, error)
}

// HeaderUserResolver resolves the user from the X-User-Id header set by the
// authenticating proxy in front of this service.
type HeaderUserResolver struct {
	Users store.UserStore
}

// ResolveUser implements UserResolver.
func (h *HeaderUserResolver) ResolveUser(r *http.Request, domainID string) (*model.User, error) {
	userID := r.Header.Get("X-User-Id")
	if userID == "" {
		return nil, nil
	}
	return h.Users.Get(r.Context(), domainID, userID)
}

// RequestID attaches a request id to the context and response headers.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// Recoverer converts panics into 500 responses.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic while handling request", logger.Fields{
					"method": r.Method,
					"path":   r.URL.Path,
					"panic":  rec,
				})
				writeJSONError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Logging logs one line per request with status and duration.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := newStatusWriter(w)
		next.ServeHTTP(wrapped, r)

		fields := logger.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   wrapped.status,
			"duration": time.Since(start).String(),
		}
		if id, ok := r.Context().Value(requestIDKey).(string); ok {
			fields["request_id"] = id
		}
		logger.Info("request handled", fields)
	})
}

// ResolveSite looks up the tenant site from the request's Host header and
// stores it in the context. Unknown hosts get a 404.
func ResolveSite(sites store.SiteStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			site, err := sites.GetByDomain(r.Context(), hostname(r))
			if err != nil {
				writeError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), siteKey, site)))
		})
	}
}

// ResolveUser resolves the acting user for the current site, if any, and
// stores it in the context.
func ResolveUser(resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			site := siteFrom(r.Context())
			if site == nil {
				next.ServeHTTP(w, r)
				return
			}
			user, err := resolver.ResolveUser(r, site.ID)
			if err != nil {
				writeError(w, err)
				return
			}
			if user != nil {
				r = r.WithContext(context.WithValue(r.Context(), userKey, user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func siteFrom(ctx context.Context) *model.Site {
	site, _ := ctx.Value(siteKey).(*model.Site)
	return site
}

func userFrom(ctx context.Context) *model.User {
	user, _ := ctx.Value(userKey).(*model.User)
	return user
}

func hostname(r *http.Request) string {
	host := r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.ToLower(host)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func newStatusWriter(w http.ResponseWriter) *statusWriter {
	return &statusWriter{ResponseWriter: w, status: http.StatusOK}
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
