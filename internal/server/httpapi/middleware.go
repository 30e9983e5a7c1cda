package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/keygate/internal/common"
	"github.com/dmitrijs2005/keygate/internal/server/auth"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type ctxKey string

const (
	identityKey  ctxKey = "identity"
	requestIDKey ctxKey = "request_id"
)

const requestIDHeader = "X-Request-Id"

func identityFrom(ctx context.Context) *auth.Identity {
	id, _ := ctx.Value(identityKey).(*auth.Identity)
	return id
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// requestID keeps a caller-supplied X-Request-Id or assigns a fresh one,
// and echoes it on the response.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.status = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

// observe logs each request and records it in the metrics. The route label
// is the matched chi pattern, so path parameters do not blow up
// cardinality.
func (h *handlers) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		elapsed := time.Since(start)

		h.deps.Metrics.RecordRequest(r.Method, route, rec.status, elapsed)
		h.log.Info(r.Context(), "http request",
			"request_id", requestIDFrom(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", elapsed.Milliseconds(),
		)
	})
}

// authenticate resolves the bearer token into an Identity stored on the
// request context. Missing and invalid tokens are both 401.
func (h *handlers) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := extractBearerToken(r.Header.Get(common.AuthorizationHeaderName))
		if err != nil {
			h.deps.Metrics.RecordAuthFailure("unauthenticated")
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		id, err := h.deps.Auth.Resolve(r.Context(), token)
		if err != nil {
			if errors.Is(err, common.ErrUnauthenticated) {
				h.deps.Metrics.RecordAuthFailure("unauthenticated")
			} else {
				h.log.Error(r.Context(), "session resolve failed", "request_id", requestIDFrom(r.Context()), "error", err)
			}
			writeServiceError(w, err, nil)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, id)))
	})
}

// requireAdmin must run after authenticate.
func (h *handlers) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := auth.RequireAdmin(identityFrom(r.Context())); err != nil {
			h.deps.Metrics.RecordAuthFailure("forbidden")
			writeServiceError(w, err, nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
