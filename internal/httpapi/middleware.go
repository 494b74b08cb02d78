package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zeedivx/web-starter/internal/apperr"
)

type contextKey string

const (
	ctxRequestIDKey contextKey = "request_id"
	ctxUserKey      contextKey = "current_user"
	ctxTokenKey     contextKey = "session_token"
)

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(ctxRequestIDKey).(string); ok {
		return id
	}
	return ""
}

// responseWriter captures the status code and stamps the processing time
// header just before the first byte goes out.
type responseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	start       time.Time
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.status = code
	rw.wroteHeader = true
	rw.Header().Set("X-Process-Time", fmt.Sprintf("%.4f", time.Since(rw.start).Seconds()))
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// requestIDMiddleware assigns every request an id, honoring one the
// client already sent, and reflects it in the response.
func (a *API) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), ctxRequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggingMiddleware logs request start and completion, and flags requests
// that exceed the slow threshold.
func (a *API) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := requestIDFrom(r.Context())

		a.log.Info(fmt.Sprintf("→ %s %s", r.Method, r.URL.Path),
			zap.String("request_id", rid),
			zap.String("remote", r.RemoteAddr),
		)

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK, start: time.Now()}
		next.ServeHTTP(rw, r)

		elapsed := time.Since(rw.start)
		a.log.Info(fmt.Sprintf("← %d %s %s", rw.status, r.Method, r.URL.Path),
			zap.String("request_id", rid),
			zap.Duration("duration", elapsed),
		)

		if threshold := a.cfg.HTTP.SlowRequest; threshold > 0 && elapsed > threshold {
			a.log.Warn("Slow request",
				zap.String("request_id", rid),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("duration", elapsed),
				zap.Duration("threshold", threshold),
			)
		}
	})
}

// recoveryMiddleware turns panics into 500 responses instead of dropped
// connections.
func (a *API) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				a.log.Error(fmt.Sprintf("✗ %s %s panicked", r.Method, r.URL.Path),
					zap.String("request_id", requestIDFrom(r.Context())),
					zap.Any("panic", rec),
					zap.ByteString("stack", debug.Stack()),
				)
				a.writeError(w, r, apperr.Internal(fmt.Errorf("panic: %v", rec)))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware answers preflight requests and sets the allow headers
// for configured origins. A lone "*" allows everyone.
func (a *API) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && a.originAllowed(origin) {
			h := w.Header()
			if a.allowAnyOrigin() {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Add("Vary", "Origin")
			}
			h.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *API) allowAnyOrigin() bool {
	return slices.Contains(a.cfg.HTTP.AllowedOrigins, "*")
}

func (a *API) originAllowed(origin string) bool {
	return a.allowAnyOrigin() || slices.Contains(a.cfg.HTTP.AllowedOrigins, origin)
}
