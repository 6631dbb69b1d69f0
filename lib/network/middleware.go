package network

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/ulule/limiter"
	"github.com/ulule/limiter/drivers/middleware/stdlib"
	"github.com/ulule/limiter/drivers/store/memory"

	"kairosvote.io/kairos/lib/metrics"
	"kairosvote.io/kairos/lib/network/httputils"
)

func RecoverMiddleware(printStack bool) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err, ok := rec.(error)
					if !ok {
						err = fmt.Errorf("panic: %v", rec)
					}
					httputils.WriteJSONError(w, err)
					log.Error("recovered a panic", "err", err)
					if printStack {
						debug.PrintStack()
					}
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type statusResponseWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusResponseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// MetricsMiddleware records request counts and latency per route.
func MetricsMiddleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			begin := time.Now()

			sw := &statusResponseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			endpoint := r.URL.Path
			if route := mux.CurrentRoute(r); route != nil {
				if tpl, err := route.GetPathTemplate(); err == nil {
					endpoint = tpl
				}
			}

			labels := []string{
				"endpoint", endpoint,
				"method", r.Method,
				"status", strconv.Itoa(sw.status),
			}
			metrics.API.RequestsTotal.With(labels...).Add(1)
			if sw.status >= http.StatusBadRequest {
				metrics.API.RequestErrorsTotal.With(labels...).Add(1)
			}
			metrics.API.RequestDurationSeconds.With(labels...).Observe(time.Since(begin).Seconds())
		})
	}
}

// RateLimitMiddleware throttles per client ip with an in-memory store.
func RateLimitMiddleware(rate limiter.Rate) mux.MiddlewareFunc {
	middleware := stdlib.NewMiddleware(limiter.New(memory.NewStore(), rate))

	return func(next http.Handler) http.Handler {
		return middleware.Handler(next)
	}
}
