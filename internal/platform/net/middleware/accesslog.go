// Package middleware holds chi adapters and the in house request middlewares
package middleware

import (
	"net/http"
	"time"

	"agora/internal/platform/logger"
	pnet "agora/internal/platform/net"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// AccessLogOptions configures the access log
type AccessLogOptions struct {
	// Slow is the warn threshold, 0 disables
	Slow time.Duration
	// Skip lists unlogged paths, health probes mostly
	Skip []string
}

// AccessLog writes one line per request through the request scoped logger
func AccessLog(opt AccessLogOptions) func(http.Handler) http.Handler {
	skip := make(map[string]bool, len(opt.Skip))
	for _, p := range opt.Skip {
		skip[p] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)
			accessEvent(logger.C(r.Context()), status, elapsed, opt.Slow).
				Int("status", status).
				Dur("elapsed", elapsed).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("bytes", ww.BytesWritten()).
				Str("request_id", pnet.RequestID(r.Context())).
				Msg("request done")
		})
	}
}

func accessEvent(log *logger.Logger, status int, elapsed, slow time.Duration) *zerolog.Event {
	switch {
	case status >= http.StatusInternalServerError:
		return log.Error()
	case slow > 0 && elapsed >= slow:
		return log.Warn().Bool("slow", true)
	default:
		return log.Info()
	}
}
