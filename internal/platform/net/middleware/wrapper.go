package middleware

import (
	"net/http"
	"time"

	pstrings "agora/internal/platform/strings"

	chicors "github.com/go-chi/cors"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestID stamps an X-Request-Id on the request context
func RequestID() func(http.Handler) http.Handler { return chimw.RequestID }

// RealIP rewrites RemoteAddr from proxy headers
func RealIP() func(http.Handler) http.Handler { return chimw.RealIP }

// NoCache marks every response as uncacheable
func NoCache() func(http.Handler) http.Handler { return chimw.NoCache }

// Timeout cancels the request context after d
func Timeout(d time.Duration) func(http.Handler) http.Handler { return chimw.Timeout(d) }

// Compress compresses json responses at level
func Compress(level int) func(http.Handler) http.Handler {
	return chimw.Compress(level, "application/json")
}

// StripSlashes routes /comments/1/ as /comments/1
func StripSlashes() func(http.Handler) http.Handler { return chimw.StripSlashes }

// Heartbeat answers path before any other middleware runs
func Heartbeat(path string) func(http.Handler) http.Handler { return chimw.Heartbeat(path) }

// MaxBody rejects request bodies larger than n bytes
func MaxBody(n int64) func(http.Handler) http.Handler { return chimw.RequestSize(n) }

// InFlight caps concurrent requests; extra ones queue up to backlog for wait, then get 429
func InFlight(limit, backlog int, wait time.Duration) func(http.Handler) http.Handler {
	return chimw.ThrottleBacklog(limit, backlog, wait)
}

// CORSOptions is a narrow surface over go-chi/cors
type CORSOptions struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// CORS wraps go-chi/cors; empty method and header lists get the api defaults
func CORS(o CORSOptions) func(http.Handler) http.Handler {
	return chicors.Handler(chicors.Options{
		AllowedOrigins: o.AllowedOrigins,
		AllowedMethods: pstrings.IfEmpty(o.AllowedMethods, []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		AllowedHeaders: pstrings.IfEmpty(o.AllowedHeaders, []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Agora-Actor",
		}),
		ExposedHeaders:   pstrings.IfEmpty(o.ExposedHeaders, []string{"X-Request-ID"}),
		AllowCredentials: o.AllowCredentials,
		MaxAge:           o.MaxAge,
	})
}
