package httpkit

import (
	"compress/flate"
	"net/http"
	"time"

	"agora/internal/platform/config"
	phttp "agora/internal/platform/net/http"
	"agora/internal/platform/net/middleware"
)

// StackOptions tunes CommonStack
type StackOptions struct {
	Origins     []string
	Timeout     time.Duration
	MaxBody     int64
	MaxInFlight int
	Slow        time.Duration
}

// StackFromConfig reads CORS_ORIGINS, REQUEST_TIMEOUT, MAX_BODY_BYTES, MAX_INFLIGHT and SLOW_REQUEST
func StackFromConfig(cfg config.Conf) StackOptions {
	return StackOptions{
		Origins:     cfg.MayCSV("CORS_ORIGINS", nil),
		Timeout:     cfg.MayDuration("REQUEST_TIMEOUT", 30*time.Second),
		MaxBody:     int64(cfg.MayInt("MAX_BODY_BYTES", 1<<20)),
		MaxInFlight: cfg.MayInt("MAX_INFLIGHT", 256),
		Slow:        cfg.MayDuration("SLOW_REQUEST", 500*time.Millisecond),
	}
}

// CommonStack is the middleware every versioned route runs behind, outermost first
func CommonStack(o StackOptions) []func(http.Handler) http.Handler {
	stack := []func(http.Handler) http.Handler{
		middleware.Heartbeat("/health"),
		middleware.RequestID(),
		middleware.RealIP(),
		middleware.AccessLog(middleware.AccessLogOptions{Slow: o.Slow}),
		middleware.RecoverJSON,
		middleware.NoCache(),
		middleware.CORS(middleware.CORSOptions{AllowedOrigins: o.Origins}),
		middleware.StripSlashes(),
		middleware.Compress(flate.BestSpeed),
	}
	if o.MaxInFlight > 0 {
		stack = append(stack, middleware.InFlight(o.MaxInFlight, o.MaxInFlight*4, 10*time.Second))
	}
	if o.MaxBody > 0 {
		stack = append(stack, middleware.MaxBody(o.MaxBody))
	}
	if o.Timeout > 0 {
		stack = append(stack, middleware.Timeout(o.Timeout))
	}
	return stack
}

// ActorPort is re-exported so modules need not import the middleware package
type ActorPort = middleware.ActorPort

// Actors wires the actor middleware to the platform JSON writer
func Actors(p ActorPort) func(http.Handler) http.Handler {
	return middleware.Actor(p, phttp.JSON)
}
