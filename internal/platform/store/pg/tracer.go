package pg

import (
	"context"
	"strings"
	"time"

	"agora/internal/platform/logger"

	"github.com/rs/zerolog"
)

// QueryEvent describes one finished statement
// Args is the bind count; values stay out of logs since they carry comment text
type QueryEvent struct {
	SQL     string
	Args    int
	Elapsed time.Duration
	Err     error
	Slow    bool
}

// QueryTracer receives every statement the store runs
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer logs every statement through root at debug or above, whatever the root level
// slow statements and failures log at warn
func Tracer(root logger.Logger) QueryTracer {
	return &zlTracer{log: root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()}
}

type zlTracer struct{ log logger.Logger }

func (z *zlTracer) OnQuery(ctx context.Context, ev QueryEvent) {
	evt := z.log.Debug()
	if ev.Slow || ev.Err != nil {
		evt = z.log.Warn()
	}
	if id, ok := requestID(ctx); ok {
		evt = evt.Str("request_id", id)
	}
	evt.Dur("elapsed", ev.Elapsed).
		Bool("slow", ev.Slow).
		Str("sql", compact(ev.SQL)).
		Int("args", ev.Args).
		Err(ev.Err).
		Msg("pg query")
}

type reqIDKey struct{}

// WithRequestID tags statements run under ctx in the trace
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, reqIDKey{}, id)
}

func requestID(ctx context.Context) (string, bool) {
	s, _ := ctx.Value(reqIDKey{}).(string)
	return s, s != ""
}

// compact folds the whitespace of multi line sql onto one line
func compact(s string) string { return strings.Join(strings.Fields(s), " ") }
