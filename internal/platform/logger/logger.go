// Package logger holds the process root zerolog logger and its request scoped children
package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	pnet "agora/internal/platform/net"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Logger is the logging type every package takes
type Logger = zerolog.Logger

// Options configures the root logger
type Options struct {
	Level       string
	Format      string // console or json
	Service     string
	Writer      io.Writer
	Caller      bool
	SampleEvery int
}

// FromEnv reads LOG_LEVEL, LOG_FORMAT, LOG_SERVICE, LOG_CALLER and LOG_SAMPLE_EVERY
// config.Conf logs its own parse failures, so these are read straight from the environment
func FromEnv() Options {
	env := func(k, def string) string {
		if v := strings.TrimSpace(os.Getenv("LOG_" + k)); v != "" {
			return v
		}
		return def
	}
	caller, _ := strconv.ParseBool(env("CALLER", "false"))
	every, _ := strconv.Atoi(env("SAMPLE_EVERY", "0"))
	return Options{
		Level:       strings.ToLower(env("LEVEL", "debug")),
		Format:      strings.ToLower(env("FORMAT", "console")),
		Service:     env("SERVICE", ""),
		Caller:      caller,
		SampleEvery: every,
	}
}

var (
	once sync.Once
	root Logger
)

// Init builds the root logger; only the first call, or the first Get, has any effect
func Init(opt Options) { once.Do(func() { setup(opt) }) }

// Get returns the root logger, building it from the environment on first use
func Get() *Logger {
	once.Do(func() { setup(FromEnv()) })
	return &root
}

func setup(opt Options) {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano
	root = build(opt)
}

func build(opt Options) Logger {
	var w io.Writer = os.Stdout
	if opt.Writer != nil {
		w = opt.Writer
	}
	if opt.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	lc := zerolog.New(w).Level(level(opt.Level)).With().Timestamp()
	if bi, ok := debug.ReadBuildInfo(); ok {
		lc = lc.Str("go_version", bi.GoVersion)
	}
	if opt.Service != "" {
		lc = lc.Str("service", opt.Service)
	}
	if opt.Caller {
		lc = lc.Caller()
	}
	l := lc.Logger()
	if opt.SampleEvery > 1 {
		l = l.Sample(&zerolog.BasicSampler{N: uint32(opt.SampleEvery)})
	}
	return l
}

// level falls back to debug for blank or unknown names; "warning" is warn
func level(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		return zerolog.DebugLevel
	}
	return lvl
}

// C is the root logger tagged with the request id and actor on ctx
func C(ctx context.Context) *Logger {
	return with(Get(), ctx)
}

func with(l *Logger, ctx context.Context) *Logger {
	lc := l.With()
	if id := pnet.RequestID(ctx); id != "" {
		lc = lc.Str("request_id", id)
	}
	if actor := pnet.ActorID(ctx); actor > 0 {
		lc = lc.Int64("actor_id", actor)
	}
	out := lc.Logger()
	return &out
}

// Named is the root logger with a component field
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	out := Get().With().Str("component", component).Logger()
	return &out
}
