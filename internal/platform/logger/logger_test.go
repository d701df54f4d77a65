package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	pnet "agora/internal/platform/net"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zerolog.Level{
		"trace":    zerolog.TraceLevel,
		" INFO ":   zerolog.InfoLevel,
		"warning":  zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"":         zerolog.DebugLevel,
		"chatty":   zerolog.DebugLevel,
		"panic":    zerolog.PanicLevel,
		"disabled": zerolog.Disabled,
	}
	for in, want := range cases {
		assert.Equal(t, want, level(in), in)
	}
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	buf.Reset()
	return m
}

func TestBuild_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := build(Options{Level: "info", Format: "json", Service: "agora", Writer: &buf})

	l.Debug().Msg("dropped")
	assert.Zero(t, buf.Len())

	l.Info().Str("page", "Main").Msg("hello")
	m := decode(t, &buf)
	assert.Equal(t, "hello", m["message"])
	assert.Equal(t, "agora", m["service"])
	assert.Equal(t, "Main", m["page"])
	assert.Contains(t, m, "time")
}

func TestBuild_Console(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := build(Options{Level: "debug", Format: "console", Writer: &buf, Caller: true})
	l.Info().Msg("console line")
	assert.Contains(t, buf.String(), "console line")
	assert.Contains(t, buf.String(), "logger_test.go")
}

func TestWith_RequestFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	base := build(Options{Format: "json", Writer: &buf})

	ctx := pnet.WithActor(pnet.WithRequest(context.Background(), "req-9"), 42)
	with(&base, ctx).Info().Msg("scoped")
	m := decode(t, &buf)
	assert.Equal(t, "req-9", m["request_id"])
	assert.Equal(t, float64(42), m["actor_id"])

	with(&base, pnet.WithActor(context.Background(), 0)).Info().Msg("anonymous")
	m = decode(t, &buf)
	assert.NotContains(t, m, "request_id")
	assert.NotContains(t, m, "actor_id")
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_SERVICE", "agora-worker")
	t.Setenv("LOG_CALLER", "true")
	t.Setenv("LOG_SAMPLE_EVERY", "5")

	assert.Equal(t, Options{Level: "warn", Format: "json", Service: "agora-worker", Caller: true, SampleEvery: 5}, FromEnv())
}

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("LOG_SERVICE", "")
	t.Setenv("LOG_CALLER", "maybe")
	t.Setenv("LOG_SAMPLE_EVERY", "x")

	assert.Equal(t, Options{Level: "debug", Format: "console"}, FromEnv())
}

func TestGetAndNamed(t *testing.T) {
	t.Parallel()

	require.NotNil(t, Get())
	assert.Same(t, Get(), Named(""))
	assert.NotSame(t, Get(), Named("comments"))
	assert.NotNil(t, C(context.Background()))
}
