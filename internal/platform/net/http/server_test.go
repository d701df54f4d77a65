package http_test

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agora/internal/platform/config"
	phttp "agora/internal/platform/net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer_Defaults(t *testing.T) {
	hooked := false
	srv := phttp.NewServer(config.New().Prefix("AGORA_SERVER_TEST_"), func(*chi.Mux) { hooked = true })

	assert.True(t, hooked)
	assert.Equal(t, ":4000", srv.Addr())
	require.NotNil(t, srv.Router().Mux())
}

func TestServer_ServeUntilCancelled(t *testing.T) {
	srv := phttp.NewServer(config.New().Prefix("AGORA_SERVER_TEST_"))
	srv.Router().Get("/comments/1", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "one")
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	res, err := http.Get("http://" + ln.Addr().String() + "/comments/1")
	require.NoError(t, err)
	body, _ := io.ReadAll(res.Body)
	_ = res.Body.Close()
	assert.Equal(t, "one", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_ShutdownBeforeCancel(t *testing.T) {
	srv := phttp.NewServer(config.New().Prefix("AGORA_SERVER_TEST_"))
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Serve(context.Background(), ln) }()

	require.Eventually(t, func() bool {
		c, err := net.Dial("tcp", ln.Addr().String())
		if err == nil {
			_ = c.Close()
		}
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, srv.Shutdown(context.Background()))
	assert.NoError(t, <-done)
}

func TestRun_BadAddr(t *testing.T) {
	t.Setenv("AGORA_SERVER_BAD_API_PORT", "not-an-addr")
	srv := phttp.NewServer(config.New().Prefix("AGORA_SERVER_BAD_"))
	assert.Error(t, srv.Run(context.Background()))
}

func TestAdaptChi_Routes(t *testing.T) {
	t.Parallel()

	r := phttp.AdaptChi(chi.NewRouter())
	status := func(code int) phttp.Handler {
		return func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(code) }
	}
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("X-Layer", "root")
			next.ServeHTTP(w, req)
		})
	})
	r.Route("/comments", func(sub phttp.Router) {
		sub.Get("/{id}", status(http.StatusOK))
		sub.Post("/", status(http.StatusCreated))
		sub.Put("/{id}", status(http.StatusAccepted))
		sub.Patch("/{id}", status(http.StatusAlreadyReported))
		sub.Delete("/{id}", status(http.StatusNoContent))
		sub.Head("/{id}", status(http.StatusOK))
		sub.Options("/{id}", status(http.StatusNoContent))
		sub.Group(func(g phttp.Router) {
			g.Handle("/raw", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) }))
		})
	})
	r.Group(func(g phttp.Router) { g.Get("/ping", status(http.StatusOK)) })

	cases := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/comments/1", http.StatusOK},
		{http.MethodPost, "/comments/", http.StatusCreated},
		{http.MethodPut, "/comments/1", http.StatusAccepted},
		{http.MethodPatch, "/comments/1", http.StatusAlreadyReported},
		{http.MethodDelete, "/comments/1", http.StatusNoContent},
		{http.MethodHead, "/comments/1", http.StatusOK},
		{http.MethodOptions, "/comments/1", http.StatusNoContent},
		{http.MethodGet, "/comments/raw", http.StatusTeapot},
		{http.MethodGet, "/ping", http.StatusOK},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		r.Mux().ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		assert.Equal(t, tc.want, rec.Code, "%s %s", tc.method, tc.path)
		assert.Equal(t, "root", rec.Header().Get("X-Layer"))
	}
}
