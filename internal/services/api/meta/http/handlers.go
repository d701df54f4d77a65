// Package http serves liveness, readiness and build info
package http

import (
	"context"
	"net/http"
	"time"

	"agora/internal/core/version"
	"agora/internal/modkit/httpkit"

	"golang.org/x/sync/errgroup"
)

// Pinger is any backend that can report reachability
type Pinger interface {
	Ping(context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Check is one backend readiness reports on
// a nil Target is a backend that is switched off; a Target that is not a Pinger is unknown
type Check struct {
	Name     string
	Required bool
	Target   any
}

// Deps feed the meta handlers
type Deps struct {
	ServiceName  string
	StartedAt    time.Time
	Checks       []Check
	PingDeadline time.Duration // 2s when zero
}

// Register mounts /health, /ready, /version and /service
func Register(r httpkit.Router, d Deps) {
	if d.PingDeadline <= 0 {
		d.PingDeadline = 2 * time.Second
	}
	h := handlers{d}
	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
}

type handlers struct{ Deps }

// HealthResponse says the process is up
type HealthResponse struct {
	OK      bool   `json:"ok"      example:"true"`
	Service string `json:"service" example:"agora-api"`
	Started string `json:"started" example:"2026-05-04T09:00:00Z"`
	Now     string `json:"now"     example:"2026-05-04T09:05:00Z"`
}

// CheckResult is the outcome of one Check: ok, fail, skipped or unknown
type CheckResult struct {
	Name   string `json:"name"            example:"pg"`
	Status string `json:"status"          example:"ok"`
	Error  string `json:"error,omitempty" example:"dial tcp 127.0.0.1:5432: connect: connection refused"`
}

// ReadyResponse is ok, degraded when an optional backend fails, or fail
type ReadyResponse struct {
	Status string        `json:"status" example:"ok"`
	Checks []CheckResult `json:"checks"`
	Now    string        `json:"now"    example:"2026-05-04T09:05:00Z"`
}

// ServiceResponse is the service name and uptime in seconds
type ServiceResponse struct {
	Name    string `json:"name"    example:"agora-api"`
	Started string `json:"started" example:"2026-05-04T09:00:00Z"`
	Uptime  int64  `json:"uptime"  example:"300"`
}

func stamp(t time.Time) string { return t.UTC().Format(time.RFC3339) }

// @Summary Liveness
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /meta/health [get]
func (h handlers) health(*http.Request) (any, error) {
	return HealthResponse{OK: true, Service: h.ServiceName, Started: stamp(h.StartedAt), Now: stamp(time.Now())}, nil
}

// @Summary Backend readiness
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse
// @Failure 503 {object} ReadyResponse
// @Router /meta/ready [get]
func (h handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), h.PingDeadline)
	defer cancel()

	out := make([]CheckResult, len(h.Checks))
	var g errgroup.Group
	for i, c := range h.Checks {
		g.Go(func() error {
			out[i] = probe(ctx, c)
			return nil
		})
	}
	_ = g.Wait()

	status := "ok"
	for i, res := range out {
		switch {
		case res.Status == "ok" || res.Status == "skipped" && !h.Checks[i].Required:
		case h.Checks[i].Required:
			status = "fail"
		case status == "ok":
			status = "degraded"
		}
	}

	resp := ReadyResponse{Status: status, Checks: out, Now: stamp(time.Now())}
	if status == "fail" {
		return httpkit.Response{Status: http.StatusServiceUnavailable, Body: resp}, nil
	}
	return resp, nil
}

func probe(ctx context.Context, c Check) CheckResult {
	res := CheckResult{Name: c.Name}
	p, ok := c.Target.(Pinger)
	switch {
	case c.Target == nil:
		res.Status = "skipped"
	case !ok:
		res.Status = "unknown"
	default:
		if err := p.Ping(ctx); err != nil {
			res.Status, res.Error = "fail", err.Error()
		} else {
			res.Status = "ok"
		}
	}
	return res
}

// @Summary Build version
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo
// @Router /meta/version [get]
func (h handlers) version(*http.Request) (any, error) { return version.Info(), nil }

// @Summary Service name and uptime
// @Tags Meta
// @Produce json
// @Success 200 {object} ServiceResponse
// @Router /meta/service [get]
func (h handlers) service(*http.Request) (any, error) {
	return ServiceResponse{
		Name:    h.ServiceName,
		Started: stamp(h.StartedAt),
		Uptime:  int64(time.Since(h.StartedAt) / time.Second),
	}, nil
}
