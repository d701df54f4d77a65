// Package module mounts the meta endpoints
package module

import (
	"context"
	"net/http"
	"time"

	"agora/internal/core/version"
	modkit "agora/internal/modkit"
	"agora/internal/modkit/httpkit"
	"agora/internal/modkit/swaggerkit"
	metahttp "agora/internal/services/api/meta/http"
)

// Module serves liveness, readiness and build info
type Module struct {
	b    modkit.Built
	deps metahttp.Deps
}

// New builds the meta module; every store in deps is optional
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	var rds any
	if c := deps.RDS; c != nil {
		rds = metahttp.PingFunc(func(ctx context.Context) error { return c.Ping(ctx).Err() })
	}
	d := metahttp.Deps{
		ServiceName: version.Service + "-api",
		StartedAt:   time.Now(),
		Checks: []metahttp.Check{
			{Name: "pg", Required: true, Target: deps.PG},
			{Name: "ch", Target: deps.CH},
			{Name: "redis", Target: rds},
		},
		PingDeadline: deps.Cfg.MayDuration("READY_TIMEOUT", 2*time.Second),
	}

	if b.SwaggerOn {
		op := func(path, summary string) swaggerkit.Operation {
			return swaggerkit.Operation{Method: http.MethodGet, Path: b.Prefix + path, Summary: summary, Tag: "Meta"}
		}
		swaggerkit.Describe(
			op("/health", "Liveness"),
			op("/ready", "Backend readiness"),
			op("/version", "Build version"),
			op("/service", "Service name and uptime"),
		)
	}
	return &Module{b: b, deps: d}
}

func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(r httpkit.Router) { metahttp.Register(r, m.deps) })
}

func (m *Module) Name() string { return m.b.Name }

// Ports is nil; nothing else depends on meta
func (m *Module) Ports() any { return nil }
