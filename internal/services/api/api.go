// Package api provides the HTTP API for the application
package api

import (
	"agora/internal/platform/config"
	"agora/internal/platform/logger"
	phttp "agora/internal/platform/net/http"
	"agora/internal/platform/store"

	"agora/internal/modkit"
	"agora/internal/modkit/httpkit"
	"agora/internal/modkit/module"
	"agora/internal/modkit/swaggerkit"

	metamod "agora/internal/services/api/meta/module"
	commentsmod "agora/internal/services/comments/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API service onto the given router
// Store must carry PG; CH and RDS are optional
func Mount(r phttp.Router, opt Options) []module.Module {
	mods := Modules(opt)

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(httpkit.StackFromConfig(opt.Config)), func(api httpkit.Router) {
		// Swagger + profiler
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// each module mounts under its own prefix
			m.MountRoutes(api)
		}
	})
	return mods
}

// Modules builds the API modules from the store without mounting them
func Modules(opt Options) []module.Module {
	deps := Deps(opt)
	docs := modkit.WithSwagger(opt.EnableSwagger)
	return []module.Module{
		metamod.New(deps, docs),
		commentsmod.New(deps, commentsmod.FromConfig(deps.Cfg), docs),
	}
}

// Deps derives the shared module deps from the store
func Deps(opt Options) modkit.Deps {
	deps := modkit.Deps{Cfg: opt.Config}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}
	if opt.Store == nil {
		return deps
	}
	deps.PG = opt.Store.PG
	deps.CH = opt.Store.CH
	deps.RDS = opt.Store.RDS
	if opt.Store.PG != nil {
		deps.Reads = opt.Store.Reads()
	}
	return deps
}
