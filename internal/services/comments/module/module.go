// Package module wires comments into the API using modkit
package module

import (
	"context"
	"fmt"
	"strings"
	"time"

	"agora/internal/adapters/access"
	"agora/internal/adapters/activity"
	"agora/internal/adapters/identity"
	"agora/internal/adapters/render"
	modkit "agora/internal/modkit"
	"agora/internal/modkit/httpkit"
	"agora/internal/modkit/repokit"
	"agora/internal/modkit/swaggerkit"
	"agora/internal/platform/logger"
	"agora/internal/services/comments/domain"
	commentshttp "agora/internal/services/comments/http"
	commentsrepo "agora/internal/services/comments/repo"
	commentssvc "agora/internal/services/comments/service"
)

// statementTimeout caps every comment write transaction
const statementTimeout = 5 * time.Second

// Module owns the comment service and its routes
type Module struct {
	b     modkit.Built
	ports Ports
}

// New constructs the comments module; deps.PG is required, RDS and CH are optional
func New(deps modkit.Deps, o Options, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("comments"),
		modkit.WithPrefix("/comments"),
		modkit.WithMiddlewares(httpkit.Actors(httpkit.NewHeaderPort(""))),
	}, opts...)...)

	log := logger.Named("comments")
	reads := deps.ReadQuerier()

	acl := access.New(reads, access.Options{AnonymousRights: o.AnonymousRights})

	var people domain.IdentityLookup = identity.NewPG(reads)
	if deps.RDS != nil {
		people = identity.NewCached(deps.RDS, people, o.IdentityTTL)
	}

	sopts := commentssvc.Options{
		Renderer:          renderer(o, log),
		Identity:          people,
		Access:            acl,
		Pages:             acl,
		Replica:           reads,
		ContentNamespaces: o.Namespaces,
		RenderAttempts:    o.RenderAttempts,
		UnknownName:       o.UnknownName,
	}
	if deps.CH != nil {
		sopts.Activity = activity.New(deps.CH)
	}

	db := repokit.WithRetries(repokit.WithBeginHooks(deps.PG, func(ctx context.Context, q repokit.Queryer) error {
		_, err := q.Exec(ctx, fmt.Sprintf("set local statement_timeout = %d", statementTimeout.Milliseconds()))
		return err
	}), repokit.RetryOptions{Attempts: o.TxAttempts})
	svc := commentssvc.New(db, commentsrepo.NewPG(), sopts)

	if b.SwaggerOn {
		swaggerkit.Describe(commentshttp.Operations(b.Prefix)...)
	}

	log.Info().
		Str("render_mode", o.RenderMode).
		Bool("identity_cache", deps.RDS != nil).
		Bool("activity", deps.CH != nil).
		Ints("namespaces", o.Namespaces).
		Msg("comments module ready")

	return &Module{b: b, ports: Ports{Comments: svc, Authority: acl}}
}

func renderer(o Options, log *logger.Logger) domain.Renderer {
	if strings.EqualFold(o.RenderMode, RenderRemote) {
		if o.RenderURL == "" {
			log.Warn().Msg("remote render mode without a url, every write will fail")
		}
		return render.NewRemote(render.RemoteOptions{
			URL:     o.RenderURL,
			Timeout: o.RenderTimeout,
		})
	}
	return render.NewMarkdown()
}

// MountRoutes mounts the comment endpoints under the module prefix
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(r httpkit.Router) { commentshttp.Register(r, m.ports.Comments, m.ports.Authority) })
}

func (m *Module) Name() string { return m.b.Name }
