package modkit

import (
	"net/http"

	"agora/internal/modkit/httpkit"
	pstrings "agora/internal/platform/strings"
)

// Option adjusts how a module is built
type Option func(*Built)

// Built is the resolved option set a module constructor reads from
type Built struct {
	Name      string
	Prefix    string
	Mw        []func(http.Handler) http.Handler
	SwaggerOn bool

	// Subrouter wraps the router the module mounts on; identity by default
	Subrouter func(httpkit.Router) httpkit.Router
	// Register attaches extra routes after the module's own
	Register func(httpkit.Router)
}

// Build applies opts in order; later options win
func Build(opts ...Option) Built {
	b := Built{
		Subrouter: func(r httpkit.Router) httpkit.Router { return r },
		Register:  func(httpkit.Router) {},
	}
	for _, o := range opts {
		o(&b)
	}
	b.Mw = append([]func(http.Handler) http.Handler(nil), b.Mw...)
	return b
}

// WithName panics on a blank name
func WithName(name string) Option {
	return func(b *Built) { b.Name = pstrings.MustString(name, "module name") }
}

// WithPrefix normalizes prefix to a leading slash form; the bare root panics
func WithPrefix(prefix string) Option {
	return func(b *Built) { b.Prefix = pstrings.MustPrefix(prefix) }
}

// WithMiddlewares appends to the module middleware chain
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(b *Built) { b.Mw = append(b.Mw, mw...) }
}

// WithSwagger makes the module describe its routes in the served document
func WithSwagger(on bool) Option { return func(b *Built) { b.SwaggerOn = on } }

func WithSubrouter(fn func(httpkit.Router) httpkit.Router) Option {
	return func(b *Built) {
		if fn != nil {
			b.Subrouter = fn
		}
	}
}

func WithRegister(fn func(httpkit.Router)) Option {
	return func(b *Built) {
		if fn != nil {
			b.Register = fn
		}
	}
}

// Mount routes own, then Register, under Prefix with Mw applied and Subrouter wrapping
func (b Built) Mount(r httpkit.Router, own func(httpkit.Router)) {
	httpkit.MountUnder(r, b.Prefix, b.Mw, func(sub httpkit.Router) {
		sub = b.Subrouter(sub)
		own(sub)
		b.Register(sub)
	})
}
