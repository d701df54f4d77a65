package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// chiRouter is the Router over any chi router, root or nested
type chiRouter struct{ r chi.Router }

// AdaptChi adapts a *chi.Mux to a Router
func AdaptChi(m *chi.Mux) Router { return chiRouter{r: m} }

func (c chiRouter) on(method, p string, h Handler) { c.r.Method(method, p, http.HandlerFunc(h)) }

func (c chiRouter) Get(p string, h Handler)     { c.on(http.MethodGet, p, h) }
func (c chiRouter) Post(p string, h Handler)    { c.on(http.MethodPost, p, h) }
func (c chiRouter) Put(p string, h Handler)     { c.on(http.MethodPut, p, h) }
func (c chiRouter) Patch(p string, h Handler)   { c.on(http.MethodPatch, p, h) }
func (c chiRouter) Delete(p string, h Handler)  { c.on(http.MethodDelete, p, h) }
func (c chiRouter) Head(p string, h Handler)    { c.on(http.MethodHead, p, h) }
func (c chiRouter) Options(p string, h Handler) { c.on(http.MethodOptions, p, h) }

func (c chiRouter) Handle(p string, h http.Handler)           { c.r.Handle(p, h) }
func (c chiRouter) Use(mw ...func(http.Handler) http.Handler) { c.r.Use(mw...) }

func (c chiRouter) Group(fn func(Router)) {
	c.r.Group(func(sub chi.Router) { fn(chiRouter{r: sub}) })
}

func (c chiRouter) Route(pattern string, fn func(Router)) {
	c.r.Route(pattern, func(sub chi.Router) { fn(chiRouter{r: sub}) })
}

// Mux is the underlying chi router as a plain handler
func (c chiRouter) Mux() http.Handler { return c.r }
