// Package swaggerkit serves swagger UI over a document that modules describe while wiring
package swaggerkit

import (
	"net/http"
	"strconv"
	"strings"
	"sync"

	"agora/internal/core/version"
	phttp "agora/internal/platform/net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// BasePath is where versioned routes live; operation paths are relative to it
const BasePath = "/api/v1"

// SpecMutator adjusts the document before it is served
type SpecMutator func(map[string]any)

// Operation is one documented route
type Operation struct {
	Method  string
	Path    string
	Summary string
	Tag     string
	// Status is the success status, 200 when zero
	Status int
}

var (
	mu       sync.Mutex
	mutators []SpecMutator
)

// Register adds a mutator applied to every served document
func Register(m SpecMutator) {
	if m == nil {
		return
	}
	mu.Lock()
	mutators = append(mutators, m)
	mu.Unlock()
}

// Describe registers a mutator that adds ops to the paths object
func Describe(ops ...Operation) {
	Register(Paths(ops...))
}

// Paths returns a mutator adding ops; existing entries are left alone
func Paths(ops ...Operation) SpecMutator {
	return func(spec map[string]any) {
		paths := object(spec, "paths")
		for _, op := range ops {
			node := object(paths, op.Path)
			method := strings.ToLower(op.Method)
			if _, ok := node[method]; ok {
				continue
			}
			status := op.Status
			if status == 0 {
				status = http.StatusOK
			}
			node[method] = map[string]any{
				"summary": op.Summary,
				"tags":    []any{op.Tag},
				"responses": map[string]any{
					itoa(status): map[string]any{"description": http.StatusText(status)},
				},
			}
		}
	}
}

// Document builds the document from registered mutators
func Document() map[string]any {
	info := version.Info()
	spec := map[string]any{
		"openapi": "3.0.3",
		"info":    map[string]any{"title": info.Service, "version": info.Version},
		"servers": []any{map[string]any{"url": BasePath}},
		"paths":   map[string]any{},
	}

	mu.Lock()
	ms := append([]SpecMutator(nil), mutators...)
	mu.Unlock()
	for _, m := range ms {
		m(spec)
	}

	errorSchema(spec)
	defaultErrors(spec)
	return spec
}

// Mount serves the UI and the document under /api/docs when enabled
func Mount(r phttp.Router, enabled bool) {
	if !enabled {
		return
	}
	r.Get("/api/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/docs/", http.StatusPermanentRedirect)
	})
	r.Get("/api/docs/doc.json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		phttp.JSON(w, http.StatusOK, Document())
	})
	r.Handle("/api/docs/*", httpSwagger.Handler(
		httpSwagger.InstanceName("api"),
		httpSwagger.URL("/api/docs/doc.json"),
	))
}

func errorSchema(spec map[string]any) {
	schemas := object(object(spec, "components"), "schemas")
	if _, ok := schemas["ErrorResponse"]; ok {
		return
	}
	schemas["ErrorResponse"] = map[string]any{
		"type": "object",
		"properties": map[string]any{
			"status_code": map[string]any{"type": "integer"},
			"status":      map[string]any{"type": "string"},
			"code":        map[string]any{"type": "integer"},
			"reason":      map[string]any{"type": "string"},
			"field":       map[string]any{"type": "string"},
			"error":       map[string]any{"type": "string"},
			"request_id":  map[string]any{"type": "string"},
		},
		"required": []any{"status_code", "status"},
	}
}

// defaultErrors gives every operation a 400 and 500 pointing at ErrorResponse
func defaultErrors(spec map[string]any) {
	paths, _ := spec["paths"].(map[string]any)
	for _, p := range paths {
		node, _ := p.(map[string]any)
		for _, raw := range node {
			op, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			responses := object(op, "responses")
			for _, status := range []int{http.StatusBadRequest, http.StatusInternalServerError} {
				if _, ok := responses[itoa(status)]; ok {
					continue
				}
				responses[itoa(status)] = map[string]any{
					"description": http.StatusText(status),
					"content": map[string]any{
						"application/json": map[string]any{
							"schema": map[string]any{"$ref": "#/components/schemas/ErrorResponse"},
						},
					},
				}
			}
		}
	}
}

func object(parent map[string]any, key string) map[string]any {
	if m, ok := parent[key].(map[string]any); ok {
		return m
	}
	m := map[string]any{}
	parent[key] = m
	return m
}

func itoa(status int) string { return strconv.Itoa(status) }
