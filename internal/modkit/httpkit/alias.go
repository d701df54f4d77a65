// Package httpkit re-exports the platform http seam for modules
// modules import this instead of internal/platform/net/http
package httpkit

import (
	"net/http"

	phttp "agora/internal/platform/net/http"
)

type (
	// Envelope is the wire envelope
	Envelope = phttp.Envelope

	// Response is a status, body and header set
	Response = phttp.Response

	// Handler is the platform handler func
	Handler = phttp.Handler

	// Router is the platform router seam
	Router = phttp.Router
)

// OK returns a 200 response
func OK(data any) Response { return phttp.OK(data) }

// Created returns a 201 response
func Created(data any) Response { return phttp.Created(data) }

// NoContent returns a 204 response
func NoContent() Response { return phttp.NoContent() }

// Error maps err to a status and envelope
func Error(err error) Response { return phttp.Error(err) }

// JSON binds and validates a T body before calling fn
func JSON[T any](fn func(*http.Request, T) (any, error)) Handler {
	return phttp.JSONHandler(fn)
}

// Call adapts a handler that reads no body itself, or binds on its own terms
func Call(fn func(*http.Request) (any, error)) Handler {
	return phttp.CallHandler(fn)
}

// Handle adapts a Response returning func
func Handle(fn func(*http.Request) Response) Handler {
	return phttp.Handle(fn)
}
