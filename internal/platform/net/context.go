// Package net provides utilities for working with request contexts
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// ctxKey is an unexported key type for context values
type ctxKey string

const keyActorID ctxKey = "actor_id"

// WithRequest annotates context with the request id
func WithRequest(ctx context.Context, reqID string) context.Context {
	if reqID == "" {
		return ctx
	}
	return context.WithValue(ctx, chimw.RequestIDKey, reqID)
}

// WithActor annotates context with the calling actor id
// zero is the anonymous caller and is not stored
func WithActor(ctx context.Context, actorID int64) context.Context {
	if actorID > 0 {
		ctx = context.WithValue(ctx, keyActorID, actorID)
	}
	return ctx
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string {
	return chimw.GetReqID(ctx)
}

// ActorID returns the calling actor id, zero when anonymous
func ActorID(ctx context.Context) int64 {
	if v, ok := ctx.Value(keyActorID).(int64); ok {
		return v
	}
	return 0
}
