package net_test

import (
	"context"
	"testing"

	pnet "agora/internal/platform/net"
)

func TestWithRequest_And_Getters(t *testing.T) {
	base := context.Background()

	t.Run("sets request id", func(t *testing.T) {
		ctx := pnet.WithRequest(base, "req-123")
		if got := pnet.RequestID(ctx); got != "req-123" {
			t.Fatalf("RequestID got %q want %q", got, "req-123")
		}
	})

	t.Run("empty id returns same ctx", func(t *testing.T) {
		ctx := pnet.WithRequest(base, "")
		if ctx != base {
			t.Fatalf("expected ctx to be unchanged when id is empty")
		}
		if got := pnet.RequestID(ctx); got != "" {
			t.Fatalf("RequestID got %q want empty", got)
		}
	})
}

func TestWithActor(t *testing.T) {
	base := context.Background()

	if got := pnet.ActorID(base); got != 0 {
		t.Fatalf("ActorID on bare ctx = %d", got)
	}
	if ctx := pnet.WithActor(base, 0); ctx != base {
		t.Fatalf("anonymous actor should not be stored")
	}
	ctx := pnet.WithActor(pnet.WithRequest(base, "r1"), 42)
	if got := pnet.ActorID(ctx); got != 42 {
		t.Fatalf("ActorID got %d want 42", got)
	}
	if got := pnet.RequestID(ctx); got != "r1" {
		t.Fatalf("RequestID lost: %q", got)
	}
}
