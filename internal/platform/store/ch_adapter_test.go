package store

import (
	"context"
	"testing"

	"agora/internal/platform/store/ch"

	"github.com/stretchr/testify/assert"
)

func TestCHAdapter_Insert(t *testing.T) {
	t.Parallel()

	a := newCHAdapter(&ch.CH{})
	err := a.Insert(context.Background(), "comment_events", struct{}{})
	assert.ErrorContains(t, err, "unsupported")
	assert.NoError(t, a.Insert(context.Background(), "comment_events", [][]any{}), "empty batch is a no-op")
}

func TestCHAdapter_Ping(t *testing.T) {
	t.Parallel()

	assert.Error(t, chSeam{}.Ping(context.Background()))
	assert.Error(t, chSeam{&ch.CH{}}.Ping(context.Background()), "unconnected")
}
