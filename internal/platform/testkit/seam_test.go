package testkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var dial = func() string { return "real" }

func TestSwap(t *testing.T) {
	t.Run("swapped", func(t *testing.T) {
		Serial(t)
		Swap(t, &dial, func() string { return "fake" })
		assert.Equal(t, "fake", dial())
	})
	assert.Equal(t, "real", dial())
}

func TestSerial_ReleasesOnCleanup(t *testing.T) {
	t.Run("first", func(t *testing.T) { Serial(t) })
	t.Run("second", func(t *testing.T) { Serial(t) })
	assert.True(t, seamMu.TryLock())
	seamMu.Unlock()
}
