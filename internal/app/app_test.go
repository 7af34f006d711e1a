package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tsl-sdr/gochannelizer/internal/config"
)

func TestAppRunningStartsTrueAndStopFlipsIt(t *testing.T) {
	a := New(&config.Config{})
	require.True(t, a.Running())
	a.Stop()
	require.False(t, a.Running())
}

func TestAppOnUSR2RegistersMultipleHandlersWithoutPanicking(t *testing.T) {
	a := New(&config.Config{})
	require.NotPanics(t, func() {
		a.OnUSR2(func() {})
		a.OnUSR2(func() {})
	})
}
