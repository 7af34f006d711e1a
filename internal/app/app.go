// Package app provides the explicit application context that replaces
// the teacher's module-level globals (a package-level audio_config, a
// single wake_up_cond, etc.) with one *App constructed in main and passed
// down to every subsystem constructor, carrying the logger, config,
// running flag, and signal registries.
package app

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/tsl-sdr/gochannelizer/internal/buffer"
	"github.com/tsl-sdr/gochannelizer/internal/config"
	"github.com/tsl-sdr/gochannelizer/internal/logging"
)

// App is the shared context passed to every subsystem constructor:
// logger, config, and the running flag and signal registries that used to
// be package-level state.
type App struct {
	Log    *log.Logger
	Config *config.Config

	running atomic.Bool

	usr2Mu       sync.Mutex
	usr2Handlers []func()

	sigCh chan os.Signal
}

// New constructs an App from a loaded configuration; SIGINT is wired to
// graceful shutdown separately, by CatchSIGINT. The caller's frame allocator is constructed
// separately (its sizing depends on the caller's chosen frame length) and
// is not owned by App.
func New(cfg *config.Config) *App {
	a := &App{
		Log:    logging.New(),
		Config: cfg,
	}
	a.running.Store(true)
	return a
}

// Running reports whether the application should keep processing.
// Producers and workers test it at their next work-queue wait or buffer
// boundary, never mid-buffer.
func (a *App) Running() bool { return a.running.Load() }

// Stop flips Running to false. Idempotent.
func (a *App) Stop() { a.running.Store(false) }

// CatchSIGINT registers the process's SIGINT handler, flipping Running to
// false on receipt. Must be called at most once per App.
func (a *App) CatchSIGINT() {
	a.sigCh = make(chan os.Signal, 1)
	signal.Notify(a.sigCh, syscall.SIGINT)
	go func() {
		for range a.sigCh {
			a.Log.Info("SIGINT received, shutting down")
			a.Stop()
			return
		}
	}()
}

// OnUSR2 registers a handler invoked, in registration order, every time
// the process receives SIGUSR2. Multiple handlers may be registered;
// SIGUSR2 is multiplexed across all of them.
func (a *App) OnUSR2(handler func()) {
	a.usr2Mu.Lock()
	first := len(a.usr2Handlers) == 0
	a.usr2Handlers = append(a.usr2Handlers, handler)
	a.usr2Mu.Unlock()

	if !first {
		return
	}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGUSR2)
	go func() {
		for range ch {
			a.usr2Mu.Lock()
			handlers := append([]func(){}, a.usr2Handlers...)
			a.usr2Mu.Unlock()
			for _, h := range handlers {
				h()
			}
		}
	}()
}

// NewFrameAllocator builds the application's shared sample buffer pool.
// Sizing (frame length, pool depth) is the caller's decision — it depends
// on the configured sample rate and device, which App itself doesn't
// know.
func (a *App) NewFrameAllocator(sampleType buffer.SampleType, frameLen, nFrames int) (*buffer.FrameAllocator, error) {
	return buffer.NewFrameAllocator(sampleType, frameLen, nFrames)
}
