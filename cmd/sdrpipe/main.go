// Command sdrpipe is the receiver daemon: it reads one or more wideband
// IQ channels from a configured source, runs each configured channel's
// demodulation and protocol-decode pipeline, and emits either PCM to a
// FIFO or decoded protocol messages to the log.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/pflag"

	"github.com/tsl-sdr/gochannelizer/internal/app"
	"github.com/tsl-sdr/gochannelizer/internal/buffer"
	"github.com/tsl-sdr/gochannelizer/internal/channel"
	"github.com/tsl-sdr/gochannelizer/internal/config"
	"github.com/tsl-sdr/gochannelizer/internal/iqsource"
	"github.com/tsl-sdr/gochannelizer/internal/logging"
)

const shutdownPollInterval = 100 * time.Millisecond

const (
	frameLen   = 4096
	poolFrames = 64
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: sdrpipe [options] <config file> [config file ...]\n")
	pflag.PrintDefaults()
}

func main() {
	help := pflag.BoolP("help", "h", false, "Display usage and exit.")
	pflag.Usage = usage
	pflag.Parse()

	if *help {
		usage()
		os.Exit(0)
	}

	if len(pflag.Args()) == 0 {
		usage()
		os.Exit(1)
	}

	if err := run(pflag.Args()); err != nil {
		logging.New().Error("startup failed", "err", err)
		os.Exit(1)
	}
}

func run(configPaths []string) error {
	cfg, err := config.Load(configPaths...)
	if err != nil {
		return err
	}

	a := app.New(cfg)
	a.CatchSIGINT()

	runtime.LockOSThread()
	if err := config.PinCurrentThread(cfg.CoreIDs); err != nil {
		a.Log.Warn("CPU pinning failed, continuing unpinned", "err", err)
	}

	src, err := iqsource.NewFileSource(cfg.Device.Path, cfg.Device.BytesPerSecond)
	if err != nil {
		return fmt.Errorf("opening device: %w", err)
	}
	defer src.Close()

	alloc, err := a.NewFrameAllocator(buffer.ComplexI16, frameLen, poolFrames)
	if err != nil {
		return fmt.Errorf("allocating frame pool: %w", err)
	}

	pipelines := make([]*app.ChannelPipeline, len(cfg.Channels))
	for i, ch := range cfg.Channels {
		p, err := app.NewChannelPipeline(ch, float64(cfg.SampleRate), a.Log, func(freqHz uint32, message any) {
			a.Log.Info("decoded message", "freqHz", freqHz, "message", fmt.Sprintf("%+v", message))
		})
		if err != nil {
			return fmt.Errorf("channel %d: %w", i, err)
		}
		defer p.Close()
		pipelines[i] = p
	}

	producer := channel.NewProducer(src, alloc, len(pipelines), a.Log)
	workers := make([]*channel.Worker, len(pipelines))
	for i, p := range pipelines {
		workers[i] = channel.NewWorker(i, producer.Queue(i), p, a.Log)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		ticker := time.NewTicker(shutdownPollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !a.Running() {
					cancel()
					return
				}
			}
		}
	}()

	errCh := make(chan error, 1+len(workers))
	go func() { errCh <- producer.Run(ctx) }()
	for _, w := range workers {
		w := w
		go func() { errCh <- w.Run(ctx) }()
	}

	for range pipelines {
		<-errCh
	}
	<-errCh // producer

	return nil
}
