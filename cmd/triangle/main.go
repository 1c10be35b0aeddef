// Command triangle draws a colored triangle through the dekoi renderer in
// a GLFW or SDL window.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/cockroachdb/errors"

	dekoi "github.com/christophercrouzet/dekoi-sub000"
)

func init() {
	// Window systems must be driven from the main thread.
	runtime.LockOSThread()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "triangle: %v\n", err)
		if details := errors.FlattenDetails(err); details != "" {
			fmt.Fprintln(os.Stderr, details)
		}
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a TOML configuration file")
	backend := flag.String("backend", "", "window backend, overrides the configuration (glfw or sdl)")
	maxFrames := flag.Int("frames", 0, "exit after drawing this many frames, 0 to run until the window closes")
	statsInterval := flag.Int("stats", 600, "frames between two frame time reports")
	flag.Parse()

	cfg := dekoi.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = dekoi.LoadConfig(*configPath); err != nil {
			return err
		}
	}
	if *backend != "" {
		cfg.Window.Backend = *backend
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	level, _ := dekoi.ParseLogLevel(cfg.Renderer.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level.SlogLevel()}))

	win, err := openWindow(cfg.Window)
	if err != nil {
		return err
	}
	defer win.close()

	info := cfg.RendererCreateInfo()
	if err := sceneInfo(&info); err != nil {
		return err
	}
	info.API = win.driver()
	info.WindowSystem = win.system()
	info.Logger = dekoi.NewSlogLogger(logger)
	allocator := dekoi.NewHostAllocator()
	info.Allocator = allocator
	if extent := win.extent(); extent.Width > 0 && extent.Height > 0 {
		info.SurfaceExtent = extent
	}

	renderer, err := dekoi.CreateRenderer(&info)
	if err != nil {
		return err
	}
	defer func() {
		renderer.Destroy()
		logger.Debug("renderer torn down", "host", allocator.Stats())
	}()

	stats := newFrameStats(logger, max(*statsInterval, 1))
	for frame := 0; *maxFrames == 0 || frame < *maxFrames; frame++ {
		open, resized := win.poll()
		if !open {
			break
		}

		extent := win.extent()
		if extent.Width == 0 || extent.Height == 0 {
			// Minimized.
			win.wait()
			continue
		}
		if resized {
			if err := renderer.Resize(extent); err != nil {
				return err
			}
		}

		stats.begin()
		err := renderer.Draw()
		stats.end(err != nil)
		switch {
		case err == nil:
		case errors.Is(err, dekoi.ErrNotAvailable):
			logger.Debug("frame skipped", "error", err)
		default:
			return err
		}
	}
	return nil
}
