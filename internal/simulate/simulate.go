// Package simulate runs a scenario script against a headless browser that
// is attached to the interop proxies over an in-memory bridge.
//
// Besides the sandbox globals, scenarios get a host object calling the
// proxies the way a server-side component would:
//
//	host.locate(timeoutMs)       // one-shot position, as a plain object
//	host.watch(key)              // true when a new watch was created
//	host.isWatched(key)
//	host.clearWatch(key)
//	host.clearWatches()
//	host.observe(id, ...)
//	host.unobserve(id, ...)
//	host.disconnect()
//	host.log(level, message)     // true when the level is enabled
//	host.setLogLevel(module, level)
package simulate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webinterop/internal/bridge"
	"github.com/GriffinCanCode/webinterop/internal/browser"
	"github.com/GriffinCanCode/webinterop/internal/browser/headless"
	"github.com/GriffinCanCode/webinterop/internal/browser/sandbox"
	"github.com/GriffinCanCode/webinterop/internal/domain/component"
	"github.com/GriffinCanCode/webinterop/internal/infrastructure/logging"
	"github.com/GriffinCanCode/webinterop/internal/interop"
	"github.com/GriffinCanCode/webinterop/internal/modules/geolocation"
	"github.com/GriffinCanCode/webinterop/internal/wire"
)

// Options configures a simulation.
type Options struct {
	Codec       wire.Codec
	CallTimeout time.Duration
	// Settle is how long to wait after the script for notifications still
	// in flight.
	Settle  time.Duration
	Sandbox sandbox.Config
	Logger  *zap.Logger
	// HTML seeds the document before the script runs.
	HTML string
}

// DefaultOptions returns the options used by interopctl.
func DefaultOptions() Options {
	return Options{
		Codec:       wire.JSON,
		CallTimeout: 5 * time.Second,
		Settle:      50 * time.Millisecond,
		Sandbox:     sandbox.DefaultConfig(),
	}
}

// Report is the outcome of a scenario.
type Report struct {
	Result  *sandbox.Result
	Events  []component.Event
	Console []headless.LogEntry
}

// Run executes script and collects what the host and the browser saw. A
// failed or interrupted script still yields the report up to that point,
// together with the script error.
func Run(ctx context.Context, script string, opts Options) (*Report, error) {
	if opts.Codec == nil {
		opts.Codec = wire.JSON
	}
	logger := logging.OrNop(opts.Logger)

	b := headless.New()
	if opts.HTML != "" {
		if err := b.Document.LoadHTML(strings.NewReader(opts.HTML)); err != nil {
			return nil, fmt.Errorf("failed to load document: %w", err)
		}
	}

	hostConn, browserConn := bridge.Pipe()
	session := bridge.NewSession(hostConn, opts.Codec, bridge.SessionOptions{
		Logger:      logger,
		CallTimeout: opts.CallTimeout,
	})
	host := browser.NewHost(browserConn, opts.Codec, b.Platform(), browser.Options{Logger: logger})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() { _ = session.Run(runCtx) }()
	go func() { _ = host.Run(runCtx) }()
	defer func() {
		_ = host.Close()
		_ = session.Close()
	}()

	readyCtx, readyCancel := context.WithTimeout(runCtx, opts.CallTimeout)
	_, err := session.WaitReady(readyCtx)
	readyCancel()
	if err != nil {
		return nil, fmt.Errorf("browser did not connect: %w", err)
	}

	components := component.NewManager(logger)
	comp := components.Attach(session)
	defer components.DetachAll(context.WithoutCancel(ctx))

	rt, err := sandbox.New(b, opts.Sandbox)
	if err != nil {
		return nil, err
	}
	defer rt.Close()
	if err := rt.Set("host", hostObject(runCtx, comp)); err != nil {
		return nil, err
	}

	result, err := rt.Run(runCtx, script)
	if result == nil {
		return nil, err
	}

	if err == nil && opts.Settle > 0 {
		select {
		case <-time.After(opts.Settle):
		case <-ctx.Done():
		}
	}

	return &Report{
		Result:  result,
		Events:  comp.Events(0),
		Console: b.Console.Entries(),
	}, err
}

func hostObject(ctx context.Context, comp *component.Component) map[string]any {
	return map[string]any{
		"locate": func(timeoutMs int64) (map[string]any, error) {
			var opts *geolocation.PositionOptions
			if timeoutMs > 0 {
				opts = &geolocation.PositionOptions{Timeout: geolocation.Duration(time.Duration(timeoutMs) * time.Millisecond)}
			}
			result, err := comp.Geolocation.GetLocation(ctx, opts)
			if err != nil {
				return nil, err
			}
			return plain(result)
		},
		"watch": func(key string) (bool, error) {
			_, created, err := comp.Geolocation.WatchPosition(ctx, key, nil)
			return created, err
		},
		"isWatched": func(key string) (bool, error) {
			return comp.Geolocation.IsWatched(ctx, key)
		},
		"clearWatch": func(key string) error {
			return comp.Geolocation.ClearWatch(ctx, key)
		},
		"clearWatches": func() error {
			return comp.Geolocation.ClearWatches(ctx)
		},
		"observe": func(ids ...string) error {
			return comp.Observer.AddResizers(ctx, ids)
		},
		"unobserve": func(ids ...string) error {
			return comp.Observer.RemoveResizers(ctx, ids)
		},
		"disconnect": func() error {
			return comp.Observer.DisconnectResizers(ctx)
		},
		"log": func(level, message string) (bool, error) {
			l, err := interop.ParseLogLevel(level)
			if err != nil {
				return false, err
			}
			return comp.Logger.IsEnabled(l), comp.Logger.Log(ctx, l, message, "")
		},
		"setLogLevel": func(module, level string) error {
			l, err := interop.ParseLogLevel(level)
			if err != nil {
				return err
			}
			switch module {
			case "geolocation":
				return comp.Geolocation.SetLogLevel(ctx, l)
			case "observer":
				return comp.Observer.SetLogLevel(ctx, l)
			}
			return interop.InvalidArgument("unknown module %q", module)
		},
	}
}

// plain converts v to the map a script can read with JSON field names.
func plain(v any) (map[string]any, error) {
	data, err := sonic.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := sonic.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
