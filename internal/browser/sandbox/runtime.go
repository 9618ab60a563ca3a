package sandbox

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"

	"github.com/GriffinCanCode/webinterop/internal/browser/headless"
	"github.com/GriffinCanCode/webinterop/internal/modules/geolocation"
)

// Runtime executes scenarios against one headless browser. Runs are
// serialized.
type Runtime struct {
	vm      *goja.Runtime
	config  Config
	browser *headless.Browser
	mu      sync.Mutex

	// set for the duration of Run
	runCtx context.Context

	console   []LogEntry
	consoleMu sync.Mutex
}

// New creates a runtime bound to b.
func New(b *headless.Browser, config Config) (*Runtime, error) {
	if b == nil {
		return nil, errors.New("sandbox: browser is required")
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}

	r := &Runtime{config: config, browser: b}
	if err := r.reset(); err != nil {
		return nil, err
	}
	return r, nil
}

// Set exposes value to scripts as a global. Go functions are callable.
func (r *Runtime) Set(name string, value any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.vm.Set(name, value)
}

// Run executes script. A script exceeding the timeout or outliving ctx is
// interrupted; the partial console output is still returned.
func (r *Runtime) Run(ctx context.Context, script string) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.vm == nil {
		return nil, errors.New("sandbox: runtime is closed")
	}

	start := time.Now()
	runCtx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()
	r.runCtx = runCtx

	r.consoleMu.Lock()
	r.console = nil
	r.consoleMu.Unlock()

	stop, watcher := make(chan struct{}), make(chan struct{})
	go func() {
		defer close(watcher)
		select {
		case <-runCtx.Done():
			r.vm.Interrupt(runCtx.Err())
		case <-stop:
		}
	}()

	val, err := r.vm.RunString(script)
	close(stop)
	<-watcher
	r.vm.ClearInterrupt()
	r.runCtx = nil

	result := &Result{Duration: time.Since(start)}
	r.consoleMu.Lock()
	result.Console = append([]LogEntry(nil), r.console...)
	r.consoleMu.Unlock()

	// sleep returns early on cancellation, so the interrupt may go unseen
	if err != nil || runCtx.Err() != nil {
		err = runError(ctx, err)
		result.Error = err
		return result, err
	}
	result.Value = exportValue(val)
	return result, nil
}

func runError(ctx context.Context, err error) error {
	var interrupted *goja.InterruptedError
	if err != nil && !errors.As(err, &interrupted) {
		return fmt.Errorf("scenario failed: %w", err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return ErrTimeout
}

// Reset discards the script state. The browser is left untouched.
func (r *Runtime) Reset() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reset()
}

// Close releases the VM.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.vm = nil
	r.console = nil
	return nil
}

func (r *Runtime) reset() error {
	r.vm = goja.New()
	if r.config.MaxCallStack > 0 {
		r.vm.SetMaxCallStackSize(r.config.MaxCallStack)
	}
	r.console = nil
	return r.setupGlobals()
}

// setupGlobals removes host escapes and installs the scenario API.
func (r *Runtime) setupGlobals() error {
	for _, name := range []string{"require", "process", "module", "exports"} {
		if err := r.vm.Set(name, goja.Undefined()); err != nil {
			return err
		}
	}

	noop := func(goja.FunctionCall) goja.Value { return goja.Undefined() }
	globals := map[string]any{
		"setTimeout":  noop,
		"setInterval": noop,
		"sleep":       r.sleep,
		"geolocation": r.geolocationObject(),
	}
	if r.config.EnableConsole {
		console := r.vm.NewObject()
		for _, level := range []string{"log", "info", "warn", "error"} {
			if err := console.Set(level, r.makeConsoleFunc(level)); err != nil {
				return err
			}
		}
		globals["console"] = console
	}
	if r.config.EnableDOM {
		globals["dom"] = r.domObject()
		globals["document"] = r.documentObject()
	}

	for name, v := range globals {
		if err := r.vm.Set(name, v); err != nil {
			return fmt.Errorf("failed to install %s: %w", name, err)
		}
	}
	return nil
}

func (r *Runtime) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			parts[i] = arg.String()
		}

		r.consoleMu.Lock()
		r.console = append(r.console, LogEntry{
			Level:   level,
			Message: strings.Join(parts, " "),
			Time:    time.Now(),
		})
		r.consoleMu.Unlock()

		return goja.Undefined()
	}
}

// sleep blocks the script, giving asynchronous notifications time to reach
// the host. It returns early when the run is cancelled.
func (r *Runtime) sleep(call goja.FunctionCall) goja.Value {
	d := time.Duration(call.Argument(0).ToInteger()) * time.Millisecond
	if d <= 0 {
		return goja.Undefined()
	}
	ctx := r.runCtx
	if ctx == nil {
		ctx = context.Background()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
	return goja.Undefined()
}

func (r *Runtime) geolocationObject() *goja.Object {
	geo := r.browser.Geolocation
	obj := r.vm.NewObject()
	_ = obj.Set("PERMISSION_DENIED", int(geolocation.CodePermissionDenied))
	_ = obj.Set("POSITION_UNAVAILABLE", int(geolocation.CodePositionUnavailable))
	_ = obj.Set("TIMEOUT", int(geolocation.CodeTimeout))
	_ = obj.Set("setPosition", func(lat, lon, accuracy float64) {
		geo.SetPosition(lat, lon, accuracy)
	})
	_ = obj.Set("fail", func(code int, message string) {
		geo.Fail(geolocation.ErrorCode(code), message)
	})
	_ = obj.Set("watches", geo.ActiveWatches)
	return obj
}

func (r *Runtime) domObject() *goja.Object {
	doc, observers := r.browser.Document, r.browser.Observers
	obj := r.vm.NewObject()
	_ = obj.Set("add", func(id string) map[string]any {
		return r.createElementProxy(doc.Add(id))
	})
	_ = obj.Set("remove", doc.RemoveByID)
	_ = obj.Set("resize", observers.Resize)
	_ = obj.Set("batch", func(call goja.FunctionCall) goja.Value {
		changes, err := toChanges(call.Argument(0).Export())
		if err != nil {
			panic(r.vm.NewTypeError(err.Error()))
		}
		observers.Batch(changes...)
		return goja.Undefined()
	})
	_ = obj.Set("observed", observers.ObservedCount)
	return obj
}

func (r *Runtime) documentObject() *goja.Object {
	doc := r.browser.Document
	document := r.vm.NewObject()
	_ = document.Set("getElementById", func(id string) goja.Value {
		return r.firstElement(doc.Query("#" + id))
	})
	_ = document.Set("querySelector", func(selector string) goja.Value {
		return r.firstElement(doc.Query(selector))
	})
	return document
}

func (r *Runtime) firstElement(elements []*headless.Element) goja.Value {
	if len(elements) == 0 {
		return goja.Null()
	}
	return r.vm.ToValue(r.createElementProxy(elements[0]))
}

func (r *Runtime) createElementProxy(elem *headless.Element) map[string]any {
	return map[string]any{
		"tagName":     elem.Tag,
		"id":          elem.ID(),
		"className":   elem.Class,
		"textContent": elem.Text,
		"getAttribute": func(name string) string {
			return elem.GetAttribute(name)
		},
		"setAttribute": func(name, value string) {
			elem.SetAttribute(name, value)
		},
	}
}

// toChanges converts the exported argument of dom.batch.
func toChanges(v any) ([]headless.Change, error) {
	list, ok := v.([]any)
	if !ok {
		return nil, errors.New("dom.batch expects an array")
	}
	changes := make([]headless.Change, 0, len(list))
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("dom.batch: entry %d is not an object", i)
		}
		id, _ := m["id"].(string)
		if id == "" {
			return nil, fmt.Errorf("dom.batch: entry %d has no id", i)
		}
		legacy, _ := m["legacy"].(bool)
		changes = append(changes, headless.Change{
			ID:         id,
			Width:      toFloat(m["width"]),
			Height:     toFloat(m["height"]),
			LegacyOnly: legacy,
		})
	}
	return changes, nil
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int64:
		return float64(n)
	case float64:
		return n
	}
	return 0
}

func exportValue(val goja.Value) any {
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return nil
	}
	return val.Export()
}
