package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/GriffinCanCode/webinterop/internal/interop"
	"github.com/GriffinCanCode/webinterop/internal/modules/jslogger"
)

const (
	msgNotString = "log requested but message is not a string"
	msgEmpty     = "log requested but message is empty"

	testEvent   = "testLogger"
	testMessage = "Testing Logger"

	isoMillis = "2006-01-02T15:04:05.000Z"
)

type jsLoggerModule struct {
	console Console
	now     func() time.Time
}

func newJsLoggerModule(p Platform) *jsLoggerModule {
	return &jsLoggerModule{console: p.Console, now: p.now}
}

func (j *jsLoggerModule) Namespace() interop.Namespace { return interop.NamespaceJsLogger }

func (j *jsLoggerModule) Invoke(ctx context.Context, method string, args interop.Args) (any, error) {
	if level, ok := strings.CutPrefix(method, "log"); ok && level != "Raw" {
		parsed, err := interop.ParseLogLevel(level)
		if err != nil || parsed == interop.LevelNone {
			return nil, fmt.Errorf("%w: %s", interop.ErrUnknownIdentifier, interop.MethodName(j.Namespace(), method))
		}
		var cfg jslogger.WireConfig
		var message any
		var event string
		if _, err := decodeArg(args, 0, "config", &cfg); err != nil {
			return nil, err
		}
		if _, err := decodeArg(args, 1, "message", &message); err != nil {
			return nil, err
		}
		if _, err := decodeArg(args, 2, "event", &event); err != nil {
			return nil, err
		}
		j.log(cfg, parsed, message, event)
		return nil, nil
	}

	switch method {
	case "logRaw":
		var message any
		var style string
		if _, err := decodeArg(args, 0, "message", &message); err != nil {
			return nil, err
		}
		if _, err := decodeArg(args, 1, "style", &style); err != nil {
			return nil, err
		}
		j.logRaw(message, style)
		return nil, nil

	case "test":
		var cfg *jslogger.WireConfig
		var message any
		if _, err := decodeArg(args, 0, "config", &cfg); err != nil {
			return nil, err
		}
		present, err := decodeArg(args, 1, "message", &message)
		if err != nil {
			return nil, err
		}
		if !present {
			message = testMessage
		}
		j.test(cfg, message)
		return nil, nil

	case "isEnabled":
		var cfg jslogger.WireConfig
		var level int
		if _, err := decodeArg(args, 0, "config", &cfg); err != nil {
			return nil, err
		}
		if _, err := decodeArg(args, 1, "level", &level); err != nil {
			return nil, err
		}
		return isEnabled(cfg, interop.LogLevel(level)), nil
	}
	return nil, fmt.Errorf("%w: %s", interop.ErrUnknownIdentifier, interop.MethodName(j.Namespace(), method))
}

func isEnabled(cfg jslogger.WireConfig, level interop.LogLevel) bool {
	return level != interop.LevelNone &&
		level >= interop.LogLevel(cfg.MinLevel) &&
		level <= interop.LogLevel(cfg.MaxLevel)
}

func (j *jsLoggerModule) log(cfg jslogger.WireConfig, level interop.LogLevel, message any, event string) {
	if !isEnabled(cfg, level) || j.console == nil {
		return
	}
	writeLevel(j.console, level, FormatMessage(cfg.Template, cfg.Category, level, event, message, j.now()))
}

func (j *jsLoggerModule) logRaw(message any, style string) {
	if j.console == nil {
		return
	}
	j.console.Log("%c"+checkMessage(message), style)
}

func (j *jsLoggerModule) test(cfg *jslogger.WireConfig, message any) {
	if cfg == nil {
		cfg = &jslogger.WireConfig{
			Category: "test",
			MinLevel: int(interop.LevelTrace),
			MaxLevel: int(interop.LevelCritical),
			Template: jslogger.DefaultTemplate,
		}
	}
	if j.console != nil {
		j.console.Log(fmt.Sprintf("%s: Template [%s]", testEvent, cfg.Template), "")
	}
	for level := interop.LevelTrace; level <= interop.LevelCritical; level++ {
		j.log(*cfg, level, message, testEvent)
	}
}

// FormatMessage lays out a console line. The first occurrence of each
// placeholder is replaced; category, event, timestamp and level values are
// followed by a space, and placeholders missing from template are skipped.
func FormatMessage(template, category string, level interop.LogLevel, event string, message any, now time.Time) string {
	r := []string{
		"{category}", category + " ",
		"{level}", level.String() + " ",
		"{event}", event + " ",
		"{timestamp}", now.UTC().Format(isoMillis) + " ",
		"{message}", checkMessage(message),
	}
	out := template
	for i := 0; i < len(r); i += 2 {
		out = strings.Replace(out, r[i], r[i+1], 1)
	}
	return out
}

// checkMessage replaces a message that cannot be shown with a diagnostic.
func checkMessage(message any) string {
	s, ok := message.(string)
	switch {
	case !ok:
		return msgNotString
	case s == "":
		return msgEmpty
	}
	return s
}
