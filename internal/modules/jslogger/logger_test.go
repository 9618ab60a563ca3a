package jslogger

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webinterop/internal/interop"
	"github.com/GriffinCanCode/webinterop/internal/interop/interoptest"
)

var allLevels = []interop.LogLevel{
	interop.LevelTrace,
	interop.LevelDebug,
	interop.LevelInformation,
	interop.LevelWarning,
	interop.LevelError,
	interop.LevelCritical,
	interop.LevelNone,
}

func TestNewConfigDefaults(t *testing.T) {
	c, err := NewConfig("", interop.LevelInformation, interop.LevelCritical, "  ")
	require.NoError(t, err)
	assert.Equal(t, DefaultCategory, c.Category())
	assert.Equal(t, DefaultTemplate, c.Template())

	d := DefaultConfig()
	assert.Equal(t, interop.LevelInformation, d.MinLevel())
	assert.Equal(t, interop.LevelCritical, d.MaxLevel())
}

func TestConfigIsEnabledForAllRanges(t *testing.T) {
	for _, min := range allLevels {
		for _, max := range allLevels {
			c, err := NewConfig("X", min, max, "")
			if min > max {
				assert.True(t, errors.Is(err, interop.ErrInvalidArgument), "%s..%s", min, max)
				continue
			}
			require.NoError(t, err)
			for _, level := range allLevels {
				want := level != interop.LevelNone && min <= level && level <= max
				assert.Equal(t, want, c.IsEnabled(level), "%s in %s..%s", level, min, max)
			}
		}
	}
}

func TestConfigSetLevelRejectsInvertedRange(t *testing.T) {
	c := DefaultConfig()
	err := c.SetLevel(interop.LevelError, interop.LevelDebug)
	assert.True(t, errors.Is(err, interop.ErrInvalidArgument))
	assert.Equal(t, interop.LevelInformation, c.MinLevel())
	assert.Equal(t, interop.LevelCritical, c.MaxLevel())
}

func TestConfigRejectsBlankStrings(t *testing.T) {
	c := DefaultConfig()
	assert.True(t, errors.Is(c.SetTemplate(" "), interop.ErrInvalidArgument))
	assert.True(t, errors.Is(c.SetCategory(""), interop.ErrInvalidArgument))
	require.NoError(t, c.SetTemplate("{message}"))
	assert.Equal(t, "{message}", c.Template())
}

func TestConfigClone(t *testing.T) {
	c := DefaultConfig()
	clone := c.Clone()
	require.NoError(t, clone.SetCategory("other"))
	assert.Equal(t, DefaultCategory, c.Category())
}

func TestLogGatesOnHost(t *testing.T) {
	rt := interoptest.New()
	l := New(rt, nil)
	ctx := context.Background()

	require.NoError(t, l.LogDebug(ctx, "hidden", ""))
	require.NoError(t, l.Log(ctx, interop.LevelNone, "hidden", ""))
	assert.Empty(t, rt.Calls())

	require.NoError(t, l.LogWarning(ctx, "shown", "evt"))
	calls := rt.CallsTo("JsLogger.logWarning")
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"category":"JSLoggerInterop","minLevel":2,"maxLevel":5,"template":"{category}{event}{timestamp}{level}: {message}"}`,
		rt.Encoded(calls[0], 0))
	assert.Equal(t, "shown", calls[0].Args[1])
	assert.Equal(t, "evt", calls[0].Args[2])
}

func TestLevelIdentifiers(t *testing.T) {
	rt := interoptest.New()
	cfg, err := NewConfig("X", interop.LevelTrace, interop.LevelCritical, "")
	require.NoError(t, err)
	l := New(rt, nil, WithConfig(cfg))
	ctx := context.Background()

	require.NoError(t, l.LogTrace(ctx, "m", ""))
	require.NoError(t, l.LogDebug(ctx, "m", ""))
	require.NoError(t, l.LogInformation(ctx, "m", ""))
	require.NoError(t, l.LogWarning(ctx, "m", ""))
	require.NoError(t, l.LogError(ctx, "m", ""))
	require.NoError(t, l.LogCritical(ctx, "m", ""))

	var got []string
	for _, c := range rt.Calls() {
		if c.Identifier != interop.ImportIdentifier {
			got = append(got, c.Identifier)
		}
	}
	assert.Equal(t, []string{
		"JsLogger.logTrace",
		"JsLogger.logDebug",
		"JsLogger.logInformation",
		"JsLogger.logWarning",
		"JsLogger.logError",
		"JsLogger.logCritical",
	}, got)
}

func TestLogErr(t *testing.T) {
	rt := interoptest.New()
	l := New(rt, nil)
	ctx := context.Background()

	err := fmt.Errorf("load failed: %w", errors.New("disk full"))
	require.NoError(t, l.LogErr(ctx, err, "io"))
	msg := rt.CallsTo("JsLogger.logError")[0].Args[1].(string)
	assert.Contains(t, msg, "load failed: disk full\n")
	assert.Contains(t, msg, "caused by")

	l.SetDetailedErrors(false)
	require.NoError(t, l.LogErr(ctx, err, "io"))
	assert.Equal(t, "load failed: disk full\n", rt.CallsTo("JsLogger.logError")[1].Args[1])

	require.NoError(t, l.LogErr(ctx, nil, "io"))
	assert.Len(t, rt.CallsTo("JsLogger.logError"), 2)
}

func TestLogRawBypassesGate(t *testing.T) {
	rt := interoptest.New()
	cfg, err := NewConfig("X", interop.LevelNone, interop.LevelNone, "")
	require.NoError(t, err)
	l := New(rt, nil, WithConfig(cfg))

	require.NoError(t, l.LogRaw(context.Background(), "hello", "color: red"))
	call := rt.CallsTo("JsLogger.logRaw")[0]
	assert.Equal(t, []any{"hello", "color: red"}, call.Args)
}

func TestTestRoutine(t *testing.T) {
	rt := interoptest.New()
	l := New(rt, nil)

	require.NoError(t, l.Test(context.Background(), ""))
	require.NoError(t, l.Test(context.Background(), "custom"))

	calls := rt.CallsTo("JsLogger.test")
	require.Len(t, calls, 2)
	assert.Len(t, calls[0].Args, 1)
	assert.Equal(t, "custom", calls[1].Args[1])
}

func TestSetConfig(t *testing.T) {
	l := New(interoptest.New(), nil)
	assert.True(t, errors.Is(l.SetConfig(nil), interop.ErrInvalidArgument))

	cfg := DefaultConfig()
	require.NoError(t, cfg.SetLevel(interop.LevelTrace, interop.LevelDebug))
	require.NoError(t, l.SetConfig(cfg))
	assert.True(t, l.IsEnabled(interop.LevelTrace))
	assert.False(t, l.IsEnabled(interop.LevelInformation))

	require.NoError(t, cfg.SetLevel(interop.LevelError, interop.LevelError))
	assert.True(t, l.IsEnabled(interop.LevelTrace))
}

type orderService struct{}

func TestForUsesTypeName(t *testing.T) {
	assert.Equal(t, "orderService", For[orderService](interoptest.New(), nil).Config().Category())
	assert.Equal(t, "orderService", For[*orderService](interoptest.New(), nil).Config().Category())
}

func TestDispose(t *testing.T) {
	rt := interoptest.New()
	l := New(rt, nil)
	ctx := context.Background()

	require.NoError(t, l.Dispose(ctx))
	assert.Empty(t, rt.Released())

	rt2 := interoptest.New()
	l2 := New(rt2, nil)
	require.NoError(t, l2.LogError(ctx, "x", ""))
	require.NoError(t, l2.Dispose(ctx))
	require.NoError(t, l2.Dispose(ctx))
	assert.Equal(t, []string{"mod_jslogger.js"}, rt2.Released())
	assert.True(t, errors.Is(l2.LogError(ctx, "x", ""), interop.ErrDisposed))
}

func TestDisposeAfterFailedImportSkipsBrowser(t *testing.T) {
	rt := interoptest.New()
	rt.FailImport(errors.New("offline"))
	l := New(rt, nil)
	ctx := context.Background()

	require.Error(t, l.LogRaw(ctx, "hello", ""))
	require.Equal(t, 1, rt.Imports())

	require.NoError(t, l.Dispose(ctx))
	assert.Equal(t, 1, rt.Imports())
	assert.Empty(t, rt.Released())
}

func TestCore(t *testing.T) {
	rt := interoptest.New()
	l := New(rt, nil)
	zl := zap.New(NewCore(l)).Named("checkout").With(zap.String("order", "A1"))

	zl.Debug("skipped")
	zl.Warn("slow response", zap.Int("ms", 900))

	calls := rt.CallsTo("JsLogger.logWarning")
	require.Len(t, calls, 1)
	assert.Equal(t, "slow response ms=900 order=A1", calls[0].Args[1])
	assert.Equal(t, "checkout", calls[0].Args[2])
	assert.Empty(t, rt.CallsTo("JsLogger.logDebug"))
}
