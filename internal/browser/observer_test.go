package browser_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/webinterop/internal/browser/headless"
	"github.com/GriffinCanCode/webinterop/internal/interop"
	"github.com/GriffinCanCode/webinterop/internal/modules/observer"
	"github.com/GriffinCanCode/webinterop/internal/wire"
)

func TestResizeNotifications(t *testing.T) {
	b := headless.New()
	b.Document.Add("panel")
	b.Document.Add("sidebar")
	o := observer.New(connect(t, b, wire.JSON), nil)
	ctx := context.Background()

	events := make(chan observer.ResizeEvent, 8)
	o.OnResized(func(e observer.ResizeEvent) { events <- e })

	require.NoError(t, o.AddResizers(ctx, []string{"panel", "sidebar"}))

	b.Observers.Batch(
		headless.Change{ID: "panel", Width: 100, Height: 50},
		headless.Change{ID: "sidebar", Width: 20, Height: 400, LegacyOnly: true},
		headless.Change{ID: "panel", Width: 120, Height: 60},
	)

	assert.Equal(t, observer.ResizeEvent{ID: "panel", Width: 120, Height: 60}, receive(t, events))
	assert.Equal(t, observer.ResizeEvent{ID: "sidebar", Width: 20, Height: 400}, receive(t, events))
	assert.Empty(t, events)
}

func TestMissingElementWarns(t *testing.T) {
	b := headless.New()
	o := observer.New(connect(t, b, wire.JSON), nil)

	require.NoError(t, o.AddResizer(context.Background(), "ghost"))
	assert.True(t, b.Console.Contains(headless.LevelWarn,
		"[Warning] Element where id = 'ghost' does not exist and will not be observed."))

	require.NoError(t, o.RemoveResizer(context.Background(), "ghost"))
	assert.True(t, b.Console.Contains(headless.LevelWarn, "will not be unobserved."))
}

func TestMissingIDListWarns(t *testing.T) {
	b := headless.New()
	o := observer.New(connect(t, b, wire.JSON), nil)

	require.NoError(t, o.AddResizers(context.Background(), nil))
	assert.Equal(t, []string{
		"Observer.addResizer - missing id list.",
		"[Warning] Observer.addResizer - missing id list.",
	}, b.Console.Messages(headless.LevelWarn))
}

func TestResizeObserverUnsupported(t *testing.T) {
	b := headless.New(headless.WithoutResizeObserver())
	b.Document.Add("panel")
	o := observer.New(connect(t, b, wire.JSON), nil)

	require.NoError(t, o.AddResizer(context.Background(), "panel"))
	assert.True(t, b.Console.Contains(headless.LevelWarn, "Resize observer not supported!"))
}

func TestRemoveAndDisconnect(t *testing.T) {
	b := headless.New()
	b.Document.Add("panel")
	o := observer.New(connect(t, b, wire.JSON), nil)
	ctx := context.Background()

	require.NoError(t, o.SetLogLevel(ctx, interop.LevelTrace))
	require.NoError(t, o.AddResizer(ctx, "panel"))
	assert.Equal(t, 1, b.Observers.ObservedCount())

	ids := []string{"panel"}
	require.NoError(t, o.RemoveResizers(ctx, ids))
	assert.Equal(t, []string{"panel"}, ids)
	assert.Equal(t, 0, b.Observers.ObservedCount())

	require.NoError(t, o.DisconnectResizers(ctx))
	assert.Equal(t, 0, b.Observers.Live())
	assert.True(t, b.Console.Contains(headless.LevelTrace, "disconnectResizers was called."))

	require.NoError(t, o.AddResizer(ctx, "panel"))
	assert.Equal(t, 2, b.Observers.Created())
	assert.Equal(t, 1, b.Observers.ObservedCount())
}

func TestObserverDispose(t *testing.T) {
	b := headless.New()
	b.Document.Add("panel")
	o := observer.New(connect(t, b, wire.JSON), nil)
	ctx := context.Background()

	require.NoError(t, o.AddResizer(ctx, "panel"))
	require.NoError(t, o.Dispose(ctx))
	require.NoError(t, o.Dispose(ctx))
	assert.Equal(t, 0, b.Observers.Live())
}
