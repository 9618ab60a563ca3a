package observer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/webinterop/internal/interop"
	"github.com/GriffinCanCode/webinterop/internal/interop/interoptest"
)

func TestAddResizers(t *testing.T) {
	rt := interoptest.New()
	o := New(rt, nil)
	ctx := context.Background()

	require.NoError(t, o.AddResizer(ctx, "panel"))
	require.NoError(t, o.AddResizers(ctx, []string{"a", "b"}))

	calls := rt.CallsTo("Observer.addResizers")
	require.Len(t, calls, 2)
	assert.NotEmpty(t, interoptest.ObjectToken(calls[0], 0))
	assert.Equal(t, []string{"panel"}, calls[0].Args[1])
	assert.Equal(t, []string{"a", "b"}, calls[1].Args[1])
	assert.Equal(t, 1, rt.Imports())
	assert.Equal(t, []any{"./_content/webinterop/observer.js"}, rt.CallsTo(interop.ImportIdentifier)[0].Args)
}

func TestRemoveResizersLeavesCallerSliceAlone(t *testing.T) {
	rt := interoptest.New()
	o := New(rt, nil)

	ids := []string{"a", "b", "c"}
	require.NoError(t, o.RemoveResizers(context.Background(), ids))
	assert.Equal(t, []string{"a", "b", "c"}, ids)

	sent := rt.CallsTo("Observer.removeResizers")[0].Args[0].([]string)
	assert.Equal(t, ids, sent)
	sent[0] = "changed"
	assert.Equal(t, "a", ids[0])
}

func TestResizeEventsAsyncFirst(t *testing.T) {
	rt := interoptest.New()
	o := New(rt, nil)

	var got []string
	o.OnResizedContext(func(ctx context.Context, e ResizeEvent) error {
		got = append(got, "async:"+e.ID)
		return nil
	})
	o.OnResized(func(e ResizeEvent) { got = append(got, "sync:"+e.ID) })

	var last ResizeEvent
	o.OnResized(func(e ResizeEvent) { last = e })

	require.NoError(t, o.AddResizer(context.Background(), "panel"))
	token := interoptest.ObjectToken(rt.CallsTo("Observer.addResizers")[0], 0)

	require.NoError(t, rt.Callback(context.Background(), token, NotifyResizedMethod,
		ResizeEvent{ID: "panel", Width: 320, Height: 200.5}))

	assert.Equal(t, []string{"async:panel", "sync:panel"}, got)
	assert.Equal(t, ResizeEvent{ID: "panel", Width: 320, Height: 200.5}, last)
}

func TestDispose(t *testing.T) {
	rt := interoptest.New()
	o := New(rt, nil)
	ctx := context.Background()

	require.NoError(t, o.AddResizer(ctx, "panel"))
	require.NoError(t, o.Dispose(ctx))
	require.NoError(t, o.Dispose(ctx))

	assert.Len(t, rt.CallsTo("Observer.disconnectResizers"), 1)
	assert.Equal(t, []string{"mod_observer.js"}, rt.Released())
	assert.Equal(t, 0, rt.Objects().Len())
	assert.True(t, errors.Is(o.AddResizer(ctx, "x"), interop.ErrDisposed))
}

func TestDisposeWithoutLoad(t *testing.T) {
	rt := interoptest.New()
	o := New(rt, nil)

	require.NoError(t, o.Dispose(context.Background()))
	assert.Empty(t, rt.Calls())
}

func TestDisposeAfterFailedImportSkipsBrowser(t *testing.T) {
	rt := interoptest.New()
	rt.FailImport(errors.New("offline"))
	o := New(rt, nil)
	ctx := context.Background()

	require.Error(t, o.AddResizer(ctx, "panel"))
	require.Equal(t, 1, rt.Imports())

	require.NoError(t, o.Dispose(ctx))
	assert.Equal(t, 1, rt.Imports())
	assert.Empty(t, rt.CallsTo(method("DisconnectResizers")))
	assert.Empty(t, rt.Released())
}

func TestImportFailureIsRetried(t *testing.T) {
	rt := interoptest.New()
	rt.FailImport(errors.New("offline"))
	o := New(rt, nil)

	assert.Error(t, o.DisconnectResizers(context.Background()))
	rt.FailImport(nil)
	assert.NoError(t, o.DisconnectResizers(context.Background()))
	assert.Equal(t, 2, rt.Imports())
}
