package headless

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/webinterop/internal/browser"
	"github.com/GriffinCanCode/webinterop/internal/modules/geolocation"
)

const page = `<!doctype html>
<html><body>
  <div id="header" class="bar top">Title</div>
  <main id="content">
    <section id="panel" class="card" data-role="chart">Chart</section>
    <section class="card">Other</section>
  </main>
</body></html>`

func TestLoadHTML(t *testing.T) {
	doc := NewDocument()
	require.NoError(t, doc.LoadHTML(strings.NewReader(page)))

	panel, ok := doc.GetElementByID("panel")
	require.True(t, ok)
	assert.Equal(t, "panel", panel.ID())

	el := panel.(*Element)
	assert.Equal(t, "section", el.Tag)
	assert.Equal(t, "chart", el.GetAttribute("data-role"))
	assert.Equal(t, "Chart", el.Text)
	assert.Equal(t, "content", el.Parent.ID())

	assert.Len(t, doc.Query(".card"), 2)
	assert.Len(t, doc.Query("section"), 2)
	assert.Len(t, doc.Query("#header"), 1)
	assert.Empty(t, doc.Query("#missing"))
	assert.Len(t, doc.Query(".top"), 1)

	_, ok = doc.GetElementByID("missing")
	assert.False(t, ok)
}

func TestAddAndRemove(t *testing.T) {
	doc := NewDocument()
	doc.Add("a")
	_, ok := doc.GetElementByID("a")
	require.True(t, ok)

	assert.True(t, doc.RemoveByID("a"))
	assert.False(t, doc.RemoveByID("a"))
	_, ok = doc.GetElementByID("a")
	assert.False(t, ok)
}

func TestGeolocation(t *testing.T) {
	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	g := NewGeolocation(func() time.Time { return clock })
	ctx := context.Background()

	_, err := g.GetCurrentPosition(ctx, nil)
	var perr *geolocation.PositionError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, geolocation.CodePositionUnavailable, perr.Code)

	var got []geolocation.Position
	var failures []geolocation.ErrorCode
	id := g.WatchPosition(
		func(p geolocation.Position) { got = append(got, p) },
		func(e *geolocation.PositionError) { failures = append(failures, e.Code) },
		nil)

	g.SetPosition(10, 20, 5)
	pos, err := g.GetCurrentPosition(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 10.0, pos.Coords.Latitude)
	assert.Equal(t, clock.UnixMilli(), pos.Timestamp)

	g.Fail(geolocation.CodeTimeout, "timed out")
	_, err = g.GetCurrentPosition(ctx, nil)
	assert.Error(t, err)

	g.ClearWatch(id)
	g.SetPosition(1, 2, 3)

	assert.Len(t, got, 1)
	assert.Equal(t, []geolocation.ErrorCode{geolocation.CodeTimeout}, failures)
	assert.Equal(t, 0, g.ActiveWatches())
}

func TestResizeBatches(t *testing.T) {
	b := New()
	b.Document.Add("a")
	b.Document.Add("b")

	var batches [][]browser.ResizeEntry
	obs := b.Observers.NewResizeObserver(func(entries []browser.ResizeEntry) {
		batches = append(batches, entries)
	})
	a, _ := b.Document.GetElementByID("a")
	obs.Observe(a)

	b.Observers.Batch(
		Change{ID: "a", Width: 1, Height: 1},
		Change{ID: "b", Width: 2, Height: 2},
		Change{ID: "a", Width: 3, Height: 4, LegacyOnly: true},
	)
	require.Len(t, batches, 1)
	require.Len(t, batches[0], 2)
	w, h := batches[0][1].Size()
	assert.Equal(t, 3.0, w)
	assert.Equal(t, 4.0, h)
	assert.Empty(t, batches[0][1].ContentBoxSize)

	obs.Unobserve(a)
	b.Observers.Resize("a", 5, 5)
	assert.Len(t, batches, 1)

	obs.Observe(a)
	obs.Disconnect()
	b.Observers.Resize("a", 5, 5)
	assert.Len(t, batches, 1)
	assert.Equal(t, 1, b.Observers.Created())
	assert.Equal(t, 0, b.Observers.Live())
}

func TestPlatformSupport(t *testing.T) {
	p := New().Platform()
	assert.NotNil(t, p.Geolocation)
	assert.NotNil(t, p.ResizeObservers)

	p = New(WithoutGeolocation(), WithoutResizeObserver()).Platform()
	assert.Nil(t, p.Geolocation)
	assert.Nil(t, p.ResizeObservers)
}

func TestConsole(t *testing.T) {
	c := NewConsole(nil)
	c.Info("one")
	c.Log("%ctwo", "color: red")

	assert.Equal(t, []string{"one"}, c.Messages(LevelInfo))
	assert.True(t, c.Contains(LevelLog, "two"))
	assert.Equal(t, "color: red", c.Entries()[1].Style)

	c.Reset()
	assert.Empty(t, c.Entries())
}
