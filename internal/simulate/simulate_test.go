package simulate

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/webinterop/internal/browser/headless"
	"github.com/GriffinCanCode/webinterop/internal/domain/component"
	"github.com/GriffinCanCode/webinterop/internal/wire"
)

func TestRunWatchScenario(t *testing.T) {
	script := `
		geolocation.setPosition(1, 2, 3);
		var created = host.watch("device");
		var again = host.watch("device");
		geolocation.setPosition(4, 5, 6);
		sleep(20);
		host.clearWatch("device");
		[created, again, host.isWatched("device")];
	`
	report, err := Run(context.Background(), script, DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, report.Result.Error)
	assert.Equal(t, []any{true, false, false}, report.Result.Value)

	require.NotEmpty(t, report.Events)
	last := report.Events[len(report.Events)-1]
	assert.Equal(t, component.KindGeolocation, last.Kind)
	assert.Equal(t, "device", last.Watch.Key)
	assert.Equal(t, 4.0, last.Watch.Result.Position.Coords.Latitude)
}

func TestRunResizeScenarioOverCBOR(t *testing.T) {
	opts := DefaultOptions()
	opts.Codec = wire.CBOR
	opts.HTML = `<html><body><div id="panel"></div></body></html>`

	script := `
		host.observe("panel", "ghost");
		dom.resize("panel", 300, 200);
		sleep(20);
	`
	report, err := Run(context.Background(), script, opts)
	require.NoError(t, err)
	require.NoError(t, report.Result.Error)

	require.Len(t, report.Events, 1)
	assert.Equal(t, "panel", report.Events[0].Resize.ID)
	assert.Equal(t, 300.0, report.Events[0].Resize.Width)

	var warned bool
	for _, e := range report.Console {
		if e.Level == headless.LevelWarn && e.Message == "[Warning] Element where id = 'ghost' does not exist and will not be observed." {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestRunLocateAndLog(t *testing.T) {
	script := `
		geolocation.setPosition(48.85, 2.35, 10);
		var r = host.locate(1000);
		var logged = host.log("Warning", "low disk");
		[r.position.coords.latitude, logged];
	`
	report, err := Run(context.Background(), script, DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, report.Result.Error)
	assert.Equal(t, []any{48.85, true}, report.Result.Value)

	var found bool
	for _, e := range report.Console {
		if e.Level == headless.LevelWarn && strings.Contains(e.Message, "low disk") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestRunHostErrorsAreScriptExceptions(t *testing.T) {
	script := `
		var caught = "";
		try { host.log("Loud", "x"); } catch (e) { caught = "level"; }
		try { host.setLogLevel("storage", "Trace"); } catch (e) { caught += ",module"; }
		caught;
	`
	report, err := Run(context.Background(), script, DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, report.Result.Error)
	assert.Equal(t, "level,module", report.Result.Value)
}

func TestRunHonoursContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	report, err := Run(ctx, `console.log("started"); sleep(5000);`, DefaultOptions())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotNil(t, report)
	require.Len(t, report.Result.Console, 1)
	assert.Equal(t, "started", report.Result.Console[0].Message)
}
