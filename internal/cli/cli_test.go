package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/webinterop/internal/domain/component"
	"github.com/GriffinCanCode/webinterop/internal/modules/geolocation"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := Execute("test", args, &out)
	return out.String(), err
}

func TestSimulate(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "scenario.js")
	require.NoError(t, os.WriteFile(script, []byte(`
		host.watch("device");
		geolocation.setPosition(1, 2, 3);
		sleep(20);
		console.log("done");
		host.isWatched("device");
	`), 0o644))

	out, err := run(t, "simulate", "--codec", "cbor", script)
	require.NoError(t, err)
	assert.Contains(t, out, "geolocation device watch-success")
	assert.Contains(t, out, "[log] done")
	assert.Contains(t, out, "Result: true")
}

func TestSimulateReportsScriptErrors(t *testing.T) {
	script := filepath.Join(t.TempDir(), "broken.js")
	require.NoError(t, os.WriteFile(script, []byte(`throw new Error("nope");`), 0o644))

	_, err := run(t, "simulate", script)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")

	_, err = run(t, "simulate", "--codec", "xml", script)
	assert.Error(t, err)
}

func TestStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"components": []gin.H{{"id": "sess_1", "contextId": "ctx_1", "codec": "json", "events": 4}},
			"metrics":    gin.H{"activeSessions": 1, "totalSessions": 2},
		})
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	out, err := run(t, "--server", srv.URL, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Sessions: 1 active, 2 total")
	assert.Contains(t, out, "sess_1")
	assert.Contains(t, out, "ctx_1")
}

func TestLogRejectsUnknownLevel(t *testing.T) {
	_, err := run(t, "--server", "http://127.0.0.1:1", "log", "sess_1", "Loud", "hi")
	assert.Error(t, err)
}

func TestFormatEventUsesWireReason(t *testing.T) {
	at := time.Date(2024, 3, 9, 8, 7, 6, 0, time.UTC)
	tests := []struct {
		reason geolocation.EventReason
		want   string
	}{
		{geolocation.ReasonWatchSuccess, "#3 08:07:06.000 geolocation device watch-success"},
		{geolocation.ReasonWatchError, "#3 08:07:06.000 geolocation device watch-error"},
		{geolocation.ReasonNone, "#3 08:07:06.000 geolocation device none"},
	}
	for _, tt := range tests {
		e := component.Event{
			Seq:   3,
			Time:  at,
			Kind:  "watch",
			Watch: &geolocation.Event{Key: "device", Reason: tt.reason},
		}
		assert.Contains(t, formatEvent(e), tt.want)
	}
}
