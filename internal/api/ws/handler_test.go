package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/webinterop/internal/bridge"
	"github.com/GriffinCanCode/webinterop/internal/browser"
	"github.com/GriffinCanCode/webinterop/internal/browser/headless"
	"github.com/GriffinCanCode/webinterop/internal/domain/component"
	"github.com/GriffinCanCode/webinterop/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webinterop/internal/wire"
)

func newServer(t *testing.T, opts Options) (*httptest.Server, *Handler, *component.Manager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	components := component.NewManager(nil)
	h := NewHandler(components, nil, monitoring.NewMetrics(), opts)
	router := gin.New()
	router.GET("/interop", h.HandleConnection)

	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		h.Close()
		srv.Close()
	})
	return srv, h, components
}

// dial connects a headless browser to srv.
func dial(t *testing.T, srv *httptest.Server, query string, codec wire.Codec, b *headless.Browser) context.CancelFunc {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/interop" + query
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	conn := bridge.NewWebSocketConn(ws, codec.Binary(), 0)
	host := browser.NewHost(conn, codec, b.Platform(), browser.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		_ = host.Close()
	})
	go func() { _ = host.Run(ctx) }()
	return func() {
		cancel()
		_ = host.Close()
	}
}

func waitComponent(t *testing.T, components *component.Manager) *component.Component {
	t.Helper()
	require.Eventually(t, func() bool { return components.Count() == 1 }, 2*time.Second, 10*time.Millisecond)
	c, ok := components.Get(components.List()[0].ID)
	require.True(t, ok)
	return c
}

func TestConnectionAttachesComponent(t *testing.T) {
	for _, codec := range []wire.Codec{wire.JSON, wire.CBOR} {
		t.Run(codec.Name(), func(t *testing.T) {
			srv, h, components := newServer(t, Options{CallTimeout: 2 * time.Second, BreakerEnabled: true})

			b := headless.New()
			b.Geolocation.SetPosition(10, 20, 5)
			disconnect := dial(t, srv, "?codec="+codec.Name(), codec, b)

			c := waitComponent(t, components)
			assert.Equal(t, codec.Name(), c.Info().Codec)
			assert.Equal(t, headless.UserAgent, c.Info().UserAgent)
			assert.Equal(t, 1, h.Active())

			result, err := c.Geolocation.GetLocation(context.Background(), nil)
			require.NoError(t, err)
			require.True(t, result.IsSuccess())
			assert.Equal(t, 10.0, result.Position.Coords.Latitude)

			disconnect()
			require.Eventually(t, func() bool { return components.Count() == 0 && h.Active() == 0 },
				2*time.Second, 10*time.Millisecond)
		})
	}
}

func TestUnknownCodecRejected(t *testing.T) {
	srv, _, _ := newServer(t, Options{})

	resp, err := http.Get(srv.URL + "/interop?codec=xml")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCloseDropsConnections(t *testing.T) {
	srv, h, components := newServer(t, Options{})
	dial(t, srv, "", wire.JSON, headless.New())
	waitComponent(t, components)

	h.Close()
	require.Eventually(t, func() bool { return components.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestBreakerDefaults(t *testing.T) {
	h := NewHandler(component.NewManager(nil), nil, nil, Options{BreakerEnabled: true})
	assert.Equal(t, wire.JSON, h.opts.Codec)
	assert.NotNil(t, h.newBreaker())
}
