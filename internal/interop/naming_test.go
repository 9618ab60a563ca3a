package interop

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMethodName(t *testing.T) {
	tests := []struct {
		ns     Namespace
		method string
		want   string
	}{
		{NamespaceGeolocation, "GetLocation", "Geolocation.getLocation"},
		{NamespaceGeolocation, "WatchPosition", "Geolocation.watchPosition"},
		{NamespaceObserver, "AddResizers", "Observer.addResizers"},
		{NamespaceJsLogger, "LogInformation", "JsLogger.logInformation"},
		{Namespace("Maps_Markers"), "Add", "Maps.Markers.add"},
		{NamespaceObserver, "already", "Observer.already"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MethodName(tt.ns, tt.method))
	}
}

func TestToJSONName(t *testing.T) {
	assert.Equal(t, "", ToJSONName(""))
	assert.Equal(t, "x", ToJSONName("X"))
	assert.Equal(t, "élan", ToJSONName("Élan"))
}

func TestSplitMethodName(t *testing.T) {
	ns, method, ok := SplitMethodName("Geolocation.clearWatch")
	assert.True(t, ok)
	assert.Equal(t, NamespaceGeolocation, ns)
	assert.Equal(t, "clearWatch", method)

	ns, method, ok = SplitMethodName("Maps.Markers.add")
	assert.True(t, ok)
	assert.Equal(t, Namespace("Maps_Markers"), ns)
	assert.Equal(t, "add", method)

	for _, bad := range []string{"", "import", ".x", "x."} {
		_, _, ok := SplitMethodName(bad)
		assert.False(t, ok, bad)
	}
}
