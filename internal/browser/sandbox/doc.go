/*
Package sandbox runs scenario scripts against a headless browser.

A scenario is plain JavaScript executed by goja. It drives the in-memory
Web APIs the way a user and a device would: moving the position, failing
location requests, adding and resizing elements. Interop modules loaded by
a host over a browser.Host see those changes exactly as they would in a
real page.

# Globals

	geolocation.setPosition(lat, lon, accuracy)
	geolocation.fail(code, message)
	dom.add(id)
	dom.remove(id)
	dom.resize(id, width, height)
	dom.batch([{id, width, height, legacy}])
	document.getElementById(id)
	document.querySelector(selector)
	console.log / info / warn / error
	sleep(ms)

Error codes are available as geolocation.PERMISSION_DENIED,
geolocation.POSITION_UNAVAILABLE and geolocation.TIMEOUT. Callers add
their own globals with Runtime.Set.

Scripts cannot reach the file system or the network: require, process
and module are removed and timers are no-ops. Every run is bounded by
Config.Timeout and by the context passed to Run.
*/
package sandbox
